// Copyright 2026 Shigure Cafe Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shigurecafe/cafebot/internal/bootstrap"
	"github.com/shigurecafe/cafebot/pkg/version"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "cafebot",
	Short: "Shigure Cafe audit bot",
	Long:  "Telegram bot that verifies audit codes and hands out single-use invites to the review group.",

	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot and poll for updates",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
		if err != nil {
			return err
		}
		return bootstrap.Run(app, cleanup)
	},
}

func init() {
	runCmd.Flags().StringVarP(&configFile, "conf", "c", "conf.d/config.toml", "configuration file path, e.g. --conf ./conf.d/config.toml")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(version.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
