package version

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// 构建时通过 -ldflags "-X" 注入
var (
	Version   = "dev"
	GitBranch = ""
	GitCommit = ""
	BuildTime = ""
)

// VersionCmd prints build information as JSON.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bot version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := GetVersion().JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}

type Info struct {
	Version   string `json:"version"`
	GitBranch string `json:"gitBranch"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

func GetVersion() *Info {
	return &Info{
		Version:   Version,
		GitBranch: GitBranch,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns "version (commit)" for log lines.
func (v *Info) String() string {
	if v.GitCommit == "" {
		return v.Version
	}
	return fmt.Sprintf("%s (%s)", v.Version, v.GitCommit)
}

func (v *Info) JSON() (json.RawMessage, error) {
	return json.MarshalIndent(v, "", "  ")
}
