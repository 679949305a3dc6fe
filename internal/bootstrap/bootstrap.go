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

package bootstrap

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shigurecafe/cafebot/internal/bot"
	"github.com/shigurecafe/cafebot/internal/config"
	"github.com/shigurecafe/cafebot/internal/logship"
	"github.com/shigurecafe/cafebot/internal/telegram"
	"github.com/shigurecafe/cafebot/pkg/cron"
	"github.com/shigurecafe/cafebot/pkg/log"
	"github.com/shigurecafe/cafebot/pkg/metrics"
	"github.com/shigurecafe/cafebot/pkg/safe"
	"github.com/shigurecafe/cafebot/pkg/shutdown"
	"github.com/shigurecafe/cafebot/pkg/version"
)

const (
	startupTimeout = 30 * time.Second
	flushTimeout   = 5 * time.Second
	stopTimeout    = 5 * time.Second
)

type App struct {
	Logger        *zap.Logger
	AppConf       *config.AppConfig
	Telegram      *telegram.Client
	Router        *bot.Router
	Poller        *bot.Poller
	Buffer        *logship.Buffer
	Shipper       *logship.Shipper
	Scheduler     *cron.Scheduler
	MetricsServer *metrics.Server

	shutdown *shutdown.Manager
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

func NewApp(
	logger *zap.Logger,
	appConf *config.AppConfig,
	tg *telegram.Client,
	router *bot.Router,
	poller *bot.Poller,
	buffer *logship.Buffer,
	shipper *logship.Shipper,
	scheduler *cron.Scheduler,
	metricsServer *metrics.Server,
) *App {
	return &App{
		Logger:        logger,
		AppConf:       appConf,
		Telegram:      tg,
		Router:        router,
		Poller:        poller,
		Buffer:        buffer,
		Shipper:       shipper,
		Scheduler:     scheduler,
		MetricsServer: metricsServer,
		shutdown:      shutdown.NewManager(context.Background()),
	}
}

// Shutdown asks a running app to stop. It is safe to call more than once.
func (app *App) Shutdown() {
	app.shutdown.Shutdown()
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	app, cleanup, err := initApp(configFile)
	if err != nil {
		return nil, nil, err
	}

	// 从此刻起 INFO 及以上的日志都会进入上传缓冲区
	log.AttachSink(app.Buffer)
	log.Infow("bot initialized",
		"version", version.GetVersion().String(),
		"backend", app.AppConf.Backend.APIBaseURL(),
	)
	return app, cleanup, nil
}

// Run starts polling and log shipping, waits for an exit signal and shuts
// down in order: stop polling, let in-flight handlers finish, flush logs once
// more, then release clients through cleanup.
func Run(app *App, cleanup func()) error {
	defer func() {
		app.shutdown.Shutdown()
		log.DetachSink()
		cleanup()
		_ = log.Sync()
	}()

	app.shutdown.Notify(syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	ctx := app.shutdown.Context()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	me, err := app.Telegram.GetMe(startCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to reach telegram: %w", err)
	}
	app.Router.SetUsername(me.Username)

	if app.AppConf.Bot.AuditGroupID == "" {
		log.Warn("AUDIT_GROUP_ID is not set, /audit will not issue invites")
	}

	if app.MetricsServer != nil {
		if err := app.MetricsServer.Start(); err != nil {
			log.Errorw("metrics server failed", "error", err)
		}
	}

	if app.AppConf.Shipper.Enable {
		if err := app.Shipper.Start(app.Scheduler); err != nil {
			return fmt.Errorf("failed to start log shipper: %w", err)
		}
	}

	pollDone := make(chan error, 1)
	safe.Go(func() {
		pollDone <- app.Poller.Run(ctx)
	})
	log.Infow("bot started", "username", me.Username)

	var pollErr error
	select {
	case <-app.shutdown.Done():
		log.Infow("received shutdown, stopping gracefully", "reason", app.shutdown.Reason())
		pollErr = <-pollDone
	case pollErr = <-pollDone:
		app.shutdown.Shutdown()
	}
	if pollErr != nil {
		log.Errorw("update polling stopped", "error", pollErr)
	}

	app.Poller.Wait()

	if app.AppConf.Shipper.Enable {
		flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		app.Shipper.Stop(flushCtx)
		cancel()
	}

	if app.MetricsServer != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		if err := app.MetricsServer.Stop(stopCtx); err != nil {
			log.Errorw("failed to stop metrics server", "error", err)
		}
		cancel()
	}

	log.Info("bot shutdown complete")
	return pollErr
}
