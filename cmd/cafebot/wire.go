//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/shigurecafe/cafebot/internal/audit"
	"github.com/shigurecafe/cafebot/internal/backend"
	"github.com/shigurecafe/cafebot/internal/bootstrap"
	"github.com/shigurecafe/cafebot/internal/bot"
	"github.com/shigurecafe/cafebot/internal/config"
	"github.com/shigurecafe/cafebot/internal/logship"
	"github.com/shigurecafe/cafebot/pkg/cron"
	"github.com/shigurecafe/cafebot/pkg/log"
	"github.com/shigurecafe/cafebot/pkg/metrics"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		config.ProviderSet,
		// 日志层（依赖 config）
		log.ProviderSet,
		// 指标层（依赖 config）
		metrics.ProviderSet,
		// 定时任务
		cron.ProviderSet,
		// 后端网关（依赖 config）
		backend.ProviderSet,
		// 审核流程（依赖 backend, telegram）
		audit.ProviderSet,
		// 命令路由（依赖 audit, telegram）
		bot.ProviderSet,
		// 日志上传（依赖 backend）
		logship.ProviderSet,
		// 应用层
		bootstrap.ProviderSet,
	))
}
