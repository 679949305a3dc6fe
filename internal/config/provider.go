package config

import (
	"github.com/google/wire"

	"github.com/shigurecafe/cafebot/internal/backend"
	"github.com/shigurecafe/cafebot/internal/telegram"
	"github.com/shigurecafe/cafebot/pkg/log"
	"github.com/shigurecafe/cafebot/pkg/metrics"
)

// ProviderSet is a Wire provider set for configuration
var ProviderSet = wire.NewSet(
	NewConf,
	ProvideLogConfig,
	ProvideMetricsConfig,
	ProvideBackendOptions,
	ProvideTelegramOptions,
)

// NewConf loads configuration from confPath.
func NewConf(confPath string) (*AppConfig, error) {
	return Load(confPath)
}

// ProvideLogConfig 提供日志配置
func ProvideLogConfig(conf *AppConfig) *log.Conf {
	return &conf.Log
}

// ProvideMetricsConfig 提供 Metrics 配置
func ProvideMetricsConfig(conf *AppConfig) metrics.MetricsConfig {
	return conf.Metrics
}

// ProvideBackendOptions 提供后端网关配置
func ProvideBackendOptions(conf *AppConfig) backend.Options {
	return backend.Options{
		BaseURL: conf.Backend.APIBaseURL(),
		APIKey:  conf.Backend.APIKey,
		Timeout: conf.Backend.Timeout,
	}
}

// ProvideTelegramOptions 提供 Bot API 客户端配置
func ProvideTelegramOptions(conf *AppConfig) telegram.Options {
	return telegram.Options{
		BaseURL: conf.Bot.APIURL,
		Proxy:   conf.Bot.ProxyURL,
		Timeout: conf.Bot.Timeout,
	}
}
