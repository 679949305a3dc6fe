package metrics

import (
	"github.com/google/wire"
)

// ProviderSet is a Wire provider set for metrics
var ProviderSet = wire.NewSet(
	NewMetricsServer,
)

// NewMetricsServer creates a metrics server from config with the bot and
// cron collectors registered.
func NewMetricsServer(config MetricsConfig) *Server {
	config.SetDefaults()
	server := NewServer(config)
	registry := server.GetRegistry()
	registry.MustRegister(botCollectors()...)
	registry.MustRegister(cronCollectors()...)
	return server
}
