package log

import (
	"github.com/google/wire"
	"go.uber.org/zap"
)

// ProviderSet is a Wire provider set for logging
var ProviderSet = wire.NewSet(
	ProvideLogger,
)

// ProvideLogger initialises the global logger from conf. The cleanup flushes
// buffered entries.
func ProvideLogger(conf *Conf) (*zap.Logger, func(), error) {
	logger, err := NewLog(conf)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = Sync() }, nil
}
