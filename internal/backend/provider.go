package backend

import (
	"github.com/google/wire"

	"github.com/shigurecafe/cafebot/pkg/httpclient"
	"github.com/shigurecafe/cafebot/pkg/log"
)

// ProviderSet is a Wire provider set for the backend gateway
var ProviderSet = wire.NewSet(
	NewSharedClient,
	NewGateway,
)

// NewSharedClient provides the pooled HTTP client used for backend calls.
// The returned cleanup closes it.
func NewSharedClient() (*httpclient.Shared, func()) {
	shared := httpclient.New(httpclient.WithName("backend"))
	return shared, func() {
		if err := shared.Close(); err != nil {
			log.Warnw("failed to close backend client", "error", err)
		}
	}
}
