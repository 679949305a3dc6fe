package logship

import (
	"github.com/google/wire"

	"github.com/shigurecafe/cafebot/internal/backend"
)

// ProviderSet is a Wire provider set for log shipping. The shipper interval
// comes from configuration and is provided by the caller.
var ProviderSet = wire.NewSet(
	NewBuffer,
	wire.Bind(new(Uploader), new(*backend.Gateway)),
)
