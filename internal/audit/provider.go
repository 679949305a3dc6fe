package audit

import (
	"github.com/google/wire"

	"github.com/shigurecafe/cafebot/internal/backend"
	"github.com/shigurecafe/cafebot/internal/telegram"
)

// ProviderSet is a Wire provider set for the audit flow. The invite issuer
// needs the configured group id and is provided by the caller.
var ProviderSet = wire.NewSet(
	NewOrchestrator,
	wire.Bind(new(RegistrationFetcher), new(*backend.Gateway)),
	wire.Bind(new(InviteCreator), new(*telegram.Client)),
)
