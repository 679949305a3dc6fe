package bot

import (
	"github.com/google/wire"

	"github.com/shigurecafe/cafebot/internal/audit"
	"github.com/shigurecafe/cafebot/internal/telegram"
)

// ProviderSet is a Wire provider set for command routing
var ProviderSet = wire.NewSet(
	NewHandlers,
	ProvideRouter,
	wire.Bind(new(AuditHandler), new(*audit.Orchestrator)),
	wire.Bind(new(Replier), new(*telegram.Client)),
	wire.Bind(new(UpdateSource), new(*telegram.Client)),
)

// ProvideRouter builds a Router with every command registered.
func ProvideRouter(replier Replier, handlers *Handlers) *Router {
	r := NewRouter(replier)
	handlers.Register(r)
	return r
}
