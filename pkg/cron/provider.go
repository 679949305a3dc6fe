package cron

import "github.com/google/wire"

// ProviderSet is a Wire provider set for the job scheduler
var ProviderSet = wire.NewSet(
	ProvideScheduler,
)

// ProvideScheduler creates a scheduler whose cleanup stops it.
func ProvideScheduler() (*Scheduler, func()) {
	s := New()
	return s, s.Stop
}
