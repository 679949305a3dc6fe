package bot

import (
	"context"
	"sync"
	"time"

	"github.com/shigurecafe/cafebot/internal/telegram"
	"github.com/shigurecafe/cafebot/pkg/log"
	"github.com/shigurecafe/cafebot/pkg/loop"
	"github.com/shigurecafe/cafebot/pkg/safe"
)

const (
	// DefaultPollTimeout is the long-poll window in seconds.
	DefaultPollTimeout = 30

	pollErrorInterval = time.Second
	pollErrorLimit    = 30 * time.Second
)

// UpdateSource yields new updates from the chat platform.
type UpdateSource interface {
	GetUpdates(ctx context.Context, params telegram.GetUpdatesParams) ([]telegram.Update, error)
}

// Poller long-polls for updates and dispatches each on its own goroutine.
type Poller struct {
	source  UpdateSource
	router  *Router
	timeout int
	offset  int64
	wg      sync.WaitGroup
}

func NewPoller(source UpdateSource, router *Router, timeout int) *Poller {
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	return &Poller{source: source, router: router, timeout: timeout}
}

// Run polls until ctx is cancelled. Polling errors back off and retry.
// Handlers run detached from ctx so replies in flight at shutdown still go
// out; call Wait to let them finish.
func (p *Poller) Run(ctx context.Context) error {
	handlerCtx := context.WithoutCancel(ctx)

	l := loop.New(
		loop.WithContext(ctx),
		loop.WithInterval(0),
		loop.WithErrorInterval(pollErrorInterval),
		loop.WithDeclineRatio(2),
		loop.WithDeclineLimit(pollErrorLimit),
	)
	err := l.Do(func() (bool, error) {
		updates, err := p.source.GetUpdates(ctx, telegram.GetUpdatesParams{
			Offset:         p.offset,
			Timeout:        p.timeout,
			AllowedUpdates: []string{"message"},
		})
		if ctx.Err() != nil {
			return true, nil
		}
		if err != nil {
			log.Warnw("failed to fetch updates", "error", err)
			return false, err
		}

		for _, update := range updates {
			update := update
			if update.UpdateID >= p.offset {
				p.offset = update.UpdateID + 1
			}
			p.wg.Add(1)
			safe.Go(func() {
				defer p.wg.Done()
				p.router.Dispatch(handlerCtx, update)
			})
		}
		return false, nil
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Wait blocks until every dispatched update has been handled.
func (p *Poller) Wait() {
	p.wg.Wait()
}
