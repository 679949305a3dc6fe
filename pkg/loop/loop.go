// Package loop runs a task repeatedly until it asks to stop, its context is
// cancelled, or the iteration limit is reached.
// use example:
//
//	l := loop.New(loop.WithContext(ctx), loop.WithErrorInterval(time.Second))
//	err := l.Do(func() (bool, error) { ... })
package loop

import (
	"context"
	"math"
	"time"
)

// Loop executes a task in a loop, pausing between iterations. After a failed
// iteration the pause grows by declineRatio, capped at declineLimit; a
// successful iteration resets it.
type Loop struct {
	maxTimes      uint64
	interval      time.Duration
	errorInterval time.Duration
	declineRatio  float64
	declineLimit  time.Duration
	ctx           context.Context
}

// Option configures a Loop.
type Option func(*Loop)

func New(options ...Option) *Loop {
	l := &Loop{
		maxTimes:      math.MaxUint64,
		interval:      time.Second,
		errorInterval: time.Second,
		declineRatio:  1,
		ctx:           context.Background(),
	}
	for _, op := range options {
		op(l)
	}
	return l
}

// Do executes f until it returns abort=true, the context is done or maxTimes
// iterations have run. The error of the aborting (or last) iteration is
// returned; context cancellation is not an error.
func (l *Loop) Do(f func() (abort bool, err error)) error {
	if l.ctx.Err() != nil {
		return nil
	}

	var (
		err     error
		abort   bool
		backoff = l.errorInterval
	)
	for i := uint64(0); i < l.maxTimes; i++ {
		abort, err = f()
		if abort {
			return err
		}

		wait := l.interval
		if err != nil {
			wait = backoff
			backoff = l.next(backoff)
		} else {
			backoff = l.errorInterval
		}

		if i+1 < l.maxTimes && l.sleep(wait) {
			return nil
		}
	}
	return err
}

// next returns the pause that follows a failure which waited d.
func (l *Loop) next(d time.Duration) time.Duration {
	n := time.Duration(float64(d) * l.declineRatio)
	if l.declineLimit > 0 && n > l.declineLimit {
		n = l.declineLimit
	}
	if n < 0 {
		n = l.declineLimit
	}
	return n
}

// sleep waits d and reports whether the context finished first.
func (l *Loop) sleep(d time.Duration) (aborted bool) {
	if d <= 0 {
		return l.ctx.Err() != nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return false
	case <-l.ctx.Done():
		return true
	}
}

// WithMaxTimes sets the maximum number of iterations, default is unlimited.
func WithMaxTimes(n uint64) Option {
	return func(l *Loop) {
		l.maxTimes = n
	}
}

// WithInterval sets the pause after a successful iteration. Zero runs the
// next iteration immediately.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d < 0 {
			return
		}
		l.interval = d
	}
}

// WithErrorInterval sets the first pause after a failed iteration.
func WithErrorInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d < 0 {
			return
		}
		l.errorInterval = d
	}
}

// WithDeclineRatio sets how much the error pause grows per consecutive
// failure, default is 1 (no growth).
func WithDeclineRatio(n float64) Option {
	return func(l *Loop) {
		if n < 1 {
			return
		}
		l.declineRatio = n
	}
}

// WithDeclineLimit caps the error pause, default is no limit.
func WithDeclineLimit(d time.Duration) Option {
	return func(l *Loop) {
		if d < 0 {
			return
		}
		l.declineLimit = d
	}
}

// WithContext sets the context that cancels the loop.
func WithContext(ctx context.Context) Option {
	return func(l *Loop) {
		if ctx != nil {
			l.ctx = ctx
		}
	}
}
