// Copyright 2026 Shigure Cafe Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
)

// Manager manages graceful shutdown state. The first call to Shutdown, or
// the first watched signal, cancels Context and closes Done.
type Manager struct {
	shuttingDown atomic.Bool
	reason       atomic.Value // string
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewManager creates a new shutdown manager derived from parent.
func NewManager(parent context.Context) *Manager {
	ctx, cancel := context.WithCancel(parent)
	return &Manager{ctx: ctx, cancel: cancel}
}

// Notify triggers shutdown when any of the given signals arrives.
func (m *Manager) Notify(signals ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			m.trigger(sig.String())
		case <-m.ctx.Done():
		}
	}()
}

// IsShuttingDown returns true if the service is shutting down
func (m *Manager) IsShuttingDown() bool {
	return m.shuttingDown.Load()
}

// Shutdown triggers graceful shutdown.
// Returns true if shutdown was triggered, false if already shutting down
func (m *Manager) Shutdown() bool {
	return m.trigger("requested")
}

func (m *Manager) trigger(reason string) bool {
	if !m.shuttingDown.CompareAndSwap(false, true) {
		return false
	}
	m.reason.Store(reason)
	m.cancel()
	return true
}

// Reason describes what triggered the shutdown, empty while running.
func (m *Manager) Reason() string {
	r, _ := m.reason.Load().(string)
	return r
}

// Context is cancelled once shutdown starts.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Done is closed once shutdown starts.
func (m *Manager) Done() <-chan struct{} {
	return m.ctx.Done()
}
