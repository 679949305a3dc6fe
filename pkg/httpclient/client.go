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

// Package httpclient owns a lazily built resty client with an explicit
// lifecycle: built on first Get, reused afterwards, torn down by Close and
// rebuilt if Get is called again after Close.
package httpclient

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shigurecafe/cafebot/pkg/log"
)

// Shared holds one pooled client.
type Shared struct {
	name      string
	timeout   time.Duration
	proxy     string
	transport http.RoundTripper

	mu     sync.Mutex
	client *resty.Client
	closed bool
	builds int
}

type Option func(*Shared)

// WithName labels the client in log lines.
func WithName(name string) Option {
	return func(s *Shared) {
		s.name = name
	}
}

// WithTimeout sets the overall per-request timeout of the client.
// Zero leaves requests bounded only by their context.
func WithTimeout(d time.Duration) Option {
	return func(s *Shared) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithProxy routes every request through proxyURL when non-empty.
func WithProxy(proxyURL string) Option {
	return func(s *Shared) {
		s.proxy = proxyURL
	}
}

// WithTransport replaces the pooled transport, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Shared) {
		s.transport = rt
	}
}

func New(opts ...Option) *Shared {
	s := &Shared{name: "default"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the pooled client, building it on first use or after Close.
func (s *Shared) Get() *resty.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil || s.closed {
		s.client = s.build()
		s.closed = false
		s.builds++
		log.Debugw("http client created", "name", s.name, "builds", s.builds)
	}
	return s.client
}

// Close releases pooled connections. It is safe to call more than once and
// before the first Get.
func (s *Shared) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil || s.closed {
		return nil
	}
	s.client.GetClient().CloseIdleConnections()
	s.closed = true
	log.Infow("http client closed", "name", s.name)
	return nil
}

// IsClosed reports whether Close was called since the last build.
func (s *Shared) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client == nil || s.closed
}

func (s *Shared) build() *resty.Client {
	c := resty.New().
		SetLogger(log.RestyLogger()).
		SetTimeout(s.timeout)
	if s.transport != nil {
		c.SetTransport(s.transport)
	}
	if s.proxy != "" {
		c.SetProxy(s.proxy)
	}
	return c
}
