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

// Package cron runs named periodic jobs on top of robfig/cron. A job never
// overlaps with itself: a tick that fires while the previous run is still in
// flight is skipped and counted.
package cron

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	rcron "github.com/robfig/cron"

	"github.com/shigurecafe/cafebot/pkg/log"
	"github.com/shigurecafe/cafebot/pkg/metrics"
	"github.com/shigurecafe/cafebot/pkg/safe"
)

var (
	ErrDuplicateName = errors.New("cron job name already registered")
	ErrEmptyName     = errors.New("cron job name is empty")
)

// Scheduler owns a robfig/cron instance and the jobs registered on it.
type Scheduler struct {
	mu      sync.Mutex
	cron    *rcron.Cron
	names   map[string]struct{}
	running sync.WaitGroup
	started bool
}

func New() *Scheduler {
	c := rcron.New()
	c.ErrorLog = log.StdLogger()
	return &Scheduler{cron: c, names: make(map[string]struct{})}
}

// Every returns the "@every" spec for d, rounded down to whole seconds.
func Every(d time.Duration) string {
	if d < time.Second {
		d = time.Second
	}
	return fmt.Sprintf("@every %ds", int64(d/time.Second))
}

// AddFunc registers cmd under name. Panics inside cmd are recovered and logged.
func (s *Scheduler) AddFunc(spec string, cmd func(), name string) error {
	if name == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	if err := s.cron.AddFunc(spec, s.wrap(name, cmd)); err != nil {
		return fmt.Errorf("add cron job %s: %w", name, err)
	}
	s.names[name] = struct{}{}
	return nil
}

func (s *Scheduler) wrap(name string, cmd func()) func() {
	var inFlight atomic.Bool
	return func() {
		// Add 与 Stop 中的 Wait 由 mu 串行化，停止后触发的运行直接丢弃
		s.mu.Lock()
		if !s.started {
			s.mu.Unlock()
			return
		}
		s.running.Add(1)
		s.mu.Unlock()
		defer s.running.Done()

		if !inFlight.CompareAndSwap(false, true) {
			metrics.RecordCronJobSkipped(name)
			log.Debugw("cron job still running, skipping tick", "job", name)
			return
		}
		defer inFlight.Store(false)

		start := time.Now()
		safe.Do(cmd)
		metrics.RecordCronJobRun(name, time.Since(start))
	}
}

// Start begins firing registered jobs. It is a no-op when already started.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	log.Infow("cron scheduler started", "jobs", s.jobNames())
}

// Stop halts the schedule and waits for in-flight runs to return. No run
// starts after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.started {
		s.started = false
		s.cron.Stop()
	}
	s.mu.Unlock()
	s.running.Wait()
}

// jobNames must be called with mu held.
func (s *Scheduler) jobNames() []string {
	names := make([]string, 0, len(s.names))
	for n := range s.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Next returns the next scheduled activation across all jobs, or the zero
// time when the scheduler is not running.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	var next time.Time
	if !s.started {
		return next
	}
	for _, e := range s.cron.Entries() {
		if e.Next.IsZero() {
			continue
		}
		if next.IsZero() || e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}
