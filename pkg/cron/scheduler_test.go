package cron

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shigurecafe/cafebot/pkg/metrics"
)

func TestEvery(t *testing.T) {
	assert.Equal(t, "@every 5s", Every(5*time.Second))
	assert.Equal(t, "@every 1s", Every(100*time.Millisecond))
	assert.Equal(t, "@every 90s", Every(90*time.Second+500*time.Millisecond))
}

func TestAddFunc_Validation(t *testing.T) {
	s := New()

	assert.ErrorIs(t, s.AddFunc("@every 1s", func() {}, ""), ErrEmptyName)
	require.NoError(t, s.AddFunc("@every 1s", func() {}, "b"))
	require.NoError(t, s.AddFunc("@every 1s", func() {}, "a"))
	assert.ErrorIs(t, s.AddFunc("@every 1s", func() {}, "a"), ErrDuplicateName)
	assert.Error(t, s.AddFunc("not a spec", func() {}, "c"))

	assert.Equal(t, []string{"a", "b"}, s.jobNames())
}

func TestScheduler_Runs(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.AddFunc("@every 1s", func() { runs.Add(1) }, "counter"))
	assert.True(t, s.Next().IsZero(), "no activation before start")

	s.Start()
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	assert.False(t, s.Next().IsZero())
}

func TestWrap_SkipsOverlap(t *testing.T) {
	s := New()
	s.Start()
	defer s.Stop()

	release := make(chan struct{})
	entered := make(chan struct{})
	var runs atomic.Int32

	job := s.wrap("overlap-test", func() {
		runs.Add(1)
		close(entered)
		<-release
	})

	before := testutil.ToFloat64(metrics.CronJobSkippedTotal.WithLabelValues("overlap-test"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		job()
	}()
	<-entered

	job()
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CronJobSkippedTotal.WithLabelValues("overlap-test")))
}

func TestWrap_RecoversPanic(t *testing.T) {
	s := New()
	s.Start()
	defer s.Stop()
	job := s.wrap("panic-test", func() { panic("boom") })

	assert.NotPanics(t, job)
	assert.NotPanics(t, job, "in-flight flag is released after a panic")
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.CronJobRunsTotal.WithLabelValues("panic-test")))
}

func TestWrap_IgnoredWhenStopped(t *testing.T) {
	s := New()
	var runs atomic.Int32
	job := s.wrap("stopped-test", func() { runs.Add(1) })

	job()
	s.Start()
	s.Stop()
	job()

	assert.Zero(t, runs.Load())
}

func TestStop_WaitsForRun(t *testing.T) {
	s := New()
	s.Start()
	entered := make(chan struct{})
	var finished atomic.Bool
	job := s.wrap("slow", func() {
		close(entered)
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
	})

	go job()
	<-entered

	s.Stop()
	assert.True(t, finished.Load(), "Stop returned before the in-flight run finished")
}

func TestStop_AtFiringInstant(t *testing.T) {
	for trial := 0; trial < 3; trial++ {
		s := New()
		var stopped atomic.Bool
		var late atomic.Int32
		require.NoError(t, s.AddFunc("@every 1s", func() {
			if stopped.Load() {
				late.Add(1)
			}
		}, "edge"))

		s.Start()
		var next time.Time
		require.Eventually(t, func() bool {
			next = s.Next()
			return !next.IsZero()
		}, time.Second, 10*time.Millisecond)

		time.Sleep(time.Until(next))
		s.Stop()
		stopped.Store(true)

		time.Sleep(200 * time.Millisecond)
		assert.Zero(t, late.Load(), "trial %d: a run executed after Stop returned", trial)
	}
}
