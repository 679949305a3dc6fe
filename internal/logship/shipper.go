package logship

import (
	"context"
	"errors"
	"time"

	"github.com/shigurecafe/cafebot/internal/backend"
	"github.com/shigurecafe/cafebot/pkg/cron"
	"github.com/shigurecafe/cafebot/pkg/log"
	"github.com/shigurecafe/cafebot/pkg/metrics"
)

const (
	// DefaultInterval is the period between shipping ticks.
	DefaultInterval = 5 * time.Second

	jobName = "log-shipper"
)

// Uploader delivers a batch of records to the backend.
type Uploader interface {
	UploadLogs(ctx context.Context, records []backend.LogRecord) error
}

// Shipper drains the Buffer on a fixed period and uploads what it finds.
// A failed batch is dropped, never re-queued.
type Shipper struct {
	buffer    *Buffer
	uploader  Uploader
	interval  time.Duration
	scheduler *cron.Scheduler
}

func NewShipper(buffer *Buffer, uploader Uploader, interval time.Duration) *Shipper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Shipper{
		buffer:   buffer,
		uploader: uploader,
		interval: interval,
	}
}

// Interval returns the effective shipping period.
func (s *Shipper) Interval() time.Duration {
	return s.interval
}

// Tick drains the buffer once and uploads the batch. It never returns an
// error: an empty drain does nothing, and upload failures are logged after
// the batch has been discarded so the failure itself lands in the next batch.
func (s *Shipper) Tick(ctx context.Context) {
	records := s.buffer.Drain()
	if len(records) == 0 {
		return
	}

	if err := s.uploader.UploadLogs(ctx, records); err != nil {
		metrics.RecordLogBatch(metrics.BatchDropped, len(records))
		if errors.Is(err, backend.ErrTransport) {
			log.Errorw("failed to upload logs", "records", len(records), "error", err)
		} else {
			log.Errorw("unexpected error while uploading logs", "records", len(records), "error", err)
		}
		return
	}
	metrics.RecordLogBatch(metrics.BatchShipped, len(records))
	// debug 级别不会进入缓冲区，避免每个批次再产生一条日志
	log.Debugw("log batch shipped", "records", len(records))
}

// Start registers the shipping job on scheduler and starts it.
func (s *Shipper) Start(scheduler *cron.Scheduler) error {
	if err := scheduler.AddFunc(cron.Every(s.interval), func() {
		s.Tick(context.Background())
	}, jobName); err != nil {
		return err
	}
	s.scheduler = scheduler
	scheduler.Start()
	log.Infow("log shipper started", "interval", s.interval, "next_tick", scheduler.Next())
	return nil
}

// Stop halts the schedule, waits for an in-flight tick and makes one final
// best-effort flush bounded by ctx.
func (s *Shipper) Stop(ctx context.Context) {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.Tick(ctx)
}
