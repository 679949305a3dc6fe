// Package logship buffers the bot's own log records in memory and ships
// them to the backend in periodic batches.
package logship

import (
	"sync"
	"time"

	"github.com/shigurecafe/cafebot/internal/backend"
)

// SourceTag identifies this process in shipped records.
const SourceTag = "ShigureCafeBot"

// Buffer is an unbounded, mutex-guarded list of pending log records.
// It satisfies log.Sink so the logger can append to it directly.
type Buffer struct {
	mu      sync.Mutex
	records []backend.LogRecord
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append stores a record. Records keep their append order.
func (b *Buffer) Append(rec backend.LogRecord) {
	b.mu.Lock()
	b.records = append(b.records, rec)
	b.mu.Unlock()
}

// Write implements log.Sink.
func (b *Buffer) Write(level, content string, at time.Time) {
	b.Append(backend.LogRecord{
		Level:     level,
		Source:    SourceTag,
		Content:   content,
		Timestamp: at.UnixMilli(),
	})
}

// Drain removes and returns every pending record. An empty buffer yields nil.
func (b *Buffer) Drain() []backend.LogRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.records) == 0 {
		return nil
	}
	out := b.records
	b.records = nil
	return out
}

// Len reports the number of pending records.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
