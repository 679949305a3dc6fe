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

package log

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Sink receives a copy of every log entry at INFO and above.
// Write is called synchronously from the logging call and must not block.
type Sink interface {
	Write(level, content string, at time.Time)
}

// AttachSink tees the global logger into s, replacing any previous sink.
func AttachSink(s Sink) {
	current()
	mu.Lock()
	defer mu.Unlock()
	sink = s
	rebuild()
}

// DetachSink stops teeing into the current sink.
func DetachSink() {
	current()
	mu.Lock()
	defer mu.Unlock()
	sink = nil
	rebuild()
}

// sinkCore 把日志条目格式化为单行文本后交给 Sink
type sinkCore struct {
	zapcore.LevelEnabler
	sink   Sink
	fields []zapcore.Field
}

func newSinkCore(s Sink, level zapcore.LevelEnabler) zapcore.Core {
	return &sinkCore{LevelEnabler: level, sink: s}
}

func (c *sinkCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &sinkCore{LevelEnabler: c.LevelEnabler, sink: c.sink, fields: merged}
}

func (c *sinkCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *sinkCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}
	c.sink.Write(ent.Level.CapitalString(), formatContent(ent, enc.Fields), ent.Time)
	return nil
}

func (c *sinkCore) Sync() error {
	return nil
}

// formatContent renders "message key=value ..." with keys sorted, followed
// by the stack trace when one was captured.
func formatContent(ent zapcore.Entry, fields map[string]any) string {
	var b strings.Builder
	b.WriteString(ent.Message)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	if ent.Stack != "" {
		b.WriteString("\n")
		b.WriteString(ent.Stack)
	}
	return b.String()
}
