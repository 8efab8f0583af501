package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// Record is a captured log record with its attributes flattened.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is an slog.Handler that keeps every record it handles.
//
// Thread-safety: safe for concurrent use. Handlers derived through WithAttrs
// share the recorder's record list.
type LogRecorder struct {
	mu      *sync.Mutex
	records *[]Record
	attrs   []slog.Attr
}

// NewLogger returns a logger that records at Debug and above, and its
// recorder.
func NewLogger() (*slog.Logger, *LogRecorder) {
	r := &LogRecorder{mu: &sync.Mutex{}, records: &[]Record{}}
	return slog.New(r), r
}

// Enabled implements slog.Handler.
func (r *LogRecorder) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any, len(r.attrs)+rec.NumAttrs())
	for _, a := range r.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	*r.records = append(*r.records, Record{Level: rec.Level, Message: rec.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler.
func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogRecorder{
		mu:      r.mu,
		records: r.records,
		attrs:   append(append([]slog.Attr(nil), r.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler. Groups are not tracked.
func (r *LogRecorder) WithGroup(string) slog.Handler {
	return r
}

// Records returns a copy of the records handled so far.
func (r *LogRecorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), *r.records...)
}

// Messages returns the messages of records at level or above.
func (r *LogRecorder) Messages(level slog.Level) []string {
	var out []string
	for _, rec := range r.Records() {
		if rec.Level >= level {
			out = append(out, rec.Message)
		}
	}
	return out
}
