package logging

import (
	"context"
	"log/slog"
	"sync"
)

// queueEntry pairs a record with the handler configured for it at enqueue
// time, so WithAttrs/WithGroup derivations keep their attributes across
// the queue boundary
type queueEntry struct {
	handler slog.Handler
	record  slog.Record
}

// QueueHandler relays log records over a bounded channel to a consumer
// goroutine draining into an inner handler. The hot path never blocks on
// the log sink; when the queue is full, records are dropped.
type QueueHandler struct {
	inner   slog.Handler
	entries chan queueEntry
	once    *sync.Once
	done    chan struct{}
}

// NewQueueHandler wraps inner with a relay queue of the given capacity
// and starts the consumer
func NewQueueHandler(inner slog.Handler, capacity int) *QueueHandler {
	if capacity <= 0 {
		capacity = 1024
	}
	h := &QueueHandler{
		inner:   inner,
		entries: make(chan queueEntry, capacity),
		once:    &sync.Once{},
		done:    make(chan struct{}),
	}
	go h.consume()
	return h
}

func (h *QueueHandler) consume() {
	defer close(h.done)
	for entry := range h.entries {
		// Delivery failures have nowhere to go
		_ = entry.handler.Handle(context.Background(), entry.record)
	}
}

// Enabled reports whether the inner handler handles records at the level
func (h *QueueHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle clones the record and enqueues it. The clone resolves shared
// state eagerly; the consumer may run long after the caller returns.
func (h *QueueHandler) Handle(ctx context.Context, record slog.Record) error {
	select {
	case h.entries <- queueEntry{handler: h.inner, record: record.Clone()}:
	default:
		// Queue full: dropping beats blocking the scheduler loop
	}
	return nil
}

// WithAttrs derives a handler sharing the same queue and consumer
func (h *QueueHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &QueueHandler{
		inner:   h.inner.WithAttrs(attrs),
		entries: h.entries,
		once:    h.once,
		done:    h.done,
	}
}

// WithGroup derives a handler sharing the same queue and consumer
func (h *QueueHandler) WithGroup(name string) slog.Handler {
	return &QueueHandler{
		inner:   h.inner.WithGroup(name),
		entries: h.entries,
		once:    h.once,
		done:    h.done,
	}
}

// Close stops accepting records and waits for the consumer to drain the
// queue. Safe to call once per handler family.
func (h *QueueHandler) Close() {
	h.once.Do(func() {
		close(h.entries)
	})
	<-h.done
}

var _ slog.Handler = (*QueueHandler)(nil)
