package logging

import (
	"log/slog"
	"os"
)

// Options holds configuration for creating loggers
type Options struct {
	Format    string     // "json" or "text"
	Level     slog.Level // log level
	QueueSize int        // relay queue capacity; 0 disables the queue
}

// NewLogger creates a new slog.Logger that writes to stdout. With a
// positive QueueSize the records are relayed through a QueueHandler; the
// returned close function drains it (a no-op otherwise).
func NewLogger(opts Options) (*slog.Logger, func()) {
	handlerOpts := &slog.HandlerOptions{
		Level: opts.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Rename timestamp key for better readability
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			return a
		},
	}

	var handler slog.Handler
	if opts.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}

	closeFn := func() {}
	if opts.QueueSize > 0 {
		q := NewQueueHandler(handler, opts.QueueSize)
		handler = q
		closeFn = q.Close
	}

	return slog.New(handler), closeFn
}

// ParseLevel converts a string log level to slog.Level
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
