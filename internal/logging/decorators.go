package logging

import (
	"context"
	"log/slog"
	"time"

	"tempo/internal/runner"
)

// RunnerLogger wraps a Runner and logs all runs
type RunnerLogger struct {
	inner  runner.Runner
	logger *slog.Logger
}

// NewRunnerLogger creates a new logging decorator for a runner
func NewRunnerLogger(inner runner.Runner, logger *slog.Logger) runner.Runner {
	return &RunnerLogger{
		inner:  inner,
		logger: logger.With("interface", "Runner", "runner", inner.Name()),
	}
}

// Name returns the wrapped runner's name
func (l *RunnerLogger) Name() string {
	return l.inner.Name()
}

// Run logs the call, delegates, and logs the outcome with timing
func (l *RunnerLogger) Run(ctx context.Context, action string) (string, error) {
	start := time.Now()
	l.logger.Info("Run called",
		"action", action)

	detail, err := l.inner.Run(ctx, action)
	duration := time.Since(start)

	if err != nil {
		l.logger.Error("Run failed",
			"action", action,
			"duration", duration,
			"error", err)
		return detail, err
	}

	l.logger.Info("Run completed",
		"action", action,
		"duration", duration,
		"detail", detail)

	return detail, nil
}
