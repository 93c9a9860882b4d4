package runner

import (
	"context"
	"log/slog"
)

// LogRunner only logs the action; useful as a default and for dry runs
type LogRunner struct {
	logger *slog.Logger
}

// NewLogRunner creates a log runner
func NewLogRunner(logger *slog.Logger) *LogRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRunner{logger: logger}
}

// Name returns the runner's registry name
func (r *LogRunner) Name() string {
	return "log"
}

// Run logs the action and succeeds
func (r *LogRunner) Run(ctx context.Context, action string) (string, error) {
	r.logger.Info("Task fired",
		"component", "runner",
		"action", action)
	return action, nil
}
