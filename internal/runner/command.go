package runner

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultCommandTimeout = 60 * time.Second
	maxOutputDetail       = 512
)

// CommandRunner executes the action as a shell command line
type CommandRunner struct {
	timeout time.Duration
}

// NewCommandRunner creates a command runner. A non-positive timeout uses
// the default.
func NewCommandRunner(timeout time.Duration) *CommandRunner {
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return &CommandRunner{timeout: timeout}
}

// Name returns the runner's registry name
func (r *CommandRunner) Name() string {
	return "command"
}

// Run executes the command line and returns its trimmed combined output
func (r *CommandRunner) Run(ctx context.Context, action string) (string, error) {
	if strings.TrimSpace(action) == "" {
		return "", fmt.Errorf("command runner: empty command line")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", action)
	output, err := cmd.CombinedOutput()
	detail := truncate(strings.TrimSpace(string(output)), maxOutputDetail)
	if err != nil {
		return detail, fmt.Errorf("command failed: %w", err)
	}
	return detail, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
