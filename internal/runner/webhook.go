package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookRunner posts a JSON payload to the action URL when a task fires
type WebhookRunner struct {
	client *http.Client
}

// NewWebhookRunner creates a webhook runner. A nil client uses a default
// with a 30 second timeout.
func NewWebhookRunner(client *http.Client) *WebhookRunner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WebhookRunner{client: client}
}

// Name returns the runner's registry name
func (r *WebhookRunner) Name() string {
	return "webhook"
}

// Run posts to the action URL and fails on non-2xx responses
func (r *WebhookRunner) Run(ctx context.Context, action string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"event":    "task_fired",
		"fired_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, action, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("invalid webhook URL: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain a little of the body for the run detail
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxOutputDetail))
	detail := fmt.Sprintf("HTTP %d", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return detail, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}
	return detail, nil
}
