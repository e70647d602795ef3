// Package webhook delivers test-all summaries to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zinc-sig/scriptkit/internal/console"
	"github.com/zinc-sig/scriptkit/internal/output"
)

const (
	// attemptTimeout bounds a single request within the overall delivery timeout
	attemptTimeout = 10 * time.Second

	// maxErrorBody caps how much of a rejected response ends up in the error
	maxErrorBody = 512

	userAgent = "scriptkit"
)

// Notifier posts test-all summaries
type Notifier struct {
	httpClient *http.Client
	config     *Config
	retry      *RetryConfig
	reporter   *console.Reporter
}

// NewNotifier creates a Notifier. Nil retry settings mean DefaultRetryConfig;
// a nil reporter discards progress messages.
func NewNotifier(config *Config, retry *RetryConfig, reporter *console.Reporter) *Notifier {
	if config.Method == "" {
		config.Method = http.MethodPost
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if retry == nil {
		retry = DefaultRetryConfig()
	}
	if reporter == nil {
		reporter = console.New(nil, nil, false)
	}

	return &Notifier{
		httpClient: &http.Client{Timeout: attemptTimeout},
		config:     config,
		retry:      retry,
		reporter:   reporter,
	}
}

// Notify delivers n and records the outcome in n.WebhookSent or
// n.WebhookError. The delivered payload never carries those two fields.
func (c *Notifier) Notify(ctx context.Context, n *output.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		err = fmt.Errorf("failed to encode summary: %w", err)
		n.WebhookError = err.Error()
		return err
	}

	if err := c.deliver(ctx, body); err != nil {
		n.WebhookError = err.Error()
		return err
	}
	n.WebhookSent = true
	return nil
}

func (c *Notifier) deliver(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	attempts := c.retry.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			pause := c.retry.wait(attempt - 1)
			c.reporter.Debugf("[WEBHOOK] Retry %d/%d in %v: %v", attempt-1, c.retry.MaxRetries, pause, lastErr)

			timer := time.NewTimer(pause)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("webhook timed out after %d attempts: %w", attempt-1, lastErr)
			}
		}

		lastErr = c.send(ctx, body, attempt)
		if lastErr == nil {
			c.reporter.Debugf("[WEBHOOK] Summary delivered to %s (attempt %d)", c.config.URL, attempt)
			return nil
		}

		var statusErr *StatusError
		if errors.As(lastErr, &statusErr) && !statusErr.Temporary() {
			return lastErr
		}
		if ctx.Err() != nil {
			return fmt.Errorf("webhook timed out after %d attempts: %w", attempt, lastErr)
		}
	}

	return fmt.Errorf("webhook failed after %d attempts: %w", attempts, lastErr)
}

// send performs one attempt. Transport failures are returned as is and
// non-2xx answers as *StatusError.
func (c *Notifier) send(ctx context.Context, body []byte, attempt int) error {
	req, err := http.NewRequestWithContext(ctx, c.config.Method, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Scriptkit-Attempt", strconv.Itoa(attempt))
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	c.config.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_, _ = io.Copy(io.Discard, resp.Body)
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
}
