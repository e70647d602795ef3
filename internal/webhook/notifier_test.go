package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zinc-sig/scriptkit/internal/console"
	"github.com/zinc-sig/scriptkit/internal/output"
)

// summaryOf builds the notification for a run of the given outcomes
func summaryOf(statuses ...string) *output.Notification {
	s := &output.Summary{}
	for i, status := range statuses {
		name := string(rune('a'+i)) + ".sh"
		r := output.ScriptResult{Name: name, Status: status}
		if r.Passed() {
			r.Artifact = output.OutputArtifact(name)
		} else {
			r.ExitCode = 1
			r.Artifact = output.FailArtifact(name)
		}
		s.Add(r)
	}
	return s.Notification("scripts")
}

// receiver records every request and answers with the queued statuses,
// then 200 once the queue is empty
type receiver struct {
	mu       sync.Mutex
	statuses []int
	bodies   [][]byte
	headers  []http.Header
}

func (rc *receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	rc.mu.Lock()
	rc.bodies = append(rc.bodies, body)
	rc.headers = append(rc.headers, r.Header.Clone())
	status := http.StatusOK
	if len(rc.statuses) > 0 {
		status, rc.statuses = rc.statuses[0], rc.statuses[1:]
	}
	rc.mu.Unlock()

	w.WriteHeader(status)
	if status >= 300 {
		_, _ = w.Write([]byte("summary rejected\n"))
	}
}

func (rc *receiver) attempts() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.bodies)
}

func fastRetry(n int) *RetryConfig {
	return &RetryConfig{MaxRetries: n, InitialDelay: 5 * time.Millisecond, MaxDelay: 20 * time.Millisecond, Multiplier: 2}
}

func TestNotifyDeliversSummary(t *testing.T) {
	rc := &receiver{}
	server := httptest.NewServer(rc)
	defer server.Close()

	var logs bytes.Buffer
	n := summaryOf("success", "success", "success", "failed")
	notifier := NewNotifier(&Config{URL: server.URL}, fastRetry(0), console.New(nil, &logs, true))

	if err := notifier.Notify(context.Background(), n); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if !n.WebhookSent || n.WebhookError != "" {
		t.Errorf("delivery not recorded: sent=%v error=%q", n.WebhookSent, n.WebhookError)
	}

	if rc.attempts() != 1 {
		t.Fatalf("attempts = %d, want 1", rc.attempts())
	}
	var got output.Notification
	if err := json.Unmarshal(rc.bodies[0], &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if got.Dir != "scripts" || got.Total != 4 || got.Passed != 3 || got.Failed != 1 {
		t.Errorf("counts = %+v", got)
	}
	if got.SuccessRate != "75.00%" {
		t.Errorf("success_rate = %q, want 75.00%%", got.SuccessRate)
	}
	if len(got.Scripts) != 4 || got.Scripts[3].Artifact != "d.sh.fail.txt" {
		t.Errorf("scripts = %+v", got.Scripts)
	}
	if strings.Contains(string(rc.bodies[0]), "webhook_") {
		t.Errorf("delivery status leaked into payload: %s", rc.bodies[0])
	}

	h := rc.headers[0]
	if h.Get("Content-Type") != "application/json" || h.Get("User-Agent") != "scriptkit" || h.Get("X-Scriptkit-Attempt") != "1" {
		t.Errorf("unexpected headers: %v", h)
	}
	if !strings.Contains(logs.String(), "Summary delivered") {
		t.Errorf("expected verbose delivery log, got %q", logs.String())
	}
}

func TestNotifyEmptyRun(t *testing.T) {
	rc := &receiver{}
	server := httptest.NewServer(rc)
	defer server.Close()

	n := summaryOf()
	if err := NewNotifier(&Config{URL: server.URL}, fastRetry(0), nil).Notify(context.Background(), n); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	body := string(rc.bodies[0])
	if !strings.Contains(body, `"success_rate":"N/A"`) || !strings.Contains(body, `"scripts":[]`) {
		t.Errorf("empty run payload = %s", body)
	}
}

func TestNotifyRejectedSummaryIsNotRetried(t *testing.T) {
	rc := &receiver{statuses: []int{http.StatusUnprocessableEntity}}
	server := httptest.NewServer(rc)
	defer server.Close()

	n := summaryOf("failed")
	err := NewNotifier(&Config{URL: server.URL}, fastRetry(3), nil).Notify(context.Background(), n)
	if err == nil {
		t.Fatal("expected error for rejected summary")
	}
	if rc.attempts() != 1 {
		t.Errorf("attempts = %d, a rejected summary must not be resent", rc.attempts())
	}
	if n.WebhookSent {
		t.Error("WebhookSent must stay false")
	}
	if n.WebhookError != "webhook returned status 422: summary rejected" {
		t.Errorf("WebhookError = %q", n.WebhookError)
	}
}

func TestNotifyRetriesUntilDelivered(t *testing.T) {
	rc := &receiver{statuses: []int{http.StatusServiceUnavailable, http.StatusTooManyRequests}}
	server := httptest.NewServer(rc)
	defer server.Close()

	n := summaryOf("success")
	if err := NewNotifier(&Config{URL: server.URL}, fastRetry(3), nil).Notify(context.Background(), n); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if rc.attempts() != 3 {
		t.Fatalf("attempts = %d, want 3", rc.attempts())
	}
	for i, h := range rc.headers {
		if want := string(rune('1' + i)); h.Get("X-Scriptkit-Attempt") != want {
			t.Errorf("attempt header %d = %q, want %s", i, h.Get("X-Scriptkit-Attempt"), want)
		}
	}
	if !bytes.Equal(rc.bodies[0], rc.bodies[2]) {
		t.Error("every attempt must carry the same summary")
	}
	if !n.WebhookSent {
		t.Error("WebhookSent should be set after a late success")
	}
}

func TestNotifyGivesUpAfterRetries(t *testing.T) {
	rc := &receiver{statuses: []int{502, 502, 502, 502}}
	server := httptest.NewServer(rc)
	defer server.Close()

	n := summaryOf("success")
	err := NewNotifier(&Config{URL: server.URL}, fastRetry(2), nil).Notify(context.Background(), n)
	if err == nil || !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("error = %v, want failure after 3 attempts", err)
	}
	if rc.attempts() != 3 {
		t.Errorf("attempts = %d, want 3", rc.attempts())
	}
	if !strings.Contains(n.WebhookError, "status 502") {
		t.Errorf("WebhookError = %q", n.WebhookError)
	}
}

func TestNotifyUnreachableReceiver(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	n := summaryOf("success")
	err := NewNotifier(&Config{URL: url}, fastRetry(1), nil).Notify(context.Background(), n)
	if err == nil {
		t.Fatal("expected error for closed receiver")
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("transport errors should be retried, got %v", err)
	}
	if n.WebhookError == "" {
		t.Error("WebhookError must be set")
	}
}

func TestNotifyTimeoutCoversRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	start := time.Now()
	n := summaryOf("success")
	err := NewNotifier(&Config{URL: server.URL, Timeout: 100 * time.Millisecond}, fastRetry(5), nil).Notify(context.Background(), n)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("error = %v, want timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 900*time.Millisecond {
		t.Errorf("delivery ran for %v past its timeout", elapsed)
	}
}

func TestNotifyCredentialsAndHeaders(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		header string
		want   string
	}{
		{name: "bearer", config: Config{AuthType: AuthBearer, AuthToken: "t0k"}, header: "Authorization", want: "Bearer t0k"},
		{name: "api key", config: Config{AuthType: AuthAPIKey, AuthToken: "k3y"}, header: "X-API-Key", want: "k3y"},
		{name: "custom header", config: Config{Headers: map[string]string{"X-Pipeline": "nightly"}}, header: "X-Pipeline", want: "nightly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := &receiver{}
			server := httptest.NewServer(rc)
			defer server.Close()

			cfg := tt.config
			cfg.URL = server.URL
			if err := NewNotifier(&cfg, fastRetry(0), nil).Notify(context.Background(), summaryOf("success")); err != nil {
				t.Fatalf("Notify() error = %v", err)
			}
			if got := rc.headers[0].Get(tt.header); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
			}
			if tt.config.AuthType == "" && rc.headers[0].Get("Authorization") != "" {
				t.Error("no credentials expected")
			}
		})
	}
}

func TestNewNotifierDefaults(t *testing.T) {
	cfg := &Config{URL: "http://example.invalid"}
	notifier := NewNotifier(cfg, nil, nil)

	if cfg.Method != http.MethodPost || cfg.Timeout != 30*time.Second {
		t.Errorf("config defaults = %+v", cfg)
	}
	if notifier.retry.MaxRetries != 3 {
		t.Errorf("retry defaults = %+v", notifier.retry)
	}
}
