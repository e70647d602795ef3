package output

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ScriptResult records the outcome of a single tested script
type ScriptResult struct {
	Name          string `json:"name"`
	Status        string `json:"status"`
	ExitCode      int    `json:"exit_code"`
	ExecutionTime int64  `json:"execution_time"` // milliseconds
	Artifact      string `json:"artifact"`
}

// Passed reports whether the script exited successfully
func (r ScriptResult) Passed() bool {
	return r.Status == "success"
}

// Summary aggregates the results of a test-all run
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Scripts []ScriptResult
}

// Add records a script result and updates the counters
func (s *Summary) Add(result ScriptResult) {
	s.Total++
	if result.Passed() {
		s.Passed++
	} else {
		s.Failed++
	}
	s.Scripts = append(s.Scripts, result)
}

// Percentage returns 100*Passed/Total rounded to two places.
// The second return value is false when no scripts were run.
func (s *Summary) Percentage() (decimal.Decimal, bool) {
	if s.Total == 0 {
		return decimal.Zero, false
	}
	passed := decimal.NewFromInt(int64(s.Passed))
	total := decimal.NewFromInt(int64(s.Total))
	return passed.Mul(hundred).Div(total).Round(2), true
}

// Rate formats the success percentage, e.g. "75.00%", or "N/A" for an empty run
func (s *Summary) Rate() string {
	pct, ok := s.Percentage()
	if !ok {
		return "N/A"
	}
	return pct.StringFixed(2) + "%"
}

// Print writes the human-readable summary block
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Test Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Total:        %d\n", s.Total)
	fmt.Fprintf(w, "Passed:       %d\n", s.Passed)
	fmt.Fprintf(w, "Failed:       %d\n", s.Failed)
	fmt.Fprintf(w, "Success Rate: %s\n", s.Rate())
	fmt.Fprintln(w, "========================================")
}

// Notification is the payload delivered to a webhook after a test-all run
type Notification struct {
	Dir         string         `json:"dir"`
	Total       int            `json:"total"`
	Passed      int            `json:"passed"`
	Failed      int            `json:"failed"`
	SuccessRate string         `json:"success_rate"`
	Scripts     []ScriptResult `json:"scripts"`

	// Only set on the local copy
	WebhookSent  bool   `json:"webhook_sent,omitempty"`
	WebhookError string `json:"webhook_error,omitempty"`
}

// Notification builds the webhook payload for this summary
func (s *Summary) Notification(dir string) *Notification {
	scripts := s.Scripts
	if scripts == nil {
		scripts = []ScriptResult{}
	}
	return &Notification{
		Dir:         dir,
		Total:       s.Total,
		Passed:      s.Passed,
		Failed:      s.Failed,
		SuccessRate: s.Rate(),
		Scripts:     scripts,
	}
}
