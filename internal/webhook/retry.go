package webhook

import (
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// StatusError is returned when the receiver answers with a non-2xx status
type StatusError struct {
	Code int
	Body string // first bytes of the response, for diagnostics
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("webhook returned status %d", e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Temporary reports whether the receiver may accept the same summary later.
// Rejections of the request itself (4xx other than 408 and 429) are final.
func (e *StatusError) Temporary() bool {
	switch e.Code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// wait returns the pause before the given retry (1-based). The base delay
// grows geometrically up to MaxDelay; the pause is drawn from its upper half
// so concurrent test-all runs reporting to one receiver spread out.
func (r *RetryConfig) wait(retry int) time.Duration {
	if retry < 1 || r.InitialDelay <= 0 {
		return 0
	}

	growth := math.Max(r.Multiplier, 1)
	base := float64(r.InitialDelay) * math.Pow(growth, float64(retry-1))
	if r.MaxDelay > 0 {
		base = math.Min(base, float64(r.MaxDelay))
	}

	half := base / 2
	return time.Duration(half + rand.Float64()*half)
}
