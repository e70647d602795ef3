package webhook

import (
	"net/http"
	"time"
)

const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthAPIKey = "api-key"
)

// Config describes where and how a test-all summary is delivered
type Config struct {
	URL       string
	Method    string            // POST, PUT or PATCH; empty means POST
	Headers   map[string]string // sent with every attempt
	Timeout   time.Duration     // bounds the whole delivery, retries included
	AuthType  string
	AuthToken string
}

// authorize sets the credential header for the configured auth type
func (c *Config) authorize(req *http.Request) {
	switch c.AuthType {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	case AuthAPIKey:
		req.Header.Set("X-API-Key", c.AuthToken)
	}
}

// RetryConfig controls how often a failed delivery is repeated
type RetryConfig struct {
	MaxRetries   int // 0 delivers once
	InitialDelay time.Duration
	MaxDelay     time.Duration // 0 means uncapped
	Multiplier   float64       // values below 1 keep the delay constant
}

// DefaultRetryConfig returns the retry settings used when none are given
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}
