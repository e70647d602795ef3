package helpers

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zinc-sig/scriptkit/internal/console"
)

// NewReporter builds a console reporter on the command's configured writers
func NewReporter(cmd *cobra.Command, verbose bool) *console.Reporter {
	return console.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), verbose)
}

// ParseTimeout parses and validates a timeout duration string
func ParseTimeout(timeoutStr string) (time.Duration, error) {
	if timeoutStr == "" {
		return 0, nil
	}

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout duration: %w", err)
	}

	if timeout <= 0 {
		return 0, fmt.Errorf("timeout must be positive")
	}

	return timeout, nil
}
