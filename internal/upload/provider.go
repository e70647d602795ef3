package upload

import (
	"context"
	"io"
)

// Provider stores the result artifacts of a test-all run
type Provider interface {
	// Upload stores size bytes from reader under the artifact name.
	// A negative size means unknown.
	Upload(ctx context.Context, reader io.Reader, size int64, name string) error

	// Configure validates the merged config map and connects to the store
	Configure(ctx context.Context, config map[string]any) error

	Name() string
}
