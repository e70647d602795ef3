package upload

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// factories maps --upload-provider names to unconfigured providers
var factories = map[string]func() Provider{
	"minio": func() Provider { return NewMinioProvider() },
}

// NewProvider returns an unconfigured provider by name, ignoring case
func NewProvider(name string) (Provider, error) {
	factory, ok := factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown upload provider: %s (available: %s)", name, strings.Join(Names(), ", "))
	}
	return factory(), nil
}

// Names returns the provider names in sorted order
func Names() []string {
	return slices.Sorted(maps.Keys(factories))
}
