// Package kvconfig layers the free-form settings of the upload provider and
// the webhook into one map.
package kvconfig

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Sources lists where settings are read from, lowest priority first
type Sources struct {
	// EnvPrefix names a variable holding a JSON object and the PREFIX_KEY
	// variables that set one key each. The JSON variable is ignored when malformed.
	EnvPrefix string
	File      string   // path to a JSON object
	JSON      string   // inline JSON object
	Pairs     []string // key=value, value types inferred
}

// Build merges every source into one map with lower-cased keys.
// The result is never nil.
func (s Sources) Build() (map[string]any, error) {
	v := viper.New()
	v.SetConfigType("json")

	if s.EnvPrefix != "" {
		if raw := os.Getenv(s.EnvPrefix); raw != "" {
			_ = v.MergeConfig(strings.NewReader(raw))
		}
		if err := v.MergeConfigMap(envValues(s.EnvPrefix)); err != nil {
			return nil, err
		}
	}

	if s.File != "" {
		data, err := os.ReadFile(s.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%s: invalid JSON object: %w", s.File, err)
		}
	}

	if s.JSON != "" {
		if err := v.MergeConfig(strings.NewReader(s.JSON)); err != nil {
			return nil, fmt.Errorf("invalid JSON object: %w", err)
		}
	}

	if len(s.Pairs) > 0 {
		pairs := make(map[string]any, len(s.Pairs))
		for _, kv := range s.Pairs {
			key, value, err := parsePair(kv)
			if err != nil {
				return nil, err
			}
			pairs[key] = value
		}
		if err := v.MergeConfigMap(pairs); err != nil {
			return nil, err
		}
	}

	return v.AllSettings(), nil
}

// envValues collects PREFIX_FOO_BAR=1 as foo_bar: 1
func envValues(prefix string) map[string]any {
	values := make(map[string]any)
	prefix += "_"
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || value == "" || !strings.HasPrefix(name, prefix) {
			continue
		}
		values[strings.ToLower(strings.TrimPrefix(name, prefix))] = inferValue(value)
	}
	return values
}

func parsePair(kv string) (string, any, error) {
	key, value, ok := strings.Cut(kv, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid format, expected key=value: %s", kv)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", nil, fmt.Errorf("empty key in key=value pair: %s", kv)
	}
	return key, inferValue(strings.TrimSpace(value)), nil
}

// inferValue converts integers, floats and the literals true/false; anything else stays a string
func inferValue(s string) any {
	// Integers first so "1" is not read as boolean true
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	return s
}
