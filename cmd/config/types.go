package config

import "time"

// Settings holds the persistent flags shared by every command
type Settings struct {
	Dir     string
	Tool    string
	Verbose bool
}

// TestFlags holds test-all specific flags
type TestFlags struct {
	TimeoutStr  string
	Timeout     time.Duration
	Strict      bool
	SummaryFile string
}

// UploadConfig holds upload-related flags
type UploadConfig struct {
	Provider   string
	Config     string
	ConfigKV   []string
	ConfigFile string
}

// WebhookConfig holds the webhook config sources. The direct --webhook-*
// flags land in Overrides, and only when set on the command line.
type WebhookConfig struct {
	Config     string   // JSON string configuration
	ConfigKV   []string // key=value pairs
	ConfigFile string   // path to JSON config file

	Overrides map[string]any
}
