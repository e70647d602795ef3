package helpers

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/zinc-sig/scriptkit/cmd/config"
	"github.com/zinc-sig/scriptkit/internal/webhook"
)

// SetupTestFlags adds test-all execution flags to a command
func SetupTestFlags(cmd *cobra.Command, flags *config.TestFlags) {
	cmd.Flags().StringVarP(&flags.TimeoutStr, "timeout", "t", "", "Per-script timeout (e.g., 30s, 2m, 500ms)")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "Exit with status 1 when any script fails")
	cmd.Flags().StringVar(&flags.SummaryFile, "summary-file", "", "Also write the summary as JSON to this path")
}

// SetupUploadFlags adds upload-related flags to a command
func SetupUploadFlags(cmd *cobra.Command, cfg *config.UploadConfig) {
	cmd.Flags().StringVar(&cfg.Provider, "upload-provider", "", "Upload provider type (e.g., minio)")
	cmd.Flags().StringVar(&cfg.Config, "upload-config", "", "Upload configuration as JSON string")
	cmd.Flags().StringArrayVar(&cfg.ConfigKV, "upload-config-kv", nil, "Upload config key=value pairs (can be used multiple times)")
	cmd.Flags().StringVar(&cfg.ConfigFile, "upload-config-file", "", "Path to JSON file containing upload configuration")
}

// webhookFlagKeys maps the direct webhook flags to their config keys
var webhookFlagKeys = map[string]string{
	"webhook-url":         "url",
	"webhook-method":      "method",
	"webhook-auth-type":   "auth_type",
	"webhook-auth-token":  "auth_token",
	"webhook-retries":     "retries",
	"webhook-retry-delay": "retry_delay",
	"webhook-timeout":     "timeout",
}

// SetupWebhookFlags adds webhook-related flags to a command
func SetupWebhookFlags(cmd *cobra.Command, cfg *config.WebhookConfig) {
	f := cmd.Flags()
	f.String("webhook-url", "", "Webhook URL to send the summary to")
	f.String("webhook-method", defaultWebhookMethod, "HTTP method to use: POST, PUT, PATCH")
	f.String("webhook-auth-type", webhook.AuthNone, "Authentication type: none, bearer, api-key")
	f.String("webhook-auth-token", "", "Authentication token (use with --webhook-auth-type)")
	f.Int("webhook-retries", defaultWebhookRetries, "Maximum webhook retry attempts (0 = no retries)")
	f.Duration("webhook-retry-delay", defaultWebhookRetryDelay, "Initial delay between webhook retries")
	f.Duration("webhook-timeout", defaultWebhookTimeout, "Total timeout for webhook including retries")

	f.StringVar(&cfg.Config, "webhook-config", "", "Webhook configuration as JSON string")
	f.StringArrayVar(&cfg.ConfigKV, "webhook-config-kv", nil, "Webhook config key=value pairs (can be used multiple times)")
	f.StringVar(&cfg.ConfigFile, "webhook-config-file", "", "Path to JSON file containing webhook configuration")
}

// WebhookFlagOverrides returns the direct webhook flags set on the command
// line, keyed like the other webhook config sources
func WebhookFlagOverrides(fs *pflag.FlagSet) map[string]any {
	overrides := make(map[string]any)
	fs.Visit(func(f *pflag.Flag) {
		if key, ok := webhookFlagKeys[f.Name]; ok {
			overrides[key] = f.Value.String()
		}
	})
	return overrides
}
