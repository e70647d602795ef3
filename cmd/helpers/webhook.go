package helpers

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/zinc-sig/scriptkit/cmd/config"
	"github.com/zinc-sig/scriptkit/internal/console"
	"github.com/zinc-sig/scriptkit/internal/kvconfig"
	"github.com/zinc-sig/scriptkit/internal/output"
	"github.com/zinc-sig/scriptkit/internal/webhook"
)

// WebhookEnvPrefix is read for SCRIPTKIT_WEBHOOK (JSON) and SCRIPTKIT_WEBHOOK_* variables
const WebhookEnvPrefix = "SCRIPTKIT_WEBHOOK"

const (
	defaultWebhookMethod     = "POST"
	defaultWebhookTimeout    = 30 * time.Second
	defaultWebhookRetries    = 3
	defaultWebhookRetryDelay = time.Second
)

// webhookSettings is the decoded form of the merged webhook configuration
type webhookSettings struct {
	URL        string            `mapstructure:"url"`
	Method     string            `mapstructure:"method"`
	AuthType   string            `mapstructure:"auth_type"`
	AuthToken  string            `mapstructure:"auth_token"`
	Timeout    time.Duration     `mapstructure:"timeout"`
	Retries    int               `mapstructure:"retries"`
	RetryDelay time.Duration     `mapstructure:"retry_delay"`
	Headers    map[string]string `mapstructure:"headers"`
}

// BuildWebhookConfig builds webhook configuration from all sources.
// Precedence: env < file < json < kv < direct flags
func BuildWebhookConfig(cfg *config.WebhookConfig) (map[string]any, error) {
	webhookConf, err := kvconfig.Sources{
		EnvPrefix: WebhookEnvPrefix,
		File:      cfg.ConfigFile,
		JSON:      cfg.Config,
		Pairs:     cfg.ConfigKV,
	}.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook config: %w", err)
	}
	maps.Copy(webhookConf, cfg.Overrides)
	return webhookConf, nil
}

// ParseWebhookConfigToInternal converts the merged webhook configuration to
// notifier settings. Both results are nil when no URL is configured.
func ParseWebhookConfigToInternal(cfg *config.WebhookConfig) (*webhook.Config, *webhook.RetryConfig, error) {
	configMap, err := BuildWebhookConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	v := viper.New()
	v.SetDefault("method", defaultWebhookMethod)
	v.SetDefault("auth_type", webhook.AuthNone)
	v.SetDefault("timeout", defaultWebhookTimeout)
	v.SetDefault("retries", defaultWebhookRetries)
	v.SetDefault("retry_delay", defaultWebhookRetryDelay)
	if err := v.MergeConfigMap(configMap); err != nil {
		return nil, nil, fmt.Errorf("invalid webhook config: %w", err)
	}

	// Durations arrive as strings and numbers as float64, int or string
	var s webhookSettings
	if err := v.Unmarshal(&s); err != nil {
		return nil, nil, fmt.Errorf("invalid webhook config: %w", err)
	}
	if s.URL == "" {
		return nil, nil, nil
	}

	s.Method = strings.ToUpper(s.Method)
	switch s.Method {
	case "POST", "PUT", "PATCH":
	default:
		return nil, nil, fmt.Errorf("invalid webhook method %q (want POST, PUT or PATCH)", s.Method)
	}
	switch s.AuthType {
	case webhook.AuthNone, webhook.AuthBearer, webhook.AuthAPIKey:
	default:
		return nil, nil, fmt.Errorf("invalid webhook auth type %q (want none, bearer or api-key)", s.AuthType)
	}
	if s.Retries < 0 {
		return nil, nil, fmt.Errorf("webhook retries must not be negative")
	}
	if s.Timeout <= 0 {
		return nil, nil, fmt.Errorf("webhook timeout must be positive")
	}

	webhookConfig := &webhook.Config{
		URL:       s.URL,
		Method:    s.Method,
		Headers:   s.Headers,
		Timeout:   s.Timeout,
		AuthType:  s.AuthType,
		AuthToken: s.AuthToken,
	}
	retryConfig := &webhook.RetryConfig{
		MaxRetries:   s.Retries,
		InitialDelay: s.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	return webhookConfig, retryConfig, nil
}

// Notify sends the notification and records the delivery outcome on it.
// Failures are reported as warnings only.
func Notify(ctx context.Context, cfg *webhook.Config, retry *webhook.RetryConfig, n *output.Notification, reporter *console.Reporter) {
	if cfg == nil {
		return
	}
	if reporter == nil {
		reporter = console.New(nil, nil, false)
	}

	reporter.Debugf("[WEBHOOK] Sending summary to %s", cfg.URL)
	if err := webhook.NewNotifier(cfg, retry, reporter).Notify(ctx, n); err != nil {
		reporter.Warnf("[WEBHOOK] %v", err)
	}
}
