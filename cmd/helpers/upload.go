package helpers

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/zinc-sig/scriptkit/cmd/config"
	"github.com/zinc-sig/scriptkit/internal/kvconfig"
	"github.com/zinc-sig/scriptkit/internal/upload"
)

// UploadEnvPrefix is read for SCRIPTKIT_UPLOAD_CONFIG (JSON) and SCRIPTKIT_UPLOAD_CONFIG_* variables
const UploadEnvPrefix = "SCRIPTKIT_UPLOAD_CONFIG"

// BuildUploadConfig builds upload configuration from all sources
func BuildUploadConfig(cfg *config.UploadConfig) (map[string]any, error) {
	result, err := kvconfig.Sources{
		EnvPrefix: UploadEnvPrefix,
		File:      cfg.ConfigFile,
		JSON:      cfg.Config,
		Pairs:     cfg.ConfigKV,
	}.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build upload config: %w", err)
	}
	return result, nil
}

// SetupUploadProvider creates and configures an upload provider.
// It returns a nil provider when no provider was requested.
func SetupUploadProvider(ctx context.Context, cfg *config.UploadConfig) (upload.Provider, map[string]any, error) {
	if cfg.Provider == "" {
		return nil, nil, nil
	}

	uploadConf, err := BuildUploadConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	provider, err := upload.NewProvider(cfg.Provider)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create upload provider: %w", err)
	}

	if err := provider.Configure(ctx, uploadConf); err != nil {
		return nil, nil, fmt.Errorf("failed to configure upload provider: %w", err)
	}

	return provider, uploadConf, nil
}

// PrintUploadInfo prints the merged upload configuration in verbose mode.
// Credentials are masked.
func PrintUploadInfo(w io.Writer, provider upload.Provider, config map[string]any) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Upload Provider: %s\n", provider.Name())
	fmt.Fprintln(w, "========================================")
	for _, key := range slices.Sorted(maps.Keys(config)) {
		value := config[key]
		if isCredential(key) {
			value = "****"
		}
		fmt.Fprintf(w, "%-16s%v\n", key+":", value)
	}
	fmt.Fprintln(w, "----------------------------------------")
}

func isCredential(key string) bool {
	return strings.HasSuffix(key, "_key") || strings.Contains(key, "secret") || strings.Contains(key, "token")
}
