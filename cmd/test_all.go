package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zinc-sig/scriptkit/cmd/config"
	"github.com/zinc-sig/scriptkit/cmd/helpers"
	"github.com/zinc-sig/scriptkit/internal/output"
	"github.com/zinc-sig/scriptkit/internal/tester"
	"github.com/zinc-sig/scriptkit/internal/webhook"
)

var (
	testFlags     config.TestFlags
	uploadFlags   config.UploadConfig
	webhookFlags  config.WebhookConfig
	webhookConfig *webhook.Config
	retryConfig   *webhook.RetryConfig
)

var testAllCmd = &cobra.Command{
	Use:   "test-all",
	Short: "Run every script and summarize the results",
	Long: `Run every regular file in the scripts directory, one at a time, with the
scripts directory as working directory.

A script that exits 0 has its stdout written to <name>.output.txt. Any other
outcome writes its stderr to <name>.fail.txt. Result files from earlier runs
are never executed and are replaced so each script keeps exactly one.

Script failures do not change the exit status unless --strict is set.`,
	Example: `  scriptkit test-all
  scriptkit test-all --timeout 30s --strict
  scriptkit test-all --upload-provider minio --upload-config-kv bucket=results
  scriptkit test-all --webhook-url https://ci.example.com/hooks/scripts`,
	Args:    cobra.NoArgs,
	PreRunE: prepareTestAll,
	RunE:    runTestAll,
}

func init() {
	helpers.SetupTestFlags(testAllCmd, &testFlags)
	helpers.SetupUploadFlags(testAllCmd, &uploadFlags)
	helpers.SetupWebhookFlags(testAllCmd, &webhookFlags)
}

func prepareTestAll(cmd *cobra.Command, args []string) error {
	var err error
	testFlags.Timeout, err = helpers.ParseTimeout(testFlags.TimeoutStr)
	if err != nil {
		return err
	}

	webhookFlags.Overrides = helpers.WebhookFlagOverrides(cmd.Flags())
	webhookConfig, retryConfig, err = helpers.ParseWebhookConfigToInternal(&webhookFlags)
	return err
}

func runTestAll(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reporter := helpers.NewReporter(cmd, settings.Verbose)

	// Check before any provider setup so a missing dir costs no network I/O
	if err := tester.CheckDir(settings.Dir); err != nil {
		return err
	}
	if err := checkSummaryPath(testFlags.SummaryFile, settings.Dir); err != nil {
		return err
	}

	provider, uploadConf, err := helpers.SetupUploadProvider(ctx, &uploadFlags)
	if err != nil {
		return err
	}
	if provider != nil && settings.Verbose {
		helpers.PrintUploadInfo(reporter.Err(), provider, uploadConf)
	}

	summary, err := tester.Run(ctx, tester.Options{
		Dir:      settings.Dir,
		Timeout:  testFlags.Timeout,
		Reporter: reporter,
		Uploader: provider,
	})
	if err != nil {
		return err
	}

	summary.Print(cmd.OutOrStdout())

	notification := summary.Notification(settings.Dir)
	helpers.Notify(ctx, webhookConfig, retryConfig, notification, reporter)

	if testFlags.SummaryFile != "" {
		if err := writeSummaryFile(testFlags.SummaryFile, notification); err != nil {
			return err
		}
	}

	if testFlags.Strict && summary.Failed > 0 {
		return fmt.Errorf("%d of %d scripts failed", summary.Failed, summary.Total)
	}
	return nil
}

// checkSummaryPath refuses a summary file that the next test-all would run as a script
func checkSummaryPath(summaryPath, dir string) error {
	if summaryPath == "" {
		return nil
	}
	parent, err := resolveDir(filepath.Dir(summaryPath))
	if err != nil {
		return err
	}
	scripts, err := resolveDir(dir)
	if err != nil {
		return err
	}
	if parent == scripts {
		return fmt.Errorf("summary file %s must not be inside the scripts directory %s", summaryPath, dir)
	}
	return nil
}

func resolveDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

func writeSummaryFile(path string, n *output.Notification) error {
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}
