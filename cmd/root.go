package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zinc-sig/scriptkit/cmd/config"
	"github.com/zinc-sig/scriptkit/internal/catalog"
)

// EnvPrefix namespaces the environment variables bound to persistent flags
const EnvPrefix = "SCRIPTKIT"

var (
	v        = viper.New()
	settings config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "scriptkit",
	Short: "Generate sample scripts from templates and test them",
	Long: `scriptkit drives an external script template tool.

'generate' writes one sample script per template the tool offers into the
scripts directory. 'test-all' runs every script in that directory, records
each script's output next to it and prints a pass/fail summary.

Persistent flags can also be set through SCRIPTKIT_DIR, SCRIPTKIT_TOOL and
SCRIPTKIT_VERBOSE. Flags take precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// Execute runs the root command and exits with status 1 on error
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("dir", "scripts", "Directory holding the generated scripts")
	flags.String("tool", catalog.DefaultTool, "Template tool to query for templates and samples")
	flags.BoolP("verbose", "v", false, "Print execution details for every tool and script invocation")

	_ = v.BindPFlags(flags)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(testAllCmd)
}

func loadSettings(cmd *cobra.Command, args []string) error {
	settings = config.Settings{
		Dir:     v.GetString("dir"),
		Tool:    v.GetString("tool"),
		Verbose: v.GetBool("verbose"),
	}
	if settings.Dir == "" {
		return fmt.Errorf("scripts directory must not be empty")
	}
	if settings.Tool == "" {
		return fmt.Errorf("template tool must not be empty")
	}
	return nil
}
