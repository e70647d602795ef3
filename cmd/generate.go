package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zinc-sig/scriptkit/cmd/helpers"
	"github.com/zinc-sig/scriptkit/internal/catalog"
	"github.com/zinc-sig/scriptkit/internal/generator"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write one sample script per available template",
	Long: `Ask the template tool for its template list and write one executable
sample script per template into the scripts directory.

Nothing is touched when the scripts directory already exists. A template whose
sample cannot be produced is reported and skipped.`,
	Example: `  scriptkit generate
  scriptkit generate --dir examples --tool ./bin/new-script`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	reporter := helpers.NewReporter(cmd, settings.Verbose)

	_, err := generator.Run(cmd.Context(), generator.Options{
		Dir:      settings.Dir,
		Source:   catalog.NewTool(settings.Tool),
		Reporter: reporter,
	})
	return err
}
