package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/shipwright/internal/manifest"
	"github.com/cameronsjo/shipwright/internal/ui"
)

// errLintFailed is returned by lint --strict when warnings were found.
var errLintFailed = errors.New("lint found warnings")

var (
	lintFlags  recipeFlags
	lintStrict bool
	lintJSON   bool
)

// lintCmd represents the lint command.
var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Report likely mistakes in a recipe",
	Long: `Check a recipe for likely mistakes without rendering it.

Reports an empty or malformed base image, unknown or repeated steps, a
malformed port, an empty command, and steps selected without data. Rendered
output never depends on lint results.

Exits non-zero only with --strict and at least one warning.

Examples:
  shipwright lint
  shipwright lint -f service.yaml --strict
  shipwright lint --json`,
	Args: cobra.NoArgs,
	RunE: runLint,
}

func init() {
	lintFlags.register(lintCmd)
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "Exit non-zero when warnings are found")
	lintCmd.Flags().BoolVar(&lintJSON, "json", false, "Print findings as JSON")

	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	recipe, err := lintFlags.resolve(cmd)
	if err != nil {
		return err
	}

	findings := manifest.Lint(recipe)

	if lintJSON {
		if findings == nil {
			findings = []manifest.Finding{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(findings); err != nil {
			return fmt.Errorf("encode findings: %w", err)
		}
	} else {
		printFindings(findings)
	}

	warnings := 0
	for _, f := range findings {
		if f.Severity == manifest.SeverityWarning {
			warnings++
		}
	}

	if lintStrict && warnings > 0 {
		return fmt.Errorf("%w: %d warning(s)", errLintFailed, warnings)
	}
	return nil
}

func printFindings(findings []manifest.Finding) {
	if len(findings) == 0 {
		ui.Success("No problems found")
		return
	}

	for _, f := range findings {
		switch f.Severity {
		case manifest.SeverityWarning:
			ui.Warning("%s: %s", f.Field, f.Message)
		default:
			ui.Info("  %s: %s", f.Field, f.Message)
		}
	}
}
