package cmd

import (
	"github.com/spf13/cobra"
)

var (
	generateFlags  recipeFlags
	generateOutput string
)

// generateCmd represents the generate command.
var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen", "render"},
	Short:   "Render a Dockerfile",
	Long: `Render a Dockerfile from flags and/or a recipe file.

The recipe file is rendered as a Go template (with sprig functions and
--var values) before being read as YAML. Flags given explicitly override
values from the recipe. Without --step and without steps in the recipe,
all six steps are emitted in their default order.

Steps: SetWorkdir, CopyFiles, InstallDependencies, ExposePort, SetEnvVars,
RunCommand. Labels such as "Set WORKDIR" are accepted too.

Examples:
  # Flags only
  shipwright generate -b python:3.9-slim -d flask -c "python app.py" -e ENV_VAR_1=prod

  # Choose and order steps
  shipwright generate -b alpine --step "Set WORKDIR" --step "Run Command" -c ./run

  # Recipe with template values, written to a file
  shipwright generate -f shipwright.yaml --var python=3.11 -o Dockerfile`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateFlags.register(generateCmd)
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write to this file or directory instead of stdout")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	recipe, err := generateFlags.resolve(cmd)
	if err != nil {
		return err
	}

	warnUnknownSteps(recipe.Steps)
	return writeManifest(cmd, recipe, generateOutput)
}
