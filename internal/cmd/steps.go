package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/shipwright/internal/manifest"
)

// stepsCmd represents the steps command.
var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the available steps",
	Long: `List every step with its identifier, label and the instruction it emits.

Either the identifier or the label can be passed to --step. Matching
ignores case, spaces, dashes and underscores.`,
	Args: cobra.NoArgs,
	RunE: runSteps,
}

func init() {
	rootCmd.AddCommand(stepsCmd)
}

func runSteps(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tLABEL\tINSTRUCTION")
	for _, step := range manifest.DefaultSteps {
		fmt.Fprintf(w, "%s\t%s\t%s\n", step, step.Label(), step.Instruction())
	}
	return w.Flush()
}
