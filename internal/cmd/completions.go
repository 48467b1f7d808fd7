package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/shipwright/internal/manifest"
)

// completeSteps completes step identifiers, with labels as descriptions.
func completeSteps(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, step := range manifest.DefaultSteps {
		if strings.HasPrefix(strings.ToLower(step.String()), strings.ToLower(toComplete)) {
			names = append(names, step.String()+"\t"+step.Label())
		}
	}

	return names, cobra.ShellCompDirectiveNoFileComp
}
