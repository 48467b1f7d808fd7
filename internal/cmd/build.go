package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/shipwright/internal/docker"
	"github.com/cameronsjo/shipwright/internal/manifest"
	"github.com/cameronsjo/shipwright/internal/ui"
)

var (
	buildFlags   recipeFlags
	buildTags    []string
	buildNoCache bool
	buildPull    bool
)

// buildCmd represents the build command.
var buildCmd = &cobra.Command{
	Use:   "build [context-dir]",
	Short: "Render a Dockerfile and build an image",
	Long: `Render a Dockerfile and build an image with the Docker engine.

The context directory (default: current directory) is sent to the daemon
with the rendered Dockerfile at its root, replacing any Dockerfile already
there. The .git and .shipwright directories are never sent.

Recipe inputs are the same as for 'shipwright generate'.

Examples:
  shipwright build -t myapp:dev
  shipwright build ./service -f service.yaml -t ghcr.io/acme/service:1.2.0 --pull`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildFlags.register(buildCmd)
	buildCmd.Flags().StringArrayVarP(&buildTags, "tag", "t", nil, "Image name and tag (repeatable)")
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "Do not use the build cache")
	buildCmd.Flags().BoolVar(&buildPull, "pull", false, "Always pull a newer base image")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	contextDir := "."
	if len(args) > 0 {
		contextDir = args[0]
	}

	recipe, err := buildFlags.resolve(cmd)
	if err != nil {
		return err
	}
	warnUnknownSteps(recipe.Steps)

	return withDockerClientContext(cmd.Context(), func(client *docker.Client) error {
		ui.Info("Building %s...", contextDir)

		id, err := client.BuildImage(cmd.Context(), docker.BuildOptions{
			ContextDir: contextDir,
			Dockerfile: manifest.Render(recipe),
			Tags:       buildTags,
			NoCache:    buildNoCache,
			Pull:       buildPull,
		}, ui.Output)
		if err != nil {
			return err
		}

		if id != "" {
			ui.Success("Built %s", id)
		} else {
			ui.Success("Build complete")
		}
		for _, tag := range buildTags {
			ui.Info("  tagged %s", tag)
		}
		return nil
	})
}
