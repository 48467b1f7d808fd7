// Package cmd provides the CLI commands for shipwright.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/shipwright/internal/ui"
)

// version is overridden at build time with -ldflags "-X".
var version = "0.1.0"

var noColor bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shipwright",
	Short: "Dockerfile generator - recipes in, manifests out",
	Long: `shipwright - Dockerfile generator

Builds a Dockerfile from a base image, dependencies, a port, a start
command, environment variables and an ordered list of steps. Inputs come
from flags, a shipwright.yaml recipe, an editable session or the HTTP API.

GENERATE
  generate              Render a Dockerfile from flags and/or a recipe
    --file, -f <file>   Recipe file (default: nearest shipwright.yaml)
    --output, -o <path> Write atomically instead of printing
  build [dir]           Render and build an image with the Docker engine
  lint                  Report likely mistakes in a recipe
  steps                 List the available steps

SESSION
  session add-dep       Append a dependency (rm-dep pops the last)
  session set-dep       Replace the dependency at a position
  session add-env       Append an environment variable (rm-env pops the last)
  session set           Set base image, port or command
  session steps         Replace the step order
  session show          Print the session recipe
  session render        Render the session to a Dockerfile
  session reset         Start over

SERVER
  serve                 Serve the render API over HTTP

MAINTENANCE
  doctor                Check recipe, state directory and Docker engine
  update                Update shipwright to the latest release
  completion            Generate shell completions`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.Configure(noColor)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	// Version template
	rootCmd.SetVersionTemplate("shipwright version {{.Version}}\n")
}
