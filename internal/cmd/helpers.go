package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/shipwright/internal/docker"
	"github.com/cameronsjo/shipwright/internal/fileutil"
	"github.com/cameronsjo/shipwright/internal/manifest"
	"github.com/cameronsjo/shipwright/internal/ui"
)

// newDockerClient is swapped out in tests.
var newDockerClient = docker.NewClient

// withDockerClientContext executes a function with a Docker client and custom context.
func withDockerClientContext(ctx context.Context, fn func(*docker.Client) error) error {
	client, err := newDockerClient()
	if err != nil {
		return fmt.Errorf("connect to docker: %w", err)
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("connect to docker: %w", err)
	}

	return fn(client)
}

// writeManifest renders recipe to stdout, or atomically to output when set.
// An output naming a directory receives a file called Dockerfile.
func writeManifest(cmd *cobra.Command, recipe manifest.Recipe, output string) error {
	if output == "" {
		return manifest.RenderTo(cmd.OutOrStdout(), recipe)
	}

	artifact := manifest.Generate(recipe)
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		output = filepath.Join(output, artifact.FileName)
	}

	err := fileutil.WriteFrom(output, func(w io.Writer) error {
		_, err := io.WriteString(w, artifact.Content)
		return err
	}, 0644)
	if err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	ui.Success("Wrote %s", output)
	return nil
}

// warnUnknownSteps reports steps the renderer will skip.
func warnUnknownSteps(steps []manifest.Step) {
	for i, step := range steps {
		if !step.IsKnown() {
			ui.Warning("Step %d is not a known step and will be ignored", i+1)
		}
	}
}
