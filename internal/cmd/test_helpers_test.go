package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/shipwright/internal/config"
	"github.com/cameronsjo/shipwright/internal/ui"
)

// resetFlags restores every flag under cmd to its default so that values
// from one execution do not leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)

	for _, sub := range cmd.Commands() {
		sub.SetContext(context.TODO())
		resetFlags(sub)
	}
}

// cmdResult holds what one command execution produced.
type cmdResult struct {
	Stdout string
	Status string
}

// executeCmd executes the root command with the given args and returns the
// command's stdout. Status messages printed through ui are discarded.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	res, err := executeCmdFull(t, args...)
	return res.Stdout, err
}

// executeCmdFull executes the root command and returns stdout and the ui
// status output separately.
func executeCmdFull(t *testing.T, args ...string) (cmdResult, error) {
	t.Helper()
	resetFlags(rootCmd)

	stdout := new(bytes.Buffer)
	status := new(bytes.Buffer)

	origOutput := ui.Output
	ui.Output = status
	defer func() { ui.Output = origOutput }()

	// Important: Set args BEFORE setting output buffers
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(status)
	err := rootCmd.Execute()

	return cmdResult{Stdout: stdout.String(), Status: status.String()}, err
}

// inTempProject moves the test into a fresh git worktree so recipe discovery
// cannot see files outside it. It returns the worktree root.
func inTempProject(t *testing.T) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	_, err = git.PlainInit(dir, false)
	require.NoError(t, err)

	t.Setenv(config.EnvRecipe, "")
	t.Setenv(config.EnvStateDir, "")
	t.Setenv(config.EnvToken, "")

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(originalWd) })

	return dir
}

// writeProjectFile writes content to name inside dir.
func writeProjectFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
