package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/shipwright/internal/ui"
	"github.com/cameronsjo/shipwright/internal/update"
)

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"upgrade", "selfupdate"},
	Short:   "Update shipwright to the latest version",
	Long: `Update shipwright to the latest version from GitHub releases.

This command will:
1. Check for a newer version on GitHub
2. Download the appropriate binary for your platform
3. Replace the current binary with the new version

Examples:
  shipwright update           # Update to latest version
  shipwright update --check   # Check for updates without installing`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var (
	checkOnly bool
)

// changelogLines caps the changelog preview.
const changelogLines = 10

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for updates, don't install")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ui.Info("Current version: %s (%s)", version, update.Platform())
	ui.Info("Checking for updates...")

	if checkOnly {
		release, available, err := update.CheckForUpdate(cmd.Context(), version)
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if !available {
			ui.Success("You're running the latest version!")
			return nil
		}

		ui.Success("New version available: %s (released %s)", release.Version, release.PublishedAt)
		ui.Info("To update, run: shipwright update")
		printChangelog(release)
		return nil
	}

	release, err := update.Update(cmd.Context(), version)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if release == nil {
		ui.Success("You're already running the latest version!")
		return nil
	}

	ui.Success("Successfully updated to version %s!", release.Version)
	printChangelog(release)
	ui.Info("Restart shipwright to use the new version.")
	return nil
}

func printChangelog(release *update.Release) {
	lines, more := release.ChangelogPreview(changelogLines)
	if len(lines) == 0 {
		return
	}

	ui.Header("What's new:")
	for _, line := range lines {
		ui.Note("  %s", line)
	}
	if more > 0 {
		ui.Note("  ... (%d more lines)", more)
	}
}
