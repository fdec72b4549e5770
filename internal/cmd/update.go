package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/kubegen/internal/ui"
	"github.com/cameronsjo/kubegen/internal/update"
)

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"upgrade", "selfupdate"},
	Short:   "Update kubegen to the latest version",
	Long: `Update kubegen to the latest version from GitHub releases.

This command will:
1. Check for a newer version on GitHub
2. Download the appropriate binary for your platform
3. Replace the current binary with the new version

Examples:
  kubegen update           # Update to latest version
  kubegen update --check   # Check for updates without installing`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var checkOnly bool

// maxChangelogLines bounds the release notes printed after an update check.
const maxChangelogLines = 10

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for updates, don't install")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	currentVersion := version
	ui.Blue.Printf("Current version: %s (%s)\n", currentVersion, update.GetPlatformInfo())
	ui.Blue.Println("Checking for updates...")

	if checkOnly {
		release, available, err := update.CheckForUpdate(cmd.Context(), currentVersion)
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if !available {
			ui.Success("You're running the latest version!")
			return nil
		}

		ui.Success("New version available: %s (released %s)", release.Version, release.PublishedAt)
		ui.Blue.Println("To update, run: kubegen update")
		printChangelog(out(cmd), release.Changelog)
		return nil
	}

	release, err := update.Update(cmd.Context(), currentVersion)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	if release == nil {
		ui.Success("You're already running the latest version!")
		return nil
	}

	ui.Success("Successfully updated to version %s!", release.Version)
	printChangelog(out(cmd), release.Changelog)
	return nil
}

// printChangelog prints the first lines of release notes.
func printChangelog(w io.Writer, changelog string) {
	if changelog == "" {
		return
	}

	ui.Yellow.Println("What's new:")
	lines := strings.Split(changelog, "\n")
	shown := min(len(lines), maxChangelogLines)
	for _, line := range lines[:shown] {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if len(lines) > shown {
		fmt.Fprintf(w, "  ... (%d more lines)\n", len(lines)-shown)
	}
}
