package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cameronsjo/kubegen/internal/ui"
	"github.com/cameronsjo/kubegen/internal/versions"
)

var versionsYes bool

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Save and restore versions of the templates directory",
	Long: `Save and restore named versions of the templates directory.

Files ending in .template or .yaml are copied to <versions-dir>/<version>/ and
recorded in <versions-dir>/index.json.

Examples:
  kubegen versions save v1
  kubegen versions list
  kubegen versions load v1 --yes`,
}

var versionsSaveCmd = &cobra.Command{
	Use:   "save <version>",
	Short: "Save every template as a version",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsSave,
}

var versionsLoadCmd = &cobra.Command{
	Use:               "load <version>",
	Short:             "Restore every file of a version into the templates directory",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeVersions,
	RunE:              runVersionsLoad,
}

var versionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved versions per file",
	Args:  cobra.NoArgs,
	RunE:  runVersionsList,
}

func init() {
	versionsLoadCmd.Flags().BoolVarP(&versionsYes, "yes", "y", false, "Overwrite templates without asking")

	versionsCmd.AddCommand(versionsSaveCmd)
	versionsCmd.AddCommand(versionsLoadCmd)
	versionsCmd.AddCommand(versionsListCmd)
	rootCmd.AddCommand(versionsCmd)
}

func runVersionsSave(cmd *cobra.Command, args []string) error {
	version := args[0]
	store := versions.NewStore(cfg)

	saved, err := store.SaveAll(cmd.Context(), version)
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		ui.Warning("No .template or .yaml files found in %s", store.TemplateDir)
		return nil
	}

	for _, name := range saved {
		ui.Success("Saved %s in version %s", name, version)
	}
	return nil
}

func runVersionsLoad(cmd *cobra.Command, args []string) error {
	version := args[0]
	store := versions.NewStore(cfg)

	if err := versions.ValidateVersion(version); err != nil {
		return err
	}

	if !versionsYes && store.Exists(version) {
		ok, err := promptYesNo(fmt.Sprintf("Overwrite files in %s with version %s?", store.TemplateDir, version))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out(cmd), "Aborted.")
			return nil
		}
	}

	restored, err := store.LoadAll(version)
	if err != nil {
		return err
	}
	if len(restored) == 0 {
		ui.Warning("Version %s has no files", version)
		return nil
	}

	for _, name := range restored {
		ui.Success("Restored %s from version %s", name, version)
	}
	return nil
}

func runVersionsList(cmd *cobra.Command, args []string) error {
	store := versions.NewStore(cfg)

	idx, err := store.List()
	if err != nil {
		return err
	}
	if len(idx) == 0 {
		ui.Info("No saved versions")
		return nil
	}

	ui.Header("Available versions:")
	for _, file := range idx.Files() {
		fmt.Fprintf(out(cmd), "  %s: %s\n", file, strings.Join(idx.Versions(file), ", "))
	}
	return nil
}

// stdin is the prompt input, swapped in tests.
var stdin io.Reader = os.Stdin

// isTerminal checks if stdin is a TTY.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// promptYesNo asks the user a yes/no question.
// Returns error if stdin is not a TTY and cannot read input.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, fmt.Errorf("cannot prompt for input: stdin is not a TTY. Use --yes flag to skip interactive prompts")
	}

	fmt.Printf("%s [y/N] ", question)

	reader := bufio.NewReader(stdin)
	response, err := reader.ReadString('\n')
	if err != nil && !(err == io.EOF && response != "") {
		return false, fmt.Errorf("read user input: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
