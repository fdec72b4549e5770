package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/kubegen/internal/kubectl"
	"github.com/cameronsjo/kubegen/internal/ui"
)

var statusApp string

var statusCmd = &cobra.Command{
	Use:   "status [--app <app>]",
	Short: "List an app's pods and services",
	Long: `List pods and services, restricted to app=<app> when --app is given.

Examples:
  kubegen status --app web
  kubegen status -n staging`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusApp, "app", "", "App name (label app=<app>)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newKubectl()
	if err != nil {
		return err
	}

	selector := ""
	if statusApp != "" {
		selector = kubectl.AppSelector(statusApp)
		ui.Header("Status of %s", statusApp)
	}

	listing, err := client.Get(cmd.Context(), selector)
	if err != nil {
		return err
	}
	printBlock(out(cmd), listing)
	return nil
}
