package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/kubegen/internal/canary"
	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
	"github.com/cameronsjo/kubegen/internal/ui"
)

var (
	canaryApp     string
	canaryDeploy  string
	canaryPromote string
	canaryClean   bool
	canaryPort    int
)

var canaryCmd = &cobra.Command{
	Use:   "canary --app <app> (--deploy <image> | --promote <image> | --clean)",
	Short: "Run a canary deployment next to an app",
	Long: `Run a canary beside an app's stable deployment (<app>-deployment).

  --deploy <image>    Create <app>-canary with the image and expose it as
                      <app>-canary-service
  --promote <image>   Set the image on <app>-deployment, then remove the canary
  --clean             Remove the canary deployment and service

Examples:
  kubegen canary --app web --deploy nginx:1.27
  kubegen canary --app web --promote nginx:1.27
  kubegen canary --app web --clean`,
	Args: cobra.NoArgs,
	RunE: runCanary,
}

func init() {
	canaryCmd.Flags().StringVar(&canaryApp, "app", "", "App name")
	canaryCmd.Flags().StringVar(&canaryDeploy, "deploy", "", "Deploy a canary with this image")
	canaryCmd.Flags().StringVar(&canaryPromote, "promote", "", "Promote this image to the stable deployment")
	canaryCmd.Flags().BoolVar(&canaryClean, "clean", false, "Remove the canary")
	canaryCmd.Flags().IntVar(&canaryPort, "port", canary.DefaultPort, "Port exposed by the canary service")

	canaryCmd.MarkFlagRequired("app")
	canaryCmd.MarkFlagsMutuallyExclusive("deploy", "promote", "clean")
	canaryCmd.MarkFlagsOneRequired("deploy", "promote", "clean")

	rootCmd.AddCommand(canaryCmd)
}

func runCanary(cmd *cobra.Command, args []string) error {
	if canaryApp == "" {
		return kgerrors.New(kgerrors.KindValidation, "--app must not be empty")
	}
	for _, name := range []string{"deploy", "promote"} {
		if cmd.Flags().Changed(name) && cmd.Flags().Lookup(name).Value.String() == "" {
			return kgerrors.New(kgerrors.KindValidation, "--%s requires an image", name)
		}
	}
	if canaryPort < 1 || canaryPort > 65535 {
		return kgerrors.New(kgerrors.KindValidation, "--port must be between 1 and 65535, got %d", canaryPort)
	}

	client, err := newKubectl()
	if err != nil {
		return err
	}
	m := canary.NewManager(client)
	m.Port = canaryPort
	ctx := cmd.Context()

	switch {
	case canaryDeploy != "":
		ui.Canary("Deploying canary %s", canaryDeploy)
		if err := m.Deploy(ctx, canaryApp, canaryDeploy); err != nil {
			return err
		}
		ui.Success("Canary deployed")

	case canaryPromote != "":
		ui.Canary("Promoting canary to stable")
		outcome, err := m.Promote(ctx, canaryApp, canaryPromote)
		if err != nil {
			return err
		}
		printWarnings(outcome)
		ui.Success("Canary promoted")

	case canaryClean:
		ui.Canary("Removing canary")
		printWarnings(m.Clean(ctx, canaryApp))
		ui.Success("Canary removed")
	}

	return nil
}

func printWarnings(outcome *canary.Outcome) {
	for _, w := range outcome.Warnings {
		ui.Warning("%s", w)
	}
}
