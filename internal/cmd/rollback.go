package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
	"github.com/cameronsjo/kubegen/internal/kubectl"
	"github.com/cameronsjo/kubegen/internal/rollout"
	"github.com/cameronsjo/kubegen/internal/ui"
)

var (
	rollbackHistory  string
	rollbackApp      string
	rollbackRevision int
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback (--history <app> | --rollback <app> [--rollback-revision N])",
	Short: "Show history of, or roll back, an app's deployment",
	Long: `Inspect or revert revisions of <app>-deployment.

When both --rollback and --history are given, the rollback runs first.

Examples:
  kubegen rollback --history web
  kubegen rollback --rollback web
  kubegen rollback --rollback web --rollback-revision 2`,
	Args: cobra.NoArgs,
	RunE: runRollback,
}

func init() {
	rollbackCmd.Flags().StringVar(&rollbackHistory, "history", "", "Show the revision history of this app")
	rollbackCmd.Flags().StringVar(&rollbackApp, "rollback", "", "Roll back this app")
	rollbackCmd.Flags().IntVar(&rollbackRevision, "rollback-revision", 0, "Revision to roll back to (default: previous)")

	rollbackCmd.MarkFlagsOneRequired("history", "rollback")

	rootCmd.AddCommand(rollbackCmd)
}

func runRollback(cmd *cobra.Command, args []string) error {
	if rollbackRevision < 0 {
		return kgerrors.New(kgerrors.KindValidation, "--rollback-revision must be positive, got %d", rollbackRevision)
	}

	client, err := newKubectl()
	if err != nil {
		return err
	}
	m := rollout.NewManager(client)
	ctx := cmd.Context()

	if rollbackApp != "" {
		if rollbackRevision > 0 {
			ui.Rewind("Rolling back %s to revision %d", kubectl.DeploymentName(rollbackApp), rollbackRevision)
		} else {
			ui.Rewind("Rolling back %s to the previous revision", kubectl.DeploymentName(rollbackApp))
		}

		res, err := m.Undo(ctx, rollbackApp, rollbackRevision)
		if res != nil {
			printBlock(out(cmd), res.Undo)
		}
		if errors.Is(err, rollout.ErrUnsettled) {
			ui.Warning("Rollback started but the rollout did not settle")
		}
		if err != nil {
			return err
		}

		ui.Success("Rollback completed")
		printBlock(out(cmd), res.Pods)
	}

	if rollbackHistory != "" {
		ui.Header("History of %s", kubectl.DeploymentName(rollbackHistory))
		history, err := m.History(ctx, rollbackHistory)
		if err != nil {
			return err
		}
		printBlock(out(cmd), history)
	}

	return nil
}
