package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
	"github.com/cameronsjo/kubegen/internal/preflight"
	"github.com/cameronsjo/kubegen/internal/ui"
	"github.com/cameronsjo/kubegen/internal/versions"
)

const doctorCheckTimeout = 10 * time.Second

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Aliases: []string{"checkup"},
	Short:   "Pre-flight checks and effective configuration",
	Args:    cobra.NoArgs,
	RunE:    runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ui.Blue.Println("Running pre-flight checks...")

	passed, failed, warned := 0, 0, 0
	failKind := kgerrors.KindToolNotFound

	warnings, errs := preflight.CheckAll(preflight.Binaries(cfg.Kubectl.Binary))
	for _, e := range errs {
		ui.Red.Printf("  x %s\n", e)
		failed++
	}
	for _, w := range warnings {
		ui.Yellow.Printf("  ! %s\n", w)
		warned++
	}

	if len(errs) == 0 {
		client, err := newKubectl()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), doctorCheckTimeout)
		versionOut, err := client.Version(ctx)
		cancel()
		if err == nil {
			ui.Green.Printf("  * kubectl works (%s)\n", firstLine(versionOut))
			passed++
		} else {
			ui.Red.Printf("  x kubectl failed: %v\n", err)
			failKind = kgerrors.KindOf(err)
			failed++
		}
	}

	if cfg.File != "" {
		ui.Green.Printf("  * Config file: %s\n", cfg.File)
		passed++
	} else {
		ui.Yellow.Println("  ! No kubegen.yaml found, using defaults")
		warned++
	}

	ui.Header("\nConfiguration")
	ui.Info("  templates dir: %s", cfg.TemplatesDir)
	ui.Info("  versions dir:  %s", cfg.VersionsDir)
	ui.Info("  index file:    %s", versions.NewStore(cfg).IndexPath())
	ui.Info("  kubectl:       %s", cfg.Kubectl.Binary)
	if cfg.Kubectl.Namespace != "" {
		ui.Info("  namespace:     %s", cfg.Kubectl.Namespace)
	}
	if cfg.Kubectl.Context != "" {
		ui.Info("  context:       %s", cfg.Kubectl.Context)
	}
	if cfg.Kubectl.Timeout > 0 {
		ui.Info("  timeout:       %s", cfg.Kubectl.Timeout)
	}

	ui.Info("\n%d passed, %d warnings, %d failed", passed, warned, failed)
	if failed > 0 {
		return kgerrors.New(failKind, "%d pre-flight check(s) failed", failed)
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
