// Package cmd provides the CLI commands for kubegen.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/kubegen/internal/config"
	"github.com/cameronsjo/kubegen/internal/logging"
	"github.com/cameronsjo/kubegen/internal/ui"
)

// version is overridden at build time with -ldflags "-X ...cmd.version=".
var version = "0.1.0"

var (
	cfgFile string

	// cfg is loaded before every command runs.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "kubegen",
	Short: "Render Kubernetes manifests from templates and drive kubectl",
	Long: `kubegen - Kubernetes manifests from templates and values

Renders manifest templates against a validated values file and drives the
kubectl workflows around them.

MANIFEST COMMANDS
  generate, gen         Render templates (-t) with values (-v)
    --output, -o        Write manifests to a file or directory
    --validate          Dry-run the written manifests with kubectl
    --deploy            Apply the written manifests
  values validate       Check a values file against the schema
  values schema         Print the values schema

RELEASE COMMANDS
  canary                Deploy, promote or clean a canary next to an app
  rollback              Show history of, or roll back, an app's deployment
  status                List an app's pods and services

TEMPLATE VERSIONS
  versions save <v>     Snapshot the templates directory as version v
  versions load <v>     Restore the templates directory from version v
  versions list         Show saved versions per file

DIAGNOSTICS
  doctor                Pre-flight checks and effective configuration
  update                Update kubegen from GitHub releases

Settings come from flags, KUBEGEN_* environment variables and kubegen.yaml,
in that order of precedence.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		ui.Fatal("%v", err)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: kubegen.yaml searched upward)")
	pf.String("log-level", logging.DefaultLevel, "Diagnostic log level (debug, info, warn, error, none)")
	pf.String("kubectl", "kubectl", "kubectl binary name or path")
	pf.StringP("namespace", "n", "", "Kubernetes namespace for kubectl calls")
	pf.String("context", "", "kubeconfig context for kubectl calls")
	pf.String("kubectl-args", "", "Extra arguments for every kubectl call (shell quoted)")
	pf.Duration("timeout", 0, "Timeout per kubectl call (0 = none)")
	pf.String("templates-dir", "templates", "Templates directory used by 'versions'")
	pf.String("versions-dir", "templates_versions", "Saved versions directory")

	rootCmd.SetVersionTemplate("kubegen version {{.Version}}\n")
}

// loadConfig resolves the layered configuration and configures logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	cfg = loaded

	logging.Configure(cfg.LogLevel, false)
	if cfg.File != "" {
		logging.Logger.Debugf("Using config file %s", cfg.File)
	}
	return nil
}
