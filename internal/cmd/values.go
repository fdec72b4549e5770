package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
	"github.com/cameronsjo/kubegen/internal/ui"
	"github.com/cameronsjo/kubegen/internal/values"
)

var valuesFiles []string

var valuesCmd = &cobra.Command{
	Use:   "values",
	Short: "Inspect and validate values files",
}

var valuesValidateCmd = &cobra.Command{
	Use:   "validate -v <values>...",
	Short: "Check values against the schema",
	Long: `Check a values file, plus optional overlays, against the values schema.

Required keys: app_name, protocol, image, replicas, container_port and
service_port. replicas must be at least 1 and ports within 1-65535.

Examples:
  kubegen values validate -v templates/values.yaml
  kubegen values validate -v templates/values.yaml -v prod.yaml`,
	RunE: runValuesValidate,
}

var valuesSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the values JSON schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(out(cmd), values.Schema())
		return nil
	},
}

func init() {
	valuesValidateCmd.Flags().StringSliceVarP(&valuesFiles, "values", "v", nil, "Values file (repeatable; later files override earlier ones)")

	valuesCmd.AddCommand(valuesValidateCmd)
	valuesCmd.AddCommand(valuesSchemaCmd)
	rootCmd.AddCommand(valuesCmd)
}

func runValuesValidate(cmd *cobra.Command, args []string) error {
	files := append(append([]string{}, valuesFiles...), args...)

	v, err := values.Load(files...)
	if err != nil {
		return err
	}

	if err := values.Validate(v); err != nil {
		var ve *values.ValidationError
		if errors.As(err, &ve) {
			for _, reason := range ve.Reasons {
				ui.Warning("%s", reason)
			}
			return kgerrors.New(kgerrors.KindValidation, "values are invalid (%d problems)", len(ve.Reasons))
		}
		return err
	}

	ui.Success("Values are valid for app %s", v.AppName())
	ui.Info("  image:    %s", v.String(values.KeyImage))
	for _, key := range []string{values.KeyReplicas, values.KeyContainerPort, values.KeyServicePort} {
		if n, ok := v.Int(key); ok {
			ui.Info("  %-15s %d", key+":", n)
		}
	}
	return nil
}
