package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
	"github.com/cameronsjo/kubegen/internal/logging"
	"github.com/cameronsjo/kubegen/internal/manifest"
	"github.com/cameronsjo/kubegen/internal/ui"
	"github.com/cameronsjo/kubegen/internal/values"
)

var (
	genTemplates   []string
	genValues      []string
	genOutput      string
	genValidate    bool
	genDeploy      bool
	genSkipInspect bool
)

var generateCmd = &cobra.Command{
	Use:     "generate -t <template>... -v <values>... [-o <output>]",
	Aliases: []string{"gen"},
	Short:   "Render manifests from templates and values",
	Long: `Render Kubernetes manifests from templates and a values file.

Values are validated against the values schema before anything is rendered.
Later -v files are overlays merged over earlier ones. Each rendered manifest
is printed, and written when --output is given.

Templates use Go template syntax with the sprig functions. Values are
addressed by key, with or without a leading dot:

  name: {{ app_name }}-deployment
  image: {{ .image | quote }}

With several templates, or when --output ends with '/' or is an existing
directory, manifests are written into that directory under the template
name minus its .template suffix.

Examples:
  kubegen generate -t templates/deployment.yaml.template -v templates/values.yaml
  kubegen gen -t templates/deployment.yaml.template templates/service.yaml.template \
      -v templates/values.yaml -v prod.yaml -o out/ --deploy`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringSliceVarP(&genTemplates, "template", "t", nil, "Template file (repeatable; extra arguments are templates too)")
	generateCmd.Flags().StringSliceVarP(&genValues, "values", "v", nil, "Values file (repeatable; later files override earlier ones)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file or directory")
	generateCmd.Flags().BoolVar(&genValidate, "validate", false, "Validate the manifests with kubectl --dry-run=client")
	generateCmd.Flags().BoolVar(&genDeploy, "deploy", false, "Apply the written manifests with kubectl (requires --output)")
	generateCmd.Flags().BoolVar(&genSkipInspect, "skip-inspect", false, "Do not check that manifests declare well-formed Kubernetes objects")

	generateCmd.RegisterFlagCompletionFunc("template", completeTemplateFiles)

	rootCmd.AddCommand(generateCmd)
}

// rendered is one manifest ready to be written.
type rendered struct {
	template string
	content  string
	path     string
}

func runGenerate(cmd *cobra.Command, args []string) error {
	templates := append(append([]string{}, genTemplates...), args...)
	if len(templates) == 0 {
		return kgerrors.New(kgerrors.KindValidation, "at least one template is required (-t)")
	}
	if len(genValues) == 0 {
		return kgerrors.New(kgerrors.KindValidation, "a values file is required (-v)")
	}
	if genDeploy && genOutput == "" {
		return kgerrors.New(kgerrors.KindValidation, "--deploy requires --output")
	}

	v, err := values.Load(genValues...)
	if err != nil {
		return err
	}
	if err := values.Validate(v); err != nil {
		return err
	}
	logging.Logger.Debugf("Values validated for app %s", v.AppName())

	manifests, err := renderAll(templates, v)
	if err != nil {
		return err
	}

	for _, m := range manifests {
		ui.Document("Generated manifest: "+m.template, m.content)
	}

	if genOutput == "" && !genValidate {
		return nil
	}

	target := genOutput
	if target == "" {
		tmp, err := os.MkdirTemp("", "kubegen-validate-")
		if err != nil {
			return fmt.Errorf("create temp directory: %w", err)
		}
		defer os.RemoveAll(tmp)
		target = tmp + string(filepath.Separator)
	}

	if err := assignPaths(manifests, target); err != nil {
		return err
	}
	step := 1
	if genOutput != "" {
		ui.Step(step, "Writing manifests")
		step++
	}
	for _, m := range manifests {
		if err := manifest.Write(m.content, m.path); err != nil {
			return err
		}
		if genOutput != "" {
			ui.Success("Wrote %s", m.path)
		}
	}

	if !genValidate && !genDeploy {
		return nil
	}

	client, err := newKubectl()
	if err != nil {
		return err
	}

	if genValidate {
		ui.Step(step, "Validating with kubectl --dry-run=client")
		step++
		for _, m := range manifests {
			if _, err := client.DryRun(cmd.Context(), m.path); err != nil {
				return fmt.Errorf("validate %s: %w", m.template, err)
			}
			ui.Success("Valid: %s", m.template)
		}
	}

	if genDeploy {
		ui.Step(step, "Applying to the cluster")
		paths := make([]string, len(manifests))
		for i, m := range manifests {
			paths[i] = m.path
		}
		applied, err := client.Apply(cmd.Context(), paths...)
		if err != nil {
			return fmt.Errorf("deploy: %w", err)
		}
		printBlock(out(cmd), applied)
		ui.Package("Deployed %s", v.AppName())
	}

	return nil
}

// renderAll renders every template before anything is written, so a failing
// template leaves no partial output behind.
func renderAll(templates []string, v values.Values) ([]*rendered, error) {
	manifests := make([]*rendered, 0, len(templates))
	for _, t := range templates {
		content, err := manifest.RenderFile(t, v)
		if err != nil {
			return nil, err
		}
		if !genSkipInspect {
			objects, err := manifest.Inspect(content)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", t, err)
			}
			for _, obj := range objects {
				logging.Logger.Debugf("%s declares %s (%s)", t, obj, obj.GVK.GroupVersion())
			}
		}
		manifests = append(manifests, &rendered{template: t, content: content})
	}
	return manifests, nil
}

// outputIsDir reports whether output names a directory for n manifests.
func outputIsDir(output string, n int) bool {
	if n > 1 || strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(filepath.Separator)) {
		return true
	}
	info, err := os.Stat(output)
	return err == nil && info.IsDir()
}

// assignPaths decides where each manifest is written.
func assignPaths(manifests []*rendered, output string) error {
	if !outputIsDir(output, len(manifests)) {
		manifests[0].path = output
		return nil
	}

	seen := make(map[string]string, len(manifests))
	for _, m := range manifests {
		name := manifest.OutputName(m.template)
		if prev, dup := seen[name]; dup {
			return kgerrors.New(kgerrors.KindValidation, "templates %s and %s both render to %s", prev, m.template, name)
		}
		seen[name] = m.template
		m.path = filepath.Join(output, name)
	}
	return nil
}
