package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/kubegen/internal/kubectl"
)

const (
	testDeploymentTemplate = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: {{ app_name }}-deployment
spec:
  replicas: {{ replicas }}
  selector:
    matchLabels:
      app: {{ app_name }}
  template:
    metadata:
      labels:
        app: {{ app_name }}
    spec:
      containers:
      - name: {{ app_name }}
        image: {{ image }}
        ports:
        - containerPort: {{ container_port }}
`

	testServiceTemplate = `apiVersion: v1
kind: Service
metadata:
  name: {{ app_name }}-service
spec:
  selector:
    app: {{ app_name }}
  ports:
  - protocol: {{ protocol }}
    port: {{ service_port }}
    targetPort: {{ container_port }}
`

	testValues = `app_name: test-app
protocol: TCP
image: nginx:latest
replicas: 2
container_port: 80
service_port: 8080
`
)

// project is a throwaway kubegen project directory.
type project struct {
	dir    string
	config string
}

func (p project) path(elem ...string) string {
	return filepath.Join(append([]string{p.dir}, elem...)...)
}

// setupProject creates kubegen.yaml plus a templates directory holding a
// deployment and service template and a values file.
func setupProject(t *testing.T) project {
	t.Helper()
	p := project{dir: t.TempDir()}
	p.config = p.path("kubegen.yaml")

	require.NoError(t, os.WriteFile(p.config, []byte("templates_dir: templates\nversions_dir: templates_versions\n"), 0644))
	writeFile(t, p.path("templates", "deployment.yaml.template"), testDeploymentTemplate)
	writeFile(t, p.path("templates", "service.yaml.template"), testServiceTemplate)
	writeFile(t, p.path("templates", "values.yaml"), testValues)
	return p
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// useFakeKubectl routes every kubectl call through a FakeRunner.
func useFakeKubectl(t *testing.T, respond func([]string) (kubectl.Result, error)) *kubectl.FakeRunner {
	t.Helper()
	fake := &kubectl.FakeRunner{Respond: respond}
	orig := newRunner
	newRunner = func() kubectl.Runner { return fake }
	t.Cleanup(func() { newRunner = orig })
	return fake
}

// resetFlags restores every flag in the command tree to its default so
// values don't leak between executions of the shared rootCmd.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCmd executes the root command with the given args and returns
// everything written to stdout, including colored ui output.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil

	buf := new(bytes.Buffer)
	oldOutput, oldNoColor := color.Output, color.NoColor
	color.Output = buf
	color.NoColor = true
	defer func() {
		color.Output = oldOutput
		color.NoColor = oldNoColor
	}()

	// Important: Set args BEFORE setting output buffers
	rootCmd.SetArgs(args)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// executeInProject runs a command against p's config file.
func executeInProject(t *testing.T, p project, args ...string) (string, error) {
	t.Helper()
	return executeCmd(t, append([]string{"--config", p.config}, args...)...)
}
