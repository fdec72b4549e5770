package kubectl

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/kubegen/internal/config"
	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
)

func newClient(t *testing.T, fake *FakeRunner, opts Options) *Client {
	t.Helper()
	c, err := New(fake, opts)
	require.NoError(t, err)
	return c
}

func TestClientRun_Classification(t *testing.T) {
	tests := []struct {
		name       string
		result     Result
		err        error
		wantKind   kgerrors.Kind
		wantStdout string
		wantStderr string
	}{
		{
			name:       "exit zero",
			result:     Result{Stdout: "deployment.apps/web configured\n"},
			wantStdout: "deployment.apps/web configured\n",
		},
		{
			name:       "non-zero exit",
			result:     Result{Stderr: "error: the path \"x.yaml\" does not exist\n", ExitCode: 1},
			wantKind:   kgerrors.KindProcess,
			wantStderr: "error: the path \"x.yaml\" does not exist\n",
		},
		{
			name:     "binary missing",
			err:      &exec.Error{Name: "kubectl", Err: exec.ErrNotFound},
			wantKind: kgerrors.KindToolNotFound,
		},
		{
			name:     "arbitrary error",
			err:      errors.New("unexpected failure"),
			wantKind: kgerrors.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &FakeRunner{Respond: func([]string) (Result, error) { return tt.result, tt.err }}
			c := newClient(t, fake, Options{})

			out, err := c.Apply(context.Background(), "deployment.yaml")

			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStdout, out)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, kgerrors.KindOf(err))
			assert.Equal(t, tt.wantStderr, kgerrors.StderrOf(err))
		})
	}
}

func TestClientRun_ArbitraryErrorMessage(t *testing.T) {
	fake := &FakeRunner{Respond: func([]string) (Result, error) { return Result{}, errors.New("Error inesperado") }}
	c := newClient(t, fake, Options{})

	_, err := c.DryRun(context.Background(), "x.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error inesperado")
}

func TestNew_GlobalFlags(t *testing.T) {
	fake := &FakeRunner{}
	c := newClient(t, fake, Options{
		Binary:    "/usr/local/bin/kubectl",
		Namespace: "staging",
		Context:   "kind-dev",
		Args:      `--kubeconfig "/tmp/my config" -v=2`,
	})

	_, err := c.Get(context.Background(), "")
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/usr/local/bin/kubectl", calls[0].Name)
	assert.Equal(t, []string{
		"--namespace", "staging",
		"--context", "kind-dev",
		"--kubeconfig", "/tmp/my config", "-v=2",
		"get", "pods,svc",
	}, calls[0].Args)
}

func TestNew_DefaultBinary(t *testing.T) {
	c := newClient(t, &FakeRunner{}, Options{})
	assert.Equal(t, DefaultBinary, c.Binary())
}

func TestNew_BadArgs(t *testing.T) {
	_, err := New(&FakeRunner{}, Options{Args: `--kubeconfig "unterminated`})
	require.Error(t, err)
	assert.Equal(t, kgerrors.KindValidation, kgerrors.KindOf(err))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{Kubectl: config.Kubectl{
		Binary:    "k",
		Namespace: "ns",
		Context:   "ctx",
		Args:      "--insecure-skip-tls-verify",
		Timeout:   30 * time.Second,
	}}

	assert.Equal(t, Options{
		Binary:    "k",
		Namespace: "ns",
		Context:   "ctx",
		Args:      "--insecure-skip-tls-verify",
		Timeout:   30 * time.Second,
	}, OptionsFromConfig(cfg))
}

func TestCommands(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(c *Client) (string, error)
		want string
	}{
		{"dry run", func(c *Client) (string, error) { return c.DryRun(ctx, "out/deployment.yaml") }, "apply --dry-run=client -f out/deployment.yaml"},
		{"apply dir", func(c *Client) (string, error) { return c.Apply(ctx, "out") }, "apply -f out"},
		{"apply files", func(c *Client) (string, error) { return c.Apply(ctx, "out/a.yaml", "out/b.yaml") }, "apply -f out/a.yaml -f out/b.yaml"},
		{"get all", func(c *Client) (string, error) { return c.Get(ctx, "") }, "get pods,svc"},
		{"get selector", func(c *Client) (string, error) { return c.Get(ctx, "app=web") }, "get pods,svc -l app=web"},
		{"pods", func(c *Client) (string, error) { return c.Pods(ctx, "web") }, "get pods -l app=web"},
		{"history", func(c *Client) (string, error) { return c.RolloutHistory(ctx, "web") }, "rollout history deployment/web-deployment"},
		{"undo previous", func(c *Client) (string, error) { return c.RolloutUndo(ctx, "web", 0) }, "rollout undo deployment/web-deployment"},
		{"undo revision", func(c *Client) (string, error) { return c.RolloutUndo(ctx, "web", 3) }, "rollout undo deployment/web-deployment --to-revision=3"},
		{"status", func(c *Client) (string, error) { return c.RolloutStatus(ctx, "web") }, "rollout status deployment/web-deployment"},
		{"create", func(c *Client) (string, error) { return c.CreateDeployment(ctx, "web-canary", "nginx:1.27") }, "create deployment web-canary --image=nginx:1.27"},
		{"label", func(c *Client) (string, error) { return c.Label(ctx, "web-canary", "app=web-canary") }, "label deployment web-canary app=web-canary"},
		{"expose", func(c *Client) (string, error) { return c.Expose(ctx, "web-canary", 80, "web-canary-service") }, "expose deployment web-canary --port=80 --name=web-canary-service"},
		{"set image", func(c *Client) (string, error) { return c.SetImage(ctx, "web", "nginx:1.27") }, "set image deployment/web-deployment web=nginx:1.27"},
		{"delete deployment", func(c *Client) (string, error) { return c.DeleteDeployment(ctx, "web-canary") }, "delete deployment web-canary"},
		{"delete service", func(c *Client) (string, error) { return c.DeleteService(ctx, "web-canary-service") }, "delete service web-canary-service"},
		{"version", func(c *Client) (string, error) { return c.Version(ctx) }, "version --client"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &FakeRunner{}
			c := newClient(t, fake, Options{})

			_, err := tt.call(c)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, fake.Commands())
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, "web-deployment", DeploymentName("web"))
	assert.Equal(t, "web-canary", CanaryName("web"))
	assert.Equal(t, "web-canary-service", CanaryServiceName("web"))
	assert.Equal(t, "app=web", AppSelector("web"))
}

func TestFailWhen(t *testing.T) {
	fake := &FakeRunner{Respond: FailWhen("delete service", "not found", "ok")}
	c := newClient(t, fake, Options{})
	ctx := context.Background()

	out, err := c.DeleteDeployment(ctx, "web-canary")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = c.DeleteService(ctx, "web-canary-service")
	require.Error(t, err)
	assert.Equal(t, "not found", kgerrors.StderrOf(err))
	assert.Equal(t, fmt.Sprintf("kubectl delete exited with code %d: not found", 1), err.Error())
}
