package kubectl

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/cameronsjo/kubegen/internal/config"
	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
)

// DefaultBinary is used when Options.Binary is empty.
const DefaultBinary = "kubectl"

// Options configures a Client.
type Options struct {
	Binary    string
	Namespace string
	Context   string

	// Args is extra global arguments, split with shell quoting rules.
	Args string

	// Timeout bounds each call. Zero means no limit.
	Timeout time.Duration
}

// OptionsFromConfig maps the kubectl config section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Binary:    cfg.Kubectl.Binary,
		Namespace: cfg.Kubectl.Namespace,
		Context:   cfg.Kubectl.Context,
		Args:      cfg.Kubectl.Args,
		Timeout:   cfg.Kubectl.Timeout,
	}
}

// Client builds kubectl command lines and runs them through a Runner.
type Client struct {
	runner  Runner
	binary  string
	global  []string
	timeout time.Duration
}

// New creates a Client. Unbalanced quotes in opts.Args are a VALIDATION error.
func New(runner Runner, opts Options) (*Client, error) {
	if runner == nil {
		runner = ExecRunner{}
	}
	binary := opts.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	var global []string
	if opts.Namespace != "" {
		global = append(global, "--namespace", opts.Namespace)
	}
	if opts.Context != "" {
		global = append(global, "--context", opts.Context)
	}
	if opts.Args != "" {
		extra, err := shellwords.Parse(opts.Args)
		if err != nil {
			return nil, kgerrors.Wrap(kgerrors.KindValidation, err, "parse kubectl args %q", opts.Args)
		}
		global = append(global, extra...)
	}

	return &Client{
		runner:  runner,
		binary:  binary,
		global:  global,
		timeout: opts.Timeout,
	}, nil
}

// Binary returns the executable the client invokes.
func (c *Client) Binary() string {
	return c.binary
}

// Argv returns the full argument list for a subcommand, global flags first.
func (c *Client) Argv(args ...string) []string {
	argv := make([]string, 0, len(c.global)+len(args))
	argv = append(argv, c.global...)
	return append(argv, args...)
}

// Run executes kubectl with args and returns its stdout.
//
// Exit code 0 succeeds. A non-zero exit is a PROCESS error carrying stderr
// verbatim. A missing binary is TOOL_NOT_FOUND. Anything else is UNKNOWN.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	sub := "kubectl"
	if len(args) > 0 {
		sub = "kubectl " + args[0]
	}

	res, err := c.runner.Run(ctx, c.binary, c.Argv(args...)...)
	switch {
	case err == nil && res.ExitCode == 0:
		return res.Stdout, nil
	case err == nil:
		return res.Stdout, kgerrors.Process(res.Stderr, "%s exited with code %d", sub, res.ExitCode)
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return "", kgerrors.Wrap(kgerrors.KindToolNotFound, err, "%s not found", c.binary)
	case errors.Is(err, context.DeadlineExceeded):
		return res.Stdout, kgerrors.Wrap(kgerrors.KindUnknown, err, "%s timed out after %s", sub, c.timeout)
	default:
		return res.Stdout, kgerrors.Wrap(kgerrors.KindUnknown, err, "%s failed", sub)
	}
}
