// Package canary runs a side-by-side canary deployment next to an app's
// stable deployment, then promotes or removes it.
//
// The canary lives in deployment <app>-canary behind service
// <app>-canary-service. The stable deployment is <app>-deployment.
package canary

import (
	"context"
	"fmt"
	"strings"

	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
	"github.com/cameronsjo/kubegen/internal/kubectl"
	"github.com/cameronsjo/kubegen/internal/logging"
)

// DefaultPort is the port the canary service exposes.
const DefaultPort = 80

// Outcome reports what a workflow step left behind.
type Outcome struct {
	// Warnings lists cleanup steps that failed without failing the workflow.
	Warnings []string
}

func (o *Outcome) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logging.Logger.Warn(msg)
	o.Warnings = append(o.Warnings, msg)
}

// Manager drives canary workflows through a kubectl client.
type Manager struct {
	Kubectl *kubectl.Client

	// Port is exposed by the canary service. Zero means DefaultPort.
	Port int
}

// NewManager creates a Manager using DefaultPort.
func NewManager(client *kubectl.Client) *Manager {
	return &Manager{Kubectl: client, Port: DefaultPort}
}

func (m *Manager) port() int {
	if m.Port <= 0 {
		return DefaultPort
	}
	return m.Port
}

// Deploy creates, labels and exposes the canary deployment. It stops at the
// first failing step and leaves whatever was already created in place.
func (m *Manager) Deploy(ctx context.Context, app, image string) error {
	name := kubectl.CanaryName(app)

	if _, err := m.Kubectl.CreateDeployment(ctx, name, image); err != nil {
		return fmt.Errorf("create canary deployment: %w", err)
	}
	if _, err := m.Kubectl.Label(ctx, name, kubectl.AppSelector(name)); err != nil {
		return fmt.Errorf("label canary deployment: %w", err)
	}
	if _, err := m.Kubectl.Expose(ctx, name, m.port(), kubectl.CanaryServiceName(app)); err != nil {
		return fmt.Errorf("expose canary deployment: %w", err)
	}

	logging.Logger.Infof("Canary %s deployed with image %s", name, image)
	return nil
}

// Promote sets the stable deployment's image, then removes the canary.
// Only the image update can fail the promotion; cleanup failures come back
// as warnings.
func (m *Manager) Promote(ctx context.Context, app, image string) (*Outcome, error) {
	if _, err := m.Kubectl.SetImage(ctx, app, image); err != nil {
		return nil, fmt.Errorf("update stable image: %w", err)
	}

	out := &Outcome{}
	m.cleanup(ctx, app, out)
	return out, nil
}

// Clean removes the canary deployment and service. It always succeeds;
// failed deletes come back as warnings.
func (m *Manager) Clean(ctx context.Context, app string) *Outcome {
	out := &Outcome{}
	m.cleanup(ctx, app, out)
	return out
}

func (m *Manager) cleanup(ctx context.Context, app string, out *Outcome) {
	if _, err := m.Kubectl.DeleteDeployment(ctx, kubectl.CanaryName(app)); err != nil {
		out.warn("delete deployment %s: %s", kubectl.CanaryName(app), reason(err))
	}
	if _, err := m.Kubectl.DeleteService(ctx, kubectl.CanaryServiceName(app)); err != nil {
		out.warn("delete service %s: %s", kubectl.CanaryServiceName(app), reason(err))
	}
}

// reason prefers kubectl's own stderr over the wrapped exit status.
func reason(err error) string {
	if stderr := strings.TrimSpace(kgerrors.StderrOf(err)); stderr != "" {
		return stderr
	}
	return err.Error()
}
