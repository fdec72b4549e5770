// Package rollout inspects and reverts revisions of an app's stable
// deployment.
package rollout

import (
	"context"
	"errors"
	"fmt"

	"github.com/cameronsjo/kubegen/internal/kubectl"
	"github.com/cameronsjo/kubegen/internal/logging"
)

// ErrUnsettled is returned when an undo was accepted but the rollout did not
// reach a healthy state.
var ErrUnsettled = errors.New("rollback completed with warnings")

// Result is the output collected by Undo.
type Result struct {
	// Undo is kubectl's response to the undo request.
	Undo string

	// Pods lists the app's pods once the rollout settled.
	Pods string
}

// Manager drives rollouts through a kubectl client.
type Manager struct {
	Kubectl *kubectl.Client
}

// NewManager creates a Manager.
func NewManager(client *kubectl.Client) *Manager {
	return &Manager{Kubectl: client}
}

// History returns the revision history of the app's deployment.
func (m *Manager) History(ctx context.Context, app string) (string, error) {
	out, err := m.Kubectl.RolloutHistory(ctx, app)
	if err != nil {
		return "", fmt.Errorf("history of %s: %w", kubectl.DeploymentName(app), err)
	}
	return out, nil
}

// Undo reverts the app's deployment to revision, or to the previous revision
// when revision is 0, then waits for the rollout to settle.
//
// When the undo succeeds but the status check fails, the partial Result is
// returned along with an error wrapping ErrUnsettled.
func (m *Manager) Undo(ctx context.Context, app string, revision int) (*Result, error) {
	if revision < 0 {
		return nil, fmt.Errorf("revision must be positive, got %d", revision)
	}

	out, err := m.Kubectl.RolloutUndo(ctx, app, revision)
	if err != nil {
		return nil, fmt.Errorf("undo %s: %w", kubectl.DeploymentName(app), err)
	}
	res := &Result{Undo: out}

	logging.Logger.Debugf("Waiting for %s to settle", kubectl.DeploymentName(app))
	if _, err := m.Kubectl.RolloutStatus(ctx, app); err != nil {
		return res, fmt.Errorf("%w: %w", ErrUnsettled, err)
	}

	pods, err := m.Kubectl.Pods(ctx, app)
	if err != nil {
		logging.Logger.Warnf("list pods for %s: %v", app, err)
	}
	res.Pods = pods
	return res, nil
}
