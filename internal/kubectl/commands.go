package kubectl

import (
	"context"
	"fmt"
)

// DeploymentName is the stable deployment for an app.
func DeploymentName(app string) string {
	return app + "-deployment"
}

// CanaryName is the canary deployment for an app.
func CanaryName(app string) string {
	return app + "-canary"
}

// CanaryServiceName is the service exposing an app's canary.
func CanaryServiceName(app string) string {
	return app + "-canary-service"
}

// AppSelector selects the pods labelled with an app name.
func AppSelector(app string) string {
	return "app=" + app
}

// DryRun validates a manifest file without touching the cluster.
func (c *Client) DryRun(ctx context.Context, path string) (string, error) {
	return c.Run(ctx, "apply", "--dry-run=client", "-f", path)
}

// Apply applies manifest files or directories in a single kubectl call.
func (c *Client) Apply(ctx context.Context, paths ...string) (string, error) {
	args := []string{"apply"}
	for _, p := range paths {
		args = append(args, "-f", p)
	}
	return c.Run(ctx, args...)
}

// Get lists pods and services, optionally restricted by a label selector.
func (c *Client) Get(ctx context.Context, selector string) (string, error) {
	args := []string{"get", "pods,svc"}
	if selector != "" {
		args = append(args, "-l", selector)
	}
	return c.Run(ctx, args...)
}

// Pods lists the pods labelled app=<app>.
func (c *Client) Pods(ctx context.Context, app string) (string, error) {
	return c.Run(ctx, "get", "pods", "-l", AppSelector(app))
}

// RolloutHistory shows the revision history of an app's deployment.
func (c *Client) RolloutHistory(ctx context.Context, app string) (string, error) {
	return c.Run(ctx, "rollout", "history", "deployment/"+DeploymentName(app))
}

// RolloutUndo rolls an app's deployment back. A revision of 0 means the
// previous one.
func (c *Client) RolloutUndo(ctx context.Context, app string, revision int) (string, error) {
	args := []string{"rollout", "undo", "deployment/" + DeploymentName(app)}
	if revision > 0 {
		args = append(args, fmt.Sprintf("--to-revision=%d", revision))
	}
	return c.Run(ctx, args...)
}

// RolloutStatus waits for an app's deployment rollout to finish.
func (c *Client) RolloutStatus(ctx context.Context, app string) (string, error) {
	return c.Run(ctx, "rollout", "status", "deployment/"+DeploymentName(app))
}

// CreateDeployment creates a single-container deployment.
func (c *Client) CreateDeployment(ctx context.Context, name, image string) (string, error) {
	return c.Run(ctx, "create", "deployment", name, "--image="+image)
}

// Label sets a label on a deployment.
func (c *Client) Label(ctx context.Context, deployment, label string) (string, error) {
	return c.Run(ctx, "label", "deployment", deployment, label)
}

// Expose creates a service for a deployment.
func (c *Client) Expose(ctx context.Context, deployment string, port int, service string) (string, error) {
	return c.Run(ctx, "expose", "deployment", deployment, fmt.Sprintf("--port=%d", port), "--name="+service)
}

// SetImage replaces the image of container <app> in the app's deployment.
func (c *Client) SetImage(ctx context.Context, app, image string) (string, error) {
	return c.Run(ctx, "set", "image", "deployment/"+DeploymentName(app), app+"="+image)
}

// DeleteDeployment deletes a deployment by name.
func (c *Client) DeleteDeployment(ctx context.Context, name string) (string, error) {
	return c.Run(ctx, "delete", "deployment", name)
}

// DeleteService deletes a service by name.
func (c *Client) DeleteService(ctx context.Context, name string) (string, error) {
	return c.Run(ctx, "delete", "service", name)
}

// Version reports the client version, used to check the binary works.
func (c *Client) Version(ctx context.Context) (string, error) {
	return c.Run(ctx, "version", "--client")
}
