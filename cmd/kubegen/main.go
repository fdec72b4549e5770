// Command kubegen renders Kubernetes manifests from templates and drives
// kubectl release workflows.
package main

import "github.com/cameronsjo/kubegen/internal/cmd"

func main() {
	cmd.Execute()
}
