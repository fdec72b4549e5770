// Package preflight checks that the external binaries kubegen drives are
// installed.
package preflight

import (
	"os/exec"
)

// BinaryCheck represents an external binary and its purpose.
type BinaryCheck struct {
	Name        string
	Required    bool   // false = warning only
	InstallHint string // e.g., "brew install kubectl" or "https://..."
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// optionalBinaries help run a local cluster for `generate --deploy` but are
// never invoked by kubegen itself.
var optionalBinaries = []BinaryCheck{
	{
		Name:        "kind",
		Required:    false,
		InstallHint: "Install kind: https://kind.sigs.k8s.io/docs/user/quick-start/",
	},
}

// Binaries returns the checks for a kubectl binary name or path, followed by
// the optional helpers.
func Binaries(kubectl string) []BinaryCheck {
	if kubectl == "" {
		kubectl = "kubectl"
	}
	checks := []BinaryCheck{{
		Name:        kubectl,
		Required:    true,
		InstallHint: "Install kubectl: https://kubernetes.io/docs/tasks/tools/",
	}}
	return append(checks, optionalBinaries...)
}

// Missing returns the checks whose binary is not found.
func Missing(checks []BinaryCheck) []BinaryCheck {
	var missing []BinaryCheck
	for _, bin := range checks {
		if !IsBinaryAvailable(bin.Name) {
			missing = append(missing, bin)
		}
	}
	return missing
}

// CheckAll runs the checks and splits the missing binaries into errors
// (required) and warnings (optional), each as "name: hint".
func CheckAll(checks []BinaryCheck) (warnings []string, errors []string) {
	for _, bin := range Missing(checks) {
		line := bin.Name + ": " + bin.InstallHint
		if bin.Required {
			errors = append(errors, line)
		} else {
			warnings = append(warnings, line)
		}
	}
	return warnings, errors
}

// IsBinaryAvailable checks if a binary name is in PATH, or a path is executable.
func IsBinaryAvailable(name string) bool {
	_, err := lookPath(name)
	return err == nil
}
