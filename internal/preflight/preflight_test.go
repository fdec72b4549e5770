package preflight

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stubLookPath(t *testing.T, present ...string) {
	t.Helper()
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	lookPath = func(name string) (string, error) {
		for _, p := range present {
			if p == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestBinaries(t *testing.T) {
	t.Run("default kubectl", func(t *testing.T) {
		checks := Binaries("")
		assert.Equal(t, "kubectl", checks[0].Name)
		assert.True(t, checks[0].Required)
		assert.Len(t, checks, 1+len(optionalBinaries))
	})

	t.Run("configured path", func(t *testing.T) {
		checks := Binaries("/opt/k8s/kubectl")
		assert.Equal(t, "/opt/k8s/kubectl", checks[0].Name)
	})

	t.Run("every check has a hint", func(t *testing.T) {
		for _, bin := range Binaries("kubectl") {
			assert.NotEmpty(t, bin.InstallHint, bin.Name)
		}
	})
}

func TestCheckAll(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		stubLookPath(t, "kubectl", "kind")

		warnings, errs := CheckAll(Binaries("kubectl"))
		assert.Empty(t, warnings)
		assert.Empty(t, errs)
	})

	t.Run("kubectl missing is an error", func(t *testing.T) {
		stubLookPath(t, "kind")

		warnings, errs := CheckAll(Binaries("kubectl"))
		assert.Empty(t, warnings)
		assert.Equal(t, []string{"kubectl: Install kubectl: https://kubernetes.io/docs/tasks/tools/"}, errs)
	})

	t.Run("optional missing is a warning", func(t *testing.T) {
		stubLookPath(t, "kubectl")

		warnings, errs := CheckAll(Binaries("kubectl"))
		assert.Empty(t, errs)
		assert.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "kind:")
	})
}

func TestMissing(t *testing.T) {
	stubLookPath(t)
	assert.Len(t, Missing(Binaries("kubectl")), 1+len(optionalBinaries))
}

func TestIsBinaryAvailable(t *testing.T) {
	t.Run("returns false for non-existent binary", func(t *testing.T) {
		assert.False(t, IsBinaryAvailable("this-binary-definitely-does-not-exist-xyz123"))
	})

	t.Run("finds a shell", func(t *testing.T) {
		if IsBinaryAvailable("sh") {
			assert.True(t, IsBinaryAvailable("sh"))
		}
	})
}
