package versions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/kubegen/internal/config"
	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	s := &Store{
		TemplateDir: filepath.Join(root, "templates"),
		VersionsDir: filepath.Join(root, "templates_versions"),
	}
	require.NoError(t, os.MkdirAll(s.TemplateDir, 0755))

	writeTemplate(t, s, "deployment.yaml.template", "kind: Deployment\nname: {{ app_name }}\n")
	writeTemplate(t, s, "service.yaml.template", "kind: Service\n")
	writeTemplate(t, s, "values.yaml", "app_name: web\n")
	writeTemplate(t, s, "README.md", "not versioned\n")
	return s
}

func writeTemplate(t *testing.T, s *Store, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(s.TemplateDir, name), []byte(content), 0644))
}

func readTemplate(t *testing.T, s *Store, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.TemplateDir, name))
	require.NoError(t, err)
	return string(data)
}

func TestNewStore(t *testing.T) {
	s := NewStore(&config.Config{TemplatesDir: "/p/templates", VersionsDir: "/p/templates_versions"})
	assert.Equal(t, "/p/templates", s.TemplateDir)
	assert.Equal(t, "/p/templates_versions/index.json", s.IndexPath())
}

func TestSaveAll(t *testing.T) {
	s := setupStore(t)

	saved, err := s.SaveAll(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"deployment.yaml.template", "service.yaml.template", "values.yaml"}, saved)

	_, err = os.Stat(filepath.Join(s.Dir("v1"), "README.md"))
	assert.True(t, os.IsNotExist(err), "untracked files are not saved")

	idx, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, Index{
		"deployment.yaml.template": {"v1"},
		"service.yaml.template":    {"v1"},
		"values.yaml":              {"v1"},
	}, idx)
}

func TestSaveAll_IndexFormat(t *testing.T) {
	s := setupStore(t)
	_, err := s.SaveAll(context.Background(), "v1")
	require.NoError(t, err)

	data, err := os.ReadFile(s.IndexPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "{\n  \"deployment.yaml.template\": [\n    \"v1\"\n  ],")

	var raw map[string][]string
	require.NoError(t, json.Unmarshal(data, &raw))
}

func TestSaveAll_Idempotent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.SaveAll(ctx, "v1")
	require.NoError(t, err)
	_, err = s.SaveAll(ctx, "v1")
	require.NoError(t, err)

	idx, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, idx["values.yaml"])
}

func TestSaveAll_NothingToSave(t *testing.T) {
	root := t.TempDir()
	s := &Store{TemplateDir: filepath.Join(root, "templates"), VersionsDir: filepath.Join(root, "versions")}
	require.NoError(t, os.MkdirAll(s.TemplateDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(s.TemplateDir, "notes.txt"), []byte("x"), 0644))

	saved, err := s.SaveAll(context.Background(), "v1")
	require.NoError(t, err)
	assert.Empty(t, saved)

	_, err = os.Stat(s.IndexPath())
	assert.True(t, os.IsNotExist(err))
}

func TestSaveAll_MissingTemplateDir(t *testing.T) {
	root := t.TempDir()
	s := &Store{TemplateDir: filepath.Join(root, "nope"), VersionsDir: filepath.Join(root, "versions")}

	_, err := s.SaveAll(context.Background(), "v1")
	require.Error(t, err)
	assert.Equal(t, kgerrors.KindNotFound, kgerrors.KindOf(err))
}

func TestSaveAll_SkipsDirectoriesAndHiddenFiles(t *testing.T) {
	s := setupStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(s.TemplateDir, "nested.yaml"), 0755))
	writeTemplate(t, s, ".tmp-1234abcd-values.yaml", "partial")

	saved, err := s.SaveAll(context.Background(), "v1")
	require.NoError(t, err)
	assert.NotContains(t, saved, "nested.yaml")
	assert.NotContains(t, saved, ".tmp-1234abcd-values.yaml")
}

func TestSaveAll_CorruptIndex(t *testing.T) {
	s := setupStore(t)
	require.NoError(t, os.MkdirAll(s.VersionsDir, 0755))
	require.NoError(t, os.WriteFile(s.IndexPath(), []byte("{not json"), 0644))

	_, err := s.SaveAll(context.Background(), "v1")
	require.Error(t, err)
	assert.Equal(t, kgerrors.KindParse, kgerrors.KindOf(err))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	original := readTemplate(t, s, "deployment.yaml.template")

	_, err := s.SaveAll(ctx, "v1")
	require.NoError(t, err)

	writeTemplate(t, s, "deployment.yaml.template", "kind: Deployment\nname: changed\n")
	writeTemplate(t, s, "values.yaml", "app_name: other\n")

	restored, err := s.LoadAll("v1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"deployment.yaml.template", "service.yaml.template", "values.yaml"}, restored)

	assert.Equal(t, original, readTemplate(t, s, "deployment.yaml.template"))
	assert.Equal(t, "app_name: web\n", readTemplate(t, s, "values.yaml"))
}

func TestLoadAll_NotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.LoadAll("v9")
	require.Error(t, err)
	assert.Equal(t, kgerrors.KindNotFound, kgerrors.KindOf(err))
}

func TestLoadAll_EmptyVersion(t *testing.T) {
	s := setupStore(t)
	require.NoError(t, os.MkdirAll(s.Dir("empty"), 0755))

	restored, err := s.LoadAll("empty")
	require.NoError(t, err)
	assert.Empty(t, restored)
}

func TestLoadAll_CreatesTemplateDir(t *testing.T) {
	s := setupStore(t)
	_, err := s.SaveAll(context.Background(), "v1")
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(s.TemplateDir))

	_, err = s.LoadAll("v1")
	require.NoError(t, err)
	assert.Equal(t, "app_name: web\n", readTemplate(t, s, "values.yaml"))
}

func TestList_Empty(t *testing.T) {
	s := setupStore(t)

	idx, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, idx)
}

func TestExists(t *testing.T) {
	s := setupStore(t)
	assert.False(t, s.Exists("v1"))

	_, err := s.SaveAll(context.Background(), "v1")
	require.NoError(t, err)
	assert.True(t, s.Exists("v1"))
}

func TestValidateVersion(t *testing.T) {
	for _, bad := range []string{"", ".", "..", ".locks", "v1/../x", `a\b`, "../escape", "index.json"} {
		t.Run(fmt.Sprintf("reject %q", bad), func(t *testing.T) {
			err := ValidateVersion(bad)
			require.Error(t, err)
			assert.Equal(t, kgerrors.KindValidation, kgerrors.KindOf(err))
		})
	}

	for _, good := range []string{"v1", "1.2.0", "2024-06-01", "release_candidate"} {
		t.Run(good, func(t *testing.T) {
			assert.NoError(t, ValidateVersion(good))
		})
	}
}

func TestSaveAll_RejectsBadVersion(t *testing.T) {
	s := setupStore(t)

	_, err := s.SaveAll(context.Background(), "../escape")
	require.Error(t, err)
	assert.Equal(t, kgerrors.KindValidation, kgerrors.KindOf(err))

	_, err = os.Stat(filepath.Join(filepath.Dir(s.VersionsDir), "escape"))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveAll_IndexNameKeepsStoreUsable(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.SaveAll(ctx, IndexFile)
	require.Error(t, err)
	assert.Equal(t, kgerrors.KindValidation, kgerrors.KindOf(err))

	_, err = s.SaveAll(ctx, "v1")
	require.NoError(t, err)

	idx, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, idx.Versions("deployment.yaml.template"))

	_, err = s.LoadAll(IndexFile)
	require.Error(t, err)
	assert.Equal(t, kgerrors.KindValidation, kgerrors.KindOf(err))
}

func TestSaveAll_ConcurrentVersions(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.SaveAll(ctx, fmt.Sprintf("v%d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	idx, err := s.List()
	require.NoError(t, err)
	assert.Len(t, idx["values.yaml"], n, "no saves may be lost")
}
