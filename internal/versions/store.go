package versions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/cameronsjo/kubegen/internal/config"
	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
	"github.com/cameronsjo/kubegen/internal/fileutil"
	"github.com/cameronsjo/kubegen/internal/lock"
	"github.com/cameronsjo/kubegen/internal/logging"
)

const (
	// IndexFile is the index name inside the versions directory.
	IndexFile = "index.json"

	// lockName names the lock guarding index.json.
	lockName = "index"

	// MinFreeDiskBytes is the headroom required on top of a version's size.
	MinFreeDiskBytes = 1024 * 1024
)

// TrackedSuffixes selects which template directory files are versioned.
var TrackedSuffixes = []string{".template", ".yaml"}

// Store saves and restores versions of a template directory.
type Store struct {
	TemplateDir string
	VersionsDir string
}

// NewStore creates a Store rooted at the configured directories.
func NewStore(cfg *config.Config) *Store {
	return &Store{TemplateDir: cfg.TemplatesDir, VersionsDir: cfg.VersionsDir}
}

// IndexPath returns the path of index.json.
func (s *Store) IndexPath() string {
	return filepath.Join(s.VersionsDir, IndexFile)
}

// Dir returns the directory holding a version's files.
func (s *Store) Dir(version string) string {
	return filepath.Join(s.VersionsDir, version)
}

// SaveAll copies every tracked file in the template directory into the
// version's directory and records it in the index. It returns the saved
// file names; an empty result is not an error.
func (s *Store) SaveAll(ctx context.Context, version string) ([]string, error) {
	if err := ValidateVersion(version); err != nil {
		return nil, err
	}

	files, err := s.trackedFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	size, err := totalSize(s.TemplateDir, files)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.Dir(version), 0755); err != nil {
		return nil, kgerrors.Wrap(kgerrors.KindUnknown, err, "create version directory")
	}
	if err := checkDiskSpace(s.Dir(version), size+MinFreeDiskBytes); err != nil {
		return nil, kgerrors.Wrap(kgerrors.KindUnknown, err, "insufficient disk space for version %s", version)
	}

	for _, name := range files {
		if err := fileutil.CopyFile(filepath.Join(s.TemplateDir, name), filepath.Join(s.Dir(version), name)); err != nil {
			return nil, kgerrors.Wrap(kgerrors.KindUnknown, err, "save %s", name)
		}
		logging.Logger.Debugf("Saved %s in version %s", name, version)
	}

	err = lock.WithLock(ctx, s.VersionsDir, lockName, func() error {
		idx, err := readIndex(s.IndexPath())
		if err != nil {
			return err
		}
		for _, name := range files {
			idx.add(name, version)
		}
		return writeIndex(s.IndexPath(), idx)
	})
	if err != nil {
		return nil, fmt.Errorf("update index: %w", err)
	}

	return files, nil
}

// LoadAll copies every file of a version back into the template directory,
// overwriting files with the same name. It returns the restored file names.
func (s *Store) LoadAll(version string) ([]string, error) {
	if err := ValidateVersion(version); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.Dir(version))
	if os.IsNotExist(err) {
		return nil, kgerrors.New(kgerrors.KindNotFound, "version %s does not exist", version)
	}
	if err != nil {
		return nil, kgerrors.Wrap(kgerrors.KindUnknown, err, "read version %s", version)
	}

	var restored []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		src := filepath.Join(s.Dir(version), entry.Name())
		if err := fileutil.CopyFile(src, filepath.Join(s.TemplateDir, entry.Name())); err != nil {
			return restored, kgerrors.Wrap(kgerrors.KindUnknown, err, "restore %s", entry.Name())
		}
		logging.Logger.Debugf("Restored %s from version %s", entry.Name(), version)
		restored = append(restored, entry.Name())
	}

	return restored, nil
}

// List returns the index. A missing index is an empty one.
func (s *Store) List() (Index, error) {
	return readIndex(s.IndexPath())
}

// Exists reports whether a version directory is present.
func (s *Store) Exists(version string) bool {
	info, err := os.Stat(s.Dir(version))
	return err == nil && info.IsDir()
}

// ValidateVersion rejects tags that are not a single, visible path element.
func ValidateVersion(version string) error {
	switch {
	case version == "":
		return kgerrors.New(kgerrors.KindValidation, "version must not be empty")
	case strings.ContainsAny(version, `/\`):
		return kgerrors.New(kgerrors.KindValidation, "version %q must not contain path separators", version)
	case strings.HasPrefix(version, "."):
		return kgerrors.New(kgerrors.KindValidation, "version %q must not start with a dot", version)
	case version == IndexFile:
		return kgerrors.New(kgerrors.KindValidation, "version %q is reserved for the version index", version)
	}
	return nil
}

// trackedFiles lists the template directory files eligible for saving.
func (s *Store) trackedFiles() ([]string, error) {
	entries, err := os.ReadDir(s.TemplateDir)
	if os.IsNotExist(err) {
		return nil, kgerrors.New(kgerrors.KindNotFound, "template directory %s not found", s.TemplateDir)
	}
	if err != nil {
		return nil, kgerrors.Wrap(kgerrors.KindUnknown, err, "read template directory")
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		for _, suffix := range TrackedSuffixes {
			if strings.HasSuffix(name, suffix) {
				files = append(files, name)
				break
			}
		}
	}
	return files, nil
}

func totalSize(dir string, files []string) (int64, error) {
	var size int64
	for _, name := range files {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return 0, kgerrors.Wrap(kgerrors.KindUnknown, err, "stat %s", name)
		}
		size += info.Size()
	}
	return size, nil
}

// checkDiskSpace checks if there's enough disk space available.
func checkDiskSpace(dir string, requiredBytes int64) error {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return fmt.Errorf("check disk space: %w", err)
	}

	available := int64(stat.Bavail) * int64(stat.Bsize)
	if available < requiredBytes {
		return fmt.Errorf("need %d bytes, only %d available", requiredBytes, available)
	}
	return nil
}
