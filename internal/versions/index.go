package versions

import (
	"encoding/json"
	"os"
	"slices"
	"sort"

	"github.com/Masterminds/semver/v3"

	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
	"github.com/cameronsjo/kubegen/internal/fileutil"
)

// Index maps a file name to the versions it was saved under.
type Index map[string][]string

// Files returns the indexed file names in lexical order.
func (idx Index) Files() []string {
	files := make([]string, 0, len(idx))
	for f := range idx {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Versions returns the versions saved for file, ordered by SortVersions.
func (idx Index) Versions(file string) []string {
	versions := slices.Clone(idx[file])
	SortVersions(versions)
	return versions
}

// add records version for file unless it is already present.
func (idx Index) add(file, version string) bool {
	if slices.Contains(idx[file], version) {
		return false
	}
	idx[file] = append(idx[file], version)
	return true
}

// SortVersions orders tags in place. Tags that parse as semantic versions
// (v1, 1.2.0, v2.0.0-rc.1) come first in version order; the rest follow in
// lexical order.
func SortVersions(tags []string) {
	parsed := make(map[string]*semver.Version, len(tags))
	for _, t := range tags {
		if v, err := semver.NewVersion(t); err == nil {
			parsed[t] = v
		}
	}

	sort.SliceStable(tags, func(i, j int) bool {
		vi, iok := parsed[tags[i]]
		vj, jok := parsed[tags[j]]
		switch {
		case iok && jok:
			if c := vi.Compare(vj); c != 0 {
				return c < 0
			}
			return tags[i] < tags[j]
		case iok != jok:
			return iok
		default:
			return tags[i] < tags[j]
		}
	})
}

// readIndex loads index.json. A missing file is an empty index.
func readIndex(path string) (Index, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Index{}, nil
	}
	if err != nil {
		return nil, kgerrors.Wrap(kgerrors.KindUnknown, err, "read index")
	}

	idx := Index{}
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, kgerrors.Wrap(kgerrors.KindParse, err, "parse index %s", path)
	}
	return idx, nil
}

// writeIndex replaces index.json atomically, indented with two spaces.
func writeIndex(path string, idx Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return kgerrors.Wrap(kgerrors.KindUnknown, err, "encode index")
	}
	if err := fileutil.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return kgerrors.Wrap(kgerrors.KindUnknown, err, "write index")
	}
	return nil
}
