// Package values loads and validates the values mapping that feeds manifest
// templates.
package values

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
)

// Required keys of every values file.
const (
	KeyAppName       = "app_name"
	KeyProtocol      = "protocol"
	KeyImage         = "image"
	KeyReplicas      = "replicas"
	KeyContainerPort = "container_port"
	KeyServicePort   = "service_port"
)

// Values maps template placeholder names to their values.
type Values map[string]any

// Load reads one or more YAML values files. The first file is the base;
// each later file is an overlay whose keys override the base, with nested
// mappings merged key by key.
func Load(paths ...string) (Values, error) {
	if len(paths) == 0 {
		return nil, kgerrors.New(kgerrors.KindNotFound, "no values file given")
	}

	var merged Values
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, kgerrors.New(kgerrors.KindNotFound, "values file not found: %s", path)
			}
			return nil, kgerrors.Wrap(kgerrors.KindUnknown, err, "read values file %s", path)
		}

		v, err := Parse(data, path)
		if err != nil {
			return nil, err
		}

		if merged == nil {
			merged = v
			continue
		}
		if err := mergo.Merge(&merged, v, mergo.WithOverride); err != nil {
			return nil, kgerrors.Wrap(kgerrors.KindUnknown, err, "merge values overlay %s", path)
		}
	}

	return merged, nil
}

// Parse decodes a single YAML values document. source names the input in
// error messages.
func Parse(data []byte, source string) (Values, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, kgerrors.New(kgerrors.KindParse, "values file %s is empty", source)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, kgerrors.Wrap(kgerrors.KindParse, err, "parse values file %s", source)
	}

	switch m := normalize(raw).(type) {
	case map[string]any:
		return Values(m), nil
	case nil:
		return nil, kgerrors.New(kgerrors.KindParse, "values file %s is empty", source)
	default:
		return nil, kgerrors.New(kgerrors.KindParse, "values file %s must be a mapping, got %T", source, m)
	}
}

// String returns the value of key formatted as a string, or "" if absent.
func (v Values) String(key string) string {
	val, ok := v[key]
	if !ok || val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", val)
}

// Int returns the value of key as an int. ok is false if the key is absent
// or not a whole number.
func (v Values) Int(key string) (int, bool) {
	switch n := v[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// AppName returns the app_name value.
func (v Values) AppName() string {
	return v.String(KeyAppName)
}

// normalize converts YAML's map[any]any (produced for non-string keys) into
// map[string]any throughout the tree.
func normalize(in any) any {
	switch t := in.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return in
	}
}
