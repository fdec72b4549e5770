package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
	"github.com/cameronsjo/kubegen/internal/fileutil"
	"github.com/cameronsjo/kubegen/internal/values"
)

// Render substitutes values into template text. The name only appears in
// error messages. Referencing a missing key fails with a RENDER error.
func Render(name, text string, v values.Values) (string, error) {
	data := map[string]any(v)
	if data == nil {
		data = map[string]any{}
	}

	funcs := sprig.TxtFuncMap()
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(funcs).
		Parse(qualify(text, funcs, data))
	if err != nil {
		return "", kgerrors.Wrap(kgerrors.KindRender, err, "parse template %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", kgerrors.Wrap(kgerrors.KindRender, err, "render template %s", name)
	}

	return buf.String(), nil
}

// LoadTemplate reads a template file.
func LoadTemplate(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", kgerrors.New(kgerrors.KindNotFound, "template %s not found", path)
		}
		return "", kgerrors.Wrap(kgerrors.KindUnknown, err, "read template %s", path)
	}
	return string(content), nil
}

// RenderFile loads and renders a template file.
func RenderFile(path string, v values.Values) (string, error) {
	text, err := LoadTemplate(path)
	if err != nil {
		return "", err
	}
	return Render(filepath.Base(path), text, v)
}

// Write stores a rendered manifest at path, creating parent directories.
func Write(content, path string) error {
	if err := fileutil.WriteFile(path, []byte(content), 0644); err != nil {
		return kgerrors.Wrap(kgerrors.KindUnknown, err, "write manifest %s", path)
	}
	return nil
}

// OutputName derives the rendered file name from a template path:
// deployment.yaml.template becomes deployment.yaml.
func OutputName(templatePath string) string {
	base := filepath.Base(templatePath)
	for _, suffix := range TemplateSuffixes {
		if trimmed, ok := strings.CutSuffix(base, suffix); ok && trimmed != "" {
			return trimmed
		}
	}
	return base
}
