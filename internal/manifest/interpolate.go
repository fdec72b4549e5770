package manifest

import (
	"regexp"
	"strings"
	"text/template"
)

// barePattern matches an action consisting of a single identifier or dotted
// key path, optionally followed by a pipeline: {{ app_name }},
// {{- replicas -}}, {{ image | quote }}, {{ resources.limits.cpu }}.
var barePattern = regexp.MustCompile(`\{\{(-?\s*)([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)(\s*(?:\|[^{}]*)?-?)\}\}`)

// keywords are identifiers text/template reserves for itself.
var keywords = map[string]bool{
	"else":     true,
	"end":      true,
	"nil":      true,
	"true":     true,
	"false":    true,
	"break":    true,
	"continue": true,
}

// qualify rewrites bare placeholders into field references on the root
// values map ({{ app_name }} becomes {{ .app_name }}, {{ a.b }} becomes
// {{ .a.b }}). Identifiers that are
// template keywords, or functions not shadowed by a values key, are left
// alone. Everything else in the template passes through untouched.
func qualify(text string, funcs template.FuncMap, values map[string]any) string {
	return barePattern.ReplaceAllStringFunc(text, func(match string) string {
		parts := barePattern.FindStringSubmatch(match)
		ident := parts[2]
		head, _, dotted := strings.Cut(ident, ".")

		if keywords[head] && !dotted {
			return match
		}
		if _, isFunc := funcs[head]; isFunc && !dotted {
			if _, isKey := values[head]; !isKey {
				return match
			}
		}

		return "{{" + parts[1] + "." + ident + parts[3] + "}}"
	})
}
