// Package manifest renders Kubernetes manifests from text templates and a
// values mapping.
//
// Templates are Go text/template documents with the sprig function library.
// A bare placeholder addresses the values mapping directly, so both forms
// below are equivalent:
//
//	name: {{ app_name }}-deployment
//	name: {{ .app_name }}-deployment
//
// Nested keys work the same way: {{ resources.limits.cpu }}.
//
// Referencing a key that is absent from the values is a render error rather
// than an empty string.
//
// # Output
//
// Rendered documents can be written with [Write] and checked with [Inspect],
// which verifies each YAML document names a well-formed Kubernetes object
// before it is handed to kubectl.
package manifest
