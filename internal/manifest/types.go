package manifest

import (
	"fmt"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// TemplateSuffixes are stripped from a template file name to get the name
// of its rendered output.
var TemplateSuffixes = []string{".template", ".tmpl", ".tpl"}

// Object identifies one Kubernetes object found in a rendered manifest.
type Object struct {
	// GVK is parsed from the apiVersion and kind fields.
	GVK schema.GroupVersionKind

	// Name is metadata.name.
	Name string

	// Namespace is metadata.namespace, empty when unset.
	Namespace string

	// Index is the zero-based position of the document in the manifest.
	Index int
}

// String formats the object as kind/name, the way kubectl prints it.
func (o Object) String() string {
	return fmt.Sprintf("%s/%s", o.GVK.Kind, o.Name)
}
