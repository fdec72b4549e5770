package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation"

	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
)

// objectHeader is the part of a Kubernetes object Inspect looks at.
type objectHeader struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Metadata   struct {
		Name      string `yaml:"name"`
		Namespace string `yaml:"namespace"`
	} `yaml:"metadata"`
}

// Inspect parses a rendered manifest, which may hold several YAML documents,
// and returns the objects it declares. Empty documents are skipped.
// Malformed YAML is a PARSE error; a document that is not a well-formed
// Kubernetes object is a VALIDATION error.
func Inspect(content string) ([]Object, error) {
	dec := yaml.NewDecoder(bytes.NewReader([]byte(content)))

	var objects []Object
	for index := 0; ; index++ {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, kgerrors.Wrap(kgerrors.KindParse, err, "document %d", index)
		}
		if isEmptyDocument(&node) {
			continue
		}

		var header objectHeader
		if err := node.Decode(&header); err != nil {
			return nil, kgerrors.Wrap(kgerrors.KindValidation, err, "document %d is not an object", index)
		}

		obj, err := checkHeader(header)
		if err != nil {
			return nil, kgerrors.Wrap(kgerrors.KindValidation, err, "document %d", index)
		}
		obj.Index = index
		objects = append(objects, obj)
	}

	if len(objects) == 0 {
		return nil, kgerrors.New(kgerrors.KindValidation, "manifest declares no objects")
	}
	return objects, nil
}

func isEmptyDocument(node *yaml.Node) bool {
	if len(node.Content) == 0 {
		return true
	}
	root := node.Content[0]
	return root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null"
}

func checkHeader(h objectHeader) (Object, error) {
	if h.APIVersion == "" {
		return Object{}, fmt.Errorf("apiVersion is required")
	}
	if h.Kind == "" {
		return Object{}, fmt.Errorf("kind is required")
	}
	gv, err := schema.ParseGroupVersion(h.APIVersion)
	if err != nil {
		return Object{}, err
	}
	if h.Metadata.Name == "" {
		return Object{}, fmt.Errorf("%s: metadata.name is required", h.Kind)
	}
	if msgs := validation.IsDNS1123Subdomain(h.Metadata.Name); len(msgs) > 0 {
		return Object{}, fmt.Errorf("%s %q: invalid name: %s", h.Kind, h.Metadata.Name, strings.Join(msgs, "; "))
	}
	if ns := h.Metadata.Namespace; ns != "" {
		if msgs := validation.IsDNS1123Label(ns); len(msgs) > 0 {
			return Object{}, fmt.Errorf("%s %q: invalid namespace %q: %s", h.Kind, h.Metadata.Name, ns, strings.Join(msgs, "; "))
		}
	}

	return Object{
		GVK:       gv.WithKind(h.Kind),
		Name:      h.Metadata.Name,
		Namespace: h.Metadata.Namespace,
	}, nil
}
