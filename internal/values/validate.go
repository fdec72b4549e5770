package values

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://kubegen.dev/schemas/values.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add values schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// ValidationError lists every reason a values mapping was rejected.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

// Schema returns the JSON schema values are checked against.
func Schema() string {
	return schemaJSON
}

// Validate checks v against the values schema: required keys, types,
// numeric bounds and the image pattern. It returns nil when v is valid and
// a KindValidation error wrapping *ValidationError otherwise.
func Validate(v Values) error {
	schema, err := compiledSchema()
	if err != nil {
		return kgerrors.Wrap(kgerrors.KindUnknown, err, "compile values schema")
	}

	doc, err := toJSON(v)
	if err != nil {
		return kgerrors.Wrap(kgerrors.KindValidation, err, "values are not representable as JSON")
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return kgerrors.Wrap(kgerrors.KindUnknown, err, "validate values")
		}
		return kgerrors.Wrap(kgerrors.KindValidation, &ValidationError{Reasons: reasons(ve)}, "invalid values")
	}

	return nil
}

// toJSON converts v into the generic JSON document model the validator
// expects, keeping numbers exact.
func toJSON(v Values) (any, error) {
	if v == nil {
		v = Values{}
	}
	data, err := json.Marshal(map[string]any(v))
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// reasons flattens the validator's error tree into one line per leaf,
// prefixed with the offending field.
func reasons(ve *jsonschema.ValidationError) []string {
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := strings.TrimPrefix(e.InstanceLocation, "/")
			if field == "" {
				out = append(out, e.Message)
			} else {
				out = append(out, field+": "+e.Message)
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)

	sort.Strings(out)
	return out
}
