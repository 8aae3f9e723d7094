// Package gojsonschema validates raw manifest JSON against an embedded
// JSON Schema.
package gojsonschema

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/fwojciec/docsync"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed manifest.schema.json
var manifestSchema []byte

// Ensure Validator implements docsync.ManifestValidator at compile time.
var _ docsync.ManifestValidator = (*Validator)(nil)

// Validator checks manifest JSON against the manifest schema.
// The schema is compiled once; Validator is safe for concurrent use.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the embedded manifest schema.
func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(manifestSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile manifest schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// ValidateManifest returns EINVALID if data is not JSON or does not match
// the manifest schema. The message lists each violation by field.
func (v *Validator) ValidateManifest(data []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return docsync.Errorf(docsync.EINVALID, "manifest is not valid JSON: %s", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		violations = append(violations, field+": "+desc.Description())
	}

	return docsync.Errorf(docsync.EINVALID, "manifest does not match schema: %s", strings.Join(violations, "; "))
}
