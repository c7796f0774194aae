// Package schemas validates structured model output against embedded JSON Schemas.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// RankedLinksSchemaName is the embedded schema for link-ranking responses.
const RankedLinksSchemaName = "ranked_links.schema.json"

//go:embed ranked_links.schema.json
var rankedLinksSchema string

var (
	rankedLinksOnce     sync.Once
	rankedLinksCompiled *gojsonschema.Schema
	rankedLinksErr      error
)

// RankedLinksSchema returns the raw JSON Schema for link-ranking responses.
func RankedLinksSchema() string {
	return rankedLinksSchema
}

// ValidationError lists every schema violation in a document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "document does not match %s:\n", ve.Schema)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError means the embedded schema itself could not be compiled.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// DocumentError means the document is not parseable JSON.
type DocumentError struct {
	Schema string
	Cause  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document for %s is not valid JSON: %v", e.Schema, e.Cause)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

func rankedLinks() (*gojsonschema.Schema, error) {
	rankedLinksOnce.Do(func() {
		rankedLinksCompiled, rankedLinksErr = compile(RankedLinksSchemaName, rankedLinksSchema)
	})
	return rankedLinksCompiled, rankedLinksErr
}

func compile(name, content string) (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, &SchemaLoadError{
			Path:    name,
			Message: "invalid JSON Schema",
			Cause:   err,
		}
	}
	return schema, nil
}

// ValidateRankedLinks validates a link-ranking model response. It returns a
// *DocumentError for unparseable JSON and a *ValidationError listing every
// violation otherwise.
func ValidateRankedLinks(jsonContent string) error {
	schema, err := rankedLinks()
	if err != nil {
		return err
	}
	return validate(RankedLinksSchemaName, schema, jsonContent)
}

func validate(name string, schema *gojsonschema.Schema, jsonContent string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return &DocumentError{Schema: name, Cause: err}
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
