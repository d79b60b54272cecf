// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "sentinel-assessment/internal/common/errors"
)

// Validator checks documents against one compiled JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewValidator compiles schemaJSON. A malformed schema is a programming error
// and is reported immediately.
func NewValidator(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// MustValidator is NewValidator for package-level schemas.
func MustValidator(schemaJSON string) *Validator {
	v, err := NewValidator(schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks a Go value (map, struct) against the schema.
func (v *Validator) Validate(document interface{}) *ValidationResult {
	return v.run(gojsonschema.NewGoLoader(document))
}

// ValidateJSON checks raw JSON bytes against the schema.
func (v *Validator) ValidateJSON(raw []byte) *ValidationResult {
	return v.run(gojsonschema.NewBytesLoader(raw))
}

func (v *Validator) run(loader gojsonschema.JSONLoader) *ValidationResult {
	result, err := v.schema.Validate(loader)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_DOCUMENT",
			}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	return out
}

// Summary joins all errors as "field: message" pairs.
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// Err converts a failed result into an INPUT_VALIDATION_FAILED error.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return apperrors.NewInputValidationFailedError(r.Summary())
}
