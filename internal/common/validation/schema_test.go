package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sentinel-assessment/internal/common/errors"
)

const personSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"age":  {"type": "integer", "minimum": 0}
	},
	"required": ["name"]
}`

func TestValidator_Valid(t *testing.T) {
	v, err := NewValidator(personSchema)
	require.NoError(t, err)

	result := v.Validate(map[string]interface{}{"name": "Ada", "age": 36})
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.NoError(t, result.Err())
}

func TestValidator_Invalid(t *testing.T) {
	v := MustValidator(personSchema)

	result := v.ValidateJSON([]byte(`{"age": -1}`))
	require.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)

	fields := map[string]bool{}
	for _, e := range result.Errors {
		fields[e.Field] = true
		assert.NotEmpty(t, e.Code)
	}
	assert.True(t, fields["age"])
	assert.Contains(t, result.Summary(), "name is required")

	err := result.Err()
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInputValidationFailed))
}

func TestValidator_MalformedDocument(t *testing.T) {
	v := MustValidator(personSchema)

	result := v.ValidateJSON([]byte(`{not json`))
	assert.False(t, result.Valid)
	assert.Equal(t, "INVALID_DOCUMENT", result.Errors[0].Code)
}

func TestNewValidator_BadSchema(t *testing.T) {
	_, err := NewValidator(`{"type": 12}`)
	assert.Error(t, err)

	assert.Panics(t, func() { MustValidator(`{`) })
}
