// Package errors provides standardized error handling for the assessment service and its BPMN workers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Assessment errors
const (
	ErrCodeInvalidAnswer         ErrorCode = "INVALID_ANSWER"
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
)

// Report errors
const (
	ErrCodeResourceUnavailable ErrorCode = "RESOURCE_UNAVAILABLE"
	ErrCodeReportRenderFailed  ErrorCode = "REPORT_RENDER_FAILED"
)

// Upload errors
const (
	ErrCodeUploadParseError ErrorCode = "UPLOAD_PARSE_ERROR"
	ErrCodeUploadTooLarge   ErrorCode = "UPLOAD_TOO_LARGE"
	ErrCodeUploadMissing    ErrorCode = "UPLOAD_MISSING"
)

// Infrastructure errors
const (
	ErrCodeModelLoadFailed  ErrorCode = "MODEL_LOAD_FAILED"
	ErrCodeAuditWriteFailed ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
)

// StandardError represents a structured application error.
// Message is safe to show to the person filling in the form; Details is for logs.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidAnswerError reports an option label that is not part of a question's closed set.
func NewInvalidAnswerError(question, label string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidAnswer,
		Message:   fmt.Sprintf("Please choose one of the listed options for the %s question", question),
		Details:   fmt.Sprintf("question: %s, label: %q", question, label),
		Retryable: false,
		Metadata:  map[string]interface{}{"question": question},
		Timestamp: time.Now().UTC(),
	}
}

// NewInputValidationFailedError creates a non-retryable structural validation error.
func NewInputValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResourceUnavailableError reports a missing rendering asset such as a font file.
// It is retryable: restoring the asset makes the next request succeed.
func NewResourceUnavailableError(resource string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceUnavailable,
		Message:   "The report could not be generated because a required resource is unavailable. Please try again later",
		Details:   fmt.Sprintf("resource: %s, error: %v", resource, err),
		Retryable: true,
		Metadata:  map[string]interface{}{"resource": resource},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewReportRenderFailedError wraps a document generation failure.
func NewReportRenderFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportRenderFailed,
		Message:   "The report could not be generated. Please try again",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUploadParseError reports tabular data that could not be parsed.
func NewUploadParseError(filename string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadParseError,
		Message:   "The uploaded file could not be read as comma-separated values",
		Details:   fmt.Sprintf("file: %s, error: %v", filename, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"filename": filename},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUploadTooLargeError creates a non-retryable size limit error.
func NewUploadTooLargeError(limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadTooLarge,
		Message:   fmt.Sprintf("The uploaded file exceeds the %d byte limit", limit),
		Details:   fmt.Sprintf("limit: %d", limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadMissingError is returned when the multipart form carries no file.
func NewUploadMissingError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadMissing,
		Message:   "Please choose a CSV file to upload",
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelLoadFailedError creates a non-retryable model artifact error.
func NewModelLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelLoadFailed,
		Message:   "Model artifact could not be loaded",
		Details:   fmt.Sprintf("path: %s, error: %v", path, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewAuditWriteFailedError creates a retryable database write error.
func NewAuditWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Assessment outcome could not be recorded",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Report cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended Camunda retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAuditWriteFailed,
		ErrCodeExternalService,
		ErrCodeReportRenderFailed:
		return 3

	case ErrCodeResourceUnavailable,
		ErrCodeCacheUnavailable,
		ErrCodeTimeout:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN error codes are the internal codes verbatim.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// As extracts a StandardError from an error chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// HTTPStatus maps an error code to the response status used by the web layer.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidAnswer, ErrCodeInputValidationFailed, ErrCodeUploadParseError, ErrCodeUploadMissing:
		return http.StatusBadRequest
	case ErrCodeUploadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeResourceNotFound:
		return http.StatusNotFound
	case ErrCodeResourceUnavailable, ErrCodeCacheUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ANSWER") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.HasPrefix(codeStr, "UPLOAD"):
		return "UPLOAD"
	case strings.Contains(codeStr, "RESOURCE") || strings.Contains(codeStr, "REPORT"):
		return "REPORT"
	case strings.Contains(codeStr, "AUDIT") || strings.Contains(codeStr, "CACHE") || strings.Contains(codeStr, "MODEL"):
		return "STORAGE"
	default:
		return "OTHER"
	}
}
