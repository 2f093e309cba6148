// Package discovery defines the error contract of the discover operation.
package discovery

import (
	"errors"
	"fmt"
)

// Code identifies a discovery failure class on the wire.
type Code string

// Error codes returned to callers.
const (
	CodeMissingContext          Code = "MISSING_CONTEXT"
	CodeMissingContextField     Code = "MISSING_CONTEXT_FIELD"
	CodeInvalidSchemaContext    Code = "INVALID_SCHEMA_CONTEXT"
	CodeMissingSchemaContext    Code = "MISSING_SCHEMA_CONTEXT"
	CodeInvalidPagination       Code = "INVALID_PAGINATION"
	CodeMissingSearchParameters Code = "MISSING_SEARCH_PARAMETERS"
	CodeInvalidFilter           Code = "INVALID_FILTER"
	CodeInternalError           Code = "INTERNAL_ERROR"
)

// Error is a caller-visible discovery failure.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsClientError reports whether the failure is caused by the request.
func (e *Error) IsClientError() bool {
	return e.Code != CodeInternalError
}

// AsError extracts a discovery error from an error chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// MissingContext reports an absent context block.
func MissingContext() *Error {
	return &Error{Code: CodeMissingContext, Message: "Context is required"}
}

// InvalidBody reports a request body that is not a JSON object; no context can be read from it.
func InvalidBody() *Error {
	return &Error{Code: CodeMissingContext, Message: "Request body must be a JSON object"}
}

// MissingContextField reports the first absent required context field.
func MissingContextField(field string) *Error {
	return &Error{
		Code:    CodeMissingContextField,
		Message: fmt.Sprintf("Context field '%s' is required", field),
		Details: map[string]any{"field": field},
	}
}

// SchemaContextNotArray reports a schema_context that is not a sequence.
func SchemaContextNotArray() *Error {
	return &Error{Code: CodeInvalidSchemaContext, Message: "schema_context must be an array"}
}

// InvalidSchemaContext reports the first schema-context entry that names no known type.
func InvalidSchemaContext(uri string) *Error {
	return &Error{
		Code:    CodeInvalidSchemaContext,
		Message: fmt.Sprintf("Invalid schema context: %s", uri),
		Details: map[string]any{"schema_context": uri},
	}
}

// MissingSchemaContext reports a query that names no schema context at all.
func MissingSchemaContext() *Error {
	return &Error{Code: CodeMissingSchemaContext, Message: "At least one schema_context is required"}
}

// InvalidPage reports a page that is not a positive integer.
func InvalidPage() *Error {
	return &Error{Code: CodeInvalidPagination, Message: "Page must be a positive integer"}
}

// InvalidLimit reports a limit outside [1, maxLimit].
func InvalidLimit(maxLimit int) *Error {
	return &Error{
		Code:    CodeInvalidPagination,
		Message: fmt.Sprintf("Limit must be between 1 and %d", maxLimit),
	}
}

// MissingSearchParameters reports a search with neither text nor filter.
func MissingSearchParameters() *Error {
	return &Error{
		Code:    CodeMissingSearchParameters,
		Message: "Either a text search term or a filter expression is required",
	}
}

// InvalidFilter reports a structured filter that could not be parsed or evaluated.
// language names the filter dialect in the message, e.g. "JSONPath".
func InvalidFilter(language, filter string, cause error) *Error {
	return &Error{
		Code:    CodeInvalidFilter,
		Message: fmt.Sprintf("Invalid %s filter expression", language),
		Details: map[string]any{
			"filter": filter,
			"error":  cause.Error(),
		},
	}
}

// Internal is the opaque error returned for unexpected failures.
func Internal() *Error {
	return &Error{
		Code:    CodeInternalError,
		Message: "An unexpected error occurred while processing the request",
	}
}
