package discover

import (
	"errors"
	"fmt"
)

// Error codes returned by the API.
const (
	CodeMissingContext          = "MISSING_CONTEXT"
	CodeMissingContextField     = "MISSING_CONTEXT_FIELD"
	CodeInvalidSchemaContext    = "INVALID_SCHEMA_CONTEXT"
	CodeMissingSchemaContext    = "MISSING_SCHEMA_CONTEXT"
	CodeInvalidPagination       = "INVALID_PAGINATION"
	CodeMissingSearchParameters = "MISSING_SEARCH_PARAMETERS"
	CodeInvalidFilter           = "INVALID_FILTER"
	CodeInternalError           = "INTERNAL_ERROR"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("discover: HTTP %d", e.Status)
	}
	return fmt.Sprintf("discover: %s: %s", e.Code, e.Message)
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == code
}
