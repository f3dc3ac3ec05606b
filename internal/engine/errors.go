package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/qparam/internal/dsl"
)

// RuntimeError represents an error detected while planning or running a
// query. Parse failures from the dsl package are passed through unchanged.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Key is the query-parameter key involved, if any.
	Key string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownField indicates a filter key is not a column of the table.
	ErrCodeUnknownField RuntimeErrorCode = "UNKNOWN_FIELD"

	// ErrCodeFilterDeclined indicates no handler accepted a pair.
	ErrCodeFilterDeclined RuntimeErrorCode = "FILTER_DECLINED"

	// ErrCodeInvalidQuery indicates the assembled query failed validation.
	ErrCodeInvalidQuery RuntimeErrorCode = "INVALID_QUERY"

	// ErrCodeInvalidPair indicates a malformed "key=value" argument.
	ErrCodeInvalidPair RuntimeErrorCode = "INVALID_PAIR"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (key=%s)", e.Code, e.Message, e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownFieldError returns true if the error is an unknown field error.
// Uses errors.As to handle wrapped errors.
func IsUnknownFieldError(err error) bool {
	return hasCode(err, ErrCodeUnknownField)
}

// IsInvalidQueryError returns true if the assembled query failed validation.
func IsInvalidQueryError(err error) bool {
	return hasCode(err, ErrCodeInvalidQuery)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewUnknownFieldError creates a RuntimeError for a key that is not a column.
func NewUnknownFieldError(key, field, table string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownField,
		Message: fmt.Sprintf("field %q is not a column of %s", field, table),
		Key:     key,
		Details: map[string]string{"field": field, "table": table},
	}
}

// CodeOf returns the category of err: a RuntimeErrorCode, a dsl.ErrorKind,
// or "" for any other error.
func CodeOf(err error) string {
	var re *RuntimeError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	return string(dsl.KindOf(err))
}
