package dsl

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes query parse failures.
type ErrorKind string

const (
	// ErrMixedOperators indicates a value combines && and ||.
	ErrMixedOperators ErrorKind = "MIXED_OPERATORS"

	// ErrNoMatchingPattern indicates no value matcher accepted an operand.
	ErrNoMatchingPattern ErrorKind = "NO_MATCHING_PATTERN"

	// ErrNoExpressionBuilder indicates GetFilter ran without a builder.
	ErrNoExpressionBuilder ErrorKind = "NO_EXPRESSION_BUILDER"

	// ErrDuplicatePlaceholder indicates a handler bound one placeholder twice.
	ErrDuplicatePlaceholder ErrorKind = "DUPLICATE_PLACEHOLDER"

	// ErrInvalidMatcher indicates a matcher registration was rejected.
	ErrInvalidMatcher ErrorKind = "INVALID_MATCHER"
)

// QueryParseError reports malformed filter input or parser misuse.
// None of these are transient; callers should reject the request.
type QueryParseError struct {
	Kind    ErrorKind
	Key     string
	Value   string
	Message string
}

// Error implements the error interface.
func (e *QueryParseError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("%s: %s (key=%q, value=%q)", e.Kind, e.Message, e.Key, e.Value)
	case e.Value != "":
		return fmt.Sprintf("%s: %s (value=%q)", e.Kind, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind reports whether err wraps a QueryParseError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *QueryParseError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

// KindOf returns the kind of a wrapped QueryParseError, or "" if err is not one.
func KindOf(err error) ErrorKind {
	var pe *QueryParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
