package harness

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/roach88/qparam/internal/ir"
)

// AssertionError is returned when an outcome does not meet an expectation.
type AssertionError struct {
	Field    string // Expect field being checked
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// EvaluateExpect checks an outcome against every field set in expect and
// returns one message per failed check.
//
// A case that fails unexpectedly reports only the error, since no other
// field can be compared.
func EvaluateExpect(outcome CaseOutcome, expect Expect) []string {
	if outcome.Error != "" && expect.Error == "" {
		return []string{(&AssertionError{
			Field:    "error",
			Expected: "success",
			Actual:   outcome.ErrorMessage,
		}).Error()}
	}

	checks := []func(CaseOutcome, Expect) error{
		assertError,
		assertExpression,
		assertParams,
		assertSQL,
		assertArgs,
		assertRows,
		assertIDs,
	}

	var errs []string
	for _, check := range checks {
		if err := check(outcome, expect); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertError(o CaseOutcome, e Expect) error {
	if e.Error == "" || e.Error == o.Error {
		return nil
	}
	actual := "success"
	if o.Error != "" {
		actual = fmt.Sprintf("%s (%s)", o.Error, o.ErrorMessage)
	}
	return &AssertionError{Field: "error", Expected: e.Error, Actual: actual}
}

func assertExpression(o CaseOutcome, e Expect) error {
	if e.Expression == "" || e.Expression == o.Expression {
		return nil
	}
	return &AssertionError{Field: "expression", Expected: fmt.Sprintf("%q", e.Expression), Actual: fmt.Sprintf("%q", o.Expression)}
}

func assertSQL(o CaseOutcome, e Expect) error {
	if e.SQL == "" || e.SQL == o.SQL {
		return nil
	}
	return &AssertionError{Field: "sql", Expected: fmt.Sprintf("%q", e.SQL), Actual: fmt.Sprintf("%q", o.SQL)}
}

// assertParams requires an exact match of the whole parameter map.
func assertParams(o CaseOutcome, e Expect) error {
	if e.Params == nil {
		return nil
	}
	return compareCanonical("params", e.Params, o.Params)
}

func assertArgs(o CaseOutcome, e Expect) error {
	if e.Args == nil {
		return nil
	}
	actual := o.Args
	if actual == nil {
		actual = []any{}
	}
	return compareCanonical("args", e.Args, actual)
}

func assertRows(o CaseOutcome, e Expect) error {
	if e.Rows == nil || *e.Rows == o.RowCount {
		return nil
	}
	return &AssertionError{Field: "rows", Expected: fmt.Sprint(*e.Rows), Actual: fmt.Sprint(o.RowCount)}
}

func assertIDs(o CaseOutcome, e Expect) error {
	if e.IDs == nil || slices.Equal(e.IDs, o.RowIDs) {
		return nil
	}
	return &AssertionError{Field: "ids", Expected: fmt.Sprint(e.IDs), Actual: fmt.Sprint(o.RowIDs)}
}

// compareCanonical compares two values by their canonical JSON form, so
// YAML ints and SQL int64 args compare equal.
func compareCanonical(field string, expected, actual any) error {
	want, err := ir.MarshalCanonical(expected)
	if err != nil {
		return fmt.Errorf("%s: invalid expectation: %w", field, err)
	}
	got, err := ir.MarshalCanonical(actual)
	if err != nil {
		return fmt.Errorf("%s: cannot encode outcome: %w", field, err)
	}
	if bytes.Equal(want, got) {
		return nil
	}
	return &AssertionError{Field: field, Expected: string(want), Actual: string(got)}
}
