package queryir

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/qparam/internal/ir"
)

// ValidationResult lists binding problems found in a query.
type ValidationResult struct {
	// Valid is true when Errors is empty.
	Valid bool

	// Errors describes each problem, in tree order.
	Errors []string
}

// Err returns nil for a valid result, otherwise an error joining every
// problem.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return errors.New("invalid query: " + strings.Join(r.Errors, "; "))
}

// Validate checks that the query's placeholders and params agree:
//  1. Every placeholder is referenced exactly once
//  2. Every placeholder has a param, and every param a placeholder
//  3. in/notIn bind a non-empty list; other operators bind a scalar
//
// Validate is a pure function with no side effects.
func Validate(sel Select, params ir.IRObject) ValidationResult {
	v := &validator{errors: []string{}, params: params, seen: map[string]bool{}}

	if sel.From == "" {
		v.addError("select has no source table")
	}
	if sel.Filter != nil {
		walk(sel.Filter, v.validateComparison)
	}
	for _, name := range params.SortedKeys() {
		if !v.seen[name] {
			v.addError("param %q is not referenced by any placeholder", name)
		}
	}

	return ValidationResult{Valid: len(v.errors) == 0, Errors: v.errors}
}

type validator struct {
	errors []string
	params ir.IRObject
	seen   map[string]bool
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) validateComparison(c Comparison) {
	if v.seen[c.Param] {
		v.addError("placeholder %q referenced more than once", c.Param)
		return
	}
	v.seen[c.Param] = true

	val, ok := v.params[c.Param]
	if !ok {
		v.addError("placeholder %q for field %q has no param", c.Param, c.Field)
		return
	}

	arr, isList := val.(ir.IRArray)
	switch {
	case c.Op.IsList() && !isList:
		v.addError("%s on field %q needs a list, got %T", c.Op, c.Field, val)
	case c.Op.IsList() && len(arr) == 0:
		v.addError("%s on field %q has an empty list", c.Op, c.Field)
	case !c.Op.IsList() && isList:
		v.addError("%s on field %q cannot bind a list", c.Op, c.Field)
	}
}
