package dsl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/qparam/internal/ir"
)

// Filter is a compiled (key, value) pair: the field or fields it constrains,
// the predicate built by the ExpressionBuilder, and the values to bind under
// each placeholder the predicate references.
//
// Filters are immutable; accessors return copies.
type Filter struct {
	keys       []string
	multiKey   bool
	expression Expression
	params     ir.IRObject
}

// NewFilter creates a single-key Filter. params is copied.
func NewFilter(key string, expr Expression, params ir.IRObject) Filter {
	return Filter{keys: []string{key}, expression: expr, params: copyParams(params)}
}

// NewMultiKeyFilter creates a Filter over several fields, as produced by
// "a|||b" keys. keys and params are copied.
func NewMultiKeyFilter(keys []string, expr Expression, params ir.IRObject) Filter {
	return Filter{
		keys:       slices.Clone(keys),
		multiKey:   true,
		expression: expr,
		params:     copyParams(params),
	}
}

// Key returns the single key, or the keys joined by "|||" for a
// multi-key filter.
func (f Filter) Key() string {
	return strings.Join(f.keys, "|||")
}

// Keys returns the constrained fields in input order.
func (f Filter) Keys() []string {
	return slices.Clone(f.keys)
}

// IsMultiKey reports whether the filter came from a "|||" key.
func (f Filter) IsMultiKey() bool {
	return f.multiKey
}

// Expression returns the predicate node built by the ExpressionBuilder.
func (f Filter) Expression() Expression {
	return f.expression
}

// Parameters returns the placeholder bindings. Names carry no ':' prefix.
func (f Filter) Parameters() ir.IRObject {
	return copyParams(f.params)
}

// Parameter returns one binding by placeholder name.
func (f Filter) Parameter(name string) (ir.IRValue, bool) {
	v, ok := f.params[name]
	return v, ok
}

// ParameterNames returns placeholder names in canonical order.
func (f Filter) ParameterNames() []string {
	return f.params.SortedKeys()
}

func (f Filter) String() string {
	parts := make([]string, 0, len(f.params))
	for _, name := range f.ParameterNames() {
		parts = append(parts, name+"="+ir.String(f.params[name]))
	}
	return fmt.Sprintf("%s: %v {%s}", f.Key(), f.expression, strings.Join(parts, ", "))
}

func copyParams(params ir.IRObject) ir.IRObject {
	out := make(ir.IRObject, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// placeholders allocates "<field>_<n>" names with a per-field ordinal and
// records the bound values for one GetFilter call.
type placeholders struct {
	key    string
	value  string
	counts map[string]int
	params ir.IRObject
}

func newPlaceholders(key, value string) *placeholders {
	return &placeholders{key: key, value: value, counts: map[string]int{}, params: ir.IRObject{}}
}

func (ph *placeholders) bind(field string, v ir.IRValue) (string, error) {
	ph.counts[field]++
	name := fmt.Sprintf("%s_%d", field, ph.counts[field])
	if _, dup := ph.params[name]; dup {
		return "", &QueryParseError{
			Kind:    ErrDuplicatePlaceholder,
			Key:     ph.key,
			Value:   ph.value,
			Message: fmt.Sprintf("placeholder %q bound twice", name),
		}
	}
	ph.params[name] = v
	return name, nil
}
