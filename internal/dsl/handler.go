package dsl

import (
	"errors"
	"regexp"
	"strings"
)

// FilterHandler is one strategy in the handler chain. It either declines
// (ok == false, err == nil), fails, or returns a complete Filter.
type FilterHandler interface {
	HandleFilter(p *Parser, key, value string) (f Filter, ok bool, err error)
}

// HandlerFunc adapts a function to FilterHandler.
type HandlerFunc func(p *Parser, key, value string) (Filter, bool, error)

// HandleFilter calls fn.
func (fn HandlerFunc) HandleFilter(p *Parser, key, value string) (Filter, bool, error) {
	return fn(p, key, value)
}

const (
	andToken    = "&&"
	orToken     = "||"
	tripleToken = "|||"
)

var (
	multiValueSplit = regexp.MustCompile(` *(&&|\|\|) *`)
	tripleSplit     = regexp.MustCompile(` *\|\|\| *`)
)

func hasMixedOperators(value string) bool {
	return strings.Contains(value, andToken) && strings.Contains(value, orToken)
}

// IncorrectQueryHandler rejects values that combine && and ||. It never
// produces a Filter. The whole value is checked, so the "|||" separator
// counts as || and a multi-key value cannot use &&.
type IncorrectQueryHandler struct{}

// HandleFilter implements FilterHandler.
func (IncorrectQueryHandler) HandleFilter(_ *Parser, key, value string) (Filter, bool, error) {
	if hasMixedOperators(value) {
		return Filter{}, false, mixedOperatorsError(key, value)
	}
	return Filter{}, false, nil
}

// MultiKeyValueHandler handles "a|||b" keys. Key and value are split on
// "|||"; a short value list is padded with its last element. Each pair is
// compiled as a multi-value expression when it contains && or ||, otherwise
// as a single comparison, and the results are combined with Or.
type MultiKeyValueHandler struct{}

// HandleFilter implements FilterHandler.
func (MultiKeyValueHandler) HandleFilter(p *Parser, key, value string) (Filter, bool, error) {
	if !strings.Contains(key, tripleToken) {
		return Filter{}, false, nil
	}

	if err := p.checkBuilder(key, value); err != nil {
		return Filter{}, false, err
	}

	keys := tripleSplit.Split(key, -1)
	values := tripleSplit.Split(value, -1)
	for len(values) < len(keys) {
		values = append(values, values[len(values)-1])
	}

	ph := newPlaceholders(key, value)
	var parts []Expression
	for i, k := range keys {
		v := values[i]
		if k == "" || v == "" {
			continue
		}
		expr, ok, err := p.multiValue(k, v, ph)
		if err != nil {
			return Filter{}, false, err
		}
		if !ok {
			expr, err = p.comparison(k, v, ph)
			if err != nil {
				return Filter{}, false, err
			}
		}
		parts = append(parts, expr)
	}
	if len(parts) == 0 {
		return Filter{}, false, noMatchError(key, value)
	}

	return NewMultiKeyFilter(keys, p.builder.Or(parts...), ph.params), true, nil
}

// MultiValueHandler handles values such as "fred||bob" or "<5 && !1". The
// first operator token found selects And or Or for every operand.
type MultiValueHandler struct{}

// HandleFilter implements FilterHandler.
func (MultiValueHandler) HandleFilter(p *Parser, key, value string) (Filter, bool, error) {
	if err := p.checkBuilder(key, value); err != nil {
		return Filter{}, false, err
	}
	ph := newPlaceholders(key, value)
	expr, ok, err := p.multiValue(key, value, ph)
	if err != nil || !ok {
		return Filter{}, false, err
	}
	return NewFilter(key, expr, ph.params), true, nil
}

// DefaultHandler parses the whole value as one operand. It always accepts
// unless the value matches no pattern.
type DefaultHandler struct{}

// HandleFilter implements FilterHandler.
func (DefaultHandler) HandleFilter(p *Parser, key, value string) (Filter, bool, error) {
	if err := p.checkBuilder(key, value); err != nil {
		return Filter{}, false, err
	}
	ph := newPlaceholders(key, value)
	expr, err := p.comparison(key, value, ph)
	if err != nil {
		return Filter{}, false, err
	}
	return NewFilter(key, p.builder.And(expr), ph.params), true, nil
}

// multiValue compiles an &&/|| value for one field. ok is false when the
// value holds neither token.
func (p *Parser) multiValue(key, value string, ph *placeholders) (Expression, bool, error) {
	if !strings.Contains(value, andToken) && !strings.Contains(value, orToken) {
		return nil, false, nil
	}
	if hasMixedOperators(value) {
		return nil, false, mixedOperatorsError(key, value)
	}

	delims := multiValueSplit.FindAllStringSubmatch(value, -1)
	combine := p.builder.And
	if delims[0][1] == orToken {
		combine = p.builder.Or
	}

	var parts []Expression
	for _, operand := range multiValueSplit.Split(value, -1) {
		if operand == "" {
			continue
		}
		expr, err := p.comparison(key, operand, ph)
		if err != nil {
			return nil, false, err
		}
		parts = append(parts, expr)
	}
	if len(parts) == 0 {
		return nil, false, noMatchError(key, value)
	}
	return combine(parts...), true, nil
}

// comparison parses one operand and binds it to the next placeholder for key.
func (p *Parser) comparison(key, operand string, ph *placeholders) (Expression, error) {
	parsed, err := p.ParseValue(operand)
	if err != nil {
		var pe *QueryParseError
		if errors.As(err, &pe) {
			pe.Key = key
		}
		return nil, err
	}
	name, err := ph.bind(key, parsed.Value)
	if err != nil {
		return nil, err
	}
	return parsed.Operator.Build(p.builder, p.Field(key), ":"+name)
}

func mixedOperatorsError(key, value string) error {
	return &QueryParseError{
		Kind:    ErrMixedOperators,
		Key:     key,
		Value:   value,
		Message: "mixed && and || operators are not supported",
	}
}

func noMatchError(key, value string) error {
	return &QueryParseError{
		Kind:    ErrNoMatchingPattern,
		Key:     key,
		Value:   value,
		Message: "no operand to parse",
	}
}
