package dsl

import (
	"regexp"
	"strings"

	"github.com/roach88/qparam/internal/ir"
)

// ValueRule extracts the bound value from a matched operand. It is either a
// substitution template or a transform over the first capture group.
type ValueRule struct {
	template  string
	transform func(string) ir.IRValue
}

// Template returns a rule that rewrites the operand with
// regexp.ReplaceAllString semantics: every match of the pattern is replaced
// by template, with ${1}-style group references expanded. Text outside the
// match is kept.
func Template(template string) ValueRule {
	return ValueRule{template: template}
}

// Transform returns a rule that applies fn to the first capture group.
func Transform(fn func(string) ir.IRValue) ValueRule {
	return ValueRule{transform: fn}
}

// IsTransform reports whether the rule applies a transform function.
func (r ValueRule) IsTransform() bool {
	return r.transform != nil
}

func (r ValueRule) apply(re *regexp.Regexp, value string) ir.IRValue {
	if r.transform != nil {
		m := re.FindStringSubmatch(value)
		return r.transform(m[1])
	}
	return ir.IRString(re.ReplaceAllString(value, r.template))
}

// SplitList splits a comma separated list. Elements are trimmed of
// surrounding spaces.
func SplitList(s string) ir.IRValue {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return ir.StringList(parts...)
}

// ValueMatcher is one entry of the value classification table.
type ValueMatcher struct {
	Pattern  *regexp.Regexp
	Operator Operator
	Rule     ValueRule
}

// ParsedValue is the outcome of classifying one operand.
type ParsedValue struct {
	Value    ir.IRValue
	Operator Operator
	// Matched is the source of the pattern that accepted the operand.
	Matched string
}

func newValueMatcher(pattern string, op Operator, rule ValueRule) (ValueMatcher, error) {
	if _, err := ParseOperator(string(op)); err != nil {
		return ValueMatcher{}, &QueryParseError{Kind: ErrInvalidMatcher, Message: err.Error()}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return ValueMatcher{}, &QueryParseError{
			Kind:    ErrInvalidMatcher,
			Message: "invalid pattern " + pattern + ": " + err.Error(),
		}
	}
	if rule.IsTransform() && re.NumSubexp() < 1 {
		return ValueMatcher{}, &QueryParseError{
			Kind:    ErrInvalidMatcher,
			Message: "transform rule needs a capture group in " + pattern,
		}
	}
	return ValueMatcher{Pattern: re, Operator: op, Rule: rule}, nil
}

// defaultMatchers is the built-in table in precedence order. The
// one-character comparisons precede their two-character forms; "<(\w+)"
// cannot match "<=5" because '=' is not a word character.
func defaultMatchers() []ValueMatcher {
	table := []struct {
		pattern string
		op      Operator
		rule    ValueRule
	}{
		{`<(\w+)`, OpLt, Template("${1}")},
		{`<=(\w+)`, OpLte, Template("${1}")},
		{`>=(\w+)`, OpGte, Template("${1}")},
		{`>(\w+)`, OpGt, Template("${1}")},
		{`!$`, OpIsNotNull, Template("")},
		{`!(\w+)`, OpNeq, Template("${1}")},
		{`!\[([\w ,]+)\]`, OpNotIn, Transform(SplitList)},
		{`\[([\w ,]+)\]`, OpIn, Transform(SplitList)},
		{`(%\w+|\w+%|%\w+%)`, OpLike, Template("${1}")},
		{`(\w+)`, OpEq, Template("${1}")},
	}

	out := make([]ValueMatcher, len(table))
	for i, e := range table {
		out[i] = ValueMatcher{Pattern: regexp.MustCompile(e.pattern), Operator: e.op, Rule: e.rule}
	}
	return out
}
