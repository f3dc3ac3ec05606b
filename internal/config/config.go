package config

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/qparam/internal/dsl"
	"github.com/roach88/qparam/internal/engine"
)

// Config is a compiled parser configuration.
type Config struct {
	// Alias prefixes every field name ("c" turns "id" into "c.id").
	Alias string

	// Table is the queried table. Empty keeps the engine default.
	Table string

	// Columns restricts the selected columns. Empty selects all.
	Columns []string

	// OrderBy lists sort fields; "-field" sorts descending.
	OrderBy []string

	// Limit caps returned rows. Zero means no limit.
	Limit int

	// Matchers are registered after the default matcher table.
	Matchers []MatcherConfig
}

// MatcherConfig describes one extra value matcher. Exactly one of Template
// and Transform is set.
type MatcherConfig struct {
	Pattern   string
	Operator  dsl.Operator
	Template  string
	Transform string
	Priority  bool

	// Pos is the position of the matcher in its source file.
	Pos token.Pos
}

// Rule resolves the matcher's value rule.
func (m MatcherConfig) Rule() (dsl.ValueRule, error) {
	if m.Transform == "" {
		return dsl.Template(m.Template), nil
	}
	fn, ok := transforms[m.Transform]
	if !ok {
		return dsl.ValueRule{}, &CompileError{
			Field:   "transform",
			Message: fmt.Sprintf("unknown transform %q (known: %s)", m.Transform, transformNames()),
			Pos:     m.Pos,
		}
	}
	return dsl.Transform(fn), nil
}

// Apply sets the alias and registers every matcher on p. Every rule and
// pattern is checked before anything is registered, so on error p is left
// unchanged.
func (c *Config) Apply(p *dsl.Parser) error {
	rules := make([]dsl.ValueRule, len(c.Matchers))
	scratch := dsl.New(nil)
	for i, m := range c.Matchers {
		rule, err := m.Rule()
		if err != nil {
			return err
		}
		if err := scratch.AddValueMatcher(m.Pattern, m.Operator, rule, m.Priority); err != nil {
			return &CompileError{
				Field:   fmt.Sprintf("matchers[%d]", i),
				Message: err.Error(),
				Pos:     m.Pos,
			}
		}
		rules[i] = rule
	}

	if c.Alias != "" {
		p.SetAlias(c.Alias)
	}
	for i, m := range c.Matchers {
		if err := p.AddValueMatcher(m.Pattern, m.Operator, rules[i], m.Priority); err != nil {
			return fmt.Errorf("matchers[%d]: %w", i, err)
		}
	}
	return nil
}

// EngineOptions returns the engine options for the table, columns, order
// and limit settings that are present.
func (c *Config) EngineOptions() []engine.Option {
	var opts []engine.Option
	if c.Table != "" {
		opts = append(opts, engine.WithTable(c.Table))
	}
	if len(c.Columns) > 0 {
		opts = append(opts, engine.WithColumns(c.Columns...))
	}
	if len(c.OrderBy) > 0 {
		opts = append(opts, engine.WithOrderBy(c.OrderBy...))
	}
	if c.Limit > 0 {
		opts = append(opts, engine.WithLimit(c.Limit))
	}
	return opts
}

// Compile parses the "parser" struct of a CUE value into a Config.
//
// The CUE value should be the parser struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`parser: { alias: "c" }`)
//	cfg, err := Compile(v.LookupPath(cue.ParsePath("parser")))
func Compile(v cue.Value) (*Config, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &Config{}
	var err error

	if cfg.Alias, err = optionalString(v, "alias"); err != nil {
		return nil, err
	}
	if cfg.Table, err = optionalString(v, "table"); err != nil {
		return nil, err
	}
	if cfg.Columns, err = optionalStrings(v, "columns"); err != nil {
		return nil, err
	}
	if cfg.OrderBy, err = optionalStrings(v, "order"); err != nil {
		return nil, err
	}

	limitVal := v.LookupPath(cue.ParsePath("limit"))
	if limitVal.Exists() {
		n, err := limitVal.Int64()
		if err != nil {
			return nil, &CompileError{Field: "limit", Message: "limit must be an integer", Pos: limitVal.Pos()}
		}
		if n < 0 {
			return nil, &CompileError{Field: "limit", Message: "limit must not be negative", Pos: limitVal.Pos()}
		}
		cfg.Limit = int(n)
	}

	if cfg.Matchers, err = parseMatchers(v); err != nil {
		return nil, err
	}

	return cfg, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: field + " must be a string", Pos: fv.Pos()}
	}
	return s, nil
}

func optionalStrings(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: field + " must be a list of strings", Pos: fv.Pos()}
	}

	var out []string
	for i := 0; iter.Next(); i++ {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func parseMatchers(v cue.Value) ([]MatcherConfig, error) {
	listVal := v.LookupPath(cue.ParsePath("matchers"))
	if !listVal.Exists() {
		return nil, nil
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, &CompileError{Field: "matchers", Message: "matchers must be a list", Pos: listVal.Pos()}
	}

	var matchers []MatcherConfig
	for i := 0; iter.Next(); i++ {
		m, err := parseMatcher(iter.Value(), fmt.Sprintf("matchers[%d]", i))
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

func parseMatcher(v cue.Value, field string) (MatcherConfig, error) {
	m := MatcherConfig{Pos: v.Pos()}

	pattern, err := optionalString(v, "pattern")
	if err != nil {
		return m, err
	}
	if pattern == "" {
		return m, &CompileError{Field: field + ".pattern", Message: "pattern is required", Pos: v.Pos()}
	}
	m.Pattern = pattern

	opName, err := optionalString(v, "operator")
	if err != nil {
		return m, err
	}
	op, err := dsl.ParseOperator(opName)
	if err != nil {
		return m, &CompileError{Field: field + ".operator", Message: err.Error(), Pos: v.Pos()}
	}
	m.Operator = op

	// A template may legitimately be empty, so presence is checked on the
	// field rather than its value.
	hasTemplate := v.LookupPath(cue.ParsePath("template")).Exists()
	if m.Template, err = optionalString(v, "template"); err != nil {
		return m, err
	}
	if m.Transform, err = optionalString(v, "transform"); err != nil {
		return m, err
	}
	switch {
	case hasTemplate && m.Transform != "":
		return m, &CompileError{Field: field, Message: "template and transform are mutually exclusive", Pos: v.Pos()}
	case !hasTemplate && m.Transform == "":
		return m, &CompileError{Field: field, Message: "one of template or transform is required", Pos: v.Pos()}
	}
	if m.Transform != "" {
		if _, err := m.Rule(); err != nil {
			return m, err
		}
	}

	priorityVal := v.LookupPath(cue.ParsePath("priority"))
	if priorityVal.Exists() {
		if m.Priority, err = priorityVal.Bool(); err != nil {
			return m, &CompileError{Field: field + ".priority", Message: "priority must be a bool", Pos: priorityVal.Pos()}
		}
	}

	return m, nil
}

// CompileError represents a configuration error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
