package dsl

import (
	"fmt"
	"log/slog"
	"slices"
)

// Parser turns (key, value) query parameters into Filters.
type Parser struct {
	alias    string
	builder  ExpressionBuilder
	matchers []ValueMatcher
	handlers []FilterHandler
	logger   *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithAlias sets the field prefix. See SetAlias.
func WithAlias(alias string) Option {
	return func(p *Parser) {
		p.SetAlias(alias)
	}
}

// New creates a Parser with the default matcher table and handler chain.
// builder may be nil and attached later with SetExpressionBuilder.
func New(builder ExpressionBuilder, opts ...Option) *Parser {
	p := &Parser{
		builder:  builder,
		matchers: defaultMatchers(),
		logger:   slog.Default(),
	}

	// Each registration goes to the front, so the guard runs first and the
	// default handler last.
	p.AddFilterHandler(DefaultHandler{})
	p.AddFilterHandler(MultiValueHandler{})
	p.AddFilterHandler(MultiKeyValueHandler{})
	p.AddFilterHandler(IncorrectQueryHandler{})

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetAlias sets a table alias prepended as "alias." to every field the
// parser hands to the builder. Placeholder names never carry it. An empty
// alias removes the prefix.
func (p *Parser) SetAlias(alias string) {
	p.alias = alias
}

// Alias returns the configured alias without the trailing dot.
func (p *Parser) Alias() string {
	return p.alias
}

// Field returns key qualified with the alias.
func (p *Parser) Field(key string) string {
	if p.alias == "" {
		return key
	}
	return p.alias + "." + key
}

// SetExpressionBuilder attaches the builder used by GetFilter.
func (p *Parser) SetExpressionBuilder(b ExpressionBuilder) {
	p.builder = b
}

// ExpressionBuilder returns the attached builder, or nil.
func (p *Parser) ExpressionBuilder() ExpressionBuilder {
	return p.builder
}

// AddValueMatcher registers a value pattern. Matchers are tried in order
// and the first whose pattern matches anywhere in the operand wins; with
// priority the new matcher goes to the front of the table.
func (p *Parser) AddValueMatcher(pattern string, op Operator, rule ValueRule, priority bool) error {
	m, err := newValueMatcher(pattern, op, rule)
	if err != nil {
		return err
	}
	if priority {
		p.matchers = slices.Insert(p.matchers, 0, m)
	} else {
		p.matchers = append(p.matchers, m)
	}
	return nil
}

// ValueMatchers returns the matcher table in evaluation order.
func (p *Parser) ValueMatchers() []ValueMatcher {
	return slices.Clone(p.matchers)
}

// AddFilterHandler registers h at the front of the chain, so the most
// recently added handler runs first.
func (p *Parser) AddFilterHandler(h FilterHandler) {
	p.handlers = slices.Insert(p.handlers, 0, h)
}

// FilterHandlers returns the handler chain in evaluation order.
func (p *Parser) FilterHandlers() []FilterHandler {
	return slices.Clone(p.handlers)
}

// GetFilter runs the handler chain over one query parameter and returns the
// first accepted Filter. ok is false if every handler declined, which cannot
// happen while DefaultHandler is installed.
func (p *Parser) GetFilter(key, value string) (Filter, bool, error) {
	if err := p.checkBuilder(key, value); err != nil {
		return Filter{}, false, err
	}

	for _, h := range p.handlers {
		f, ok, err := h.HandleFilter(p, key, value)
		if err != nil {
			p.logger.Debug("filter rejected",
				"key", key,
				"value", value,
				"handler", fmt.Sprintf("%T", h),
				"error", err,
			)
			return Filter{}, false, err
		}
		if ok {
			p.logger.Debug("filter built",
				"key", key,
				"value", value,
				"handler", fmt.Sprintf("%T", h),
				"params", len(f.params),
			)
			return f, true, nil
		}
	}

	p.logger.Debug("no handler accepted filter", "key", key, "value", value)
	return Filter{}, false, nil
}

// ParseValue classifies one operand using the matcher table.
func (p *Parser) ParseValue(value string) (ParsedValue, error) {
	for _, m := range p.matchers {
		if !m.Pattern.MatchString(value) {
			continue
		}
		return ParsedValue{
			Value:    m.Rule.apply(m.Pattern, value),
			Operator: m.Operator,
			Matched:  m.Pattern.String(),
		}, nil
	}

	return ParsedValue{}, &QueryParseError{
		Kind:    ErrNoMatchingPattern,
		Value:   value,
		Message: fmt.Sprintf("no matching value found for %q", value),
	}
}

func (p *Parser) checkBuilder(key, value string) error {
	if p.builder != nil {
		return nil
	}
	return &QueryParseError{
		Kind:    ErrNoExpressionBuilder,
		Key:     key,
		Value:   value,
		Message: "cannot build filters without an expression builder",
	}
}
