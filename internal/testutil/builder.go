package testutil

import (
	"strings"
	"sync"

	"github.com/roach88/qparam/internal/dsl"
)

// Call records one comparison built by a TextBuilder.
type Call struct {
	Op          string
	Field       string
	Placeholder string
}

// TextBuilder is a dsl.ExpressionBuilder that renders nodes as plain
// strings and records every comparison it builds.
//
// Comparisons render as "field < :placeholder". A combinator over one part
// renders as that part; over several parts as "(a) AND (b)".
//
// Thread-safety: all methods are safe for concurrent use.
type TextBuilder struct {
	mu    sync.Mutex
	calls []Call
}

var _ dsl.ExpressionBuilder = (*TextBuilder)(nil)

// NewTextBuilder creates an empty TextBuilder.
func NewTextBuilder() *TextBuilder {
	return &TextBuilder{}
}

// Calls returns the recorded comparisons in build order.
func (b *TextBuilder) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

func (b *TextBuilder) record(op, field, placeholder, rendered string) dsl.Expression {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, Call{Op: op, Field: field, Placeholder: placeholder})
	return rendered
}

func (b *TextBuilder) Eq(f, p string) dsl.Expression  { return b.record("eq", f, p, f+" = "+p) }
func (b *TextBuilder) Neq(f, p string) dsl.Expression { return b.record("neq", f, p, f+" <> "+p) }
func (b *TextBuilder) Lt(f, p string) dsl.Expression  { return b.record("lt", f, p, f+" < "+p) }
func (b *TextBuilder) Lte(f, p string) dsl.Expression { return b.record("lte", f, p, f+" <= "+p) }
func (b *TextBuilder) Gt(f, p string) dsl.Expression  { return b.record("gt", f, p, f+" > "+p) }
func (b *TextBuilder) Gte(f, p string) dsl.Expression { return b.record("gte", f, p, f+" >= "+p) }

func (b *TextBuilder) Like(f, p string) dsl.Expression {
	return b.record("like", f, p, f+" LIKE "+p)
}

func (b *TextBuilder) IsNotNull(f, p string) dsl.Expression {
	return b.record("isNotNull", f, p, f+" IS NOT NULL")
}

func (b *TextBuilder) In(f, p string) dsl.Expression {
	return b.record("in", f, p, f+" IN ("+p+")")
}

func (b *TextBuilder) NotIn(f, p string) dsl.Expression {
	return b.record("notIn", f, p, f+" NOT IN ("+p+")")
}

func (b *TextBuilder) And(parts ...dsl.Expression) dsl.Expression {
	return combine("AND", parts)
}

func (b *TextBuilder) Or(parts ...dsl.Expression) dsl.Expression {
	return combine("OR", parts)
}

func combine(op string, parts []dsl.Expression) dsl.Expression {
	if len(parts) == 1 {
		return parts[0]
	}
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = "(" + p.(string) + ")"
	}
	return strings.Join(strs, " "+op+" ")
}
