package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/qparam/internal/dsl"
)

// Builder implements dsl.ExpressionBuilder by producing queryir predicates.
// It is stateless and safe for concurrent use.
type Builder struct{}

var _ dsl.ExpressionBuilder = Builder{}

// NewBuilder returns a Builder.
func NewBuilder() Builder {
	return Builder{}
}

func comparison(op dsl.Operator, field, placeholder string) dsl.Expression {
	return Comparison{Op: op, Field: field, Param: strings.TrimPrefix(placeholder, ":")}
}

func (Builder) Eq(field, ph string) dsl.Expression        { return comparison(dsl.OpEq, field, ph) }
func (Builder) Neq(field, ph string) dsl.Expression       { return comparison(dsl.OpNeq, field, ph) }
func (Builder) Lt(field, ph string) dsl.Expression        { return comparison(dsl.OpLt, field, ph) }
func (Builder) Lte(field, ph string) dsl.Expression       { return comparison(dsl.OpLte, field, ph) }
func (Builder) Gt(field, ph string) dsl.Expression        { return comparison(dsl.OpGt, field, ph) }
func (Builder) Gte(field, ph string) dsl.Expression       { return comparison(dsl.OpGte, field, ph) }
func (Builder) Like(field, ph string) dsl.Expression      { return comparison(dsl.OpLike, field, ph) }
func (Builder) IsNotNull(field, ph string) dsl.Expression { return comparison(dsl.OpIsNotNull, field, ph) }
func (Builder) In(field, ph string) dsl.Expression        { return comparison(dsl.OpIn, field, ph) }
func (Builder) NotIn(field, ph string) dsl.Expression     { return comparison(dsl.OpNotIn, field, ph) }

// And combines parts into a conjunction.
// Panics if a part was not built by a queryir Builder.
func (Builder) And(parts ...dsl.Expression) dsl.Expression {
	return And{Predicates: mustPredicates(parts)}
}

// Or combines parts into a disjunction.
// Panics if a part was not built by a queryir Builder.
func (Builder) Or(parts ...dsl.Expression) dsl.Expression {
	return Or{Predicates: mustPredicates(parts)}
}

func mustPredicates(parts []dsl.Expression) []Predicate {
	preds := make([]Predicate, len(parts))
	for i, part := range parts {
		p, ok := part.(Predicate)
		if !ok {
			panic(fmt.Sprintf("queryir: cannot combine %T; mixing expression builders", part))
		}
		preds[i] = p
	}
	return preds
}
