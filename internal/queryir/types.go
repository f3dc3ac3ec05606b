package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/qparam/internal/dsl"
)

// Query represents an abstract query.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
// Predicate types:
//   - Comparison: field <op> :placeholder
//   - And: all predicates must be true
//   - Or: at least one predicate must be true
type Predicate interface {
	predicateNode()
	String() string
}

// Select represents a table access with filtering.
//
//	SELECT <columns> FROM <from> AS <alias> WHERE <filter> ORDER BY <order_by> LIMIT <limit>
//
// Empty Columns selects every column. A nil Filter matches all rows.
// OrderBy entries are field names; a leading '-' sorts descending.
// Limit <= 0 means no limit.
type Select struct {
	From    string
	Alias   string
	Columns []string
	Filter  Predicate
	OrderBy []string
	Limit   int
}

func (Select) queryNode() {}

// Comparison compares a field against a named placeholder.
//
// Param holds the placeholder name without the ':' prefix. For OpIsNotNull
// the placeholder is still allocated but the backend binds nothing.
type Comparison struct {
	Op    dsl.Operator
	Field string
	Param string
}

func (Comparison) predicateNode() {}

// String renders the comparison in SQL-like form.
func (c Comparison) String() string {
	ph := ":" + c.Param
	switch c.Op {
	case dsl.OpEq:
		return c.Field + " = " + ph
	case dsl.OpNeq:
		return c.Field + " <> " + ph
	case dsl.OpLt:
		return c.Field + " < " + ph
	case dsl.OpLte:
		return c.Field + " <= " + ph
	case dsl.OpGt:
		return c.Field + " > " + ph
	case dsl.OpGte:
		return c.Field + " >= " + ph
	case dsl.OpLike:
		return c.Field + " LIKE " + ph
	case dsl.OpIsNotNull:
		return c.Field + " IS NOT NULL"
	case dsl.OpIn:
		return c.Field + " IN (" + ph + ")"
	case dsl.OpNotIn:
		return c.Field + " NOT IN (" + ph + ")"
	default:
		return fmt.Sprintf("%s ?%s? %s", c.Field, c.Op, ph)
	}
}

// And is a conjunction. An empty And is true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// String renders the conjunction. A single child renders unwrapped.
func (a And) String() string {
	return renderComposite("AND", "TRUE", a.Predicates)
}

// Or is a disjunction. An empty Or is false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// String renders the disjunction. A single child renders unwrapped.
func (o Or) String() string {
	return renderComposite("OR", "FALSE", o.Predicates)
}

func renderComposite(op, empty string, preds []Predicate) string {
	switch len(preds) {
	case 0:
		return empty
	case 1:
		return preds[0].String()
	}
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}

// AsPredicate converts an expression produced by Builder back to a
// Predicate. It fails for nodes built by any other ExpressionBuilder.
func AsPredicate(expr dsl.Expression) (Predicate, error) {
	p, ok := expr.(Predicate)
	if !ok {
		return nil, fmt.Errorf("expression %T was not built by queryir.Builder", expr)
	}
	return p, nil
}

// Placeholders returns every placeholder name referenced by p, in tree
// order. Duplicates are kept so callers can detect them.
func Placeholders(p Predicate) []string {
	var out []string
	walk(p, func(c Comparison) {
		out = append(out, c.Param)
	})
	return out
}

// Fields returns every field referenced by p, in tree order.
func Fields(p Predicate) []string {
	var out []string
	walk(p, func(c Comparison) {
		out = append(out, c.Field)
	})
	return out
}

// RenameParams returns a copy of p with each placeholder found in names
// replaced by its mapped name. Placeholders not in names are kept.
func RenameParams(p Predicate, names map[string]string) Predicate {
	switch pred := p.(type) {
	case Comparison:
		if to, ok := names[pred.Param]; ok {
			pred.Param = to
		}
		return pred
	case *Comparison:
		return RenameParams(*pred, names)
	case And:
		return And{Predicates: renameAll(pred.Predicates, names)}
	case *And:
		return And{Predicates: renameAll(pred.Predicates, names)}
	case Or:
		return Or{Predicates: renameAll(pred.Predicates, names)}
	case *Or:
		return Or{Predicates: renameAll(pred.Predicates, names)}
	}
	return p
}

func renameAll(preds []Predicate, names map[string]string) []Predicate {
	out := make([]Predicate, len(preds))
	for i, child := range preds {
		out[i] = RenameParams(child, names)
	}
	return out
}

func walk(p Predicate, visit func(Comparison)) {
	switch pred := p.(type) {
	case Comparison:
		visit(pred)
	case *Comparison:
		visit(*pred)
	case And:
		for _, child := range pred.Predicates {
			walk(child, visit)
		}
	case *And:
		for _, child := range pred.Predicates {
			walk(child, visit)
		}
	case Or:
		for _, child := range pred.Predicates {
			walk(child, visit)
		}
	case *Or:
		for _, child := range pred.Predicates {
			walk(child, visit)
		}
	}
}
