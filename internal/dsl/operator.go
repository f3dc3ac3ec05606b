package dsl

import "fmt"

// Operator names the comparison a value matcher selects.
type Operator string

const (
	OpEq        Operator = "eq"
	OpNeq       Operator = "neq"
	OpLt        Operator = "lt"
	OpLte       Operator = "lte"
	OpGt        Operator = "gt"
	OpGte       Operator = "gte"
	OpLike      Operator = "like"
	OpIsNotNull Operator = "isNotNull"
	OpIn        Operator = "in"
	OpNotIn     Operator = "notIn"
)

var operators = []Operator{OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpLike, OpIsNotNull, OpIn, OpNotIn}

// Operators returns every supported operator in declaration order.
func Operators() []Operator {
	return append([]Operator(nil), operators...)
}

// ParseOperator resolves an operator by name.
func ParseOperator(name string) (Operator, error) {
	for _, op := range operators {
		if string(op) == name {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operator %q", name)
}

// IsList reports whether the operator binds a list value.
func (op Operator) IsList() bool {
	return op == OpIn || op == OpNotIn
}

// Build dispatches to the builder method for op.
func (op Operator) Build(b ExpressionBuilder, field, placeholder string) (Expression, error) {
	switch op {
	case OpEq:
		return b.Eq(field, placeholder), nil
	case OpNeq:
		return b.Neq(field, placeholder), nil
	case OpLt:
		return b.Lt(field, placeholder), nil
	case OpLte:
		return b.Lte(field, placeholder), nil
	case OpGt:
		return b.Gt(field, placeholder), nil
	case OpGte:
		return b.Gte(field, placeholder), nil
	case OpLike:
		return b.Like(field, placeholder), nil
	case OpIsNotNull:
		return b.IsNotNull(field, placeholder), nil
	case OpIn:
		return b.In(field, placeholder), nil
	case OpNotIn:
		return b.NotIn(field, placeholder), nil
	default:
		return nil, fmt.Errorf("unknown operator %q", op)
	}
}
