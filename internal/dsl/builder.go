package dsl

// Expression is a node produced by an ExpressionBuilder. The parser never
// inspects it.
type Expression any

// ExpressionBuilder constructs comparison and combinator nodes.
//
// Comparison methods receive the fully qualified field (alias prefix
// applied) and the placeholder token, which always carries a leading ':'.
type ExpressionBuilder interface {
	Eq(field, placeholder string) Expression
	Neq(field, placeholder string) Expression
	Lt(field, placeholder string) Expression
	Lte(field, placeholder string) Expression
	Gt(field, placeholder string) Expression
	Gte(field, placeholder string) Expression
	Like(field, placeholder string) Expression
	IsNotNull(field, placeholder string) Expression
	In(field, placeholder string) Expression
	NotIn(field, placeholder string) Expression

	And(parts ...Expression) Expression
	Or(parts ...Expression) Expression
}
