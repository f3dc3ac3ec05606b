// Package queryir provides the predicate tree that compiled query-parameter
// filters are built into, and the Select query that carries it to a backend.
//
//	[dsl.Parser] --Builder--> [queryir predicates] --> [querysql]
//
// Builder implements dsl.ExpressionBuilder, so the parser assembles
// Comparison, And and Or nodes without knowing about SQL.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed with marker methods. Backends can switch
// exhaustively over the node types:
//
//	switch p := pred.(type) {
//	case Comparison:
//	case And:
//	case Or:
//	}
//
// Predicates never hold literal values. Each Comparison names a placeholder
// and the values travel separately in the Filter's parameter map; Validate
// checks that the two agree.
package queryir
