// Package dsl compiles query-parameter filter expressions into
// parameterized predicate trees.
//
// A caller hands the Parser one (key, value) pair at a time:
//
//	id        = "<5 && !1"          -> id < :id_1 AND id <> :id_2
//	username  = "fred||bob"         -> username = :username_1 OR username = :username_2
//	username|||email = "fred|||pete" -> username = :username_1 OR email = :email_1
//
// The Parser never produces query text. Comparison and combinator nodes are
// built by an injected ExpressionBuilder, and the returned Filter carries the
// values to bind under each placeholder name.
//
// Value strings are classified by an ordered table of regular expressions
// (ValueMatcher). Keys and values are dispatched through an ordered chain of
// FilterHandler strategies; the first handler to accept produces the Filter.
//
// A Parser is safe for concurrent GetFilter calls once registration of
// matchers and handlers has finished. Registration itself is not
// synchronized.
package dsl
