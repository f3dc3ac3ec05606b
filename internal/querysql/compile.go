package querysql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/qparam/internal/dsl"
	"github.com/roach88/qparam/internal/ir"
	"github.com/roach88/qparam/internal/queryir"
)

// identifierPattern accepts "name" or "alias.name". Field names come from
// query-parameter keys, so anything else is rejected before it reaches SQL.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLCompiler compiles queryir queries to parameterized SQL for SQLite.
//
// Every query ends with ORDER BY on the primary key so results are stable.
// Values are always bound with ? placeholders, never interpolated.
type SQLCompiler struct {
	// Params holds the value for each placeholder name, as produced by
	// dsl.Filter.Parameters.
	Params ir.IRObject
}

// NewSQLCompiler creates a compiler over params.
func NewSQLCompiler(params ir.IRObject) *SQLCompiler {
	if params == nil {
		params = ir.IRObject{}
	}
	return &SQLCompiler{Params: params}
}

// Compile is shorthand for NewSQLCompiler(params).Compile(sel).
func Compile(sel queryir.Select, params ir.IRObject) (string, []any, error) {
	return NewSQLCompiler(params).Compile(sel)
}

// Compile converts a query to SQL and its ordered arguments.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	if err := checkIdentifier("table", q.From); err != nil {
		return "", nil, err
	}
	from := q.From
	if q.Alias != "" {
		if err := checkIdentifier("alias", q.Alias); err != nil {
			return "", nil, err
		}
		from += " AS " + q.Alias
	}

	columns, err := c.compileColumns(q.Columns)
	if err != nil {
		return "", nil, err
	}

	var where string
	var args []any
	if q.Filter != nil {
		filterSQL, filterArgs, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		where = " WHERE " + filterSQL
		args = filterArgs
	}

	orderBy, err := stableOrder(q)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s", columns, from, where, orderBy)
	if q.Limit > 0 {
		sql += " LIMIT ?"
		args = append(args, int64(q.Limit))
	}

	return sql, args, nil
}

func (c *SQLCompiler) compileColumns(cols []string) (string, error) {
	if len(cols) == 0 {
		return "*", nil
	}
	for _, col := range cols {
		if err := checkIdentifier("column", col); err != nil {
			return "", err
		}
	}
	return strings.Join(cols, ", "), nil
}

// stableOrder renders the ORDER BY clause. The primary key is appended as a
// final tiebreaker unless the caller already orders by it.
func stableOrder(q queryir.Select) (string, error) {
	pk := "id"
	if q.Alias != "" {
		pk = q.Alias + ".id"
	}

	var parts []string
	hasPK := false
	for _, term := range q.OrderBy {
		dir := "ASC"
		field := term
		if strings.HasPrefix(term, "-") {
			dir = "DESC"
			field = term[1:]
		}
		if err := checkIdentifier("order field", field); err != nil {
			return "", err
		}
		if field == pk || field == "id" {
			hasPK = true
		}
		parts = append(parts, field+" "+dir+" COLLATE BINARY")
	}
	if !hasPK {
		parts = append(parts, pk+" ASC COLLATE BINARY")
	}
	return strings.Join(parts, ", "), nil
}

func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Comparison:
		return c.compileComparison(pred)
	case *queryir.Comparison:
		return c.compileComparison(*pred)
	case queryir.And:
		return c.compileComposite("AND", "1 = 1", pred.Predicates)
	case *queryir.And:
		return c.compileComposite("AND", "1 = 1", pred.Predicates)
	case queryir.Or:
		return c.compileComposite("OR", "1 = 0", pred.Predicates)
	case *queryir.Or:
		return c.compileComposite("OR", "1 = 0", pred.Predicates)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileComposite joins children with op. Two or more children are
// parenthesized so nesting keeps its meaning.
func (c *SQLCompiler) compileComposite(op, empty string, preds []queryir.Predicate) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	var parts []string
	var args []any
	for _, pred := range preds {
		sql, predArgs, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		args = append(args, predArgs...)
	}

	if len(parts) == 1 {
		return parts[0], args, nil
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")", args, nil
}

var scalarOps = map[dsl.Operator]string{
	dsl.OpEq:   "=",
	dsl.OpNeq:  "<>",
	dsl.OpLt:   "<",
	dsl.OpLte:  "<=",
	dsl.OpGt:   ">",
	dsl.OpGte:  ">=",
	dsl.OpLike: "LIKE",
}

func (c *SQLCompiler) compileComparison(cmp queryir.Comparison) (string, []any, error) {
	if err := checkIdentifier("field", cmp.Field); err != nil {
		return "", nil, err
	}

	if cmp.Op == dsl.OpIsNotNull {
		return cmp.Field + " IS NOT NULL", nil, nil
	}

	val, ok := c.Params[cmp.Param]
	if !ok {
		return "", nil, fmt.Errorf("no value bound for placeholder %q", cmp.Param)
	}

	if cmp.Op.IsList() {
		return compileList(cmp, val)
	}

	sqlOp, ok := scalarOps[cmp.Op]
	if !ok {
		return "", nil, fmt.Errorf("unsupported operator %q", cmp.Op)
	}
	param, err := irValueToParam(val)
	if err != nil {
		return "", nil, fmt.Errorf("placeholder %q: %w", cmp.Param, err)
	}
	return fmt.Sprintf("%s %s ?", cmp.Field, sqlOp), []any{param}, nil
}

// compileList expands an in/notIn list to one ? per element.
func compileList(cmp queryir.Comparison, val ir.IRValue) (string, []any, error) {
	list, ok := val.(ir.IRArray)
	if !ok {
		return "", nil, fmt.Errorf("placeholder %q: %s needs a list, got %T", cmp.Param, cmp.Op, val)
	}
	if len(list) == 0 {
		return "", nil, fmt.Errorf("placeholder %q: empty list for %s", cmp.Param, cmp.Op)
	}

	marks := make([]string, len(list))
	args := make([]any, len(list))
	for i, elem := range list {
		param, err := irValueToParam(elem)
		if err != nil {
			return "", nil, fmt.Errorf("placeholder %q[%d]: %w", cmp.Param, i, err)
		}
		marks[i] = "?"
		args[i] = param
	}

	keyword := "IN"
	if cmp.Op == dsl.OpNotIn {
		keyword = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", cmp.Field, keyword, strings.Join(marks, ", ")), args, nil
}

func checkIdentifier(kind, name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}

// irValueToParam converts a scalar ir.IRValue to a driver argument.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case ir.IRNull:
		return nil, nil
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
