package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/qparam/internal/dsl"
	"github.com/roach88/qparam/internal/ir"
	"github.com/roach88/qparam/internal/queryir"
	"github.com/roach88/qparam/internal/querysql"
	"github.com/roach88/qparam/internal/store"
)

// Pair is one query parameter in request order.
type Pair struct {
	Key   string
	Value string
}

// ParsePair splits "key=value" on the first '='. Operators that contain '='
// ("id=<=5") stay in the value.
func ParsePair(s string) (Pair, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return Pair{}, &RuntimeError{
			Code:    ErrCodeInvalidPair,
			Message: fmt.Sprintf("expected key=value, got %q", s),
		}
	}
	return Pair{Key: key, Value: value}, nil
}

// ParsePairs parses each argument with ParsePair, keeping order.
func ParsePairs(args []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(args))
	for _, arg := range args {
		p, err := ParsePair(arg)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// Engine plans and runs filtered content queries.
//
// Thread-safety: Plan and Query are safe for concurrent use once the
// parser's matchers and handlers are registered.
type Engine struct {
	store   *store.Store
	parser  *dsl.Parser
	idGen   IDGenerator
	logger  *slog.Logger
	table   string
	columns []string
	orderBy []string
	limit   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithTable sets the queried table. Default: store.ContentTable.
func WithTable(table string) Option {
	return func(e *Engine) {
		e.table = table
	}
}

// WithColumns restricts the selected columns. Default: all columns.
func WithColumns(cols ...string) Option {
	return func(e *Engine) {
		e.columns = cols
	}
}

// WithOrderBy sets the sort order ("-field" sorts descending). The primary
// key is always the final tiebreaker.
func WithOrderBy(fields ...string) Option {
	return func(e *Engine) {
		e.orderBy = fields
	}
}

// WithLimit caps the number of returned rows. Zero means no limit.
func WithLimit(n int) Option {
	return func(e *Engine) {
		e.limit = n
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine. The parser must have been created with a
// queryir.Builder; s may be nil when only Plan is used.
func New(s *store.Store, parser *dsl.Parser, idGen IDGenerator, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		parser: parser,
		idGen:  idGen,
		logger: slog.Default(),
		table:  store.ContentTable,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plan is a compiled request, ready to execute.
type Plan struct {
	ID          string
	Select      queryir.Select
	Filters     []dsl.Filter
	Params      ir.IRObject
	SQL         string
	Args        []any
	Fingerprint string
}

// Result holds a plan and the rows it returned, in primary-key order
// unless an explicit order was configured.
type Result struct {
	Plan Plan
	Rows []ir.IRObject
}

// Build compiles each pair into a Filter and combines them with AND.
// Placeholder ordinals continue across pairs, so "id=>1" and "id=<5"
// bind id_1 and id_2. The returned Filters keep the names their own
// GetFilter call chose; the Select and params use the renumbered ones.
func (e *Engine) Build(pairs []Pair) (queryir.Select, ir.IRObject, []dsl.Filter, error) {
	params := ir.IRObject{}
	ordinals := map[string]int{}
	filters := make([]dsl.Filter, 0, len(pairs))
	preds := make([]queryir.Predicate, 0, len(pairs))

	for _, pair := range pairs {
		f, ok, err := e.parser.GetFilter(pair.Key, pair.Value)
		if err != nil {
			return queryir.Select{}, nil, nil, fmt.Errorf("parameter %q: %w", pair.Key, err)
		}
		if !ok {
			return queryir.Select{}, nil, nil, &RuntimeError{
				Code:    ErrCodeFilterDeclined,
				Message: "no filter handler accepted the parameter",
				Key:     pair.Key,
			}
		}

		pred, err := queryir.AsPredicate(f.Expression())
		if err != nil {
			return queryir.Select{}, nil, nil, fmt.Errorf("parameter %q: %w", pair.Key, err)
		}

		renames := renumber(ordinals, queryir.Placeholders(pred))
		if len(renames) > 0 {
			pred = queryir.RenameParams(pred, renames)
		}
		for _, name := range f.ParameterNames() {
			v, _ := f.Parameter(name)
			if to, ok := renames[name]; ok {
				name = to
			}
			params[name] = v
		}

		filters = append(filters, f)
		preds = append(preds, pred)
	}

	sel := queryir.Select{
		From:    e.table,
		Alias:   e.parser.Alias(),
		Columns: e.columns,
		OrderBy: e.orderBy,
		Limit:   e.limit,
	}
	if len(preds) > 0 {
		sel.Filter = queryir.And{Predicates: preds}
	}

	if res := queryir.Validate(sel, params); !res.Valid {
		return queryir.Select{}, nil, nil, &RuntimeError{
			Code:    ErrCodeInvalidQuery,
			Message: strings.Join(res.Errors, "; "),
		}
	}

	return sel, params, filters, nil
}

// Plan builds and compiles a request. When the engine has a store, every
// referenced field is checked against the table's columns.
func (e *Engine) Plan(ctx context.Context, pairs []Pair) (*Plan, error) {
	sel, params, filters, err := e.Build(pairs)
	if err != nil {
		return nil, err
	}

	if e.store != nil {
		if err := e.checkFields(ctx, sel, filters); err != nil {
			return nil, err
		}
	}

	sqlStr, args, err := querysql.Compile(sel, params)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}

	fingerprint, err := fingerprintOf(sqlStr, args)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		ID:          e.idGen.Generate(),
		Select:      sel,
		Filters:     filters,
		Params:      params,
		SQL:         sqlStr,
		Args:        args,
		Fingerprint: fingerprint,
	}

	e.logger.Debug("query planned",
		"query_id", plan.ID,
		"filters", len(filters),
		"sql", sqlStr,
		"fingerprint", fingerprint,
	)
	return plan, nil
}

// Query plans a request and executes it against the store.
// Returns an empty (non-nil) row slice when nothing matches.
func (e *Engine) Query(ctx context.Context, pairs []Pair) (*Result, error) {
	if e.store == nil {
		return nil, fmt.Errorf("engine has no store")
	}

	plan, err := e.Plan(ctx, pairs)
	if err != nil {
		return nil, err
	}

	rows, err := e.store.Query(ctx, plan.SQL, plan.Args...)
	if err != nil {
		return nil, fmt.Errorf("execute query %s: %w", plan.ID, err)
	}
	defer rows.Close()

	out := []ir.IRObject{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	e.logger.Info("query executed",
		"query_id", plan.ID,
		"rows", len(out),
	)
	return &Result{Plan: *plan, Rows: out}, nil
}

// checkFields rejects fields that are not columns of the table. Fields are
// taken from each filter's predicate; the alias prefix, if any, is stripped
// before the lookup.
func (e *Engine) checkFields(ctx context.Context, sel queryir.Select, filters []dsl.Filter) error {
	cols, err := e.store.Columns(ctx, sel.From)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c] = true
	}

	prefix := ""
	if sel.Alias != "" {
		prefix = sel.Alias + "."
	}
	for _, f := range filters {
		pred, err := queryir.AsPredicate(f.Expression())
		if err != nil {
			return err
		}
		for _, field := range queryir.Fields(pred) {
			name := strings.TrimPrefix(field, prefix)
			if !known[name] {
				return NewUnknownFieldError(f.Key(), name, sel.From)
			}
		}
	}
	for _, c := range sel.Columns {
		if !known[c] {
			return NewUnknownFieldError("", c, sel.From)
		}
	}
	return nil
}

// renumber assigns each placeholder the next ordinal of its field across
// the request, in tree order. Names that keep their ordinal are left out
// of the returned map.
func renumber(ordinals map[string]int, names []string) map[string]string {
	var renames map[string]string
	for _, name := range names {
		field := name
		if i := strings.LastIndexByte(name, '_'); i > 0 {
			field = name[:i]
		}
		ordinals[field]++
		to := fmt.Sprintf("%s_%d", field, ordinals[field])
		if to == name {
			continue
		}
		if renames == nil {
			renames = map[string]string{}
		}
		renames[name] = to
	}
	return renames
}

func fingerprintOf(sqlStr string, args []any) (string, error) {
	irArgs := make(ir.IRArray, len(args))
	for i, a := range args {
		v, err := ir.FromGo(a)
		if err != nil {
			return "", fmt.Errorf("fingerprint arg %d: %w", i, err)
		}
		irArgs[i] = v
	}
	return ir.QueryFingerprint(sqlStr, irArgs)
}
