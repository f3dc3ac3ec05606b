package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qparam/internal/engine"
	"github.com/roach88/qparam/internal/ir"
	"github.com/roach88/qparam/internal/store"
)

// QueryOptions holds the flags shared by the sql and query commands.
// Set flags override the CUE config.
type QueryOptions struct {
	*RootOptions
	Table   string
	Columns []string
	OrderBy []string
	Limit   int

	// IDGenerator allows overriding the query ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.IDGenerator
}

func (o *QueryOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Table, "table", "", "table to query (default content)")
	cmd.Flags().StringSliceVar(&o.Columns, "columns", nil, "columns to select (default all)")
	cmd.Flags().StringSliceVar(&o.OrderBy, "order", nil, "sort fields, -field for descending")
	cmd.Flags().IntVar(&o.Limit, "limit", 0, "maximum rows (0 for no limit)")
}

// newEngine builds an engine from the config and flags. st may be nil for
// planning only.
func (o *QueryOptions) newEngine(st *store.Store) (*engine.Engine, error) {
	parser, cfg, err := buildParser(o.RootOptions)
	if err != nil {
		return nil, err
	}

	opts := cfg.EngineOptions()
	if o.Table != "" {
		opts = append(opts, engine.WithTable(o.Table))
	}
	if len(o.Columns) > 0 {
		opts = append(opts, engine.WithColumns(o.Columns...))
	}
	if len(o.OrderBy) > 0 {
		opts = append(opts, engine.WithOrderBy(o.OrderBy...))
	}
	if o.Limit > 0 {
		opts = append(opts, engine.WithLimit(o.Limit))
	}

	idGen := o.IDGenerator
	if idGen == nil {
		idGen = engine.UUIDv7Generator{}
	}
	return engine.New(st, parser, idGen, opts...), nil
}

// PlanOutput is a compiled query.
type PlanOutput struct {
	QueryID     string      `json:"query_id"`
	SQL         string      `json:"sql"`
	Args        []any       `json:"args"`
	Params      ir.IRObject `json:"params"`
	Fingerprint string      `json:"fingerprint"`
}

func newPlanOutput(p *engine.Plan) PlanOutput {
	args := p.Args
	if args == nil {
		args = []any{}
	}
	return PlanOutput{
		QueryID:     p.ID,
		SQL:         p.SQL,
		Args:        args,
		Params:      p.Params,
		Fingerprint: p.Fingerprint,
	}
}

// String renders the text form.
func (p PlanOutput) String() string {
	return fmt.Sprintf("%s\nargs: %s", p.SQL, formatArgs(p.Args))
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql [key=value]...",
		Short: "Compile query parameters into SQL",
		Long: `Compile query parameters into one parameterized SQL statement. All
parameters are combined with AND. No database is opened, so field names
are not checked against the table.

Examples:
  qparam sql 'id=<5 && !1' 'status=published'
  qparam sql 'ownerid=[1,2]' --order -datepublish --limit 10`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args, cmd)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runSQL(opts *QueryOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	eng, err := opts.newEngine(nil)
	if err != nil {
		return failWith(formatter, "failed to build parser", err)
	}

	pairs, err := engine.ParsePairs(args)
	if err != nil {
		return failWith(formatter, "invalid argument", err)
	}

	plan, err := eng.Plan(commandContext(cmd), pairs)
	if err != nil {
		return failWith(formatter, "query rejected", err)
	}

	formatter.VerboseLog("fingerprint: %s", plan.Fingerprint)
	return formatter.SuccessWithTrace(newPlanOutput(plan), plan.ID)
}

// commandContext returns the command's context, or Background outside
// Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// formatArgs renders SQL args with strings quoted.
func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			parts[i] = strconv.Quote(s)
		} else {
			parts[i] = fmt.Sprint(a)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
