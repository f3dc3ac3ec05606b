package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qparam/internal/engine"
	"github.com/roach88/qparam/internal/ir"
	"github.com/roach88/qparam/internal/store"
)

// QueryCommandOptions holds flags for the query command.
type QueryCommandOptions struct {
	QueryOptions
	Database string
}

// QueryOutput is a compiled query with its rows.
type QueryOutput struct {
	PlanOutput
	Count int           `json:"count"`
	Rows  []ir.IRObject `json:"rows"`
}

// String renders the text form: one line per row, columns in sorted order.
func (q QueryOutput) String() string {
	var b strings.Builder
	for _, row := range q.Rows {
		parts := make([]string, 0, len(row))
		for _, k := range row.SortedKeys() {
			parts = append(parts, k+"="+ir.String(row[k]))
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d row(s)", q.Count)
	return b.String()
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryCommandOptions{QueryOptions: QueryOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "query [key=value]...",
		Short: "Run query parameters against a content database",
		Long: `Compile query parameters into SQL and run it against a SQLite content
database. Every filter field must be a column of the queried table.
A key may repeat; its comparisons are AND-ed ('id=>1' 'id=<5').

Exit codes:
  0 - Query ran (even with zero rows)
  1 - Query parameters rejected
  2 - Command error (database not found, bad config, etc.)

Examples:
  qparam query --db ./content.db 'status=published' 'username=fred||pete'
  qparam query --db ./content.db 'body=!' --columns id,slug --format json
  qparam query --db ./content.db 'id=>1' 'id=<5'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args, cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(opts *QueryCommandOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// store.Open would create a missing file; a query needs existing content.
	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to open database", err)
	}
	defer st.Close()

	eng, err := opts.newEngine(st)
	if err != nil {
		return failWith(formatter, "failed to build parser", err)
	}

	pairs, err := engine.ParsePairs(args)
	if err != nil {
		return failWith(formatter, "invalid argument", err)
	}

	res, err := eng.Query(commandContext(cmd), pairs)
	if err != nil {
		return failWith(formatter, "query rejected", err)
	}

	formatter.VerboseLog("query %s returned %d row(s)", res.Plan.ID, len(res.Rows))
	out := QueryOutput{
		PlanOutput: newPlanOutput(&res.Plan),
		Count:      len(res.Rows),
		Rows:       res.Rows,
	}
	return formatter.SuccessWithTrace(out, res.Plan.ID)
}
