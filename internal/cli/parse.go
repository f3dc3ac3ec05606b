package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qparam/internal/engine"
	"github.com/roach88/qparam/internal/ir"
	"github.com/roach88/qparam/internal/queryir"
)

// FilterOutput describes one compiled query parameter.
type FilterOutput struct {
	Key         string      `json:"key"`
	Keys        []string    `json:"keys"`
	Expression  string      `json:"expression"`
	Params      ir.IRObject `json:"params"`
	Fingerprint string      `json:"fingerprint"`
}

// ParseResult lists compiled filters in argument order.
type ParseResult struct {
	Filters []FilterOutput `json:"filters"`
}

// String renders the text form.
func (r ParseResult) String() string {
	var b strings.Builder
	for i, f := range r.Filters {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s\n", f.Key)
		fmt.Fprintf(&b, "  expression:  %s\n", f.Expression)
		fmt.Fprintf(&b, "  params:      %s\n", formatParams(f.Params))
		fmt.Fprintf(&b, "  fingerprint: %s", f.Fingerprint)
	}
	return b.String()
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <key=value>...",
		Short: "Compile query parameters into filter expressions",
		Long: `Compile each key=value query parameter into a filter expression and
its bound parameters. Nothing is executed.

Examples:
  qparam parse 'id=<5 && !1'
  qparam parse 'username|||email=fred|||fred@example.com' --format json
  qparam parse 'slug=~news' --config ./parser`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runParse(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	parser, _, err := buildParser(opts)
	if err != nil {
		return failWith(formatter, "failed to build parser", err)
	}

	pairs, err := engine.ParsePairs(args)
	if err != nil {
		return failWith(formatter, "invalid argument", err)
	}

	result := ParseResult{Filters: make([]FilterOutput, 0, len(pairs))}
	for _, pair := range pairs {
		f, ok, err := parser.GetFilter(pair.Key, pair.Value)
		if err != nil {
			return failWith(formatter, fmt.Sprintf("parameter %q rejected", pair.Key), err)
		}
		if !ok {
			return failWith(formatter, fmt.Sprintf("parameter %q rejected", pair.Key), &engine.RuntimeError{
				Code:    engine.ErrCodeFilterDeclined,
				Message: "no filter handler accepted the parameter",
				Key:     pair.Key,
			})
		}

		pred, err := queryir.AsPredicate(f.Expression())
		if err != nil {
			return failWith(formatter, "unexpected expression", err)
		}
		expression := pred.String()
		params := f.Parameters()

		fingerprint, err := ir.FilterFingerprint(expression, params)
		if err != nil {
			return failWith(formatter, "fingerprint failed", err)
		}

		formatter.VerboseLog("%s: %d param(s)", f.Key(), len(params))
		result.Filters = append(result.Filters, FilterOutput{
			Key:         f.Key(),
			Keys:        f.Keys(),
			Expression:  expression,
			Params:      params,
			Fingerprint: fingerprint,
		})
	}

	return formatter.SuccessWithTrace(result, engine.UUIDv7Generator{}.Generate())
}

// formatParams renders params as "name=value" pairs in sorted order.
func formatParams(params ir.IRObject) string {
	if len(params) == 0 {
		return "(none)"
	}
	parts := make([]string, 0, len(params))
	for _, k := range params.SortedKeys() {
		parts = append(parts, k+"="+ir.String(params[k]))
	}
	return strings.Join(parts, ", ")
}
