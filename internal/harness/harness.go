package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/qparam/internal/config"
	"github.com/roach88/qparam/internal/dsl"
	"github.com/roach88/qparam/internal/engine"
	"github.com/roach88/qparam/internal/ir"
	"github.com/roach88/qparam/internal/queryir"
	"github.com/roach88/qparam/internal/store"
	"github.com/roach88/qparam/internal/testutil"
)

// Harness holds the per-run state for one scenario.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and load fixtures plus setup rows
// 2. Build the parser, applying the CUE config and alias if any
// 3. Run each case through engine.Query and record its outcome
// 4. Check each outcome against the case's expectations
//
// An error is returned only when the scenario cannot run at all. Case
// failures are reported through Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	rows := testutil.ContentFixtures()
	for _, row := range scenario.Setup {
		rows = append(rows, row.Content())
	}
	if err := st.InsertContents(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng, err := newEngine(scenario, st, logger)
	if err != nil {
		return nil, err
	}

	h := &Harness{store: st, engine: eng, logger: logger}

	result := NewResult()
	for _, c := range scenario.Cases {
		outcome := h.runCase(ctx, c)
		result.AddCase(outcome)
		for _, msg := range EvaluateExpect(outcome, c.Expect) {
			result.AddError(fmt.Sprintf("case %q: %s", c.Name, msg))
		}
	}
	return result, nil
}

func newEngine(scenario *Scenario, st *store.Store, logger *slog.Logger) (*engine.Engine, error) {
	parser := dsl.New(queryir.NewBuilder(), dsl.WithLogger(logger))
	opts := []engine.Option{engine.WithLogger(logger)}

	if scenario.Config != "" {
		loaded, err := config.Load(scenario.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Config.Apply(parser); err != nil {
			return nil, fmt.Errorf("failed to apply config: %w", err)
		}
		opts = append(opts, loaded.Config.EngineOptions()...)
	}

	if scenario.Alias != "" {
		parser.SetAlias(scenario.Alias)
	}
	if len(scenario.OrderBy) > 0 {
		opts = append(opts, engine.WithOrderBy(scenario.OrderBy...))
	}
	if scenario.Limit > 0 {
		opts = append(opts, engine.WithLimit(scenario.Limit))
	}

	idGen := testutil.NewFixedIDGenerator(scenario.QueryID)
	return engine.New(st, parser, idGen, opts...), nil
}

// runCase plans and executes one case. The plan is recorded even when
// execution is skipped because planning failed.
func (h *Harness) runCase(ctx context.Context, c Case) CaseOutcome {
	outcome := CaseOutcome{Name: c.Name}

	pairs, err := c.Pairs()
	if err != nil {
		outcome.Error = engine.CodeOf(err)
		outcome.ErrorMessage = err.Error()
		return outcome
	}

	res, err := h.engine.Query(ctx, pairs)
	if err != nil {
		outcome.Error = engine.CodeOf(err)
		if outcome.Error == "" {
			outcome.Error = "ERROR"
		}
		outcome.ErrorMessage = err.Error()
		h.logger.Info("case failed", "case", c.Name, "error", err)
		return outcome
	}

	plan := res.Plan
	if plan.Select.Filter != nil {
		outcome.Expression = plan.Select.Filter.String()
	}
	outcome.Params = plan.Params
	outcome.SQL = plan.SQL
	outcome.Args = plan.Args
	outcome.RowCount = len(res.Rows)
	outcome.RowIDs = rowIDs(res.Rows)

	h.logger.Info("case completed",
		"case", c.Name,
		"query_id", plan.ID,
		"rows", len(res.Rows),
	)
	return outcome
}

// rowIDs extracts the id column. Rows without an integer id are skipped.
func rowIDs(rows []ir.IRObject) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if id, ok := row["id"].(ir.IRInt); ok {
			ids = append(ids, int64(id))
		}
	}
	return ids
}
