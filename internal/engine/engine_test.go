package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qparam/internal/dsl"
	"github.com/roach88/qparam/internal/ir"
	"github.com/roach88/qparam/internal/queryir"
	"github.com/roach88/qparam/internal/testutil"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	s := testutil.OpenFixtureStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := dsl.New(queryir.NewBuilder(), dsl.WithLogger(logger))
	opts = append([]Option{WithLogger(logger)}, opts...)
	return New(s, p, testutil.NewFixedIDGenerator("q-1"), opts...)
}

func ids(rows []ir.IRObject) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = int64(r["id"].(ir.IRInt))
	}
	return out
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		in   string
		want Pair
	}{
		{"id=5", Pair{Key: "id", Value: "5"}},
		{"id=<=5", Pair{Key: "id", Value: "<=5"}},
		{"id=>=5", Pair{Key: "id", Value: ">=5"}},
		{"username|||email=fred|||pete", Pair{Key: "username|||email", Value: "fred|||pete"}},
		{"body=!", Pair{Key: "body", Value: "!"}},
		{"status=", Pair{Key: "status", Value: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePair(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"noequals", "=5", " =5"} {
		_, err := ParsePair(bad)
		assert.Error(t, err, bad)
	}
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name  string
		pairs []Pair
		want  []int64
	}{
		{"no filters", nil, []int64{1, 2, 3, 4, 5, 6}},
		{"eq", []Pair{{"username", "fred"}}, []int64{1, 3}},
		{"lt and neq", []Pair{{"id", "<5 && !1"}}, []int64{2, 3, 4}},
		{"or", []Pair{{"username", "fred||bob"}}, []int64{1, 3, 4}},
		{"triple pipe", []Pair{{"username|||email", "alice|||bob@example.com"}}, []int64{4, 6}},
		{"in", []Pair{{"status", "[held,draft]"}}, []int64{3, 5}},
		{"not in", []Pair{{"ownerid", "![1,2]"}}, []int64{4, 6}},
		{"like", []Pair{{"slug", "%co%"}}, []int64{2, 5}},
		{"is not null", []Pair{{"body", "!"}}, []int64{1, 2, 4, 5}},
		{"gte", []Pair{{"ownerid", ">=3"}}, []int64{4, 6}},
		{"several pairs", []Pair{{"contenttype", "entries"}, {"status", "published"}}, []int64{4, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)

			res, err := e.Query(context.Background(), tt.pairs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res.Rows))
			assert.Equal(t, "q-1", res.Plan.ID)
		})
	}
}

func TestQuery_EmptyResultIsNotNil(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Query(context.Background(), []Pair{{"username", "nobody"}})
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestQuery_RowShape(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Query(context.Background(), []Pair{{"id", "3"}})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, ir.IRString("draft-page"), row["slug"])
	assert.Equal(t, ir.IRInt(1), row["ownerid"])
	assert.Equal(t, ir.IRNull{}, row["body"])
}

func TestQuery_OrderAndLimit(t *testing.T) {
	e := newTestEngine(t, WithOrderBy("-datepublish"), WithLimit(2), WithColumns("id", "slug"))

	res, err := e.Query(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 5}, ids(res.Rows))
	assert.Len(t, res.Rows[0], 2, "only selected columns are returned")
}

func TestQuery_Alias(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := dsl.New(queryir.NewBuilder(), dsl.WithAlias("c"), dsl.WithLogger(logger))
	e := New(testutil.OpenFixtureStore(t), p, testutil.NewFixedIDGenerator("q"), WithLogger(logger))

	res, err := e.Query(context.Background(), []Pair{{"id", "<3"}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM content AS c WHERE c.id < ? ORDER BY c.id ASC COLLATE BINARY", res.Plan.SQL)
	assert.Equal(t, []int64{1, 2}, ids(res.Rows))
}

func TestPlan_SQLAndFingerprint(t *testing.T) {
	e := newTestEngine(t)

	plan, err := e.Plan(context.Background(), []Pair{{"id", "<5 && !1"}, {"username", "fred"}})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT * FROM content WHERE ((id < ? AND id <> ?) AND username = ?) ORDER BY id ASC COLLATE BINARY",
		plan.SQL)
	assert.Equal(t, []any{"5", "1", "fred"}, plan.Args)
	assert.Equal(t, []string{"id_1", "id_2", "username_1"}, plan.Params.SortedKeys())
	assert.Len(t, plan.Filters, 2)
	assert.Len(t, plan.Fingerprint, 64)

	again, err := e.Plan(context.Background(), []Pair{{"id", "<5 && !1"}, {"username", "fred"}})
	require.NoError(t, err)
	assert.Equal(t, plan.Fingerprint, again.Fingerprint)
}

func TestPlan_RepeatedKeyContinuesOrdinals(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Query(context.Background(), []Pair{{"id", ">1"}, {"id", "<4"}})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM content WHERE (id > ? AND id < ?) ORDER BY id ASC COLLATE BINARY",
		res.Plan.SQL)
	assert.Equal(t, []string{"id_1", "id_2"}, res.Plan.Params.SortedKeys())
	assert.Equal(t, "(id > :id_1 AND id < :id_2)", res.Plan.Select.Filter.String())
	assert.Equal(t, []int64{2, 3}, ids(res.Rows))

	// A later compound value is shifted past the ordinals already used.
	_, params, filters, err := e.Build([]Pair{{"id", "!1"}, {"id", ">1 && <4"}, {"username", "fred"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"id_1", "id_2", "id_3", "username_1"}, params.SortedKeys())
	assert.Equal(t, ir.IRString("1"), params["id_2"])
	assert.Equal(t, ir.IRString("4"), params["id_3"])
	assert.Equal(t, []string{"id_1", "id_2"}, filters[1].ParameterNames())
}

func TestPlan_WithoutStoreSkipsFieldCheck(t *testing.T) {
	e := New(nil, dsl.New(queryir.NewBuilder()), testutil.NewFixedIDGenerator(""))

	plan, err := e.Plan(context.Background(), []Pair{{"anything", "1"}})
	require.NoError(t, err)
	assert.Contains(t, plan.SQL, "anything = ?")

	_, err = e.Query(context.Background(), nil)
	assert.Error(t, err)
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name  string
		pairs []Pair
		check func(error) bool
	}{
		{"unknown field", []Pair{{"nope", "1"}}, IsUnknownFieldError},
		{"unknown field in multi key", []Pair{{"username|||nope", "x"}}, IsUnknownFieldError},
		{"mixed operators", []Pair{{"id", "1&&2||3"}}, func(err error) bool {
			return dsl.IsKind(err, dsl.ErrMixedOperators)
		}},
		{"no match", []Pair{{"id", "---"}}, func(err error) bool {
			return dsl.IsKind(err, dsl.ErrNoMatchingPattern)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			_, err := e.Plan(context.Background(), tt.pairs)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestBuild_DeclinedFilter(t *testing.T) {
	p := dsl.New(queryir.NewBuilder())
	p.AddFilterHandler(dsl.HandlerFunc(func(*dsl.Parser, string, string) (dsl.Filter, bool, error) {
		return dsl.Filter{}, false, nil
	}))
	e := New(nil, p, testutil.NewFixedIDGenerator(""))

	// The default handler still accepts after a declining custom handler.
	_, _, filters, err := e.Build([]Pair{{"id", "1"}})
	require.NoError(t, err)
	assert.Len(t, filters, 1)
}

func TestBuild_ForeignBuilderRejected(t *testing.T) {
	e := New(nil, dsl.New(testutil.NewTextBuilder()), testutil.NewFixedIDGenerator(""))

	_, _, _, err := e.Build([]Pair{{"id", "1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queryir.Builder")
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestRuntimeError(t *testing.T) {
	err := NewUnknownFieldError("nope", "nope", "content")
	assert.Equal(t, `UNKNOWN_FIELD: field "nope" is not a column of content (key=nope)`, err.Error())
	assert.False(t, IsInvalidQueryError(err))
	assert.False(t, IsInvalidQueryError(nil))
}

func TestCodeOf(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Plan(context.Background(), []Pair{{"nope", "1"}})
	assert.Equal(t, "UNKNOWN_FIELD", CodeOf(err))

	_, err = e.Plan(context.Background(), []Pair{{"id", "1&&2||3"}})
	assert.Equal(t, "MIXED_OPERATORS", CodeOf(err))

	assert.Equal(t, "", CodeOf(nil))
	assert.Equal(t, "", CodeOf(io.EOF))
}
