package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/config_alias.yaml")
	require.NoError(t, err)

	assert.Equal(t, "config_alias", s.Name)
	assert.Equal(t, filepath.Join("testdata", "config"), s.Config, "config resolves against the scenario directory")
	assert.Equal(t, "test-query-config", s.QueryID)
	require.Len(t, s.Setup, 1)
	assert.Equal(t, int64(7), s.Setup[0].ID)
	assert.Equal(t, "2017-01-01", s.Setup[0].DatePublish)
	require.Len(t, s.Cases, 5)
	assert.Equal(t, []string{"ownerid=2"}, s.Cases[1].Query)
	assert.Equal(t, map[string]any{"ownerid_1": 2}, s.Cases[1].Expect.Params)
}

func TestLoadScenario_NotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_AbsoluteConfigKept(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	abs := filepath.Join(dir, "cfg")
	content := "name: s\ndescription: d\nconfig: " + abs + "\ncases:\n  - name: c\n    query: [\"id=1\"]\n    expect: {rows: 1}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, abs, s.Config)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{
			name: "unknown field",
			yaml: "name: s\ndescription: d\ncase: []\n",
			msg:  "field case not found",
		},
		{
			name: "missing name",
			yaml: "description: d\ncases: [{name: c, query: [\"id=1\"], expect: {rows: 1}}]\n",
			msg:  "name is required",
		},
		{
			name: "missing description",
			yaml: "name: s\ncases: [{name: c, query: [\"id=1\"], expect: {rows: 1}}]\n",
			msg:  "description is required",
		},
		{
			name: "no cases",
			yaml: "name: s\ndescription: d\n",
			msg:  "cases list is required",
		},
		{
			name: "negative limit",
			yaml: "name: s\ndescription: d\nlimit: -1\ncases: [{name: c, query: [\"id=1\"], expect: {rows: 1}}]\n",
			msg:  "limit must be non-negative",
		},
		{
			name: "unnamed case",
			yaml: "name: s\ndescription: d\ncases: [{query: [\"id=1\"], expect: {rows: 1}}]\n",
			msg:  "cases[0]: name is required",
		},
		{
			name: "duplicate case",
			yaml: "name: s\ndescription: d\ncases: [{name: c, query: [\"id=1\"], expect: {rows: 1}}, {name: c, query: [\"id=2\"], expect: {rows: 1}}]\n",
			msg:  "duplicate case name",
		},
		{
			name: "malformed pair",
			yaml: "name: s\ndescription: d\ncases: [{name: c, query: [\"noequals\"], expect: {rows: 1}}]\n",
			msg:  "INVALID_PAIR",
		},
		{
			name: "empty expect",
			yaml: "name: s\ndescription: d\ncases: [{name: c, query: [\"id=1\"]}]\n",
			msg:  "expect must check at least one field",
		},
		{
			name: "error with rows",
			yaml: "name: s\ndescription: d\ncases: [{name: c, query: [\"id=1\"], expect: {error: X, rows: 1}}]\n",
			msg:  "cannot be combined",
		},
		{
			name: "setup without slug",
			yaml: "name: s\ndescription: d\nsetup: [{id: 9}]\ncases: [{name: c, query: [\"id=1\"], expect: {rows: 1}}]\n",
			msg:  "setup[0]: slug is required",
		},
		{
			name: "setup duplicate id",
			yaml: "name: s\ndescription: d\nsetup: [{id: 9, slug: a}, {id: 9, slug: b}]\ncases: [{name: c, query: [\"id=1\"], expect: {rows: 1}}]\n",
			msg:  "duplicate id 9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestContentRowDefaults(t *testing.T) {
	c := ContentRow{ID: 1, Slug: "x"}.Content()
	assert.Equal(t, "pages", c.ContentType)
	assert.Equal(t, "published", c.Status)

	c = ContentRow{ID: 1, Slug: "x", ContentType: "entries", Status: "draft"}.Content()
	assert.Equal(t, "entries", c.ContentType)
	assert.Equal(t, "draft", c.Status)
}
