package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qparam/internal/engine"
	"github.com/roach88/qparam/internal/store"
)

// Scenario defines a conformance test scenario: a parser setup and a list
// of query-parameter cases with their expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is an optional CUE parser-config directory.
	// Relative paths resolve against the scenario file location.
	Config string `yaml:"config,omitempty"`

	// Alias overrides the field alias (also settable from Config).
	Alias string `yaml:"alias,omitempty"`

	// OrderBy and Limit override the engine defaults.
	OrderBy []string `yaml:"order,omitempty"`
	Limit   int      `yaml:"limit,omitempty"`

	// QueryID is a fixed query ID for deterministic output.
	// If empty, defaults to "test-query-default".
	QueryID string `yaml:"query_id,omitempty"`

	// Setup lists content rows inserted after the standard fixtures.
	Setup []ContentRow `yaml:"setup,omitempty"`

	// Cases run in order against the same store.
	Cases []Case `yaml:"cases"`
}

// ContentRow is a content record in scenario YAML.
type ContentRow struct {
	ID          int64   `yaml:"id"`
	ContentType string  `yaml:"contenttype,omitempty"`
	Slug        string  `yaml:"slug"`
	Title       string  `yaml:"title,omitempty"`
	Username    string  `yaml:"username,omitempty"`
	Email       string  `yaml:"email,omitempty"`
	Status      string  `yaml:"status,omitempty"`
	OwnerID     int64   `yaml:"ownerid,omitempty"`
	Body        *string `yaml:"body,omitempty"`
	DatePublish string  `yaml:"datepublish,omitempty"`
}

// Content converts the row to a store record. Missing content type and
// status default to "pages" and "published".
func (r ContentRow) Content() store.Content {
	c := store.Content{
		ID:          r.ID,
		ContentType: r.ContentType,
		Slug:        r.Slug,
		Title:       r.Title,
		Username:    r.Username,
		Email:       r.Email,
		Status:      r.Status,
		OwnerID:     r.OwnerID,
		Body:        r.Body,
		DatePublish: r.DatePublish,
	}
	if c.ContentType == "" {
		c.ContentType = "pages"
	}
	if c.Status == "" {
		c.Status = "published"
	}
	return c
}

// Case is one request: ordered "key=value" parameters and expectations.
type Case struct {
	Name   string   `yaml:"name"`
	Query  []string `yaml:"query"`
	Expect Expect   `yaml:"expect"`
}

// Pairs parses Query into engine pairs.
func (c Case) Pairs() ([]engine.Pair, error) {
	return engine.ParsePairs(c.Query)
}

// Expect lists expected outcomes. Only fields that are set are checked.
type Expect struct {
	Expression string         `yaml:"expression,omitempty"`
	Params     map[string]any `yaml:"params,omitempty"`
	SQL        string         `yaml:"sql,omitempty"`
	Args       []any          `yaml:"args,omitempty"`
	Rows       *int           `yaml:"rows,omitempty"`
	IDs        []int64        `yaml:"ids,omitempty"`
	Error      string         `yaml:"error,omitempty"`
}

// IsEmpty reports whether the case checks nothing.
func (e Expect) IsEmpty() bool {
	return e.Expression == "" && e.Params == nil && e.SQL == "" &&
		e.Args == nil && e.Rows == nil && e.IDs == nil && e.Error == ""
}

// LoadScenario reads and parses a scenario YAML file. A relative Config
// path is resolved against the file's directory.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(filepath.Dir(path), scenario.Config)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}
	if s.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}

	ids := make(map[int64]bool)
	for i, row := range s.Setup {
		if row.ID <= 0 {
			return fmt.Errorf("setup[%d]: id must be positive", i)
		}
		if row.Slug == "" {
			return fmt.Errorf("setup[%d]: slug is required", i)
		}
		if ids[row.ID] {
			return fmt.Errorf("setup[%d]: duplicate id %d", i, row.ID)
		}
		ids[row.ID] = true
	}

	names := make(map[string]bool)
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		names[c.Name] = true

		if _, err := c.Pairs(); err != nil {
			return fmt.Errorf("cases[%d]: %w", i, err)
		}
		if c.Expect.IsEmpty() {
			return fmt.Errorf("cases[%d]: expect must check at least one field", i)
		}
		if c.Expect.Error != "" && (c.Expect.Rows != nil || c.Expect.IDs != nil) {
			return fmt.Errorf("cases[%d]: expect.error cannot be combined with rows or ids", i)
		}
	}

	return nil
}
