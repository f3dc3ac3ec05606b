package harness

import "github.com/roach88/qparam/internal/ir"

// CaseOutcome is what one case actually produced.
type CaseOutcome struct {
	Name       string      `json:"name"`
	Expression string      `json:"expression,omitempty"`
	Params     ir.IRObject `json:"params,omitempty"`
	SQL        string      `json:"sql,omitempty"`
	Args       []any       `json:"args,omitempty"`
	RowCount   int         `json:"rows"`
	RowIDs     []int64     `json:"row_ids,omitempty"`
	Error      string      `json:"error,omitempty"`

	// ErrorMessage is the full error text. It is not part of snapshots.
	ErrorMessage string `json:"-"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every case met its expectations.
	Pass bool `json:"pass"`

	// Cases holds one outcome per case, in scenario order.
	Cases []CaseOutcome `json:"cases"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseOutcome{},
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCase records a case outcome.
func (r *Result) AddCase(c CaseOutcome) {
	r.Cases = append(r.Cases, c)
}
