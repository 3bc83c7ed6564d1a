package harness

import (
	"github.com/roach88/telegen/internal/analysis"
	"github.com/roach88/telegen/internal/ir"
)

// RecordOutcome is what generation decided for one record.
type RecordOutcome struct {
	Name        string                    `json:"name"`
	Measurement string                    `json:"measurement,omitempty"`
	Plans       []ir.FieldPlan            `json:"plans,omitempty"`
	TypeParams  []ir.GenericParameter     `json:"type_params,omitempty"`
	Diagnostic  *analysis.DiagnosticError `json:"diagnostic,omitempty"`
}

// Plan returns the plan of the named field.
func (o RecordOutcome) Plan(field string) (ir.FieldPlan, bool) {
	for _, p := range o.Plans {
		if p.Field.Name == field {
			return p, true
		}
	}
	return ir.FieldPlan{}, false
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates overall success: every assertion held.
	Pass bool `json:"pass"`

	// Records holds one outcome per loaded record, in declaration order.
	Records []RecordOutcome `json:"records"`

	// Output is the rendered file. Empty when any record was rejected,
	// since generation is all-or-nothing.
	Output string `json:"output,omitempty"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Records: []RecordOutcome{},
		Errors:  []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Record returns the outcome of the named record.
func (r *Result) Record(name string) (RecordOutcome, bool) {
	for _, o := range r.Records {
		if o.Name == name {
			return o, true
		}
	}
	return RecordOutcome{}, false
}
