package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/telegen/internal/analysis"
	"github.com/roach88/telegen/internal/ir"
)

const cpuSource = `package metrics

//telegraf:metric
//telegraf:measurement("cpu")
type CPU struct {
	Host  string ` + "`telegraf:\"tag\"`" + `
	Usage float64
}
`

func TestRun_Passes(t *testing.T) {
	result, err := Run(&Scenario{
		Name:   "cpu",
		Source: cpuSource,
		Assertions: []Assertion{
			{Type: AssertMeasurement, Record: "CPU", Value: "cpu"},
			{Type: AssertRoles, Record: "CPU", Roles: map[string]string{"Host": "tag", "Usage": "field"}},
			{Type: AssertFieldOrder, Record: "CPU", Fields: []string{"Host", "Usage"}},
			{Type: AssertOptional, Record: "CPU"},
			{Type: AssertOutputContains, Value: `return point.New("cpu", tags, fields, ts)`},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Records, 1)
	plan, ok := result.Records[0].Plan("Host")
	require.True(t, ok)
	assert.Equal(t, ir.RoleTag, plan.Role)
	assert.Contains(t, result.Output, "package metrics")
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{
			name:      "measurement",
			assertion: Assertion{Type: AssertMeasurement, Record: "CPU", Value: "CPU"},
			wantErr:   "Actual: cpu",
		},
		{
			name:      "roles",
			assertion: Assertion{Type: AssertRoles, Record: "CPU", Roles: map[string]string{"Usage": "tag", "Idle": "field"}},
			wantErr:   "Idle missing; Usage is field, want tag",
		},
		{
			name:      "field order",
			assertion: Assertion{Type: AssertFieldOrder, Record: "CPU", Fields: []string{"Usage", "Host"}},
			wantErr:   "Actual: [Host Usage]",
		},
		{
			name:      "optional",
			assertion: Assertion{Type: AssertOptional, Record: "CPU", Fields: []string{"Usage"}},
			wantErr:   "Expected: [Usage]",
		},
		{
			name:      "bounds",
			assertion: Assertion{Type: AssertBounds, Record: "CPU", Constraints: map[string]string{"T": "point.Metric"}},
			wantErr:   "T missing",
		},
		{
			name:      "diagnostic",
			assertion: Assertion{Type: AssertDiagnostic, Record: "CPU", Value: analysis.ErrMalformedShape},
			wantErr:   "Actual: no diagnostic",
		},
		{
			name:      "output",
			assertion: Assertion{Type: AssertOutputContains, Value: "func (c CPU)"},
			wantErr:   "without the fragment",
		},
		{
			name:      "unknown record",
			assertion: Assertion{Type: AssertMeasurement, Record: "Mem", Value: "mem"},
			wantErr:   "Actual: not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(&Scenario{Name: "cpu", Source: cpuSource, Assertions: []Assertion{tt.assertion}})
			require.NoError(t, err)
			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], "Assertion failed: "+tt.assertion.Type)
			assert.Contains(t, result.Errors[0], tt.wantErr)
		})
	}
}

func TestRun_RejectedRecordSuppressesOutput(t *testing.T) {
	source := cpuSource + `
//telegraf:metric
type Event interface{ isEvent() }
`
	result, err := Run(&Scenario{
		Name:   "mixed",
		Source: source,
		Assertions: []Assertion{
			{Type: AssertDiagnostic, Record: "Event", Value: analysis.ErrMalformedShape},
			{Type: AssertMeasurement, Record: "CPU", Value: "cpu"},
			{Type: AssertOutputContains, Value: "CPU"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Empty(t, result.Output)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Actual: no output")
}

func TestRun_AssertionOnRejectedRecord(t *testing.T) {
	result, err := Run(&Scenario{
		Name:       "event",
		Source:     "package metrics\n\n//telegraf:metric\ntype Event interface{ isEvent() }\n",
		Assertions: []Assertion{{Type: AssertMeasurement, Record: "Event", Value: "Event"}},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expected: record to generate")
	assert.Contains(t, result.Errors[0], analysis.ErrMalformedShape)
}

func TestRun_LoaderDiagnostic(t *testing.T) {
	source := "package metrics\n\n//telegraf:metric\n//telegraf:measurement \"open\n" +
		"type CPU struct{ X int }\n"
	result, err := Run(&Scenario{
		Name:       "unterminated",
		Source:     source,
		Assertions: []Assertion{{Type: AssertDiagnostic, Record: "CPU", Value: analysis.ErrMalformedMeasurement}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_UnparsableSource(t *testing.T) {
	_, err := Run(&Scenario{
		Name:       "broken",
		Source:     "package metrics\n\ntype {",
		Assertions: []Assertion{{Type: AssertOutputContains, Value: "x"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario broken")
}

func TestRun_SchemaDefaultsPackage(t *testing.T) {
	result, err := Run(&Scenario{
		Name:   "schema",
		Schema: "records:\n  - name: Mem\n    fields:\n      - {name: Total, type: uint64}\n",
		Assertions: []Assertion{
			{Type: AssertOutputContains, Value: "package scenario"},
			{Type: AssertOutputContains, Value: "type Mem struct {"},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}
