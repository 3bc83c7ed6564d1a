package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Record   string
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Record != "" {
		fmt.Fprintf(&buf, " (%s)", e.Record)
	}
	buf.WriteByte('\n')
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// evaluate checks every assertion and records failures on result.
func evaluate(result *Result, assertions []Assertion) {
	for _, a := range assertions {
		if err := check(result, a); err != nil {
			result.AddError(err.Error())
		}
	}
}

func check(result *Result, a Assertion) error {
	if a.Type == AssertOutputContains {
		return assertOutputContains(result, a)
	}

	outcome, ok := result.Record(a.Record)
	if !ok {
		return &AssertionError{Type: a.Type, Record: a.Record, Expected: "record to be loaded", Actual: "not found"}
	}

	if a.Type == AssertDiagnostic {
		return assertDiagnostic(outcome, a)
	}
	if outcome.Diagnostic != nil {
		return &AssertionError{
			Type:     a.Type,
			Record:   a.Record,
			Expected: "record to generate",
			Actual:   outcome.Diagnostic.Error(),
		}
	}

	switch a.Type {
	case AssertMeasurement:
		return assertMeasurement(outcome, a)
	case AssertRoles:
		return assertRoles(outcome, a)
	case AssertFieldOrder:
		return assertFieldOrder(outcome, a)
	case AssertOptional:
		return assertOptional(outcome, a)
	case AssertBounds:
		return assertBounds(outcome, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertMeasurement(o RecordOutcome, a Assertion) error {
	if o.Measurement == a.Value {
		return nil
	}
	return &AssertionError{Type: a.Type, Record: o.Name, Expected: a.Value, Actual: o.Measurement}
}

// assertRoles checks the listed fields only (subset semantics).
func assertRoles(o RecordOutcome, a Assertion) error {
	var mismatches []string
	for _, field := range sortedKeys(a.Roles) {
		want := a.Roles[field]
		plan, ok := o.Plan(field)
		switch {
		case !ok:
			mismatches = append(mismatches, fmt.Sprintf("%s missing", field))
		case plan.Role.String() != want:
			mismatches = append(mismatches, fmt.Sprintf("%s is %s, want %s", field, plan.Role, want))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Record:   o.Name,
		Expected: fmt.Sprintf("%v", a.Roles),
		Actual:   strings.Join(mismatches, "; "),
	}
}

func assertFieldOrder(o RecordOutcome, a Assertion) error {
	got := make([]string, len(o.Plans))
	for i, p := range o.Plans {
		got[i] = p.Field.Name
	}
	if slices.Equal(got, a.Fields) {
		return nil
	}
	return &AssertionError{Type: a.Type, Record: o.Name, Expected: fmt.Sprint(a.Fields), Actual: fmt.Sprint(got)}
}

// assertOptional checks the exact set of optional fields.
func assertOptional(o RecordOutcome, a Assertion) error {
	var got []string
	for _, p := range o.Plans {
		if p.Optional {
			got = append(got, p.Field.Name)
		}
	}
	want := slices.Clone(a.Fields)
	sort.Strings(got)
	sort.Strings(want)
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{Type: a.Type, Record: o.Name, Expected: fmt.Sprint(want), Actual: fmt.Sprint(got)}
}

func assertBounds(o RecordOutcome, a Assertion) error {
	got := make(map[string]string, len(o.TypeParams))
	for _, p := range o.TypeParams {
		got[p.Name] = p.Constraint
	}
	var mismatches []string
	for _, name := range sortedKeys(a.Constraints) {
		want := a.Constraints[name]
		c, ok := got[name]
		switch {
		case !ok:
			mismatches = append(mismatches, fmt.Sprintf("%s missing", name))
		case c != want:
			mismatches = append(mismatches, fmt.Sprintf("%s is %q, want %q", name, c, want))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Record:   o.Name,
		Expected: fmt.Sprintf("%v", a.Constraints),
		Actual:   strings.Join(mismatches, "; "),
	}
}

func assertDiagnostic(o RecordOutcome, a Assertion) error {
	if o.Diagnostic == nil {
		return &AssertionError{Type: a.Type, Record: o.Name, Expected: a.Value, Actual: "no diagnostic"}
	}
	if o.Diagnostic.Code != a.Value {
		return &AssertionError{Type: a.Type, Record: o.Name, Expected: a.Value, Actual: o.Diagnostic.Error()}
	}
	return nil
}

func assertOutputContains(result *Result, a Assertion) error {
	if strings.Contains(result.Output, a.Value) {
		return nil
	}
	actual := "no output"
	if result.Output != "" {
		actual = fmt.Sprintf("%d bytes without the fragment", len(result.Output))
	}
	return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("output containing %q", a.Value), Actual: actual}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
