package analysis

import (
	"fmt"
	"strconv"

	"github.com/roach88/telegen/internal/ir"
)

// ResolveMeasurement returns the measurement name for a record: the literal
// argument of its measurement annotation, or the record identifier.
func ResolveMeasurement(rec ir.RecordDefinition) (string, error) {
	a, ok := ir.Find(rec.Annotations, ir.NamespaceMeasurement)
	if !ok {
		return rec.Name, nil
	}

	pos := a.Pos
	if !pos.IsValid() {
		pos = rec.Pos
	}
	fail := func(msg string) (string, error) {
		return "", &DiagnosticError{
			Code:    ErrMalformedMeasurement,
			Record:  rec.Name,
			Message: msg,
			Pos:     pos,
		}
	}

	if len(a.Tokens) == 0 {
		return fail("measurement annotation has no argument")
	}
	lit := a.Tokens[0]
	switch lit.Kind {
	case ir.TokenString:
		s, err := strconv.Unquote(lit.Text)
		if err != nil {
			return fail(fmt.Sprintf("invalid string literal %s", lit.Text))
		}
		return s, nil
	case ir.TokenChar:
		if len(lit.Text) < 3 {
			return fail(fmt.Sprintf("invalid char literal %s", lit.Text))
		}
		r, _, tail, err := strconv.UnquoteChar(lit.Text[1:len(lit.Text)-1], '\'')
		if err != nil || tail != "" {
			return fail(fmt.Sprintf("invalid char literal %s", lit.Text))
		}
		return string(r), nil
	default:
		return fail(fmt.Sprintf("expected string literal, found %s %s", lit.Kind, lit.Text))
	}
}
