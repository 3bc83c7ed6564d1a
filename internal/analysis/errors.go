package analysis

import (
	"fmt"

	"github.com/roach88/telegen/internal/ir"
)

// Diagnostic codes (E200-E299). All of them abort generation for the record.
const (
	ErrMalformedShape       = "E201" // not a struct with named fields
	ErrMalformedMeasurement = "E202" // measurement argument is not a literal
	ErrMalformedRole        = "E203" // telegraf annotation without an identifier
	ErrInvalidRecord        = "E204" // empty name, duplicate fields
)

// DiagnosticError is a build-time failure pinpointing a record or field.
type DiagnosticError struct {
	Code    string
	Record  string
	Field   string // empty for record-level diagnostics
	Message string
	Pos     ir.Position
}

func (e *DiagnosticError) Error() string {
	subject := e.Record
	if e.Field != "" {
		subject += "." + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: [%s] %s: %s", e.Pos, e.Code, subject, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, subject, e.Message)
}
