package analysis

import (
	"fmt"

	"github.com/roach88/telegen/internal/ir"
)

// Role markers inside a telegraf annotation.
const (
	markerTag       = "tag"
	markerTimestamp = "timestamp"
)

// Classify decides the role of a field from its telegraf annotations.
//
// Priority is tag, then timestamp, then the default field role, regardless of
// the order annotations appear in. An unrecognized identifier classifies as a
// field. A telegraf annotation whose first token is missing or is not an
// identifier is rejected with ErrMalformedRole.
func Classify(f ir.FieldDefinition) (ir.FieldRole, error) {
	var tag, timestamp bool
	for _, a := range f.Annotations {
		if a.Namespace != ir.NamespaceTelegraf {
			continue
		}
		if len(a.Tokens) == 0 {
			return ir.RoleField, malformedRole(f, a, "telegraf annotation has no role")
		}
		first := a.Tokens[0]
		if first.Kind != ir.TokenIdent {
			return ir.RoleField, malformedRole(f, a, fmt.Sprintf("expected role identifier, found %s %s", first.Kind, first.Text))
		}
		switch first.Text {
		case markerTag:
			tag = true
		case markerTimestamp:
			timestamp = true
		}
	}

	switch {
	case tag:
		return ir.RoleTag, nil
	case timestamp:
		return ir.RoleTimestamp, nil
	default:
		return ir.RoleField, nil
	}
}

func malformedRole(f ir.FieldDefinition, a ir.Annotation, msg string) *DiagnosticError {
	pos := a.Pos
	if !pos.IsValid() {
		pos = f.Pos
	}
	return &DiagnosticError{
		Code:    ErrMalformedRole,
		Field:   f.Name,
		Message: msg,
		Pos:     pos,
	}
}
