package analysis

import (
	"slices"

	"github.com/roach88/telegen/internal/ir"
)

// DefaultOptionalNames are the wrapper type names treated as optional.
var DefaultOptionalNames = []string{"Option"}

// IsOptional reports whether a declared type is an optional wrapper.
//
// The check is syntactic: an unqualified path type with exactly one type
// argument whose name is in names. Aliases are not resolved, so a wrapper
// imported under another name is a plain field unless that name is listed.
// Pointers are never optional.
func IsOptional(t ir.TypeExpr, names []string) bool {
	if t.Kind != ir.TypePath || t.Qualifier != "" || len(t.Args) != 1 {
		return false
	}
	return slices.Contains(names, t.Name)
}
