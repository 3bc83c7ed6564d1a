package analysis

import (
	"strings"

	"github.com/roach88/telegen/internal/ir"
)

// PropagateBounds adds capability to the constraint of every type parameter,
// so generated code can convert a nested T with the same method.
//
//	any, interface{}, ""  -> capability
//	capability            -> unchanged
//	C                     -> interface{ C; capability }
func PropagateBounds(params []ir.GenericParameter, capability string) []ir.GenericParameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]ir.GenericParameter, len(params))
	for i, p := range params {
		out[i] = ir.GenericParameter{Name: p.Name, Constraint: addBound(p.Constraint, capability)}
	}
	return out
}

func addBound(constraint, capability string) string {
	c := strings.TrimSpace(constraint)
	switch c {
	case "", "any", "interface{}":
		return capability
	case capability:
		return c
	}
	if strings.HasPrefix(c, "interface{") && strings.HasSuffix(c, "}") {
		inner := strings.TrimSpace(c[len("interface{") : len(c)-1])
		for _, elem := range strings.Split(inner, ";") {
			if strings.TrimSpace(elem) == capability {
				return c
			}
		}
		return "interface{ " + inner + "; " + capability + " }"
	}
	return "interface{ " + c + "; " + capability + " }"
}
