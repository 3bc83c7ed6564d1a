package ir

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/types"
)

// TypeFromExpr converts a Go type expression into a TypeExpr. Shapes the
// analysis does not look into are kept as TypeOther with their source text.
func TypeFromExpr(expr ast.Expr) TypeExpr {
	switch e := expr.(type) {
	case *ast.Ident:
		return Named(e.Name)
	case *ast.SelectorExpr:
		if pkg, ok := e.X.(*ast.Ident); ok {
			return Qualified(pkg.Name, e.Sel.Name)
		}
	case *ast.IndexExpr:
		base := TypeFromExpr(e.X)
		if base.Kind == TypePath {
			base.Args = []TypeExpr{TypeFromExpr(e.Index)}
			return base
		}
	case *ast.IndexListExpr:
		base := TypeFromExpr(e.X)
		if base.Kind == TypePath {
			base.Args = make([]TypeExpr, len(e.Indices))
			for i, idx := range e.Indices {
				base.Args[i] = TypeFromExpr(idx)
			}
			return base
		}
	case *ast.StarExpr:
		return PointerTo(TypeFromExpr(e.X))
	case *ast.ParenExpr:
		return TypeFromExpr(e.X)
	case *ast.ArrayType:
		if e.Len == nil {
			elem := TypeFromExpr(e.Elt)
			return TypeExpr{Kind: TypeSlice, Elem: &elem}
		}
	case *ast.MapType:
		return TypeExpr{Kind: TypeMap, Args: []TypeExpr{TypeFromExpr(e.Key), TypeFromExpr(e.Value)}}
	}
	return TypeExpr{Kind: TypeOther, Raw: types.ExprString(expr)}
}

// ParseType parses a Go type written as text, e.g. "Option[time.Time]".
func ParseType(s string) (TypeExpr, error) {
	expr, err := parser.ParseExpr(s)
	if err != nil {
		return TypeExpr{}, fmt.Errorf("parse type %q: %w", s, err)
	}
	return TypeFromExpr(expr), nil
}
