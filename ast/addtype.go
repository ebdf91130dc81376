package ast

import (
	"github.com/skx/subc/diag"
	"github.com/skx/subc/types"
)

// AddType is the semantic pass that fills in every node's Ty field.
//
// It recurses into a node's children first, then computes the node's
// own type from theirs. Nodes built during parsing that already carry
// a type - the pointer-arithmetic rewrites performed by the parser's
// newAdd/newSub, and sizeof's folded literal - are left untouched, so
// calling AddType again over an already-typed subtree is a no-op.
func AddType(n *Node) error {
	if n == nil || n.Ty != nil {
		return nil
	}

	for _, c := range []*Node{n.Lhs, n.Rhs, n.Cond, n.Then, n.Els, n.Init, n.Inc} {
		if err := AddType(c); err != nil {
			return err
		}
	}
	for _, s := range n.Body {
		if err := AddType(s); err != nil {
			return err
		}
	}
	for _, a := range n.Args {
		if err := AddType(a); err != nil {
			return err
		}
	}

	switch n.Kind {
	case Num:
		n.Ty = types.TyInt

	case Add, Sub, Mul, Div, Neg:
		n.Ty = n.Lhs.Ty

	case Eq, Ne, Lt, Le:
		n.Ty = types.TyInt

	case Assign:
		if n.Lhs.Ty.Kind == types.ARRAY {
			return diag.Tok(n.Tok, "not an lvalue")
		}
		n.Ty = n.Lhs.Ty

	case Var:
		n.Ty = n.Var.Ty

	case Addr:
		if n.Lhs.Ty.Kind == types.ARRAY {
			n.Ty = types.PointerTo(n.Lhs.Ty.Base)
		} else {
			n.Ty = types.PointerTo(n.Lhs.Ty)
		}

	case Deref:
		if n.Lhs.Ty.Base == nil {
			return diag.Tok(n.Tok, "invalid pointer dereference")
		}
		n.Ty = n.Lhs.Ty.Base

	case Funcall:
		n.Ty = types.TyInt

	case StmtExpr:
		if len(n.Body) > 0 {
			last := n.Body[len(n.Body)-1]
			if last.Kind == ExprStmt && last.Lhs != nil {
				n.Ty = last.Lhs.Ty
			}
		}
		if n.Ty == nil {
			n.Ty = types.TyInt
		}

	// If, For, Block, Return, ExprStmt carry no result type of their
	// own; their operands have already been typed above.
	case If, For, Block, Return, ExprStmt:
	}

	return nil
}
