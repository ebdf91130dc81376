package parser

import (
	"fmt"

	"github.com/skx/subc/ast"
	"github.com/skx/subc/token"
	"github.com/skx/subc/diag"
	"github.com/skx/subc/types"
)

// --- symbol table ---------------------------------------------------

func (p *parser) newLocal(name string, ty *types.Type) *ast.Obj {
	obj := &ast.Obj{Name: name, Ty: ty, IsLocal: true}
	p.locals.Push(obj)
	return obj
}

func (p *parser) newGlobal(name string, ty *types.Type) *ast.Obj {
	obj := &ast.Obj{Name: name, Ty: ty}
	p.globals = append(p.globals, obj)
	p.prog = append(p.prog, obj)
	return obj
}

// newStringLiteral registers tok's decoded bytes as an anonymous
// global array, named the way the compiler labels it in the emitted
// assembly: ".L.." plus a sequence number.
func (p *parser) newStringLiteral(tok *token.Token) *ast.Obj {
	name := fmt.Sprintf(".L..%d", p.strSeq)
	p.strSeq++
	obj := p.newGlobal(name, tok.StrTy)
	obj.InitData = tok.Str
	return obj
}

// findVar resolves an identifier against the current function's
// locals (innermost-declared wins on a name clash) and then the
// globals, in that order.
func (p *parser) findVar(name string) *ast.Obj {
	if p.locals != nil {
		// All() returns locals most-recently-declared first, so a
		// forward scan finds the innermost shadowing declaration.
		for _, o := range p.locals.All() {
			if o.Name == name {
				return o
			}
		}
	}
	for _, o := range p.globals {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// --- pointer arithmetic ----------------------------------------------

func isPointerlike(t *types.Type) bool {
	return t.Kind == types.PTR || t.Kind == types.ARRAY
}

// scale multiplies n by the size of elemTy, producing the byte offset
// a pointer addition/subtraction needs. A size-1 element (char, or an
// array of them) needs no scaling.
func scale(n *ast.Node, elemTy *types.Type, tok *token.Token) *ast.Node {
	if elemTy.Size == 1 {
		return n
	}
	sz := &ast.Node{Kind: ast.Num, Tok: tok, Ty: types.TyInt, Val: int64(elemTy.Size)}
	return &ast.Node{Kind: ast.Mul, Tok: tok, Lhs: n, Rhs: sz, Ty: types.TyInt}
}

// newAdd implements pointer-aware "+": int+int adds normally, ptr+int
// and int+ptr scale the integer operand by the pointee size, and any
// other combination is a diagnostic.
func (p *parser) newAdd(lhs, rhs *ast.Node, tok *token.Token) (*ast.Node, error) {
	if err := ast.AddType(lhs); err != nil {
		return nil, err
	}
	if err := ast.AddType(rhs); err != nil {
		return nil, err
	}

	switch {
	case types.IsInteger(lhs.Ty) && types.IsInteger(rhs.Ty):
		return &ast.Node{Kind: ast.Add, Tok: tok, Lhs: lhs, Rhs: rhs}, nil

	case isPointerlike(lhs.Ty) && types.IsInteger(rhs.Ty):
		return &ast.Node{
			Kind: ast.Add, Tok: tok, Lhs: lhs, Rhs: scale(rhs, lhs.Ty.Base, tok),
			Ty: types.PointerTo(lhs.Ty.Base),
		}, nil

	case types.IsInteger(lhs.Ty) && isPointerlike(rhs.Ty):
		return &ast.Node{
			Kind: ast.Add, Tok: tok, Lhs: rhs, Rhs: scale(lhs, rhs.Ty.Base, tok),
			Ty: types.PointerTo(rhs.Ty.Base),
		}, nil

	default:
		return nil, diag.Tok(tok, "invalid operands to binary +")
	}
}

// newSub implements pointer-aware "-": int-int subtracts normally,
// ptr-int scales the integer operand, ptr-ptr divides the byte
// difference by the left operand's base size to yield an element
// count (the two base types are not compared), and any other
// combination is a diagnostic.
func (p *parser) newSub(lhs, rhs *ast.Node, tok *token.Token) (*ast.Node, error) {
	if err := ast.AddType(lhs); err != nil {
		return nil, err
	}
	if err := ast.AddType(rhs); err != nil {
		return nil, err
	}

	switch {
	case types.IsInteger(lhs.Ty) && types.IsInteger(rhs.Ty):
		return &ast.Node{Kind: ast.Sub, Tok: tok, Lhs: lhs, Rhs: rhs}, nil

	case isPointerlike(lhs.Ty) && types.IsInteger(rhs.Ty):
		return &ast.Node{
			Kind: ast.Sub, Tok: tok, Lhs: lhs, Rhs: scale(rhs, lhs.Ty.Base, tok),
			Ty: types.PointerTo(lhs.Ty.Base),
		}, nil

	case isPointerlike(lhs.Ty) && isPointerlike(rhs.Ty):
		sub := &ast.Node{Kind: ast.Sub, Tok: tok, Lhs: lhs, Rhs: rhs, Ty: types.TyInt}
		sz := &ast.Node{Kind: ast.Num, Tok: tok, Ty: types.TyInt, Val: int64(lhs.Ty.Base.Size)}
		return &ast.Node{Kind: ast.Div, Tok: tok, Lhs: sub, Rhs: sz, Ty: types.TyInt}, nil

	default:
		return nil, diag.Tok(tok, "invalid operands to binary -")
	}
}

// newMulDiv rejects pointer operands outright: "*" and "/" have no
// scaling rule the way "+" and "-" do.
func (p *parser) newMulDiv(kind ast.Kind, lhs, rhs *ast.Node, tok *token.Token) (*ast.Node, error) {
	if err := ast.AddType(lhs); err != nil {
		return nil, err
	}
	if err := ast.AddType(rhs); err != nil {
		return nil, err
	}
	if !types.IsInteger(lhs.Ty) || !types.IsInteger(rhs.Ty) {
		return nil, diag.Tok(tok, "invalid operands to binary * or /")
	}
	return &ast.Node{Kind: kind, Tok: tok, Lhs: lhs, Rhs: rhs}, nil
}
