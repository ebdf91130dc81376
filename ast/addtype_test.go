package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skx/subc/source"
	"github.com/skx/subc/token"
	"github.com/skx/subc/types"
)

func TestAddTypeNilIsNoop(t *testing.T) {
	require.NoError(t, AddType(nil))
}

func TestAddTypeIsIdempotent(t *testing.T) {
	n := &Node{Kind: Num, Val: 3, Ty: types.TyChar}
	require.NoError(t, AddType(n))
	assert.Same(t, types.TyChar, n.Ty, "a pre-typed node must be left untouched")
}

func TestAddTypePropagatesThroughArithmetic(t *testing.T) {
	lhs := &Node{Kind: Num, Val: 1}
	rhs := &Node{Kind: Num, Val: 2}
	add := &Node{Kind: Add, Lhs: lhs, Rhs: rhs}

	require.NoError(t, AddType(add))
	assert.Same(t, types.TyInt, lhs.Ty)
	assert.Same(t, types.TyInt, add.Ty)
}

func TestAddTypeDeref(t *testing.T) {
	p := &Obj{Name: "p", Ty: types.PointerTo(types.TyInt)}
	v := &Node{Kind: Var, Var: p}
	deref := &Node{Kind: Deref, Lhs: v}

	require.NoError(t, AddType(deref))
	assert.Same(t, types.TyInt, deref.Ty)
}

func TestAddTypeDerefOfNonPointerIsDiagnosed(t *testing.T) {
	v := &Node{Kind: Var, Var: &Obj{Name: "x", Ty: types.TyInt}, Tok: dummyTok()}
	deref := &Node{Kind: Deref, Lhs: v, Tok: dummyTok()}

	err := AddType(deref)
	require.Error(t, err)
}

func TestAddTypeAssignToArrayIsDiagnosed(t *testing.T) {
	arr := &Obj{Name: "a", Ty: types.ArrayOf(types.TyInt, 3)}
	lhs := &Node{Kind: Var, Var: arr, Tok: dummyTok()}
	rhs := &Node{Kind: Num, Val: 1}
	assign := &Node{Kind: Assign, Lhs: lhs, Rhs: rhs, Tok: dummyTok()}

	err := AddType(assign)
	require.Error(t, err)
}

func TestAddTypeAddrOfArrayDecaysToPointer(t *testing.T) {
	arr := &Obj{Name: "a", Ty: types.ArrayOf(types.TyInt, 3)}
	v := &Node{Kind: Var, Var: arr}
	addr := &Node{Kind: Addr, Lhs: v}

	require.NoError(t, AddType(addr))
	assert.Equal(t, types.PTR, addr.Ty.Kind)
	assert.Same(t, types.TyInt, addr.Ty.Base)
}

func TestAddTypeStmtExprTakesLastExpressionType(t *testing.T) {
	last := &Node{Kind: ExprStmt, Lhs: &Node{Kind: Num, Val: 9}}
	se := &Node{Kind: StmtExpr, Body: []*Node{last}}

	require.NoError(t, AddType(se))
	assert.Same(t, types.TyInt, se.Ty)
}

func TestAddTypeEmptyStmtExprDefaultsToInt(t *testing.T) {
	se := &Node{Kind: StmtExpr}
	require.NoError(t, AddType(se))
	assert.Same(t, types.TyInt, se.Ty)
}

func dummyTok() *token.Token {
	return &token.Token{Src: source.New("t.c", "x"), Offset: 0}
}
