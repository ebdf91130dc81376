// Package ast defines the typed abstract syntax tree the parser builds
// and the code generator walks, along with the Obj records (globals,
// locals, string literals, functions) threaded through both passes.
//
// Node and Obj are closed, finite shapes - a tagged union re-expressed
// as a single struct with role-specific fields, in the spirit of the
// instructions.Instruction tagging this package supersedes.
package ast

import (
	"github.com/skx/subc/token"
	"github.com/skx/subc/types"
)

// Kind identifies what a Node represents.
type Kind int

const (
	// Add is the sum of Lhs and Rhs.
	Add Kind = iota
	// Sub is the difference of Lhs and Rhs.
	Sub
	// Mul is the product of Lhs and Rhs.
	Mul
	// Div is the quotient of Lhs and Rhs.
	Div
	// Neg negates Lhs.
	Neg

	// Eq is Lhs == Rhs.
	Eq
	// Ne is Lhs != Rhs.
	Ne
	// Lt is Lhs < Rhs.
	Lt
	// Le is Lhs <= Rhs.
	Le

	// Addr takes the address of Lhs.
	Addr
	// Deref dereferences Lhs.
	Deref
	// Assign stores the value of Rhs into the lvalue Lhs.
	Assign
	// Var references Obj.
	Var

	// If is a conditional; Els may be nil.
	If
	// For covers both "for" and "while"; Init/Inc may be nil.
	For
	// Block is an ordered list of statements.
	Block
	// Return evaluates Lhs and jumps to the function epilogue.
	Return

	// Funcall invokes FuncName with Args.
	Funcall

	// Num is an integer literal, held in Val.
	Num

	// ExprStmt is an expression evaluated for its side effect; Lhs
	// may be nil (the empty statement ";").
	ExprStmt
	// StmtExpr is a GNU statement-expression "({ ... })"; its value
	// is that of the last expression-statement in Body, if any.
	StmtExpr
)

// Node is a tagged AST record. Which fields are meaningful depends on
// Kind; see the Kind constants above for the mapping.
type Node struct {
	Kind Kind

	// Tok is a representative token, used for diagnostics.
	Tok *token.Token

	// Ty is filled by AddType before code generation. Every
	// node except a bare Num/Var literal depends on its children's
	// types having been resolved first.
	Ty *types.Type

	// Binary and unary operators.
	Lhs *Node
	Rhs *Node

	// If / For.
	Cond *Node
	Then *Node
	Els  *Node
	Init *Node
	Inc  *Node

	// Block / StmtExpr.
	Body []*Node

	// Funcall.
	FuncName string
	Args     []*Node

	// Var.
	Var *Obj

	// Num.
	Val int64
}

// Obj represents a named program entity: a global, a local variable, a
// function parameter, a string-literal constant, or a function.
type Obj struct {
	Name string
	Ty   *types.Type

	IsLocal    bool
	IsFunction bool

	// Offset is a local's signed displacement from the frame
	// pointer, assigned during code generation.
	Offset int

	// InitData holds the decoded bytes of a string-literal global.
	// A global with InitData == nil is zero-initialized.
	InitData []byte

	// Function-only fields.
	Params    []*Obj
	Locals    []*Obj
	Body      []*Node
	StackSize int
}
