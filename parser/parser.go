// Package parser implements the recursive-descent parser and semantic
// analysis pass: it turns a token stream into a typed AST plus the
// global/function/local symbol tables the code generator needs.
package parser

import (
	"github.com/skx/subc/ast"
	"github.com/skx/subc/diag"
	"github.com/skx/subc/source"
	"github.com/skx/subc/stack"
	"github.com/skx/subc/token"
	"github.com/skx/subc/types"
)

// maxArgs is the ABI limit on function parameters and call arguments.
const maxArgs = 6

// parser holds the cursor over the token stream plus the symbol tables
// being built up as it goes.
type parser struct {
	toks []*token.Token
	pos  int
	src  *source.Source

	// prog is every top-level Obj (globals, string literals,
	// functions) in declaration order.
	prog []*ast.Obj

	// globals is prog filtered to the non-function entries, kept
	// separately so identifier lookup doesn't have to skip functions.
	globals []*ast.Obj

	// locals is the current function's locals, LIFO by declaration -
	// reset at the start of each function-def.
	locals *stack.Stack[*ast.Obj]

	// strSeq numbers synthetic string-literal labels.
	strSeq int
}

// Parse consumes an entire token stream and returns the program's
// top-level objects in declaration order.
func Parse(toks []*token.Token, src *source.Source) ([]*ast.Obj, error) {
	p := &parser{toks: toks, src: src}

	for !p.atEOF() {
		baseTy, err := p.typeSpec()
		if err != nil {
			return nil, err
		}

		name, ty, err := p.declarator(baseTy)
		if err != nil {
			return nil, err
		}

		if p.equal("(") {
			fn, err := p.function(name, ty)
			if err != nil {
				return nil, err
			}
			p.prog = append(p.prog, fn)
			continue
		}

		if err := p.globalDecl(baseTy, name, ty); err != nil {
			return nil, err
		}
	}

	return p.prog, nil
}

// --- cursor helpers -------------------------------------------------

func (p *parser) cur() *token.Token {
	return p.toks[p.pos]
}

func (p *parser) atEOF() bool {
	return p.cur().Kind == token.EOF
}

func (p *parser) equal(op string) bool {
	return token.Equal(p.cur(), op)
}

func (p *parser) advance() *token.Token {
	t := p.cur()
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *parser) consume(op string) bool {
	if p.equal(op) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) skip(op string) error {
	if !p.consume(op) {
		return diag.Tok(p.cur(), "expected %q", op)
	}
	return nil
}

func (p *parser) expectIdent() (*token.Token, error) {
	if p.cur().Kind != token.IDENT {
		return nil, diag.Tok(p.cur(), "expected an identifier")
	}
	return p.advance(), nil
}

func (p *parser) expectNum() (int64, error) {
	if p.cur().Kind != token.NUM {
		return 0, diag.Tok(p.cur(), "expected a number")
	}
	return p.advance().Val, nil
}

// --- types and declarators -------------------------------------------

func (p *parser) typeSpec() (*types.Type, error) {
	if p.consume("int") {
		return types.TyInt, nil
	}
	if p.consume("char") {
		return types.TyChar, nil
	}
	return nil, diag.Tok(p.cur(), "expected a type")
}

func (p *parser) isTypeSpec() bool {
	return p.equal("int") || p.equal("char")
}

// declarator = "*"* IDENT type-suffix
func (p *parser) declarator(base *types.Type) (string, *types.Type, error) {
	ty := base
	for p.consume("*") {
		ty = types.PointerTo(ty)
	}

	nameTok, err := p.expectIdent()
	if err != nil {
		return "", nil, err
	}

	ty, err = p.typeSuffix(ty)
	if err != nil {
		return "", nil, err
	}
	return nameTok.Lexeme(), ty, nil
}

// type-suffix = "[" NUM "]" type-suffix | ε
func (p *parser) typeSuffix(base *types.Type) (*types.Type, error) {
	if !p.consume("[") {
		return base, nil
	}
	n, err := p.expectNum()
	if err != nil {
		return nil, err
	}
	if err := p.skip("]"); err != nil {
		return nil, err
	}
	inner, err := p.typeSuffix(base)
	if err != nil {
		return nil, err
	}
	return types.ArrayOf(inner, int(n)), nil
}

// --- top-level declarations -------------------------------------------

func (p *parser) globalDecl(baseTy *types.Type, name string, ty *types.Type) error {
	p.newGlobal(name, ty)

	for p.consume(",") {
		nm, nty, err := p.declarator(baseTy)
		if err != nil {
			return err
		}
		p.newGlobal(nm, nty)
	}

	return p.skip(";")
}

func (p *parser) function(name string, retTy *types.Type) (*ast.Obj, error) {
	if err := p.skip("("); err != nil {
		return nil, err
	}

	p.locals = stack.New[*ast.Obj]()

	var params []*ast.Obj
	for !p.equal(")") {
		if len(params) > 0 {
			if err := p.skip(","); err != nil {
				return nil, err
			}
		}
		if len(params) >= maxArgs {
			return nil, diag.Tok(p.cur(), "too many parameters (max %d)", maxArgs)
		}

		pbase, err := p.typeSpec()
		if err != nil {
			return nil, err
		}
		pname, pty, err := p.declarator(pbase)
		if err != nil {
			return nil, err
		}
		params = append(params, p.newLocal(pname, pty))
	}
	if err := p.skip(")"); err != nil {
		return nil, err
	}
	if err := p.skip("{"); err != nil {
		return nil, err
	}

	body, err := p.compoundStmt()
	if err != nil {
		return nil, err
	}

	for _, s := range body {
		if err := ast.AddType(s); err != nil {
			return nil, err
		}
	}

	fnTy := types.Func(retTy)
	for _, param := range params {
		fnTy.Params = append(fnTy.Params, param.Ty)
	}

	return &ast.Obj{
		Name:       name,
		Ty:         fnTy,
		IsFunction: true,
		Params:     params,
		Locals:     p.locals.All(),
		Body:       body,
	}, nil
}

// --- statements ---------------------------------------------------------

// compound-stmt = (declaration | stmt)* "}"   (the leading "{" is
// consumed by the caller).
func (p *parser) compoundStmt() ([]*ast.Node, error) {
	var stmts []*ast.Node

	for !p.equal("}") {
		if p.atEOF() {
			return nil, diag.Tok(p.cur(), "expected %q", "}")
		}

		if p.isTypeSpec() {
			decls, err := p.declaration()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, decls...)
			continue
		}

		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}

	if err := p.skip("}"); err != nil {
		return nil, err
	}
	return stmts, nil
}

// declaration = type-spec (declarator ("=" expr)? ("," …)*)? ";"
func (p *parser) declaration() ([]*ast.Node, error) {
	baseTy, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	var stmts []*ast.Node
	first := true
	for !p.equal(";") {
		if !first {
			if err := p.skip(","); err != nil {
				return nil, err
			}
		}
		first = false

		name, ty, err := p.declarator(baseTy)
		if err != nil {
			return nil, err
		}
		obj := p.newLocal(name, ty)

		if tok := p.cur(); p.consume("=") {
			rhs, err := p.assign()
			if err != nil {
				return nil, err
			}
			lhs := &ast.Node{Kind: ast.Var, Tok: tok, Var: obj}
			assign := &ast.Node{Kind: ast.Assign, Tok: tok, Lhs: lhs, Rhs: rhs}
			stmts = append(stmts, &ast.Node{Kind: ast.ExprStmt, Tok: tok, Lhs: assign})
		}
	}

	if err := p.skip(";"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *parser) stmt() (*ast.Node, error) {
	tok := p.cur()

	switch {
	case p.consume("return"):
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.skip(";"); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Return, Tok: tok, Lhs: e}, nil

	case p.consume("if"):
		if err := p.skip("("); err != nil {
			return nil, err
		}
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.skip(")"); err != nil {
			return nil, err
		}
		then, err := p.stmt()
		if err != nil {
			return nil, err
		}
		node := &ast.Node{Kind: ast.If, Tok: tok, Cond: cond, Then: then}
		if p.consume("else") {
			els, err := p.stmt()
			if err != nil {
				return nil, err
			}
			node.Els = els
		}
		return node, nil

	case p.consume("for"):
		if err := p.skip("("); err != nil {
			return nil, err
		}
		node := &ast.Node{Kind: ast.For, Tok: tok}

		init, err := p.exprStmt()
		if err != nil {
			return nil, err
		}
		node.Init = init

		if !p.equal(";") {
			c, err := p.expr()
			if err != nil {
				return nil, err
			}
			node.Cond = c
		}
		if err := p.skip(";"); err != nil {
			return nil, err
		}

		if !p.equal(")") {
			inc, err := p.expr()
			if err != nil {
				return nil, err
			}
			node.Inc = inc
		}
		if err := p.skip(")"); err != nil {
			return nil, err
		}

		then, err := p.stmt()
		if err != nil {
			return nil, err
		}
		node.Then = then
		return node, nil

	case p.consume("while"):
		if err := p.skip("("); err != nil {
			return nil, err
		}
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.skip(")"); err != nil {
			return nil, err
		}
		then, err := p.stmt()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.For, Tok: tok, Cond: cond, Then: then}, nil

	case p.consume("{"):
		body, err := p.compoundStmt()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Block, Tok: tok, Body: body}, nil

	default:
		return p.exprStmt()
	}
}

// expr-stmt = expr? ";"
func (p *parser) exprStmt() (*ast.Node, error) {
	tok := p.cur()
	if p.consume(";") {
		return &ast.Node{Kind: ast.ExprStmt, Tok: tok}, nil
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.skip(";"); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.ExprStmt, Tok: tok, Lhs: e}, nil
}

// --- expressions ---------------------------------------------------------

func (p *parser) expr() (*ast.Node, error) {
	return p.assign()
}

// assign = equality ("=" assign)?   (right-associative)
func (p *parser) assign() (*ast.Node, error) {
	lhs, err := p.equality()
	if err != nil {
		return nil, err
	}
	if p.equal("=") {
		tok := p.advance()
		rhs, err := p.assign()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Assign, Tok: tok, Lhs: lhs, Rhs: rhs}, nil
	}
	return lhs, nil
}

func (p *parser) equality() (*ast.Node, error) {
	node, err := p.relational()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		switch {
		case p.consume("=="):
			rhs, err := p.relational()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Eq, Tok: tok, Lhs: node, Rhs: rhs}
		case p.consume("!="):
			rhs, err := p.relational()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Ne, Tok: tok, Lhs: node, Rhs: rhs}
		default:
			return node, nil
		}
	}
}

// relational normalizes ">" and ">=" to "<" and "<=" with swapped
// operands, as the grammar requires.
func (p *parser) relational() (*ast.Node, error) {
	node, err := p.add()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		switch {
		case p.consume("<"):
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Lt, Tok: tok, Lhs: node, Rhs: rhs}
		case p.consume("<="):
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Le, Tok: tok, Lhs: node, Rhs: rhs}
		case p.consume(">"):
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Lt, Tok: tok, Lhs: rhs, Rhs: node}
		case p.consume(">="):
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Le, Tok: tok, Lhs: rhs, Rhs: node}
		default:
			return node, nil
		}
	}
}

func (p *parser) add() (*ast.Node, error) {
	node, err := p.mul()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		switch {
		case p.consume("+"):
			rhs, err := p.mul()
			if err != nil {
				return nil, err
			}
			node, err = p.newAdd(node, rhs, tok)
			if err != nil {
				return nil, err
			}
		case p.consume("-"):
			rhs, err := p.mul()
			if err != nil {
				return nil, err
			}
			node, err = p.newSub(node, rhs, tok)
			if err != nil {
				return nil, err
			}
		default:
			return node, nil
		}
	}
}

func (p *parser) mul() (*ast.Node, error) {
	node, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		switch {
		case p.consume("*"):
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			node, err = p.newMulDiv(ast.Mul, node, rhs, tok)
			if err != nil {
				return nil, err
			}
		case p.consume("/"):
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			node, err = p.newMulDiv(ast.Div, node, rhs, tok)
			if err != nil {
				return nil, err
			}
		default:
			return node, nil
		}
	}
}

// unary = ("+"|"-"|"*"|"&") unary | postfix
func (p *parser) unary() (*ast.Node, error) {
	tok := p.cur()
	switch {
	case p.consume("+"):
		return p.unary()

	case p.consume("-"):
		lhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Neg, Tok: tok, Lhs: lhs}, nil

	case p.consume("*"):
		lhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Deref, Tok: tok, Lhs: lhs}, nil

	case p.consume("&"):
		lhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Addr, Tok: tok, Lhs: lhs}, nil

	default:
		return p.postfix()
	}
}

// postfix = primary ("[" expr "]")*     (a[i] ≡ *(a+i))
func (p *parser) postfix() (*ast.Node, error) {
	node, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.equal("[") {
		tok := p.advance()
		idx, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.skip("]"); err != nil {
			return nil, err
		}
		addr, err := p.newAdd(node, idx, tok)
		if err != nil {
			return nil, err
		}
		node = &ast.Node{Kind: ast.Deref, Tok: tok, Lhs: addr}
	}
	return node, nil
}

func (p *parser) primary() (*ast.Node, error) {
	tok := p.cur()

	if p.consume("(") {
		if p.equal("{") {
			p.advance()
			body, err := p.compoundStmt()
			if err != nil {
				return nil, err
			}
			if err := p.skip(")"); err != nil {
				return nil, err
			}
			return &ast.Node{Kind: ast.StmtExpr, Tok: tok, Body: body}, nil
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.skip(")"); err != nil {
			return nil, err
		}
		return e, nil
	}

	if p.consume("sizeof") {
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		if err := ast.AddType(operand); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Num, Tok: tok, Ty: types.TyInt, Val: int64(operand.Ty.Size)}, nil
	}

	switch tok.Kind {
	case token.NUM:
		p.advance()
		return &ast.Node{Kind: ast.Num, Tok: tok, Val: tok.Val}, nil

	case token.STR:
		p.advance()
		obj := p.newStringLiteral(tok)
		return &ast.Node{Kind: ast.Var, Tok: tok, Var: obj}, nil

	case token.IDENT:
		p.advance()
		if p.consume("(") {
			args, err := p.args()
			if err != nil {
				return nil, err
			}
			return &ast.Node{Kind: ast.Funcall, Tok: tok, FuncName: tok.Lexeme(), Args: args}, nil
		}

		obj := p.findVar(tok.Lexeme())
		if obj == nil {
			return nil, diag.Tok(tok, "undefined variable: %s", tok.Lexeme())
		}
		return &ast.Node{Kind: ast.Var, Tok: tok, Var: obj}, nil
	}

	return nil, diag.Tok(tok, "expected an expression")
}

// args = assign ("," assign)*        (max 6, "(" already consumed)
func (p *parser) args() ([]*ast.Node, error) {
	var args []*ast.Node
	for !p.equal(")") {
		if len(args) > 0 {
			if err := p.skip(","); err != nil {
				return nil, err
			}
		}
		if len(args) >= maxArgs {
			return nil, diag.Tok(p.cur(), "too many arguments (max %d)", maxArgs)
		}
		a, err := p.assign()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	if err := p.skip(")"); err != nil {
		return nil, err
	}
	return args, nil
}
