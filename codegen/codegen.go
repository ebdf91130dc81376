// Package codegen walks the typed AST and emits Intel-syntax x86-64
// assembly for it, using a stack-discipline evaluation scheme: every
// subexpression leaves its value in rax, and operands that need to
// survive a recursive call are pushed and popped around it.
package codegen

import (
	"fmt"
	"strings"

	"github.com/skx/subc/ast"
	"github.com/skx/subc/diag"
	"github.com/skx/subc/stack"
	"github.com/skx/subc/types"
)

var argRegs64 = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
var argRegs8 = []string{"dil", "sil", "dl", "cl", "r8b", "r9b"}

// generator holds the state threaded through one Generate call: the
// assembly text built so far, the push/pop balance tracker, the
// monotonic branch-label counter, and the name of the function
// currently being emitted (so "return" knows which epilogue to jump
// to).
type generator struct {
	buf   strings.Builder
	depth *stack.Stack[string]

	labelSeq int
	curFn    string
	debug    bool
}

// Generate lowers an entire program - the globals and functions
// returned by the parser - to a single assembly-language text.
func Generate(prog []*ast.Obj, debug bool) (string, error) {
	g := &generator{depth: stack.New[string](), debug: debug}

	g.buf.WriteString(".intel_syntax noprefix\n\n")
	g.buf.WriteString(genData(prog))
	g.buf.WriteString("\n.text\n")

	for _, o := range prog {
		if !o.IsFunction {
			continue
		}
		if err := g.genFunction(o); err != nil {
			return "", err
		}
	}

	return g.buf.String(), nil
}

// genData emits the .data section: every non-function Obj is either a
// string literal (InitData populated, emitted byte by byte) or a
// zero-initialized global of its declared size.
func genData(prog []*ast.Obj) string {
	var b strings.Builder
	b.WriteString(".data\n")
	for _, o := range prog {
		if o.IsFunction {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", o.Name)
		if o.InitData == nil {
			fmt.Fprintf(&b, "  .zero %d\n", o.Ty.Size)
			continue
		}
		for _, c := range o.InitData {
			fmt.Fprintf(&b, "  .byte %d\n", c)
		}
	}
	return b.String()
}

func (g *generator) emit(format string, args ...interface{}) {
	fmt.Fprintf(&g.buf, format+"\n", args...)
}

func (g *generator) nextLabel() int {
	g.labelSeq++
	return g.labelSeq
}

// assignLvarOffsets lays out a function's locals below the frame
// pointer in the order of fn.Locals (most recently declared first,
// so the first-declared local sits lowest) and rounds the total up to a 16-byte
// boundary, matching the System V AMD64 stack-alignment requirement.
func assignLvarOffsets(fn *ast.Obj) {
	offset := 0
	for _, v := range fn.Locals {
		offset += v.Ty.Size
		v.Offset = -offset
	}
	fn.StackSize = alignTo(offset, 16)
}

func alignTo(n, align int) int {
	return (n + align - 1) / align * align
}

func frameAddr(offset int) string {
	if offset < 0 {
		return fmt.Sprintf("[rbp - %d]", -offset)
	}
	return fmt.Sprintf("[rbp + %d]", offset)
}

// genFunction emits one function's prologue, parameter spill, body,
// and epilogue. It asserts the push/pop stack came back to zero:
// an imbalance there means a codegen bug, not a malformed input
// program, so it is reported as an internal diagnostic rather than
// threaded back through the type checker.
func (g *generator) genFunction(fn *ast.Obj) error {
	assignLvarOffsets(fn)
	g.curFn = fn.Name

	g.emit(".global %s", fn.Name)
	g.emit("%s:", fn.Name)
	g.emit("  push rbp")
	g.emit("  mov rbp, rsp")
	g.emit("  sub rsp, %d", fn.StackSize)

	if g.debug {
		g.emit("  int 03")
	}

	for i, p := range fn.Params {
		if p.Ty.Size == 1 {
			g.emit("  mov %s, %s", frameAddr(p.Offset), argRegs8[i])
		} else {
			g.emit("  mov %s, %s", frameAddr(p.Offset), argRegs64[i])
		}
	}

	for _, s := range fn.Body {
		if err := g.genStmt(s); err != nil {
			return err
		}
	}

	if g.depth.Len() != 0 {
		return diag.Plain("codegen: unbalanced stack (depth %d) at end of %s", g.depth.Len(), fn.Name)
	}

	g.emit(".L.return.%s:", fn.Name)
	g.emit("  mov rsp, rbp")
	g.emit("  pop rbp")
	g.emit("  ret")
	return nil
}

func (g *generator) push() {
	g.emit("  push rax")
	g.depth.Push("rax")
}

func (g *generator) pop(reg string) error {
	g.emit("  pop %s", reg)
	if _, err := g.depth.Pop(); err != nil {
		return diag.Plain("codegen: stack underflow popping into %s", reg)
	}
	return nil
}

// genStmt emits a statement; statements leave no value behind.
func (g *generator) genStmt(n *ast.Node) error {
	switch n.Kind {
	case ast.ExprStmt:
		if n.Lhs == nil {
			return nil
		}
		return g.genExpr(n.Lhs)

	case ast.Return:
		if err := g.genExpr(n.Lhs); err != nil {
			return err
		}
		g.emit("  jmp .L.return.%s", g.curFn)
		return nil

	case ast.Block:
		for _, s := range n.Body {
			if err := g.genStmt(s); err != nil {
				return err
			}
		}
		return nil

	case ast.If:
		c := g.nextLabel()
		if err := g.genExpr(n.Cond); err != nil {
			return err
		}
		g.emit("  cmp rax, 0")
		if n.Els != nil {
			g.emit("  je .L.else.%d", c)
		} else {
			g.emit("  je .L.end.%d", c)
		}
		if err := g.genStmt(n.Then); err != nil {
			return err
		}
		if n.Els != nil {
			g.emit("  jmp .L.end.%d", c)
			g.emit(".L.else.%d:", c)
			if err := g.genStmt(n.Els); err != nil {
				return err
			}
		}
		g.emit(".L.end.%d:", c)
		return nil

	case ast.For:
		c := g.nextLabel()
		if n.Init != nil {
			if err := g.genStmt(n.Init); err != nil {
				return err
			}
		}
		g.emit(".L.begin.%d:", c)
		if n.Cond != nil {
			if err := g.genExpr(n.Cond); err != nil {
				return err
			}
			g.emit("  cmp rax, 0")
			g.emit("  je .L.end.%d", c)
		}
		if err := g.genStmt(n.Then); err != nil {
			return err
		}
		if n.Inc != nil {
			if err := g.genExpr(n.Inc); err != nil {
				return err
			}
		}
		g.emit("  jmp .L.begin.%d", c)
		g.emit(".L.end.%d:", c)
		return nil
	}

	return diag.Tok(n.Tok, "invalid statement")
}

// genAddr computes the address of an lvalue into rax. Anything that
// isn't a variable reference or a dereference has no address.
func (g *generator) genAddr(n *ast.Node) error {
	switch n.Kind {
	case ast.Var:
		if n.Var.IsLocal {
			g.emit("  lea rax, %s", frameAddr(n.Var.Offset))
			return nil
		}
		g.emit("  lea rax, %s[rip]", n.Var.Name)
		return nil

	case ast.Deref:
		return g.genExpr(n.Lhs)

	default:
		return diag.Tok(n.Tok, "not an lvalue")
	}
}

// load dereferences the address in rax, sign-extending a one-byte
// value into eax (which clears the upper half of rax). An array's
// "value" is its own address, so
// loading one is a no-op - this is what makes arrays decay to
// pointers on use.
func (g *generator) load(ty *types.Type) {
	if ty.Kind == types.ARRAY {
		return
	}
	if ty.Size == 1 {
		g.emit("  movsx eax, BYTE PTR [rax]")
		return
	}
	g.emit("  mov rax, [rax]")
}

// store writes rax through the address on top of the depth stack,
// leaving rax holding the stored value.
func (g *generator) store(ty *types.Type) error {
	if err := g.pop("rdi"); err != nil {
		return err
	}
	if ty.Size == 1 {
		g.emit("  mov [rdi], al")
	} else {
		g.emit("  mov [rdi], rax")
	}
	return nil
}

// genExpr emits an expression, leaving its value in rax.
func (g *generator) genExpr(n *ast.Node) error {
	switch n.Kind {
	case ast.Num:
		g.emit("  mov rax, %d", n.Val)
		return nil

	case ast.Neg:
		if err := g.genExpr(n.Lhs); err != nil {
			return err
		}
		g.emit("  neg rax")
		return nil

	case ast.Var, ast.Deref:
		if err := g.genAddr(n); err != nil {
			return err
		}
		g.load(n.Ty)
		return nil

	case ast.Addr:
		return g.genAddr(n.Lhs)

	case ast.Assign:
		if err := g.genAddr(n.Lhs); err != nil {
			return err
		}
		g.push()
		if err := g.genExpr(n.Rhs); err != nil {
			return err
		}
		return g.store(n.Ty)

	case ast.StmtExpr:
		for _, s := range n.Body {
			if err := g.genStmt(s); err != nil {
				return err
			}
		}
		return nil

	case ast.Funcall:
		for _, a := range n.Args {
			if err := g.genExpr(a); err != nil {
				return err
			}
			g.push()
		}
		for i := len(n.Args) - 1; i >= 0; i-- {
			if err := g.pop(argRegs64[i]); err != nil {
				return err
			}
		}
		g.emit("  mov rax, %d", len(n.Args))
		g.emit("  call %s", n.FuncName)
		return nil

	case ast.Eq, ast.Ne, ast.Lt, ast.Le:
		if err := g.genExpr(n.Rhs); err != nil {
			return err
		}
		g.push()
		if err := g.genExpr(n.Lhs); err != nil {
			return err
		}
		if err := g.pop("rdi"); err != nil {
			return err
		}
		g.emit("  cmp rax, rdi")
		switch n.Kind {
		case ast.Eq:
			g.emit("  sete al")
		case ast.Ne:
			g.emit("  setne al")
		case ast.Lt:
			g.emit("  setl al")
		case ast.Le:
			g.emit("  setle al")
		}
		g.emit("  movzb rax, al")
		return nil

	case ast.Add, ast.Sub, ast.Mul, ast.Div:
		if err := g.genExpr(n.Rhs); err != nil {
			return err
		}
		g.push()
		if err := g.genExpr(n.Lhs); err != nil {
			return err
		}
		if err := g.pop("rdi"); err != nil {
			return err
		}
		switch n.Kind {
		case ast.Add:
			g.emit("  add rax, rdi")
		case ast.Sub:
			g.emit("  sub rax, rdi")
		case ast.Mul:
			g.emit("  imul rax, rdi")
		case ast.Div:
			g.emit("  cqo")
			g.emit("  idiv rdi")
		}
		return nil
	}

	return diag.Tok(n.Tok, "invalid expression")
}
