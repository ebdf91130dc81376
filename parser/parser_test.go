package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skx/subc/ast"
	"github.com/skx/subc/lexer"
	"github.com/skx/subc/source"
	"github.com/skx/subc/types"
)

func parse(t *testing.T, text string) []*ast.Obj {
	t.Helper()
	src := source.New("t.c", text)
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	prog, err := Parse(toks, src)
	require.NoError(t, err)
	return prog
}

func parseErr(t *testing.T, text string) error {
	t.Helper()
	src := source.New("t.c", text)
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	_, err = Parse(toks, src)
	return err
}

func findFunc(t *testing.T, prog []*ast.Obj, name string) *ast.Obj {
	t.Helper()
	for _, o := range prog {
		if o.IsFunction && o.Name == name {
			return o
		}
	}
	t.Fatalf("function %q not found", name)
	return nil
}

func TestFunctionWithReturn(t *testing.T) {
	prog := parse(t, "int main() { return 42; }")
	main := findFunc(t, prog, "main")

	require.Len(t, main.Body, 1)
	assert.Equal(t, ast.Return, main.Body[0].Kind)
	assert.Equal(t, int64(42), main.Body[0].Lhs.Val)
}

func TestLocalsAndAssignment(t *testing.T) {
	prog := parse(t, "int main() { int a; a = 3; return a; }")
	main := findFunc(t, prog, "main")

	require.Len(t, main.Locals, 1)
	assert.Equal(t, "a", main.Locals[0].Name)
	assert.Same(t, types.TyInt, main.Locals[0].Ty)
}

func TestDeclarationWithInitializer(t *testing.T) {
	prog := parse(t, "int main() { int a = 5; return a; }")
	main := findFunc(t, prog, "main")

	require.Len(t, main.Body, 2)
	assign := main.Body[0].Lhs
	assert.Equal(t, ast.Assign, assign.Kind)
	assert.Equal(t, int64(5), assign.Rhs.Val)
}

func TestIfElse(t *testing.T) {
	prog := parse(t, "int main() { if (1) return 1; else return 0; }")
	main := findFunc(t, prog, "main")

	require.Len(t, main.Body, 1)
	assert.Equal(t, ast.If, main.Body[0].Kind)
	require.NotNil(t, main.Body[0].Els)
}

func TestForAndWhileBothProduceFor(t *testing.T) {
	prog := parse(t, "int main() { for (;;) return 1; }")
	main := findFunc(t, prog, "main")
	assert.Equal(t, ast.For, main.Body[0].Kind)

	prog2 := parse(t, "int main() { while (1) return 1; }")
	main2 := findFunc(t, prog2, "main")
	assert.Equal(t, ast.For, main2.Body[0].Kind)
	assert.Nil(t, main2.Body[0].Init)
}

func TestRelationalGreaterThanIsNormalized(t *testing.T) {
	prog := parse(t, "int main() { return 1 > 2; }")
	main := findFunc(t, prog, "main")

	ret := main.Body[0].Lhs
	require.Equal(t, ast.Lt, ret.Kind)
	assert.Equal(t, int64(2), ret.Lhs.Val)
	assert.Equal(t, int64(1), ret.Rhs.Val)
}

func TestPointerArithmeticScalesByElementSize(t *testing.T) {
	prog := parse(t, "int main() { int *p; return *(p + 1); }")
	main := findFunc(t, prog, "main")

	deref := main.Body[0].Lhs
	require.Equal(t, ast.Deref, deref.Kind)

	add := deref.Lhs
	require.Equal(t, ast.Add, add.Kind)
	require.Equal(t, ast.Mul, add.Rhs.Kind)
	assert.Equal(t, int64(8), add.Rhs.Rhs.Val)
}

func TestCharPointerArithmeticDoesNotScale(t *testing.T) {
	prog := parse(t, "int main() { char *p; return *(p + 1); }")
	main := findFunc(t, prog, "main")

	add := main.Body[0].Lhs.Lhs
	require.Equal(t, ast.Add, add.Kind)
	assert.Equal(t, ast.Num, add.Rhs.Kind)
}

func TestPointerDifferenceDividesBySize(t *testing.T) {
	prog := parse(t, "int main() { int *p; int *q; return p - q; }")
	main := findFunc(t, prog, "main")

	ret := main.Body[0].Lhs
	require.Equal(t, ast.Div, ret.Kind)
	assert.Equal(t, int64(8), ret.Rhs.Val)
	assert.Equal(t, ast.Sub, ret.Lhs.Kind)
}

func TestArrayIndexIsDerefOfAdd(t *testing.T) {
	prog := parse(t, "int main() { int a[3]; return a[1]; }")
	main := findFunc(t, prog, "main")

	ret := main.Body[0].Lhs
	require.Equal(t, ast.Deref, ret.Kind)
	assert.Equal(t, ast.Add, ret.Lhs.Kind)
}

func TestSizeofFoldsToConstant(t *testing.T) {
	prog := parse(t, "int main() { return sizeof(1); }")
	main := findFunc(t, prog, "main")

	ret := main.Body[0].Lhs
	assert.Equal(t, ast.Num, ret.Kind)
	assert.Equal(t, int64(8), ret.Val)
}

func TestSizeofArray(t *testing.T) {
	prog := parse(t, "int main() { int a[3]; return sizeof(a); }")
	main := findFunc(t, prog, "main")

	ret := main.Body[0].Lhs
	assert.Equal(t, ast.Num, ret.Kind)
	assert.Equal(t, int64(24), ret.Val)
}

func TestGlobalVariable(t *testing.T) {
	prog := parse(t, "int g; int main() { g = 1; return g; }")

	var g *ast.Obj
	for _, o := range prog {
		if !o.IsFunction && o.Name == "g" {
			g = o
		}
	}
	require.NotNil(t, g)
	assert.Same(t, types.TyInt, g.Ty)
}

func TestGlobalDeclaratorList(t *testing.T) {
	prog := parse(t, "int a, *b, c[3];")
	require.Len(t, prog, 3)
	assert.Equal(t, types.INT, prog[0].Ty.Kind)
	assert.Equal(t, types.PTR, prog[1].Ty.Kind)
	assert.Equal(t, types.ARRAY, prog[2].Ty.Kind)
}

func TestStringLiteralBecomesGlobal(t *testing.T) {
	prog := parse(t, `int main() { return 0; } `)
	_ = prog

	prog2 := parse(t, `char *f() { return "hi"; } int main() { return 0; }`)
	var str *ast.Obj
	for _, o := range prog2 {
		if !o.IsFunction && len(o.InitData) > 0 {
			str = o
		}
	}
	require.NotNil(t, str)
	assert.Equal(t, ".L..0", str.Name)
	assert.Equal(t, []byte("hi\x00"), str.InitData)
}

func TestFunctionCallArguments(t *testing.T) {
	prog := parse(t, "int add(int a, int b) { return a + b; } int main() { return add(1, 2); }")
	main := findFunc(t, prog, "main")

	call := main.Body[0].Lhs
	require.Equal(t, ast.Funcall, call.Kind)
	assert.Equal(t, "add", call.FuncName)
	require.Len(t, call.Args, 2)
}

func TestTooManyParametersIsDiagnosed(t *testing.T) {
	err := parseErr(t, "int f(int a, int b, int c, int d, int e, int f, int g) { return 1; }")
	require.Error(t, err)
}

func TestTooManyArgumentsIsDiagnosed(t *testing.T) {
	err := parseErr(t, "int f(int a, int b, int c, int d, int e, int g) { return 1; } int main() { return f(1,2,3,4,5,6,7); }")
	require.Error(t, err)
}

func TestUndefinedVariableIsDiagnosed(t *testing.T) {
	err := parseErr(t, "int main() { return x; }")
	require.Error(t, err)
}

func TestInvalidPointerMultiplyIsDiagnosed(t *testing.T) {
	err := parseErr(t, "int main() { int *p; int *q; return p * q; }")
	require.Error(t, err)
}

func TestAssignToArrayIsDiagnosed(t *testing.T) {
	err := parseErr(t, "int main() { int a[3]; a = 1; return 0; }")
	require.Error(t, err)
}

func TestStmtExprYieldsLastExpression(t *testing.T) {
	prog := parse(t, "int main() { return ({ 1; 2; }); }")
	main := findFunc(t, prog, "main")

	ret := main.Body[0].Lhs
	require.Equal(t, ast.StmtExpr, ret.Kind)
	assert.Same(t, types.TyInt, ret.Ty)
}

func TestNestedBlock(t *testing.T) {
	prog := parse(t, "int main() { { return 1; } }")
	main := findFunc(t, prog, "main")
	assert.Equal(t, ast.Block, main.Body[0].Kind)
}

func TestAddressOfAndDeref(t *testing.T) {
	prog := parse(t, "int main() { int a; int *p; p = &a; return *p; }")
	main := findFunc(t, prog, "main")

	assign := main.Body[0].Lhs
	addr := assign.Rhs
	require.Equal(t, ast.Addr, addr.Kind)
}
