package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mirrrek/nitrogen/internal/ast"
	"github.com/Mirrrek/nitrogen/internal/lexer"
	"github.com/Mirrrek/nitrogen/internal/parser"
)

func parse(t *testing.T, src string) []ast.Statement {
	t.Helper()
	toks, err := lexer.Tokenize("test.nit", src, nil)
	require.NoError(t, err)
	stmts, err := parser.Parse("test.nit", src, toks)
	require.NoError(t, err)
	return stmts
}

func parseErr(t *testing.T, src string) error {
	t.Helper()
	toks, err := lexer.Tokenize("test.nit", src, nil)
	require.NoError(t, err)
	_, err = parser.Parse("test.nit", src, toks)
	return err
}

func TestDeclaration(t *testing.T) {
	stmts := parse(t, "i32 x;")
	require.Len(t, stmts, 1)
	decl, ok := stmts[0].(*ast.Declaration)
	require.True(t, ok)
	assert.Equal(t, "i32", decl.Type)
	assert.Equal(t, "x", decl.Name)
	assert.False(t, decl.Const)
}

func TestConstDeclarationRequiresAssignment(t *testing.T) {
	err := parseErr(t, "const i32 x;")
	require.Error(t, err)
}

func TestDeclarationWithAssignment(t *testing.T) {
	stmts := parse(t, "const i32 x = 1 + 2;")
	require.Len(t, stmts, 1)
	decl, ok := stmts[0].(*ast.DeclarationWithAssignment)
	require.True(t, ok)
	assert.True(t, decl.Const)
	bin, ok := decl.Assignment.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.OpAddition, bin.Op)
}

func TestAssignment(t *testing.T) {
	stmts := parse(t, "x = 5;")
	assign, ok := stmts[0].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Name)
}

func TestIncrementDecrementStatements(t *testing.T) {
	stmts := parse(t, "x++; x--;")
	require.Len(t, stmts, 2)
	_, ok := stmts[0].(*ast.IncrementStatement)
	assert.True(t, ok)
	_, ok = stmts[1].(*ast.DecrementStatement)
	assert.True(t, ok)
}

func TestFunctionCallStatement(t *testing.T) {
	stmts := parse(t, "foo(1, bar);")
	call, ok := stmts[0].(*ast.FunctionCallStatement)
	require.True(t, ok)
	assert.Equal(t, "foo", call.Name)
	require.Len(t, call.Arguments, 2)
}

func TestFunctionDeclaration(t *testing.T) {
	stmts := parse(t, "i32 add(i32 a, i32 b) { return a + b; }")
	fn, ok := stmts[0].(*ast.FunctionDeclaration)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, "i32", fn.ReturnType)
	require.Len(t, fn.Parameters, 2)
	assert.Equal(t, "a", fn.Parameters[0].Name)
	require.Len(t, fn.Statements, 1)
	_, ok = fn.Statements[0].(*ast.Return)
	assert.True(t, ok)
}

func TestEmptyFunctionDeclarationParameters(t *testing.T) {
	stmts := parse(t, "i32 main() { return 0; }")
	fn := stmts[0].(*ast.FunctionDeclaration)
	assert.Empty(t, fn.Parameters)
}

func TestScope(t *testing.T) {
	stmts := parse(t, "{ i32 x; }")
	scope, ok := stmts[0].(*ast.Scope)
	require.True(t, ok)
	require.Len(t, scope.Statements, 1)
}

func TestIfElseIfElseChain(t *testing.T) {
	stmts := parse(t, `
		if (x == 1) { y = 1; }
		else if (x == 2) { y = 2; }
		else { y = 3; }
	`)
	ifStmt, ok := stmts[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, ifStmt.Blocks, 2)
	assert.True(t, ifStmt.HasElse)
	require.Len(t, ifStmt.ElseBlock, 1)
}

func TestIfWithoutElse(t *testing.T) {
	stmts := parse(t, "if (x) { y = 1; }")
	ifStmt := stmts[0].(*ast.If)
	assert.False(t, ifStmt.HasElse)
	assert.Nil(t, ifStmt.ElseBlock)
}

func TestWhile(t *testing.T) {
	stmts := parse(t, "while (x < 10) { x++; }")
	w, ok := stmts[0].(*ast.While)
	require.True(t, ok)
	assert.False(t, w.DoWhile)
}

func TestDoWhile(t *testing.T) {
	stmts := parse(t, "do { x++; } while (x < 10);")
	w, ok := stmts[0].(*ast.While)
	require.True(t, ok)
	assert.True(t, w.DoWhile)
}

func TestForLoop(t *testing.T) {
	stmts := parse(t, "for (i32 i = 0; i < 10; i++) { }")
	f, ok := stmts[0].(*ast.For)
	require.True(t, ok)
	require.NotNil(t, f.Initialization)
	require.NotNil(t, f.Condition)
	require.NotNil(t, f.Action)

	_, ok = f.Initialization.(*ast.DeclarationWithAssignment)
	assert.True(t, ok)
	_, ok = f.Action.(*ast.IncrementStatement)
	assert.True(t, ok)
}

func TestBreak(t *testing.T) {
	stmts := parse(t, "break;")
	_, ok := stmts[0].(*ast.Break)
	assert.True(t, ok)
}

func TestBareReturn(t *testing.T) {
	stmts := parse(t, "return;")
	ret := stmts[0].(*ast.Return)
	assert.Nil(t, ret.Expression)
}

func TestOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3)
	stmts := parse(t, "x = 1 + 2 * 3;")
	assign := stmts[0].(*ast.Assignment)
	bin := assign.Assignment.(*ast.Binary)
	assert.Equal(t, ast.OpAddition, bin.Op)
	_, leftIsLit := bin.Left.(*ast.IntegerLiteral)
	assert.True(t, leftIsLit)
	rightBin, ok := bin.Right.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.OpMultiplication, rightBin.Op)
}

func TestLeftAssociativity(t *testing.T) {
	// 1 - 2 - 3 should parse as (1 - 2) - 3
	stmts := parse(t, "x = 1 - 2 - 3;")
	assign := stmts[0].(*ast.Assignment)
	bin := assign.Assignment.(*ast.Binary)
	assert.Equal(t, ast.OpSubtraction, bin.Op)
	leftBin, ok := bin.Left.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.OpSubtraction, leftBin.Op)
	_, rightIsLit := bin.Right.(*ast.IntegerLiteral)
	assert.True(t, rightIsLit)
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	stmts := parse(t, "x = (1 + 2) * 3;")
	assign := stmts[0].(*ast.Assignment)
	bin := assign.Assignment.(*ast.Binary)
	assert.Equal(t, ast.OpMultiplication, bin.Op)
	sub, ok := bin.Left.(*ast.SubExpression)
	require.True(t, ok)
	_, ok = sub.Inner.(*ast.Binary)
	assert.True(t, ok)
}

func TestComparisonOperators(t *testing.T) {
	for _, tc := range []struct {
		src string
		op  ast.BinaryOp
	}{
		{"x = a == b;", ast.OpEquality},
		{"x = a != b;", ast.OpInequality},
		{"x = a < b;", ast.OpLessThan},
		{"x = a <= b;", ast.OpLessThanOrEqual},
		{"x = a > b;", ast.OpGreaterThan},
		{"x = a >= b;", ast.OpGreaterThanOrEqual},
	} {
		stmts := parse(t, tc.src)
		bin := stmts[0].(*ast.Assignment).Assignment.(*ast.Binary)
		assert.Equal(t, tc.op, bin.Op, tc.src)
	}
}

func TestSignedLiterals(t *testing.T) {
	stmts := parse(t, "x = -5;")
	lit := stmts[0].(*ast.Assignment).Assignment.(*ast.IntegerLiteral)
	assert.EqualValues(t, -5, lit.Value)
}

func TestPostIncrementExpression(t *testing.T) {
	stmts := parse(t, "x = y++;")
	inc, ok := stmts[0].(*ast.Assignment).Assignment.(*ast.Increment)
	require.True(t, ok)
	assert.Equal(t, "y", inc.Name)
}

func TestFunctionCallExpression(t *testing.T) {
	stmts := parse(t, "x = foo(1, 2);")
	call, ok := stmts[0].(*ast.Assignment).Assignment.(*ast.FunctionCall)
	require.True(t, ok)
	require.Len(t, call.Arguments, 2)
}

func TestInvalidStatementErrors(t *testing.T) {
	err := parseErr(t, ")")
	require.Error(t, err)
}

func TestMissingSemicolonIsHardError(t *testing.T) {
	// the name/value placeholder has already consumed tokens, so a missing
	// terminator is a hard parse error, not a silent fallthrough.
	err := parseErr(t, "i32 x = 5")
	require.Error(t, err)
}
