package parser

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdecook/golox/internal/ast"
	"github.com/sdecook/golox/internal/lexer"
)

func parseSource(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	toks, lexErrs := lexer.Scan(src)
	require.Empty(t, lexErrs)
	stmts, errs := Parse(toks)
	require.Empty(t, errs)
	return stmts
}

func TestParse_ArithmeticPrecedence(t *testing.T) {
	stmts := parseSource(t, "print 1 + 2 * 3;")
	require.Len(t, stmts, 1)
	printStmt := stmts[0].(*ast.PrintStmt)
	bin := printStmt.Expr.(*ast.BinaryExpr)
	assert.Equal(t, "1", numberLexemeOf(t, bin.Left))
	_, ok := bin.Right.(*ast.BinaryExpr)
	assert.True(t, ok, "right side of + should be the * subexpression")
}

func numberLexemeOf(t *testing.T, e ast.Expr) string {
	t.Helper()
	n, ok := e.(*ast.NumberExpr)
	require.True(t, ok)
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

func TestParse_AssignmentIsRightAssociative(t *testing.T) {
	stmts := parseSource(t, "a = b = 3;")
	exprStmt := stmts[0].(*ast.ExpressionStmt)
	outer := exprStmt.Expr.(*ast.AssignExpr)
	assert.Equal(t, "a", outer.Name.Lexeme)
	inner, ok := outer.Value.(*ast.AssignExpr)
	require.True(t, ok)
	assert.Equal(t, "b", inner.Name.Lexeme)
}

func TestParse_InvalidAssignmentTargetIsRecorded(t *testing.T) {
	toks, _ := lexer.Scan("1 = 2; print 3;")
	stmts, errs := Parse(toks)
	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid assignment target", errs[0].Msg)
	assert.Nil(t, errs[0].Line, "invalid assignment target is reported with no line")

	// The parser isn't in a confused state here, so it doesn't drop into
	// panic-mode recovery: both statements still come back.
	require.Len(t, stmts, 2)
	_, isPrint := stmts[1].(*ast.PrintStmt)
	assert.True(t, isPrint)
}

func TestParse_ForDesugarsToWhile(t *testing.T) {
	stmts := parseSource(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	require.Len(t, stmts, 1)
	block := stmts[0].(*ast.BlockStmt)
	require.Len(t, block.Stmts, 2)
	_, isVar := block.Stmts[0].(*ast.VarStmt)
	assert.True(t, isVar)
	whileStmt, isWhile := block.Stmts[1].(*ast.WhileStmt)
	require.True(t, isWhile)
	innerBlock := whileStmt.Body.(*ast.BlockStmt)
	require.Len(t, innerBlock.Stmts, 2)
	_, isPrint := innerBlock.Stmts[0].(*ast.PrintStmt)
	assert.True(t, isPrint)
}

func TestParse_ForWithNoConditionDefaultsToTrue(t *testing.T) {
	stmts := parseSource(t, "for (;;) print 1;")
	block := stmts[0].(*ast.BlockStmt)
	whileStmt := block.Stmts[0].(*ast.WhileStmt)
	lit, ok := whileStmt.Cond.(*ast.BooleanExpr)
	require.True(t, ok)
	assert.True(t, lit.Value)
}

func TestParse_SuperRequiresDotMethod(t *testing.T) {
	toks, _ := lexer.Scan("class A < B { f() { super; } }")
	_, errs := Parse(toks)
	require.NotEmpty(t, errs)
}

func TestParse_ClassWithSuperclassAndMethods(t *testing.T) {
	stmts := parseSource(t, `class Cake < Pastry { taste() { return "yum"; } }`)
	require.Len(t, stmts, 1)
	class := stmts[0].(*ast.ClassStmt)
	assert.Equal(t, "Cake", class.Name.Lexeme)
	require.NotNil(t, class.Superclass)
	assert.Equal(t, "Pastry", class.Superclass.Name.Lexeme)
	require.Len(t, class.Methods, 1)
	assert.Equal(t, "taste", class.Methods[0].Name.Lexeme)
}

func TestParse_EveryExprIDIsDistinct(t *testing.T) {
	stmts := parseSource(t, "var a = 1; var b = 2; print a + b;")
	seen := map[ast.ExprID]bool{}
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch v := e.(type) {
		case *ast.VariableExpr:
			assert.False(t, seen[v.ID], "duplicate ExprID")
			seen[v.ID] = true
		case *ast.BinaryExpr:
			walk(v.Left)
			walk(v.Right)
		}
	}
	walk(stmts[2].(*ast.PrintStmt).Expr)
	assert.Len(t, seen, 2)
}
