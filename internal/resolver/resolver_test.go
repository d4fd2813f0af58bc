package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdecook/golox/internal/ast"
	"github.com/sdecook/golox/internal/lexer"
	"github.com/sdecook/golox/internal/loxerr"
	"github.com/sdecook/golox/internal/parser"
)

func resolveSource(t *testing.T, src string) (ast.Stmt, Depths, *loxerr.ResolveError) {
	t.Helper()
	toks, lexErrs := lexer.Scan(src)
	require.Empty(t, lexErrs)
	stmts, parseErrs := parser.Parse(toks)
	require.Empty(t, parseErrs)
	depths, err := Resolve(stmts)
	var last ast.Stmt
	if len(stmts) > 0 {
		last = stmts[len(stmts)-1]
	}
	return last, depths, err
}

func TestResolve_LocalShadowsOuterAtDepthZero(t *testing.T) {
	_, depths, err := resolveSource(t, `
		var a = "global";
		{
			var a = "local";
			print a;
		}
	`)
	require.Nil(t, err)
	require.Len(t, depths, 1)
	for _, d := range depths {
		assert.Equal(t, 0, d)
	}
}

func TestResolve_GlobalReferenceHasNoEntry(t *testing.T) {
	_, depths, err := resolveSource(t, `
		var a = 1;
		print a;
	`)
	require.Nil(t, err)
	assert.Empty(t, depths)
}

func TestResolve_SelfReferentialLocalInitializerIsError(t *testing.T) {
	_, _, err := resolveSource(t, `{ var a = a; }`)
	require.NotNil(t, err)
	assert.Equal(t, "Cannot read local variable in its own initializer", err.Msg)
}

func TestResolve_ReturnAtTopLevelIsError(t *testing.T) {
	_, _, err := resolveSource(t, `return 1;`)
	require.NotNil(t, err)
	assert.Equal(t, "Cannot return from top-level code.", err.Msg)
}

func TestResolve_ReturnValueFromInitializerIsError(t *testing.T) {
	_, _, err := resolveSource(t, `
		class A {
			init() { return 1; }
		}
	`)
	require.NotNil(t, err)
	assert.Equal(t, "Cannot return a value from an initializer.", err.Msg)
}

func TestResolve_BareReturnFromInitializerIsAllowed(t *testing.T) {
	_, _, err := resolveSource(t, `
		class A {
			init() { return; }
		}
	`)
	assert.Nil(t, err)
}

func TestResolve_ThisOutsideClassIsError(t *testing.T) {
	_, _, err := resolveSource(t, `print this;`)
	require.NotNil(t, err)
	assert.Equal(t, "Cannot use 'this' outside of a class.", err.Msg)
}

func TestResolve_SuperOutsideClassIsError(t *testing.T) {
	_, _, err := resolveSource(t, `print super.f();`)
	require.NotNil(t, err)
	assert.Equal(t, "Cannot use 'super' outside of a class.", err.Msg)
}

func TestResolve_SuperWithNoSuperclassIsError(t *testing.T) {
	_, _, err := resolveSource(t, `
		class A {
			f() { super.f(); }
		}
	`)
	require.NotNil(t, err)
	assert.Equal(t, "Cannot use 'super' in a class with no superclass.", err.Msg)
}

func TestResolve_SelfInheritanceIsError(t *testing.T) {
	_, _, err := resolveSource(t, `class X < X {}`)
	require.NotNil(t, err)
	assert.Equal(t, "A class cannot inherit from itself.", err.Msg)
}

func TestResolve_LocallyDeclaredClassResolvesItsOwnNameAsLocal(t *testing.T) {
	_, depths, err := resolveSource(t, `
		fun make() {
			class Counter {}
			return Counter();
		}
	`)
	require.Nil(t, err)
	require.Len(t, depths, 1)
	for _, d := range depths {
		assert.Equal(t, 0, d, "Counter() inside make() should resolve at depth 0, not as a global")
	}
}

func TestResolve_ClassWithSuperclassResolvesThisAndSuper(t *testing.T) {
	_, depths, err := resolveSource(t, `
		class A {
			f() { return 1; }
		}
		class B < A {
			f() {
				super.f();
				print this;
			}
		}
	`)
	require.Nil(t, err)
	assert.Len(t, depths, 2)
}
