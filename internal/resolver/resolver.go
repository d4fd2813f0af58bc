// Package resolver performs the static, pre-execution pass over the AST:
// it assigns every variable-use ExprID a lexical depth and rejects
// ill-formed use of return/this/super before the interpreter ever runs.
package resolver

import (
	"github.com/sdecook/golox/internal/ast"
	"github.com/sdecook/golox/internal/loxerr"
)

type functionType int

const (
	functionNone functionType = iota
	functionFunction
	functionMethod
	functionInitializer
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// Depths maps each Variable/Assign/This/Super ExprID to the number of
// enclosing scopes between its use site and the scope that declared the
// name. An ExprID absent from Depths is a reference to a global.
type Depths map[ast.ExprID]int

// Resolver walks a parsed program once, recording lexical depths and
// raising ResolveError on the first static-scoping violation.
type Resolver struct {
	scopes    []map[string]bool
	depths    Depths
	currentFn functionType
	currentCl classType
}

// New returns a Resolver ready to resolve a program.
func New() *Resolver {
	return &Resolver{depths: Depths{}}
}

// Resolve resolves an entire program and returns the resulting depth map,
// or the first ResolveError encountered.
func Resolve(stmts []ast.Stmt) (Depths, *loxerr.ResolveError) {
	r := New()
	if err := r.resolveStmts(stmts); err != nil {
		return nil, err
	}
	return r.depths, nil
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) *loxerr.ResolveError {
	for _, s := range stmts {
		if err := r.resolveStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) *loxerr.ResolveError {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		return r.resolveExpr(s.Expr)
	case *ast.PrintStmt:
		return r.resolveExpr(s.Expr)
	case *ast.VarStmt:
		return r.resolveVarStmt(s)
	case *ast.BlockStmt:
		r.beginScope()
		defer r.endScope()
		return r.resolveStmts(s.Stmts)
	case *ast.IfStmt:
		if err := r.resolveExpr(s.Cond); err != nil {
			return err
		}
		if err := r.resolveStmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return r.resolveStmt(s.Else)
		}
		return nil
	case *ast.WhileStmt:
		if err := r.resolveExpr(s.Cond); err != nil {
			return err
		}
		return r.resolveStmt(s.Body)
	case *ast.FunctionStmt:
		r.declare(s.Name.Lexeme)
		r.define(s.Name.Lexeme)
		return r.resolveFunction(s, functionFunction)
	case *ast.ReturnStmt:
		return r.resolveReturnStmt(s)
	case *ast.ClassStmt:
		return r.resolveClassStmt(s)
	default:
		return nil
	}
}

func (r *Resolver) resolveVarStmt(s *ast.VarStmt) *loxerr.ResolveError {
	r.declare(s.Name.Lexeme)
	if s.Init != nil {
		if err := r.resolveExpr(s.Init); err != nil {
			return err
		}
	}
	r.define(s.Name.Lexeme)
	return nil
}

func (r *Resolver) resolveReturnStmt(s *ast.ReturnStmt) *loxerr.ResolveError {
	if r.currentFn == functionNone {
		return &loxerr.ResolveError{Msg: "Cannot return from top-level code."}
	}
	if s.Value != nil {
		if r.currentFn == functionInitializer {
			return &loxerr.ResolveError{Msg: "Cannot return a value from an initializer."}
		}
		return r.resolveExpr(s.Value)
	}
	return nil
}

func (r *Resolver) resolveClassStmt(s *ast.ClassStmt) *loxerr.ResolveError {
	r.declare(s.Name.Lexeme)
	r.define(s.Name.Lexeme)

	enclosingClass := r.currentCl
	r.currentCl = classClass
	defer func() { r.currentCl = enclosingClass }()

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			return &loxerr.ResolveError{Msg: "A class cannot inherit from itself."}
		}
		r.currentCl = classSubclass
		if err := r.resolveExpr(s.Superclass); err != nil {
			return err
		}
		r.beginScope()
		defer r.endScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	defer r.endScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, m := range s.Methods {
		fnType := functionMethod
		if m.Name.Lexeme == "init" {
			fnType = functionInitializer
		}
		if err := r.resolveFunction(m, fnType); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStmt, fnType functionType) *loxerr.ResolveError {
	enclosingFn := r.currentFn
	r.currentFn = fnType
	defer func() { r.currentFn = enclosingFn }()

	r.beginScope()
	defer r.endScope()
	for _, p := range fn.Params {
		r.declare(p.Lexeme)
		r.define(p.Lexeme)
	}
	return r.resolveStmts(fn.Body)
}

func (r *Resolver) resolveExpr(expr ast.Expr) *loxerr.ResolveError {
	switch e := expr.(type) {
	case *ast.VariableExpr:
		return r.resolveVariable(e)
	case *ast.AssignExpr:
		if err := r.resolveExpr(e.Value); err != nil {
			return err
		}
		r.resolveLocal(e.ID, e.Name.Lexeme)
		return nil
	case *ast.BinaryExpr:
		if err := r.resolveExpr(e.Left); err != nil {
			return err
		}
		return r.resolveExpr(e.Right)
	case *ast.LogicalExpr:
		if err := r.resolveExpr(e.Left); err != nil {
			return err
		}
		return r.resolveExpr(e.Right)
	case *ast.UnaryExpr:
		return r.resolveExpr(e.Right)
	case *ast.GroupingExpr:
		return r.resolveExpr(e.Inner)
	case *ast.CallExpr:
		if err := r.resolveExpr(e.Callee); err != nil {
			return err
		}
		for _, a := range e.Args {
			if err := r.resolveExpr(a); err != nil {
				return err
			}
		}
		return nil
	case *ast.GetExpr:
		return r.resolveExpr(e.Object)
	case *ast.SetExpr:
		if err := r.resolveExpr(e.Value); err != nil {
			return err
		}
		return r.resolveExpr(e.Object)
	case *ast.ThisExpr:
		if r.currentCl == classNone {
			return &loxerr.ResolveError{Msg: "Cannot use 'this' outside of a class."}
		}
		r.resolveLocal(e.ID, "this")
		return nil
	case *ast.SuperExpr:
		if r.currentCl == classNone {
			return &loxerr.ResolveError{Msg: "Cannot use 'super' outside of a class."}
		}
		if r.currentCl != classSubclass {
			return &loxerr.ResolveError{Msg: "Cannot use 'super' in a class with no superclass."}
		}
		r.resolveLocal(e.ID, "super")
		return nil
	case *ast.NumberExpr, *ast.StringExpr, *ast.BooleanExpr, *ast.NilExpr:
		return nil
	default:
		return nil
	}
}

func (r *Resolver) resolveVariable(e *ast.VariableExpr) *loxerr.ResolveError {
	if len(r.scopes) > 0 {
		if defined, declared := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; declared && !defined {
			return &loxerr.ResolveError{Msg: "Cannot read local variable in its own initializer"}
		}
	}
	r.resolveLocal(e.ID, e.Name.Lexeme)
	return nil
}

func (r *Resolver) resolveLocal(id ast.ExprID, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.depths[id] = len(r.scopes) - 1 - i
			return
		}
	}
	// Not found in any scope: a global. No entry recorded.
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, map[string]bool{})
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = false
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}
