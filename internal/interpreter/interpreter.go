package interpreter

import (
	"fmt"
	"io"

	"github.com/sdecook/golox/internal/ast"
	"github.com/sdecook/golox/internal/loxerr"
	"github.com/sdecook/golox/internal/resolver"
	"github.com/sdecook/golox/internal/token"
)

// Interpreter walks a resolved program against a mutable environment
// chain: globals, the currently executing scope, and the
// resolver's ExprID→depth map.
type Interpreter struct {
	globals *Environment
	env     *Environment
	depths  resolver.Depths
	stdout  io.Writer
}

// New returns an Interpreter writing "print" output to stdout, with a
// fresh global scope.
func New(stdout io.Writer, depths resolver.Depths) *Interpreter {
	return NewWithGlobals(stdout, nil, depths)
}

// NewWithGlobals returns an Interpreter sharing an existing global scope
// (nil to start one). A REPL uses this to resolve and run each line as an
// independent program while variables persist across lines: every line
// gets its own depth map (the parser's ExprID counter restarts per
// parse, so depth maps from different lines must never be merged), but
// all lines share the same globals environment.
func NewWithGlobals(stdout io.Writer, globals *Environment, depths resolver.Depths) *Interpreter {
	if globals == nil {
		globals = NewEnvironment(nil)
		globals.Define("clock", newClockFunction())
	}
	return &Interpreter{globals: globals, env: globals, depths: depths, stdout: stdout}
}

// Globals returns the interpreter's global scope, for reuse by a
// follow-up Interpreter constructed with NewWithGlobals.
func (i *Interpreter) Globals() *Environment {
	return i.globals
}

// Run executes a resolved program's statements in order. It returns the
// first error encountered (an EnvironmentError or RuntimeError); a leaked
// ReturnSignal reaching here is an internal invariant violation, not a
// user-facing fault.
func (i *Interpreter) Run(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := i.execute(s); err != nil {
			if _, ok := err.(*loxerr.ReturnSignal); ok {
				panic("interpreter invariant violation: return signal escaped to top level")
			}
			return err
		}
	}
	return nil
}

func (i *Interpreter) execute(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		_, err := i.eval(s.Expr)
		return err
	case *ast.PrintStmt:
		v, err := i.eval(s.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.stdout, v.Display())
		return nil
	case *ast.VarStmt:
		return i.executeVar(s)
	case *ast.BlockStmt:
		return i.executeBlock(s.Stmts, NewEnvironment(i.env))
	case *ast.IfStmt:
		return i.executeIf(s)
	case *ast.WhileStmt:
		return i.executeWhile(s)
	case *ast.FunctionStmt:
		i.env.Define(s.Name.Lexeme, newUserFunction(s, i.env, false))
		return nil
	case *ast.ReturnStmt:
		return i.executeReturn(s)
	case *ast.ClassStmt:
		return i.executeClass(s)
	default:
		return nil
	}
}

func (i *Interpreter) executeVar(s *ast.VarStmt) error {
	var v Value = Nil{}
	if s.Init != nil {
		var err error
		v, err = i.eval(s.Init)
		if err != nil {
			return err
		}
	}
	i.env.Define(s.Name.Lexeme, v)
	return nil
}

// executeBlock runs stmts against env, restoring the interpreter's
// previous scope on every exit path — normal completion, error, or a
// return unwind.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) error {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, s := range stmts {
		if err := i.execute(s); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) executeIf(s *ast.IfStmt) error {
	cond, err := i.eval(s.Cond)
	if err != nil {
		return err
	}
	if IsTruthy(cond) {
		return i.execute(s.Then)
	}
	if s.Else != nil {
		return i.execute(s.Else)
	}
	return nil
}

func (i *Interpreter) executeWhile(s *ast.WhileStmt) error {
	for {
		cond, err := i.eval(s.Cond)
		if err != nil {
			return err
		}
		if !IsTruthy(cond) {
			return nil
		}
		if err := i.execute(s.Body); err != nil {
			return err
		}
	}
}

func (i *Interpreter) executeReturn(s *ast.ReturnStmt) error {
	var v Value = Nil{}
	if s.Value != nil {
		var err error
		v, err = i.eval(s.Value)
		if err != nil {
			return err
		}
	}
	return &loxerr.ReturnSignal{Value: v}
}

func (i *Interpreter) executeClass(s *ast.ClassStmt) error {
	var superclass *Class
	if s.Superclass != nil {
		sv, err := i.eval(s.Superclass)
		if err != nil {
			return err
		}
		sc, ok := sv.(*Class)
		if !ok {
			return &loxerr.RuntimeError{Line: s.Superclass.Name.Line, Msg: "Superclass must be a class."}
		}
		superclass = sc
	}

	env := i.env
	if superclass != nil {
		env = NewEnvironment(i.env)
		env.Define("super", superclass)
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = newUserFunction(m, env, m.Name.Lexeme == "init")
	}

	i.env.Define(s.Name.Lexeme, newClass(s.Name.Lexeme, superclass, methods))
	return nil
}

func (i *Interpreter) eval(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberExpr:
		return Number(e.Value), nil
	case *ast.StringExpr:
		return String(e.Value), nil
	case *ast.BooleanExpr:
		return Boolean(e.Value), nil
	case *ast.NilExpr:
		return Nil{}, nil
	case *ast.GroupingExpr:
		return i.eval(e.Inner)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.LogicalExpr:
		return i.evalLogical(e)
	case *ast.VariableExpr:
		return i.lookUpVariable(e.ID, e.Name)
	case *ast.AssignExpr:
		return i.evalAssign(e)
	case *ast.CallExpr:
		return i.evalCall(e)
	case *ast.GetExpr:
		return i.evalGet(e)
	case *ast.SetExpr:
		return i.evalSet(e)
	case *ast.ThisExpr:
		return i.lookUpVariable(e.ID, e.Keyword)
	case *ast.SuperExpr:
		return i.evalSuper(e)
	default:
		return nil, &loxerr.RuntimeError{Msg: fmt.Sprintf("unhandled expression type %T", expr)}
	}
}

func (i *Interpreter) lookUpVariable(id ast.ExprID, name token.Token) (Value, error) {
	if d, ok := i.depths[id]; ok {
		return i.env.GetAt(d, name.Lexeme), nil
	}
	v, err := i.globals.Get(name.Lexeme)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (i *Interpreter) evalAssign(e *ast.AssignExpr) (Value, error) {
	v, err := i.eval(e.Value)
	if err != nil {
		return nil, err
	}
	if d, ok := i.depths[e.ID]; ok {
		i.env.AssignAt(d, e.Name.Lexeme, v)
		return v, nil
	}
	if err := i.globals.Assign(e.Name.Lexeme, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	right, err := i.eval(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op.Type {
	case token.Minus:
		n, ok := right.(Number)
		if !ok {
			return nil, &loxerr.RuntimeError{Line: e.Op.Line, Msg: "Operand must be a number."}
		}
		return -n, nil
	case token.Bang:
		return Boolean(!IsTruthy(right)), nil
	default:
		return nil, &loxerr.RuntimeError{Line: e.Op.Line, Msg: "Unknown unary operator."}
	}
}

func (i *Interpreter) evalLogical(e *ast.LogicalExpr) (Value, error) {
	left, err := i.eval(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op.Type == token.Or {
		if IsTruthy(left) {
			return left, nil
		}
		return i.eval(e.Right)
	}
	// and
	if !IsTruthy(left) {
		return left, nil
	}
	return i.eval(e.Right)
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.eval(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Type {
	case token.Plus:
		if ln, lok := left.(Number); lok {
			if rn, rok := right.(Number); rok {
				return ln + rn, nil
			}
		}
		if ls, lok := left.(String); lok {
			if rs, rok := right.(String); rok {
				return ls + rs, nil
			}
		}
		return nil, &loxerr.RuntimeError{Line: e.Op.Line, Msg: "The '+' operator requires either 2 numbers or 2 strings."}
	case token.Minus:
		return numericBinary(left, right, e.Op.Line, func(a, b float64) Value { return Number(a - b) })
	case token.Star:
		return numericBinary(left, right, e.Op.Line, func(a, b float64) Value { return Number(a * b) })
	case token.Slash:
		return numericBinary(left, right, e.Op.Line, func(a, b float64) Value { return Number(a / b) })
	case token.Greater:
		return numericBinary(left, right, e.Op.Line, func(a, b float64) Value { return Boolean(a > b) })
	case token.GreaterEqual:
		return numericBinary(left, right, e.Op.Line, func(a, b float64) Value { return Boolean(a >= b) })
	case token.Less:
		return numericBinary(left, right, e.Op.Line, func(a, b float64) Value { return Boolean(a < b) })
	case token.LessEqual:
		return numericBinary(left, right, e.Op.Line, func(a, b float64) Value { return Boolean(a <= b) })
	case token.EqualEqual:
		return Boolean(Equal(left, right)), nil
	case token.BangEqual:
		return Boolean(!Equal(left, right)), nil
	default:
		return nil, &loxerr.RuntimeError{Line: e.Op.Line, Msg: "Unknown binary operator."}
	}
}

func numericBinary(left, right Value, line int, apply func(a, b float64) Value) (Value, error) {
	ln, lok := left.(Number)
	rn, rok := right.(Number)
	if !lok || !rok {
		return nil, &loxerr.RuntimeError{Line: line, Msg: "Operands must be numbers."}
	}
	return apply(float64(ln), float64(rn)), nil
}

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	callee, err := i.eval(e.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(e.Args))
	for idx, a := range e.Args {
		v, err := i.eval(a)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, &loxerr.RuntimeError{Line: e.Paren.Line, Msg: "Can only call functions and classes."}
	}
	if len(args) != fn.Arity() {
		return nil, &loxerr.RuntimeError{
			Line: e.Paren.Line,
			Msg:  fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)),
		}
	}
	return fn.Call(i, args)
}

func (i *Interpreter) evalGet(e *ast.GetExpr) (Value, error) {
	obj, err := i.eval(e.Object)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, &loxerr.RuntimeError{Line: e.Name.Line, Msg: "Only instances have fields."}
	}
	v, rerr := inst.Get(e.Name.Lexeme)
	if rerr != nil {
		rerr.Line = e.Name.Line
		return nil, rerr
	}
	return v, nil
}

func (i *Interpreter) evalSet(e *ast.SetExpr) (Value, error) {
	obj, err := i.eval(e.Object)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, &loxerr.RuntimeError{Line: e.Name.Line, Msg: "Only instances have fields."}
	}
	v, err := i.eval(e.Value)
	if err != nil {
		return nil, err
	}
	inst.Set(e.Name.Lexeme, v)
	return v, nil
}

func (i *Interpreter) evalSuper(e *ast.SuperExpr) (Value, error) {
	d, ok := i.depths[e.ID]
	if !ok {
		panic("resolver invariant violation: unresolved super expression")
	}
	superVal := i.env.GetAt(d, "super")
	super, ok := superVal.(*Class)
	if !ok {
		panic("resolver invariant violation: 'super' is not bound to a class")
	}
	this := i.env.GetAt(d-1, "this")
	instance, ok := this.(*Instance)
	if !ok {
		panic("resolver invariant violation: 'this' is not bound to an instance")
	}

	method := super.FindMethod(e.Method.Lexeme)
	if method == nil {
		return nil, &loxerr.RuntimeError{Line: e.Method.Line, Msg: "Undefined property '" + e.Method.Lexeme + "'."}
	}
	return method.bind(instance), nil
}
