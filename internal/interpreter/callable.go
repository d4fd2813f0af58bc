package interpreter

import (
	"time"

	"github.com/sdecook/golox/internal/ast"
	"github.com/sdecook/golox/internal/loxerr"
)

// Callable is implemented by every value that can appear as a Call
// expression's callee: *Function and *Class.
type Callable interface {
	Value
	Arity() int
	Call(interp *Interpreter, args []Value) (Value, error)
}

// Function is the single runtime representation of every callable kind —
// native, user-defined, and bound method — a flat tagged variant rather
// than three separate dispatching types. isNative is set, and nativeFn is
// non-nil, only for a native function; decl/closure are used only for a
// user-defined or bound one.
type Function struct {
	name      string
	decl      *ast.FunctionStmt
	closure   *Environment
	isInit    bool
	isNative  bool
	nativeFn  func(interp *Interpreter, args []Value) (Value, error)
	nativeAr  int
}

func (*Function) value() {}

// Display renders a native function as "<native fn>" and every other
// function, bound or not, as "<fn name>".
func (f *Function) Display() string {
	if f.isNative {
		return "<native fn>"
	}
	return "<fn " + f.name + ">"
}

func newNativeFunction(name string, arity int, fn func(interp *Interpreter, args []Value) (Value, error)) *Function {
	return &Function{name: name, isNative: true, nativeFn: fn, nativeAr: arity}
}

func newUserFunction(decl *ast.FunctionStmt, closure *Environment, isInit bool) *Function {
	return &Function{name: decl.Name.Lexeme, decl: decl, closure: closure, isInit: isInit}
}

// Arity reports the number of parameters this callable accepts.
func (f *Function) Arity() int {
	if f.isNative {
		return f.nativeAr
	}
	return len(f.decl.Params)
}

// Call invokes f. For a user function this creates a fresh environment
// over the closure, binds parameters positionally, and runs the body:
// normal completion yields Nil (or this, for an initializer); an
// intercepted return signal yields its carried value (or still this, for
// an initializer, per Lox's bare-return-in-init rule).
func (f *Function) Call(interp *Interpreter, args []Value) (Value, error) {
	if f.isNative {
		return f.nativeFn(interp, args)
	}

	env := NewEnvironment(f.closure)
	for i, p := range f.decl.Params {
		env.Define(p.Lexeme, args[i])
	}

	err := interp.executeBlock(f.decl.Body, env)
	if ret, ok := err.(*loxerr.ReturnSignal); ok {
		if f.isInit {
			return f.closure.GetAt(0, "this"), nil
		}
		if v, ok := ret.Value.(Value); ok {
			return v, nil
		}
		return Nil{}, nil
	}
	if err != nil {
		return nil, err
	}
	if f.isInit {
		return f.closure.GetAt(0, "this"), nil
	}
	return Nil{}, nil
}

// bind produces a fresh bound method: a copy of f whose closure is a new
// scope, enclosing f's original closure, that defines "this" as instance.
// The original Function is left unmodified.
func (f *Function) bind(instance *Instance) *Function {
	env := NewEnvironment(f.closure)
	env.Define("this", instance)
	return &Function{name: f.name, decl: f.decl, closure: env, isInit: f.isInit}
}

// Class is a Lox class value: a name, an optional superclass, and its
// own (non-inherited) methods.
type Class struct {
	name       string
	superclass *Class
	methods    map[string]*Function
}

func newClass(name string, superclass *Class, methods map[string]*Function) *Class {
	return &Class{name: name, superclass: superclass, methods: methods}
}

func (*Class) value()            {}
func (c *Class) Display() string { return c.name }

// FindMethod looks up name on c, then walks the superclass chain.
func (c *Class) FindMethod(name string) *Function {
	if m, ok := c.methods[name]; ok {
		return m
	}
	if c.superclass != nil {
		return c.superclass.FindMethod(name)
	}
	return nil
}

// Arity is the arity of the class's initializer, or 0 if it has none.
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs a new Instance and, if the class (or an ancestor)
// defines init, invokes it bound to the instance before returning the
// instance itself.
func (c *Class) Call(interp *Interpreter, args []Value) (Value, error) {
	instance := &Instance{class: c, fields: make(map[string]Value)}
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.bind(instance).Call(interp, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Instance is a Lox object: a reference to its class plus its own field
// bindings.
type Instance struct {
	class  *Class
	fields map[string]Value
}

func (*Instance) value()            {}
func (i *Instance) Display() string { return i.class.name + " instance" }

// Get reads a property: fields shadow methods. A method read yields a
// bound method, freshly bound on every read, so
// that two reads of the same method still observe the same instance when
// called.
func (i *Instance) Get(name string) (Value, *loxerr.RuntimeError) {
	if v, ok := i.fields[name]; ok {
		return v, nil
	}
	if m := i.class.FindMethod(name); m != nil {
		return m.bind(i), nil
	}
	return nil, &loxerr.RuntimeError{Msg: "Undefined property '" + name + "'."}
}

// Set assigns a field on the instance, creating it if absent.
func (i *Instance) Set(name string, value Value) {
	i.fields[name] = value
}

func newClockFunction() *Function {
	return newNativeFunction("clock", 0, func(_ *Interpreter, _ []Value) (Value, error) {
		return Number(time.Now().Unix()), nil
	})
}
