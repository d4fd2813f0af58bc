package interpreter

import "github.com/sdecook/golox/internal/loxerr"

// Environment is a single link in the lexical scope chain. Closures, bound
// methods, and live call frames all hold pointers to the same Environment
// nodes, so mutation through one reference is observable through every
// other — Go's garbage collector handles the reference-counted/arena
// sharing a non-GC'd host would need explicitly, cycles (a closure stored
// in its own defining scope) included.
type Environment struct {
	enclosing *Environment
	values    map[string]Value
}

// NewEnvironment returns a fresh scope enclosed by parent (nil for the
// global scope).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{enclosing: parent, values: make(map[string]Value)}
}

// Define binds name to value in this scope, overwriting any existing
// binding of the same name in this scope only.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get reads name starting at this scope and walking outward.
func (e *Environment) Get(name string) (Value, *loxerr.EnvironmentError) {
	if v, ok := e.values[name]; ok {
		return v, nil
	}
	if e.enclosing != nil {
		return e.enclosing.Get(name)
	}
	return nil, &loxerr.EnvironmentError{Msg: "Undefined variable '" + name + "'."}
}

// GetAt reads name exactly distance scopes outward from this one, per the
// resolver's precomputed depth. A miss here is an internal invariant
// violation, not a user-visible fault: the resolver guarantees the name
// exists at that depth.
func (e *Environment) GetAt(distance int, name string) Value {
	env := e.ancestor(distance)
	v, ok := env.values[name]
	if !ok {
		panic("resolver/environment invariant violation: '" + name + "' missing at resolved depth")
	}
	return v
}

// Assign rebinds name to value at the nearest enclosing scope that
// already defines it.
func (e *Environment) Assign(name string, value Value) *loxerr.EnvironmentError {
	if _, ok := e.values[name]; ok {
		e.values[name] = value
		return nil
	}
	if e.enclosing != nil {
		return e.enclosing.Assign(name, value)
	}
	return &loxerr.EnvironmentError{Msg: "Undefined variable '" + name + "'."}
}

// AssignAt rebinds name exactly distance scopes outward, per the
// resolver's precomputed depth.
func (e *Environment) AssignAt(distance int, name string, value Value) {
	env := e.ancestor(distance)
	env.values[name] = value
}

func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.enclosing
	}
	return env
}
