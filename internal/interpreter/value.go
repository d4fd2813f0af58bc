// Package interpreter tree-walks a resolved Lox program:
// expression and statement evaluation, the environment chain, closures,
// and class/method dispatch.
package interpreter

import (
	"strconv"
)

// Value is the tagged union of every runtime object a Lox program can
// produce: Nil, Boolean, Number, String, Function, Class,
// Instance. The marker method keeps the set closed to this package.
type Value interface {
	value()
	// Display renders the value the way "print" shows it.
	Display() string
}

// Nil is Lox's sole null value. There is exactly one meaningful instance,
// but it is a value type so zero-value Nil{} compares equal to any other.
type Nil struct{}

func (Nil) value()          {}
func (Nil) Display() string { return "nil" }

// Boolean is a Lox true/false value.
type Boolean bool

func (Boolean) value() {}
func (b Boolean) Display() string {
	if b {
		return "true"
	}
	return "false"
}

// Number is Lox's single numeric type, a float64.
type Number float64

func (Number) value() {}
func (n Number) Display() string {
	if n == Number(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// String is a Lox string value.
type String string

func (String) value()             {}
func (s String) Display() string { return string(s) }

// IsTruthy implements Lox truthiness: only Nil and Boolean(false) are
// falsy; every other value, including 0 and "", is truthy.
func IsTruthy(v Value) bool {
	switch t := v.(type) {
	case Nil:
		return false
	case Boolean:
		return bool(t)
	default:
		return true
	}
}

// Equal implements Lox's structural equality: same-type
// comparison for primitives, Nil equals only Nil, and every
// callable/class/instance comparison is false (reference identity is
// never observable through ==).
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	default:
		return false
	}
}
