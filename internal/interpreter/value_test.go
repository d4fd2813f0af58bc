package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplay_NumberDropsTrailingZeroFraction(t *testing.T) {
	assert.Equal(t, "3", Number(3).Display())
	assert.Equal(t, "3.25", Number(3.25).Display())
}

func TestDisplay_Primitives(t *testing.T) {
	assert.Equal(t, "nil", Nil{}.Display())
	assert.Equal(t, "true", Boolean(true).Display())
	assert.Equal(t, "false", Boolean(false).Display())
	assert.Equal(t, "hi", String("hi").Display())
}

func TestIsTruthy_OnlyNilAndFalseAreFalsy(t *testing.T) {
	assert.False(t, IsTruthy(Nil{}))
	assert.False(t, IsTruthy(Boolean(false)))
	assert.True(t, IsTruthy(Boolean(true)))
	assert.True(t, IsTruthy(Number(0)))
	assert.True(t, IsTruthy(String("")))
}

func TestEqual_StructuralAcrossTypesIsFalse(t *testing.T) {
	assert.True(t, Equal(Number(1), Number(1)))
	assert.False(t, Equal(Number(1), String("1")))
	assert.True(t, Equal(Nil{}, Nil{}))
	assert.False(t, Equal(Nil{}, Boolean(false)))
}

func TestEqual_CallablesAreNeverEqual(t *testing.T) {
	f1 := newNativeFunction("clock", 0, nil)
	f2 := newNativeFunction("clock", 0, nil)
	assert.False(t, Equal(f1, f2))
}
