package compiler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loxvm/internal/vm"
)

// run compiles and executes source on a fresh VM, as cmd/lox's interpret
// does, exercising the compiler and VM together the way a script actually
// runs end to end (spec.md §8's "end-to-end scenarios").
func run(t *testing.T, source string) (stdout string, result vm.Result, err error) {
	t.Helper()

	interner := vm.NewInterner()
	c := New(interner)
	ch, compileErr := c.Compile(source)
	if compileErr != nil {
		return "", vm.CompileError, compileErr
	}

	machine := vm.New(interner)
	defer machine.Free()
	var out bytes.Buffer
	machine.Stdout = &out

	res, runErr := machine.Interpret(ch)
	return out.String(), res, runErr
}

func TestEndToEndArithmeticPrint(t *testing.T) {
	out, res, err := run(t, "print 1 + 2;")
	require.NoError(t, err)
	assert.Equal(t, vm.OK, res)
	assert.Equal(t, "3\n", out)
}

func TestEndToEndStringConcatenationPrint(t *testing.T) {
	out, res, err := run(t, `print "ab" + "cd";`)
	require.NoError(t, err)
	assert.Equal(t, vm.OK, res)
	assert.Equal(t, "abcd\n", out)
}

func TestEndToEndBlockShadowsOuterLocal(t *testing.T) {
	out, res, err := run(t, "var a = 1; { var a = 2; print a; } print a;")
	require.NoError(t, err)
	assert.Equal(t, vm.OK, res)
	assert.Equal(t, "2\n1\n", out)
}

func TestEndToEndUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, res, err := run(t, "print x;")
	assert.Equal(t, vm.RuntimeError, res)
	require.Error(t, err)
	assert.Equal(t, "Undefined variable 'x'.\n[line 1] in script", err.Error())
}

func TestEndToEndNegateNonNumberIsRuntimeError(t *testing.T) {
	_, res, err := run(t, "print -true;")
	assert.Equal(t, vm.RuntimeError, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operand must be a number.")
	assert.Contains(t, err.Error(), "[line 1]")
}

func TestEndToEndGlobalRedefinitionIsAllowed(t *testing.T) {
	out, res, err := run(t, "var a = 1; var a = 2; print a;")
	require.NoError(t, err)
	assert.Equal(t, vm.OK, res)
	assert.Equal(t, "2\n", out)
}

func TestEndToEndDuplicateLocalIsCompileError(t *testing.T) {
	_, res, err := run(t, "{ var a = 1; var a = 2; }")
	assert.Equal(t, vm.CompileError, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Variable with this name already declared in this scope.")
}

func TestEndToEndEqualityAcrossTypes(t *testing.T) {
	out, res, err := run(t, `print 1 == 1; print 1 == "1"; print nil == nil;`)
	require.NoError(t, err)
	assert.Equal(t, vm.OK, res)
	assert.Equal(t, "true\nfalse\ntrue\n", out)
}

func TestEndToEndOnlyNilAndFalseAreFalsey(t *testing.T) {
	out, res, err := run(t, `print !nil; print !0; print !"";`)
	require.NoError(t, err)
	assert.Equal(t, vm.OK, res)
	assert.Equal(t, "true\nfalse\nfalse\n", out)
}
