package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mirrrek/nitrogen/internal/compiler"
	"github.com/Mirrrek/nitrogen/internal/diag"
)

func TestCompileSimpleProgram(t *testing.T) {
	src := `
		i32 x = 1 + 2;
		i32 y = x * 3;
	`
	ir, err := compiler.Compile("test.nit", src, nil)
	require.NoError(t, err)
	assert.Contains(t, string(ir), "< DECLARE i32 x\n")
	assert.Contains(t, string(ir), "< A addition B\n")
}

func TestCompileIfElseProgram(t *testing.T) {
	src := `
		i32 x = 0;
		if (x == 0) {
			x = 1;
		} else {
			x = 2;
		}
	`
	ir, err := compiler.Compile("test.nit", src, nil)
	require.NoError(t, err)
	assert.Contains(t, string(ir), ") JMP IF TRUE ")
}

func TestCompileLoopProgram(t *testing.T) {
	src := `
		i32 sum = 0;
		for (i32 i = 0; i < 10; i++) {
			sum = sum + i;
		}
	`
	ir, err := compiler.Compile("test.nit", src, nil)
	require.NoError(t, err)
	// sum (i32, offset 0) is declared before the for's own scope, so the
	// loop variable i (i32) is packed at offset 4.
	assert.Contains(t, string(ir), "STACK[4]++\n")
}

func TestCompileLexErrorPropagates(t *testing.T) {
	_, err := compiler.Compile("test.nit", "i32 x \x01;", nil)
	require.Error(t, err)
	var inputErr *diag.InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestCompileParseErrorPropagates(t *testing.T) {
	_, err := compiler.Compile("test.nit", "i32 x = ;", nil)
	require.Error(t, err)
}

func TestCompileCodegenErrorPropagates(t *testing.T) {
	_, err := compiler.Compile("test.nit", "return;", nil)
	require.Error(t, err)
}

func TestCompileIsDeterministic(t *testing.T) {
	src := "i32 x = 1 + 2 * 3;"
	a, err := compiler.Compile("test.nit", src, nil)
	require.NoError(t, err)
	b, err := compiler.Compile("test.nit", src, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
