package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSuccess(t *testing.T) {
	result, errs, diags := Compile("int add(int a, int b) { return a + b; } int main() { return add(1, 2); }")
	require.Empty(t, errs)
	require.Empty(t, diags)
	require.NotNil(t, result)

	assert.Len(t, result.Decls, 2)
	assert.NotEmpty(t, result.IR)
	assert.Contains(t, result.SemTable, ".global")
}

func TestCompileGlobalVariableDecl(t *testing.T) {
	result, errs, diags := Compile("int g = 5; int main() { return g; }")
	require.Empty(t, errs)
	require.Empty(t, diags)
	require.NotNil(t, result)

	assert.Len(t, result.Decls, 2)
	assert.Contains(t, result.SemTable[".global"].Symbols, "g")
}

func TestCompileStopsAtParseErrors(t *testing.T) {
	result, errs, diags := Compile("int x = 5")
	assert.Nil(t, result)
	assert.NotEmpty(t, errs)
	assert.Nil(t, diags)
}

func TestCompileStopsAtDiagnostics(t *testing.T) {
	result, errs, diags := Compile("int main() { return y; }")
	assert.Nil(t, result)
	assert.Empty(t, errs)
	assert.NotEmpty(t, diags)
}

func TestResultDumpFormatsLabelsAndSteps(t *testing.T) {
	result, errs, diags := Compile("int main() { int x = 5; return x; }")
	require.Empty(t, errs)
	require.Empty(t, diags)

	dump := result.Dump()
	assert.Contains(t, dump, "main:")
	assert.NotContains(t, dump, "    main:", "labels print unindented, unlike steps")
}
