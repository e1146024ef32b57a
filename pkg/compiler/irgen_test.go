package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, src string) []IRStep {
	t.Helper()
	decls, errs := Parse(src)
	require.Empty(t, errs)
	semTable, diags := Analyze(decls)
	require.Empty(t, diags)
	return Emit(decls, semTable)
}

// TestIRJumpTargetsResolveToExactlyOneLabel is the testable property: every
// Jump/JumpIf target appears exactly once as a Label within the IR.
func TestIRJumpTargetsResolveToExactlyOneLabel(t *testing.T) {
	steps := mustCompile(t, `int main() { if (1 == 1) { return 1; } else { return 0; } }`)

	counts := map[string]int{}
	for _, s := range steps {
		if l, ok := s.(*Label); ok {
			counts[l.Name]++
		}
	}
	for _, s := range steps {
		switch n := s.(type) {
		case *Jump:
			assert.Equalf(t, 1, counts[n.Target], "jump target %q", n.Target)
		case *JumpIf:
			assert.Equalf(t, 1, counts[n.Target], "jumpif target %q", n.Target)
		}
	}
}

// TestIRFunctionHasOneLabelAndReturn is the testable property: one
// Label(funcName) and one ReturnStep per function declaration.
func TestIRFunctionHasOneLabelAndReturn(t *testing.T) {
	steps := mustCompile(t, `int add(int a, int b) { return a + b; } int main() { return add(1, 2); }`)

	labelCount := map[string]int{}
	returnCount := 0
	for _, s := range steps {
		switch n := s.(type) {
		case *Label:
			labelCount[n.Name]++
		case *ReturnStep:
			returnCount++
		}
	}
	assert.Equal(t, 1, labelCount["add"])
	assert.Equal(t, 1, labelCount["main"])
	assert.Equal(t, 2, returnCount)
}

// Scenario 1 from spec: a variable declaration, a return, and the standard
// function prologue/epilogue shape.
func TestIRScenarioSimpleFunction(t *testing.T) {
	steps := mustCompile(t, `int main() { int x = 5; return x; }`)

	require.NotEmpty(t, steps)
	label, ok := steps[0].(*Label)
	require.True(t, ok)
	assert.Equal(t, "main", label.Name)

	var sawLoadConst5, sawAssignNOP, sawReturn bool
	for _, s := range steps {
		switch n := s.(type) {
		case *LoadConst:
			if n.Value == 5 {
				sawLoadConst5 = true
			}
		case *Assign:
			if n.Op == IR_NOP {
				sawAssignNOP = true
			}
		case *ReturnStep:
			sawReturn = true
		}
	}
	assert.True(t, sawLoadConst5, "expected LoadConst(_, 5)")
	assert.True(t, sawAssignNOP, "expected an Assign(_, NOP, [_]) binding x")
	assert.True(t, sawReturn)

	last := steps[len(steps)-1]
	_, ok = last.(*ReturnStep)
	assert.True(t, ok, "function segment should end with ReturnStep")
}

// Scenario 2 from spec: a call pushes its literal arguments and yields an
// Assign(dest, CALL, [name]).
func TestIRScenarioCallPushesArgsAndAssignsCall(t *testing.T) {
	steps := mustCompile(t, `int add(int a, int b) { return a + b; } int main() { return add(1, 2); }`)

	var pushed []string
	var sawCall bool
	for _, s := range steps {
		switch n := s.(type) {
		case *PushArg:
			pushed = append(pushed, n.Value)
		case *Assign:
			if n.Op == IR_CALL {
				require.Equal(t, []string{"add"}, n.Operands)
				sawCall = true
			}
		}
	}
	assert.Contains(t, pushed, "1")
	assert.Contains(t, pushed, "2")
	assert.True(t, sawCall)
}

// Scenario 3 from spec: if/else lowers to JumpIf(falsy, EQ, 0, c), the
// then-block, Jump(truthy), Label(falsy), the else-block, Label(truthy).
func TestIRScenarioIfElse(t *testing.T) {
	steps := mustCompile(t, `int main() { if (1 == 1) { return 1; } else { return 0; } }`)

	var jumpIfIdx, jumpIdx, falsyIdx, truthyIdx int = -1, -1, -1, -1
	var falsyName, truthyName string
	lastJumpIdx, lastJumpTarget := -1, ""

	for i, s := range steps {
		switch n := s.(type) {
		case *JumpIf:
			if jumpIfIdx == -1 {
				jumpIfIdx = i
				assert.Equal(t, OP_EQ, n.CmpOp)
				assert.Equal(t, "0", n.A)
				falsyName = n.Target
			}
		case *Jump:
			lastJumpIdx, lastJumpTarget = i, n.Target
		case *Label:
			if falsyName != "" && n.Name == falsyName {
				falsyIdx = i
				// Jump(truthy) is the step right before Label(falsy); earlier
				// Jumps are the then-block's own return jumps.
				jumpIdx, truthyName = lastJumpIdx, lastJumpTarget
			} else if truthyName != "" && n.Name == truthyName {
				truthyIdx = i
			}
		}
	}

	require.NotEqual(t, -1, jumpIfIdx)
	require.NotEqual(t, -1, jumpIdx)
	require.NotEqual(t, -1, falsyIdx)
	require.NotEqual(t, -1, truthyIdx)
	assert.True(t, jumpIfIdx < jumpIdx)
	assert.Equal(t, falsyIdx-1, jumpIdx)
	assert.True(t, falsyIdx < truthyIdx)
}

// Scenario 4 from spec: 1 && 0 produces two inverse-jumps to a shared falsy
// label, a truthy path setting dest=1 with a jump past, a falsy label
// setting dest=0, and a final label.
func TestIRScenarioShortCircuitAnd(t *testing.T) {
	steps := mustCompile(t, `int main() { int x = 1 && 0; return x; }`)

	var jumpIfs []*JumpIf
	for _, s := range steps {
		if n, ok := s.(*JumpIf); ok {
			jumpIfs = append(jumpIfs, n)
		}
	}
	require.Len(t, jumpIfs, 2)
	assert.Equal(t, jumpIfs[0].Target, jumpIfs[1].Target, "both branches of && share one falsy label")

	var sawSetOne, sawSetZero bool
	for _, s := range steps {
		if a, ok := s.(*Assign); ok && a.Op == IR_NOP {
			if len(a.Operands) == 1 && a.Operands[0] == "1" {
				sawSetOne = true
			}
			if len(a.Operands) == 1 && a.Operands[0] == "0" {
				sawSetZero = true
			}
		}
	}
	assert.True(t, sawSetOne)
	assert.True(t, sawSetZero)
}

func TestIRScenarioShortCircuitOrIsSymmetricToAnd(t *testing.T) {
	steps := mustCompile(t, `int main() { int x = 1 || 0; return x; }`)

	var jumpIfs []*JumpIf
	for _, s := range steps {
		if n, ok := s.(*JumpIf); ok {
			jumpIfs = append(jumpIfs, n)
		}
	}
	require.Len(t, jumpIfs, 2)
	assert.Equal(t, jumpIfs[0].Target, jumpIfs[1].Target, "both branches of || share one truthy label")
}

func TestIRFunctionParametersGetPlaceholderLoadConst(t *testing.T) {
	steps := mustCompile(t, `int add(int a, int b) { return a + b; }`)

	zeroLoads := 0
	for _, s := range steps {
		if lc, ok := s.(*LoadConst); ok && lc.Value == 0 {
			zeroLoads++
		}
	}
	assert.Equal(t, 2, zeroLoads)
}

// TestIRGlobalVariableGetsOwnAddressNamespace pins the dedicated "g<N>"
// address space for top-level variables: it must not collide with any
// reserved register a function's AddrTable hands out, and it must stay
// resolvable (via nameAddr seeded from globalAddr) inside a function body
// that references it.
func TestIRGlobalVariableGetsOwnAddressNamespace(t *testing.T) {
	steps := mustCompile(t, `int g = 5; int main() { return g; }`)

	labelIdx := -1
	var globalInit *Assign
	for i, s := range steps {
		if a, ok := s.(*Assign); ok && a.Dest == "g0" && a.Op == IR_NOP {
			globalInit = a
		}
		if l, ok := s.(*Label); ok && l.Name == "main" {
			labelIdx = i
		}
	}
	require.NotNil(t, globalInit, "expected an Assign binding g0, the global's dedicated address")
	require.NotEqual(t, -1, labelIdx)

	var sawGlobalLoad bool
	for _, s := range steps[labelIdx+1:] {
		if a, ok := s.(*Assign); ok && a.Op == IR_NOP && len(a.Operands) == 1 && a.Operands[0] == "g0" {
			sawGlobalLoad = true
		}
		if lc, ok := s.(*LoadConst); ok {
			assert.NotEqual(t, "g0", lc.Dest, "a reserved-register LoadConst must never target the global's address")
		}
	}
	assert.True(t, sawGlobalLoad, "main should read g through its seeded nameAddr binding")
}

func TestAddrTableResetsAcrossFunctions(t *testing.T) {
	table := newAddrTable()
	a := table.allocate()
	b := table.allocate()
	assert.NotEqual(t, a, b)
	table.reset()
	c := table.allocate()
	assert.Equal(t, "A", c, "reset should make the first reserved register available again")
}

func TestLabelGenNeverRepeats(t *testing.T) {
	var gen LabelGen
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		l := gen.next()
		assert.False(t, seen[l])
		seen[l] = true
	}
}
