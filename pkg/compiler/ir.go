package compiler

import (
	"fmt"
	"strings"
)

// IROp is the operator carried by an Assign step. It is a narrower set
// than OpType: only the operators that actually reach an Assign survive
// here (comparisons, arithmetic, NEGATE, CALL, and NOP for a plain move).
type IROp int

const (
	IR_NEGATE IROp = iota
	IR_MULT
	IR_DIV
	IR_ADD
	IR_SUB
	IR_EQ
	IR_NEQ
	IR_LT
	IR_LTE
	IR_GT
	IR_GTE
	IR_CALL
	IR_NOP
)

var irOpNames = [...]string{
	IR_NEGATE: "NEGATE",
	IR_MULT:   "MULT",
	IR_DIV:    "DIV",
	IR_ADD:    "ADD",
	IR_SUB:    "SUB",
	IR_EQ:     "EQ",
	IR_NEQ:    "NEQ",
	IR_LT:     "LT",
	IR_LTE:    "LTE",
	IR_GT:     "GT",
	IR_GTE:    "GTE",
	IR_CALL:   "CALL",
	IR_NOP:    "NOP",
}

func (op IROp) String() string {
	if int(op) >= 0 && int(op) < len(irOpNames) {
		return irOpNames[op]
	}
	return fmt.Sprintf("IROp(%d)", int(op))
}

// IRStep is the closed variant of a single three-address-code instruction.
// As with Expr/Stmt, passes pattern-match with a type switch rather than a
// visitor.
type IRStep interface {
	irStepNode()
	String() string
}

// Label marks a jump target. Every Jump/JumpIf target must appear exactly
// once as a Label within its function's IR segment.
type Label struct{ Name string }

func (*Label) irStepNode()    {}
func (l *Label) String() string { return l.Name + ":" }

// Jump is an unconditional branch.
type Jump struct{ Target string }

func (*Jump) irStepNode()    {}
func (j *Jump) String() string { return "jump " + j.Target }

// JumpIf branches to Target when "A CmpOp B" holds. CmpOp is always one of
// the six comparison OpTypes (EQ, NEQ, LT, LTE, GT, GTE).
type JumpIf struct {
	Target string
	CmpOp  OpType
	A, B   string
}

func (*JumpIf) irStepNode() {}
func (j *JumpIf) String() string {
	return fmt.Sprintf("jumpif %s %s %s -> %s", j.A, j.CmpOp, j.B, j.Target)
}

// ReturnStep closes out a function's IR segment: every function ends with
// Label(return-label), ReturnStep.
type ReturnStep struct{}

func (*ReturnStep) irStepNode()    {}
func (*ReturnStep) String() string { return "return" }

// PushArg stages one call argument: either a literal value or an address.
type PushArg struct{ Value string }

func (*PushArg) irStepNode()    {}
func (p *PushArg) String() string { return "pusharg " + p.Value }

// CallFunc invokes a void-returning function for effect only.
type CallFunc struct{ Name string }

func (*CallFunc) irStepNode()    {}
func (c *CallFunc) String() string { return "call " + c.Name }

// Assign is "Dest = Op(Operands...)". NOP with one operand is a plain
// move/copy (used for identifier loads, the AND/OR boolean materialisation,
// and Binary ASSIGN's store into the target variable's address).
type Assign struct {
	Dest     string
	Op       IROp
	Operands []string
}

func (*Assign) irStepNode() {}
func (a *Assign) String() string {
	return fmt.Sprintf("%s = %s(%s)", a.Dest, a.Op, strings.Join(a.Operands, ", "))
}

// LoadConst loads an integer constant into Dest.
type LoadConst struct {
	Dest  string
	Value int
}

func (*LoadConst) irStepNode() {}
func (l *LoadConst) String() string {
	return fmt.Sprintf("%s = const %d", l.Dest, l.Value)
}

// AddrTable tracks the three reserved registers (A, B, C) plus on-demand
// synthetic temporaries a0, a1, …. allocate returns the first free reserved
// register if any, otherwise mints the next temporary; free toggles a
// reserved register back to available (temporaries are never recycled —
// the count only grows until reset, matching spec's allocate_addr wording).
type AddrTable struct {
	reservedOrder []string
	used          map[string]bool
	tempCount     int
}

func newAddrTable() *AddrTable {
	return &AddrTable{
		reservedOrder: []string{"A", "B", "C"},
		used:          map[string]bool{"A": false, "B": false, "C": false},
	}
}

func (t *AddrTable) allocate() string {
	for _, r := range t.reservedOrder {
		if !t.used[r] {
			t.used[r] = true
			return r
		}
	}
	addr := fmt.Sprintf("a%d", t.tempCount)
	t.tempCount++
	return addr
}

// free releases a reserved register back to the pool; it is a no-op for
// synthetic temporaries and for the "0" placeholder a void call yields.
func (t *AddrTable) free(addr string) {
	if _, ok := t.used[addr]; ok {
		t.used[addr] = false
	}
}

// reset clears the reserved-register usage table and drops accumulated
// temporaries. Called at every function entry: the original design left
// this table live across function boundaries, so later functions inherited
// whichever registers the previous function happened to leave marked used
// (see DESIGN.md).
func (t *AddrTable) reset() {
	for _, r := range t.reservedOrder {
		t.used[r] = false
	}
	t.tempCount = 0
}

// LabelGen produces the strictly increasing L0, L1, … sequence. It is never
// reset: labels are never reused across functions.
type LabelGen struct{ counter int }

func (g *LabelGen) next() string {
	l := fmt.Sprintf("L%d", g.counter)
	g.counter++
	return l
}
