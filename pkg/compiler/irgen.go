package compiler

import "strconv"

// Emitter lowers a parsed, analysed program into a flat slice of IRStep.
// Address allocation and label generation follow AddrTable/LabelGen; the
// per-function name→address map is reseeded from globalAddr on every
// function entry and discarded at function exit, so a local never leaks
// into the next function's scope while a top-level variable stays visible
// everywhere (see DESIGN.md on why globals get their own address space).
type Emitter struct {
	semTable map[string]*Scope

	steps  []IRStep
	addrs  *AddrTable
	labels LabelGen

	nameAddr   map[string]string
	globalAddr map[string]string
	globalSeq  int

	retStack []string
}

// Emit runs the IR emitter over a fully parsed and analysed program. semTable
// is the output of Analyze, used to resolve a callee's return type (VOID
// calls lower to CallFunc; anything else lowers to an Assign with IR_CALL).
func Emit(decls []Stmt, semTable map[string]*Scope) []IRStep {
	e := &Emitter{
		semTable:   semTable,
		addrs:      newAddrTable(),
		nameAddr:   map[string]string{},
		globalAddr: map[string]string{},
	}
	for _, d := range decls {
		e.emitTopLevel(d)
	}
	return e.steps
}

func (e *Emitter) emit(step IRStep) { e.steps = append(e.steps, step) }

func (e *Emitter) emitTopLevel(s Stmt) {
	switch n := s.(type) {
	case *FunctionDecl:
		e.emitFunctionDecl(n)
	case *VariableDecl:
		e.emitGlobalVariableDecl(n)
	}
}

// emitGlobalVariableDecl gives a top-level variable its own address out of a
// namespace the per-function AddrTable.reset() never touches ("g0", "g1", …):
// a global bound to a reserved register would have that register's contents
// stomped by the first function whose own reset() clears it.
func (e *Emitter) emitGlobalVariableDecl(d *VariableDecl) {
	addr := "g" + strconv.Itoa(e.globalSeq)
	e.globalSeq++
	e.globalAddr[d.Name] = addr
	e.nameAddr = cloneAddrMap(e.globalAddr)
	v := e.emitExpr(d.Init)
	e.emit(&Assign{Dest: addr, Op: IR_NOP, Operands: []string{v}})
	e.addrs.free(v)
}

// emitFunctionDecl resets the address table, seeds the name map from the
// globals recorded so far, binds parameters, lowers the body, and closes
// with the function's return label and a ReturnStep.
func (e *Emitter) emitFunctionDecl(f *FunctionDecl) {
	e.addrs.reset()
	e.nameAddr = cloneAddrMap(e.globalAddr)

	e.emit(&Label{Name: f.Name})
	for _, p := range f.Params {
		addr := e.addrs.allocate()
		e.nameAddr[p.Name] = addr
		e.emit(&LoadConst{Dest: addr, Value: 0})
	}

	retLabel := e.labels.next()
	e.retStack = append(e.retStack, retLabel)

	e.emitBlock(f.Body)

	e.retStack = e.retStack[:len(e.retStack)-1]
	e.emit(&Label{Name: retLabel})
	e.emit(&ReturnStep{})

	e.nameAddr = nil
}

func cloneAddrMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (e *Emitter) emitBlock(b *Block) {
	for _, s := range b.Stmts {
		e.emitStmt(s)
	}
}

func (e *Emitter) emitStmt(s Stmt) {
	switch n := s.(type) {
	case *VariableDecl:
		e.emitLocalVariableDecl(n)
	case *If:
		e.emitIf(n)
	case *Return:
		e.emitReturn(n)
	case *ExprStmt:
		e.emitExprStmt(n)
	case *Block:
		e.emitBlock(n)
	}
}

func (e *Emitter) emitLocalVariableDecl(d *VariableDecl) {
	addr := e.addrs.allocate()
	e.nameAddr[d.Name] = addr
	v := e.emitExpr(d.Init)
	e.emit(&Assign{Dest: addr, Op: IR_NOP, Operands: []string{v}})
	e.addrs.free(v)
}

// emitIf always materialises the condition and branches on equality with
// zero — unlike AND/OR, the If lowering rule doesn't special-case a
// comparison condition with an inverse jump.
func (e *Emitter) emitIf(i *If) {
	falsy := e.labels.next()
	c := e.emitExpr(i.Cond)
	e.emit(&JumpIf{Target: falsy, CmpOp: OP_EQ, A: "0", B: c})
	e.addrs.free(c)

	e.emitBlock(i.Then)

	if i.Else != nil {
		truthy := e.labels.next()
		e.emit(&Jump{Target: truthy})
		e.emit(&Label{Name: falsy})
		e.emitBlock(i.Else)
		e.emit(&Label{Name: truthy})
	} else {
		e.emit(&Label{Name: falsy})
	}
}

// emitReturn lowers to a jump to the function's return label. The base IR
// step set has no reserved register for carrying a return value back to the
// caller (only A, B, C, which belong to the callee's own expression
// evaluation), so the expression is evaluated for any side effects (a call
// in tail position, for instance) and its value is discarded — see
// DESIGN.md for why the RET-register extension was not adopted.
func (e *Emitter) emitReturn(r *Return) {
	v := e.emitExpr(r.Expr)
	e.addrs.free(v)
	e.emit(&Jump{Target: e.retStack[len(e.retStack)-1]})
}

// emitExprStmt only lowers the wrapped expression when it is a call or an
// assignment; any other outer op was already rejected by the semantic
// analyser as a dead temporary and never reaches here in a valid program.
func (e *Emitter) emitExprStmt(es *ExprStmt) {
	if es.OuterOp != OP_CALL && es.OuterOp != OP_ASSIGN {
		return
	}
	v := e.emitExpr(es.Expr)
	e.addrs.free(v)
}

func (e *Emitter) emitExpr(expr Expr) string {
	switch n := expr.(type) {
	case *Literal:
		return e.emitLiteral(n)
	case *Unary:
		return e.emitUnary(n)
	case *Binary:
		return e.emitBinary(n)
	case *Call:
		return e.emitCall(n)
	default:
		return ""
	}
}

func (e *Emitter) emitLiteral(l *Literal) string {
	switch l.Kind {
	case LitInt:
		dest := e.addrs.allocate()
		e.emit(&LoadConst{Dest: dest, Value: parseIntLexeme(l.Text)})
		return dest

	case LitChar:
		dest := e.addrs.allocate()
		e.emit(&LoadConst{Dest: dest, Value: charOrd(l.Text)})
		return dest

	case LitIdent:
		// The data model's LoadConst(addr, value) wants a numeric value; a
		// name reference has no numeral to load. Substituting a plain
		// Assign(dest, NOP, [bound-addr]) is the "direct move" the spec
		// explicitly allows in place of a literal address-load (see
		// DESIGN.md).
		bound, ok := e.nameAddr[l.Text]
		if !ok {
			return "0"
		}
		dest := e.addrs.allocate()
		e.emit(&Assign{Dest: dest, Op: IR_NOP, Operands: []string{bound}})
		return dest

	default:
		return "0"
	}
}

func (e *Emitter) emitUnary(u *Unary) string {
	src := e.emitExpr(u.Inner)
	dest := e.addrs.allocate()
	e.emit(&Assign{Dest: dest, Op: IR_NEGATE, Operands: []string{src}})
	e.addrs.free(src)
	return dest
}

func (e *Emitter) emitBinary(b *Binary) string {
	switch b.Op {
	case OP_ASSIGN:
		return e.emitAssignExpr(b)
	case OP_AND:
		return e.emitAnd(b)
	case OP_OR:
		return e.emitOr(b)
	default:
		return e.emitArithCompare(b)
	}
}

var binOpToIR = map[OpType]IROp{
	OP_MULT: IR_MULT, OP_DIV: IR_DIV, OP_ADD: IR_ADD, OP_SUB: IR_SUB,
	OP_EQ: IR_EQ, OP_NEQ: IR_NEQ, OP_LT: IR_LT, OP_LTE: IR_LTE, OP_GT: IR_GT, OP_GTE: IR_GTE,
}

func (e *Emitter) emitArithCompare(b *Binary) string {
	a := e.emitExpr(b.LHS)
	rhs := e.emitExpr(b.RHS)
	dest := e.addrs.allocate()
	e.emit(&Assign{Dest: dest, Op: binOpToIR[b.Op], Operands: []string{a, rhs}})
	e.addrs.free(a)
	e.addrs.free(rhs)
	return dest
}

// emitAssignExpr stores into the already-bound address of the target
// variable (resolved by the semantic analyser's ASSIGN rule to a declared
// variable) rather than minting a fresh address — a reassignment has to
// land in the variable's existing storage, or every later read would miss
// it.
func (e *Emitter) emitAssignExpr(b *Binary) string {
	lit := b.LHS.(*Literal)
	dest, ok := e.nameAddr[lit.Text]
	if !ok {
		dest = e.addrs.allocate()
	}
	v := e.emitExpr(b.RHS)
	e.emit(&Assign{Dest: dest, Op: IR_NOP, Operands: []string{v}})
	e.addrs.free(v)
	return dest
}

// inverseJump branches to target when expr is falsy. A comparison operand
// branches directly on its inverted operator; anything else is materialised
// into a temporary and compared against zero.
func (e *Emitter) inverseJump(expr Expr, target string) {
	if bin, ok := expr.(*Binary); ok && bin.Op.isComparison() {
		a := e.emitExpr(bin.LHS)
		b := e.emitExpr(bin.RHS)
		e.emit(&JumpIf{Target: target, CmpOp: cmpInverses[bin.Op], A: a, B: b})
		e.addrs.free(a)
		e.addrs.free(b)
		return
	}
	t := e.emitExpr(expr)
	e.emit(&JumpIf{Target: target, CmpOp: OP_EQ, A: "0", B: t})
	e.addrs.free(t)
}

// directJump branches to target when expr is truthy — the mirror image of
// inverseJump, used by OR.
func (e *Emitter) directJump(expr Expr, target string) {
	if bin, ok := expr.(*Binary); ok && bin.Op.isComparison() {
		a := e.emitExpr(bin.LHS)
		b := e.emitExpr(bin.RHS)
		e.emit(&JumpIf{Target: target, CmpOp: bin.Op, A: a, B: b})
		e.addrs.free(a)
		e.addrs.free(b)
		return
	}
	t := e.emitExpr(expr)
	e.emit(&JumpIf{Target: target, CmpOp: OP_NEQ, A: "0", B: t})
	e.addrs.free(t)
}

// emitAnd short-circuits: either side being falsy skips straight to setting
// the result to 0.
func (e *Emitter) emitAnd(b *Binary) string {
	dest := e.addrs.allocate()
	falsy := e.labels.next()
	truthy := e.labels.next()

	e.inverseJump(b.LHS, falsy)
	e.inverseJump(b.RHS, falsy)
	e.emit(&Assign{Dest: dest, Op: IR_NOP, Operands: []string{"1"}})
	e.emit(&Jump{Target: truthy})
	e.emit(&Label{Name: falsy})
	e.emit(&Assign{Dest: dest, Op: IR_NOP, Operands: []string{"0"}})
	e.emit(&Label{Name: truthy})
	return dest
}

// emitOr is symmetric to emitAnd: either side being truthy skips straight to
// setting the result to 1. (The original lowering reused AND's falsy label
// for OR's truthy path, which made OR resolve to true only when BOTH sides
// were false's negation rather than when either side held — this shape
// keeps OR and AND structurally mirror images of each other instead.)
func (e *Emitter) emitOr(b *Binary) string {
	dest := e.addrs.allocate()
	truthy := e.labels.next()
	end := e.labels.next()

	e.directJump(b.LHS, truthy)
	e.directJump(b.RHS, truthy)
	e.emit(&Assign{Dest: dest, Op: IR_NOP, Operands: []string{"0"}})
	e.emit(&Jump{Target: end})
	e.emit(&Label{Name: truthy})
	e.emit(&Assign{Dest: dest, Op: IR_NOP, Operands: []string{"1"}})
	e.emit(&Label{Name: end})
	return dest
}

// emitCall pushes each argument (literals by value, everything else by
// address) then either calls for effect (VOID callee) or assigns the call's
// result to a fresh address.
func (e *Emitter) emitCall(call *Call) string {
	for _, arg := range call.Args {
		if lit, ok := arg.(*Literal); ok && (lit.Kind == LitInt || lit.Kind == LitChar) {
			e.emit(&PushArg{Value: strconv.Itoa(litValue(lit))})
			continue
		}
		addr := e.emitExpr(arg)
		e.emit(&PushArg{Value: addr})
		e.addrs.free(addr)
	}

	if e.calleeReturnType(call.Callee) == VOID {
		e.emit(&CallFunc{Name: call.Callee})
		return "0"
	}
	dest := e.addrs.allocate()
	e.emit(&Assign{Dest: dest, Op: IR_CALL, Operands: []string{call.Callee}})
	return dest
}

func (e *Emitter) calleeReturnType(name string) DataType {
	global, ok := e.semTable[".global"]
	if !ok {
		return VOID
	}
	sym, ok := global.Symbols[name]
	if !ok {
		return VOID
	}
	return sym.Type
}

// parseIntLexeme accepts the lexer's permissive numeric-literal lexeme
// (digits with an optional embedded '.', e.g. "1.2") and reads only the
// digit runs, so "1.2" and "12" parse to the same value.
func parseIntLexeme(lexeme string) int {
	digits := make([]byte, 0, len(lexeme))
	for i := 0; i < len(lexeme); i++ {
		c := lexeme[i]
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 {
		return 0
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0
	}
	return n
}

// charOrd extracts the ordinal of a char literal's single inner rune from
// its quoted lexeme, e.g. 'a' -> 97.
func charOrd(lexeme string) int {
	runes := []rune(lexeme)
	if len(runes) < 3 {
		return 0
	}
	return int(runes[1])
}

func litValue(l *Literal) int {
	if l.Kind == LitChar {
		return charOrd(l.Text)
	}
	return parseIntLexeme(l.Text)
}
