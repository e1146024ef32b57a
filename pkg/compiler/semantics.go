package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Role distinguishes a variable binding from a function binding in a scope.
type Role int

const (
	ROLE_VAR Role = iota
	ROLE_FUNC
)

var roleNames = [...]string{ROLE_VAR: "VAR", ROLE_FUNC: "FUNC"}

func (r Role) String() string { return roleNames[r] }

// Symbol is a scope entry: (in_global, role, data_type, extras). ParamTypes
// is only meaningful for ROLE_FUNC — the ordered declared parameter types,
// used for call arity/type checking; Arity() reads its length.
type Symbol struct {
	InGlobal   bool
	Role       Role
	Type       DataType
	ParamTypes []DataType
}

func (s *Symbol) Arity() int { return len(s.ParamTypes) }

// Scope is a name-to-symbol mapping, tagged with the name it is published
// under in the semantics table (".global", or a function name).
type Scope struct {
	Name    string
	Symbols map[string]*Symbol
}

func newScope(name string) *Scope {
	return &Scope{Name: name, Symbols: make(map[string]*Symbol)}
}

// String renders a deterministically sorted dump, for debug tooling.
func (sc *Scope) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scope %q:\n", sc.Name)
	names := make([]string, 0, len(sc.Symbols))
	for name := range sc.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sym := sc.Symbols[name]
		fmt.Fprintf(&sb, "  %-16s role=%-4s type=%s\n", name, sym.Role, sym.Type)
	}
	return sb.String()
}

// ScopeStore holds the distinguished global scope plus at most one active
// function scope — there is no block scoping (spec.md's deliberate
// simplification), so nested blocks within a function body all share that
// one scope. The global scope is kept physically separate rather than
// modeled as "scope index 0" of a stack.
type ScopeStore struct {
	Global *Scope
	active *Scope
}

func NewScopeStore() *ScopeStore {
	return &ScopeStore{Global: newScope(".global")}
}

func (s *ScopeStore) EnterFunction(name string) { s.active = newScope(name) }
func (s *ScopeStore) ExitFunction()              { s.active = nil }

// ScopeName returns the name of whichever scope is current.
func (s *ScopeStore) ScopeName() string {
	if s.active != nil {
		return s.active.Name
	}
	return s.Global.Name
}

func (s *ScopeStore) current() *Scope {
	if s.active != nil {
		return s.active
	}
	return s.Global
}

// Define inserts sym into the current scope (the active function scope, or
// global if there is none).
func (s *ScopeStore) Define(name string, sym *Symbol) {
	s.current().Symbols[name] = sym
}

// DefineGlobal always inserts into the global scope, regardless of whether
// a function scope is active — used for function declarations themselves,
// since callees are always resolved in .global.
func (s *ScopeStore) DefineGlobal(name string, sym *Symbol) {
	s.Global.Symbols[name] = sym
}

// Lookup resolves name in the active function scope first, then global.
func (s *ScopeStore) Lookup(name string) (*Symbol, bool) {
	if s.active != nil {
		if sym, ok := s.active.Symbols[name]; ok {
			return sym, true
		}
	}
	sym, ok := s.Global.Symbols[name]
	return sym, ok
}

// LookupGlobal resolves name only in the global scope — callees are always
// looked up here, never in the caller's local scope.
func (s *ScopeStore) LookupGlobal(name string) (*Symbol, bool) {
	sym, ok := s.Global.Symbols[name]
	return sym, ok
}

// legalityTable indexes [op][type] (CHAR, INT, VOID, UNKNOWN_TYPE order, matching
// the DataType iota) per spec.md's four-column legality table: CALL is
// illegal everywhere (a Call expression's type comes from its callee, not
// this table); arithmetic/NEG are INT-only; comparisons and the remaining
// nullary/logical/assignment ops accept CHAR or INT.
var legalityTable = map[OpType][4]bool{
	OP_CALL:   {false, false, false, false},
	OP_NEG:    {false, true, false, false},
	OP_MULT:   {false, true, false, false},
	OP_DIV:    {false, true, false, false},
	OP_ADD:    {false, true, false, false},
	OP_SUB:    {false, true, false, false},
	OP_EQ:     {true, true, false, false},
	OP_NEQ:    {true, true, false, false},
	OP_LT:     {true, true, false, false},
	OP_LTE:    {true, true, false, false},
	OP_GT:     {true, true, false, false},
	OP_GTE:    {true, true, false, false},
	OP_AND:    {true, true, false, false},
	OP_OR:     {true, true, false, false},
	OP_ASSIGN: {true, true, false, false},
	OP_NONE:   {true, true, false, false},
}

func legal(op OpType, t DataType) bool {
	row, ok := legalityTable[op]
	if !ok || int(t) < 0 || int(t) >= len(row) {
		return false
	}
	return row[t]
}

// promote implements the binary result-type policy, applied only after
// legality has already been decided: any VOID poisons to VOID, any INT with
// a non-VOID partner widens to INT, and CHAR+CHAR stays CHAR.
func promote(lt, rt DataType) DataType {
	if lt == VOID || rt == VOID {
		return VOID
	}
	if lt == rt {
		return lt
	}
	if lt == INT || rt == INT {
		return INT
	}
	return CHAR
}

// SemanticChecker is a tree walker holding a ScopeStore and a running
// diagnostic list. Analyze drives it over a parsed program and returns the
// published semantics table plus every diagnostic collected.
type SemanticChecker struct {
	scopes   *ScopeStore
	semTable map[string]*Scope
	diags    []Diagnostic
}

func NewSemanticChecker() *SemanticChecker {
	return &SemanticChecker{scopes: NewScopeStore(), semTable: make(map[string]*Scope)}
}

func (c *SemanticChecker) addDiag(symbol, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Symbol:  symbol,
		Scope:   c.scopes.ScopeName(),
		Message: fmt.Sprintf(format, args...),
	})
}

// Analyze runs semantic analysis over a parsed program, in source order.
// It always returns a semantics table, even when diags is non-empty — a
// non-empty diagnostic list is the caller's signal not to proceed to IR
// emission (spec.md §7).
func Analyze(decls []Stmt) (map[string]*Scope, []Diagnostic) {
	c := NewSemanticChecker()
	for _, d := range decls {
		c.checkTopLevel(d)
	}
	c.semTable[".global"] = c.scopes.Global
	return c.semTable, c.diags
}

func (c *SemanticChecker) checkTopLevel(s Stmt) {
	switch n := s.(type) {
	case *VariableDecl:
		c.checkVariableDecl(n)
	case *FunctionDecl:
		c.checkFunctionDecl(n)
	default:
		c.addDiag("", "%T is not allowed at global scope", n)
	}
}

func (c *SemanticChecker) checkVariableDecl(d *VariableDecl) {
	initType := c.inferExpr(d.Init)
	if !legal(OP_ASSIGN, d.Type) || !legal(OP_ASSIGN, initType) {
		c.addDiag(d.Name, "cannot initialise %s variable with %s value", d.Type, initType)
	}
	c.scopes.Define(d.Name, &Symbol{InGlobal: c.scopes.active == nil, Role: ROLE_VAR, Type: d.Type})
}

// checkFunctionDecl inserts the function's own symbol into .global before
// analysing its body, so direct self-recursion resolves; mutual recursion
// between two functions declared out of order is a later undefined-name
// error, matching spec.md §4.3's documented single-pass limitation.
func (c *SemanticChecker) checkFunctionDecl(f *FunctionDecl) {
	paramTypes := make([]DataType, len(f.Params))
	for i, p := range f.Params {
		paramTypes[i] = p.Type
	}
	c.scopes.DefineGlobal(f.Name, &Symbol{InGlobal: true, Role: ROLE_FUNC, Type: f.ReturnType, ParamTypes: paramTypes})

	c.scopes.EnterFunction(f.Name)
	for _, p := range f.Params {
		c.scopes.Define(p.Name, &Symbol{InGlobal: false, Role: ROLE_VAR, Type: p.Type})
	}
	c.checkBlock(f.Body)
	c.semTable[f.Name] = c.scopes.active
	c.scopes.ExitFunction()
}

func (c *SemanticChecker) checkBlock(b *Block) {
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
}

func (c *SemanticChecker) checkStmt(s Stmt) {
	switch n := s.(type) {
	case *VariableDecl:
		c.checkVariableDecl(n)
	case *If:
		c.checkIf(n)
	case *Return:
		c.checkReturn(n)
	case *ExprStmt:
		c.checkExprStmt(n)
	case *Block:
		c.checkBlock(n)
	default:
		c.addDiag("", "unsupported statement %T", n)
	}
}

func (c *SemanticChecker) checkIf(i *If) {
	if c.scopes.active == nil {
		c.addDiag("", "if statement not allowed at global scope")
		return
	}
	c.inferExpr(i.Cond)
	c.checkBlock(i.Then)
	if i.Else != nil {
		c.checkBlock(i.Else)
	}
}

func (c *SemanticChecker) checkReturn(r *Return) {
	if c.scopes.active == nil {
		c.addDiag("", "return statement not allowed at global scope")
		return
	}
	typ := c.inferExpr(r.Expr)
	sym, ok := c.scopes.LookupGlobal(c.scopes.active.Name)
	if !ok {
		return
	}
	if typ != sym.Type {
		c.addDiag(c.scopes.active.Name, "return type mismatch: function declares %s, expression is %s", sym.Type, typ)
	}
}

// checkExprStmt recomputes OuterOp from the wrapped expression's own
// OuterOp() and rejects anything other than CALL/ASSIGN as a dead
// temporary — see ast.go's ExprStmt doc comment for why this lives here
// instead of in the parser.
func (c *SemanticChecker) checkExprStmt(e *ExprStmt) {
	if c.scopes.active == nil {
		c.addDiag("", "expression statement not allowed at global scope")
		return
	}
	c.inferExpr(e.Expr)
	e.OuterOp = e.Expr.OuterOp()
	if e.OuterOp != OP_CALL && e.OuterOp != OP_ASSIGN {
		c.addDiag("", "expression statement with outer op %s is a dead temporary", e.OuterOp)
	}
}

// inferExpr returns an expression's DataType, recording any diagnostics
// along the way; it mirrors spec.md's (optional-name, DataType) pair by
// mutating Literal.Type in place instead of threading a name out.
func (c *SemanticChecker) inferExpr(e Expr) DataType {
	switch n := e.(type) {
	case *Literal:
		return c.inferLiteral(n)
	case *Unary:
		return c.inferUnary(n)
	case *Binary:
		return c.inferBinary(n)
	case *Call:
		return c.inferCall(n)
	default:
		return UNKNOWN_TYPE
	}
}

func (c *SemanticChecker) inferLiteral(l *Literal) DataType {
	switch l.Kind {
	case LitInt:
		l.Type = INT
		return INT
	case LitChar:
		l.Type = CHAR
		return CHAR
	case LitIdent:
		sym, ok := c.scopes.Lookup(l.Text)
		if !ok {
			c.addDiag(l.Text, "undefined name")
			l.Type = VOID
			return VOID
		}
		if sym.Role == ROLE_FUNC {
			c.addDiag(l.Text, "function used as a value outside a call")
			l.Type = VOID
			return VOID
		}
		l.Type = sym.Type
		return sym.Type
	default:
		return UNKNOWN_TYPE
	}
}

func (c *SemanticChecker) inferUnary(u *Unary) DataType {
	inner := c.inferExpr(u.Inner)
	if !legal(u.Op, inner) {
		c.addDiag("", "operator %s is not legal on type %s", u.Op, inner)
		return VOID
	}
	return inner
}

func (c *SemanticChecker) inferBinary(b *Binary) DataType {
	if b.Op == OP_ASSIGN {
		return c.inferAssign(b)
	}

	lt := c.reResolve(b.LHS, c.inferExpr(b.LHS))
	rt := c.reResolve(b.RHS, c.inferExpr(b.RHS))

	if !legal(b.Op, lt) || !legal(b.Op, rt) {
		c.addDiag("", "operator %s is not legal on types %s, %s", b.Op, lt, rt)
		return VOID
	}
	return promote(lt, rt)
}

// reResolve re-looks-up a name sub-expression's type in the current scope,
// per spec.md §4.3: "if either sub-expression is a name, its type is
// re-looked-up ... to pick up the symbol-table type rather than the AST's
// initial UNKNOWN."
func (c *SemanticChecker) reResolve(e Expr, fallback DataType) DataType {
	lit, ok := e.(*Literal)
	if !ok || lit.Kind != LitIdent {
		return fallback
	}
	if sym, ok := c.scopes.Lookup(lit.Text); ok {
		return sym.Type
	}
	return fallback
}

// inferAssign enforces the ASSIGN rule: the lhs must be an identifier
// resolving to a declared variable whose type is neither VOID nor UNKNOWN_TYPE.
func (c *SemanticChecker) inferAssign(b *Binary) DataType {
	lit, ok := b.LHS.(*Literal)
	if !ok || lit.Kind != LitIdent {
		c.addDiag("", "assignment target must be a variable name")
		c.inferExpr(b.RHS)
		return VOID
	}

	sym, found := c.scopes.Lookup(lit.Text)
	if !found {
		c.addDiag(lit.Text, "undefined name")
		c.inferExpr(b.RHS)
		return VOID
	}
	if sym.Role != ROLE_VAR || sym.Type == VOID || sym.Type == UNKNOWN_TYPE {
		c.addDiag(lit.Text, "assignment target is not an assignable variable")
		c.inferExpr(b.RHS)
		return VOID
	}
	lit.Type = sym.Type

	rt := c.inferExpr(b.RHS)
	if !legal(OP_ASSIGN, sym.Type) || !legal(OP_ASSIGN, rt) {
		c.addDiag(lit.Text, "cannot assign %s to %s", rt, sym.Type)
		return VOID
	}
	return promote(sym.Type, rt)
}

// inferCall resolves the callee in the global scope, checks arity and each
// argument's type against the declared parameter types, and yields the
// callee's declared return type.
func (c *SemanticChecker) inferCall(call *Call) DataType {
	sym, ok := c.scopes.LookupGlobal(call.Callee)
	if !ok || sym.Role != ROLE_FUNC {
		c.addDiag(call.Callee, "call to undefined function")
		for _, a := range call.Args {
			c.inferExpr(a)
		}
		return VOID
	}

	if len(call.Args) != sym.Arity() {
		c.addDiag(call.Callee, "expected %d arguments, got %d", sym.Arity(), len(call.Args))
		for _, a := range call.Args {
			c.inferExpr(a)
		}
		return VOID
	}

	mismatch := false
	for i, a := range call.Args {
		if at := c.inferExpr(a); at != sym.ParamTypes[i] {
			mismatch = true
		}
	}
	if mismatch {
		c.addDiag(call.Callee, "argument type mismatch")
		return VOID
	}
	return sym.Type
}
