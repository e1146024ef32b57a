package compiler

import "fmt"

// DataType is the closed set of types this language recognises. UNKNOWN_TYPE is
// an internal sentinel used during analysis; it never survives to the IR
// emitter for a well-typed program.
type DataType int

const (
	CHAR DataType = iota
	INT
	VOID
	UNKNOWN_TYPE
)

var dataTypeNames = [...]string{
	CHAR:         "char",
	INT:          "int",
	VOID:         "void",
	UNKNOWN_TYPE: "unknown",
}

func (d DataType) String() string {
	if int(d) >= 0 && int(d) < len(dataTypeNames) {
		return dataTypeNames[d]
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// OpType is the closed set of operator descriptors an expression can carry.
type OpType int

const (
	OP_CALL OpType = iota
	OP_NEG
	OP_MULT
	OP_DIV
	OP_ADD
	OP_SUB
	OP_EQ
	OP_NEQ
	OP_LT
	OP_LTE
	OP_GT
	OP_GTE
	OP_AND
	OP_OR
	OP_ASSIGN
	OP_NONE
)

var opTypeNames = [...]string{
	OP_CALL:   "CALL",
	OP_NEG:    "NEG",
	OP_MULT:   "MULT",
	OP_DIV:    "DIV",
	OP_ADD:    "ADD",
	OP_SUB:    "SUB",
	OP_EQ:     "EQ",
	OP_NEQ:    "NEQ",
	OP_LT:     "LT",
	OP_LTE:    "LTE",
	OP_GT:     "GT",
	OP_GTE:    "GTE",
	OP_AND:    "AND",
	OP_OR:     "OR",
	OP_ASSIGN: "ASSIGN",
	OP_NONE:   "NONE",
}

func init() {
	for i, name := range opTypeNames {
		if name == "" {
			panic(fmt.Sprintf("opTypeNames missing entry for OpType %d", i))
		}
	}
}

func (op OpType) String() string {
	if int(op) >= 0 && int(op) < len(opTypeNames) {
		return opTypeNames[op]
	}
	return fmt.Sprintf("OpType(%d)", int(op))
}

// OpArity classifies an operator by the number of operands it takes.
type OpArity int

const (
	ARITY_NULLARY OpArity = iota
	ARITY_UNARY
	ARITY_BINARY
)

// Arity is a fixed function of the operator: NEG and CALL are unary, NONE
// is nullary, everything else is binary.
func (op OpType) Arity() OpArity {
	switch op {
	case OP_NEG, OP_CALL:
		return ARITY_UNARY
	case OP_NONE:
		return ARITY_NULLARY
	default:
		return ARITY_BINARY
	}
}

// cmpInverses maps each comparison op to the op that inverts it, used by
// the IR emitter's inverse-jump helper (see irgen.go).
var cmpInverses = map[OpType]OpType{
	OP_EQ:  OP_NEQ,
	OP_NEQ: OP_EQ,
	OP_LT:  OP_GTE,
	OP_GTE: OP_LT,
	OP_LTE: OP_GT,
	OP_GT:  OP_LTE,
}

func (op OpType) isComparison() bool {
	_, ok := cmpInverses[op]
	return ok
}

// Expr is implemented by every node that produces a value. There is no
// visitor/accept indirection: passes pattern-match on the concrete type
// with a type switch, and OuterOp gives each variant's own operator
// without needing a separate capability interface per pass.
type Expr interface {
	exprNode()
	String() string
	OuterOp() OpType
	Position() Position
}

// LiteralKind distinguishes the different leaves a Literal can hold.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitChar
	LitIdent
	// LitArray is an array-of-expression placeholder named by the data
	// model but never populated: this language has no array literals.
	LitArray
)

// Literal is either a leaf token (int, char, or identifier) or the unused
// array placeholder. Type is the literal's declared type for int/char, and
// is filled in by the semantic analyser (from the symbol table) for an
// identifier literal — at parse time an identifier's Type is UNKNOWN_TYPE.
type Literal struct {
	Kind  LiteralKind
	Text  string // source lexeme (int/char) or the identifier name
	Elems []Expr // only meaningful for LitArray; always empty here
	Type  DataType
	Pos   Position
}

func (*Literal) exprNode()          {}
func (l *Literal) Position() Position { return l.Pos }
func (l *Literal) OuterOp() OpType   { return OP_NONE }
func (l *Literal) String() string {
	switch l.Kind {
	case LitIdent:
		return l.Text
	case LitArray:
		return fmt.Sprintf("Array(%v)", l.Elems)
	default:
		return l.Text
	}
}

// Unary is an inner expression with a prefix operator. NEG is the only
// legal op today, but the shape allows more without widening the AST.
type Unary struct {
	Op    OpType
	Inner Expr
	Pos   Position
}

func (*Unary) exprNode()            {}
func (u *Unary) Position() Position { return u.Pos }
func (u *Unary) OuterOp() OpType    { return u.Op }
func (u *Unary) String() string     { return fmt.Sprintf("(%s %s)", u.Op, u.Inner) }

// Binary is a two-operand expression: Op(LHS, RHS). ASSIGN is represented
// the same way as any other binary op, with the lhs constrained (by the
// semantic analyser) to a variable-name Literal.
type Binary struct {
	Op  OpType
	LHS Expr
	RHS Expr
	Pos Position
}

func (*Binary) exprNode()            {}
func (b *Binary) Position() Position { return b.Pos }
func (b *Binary) OuterOp() OpType    { return b.Op }
func (b *Binary) String() string     { return fmt.Sprintf("(%s %s %s)", b.LHS, b.Op, b.RHS) }

// Call is name(args...).
type Call struct {
	Callee string
	Args   []Expr
	Pos    Position
}

func (*Call) exprNode()            {}
func (c *Call) Position() Position { return c.Pos }
func (c *Call) OuterOp() OpType    { return OP_CALL }
func (c *Call) String() string     { return fmt.Sprintf("%s(%v)", c.Callee, c.Args) }

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	String() string
	Position() Position
}

// VariableDecl is  type name = init;  — the initialiser is mandatory.
type VariableDecl struct {
	Name string
	Type DataType
	Init Expr
	Pos  Position
}

func (*VariableDecl) stmtNode()            {}
func (v *VariableDecl) Position() Position { return v.Pos }
func (v *VariableDecl) String() string {
	return fmt.Sprintf("VariableDecl(%s %s = %s)", v.Type, v.Name, v.Init)
}

// Param is one entry of a FunctionDecl's ordered parameter list.
type Param struct {
	Name string
	Type DataType
}

// FunctionDecl is  type name(params) { body }.
type FunctionDecl struct {
	Name       string
	ReturnType DataType
	Params     []Param
	Body       *Block
	Pos        Position
}

func (*FunctionDecl) stmtNode()            {}
func (f *FunctionDecl) Position() Position { return f.Pos }
func (f *FunctionDecl) String() string {
	return fmt.Sprintf("FunctionDecl(%s %s(%v) %s)", f.ReturnType, f.Name, f.Params, f.Body)
}

// Block is an ordered list of statements inside braces. There is no block
// scoping: nested blocks share their enclosing function's scope.
type Block struct {
	Stmts []Stmt
	Pos   Position
}

func (*Block) stmtNode()            {}
func (b *Block) Position() Position { return b.Pos }
func (b *Block) String() string     { return fmt.Sprintf("Block(len=%d)", len(b.Stmts)) }

// ExprStmt is an expression evaluated for effect. OuterOp is populated by
// the semantic analyser from the wrapped expression's own OuterOp() — the
// parser always constructs ExprStmt without judging the op, so a "dead
// temporary" (an outer op other than CALL or ASSIGN) is purely a semantic
// error, not a parse error. The IR emitter reads the cached OuterOp instead
// of re-walking Expr.
type ExprStmt struct {
	Expr     Expr
	OuterOp  OpType
	Pos      Position
}

func (*ExprStmt) stmtNode()            {}
func (e *ExprStmt) Position() Position { return e.Pos }
func (e *ExprStmt) String() string     { return fmt.Sprintf("ExprStmt(%s)", e.Expr) }

// If is  if (cond) then [else elseBlock].
type If struct {
	Cond Expr
	Then *Block
	Else *Block // nil when there is no else-clause
	Pos  Position
}

func (*If) stmtNode()            {}
func (i *If) Position() Position { return i.Pos }
func (i *If) String() string {
	if i.Else != nil {
		return fmt.Sprintf("If(%s then %s else %s)", i.Cond, i.Then, i.Else)
	}
	return fmt.Sprintf("If(%s then %s)", i.Cond, i.Then)
}

// Return is  return expr;  — the expression is mandatory even in a void
// function, where it is expected to type as VOID and carries no value.
type Return struct {
	Expr Expr
	Pos  Position
}

func (*Return) stmtNode()            {}
func (r *Return) Position() Position { return r.Pos }
func (r *Return) String() string     { return fmt.Sprintf("Return(%s)", r.Expr) }
