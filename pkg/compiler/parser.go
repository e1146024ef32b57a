package compiler

import "fmt"

// Parser is a pure LL(1) recursive-descent parser: one buffered current
// token (curr) and the token just consumed (prev). Whitespace and comment
// tokens are transparently skipped while loading curr; passedSpace records
// whether trivia was skipped immediately before curr, for diagnostics that
// care about source spacing.
//
// Grammar:
//
//	program := decl*
//	decl    := typename IDENT ( '=' expr ';' | params block )
//	typename:= 'void' | 'char' | 'int'
//	params  := '(' [ (typename IDENT) (',' typename IDENT)* ] ')'
//	block   := '{' stmt* '}'
//	stmt    := if | return | vardecl | expr ';'
//	if      := 'if' '(' expr ')' block [ 'else' block ]
//	return  := 'return' expr ';'
//	vardecl := typename IDENT '=' expr ';'
//
//	expr    := assign | or
//	assign  := IDENT '=' expr          -- only when IDENT is followed by '='
//	or      := and  ( '||' and )*
//	and     := eq   ( '&&' eq  )*
//	eq      := cmp  ( ('=='|'!=') cmp )*
//	cmp     := term ( ('<'|'<='|'>'|'>=') term )*
//	term    := factor ( ('+'|'-') factor )*
//	factor  := unary  ( ('*'|'/') unary )*
//	unary   := [ '-' ] primary
//	primary := LITERAL_INT | LITERAL_CHAR | IDENT [ '(' args ')' ] | '(' expr ')'
//	args    := [ expr ( ',' expr )* ]
type Parser struct {
	tokens      []Token
	pos         int // index of the next raw token to load
	curr        Token
	prev        Token
	passedSpace bool
}

// NewParser builds a Parser primed with the first non-trivia token.
func NewParser(tokens []Token) *Parser {
	p := &Parser{tokens: tokens}
	p.curr = p.loadNext()
	return p
}

// loadNext scans forward from p.pos, skipping trivia, and returns the next
// real token (or the EOF sentinel once the stream is exhausted).
func (p *Parser) loadNext() Token {
	skipped := false
	for p.pos < len(p.tokens) {
		t := p.tokens[p.pos]
		p.pos++
		if t.Type.isTrivia() {
			skipped = true
			continue
		}
		p.passedSpace = skipped
		return t
	}
	p.passedSpace = skipped
	return Token{Type: EOF}
}

// peekAhead looks n real tokens past curr without consuming anything —
// this is the one piece of lookahead the assignment-disambiguation rule
// needs, and it requires no lexer rewind since it only scans forward over
// the already-materialised token slice.
func (p *Parser) peekAhead(n int) Token {
	idx := p.pos
	seen := 0
	for idx < len(p.tokens) {
		t := p.tokens[idx]
		idx++
		if t.Type.isTrivia() {
			continue
		}
		seen++
		if seen == n {
			return t
		}
	}
	return Token{Type: EOF}
}

// advance consumes curr and returns it, loading the next real token into curr.
func (p *Parser) advance() Token {
	p.prev = p.curr
	p.curr = p.loadNext()
	return p.prev
}

func (p *Parser) errorAt(tok Token, format string, args ...any) error {
	return &SyntaxError{Pos: tok.Pos, Lexeme: tok.Lexeme, Msg: fmt.Sprintf(format, args...)}
}

// expect consumes curr if it matches tt, otherwise reports a SyntaxError.
func (p *Parser) expect(tt TokenType) (Token, error) {
	if p.curr.Type != tt {
		return p.curr, p.errorAt(p.curr, "expected %s, got %s", tt, p.curr.Type)
	}
	return p.advance(), nil
}

func isTypenameStart(t TokenType) bool {
	return t == TYPE_VOID || t == TYPE_CHAR || t == TYPE_INT
}

// Parse lexes and parses src, returning every top-level declaration it
// could recover along with one error per failed declaration. A failed
// declaration causes best-effort resynchronisation at the next plausible
// declaration start (the next typename keyword, or EOF).
func Parse(src string) ([]Stmt, []error) {
	p := NewParser(Lex(src))
	return p.parseProgram()
}

func (p *Parser) parseProgram() ([]Stmt, []error) {
	var decls []Stmt
	var errs []error
	for p.curr.Type != EOF {
		d, err := p.parseDecl()
		if err != nil {
			errs = append(errs, err)
			p.resync()
			continue
		}
		decls = append(decls, d)
	}
	return decls, errs
}

func (p *Parser) resync() {
	for p.curr.Type != EOF && !isTypenameStart(p.curr.Type) {
		p.advance()
	}
}

func (p *Parser) parseTypename() (DataType, error) {
	tok := p.curr
	switch tok.Type {
	case TYPE_VOID:
		p.advance()
		return VOID, nil
	case TYPE_CHAR:
		p.advance()
		return CHAR, nil
	case TYPE_INT:
		p.advance()
		return INT, nil
	default:
		return UNKNOWN_TYPE, p.errorAt(tok, "expected a type name (void, char, int), got %s", tok.Type)
	}
}

// parseDecl is  typename IDENT ( '=' expr ';' | params block ).
func (p *Parser) parseDecl() (Stmt, error) {
	typTok := p.curr
	typ, err := p.parseTypename()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	switch p.curr.Type {
	case ASSIGN:
		p.advance()
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return &VariableDecl{Name: nameTok.Lexeme, Type: typ, Init: init, Pos: typTok.Pos}, nil

	case PAREN_OPEN:
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlockStmt()
		if err != nil {
			return nil, err
		}
		return &FunctionDecl{Name: nameTok.Lexeme, ReturnType: typ, Params: params, Body: body, Pos: typTok.Pos}, nil

	default:
		return nil, p.errorAt(p.curr, "expected '=' or '(' after %q", nameTok.Lexeme)
	}
}

func (p *Parser) parseParams() ([]Param, error) {
	if _, err := p.expect(PAREN_OPEN); err != nil {
		return nil, err
	}
	var params []Param
	if p.curr.Type != PAREN_CLOSE {
		for {
			typ, err := p.parseTypename()
			if err != nil {
				return nil, err
			}
			nameTok, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			params = append(params, Param{Name: nameTok.Lexeme, Type: typ})
			if p.curr.Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(PAREN_CLOSE); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseBlockStmt() (*Block, error) {
	openTok, err := p.expect(BRACE_OPEN)
	if err != nil {
		return nil, err
	}
	var stmts []Stmt
	for p.curr.Type != BRACE_CLOSE && p.curr.Type != EOF {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(BRACE_CLOSE); err != nil {
		return nil, err
	}
	return &Block{Stmts: stmts, Pos: openTok.Pos}, nil
}

// parseStmt is  stmt := if | return | vardecl | expr ';'.
func (p *Parser) parseStmt() (Stmt, error) {
	switch p.curr.Type {
	case IF:
		return p.parseIfStmt()
	case RETURN:
		return p.parseReturnStmt()
	case TYPE_CHAR, TYPE_INT, TYPE_VOID:
		return p.parseVarDeclStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseIfStmt() (Stmt, error) {
	ifTok := p.advance()
	if _, err := p.expect(PAREN_OPEN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(PAREN_CLOSE); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlockStmt()
	if err != nil {
		return nil, err
	}

	var elseBlock *Block
	if p.curr.Type == ELSE {
		p.advance()
		elseBlock, err = p.parseBlockStmt()
		if err != nil {
			return nil, err
		}
	}
	return &If{Cond: cond, Then: thenBlock, Else: elseBlock, Pos: ifTok.Pos}, nil
}

func (p *Parser) parseReturnStmt() (Stmt, error) {
	retTok := p.advance()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &Return{Expr: expr, Pos: retTok.Pos}, nil
}

func (p *Parser) parseVarDeclStmt() (Stmt, error) {
	typTok := p.curr
	typ, err := p.parseTypename()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &VariableDecl{Name: nameTok.Lexeme, Type: typ, Init: init, Pos: typTok.Pos}, nil
}

func (p *Parser) parseExprStmt() (Stmt, error) {
	tok := p.curr
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	// OuterOp is a placeholder here; the semantic analyser recomputes it
	// from Expr itself (see ast.go: ExprStmt doc comment).
	return &ExprStmt{Expr: expr, OuterOp: OP_NONE, Pos: tok.Pos}, nil
}

// parseExpr implements  expr := assign | or  with the one-token-ahead
// disambiguation spec.md requires: an identifier followed directly by '='
// is an assignment: anything else (including a bare identifier) falls
// through to the precedence chain starting at 'or'.
func (p *Parser) parseExpr() (Expr, error) {
	if p.curr.Type == IDENTIFIER && p.peekAhead(1).Type == ASSIGN {
		nameTok := p.advance() // IDENT
		eqTok := p.advance()   // '='
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lhs := &Literal{Kind: LitIdent, Text: nameTok.Lexeme, Type: UNKNOWN_TYPE, Pos: nameTok.Pos}
		return &Binary{Op: OP_ASSIGN, LHS: lhs, RHS: rhs, Pos: eqTok.Pos}, nil
	}
	return p.parseOr()
}

func (p *Parser) parseOr() (Expr, error) {
	expr, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == OR_LOGICAL {
		tok := p.advance()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		expr = &Binary{Op: OP_OR, LHS: expr, RHS: rhs, Pos: tok.Pos}
	}
	return expr, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	expr, err := p.parseEq()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == AND_LOGICAL {
		tok := p.advance()
		rhs, err := p.parseEq()
		if err != nil {
			return nil, err
		}
		expr = &Binary{Op: OP_AND, LHS: expr, RHS: rhs, Pos: tok.Pos}
	}
	return expr, nil
}

var eqOps = map[TokenType]OpType{EQUALS: OP_EQ, NOT_EQ: OP_NEQ}

func (p *Parser) parseEq() (Expr, error) {
	expr, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := eqOps[p.curr.Type]
		if !ok {
			return expr, nil
		}
		tok := p.advance()
		rhs, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		expr = &Binary{Op: op, LHS: expr, RHS: rhs, Pos: tok.Pos}
	}
}

var cmpOps = map[TokenType]OpType{
	LESS: OP_LT, LESS_EQ: OP_LTE, GREATER: OP_GT, GREATER_EQ: OP_GTE,
}

func (p *Parser) parseCmp() (Expr, error) {
	expr, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := cmpOps[p.curr.Type]
		if !ok {
			return expr, nil
		}
		tok := p.advance()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = &Binary{Op: op, LHS: expr, RHS: rhs, Pos: tok.Pos}
	}
}

var termOps = map[TokenType]OpType{PLUS: OP_ADD, MINUS: OP_SUB}

func (p *Parser) parseTerm() (Expr, error) {
	expr, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := termOps[p.curr.Type]
		if !ok {
			return expr, nil
		}
		tok := p.advance()
		rhs, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		expr = &Binary{Op: op, LHS: expr, RHS: rhs, Pos: tok.Pos}
	}
}

var factorOps = map[TokenType]OpType{STAR: OP_MULT, SLASH: OP_DIV}

func (p *Parser) parseFactor() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := factorOps[p.curr.Type]
		if !ok {
			return expr, nil
		}
		tok := p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &Binary{Op: op, LHS: expr, RHS: rhs, Pos: tok.Pos}
	}
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.curr.Type == MINUS {
		tok := p.advance()
		inner, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: OP_NEG, Inner: inner, Pos: tok.Pos}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.curr
	switch tok.Type {
	case LITERAL_INT:
		p.advance()
		return &Literal{Kind: LitInt, Text: tok.Lexeme, Type: INT, Pos: tok.Pos}, nil

	case LITERAL_CHAR:
		p.advance()
		return &Literal{Kind: LitChar, Text: tok.Lexeme, Type: CHAR, Pos: tok.Pos}, nil

	case IDENTIFIER:
		p.advance()
		if p.curr.Type == PAREN_OPEN {
			p.advance()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(PAREN_CLOSE); err != nil {
				return nil, err
			}
			return &Call{Callee: tok.Lexeme, Args: args, Pos: tok.Pos}, nil
		}
		return &Literal{Kind: LitIdent, Text: tok.Lexeme, Type: UNKNOWN_TYPE, Pos: tok.Pos}, nil

	case PAREN_OPEN:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(PAREN_CLOSE); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, p.errorAt(tok, "expected expression, got %s", tok.Type)
	}
}

func (p *Parser) parseArgs() ([]Expr, error) {
	var args []Expr
	if p.curr.Type == PAREN_CLOSE {
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.curr.Type != COMMA {
			break
		}
		p.advance()
	}
	return args, nil
}
