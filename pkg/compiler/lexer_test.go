package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripTrivia drops SPACING/LINE_COMMENT tokens so test expectations don't
// have to spell out every run of whitespace.
func stripTrivia(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type.isTrivia() {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func TestLexBasicTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{"empty", "", []TokenType{EOF}},
		{
			"punctuation and operators",
			"+ - * / = == != < <= > >= && || , ; ( ) { }",
			[]TokenType{
				PLUS, MINUS, STAR, SLASH, ASSIGN, EQUALS, NOT_EQ,
				LESS, LESS_EQ, GREATER, GREATER_EQ, AND_LOGICAL, OR_LOGICAL,
				COMMA, SEMICOLON, PAREN_OPEN, PAREN_CLOSE, BRACE_OPEN, BRACE_CLOSE, EOF,
			},
		},
		{
			"keywords and typenames",
			"return if else while break continue char int void",
			[]TokenType{RETURN, IF, ELSE, WHILE, BREAK, CONTINUE, TYPE_CHAR, TYPE_INT, TYPE_VOID, EOF},
		},
		{"identifier", "x _foo", []TokenType{IDENTIFIER, IDENTIFIER, EOF}},
		{
			"identifier run stops at a digit",
			"bar9",
			[]TokenType{IDENTIFIER, LITERAL_INT, EOF},
		},
		{"int literal", "123", []TokenType{LITERAL_INT, EOF}},
		{"int literal with embedded dot", "1.2", []TokenType{LITERAL_INT, EOF}},
		{"char literal", "'a'", []TokenType{LITERAL_CHAR, EOF}},
		{"unterminated char literal", "'a", []TokenType{UNKNOWN, EOF}},
		{"line comment", "int x // trailing\n", []TokenType{TYPE_INT, IDENTIFIER, EOF}},
		{"unknown rune", "@", []TokenType{UNKNOWN, EOF}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := stripTrivia(Lex(tc.input))
			require.Len(t, got, len(tc.expected))
			for i, want := range tc.expected {
				assert.Equalf(t, want, got[i].Type, "token %d", i)
			}
		})
	}
}

func TestLexPreservesTrivia(t *testing.T) {
	tokens := Lex("int  x")
	var kinds []TokenType
	for _, tok := range tokens {
		kinds = append(kinds, tok.Type)
	}
	assert.Equal(t, []TokenType{TYPE_INT, SPACING, IDENTIFIER, EOF}, kinds)
}

func TestLexLexemeText(t *testing.T) {
	tokens := stripTrivia(Lex("foo = 42;"))
	require.Len(t, tokens, 5)
	assert.Equal(t, "foo", tokens[0].Lexeme)
	assert.Equal(t, "=", tokens[1].Lexeme)
	assert.Equal(t, "42", tokens[2].Lexeme)
	assert.Equal(t, ";", tokens[3].Lexeme)
}

func TestLexTracksLineAndColumn(t *testing.T) {
	tokens := stripTrivia(Lex("int\nx"))
	require.Len(t, tokens, 3)
	assert.Equal(t, Position{Line: 1, Col: 1}, tokens[0].Pos)
	assert.Equal(t, Position{Line: 2, Col: 1}, tokens[1].Pos)
}
