package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenTypeStringCoversEveryConstant(t *testing.T) {
	for tt := EOF; tt <= UNKNOWN; tt++ {
		assert.NotContains(t, tt.String(), "TokenType(", "missing tokenNames entry for %d", int(tt))
	}
}

func TestTokenTypeStringOutOfRange(t *testing.T) {
	assert.Equal(t, "TokenType(999)", TokenType(999).String())
}

func TestIsTrivia(t *testing.T) {
	assert.True(t, SPACING.isTrivia())
	assert.True(t, LINE_COMMENT.isTrivia())
	assert.False(t, IDENTIFIER.isTrivia())
	assert.False(t, EOF.isTrivia())
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "(3,7)", Position{Line: 3, Col: 7}.String())
}
