package compiler

import (
	"fmt"
	"strings"
)

// SyntaxError is returned by the parser on any grammar violation: an
// unknown token, an unexpected token for an expected set, or unexpected
// EOF inside a block, parameter list, or argument list.
type SyntaxError struct {
	Pos    Position
	Lexeme string
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Parse Error at %s with %q: %s", e.Pos, e.Lexeme, e.Msg)
}

// Snippet renders the offending source line, trimmed, for human-facing
// output — the core passes never print this themselves, matching the
// teacher's convention of keeping fmtError a pure string-builder.
func (e *SyntaxError) Snippet(source string) string {
	lines := strings.Split(source, "\n")
	idx := e.Pos.Line - 1
	if idx < 0 || idx >= len(lines) {
		return "<source unavailable>"
	}
	return strings.TrimSpace(lines[idx])
}

// Diagnostic is a semantic-analysis finding: (symbol, scope-name, message).
// The analyser accumulates these instead of failing on the first one, so a
// caller sees every problem in a single pass.
type Diagnostic struct {
	Symbol  string
	Scope   string
	Message string
}

func (d Diagnostic) String() string {
	if d.Symbol == "" {
		return fmt.Sprintf("[%s] %s", d.Scope, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Scope, d.Symbol, d.Message)
}

// Snippet mirrors SyntaxError.Snippet but Diagnostic carries no position,
// only a scope name, so it formats an informational marker instead.
func (d Diagnostic) Snippet() string {
	return fmt.Sprintf("in scope %q", d.Scope)
}
