// Package compiler provides a front-end for a small C-like language: a
// lexer, a recursive-descent parser, a semantic analyser, and an emitter
// that lowers a checked program into a closed three-address-code IR.
//
// Pipeline: source -> Lex -> Parse -> Analyze -> Emit -> []IRStep
package compiler
