// Command goccc is the command-line front end for the gocc compiler
// pipeline: given a source file it lexes, parses, semantically analyses,
// and emits IR, printing whichever stage the caller asked for.
//
// Usage:
//
//	goccc <file>              compile and print the IR
//	goccc -tokens <file>      print the token stream
//	goccc -ast <file>         print the parsed declarations
//	goccc -repl               start an interactive session
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"gocc/pkg/compiler"
	"gocc/pkg/utils"
)

var (
	errColor  = color.New(color.FgRed)
	infoColor = color.New(color.FgCyan)
	dimColor  = color.New(color.FgHiBlack)
)

func main() {
	tokensFlag := flag.Bool("tokens", false, "print the token stream instead of compiling")
	astFlag := flag.Bool("ast", false, "print the parsed declarations instead of compiling")
	replFlag := flag.Bool("repl", false, "start an interactive read-eval-print loop")
	flag.Parse()

	if *replFlag || flag.NArg() == 0 {
		runRepl()
		return
	}

	path := flag.Arg(0)
	fullPath, _, err := utils.GetPathInfo(path)
	if err != nil {
		errColor.Fprintf(os.Stderr, "path error: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		errColor.Fprintf(os.Stderr, "read error: %v\n", err)
		os.Exit(1)
	}
	src := string(data)

	switch {
	case *tokensFlag:
		for _, tok := range compiler.Lex(src) {
			fmt.Println(tok)
		}
	case *astFlag:
		decls, errs := compiler.Parse(src)
		if reportErrors(errs) {
			os.Exit(1)
		}
		for _, d := range decls {
			fmt.Println(d)
		}
	default:
		result, errs, diags := compiler.Compile(src)
		if reportErrors(errs) || reportDiagnostics(diags) {
			os.Exit(1)
		}
		dimColor.Print(result.Dump())
	}
}

func reportErrors(errs []error) bool {
	for _, e := range errs {
		errColor.Fprintln(os.Stderr, e)
	}
	return len(errs) > 0
}

func reportDiagnostics(diags []compiler.Diagnostic) bool {
	for _, d := range diags {
		errColor.Fprintln(os.Stderr, d)
	}
	return len(diags) > 0
}

// runRepl evaluates one top-level declaration per line: each line is
// lexed, parsed, and analysed in isolation, then its IR is printed. There
// is no persistent program across lines — the REPL has nothing to execute
// the IR against, so each entry is its own self-contained compilation
// (mirroring the read-eval-print shape of akashmaji946-go-mix's REPL
// without inheriting its evaluator, which this front-end has no use for).
func runRepl() {
	infoColor.Println("gocc front-end REPL — type a declaration, or :tokens / :ast / :exit")

	rl, err := readline.New("gocc> ")
	if err != nil {
		errColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	mode := "ir"
	for {
		line, err := rl.Readline()
		if err != nil {
			fmt.Println("bye")
			return
		}

		switch line {
		case "":
			continue
		case ":exit":
			return
		case ":tokens":
			mode = "tokens"
			infoColor.Println("switched to token-dump mode")
			continue
		case ":ast":
			mode = "ast"
			infoColor.Println("switched to AST-dump mode")
			continue
		case ":ir":
			mode = "ir"
			infoColor.Println("switched to IR-dump mode")
			continue
		}

		rl.SaveHistory(line)
		evalReplLine(line, mode)
	}
}

func evalReplLine(line, mode string) {
	switch mode {
	case "tokens":
		for _, tok := range compiler.Lex(line) {
			fmt.Println(tok)
		}
	case "ast":
		decls, errs := compiler.Parse(line)
		if reportErrors(errs) {
			return
		}
		for _, d := range decls {
			fmt.Println(d)
		}
	default:
		result, errs, diags := compiler.Compile(line)
		if reportErrors(errs) || reportDiagnostics(diags) {
			return
		}
		dimColor.Print(result.Dump())
	}
}
