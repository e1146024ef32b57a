package compiler

import "fmt"

// Result is the full output of a successful Compile: the parsed program, the
// published semantics table, and the lowered IR.
type Result struct {
	Decls    []Stmt
	SemTable map[string]*Scope
	IR       []IRStep
}

// Compile runs the complete front-end pipeline: Lex -> Parse -> Analyze ->
// Emit. A non-empty parse error list or a non-empty diagnostic list both
// stop the pipeline before IR emission — the caller's job is to report them,
// not to recover a partial result, since spec'd the diagnostic and error
// lists to be collected in full rather than bailing on the first failure.
func Compile(src string) (*Result, []error, []Diagnostic) {
	decls, errs := Parse(src)
	if len(errs) > 0 {
		return nil, errs, nil
	}

	semTable, diags := Analyze(decls)
	if len(diags) > 0 {
		return nil, nil, diags
	}

	ir := Emit(decls, semTable)
	return &Result{Decls: decls, SemTable: semTable, IR: ir}, nil, nil
}

// Dump renders a Result's IR in the "label:" / "    step" text form the CLI
// driver and REPL print.
func (r *Result) Dump() string {
	out := ""
	for _, step := range r.IR {
		if _, ok := step.(*Label); ok {
			out += step.String() + "\n"
			continue
		}
		out += fmt.Sprintf("    %s\n", step)
	}
	return out
}
