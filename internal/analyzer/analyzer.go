// Package analyzer orchestrates the full pipeline over a parsed program:
// validate the spawn/await structural constraint, compute interprocedural
// effects, compute escaping threads, then walk every function and collect
// race warnings. Grounded on the reference implementation's engine.py,
// analyze_program.
package analyzer

import (
	"sort"

	"github.com/funvibe/funxy-race/internal/ast"
	"github.com/funvibe/funxy-race/internal/conflicts"
	"github.com/funvibe/funxy-race/internal/constraints"
	"github.com/funvibe/funxy-race/internal/diagnostics"
	"github.com/funvibe/funxy-race/internal/effects"
	"github.com/funvibe/funxy-race/internal/escape"
	"github.com/funvibe/funxy-race/internal/walker"
)

// Analyze runs the complete race-detection pipeline over prog, returning
// every race warning found (deduplicated and sorted deterministically by
// line, variable, and kind) or the first structural diagnostic error
// encountered while validating the program.
func Analyze(prog *ast.Program) ([]conflicts.RaceWarning, *diagnostics.DiagnosticError) {
	names := sortedFuncNames(prog.Functions)

	for _, name := range names {
		fn := prog.Functions[name]
		if err := constraints.EnforceNoSpawnAwaitInControl(fn.Body); err != nil {
			de := err.(*diagnostics.DiagnosticError)
			return nil, de
		}
	}

	funcEffects := effects.ComputeFunctionEffects(prog.Functions)
	escaping := escape.ComputeEscapingThreads(prog.Functions, funcEffects)

	env := &walker.Env{Funcs: prog.Functions, Effects: funcEffects, Escaping: escaping}

	var all []conflicts.RaceWarning
	for _, name := range names {
		fn := prog.Functions[name]
		all = append(all, walker.Walk(name, fn, env)...)
	}

	all = conflicts.Dedup(all)
	conflicts.SortWarnings(all)
	return all, nil
}

func sortedFuncNames(funcs map[string]*ast.FunctionDef) []string {
	out := make([]string, 0, len(funcs))
	for name := range funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
