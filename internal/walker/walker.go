// Package walker performs the structural per-statement traversal that
// maintains concurrent state (which threads are live, and what each
// in-scope handle is currently bound to) and raises race warnings as it
// goes, grounded statement-by-statement on the reference implementation's
// engine.py, analyze_stmt.
package walker

import (
	"fmt"
	"sort"

	"github.com/funvibe/funxy-race/internal/ast"
	"github.com/funvibe/funxy-race/internal/concurrency"
	"github.com/funvibe/funxy-race/internal/conflicts"
	"github.com/funvibe/funxy-race/internal/effects"
	"github.com/funvibe/funxy-race/internal/escape"
)

// Env bundles the whole-program context the walker needs at every call
// site: every function's definition, its converged effect, and the
// threads that escape from it.
type Env struct {
	Funcs     map[string]*ast.FunctionDef
	Effects   map[string]*effects.Effect
	Escaping  map[string][]escape.Thread
}

// Walk traverses fn's body from an empty ConcurState and returns every
// race warning raised along the way (not yet deduplicated or sorted —
// callers should run them through internal/conflicts.Dedup and
// SortWarnings).
func Walk(fname string, fn *ast.FunctionDef, env *Env) []conflicts.RaceWarning {
	w := &walker{fname: fname, env: env}
	_, warnings := w.walkStmt(fn.Body, concurrency.New())
	return warnings
}

type walker struct {
	fname string
	env   *Env
}

func (w *walker) ctx(line int) string {
	return fmt.Sprintf("%s:%d", w.fname, line)
}

func (w *walker) checkAccess(state *concurrency.ConcurState, mode conflicts.Mode, line int, ctx, varName string) []conflicts.RaceWarning {
	var out []conflicts.RaceWarning
	for _, tid := range sortedTids(state.Active) {
		if warn := conflicts.CheckAccess(mode, line, ctx, state.Active[tid], varName); warn != nil {
			out = append(out, *warn)
		}
	}
	return out
}

func (w *walker) checkVars(state *concurrency.ConcurState, mode conflicts.Mode, line int, ctx string, vars map[string]struct{}) []conflicts.RaceWarning {
	var out []conflicts.RaceWarning
	for _, name := range sortedKeys(vars) {
		out = append(out, w.checkAccess(state, mode, line, ctx, name)...)
	}
	return out
}

func sortedTids(active map[string]*concurrency.ThreadInfo) []string {
	out := make([]string, 0, len(active))
	for tid := range active {
		out = append(out, tid)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// walkStmt walks stmt from state, returning the state after stmt and any
// warnings raised along the way.
func (w *walker) walkStmt(stmt ast.Statement, state *concurrency.ConcurState) (*concurrency.ConcurState, []conflicts.RaceWarning) {
	switch n := stmt.(type) {
	case *ast.Sequence:
		var warnings []conflicts.RaceWarning
		cur := state
		for _, s := range n.Stmts {
			var w2 []conflicts.RaceWarning
			cur, w2 = w.walkStmt(s, cur)
			warnings = append(warnings, w2...)
		}
		return cur, warnings

	case *ast.Assign:
		ctx := w.ctx(n.Line())
		reads := ast.VarsIn(n.Value)
		writes := map[string]struct{}{n.Target: {}}

		touched := make(map[string]struct{}, len(reads)+1)
		for name := range reads {
			touched[name] = struct{}{}
		}
		for name := range writes {
			touched[name] = struct{}{}
		}

		var warnings []conflicts.RaceWarning
		for _, name := range sortedKeys(touched) {
			_, isRead := reads[name]
			_, isWrite := writes[name]
			mode := conflicts.ModeOf(isRead, isWrite)
			warnings = append(warnings, w.checkAccess(state, mode, n.Line(), ctx, name)...)
		}
		delete(state.HandleEnv, n.Target)
		return state, warnings

	case *ast.AssignCall:
		ctx := w.ctx(n.Line())
		var warnings []conflicts.RaceWarning
		for _, arg := range n.Args {
			warnings = append(warnings, w.checkVars(state, conflicts.ModeRead, n.Line(), ctx, ast.VarsIn(arg))...)
		}
		warnings = append(warnings, w.checkCalleeEffect(state, n.Callee, n.Args, n.Line(), ctx)...)
		warnings = append(warnings, w.checkAccess(state, conflicts.ModeWrite, n.Line(), ctx, n.Target)...)
		delete(state.HandleEnv, n.Target)
		w.injectEscaped(state, n.Callee, n.Args, n.Line())
		return state, warnings

	case *ast.Call:
		ctx := w.ctx(n.Line())
		var warnings []conflicts.RaceWarning
		for _, arg := range n.Args {
			warnings = append(warnings, w.checkVars(state, conflicts.ModeRead, n.Line(), ctx, ast.VarsIn(arg))...)
		}
		warnings = append(warnings, w.checkCalleeEffect(state, n.Callee, n.Args, n.Line(), ctx)...)
		w.injectEscaped(state, n.Callee, n.Args, n.Line())
		return state, warnings

	case *ast.Spawn:
		return w.walkSpawn(n, state)

	case *ast.Await:
		for tid := range state.HandleEnv[n.Handle] {
			delete(state.Active, tid)
		}
		state.HandleEnv[n.Handle] = make(map[string]struct{})
		return state, nil

	case *ast.Return:
		ctx := w.ctx(n.Line())
		warnings := w.checkVars(state, conflicts.ModeRead, n.Line(), ctx, ast.VarsIn(n.Value))
		return state, warnings

	case *ast.If:
		ctx := w.ctx(n.Line())
		warnings := w.checkVars(state, conflicts.ModeRead, n.Line(), ctx, ast.VarsIn(n.Cond))

		thenState, thenWarnings := w.walkStmt(n.Then, state.Clone())
		elseState, elseWarnings := w.walkStmt(n.Else, state.Clone())

		warnings = append(warnings, thenWarnings...)
		warnings = append(warnings, elseWarnings...)
		return concurrency.JoinStates(thenState, elseState), warnings

	case *ast.While:
		ctx := w.ctx(n.Line())
		warnings := w.checkVars(state, conflicts.ModeRead, n.Line(), ctx, ast.VarsIn(n.Cond))

		bodyState, bodyWarnings := w.walkStmt(n.Body, state.Clone())
		warnings = append(warnings, bodyWarnings...)
		return concurrency.JoinStates(state, bodyState), warnings

	default:
		panic(ast.UnknownNodeError{Kind: "statement", Node: stmt})
	}
}

func (w *walker) checkCalleeEffect(state *concurrency.ConcurState, callee string, args []ast.Expression, line int, ctx string) []conflicts.RaceWarning {
	calleeDef, ok := w.env.Funcs[callee]
	if !ok {
		return nil
	}
	calleeEffect, ok := w.env.Effects[callee]
	if !ok {
		return nil
	}
	substituted := effects.Substitute(calleeEffect, calleeDef, args)

	var warnings []conflicts.RaceWarning
	for _, name := range sortedKeys(substituted.Reads) {
		callLine := minSite(substituted.ReadSites[name], line)
		warnings = append(warnings, w.checkAccess(state, conflicts.ModeRead, callLine, ctx, name)...)
	}
	for _, name := range sortedKeys(substituted.Writes) {
		callLine := minSite(substituted.WriteSites[name], line)
		warnings = append(warnings, w.checkAccess(state, conflicts.ModeWrite, callLine, ctx, name)...)
	}
	return warnings
}

func minSite(sites map[int]struct{}, fallback int) int {
	if len(sites) == 0 {
		return fallback
	}
	min := fallback
	first := true
	for line := range sites {
		if first || line < min {
			min = line
			first = false
		}
	}
	return min
}

func (w *walker) injectEscaped(state *concurrency.ConcurState, callee string, args []ast.Expression, callLine int) {
	calleeDef, ok := w.env.Funcs[callee]
	if !ok {
		return
	}
	for _, t := range w.env.Escaping[callee] {
		injected := escape.InjectAtCallSite(t, calleeDef, args, callLine)
		state.Active[injected.ThreadID] = &concurrency.ThreadInfo{
			ThreadID:    injected.ThreadID,
			SpawnLine:   injected.SpawnLine,
			Description: injected.Description,
			Effect:      injected.Effect,
		}
	}
}

func (w *walker) walkSpawn(n *ast.Spawn, state *concurrency.ConcurState) (*concurrency.ConcurState, []conflicts.RaceWarning) {
	tid, desc, effect := escape.SpawnIdentity(w.fname, n, w.env.Funcs, w.env.Effects)
	newThread := &concurrency.ThreadInfo{ThreadID: tid, SpawnLine: n.Line(), Description: desc, Effect: effect}

	var warnings []conflicts.RaceWarning
	for _, oldTid := range sortedTids(state.Active) {
		for _, warn := range conflicts.CheckThreadThread(newThread, state.Active[oldTid]) {
			warnings = append(warnings, warn)
		}
	}

	state.Active[tid] = newThread

	if n.HasHandle() {
		state.HandleEnv[n.Handle] = map[string]struct{}{tid: {}}
	}
	if sc, ok := n.Target.(*ast.SpawnCall); ok && !n.HasHandle() {
		if state.HandleEnv[sc.Callee] == nil {
			state.HandleEnv[sc.Callee] = make(map[string]struct{})
		}
		state.HandleEnv[sc.Callee][tid] = struct{}{}
	}

	return state, warnings
}
