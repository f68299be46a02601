// Package escape computes, for each function, the spawned threads whose
// handle is never awaited before the function returns — threads that
// "escape" into whichever function called it, and so must be injected
// into the caller's concurrent state at the call site. Grounded on the
// reference implementation's engine.py, compute_escaping_threads.
package escape

import (
	"fmt"

	"github.com/funvibe/funxy-race/internal/ast"
	"github.com/funvibe/funxy-race/internal/constraints"
	"github.com/funvibe/funxy-race/internal/effects"
)

// Thread is one escaping thread: its identity as of the function it was
// spawned in, a human description, and the footprint it contributes.
type Thread struct {
	ThreadID    string
	SpawnLine   int
	Description string
	Effect      *effects.Effect
}

// ComputeEscapingThreads returns, for every function in funcs, the threads
// spawned in that function's body that are never awaited by the time the
// function ends. funcEffects must be the fully-converged interprocedural
// effects from effects.ComputeFunctionEffects — used to compute each
// spawned thread's own footprint.
func ComputeEscapingThreads(funcs map[string]*ast.FunctionDef, funcEffects map[string]*effects.Effect) map[string][]Thread {
	out := make(map[string][]Thread, len(funcs))
	for name, fn := range funcs {
		out[name] = escapingThreadsOf(name, fn, funcs, funcEffects)
	}
	return out
}

func escapingThreadsOf(fname string, fn *ast.FunctionDef, funcs map[string]*ast.FunctionDef, funcEffects map[string]*effects.Effect) []Thread {
	active := make(map[string]*Thread)
	handleEnv := make(map[string]map[string]struct{})

	for _, stmt := range constraints.ListSpawnsAwaits(fn.Body) {
		switch n := stmt.(type) {
		case *ast.Spawn:
			// A Spawn without a handle can never escape: spec.md §4.3 only
			// tracks handled spawns for escape purposes (a handle-less spawn
			// is still awaitable by callee name within the *same* function
			// via internal/walker's own handleEnv bookkeeping, but it never
			// outlives the function as a caller-visible escaping thread).
			if !n.HasHandle() {
				continue
			}
			tid, desc, effect := SpawnIdentity(fname, n, funcs, funcEffects)
			active[tid] = &Thread{ThreadID: tid, SpawnLine: n.Line(), Description: desc, Effect: effect}
			handleEnv[n.Handle] = map[string]struct{}{tid: {}}

		case *ast.Await:
			for tid := range handleEnv[n.Handle] {
				delete(active, tid)
			}
			handleEnv[n.Handle] = make(map[string]struct{})
		}
	}

	out := make([]Thread, 0, len(active))
	for _, t := range active {
		out = append(out, *t)
	}
	return out
}

// SpawnIdentity computes the thread id, human description, and footprint
// of a Spawn statement lexically inside function fname. Shared by escape
// analysis and internal/walker so both agree on thread identity.
func SpawnIdentity(fname string, n *ast.Spawn, funcs map[string]*ast.FunctionDef, funcEffects map[string]*effects.Effect) (tid, desc string, effect *effects.Effect) {
	switch t := n.Target.(type) {
	case *ast.SpawnCall:
		base := t.Callee
		if n.HasHandle() {
			base = n.Handle
		}
		tid = fmt.Sprintf("%s:%s@%d", fname, base, n.Line())
		desc = fmt.Sprintf("spawn %s at %s:%d", t.Callee, fname, n.Line())

		e := effects.New()
		for _, arg := range t.Args {
			e.AddReads(ast.VarsIn(arg), n.Line())
		}
		if calleeDef, ok := funcs[t.Callee]; ok {
			if calleeEffect, ok := funcEffects[t.Callee]; ok {
				e.Union(effects.Substitute(calleeEffect, calleeDef, t.Args))
			}
		}
		effect = e

	case *ast.SpawnBlock:
		base := "_anon"
		if n.HasHandle() {
			base = n.Handle
		}
		tid = fmt.Sprintf("%s:%s@%d", fname, base, n.Line())
		desc = fmt.Sprintf("spawn block at %s:%d", fname, n.Line())
		effect = effects.EffectOfSequence(t.Body, funcs, funcEffects)
	}
	return
}

// InjectAtCallSite substitutes an escaped thread's footprint through the
// same parameter binding as the callee's own effect at this call site, and
// tags it with a tid scoped to the call so two calls to the same function
// don't collide.
func InjectAtCallSite(t Thread, calleeDef *ast.FunctionDef, args []ast.Expression, callLine int) Thread {
	return Thread{
		ThreadID:    fmt.Sprintf("escaped:%s@call%d", t.ThreadID, callLine),
		SpawnLine:   t.SpawnLine,
		Description: t.Description,
		Effect:      effects.Substitute(t.Effect, calleeDef, args),
	}
}
