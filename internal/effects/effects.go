// Package effects computes per-function read/write footprints — which
// variables a function (and everything it transitively calls) reads and
// writes, with the line sites of each access — grounded on the reference
// implementation's effects.py.
package effects

import (
	"sort"

	"github.com/funvibe/funxy-race/internal/ast"
	"github.com/funvibe/funxy-race/internal/config"
)

// Effect is the read/write footprint of a statement, sequence, or whole
// function: the variable names touched, plus every line at which each was
// touched (a variable can be read or written at more than one site).
type Effect struct {
	Reads      map[string]struct{}
	Writes     map[string]struct{}
	ReadSites  map[string]map[int]struct{}
	WriteSites map[string]map[int]struct{}
}

// New returns an empty Effect.
func New() *Effect {
	return &Effect{
		Reads:      make(map[string]struct{}),
		Writes:     make(map[string]struct{}),
		ReadSites:  make(map[string]map[int]struct{}),
		WriteSites: make(map[string]map[int]struct{}),
	}
}

// AddRead records a read of name at line.
func (e *Effect) AddRead(name string, line int) {
	e.Reads[name] = struct{}{}
	if e.ReadSites[name] == nil {
		e.ReadSites[name] = make(map[int]struct{})
	}
	e.ReadSites[name][line] = struct{}{}
}

// AddWrite records a write of name at line.
func (e *Effect) AddWrite(name string, line int) {
	e.Writes[name] = struct{}{}
	if e.WriteSites[name] == nil {
		e.WriteSites[name] = make(map[int]struct{})
	}
	e.WriteSites[name][line] = struct{}{}
}

// AddReads records a read of every name in vars at line.
func (e *Effect) AddReads(vars map[string]struct{}, line int) {
	for name := range vars {
		e.AddRead(name, line)
	}
}

// Union merges other into e in place.
func (e *Effect) Union(other *Effect) {
	for name := range other.Reads {
		e.Reads[name] = struct{}{}
	}
	for name := range other.Writes {
		e.Writes[name] = struct{}{}
	}
	for name, sites := range other.ReadSites {
		for line := range sites {
			e.AddReadSite(name, line)
		}
	}
	for name, sites := range other.WriteSites {
		for line := range sites {
			e.AddWriteSite(name, line)
		}
	}
}

// AddReadSite records name as read at line, adding it to both ReadSites
// and Reads (used by Union to copy site maps directly).
func (e *Effect) AddReadSite(name string, line int) {
	if e.ReadSites[name] == nil {
		e.ReadSites[name] = make(map[int]struct{})
	}
	e.ReadSites[name][line] = struct{}{}
	e.Reads[name] = struct{}{}
}

// AddWriteSite records name as written at line.
func (e *Effect) AddWriteSite(name string, line int) {
	if e.WriteSites[name] == nil {
		e.WriteSites[name] = make(map[int]struct{})
	}
	e.WriteSites[name][line] = struct{}{}
	e.Writes[name] = struct{}{}
}

// Equals reports whether e and other have identical read/write sets
// (used as the fixed-point convergence test — site maps are allowed to
// still be growing on later iterations since Equals only compares Reads
// and Writes, matching effects.py's Effect.equals).
func (e *Effect) Equals(other *Effect) bool {
	return setEquals(e.Reads, other.Reads) && setEquals(e.Writes, other.Writes)
}

func setEquals(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of e.
func (e *Effect) Clone() *Effect {
	out := New()
	out.Union(e)
	return out
}

// Substitute renames callee's formal-parameter accesses to the actual
// argument variables at a call site, so a caller's effect set reflects
// what the callee really touches through its parameters. Every formal
// parameter maps to vars_in(actual) — the empty set for a constant-only
// actual, more than one name for a compound expression, and the empty
// set again when an actual is simply missing (arity mismatch is handled
// conservatively rather than panicking). Effects on variables the callee
// doesn't reach through a parameter (its own locals or globals) pass
// through unchanged.
func Substitute(callee *Effect, calleeDef *ast.FunctionDef, actualArgs []ast.Expression) *Effect {
	subst := make(map[string]map[string]struct{}, len(calleeDef.Params))
	for i, param := range calleeDef.Params {
		if i < len(actualArgs) {
			subst[param] = ast.VarsIn(actualArgs[i])
		} else {
			subst[param] = map[string]struct{}{}
		}
	}

	out := New()
	substituteInto(out.Reads, out.ReadSites, callee.Reads, callee.ReadSites, subst)
	substituteInto(out.Writes, out.WriteSites, callee.Writes, callee.WriteSites, subst)
	return out
}

func substituteInto(dstSet map[string]struct{}, dstSites map[string]map[int]struct{}, srcSet map[string]struct{}, srcSites map[string]map[int]struct{}, subst map[string]map[string]struct{}) {
	for name := range srcSet {
		targets, isParam := subst[name]
		if !isParam {
			targets = map[string]struct{}{name: {}}
		}
		for target := range targets {
			dstSet[target] = struct{}{}
			if dstSites[target] == nil {
				dstSites[target] = make(map[int]struct{})
			}
			for line := range srcSites[name] {
				dstSites[target][line] = struct{}{}
			}
		}
	}
}

// EffectOfStatement computes the effect of a single statement given the
// current (possibly still-converging) effects of every function in the
// program, used as the per-iteration step of ComputeFunctionEffects.
func EffectOfStatement(stmt ast.Statement, funcs map[string]*ast.FunctionDef, current map[string]*Effect) *Effect {
	e := New()

	switch n := stmt.(type) {
	case *ast.Assign:
		e.AddReads(ast.VarsIn(n.Value), n.Line())
		e.AddWrite(n.Target, n.Line())
	case *ast.AssignCall:
		for _, arg := range n.Args {
			e.AddReads(ast.VarsIn(arg), n.Line())
		}
		if calleeDef, ok := funcs[n.Callee]; ok {
			if calleeEffect, ok := current[n.Callee]; ok {
				e.Union(Substitute(calleeEffect, calleeDef, n.Args))
			}
		}
		e.AddWrite(n.Target, n.Line())
	case *ast.Call:
		for _, arg := range n.Args {
			e.AddReads(ast.VarsIn(arg), n.Line())
		}
		if calleeDef, ok := funcs[n.Callee]; ok {
			if calleeEffect, ok := current[n.Callee]; ok {
				e.Union(Substitute(calleeEffect, calleeDef, n.Args))
			}
		}
	case *ast.Spawn:
		switch t := n.Target.(type) {
		case *ast.SpawnCall:
			for _, arg := range t.Args {
				e.AddReads(ast.VarsIn(arg), n.Line())
			}
			if calleeDef, ok := funcs[t.Callee]; ok {
				if calleeEffect, ok := current[t.Callee]; ok {
					e.Union(Substitute(calleeEffect, calleeDef, t.Args))
				}
			}
		case *ast.SpawnBlock:
			e.Union(EffectOfSequence(t.Body, funcs, current))
		}
	case *ast.Await:
		// no direct variable access
	case *ast.Return:
		e.AddReads(ast.VarsIn(n.Value), n.Line())
	case *ast.Sequence:
		e.Union(EffectOfSequence(n, funcs, current))
	case *ast.If:
		e.AddReads(ast.VarsIn(n.Cond), n.Line())
		e.Union(EffectOfStatement(n.Then, funcs, current))
		e.Union(EffectOfStatement(n.Else, funcs, current))
	case *ast.While:
		e.AddReads(ast.VarsIn(n.Cond), n.Line())
		e.Union(EffectOfStatement(n.Body, funcs, current))
	default:
		panic(ast.UnknownNodeError{Kind: "statement", Node: stmt})
	}

	return e
}

// EffectOfSequence folds EffectOfStatement across every statement in seq.
func EffectOfSequence(seq *ast.Sequence, funcs map[string]*ast.FunctionDef, current map[string]*Effect) *Effect {
	e := New()
	for _, s := range seq.Stmts {
		e.Union(EffectOfStatement(s, funcs, current))
	}
	return e
}

// ComputeFunctionEffects computes the interprocedural effect of every
// function in funcs via a monotone-union fixed point: each round
// recomputes every function's effect against the previous round's
// results, stopping when nothing changes or after
// config.MaxFixedPointIterations rounds, whichever comes first. Order of
// iteration over funcs is made deterministic (sorted by name) so the
// result doesn't depend on Go's randomized map order.
func ComputeFunctionEffects(funcs map[string]*ast.FunctionDef) map[string]*Effect {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	current := make(map[string]*Effect, len(funcs))
	for _, name := range names {
		current[name] = New()
	}

	for iter := 0; iter < config.MaxFixedPointIterations; iter++ {
		changed := false
		next := make(map[string]*Effect, len(funcs))
		for _, name := range names {
			next[name] = EffectOfSequence(funcs[name].Body, funcs, current)
		}
		for _, name := range names {
			if !current[name].Equals(next[name]) {
				changed = true
			}
		}
		current = next
		if !changed {
			break
		}
	}

	return current
}
