// Package constraints enforces the structural validity rules of spec.md
// §4.1: spawn and await must not appear lexically nested inside an if or
// while body. It is grounded line-for-line on the reference
// implementation's constraints.py.
package constraints

import (
	"github.com/funvibe/funxy-race/internal/ast"
	"github.com/funvibe/funxy-race/internal/diagnostics"
)

// EnforceNoSpawnAwaitInControl walks stmt and returns a semantic
// DiagnosticError the first time a Spawn or Await is found lexically inside
// an if/while body. Sequence does not itself count as "inside control" —
// only If's branches and While's body set the flag, and it propagates
// through nested Sequences so a spawn three blocks deep inside a while is
// still caught.
func EnforceNoSpawnAwaitInControl(stmt ast.Statement) error {
	return enforce(stmt, false)
}

func enforce(stmt ast.Statement, insideControl bool) error {
	switch n := stmt.(type) {
	case *ast.Spawn:
		if insideControl {
			return diagnostics.NewSemanticError(n.Line(), "spawn is not allowed inside if/while")
		}
	case *ast.Await:
		if insideControl {
			return diagnostics.NewSemanticError(n.Line(), "await is not allowed inside if/while")
		}
	case *ast.Sequence:
		for _, s := range n.Stmts {
			if err := enforce(s, insideControl); err != nil {
				return err
			}
		}
	case *ast.If:
		if err := enforce(n.Then, true); err != nil {
			return err
		}
		if err := enforce(n.Else, true); err != nil {
			return err
		}
	case *ast.While:
		if err := enforce(n.Body, true); err != nil {
			return err
		}
	case *ast.Assign, *ast.AssignCall, *ast.Call, *ast.Return:
		// leaves; nothing to recurse into
	default:
		panic(ast.UnknownNodeError{Kind: "statement", Node: stmt})
	}
	return nil
}

// ListSpawnsAwaits collects every Spawn and Await statement reachable from
// stmt without descending into If/While bodies, matching spec.md §4.1's
// guarantee that (once EnforceNoSpawnAwaitInControl has passed) every
// spawn/await in a function lives at the top level of some Sequence chain
// reachable without crossing a branch.
func ListSpawnsAwaits(stmt ast.Statement) []ast.Statement {
	var out []ast.Statement
	collect(stmt, &out)
	return out
}

func collect(stmt ast.Statement, out *[]ast.Statement) {
	switch n := stmt.(type) {
	case *ast.Spawn:
		*out = append(*out, n)
	case *ast.Await:
		*out = append(*out, n)
	case *ast.Sequence:
		for _, s := range n.Stmts {
			collect(s, out)
		}
	case *ast.If, *ast.While, *ast.Assign, *ast.AssignCall, *ast.Call, *ast.Return:
		// do not descend into control bodies; other leaves have nothing to collect
	default:
		panic(ast.UnknownNodeError{Kind: "statement", Node: stmt})
	}
}
