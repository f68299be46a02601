package parser

import (
	"testing"

	"github.com/funvibe/funxy-race/internal/ast"
	"github.com/funvibe/funxy-race/internal/lexer"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q): %v", src, err)
	}
	prog, err := ParseProgram(toks)
	if err != nil {
		t.Fatalf("ParseProgram(%q): %v", src, err)
	}
	return prog
}

func TestParseSimpleFunction(t *testing.T) {
	prog := mustParse(t, `
function main(x) {
	y = x + 1;
	return y;
}`)

	fn, ok := prog.Functions["main"]
	if !ok {
		t.Fatal("function main not found")
	}
	if len(fn.Params) != 1 || fn.Params[0] != "x" {
		t.Fatalf("params = %v, want [x]", fn.Params)
	}
	if len(fn.Body.Stmts) != 2 {
		t.Fatalf("body has %d statements, want 2", len(fn.Body.Stmts))
	}

	assign, ok := fn.Body.Stmts[0].(*ast.Assign)
	if !ok {
		t.Fatalf("stmt 0 is %T, want *ast.Assign", fn.Body.Stmts[0])
	}
	if assign.Target != "y" {
		t.Errorf("assign target = %q, want y", assign.Target)
	}

	ret, ok := fn.Body.Stmts[1].(*ast.Return)
	if !ok {
		t.Fatalf("stmt 1 is %T, want *ast.Return", fn.Body.Stmts[1])
	}
	if v, ok := ret.Value.(*ast.Variable); !ok || v.Name != "y" {
		t.Errorf("return value = %#v, want variable y", ret.Value)
	}
}

func TestParseSpawnAndAwait(t *testing.T) {
	prog := mustParse(t, `
function worker() {
	return 1;
}
function main() {
	h = spawn worker();
	await h;
	return 0;
}`)

	fn := prog.Functions["main"]
	spawn, ok := fn.Body.Stmts[0].(*ast.Spawn)
	if !ok {
		t.Fatalf("stmt 0 is %T, want *ast.Spawn", fn.Body.Stmts[0])
	}
	if spawn.Handle != "h" {
		t.Errorf("spawn handle = %q, want h", spawn.Handle)
	}
	call, ok := spawn.Target.(*ast.SpawnCall)
	if !ok || call.Callee != "worker" {
		t.Fatalf("spawn target = %#v, want SpawnCall(worker)", spawn.Target)
	}

	await, ok := fn.Body.Stmts[1].(*ast.Await)
	if !ok || await.Handle != "h" {
		t.Fatalf("stmt 1 = %#v, want Await(h)", fn.Body.Stmts[1])
	}
}

func TestParseSpawnBlock(t *testing.T) {
	prog := mustParse(t, `
function main() {
	spawn {
		x = 1;
	};
	return 0;
}`)

	fn := prog.Functions["main"]
	spawn, ok := fn.Body.Stmts[0].(*ast.Spawn)
	if !ok {
		t.Fatalf("stmt 0 is %T, want *ast.Spawn", fn.Body.Stmts[0])
	}
	if spawn.HasHandle() {
		t.Error("expected no handle for anonymous spawn block")
	}
	if _, ok := spawn.Target.(*ast.SpawnBlock); !ok {
		t.Fatalf("spawn target = %#v, want *ast.SpawnBlock", spawn.Target)
	}
}

func TestParseIfElseAndWhile(t *testing.T) {
	prog := mustParse(t, `
function main(n) {
	while (n < 10) {
		if (n == 5) {
			n = n + 1;
		} else {
			n = n + 2;
		}
	}
	return n;
}`)

	fn := prog.Functions["main"]
	wh, ok := fn.Body.Stmts[0].(*ast.While)
	if !ok {
		t.Fatalf("stmt 0 is %T, want *ast.While", fn.Body.Stmts[0])
	}
	body, ok := wh.Body.(*ast.Sequence)
	if !ok || len(body.Stmts) != 1 {
		t.Fatalf("while body = %#v, want single-statement sequence", wh.Body)
	}
	ifStmt, ok := body.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("while body stmt is %T, want *ast.If", body.Stmts[0])
	}
	if _, ok := ifStmt.Then.(*ast.Sequence); !ok {
		t.Errorf("if-then is %T, want *ast.Sequence", ifStmt.Then)
	}
	if _, ok := ifStmt.Else.(*ast.Sequence); !ok {
		t.Errorf("if-else is %T, want *ast.Sequence", ifStmt.Else)
	}
}

func TestParseDuplicateFunctionIsError(t *testing.T) {
	toks, err := lexer.Lex(`
function f() { return 1; }
function f() { return 2; }`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if _, err := ParseProgram(toks); err == nil {
		t.Fatal("expected a duplicate-function parse error, got nil")
	}
}

func TestParseDuplicateParameterIsError(t *testing.T) {
	toks, err := lexer.Lex(`function f(x, x) { return x; }`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if _, err := ParseProgram(toks); err == nil {
		t.Fatal("expected a duplicate-parameter parse error, got nil")
	}
}

func TestParseMissingSemicolonIsError(t *testing.T) {
	toks, err := lexer.Lex(`function f() { return 1 }`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if _, err := ParseProgram(toks); err == nil {
		t.Fatal("expected a missing-semicolon parse error, got nil")
	}
}
