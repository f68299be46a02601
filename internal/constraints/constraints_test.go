package constraints

import (
	"testing"

	"github.com/funvibe/funxy-race/internal/ast"
	"github.com/funvibe/funxy-race/internal/lexer"
	"github.com/funvibe/funxy-race/internal/parser"
)

func parseBody(t *testing.T, src string) *ast.Sequence {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	prog, err := parser.ParseProgram(toks)
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	return prog.Functions["main"].Body
}

func TestEnforceAllowsTopLevelSpawnAwait(t *testing.T) {
	body := parseBody(t, `function main() {
	h = spawn f();
	await h;
	return 0;
}
function f() { return 1; }`)

	if err := EnforceNoSpawnAwaitInControl(body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnforceRejectsSpawnInsideIf(t *testing.T) {
	body := parseBody(t, `function main() {
	if (1 == 1) {
		h = spawn f();
	} else {
		return 0;
	}
	return 1;
}
function f() { return 1; }`)

	if err := EnforceNoSpawnAwaitInControl(body); err == nil {
		t.Fatal("expected an error for spawn inside if, got nil")
	}
}

func TestEnforceRejectsAwaitInsideWhile(t *testing.T) {
	body := parseBody(t, `function main() {
	h = spawn f();
	while (1 == 1) {
		await h;
	}
	return 0;
}
function f() { return 1; }`)

	if err := EnforceNoSpawnAwaitInControl(body); err == nil {
		t.Fatal("expected an error for await inside while, got nil")
	}
}

func TestEnforceRejectsNestedSpawnThreeDeep(t *testing.T) {
	body := parseBody(t, `function main() {
	while (1 == 1) {
		if (1 == 1) {
			if (1 == 1) {
				h = spawn f();
			} else {
				return 0;
			}
		} else {
			return 0;
		}
	}
	return 1;
}
function f() { return 1; }`)

	if err := EnforceNoSpawnAwaitInControl(body); err == nil {
		t.Fatal("expected an error for a spawn three control-blocks deep, got nil")
	}
}

func TestListSpawnsAwaitsSkipsControlBodies(t *testing.T) {
	body := parseBody(t, `function main() {
	h = spawn f();
	if (1 == 1) {
		x = 1;
	} else {
		x = 2;
	}
	await h;
	return 0;
}
function f() { return 1; }`)

	stmts := ListSpawnsAwaits(body)
	if len(stmts) != 2 {
		t.Fatalf("got %d spawn/await statements, want 2", len(stmts))
	}
	if _, ok := stmts[0].(*ast.Spawn); !ok {
		t.Errorf("stmt 0 = %T, want *ast.Spawn", stmts[0])
	}
	if _, ok := stmts[1].(*ast.Await); !ok {
		t.Errorf("stmt 1 = %T, want *ast.Await", stmts[1])
	}
}
