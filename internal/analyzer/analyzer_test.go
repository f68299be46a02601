package analyzer

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/funvibe/funxy-race/internal/ast"
	"github.com/funvibe/funxy-race/internal/lexer"
	"github.com/funvibe/funxy-race/internal/parser"
)

// loadFixture splits a txtar archive into its "src.cr" source and the
// expected-output lines in "expect" (one "line var" pair per expected
// warning, in the order Analyze is required to return them, or the
// literal line "ERROR" when the program is expected to fail validation).
func loadFixture(t *testing.T, path string) (string, []string) {
	t.Helper()
	ar, err := txtar.ParseFile(path)
	if err != nil {
		t.Fatalf("txtar.ParseFile(%s): %v", path, err)
	}

	var src string
	var expectRaw string
	for _, f := range ar.Files {
		switch f.Name {
		case "src.cr":
			src = string(f.Data)
		case "expect":
			expectRaw = string(f.Data)
		}
	}

	var expect []string
	for _, line := range strings.Split(strings.TrimSpace(expectRaw), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			expect = append(expect, line)
		}
	}
	return src, expect
}

func mustProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	prog, err := parser.ParseProgram(toks)
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	return prog
}

func TestAnalyzeFixtures(t *testing.T) {
	paths, err := filepath.Glob("testdata/*.txtar")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no txtar fixtures found under testdata/")
	}

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, expect := loadFixture(t, path)
			prog := mustProgram(t, src)

			warnings, diag := Analyze(prog)

			if len(expect) == 1 && expect[0] == "ERROR" {
				if diag == nil {
					t.Fatal("expected a diagnostic error, got none")
				}
				return
			}

			if diag != nil {
				t.Fatalf("unexpected diagnostic error: %v", diag)
			}

			if len(warnings) != len(expect) {
				t.Fatalf("got %d warnings, want %d: %+v", len(warnings), len(expect), warnings)
			}
			for i, w := range warnings {
				got := fmt.Sprintf("%d %s", w.LineA, w.Var)
				if got != expect[i] {
					t.Errorf("warning %d = %q, want %q", i, got, expect[i])
				}
			}
		})
	}
}

func TestAnalyzeIsDeterministicAcrossRuns(t *testing.T) {
	src, _ := loadFixture(t, "testdata/thread_thread_overlap.txtar")
	prog := mustProgram(t, src)

	first, _ := Analyze(prog)
	for i := 0; i < 5; i++ {
		again, _ := Analyze(mustProgram(t, src))
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d warnings, want %d", i, len(again), len(first))
		}
		for j := range first {
			if !reflect.DeepEqual(again[j], first[j]) {
				t.Fatalf("run %d: warning %d differs: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestAnalyzeMonotonicRemovingAwaitAddsWarnings(t *testing.T) {
	withAwaitFirst := mustProgram(t, `
function writer(x) {
	x = x + 1;
	return x;
}
function main() {
	shared = 1;
	h = spawn writer(shared);
	await h;
	shared = 3;
	return shared;
}`)
	withoutAwait := mustProgram(t, `
function writer(x) {
	x = x + 1;
	return x;
}
function main() {
	shared = 1;
	h = spawn writer(shared);
	shared = 3;
	await h;
	return shared;
}`)

	clean, _ := Analyze(withAwaitFirst)
	raced, _ := Analyze(withoutAwait)

	if len(clean) != 0 {
		t.Fatalf("expected the awaited-before-write program to be clean, got %+v", clean)
	}
	if len(raced) == 0 {
		t.Fatal("expected the write-before-await program to raise a warning")
	}
}

func TestAnalyzeHandleShadowingOrphansPriorThread(t *testing.T) {
	prog := mustProgram(t, `
function writer(x) {
	x = x + 1;
	return x;
}
function main() {
	shared = 1;
	h = spawn writer(shared);
	h = spawn writer(shared);
	shared = 9;
	await h;
	return shared;
}`)

	warnings, diag := Analyze(prog)
	if diag != nil {
		t.Fatalf("unexpected diagnostic error: %v", diag)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning: the first spawn's thread is orphaned by the handle overwrite and still races with the write")
	}
}
