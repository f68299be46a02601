package conflicts

import (
	"testing"

	"github.com/funvibe/funxy-race/internal/concurrency"
	"github.com/funvibe/funxy-race/internal/effects"
)

func threadWith(reads, writes []string, spawnLine int, desc string) *concurrency.ThreadInfo {
	e := effects.New()
	for _, r := range reads {
		e.AddRead(r, spawnLine)
	}
	for _, w := range writes {
		e.AddWrite(w, spawnLine)
	}
	return &concurrency.ThreadInfo{ThreadID: desc, SpawnLine: spawnLine, Description: desc, Effect: e}
}

func TestCheckAccessWriteVsThreadRead(t *testing.T) {
	th := threadWith([]string{"x"}, nil, 3, "spawn worker")
	warn := CheckAccess(ModeWrite, 10, "main:10", th, "x")
	if warn == nil {
		t.Fatal("expected a warning for write vs thread read of same var")
	}
	if warn.Var != "x" || warn.LineA != 10 {
		t.Errorf("warning = %+v, unexpected fields", warn)
	}
}

func TestCheckAccessReadVsThreadReadIsSafe(t *testing.T) {
	th := threadWith([]string{"x"}, nil, 3, "spawn worker")
	if warn := CheckAccess(ModeRead, 10, "main:10", th, "x"); warn != nil {
		t.Errorf("expected no warning for read vs thread read, got %+v", warn)
	}
}

func TestCheckAccessReadVsThreadWriteConflicts(t *testing.T) {
	th := threadWith(nil, []string{"x"}, 3, "spawn worker")
	if warn := CheckAccess(ModeRead, 10, "main:10", th, "x"); warn == nil {
		t.Error("expected a warning for read vs thread write")
	}
}

func TestCheckThreadThreadOverlap(t *testing.T) {
	old := threadWith([]string{"x"}, nil, 3, "t1")
	newer := threadWith(nil, []string{"x"}, 5, "t2")

	warnings := CheckThreadThread(newer, old)
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	if warnings[0].Var != "x" {
		t.Errorf("warning var = %q, want x", warnings[0].Var)
	}
}

func TestCheckThreadThreadNoOverlap(t *testing.T) {
	old := threadWith([]string{"x"}, nil, 3, "t1")
	newer := threadWith([]string{"y"}, nil, 5, "t2")

	if warnings := CheckThreadThread(newer, old); len(warnings) != 0 {
		t.Errorf("got %d warnings for disjoint footprints, want 0", len(warnings))
	}
}

func TestDedupRemovesStructuralDuplicates(t *testing.T) {
	w := RaceWarning{Var: "x", Kind: "write/thread", LineA: 10, LinesB: []int{3}, CtxB: "t1"}
	in := []RaceWarning{w, w}
	out := Dedup(in)
	if len(out) != 1 {
		t.Fatalf("got %d warnings after Dedup, want 1", len(out))
	}
}

func TestSortWarningsOrdersByLineThenVarThenKind(t *testing.T) {
	warnings := []RaceWarning{
		{Var: "y", LineA: 5, Kind: "a"},
		{Var: "x", LineA: 5, Kind: "a"},
		{Var: "x", LineA: 2, Kind: "a"},
	}
	SortWarnings(warnings)

	if warnings[0].LineA != 2 {
		t.Fatalf("first warning line = %d, want 2", warnings[0].LineA)
	}
	if warnings[1].Var != "x" || warnings[2].Var != "y" {
		t.Fatalf("unexpected var order: %+v", warnings)
	}
}
