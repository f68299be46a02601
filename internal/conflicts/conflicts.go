// Package conflicts classifies accesses against live threads (and threads
// against each other) into race warnings, grounded on the reference
// implementation's conflicts.py.
package conflicts

import (
	"fmt"
	"sort"

	"github.com/funvibe/funxy-race/internal/concurrency"
)

// Mode is the kind of access being checked against a live thread: spec.md
// §3's closed RaceWarning.kind enum is {"R vs T", "W vs T", "RW vs T",
// "T vs T"} — Mode covers the access-vs-thread half of it.
type Mode string

const (
	ModeRead      Mode = "R"
	ModeWrite     Mode = "W"
	ModeReadWrite Mode = "RW"
)

// ModeOf returns the access mode for a variable touched by a read, a
// write, or both in the same statement (mode_of in the reference
// implementation).
func ModeOf(isRead, isWrite bool) Mode {
	switch {
	case isRead && isWrite:
		return ModeReadWrite
	case isWrite:
		return ModeWrite
	default:
		return ModeRead
	}
}

const kindThreadThread = "T vs T"

// RaceWarning reports one detected race: a variable touched at line A
// (outside any thread, or by thread A in a thread-vs-thread check) that
// conflicts with the same variable as touched by a live thread at one or
// more other lines. RaceWarning cannot be compared with == (LinesB is a
// slice), so Key renders every field into a string and Dedup uses that
// string as the set key.
type RaceWarning struct {
	Var    string
	Kind   string // one of spec.md §3's closed enum: "R vs T", "W vs T", "RW vs T", "T vs T"
	LineA  int
	CtxA   string
	LinesB []int
	CtxB   string
}

// Key returns a string uniquely identifying w for deduplication/sorting.
func (w RaceWarning) Key() string {
	return fmt.Sprintf("%d:%s:%s:%s:%v:%s", w.LineA, w.Var, w.Kind, w.CtxA, w.LinesB, w.CtxB)
}

func collectOtherLines(t *concurrency.ThreadInfo, varName string) []int {
	lineSet := make(map[int]struct{})
	for line := range t.Effect.ReadSites[varName] {
		lineSet[line] = struct{}{}
	}
	for line := range t.Effect.WriteSites[varName] {
		lineSet[line] = struct{}{}
	}
	if len(lineSet) == 0 {
		lineSet[t.SpawnLine] = struct{}{}
	}
	out := make([]int, 0, len(lineSet))
	for line := range lineSet {
		out = append(out, line)
	}
	sort.Ints(out)
	return out
}

// CheckAccess reports a race warning if an access of mode accessing
// varName at line (in context ctxA) conflicts with thread t's footprint:
// a write always conflicts with any access to the same variable by a live
// thread, and a read conflicts only if the thread writes that variable.
func CheckAccess(mode Mode, line int, ctxA string, t *concurrency.ThreadInfo, varName string) *RaceWarning {
	_, threadReads := t.Effect.Reads[varName]
	_, threadWrites := t.Effect.Writes[varName]

	conflict := false
	switch mode {
	case ModeWrite, ModeReadWrite:
		conflict = threadReads || threadWrites
	case ModeRead:
		conflict = threadWrites
	}
	if !conflict {
		return nil
	}

	kind := fmt.Sprintf("%s vs T", mode)
	return &RaceWarning{
		Var:    varName,
		Kind:   kind,
		LineA:  line,
		CtxA:   ctxA,
		LinesB: collectOtherLines(t, varName),
		CtxB:   t.Description,
	}
}

// CheckThreadThread reports every race warning arising from a newly
// spawned thread's footprint overlapping an already-live thread's
// footprint: a true write/write or write/read overlap on some shared
// variable between the two threads' read and write sets.
func CheckThreadThread(newThread, old *concurrency.ThreadInfo) []RaceWarning {
	var out []RaceWarning

	overlap := make(map[string]struct{})
	for v := range newThread.Effect.Writes {
		if _, r := old.Effect.Reads[v]; r {
			overlap[v] = struct{}{}
		}
		if _, w := old.Effect.Writes[v]; w {
			overlap[v] = struct{}{}
		}
	}
	for v := range newThread.Effect.Reads {
		if _, w := old.Effect.Writes[v]; w {
			overlap[v] = struct{}{}
		}
	}

	vars := make([]string, 0, len(overlap))
	for v := range overlap {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	for _, v := range vars {
		out = append(out, RaceWarning{
			Var:    v,
			Kind:   kindThreadThread,
			LineA:  newThread.SpawnLine,
			CtxA:   newThread.Description,
			LinesB: collectOtherLines(old, v),
			CtxB:   old.Description,
		})
	}
	return out
}

// SortWarnings orders warnings deterministically by (line, var, kind),
// matching analyze_program's final sort in the reference implementation.
func SortWarnings(warnings []RaceWarning) {
	sort.Slice(warnings, func(i, j int) bool {
		a, b := warnings[i], warnings[j]
		if a.LineA != b.LineA {
			return a.LineA < b.LineA
		}
		if a.Var != b.Var {
			return a.Var < b.Var
		}
		return a.Kind < b.Kind
	})
}

// Dedup removes structurally-equal warnings, keeping the first occurrence
// of each distinct Key.
func Dedup(warnings []RaceWarning) []RaceWarning {
	seen := make(map[string]struct{}, len(warnings))
	out := make([]RaceWarning, 0, len(warnings))
	for _, w := range warnings {
		k := w.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, w)
	}
	return out
}
