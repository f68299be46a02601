// Package format renders race warnings as human-readable text, grounded
// on the reference implementation's formatting.py for the block shape and
// on funvibe/funxy's internal/evaluator/builtins_term.go for TTY-aware
// coloring via go-isatty.
package format

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/funxy-race/internal/conflicts"
)

const (
	colorReset  = "\x1b[0m"
	colorBold   = "\x1b[1m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
)

// IsTerminal reports whether w is a color-capable terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// FormatWarning renders a single race warning as a "[RACE] ..." block,
// matching formatting.py's format_warning: a header line naming the
// variable, the detected line, and the kind, followed by an "A:" line for
// the triggering access and a "B:" line for the lines/context it
// conflicts with.
func FormatWarning(w conflicts.RaceWarning, color bool) string {
	var b strings.Builder

	bLines := make([]string, len(w.LinesB))
	for i, l := range w.LinesB {
		bLines[i] = fmt.Sprintf("%d", l)
	}

	header := fmt.Sprintf("[RACE] var='%s' @ line %d (%s)", w.Var, w.LineA, w.Kind)
	if color {
		header = colorBold + colorRed + header + colorReset
	}
	fmt.Fprintln(&b, header)
	fmt.Fprintf(&b, "  A: %s\n", w.CtxA)
	fmt.Fprintf(&b, "  B: lines {%s} in %s\n", strings.Join(bLines, ", "), w.CtxB)

	return b.String()
}

// FormatSummary renders every warning in order, preceded by a one-line
// count, or a single "No race candidates found." line when warnings is
// empty — the literal strings spec.md §6 (and the reference
// implementation's cli.py) mandate.
func FormatSummary(warnings []conflicts.RaceWarning, color bool) string {
	if len(warnings) == 0 {
		msg := "No race candidates found."
		if color {
			msg = colorYellow + msg + colorReset
		}
		return msg + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d race candidate(s) found:\n\n", len(warnings))
	for _, w := range warnings {
		b.WriteString(FormatWarning(w, color))
	}
	return b.String()
}
