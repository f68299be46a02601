// Package diagnostics is the error currency shared by every stage of the
// analysis pipeline, in the idiom of funvibe/funxy's own
// internal/diagnostics.DiagnosticError: a single comparable error value
// carrying a line, a short code, and a human message, instead of ad hoc
// fmt.Errorf strings threaded through every layer.
package diagnostics

import "fmt"

// Code tags which of spec.md §7's three error kinds a DiagnosticError is.
type Code string

const (
	// CodeLexical is spec.md §7 item 1: a lexical error from internal/lexer.
	CodeLexical Code = "lexical"
	// CodeParse is spec.md §7 item 1: a parse error from internal/parser.
	CodeParse Code = "parse"
	// CodeSemantic is spec.md §7 item 2: a spawn/await-in-control violation.
	CodeSemantic Code = "semantic"
)

// DiagnosticError is a single reported problem with its source line.
type DiagnosticError struct {
	Line    int
	Code    Code
	Message string
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s error at line %d: %s", e.Code, e.Line, e.Message)
}

// NewLexError reports a lexical error at line.
func NewLexError(line int, message string) *DiagnosticError {
	return &DiagnosticError{Line: line, Code: CodeLexical, Message: message}
}

// NewParseError reports a parse error at line.
func NewParseError(line int, message string) *DiagnosticError {
	return &DiagnosticError{Line: line, Code: CodeParse, Message: message}
}

// NewSemanticError reports a semantic constraint violation at line (spec.md
// §4.1: spawn/await appearing lexically inside an if/while body).
func NewSemanticError(line int, message string) *DiagnosticError {
	return &DiagnosticError{Line: line, Code: CodeSemantic, Message: message}
}
