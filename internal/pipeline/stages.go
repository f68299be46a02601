package pipeline

import (
	"github.com/funvibe/funxy-race/internal/analyzer"
	"github.com/funvibe/funxy-race/internal/diagnostics"
	"github.com/funvibe/funxy-race/internal/lexer"
	"github.com/funvibe/funxy-race/internal/parser"
)

// LexStage tokenizes ctx.Source into ctx.Tokens.
var LexStage = ProcessorFunc(func(ctx *Context) *Context {
	toks, err := lexer.Lex(ctx.Source)
	if err != nil {
		ctx.Err = err.(*diagnostics.DiagnosticError)
		return ctx
	}
	ctx.Tokens = toks
	return ctx
})

// ParseStage parses ctx.Tokens into ctx.Program.
var ParseStage = ProcessorFunc(func(ctx *Context) *Context {
	prog, err := parser.ParseProgram(ctx.Tokens)
	if err != nil {
		ctx.Err = err.(*diagnostics.DiagnosticError)
		return ctx
	}
	ctx.Program = prog
	return ctx
})

// AnalyzeStage validates and analyzes ctx.Program, filling ctx.Warnings.
var AnalyzeStage = ProcessorFunc(func(ctx *Context) *Context {
	warnings, diag := analyzer.Analyze(ctx.Program)
	if diag != nil {
		ctx.Err = diag
		return ctx
	}
	ctx.Warnings = warnings
	return ctx
})

// Standard is the default lex -> parse -> analyze pipeline used by the CLI.
func Standard() *Pipeline {
	return New(LexStage, ParseStage, AnalyzeStage)
}
