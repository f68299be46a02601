// Package pipeline runs a source file through sequential analysis stages,
// adapted from funvibe/funxy's own internal/pipeline: a small ordered
// list of Processors threading a single context through.
package pipeline

import (
	"github.com/funvibe/funxy-race/internal/ast"
	"github.com/funvibe/funxy-race/internal/conflicts"
	"github.com/funvibe/funxy-race/internal/diagnostics"
	"github.com/funvibe/funxy-race/internal/token"
)

// Context carries one file's state as it passes through the pipeline.
// Each Processor reads what earlier stages produced and fills in its own
// field; Err is set by whichever stage first fails.
type Context struct {
	Path     string
	Source   string
	Tokens   []token.Token
	Program  *ast.Program
	Warnings []conflicts.RaceWarning
	Err      *diagnostics.DiagnosticError
}

// Processor is a single pipeline stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc func(ctx *Context) *Context

func (f ProcessorFunc) Process(ctx *Context) *Context { return f(ctx) }

// Pipeline is an ordered sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline running processors in order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run threads initialCtx through every stage in order, stopping early the
// moment a stage leaves Err set — each stage after lexing depends on the
// previous stage's output existing.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		if ctx.Err != nil {
			break
		}
		ctx = processor.Process(ctx)
	}
	return ctx
}
