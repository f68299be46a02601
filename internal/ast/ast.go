// Package ast defines the abstract syntax this analyzer consumes:
// expressions, statements, function definitions, and whole programs, as
// specified in spec.md §3. Nodes are closed sum types dispatched by Go
// type switch in the analysis packages (internal/effects, internal/walker,
// ...) rather than by a Visitor — spec.md §9 notes there is no benefit to
// runtime polymorphism here, and this module has exactly one consumer
// family for each node kind, so a Visitor interface would sit unused.
package ast

import "fmt"

// Expression is any node that can appear where a value is expected.
type Expression interface {
	Line() int
	expressionNode()
}

// Statement is any node that can appear in a function body.
type Statement interface {
	Line() int
	statementNode()
}

// Variable references a named variable.
type Variable struct {
	L    int
	Name string
}

func (v *Variable) Line() int      { return v.L }
func (v *Variable) expressionNode() {}

// IntegerLiteral is a literal integer constant.
type IntegerLiteral struct {
	L     int
	Value int64
}

func (n *IntegerLiteral) Line() int      { return n.L }
func (n *IntegerLiteral) expressionNode() {}

// BooleanLiteral is a literal True/False constant.
type BooleanLiteral struct {
	L     int
	Value bool
}

func (n *BooleanLiteral) Line() int      { return n.L }
func (n *BooleanLiteral) expressionNode() {}

// ArithOp is an arithmetic binary operator: + - * /.
type ArithOp string

const (
	Add ArithOp = "+"
	Sub ArithOp = "-"
	Mul ArithOp = "*"
	Div ArithOp = "/"
)

// Arithmetic is a binary arithmetic expression.
type Arithmetic struct {
	L     int
	Op    ArithOp
	Left  Expression
	Right Expression
}

func (n *Arithmetic) Line() int      { return n.L }
func (n *Arithmetic) expressionNode() {}

// RelOp is a relational/logical binary operator.
type RelOp string

const (
	Eq    RelOp = "=="
	NotEq RelOp = "!="
	Lt    RelOp = "<"
	LtEq  RelOp = "<="
	Gt    RelOp = ">"
	GtEq  RelOp = ">="
	And   RelOp = "and"
	Or    RelOp = "or"
)

// Relation is a binary relational or logical expression.
type Relation struct {
	L     int
	Op    RelOp
	Left  Expression
	Right Expression
}

func (n *Relation) Line() int      { return n.L }
func (n *Relation) expressionNode() {}

// Assign is `target = expr;`.
type Assign struct {
	L      int
	Target string
	Value  Expression
}

func (n *Assign) Line() int     { return n.L }
func (n *Assign) statementNode() {}

// AssignCall is `target = callee(args);`.
type AssignCall struct {
	L        int
	Target   string
	Callee   string
	Args     []Expression
}

func (n *AssignCall) Line() int     { return n.L }
func (n *AssignCall) statementNode() {}

// Call is `callee(args);` with no assignment.
type Call struct {
	L      int
	Callee string
	Args   []Expression
}

func (n *Call) Line() int     { return n.L }
func (n *Call) statementNode() {}

// SpawnTarget is either a SpawnCall or a SpawnBlock.
type SpawnTarget interface {
	Line() int
	spawnTargetNode()
}

// SpawnCall spawns a named function: `spawn f(args)`.
type SpawnCall struct {
	L      int
	Callee string
	Args   []Expression
}

func (n *SpawnCall) Line() int         { return n.L }
func (n *SpawnCall) spawnTargetNode()   {}

// SpawnBlock spawns an inline statement block: `spawn { ... }`.
type SpawnBlock struct {
	L    int
	Body *Sequence
}

func (n *SpawnBlock) Line() int       { return n.L }
func (n *SpawnBlock) spawnTargetNode() {}

// Spawn is `handle = spawn <target>;` or `spawn <target>;` (handle == "").
type Spawn struct {
	L      int
	Handle string // "" if no handle was bound
	Target SpawnTarget
}

func (n *Spawn) Line() int     { return n.L }
func (n *Spawn) statementNode() {}

// HasHandle reports whether this spawn binds a handle variable.
func (n *Spawn) HasHandle() bool { return n.Handle != "" }

// Await is `await handle;`.
type Await struct {
	L      int
	Handle string
}

func (n *Await) Line() int     { return n.L }
func (n *Await) statementNode() {}

// If is `if (cond) then_branch else else_branch`.
type If struct {
	L          int
	Cond       Expression
	Then       Statement
	Else       Statement
}

func (n *If) Line() int     { return n.L }
func (n *If) statementNode() {}

// While is `while (cond) body`.
type While struct {
	L    int
	Cond Expression
	Body Statement
}

func (n *While) Line() int     { return n.L }
func (n *While) statementNode() {}

// Sequence is an ordered list of statements (a function body or a block).
type Sequence struct {
	L     int
	Stmts []Statement
}

func (n *Sequence) Line() int     { return n.L }
func (n *Sequence) statementNode() {}

// Return is `return expr;`.
type Return struct {
	L     int
	Value Expression
}

func (n *Return) Line() int     { return n.L }
func (n *Return) statementNode() {}

// FunctionDef is a top-level function declaration.
type FunctionDef struct {
	Name   string
	Params []string
	Body   *Sequence
	L      int
}

func (f *FunctionDef) Line() int { return f.L }

// Program is a whole analyzed unit: every declared function, by name.
type Program struct {
	Functions map[string]*FunctionDef
}

// VarsIn returns the set of variable names referenced by e.
func VarsIn(e Expression) map[string]struct{} {
	out := make(map[string]struct{})
	collectVars(e, out)
	return out
}

func collectVars(e Expression, out map[string]struct{}) {
	switch n := e.(type) {
	case *Variable:
		out[n.Name] = struct{}{}
	case *IntegerLiteral, *BooleanLiteral:
		// no variables
	case *Arithmetic:
		collectVars(n.Left, out)
		collectVars(n.Right, out)
	case *Relation:
		collectVars(n.Left, out)
		collectVars(n.Right, out)
	default:
		panic(UnknownNodeError{Kind: "expression", Node: e})
	}
}

// UnknownNodeError is the internal/programmer-error failure mode of spec.md
// §7 item 3: an AST variant the walker or effect engine doesn't recognize.
// It is never expected to fire against output of internal/parser.
type UnknownNodeError struct {
	Kind string
	Node interface{}
}

func (e UnknownNodeError) Error() string {
	return fmt.Sprintf("ast: unknown %s node: %T", e.Kind, e.Node)
}
