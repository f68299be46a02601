// Package parser implements a recursive-descent parser for SMALL+spawn/await
// source, grounded on the reference implementation's parser.py grammar and
// expressed with the peek/at/expect idiom funvibe/funxy's own parser
// package uses.
package parser

import (
	"fmt"

	"github.com/funvibe/funxy-race/internal/ast"
	"github.com/funvibe/funxy-race/internal/diagnostics"
	"github.com/funvibe/funxy-race/internal/token"
)

// Parser consumes a flat token stream and builds a *ast.Program.
type Parser struct {
	toks []token.Token
	pos  int
}

// New creates a Parser over a complete token stream (EOF-terminated).
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[idx]
}

func (p *Parser) at(t token.Type) bool {
	return p.peek().Type == t
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(t token.Type) (token.Token, error) {
	tok := p.peek()
	if tok.Type != t {
		return token.Token{}, p.errorf(tok, "expected %s, got %s %q", t, tok.Type, tok.Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) error {
	return diagnostics.NewParseError(tok.Line, fmt.Sprintf(format, args...))
}

// ParseProgram parses a complete source unit into a Program.
func ParseProgram(toks []token.Token) (*ast.Program, error) {
	p := New(toks)
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	funcs := make(map[string]*ast.FunctionDef)
	for !p.at(token.EOF) {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		if _, dup := funcs[fn.Name]; dup {
			return nil, diagnostics.NewParseError(fn.L, fmt.Sprintf("duplicate function %q", fn.Name))
		}
		funcs[fn.Name] = fn
	}
	return &ast.Program{Functions: funcs}, nil
}

func (p *Parser) parseFunction() (*ast.FunctionDef, error) {
	start, err := p.expect(token.FUNCTION)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var params []string
	seen := make(map[string]bool)
	if !p.at(token.RPAREN) {
		params, err = p.parseParamList(seen)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.FunctionDef{Name: nameTok.Lexeme, Params: params, Body: body, L: start.Line}, nil
}

func (p *Parser) parseParamList(seen map[string]bool) ([]string, error) {
	var params []string
	first, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if err := addParam(seen, first, p); err != nil {
		return nil, err
	}
	params = append(params, first.Lexeme)
	for p.at(token.COMMA) {
		p.advance()
		t, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if err := addParam(seen, t, p); err != nil {
			return nil, err
		}
		params = append(params, t.Lexeme)
	}
	return params, nil
}

func addParam(seen map[string]bool, t token.Token, p *Parser) error {
	if seen[t.Lexeme] {
		return p.errorf(t, "duplicate parameter %q", t.Lexeme)
	}
	seen[t.Lexeme] = true
	return nil
}

func (p *Parser) parseBlock() (*ast.Sequence, error) {
	start, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseStmtListUntil(token.RBRACE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Sequence{L: start.Line, Stmts: stmts}, nil
}

func (p *Parser) parseStmtListUntil(end token.Type) ([]ast.Statement, error) {
	var out []ast.Statement
	for !p.at(end) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func (p *Parser) parseStmt() (ast.Statement, error) {
	t := p.peek()

	switch t.Type {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.LBRACE:
		return p.parseBlock()
	case token.RETURN:
		return p.parseReturn()
	case token.SPAWN:
		return p.parseSpawn("")
	case token.AWAIT:
		return p.parseAwait()
	case token.IDENT:
		return p.parseIdentLedStmt()
	}

	return nil, p.errorf(t, "unexpected token %s %q", t.Type, t.Lexeme)
}

func (p *Parser) parseIdentLedStmt() (ast.Statement, error) {
	t := p.peek()

	if p.peekAt(1).Type == token.ASSIGN {
		lhs := p.advance()
		p.advance() // consume '='

		if p.at(token.SPAWN) {
			return p.parseSpawn(lhs.Lexeme)
		}

		if p.at(token.IDENT) && p.peekAt(1).Type == token.LPAREN {
			callee, args, err := p.parseFuncCall()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.SEMICOLON); err != nil {
				return nil, err
			}
			return &ast.AssignCall{L: lhs.Line, Target: lhs.Lexeme, Callee: callee, Args: args}, nil
		}

		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.Assign{L: lhs.Line, Target: lhs.Lexeme, Value: expr}, nil
	}

	if p.peekAt(1).Type == token.LPAREN {
		callee, args, err := p.parseFuncCall()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.Call{L: t.Line, Callee: callee, Args: args}, nil
	}

	return nil, p.errorf(t, "unexpected token %s %q", t.Type, t.Lexeme)
}

func (p *Parser) parseIf() (ast.Statement, error) {
	start, err := p.expect(token.IF)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	thenS, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ELSE); err != nil {
		return nil, err
	}
	elseS, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.If{L: start.Line, Cond: cond, Then: thenS, Else: elseS}, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	start, err := p.expect(token.WHILE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.While{L: start.Line, Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	start, err := p.expect(token.RETURN)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.Return{L: start.Line, Value: expr}, nil
}

func (p *Parser) parseAwait() (ast.Statement, error) {
	start, err := p.expect(token.AWAIT)
	if err != nil {
		return nil, err
	}
	h, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.Await{L: start.Line, Handle: h.Lexeme}, nil
}

func (p *Parser) parseSpawn(handle string) (ast.Statement, error) {
	kw, err := p.expect(token.SPAWN)
	if err != nil {
		return nil, err
	}
	line := kw.Line

	if p.at(token.LBRACE) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.Spawn{L: line, Handle: handle, Target: &ast.SpawnBlock{L: line, Body: body}}, nil
	}

	callee, args, err := p.parseFuncCall()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.Spawn{L: line, Handle: handle, Target: &ast.SpawnCall{L: line, Callee: callee, Args: args}}, nil
}

func (p *Parser) parseFuncCall() (string, []ast.Expression, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return "", nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return "", nil, err
	}

	var args []ast.Expression
	if !p.at(token.RPAREN) {
		arg, err := p.parseExpr()
		if err != nil {
			return "", nil, err
		}
		args = append(args, arg)
		for p.at(token.COMMA) {
			p.advance()
			arg, err := p.parseExpr()
			if err != nil {
				return "", nil, err
			}
			args = append(args, arg)
		}
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return "", nil, err
	}
	return name.Lexeme, args, nil
}

// parseExpr parses the SMALL-style flat expression grammar: an operand,
// optionally followed by one binary operator and a second operand. There is
// no general precedence climbing because the grammar does not nest binary
// operators (spec.md §3's Expression shape takes exactly two operands).
func (p *Parser) parseExpr() (ast.Expression, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	t := p.peek()
	if op, ok := arithOps[t.Type]; ok {
		p.advance()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &ast.Arithmetic{L: left.Line(), Op: op, Left: left, Right: right}, nil
	}
	if op, ok := relOps[t.Type]; ok {
		p.advance()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &ast.Relation{L: left.Line(), Op: op, Left: left, Right: right}, nil
	}

	return left, nil
}

var arithOps = map[token.Type]ast.ArithOp{
	token.PLUS:  ast.Add,
	token.MINUS: ast.Sub,
	token.STAR:  ast.Mul,
	token.SLASH: ast.Div,
}

var relOps = map[token.Type]ast.RelOp{
	token.EQ:     ast.Eq,
	token.NOT_EQ: ast.NotEq,
	token.LT:     ast.Lt,
	token.LT_EQ:  ast.LtEq,
	token.GT:     ast.Gt,
	token.GT_EQ:  ast.GtEq,
	token.AND:    ast.And,
	token.OR:     ast.Or,
}

func (p *Parser) parseOperand() (ast.Expression, error) {
	t := p.peek()

	switch t.Type {
	case token.INT:
		p.advance()
		var v int64
		if _, err := fmt.Sscanf(t.Lexeme, "%d", &v); err != nil {
			return nil, p.errorf(t, "invalid integer literal %q", t.Lexeme)
		}
		return &ast.IntegerLiteral{L: t.Line, Value: v}, nil
	case token.TRUE:
		p.advance()
		return &ast.BooleanLiteral{L: t.Line, Value: true}, nil
	case token.FALSE:
		p.advance()
		return &ast.BooleanLiteral{L: t.Line, Value: false}, nil
	case token.IDENT:
		p.advance()
		return &ast.Variable{L: t.Line, Name: t.Lexeme}, nil
	}

	return nil, p.errorf(t, "expected operand, got %s %q", t.Type, t.Lexeme)
}
