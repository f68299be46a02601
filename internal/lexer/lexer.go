// Package lexer tokenizes SMALL+spawn/await source text.
//
// Lexing and parsing are the external collaborators spec.md names but
// does not specify in detail (spec.md §1, §6) — this implementation
// exists so the analyzer core has a real front end to drive, in the
// shape of funvibe/funxy's own hand-written, rune-at-a-time lexer.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/funxy-race/internal/diagnostics"
	"github.com/funvibe/funxy-race/internal/token"
)

// Lexer scans a SMALL+spawn/await source string into a token stream.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

// New creates a Lexer positioned at the start of input.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// NextToken returns the next token in the stream, advancing the scanner.
// It returns an error only for a character the grammar does not recognize.
func (l *Lexer) NextToken() (token.Token, error) {
	for {
		l.skipWhitespace()
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}
		break
	}

	line, column := l.line, l.column

	var tok token.Token
	switch {
	case l.ch == 0:
		tok = token.Token{Type: token.EOF, Lexeme: "", Line: line, Column: column}
		return tok, nil
	case l.ch == '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.EQ, Lexeme: "==", Line: line, Column: column}
		} else {
			tok = token.Token{Type: token.ASSIGN, Lexeme: "=", Line: line, Column: column}
		}
	case l.ch == '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.NOT_EQ, Lexeme: "!=", Line: line, Column: column}
		} else {
			return token.Token{}, l.illegal(line, column)
		}
	case l.ch == '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.LT_EQ, Lexeme: "<=", Line: line, Column: column}
		} else {
			tok = token.Token{Type: token.LT, Lexeme: "<", Line: line, Column: column}
		}
	case l.ch == '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GT_EQ, Lexeme: ">=", Line: line, Column: column}
		} else {
			tok = token.Token{Type: token.GT, Lexeme: ">", Line: line, Column: column}
		}
	case l.ch == '+':
		tok = token.Token{Type: token.PLUS, Lexeme: "+", Line: line, Column: column}
	case l.ch == '-':
		tok = token.Token{Type: token.MINUS, Lexeme: "-", Line: line, Column: column}
	case l.ch == '*':
		tok = token.Token{Type: token.STAR, Lexeme: "*", Line: line, Column: column}
	case l.ch == '/':
		tok = token.Token{Type: token.SLASH, Lexeme: "/", Line: line, Column: column}
	case l.ch == '(':
		tok = token.Token{Type: token.LPAREN, Lexeme: "(", Line: line, Column: column}
	case l.ch == ')':
		tok = token.Token{Type: token.RPAREN, Lexeme: ")", Line: line, Column: column}
	case l.ch == '{':
		tok = token.Token{Type: token.LBRACE, Lexeme: "{", Line: line, Column: column}
	case l.ch == '}':
		tok = token.Token{Type: token.RBRACE, Lexeme: "}", Line: line, Column: column}
	case l.ch == ';':
		tok = token.Token{Type: token.SEMICOLON, Lexeme: ";", Line: line, Column: column}
	case l.ch == ',':
		tok = token.Token{Type: token.COMMA, Lexeme: ",", Line: line, Column: column}
	case isLetter(l.ch):
		lit := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(lit), Lexeme: lit, Line: line, Column: column}, nil
	case isDigit(l.ch):
		lit := l.readNumber()
		return token.Token{Type: token.INT, Lexeme: lit, Line: line, Column: column}, nil
	default:
		return token.Token{}, l.illegal(line, column)
	}

	l.readChar()
	return tok, nil
}

func (l *Lexer) illegal(line, column int) error {
	return diagnostics.NewLexError(line, fmt.Sprintf("unexpected character %q at col %d", l.ch, column))
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return unicode.IsDigit(ch)
}

// Lex tokenizes src completely, returning the full token stream (terminated
// by an EOF token) or the first lexical error encountered.
func Lex(src string) ([]token.Token, error) {
	l := New(src)
	var out []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Type == token.EOF {
			return out, nil
		}
	}
}
