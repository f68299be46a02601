package lexer

import (
	"testing"

	"github.com/funvibe/funxy-race/internal/token"
)

func TestNextTokenBasic(t *testing.T) {
	src := `function main(x) {
	y = x + 1;
	if (y == 2) { return y; } else { return x; }
}`

	want := []token.Type{
		token.FUNCTION, token.IDENT, token.LPAREN, token.IDENT, token.RPAREN, token.LBRACE,
		token.IDENT, token.ASSIGN, token.IDENT, token.PLUS, token.INT, token.SEMICOLON,
		token.IF, token.LPAREN, token.IDENT, token.EQ, token.INT, token.RPAREN,
		token.LBRACE, token.RETURN, token.IDENT, token.SEMICOLON, token.RBRACE,
		token.ELSE, token.LBRACE, token.RETURN, token.IDENT, token.SEMICOLON, token.RBRACE,
		token.RBRACE, token.EOF,
	}

	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s (%q), want %s", i, toks[i].Type, toks[i].Lexeme, tt)
		}
	}
}

func TestNextTokenComments(t *testing.T) {
	src := "x = 1; // trailing comment\ny = 2;"
	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	// x = 1 ; y = 2 ; EOF
	if len(toks) != 9 {
		t.Fatalf("got %d tokens, want 9: %+v", len(toks), toks)
	}
}

func TestNextTokenIllegalCharacter(t *testing.T) {
	_, err := Lex("x = 1 ! y;")
	if err == nil {
		t.Fatal("expected an error for bare '!', got nil")
	}
}

func TestNextTokenMultiCharOperators(t *testing.T) {
	toks, err := Lex("a <= b >= c != d == e")
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	want := []token.Type{token.IDENT, token.LT_EQ, token.IDENT, token.GT_EQ, token.IDENT, token.NOT_EQ, token.IDENT, token.EQ, token.IDENT, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}
