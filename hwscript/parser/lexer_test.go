package parser

import (
	"testing"
)

func TestLexer(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenKind
	}{
		{"", nil},
		{"var", []TokenKind{TokenKeyword}},
		{"var x = 1;", []TokenKind{TokenKeyword, TokenIdent, TokenOperator, TokenNumber, TokenOperator}},
		{"3.14", []TokenKind{TokenNumber}},
		{"1e10 2E-3", []TokenKind{TokenNumber, TokenNumber}},
		{`"hello"`, []TokenKind{TokenString}},
		{`'single'`, []TokenKind{TokenString}},
		{"`tmpl`", []TokenKind{TokenString}},
		{"// comment\nlet", []TokenKind{TokenKeyword}},
		{"/* block */ const", []TokenKind{TokenKeyword}},
		{"a.b", []TokenKind{TokenIdent, TokenOperator, TokenIdent}},
		{"$Tank.level", []TokenKind{TokenIdent, TokenOperator, TokenIdent}},
		{"=>", []TokenKind{TokenOperator, TokenOperator}},
		{"{}", []TokenKind{TokenOperator, TokenOperator}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			if len(tokens) != len(tt.expected) {
				t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(tt.expected), tokens)
			}
			for i := range tokens {
				if tokens[i].Kind != tt.expected[i] {
					t.Errorf("token %d: got %v, want %v", i, tokens[i].Kind, tt.expected[i])
				}
			}
		})
	}
}

func TestLexerOffsets(t *testing.T) {
	input := "var  name = 'x';"
	tokens := Tokenize(input)

	want := []struct {
		literal    string
		start, end int
	}{
		{"var", 0, 3},
		{"name", 5, 9},
		{"=", 10, 11},
		{"'x'", 12, 15},
		{";", 15, 16},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		tok := tokens[i]
		if tok.Literal != w.literal || tok.Start != w.start || tok.End != w.end {
			t.Errorf("token %d = %q [%d,%d), want %q [%d,%d)", i, tok.Literal, tok.Start, tok.End, w.literal, w.start, w.end)
		}
		if input[tok.Start:tok.End] != tok.Literal {
			t.Errorf("token %d literal does not match source slice", i)
		}
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	input := `var s = "abc`
	tokens := Tokenize(input)
	if len(tokens) != 4 {
		t.Fatalf("got %d tokens, want 4", len(tokens))
	}
	last := tokens[3]
	if last.Kind != TokenString {
		t.Errorf("Kind = %v, want %v", last.Kind, TokenString)
	}
	if last.End != len(input) {
		t.Errorf("End = %d, want %d", last.End, len(input))
	}
	if last.Literal != `"abc` {
		t.Errorf("Literal = %q, want %q", last.Literal, `"abc`)
	}
}

func TestLexerEscapes(t *testing.T) {
	tokens := Tokenize(`"a\"b" x`)
	if len(tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(tokens))
	}
	if tokens[0].Literal != `"a\"b"` {
		t.Errorf("Literal = %q", tokens[0].Literal)
	}
	if tokens[1].Literal != "x" {
		t.Errorf("second token = %q, want x", tokens[1].Literal)
	}
}

func TestLexerUnterminatedComment(t *testing.T) {
	tokens := Tokenize("let a; /* never closed\nvar b;")
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(tokens))
	}
}

func TestLexerTrailingBackslash(t *testing.T) {
	// A dangling escape at end of input must not overrun.
	tokens := Tokenize(`"abc\`)
	if len(tokens) != 1 || tokens[0].End != 5 {
		t.Fatalf("tokens = %+v", tokens)
	}
}

func TestLexerAlwaysProgresses(t *testing.T) {
	inputs := []string{
		"@#%^&*",
		"\x00\x01\x02",
		"héllo wörld",
		"}}}{{{",
		"'",
		"/*",
		"1.e",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			tokens := Tokenize(input)
			prev := 0
			for _, tok := range tokens {
				if tok.End <= tok.Start {
					t.Errorf("empty token %+v", tok)
				}
				if tok.Start < prev {
					t.Errorf("token %+v starts before previous end %d", tok, prev)
				}
				prev = tok.End
			}
		})
	}
}

func TestLexerIdempotent(t *testing.T) {
	input := "function f(a, b) { return a + b; }"
	a := Tokenize(input)
	b := Tokenize(input)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("token %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
