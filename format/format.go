// Package format renders analysed hwscript documents for the command
// line: scope trees and token streams as JSON, msgpack or tab separated
// text.
package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/hws/hwscript/parser"
	"github.com/dhamidi/hws/hwscript/scope"
)

type Encoder interface {
	EncodeScopes(tree *scope.Tree, lines *parser.LineIndex) error
	EncodeTokens(tokens []parser.Token, lines *parser.LineIndex) error
}

// Names lists the formats accepted by New.
var Names = []string{"tree", "json", "msgpack"}

func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "tree", "":
		return NewTreeEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "msgpack":
		return NewMsgpackEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q (want one of %v)", name, Names)
}

// Position is zero-based; Character counts UTF-16 units and Offset bytes.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
	Offset    int `json:"offset"`
}

type Scope struct {
	ID       int      `json:"id"`
	Kind     string   `json:"kind"`
	Start    Position `json:"start"`
	End      Position `json:"end"`
	Symbols  []Symbol `json:"symbols,omitempty"`
	Children []*Scope `json:"children,omitempty"`
}

type Symbol struct {
	Name         string     `json:"name"`
	Kind         string     `json:"kind"`
	Keyword      string     `json:"keyword"`
	Shape        string     `json:"shape"`
	Position     Position   `json:"position"`
	Declarations []Position `json:"declarations,omitempty"`
}

type Token struct {
	Kind    string   `json:"kind"`
	Literal string   `json:"literal"`
	Start   Position `json:"start"`
	End     Position `json:"end"`
}

func position(lines *parser.LineIndex, offset int) Position {
	p := lines.Position(offset)
	return Position{Line: p.Line, Character: p.Character, Offset: offset}
}

// Scopes converts tree into its exported form, symbols in declaration
// order.
func Scopes(tree *scope.Tree, lines *parser.LineIndex) *Scope {
	return buildScope(tree.Global, lines)
}

func buildScope(s *scope.Scope, lines *parser.LineIndex) *Scope {
	out := &Scope{
		ID:    s.ID,
		Kind:  s.Kind.String(),
		Start: position(lines, s.Start),
		End:   position(lines, s.End),
	}
	for _, sym := range s.SortedSymbols() {
		out.Symbols = append(out.Symbols, buildSymbol(sym, lines))
	}
	for _, child := range s.Children {
		out.Children = append(out.Children, buildScope(child, lines))
	}
	return out
}

func buildSymbol(sym *scope.Symbol, lines *parser.LineIndex) Symbol {
	out := Symbol{
		Name:     sym.Name,
		Kind:     sym.Kind.String(),
		Keyword:  sym.Keyword,
		Shape:    "any",
		Position: position(lines, sym.Offset),
	}
	if sym.Shape != nil {
		out.Shape = sym.Shape.String()
	}
	if sym.Duplicate {
		for _, off := range sym.Offsets() {
			out.Declarations = append(out.Declarations, position(lines, off))
		}
	}
	return out
}

// Tokens converts a token stream, dropping the trailing EOF token.
func Tokens(tokens []parser.Token, lines *parser.LineIndex) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == parser.TokenEOF {
			continue
		}
		out = append(out, Token{
			Kind:    tok.Kind.String(),
			Literal: tok.Literal,
			Start:   position(lines, tok.Start),
			End:     position(lines, tok.End),
		})
	}
	return out
}
