package codebase

import (
	"sort"

	"github.com/dhamidi/hws/hwscript/scope"
	"github.com/dhamidi/hws/hwscript/shape"
)

type SymbolKind int

const (
	SymbolKindVariable SymbolKind = iota
	SymbolKindConstant
	SymbolKindFunction
	SymbolKindClass
	SymbolKindObject
)

// DocumentSymbol is an outline entry. Start and End span the whole
// declaration; NameStart and NameEnd span its name.
type DocumentSymbol struct {
	Name      string
	Detail    string
	Kind      SymbolKind
	Start     int
	End       int
	NameStart int
	NameEnd   int
	Children  []DocumentSymbol
}

// DocumentSymbols returns the outline of src: the declarations of the
// global scope, with functions and classes nesting their own.
func (c *Codebase) DocumentSymbols(src Source) []DocumentSymbol {
	doc := c.Open(src)
	return outline(doc, doc.Tree.Global)
}

// outline lists the declarations of s and of the blocks nested in it,
// stopping at function boundaries.
func outline(doc *Document, s *scope.Scope) []DocumentSymbol {
	var syms []*scope.Symbol
	var collect func(*scope.Scope)
	collect = func(cur *scope.Scope) {
		for _, sym := range cur.Symbols {
			if sym.Kind != scope.Parameter {
				syms = append(syms, sym)
			}
		}
		for _, child := range cur.Children {
			if child.Kind == scope.Block {
				collect(child)
			}
		}
	}
	collect(s)
	sort.Slice(syms, func(i, j int) bool { return syms[i].Offset < syms[j].Offset })

	out := make([]DocumentSymbol, 0, len(syms))
	for _, sym := range syms {
		ds := DocumentSymbol{
			Name:      sym.Name,
			Kind:      symbolKind(sym),
			Start:     sym.Offset,
			End:       sym.End,
			NameStart: sym.Offset,
			NameEnd:   sym.End,
		}
		if sym.Shape != nil {
			ds.Detail = sym.Shape.String()
		}
		if ds.Kind == SymbolKindFunction || ds.Kind == SymbolKindClass {
			if body := bodyScope(doc, sym); body != nil && body != sym.Scope {
				ds.End = body.End + 1
				if ds.End > len(doc.Text) {
					ds.End = len(doc.Text)
				}
				ds.Children = outline(doc, body)
			}
		}
		out = append(out, ds)
	}
	return out
}

func symbolKind(sym *scope.Symbol) SymbolKind {
	switch {
	case sym.Keyword == "class":
		return SymbolKindClass
	case sym.Kind == scope.FunctionDeclaration:
		return SymbolKindFunction
	}
	switch sym.Shape.(type) {
	case shape.Function:
		return SymbolKindFunction
	case *shape.Object:
		return SymbolKindObject
	}
	if sym.Keyword == "const" {
		return SymbolKindConstant
	}
	return SymbolKindVariable
}

// bodyScope finds the scope opened by the first brace after the
// declaration's name outside parentheses, before the statement ends.
func bodyScope(doc *Document, sym *scope.Symbol) *scope.Scope {
	tokens := doc.Tokens
	i := sort.Search(len(tokens), func(i int) bool { return tokens[i].Start >= sym.End })
	depth := 0
	for ; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok.Is("(") || tok.Is("["):
			depth++
		case tok.Is(")") || tok.Is("]"):
			depth--
		case depth == 0 && tok.Is(";"):
			return nil
		case depth == 0 && tok.Is("{"):
			for _, s := range doc.Tree.Scopes() {
				if s.Start == tok.Start && s.Kind != scope.Global {
					return s
				}
			}
			return nil
		}
	}
	return nil
}
