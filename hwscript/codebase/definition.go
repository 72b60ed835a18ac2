package codebase

import (
	"unicode/utf16"

	"github.com/dhamidi/hws/hwscript/catalog"
	"github.com/dhamidi/hws/hwscript/parser"
)

// Location is a range in a file. Positions are zero-based lines and
// UTF-16 characters.
type Location struct {
	URI   string
	Start parser.Position
	End   parser.Position
}

// DefinitionAt finds the declaration of the name under offset: a symbol
// of the document, a lib global, or the CSV record of a variable group.
func (c *Codebase) DefinitionAt(src Source, offset int) (Location, bool) {
	doc := c.Open(src)

	if ref, ok := catalog.RefAt(catalog.ScanRefs(doc.Tokens), offset); ok {
		return c.refDefinition(ref, offset)
	}

	i := nameAt(doc.Tokens, offset)
	if i < 0 || (i >= 1 && doc.Tokens[i-1].Is(".")) {
		return Location{}, false
	}
	tok := doc.Tokens[i]

	if sym := doc.Tree.Resolve(tok.Literal, tok.Start, tok.End); sym != nil {
		return Location{
			URI:   doc.URI,
			Start: doc.Lines.Position(sym.Offset),
			End:   doc.Lines.Position(sym.End),
		}, true
	}
	if g, ok := c.libGlobal(tok.Literal); ok {
		return Location{
			URI:   g.doc.URI,
			Start: g.doc.Lines.Position(g.sym.Offset),
			End:   g.doc.Lines.Position(g.sym.End),
		}, true
	}
	return Location{}, false
}

// refDefinition points at the variable group file, on the line of the
// property's record when offset is on the property name.
func (c *Codebase) refDefinition(ref catalog.Ref, offset int) (Location, bool) {
	group, ok := c.Groups().Group(ref.Object)
	if !ok || group.SourceFile == "" {
		return Location{}, false
	}
	loc := Location{URI: pathToURI(group.SourceFile)}
	if ref.Property == "" || offset <= ref.Start+1+len(ref.Object) {
		return loc, true
	}
	if p, ok := group.Property(ref.Property); ok && p.SourceLine > 0 {
		loc.Start = parser.Position{Line: p.SourceLine - 1}
		loc.End = parser.Position{Line: p.SourceLine - 1, Character: len(utf16.Encode([]rune(p.Name)))}
	}
	return loc, true
}
