package codebase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/hws/hwscript/catalog"
	"github.com/dhamidi/hws/hwscript/parser"
	"github.com/dhamidi/hws/hwscript/scope"
	"github.com/dhamidi/hws/hwscript/shape"
)

// Hover is markdown describing the name between Start and End.
type Hover struct {
	Contents string
	Start    int
	End      int
}

// HoverAt describes the identifier, keyword or "$Object.property"
// reference under offset.
func (c *Codebase) HoverAt(src Source, offset int) (Hover, bool) {
	doc := c.Open(src)

	if ref, ok := catalog.RefAt(catalog.ScanRefs(doc.Tokens), offset); ok {
		return c.hoverRef(ref, offset)
	}

	i := nameAt(doc.Tokens, offset)
	if i < 0 {
		return Hover{}, false
	}
	tok := doc.Tokens[i]
	h := Hover{Start: tok.Start, End: tok.End}

	if i >= 2 && doc.Tokens[i-1].Is(".") {
		path := namePath(doc.Tokens, i)
		if path == nil {
			return Hover{}, false
		}
		value, ok := c.resolvePath(doc, path, tok.End)
		if !ok {
			return Hover{}, false
		}
		h.Contents = codeBlock(strings.Join(path, ".") + ": " + describe(value))
		return h, true
	}

	if sym := doc.Tree.Resolve(tok.Literal, tok.Start, tok.End); sym != nil {
		h.Contents = symbolDoc(doc, sym)
		return h, true
	}
	if g, ok := c.libGlobal(tok.Literal); ok {
		h.Contents = symbolDoc(g.doc, g.sym) + "\n\nDeclared in " + displayPath(g.doc.URI)
		return h, true
	}
	if fn, ok := catalog.LookupFunction(tok.Literal); ok {
		h.Contents = codeBlock(fn.Signature) + "\n\n" + fn.Doc
		return h, true
	}
	if props, ok := c.Table().Properties(tok.Literal); ok {
		h.Contents = fmt.Sprintf("**%s** predefined object, %d members", tok.Literal, len(props))
		return h, true
	}
	if tok.Kind == parser.TokenKeyword {
		h.Contents = codeBlock("keyword " + tok.Literal)
		return h, true
	}
	return Hover{}, false
}

func (c *Codebase) hoverRef(ref catalog.Ref, offset int) (Hover, bool) {
	objectEnd := ref.Start + 1 + len(ref.Object)
	h := Hover{Start: ref.Start, End: ref.End}

	if ref.Property != "" && offset > objectEnd {
		p, ok := catalog.Lookup(c.Table(), ref.Object, ref.Property)
		if !ok {
			h.Contents = fmt.Sprintf("**%s.%s** is not declared", catalog.Dollar(ref.Object), ref.Property)
			return h, true
		}
		h.Contents = fmt.Sprintf("**%s.%s**\n\n", catalog.Dollar(ref.Object), ref.Property) + propertyDoc(p)
		return h, true
	}

	h.End = objectEnd
	if sv, ok := catalog.SystemVariable(ref.Object); ok {
		h.Contents = fmt.Sprintf("**%s** system variable\n\n", catalog.Dollar(ref.Object)) + propertyDoc(sv)
		return h, true
	}
	if group, ok := c.Groups().Group(ref.Object); ok {
		h.Contents = fmt.Sprintf("**%s** variable group, %d variables\n\nDefined in %s",
			catalog.Dollar(ref.Object), len(group.Properties), group.SourceFile)
		return h, true
	}
	if _, ok := c.Table().Properties(ref.Object); ok {
		h.Contents = fmt.Sprintf("**%s** predefined object", catalog.Dollar(ref.Object))
		return h, true
	}
	h.Contents = fmt.Sprintf("**%s** is not defined in any variable group", catalog.Dollar(ref.Object))
	return h, true
}

// propertyDoc renders the vendor type, string length and description
// of a catalogue property.
func propertyDoc(p catalog.Property) string {
	var b strings.Builder
	b.WriteString("Type: `")
	if p.Shape != nil {
		b.WriteString(p.Shape.String())
	} else {
		b.WriteString("any")
	}
	b.WriteString("`")
	if p.RawType != "" {
		b.WriteString(" (")
		b.WriteString(p.RawType)
		b.WriteString(")")
	}
	if s, ok := p.Shape.(shape.String); ok && s.Length > 0 {
		b.WriteString("\n\nLength: ")
		b.WriteString(strconv.Itoa(s.Length))
	}
	if p.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(p.Description)
	}
	return b.String()
}

func symbolDoc(doc *Document, sym *scope.Symbol) string {
	typ := "any"
	if sym.Shape != nil {
		typ = sym.Shape.String()
	}
	var b strings.Builder
	b.WriteString(codeBlock(sym.Keyword + " " + sym.Name + ": " + typ))
	fmt.Fprintf(&b, "\n\n%s, %s scope, line %d", sym.Kind, sym.Scope.Kind, doc.Lines.Position(sym.Offset).Line+1)
	if sym.Duplicate {
		b.WriteString("\n\nDeclared ")
		b.WriteString(strconv.Itoa(len(sym.DuplicateOffsets)))
		b.WriteString(" times, on lines ")
		b.WriteString(lineList(doc, sym.DuplicateOffsets))
	}
	return b.String()
}

func describe(v any) string {
	switch v := v.(type) {
	case shape.Literal:
		return v.String()
	case catalogValue:
		names := make([]string, len(v.props))
		for i, p := range v.props {
			names[i] = p.Name
		}
		return v.name + " { " + strings.Join(names, ", ") + " }"
	}
	return "any"
}

func codeBlock(s string) string {
	return "```hwscript\n" + s + "\n```"
}

func lineList(doc *Document, offsets []int) string {
	lines := make([]string, len(offsets))
	for i, off := range offsets {
		lines[i] = strconv.Itoa(doc.Lines.Position(off).Line + 1)
	}
	return strings.Join(lines, ", ")
}
