package codebase

import (
	"sort"
	"strings"

	"github.com/dhamidi/hws/hwscript/catalog"
	"github.com/dhamidi/hws/hwscript/parser"
	"github.com/dhamidi/hws/hwscript/scope"
	"github.com/dhamidi/hws/hwscript/shape"
)

type CompletionKind int

const (
	CompletionKindVariable CompletionKind = iota
	CompletionKindConstant
	CompletionKindFunction
	CompletionKindClass
	CompletionKindProperty
	CompletionKindObject
	CompletionKindKeyword
)

type CompletionItem struct {
	Label         string
	Kind          CompletionKind
	Detail        string
	Documentation string
	InsertText    string
	// Snippet marks InsertText as an LSP snippet with $1 placeholders.
	Snippet bool
	// SortText orders items: local symbols first, then lib globals,
	// runtime functions, catalogue objects, system variables, unknown
	// objects and keywords.
	SortText string
}

// Sort groups for completion items.
const (
	sortLocal     = "0"
	sortLib       = "0g"
	sortBuiltin   = "0h"
	sortObject    = "1"
	sortSystem    = "2"
	sortUndefined = "3"
	sortKeyword   = "4"
)

// CompletionsAt returns the completions for the cursor at offset in src.
func (c *Codebase) CompletionsAt(src Source, offset int) []CompletionItem {
	doc := c.Open(src)
	cur := cursorAt(doc.Text, doc.Tokens, offset)
	if cur.quiet {
		return nil
	}

	var items []CompletionItem
	if cur.member {
		items = c.memberCompletions(doc, cur.path, offset)
	} else {
		items = c.nameCompletions(doc, offset)
	}
	return filterPrefix(items, cur.prefix)
}

// memberCompletions lists the properties of the value named by path.
func (c *Codebase) memberCompletions(doc *Document, path []string, offset int) []CompletionItem {
	if len(path) == 0 {
		return nil
	}
	value, ok := c.resolvePath(doc, path, offset)
	if !ok {
		return nil
	}

	var items []CompletionItem
	switch v := value.(type) {
	case *shape.Object:
		for _, p := range v.Properties() {
			items = append(items, propertyItem(p.Name, p.Value))
		}
	case catalogValue:
		for _, p := range v.props {
			item := propertyItem(p.Name, p.Shape)
			item.Documentation = propertyDoc(p)
			items = append(items, item)
		}
	}
	return items
}

// catalogValue is the resolution of a catalogue object name, kept apart
// from script shapes so that descriptions survive.
type catalogValue struct {
	name  string
	props []catalog.Property
}

// resolvePath finds the value of a dotted name chain at offset. The
// root is looked up among the document's visible symbols, then the lib
// globals, then the catalogue.
func (c *Codebase) resolvePath(doc *Document, path []string, offset int) (any, bool) {
	root := path[0]

	if sym := doc.Tree.Lookup(root, offset); sym != nil {
		return memberOf(sym.Shape, path[1:])
	}
	if g, ok := c.libGlobal(root); ok {
		return memberOf(g.sym.Shape, path[1:])
	}

	table := c.Table()
	object := strings.TrimPrefix(root, "$")
	props, ok := table.Properties(object)
	if !ok {
		if sv, found := catalog.SystemVariable(object); found && strings.HasPrefix(root, "$") {
			return memberOf(sv.Shape, path[1:])
		}
		return nil, false
	}
	if len(path) == 1 {
		return catalogValue{name: object, props: props}, true
	}
	for _, p := range props {
		if p.Name == path[1] {
			return memberOf(p.Shape, path[2:])
		}
	}
	return nil, false
}

func memberOf(l shape.Literal, path []string) (any, bool) {
	if l == nil {
		return nil, false
	}
	v, ok := shape.Member(l, path)
	if !ok {
		return nil, false
	}
	return v, true
}

func propertyItem(name string, value shape.Literal) CompletionItem {
	kind := CompletionKindProperty
	if _, ok := value.(shape.Function); ok {
		kind = CompletionKindFunction
	}
	detail := ""
	if value != nil {
		detail = value.String()
	}
	return CompletionItem{
		Label:      name,
		Kind:       kind,
		Detail:     detail,
		InsertText: name,
		SortText:   sortLocal + name,
	}
}

// nameCompletions lists everything a bare name at offset could refer to.
func (c *Codebase) nameCompletions(doc *Document, offset int) []CompletionItem {
	var items []CompletionItem

	visible := doc.Tree.Visible(offset)
	for _, sym := range sortedSymbols(visible) {
		items = append(items, symbolItem(sym, sortLocal))
	}

	for _, g := range c.libGlobals() {
		if _, ok := visible[g.sym.Name]; ok || g.doc.URI == doc.URI {
			continue
		}
		item := symbolItem(g.sym, sortLib)
		item.Documentation = "Declared in " + displayPath(g.doc.URI)
		items = append(items, item)
	}

	for _, fn := range catalog.Functions() {
		if _, ok := visible[fn.Name]; ok {
			continue
		}
		items = append(items, CompletionItem{
			Label:         fn.Name,
			Kind:          CompletionKindFunction,
			Detail:        fn.Signature,
			Documentation: fn.Doc,
			InsertText:    fn.Name + "($1)$0",
			Snippet:       true,
			SortText:      sortBuiltin + fn.Name,
		})
	}

	table := c.Table()
	groups := c.Groups()
	for _, name := range table.Objects() {
		label := name
		detail := "predefined object"
		if _, ok := groups.Group(name); ok {
			label = catalog.Dollar(name)
			detail = "variable group"
		}
		items = append(items, CompletionItem{
			Label:      label,
			Kind:       CompletionKindObject,
			Detail:     detail,
			InsertText: label,
			SortText:   sortObject + label,
		})
	}

	for _, sv := range catalog.SystemVariables() {
		label := catalog.Dollar(sv.Name)
		items = append(items, CompletionItem{
			Label:         label,
			Kind:          CompletionKindVariable,
			Detail:        sv.Shape.String(),
			Documentation: sv.Description,
			InsertText:    label,
			SortText:      sortSystem + label,
		})
	}

	for _, name := range c.usage.Undefined(table) {
		label := catalog.Dollar(name)
		items = append(items, CompletionItem{
			Label:      label,
			Kind:       CompletionKindObject,
			Detail:     "undefined object",
			InsertText: label,
			SortText:   sortUndefined + label,
		})
	}

	keywords := parser.Keywords()
	sort.Strings(keywords)
	for _, kw := range keywords {
		items = append(items, CompletionItem{
			Label:      kw,
			Kind:       CompletionKindKeyword,
			InsertText: kw,
			SortText:   sortKeyword + kw,
		})
	}
	return items
}

func symbolItem(sym *scope.Symbol, group string) CompletionItem {
	kind := CompletionKindVariable
	switch {
	case sym.Keyword == "class":
		kind = CompletionKindClass
	case sym.Kind == scope.FunctionDeclaration:
		kind = CompletionKindFunction
	case sym.Keyword == "const":
		kind = CompletionKindConstant
	}
	if _, ok := sym.Shape.(shape.Function); ok && kind != CompletionKindClass {
		kind = CompletionKindFunction
	}
	detail := sym.Keyword
	if sym.Shape != nil {
		detail += " " + sym.Shape.String()
	}
	return CompletionItem{
		Label:      sym.Name,
		Kind:       kind,
		Detail:     detail,
		InsertText: sym.Name,
		SortText:   group + sym.Name,
	}
}

func sortedSymbols(m map[string]*scope.Symbol) []*scope.Symbol {
	out := make([]*scope.Symbol, 0, len(m))
	for _, sym := range m {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func filterPrefix(items []CompletionItem, prefix string) []CompletionItem {
	if prefix == "" {
		return items
	}
	lower := strings.ToLower(prefix)
	out := items[:0]
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item.Label), lower) {
			out = append(out, item)
		}
	}
	return out
}

func displayPath(uri string) string {
	if path, err := uriToPath(uri); err == nil {
		return path
	}
	return uri
}
