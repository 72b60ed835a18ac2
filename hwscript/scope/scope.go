// Package scope builds the lexical scope tree of an hwscript document
// and answers visibility queries against it.
//
// Declarations are attributed to their owning scope after hoisting:
// var is owned by the nearest function (or the global scope), let,
// const and class by the innermost scope, and named function
// declarations by the scope they appear in. A name declared more than
// once in the same owning scope yields a single Symbol marked
// Duplicate, carrying every declaration offset in source order.
package scope

import (
	"sort"

	"github.com/dhamidi/hws/hwscript/shape"
)

type Kind int

const (
	Global Kind = iota
	Function
	Block
)

var kindNames = map[Kind]string{
	Global:   "global",
	Function: "function",
	Block:    "block",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

type DeclKind int

const (
	FunctionScoped DeclKind = iota
	BlockScoped
	FunctionDeclaration
	Parameter
)

var declKindNames = map[DeclKind]string{
	FunctionScoped:      "function-scoped",
	BlockScoped:         "block-scoped",
	FunctionDeclaration: "function",
	Parameter:           "parameter",
}

func (k DeclKind) String() string {
	if name, ok := declKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Open marks a scope whose closing brace has not been seen yet. No
// scope in a finished Tree is Open.
const Open = -1

type Scope struct {
	ID       int
	Kind     Kind
	Parent   *Scope
	Start    int
	End      int
	Symbols  map[string]*Symbol
	Children []*Scope
}

type Symbol struct {
	Name    string
	Kind    DeclKind
	Keyword string
	Scope   *Scope
	Offset  int
	End     int
	Shape   shape.Literal

	Duplicate        bool
	DuplicateOffsets []int
}

// Contains reports whether offset falls inside the inclusive range of s.
func (s *Scope) Contains(offset int) bool {
	return offset >= s.Start && (s.End == Open || offset <= s.End)
}

// Depth counts parent hops to the global scope.
func (s *Scope) Depth() int {
	d := 0
	for p := s.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// SortedSymbols returns the symbols owned by s ordered by declaration offset.
func (s *Scope) SortedSymbols() []*Symbol {
	out := make([]*Symbol, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// VisibleAt reports whether the symbol can be referenced at offset,
// assuming offset lies inside its owning scope. Block-scoped bindings
// only become visible once their name has been written.
func (sym *Symbol) VisibleAt(offset int) bool {
	if sym.Kind == BlockScoped {
		return offset >= sym.End
	}
	return true
}

// Offsets returns every declaration offset of the symbol in source order.
func (sym *Symbol) Offsets() []int {
	if sym.Duplicate {
		return append([]int(nil), sym.DuplicateOffsets...)
	}
	return []int{sym.Offset}
}

// Assignment is a member assignment "root.a.b = value" seen in the
// document. Resolved is set when root named an object-shaped symbol
// that received the property.
type Assignment struct {
	Root     string
	Path     []string
	Offset   int
	Shape    shape.Literal
	Resolved bool
}

type Tree struct {
	Global      *Scope
	Assignments []Assignment
	scopes      []*Scope
}

// Scopes returns every scope indexed by ID.
func (t *Tree) Scopes() []*Scope {
	return t.scopes
}

func (t *Tree) Scope(id int) *Scope {
	if id < 0 || id >= len(t.scopes) {
		return nil
	}
	return t.scopes[id]
}

// ScopeAt returns the deepest scope whose range contains offset, or nil
// when offset lies outside the document.
func (t *Tree) ScopeAt(offset int) *Scope {
	if t == nil || t.Global == nil || !t.Global.Contains(offset) {
		return nil
	}
	cur := t.Global
	for {
		next := childAt(cur, offset)
		if next == nil {
			return cur
		}
		cur = next
	}
}

func childAt(s *Scope, offset int) *Scope {
	i := sort.Search(len(s.Children), func(i int) bool {
		return s.Children[i].End >= offset
	})
	if i < len(s.Children) && s.Children[i].Contains(offset) {
		return s.Children[i]
	}
	return nil
}

// Visible returns the symbols that can be referenced at offset. Walking
// from the innermost scope outwards, the first scope that declares a
// name wins; a block-scoped name declared later in that scope hides
// outer bindings of the same name without being visible itself.
func (t *Tree) Visible(offset int) map[string]*Symbol {
	out := make(map[string]*Symbol)
	hidden := make(map[string]bool)
	for s := t.ScopeAt(offset); s != nil; s = s.Parent {
		for name, sym := range s.Symbols {
			if _, ok := out[name]; ok || hidden[name] {
				continue
			}
			if sym.VisibleAt(offset) {
				out[name] = sym
			} else {
				hidden[name] = true
			}
		}
	}
	return out
}

// Lookup resolves a single name at offset with the rules of Visible.
func (t *Tree) Lookup(name string, offset int) *Symbol {
	for s := t.ScopeAt(offset); s != nil; s = s.Parent {
		if sym, ok := s.Symbols[name]; ok {
			if sym.VisibleAt(offset) {
				return sym
			}
			return nil
		}
	}
	return nil
}

// Symbols returns every symbol in the tree ordered by declaration offset.
func (t *Tree) Symbols() []*Symbol {
	var out []*Symbol
	for _, s := range t.scopes {
		for _, sym := range s.Symbols {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// DeclaredAt returns the symbol with a declaration whose name starts at
// offset, nil if no declaration starts there. Parameters and header
// bindings are declared before their scope opens, so a name at its own
// declaration site must be resolved here rather than through Lookup.
func (t *Tree) DeclaredAt(offset int) *Symbol {
	for _, s := range t.scopes {
		for _, sym := range s.Symbols {
			for _, off := range sym.Offsets() {
				if off == offset {
					return sym
				}
			}
		}
	}
	return nil
}

// Resolve returns the declaration under offset if there is one, else
// the binding of name visible at offset.
func (t *Tree) Resolve(name string, offset, end int) *Symbol {
	if sym := t.DeclaredAt(offset); sym != nil && sym.Name == name {
		return sym
	}
	return t.Lookup(name, end)
}

func (t *Tree) Duplicates() []*Symbol {
	var out []*Symbol
	for _, sym := range t.Symbols() {
		if sym.Duplicate {
			out = append(out, sym)
		}
	}
	return out
}
