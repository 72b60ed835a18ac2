package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/dhamidi/hws/hwscript/parser"
)

// Ref is a "$Object" or "$Object.property" reference. Object excludes
// the dollar sign. Start and End are byte offsets of the whole reference.
type Ref struct {
	Object   string
	Property string
	Start    int
	End      int
}

// ScanRefs finds catalogue references in a token stream. Strings and
// comments never produce references.
func ScanRefs(tokens []parser.Token) []Ref {
	var refs []Ref
	for i, tok := range tokens {
		if tok.Kind != parser.TokenIdent || len(tok.Literal) < 2 || tok.Literal[0] != '$' {
			continue
		}
		if i > 0 && tokens[i-1].Is(".") && tokens[i-1].End == tok.Start {
			continue
		}
		ref := Ref{Object: tok.Literal[1:], Start: tok.Start, End: tok.End}
		if i+2 < len(tokens) && tokens[i+1].Is(".") && tokens[i+1].Start == tok.End {
			next := tokens[i+2]
			if (next.Kind == parser.TokenIdent || next.Kind == parser.TokenKeyword) && next.Start == tokens[i+1].End {
				ref.Property = next.Literal
				ref.End = next.End
			}
		}
		refs = append(refs, ref)
	}
	return refs
}

// RefAt returns the reference covering offset.
func RefAt(refs []Ref, offset int) (Ref, bool) {
	for _, r := range refs {
		if offset >= r.Start && offset <= r.End {
			return r, true
		}
	}
	return Ref{}, false
}

// Usage indexes which documents reference which catalogue objects.
type Usage struct {
	mu    sync.RWMutex
	files map[string][]Ref
}

func NewUsage() *Usage {
	return &Usage{files: make(map[string][]Ref)}
}

// IndexDocument replaces the references recorded for uri.
func (u *Usage) IndexDocument(uri string, tokens []parser.Token) {
	refs := ScanRefs(tokens)
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(refs) == 0 {
		delete(u.files, uri)
		return
	}
	u.files[uri] = refs
}

func (u *Usage) Forget(uri string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.files, uri)
}

// Objects returns every referenced object name, sorted.
func (u *Usage) Objects() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	seen := make(map[string]bool)
	for _, refs := range u.files {
		for _, r := range refs {
			seen[r.Object] = true
		}
	}
	return sortedKeys(seen)
}

// Files returns the documents referencing object, sorted.
func (u *Usage) Files(object string) []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	seen := make(map[string]bool)
	for uri, refs := range u.files {
		for _, r := range refs {
			if r.Object == object {
				seen[uri] = true
				break
			}
		}
	}
	return sortedKeys(seen)
}

// Properties returns the property names referenced on object, sorted.
func (u *Usage) Properties(object string) []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	seen := make(map[string]bool)
	for _, refs := range u.files {
		for _, r := range refs {
			if r.Object == object && r.Property != "" {
				seen[r.Property] = true
			}
		}
	}
	return sortedKeys(seen)
}

// Undefined returns referenced objects that neither t nor the system
// variables define.
func (u *Usage) Undefined(t Table) []string {
	var out []string
	for _, name := range u.Objects() {
		if _, ok := t.Properties(name); ok {
			continue
		}
		if _, ok := SystemVariable(name); ok {
			continue
		}
		out = append(out, name)
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dollar returns the reference spelling of an object name.
func Dollar(name string) string {
	if strings.HasPrefix(name, "$") {
		return name
	}
	return "$" + name
}
