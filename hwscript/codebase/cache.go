package codebase

import (
	"sort"
	"sync"

	"github.com/dhamidi/hws/hwscript/parser"
	"github.com/dhamidi/hws/hwscript/scope"
)

// Source is a document as the editor host presents it. Version
// increases with every edit.
type Source interface {
	URI() string
	Version() int32
	Text() string
}

type source struct {
	uri     string
	version int32
	text    string
}

func (s source) URI() string    { return s.uri }
func (s source) Version() int32 { return s.version }
func (s source) Text() string   { return s.text }

// NewSource wraps a document snapshot as a Source.
func NewSource(uri string, version int32, text string) Source {
	return source{uri: uri, version: version, text: text}
}

// Document is the analysis of one version of a text. It is never
// modified after Analyze returns.
type Document struct {
	URI     string
	Version int32
	Text    string
	Tokens  []parser.Token
	Tree    *scope.Tree
	Lines   *parser.LineIndex
}

// Analyze tokenizes text and builds its scope tree.
func Analyze(uri string, version int32, text string) *Document {
	tokens := parser.Tokenize(text)
	return &Document{
		URI:     uri,
		Version: version,
		Text:    text,
		Tokens:  tokens,
		Tree:    scope.Build(tokens, len(text)),
		Lines:   parser.NewLineIndex(text),
	}
}

// Cache holds the latest analysed version of each open document.
type Cache struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewCache() *Cache {
	return &Cache{docs: make(map[string]*Document)}
}

// Get returns the analysis of src, rebuilding it only when the cached
// entry is missing or was built from a different version.
func (c *Cache) Get(src Source) *Document {
	c.mu.RLock()
	doc := c.docs[src.URI()]
	c.mu.RUnlock()

	if doc != nil && doc.Version == src.Version() {
		return doc
	}
	return c.Update(src)
}

// Update rebuilds the analysis of src unconditionally.
func (c *Cache) Update(src Source) *Document {
	doc := Analyze(src.URI(), src.Version(), src.Text())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc.URI] = doc
	return doc
}

func (c *Cache) Clear(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, uri)
}

// Lookup returns the cached analysis of uri without rebuilding it.
func (c *Cache) Lookup(uri string) *Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.docs[uri]
}

// URIs returns the cached document identifiers in sorted order.
func (c *Cache) URIs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.docs))
	for uri := range c.docs {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// ScopeAt returns the deepest scope of src containing offset, nil when
// offset lies outside the text.
func (c *Cache) ScopeAt(src Source, offset int) *scope.Scope {
	return c.Get(src).Tree.ScopeAt(offset)
}

// VisibleSymbols returns the symbols of src visible at offset, inner
// declarations shadowing outer ones.
func (c *Cache) VisibleSymbols(src Source, offset int) map[string]*scope.Symbol {
	return c.Get(src).Tree.Visible(offset)
}
