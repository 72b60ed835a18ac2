package codebase

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/hws/hwscript/catalog"
	"github.com/dhamidi/hws/hwscript/scope"
	"github.com/dhamidi/hws/project"
)

var log = commonlog.GetLogger("hws.codebase")

// Codebase combines the open document cache with the project-wide
// knowledge a single document cannot provide: variable groups, the
// "$Object" usage of every script, and the globals of lib scripts.
type Codebase struct {
	mu       sync.RWMutex
	project  *project.Project
	cache    *Cache
	builtins *catalog.Groups
	groups   *catalog.Groups
	usage    *catalog.Usage
	libs     map[string]*Document
}

func New(proj *project.Project, cache *Cache) *Codebase {
	return &Codebase{
		project:  proj,
		cache:    cache,
		builtins: catalog.Builtins(),
		groups:   catalog.NewGroups(),
		usage:    catalog.NewUsage(),
		libs:     make(map[string]*Document),
	}
}

func (c *Codebase) RootDir() string {
	return c.project.RootDir
}

func (c *Codebase) Project() *project.Project {
	return c.project
}

func (c *Codebase) Cache() *Cache {
	return c.cache
}

func (c *Codebase) Usage() *catalog.Usage {
	return c.usage
}

// Table returns the catalogue: user variable groups layered over the
// predefined objects.
func (c *Codebase) Table() catalog.Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return catalog.Merge(c.groups, c.builtins)
}

// Groups returns the user variable groups.
func (c *Codebase) Groups() *catalog.Groups {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.groups
}

// LoadVariables replaces the user variable groups with the CSV files of
// the project's variable directory. Groups that loaded are kept even
// when other files failed; the failures are returned.
func (c *Codebase) LoadVariables(ctx context.Context) error {
	groups, err := catalog.LoadDir(ctx, c.project.VariableDir())
	if groups == nil {
		return err
	}
	c.mu.Lock()
	c.groups = groups
	c.mu.Unlock()
	return err
}

// ReloadVariableFile re-reads one CSV file after it changed on disk.
func (c *Codebase) ReloadVariableFile(path string) error {
	groups := c.Groups()
	groups.RemoveFile(path)

	group, err := catalog.LoadCSV(path)
	if err != nil {
		return err
	}
	if len(group.Properties) == 0 {
		log.Debugf("variable group %s is empty", group.Name)
		return nil
	}
	groups.Add(group)
	log.Infof("reloaded variable group %s", group.Name)
	return nil
}

func (c *Codebase) RemoveVariableFile(path string) {
	if name, ok := c.Groups().RemoveFile(path); ok {
		log.Infof("removed variable group %s", name)
	}
}

// ScanAll indexes every script below the project root.
func (c *Codebase) ScanAll() error {
	return filepath.Walk(c.project.RootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != c.project.RootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if c.project.IsScript(path) {
			if err := c.ScanFile(path); err != nil {
				log.Warningf("scan %s: %s", path, err)
			}
		}
		return nil
	})
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.UpdateFile(path, content)
	return nil
}

// UpdateFile indexes the content of a script that is not open in the
// editor.
func (c *Codebase) UpdateFile(path string, content []byte) {
	uri := pathToURI(path)
	doc := Analyze(uri, 0, string(content))
	c.usage.IndexDocument(path, doc.Tokens)

	if !c.project.IsLib(path) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.libs[uri] = doc
}

func (c *Codebase) RemoveFile(path string) {
	c.usage.Forget(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.libs, pathToURI(path))
}

// Open analyses an editor document and refreshes its usage index entry.
func (c *Codebase) Open(src Source) *Document {
	doc := c.cache.Get(src)
	if path, err := uriToPath(doc.URI); err == nil {
		c.usage.IndexDocument(path, doc.Tokens)
	}
	return doc
}

// Close evicts an editor document. The usage index falls back to the
// content on disk.
func (c *Codebase) Close(uri string) {
	c.cache.Clear(uri)
	path, err := uriToPath(uri)
	if err != nil {
		return
	}
	if err := c.ScanFile(path); err != nil {
		c.usage.Forget(path)
	}
}

// ReadSource reads a script from disk as a version 0 Source.
func ReadSource(path string) (Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewSource(pathToURI(path), 0, string(content)), nil
}

// Document returns the analysis of an open document, nil if it is not open.
func (c *Codebase) Document(uri string) *Document {
	return c.cache.Lookup(uri)
}

// libGlobal is a top-level declaration of a lib script.
type libGlobal struct {
	doc *Document
	sym *scope.Symbol
}

// libGlobals returns the top-level symbols of lib scripts ordered by
// name. A name declared by several lib files resolves to the first URI.
func (c *Codebase) libGlobals() []libGlobal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	uris := make([]string, 0, len(c.libs))
	for uri := range c.libs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	seen := make(map[string]bool)
	var out []libGlobal
	for _, uri := range uris {
		doc := c.libs[uri]
		for _, sym := range doc.Tree.Global.SortedSymbols() {
			if seen[sym.Name] {
				continue
			}
			seen[sym.Name] = true
			out = append(out, libGlobal{doc: doc, sym: sym})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].sym.Name < out[j].sym.Name })
	return out
}

func (c *Codebase) libGlobal(name string) (libGlobal, bool) {
	for _, g := range c.libGlobals() {
		if g.sym.Name == name {
			return g, true
		}
	}
	return libGlobal{}, false
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}
