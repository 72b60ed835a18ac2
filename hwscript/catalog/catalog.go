// Package catalog holds the read-only tables of objects known outside
// a script: the predefined runtime objects, the system variables, and
// the variable groups declared in the project's CSV files.
package catalog

import (
	"sort"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/hws/hwscript/shape"
)

var log = commonlog.GetLogger("hws.catalog")

type Property struct {
	Name        string
	Shape       shape.Literal
	RawType     string
	Description string
	// SourceLine is the 1-based line of the defining CSV record, zero for
	// predefined entries.
	SourceLine int
}

type Group struct {
	Name       string
	Properties []Property
	SourceFile string
}

func (g *Group) Property(name string) (Property, bool) {
	for _, p := range g.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Table maps object names to their properties.
type Table interface {
	Properties(object string) ([]Property, bool)
	Objects() []string
}

// Groups is a concurrency-safe Table of named groups.
type Groups struct {
	mu     sync.RWMutex
	byName map[string]*Group
}

func NewGroups(groups ...*Group) *Groups {
	g := &Groups{byName: make(map[string]*Group)}
	for _, group := range groups {
		g.Add(group)
	}
	return g
}

// Add registers group, replacing any group with the same name.
func (g *Groups) Add(group *Group) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.byName[group.Name] = group
}

// RemoveFile drops the group loaded from path and returns its name.
func (g *Groups) RemoveFile(path string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for name, group := range g.byName {
		if group.SourceFile == path {
			delete(g.byName, name)
			return name, true
		}
	}
	return "", false
}

func (g *Groups) Group(name string) (*Group, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	group, ok := g.byName[name]
	return group, ok
}

func (g *Groups) Properties(object string) ([]Property, bool) {
	group, ok := g.Group(object)
	if !ok {
		return nil, false
	}
	return group.Properties, true
}

// Objects returns the group names in sorted order.
func (g *Groups) Objects() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.byName))
	for name := range g.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Groups) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byName)
}

type layered []Table

// Merge stacks tables so that the first table defining an object wins.
func Merge(tables ...Table) Table {
	return layered(tables)
}

func (l layered) Properties(object string) ([]Property, bool) {
	for _, t := range l {
		if props, ok := t.Properties(object); ok {
			return props, true
		}
	}
	return nil, false
}

func (l layered) Objects() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range l {
		for _, name := range t.Objects() {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Lookup finds a single property of object in t.
func Lookup(t Table, object, property string) (Property, bool) {
	props, ok := t.Properties(object)
	if !ok {
		return Property{}, false
	}
	for _, p := range props {
		if p.Name == property {
			return p, true
		}
	}
	return Property{}, false
}
