package codebase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dhamidi/hws/hwscript/catalog"
	"github.com/dhamidi/hws/hwscript/parser"
)

// Severity values match the LSP diagnostic severities.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	}
	return "unknown"
}

// Diagnostic codes.
const (
	CodeDuplicate       = "duplicate-declaration"
	CodeUndefinedObject = "undefined-object"
	CodeUnknownProperty = "unknown-property"
	CodeUndefinedCall   = "undefined-function"
	CodeMissingSemi     = "missing-semicolon"
)

// Diagnostic is a finding between the byte offsets Start and End.
type Diagnostic struct {
	Start    int
	End      int
	Severity Severity
	Code     string
	Message  string
}

// Diagnostics checks src for repeated declarations in one scope, for
// references to objects or properties no variable group defines, for
// calls of functions nothing declares, and for declaration and return
// lines without a closing semicolon.
func (c *Codebase) Diagnostics(src Source) []Diagnostic {
	doc := c.Open(src)
	cfg := c.project.Config.Diagnostics

	var out []Diagnostic
	if cfg.Duplicates {
		out = append(out, duplicateDiagnostics(doc)...)
	}
	if cfg.UndefinedObjects {
		out = append(out, c.refDiagnostics(doc)...)
	}
	if cfg.UndefinedFunctions {
		out = append(out, c.callDiagnostics(doc)...)
	}
	if cfg.MissingSemicolons {
		out = append(out, semicolonDiagnostics(doc)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// duplicateDiagnostics reports every declaration after the first of a
// name declared more than once in the same scope.
func duplicateDiagnostics(doc *Document) []Diagnostic {
	var out []Diagnostic
	for _, sym := range doc.Tree.Duplicates() {
		offsets := sym.Offsets()
		for i, off := range offsets {
			if i == 0 {
				continue
			}
			others := make([]int, 0, len(offsets)-1)
			for j, o := range offsets {
				if j != i {
					others = append(others, o)
				}
			}
			out = append(out, Diagnostic{
				Start:    off,
				End:      off + len(sym.Name),
				Severity: SeverityWarning,
				Code:     CodeDuplicate,
				Message: fmt.Sprintf("%q is already declared in this %s scope (line %s)",
					sym.Name, sym.Scope.Kind, lineList(doc, others)),
			})
		}
	}
	return out
}

func (c *Codebase) refDiagnostics(doc *Document) []Diagnostic {
	table := c.Table()
	var out []Diagnostic
	for _, ref := range catalog.ScanRefs(doc.Tokens) {
		if _, ok := catalog.SystemVariable(ref.Object); ok {
			continue
		}
		props, ok := table.Properties(ref.Object)
		if !ok {
			out = append(out, Diagnostic{
				Start:    ref.Start,
				End:      ref.Start + 1 + len(ref.Object),
				Severity: SeverityInformation,
				Code:     CodeUndefinedObject,
				Message:  fmt.Sprintf("%s is not defined in any variable group", catalog.Dollar(ref.Object)),
			})
			continue
		}
		if ref.Property == "" || len(props) == 0 || hasProperty(props, ref.Property) {
			continue
		}
		out = append(out, Diagnostic{
			Start:    ref.Start + 2 + len(ref.Object),
			End:      ref.End,
			Severity: SeverityInformation,
			Code:     CodeUnknownProperty,
			Message: fmt.Sprintf("%s has no variable %q (known: %s)",
				catalog.Dollar(ref.Object), ref.Property, propertyNames(props, 5)),
		})
	}
	return out
}

// callDiagnostics reports "name(" calls where name is neither a visible
// symbol, a lib global, a catalogue object nor a runtime function.
// Member calls, declarations and method definitions are skipped.
func (c *Codebase) callDiagnostics(doc *Document) []Diagnostic {
	table := c.Table()
	tokens := doc.Tokens
	var out []Diagnostic
	for i := 0; i+1 < len(tokens); i++ {
		tok := tokens[i]
		if !tok.IsName() || strings.HasPrefix(tok.Literal, "$") || !tokens[i+1].Is("(") {
			continue
		}
		if i > 0 && (tokens[i-1].Is(".") || tokens[i-1].IsKeyword("function")) {
			continue
		}
		if close := closingParen(tokens, i+1); close+1 < len(tokens) && tokens[close+1].Is("{") {
			continue
		}
		if c.callable(doc, table, tok) {
			continue
		}
		out = append(out, Diagnostic{
			Start:    tok.Start,
			End:      tok.End,
			Severity: SeverityInformation,
			Code:     CodeUndefinedCall,
			Message:  fmt.Sprintf("function %q may not be defined", tok.Literal),
		})
	}
	return out
}

func (c *Codebase) callable(doc *Document, table catalog.Table, tok parser.Token) bool {
	if doc.Tree.Resolve(tok.Literal, tok.Start, tok.End) != nil {
		return true
	}
	if _, ok := c.libGlobal(tok.Literal); ok {
		return true
	}
	if _, ok := table.Properties(tok.Literal); ok {
		return true
	}
	_, ok := catalog.LookupFunction(tok.Literal)
	return ok
}

// closingParen returns the index of the ")" matching tokens[open], or
// len(tokens) when it is missing.
func closingParen(tokens []parser.Token, open int) int {
	depth := 0
	for j := open; j < len(tokens); j++ {
		switch {
		case tokens[j].Is("("):
			depth++
		case tokens[j].Is(")"):
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(tokens)
}

var statementKeywords = map[string]bool{
	"var":    true,
	"const":  true,
	"return": true,
	"import": true,
	"export": true,
}

// semicolonDiagnostics reports lines that start with a statement keyword
// followed by more tokens and do not end in ";", "{" or "}". The
// diagnostic is empty and sits after the last token of the line.
func semicolonDiagnostics(doc *Document) []Diagnostic {
	tokens := doc.Tokens
	var out []Diagnostic
	for i := 0; i < len(tokens) && tokens[i].Kind != parser.TokenEOF; {
		line := doc.Lines.Position(tokens[i].Start).Line
		j := i
		for j+1 < len(tokens) && tokens[j+1].Kind != parser.TokenEOF &&
			doc.Lines.Position(tokens[j+1].Start).Line == line {
			j++
		}
		first, last := tokens[i], tokens[j]
		if j > i && first.Kind == parser.TokenKeyword && statementKeywords[first.Literal] &&
			!last.Is(";") && !last.Is("{") && !last.Is("}") {
			out = append(out, Diagnostic{
				Start:    last.End,
				End:      last.End,
				Severity: SeverityWarning,
				Code:     CodeMissingSemi,
				Message:  "missing semicolon",
			})
		}
		i = j + 1
	}
	return out
}

func hasProperty(props []catalog.Property, name string) bool {
	for _, p := range props {
		if p.Name == name {
			return true
		}
	}
	return false
}

func propertyNames(props []catalog.Property, limit int) string {
	names := make([]string, 0, limit)
	for i, p := range props {
		if i == limit {
			names = append(names, "...")
			break
		}
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
