package codebase

import (
	"strings"
	"testing"

	"github.com/dhamidi/hws/hwscript/parser"
)

func TestHover(t *testing.T) {
	c := newTestCodebase(t, map[string]string{
		"variable/Tank.csv": tankCSV,
		"lib/common.js":     "var Common = { version: 1 };",
	})
	text := `var o = { a: 1, b: { c: "x" } };
var o = 2;
$Tank.label = $Year;
o.b;
Common;
$Ghost;
Math;
print(typeof o);
while (o) {}
`
	src := NewSource("file:///hover.js", 1, text)

	tests := []struct {
		name string
		at   string
		want []string
	}{
		{"symbol", "o.b;", []string{"var o: { a: number, b: { c: string } }", "function-scoped, global scope, line 1", "Declared 2 times, on lines 1, 2"}},
		{"member", "b;", []string{"o.b: { c: string }"}},
		{"group property", "label =", []string{"**$Tank.label**", "Type: `string` (STRING)", "Length: 16", "Display label"}},
		{"group", "Tank.label", []string{"**$Tank** variable group, 2 variables", "Tank.csv"}},
		{"system variable", "Year", []string{"**$Year** system variable", "Current year"}},
		{"lib global", "Common;", []string{"var Common: { version: number }", "common.js"}},
		{"undefined object", "Ghost", []string{"**$Ghost** is not defined"}},
		{"predefined", "Math;", []string{"**Math** predefined object"}},
		{"runtime function", "print(", []string{"print(message: string): void", "Prints a message"}},
		{"runtime keyword function", "typeof", []string{"typeof(value: any): string"}},
		{"keyword", "while", []string{"keyword while"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset := strings.Index(text, tt.at)
			if offset < 0 {
				t.Fatalf("marker %q not found", tt.at)
			}
			h, ok := c.HoverAt(src, offset)
			if !ok {
				t.Fatal("no hover")
			}
			for _, want := range tt.want {
				if !strings.Contains(h.Contents, want) {
					t.Errorf("hover %q does not contain %q", h.Contents, want)
				}
			}
		})
	}

	if _, ok := c.HoverAt(src, strings.Index(text, "= 2")); ok {
		t.Errorf("hover on an operator")
	}
}

func TestHoverRange(t *testing.T) {
	c := newTestCodebase(t, map[string]string{"variable/Tank.csv": tankCSV})
	text := "x = $Tank.level;"
	src := NewSource("file:///range.js", 1, text)

	h, ok := c.HoverAt(src, strings.Index(text, "level"))
	if !ok || text[h.Start:h.End] != "$Tank.level" {
		t.Errorf("property hover spans %q", text[h.Start:h.End])
	}
	h, ok = c.HoverAt(src, strings.Index(text, "Tank"))
	if !ok || text[h.Start:h.End] != "$Tank" {
		t.Errorf("object hover spans %q", text[h.Start:h.End])
	}
}

func TestDefinition(t *testing.T) {
	c := newTestCodebase(t, map[string]string{
		"variable/Tank.csv": tankCSV,
		"lib/common.js":     "// shared\nvar Common = {};",
	})
	text := "var x = 1;\nfunction f() {\n\tlet x = 2;\n\treturn x + $Tank.label + Common;\n}\nx;\n"
	src := NewSource("file:///def.js", 1, text)

	tests := []struct {
		name      string
		at        string
		uriSuffix string
		line      int
		char      int
	}{
		{"inner let", "x + ", "def.js", 2, 5},
		{"outer var", "x;\n", "def.js", 0, 4},
		{"group property", "label", "/variable/Tank.csv", 2, 0},
		{"group", "Tank", "/variable/Tank.csv", 0, 0},
		{"lib global", "Common;", "/lib/common.js", 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, ok := c.DefinitionAt(src, strings.Index(text, tt.at))
			if !ok {
				t.Fatal("no definition")
			}
			if !strings.HasSuffix(loc.URI, tt.uriSuffix) {
				t.Errorf("uri = %s, want suffix %s", loc.URI, tt.uriSuffix)
			}
			if loc.Start != (parser.Position{Line: tt.line, Character: tt.char}) {
				t.Errorf("start = %+v, want %d:%d", loc.Start, tt.line, tt.char)
			}
		})
	}

	if _, ok := c.DefinitionAt(src, strings.Index(text, "return")); ok {
		t.Errorf("definition for a keyword")
	}
}

func TestDeclarationSite(t *testing.T) {
	c := newTestCodebase(t, nil)
	text := "var a = \"outer\"; function f(a) { return a; }\ntry {} catch (e) { e; }\n"
	src := NewSource("file:///site.js", 1, text)
	param := strings.Index(text, "a) {")

	loc, ok := c.DefinitionAt(src, param)
	if !ok || loc.Start != (parser.Position{Line: 0, Character: param}) {
		t.Errorf("definition at the parameter = %+v, %v", loc, ok)
	}
	loc, ok = c.DefinitionAt(src, strings.Index(text, "a; }"))
	if !ok || loc.Start != (parser.Position{Line: 0, Character: param}) {
		t.Errorf("definition at the use = %+v, %v", loc, ok)
	}
	if loc, ok := c.DefinitionAt(src, strings.Index(text, "e) {")); !ok || loc.Start != (parser.Position{Line: 1, Character: 14}) {
		t.Errorf("definition at the catch binding = %+v, %v", loc, ok)
	}

	h, ok := c.HoverAt(src, param)
	if !ok || !strings.Contains(h.Contents, "param a: any") || !strings.Contains(h.Contents, "function scope") {
		t.Errorf("hover at the parameter = %q", h.Contents)
	}
	h, ok = c.HoverAt(src, strings.Index(text, "a ="))
	if !ok || !strings.Contains(h.Contents, "var a: string") {
		t.Errorf("hover at the outer var = %q", h.Contents)
	}
}

func TestDiagnostics(t *testing.T) {
	files := map[string]string{"variable/Tank.csv": tankCSV}
	text := "var a = 1;\nvar a = 2;\nfunction g() { let b; let b; }\n$Ghost.x = $Year;\n$Tank.nope = $Tank.level;\n"
	src := NewSource("file:///diag.js", 1, text)

	c := newTestCodebase(t, files)
	got := c.Diagnostics(src)

	want := []struct {
		at       string
		severity Severity
		code     string
		message  string
	}{
		{"a = 2", SeverityWarning, CodeDuplicate, `"a" is already declared in this global scope (line 1)`},
		{"b; }", SeverityWarning, CodeDuplicate, `"b" is already declared in this function scope (line 3)`},
		{"$Ghost", SeverityInformation, CodeUndefinedObject, "$Ghost is not defined"},
		{"nope", SeverityInformation, CodeUnknownProperty, `$Tank has no variable "nope"`},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d diagnostics %+v, want %d", len(got), got, len(want))
	}
	for i, w := range want {
		d := got[i]
		if d.Start != strings.Index(text, w.at) {
			t.Errorf("diagnostic %d starts at %d, want %d (%q)", i, d.Start, strings.Index(text, w.at), w.at)
		}
		if d.Severity != w.severity || d.Code != w.code {
			t.Errorf("diagnostic %d = %s %s, want %s %s", i, d.Severity, d.Code, w.severity, w.code)
		}
		if !strings.Contains(d.Message, w.message) {
			t.Errorf("diagnostic %d message %q does not contain %q", i, d.Message, w.message)
		}
	}

	c.Project().Config.Diagnostics.UndefinedObjects = false
	if got := c.Diagnostics(src); len(got) != 2 {
		t.Errorf("with undefined objects disabled got %d diagnostics, want 2", len(got))
	}
	c.Project().Config.Diagnostics.Duplicates = false
	if got := c.Diagnostics(src); len(got) != 0 {
		t.Errorf("with all checks disabled got %+v", got)
	}
}

func TestDiagnosticsCallsAndSemicolons(t *testing.T) {
	c := newTestCodebase(t, map[string]string{
		"lib/common.js": "function share() {}",
	})
	text := `function local(a) {
	return a
}
class Tank {
	fill(v) { return v; }
}
var t = new Tank();
t.fill(1);
print(len([1]));
share();
Math.floor(2);
ghost(1);
var o = {
	greet(name) { print(name); }
};
return;
var done = 1 // no semicolon
`
	src := NewSource("file:///calls.js", 1, text)

	type want struct {
		at   int
		code string
	}
	wants := []want{
		{strings.Index(text, "return a\n") + len("return a"), CodeMissingSemi},
		{strings.Index(text, "ghost"), CodeUndefinedCall},
		{strings.Index(text, "1 // no") + 1, CodeMissingSemi},
	}
	got := c.Diagnostics(src)
	if len(got) != len(wants) {
		t.Fatalf("got %d diagnostics %+v, want %d", len(got), got, len(wants))
	}
	for i, w := range wants {
		d := got[i]
		if d.Start != w.at || d.Code != w.code {
			t.Errorf("diagnostic %d = %s at %d, want %s at %d", i, d.Code, d.Start, w.code, w.at)
		}
	}
	if got[0].Severity != SeverityWarning || got[0].Start != got[0].End {
		t.Errorf("missing semicolon = %+v", got[0])
	}
	if got[1].Severity != SeverityInformation || got[1].Message != `function "ghost" may not be defined` {
		t.Errorf("undefined call = %+v", got[1])
	}

	cfg := &c.Project().Config.Diagnostics
	cfg.UndefinedFunctions = false
	cfg.MissingSemicolons = false
	if got := c.Diagnostics(src); len(got) != 0 {
		t.Errorf("with both checks disabled got %+v", got)
	}
}

func TestDocumentSymbols(t *testing.T) {
	c := newTestCodebase(t, nil)
	text := `var Common = { limit: 10 };
function pump(level) {
	var state = 1;
	if (level) { let d = 2; }
}
const handler = (evt) => { let seen = evt; };
const MAX = 3;
class Tank {
	fill(v) { return v; }
}
`
	symbols := c.DocumentSymbols(NewSource("file:///outline.js", 1, text))

	var render func([]DocumentSymbol) string
	render = func(list []DocumentSymbol) string {
		parts := make([]string, len(list))
		for i, s := range list {
			parts[i] = s.Name
			if len(s.Children) > 0 {
				parts[i] += "(" + render(s.Children) + ")"
			}
		}
		return strings.Join(parts, " ")
	}
	if got, want := render(symbols), "Common pump(state d) handler(seen) MAX Tank"; !strings.HasPrefix(got, want) {
		t.Errorf("outline = %s, want prefix %s", got, want)
	}

	kinds := map[string]SymbolKind{
		"Common":  SymbolKindObject,
		"pump":    SymbolKindFunction,
		"handler": SymbolKindFunction,
		"MAX":     SymbolKindConstant,
		"Tank":    SymbolKindClass,
	}
	for _, s := range symbols {
		if want, ok := kinds[s.Name]; ok && s.Kind != want {
			t.Errorf("%s kind = %d, want %d", s.Name, s.Kind, want)
		}
		if s.Name == "pump" {
			body := text[s.Start:s.End]
			if !strings.HasPrefix(body, "pump(level) {") || !strings.HasSuffix(body, "}") {
				t.Errorf("pump range = %q", body)
			}
		}
	}
}
