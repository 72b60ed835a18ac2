package codebase

import (
	"strings"
	"testing"
)

func labels(items []CompletionItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func findItem(items []CompletionItem, label string) (CompletionItem, bool) {
	for _, item := range items {
		if item.Label == label {
			return item, true
		}
	}
	return CompletionItem{}, false
}

func TestCompletionNestedLiteral(t *testing.T) {
	c := newTestCodebase(t, nil)
	text := "var o = { a: 1, b: { c: \"x\" } };\no.b."
	items := c.CompletionsAt(NewSource("file:///o.js", 1, text), len(text))

	if got := strings.Join(labels(items), ","); got != "c" {
		t.Fatalf("completions = %s, want exactly c", got)
	}
	if items[0].Detail != "string" || items[0].Kind != CompletionKindProperty {
		t.Errorf("c = %+v", items[0])
	}
}

func TestCompletionMembers(t *testing.T) {
	c := newTestCodebase(t, map[string]string{
		"variable/Tank.csv": tankCSV,
		"lib/common.js":     "var Common = { version: 1, greet: function (name) {} };",
	})

	tests := []struct {
		name string
		text string
		want string
	}{
		{"object literal", "var o = { a: 1, b: 2 };\no.", "a,b"},
		{"typed prefix", "var o = { alpha: 1, beta: 2 };\no.al", "alpha"},
		{"member assignment", "var cfg = {};\ncfg.limit = 3;\ncfg.", "limit"},
		{"variable group", "$Tank.", "level,label"},
		{"variable group prefix", "$Tank.la", "label"},
		{"predefined object", "Math.P", "PI"},
		{"lib global", "Common.", "version,greet"},
		{"scalar", "var n = 1;\nn.", ""},
		{"unknown root", "nothing.", ""},
		{"call result", "f().", ""},
		{"system variable", "$Year.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := c.CompletionsAt(NewSource("file:///members/"+tt.name, 1, tt.text), len(tt.text))
			if got := strings.Join(labels(items), ","); got != tt.want {
				t.Errorf("completions = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompletionGroupDocumentation(t *testing.T) {
	c := newTestCodebase(t, map[string]string{
		"variable/Tank.csv": tankCSV,
	})
	text := "$Tank."
	items := c.CompletionsAt(NewSource("file:///m.js", 1, text), len(text))

	label, ok := findItem(items, "label")
	if !ok {
		t.Fatal("label missing")
	}
	if !strings.Contains(label.Documentation, "Length: 16") || !strings.Contains(label.Documentation, "Display label") {
		t.Errorf("documentation = %q", label.Documentation)
	}
}

func TestCompletionNames(t *testing.T) {
	c := newTestCodebase(t, map[string]string{
		"variable/Tank.csv": tankCSV,
		"lib/common.js":     "function helper() {}",
		"other.js":          "$Ghost.on = 1;",
	})
	text := "var local = 1;\nfunction f(arg) {\n\t\n}\n"
	offset := strings.Index(text, "\t") + 1
	items := c.CompletionsAt(NewSource("file:///main.js", 1, text), offset)

	tests := []struct {
		label string
		sort  string
		kind  CompletionKind
	}{
		{"arg", "0arg", CompletionKindVariable},
		{"f", "0f", CompletionKindFunction},
		{"local", "0local", CompletionKindVariable},
		{"helper", "0ghelper", CompletionKindFunction},
		{"print", "0hprint", CompletionKindFunction},
		{"Math", "1Math", CompletionKindObject},
		{"$Tank", "1$Tank", CompletionKindObject},
		{"$Year", "2$Year", CompletionKindVariable},
		{"$Ghost", "3$Ghost", CompletionKindObject},
		{"function", "4function", CompletionKindKeyword},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			item, ok := findItem(items, tt.label)
			if !ok {
				t.Fatalf("%s missing from %v", tt.label, labels(items))
			}
			if item.SortText != tt.sort {
				t.Errorf("sort text = %q, want %q", item.SortText, tt.sort)
			}
			if item.Kind != tt.kind {
				t.Errorf("kind = %d, want %d", item.Kind, tt.kind)
			}
		})
	}

	if _, ok := findItem(items, "Tank"); ok {
		t.Errorf("variable group offered without its $ prefix")
	}
	if fn, _ := findItem(items, "print"); !fn.Snippet || fn.InsertText != "print($1)$0" || fn.Detail != "print(message: string): void" {
		t.Errorf("print = %+v", fn)
	}
}

func TestCompletionShadowedBuiltin(t *testing.T) {
	c := newTestCodebase(t, nil)
	text := "function len(x) { return 0; }\nle"
	items := c.CompletionsAt(NewSource("file:///len.js", 1, text), len(text))
	if got := strings.Join(labels(items), ","); got != "len,let" {
		t.Fatalf("completions = %s, want len,let", got)
	}
	if items[0].SortText != "0len" || items[0].Snippet {
		t.Errorf("len = %+v, want the local function", items[0])
	}
}

func TestCompletionPrefix(t *testing.T) {
	c := newTestCodebase(t, nil)
	text := "var alpha = 1; var beta = 2;\nal"
	items := c.CompletionsAt(NewSource("file:///p.js", 1, text), len(text))
	if got := strings.Join(labels(items), ","); got != "alpha" {
		t.Errorf("completions = %s, want alpha", got)
	}
}

func TestCompletionQuiet(t *testing.T) {
	c := newTestCodebase(t, nil)
	tests := []struct {
		name   string
		text   string
		offset int
	}{
		{"string", `var s = "o.`, len(`var s = "o.`)},
		{"inside closed string", `var s = "abc";`, len(`var s = "a`)},
		{"line comment", "var o = {};\n// o.", len("var o = {};\n// o.")},
		{"block comment", "var o = {}; /* o.", len("var o = {}; /* o.")},
		{"number", "var n = 12", len("var n = 12")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := c.CompletionsAt(NewSource("file:///quiet/"+tt.name, 1, tt.text), tt.offset)
			if len(items) != 0 {
				t.Errorf("completions = %v, want none", labels(items))
			}
		})
	}
}

func TestCompletionAfterClosedComment(t *testing.T) {
	c := newTestCodebase(t, nil)
	text := "var o = { k: 1 }; /* note */ o."
	items := c.CompletionsAt(NewSource("file:///r.js", 1, text), len(text))
	if got := strings.Join(labels(items), ","); got != "k" {
		t.Errorf("completions = %s, want k", got)
	}
}
