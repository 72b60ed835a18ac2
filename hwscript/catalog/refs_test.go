package catalog

import (
	"strings"
	"testing"

	"github.com/dhamidi/hws/hwscript/parser"
)

func TestScanRefs(t *testing.T) {
	text := "$Tank.level = $Year + \"$Str\"; // $Comment\nx.$Nope; $Pump. $A.if"
	refs := ScanRefs(parser.Tokenize(text))

	want := []Ref{
		{Object: "Tank", Property: "level", Start: 0, End: len("$Tank.level")},
		{Object: "Year", Start: strings.Index(text, "$Year"), End: strings.Index(text, "$Year") + 5},
		{Object: "Pump", Start: strings.Index(text, "$Pump"), End: strings.Index(text, "$Pump") + 5},
		{Object: "A", Property: "if", Start: strings.Index(text, "$A"), End: len(text)},
	}
	if len(refs) != len(want) {
		t.Fatalf("got %d refs %+v, want %d", len(refs), refs, len(want))
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("ref %d = %+v, want %+v", i, refs[i], want[i])
		}
	}
}

func TestRefAt(t *testing.T) {
	text := "a = $Tank.level;"
	refs := ScanRefs(parser.Tokenize(text))

	if r, ok := RefAt(refs, strings.Index(text, "level")); !ok || r.Object != "Tank" {
		t.Errorf("RefAt(level) = %+v, %v", r, ok)
	}
	if _, ok := RefAt(refs, 0); ok {
		t.Errorf("RefAt(0) matched")
	}
}

func TestUsage(t *testing.T) {
	u := NewUsage()
	u.IndexDocument("a.js", parser.Tokenize("$Tank.level; $Year; $Ghost.x"))
	u.IndexDocument("b.js", parser.Tokenize("$Tank.temp"))
	u.IndexDocument("c.js", parser.Tokenize("var plain = 1;"))

	if got := strings.Join(u.Objects(), ","); got != "Ghost,Tank,Year" {
		t.Errorf("Objects() = %s", got)
	}
	if got := strings.Join(u.Files("Tank"), ","); got != "a.js,b.js" {
		t.Errorf("Files(Tank) = %s", got)
	}
	if got := strings.Join(u.Properties("Tank"), ","); got != "level,temp" {
		t.Errorf("Properties(Tank) = %s", got)
	}

	table := NewGroups(&Group{Name: "Tank"})
	if got := strings.Join(u.Undefined(table), ","); got != "Ghost" {
		t.Errorf("Undefined() = %s, want Ghost", got)
	}

	u.Forget("a.js")
	if got := strings.Join(u.Objects(), ","); got != "Tank" {
		t.Errorf("Objects() after Forget = %s", got)
	}

	u.IndexDocument("b.js", parser.Tokenize("nothing here"))
	if got := len(u.Objects()); got != 0 {
		t.Errorf("reindexing without refs left %d objects", got)
	}
}

func TestMerge(t *testing.T) {
	user := NewGroups(&Group{Name: "Window", Properties: []Property{{Name: "custom"}}}, &Group{Name: "Tank"})
	table := Merge(user, Builtins())

	props, ok := table.Properties("Window")
	if !ok || len(props) != 1 || props[0].Name != "custom" {
		t.Errorf("Window = %+v, want the user group", props)
	}
	if _, ok := table.Properties("Math"); !ok {
		t.Errorf("Math missing from merged table")
	}
	if got := strings.Join(table.Objects(), ","); got != "Console,Math,Tank,Window" {
		t.Errorf("Objects() = %s", got)
	}

	if p, ok := Lookup(table, "Math", "PI"); !ok || p.Shape.String() != "number" {
		t.Errorf("Lookup(Math.PI) = %+v, %v", p, ok)
	}
	if _, ok := Lookup(table, "Nope", "x"); ok {
		t.Errorf("Lookup on unknown object succeeded")
	}
}

func TestSystemVariables(t *testing.T) {
	vars := SystemVariables()
	for i := 1; i < len(vars); i++ {
		if vars[i-1].Name > vars[i].Name {
			t.Fatalf("system variables not sorted at %s", vars[i].Name)
		}
	}
	if _, ok := SystemVariable("Year"); !ok {
		t.Errorf("Year missing")
	}
	if _, ok := SystemVariable("Tank"); ok {
		t.Errorf("Tank is not a system variable")
	}
	if got := Dollar("Year"); got != "$Year" {
		t.Errorf("Dollar = %s", got)
	}
	if got := Dollar("$Year"); got != "$Year" {
		t.Errorf("Dollar = %s", got)
	}
}

func TestFunctions(t *testing.T) {
	var names []string
	for _, f := range Functions() {
		names = append(names, f.Name)
	}
	if got := strings.Join(names, ","); got != "len,parse,print,stringify,typeof" {
		t.Errorf("Functions() = %s", got)
	}
	f, ok := LookupFunction("print")
	if !ok || f.Signature != "print(message: string): void" {
		t.Errorf("LookupFunction(print) = %+v, %v", f, ok)
	}
	if _, ok := LookupFunction("Math"); ok {
		t.Errorf("Math is not a function")
	}
}
