package codebase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/hws/project"
)

const tankCSV = `Variable Name,Data Type,Variable Description,String Length
level,REAL,Tank level in metres,
label,STRING,Display label,16
`

// newTestCodebase writes files below a temporary project root and loads
// the project the way the language server does.
func newTestCodebase(t *testing.T, files map[string]string) *Codebase {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c := New(project.New(root), NewCache())
	if err := c.LoadVariables(context.Background()); err != nil {
		t.Fatalf("LoadVariables: %v", err)
	}
	if err := c.ScanAll(); err != nil {
		t.Fatalf("ScanAll: %v", err)
	}
	return c
}

func projectFile(c *Codebase, name string) string {
	return filepath.Join(c.RootDir(), filepath.FromSlash(name))
}

func TestScanAll(t *testing.T) {
	c := newTestCodebase(t, map[string]string{
		"variable/Tank.csv":  tankCSV,
		"main.js":            "$Tank.level = 1; $Ghost.on = true;",
		"screens/alarm.hws":  "$Pump.rpm;",
		".history/old.js":    "$Hidden.x;",
		"lib/common.js":      "var Common = { version: 1 };",
		"variable/notes.txt": "ignored",
	})

	if got := strings.Join(c.Usage().Objects(), ","); got != "Ghost,Pump,Tank" {
		t.Errorf("Usage().Objects() = %s", got)
	}
	if got := strings.Join(c.Usage().Undefined(c.Table()), ","); got != "Ghost,Pump" {
		t.Errorf("Undefined = %s", got)
	}
	if _, ok := c.Groups().Group("Tank"); !ok {
		t.Errorf("Tank group not loaded")
	}
	if _, ok := c.libGlobal("Common"); !ok {
		t.Errorf("lib global Common not indexed")
	}
}

func TestOpenAndClose(t *testing.T) {
	c := newTestCodebase(t, map[string]string{
		"main.js": "$Tank.level;",
	})
	uri := pathToURI(projectFile(c, "main.js"))

	c.Open(NewSource(uri, 1, "$Pump.rpm;"))
	if got := strings.Join(c.Usage().Objects(), ","); got != "Pump" {
		t.Errorf("usage while open = %s, want the editor text indexed", got)
	}
	if c.Document(uri) == nil {
		t.Fatal("document not cached after Open")
	}

	c.Close(uri)
	if c.Document(uri) != nil {
		t.Errorf("document still cached after Close")
	}
	if got := strings.Join(c.Usage().Objects(), ","); got != "Tank" {
		t.Errorf("usage after close = %s, want the file on disk indexed", got)
	}
}

func TestReloadVariableFile(t *testing.T) {
	c := newTestCodebase(t, map[string]string{
		"variable/Tank.csv": tankCSV,
	})
	path := projectFile(c, "variable/Tank.csv")

	if err := os.WriteFile(path, []byte("Variable Name,Data Type\nvolume,INT\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.ReloadVariableFile(path); err != nil {
		t.Fatalf("ReloadVariableFile: %v", err)
	}
	group, ok := c.Groups().Group("Tank")
	if !ok || len(group.Properties) != 1 || group.Properties[0].Name != "volume" {
		t.Fatalf("Tank after reload = %+v", group)
	}

	c.RemoveVariableFile(path)
	if _, ok := c.Groups().Group("Tank"); ok {
		t.Errorf("Tank still present after removal")
	}
}

func TestURIRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "with space", "main.js")
	uri := pathToURI(path)
	if !strings.HasPrefix(uri, "file:///") {
		t.Fatalf("uri = %s", uri)
	}
	got, err := uriToPath(uri)
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("uriToPath(pathToURI(p)) = %q, want %q", got, path)
	}
}
