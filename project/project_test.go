package project

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFromWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	proj, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if proj.ConfigPath != "" {
		t.Errorf("ConfigPath = %q, want empty", proj.ConfigPath)
	}
	if got := proj.VariableDir(); got != filepath.Join(dir, "variable") {
		t.Errorf("VariableDir = %q", got)
	}
	if !proj.Config.Diagnostics.Duplicates {
		t.Errorf("duplicate diagnostics disabled by default")
	}
	if got := proj.Config.Watch.IntervalOrDefault(); got != 2*time.Second {
		t.Errorf("interval = %v", got)
	}
}

func TestLoadFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
extensions = [".js"]
variable_dir = "vars"

[diagnostics]
undefined_objects = false
missing_semicolons = false

[log]
verbosity = 2

[watch]
interval = "500ms"
`)
	proj, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if proj.ConfigPath != filepath.Join(dir, ConfigFile) {
		t.Errorf("ConfigPath = %q", proj.ConfigPath)
	}
	if got := proj.VariableDir(); got != filepath.Join(dir, "vars") {
		t.Errorf("VariableDir = %q", got)
	}
	if got := proj.LibDir(); got != filepath.Join(dir, "lib") {
		t.Errorf("LibDir kept default = %q", got)
	}
	if proj.Config.Diagnostics.UndefinedObjects {
		t.Errorf("undefined_objects not applied")
	}
	if !proj.Config.Diagnostics.Duplicates || !proj.Config.Diagnostics.UndefinedFunctions {
		t.Errorf("diagnostics defaults lost: %+v", proj.Config.Diagnostics)
	}
	if proj.Config.Diagnostics.MissingSemicolons {
		t.Errorf("missing_semicolons not applied")
	}
	if proj.Config.Log.Verbosity != 2 {
		t.Errorf("verbosity = %d", proj.Config.Log.Verbosity)
	}
	if got := proj.Config.Watch.IntervalOrDefault(); got != 500*time.Millisecond {
		t.Errorf("interval = %v", got)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "extensions = [", "parse"},
		{"unknown key", "colour = true", "unknown keys: colour"},
		{"extension", `extensions = ["js"]`, "must start with a dot"},
		{"interval", "[watch]\ninterval = \"soon\"", "watch.interval"},
		{"empty variable dir", `variable_dir = ""`, "variable_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			_, err := LoadFrom(dir)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")
	nested := filepath.Join(root, "screens", "main")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := Find(nested); got != root {
		t.Errorf("Find = %q, want %q", got, root)
	}

	lone := t.TempDir()
	if got := Find(lone); got != lone {
		t.Errorf("Find without config = %q, want %q", got, lone)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(dir, DefaultConfig())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := Write(dir, DefaultConfig()); err == nil {
		t.Errorf("second Write overwrote %s", path)
	}

	proj, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom written config: %v", err)
	}
	if strings.Join(proj.Config.Extensions, ",") != ".js,.hws" {
		t.Errorf("extensions = %v", proj.Config.Extensions)
	}
}

func TestWriteRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFile)

	err := writeNew(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, "extensions = ["); err != nil {
			return err
		}
		return errors.New("disk full")
	})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("writeNew error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("partial %s left behind: %v", ConfigFile, err)
	}

	if _, err := Write(dir, DefaultConfig()); err != nil {
		t.Errorf("Write after a failed write: %v", err)
	}
}

func TestPathClassification(t *testing.T) {
	proj, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	root := proj.RootDir

	tests := []struct {
		path                  string
		script, variable, lib bool
	}{
		{filepath.Join(root, "main.js"), true, false, false},
		{filepath.Join(root, "main.HWS"), true, false, false},
		{filepath.Join(root, "variable", "Tank.csv"), false, true, false},
		{filepath.Join(root, "variable", "sub", "Tank.csv"), false, false, false},
		{filepath.Join(root, "lib", "common.js"), true, false, true},
		{filepath.Join(root, "library", "x.js"), true, false, false},
		{filepath.Join(root, "readme.txt"), false, false, false},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			if got := proj.IsScript(tt.path); got != tt.script {
				t.Errorf("IsScript = %v", got)
			}
			if got := proj.IsVariableFile(tt.path); got != tt.variable {
				t.Errorf("IsVariableFile = %v", got)
			}
			if got := proj.IsLib(tt.path); got != tt.lib {
				t.Errorf("IsLib = %v", got)
			}
		})
	}
}
