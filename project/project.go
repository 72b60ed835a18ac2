package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the name of the project configuration at the project root.
const ConfigFile = "hws.toml"

// Project represents an HMI script project: a root directory holding
// script files, a directory of variable group CSV files, and an optional
// lib directory of shared scripts.
type Project struct {
	RootDir    string
	ConfigPath string // empty when no hws.toml was found
	Config     Config
}

// Config is the content of hws.toml.
type Config struct {
	Extensions  []string          `toml:"extensions"`
	VariableDir string            `toml:"variable_dir"`
	LibDir      string            `toml:"lib_dir"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Log         LogConfig         `toml:"log"`
	Watch       WatchConfig       `toml:"watch"`
}

type DiagnosticsConfig struct {
	Duplicates         bool `toml:"duplicates"`
	UndefinedObjects   bool `toml:"undefined_objects"`
	UndefinedFunctions bool `toml:"undefined_functions"`
	MissingSemicolons  bool `toml:"missing_semicolons"`
}

type LogConfig struct {
	// Verbosity follows commonlog: 0 notices, 1 info, 2 and above debug,
	// negative values quieter.
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

type WatchConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
}

// IntervalOrDefault returns the polling interval, two seconds if unset.
func (w WatchConfig) IntervalOrDefault() time.Duration {
	if w.Interval == "" {
		return 2 * time.Second
	}
	d, err := time.ParseDuration(w.Interval)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// DefaultConfig is used when the project has no hws.toml. Values left
// out of a config file keep these defaults.
func DefaultConfig() Config {
	return Config{
		Extensions:  []string{".js", ".hws"},
		VariableDir: "variable",
		LibDir:      "lib",
		Diagnostics: DiagnosticsConfig{
			Duplicates:         true,
			UndefinedObjects:   true,
			UndefinedFunctions: true,
			MissingSemicolons:  true,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Interval: "2s",
		},
	}
}

// New returns a project rooted at rootDir with the default configuration.
func New(rootDir string) *Project {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		abs = rootDir
	}
	return &Project{RootDir: abs, Config: DefaultConfig()}
}

// LoadFrom reads the project rooted at rootDir. A missing hws.toml is not
// an error; the defaults are used instead.
func LoadFrom(rootDir string) (*Project, error) {
	proj := New(rootDir)

	path := filepath.Join(proj.RootDir, ConfigFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return proj, nil
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", ConfigFile, err)
	}

	md, err := toml.DecodeFile(path, &proj.Config)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", ConfigFile, strings.Join(keys, ", "))
	}
	if err := proj.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFile, err)
	}
	proj.ConfigPath = path
	return proj, nil
}

// Find walks up from dir looking for a directory containing hws.toml.
// It returns dir itself when no ancestor has one.
func Find(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	for cur := abs; ; {
		if _, err := os.Stat(filepath.Join(cur, ConfigFile)); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs
		}
		cur = parent
	}
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Extensions) == 0 {
		errs = append(errs, errors.New("extensions: at least one script extension is required"))
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Errorf("extensions: %q must start with a dot", ext))
		}
	}
	if c.VariableDir == "" {
		errs = append(errs, errors.New("variable_dir must not be empty"))
	}
	if c.Watch.Interval != "" {
		if d, err := time.ParseDuration(c.Watch.Interval); err != nil {
			errs = append(errs, fmt.Errorf("watch.interval=%q is invalid: %v", c.Watch.Interval, err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("watch.interval=%q must be positive", c.Watch.Interval))
		}
	}

	return errors.Join(errs...)
}

// Write stores cfg as hws.toml in dir. An existing file is not replaced.
func Write(dir string, cfg Config) (string, error) {
	path := filepath.Join(dir, ConfigFile)
	err := writeNew(path, func(w io.Writer) error {
		return toml.NewEncoder(w).Encode(cfg)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// writeNew creates path and fills it with encode. A file that could not
// be written completely is removed again.
func writeNew(path string, encode func(io.Writer) error) error {
	name := filepath.Base(path)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	if err := encode(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

func (p *Project) resolve(dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.RootDir, dir)
}

// VariableDir returns the absolute directory of the variable group CSV files.
func (p *Project) VariableDir() string {
	return p.resolve(p.Config.VariableDir)
}

// LibDir returns the absolute directory of shared scripts, empty when
// the project has none configured.
func (p *Project) LibDir() string {
	return p.resolve(p.Config.LibDir)
}

// IsScript reports whether path has one of the configured script extensions.
func (p *Project) IsScript(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range p.Config.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// IsVariableFile reports whether path is a CSV file directly inside the
// variable directory.
func (p *Project) IsVariableFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv") &&
		filepath.Clean(filepath.Dir(path)) == filepath.Clean(p.VariableDir())
}

// IsLib reports whether path is a script below the lib directory.
func (p *Project) IsLib(path string) bool {
	lib := p.LibDir()
	if lib == "" || !p.IsScript(path) {
		return false
	}
	rel, err := filepath.Rel(lib, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
