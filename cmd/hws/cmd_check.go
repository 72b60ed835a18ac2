package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dhamidi/hws/hwscript/codebase"
	"github.com/dhamidi/hws/hwscript/parser"
	"github.com/dhamidi/hws/project"
)

var severityColors = map[codebase.Severity]*color.Color{
	codebase.SeverityError:       color.New(color.FgRed, color.Bold),
	codebase.SeverityWarning:     color.New(color.FgYellow, color.Bold),
	codebase.SeverityInformation: color.New(color.FgCyan),
	codebase.SeverityHint:        color.New(color.FgWhite),
}

func newCheckCmd() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Report duplicate declarations and unknown variable references",
		Long: `Report duplicate declarations and unknown variable references.

Each file is checked against the project it belongs to: the nearest
directory above it containing hws.toml, or the file's own directory.
The command fails when any warning or error is reported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	return cmd
}

func runCheck(ctx context.Context, w, errW io.Writer, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	codebases := make(map[string]*codebase.Codebase)
	problems := 0

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		root := project.Find(filepath.Dir(abs))
		c, ok := codebases[root]
		if !ok {
			c, err = openCodebase(ctx, root, errW)
			if err != nil {
				return err
			}
			codebases[root] = c
		}

		src, err := codebase.ReadSource(abs)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		lines := parser.NewLineIndex(src.Text())
		for _, d := range c.Diagnostics(src) {
			pos := lines.Position(d.Start)
			label := severityColors[d.Severity].Sprint(d.Severity)
			fmt.Fprintf(w, "%s:%d:%d: %s: %s [%s]\n", path, pos.Line+1, pos.Character+1, label, d.Message, d.Code)
			if d.Severity <= codebase.SeverityWarning {
				problems++
			}
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d problem(s) found", problems)
	}
	return nil
}

// openCodebase loads the project at root with its variable groups and
// script index, the way the language server does on startup. CSV files
// that fail to load are reported to errW and skipped.
func openCodebase(ctx context.Context, root string, errW io.Writer) (*codebase.Codebase, error) {
	proj, err := project.LoadFrom(root)
	if err != nil {
		return nil, err
	}
	c := codebase.New(proj, codebase.NewCache())
	if err := c.LoadVariables(ctx); err != nil {
		fmt.Fprintf(errW, "load variables: %s\n", err)
	}
	if err := c.ScanAll(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return c, nil
}
