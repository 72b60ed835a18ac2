package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/hws/project"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new hwscript project",
		Long: `Initialize a new hwscript project.

If a directory is provided, creates it and initializes the project there.
Otherwise, initializes in the current directory.

This command:
  - Creates hws.toml with the default settings
  - Creates the variable directory for CSV variable groups
  - Creates the lib directory for shared scripts

An existing hws.toml is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd.OutOrStdout(), dir)
		},
	}
	return cmd
}

func runInit(w io.Writer, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	cfg := project.DefaultConfig()
	path, err := project.Write(dir, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Created %s\n", path)

	proj := project.New(dir)
	for _, sub := range []string{proj.VariableDir(), proj.LibDir()} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Base(sub), err)
		}
		fmt.Fprintf(w, "Created %s%c\n", sub, filepath.Separator)
	}
	return nil
}
