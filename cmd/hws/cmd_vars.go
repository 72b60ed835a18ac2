package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dhamidi/hws/hwscript/catalog"
	"github.com/dhamidi/hws/hwscript/shape"
)

func newVarsCmd() *cobra.Command {
	var system bool
	var width int

	cmd := &cobra.Command{
		Use:   "vars [directory]",
		Short: "List the variable groups of a project",
		Long: `List the variable groups of a project.

Every CSV file in the project's variable directory is one group,
referenced in scripts as $Group.variable. Use --system to list the
built-in system variables instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if system {
				printProperties(w, "", catalog.SystemVariables(), width)
				return nil
			}
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runVars(cmd.Context(), w, cmd.ErrOrStderr(), dir, width)
		},
	}

	cmd.Flags().BoolVar(&system, "system", false, "list system variables")
	cmd.Flags().IntVarP(&width, "width", "w", 60, "truncate descriptions to this many columns")

	return cmd
}

func runVars(ctx context.Context, w, errW io.Writer, dir string, width int) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	c, err := openCodebase(ctx, abs, errW)
	if err != nil {
		return err
	}

	groups := c.Groups()
	names := groups.Objects()
	if len(names) == 0 {
		fmt.Fprintf(w, "no variable groups in %s\n", c.Project().VariableDir())
		return nil
	}
	for i, name := range names {
		group, _ := groups.Group(name)
		if i > 0 {
			fmt.Fprintln(w)
		}
		rel, err := filepath.Rel(c.RootDir(), group.SourceFile)
		if err != nil {
			rel = group.SourceFile
		}
		fmt.Fprintf(w, "%s (%s, %d variables)\n", catalog.Dollar(name), rel, len(group.Properties))
		printProperties(w, "  ", group.Properties, width)
	}
	return nil
}

// printProperties writes one aligned row per property. Column widths are
// measured in terminal cells so descriptions in wide scripts line up.
func printProperties(w io.Writer, indent string, props []catalog.Property, width int) {
	nameWidth, typeWidth := 0, 0
	for _, p := range props {
		nameWidth = max(nameWidth, runewidth.StringWidth(p.Name))
		typeWidth = max(typeWidth, runewidth.StringWidth(typeColumn(p)))
	}
	for _, p := range props {
		desc := p.Description
		if width > 0 && runewidth.StringWidth(desc) > width {
			desc = runewidth.Truncate(desc, width, "...")
		}
		fmt.Fprintf(w, "%s%s  %s  %s\n",
			indent,
			runewidth.FillRight(p.Name, nameWidth),
			runewidth.FillRight(typeColumn(p), typeWidth),
			desc,
		)
	}
}

func typeColumn(p catalog.Property) string {
	typ := p.RawType
	if typ == "" && p.Shape != nil {
		typ = p.Shape.String()
	}
	if s, ok := p.Shape.(shape.String); ok && s.Length > 0 {
		typ += "(" + strconv.Itoa(s.Length) + ")"
	}
	return typ
}
