package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dhamidi/hws/format"
	"github.com/dhamidi/hws/hwscript/codebase"
)

func newScopesCmd() *cobra.Command {
	var formatName string
	var at int

	cmd := &cobra.Command{
		Use:   "scopes <file>",
		Short: "Print the scope tree of a script",
		Long: `Print the scope tree of a script with the symbols each scope owns.

With --at, print the scope enclosing that byte offset and every symbol
visible there instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := codebase.ReadSource(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if at >= 0 {
				return printVisible(cmd.OutOrStdout(), src, at)
			}
			enc, err := format.New(formatName, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			doc := codebase.Analyze(src.URI(), src.Version(), src.Text())
			return enc.EncodeScopes(doc.Tree, doc.Lines)
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "tree", "output format: tree, json or msgpack")
	cmd.Flags().IntVar(&at, "at", -1, "byte offset to query")

	return cmd
}

func printVisible(w io.Writer, src codebase.Source, offset int) error {
	cache := codebase.NewCache()
	s := cache.ScopeAt(src, offset)
	if s == nil {
		return fmt.Errorf("offset %d is outside the document", offset)
	}
	fmt.Fprintf(w, "scope\t%s\t#%d\tdepth %d\n", s.Kind, s.ID, s.Depth())

	visible := cache.VisibleSymbols(src, offset)
	names := make([]string, 0, len(visible))
	for name := range visible {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sym := visible[name]
		typ := "any"
		if sym.Shape != nil {
			typ = sym.Shape.String()
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t#%d\n", sym.Keyword, sym.Name, typ, sym.Scope.ID)
	}
	return nil
}
