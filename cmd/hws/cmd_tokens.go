package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/hws/format"
	"github.com/dhamidi/hws/hwscript/parser"
)

func newTokensCmd() *cobra.Command {
	var formatName string

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			enc, err := format.New(formatName, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			text := string(content)
			return enc.EncodeTokens(parser.Tokenize(text), parser.NewLineIndex(text))
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "tree", "output format: tree, json or msgpack")

	return cmd
}
