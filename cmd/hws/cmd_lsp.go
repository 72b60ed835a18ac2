package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/hws/hwscript/codebase"
)

func newLSPCmd() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the Language Server Protocol server.

The server speaks over stdin and stdout unless --tcp is given. The
project root is taken from the client's initialize request; hws.toml
is looked up from there.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := codebase.NewLSPServer(version, codebase.NewCache())
			if address != "" {
				return server.RunTCP(address)
			}
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&address, "tcp", "", "listen on this address instead of stdio")

	return cmd
}
