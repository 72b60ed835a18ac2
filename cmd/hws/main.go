package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

func main() {
	var verbose int

	rootCmd := &cobra.Command{
		Use:     "hws",
		Short:   "Editor tooling for hwscript panel scripts",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose > 0 {
				commonlog.Configure(verbose, nil)
			}
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "log to stderr, repeat for more detail")

	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newScopesCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVarsCmd())
	rootCmd.AddCommand(newInitCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
