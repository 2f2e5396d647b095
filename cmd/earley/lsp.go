package main

import (
	"github.com/nihei9/earley/lsp"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

func init() {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run a language server checking grammar files over stdio",
		Args:  cobra.NoArgs,
		RunE:  runLSP,
	}
	rootCmd.AddCommand(cmd)
}

func runLSP(cmd *cobra.Command, args []string) error {
	return lsp.NewServer(version).RunStdio()
}
