package main

import (
	"fmt"
	"os"

	"github.com/nihei9/earley/driver"
	"github.com/spf13/cobra"
)

var showFlags = struct {
	source *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "show <grammar file path>",
		Short: "Print a grammar and, when a source is given, its chart",
		Example: `  earley show sum.earley
  earley show sum.earley -s src.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
	showFlags.source = cmd.Flags().StringP("source", "s", "", "source file path")
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	gram, err := readGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a grammar: %w", err)
	}

	err = gram.Write(os.Stdout)
	if err != nil {
		return err
	}

	if *showFlags.source == "" {
		return nil
	}

	f, err := os.Open(*showFlags.source)
	if err != nil {
		return fmt.Errorf("Cannot open the source file %s: %w", *showFlags.source, err)
	}
	defer f.Close()

	toks, err := driver.Tokenize(gram, f)
	if err != nil {
		return err
	}
	chart := driver.Recognize(gram, toks)

	fmt.Fprintf(os.Stdout, "\n# Chart\n\n")
	err = chart.Write(os.Stdout, gram)
	if err != nil {
		return err
	}

	if chart.Accepted(gram) {
		fmt.Fprintf(os.Stdout, "\naccepted\n")
	} else {
		fmt.Fprintf(os.Stdout, "\nrejected: %v\n", formatSyntaxError(chart.SyntaxError(gram)))
	}
	return nil
}
