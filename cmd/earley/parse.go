package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nihei9/earley/driver"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source   *string
	json     *bool
	chart    *bool
	grammar  *bool
	maxDepth *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "parse <grammar file path>",
		Short: "Parse a token sequence",
		Example: `  echo "1 + 1" | earley parse sum.earley
  earley parse sum.earley -s src.txt --json`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.json = cmd.Flags().Bool("json", false, "print the tree in JSON")
	parseFlags.chart = cmd.Flags().Bool("chart", false, "print the chart before the tree")
	parseFlags.grammar = cmd.Flags().Bool("grammar", false, "print the grammar before the tree")
	parseFlags.maxDepth = cmd.Flags().Int("max-depth", 10000, "max depth of a tree")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	gram, err := readGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a grammar: %w", err)
	}

	if *parseFlags.grammar {
		err := gram.Write(os.Stdout)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout)
	}

	src := os.Stdin
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	p, err := driver.NewParser(gram, driver.MaxTreeDepth(*parseFlags.maxDepth))
	if err != nil {
		return err
	}
	tree, parseErr := p.Parse(src)

	if *parseFlags.chart && p.Chart() != nil {
		err := p.Chart().Write(os.Stdout, gram)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout)
	}

	if parseErr != nil {
		var synErr *driver.SyntaxError
		if errors.As(parseErr, &synErr) {
			return errors.New(formatSyntaxError(synErr))
		}
		return parseErr
	}

	if *parseFlags.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	}
	driver.PrintTree(os.Stdout, tree)
	return nil
}

func formatSyntaxError(synErr *driver.SyntaxError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v:%v: %v: '%v'", synErr.Row, synErr.Col, synErr.Message, synErr.Token.Text)
	if len(synErr.ExpectedTerminals) > 0 {
		fmt.Fprintf(&b, "; expected: %v", synErr.ExpectedTerminals[0])
		for _, t := range synErr.ExpectedTerminals[1:] {
			fmt.Fprintf(&b, ", %v", t)
		}
	}
	return b.String()
}
