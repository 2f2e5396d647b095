package main

import (
	"errors"
	"fmt"
	"os"

	verr "github.com/nihei9/earley/error"
	"github.com/nihei9/earley/grammar"
	"github.com/nihei9/earley/spec"
)

func readGrammar(path string) (*grammar.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	ast, err := spec.Parse(f)
	if err != nil {
		return nil, withFilePath(err, path)
	}

	b := grammar.GrammarBuilder{
		AST: ast,
	}
	gram, err := b.Build()
	if err != nil {
		return nil, withFilePath(err, path)
	}
	return gram, nil
}

// withFilePath attaches the file path to spec errors so that their messages include the source line.
func withFilePath(err error, path string) error {
	var specErrs verr.SpecErrors
	if errors.As(err, &specErrs) {
		for _, e := range specErrs {
			e.FilePath = path
			e.SourceName = path
		}
		return err
	}
	var specErr *verr.SpecError
	if errors.As(err, &specErr) {
		specErr.FilePath = path
		specErr.SourceName = path
	}
	return err
}
