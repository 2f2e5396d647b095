package lsp

import (
	"errors"
	"strings"

	verr "github.com/nihei9/earley/error"
	"github.com/nihei9/earley/grammar"
	"github.com/nihei9/earley/spec"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const diagnosticSource = "earley"

// Diagnose reads a grammar and returns its errors and warnings. Positions of the result are 0-based as
// the protocol requires.
func Diagnose(src string) []protocol.Diagnostic {
	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		return toDiagnostics(err, protocol.DiagnosticSeverityError)
	}

	b := &grammar.GrammarBuilder{
		AST: ast,
	}
	_, err = b.Build()
	if err != nil {
		return toDiagnostics(err, protocol.DiagnosticSeverityError)
	}

	diags := []protocol.Diagnostic{}
	for _, w := range b.Warnings {
		diags = append(diags, newDiagnostic(w, protocol.DiagnosticSeverityWarning))
	}
	return diags
}

func toDiagnostics(err error, severity protocol.DiagnosticSeverity) []protocol.Diagnostic {
	var specErrs verr.SpecErrors
	if errors.As(err, &specErrs) {
		diags := make([]protocol.Diagnostic, len(specErrs))
		for i, e := range specErrs {
			diags[i] = newDiagnostic(e, severity)
		}
		return diags
	}
	var specErr *verr.SpecError
	if errors.As(err, &specErr) {
		return []protocol.Diagnostic{
			newDiagnostic(specErr, severity),
		}
	}

	// An error without a position is reported at the head of the document.
	return []protocol.Diagnostic{
		{
			Severity: &severity,
			Source:   strPtr(diagnosticSource),
			Message:  err.Error(),
		},
	}
}

func newDiagnostic(e *verr.SpecError, severity protocol.DiagnosticSeverity) protocol.Diagnostic {
	msg := e.Cause.Error()
	if e.Detail != "" {
		msg = msg + ": " + e.Detail
	}

	start := toPosition(e.Row, e.Col)
	end := start
	end.Character += protocol.UInteger(len(e.Detail))

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: start,
			End:   end,
		},
		Severity: &severity,
		Source:   strPtr(diagnosticSource),
		Message:  msg,
	}
}

func toPosition(row, col int) protocol.Position {
	var pos protocol.Position
	if row > 0 {
		pos.Line = protocol.UInteger(row - 1)
	}
	if col > 0 {
		pos.Character = protocol.UInteger(col - 1)
	}
	return pos
}

func strPtr(s string) *string {
	return &s
}
