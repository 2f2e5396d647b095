package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// lexical errors
	synErrUnclosedTerminal = newSyntaxError("unclosed terminal")
	synErrEmptyTerminal    = newSyntaxError("a terminal must include at least one character")

	// syntax errors
	synErrInvalidToken = newSyntaxError("invalid token")
	synErrNoRule       = newSyntaxError("a grammar must have at least one rule")
	synErrNoHead       = newSyntaxError("a rule head is missing")
	synErrQuotedHead   = newSyntaxError("a rule head cannot be a quoted terminal")
	synErrNoArrow      = newSyntaxError("the arrow '->' must follow a rule head")
	synErrEmptyBody    = newSyntaxError("a rule body must have at least one symbol; empty rules are not supported")
	synErrArrowInBody  = newSyntaxError("the arrow '->' cannot appear in a rule body")
)
