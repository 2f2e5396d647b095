package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoRule       = newSemanticError("a grammar must have at least one rule")
	semErrReservedName = newSemanticError("the name is reserved")

	// The following errors are reported as warnings; a grammar having them still works.
	semErrUndefinedSym    = newSemanticError("a non-terminal symbol has no rules")
	semErrUnreachableRule = newSemanticError("a rule is unreachable from the start symbol")
)
