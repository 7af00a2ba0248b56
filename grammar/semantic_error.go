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
	semErrUnusedProduction    = newSemanticError("unused production")
	semErrUnusedTerminal      = newSemanticError("unused terminal")
	semErrTermCannotBeSkipped = newSemanticError("a terminal used in productions cannot be skipped")
	semErrUndefinedSym        = newSemanticError("undefined symbol")
	semErrUndefinedMode       = newSemanticError("undefined mode")
	semErrUndefinedLabel      = newSemanticError("undefined production label")
	semErrDuplicateProduction = newSemanticError("duplicate production")
	semErrDuplicateTerminal   = newSemanticError("duplicate terminal")
	semErrDuplicateFragment   = newSemanticError("duplicate fragment")
	semErrDuplicateLabel      = newSemanticError("duplicate production label")
	semErrDuplicateName       = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	semErrReservedName        = newSemanticError("a symbol name must not contain `<` or `>`")
	semErrDirInvalidParam     = newSemanticError("invalid parameter")
	semErrInvalidPattern      = newSemanticError("invalid pattern")
)
