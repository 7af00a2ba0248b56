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
	synErrInvalidDocument = newSyntaxError("invalid grammar definition")
	synErrEmptyDocument   = newSyntaxError("a grammar definition is empty")

	synErrNoName           = newSyntaxError("a grammar needs a name")
	synErrNoStart          = newSyntaxError("a grammar needs a start symbol")
	synErrNoProduction     = newSyntaxError("a grammar must have at least one production")
	synErrNoProductionName = newSyntaxError("a production name is missing")
	synErrNoTokenName      = newSyntaxError("a token name is missing")
	synErrNoTokenPattern   = newSyntaxError("a token needs a pattern")
	synErrNoFragmentName   = newSyntaxError("a fragment name is missing")
	synErrNoFragmentPat    = newSyntaxError("a fragment needs a pattern")
	synErrEmptyModeName    = newSyntaxError("a mode name must be non-empty")
	synErrPushAndPop       = newSyntaxError("a token cannot push and pop a mode at the same time")
	synErrResolutionNoItem = newSyntaxError("a resolution needs both `prefer` and `over` items")
	synErrItemNoLabel      = newSyntaxError("an item needs a production label")
	synErrNegativePos      = newSyntaxError("a position must be greater than or equal to 0")
)
