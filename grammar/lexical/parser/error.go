package parser

import "fmt"

var (
	ParseErr = fmt.Errorf("parse error")

	// lexical errors
	synErrIncompletedEscSeq     = fmt.Errorf("incompleted escape sequence; unexpected EOF following \\")
	synErrInvalidEscSeq         = fmt.Errorf("invalid escape sequence")
	synErrInvalidHexEscSeq      = fmt.Errorf("\\x must be followed by just 2 hex digits")
	synErrInvalidCodePoint      = fmt.Errorf("code points must consist of 1 to 6 hex digits")
	synErrCharPropInvalidSymbol = fmt.Errorf("invalid character property symbol")
	SynErrFragmentInvalidSymbol = fmt.Errorf("invalid fragment symbol")
	synErrRepInvalidSymbol      = fmt.Errorf("a repetition expression can contain only digits and a comma")
	synErrInvalidUTF8           = fmt.Errorf("a pattern must be a valid UTF-8 sequence")

	// syntax errors
	synErrUnexpectedToken        = fmt.Errorf("unexpected token")
	synErrNullPattern            = fmt.Errorf("a pattern must be a non-empty byte sequence")
	synErrUnmatchablePattern     = fmt.Errorf("a pattern cannot match any characters")
	synErrAltLackOfOperand       = fmt.Errorf("an alternation expression must have operands")
	synErrRepNoTarget            = fmt.Errorf("a repeat expression must have an operand")
	synErrRepAnchor              = fmt.Errorf("an anchor cannot be repeated")
	synErrRepInvalidForm         = fmt.Errorf("invalid repetition expression")
	synErrRepInvalidOrder        = fmt.Errorf("the maximum count of a repetition must not be less than the minimum")
	synErrGroupNoElem            = fmt.Errorf("a grouping expression must include at least one character")
	synErrGroupUnclosed          = fmt.Errorf("unclosed grouping expression")
	synErrGroupNoInitiator       = fmt.Errorf(") needs preceding (")
	synErrGroupInvalidForm       = fmt.Errorf("invalid grouping expression")
	synErrBExpNoElem             = fmt.Errorf("a bracket expression must include at least one character")
	synErrBExpUnclosed           = fmt.Errorf("unclosed bracket expression")
	synErrBExpInvalidForm        = fmt.Errorf("invalid bracket expression")
	synErrRangeInvalidOrder      = fmt.Errorf("a range expression with invalid order")
	synErrRangePropIsUnavailable = fmt.Errorf("a property expression is unavailable in a range expression")
	synErrRangeClassEscape       = fmt.Errorf("a class escape is unavailable in a range expression")
	synErrRangeInvalidForm       = fmt.Errorf("invalid range expression")
	synErrCPExpInvalidForm       = fmt.Errorf("invalid code point expression")
	synErrCPExpOutOfRange        = fmt.Errorf("a code point must be between U+0000 to U+10FFFF")
	synErrCharPropExpInvalidForm = fmt.Errorf("invalid character property expression")
	synErrCharPropUnsupported    = fmt.Errorf("unsupported character property")
	synErrFragmentExpInvalidForm = fmt.Errorf("invalid fragment expression")

	// SynErrRepOverflow means a repetition count exceeds RepetitionMax.
	SynErrRepOverflow = fmt.Errorf("a repetition count is too large")
)
