package parser

import (
	"fmt"
	"io"
	"strconv"

	spec "github.com/nihei9/lrgen/spec/grammar"
)

// RepetitionMax is the maximum count a repetition expression `{n,m}` accepts.
const RepetitionMax = 1000

type parser struct {
	kind      spec.LexKindName
	lex       *lexer
	peekedTok *token
	lastTok   *token

	errCause  error
	errDetail string
}

func NewParser(kind spec.LexKindName, src io.Reader) *parser {
	return &parser{
		kind: kind,
		lex:  newLexer(src),
	}
}

// Error returns the detail and the cause of the error when Parse returns ParseErr.
func (p *parser) Error() (string, error) {
	return p.errDetail, p.errCause
}

func (p *parser) Parse() (root CPTree, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			var ok bool
			retErr, ok = err.(error)
			if !ok {
				panic(err)
			}
			return
		}
	}()

	return newRootNode(p.kind, p.parseRegexp()), nil
}

func (p *parser) parseRegexp() CPTree {
	alt := p.parseAlt()
	if alt == nil {
		if p.consume(tokenKindGroupClose) {
			p.raiseParseError(synErrGroupNoInitiator, "")
		}
		p.raiseParseError(synErrNullPattern, "")
	}
	if p.consume(tokenKindGroupClose) {
		p.raiseParseError(synErrGroupNoInitiator, "")
	}
	p.expect(tokenKindEOF)
	return alt
}

func (p *parser) parseAlt() CPTree {
	left := p.parseConcat()
	if left == nil {
		if p.consume(tokenKindAlt) {
			p.raiseParseError(synErrAltLackOfOperand, "")
		}
		return nil
	}
	for {
		if !p.consume(tokenKindAlt) {
			break
		}
		right := p.parseConcat()
		if right == nil {
			p.raiseParseError(synErrAltLackOfOperand, "")
		}
		left = newAltNode(left, right)
	}
	return left
}

func (p *parser) parseConcat() CPTree {
	left := p.parseRepeat()
	for {
		right := p.parseRepeat()
		if right == nil {
			break
		}
		left = newConcatNode(left, right)
	}
	return left
}

func (p *parser) parseRepeat() CPTree {
	group := p.parseGroup()
	if group == nil {
		if p.consume(tokenKindRepeat) {
			p.raiseParseError(synErrRepNoTarget, "* needs an operand")
		}
		if p.consume(tokenKindRepeatOneOrMore) {
			p.raiseParseError(synErrRepNoTarget, "+ needs an operand")
		}
		if p.consume(tokenKindOption) {
			p.raiseParseError(synErrRepNoTarget, "? needs an operand")
		}
		if p.consume(tokenKindRepOpen) {
			p.raiseParseError(synErrRepNoTarget, "{ needs an operand")
		}
		return nil
	}

	var rep CPTree
	switch {
	case p.consume(tokenKindRepeat):
		rep = newRepeatNode(group)
	case p.consume(tokenKindRepeatOneOrMore):
		rep = newRepeatOneOrMoreNode(group)
	case p.consume(tokenKindOption):
		rep = newOptionNode(group)
	case p.consume(tokenKindRepOpen):
		min, max := p.parseRepetitionRange()
		rep = newRepetitionNode(group, min, max)
	default:
		return group
	}
	if _, ok := group.(*anchorNode); ok {
		p.raiseParseError(synErrRepAnchor, "")
	}
	return rep
}

// parseRepetitionRange parses `n}`, `n,}`, or `n,m}` following `{`.
func (p *parser) parseRepetitionRange() (int, int) {
	if !p.consume(tokenKindNumber) {
		p.raiseParseError(synErrRepInvalidForm, "a repetition expression must begin with a number")
	}
	min := p.lastTok.num
	max := min
	if p.consume(tokenKindComma) {
		max = RepeatUnbounded
		if p.consume(tokenKindNumber) {
			max = p.lastTok.num
		}
	}
	if !p.consume(tokenKindRBrace) {
		p.raiseParseError(synErrRepInvalidForm, "")
	}
	if min > RepetitionMax || max > RepetitionMax {
		p.raiseParseError(SynErrRepOverflow, fmt.Sprintf("the limit is %v", RepetitionMax))
	}
	if max != RepeatUnbounded && max < min {
		p.raiseParseError(synErrRepInvalidOrder, fmt.Sprintf("{%v,%v}", min, max))
	}
	return min, max
}

func (p *parser) parseGroup() CPTree {
	if p.consume(tokenKindGroupOpen) {
		alt := p.parseAlt()
		if alt == nil {
			if p.consume(tokenKindEOF) {
				p.raiseParseError(synErrGroupUnclosed, "")
			}
			p.raiseParseError(synErrGroupNoElem, "")
		}
		if p.consume(tokenKindEOF) {
			p.raiseParseError(synErrGroupUnclosed, "")
		}
		if !p.consume(tokenKindGroupClose) {
			p.raiseParseError(synErrGroupInvalidForm, "")
		}
		return alt
	}
	return p.parseSingleChar()
}

func (p *parser) parseSingleChar() CPTree {
	if p.consume(tokenKindAnyChar) {
		return genAnyCharAST()
	}
	if p.consume(tokenKindBExpOpen) {
		return p.parseBExp(false)
	}
	if p.consume(tokenKindInverseBExpOpen) {
		return p.parseBExp(true)
	}
	if p.consume(tokenKindAnchor) {
		return newAnchorNode(p.lastTok.anchor)
	}
	if p.consume(tokenKindClassEscape) {
		return newCharClassNode(classEscapeRanges(p.lastTok.char))
	}
	if p.consume(tokenKindCodePointLeader) {
		return newSymbolNode(p.parseCodePoint())
	}
	if p.consume(tokenKindCharPropLeader) {
		return p.charClassOrRaise(p.parseCharProp(false))
	}
	if p.consume(tokenKindInverseCharPropLeader) {
		return p.charClassOrRaise(p.parseCharProp(true))
	}
	if p.consume(tokenKindFragmentLeader) {
		return p.parseFragment()
	}
	c := p.parseNormalChar()
	if c == nil {
		if p.consume(tokenKindBExpClose) {
			p.raiseParseError(synErrBExpInvalidForm, "")
		}
		return nil
	}
	return c
}

func (p *parser) parseBExp(inverse bool) CPTree {
	ranges := p.parseBExpElem()
	if ranges == nil {
		if p.consume(tokenKindEOF) {
			p.raiseParseError(synErrBExpUnclosed, "")
		}
		p.raiseParseError(synErrBExpNoElem, "")
	}
	for {
		rs := p.parseBExpElem()
		if rs == nil {
			break
		}
		ranges = append(ranges, rs...)
	}
	if p.consume(tokenKindEOF) {
		p.raiseParseError(synErrBExpUnclosed, "")
	}
	p.expect(tokenKindBExpClose)

	ranges = normalizeRanges(ranges)
	if inverse {
		ranges = complementRanges(ranges)
	}
	return p.charClassOrRaise(ranges)
}

func (p *parser) charClassOrRaise(ranges []CPRange) CPTree {
	if len(ranges) == 0 {
		p.raiseParseError(synErrUnmatchablePattern, "")
	}
	return newCharClassNode(ranges)
}

// parseBExpElem parses a character, a range, a class escape, or a property expression in a bracket
// expression. It returns nil when no element follows.
func (p *parser) parseBExpElem() []CPRange {
	var from rune
	switch {
	case p.consume(tokenKindCodePointLeader):
		from = p.parseCodePoint()
	case p.consume(tokenKindCharPropLeader):
		rs := p.parseCharProp(false)
		if p.consume(tokenKindCharRange) {
			p.raiseParseError(synErrRangePropIsUnavailable, "")
		}
		return rs
	case p.consume(tokenKindInverseCharPropLeader):
		rs := p.parseCharProp(true)
		if p.consume(tokenKindCharRange) {
			p.raiseParseError(synErrRangePropIsUnavailable, "")
		}
		return rs
	case p.consume(tokenKindClassEscape):
		rs := classEscapeRanges(p.lastTok.char)
		if p.consume(tokenKindCharRange) {
			p.raiseParseError(synErrRangeClassEscape, "")
		}
		return rs
	case p.consume(tokenKindChar):
		from = p.lastTok.char
	default:
		return nil
	}
	if !p.consume(tokenKindCharRange) {
		return []CPRange{{From: from, To: from}}
	}
	var to rune
	switch {
	case p.consume(tokenKindCodePointLeader):
		to = p.parseCodePoint()
	case p.consume(tokenKindCharPropLeader), p.consume(tokenKindInverseCharPropLeader):
		p.raiseParseError(synErrRangePropIsUnavailable, "")
	case p.consume(tokenKindClassEscape):
		p.raiseParseError(synErrRangeClassEscape, "")
	case p.consume(tokenKindChar):
		to = p.lastTok.char
	default:
		p.raiseParseError(synErrRangeInvalidForm, "")
	}
	if !isValidOrder(from, to) {
		p.raiseParseError(synErrRangeInvalidOrder, fmt.Sprintf("%X..%X", from, to))
	}
	return []CPRange{{From: from, To: to}}
}

func (p *parser) parseCodePoint() rune {
	if !p.consume(tokenKindLBrace) {
		p.raiseParseError(synErrCPExpInvalidForm, "")
	}
	if !p.consume(tokenKindCodePoint) {
		p.raiseParseError(synErrCPExpInvalidForm, "")
	}

	n, err := strconv.ParseInt(p.lastTok.codePoint, 16, 64)
	if err != nil {
		panic(fmt.Errorf("failed to decode a code point (%v) into a int: %v", p.lastTok.codePoint, err))
	}
	if n < 0x0000 || n > int64(codePointMax) {
		p.raiseParseError(synErrCPExpOutOfRange, "")
	}

	if !p.consume(tokenKindRBrace) {
		p.raiseParseError(synErrCPExpInvalidForm, "")
	}

	return rune(n)
}

// parseCharProp parses `{value}` or `{name=value}` following \p or \P.
func (p *parser) parseCharProp(inverse bool) []CPRange {
	if !p.consume(tokenKindLBrace) {
		p.raiseParseError(synErrCharPropExpInvalidForm, "")
	}
	var sym1, sym2 string
	if !p.consume(tokenKindCharPropSymbol) {
		p.raiseParseError(synErrCharPropExpInvalidForm, "")
	}
	sym1 = p.lastTok.propSymbol
	if p.consume(tokenKindEqual) {
		if !p.consume(tokenKindCharPropSymbol) {
			p.raiseParseError(synErrCharPropExpInvalidForm, "")
		}
		sym2 = p.lastTok.propSymbol
	}
	if !p.consume(tokenKindRBrace) {
		p.raiseParseError(synErrCharPropExpInvalidForm, "")
	}

	var propName, propVal string
	if sym2 != "" {
		propName = sym1
		propVal = sym2
	} else {
		propVal = sym1
	}
	ranges, err := findCharProperty(propName, propVal)
	if err != nil {
		p.raiseParseError(synErrCharPropUnsupported, err.Error())
	}
	if inverse {
		return complementRanges(ranges)
	}
	return ranges
}

func (p *parser) parseFragment() CPTree {
	if !p.consume(tokenKindLBrace) {
		p.raiseParseError(synErrFragmentExpInvalidForm, "")
	}
	if !p.consume(tokenKindFragmentSymbol) {
		p.raiseParseError(synErrFragmentExpInvalidForm, "")
	}
	sym := p.lastTok.fragmentSymbol

	if !p.consume(tokenKindRBrace) {
		p.raiseParseError(synErrFragmentExpInvalidForm, "")
	}

	return newFragmentNode(spec.LexKindName(sym), nil)
}

func (p *parser) parseNormalChar() CPTree {
	if !p.consume(tokenKindChar) {
		return nil
	}
	return newSymbolNode(p.lastTok.char)
}

func genAnyCharAST() CPTree {
	return newRangeSymbolNode(0x0, codePointMax)
}

func isValidOrder(from, to rune) bool {
	return from <= to
}

func (p *parser) expect(expected tokenKind) {
	if !p.consume(expected) {
		tok := p.peekedTok
		p.raiseParseError(synErrUnexpectedToken, fmt.Sprintf("expected: %v, actual: %v", expected, tok.kind))
	}
}

func (p *parser) consume(expected tokenKind) bool {
	var tok *token
	var err error
	if p.peekedTok != nil {
		tok = p.peekedTok
		p.peekedTok = nil
	} else {
		tok, err = p.lex.next()
		if err != nil {
			if err == ParseErr {
				detail, cause := p.lex.error()
				p.raiseParseError(cause, detail)
			}
			panic(err)
		}
	}
	p.lastTok = tok
	if tok.kind == expected {
		return true
	}
	p.peekedTok = tok
	p.lastTok = nil

	return false
}

func (p *parser) raiseParseError(err error, detail string) {
	p.errCause = err
	p.errDetail = detail
	panic(ParseErr)
}
