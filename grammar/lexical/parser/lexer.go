package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	spec "github.com/nihei9/lrgen/spec/grammar"
)

type tokenKind string

const (
	tokenKindChar                  tokenKind = "char"
	tokenKindAnyChar               tokenKind = "."
	tokenKindRepeat                tokenKind = "*"
	tokenKindRepeatOneOrMore       tokenKind = "+"
	tokenKindOption                tokenKind = "?"
	tokenKindAlt                   tokenKind = "|"
	tokenKindGroupOpen             tokenKind = "("
	tokenKindGroupClose            tokenKind = ")"
	tokenKindBExpOpen              tokenKind = "["
	tokenKindInverseBExpOpen       tokenKind = "[^"
	tokenKindBExpClose             tokenKind = "]"
	tokenKindCharRange             tokenKind = "-"
	tokenKindAnchor                tokenKind = "anchor"
	tokenKindClassEscape           tokenKind = "class escape"
	tokenKindCodePointLeader       tokenKind = "\\u"
	tokenKindCharPropLeader        tokenKind = "\\p"
	tokenKindInverseCharPropLeader tokenKind = "\\P"
	tokenKindFragmentLeader        tokenKind = "\\f"
	tokenKindRepOpen               tokenKind = "{ (repetition)"
	tokenKindLBrace                tokenKind = "{"
	tokenKindRBrace                tokenKind = "}"
	tokenKindEqual                 tokenKind = "="
	tokenKindComma                 tokenKind = ","
	tokenKindNumber                tokenKind = "number"
	tokenKindCodePoint             tokenKind = "code point"
	tokenKindCharPropSymbol        tokenKind = "character property symbol"
	tokenKindFragmentSymbol        tokenKind = "fragment symbol"
	tokenKindEOF                   tokenKind = "eof"
)

type token struct {
	kind           tokenKind
	char           rune
	anchor         spec.AnchorKind
	num            int
	propSymbol     string
	codePoint      string
	fragmentSymbol string
}

const nullChar = '\u0000'

func newToken(kind tokenKind, char rune) *token {
	return &token{
		kind: kind,
		char: char,
	}
}

func newAnchorToken(anchor spec.AnchorKind) *token {
	return &token{
		kind:   tokenKindAnchor,
		anchor: anchor,
	}
}

func newNumberToken(num int) *token {
	return &token{
		kind: tokenKindNumber,
		num:  num,
	}
}

func newCodePointToken(codePoint string) *token {
	return &token{
		kind:      tokenKindCodePoint,
		codePoint: codePoint,
	}
}

func newCharPropSymbolToken(propSymbol string) *token {
	return &token{
		kind:       tokenKindCharPropSymbol,
		propSymbol: propSymbol,
	}
}

func newFragmentSymbolToken(fragmentSymbol string) *token {
	return &token{
		kind:           tokenKindFragmentSymbol,
		fragmentSymbol: fragmentSymbol,
	}
}

type lexerMode string

const (
	lexerModeDefault     lexerMode = "default"
	lexerModeBExp        lexerMode = "bracket expression"
	lexerModeCPExp       lexerMode = "code point expression"
	lexerModeCharPropExp lexerMode = "character property expression"
	lexerModeFragmentExp lexerMode = "fragment expression"
	lexerModeRepExp      lexerMode = "repetition expression"
)

type lexerModeStack struct {
	stack []lexerMode
}

func newLexerModeStack() *lexerModeStack {
	return &lexerModeStack{
		stack: []lexerMode{
			lexerModeDefault,
		},
	}
}

func (s *lexerModeStack) top() lexerMode {
	return s.stack[len(s.stack)-1]
}

func (s *lexerModeStack) push(m lexerMode) {
	s.stack = append(s.stack, m)
}

func (s *lexerModeStack) pop() {
	s.stack = s.stack[:len(s.stack)-1]
}

type rangeState string

// [a-z]
// ^^^^
// |||`-- ready
// ||`-- expect range terminator
// |`-- read range initiator
// `-- ready
const (
	rangeStateReady                 rangeState = "ready"
	rangeStateReadRangeInitiator    rangeState = "read range initiator"
	rangeStateExpectRangeTerminator rangeState = "expect range terminator"
)

// repDigitsMax bounds the digits of a repetition count so that the count never overflows int.
const repDigitsMax = 9

type lexer struct {
	src        []rune
	pos        int
	srcErr     error
	modeStack  *lexerModeStack
	rangeState rangeState

	errCause  error
	errDetail string
}

func newLexer(src io.Reader) *lexer {
	l := &lexer{
		modeStack:  newLexerModeStack(),
		rangeState: rangeStateReady,
	}
	b, err := io.ReadAll(src)
	if err != nil {
		l.srcErr = err
		return l
	}
	if !utf8.Valid(b) {
		l.srcErr = ParseErr
		l.errCause = synErrInvalidUTF8
		return l
	}
	l.src = []rune(string(b))
	return l
}

func (l *lexer) error() (string, error) {
	return l.errDetail, l.errCause
}

func (l *lexer) next() (*token, error) {
	if l.srcErr != nil {
		return nil, l.srcErr
	}

	c, eof := l.read()
	if eof {
		return newToken(tokenKindEOF, nullChar), nil
	}

	switch l.modeStack.top() {
	case lexerModeBExp:
		tok, err := l.nextInBExp(c)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenKindChar, tokenKindCodePointLeader, tokenKindCharPropLeader, tokenKindInverseCharPropLeader, tokenKindClassEscape:
			switch l.rangeState {
			case rangeStateReady:
				l.rangeState = rangeStateReadRangeInitiator
			case rangeStateExpectRangeTerminator:
				l.rangeState = rangeStateReady
			}
		}
		switch tok.kind {
		case tokenKindBExpClose:
			l.modeStack.pop()
		case tokenKindCharRange:
			l.rangeState = rangeStateExpectRangeTerminator
		case tokenKindCodePointLeader:
			l.modeStack.push(lexerModeCPExp)
		case tokenKindCharPropLeader, tokenKindInverseCharPropLeader:
			l.modeStack.push(lexerModeCharPropExp)
		}
		return tok, nil
	case lexerModeCPExp:
		tok, err := l.nextInCodePoint(c)
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindRBrace {
			l.modeStack.pop()
		}
		return tok, nil
	case lexerModeCharPropExp:
		tok, err := l.nextInCharProp(c)
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindRBrace {
			l.modeStack.pop()
		}
		return tok, nil
	case lexerModeFragmentExp:
		tok, err := l.nextInFragment(c)
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindRBrace {
			l.modeStack.pop()
		}
		return tok, nil
	case lexerModeRepExp:
		tok, err := l.nextInRepetition(c)
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindRBrace {
			l.modeStack.pop()
		}
		return tok, nil
	default:
		tok, err := l.nextInDefault(c)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenKindBExpOpen, tokenKindInverseBExpOpen:
			l.modeStack.push(lexerModeBExp)
			l.rangeState = rangeStateReady
		case tokenKindCodePointLeader:
			l.modeStack.push(lexerModeCPExp)
		case tokenKindCharPropLeader, tokenKindInverseCharPropLeader:
			l.modeStack.push(lexerModeCharPropExp)
		case tokenKindFragmentLeader:
			l.modeStack.push(lexerModeFragmentExp)
		case tokenKindRepOpen:
			l.modeStack.push(lexerModeRepExp)
		}
		return tok, nil
	}
}

func (l *lexer) nextInDefault(c rune) (*token, error) {
	switch c {
	case '*':
		return newToken(tokenKindRepeat, nullChar), nil
	case '+':
		return newToken(tokenKindRepeatOneOrMore, nullChar), nil
	case '?':
		return newToken(tokenKindOption, nullChar), nil
	case '.':
		return newToken(tokenKindAnyChar, nullChar), nil
	case '|':
		return newToken(tokenKindAlt, nullChar), nil
	case '(':
		return newToken(tokenKindGroupOpen, nullChar), nil
	case ')':
		return newToken(tokenKindGroupClose, nullChar), nil
	case '{':
		return newToken(tokenKindRepOpen, nullChar), nil
	case '^':
		return newAnchorToken(spec.AnchorStartOfLine), nil
	case '$':
		return newAnchorToken(spec.AnchorEndOfLine), nil
	case '[':
		// `[^]` is a bracket expression containing `^`, not an empty inverse one.
		if l.peekIs(0, '^') && !l.peekIs(1, ']') {
			l.pos++
			return newToken(tokenKindInverseBExpOpen, nullChar), nil
		}
		return newToken(tokenKindBExpOpen, nullChar), nil
	case '\\':
		c, eof := l.read()
		if eof {
			l.errCause = synErrIncompletedEscSeq
			return nil, ParseErr
		}
		switch c {
		case 'u':
			return newToken(tokenKindCodePointLeader, nullChar), nil
		case 'p':
			return newToken(tokenKindCharPropLeader, nullChar), nil
		case 'P':
			return newToken(tokenKindInverseCharPropLeader, nullChar), nil
		case 'f':
			return newToken(tokenKindFragmentLeader, nullChar), nil
		case 'A':
			return newAnchorToken(spec.AnchorStartOfInput), nil
		case 'z':
			return newAnchorToken(spec.AnchorEndOfInput), nil
		}
		if tok, ok, err := l.commonEscape(c); ok || err != nil {
			return tok, err
		}
		switch c {
		case '\\', '.', '*', '+', '?', '|', '(', ')', '[', ']', '{', '}', '^', '$', '-', '/':
			return newToken(tokenKindChar, c), nil
		}
		l.errCause = synErrInvalidEscSeq
		l.errDetail = fmt.Sprintf("\\%v is not supported", string(c))
		return nil, ParseErr
	default:
		return newToken(tokenKindChar, c), nil
	}
}

// commonEscape reads the escape sequences available both inside and outside of bracket expressions.
func (l *lexer) commonEscape(c rune) (*token, bool, error) {
	switch c {
	case 'n':
		return newToken(tokenKindChar, '\n'), true, nil
	case 'r':
		return newToken(tokenKindChar, '\r'), true, nil
	case 't':
		return newToken(tokenKindChar, '\t'), true, nil
	case 'v':
		return newToken(tokenKindChar, '\v'), true, nil
	case '0':
		return newToken(tokenKindChar, nullChar), true, nil
	case 'd', 'D', 'w', 'W', 's', 'S':
		return newToken(tokenKindClassEscape, c), true, nil
	case 'x':
		var n rune
		for i := 0; i < 2; i++ {
			h, eof := l.read()
			if eof || !isHexDigit(h) {
				l.errCause = synErrInvalidHexEscSeq
				return nil, true, ParseErr
			}
			n = n<<4 | hexValue(h)
		}
		return newToken(tokenKindChar, n), true, nil
	}
	return nil, false, nil
}

func (l *lexer) nextInBExp(c rune) (*token, error) {
	switch c {
	case '-':
		if l.rangeState != rangeStateReadRangeInitiator {
			return newToken(tokenKindChar, c), nil
		}
		// `-` right before `]` is a literal.
		if l.peekIs(0, ']') || l.pos >= len(l.src) {
			return newToken(tokenKindChar, c), nil
		}
		return newToken(tokenKindCharRange, nullChar), nil
	case ']':
		return newToken(tokenKindBExpClose, nullChar), nil
	case '\\':
		c, eof := l.read()
		if eof {
			l.errCause = synErrIncompletedEscSeq
			return nil, ParseErr
		}
		switch c {
		case 'u':
			return newToken(tokenKindCodePointLeader, nullChar), nil
		case 'p':
			return newToken(tokenKindCharPropLeader, nullChar), nil
		case 'P':
			return newToken(tokenKindInverseCharPropLeader, nullChar), nil
		}
		if tok, ok, err := l.commonEscape(c); ok || err != nil {
			return tok, err
		}
		switch c {
		case '\\', '^', '-', ']', '[':
			return newToken(tokenKindChar, c), nil
		}
		l.errCause = synErrInvalidEscSeq
		l.errDetail = fmt.Sprintf("\\%v is not supported in a bracket expression", string(c))
		return nil, ParseErr
	default:
		return newToken(tokenKindChar, c), nil
	}
}

func (l *lexer) nextInCodePoint(c rune) (*token, error) {
	switch c {
	case '{':
		return newToken(tokenKindLBrace, nullChar), nil
	case '}':
		return newToken(tokenKindRBrace, nullChar), nil
	default:
		if !isHexDigit(c) {
			l.errCause = synErrInvalidCodePoint
			return nil, ParseErr
		}
		var b strings.Builder
		b.WriteRune(c)
		for !l.peekIs(0, '}') && l.pos < len(l.src) {
			c, _ := l.read()
			if !isHexDigit(c) || b.Len() >= 6 {
				l.errCause = synErrInvalidCodePoint
				return nil, ParseErr
			}
			b.WriteRune(c)
		}
		return newCodePointToken(b.String()), nil
	}
}

func isHexDigit(c rune) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'F' || c >= 'a' && c <= 'f'
}

func hexValue(c rune) rune {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return c - 'a' + 10
	}
}

func (l *lexer) nextInCharProp(c rune) (*token, error) {
	switch c {
	case '{':
		return newToken(tokenKindLBrace, nullChar), nil
	case '}':
		return newToken(tokenKindRBrace, nullChar), nil
	case '=':
		return newToken(tokenKindEqual, nullChar), nil
	default:
		var b strings.Builder
		b.WriteRune(c)
		for !l.peekIs(0, '}') && !l.peekIs(0, '=') && l.pos < len(l.src) {
			c, _ := l.read()
			b.WriteRune(c)
		}
		sym := strings.TrimSpace(b.String())
		if len(sym) == 0 {
			l.errCause = synErrCharPropInvalidSymbol
			return nil, ParseErr
		}
		return newCharPropSymbolToken(sym), nil
	}
}

func (l *lexer) nextInFragment(c rune) (*token, error) {
	switch c {
	case '{':
		return newToken(tokenKindLBrace, nullChar), nil
	case '}':
		return newToken(tokenKindRBrace, nullChar), nil
	default:
		var b strings.Builder
		b.WriteRune(c)
		for !l.peekIs(0, '}') && l.pos < len(l.src) {
			c, _ := l.read()
			b.WriteRune(c)
		}
		sym := strings.TrimSpace(b.String())
		if len(sym) == 0 {
			l.errCause = SynErrFragmentInvalidSymbol
			return nil, ParseErr
		}
		return newFragmentSymbolToken(sym), nil
	}
}

func (l *lexer) nextInRepetition(c rune) (*token, error) {
	switch {
	case c == ',':
		return newToken(tokenKindComma, nullChar), nil
	case c == '}':
		return newToken(tokenKindRBrace, nullChar), nil
	case c >= '0' && c <= '9':
		n := int(c - '0')
		digits := 1
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			c, _ := l.read()
			digits++
			if digits > repDigitsMax {
				l.errCause = SynErrRepOverflow
				return nil, ParseErr
			}
			n = n*10 + int(c-'0')
		}
		return newNumberToken(n), nil
	default:
		l.errCause = synErrRepInvalidSymbol
		l.errDetail = string(c)
		return nil, ParseErr
	}
}

func (l *lexer) read() (rune, bool) {
	if l.pos >= len(l.src) {
		return nullChar, true
	}
	c := l.src[l.pos]
	l.pos++
	return c, false
}

// peekIs reports whether the character at offset n from the current position is c.
func (l *lexer) peekIs(n int, c rune) bool {
	i := l.pos + n
	return i < len(l.src) && l.src[i] == c
}
