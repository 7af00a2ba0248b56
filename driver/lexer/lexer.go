package lexer

import (
	"fmt"
	"io"
	"unicode/utf8"

	spec "github.com/nihei9/lrgen/spec/grammar"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.driver'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.driver")
}

type ModeID int

func (id ModeID) Int() int {
	return int(id)
}

type StateID int

func (id StateID) Int() int {
	return int(id)
}

type KindID int

func (id KindID) Int() int {
	return int(id)
}

type LexSpec interface {
	InitialMode() ModeID
	Pop(kind KindID) bool
	Push(kind KindID) (ModeID, bool)
	ModeName(mode ModeID) string
	InitialState(mode ModeID) StateID
	NextState(state StateID, c rune) (StateID, bool)
	AnchorState(state StateID, anchor spec.AnchorKind) (StateID, bool)
	Accept(state StateID) (KindID, bool)
	KindName(kind KindID) string
}

// Token representes a token.
type Token struct {
	// ModeID is an ID of a lex mode.
	ModeID ModeID

	// KindID is an ID of a kind. This is unique among all modes.
	KindID KindID

	// Row is a row number where a lexeme appears.
	Row int

	// Col is a column number where a lexeme appears.
	// Note that Col is counted in code points, not bytes.
	Col int

	// BytePos is a byte position where a lexeme appears.
	BytePos int

	// ByteLen is a length of a lexeme in bytes.
	ByteLen int

	// Lexeme is a byte sequence matched a pattern of a lexical specification.
	Lexeme []byte

	// When this field is true, it means the token is the EOF token.
	EOF bool

	// When this field is true, it means the token is an error token.
	Invalid bool
}

type LexerOption func(l *Lexer) error

// DisableModeTransition disables the active mode transition. Thus, even if the lexical specification has the push and pop
// operations, the lexer doesn't perform these operations. When the lexical specification has multiple modes, and this option is
// enabled, you need to call the Lexer.Push and Lexer.Pop methods to perform the mode transition. You can use the Lexer.Mode method
// to know the current lex mode.
func DisableModeTransition() LexerOption {
	return func(l *Lexer) error {
		l.passiveModeTran = true
		return nil
	}
}

type lexerState struct {
	srcPtr int
	row    int
	col    int
}

type Lexer struct {
	spec              LexSpec
	src               []byte
	state             lexerState
	lastAcceptedState lexerState
	tokBuf            []*Token
	modeStack         []ModeID
	passiveModeTran   bool
}

// NewLexer returns a new lexer.
func NewLexer(spec LexSpec, src io.Reader, opts ...LexerOption) (*Lexer, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	l := &Lexer{
		spec: spec,
		src:  b,
		modeStack: []ModeID{
			spec.InitialMode(),
		},
	}
	for _, opt := range opts {
		err := opt(l)
		if err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Next returns a next token. Consecutive code points no pattern matches make one invalid token.
func (l *Lexer) Next() (*Token, error) {
	if len(l.tokBuf) > 0 {
		tok := l.tokBuf[0]
		l.tokBuf = l.tokBuf[1:]
		return tok, nil
	}

	tok, err := l.nextAndTransition()
	if err != nil {
		return nil, err
	}
	if !tok.Invalid {
		return tok, nil
	}
	errTok := tok
	for {
		tok, err = l.nextAndTransition()
		if err != nil {
			return nil, err
		}
		if !tok.Invalid {
			break
		}
		errTok.Lexeme = append(errTok.Lexeme, tok.Lexeme...)
		errTok.ByteLen += tok.ByteLen
	}
	l.tokBuf = append(l.tokBuf, tok)

	return errTok, nil
}

func (l *Lexer) nextAndTransition() (*Token, error) {
	tok := l.next()
	if tok.EOF || tok.Invalid {
		return tok, nil
	}
	if l.passiveModeTran {
		return tok, nil
	}
	if l.spec.Pop(tok.KindID) {
		err := l.PopMode()
		if err != nil {
			return nil, err
		}
	}
	if mode, ok := l.spec.Push(tok.KindID); ok {
		l.PushMode(mode)
	}
	// The checking length of the mode stack must be at after pop and push operations because those operations can be performed
	// at the same time. When the mode stack has just one element and popped it, the mode stack will be temporarily emptied.
	// However, since a push operation may be performed immediately after it, the lexer allows the stack to be temporarily empty.
	if len(l.modeStack) == 0 {
		return nil, fmt.Errorf("a mode stack must have at least one element")
	}
	return tok, nil
}

// next finds the longest match at the current position. A match must consume at least one code point.
func (l *Lexer) next() *Token {
	mode := l.Mode()
	state := l.spec.InitialState(mode)
	start := l.state
	var tok *Token
	for {
		state = l.followAnchors(state)
		if kind, ok := l.spec.Accept(state); ok && l.state.srcPtr > start.srcPtr {
			tok = &Token{
				ModeID:  mode,
				KindID:  kind,
				Row:     start.row,
				Col:     start.col,
				BytePos: start.srcPtr,
				Lexeme:  l.lexeme(start),
			}
			l.accept()
		}
		c, size, eof := l.peek()
		if eof {
			break
		}
		next, ok := l.spec.NextState(state, c)
		if !ok {
			break
		}
		l.advance(c, size)
		state = next
	}
	if tok != nil {
		l.revert()
		tok.ByteLen = len(tok.Lexeme)
		return tok
	}

	l.state = start
	c, size, eof := l.peek()
	if eof {
		return &Token{
			ModeID:  mode,
			Row:     start.row,
			Col:     start.col,
			BytePos: start.srcPtr,
			EOF:     true,
		}
	}
	l.advance(c, size)
	tracer().Debugf("invalid code point %U at %v:%v", c, start.row, start.col)
	return &Token{
		ModeID:  mode,
		Row:     start.row,
		Col:     start.col,
		BytePos: start.srcPtr,
		ByteLen: size,
		Lexeme:  l.lexeme(start),
		Invalid: true,
	}
}

// followAnchors moves the state along the anchors holding at the current position until no anchor moves it.
func (l *Lexer) followAnchors(state StateID) StateID {
	p := l.state.srcPtr
	var holds []spec.AnchorKind
	if p == 0 {
		holds = append(holds, spec.AnchorStartOfInput, spec.AnchorStartOfLine)
	} else if l.src[p-1] == '\n' {
		holds = append(holds, spec.AnchorStartOfLine)
	}
	if p == len(l.src) {
		holds = append(holds, spec.AnchorEndOfInput, spec.AnchorEndOfLine)
	} else if l.src[p] == '\n' {
		holds = append(holds, spec.AnchorEndOfLine)
	}
	for moved := true; moved; {
		moved = false
		for _, a := range holds {
			if next, ok := l.spec.AnchorState(state, a); ok {
				state = next
				moved = true
			}
		}
	}
	return state
}

func (l *Lexer) lexeme(start lexerState) []byte {
	return append([]byte{}, l.src[start.srcPtr:l.state.srcPtr]...)
}

// Mode returns the current lex mode.
func (l *Lexer) Mode() ModeID {
	return l.modeStack[len(l.modeStack)-1]
}

// PushMode adds a lex mode onto the mode stack.
func (l *Lexer) PushMode(mode ModeID) {
	l.modeStack = append(l.modeStack, mode)
}

// PopMode removes a lex mode from the top of the mode stack.
func (l *Lexer) PopMode() error {
	sLen := len(l.modeStack)
	if sLen == 0 {
		return fmt.Errorf("cannot pop a lex mode from a lex mode stack any more")
	}
	l.modeStack = l.modeStack[:sLen-1]
	return nil
}

// peek decodes the code point at the current position. A byte not forming UTF-8 reads as U+FFFD.
func (l *Lexer) peek() (rune, int, bool) {
	if l.state.srcPtr >= len(l.src) {
		return 0, 0, true
	}
	c, size := utf8.DecodeRune(l.src[l.state.srcPtr:])
	return c, size, false
}

// advance moves the position over c. The driver treats LF as the end of lines.
func (l *Lexer) advance(c rune, size int) {
	l.state.srcPtr += size
	if c == '\n' {
		l.state.row++
		l.state.col = 0
	} else {
		l.state.col++
	}
}

// accept saves the current state.
func (l *Lexer) accept() {
	l.lastAcceptedState = l.state
}

// revert reverts the lexer state to the last accepted state.
//
// We must not call this function consecutively.
func (l *Lexer) revert() {
	l.state = l.lastAcceptedState
}
