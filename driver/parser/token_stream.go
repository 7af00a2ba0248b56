package parser

import (
	"io"

	"github.com/nihei9/lrgen/driver/lexer"
	spec "github.com/nihei9/lrgen/spec/grammar"
)

// terminalNil is the terminal of an invalid token. No column of the parsing table corresponds to it.
const terminalNil = -1

type vToken struct {
	*lexer.Token
	terminal int
}

func (t *vToken) TerminalID() int {
	return t.terminal
}

func (t *vToken) Lexeme() []byte {
	return t.Token.Lexeme
}

func (t *vToken) EOF() bool {
	return t.Token.EOF
}

func (t *vToken) Invalid() bool {
	return t.Token.Invalid
}

func (t *vToken) BytePosition() (int, int) {
	return t.BytePos, t.ByteLen
}

func (t *vToken) Position() (int, int) {
	return t.Row, t.Col
}

type tokenStream struct {
	lex            *lexer.Lexer
	kindToTerminal []int
	eof            int
}

// NewTokenStream returns a token stream reading src according to the lexical specification of g.
// opts are passed to the lexer.
func NewTokenStream(g *spec.CompiledGrammar, src io.Reader, opts ...lexer.LexerOption) (TokenStream, error) {
	lex, err := lexer.NewLexer(lexer.NewLexSpec(g.Lexical), src, opts...)
	if err != nil {
		return nil, err
	}

	return &tokenStream{
		lex:            lex,
		kindToTerminal: g.Syntactic.KindToTerminal,
		eof:            g.Syntactic.EOFSymbol,
	}, nil
}

func (s *tokenStream) Next() (VToken, error) {
	tok, err := s.lex.Next()
	if err != nil {
		return nil, err
	}
	term := terminalNil
	switch {
	case tok.EOF:
		term = s.eof
	case !tok.Invalid:
		term = s.kindToTerminal[tok.KindID]
	}
	return &vToken{
		Token:    tok,
		terminal: term,
	}, nil
}
