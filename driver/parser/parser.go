package parser

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.driver'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.driver")
}

type Grammar interface {
	// InitialState returns the initial state of a parser.
	InitialState() int

	// StartProduction returns the start production of grammar.
	StartProduction() int

	// Action returns a cell of the parsing table. A positive value is a shift, 0 is an error, -1 is accept,
	// and any other negative value reduces the production `-1 - value`.
	Action(state int, terminal int) int

	// GoTo returns the next state by reducing to the LHS. lhs is a symbol number.
	GoTo(state int, lhs int) int

	// AlternativeSymbolCount returns a symbol count of p production.
	AlternativeSymbolCount(prod int) int

	// ProductionLabel returns the label of a production, or the empty string.
	ProductionLabel(prod int) string

	// TerminalCount returns a terminal symbol count of grammar.
	TerminalCount() int

	// SkipTerminal returns true when a terminal symbol must be skipped on syntax analysis.
	SkipTerminal(terminal int) bool

	// LHS returns the LHS symbol of a production.
	LHS(prod int) int

	// EOF returns the EOF symbol.
	EOF() int

	// NonTerminal retuns a string representaion of a non-terminal symbol.
	NonTerminal(nonTerminal int) string

	// Terminal retuns a string representaion of a terminal symbol.
	Terminal(terminal int) string
}

type VToken interface {
	// TerminalID returns a terminal ID. An EOF token has the EOF symbol, and an invalid token has no valid terminal.
	TerminalID() int

	// Lexeme returns a lexeme.
	Lexeme() []byte

	// EOF returns true when a token represents EOF.
	EOF() bool

	// Invalid returns true when a token is invalid.
	Invalid() bool

	// BytePosition returns (position, length) pair.
	// `position` is a byte position where a token appears and `length` is a length in bytes.
	BytePosition() (int, int)

	// Position returns (row, column) pair.
	Position() (int, int)
}

type TokenStream interface {
	Next() (VToken, error)
}

type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             VToken
	ExpectedTerminals []string
}

type ParserOption func(p *Parser) error

// SemanticAction enables a semantic action set.
func SemanticAction(semAct SemanticActionSet) ParserOption {
	return func(p *Parser) error {
		p.semAct = semAct
		return nil
	}
}

// Parser runs an LR automaton over a token stream. It stops at the first syntax error.
type Parser struct {
	toks       TokenStream
	gram       Grammar
	stateStack *stateStack
	semAct     SemanticActionSet
	synErrs    []*SyntaxError
}

func NewParser(toks TokenStream, gram Grammar, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		toks:       toks,
		gram:       gram,
		stateStack: &stateStack{},
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Parser) Parse() error {
	p.stateStack.push(p.gram.InitialState())
	tok, err := p.nextToken()
	if err != nil {
		return err
	}

	for {
		if tok.Invalid() {
			p.raise(tok, "invalid token")
			return nil
		}

		act := p.lookupAction(tok)
		switch {
		case act > 0: // Shift
			p.stateStack.push(act)

			if p.semAct != nil {
				p.semAct.Shift(tok)
			}

			tok, err = p.nextToken()
			if err != nil {
				return err
			}
		case act == -1: // Accept
			if p.semAct != nil {
				p.semAct.Accept()
			}

			return nil
		case act < -1: // Reduce
			prodNum := -1 - act

			err := p.reduce(prodNum)
			if err != nil {
				return err
			}

			if p.semAct != nil {
				p.semAct.Reduce(prodNum)
			}
		default: // Error
			p.raise(tok, "unexpected token")
			return nil
		}
	}
}

func (p *Parser) raise(tok VToken, msg string) {
	row, col := tok.Position()
	p.synErrs = append(p.synErrs, &SyntaxError{
		Row:               row,
		Col:               col,
		Message:           msg,
		Token:             tok,
		ExpectedTerminals: p.searchLookahead(p.stateStack.top()),
	})
	tracer().Debugf("syntax error at %v:%v: %v", row, col, msg)

	if p.semAct != nil {
		p.semAct.MissError(tok)
	}
}

func (p *Parser) searchLookahead(state int) []string {
	kinds := []string{}
	termCount := p.gram.TerminalCount()
	for term := 0; term < termCount; term++ {
		if p.gram.SkipTerminal(term) {
			continue
		}
		if p.gram.Action(state, term) == 0 {
			continue
		}

		kinds = append(kinds, p.gram.Terminal(term))
	}

	return kinds
}

func (p *Parser) nextToken() (VToken, error) {
	for {
		tok, err := p.toks.Next()
		if err != nil {
			return nil, err
		}

		if !tok.Invalid() && p.gram.SkipTerminal(tok.TerminalID()) {
			continue
		}

		return tok, nil
	}
}

func (p *Parser) lookupAction(tok VToken) int {
	return p.gram.Action(p.stateStack.top(), tok.TerminalID())
}

func (p *Parser) reduce(prodNum int) error {
	lhs := p.gram.LHS(prodNum)
	n := p.gram.AlternativeSymbolCount(prodNum)
	p.stateStack.pop(n)
	nextState := p.gram.GoTo(p.stateStack.top(), lhs)
	if nextState <= 0 {
		return fmt.Errorf("a parsing table has no goto entry; state: %v, symbol: %v", p.stateStack.top(), p.gram.NonTerminal(lhs))
	}
	p.stateStack.push(nextState)
	return nil
}

// SyntaxErrors returns the syntax errors the parser met. The parser stops at the first one.
func (p *Parser) SyntaxErrors() []*SyntaxError {
	return p.synErrs
}

type stateStack struct {
	items []int
}

func (s *stateStack) top() int {
	return s.items[len(s.items)-1]
}

func (s *stateStack) push(state int) {
	s.items = append(s.items, state)
}

func (s *stateStack) pop(n int) {
	s.items = s.items[:len(s.items)-n]
}
