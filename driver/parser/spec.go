package parser

import spec "github.com/nihei9/lrgen/spec/grammar"

type grammarImpl struct {
	g *spec.CompiledGrammar
}

func NewGrammar(g *spec.CompiledGrammar) *grammarImpl {
	return &grammarImpl{
		g: g,
	}
}

func (g *grammarImpl) InitialState() int {
	return g.g.Syntactic.InitialState
}

func (g *grammarImpl) StartProduction() int {
	return g.g.Syntactic.StartProduction
}

func (g *grammarImpl) Action(state int, terminal int) int {
	return g.g.Syntactic.Lookup(state, terminal)
}

// GoTo takes an LHS as a symbol number. Nonterminals follow terminals in the columns of the table.
func (g *grammarImpl) GoTo(state int, lhs int) int {
	return g.g.Syntactic.Lookup(state, lhs)
}

func (g *grammarImpl) AlternativeSymbolCount(prod int) int {
	return g.g.Syntactic.AlternativeSymbolCounts[prod]
}

func (g *grammarImpl) ProductionLabel(prod int) string {
	return g.g.Syntactic.ProductionLabels[prod]
}

func (g *grammarImpl) TerminalCount() int {
	return g.g.Syntactic.TerminalCount
}

func (g *grammarImpl) SkipTerminal(terminal int) bool {
	return g.g.Syntactic.TerminalSkip[terminal] == 1
}

func (g *grammarImpl) NonTerminal(nonTerminal int) string {
	return g.g.Syntactic.NonTerminals[nonTerminal-g.g.Syntactic.TerminalCount]
}

func (g *grammarImpl) LHS(prod int) int {
	return g.g.Syntactic.LHSSymbols[prod]
}

func (g *grammarImpl) EOF() int {
	return g.g.Syntactic.EOFSymbol
}

func (g *grammarImpl) Terminal(terminal int) string {
	return g.g.Syntactic.Terminals[terminal]
}
