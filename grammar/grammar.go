package grammar

import (
	"fmt"
	"math"
	"sort"
)

// Grammar is the input of Generator.Generate.
//
// Productions holds every production as `lhs, rhs..., EOP`, and the whole sequence is terminated by EOG.
// The first production must be `Start → S` and Start must appear nowhere else. The set of left-hand sides
// forms the non-terminal range and must be contiguous; every other symbol, EOF included, is a terminal.
//
//	E → E + T | T         Productions: S', E, EOP,
//	T → id                             E, E, +, T, EOP,
//	                                   E, T, EOP,
//	                                   T, id, EOP,
//	                                   EOG
type Grammar struct {
	Productions []int
	EOF         int
	EOP         int
	EOG         int
	Start       int
}

// cfg is a validated grammar the builders work on.
type cfg struct {
	prods *productionSet

	eof   int
	start int
	goal  int

	minSym int
	maxSym int
	ntMin  int
	ntMax  int

	// terminals lists the terminal symbols in ascending order, and termIndex maps each of them to its
	// position in terminals. Lookahead sets are bitsets over these positions.
	terminals []int
	termIndex map[int]int

	// nullable is indexed by `non-terminal - ntMin`.
	nullable []bool
}

func invalidGrammar(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %v", ErrInvalidGrammar, fmt.Sprintf(format, a...))
}

func newCFG(gram *Grammar) (*cfg, error) {
	if gram == nil {
		return nil, invalidGrammar("grammar must be non-nil")
	}
	if gram.EOP == gram.EOG {
		return nil, invalidGrammar("EOP and EOG must be different; both are %v", gram.EOP)
	}

	prods := newProductionSet()
	var dups []*production
	{
		src := gram.Productions
		terminated := false
		i := 0
		for i < len(src) {
			if src[i] == gram.EOG {
				terminated = true
				i++
				break
			}
			lhs := src[i]
			if lhs == gram.EOP {
				return nil, invalidGrammar("a production needs a LHS; offset: %v", i)
			}
			i++
			rhs := []int{}
			for {
				if i >= len(src) || src[i] == gram.EOG {
					return nil, invalidGrammar("a production of %v is not terminated by EOP", lhs)
				}
				sym := src[i]
				i++
				if sym == gram.EOP {
					break
				}
				rhs = append(rhs, sym)
			}
			prod := newProduction(lhs, rhs)
			if _, ok := prods.append(prod); !ok {
				dups = append(dups, prod)
			}
		}
		if !terminated {
			return nil, invalidGrammar("productions are not terminated by EOG")
		}
		if i != len(src) {
			return nil, invalidGrammar("EOG must be the last element; offset: %v", i-1)
		}
	}

	all := prods.getAllProductions()
	if len(all) == 0 {
		return nil, invalidGrammar("a grammar needs at least one production")
	}
	startProd := all[productionNumStart]
	if startProd.lhs != gram.Start || startProd.rhsLen != 1 {
		return nil, invalidGrammar("the first production must be `%v → S`: %v", gram.Start, startProd)
	}

	g := &cfg{
		prods:     prods,
		eof:       gram.EOF,
		start:     gram.Start,
		goal:      startProd.rhs[0],
		termIndex: map[int]int{},
	}

	g.ntMin = math.MaxInt
	g.ntMax = math.MinInt
	for lhs := range prods.lhs2Prods {
		if lhs < g.ntMin {
			g.ntMin = lhs
		}
		if lhs > g.ntMax {
			g.ntMax = lhs
		}
	}
	if span := uint64(g.ntMax) - uint64(g.ntMin); span+1 != uint64(len(prods.lhs2Prods)) {
		return nil, invalidGrammar("non-terminals must be contiguous; range: %v..%v, count: %v", g.ntMin, g.ntMax, len(prods.lhs2Prods))
	}

	if len(prods.lhs2Prods[g.start]) != 1 {
		return nil, invalidGrammar("the start symbol %v must be the LHS of the first production only", g.start)
	}
	if g.goal == g.start || !g.isNonTerminal(g.goal) {
		return nil, invalidGrammar("the first production must derive a non-terminal other than the start symbol; got %v", g.goal)
	}
	if g.isNonTerminal(g.eof) {
		return nil, invalidGrammar("EOF %v must not be a non-terminal", g.eof)
	}

	g.minSym = g.eof
	g.maxSym = g.eof
	termSet := map[int]struct{}{
		g.eof: {},
	}
	for _, prod := range all {
		syms := append([]int{prod.lhs}, prod.rhs...)
		for i, sym := range syms {
			if i > 0 && prod.num != productionNumStart && sym == g.start {
				return nil, invalidGrammar("the start symbol must not appear in a RHS: %v", prod)
			}
			if i > 0 && sym == g.eof {
				return nil, invalidGrammar("EOF must not appear in a RHS: %v", prod)
			}
			if sym < g.minSym {
				g.minSym = sym
			}
			if sym > g.maxSym {
				g.maxSym = sym
			}
			if !g.isNonTerminal(sym) {
				termSet[sym] = struct{}{}
			}
		}
	}
	if span := uint64(g.maxSym) - uint64(g.minSym); span >= math.MaxInt {
		return nil, fmt.Errorf("%w: symbol range %v..%v is too wide", ErrOverflow, g.minSym, g.maxSym)
	}

	for sym := range termSet {
		g.terminals = append(g.terminals, sym)
	}
	sort.Ints(g.terminals)
	for i, sym := range g.terminals {
		g.termIndex[sym] = i
	}

	if len(dups) > 0 {
		return nil, fmt.Errorf("%w: duplicate production: %v → %v", ErrAmbiguousGrammar, dups[0].lhs, dups[0].rhs)
	}

	g.nullable = genNullable(g)

	return g, nil
}

func (g *cfg) isNonTerminal(sym int) bool {
	return sym >= g.ntMin && sym <= g.ntMax
}

func (g *cfg) isTerminal(sym int) bool {
	return !g.isNonTerminal(sym)
}

func (g *cfg) nonTerminalCount() int {
	return g.ntMax - g.ntMin + 1
}

func (g *cfg) isNullable(sym int) bool {
	if !g.isNonTerminal(sym) {
		return false
	}
	return g.nullable[sym-g.ntMin]
}

// width is the number of columns of a parsing table; one column per symbol in minSym..maxSym.
func (g *cfg) width() int {
	return g.maxSym - g.minSym + 1
}

func (g *cfg) dottedSymbol(item lrItem) (int, bool) {
	prod := g.prods.prods[item.prod]
	if item.dot >= prod.rhsLen {
		return 0, false
	}
	return prod.rhs[item.dot], true
}
