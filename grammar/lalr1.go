package grammar

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// reduction identifies a reducible production in a state.
type reduction struct {
	state int
	prod  int
}

// lalr1Automaton annotates an LR(0) automaton with LALR(1) lookaheads computed by the method of DeRemer and
// Pennello:
//
//	Read(p, A)    = DR(p, A) ∪ ⋃{ Read(r, C) | (p, A) reads (r, C) }
//	Follow(p, A)  = Read(p, A) ∪ ⋃{ Follow(p', B) | (p, A) includes (p', B) }
//	LA(q, A → ω)  = ⋃{ Follow(p, A) | (q, A → ω) lookback (p, A) }
type lalr1Automaton struct {
	*lr0Automaton

	// ntTrans lists the non-terminal transitions, and ntIndex maps a transition number to its position in
	// ntTrans or -1 for terminal transitions.
	ntTrans []int
	ntIndex []int

	follow     []*bitset.BitSet
	lookAheads map[reduction]*bitset.BitSet
}

func genLALR1Automaton(g *cfg, lr0 *lr0Automaton) (*lalr1Automaton, error) {
	a := &lalr1Automaton{
		lr0Automaton: lr0,
		ntIndex:      make([]int, len(lr0.trans)),
		lookAheads:   map[reduction]*bitset.BitSet{},
	}
	for _, t := range lr0.trans {
		if g.isNonTerminal(t.sym) {
			a.ntIndex[t.num] = len(a.ntTrans)
			a.ntTrans = append(a.ntTrans, t.num)
		} else {
			a.ntIndex[t.num] = -1
		}
	}

	termCount := uint(len(g.terminals))

	// Directly-reads: DR(p, A) = { t | p --A--> r --t--> }. The transition on the goal symbol from the
	// initial state additionally reads EOF.
	read := make([]*bitset.BitSet, len(a.ntTrans))
	for i, tNum := range a.ntTrans {
		t := lr0.trans[tNum]
		set := bitset.New(termCount)
		for _, oNum := range lr0.states[t.to].outbound {
			o := lr0.trans[oNum]
			if g.isTerminal(o.sym) {
				set.Set(uint(g.termIndex[o.sym]))
			}
		}
		if t.from == stateNumInitial && t.sym == g.goal {
			set.Set(uint(g.termIndex[g.eof]))
		}
		read[i] = set
	}

	// (p, A) reads (r, C) iff p --A--> r --C--> and C is nullable.
	{
		reads := make([][]int, len(a.ntTrans))
		for i, tNum := range a.ntTrans {
			t := lr0.trans[tNum]
			for _, oNum := range lr0.states[t.to].outbound {
				if g.isNullable(lr0.trans[oNum].sym) {
					reads[i] = append(reads[i], a.ntIndex[oNum])
				}
			}
		}
		if sccs := digraph(reads, read); len(sccs) > 0 {
			return nil, fmt.Errorf("%w: the reads relation has a cycle: %v", ErrNotLRGrammar, a.describeTransitions(sccs[0]))
		}
		for i, tNum := range a.ntTrans {
			lr0.trans[tNum].readSet = read[i]
		}
	}

	// A derivation cycle makes an includes cycle through transitions leaving one state, and the grammar
	// derives some sentences in infinitely many ways.
	if cyc := findDerivationCycle(g); len(cyc) > 0 {
		return nil, fmt.Errorf("%w: derivation cycle: %v", ErrAmbiguousGrammar, cyc)
	}

	// (p, A) includes (p', B) iff B → βAγ, γ is nullable, and p' --β--> p.
	// (q, A → ω) lookback (p, A) iff p --ω--> q.
	//
	// Both relations come from walking ω from p for every non-terminal transition (p, A).
	includes := make([][]int, len(a.ntTrans))
	lookback := map[reduction][]int{}
	var reductions []reduction
	for i, tNum := range a.ntTrans {
		t := lr0.trans[tNum]
		prods, _ := g.prods.findByLHS(t.sym)
		for _, prod := range prods {
			suffixes := g.genNullableSuffixes(prod)
			q := t.from
			for j, sym := range prod.rhs {
				u, ok := lr0.goTo(q, sym)
				if !ok {
					return nil, fmt.Errorf("%w: state %v has no transition on %v; production: %v", ErrInternal, q, sym, prod)
				}
				if g.isNonTerminal(sym) && suffixes[j+1] {
					includes[a.ntIndex[u.num]] = append(includes[a.ntIndex[u.num]], i)
				}
				q = u.to
			}

			r := reduction{
				state: q,
				prod:  prod.num,
			}
			if _, ok := lookback[r]; !ok {
				reductions = append(reductions, r)
			}
			lookback[r] = append(lookback[r], i)
		}
	}

	a.follow = make([]*bitset.BitSet, len(a.ntTrans))
	for i, set := range read {
		a.follow[i] = set.Clone()
	}
	// Cycles of the includes relation are legitimate; a right-recursive production like `L → x L` makes
	// one. Their members just share the follow set.
	if sccs := digraph(includes, a.follow); len(sccs) > 0 {
		tracer().Debugf("includes relation: %v cycles", len(sccs))
	}

	for _, r := range reductions {
		set := bitset.New(termCount)
		for _, i := range lookback[r] {
			set.InPlaceUnion(a.follow[i])
		}
		a.lookAheads[r] = set
	}

	tracer().Debugf("LALR(1) lookaheads: %v non-terminal transitions, %v reductions", len(a.ntTrans), len(reductions))

	return a, nil
}

// lookAhead returns the lookahead set of prod reduced in state. The set holds positions in cfg.terminals.
func (a *lalr1Automaton) lookAhead(state, prod int) (*bitset.BitSet, bool) {
	set, ok := a.lookAheads[reduction{
		state: state,
		prod:  prod,
	}]
	return set, ok
}

func (a *lalr1Automaton) describeTransitions(ntIdxs []int) string {
	var b strings.Builder
	for i, idx := range ntIdxs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", a.trans[a.ntTrans[idx]])
	}
	return b.String()
}
