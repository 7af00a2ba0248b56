package grammar

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestGenLALR1Automaton(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.grammar")
	defer teardown()

	// This grammar is LALR(1) but not SLR(1).
	tg := newTestGrammar(t,
		"S: L eq R",
		"S: R",
		"L: ref R",
		"L: id",
		"R: L",
	)
	g, err := newCFG(tg.gram)
	if err != nil {
		t.Fatal(err)
	}
	lr0, err := genLR0Automaton(g)
	if err != nil {
		t.Fatal(err)
	}
	automaton, err := genLALR1Automaton(g, lr0)
	if err != nil {
		t.Fatal(err)
	}

	if len(automaton.states) != 10 {
		t.Fatalf("state count is mismatched; want: %v, got: %v", 10, len(automaton.states))
	}

	tests := []struct {
		state      int
		prod       int
		lookAheads []string
	}{
		// R → L・ in the state also holding S → L・eq R
		{state: 4, prod: 5, lookAheads: []string{"<eof>"}},
		// R → L・ reached through `ref` and `eq`
		{state: 6, prod: 5, lookAheads: []string{"<eof>", "eq"}},
		{state: 2, prod: 4, lookAheads: []string{"<eof>", "eq"}},
		{state: 7, prod: 3, lookAheads: []string{"<eof>", "eq"}},
		{state: 5, prod: 2, lookAheads: []string{"<eof>"}},
		{state: 9, prod: 1, lookAheads: []string{"<eof>"}},
	}
	for _, tt := range tests {
		la, ok := automaton.lookAhead(tt.state, tt.prod)
		if !ok {
			t.Fatalf("lookahead set was not found; state: %v, production: %v", tt.state, tt.prod)
		}
		if la.Count() != uint(len(tt.lookAheads)) {
			t.Fatalf("lookahead set is mismatched; state: %v, production: %v, want: %v, got: %v", tt.state, tt.prod, tt.lookAheads, la)
		}
		for _, name := range tt.lookAheads {
			if !la.Test(uint(g.termIndex[tg.sym(t, name)])) {
				t.Fatalf("lookahead set lacks %v; state: %v, production: %v", name, tt.state, tt.prod)
			}
		}
	}
}

func TestGenLALR1Automaton_Nullable(t *testing.T) {
	tg := newTestGrammar(t,
		"S: A B c",
		"A: a",
		"A:",
		"B: b",
		"B:",
	)
	g, err := newCFG(tg.gram)
	if err != nil {
		t.Fatal(err)
	}
	lr0, err := genLR0Automaton(g)
	if err != nil {
		t.Fatal(err)
	}
	automaton, err := genLALR1Automaton(g, lr0)
	if err != nil {
		t.Fatal(err)
	}

	// A → ε in the initial state is followed by whatever B and then c can start with.
	la, ok := automaton.lookAhead(stateNumInitial, 3)
	if !ok {
		t.Fatalf("lookahead set of A → ε was not found")
	}
	for _, name := range []string{"b", "c"} {
		if !la.Test(uint(g.termIndex[tg.sym(t, name)])) {
			t.Fatalf("lookahead set of A → ε lacks %v: %v", name, la)
		}
	}
	if la.Count() != 2 {
		t.Fatalf("lookahead set of A → ε has extra symbols: %v", la)
	}
}
