package grammar

import "fmt"

// Generator generates LALR(1) parsing tables. A generator is not safe for concurrent use.
type Generator struct {
	resolutions []*conflictResolution

	automaton *lalr1Automaton
}

func NewGenerator() *Generator {
	return &Generator{}
}

// AddConflictResolution registers a directive settling conflicts between two items: wherever the item
// (dominantProd, dominantPos) competes with (yieldingProd, yieldingPos) for a cell, the action of the former
// wins. A shift is represented by the item before the dot moves, and a reduction by the completed item.
func (g *Generator) AddConflictResolution(dominantProd, dominantPos, yieldingProd, yieldingPos int) {
	g.resolutions = append(g.resolutions, &conflictResolution{
		dominant: Item{
			Production: dominantProd,
			Position:   dominantPos,
		},
		yielding: Item{
			Production: yieldingProd,
			Position:   yieldingPos,
		},
	})
}

// Generate builds the parsing table of gram. When some conflicts remain unresolved, Generate returns both
// the table and a *ConflictError. Any other error means no table was produced.
//
// The automaton of a previous call is discarded; the registered directives are kept.
func (g *Generator) Generate(gram *Grammar) (*ParsingTable, error) {
	g.automaton = nil

	cfg, err := newCFG(gram)
	if err != nil {
		return nil, err
	}

	lr0, err := genLR0Automaton(cfg)
	if err != nil {
		return nil, err
	}

	lalr1, err := genLALR1Automaton(cfg, lr0)
	if err != nil {
		return nil, err
	}
	g.automaton = lalr1

	b := &lrTableBuilder{
		gram:        cfg,
		automaton:   lalr1,
		resolutions: g.resolutions,
	}
	tab, err := b.build()
	if err != nil {
		return nil, err
	}

	tracer().Infof("parsing table: %v states, %v columns, %v conflicts", tab.StateCount, tab.Width, len(tab.Conflicts))

	if len(tab.Conflicts) > 0 {
		return tab, &ConflictError{
			Conflicts: tab.Conflicts,
		}
	}
	return tab, nil
}

// Cleanup releases the automaton and the directives.
func (g *Generator) Cleanup() {
	g.automaton = nil
	g.resolutions = nil
}

// TransitionCount returns the number of transitions in the automaton generated last, counted per state as
// outbound and inbound transitions and as a whole. The three numbers are equal for a sound automaton.
func (g *Generator) TransitionCount() (int, int, int, error) {
	if g.automaton == nil {
		return 0, 0, 0, fmt.Errorf("no automaton has been generated")
	}
	out := 0
	in := 0
	for _, s := range g.automaton.states {
		out += len(s.outbound)
		in += len(s.inbound)
	}
	return out, in, len(g.automaton.trans), nil
}
