package grammar

import (
	"fmt"
	"math"
	"sort"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeAccept = ActionType("accept")
	ActionTypeError  = ActionType("error")
)

// Cell values of a parsing table. A positive value is the next state of a shift or a goto, and a value
// less than ActionAccept reduces the production `-1 - value`.
const (
	ActionError  = 0
	ActionAccept = -1
)

func newShiftAction(state int) int {
	return state
}

func newReduceAction(prod int) int {
	return -1 - prod
}

// DescribeAction decodes a cell. The returned number is the next state of a shift (or a goto) and the
// production number of a reduction.
func DescribeAction(cell int) (ActionType, int) {
	switch {
	case cell == ActionError:
		return ActionTypeError, 0
	case cell == ActionAccept:
		return ActionTypeAccept, productionNumStart
	case cell > 0:
		return ActionTypeShift, cell
	default:
		return ActionTypeReduce, -1 - cell
	}
}

// Item is an LR(0) item; Position is the position of the dot.
type Item struct {
	Production int
	Position   int
}

func (i Item) String() string {
	return fmt.Sprintf("(%v, %v)", i.Production, i.Position)
}

// Conflict is a cell for which more than one action exists. A shift is represented by the item before the
// dot moves over the symbol, and a reduction by the completed item. Adopted is the cell value the table
// holds anyway: shift takes precedence over reduce, and a lower production over a higher one.
type Conflict struct {
	State   int
	Symbol  int
	Items   []Item
	Adopted int
}

func (c *Conflict) String() string {
	return fmt.Sprintf("state %v, symbol %v: %v", c.State, c.Symbol, c.Items)
}

type ParsingTable struct {
	// Action holds StateCount rows of Width cells; see Lookup.
	Action     []int
	StateCount int
	Width      int
	MinSymbol  int

	EOF   int
	Start int

	ProductionLengths []int
	ProductionLHS     []int

	// Kernels holds the kernel items of each state.
	Kernels [][]Item

	Conflicts []*Conflict
}

// Lookup returns the cell for state and sym. A symbol out of the table range yields ActionError.
func (t *ParsingTable) Lookup(state, sym int) int {
	col := sym - t.MinSymbol
	if state < 0 || state >= t.StateCount || col < 0 || col >= t.Width {
		return ActionError
	}
	return t.Action[state*t.Width+col]
}

func (t *ParsingTable) writeAction(state, sym, act int) {
	t.Action[state*t.Width+(sym-t.MinSymbol)] = act
}

type conflictResolution struct {
	dominant Item
	yielding Item
}

// actionGroup is a set of items suggesting the same action for a cell.
type actionGroup struct {
	action int
	items  []Item
}

type lrTableBuilder struct {
	gram        *cfg
	automaton   *lalr1Automaton
	resolutions []*conflictResolution

	conflicts []*Conflict
}

func (b *lrTableBuilder) build() (*ParsingTable, error) {
	g := b.gram
	a := b.automaton

	stateCount := len(a.states)
	width := g.width()
	if width > 0 && stateCount > math.MaxInt/width {
		return nil, fmt.Errorf("%w: %v states × %v symbols", ErrOverflow, stateCount, width)
	}

	tab := &ParsingTable{
		Action:            make([]int, stateCount*width),
		StateCount:        stateCount,
		Width:             width,
		MinSymbol:         g.minSym,
		EOF:               g.eof,
		Start:             g.start,
		ProductionLengths: make([]int, len(g.prods.prods)),
		ProductionLHS:     make([]int, len(g.prods.prods)),
		Kernels:           make([][]Item, stateCount),
	}
	for _, prod := range g.prods.prods {
		tab.ProductionLengths[prod.num] = prod.rhsLen
		tab.ProductionLHS[prod.num] = prod.lhs
	}

	for _, state := range a.states {
		kernel := make([]Item, len(state.kernel))
		for i, item := range state.kernel {
			kernel[i] = Item{
				Production: item.prod,
				Position:   item.dot,
			}
		}
		tab.Kernels[state.num] = kernel

		cells := map[int][]*actionGroup{}
		var syms []int
		add := func(sym, act int, items ...Item) {
			groups, ok := cells[sym]
			if !ok {
				syms = append(syms, sym)
			}
			for _, grp := range groups {
				if grp.action == act {
					grp.items = append(grp.items, items...)
					return
				}
			}
			cells[sym] = append(groups, &actionGroup{
				action: act,
				items:  items,
			})
		}

		for _, tNum := range state.outbound {
			t := a.trans[tNum]
			if g.isNonTerminal(t.sym) {
				tab.writeAction(state.num, t.sym, newShiftAction(t.to))
				continue
			}
			var items []Item
			for _, item := range a.states[t.to].kernel {
				items = append(items, Item{
					Production: item.prod,
					Position:   item.dot - 1,
				})
			}
			add(t.sym, newShiftAction(t.to), items...)
		}

		reducible := append(append([]int{}, state.reducible...), state.emptyProds...)
		for _, prodNum := range reducible {
			prod := g.prods.prods[prodNum]
			item := Item{
				Production: prod.num,
				Position:   prod.rhsLen,
			}

			if prod.num == productionNumStart {
				add(g.eof, ActionAccept, item)
				continue
			}

			la, ok := a.lookAhead(state.num, prod.num)
			if !ok {
				return nil, fmt.Errorf("%w: no lookahead for production %v in state %v", ErrInternal, prod.num, state.num)
			}
			for i, ok := la.NextSet(0); ok; i, ok = la.NextSet(i + 1) {
				add(g.terminals[i], newReduceAction(prod.num), item)
			}
		}

		sort.Ints(syms)
		for _, sym := range syms {
			groups := cells[sym]
			if len(groups) == 1 {
				tab.writeAction(state.num, sym, groups[0].action)
				continue
			}
			tab.writeAction(state.num, sym, b.resolve(state.num, sym, groups))
		}
	}

	tab.Conflicts = b.conflicts

	return tab, nil
}

// resolve decides the action of a cell having several candidates. With exactly two groups of items, the
// directives whose dominant item is in one group and yielding item is in the other are applicable. When all
// the applicable directives agree, their dominant group wins. Otherwise, the conflict is recorded with every
// item involved.
func (b *lrTableBuilder) resolve(state, sym int, groups []*actionGroup) int {
	if len(groups) == 2 {
		winner := -1
		agreed := true
		for _, r := range b.resolutions {
			d := findGroup(groups, r.dominant)
			y := findGroup(groups, r.yielding)
			if d < 0 || y < 0 || d == y {
				continue
			}
			if winner >= 0 && winner != d {
				agreed = false
				break
			}
			winner = d
		}
		if winner >= 0 && agreed {
			tracer().Debugf("conflict resolved: state %v, symbol %v, action %v", state, sym, groups[winner].action)
			return groups[winner].action
		}
	}

	adopted := groups[0].action
	var items []Item
	for _, grp := range groups {
		items = append(items, grp.items...)
		if preferAction(grp.action, adopted) {
			adopted = grp.action
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Production != items[j].Production {
			return items[i].Production < items[j].Production
		}
		return items[i].Position < items[j].Position
	})

	c := &Conflict{
		State:   state,
		Symbol:  sym,
		Items:   items,
		Adopted: adopted,
	}
	tracer().Debugf("unresolved conflict: %v", c)
	b.conflicts = append(b.conflicts, c)

	return adopted
}

func findGroup(groups []*actionGroup, item Item) int {
	for i, grp := range groups {
		for _, it := range grp.items {
			if it == item {
				return i
			}
		}
	}
	return -1
}

// preferAction reports whether a takes precedence over b when a conflict stays unresolved.
func preferAction(a, b int) bool {
	if b > 0 {
		return false
	}
	if a > 0 {
		return true
	}
	// Both are reductions; -1 - prod is greater for a lower production.
	return a > b
}
