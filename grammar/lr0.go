package grammar

import (
	"fmt"
	"sort"
)

type lr0Automaton struct {
	states []*lrState
	trans  []*transition

	id2State map[kernelID]int
}

// goTo returns the transition leaving state on sym.
func (a *lr0Automaton) goTo(state int, sym int) (*transition, bool) {
	out := a.states[state].outbound
	i := sort.Search(len(out), func(i int) bool {
		return a.trans[out[i]].sym >= sym
	})
	if i < len(out) && a.trans[out[i]].sym == sym {
		return a.trans[out[i]], true
	}
	return nil, false
}

// tentativeState is a destination discovered while expanding a mature state. It becomes mature only when
// no mature state has the same kernel.
type tentativeState struct {
	id      kernelID
	kernel  []lrItem
	inbound []int
}

type lr0Builder struct {
	gram      *cfg
	automaton *lr0Automaton

	// stamps[A - ntMin] == stamp means the productions of A are already in the closure being computed.
	stamps []int
	stamp  int

	merged int
}

func genLR0Automaton(g *cfg) (*lr0Automaton, error) {
	b := &lr0Builder{
		gram: g,
		automaton: &lr0Automaton{
			id2State: map[kernelID]int{},
		},
		stamps: make([]int, g.nonTerminalCount()),
	}

	{
		kernel := []lrItem{
			{
				prod: productionNumStart,
				dot:  0,
			},
		}
		b.promote(&tentativeState{
			id:     genKernelID(kernel),
			kernel: kernel,
		})
	}

	// States are appended while expanding, so this loop also visits every state promoted on the way.
	a := b.automaton
	for i := 0; i < len(a.states); i++ {
		b.expand(a.states[i])
	}

	if len(a.states[stateNumInitial].inbound) > 0 {
		return nil, fmt.Errorf("%w: the initial state has inbound transitions", ErrInternal)
	}

	tracer().Debugf("LR(0) automaton: %v states, %v transitions, %v merged", len(a.states), len(a.trans), b.merged)

	return a, nil
}

func (b *lr0Builder) closure(kernel []lrItem) []lrItem {
	b.stamp++

	items := make([]lrItem, 0, len(kernel)*2)
	items = append(items, kernel...)
	for i := 0; i < len(items); i++ {
		sym, ok := b.gram.dottedSymbol(items[i])
		if !ok || !b.gram.isNonTerminal(sym) {
			continue
		}
		if b.stamps[sym-b.gram.ntMin] == b.stamp {
			continue
		}
		b.stamps[sym-b.gram.ntMin] = b.stamp

		prods, _ := b.gram.prods.findByLHS(sym)
		for _, prod := range prods {
			items = append(items, lrItem{
				prod: prod.num,
				dot:  0,
			})
		}
	}

	return items
}

func (b *lr0Builder) expand(state *lrState) {
	a := b.automaton

	kernels := map[int][]lrItem{}
	var syms []int
	for _, item := range b.closure(state.kernel) {
		sym, ok := b.gram.dottedSymbol(item)
		if !ok {
			if item.dot == 0 {
				state.emptyProds = append(state.emptyProds, item.prod)
			} else {
				state.reducible = append(state.reducible, item.prod)
			}
			continue
		}
		if _, ok := kernels[sym]; !ok {
			syms = append(syms, sym)
		}
		kernels[sym] = append(kernels[sym], lrItem{
			prod: item.prod,
			dot:  item.dot + 1,
		})
	}

	sort.Ints(syms)
	for _, sym := range syms {
		kernel := kernels[sym]
		sort.Slice(kernel, func(i, j int) bool {
			return lessItem(kernel[i], kernel[j])
		})

		t := &transition{
			num:  len(a.trans),
			from: state.num,
			sym:  sym,
		}
		a.trans = append(a.trans, t)
		state.outbound = append(state.outbound, t.num)

		b.promote(&tentativeState{
			id:      genKernelID(kernel),
			kernel:  kernel,
			inbound: []int{t.num},
		})
	}
}

// promote turns ts into a mature state. When a mature state already has the same kernel, every inbound
// transition of ts is redirected to that state and ts is discarded.
func (b *lr0Builder) promote(ts *tentativeState) *lrState {
	a := b.automaton

	if num, ok := a.id2State[ts.id]; ok {
		canonical := a.states[num]
		for _, tNum := range ts.inbound {
			a.trans[tNum].to = canonical.num
			canonical.inbound = append(canonical.inbound, tNum)
		}
		b.merged++
		return canonical
	}

	state := &lrState{
		num:     len(a.states),
		id:      ts.id,
		kernel:  ts.kernel,
		inbound: ts.inbound,
	}
	for _, tNum := range ts.inbound {
		a.trans[tNum].to = state.num
	}
	a.states = append(a.states, state)
	a.id2State[state.id] = state.num

	return state
}
