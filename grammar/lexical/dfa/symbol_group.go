package dfa

import (
	"math/bits"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/emirpasic/gods/trees/binaryheap"
	spec "github.com/nihei9/lrgen/spec/grammar"
)

// CodePointRange is a range of code points; both ends are inclusive.
type CodePointRange struct {
	From rune
	To   rune
}

// TransitionGroup is the set of code points moving the node From to the node To.
type TransitionGroup struct {
	ID     int
	From   int
	To     int
	Ranges []CodePointRange
}

// SymbolGroup is a set of code points every node treats the same way. Selectors are the IDs of the transition
// groups containing the code points; a group with no selector stands for the code points no node accepts.
type SymbolGroup struct {
	ID        int
	Ranges    []CodePointRange
	Selectors []int

	members *bitset.BitSet
}

type SymbolGroups struct {
	Groups           []*SymbolGroup
	TransitionGroups []*TransitionGroup

	// spanFrom holds the first code point of each span in ascending order, and spanGroup holds the group of each
	// span.
	spanFrom  []rune
	spanGroup []int

	index map[uint64][]int
}

// GroupOf returns the ID of the symbol group c belongs to, or -1 when c is not a code point.
func (sg *SymbolGroups) GroupOf(c rune) int {
	if c < 0 || c > codePointMax {
		return -1
	}
	i := sort.Search(len(sg.spanFrom), func(i int) bool {
		return sg.spanFrom[i] > c
	})
	return sg.spanGroup[i-1]
}

func (sg *SymbolGroups) Table() *spec.SymbolGroupTable {
	bounds := make([]int, len(sg.spanFrom))
	for i, c := range sg.spanFrom {
		bounds[i] = int(c)
	}
	return &spec.SymbolGroupTable{
		Bounds: bounds,
		Groups: append([]int{}, sg.spanGroup...),
	}
}

type boundary struct {
	at    rune
	group int
	rng   int
	open  bool
}

func compareBoundaries(a, b interface{}) int {
	x := a.(*boundary)
	y := b.(*boundary)
	switch {
	case x.at < y.at:
		return -1
	case x.at > y.at:
		return 1
	case x.open != y.open:
		// A range closes before another one opens at the same code point.
		if !x.open {
			return -1
		}
		return 1
	}
	return x.group - y.group
}

// genSymbolGroups groups the transitions of the nodes by their source and destination, then sweeps the code
// points from U+0000 to U+10FFFF. The transition groups containing a code point determine its symbol group.
// Finally it fills the row of each node.
func genSymbolGroups(nodes []*Node) *SymbolGroups {
	sg := &SymbolGroups{
		index: map[uint64][]int{},
	}
	{
		key2ID := map[[2]int]int{}
		for _, n := range nodes {
			for _, tr := range n.Transitions {
				key := [2]int{n.ID, tr.Dest}
				id, ok := key2ID[key]
				if !ok {
					id = len(sg.TransitionGroups)
					key2ID[key] = id
					sg.TransitionGroups = append(sg.TransitionGroups, &TransitionGroup{
						ID:   id,
						From: n.ID,
						To:   tr.Dest,
					})
				}
				tg := sg.TransitionGroups[id]
				tg.Ranges = append(tg.Ranges, CodePointRange{
					From: tr.From,
					To:   tr.To,
				})
			}
		}
	}

	heap := binaryheap.NewWith(compareBoundaries)
	for _, tg := range sg.TransitionGroups {
		heap.Push(&boundary{
			at:    tg.Ranges[0].From,
			group: tg.ID,
			rng:   0,
			open:  true,
		})
	}

	active := bitset.New(uint(len(sg.TransitionGroups)))
	var cur rune
	for !heap.Empty() {
		v, _ := heap.Peek()
		at := v.(*boundary).at
		if at > cur {
			sg.addSpan(cur, at-1, active)
			cur = at
		}
		for !heap.Empty() {
			v, _ := heap.Peek()
			b := v.(*boundary)
			if b.at != at {
				break
			}
			heap.Pop()

			tg := sg.TransitionGroups[b.group]
			if b.open {
				active.Set(uint(b.group))
				heap.Push(&boundary{
					at:    tg.Ranges[b.rng].To + 1,
					group: b.group,
					rng:   b.rng,
				})
				continue
			}
			active.Clear(uint(b.group))
			if next := b.rng + 1; next < len(tg.Ranges) {
				heap.Push(&boundary{
					at:    tg.Ranges[next].From,
					group: b.group,
					rng:   next,
					open:  true,
				})
			}
		}
	}
	if cur <= codePointMax {
		sg.addSpan(cur, codePointMax, active)
	}

	for _, n := range nodes {
		n.Row = make([]int, len(sg.Groups))
		for i := range n.Row {
			n.Row[i] = -1
		}
	}
	for _, g := range sg.Groups {
		for _, sel := range g.Selectors {
			tg := sg.TransitionGroups[sel]
			nodes[tg.From].Row[g.ID] = tg.To
		}
	}

	return sg
}

func hashMembership(s *bitset.BitSet) uint64 {
	var h uint64
	for _, w := range s.Bytes() {
		h = bits.RotateLeft64(h, 11) ^ w
	}
	return h
}

// addSpan assigns from..to to the symbol group whose membership equals active.
func (sg *SymbolGroups) addSpan(from, to rune, active *bitset.BitSet) {
	h := hashMembership(active)
	var g *SymbolGroup
	for _, id := range sg.index[h] {
		if sg.Groups[id].members.Equal(active) {
			g = sg.Groups[id]
			break
		}
	}
	if g == nil {
		g = &SymbolGroup{
			ID:      len(sg.Groups),
			members: active.Clone(),
		}
		for i, ok := active.NextSet(0); ok; i, ok = active.NextSet(i + 1) {
			g.Selectors = append(g.Selectors, int(i))
		}
		sg.Groups = append(sg.Groups, g)
		sg.index[h] = append(sg.index[h], g.ID)
	}

	if n := len(g.Ranges); n > 0 && g.Ranges[n-1].To+1 == from {
		g.Ranges[n-1].To = to
	} else {
		g.Ranges = append(g.Ranges, CodePointRange{
			From: from,
			To:   to,
		})
	}

	if n := len(sg.spanGroup); n > 0 && sg.spanGroup[n-1] == g.ID {
		return
	}
	sg.spanFrom = append(sg.spanFrom, from)
	sg.spanGroup = append(sg.spanGroup, g.ID)
}
