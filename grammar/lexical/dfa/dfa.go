// Package dfa converts an NFA into a DFA by the subset construction and compresses its alphabet into symbol
// groups.
package dfa

import (
	"fmt"
	"math"
	"math/bits"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/nihei9/lrgen/grammar/lexical/nfa"
	spec "github.com/nihei9/lrgen/spec/grammar"
	"github.com/npillmayer/schuko/tracing"
)

// ErrOverflow means the DFA grew beyond the node limit or its table does not fit in memory.
var ErrOverflow = fmt.Errorf("too many DFA nodes")

// NodesMax is the default limit of the number of DFA nodes.
const NodesMax = 1 << 20

const codePointMax = rune(0x10FFFF)

func tracer() tracing.Trace {
	return tracing.Select("lrgen.lexical")
}

// Transition consumes one code point in From..To (both inclusive) and moves to the node Dest.
type Transition struct {
	From rune
	To   rune
	Dest int
}

type Node struct {
	ID int

	// Members is the ε-closed set of NFA nodes this node stands for.
	Members *bitset.BitSet

	// Accept is the ordinal of the pattern this node matches, or -1. Action is the action of that pattern.
	Accept int
	Action int

	// Anchors holds the node to move to when an anchor holds, or -1 when the anchor changes nothing.
	Anchors [spec.AnchorKindCount]int

	// Transitions are sorted by code point and never overlap.
	Transitions []*Transition

	// Row maps a symbol group to the destination node, or -1.
	Row []int
}

type DFA struct {
	Nodes      []*Node
	Groups     *SymbolGroups
	ModeStarts []int
}

type dfaBuilder struct {
	nfa   *nfa.NFA
	nodes []*Node
	index map[uint64][]int
	limit int
}

// GenDFA converts n into a DFA. limit bounds the number of nodes; a value <= 0 means NodesMax.
func GenDFA(n *nfa.NFA, limit int) (*DFA, error) {
	if limit <= 0 {
		limit = NodesMax
	}
	b := &dfaBuilder{
		nfa:   n,
		index: map[uint64][]int{},
		limit: limit,
	}

	var starts []int
	for _, m := range n.Modes {
		s := b.newSet()
		s.Set(uint(m.Entry))
		id, err := b.intern(b.closure(s))
		if err != nil {
			return nil, err
		}
		starts = append(starts, id)
	}

	// b.nodes grows while this loop runs; the nodes are processed in the order of discovery.
	for i := 0; i < len(b.nodes); i++ {
		d := b.nodes[i]
		for k := spec.AnchorKind(0); k < spec.AnchorKindCount; k++ {
			dest, err := b.anchorSuccessor(d, k)
			if err != nil {
				return nil, err
			}
			d.Anchors[k] = dest
		}
		err := b.genTransitions(d)
		if err != nil {
			return nil, err
		}
	}

	groups := genSymbolGroups(b.nodes)

	tracer().Debugf("DFA: %v nodes, %v symbol groups, %v transition groups", len(b.nodes), len(groups.Groups), len(groups.TransitionGroups))

	return &DFA{
		Nodes:      b.nodes,
		Groups:     groups,
		ModeStarts: starts,
	}, nil
}

func (b *dfaBuilder) newSet() *bitset.BitSet {
	// All sets have the same length so that bitset.Equal can compare them.
	return bitset.New(uint(len(b.nfa.Nodes)))
}

// closure extends s in place with the nodes reachable through ε-transitions.
func (b *dfaBuilder) closure(s *bitset.BitSet) *bitset.BitSet {
	var stack []uint
	for i, ok := s.NextSet(0); ok; i, ok = s.NextSet(i + 1) {
		stack = append(stack, i)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, tr := range b.nfa.Nodes[id].Transitions {
			if tr.Kind != nfa.TransitionEpsilon || s.Test(uint(tr.Dest)) {
				continue
			}
			s.Set(uint(tr.Dest))
			stack = append(stack, uint(tr.Dest))
		}
	}
	return s
}

func hashSet(s *bitset.BitSet) uint64 {
	var h uint64
	for _, w := range s.Bytes() {
		h = bits.RotateLeft64(h, 7) ^ w
	}
	return h
}

// intern returns the node standing for members, creating it when no such node exists.
func (b *dfaBuilder) intern(members *bitset.BitSet) (int, error) {
	h := hashSet(members)
	for _, id := range b.index[h] {
		if b.nodes[id].Members.Equal(members) {
			return id, nil
		}
	}
	if len(b.nodes) >= b.limit {
		return 0, ErrOverflow
	}

	d := &Node{
		ID:      len(b.nodes),
		Members: members,
		Accept:  -1,
	}
	for i, ok := members.NextSet(0); ok; i, ok = members.NextSet(i + 1) {
		acc := b.nfa.Nodes[i].Accept
		if acc < 0 {
			continue
		}
		if d.Accept < 0 || acc < d.Accept {
			d.Accept = acc
		}
	}
	if d.Accept >= 0 {
		d.Action = b.nfa.Patterns[d.Accept].Action
	}
	b.nodes = append(b.nodes, d)
	b.index[h] = append(b.index[h], d.ID)

	return d.ID, nil
}

// anchorSuccessor returns the node reached from d when the anchor k holds. Adjacent anchors like `^^` are
// followed until the set of NFA nodes stops growing. The start of input is also the start of a line, and the
// end of input is also the end of a line.
func (b *dfaBuilder) anchorSuccessor(d *Node, k spec.AnchorKind) (int, error) {
	holds := [spec.AnchorKindCount]bool{}
	holds[k] = true
	switch k {
	case spec.AnchorStartOfInput:
		holds[spec.AnchorStartOfLine] = true
	case spec.AnchorEndOfInput:
		holds[spec.AnchorEndOfLine] = true
	}

	cur := d.Members
	for {
		next := cur.Clone()
		for i, ok := cur.NextSet(0); ok; i, ok = cur.NextSet(i + 1) {
			for _, tr := range b.nfa.Nodes[i].Transitions {
				if tr.Kind == nfa.TransitionAnchor && holds[tr.Anchor] {
					next.Set(uint(tr.Dest))
				}
			}
		}
		b.closure(next)
		if next.Equal(cur) {
			break
		}
		cur = next
	}
	if cur.Equal(d.Members) {
		return -1, nil
	}
	return b.intern(cur)
}

type rangeEvent struct {
	at   rune
	dest nfa.NodeID
	open bool
}

// genTransitions splits the ranges of the member nodes into maximal sub-ranges leading to the same set of NFA
// nodes.
func (b *dfaBuilder) genTransitions(d *Node) error {
	var events []*rangeEvent
	for i, ok := d.Members.NextSet(0); ok; i, ok = d.Members.NextSet(i + 1) {
		for _, tr := range b.nfa.Nodes[i].Transitions {
			if tr.Kind != nfa.TransitionRange {
				continue
			}
			events = append(events, &rangeEvent{
				at:   tr.From,
				dest: tr.Dest,
				open: true,
			}, &rangeEvent{
				at:   tr.To + 1,
				dest: tr.Dest,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].at < events[j].at
	})

	active := map[nfa.NodeID]int{}
	var from rune
	for i := 0; i < len(events); {
		at := events[i].at
		if len(active) > 0 && from < at {
			s := b.newSet()
			for id := range active {
				s.Set(uint(id))
			}
			dest, err := b.intern(b.closure(s))
			if err != nil {
				return err
			}
			d.addTransition(from, at-1, dest)
		}
		for ; i < len(events) && events[i].at == at; i++ {
			e := events[i]
			if e.open {
				active[e.dest]++
				continue
			}
			active[e.dest]--
			if active[e.dest] == 0 {
				delete(active, e.dest)
			}
		}
		from = at
	}

	return nil
}

func (d *Node) addTransition(from, to rune, dest int) {
	if len(d.Transitions) > 0 {
		last := d.Transitions[len(d.Transitions)-1]
		if last.Dest == dest && last.To+1 == from {
			last.To = to
			return
		}
	}
	d.Transitions = append(d.Transitions, &Transition{
		From: from,
		To:   to,
		Dest: dest,
	})
}

// GenTransitionTable lays d out as a table. The state of a node is its ID plus spec.StateIDMin, and row 0 stands
// for spec.StateIDNil. The accepting state table holds the actions of the matched patterns.
func GenTransitionTable(d *DFA) (*spec.TransitionTable, error) {
	rowCount := len(d.Nodes) + 1
	colCount := len(d.Groups.Groups)
	if colCount > 0 && rowCount > math.MaxInt/colCount {
		return nil, ErrOverflow
	}

	acc := make([]spec.LexKindID, rowCount)
	anchors := make([]spec.StateID, rowCount*spec.AnchorKindCount)
	tran := make([]int, rowCount*colCount)
	for _, n := range d.Nodes {
		s := n.ID + spec.StateIDMin.Int()
		if n.Accept >= 0 {
			acc[s] = spec.LexKindID(n.Action)
		}
		for k, dest := range n.Anchors {
			if dest < 0 {
				continue
			}
			anchors[s*spec.AnchorKindCount+k] = spec.StateID(dest + spec.StateIDMin.Int())
		}
		for g, dest := range n.Row {
			if dest < 0 {
				continue
			}
			tran[s*colCount+g] = dest + spec.StateIDMin.Int()
		}
	}

	return &spec.TransitionTable{
		AcceptingStates:        acc,
		AnchorTransitions:      anchors,
		RowCount:               rowCount,
		ColCount:               colCount,
		SymbolGroups:           d.Groups.Table(),
		UncompressedTransition: tran,
	}, nil
}
