// Package nfa builds a nondeterministic finite automaton from the syntax trees of lexical patterns. Transitions
// consume ranges of code points rather than single characters so that patterns like `\p{L}` stay small.
package nfa

import (
	"fmt"

	psr "github.com/nihei9/lrgen/grammar/lexical/parser"
	spec "github.com/nihei9/lrgen/spec/grammar"
)

// ErrOverflow means the automaton grew beyond the node limit, typically because of nested repetitions.
var ErrOverflow = fmt.Errorf("too many NFA nodes")

// NodesMax is the default limit of the number of nodes.
const NodesMax = 1 << 22

// NodeID is an index of NFA.Nodes.
type NodeID int

type TransitionKind int

const (
	TransitionEpsilon TransitionKind = iota
	TransitionRange
	TransitionAnchor
)

// Transition is an edge of the automaton. A range transition consumes one code point in From..To (both
// inclusive). An anchor transition consumes nothing but is taken only when Anchor holds at the current position.
type Transition struct {
	Kind   TransitionKind
	From   rune
	To     rune
	Anchor spec.AnchorKind
	Dest   NodeID
}

type Node struct {
	Transitions []*Transition

	// Accept is the ordinal of the pattern this node completes, or -1.
	Accept int
}

// Pattern is a compiled lexical pattern. Ordinal is the priority of the pattern: when two patterns match the
// same longest text, the lower ordinal wins.
type Pattern struct {
	Ordinal int
	Action  int
	Entry   NodeID
	Exit    NodeID
	Modes   []int
}

// Mode is a set of patterns the lexer can match at a time.
type Mode struct {
	Name  string
	Entry NodeID
}

type NFA struct {
	Nodes    []*Node
	Patterns []*Pattern
	Modes    []*Mode

	limit int
}

// New returns an empty automaton. limit bounds the number of nodes; a value <= 0 means NodesMax.
func New(limit int) *NFA {
	if limit <= 0 {
		limit = NodesMax
	}
	return &NFA{
		limit: limit,
	}
}

// AddMode adds a mode and returns its index.
func (n *NFA) AddMode(name string) (int, error) {
	entry, err := n.newNode()
	if err != nil {
		return 0, err
	}
	n.Modes = append(n.Modes, &Mode{
		Name:  name,
		Entry: entry,
	})
	return len(n.Modes) - 1, nil
}

// AddPattern compiles a syntax tree and attaches it to the modes. The ordinal of the pattern is the number of
// patterns added before it.
func (n *NFA) AddPattern(tree psr.CPTree, action int, modes []int) (*Pattern, error) {
	for _, m := range modes {
		if m < 0 || m >= len(n.Modes) {
			return nil, fmt.Errorf("mode %v is not defined", m)
		}
	}

	f, err := n.build(tree)
	if err != nil {
		return nil, err
	}

	p := &Pattern{
		Ordinal: len(n.Patterns),
		Action:  action,
		Entry:   f.entry,
		Exit:    f.exit,
		Modes:   modes,
	}
	n.Nodes[f.exit].Accept = p.Ordinal
	for _, m := range modes {
		n.addEpsilon(n.Modes[m].Entry, f.entry)
	}
	n.Patterns = append(n.Patterns, p)

	return p, nil
}

type fragment struct {
	entry NodeID
	exit  NodeID
}

func (n *NFA) newNode() (NodeID, error) {
	if len(n.Nodes) >= n.limit {
		return 0, ErrOverflow
	}
	n.Nodes = append(n.Nodes, &Node{
		Accept: -1,
	})
	return NodeID(len(n.Nodes) - 1), nil
}

func (n *NFA) newFragment() (fragment, error) {
	entry, err := n.newNode()
	if err != nil {
		return fragment{}, err
	}
	exit, err := n.newNode()
	if err != nil {
		return fragment{}, err
	}
	return fragment{
		entry: entry,
		exit:  exit,
	}, nil
}

func (n *NFA) addEpsilon(from, to NodeID) {
	n.Nodes[from].Transitions = append(n.Nodes[from].Transitions, &Transition{
		Kind: TransitionEpsilon,
		Dest: to,
	})
}

func (n *NFA) build(tree psr.CPTree) (fragment, error) {
	if ranges, ok := tree.Ranges(); ok {
		f, err := n.newFragment()
		if err != nil {
			return fragment{}, err
		}
		from := n.Nodes[f.entry]
		for _, r := range ranges {
			from.Transitions = append(from.Transitions, &Transition{
				Kind: TransitionRange,
				From: r.From,
				To:   r.To,
				Dest: f.exit,
			})
		}
		return f, nil
	}

	if anchor, ok := tree.Anchor(); ok {
		f, err := n.newFragment()
		if err != nil {
			return fragment{}, err
		}
		n.Nodes[f.entry].Transitions = append(n.Nodes[f.entry].Transitions, &Transition{
			Kind:   TransitionAnchor,
			Anchor: anchor,
			Dest:   f.exit,
		})
		return f, nil
	}

	if left, right, ok := tree.Concatenation(); ok {
		l, err := n.build(left)
		if err != nil {
			return fragment{}, err
		}
		r, err := n.build(right)
		if err != nil {
			return fragment{}, err
		}
		n.addEpsilon(l.exit, r.entry)
		return fragment{
			entry: l.entry,
			exit:  r.exit,
		}, nil
	}

	if left, right, ok := tree.Alternatives(); ok {
		f, err := n.newFragment()
		if err != nil {
			return fragment{}, err
		}
		for _, t := range []psr.CPTree{left, right} {
			alt, err := n.build(t)
			if err != nil {
				return fragment{}, err
			}
			n.addEpsilon(f.entry, alt.entry)
			n.addEpsilon(alt.exit, f.exit)
		}
		return f, nil
	}

	if t, min, max, ok := tree.Repetition(); ok {
		return n.buildRepetition(t, min, max)
	}

	return fragment{}, fmt.Errorf("unexpected node: %v", tree)
}

// buildRepetition expands `t{min,max}` into min mandatory copies of t followed by either a loop or max-min
// optional copies.
func (n *NFA) buildRepetition(t psr.CPTree, min, max int) (fragment, error) {
	f, err := n.newFragment()
	if err != nil {
		return fragment{}, err
	}

	cur := f.entry
	for i := 0; i < min; i++ {
		c, err := n.build(t)
		if err != nil {
			return fragment{}, err
		}
		n.addEpsilon(cur, c.entry)
		cur = c.exit
	}

	if max == psr.RepeatUnbounded {
		loop, err := n.newNode()
		if err != nil {
			return fragment{}, err
		}
		c, err := n.build(t)
		if err != nil {
			return fragment{}, err
		}
		n.addEpsilon(cur, loop)
		n.addEpsilon(loop, c.entry)
		n.addEpsilon(c.exit, loop)
		n.addEpsilon(loop, f.exit)
		return f, nil
	}

	for i := min; i < max; i++ {
		c, err := n.build(t)
		if err != nil {
			return fragment{}, err
		}
		n.addEpsilon(cur, c.entry)
		n.addEpsilon(cur, f.exit)
		cur = c.exit
	}
	n.addEpsilon(cur, f.exit)

	return f, nil
}
