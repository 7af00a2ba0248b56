package parser

import (
	"fmt"
	"io"
	"sort"

	spec "github.com/nihei9/lrgen/spec/grammar"
)

// CPRange is a range of code points; both ends are inclusive.
type CPRange struct {
	From rune
	To   rune
}

// RepeatUnbounded is the maximum count of `*` and `+`.
const RepeatUnbounded = -1

type CPTree interface {
	fmt.Stringer
	Ranges() ([]CPRange, bool)
	Anchor() (spec.AnchorKind, bool)
	Repetition() (CPTree, int, int, bool)
	Concatenation() (CPTree, CPTree, bool)
	Alternatives() (CPTree, CPTree, bool)
	Describe() (spec.LexKindName, []spec.LexKindName, error)

	children() (CPTree, CPTree)
	clone() CPTree
}

var (
	_ CPTree = &rootNode{}
	_ CPTree = &charClassNode{}
	_ CPTree = &anchorNode{}
	_ CPTree = &concatNode{}
	_ CPTree = &altNode{}
	_ CPTree = &repeatNode{}
	_ CPTree = &fragmentNode{}
)

type rootNode struct {
	kind      spec.LexKindName
	tree      CPTree
	fragments map[spec.LexKindName][]*fragmentNode
}

func newRootNode(kind spec.LexKindName, t CPTree) *rootNode {
	fragments := map[spec.LexKindName][]*fragmentNode{}
	collectFragments(t, fragments)

	return &rootNode{
		kind:      kind,
		tree:      t,
		fragments: fragments,
	}
}

func collectFragments(n CPTree, fragments map[spec.LexKindName][]*fragmentNode) {
	if n == nil {
		return
	}

	if f, ok := n.(*fragmentNode); ok {
		fragments[f.kind] = append(fragments[f.kind], f)
		return
	}

	l, r := n.children()
	collectFragments(l, fragments)
	collectFragments(r, fragments)
}

func (n *rootNode) String() string {
	return fmt.Sprintf("root: %v: %v fragments", n.kind, len(n.fragments))
}

func (n *rootNode) Ranges() ([]CPRange, bool) {
	return n.tree.Ranges()
}

func (n *rootNode) Anchor() (spec.AnchorKind, bool) {
	return n.tree.Anchor()
}

func (n *rootNode) Repetition() (CPTree, int, int, bool) {
	return n.tree.Repetition()
}

func (n *rootNode) Concatenation() (CPTree, CPTree, bool) {
	return n.tree.Concatenation()
}

func (n *rootNode) Alternatives() (CPTree, CPTree, bool) {
	return n.tree.Alternatives()
}

func (n *rootNode) Describe() (spec.LexKindName, []spec.LexKindName, error) {
	var frags []spec.LexKindName
	for f := range n.fragments {
		frags = append(frags, f)
	}
	sort.Slice(frags, func(i, j int) bool {
		return frags[i] < frags[j]
	})

	return n.kind, frags, nil
}

func (n *rootNode) children() (CPTree, CPTree) {
	return n.tree.children()
}

func (n *rootNode) clone() CPTree {
	return n.tree.clone()
}

func (n *rootNode) incomplete() bool {
	return len(n.fragments) > 0
}

func (n *rootNode) applyFragment(kind spec.LexKindName, fragment CPTree) error {
	root, ok := fragment.(*rootNode)
	if !ok {
		return fmt.Errorf("applyFragment can take only *rootNode: %T", fragment)
	}
	if root.incomplete() {
		return fmt.Errorf("fragment is incomplete")
	}

	fs, ok := n.fragments[kind]
	if !ok {
		return nil
	}
	for _, f := range fs {
		f.tree = root.clone()
	}
	delete(n.fragments, kind)

	return nil
}

// charClassNode matches one code point in its ranges. The ranges are sorted and never overlap nor adjoin.
type charClassNode struct {
	ranges []CPRange
}

func newSymbolNode(cp rune) *charClassNode {
	return newRangeSymbolNode(cp, cp)
}

func newRangeSymbolNode(from, to rune) *charClassNode {
	return &charClassNode{
		ranges: []CPRange{
			{
				From: from,
				To:   to,
			},
		},
	}
}

func newCharClassNode(ranges []CPRange) *charClassNode {
	return &charClassNode{
		ranges: normalizeRanges(ranges),
	}
}

func (n *charClassNode) String() string {
	if len(n.ranges) == 1 {
		return fmt.Sprintf("symbol: %X..%X", n.ranges[0].From, n.ranges[0].To)
	}
	return fmt.Sprintf("symbol: %X..%X (%v ranges)", n.ranges[0].From, n.ranges[len(n.ranges)-1].To, len(n.ranges))
}

func (n *charClassNode) Ranges() ([]CPRange, bool) {
	return n.ranges, true
}

func (n *charClassNode) Anchor() (spec.AnchorKind, bool) {
	return 0, false
}

func (n *charClassNode) Repetition() (CPTree, int, int, bool) {
	return nil, 0, 0, false
}

func (n *charClassNode) Concatenation() (CPTree, CPTree, bool) {
	return nil, nil, false
}

func (n *charClassNode) Alternatives() (CPTree, CPTree, bool) {
	return nil, nil, false
}

func (n *charClassNode) Describe() (spec.LexKindName, []spec.LexKindName, error) {
	return spec.LexKindNameNil, nil, fmt.Errorf("%T cannot describe", n)
}

func (n *charClassNode) children() (CPTree, CPTree) {
	return nil, nil
}

func (n *charClassNode) clone() CPTree {
	return &charClassNode{
		ranges: append([]CPRange{}, n.ranges...),
	}
}

type anchorNode struct {
	anchor spec.AnchorKind
}

func newAnchorNode(anchor spec.AnchorKind) *anchorNode {
	return &anchorNode{
		anchor: anchor,
	}
}

func (n *anchorNode) String() string {
	return fmt.Sprintf("anchor: %v", n.anchor)
}

func (n *anchorNode) Ranges() ([]CPRange, bool) {
	return nil, false
}

func (n *anchorNode) Anchor() (spec.AnchorKind, bool) {
	return n.anchor, true
}

func (n *anchorNode) Repetition() (CPTree, int, int, bool) {
	return nil, 0, 0, false
}

func (n *anchorNode) Concatenation() (CPTree, CPTree, bool) {
	return nil, nil, false
}

func (n *anchorNode) Alternatives() (CPTree, CPTree, bool) {
	return nil, nil, false
}

func (n *anchorNode) Describe() (spec.LexKindName, []spec.LexKindName, error) {
	return spec.LexKindNameNil, nil, fmt.Errorf("%T cannot describe", n)
}

func (n *anchorNode) children() (CPTree, CPTree) {
	return nil, nil
}

func (n *anchorNode) clone() CPTree {
	return newAnchorNode(n.anchor)
}

type concatNode struct {
	left  CPTree
	right CPTree
}

func newConcatNode(left, right CPTree) *concatNode {
	return &concatNode{
		left:  left,
		right: right,
	}
}

func (n *concatNode) String() string {
	return "concat"
}

func (n *concatNode) Ranges() ([]CPRange, bool) {
	return nil, false
}

func (n *concatNode) Anchor() (spec.AnchorKind, bool) {
	return 0, false
}

func (n *concatNode) Repetition() (CPTree, int, int, bool) {
	return nil, 0, 0, false
}

func (n *concatNode) Concatenation() (CPTree, CPTree, bool) {
	return n.left, n.right, true
}

func (n *concatNode) Alternatives() (CPTree, CPTree, bool) {
	return nil, nil, false
}

func (n *concatNode) Describe() (spec.LexKindName, []spec.LexKindName, error) {
	return spec.LexKindNameNil, nil, fmt.Errorf("%T cannot describe", n)
}

func (n *concatNode) children() (CPTree, CPTree) {
	return n.left, n.right
}

func (n *concatNode) clone() CPTree {
	return newConcatNode(n.left.clone(), n.right.clone())
}

type altNode struct {
	left  CPTree
	right CPTree
}

func newAltNode(left, right CPTree) *altNode {
	return &altNode{
		left:  left,
		right: right,
	}
}

func (n *altNode) String() string {
	return "alt"
}

func (n *altNode) Ranges() ([]CPRange, bool) {
	return nil, false
}

func (n *altNode) Anchor() (spec.AnchorKind, bool) {
	return 0, false
}

func (n *altNode) Repetition() (CPTree, int, int, bool) {
	return nil, 0, 0, false
}

func (n *altNode) Concatenation() (CPTree, CPTree, bool) {
	return nil, nil, false
}

func (n *altNode) Alternatives() (CPTree, CPTree, bool) {
	return n.left, n.right, true
}

func (n *altNode) Describe() (spec.LexKindName, []spec.LexKindName, error) {
	return spec.LexKindNameNil, nil, fmt.Errorf("%T cannot describe", n)
}

func (n *altNode) children() (CPTree, CPTree) {
	return n.left, n.right
}

func (n *altNode) clone() CPTree {
	return newAltNode(n.left.clone(), n.right.clone())
}

// repeatNode matches its tree from min to max times. max is RepeatUnbounded for `*` and `+`.
type repeatNode struct {
	min  int
	max  int
	tree CPTree
}

func newRepeatNode(t CPTree) *repeatNode {
	return newRepetitionNode(t, 0, RepeatUnbounded)
}

func newRepeatOneOrMoreNode(t CPTree) *repeatNode {
	return newRepetitionNode(t, 1, RepeatUnbounded)
}

func newOptionNode(t CPTree) *repeatNode {
	return newRepetitionNode(t, 0, 1)
}

func newRepetitionNode(t CPTree, min, max int) *repeatNode {
	return &repeatNode{
		min:  min,
		max:  max,
		tree: t,
	}
}

func (n *repeatNode) String() string {
	if n.max == RepeatUnbounded {
		return fmt.Sprintf("repeat (>= %v times)", n.min)
	}
	return fmt.Sprintf("repeat (%v to %v times)", n.min, n.max)
}

func (n *repeatNode) Ranges() ([]CPRange, bool) {
	return nil, false
}

func (n *repeatNode) Anchor() (spec.AnchorKind, bool) {
	return 0, false
}

func (n *repeatNode) Repetition() (CPTree, int, int, bool) {
	return n.tree, n.min, n.max, true
}

func (n *repeatNode) Concatenation() (CPTree, CPTree, bool) {
	return nil, nil, false
}

func (n *repeatNode) Alternatives() (CPTree, CPTree, bool) {
	return nil, nil, false
}

func (n *repeatNode) Describe() (spec.LexKindName, []spec.LexKindName, error) {
	return spec.LexKindNameNil, nil, fmt.Errorf("%T cannot describe", n)
}

func (n *repeatNode) children() (CPTree, CPTree) {
	return n.tree, nil
}

func (n *repeatNode) clone() CPTree {
	return newRepetitionNode(n.tree.clone(), n.min, n.max)
}

type fragmentNode struct {
	kind spec.LexKindName
	tree CPTree
}

func newFragmentNode(kind spec.LexKindName, t CPTree) *fragmentNode {
	return &fragmentNode{
		kind: kind,
		tree: t,
	}
}

func (n *fragmentNode) String() string {
	return fmt.Sprintf("fragment: %v", n.kind)
}

func (n *fragmentNode) Ranges() ([]CPRange, bool) {
	return n.tree.Ranges()
}

func (n *fragmentNode) Anchor() (spec.AnchorKind, bool) {
	return n.tree.Anchor()
}

func (n *fragmentNode) Repetition() (CPTree, int, int, bool) {
	return n.tree.Repetition()
}

func (n *fragmentNode) Concatenation() (CPTree, CPTree, bool) {
	return n.tree.Concatenation()
}

func (n *fragmentNode) Alternatives() (CPTree, CPTree, bool) {
	return n.tree.Alternatives()
}

func (n *fragmentNode) Describe() (spec.LexKindName, []spec.LexKindName, error) {
	return spec.LexKindNameNil, nil, fmt.Errorf("%T cannot describe", n)
}

func (n *fragmentNode) children() (CPTree, CPTree) {
	return n.tree.children()
}

func (n *fragmentNode) clone() CPTree {
	if n.tree == nil {
		return newFragmentNode(n.kind, nil)
	}
	return newFragmentNode(n.kind, n.tree.clone())
}

// PrintCPTree writes t as a tree diagram.
func PrintCPTree(w io.Writer, t CPTree) {
	printCPTree(w, t, "", "")
}

func printCPTree(w io.Writer, t CPTree, ruledLine string, childRuledLinePrefix string) {
	if t == nil {
		return
	}
	fmt.Fprintf(w, "%v%v\n", ruledLine, t)
	children := []CPTree{}
	switch n := t.(type) {
	case *rootNode:
		children = append(children, n.tree)
	case *fragmentNode:
		children = append(children, n.tree)
	default:
		left, right := t.children()
		if left != nil {
			children = append(children, left)
		}
		if right != nil {
			children = append(children, right)
		}
	}
	num := len(children)
	for i, child := range children {
		line := "└─ "
		if num > 1 {
			if i == 0 {
				line = "├─ "
			} else if i < num-1 {
				line = "│  "
			}
		}
		prefix := "│  "
		if i >= num-1 {
			prefix = "    "
		}
		printCPTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}
