package parser

import (
	"fmt"
	"sort"
	"strings"

	spec "github.com/nihei9/lrgen/spec/grammar"
)

var (
	ErrUndefinedFragment = fmt.Errorf("undefined fragment")
	ErrCyclicFragment    = fmt.Errorf("fragments refer to each other cyclically")
)

type incompleteFragment struct {
	kind spec.LexKindName
	root *rootNode
}

// CompleteFragments embeds fragments referenced by other fragments until all of them are self-contained.
func CompleteFragments(fragments map[spec.LexKindName]CPTree) error {
	if len(fragments) == 0 {
		return nil
	}

	completeFragments := map[spec.LexKindName]CPTree{}
	incompleteFragments := []*incompleteFragment{}
	for kind, tree := range fragments {
		root, ok := tree.(*rootNode)
		if !ok {
			return fmt.Errorf("CompleteFragments can take only *rootNode: %T", tree)
		}
		if root.incomplete() {
			incompleteFragments = append(incompleteFragments, &incompleteFragment{
				kind: kind,
				root: root,
			})
		} else {
			completeFragments[kind] = root
		}
	}
	for _, e := range incompleteFragments {
		for ref := range e.root.fragments {
			if _, ok := fragments[ref]; !ok {
				return fmt.Errorf("%w: %v (referred by %v)", ErrUndefinedFragment, ref, e.kind)
			}
		}
	}
	for len(incompleteFragments) > 0 {
		lastIncompCount := len(incompleteFragments)
		remainingFragments := []*incompleteFragment{}
		for _, e := range incompleteFragments {
			complete, err := ApplyFragments(e.root, completeFragments)
			if err != nil {
				return err
			}
			if !complete {
				remainingFragments = append(remainingFragments, e)
			} else {
				completeFragments[e.kind] = e.root
			}
		}
		incompleteFragments = remainingFragments
		if len(incompleteFragments) == lastIncompCount {
			var names []string
			for _, e := range incompleteFragments {
				names = append(names, string(e.kind))
			}
			sort.Strings(names)
			return fmt.Errorf("%w: %v", ErrCyclicFragment, strings.Join(names, ", "))
		}
	}

	return nil
}

// ApplyFragments embeds fragments into t and reports whether t no longer refers to any fragment.
func ApplyFragments(t CPTree, fragments map[spec.LexKindName]CPTree) (bool, error) {
	root, ok := t.(*rootNode)
	if !ok {
		return false, fmt.Errorf("ApplyFragments can take only *rootNode type: %T", t)
	}

	for name, frag := range fragments {
		err := root.applyFragment(name, frag)
		if err != nil {
			return false, err
		}
	}

	return !root.incomplete(), nil
}
