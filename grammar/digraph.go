package grammar

import (
	"math"
	"sort"

	"github.com/bits-and-blooms/bitset"
)

type digraphFrame struct {
	node  int
	edge  int
	depth int
}

// digraph is the DIGRAPH algorithm of DeRemer and Pennello. Given a relation R (edges) and initial sets
// F'(x), it computes in place
//
//	F(x) = F'(x) ∪ ⋃{ F(y) | x R y }
//
// visiting every strongly connected component once. Members of one component end up with equal sets; each
// member owns a copy. sets may be nil when only the components are of interest.
//
// digraph returns the non-trivial components, that is, components having more than one member or a
// self-loop, in the order they are completed. Members are sorted in ascending order.
func digraph(edges [][]int, sets []*bitset.BitSet) [][]int {
	n := len(edges)
	depth := make([]int, n)
	var stack []int
	var frames []*digraphFrame
	var sccs [][]int

	union := func(x, y int) {
		if sets == nil {
			return
		}
		sets[x].InPlaceUnion(sets[y])
	}

	for root := 0; root < n; root++ {
		if depth[root] != 0 {
			continue
		}

		stack = append(stack, root)
		depth[root] = len(stack)
		frames = append(frames, &digraphFrame{
			node:  root,
			depth: len(stack),
		})

		for len(frames) > 0 {
			f := frames[len(frames)-1]
			x := f.node
			if f.edge < len(edges[x]) {
				y := edges[x][f.edge]
				if depth[y] == 0 {
					stack = append(stack, y)
					depth[y] = len(stack)
					frames = append(frames, &digraphFrame{
						node:  y,
						depth: len(stack),
					})
					continue
				}
				if depth[y] < depth[x] {
					depth[x] = depth[y]
				}
				union(x, y)
				f.edge++
				continue
			}

			frames = frames[:len(frames)-1]
			if depth[x] == f.depth {
				var members []int
				for {
					top := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					depth[top] = math.MaxInt
					members = append(members, top)
					if top == x {
						break
					}
					if sets != nil {
						sets[top] = sets[x].Clone()
					}
				}
				if len(members) > 1 || hasSelfLoop(edges, x) {
					sort.Ints(members)
					sccs = append(sccs, members)
				}
			}

			// Return to the caller frame. Its current edge points to x, and the next iteration of the loop
			// merges the depth and the set of x into it.
		}
	}

	return sccs
}

func hasSelfLoop(edges [][]int, x int) bool {
	for _, y := range edges[x] {
		if y == x {
			return true
		}
	}
	return false
}
