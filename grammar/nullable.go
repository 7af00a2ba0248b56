package grammar

// genNullable computes the set of non-terminals deriving the empty string. The result is indexed by
// `non-terminal - ntMin`.
func genNullable(g *cfg) []bool {
	nullable := make([]bool, g.nonTerminalCount())
	for {
		changed := false
		for _, prod := range g.prods.getAllProductions() {
			if nullable[prod.lhs-g.ntMin] {
				continue
			}
			all := true
			for _, sym := range prod.rhs {
				if !g.isNonTerminal(sym) || !nullable[sym-g.ntMin] {
					all = false
					break
				}
			}
			if all {
				nullable[prod.lhs-g.ntMin] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return nullable
}

// isNullableSeq reports whether every symbol of syms derives the empty string. An empty sequence is
// nullable.
func (g *cfg) isNullableSeq(syms []int) bool {
	for _, sym := range syms {
		if !g.isNullable(sym) {
			return false
		}
	}
	return true
}

// genNullableSuffixes returns a slice whose i-th element reports whether prod.rhs[i:] is nullable. The
// slice has prod.rhsLen+1 elements, and the last one is always true.
func (g *cfg) genNullableSuffixes(prod *production) []bool {
	suffixes := make([]bool, prod.rhsLen+1)
	suffixes[prod.rhsLen] = true
	for i := prod.rhsLen - 1; i >= 0; i-- {
		suffixes[i] = suffixes[i+1] && g.isNullable(prod.rhs[i])
	}
	return suffixes
}

// findDerivationCycle finds non-terminals A such that A ⇒+ A. Such a grammar derives some sentences in
// infinitely many ways. It returns the members of the first cycle found, or nil.
func findDerivationCycle(g *cfg) []int {
	edges := make([][]int, g.nonTerminalCount())
	for _, prod := range g.prods.getAllProductions() {
		suffixes := g.genNullableSuffixes(prod)
		for i, sym := range prod.rhs {
			if !g.isNonTerminal(sym) {
				continue
			}
			if !g.isNullableSeq(prod.rhs[:i]) {
				break
			}
			if suffixes[i+1] {
				edges[prod.lhs-g.ntMin] = append(edges[prod.lhs-g.ntMin], sym-g.ntMin)
			}
		}
	}

	sccs := digraph(edges, nil)
	if len(sccs) == 0 {
		return nil
	}
	cyc := make([]int, len(sccs[0]))
	for i, n := range sccs[0] {
		cyc[i] = n + g.ntMin
	}
	return cyc
}
