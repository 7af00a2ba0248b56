package grammar

import (
	"strings"
	"testing"
)

const (
	testEOP = -1
	testEOG = -2
)

// testGrammar lays out symbols the way the compile pipeline does: EOF is 0, terminals follow, and the
// non-terminals come last, starting with the augmented start symbol.
type testGrammar struct {
	gram  *Grammar
	syms  map[string]int
	names map[int]string
}

// newTestGrammar builds a grammar from productions written as "lhs: rhs1 rhs2 ...". The LHS of the first
// production becomes the goal symbol, and any symbol never appearing as a LHS is a terminal.
func newTestGrammar(t *testing.T, prods ...string) *testGrammar {
	t.Helper()

	type rawProd struct {
		lhs string
		rhs []string
	}
	var raws []*rawProd
	isLHS := map[string]bool{}
	var lhsOrder []string
	var termOrder []string
	for _, p := range prods {
		elems := strings.SplitN(p, ":", 2)
		if len(elems) != 2 {
			t.Fatalf("invalid production: %v", p)
		}
		lhs := strings.TrimSpace(elems[0])
		raws = append(raws, &rawProd{
			lhs: lhs,
			rhs: strings.Fields(elems[1]),
		})
		if !isLHS[lhs] {
			isLHS[lhs] = true
			lhsOrder = append(lhsOrder, lhs)
		}
	}
	seen := map[string]bool{}
	for _, r := range raws {
		for _, sym := range r.rhs {
			if isLHS[sym] || seen[sym] {
				continue
			}
			seen[sym] = true
			termOrder = append(termOrder, sym)
		}
	}

	tg := &testGrammar{
		syms:  map[string]int{},
		names: map[int]string{},
	}
	reg := func(name string) {
		num := len(tg.syms)
		tg.syms[name] = num
		tg.names[num] = name
	}
	reg("<eof>")
	for _, name := range termOrder {
		reg(name)
	}
	reg("S'")
	for _, name := range lhsOrder {
		reg(name)
	}

	src := []int{tg.syms["S'"], tg.syms[lhsOrder[0]], testEOP}
	for _, r := range raws {
		src = append(src, tg.syms[r.lhs])
		for _, sym := range r.rhs {
			src = append(src, tg.syms[sym])
		}
		src = append(src, testEOP)
	}
	src = append(src, testEOG)

	tg.gram = &Grammar{
		Productions: src,
		EOF:         tg.syms["<eof>"],
		EOP:         testEOP,
		EOG:         testEOG,
		Start:       tg.syms["S'"],
	}
	return tg
}

func (tg *testGrammar) sym(t *testing.T, name string) int {
	t.Helper()

	sym, ok := tg.syms[name]
	if !ok {
		t.Fatalf("symbol was not found: %v", name)
	}
	return sym
}

func (tg *testGrammar) tokens(t *testing.T, src string) []int {
	t.Helper()

	var toks []int
	for _, name := range strings.Fields(src) {
		toks = append(toks, tg.sym(t, name))
	}
	return toks
}

// parse runs an LR driver over toks and reports whether the table accepts them.
func parse(tab *ParsingTable, toks []int) bool {
	stack := []int{stateNumInitial}
	toks = append(append([]int{}, toks...), tab.EOF)
	for i := 0; ; {
		ty, n := DescribeAction(tab.Lookup(stack[len(stack)-1], toks[i]))
		switch ty {
		case ActionTypeShift:
			stack = append(stack, n)
			i++
		case ActionTypeReduce:
			stack = stack[:len(stack)-tab.ProductionLengths[n]]
			ty, next := DescribeAction(tab.Lookup(stack[len(stack)-1], tab.ProductionLHS[n]))
			if ty != ActionTypeShift {
				return false
			}
			stack = append(stack, next)
		case ActionTypeAccept:
			return true
		default:
			return false
		}
	}
}
