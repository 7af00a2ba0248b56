package dfa

import (
	"strings"
	"testing"

	"github.com/nihei9/lrgen/grammar/lexical/nfa"
	psr "github.com/nihei9/lrgen/grammar/lexical/parser"
	spec "github.com/nihei9/lrgen/spec/grammar"
)

type testPattern struct {
	pattern string
	modes   []int
}

func genTestDFA(t *testing.T, modeCount int, patterns []testPattern) *DFA {
	t.Helper()
	n := nfa.New(0)
	for i := 0; i < modeCount; i++ {
		_, err := n.AddMode(strings.Repeat("m", i+1))
		if err != nil {
			t.Fatal(err)
		}
	}
	for i, pat := range patterns {
		p := psr.NewParser(spec.LexKindName("test"), strings.NewReader(pat.pattern))
		tree, err := p.Parse()
		if err != nil {
			detail, cause := p.Error()
			t.Fatalf("%v: %v: %v", err, cause, detail)
		}
		modes := pat.modes
		if len(modes) == 0 {
			modes = []int{0}
		}
		_, err = n.AddPattern(tree, i+1, modes)
		if err != nil {
			t.Fatal(err)
		}
	}
	d, err := GenDFA(n, 0)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func holdingAnchors(input []rune, pos int) []spec.AnchorKind {
	var ks []spec.AnchorKind
	if pos == 0 {
		ks = append(ks, spec.AnchorStartOfInput, spec.AnchorStartOfLine)
	} else if input[pos-1] == '\n' {
		ks = append(ks, spec.AnchorStartOfLine)
	}
	if pos == len(input) {
		ks = append(ks, spec.AnchorEndOfInput, spec.AnchorEndOfLine)
	} else if input[pos] == '\n' {
		ks = append(ks, spec.AnchorEndOfLine)
	}
	return ks
}

// run returns the ordinal of the pattern matching the whole input, or -1.
func run(d *DFA, mode int, input string) int {
	rs := []rune(input)
	node := d.ModeStarts[mode]
	for pos := 0; ; pos++ {
		for changed := true; changed; {
			changed = false
			for _, k := range holdingAnchors(rs, pos) {
				if dest := d.Nodes[node].Anchors[k]; dest >= 0 {
					node = dest
					changed = true
				}
			}
		}
		if pos == len(rs) {
			return d.Nodes[node].Accept
		}
		next := d.Nodes[node].Row[d.Groups.GroupOf(rs[pos])]
		if next < 0 {
			return -1
		}
		node = next
	}
}

func TestGenDFA(t *testing.T) {
	tests := []struct {
		caption  string
		patterns []string
		inputs   map[string]int
	}{
		{
			caption:  "(a|b)*abb",
			patterns: []string{"(a|b)*abb"},
			inputs: map[string]int{
				"abb":  0,
				"aabb": 0,
				"babb": 0,
				"ab":   -1,
				"abba": -1,
				"":     -1,
			},
		},
		{
			caption:  "the pattern declared earlier wins",
			patterns: []string{"if", "[a-z]+", "[0-9]+"},
			inputs: map[string]int{
				"if":  0,
				"iff": 1,
				"x":   1,
				"42":  2,
				"4a":  -1,
			},
		},
		{
			caption:  "ranges beyond the BMP",
			patterns: []string{"[\\u{1F600}-\\u{1F64F}]+", "\\p{Han}"},
			inputs: map[string]int{
				"😀🙏": 0,
				"漢":   1,
				"漢字":  -1,
				"a":   -1,
			},
		},
		{
			caption:  "^ holds at the beginning of input and after a newline",
			patterns: []string{"^a", "\\n^b", "x^c"},
			inputs: map[string]int{
				"a":   0,
				"\nb": 1,
				"xc":  -1,
			},
		},
		{
			caption:  "$ holds at the end of input and before a newline",
			patterns: []string{"a$", "b$\\n", "c$d"},
			inputs: map[string]int{
				"a":   0,
				"b\n": 1,
				"cd":  -1,
			},
		},
		{
			caption:  "\\A and \\z hold only at the edges of input",
			patterns: []string{"\\Aa\\z", "\\n\\Ab"},
			inputs: map[string]int{
				"a":   0,
				"\nb": -1,
			},
		},
		{
			caption:  "adjacent anchors",
			patterns: []string{"^^a$$", "\\A^b"},
			inputs: map[string]int{
				"a": 0,
				"b": 1,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			var pats []testPattern
			for _, p := range tt.patterns {
				pats = append(pats, testPattern{
					pattern: p,
				})
			}
			d := genTestDFA(t, 1, pats)
			for input, expected := range tt.inputs {
				if actual := run(d, 0, input); actual != expected {
					t.Errorf("unexpected match: input: %#v, want: %v, got: %v", input, expected, actual)
				}
			}
		})
	}
}

func TestGenDFA_Modes(t *testing.T) {
	d := genTestDFA(t, 2, []testPattern{
		{pattern: "a", modes: []int{0}},
		{pattern: "b", modes: []int{1}},
		{pattern: "c", modes: []int{0, 1}},
	})
	if len(d.ModeStarts) != 2 || d.ModeStarts[0] == d.ModeStarts[1] {
		t.Fatalf("each mode must have its own start node: %v", d.ModeStarts)
	}
	if run(d, 0, "a") != 0 || run(d, 0, "b") != -1 || run(d, 0, "c") != 2 {
		t.Fatalf("unexpected matches in mode 0")
	}
	if run(d, 1, "a") != -1 || run(d, 1, "b") != 1 || run(d, 1, "c") != 2 {
		t.Fatalf("unexpected matches in mode 1")
	}
}

func TestGenDFA_Deterministic(t *testing.T) {
	pats := []testPattern{
		{pattern: "[a-z_][0-9a-z_]*"},
		{pattern: "[0-9]+(\\.[0-9]+)?"},
		{pattern: "^#[^\\n]*"},
	}
	d1 := genTestDFA(t, 1, pats)
	d2 := genTestDFA(t, 1, pats)
	if len(d1.Nodes) != len(d2.Nodes) || len(d1.Groups.Groups) != len(d2.Groups.Groups) {
		t.Fatalf("the results differ")
	}
	for i, n1 := range d1.Nodes {
		n2 := d2.Nodes[i]
		if !n1.Members.Equal(n2.Members) || n1.Accept != n2.Accept || n1.Anchors != n2.Anchors {
			t.Fatalf("node #%v differs", i)
		}
		for g := range n1.Row {
			if n1.Row[g] != n2.Row[g] {
				t.Fatalf("row #%v differs", i)
			}
		}
	}

	// No two nodes stand for the same set of NFA nodes.
	for i, n1 := range d1.Nodes {
		for _, n2 := range d1.Nodes[i+1:] {
			if n1.Members.Equal(n2.Members) {
				t.Fatalf("nodes #%v and #%v are duplicates", n1.ID, n2.ID)
			}
		}
	}
}

func TestGenDFA_Overflow(t *testing.T) {
	n := nfa.New(0)
	_, err := n.AddMode("default")
	if err != nil {
		t.Fatal(err)
	}
	tree, err := psr.NewParser("test", strings.NewReader("a{100}")).Parse()
	if err != nil {
		t.Fatal(err)
	}
	_, err = n.AddPattern(tree, 1, []int{0})
	if err != nil {
		t.Fatal(err)
	}
	_, err = GenDFA(n, 10)
	if err != ErrOverflow {
		t.Fatalf("unexpected error: want: %v, got: %v", ErrOverflow, err)
	}
}

func TestGenTransitionTable(t *testing.T) {
	d := genTestDFA(t, 1, []testPattern{
		{pattern: "^ab"},
	})
	tab, err := GenTransitionTable(d)
	if err != nil {
		t.Fatal(err)
	}
	if tab.RowCount != len(d.Nodes)+1 || tab.ColCount != len(d.Groups.Groups) {
		t.Fatalf("unexpected table size: %vx%v", tab.RowCount, tab.ColCount)
	}
	if len(tab.UncompressedTransition) != tab.RowCount*tab.ColCount {
		t.Fatalf("unexpected transition table length: %v", len(tab.UncompressedTransition))
	}
	if len(tab.AnchorTransitions) != tab.RowCount*spec.AnchorKindCount {
		t.Fatalf("unexpected anchor table length: %v", len(tab.AnchorTransitions))
	}
	for k := 0; k < spec.AnchorKindCount; k++ {
		if tab.AnchorTransitions[k] != spec.StateIDNil {
			t.Fatalf("the nil state must have no anchor transition")
		}
	}

	// Follow the table: ^ at the start of input, then `a` and `b`.
	s := d.ModeStarts[0] + spec.StateIDMin.Int()
	next := tab.AnchorTransitions[s*spec.AnchorKindCount+spec.AnchorStartOfInput.Int()]
	if next == spec.StateIDNil {
		t.Fatalf("the start state must have a transition on \\A")
	}
	s = next.Int()
	for _, c := range "ab" {
		s = tab.UncompressedTransition[s*tab.ColCount+d.Groups.GroupOf(c)]
		if s == spec.StateIDNil.Int() {
			t.Fatalf("unexpected error state on %c", c)
		}
	}
	if tab.AcceptingStates[s] != 1 {
		t.Fatalf("unexpected accepting state: want: 1, got: %v", tab.AcceptingStates[s])
	}
}
