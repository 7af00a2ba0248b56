package grammar

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cnf/structhash"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestGenerate_LALR1Table(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.grammar")
	defer teardown()

	tg := newTestGrammar(t,
		"S: L eq R",
		"S: R",
		"L: ref R",
		"L: id",
		"R: L",
	)
	gen := NewGenerator()
	tab, err := gen.Generate(tg.gram)
	if err != nil {
		t.Fatal(err)
	}

	eof := tg.sym(t, "<eof>")
	eq := tg.sym(t, "eq")
	tests := []struct {
		state int
		sym   int
		cell  int
	}{
		{state: 4, sym: eq, cell: newShiftAction(8)},
		{state: 4, sym: eof, cell: newReduceAction(5)},
		{state: 6, sym: eq, cell: newReduceAction(5)},
		{state: 6, sym: eof, cell: newReduceAction(5)},
		{state: 2, sym: eq, cell: newReduceAction(4)},
		{state: 3, sym: eof, cell: ActionAccept},
		{state: 5, sym: eof, cell: newReduceAction(2)},
		{state: 5, sym: eq, cell: ActionError},
		{state: 0, sym: tg.sym(t, "S"), cell: newShiftAction(3)},
	}
	for _, tt := range tests {
		if cell := tab.Lookup(tt.state, tt.sym); cell != tt.cell {
			t.Fatalf("unexpected cell; state: %v, symbol: %v, want: %v, got: %v", tt.state, tg.names[tt.sym], tt.cell, cell)
		}
	}

	if tab.Lookup(0, tab.MinSymbol-1) != ActionError || tab.Lookup(tab.StateCount, eof) != ActionError {
		t.Fatalf("a lookup out of range must yield the error action")
	}

	out, in, total, err := gen.TransitionCount()
	if err != nil {
		t.Fatal(err)
	}
	if out != total || in != total {
		t.Fatalf("transition count is not conserved; outbound: %v, inbound: %v, total: %v", out, in, total)
	}
}

func TestGenerate_Parse(t *testing.T) {
	tests := []struct {
		caption  string
		prods    []string
		accepted []string
		rejected []string
	}{
		{
			caption: "expression",
			prods: []string{
				"E: E + T",
				"E: T",
				"T: T * F",
				"T: F",
				"F: ( E )",
				"F: id",
			},
			accepted: []string{
				"id",
				"id + id * id",
				"( id + id ) * id",
				"( ( id ) )",
			},
			rejected: []string{
				"",
				"id +",
				"( id",
				"id id",
				"+ id",
			},
		},
		{
			caption: "nullable symbols",
			prods: []string{
				"S: A B c",
				"A: a",
				"A:",
				"B: b",
				"B:",
			},
			accepted: []string{
				"c",
				"a c",
				"b c",
				"a b c",
			},
			rejected: []string{
				"",
				"b a c",
				"a b",
			},
		},
		{
			caption: "right recursion",
			prods: []string{
				"list: x list",
				"list: x",
			},
			accepted: []string{
				"x",
				"x x x x",
			},
			rejected: []string{
				"",
			},
		},
		{
			caption: "empty language member",
			prods: []string{
				"S: a S b",
				"S:",
			},
			accepted: []string{
				"",
				"a b",
				"a a b b",
			},
			rejected: []string{
				"a",
				"a b b",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			tg := newTestGrammar(t, tt.prods...)
			tab, err := NewGenerator().Generate(tg.gram)
			if err != nil {
				t.Fatal(err)
			}
			for _, src := range tt.accepted {
				if !parse(tab, tg.tokens(t, src)) {
					t.Errorf("input must be accepted: %#v", src)
				}
			}
			for _, src := range tt.rejected {
				if parse(tab, tg.tokens(t, src)) {
					t.Errorf("input must be rejected: %#v", src)
				}
			}
		})
	}
}

func newAmbiguousExprGrammar(t *testing.T) *testGrammar {
	// 1: E → E + E, 2: E → E * E, 3: E → id
	return newTestGrammar(t,
		"E: E + E",
		"E: E * E",
		"E: id",
	)
}

func TestGenerate_UnresolvedConflicts(t *testing.T) {
	tg := newAmbiguousExprGrammar(t)
	tab, err := NewGenerator().Generate(tg.gram)
	if !errors.Is(err, ErrConflicts) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrConflicts, err)
	}
	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("error must be a *ConflictError: %v", err)
	}
	if tab == nil {
		t.Fatalf("a table must be returned even if conflicts remain")
	}
	if len(tab.Conflicts) != 4 || len(cErr.Conflicts) != 4 {
		t.Fatalf("unexpected conflict count; want: 4, got: %v", len(tab.Conflicts))
	}
	for _, c := range tab.Conflicts {
		if len(c.Items) != 2 {
			t.Fatalf("a conflict must list a shift item and a reduce item: %v", c)
		}
		// Shift takes precedence over reduce.
		if ty, _ := DescribeAction(c.Adopted); ty != ActionTypeShift {
			t.Fatalf("a shift action must be adopted: %v", c)
		}
		if tab.Lookup(c.State, c.Symbol) != c.Adopted {
			t.Fatalf("the table must hold the adopted action: %v", c)
		}
	}
}

func TestGenerate_ConflictResolution(t *testing.T) {
	tg := newAmbiguousExprGrammar(t)
	gen := NewGenerator()
	// + and * are left-associative.
	gen.AddConflictResolution(1, 3, 1, 1)
	gen.AddConflictResolution(2, 3, 2, 1)
	// * binds tighter than +.
	gen.AddConflictResolution(2, 1, 1, 3)
	gen.AddConflictResolution(2, 3, 1, 1)
	tab, err := gen.Generate(tg.gram)
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.Conflicts) != 0 {
		t.Fatalf("conflicts must be resolved: %v", tab.Conflicts)
	}
	for _, src := range []string{"id", "id + id * id", "id * id + id * id"} {
		if !parse(tab, tg.tokens(t, src)) {
			t.Fatalf("input must be accepted: %#v", src)
		}
	}

	plus := tg.sym(t, "+")
	// In the state holding E → E + E・, + reduces and * shifts.
	found := false
	for state, kernel := range tab.Kernels {
		if !containsItem(kernel, Item{Production: 1, Position: 3}) {
			continue
		}
		found = true
		if ty, prod := DescribeAction(tab.Lookup(state, plus)); ty != ActionTypeReduce || prod != 1 {
			t.Fatalf("+ must reduce E → E + E; got: %v %v", ty, prod)
		}
		if ty, _ := DescribeAction(tab.Lookup(state, tg.sym(t, "*"))); ty != ActionTypeShift {
			t.Fatalf("* must shift; got: %v", ty)
		}
	}
	if !found {
		t.Fatalf("no state holds E → E + E・")
	}
}

func TestGenerate_ContradictoryResolutions(t *testing.T) {
	tg := newAmbiguousExprGrammar(t)
	gen := NewGenerator()
	gen.AddConflictResolution(1, 3, 1, 1)
	gen.AddConflictResolution(1, 1, 1, 3)
	tab, err := gen.Generate(tg.gram)
	if !errors.Is(err, ErrConflicts) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrConflicts, err)
	}

	plus := tg.sym(t, "+")
	found := false
	for _, c := range tab.Conflicts {
		if c.Symbol != plus || !containsItem(c.Items, Item{Production: 1, Position: 3}) {
			continue
		}
		found = true
		if !reflect.DeepEqual(c.Items, []Item{{Production: 1, Position: 1}, {Production: 1, Position: 3}}) {
			t.Fatalf("unexpected items: %v", c.Items)
		}
	}
	if !found {
		t.Fatalf("the contradicted cell must be reported: %v", tab.Conflicts)
	}
}

func TestGenerate_ReduceReduceConflict(t *testing.T) {
	tests := []struct {
		caption   string
		prods     []string
		resolve   func(gen *Generator)
		conflicts int
		adopted   int
	}{
		{
			caption: "the lower production is adopted",
			prods: []string{
				"S: A",
				"S: B",
				"A: x",
				"B: x",
			},
			conflicts: 1,
			adopted:   newReduceAction(3),
		},
		{
			caption: "a directive settles two reductions",
			prods: []string{
				"S: A",
				"S: B",
				"A: x",
				"B: x",
			},
			resolve: func(gen *Generator) {
				gen.AddConflictResolution(4, 1, 3, 1)
			},
			conflicts: 0,
			adopted:   newReduceAction(4),
		},
		{
			caption: "directives never settle more than two actions",
			prods: []string{
				"S: A",
				"S: B",
				"S: C",
				"A: x",
				"B: x",
				"C: x",
			},
			resolve: func(gen *Generator) {
				gen.AddConflictResolution(4, 1, 5, 1)
				gen.AddConflictResolution(4, 1, 6, 1)
			},
			conflicts: 1,
			adopted:   newReduceAction(4),
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			tg := newTestGrammar(t, tt.prods...)
			gen := NewGenerator()
			if tt.resolve != nil {
				tt.resolve(gen)
			}
			tab, err := gen.Generate(tg.gram)
			if tt.conflicts > 0 {
				if !errors.Is(err, ErrConflicts) {
					t.Fatalf("unexpected error; want: %v, got: %v", ErrConflicts, err)
				}
			} else if err != nil {
				t.Fatal(err)
			}
			if len(tab.Conflicts) != tt.conflicts {
				t.Fatalf("unexpected conflicts; want: %v, got: %v", tt.conflicts, tab.Conflicts)
			}

			// The state reached by x from the initial state holds the reductions.
			state := tab.Lookup(stateNumInitial, tg.sym(t, "x"))
			if cell := tab.Lookup(state, tab.EOF); cell != tt.adopted {
				t.Fatalf("unexpected cell; want: %v, got: %v", tt.adopted, cell)
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	prods := []string{
		"E: E + T",
		"E: T",
		"T: T * F",
		"T: F",
		"F: ( E )",
		"F: id",
	}
	var prev *ParsingTable
	var prevHash string
	for i := 0; i < 5; i++ {
		tab, err := NewGenerator().Generate(newTestGrammar(t, prods...).gram)
		if err != nil {
			t.Fatal(err)
		}
		hash, err := structhash.Hash(tab, 1)
		if err != nil {
			t.Fatal(err)
		}
		if prev != nil {
			if !reflect.DeepEqual(tab, prev) {
				t.Fatalf("tables of the same grammar must be identical")
			}
			if hash != prevHash {
				t.Fatalf("fingerprints of the same grammar must be identical; want: %v, got: %v", prevHash, hash)
			}
		}
		prev = tab
		prevHash = hash
	}
}

func containsItem(items []Item, item Item) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}
