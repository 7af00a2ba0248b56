package spec

import (
	"errors"
	"strings"
	"testing"

	lerr "github.com/nihei9/lrgen/error"
)

func TestParse(t *testing.T) {
	src := `
name: expr
start: expr
modes: [default, string]
fragments:
  - {name: digit, pattern: "[0-9]"}
tokens:
  - {name: num, pattern: "\\f{digit}+"}
  - {name: add, pattern: "+", literal: true}
  - {name: ws, pattern: "[ \\t]+", skip: true}
  - {name: quote, pattern: "\"", push: string}
  - name: str_end
    pattern: "\""
    modes: [string]
    pop: true
productions:
  - {lhs: expr, rhs: [expr, add, num], label: add}
  - {lhs: expr, rhs: [num]}
  - lhs: expr
resolutions:
  - {prefer: {label: add, pos: 3}, over: {label: add, pos: 1}}
`
	root, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	if root.Name != "expr" || root.Start != "expr" {
		t.Fatalf("unexpected name or start symbol: %v, %v", root.Name, root.Start)
	}
	if len(root.Modes) != 2 || root.Modes[1] != "string" {
		t.Fatalf("unexpected modes: %v", root.Modes)
	}
	if len(root.Fragments) != 1 || root.Fragments[0].Name != "digit" || root.Fragments[0].Pattern != "[0-9]" || root.Fragments[0].Row != 6 {
		t.Fatalf("unexpected fragments: %+v", root.Fragments)
	}

	expectedTokens := []*TokenNode{
		{Name: "num", Pattern: `\f{digit}+`, Row: 8},
		{Name: "add", Pattern: "+", Literal: true, Row: 9},
		{Name: "ws", Pattern: `[ \t]+`, Skip: true, Row: 10},
		{Name: "quote", Pattern: `"`, Push: "string", Row: 11},
		{Name: "str_end", Pattern: `"`, Modes: []string{"string"}, Pop: true, Row: 12},
	}
	if len(root.Tokens) != len(expectedTokens) {
		t.Fatalf("unexpected token count: want: %v, got: %v", len(expectedTokens), len(root.Tokens))
	}
	for i, expected := range expectedTokens {
		testToken(t, expected, root.Tokens[i])
	}

	expectedProds := []*ProductionNode{
		{LHS: "expr", RHS: []string{"expr", "add", "num"}, Label: "add", Row: 17},
		{LHS: "expr", RHS: []string{"num"}, Row: 18},
		{LHS: "expr", Row: 19},
	}
	if len(root.Productions) != len(expectedProds) {
		t.Fatalf("unexpected production count: want: %v, got: %v", len(expectedProds), len(root.Productions))
	}
	for i, expected := range expectedProds {
		actual := root.Productions[i]
		if actual.LHS != expected.LHS || actual.Label != expected.Label || actual.Row != expected.Row || len(actual.RHS) != len(expected.RHS) {
			t.Fatalf("unexpected production: want: %+v, got: %+v", expected, actual)
		}
		for j, sym := range expected.RHS {
			if actual.RHS[j] != sym {
				t.Fatalf("unexpected production: want: %+v, got: %+v", expected, actual)
			}
		}
	}

	if len(root.Resolutions) != 1 {
		t.Fatalf("unexpected resolutions: %+v", root.Resolutions)
	}
	r := root.Resolutions[0]
	if *r.Prefer != (ItemNode{Label: "add", Pos: 3}) || *r.Over != (ItemNode{Label: "add", Pos: 1}) || r.Row != 21 {
		t.Fatalf("unexpected resolution: %+v, %+v, %v", r.Prefer, r.Over, r.Row)
	}
}

func testToken(t *testing.T, expected, actual *TokenNode) {
	t.Helper()

	if actual.Name != expected.Name || actual.Pattern != expected.Pattern || actual.Literal != expected.Literal ||
		actual.Push != expected.Push || actual.Pop != expected.Pop || actual.Skip != expected.Skip || actual.Row != expected.Row {
		t.Fatalf("unexpected token: want: %+v, got: %+v", expected, actual)
	}
	if len(actual.Modes) != len(expected.Modes) {
		t.Fatalf("unexpected modes: want: %v, got: %v", expected.Modes, actual.Modes)
	}
	for i, m := range expected.Modes {
		if actual.Modes[i] != m {
			t.Fatalf("unexpected modes: want: %v, got: %v", expected.Modes, actual.Modes)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		errs    []*SyntaxError
		rows    []int
	}{
		{
			caption: "an empty document",
			src:     ``,
			errs:    []*SyntaxError{synErrEmptyDocument},
			rows:    []int{0},
		},
		{
			caption: "an unknown field",
			src: `
name: a
start: a
production:
  - {lhs: a, rhs: []}
`,
			errs: []*SyntaxError{synErrInvalidDocument},
			rows: []int{0},
		},
		{
			caption: "a grammar without name, start symbol, and productions",
			src: `
tokens:
  - {name: a, pattern: a}
`,
			errs: []*SyntaxError{synErrNoName, synErrNoStart, synErrNoProduction},
			rows: []int{0, 0, 0},
		},
		{
			caption: "invalid tokens and fragments",
			src: `
name: a
start: a
fragments:
  - {name: f}
tokens:
  - {pattern: a}
  - {name: b, pattern: b, push: m, pop: true}
  - {name: c, pattern: c, modes: [""]}
productions:
  - {lhs: a, rhs: [b]}
`,
			errs: []*SyntaxError{synErrNoFragmentPat, synErrNoTokenName, synErrPushAndPop, synErrEmptyModeName},
			rows: []int{5, 7, 8, 9},
		},
		{
			caption: "invalid productions and resolutions",
			src: `
name: a
start: a
productions:
  - {rhs: [b]}
  - {lhs: a, rhs: [b], label: x}
resolutions:
  - {prefer: {label: x, pos: 1}}
  - {prefer: {pos: 1}, over: {label: x, pos: -1}}
`,
			errs: []*SyntaxError{synErrNoProductionName, synErrResolutionNoItem, synErrItemNoLabel, synErrNegativePos},
			rows: []int{5, 8, 9, 9},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			root, err := Parse(strings.NewReader(tt.src))
			if err == nil || root != nil {
				t.Fatalf("expected error didn't occur")
			}
			var specErrs lerr.SpecErrors
			if !errors.As(err, &specErrs) {
				t.Fatalf("unexpected error type: %T", err)
			}
			if len(specErrs) != len(tt.errs) {
				t.Fatalf("unexpected errors: want: %v, got: %v", tt.errs, specErrs)
			}
			for i, e := range specErrs {
				if e.Cause != tt.errs[i] {
					t.Fatalf("unexpected error: want: %v, got: %v", tt.errs[i], e.Cause)
				}
				if e.Row != tt.rows[i] {
					t.Fatalf("unexpected row: want: %v, got: %v (%v)", tt.rows[i], e.Row, e)
				}
			}
		})
	}
}
