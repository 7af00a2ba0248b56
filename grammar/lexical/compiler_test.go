package lexical

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	psr "github.com/nihei9/lrgen/grammar/lexical/parser"
	spec "github.com/nihei9/lrgen/spec/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestLexSpec_Validate(t *testing.T) {
	tests := []struct {
		caption     string
		entries     []*LexEntry
		unknownMode bool
	}{
		{
			caption: "an empty pattern",
			entries: []*LexEntry{
				{
					Kind: "foo",
				},
			},
		},
		{
			caption: "an empty kind name",
			entries: []*LexEntry{
				{
					Pattern: "foo",
				},
			},
		},
		{
			caption: "a push to a mode no kind belongs to",
			entries: []*LexEntry{
				{
					Kind:    "foo",
					Pattern: "foo",
					Push:    "bar",
				},
			},
			unknownMode: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			s := &LexSpec{
				Entries: tt.entries,
			}
			err := s.Validate()
			if err == nil {
				t.Fatalf("expected error didn't occur")
			}
			if errors.Is(err, ErrUnknownMode) != tt.unknownMode {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		Caption string
		Spec    string
		Err     bool
	}{
		{
			Caption: "allow duplicates names between fragments and non-fragments",
			Spec: `
{
    "entries": [
        {
            "kind": "a2z",
            "pattern": "\\f{a2z}"
        },
        {
            "fragment": true,
            "kind": "a2z",
            "pattern": "[a-z]"
        }
    ]
}
`,
		},
		{
			Caption: "don't allow duplicates names in non-fragments",
			Spec: `
{
    "entries": [
        {
            "kind": "a2z",
            "pattern": "a|b|c|d|e|f|g|h|i|j|k|l|m|n|o|p|q|r|s|t|u|v|w|x|y|z"
        },
        {
            "kind": "a2z",
            "pattern": "[a-z]"
        }
    ]
}
`,
			Err: true,
		},
		{
			Caption: "don't allow duplicates names in fragments",
			Spec: `
{
    "entries": [
        {
            "kind": "a2z",
            "pattern": "\\f{a2z}"
        },
        {
            "fragment": true,
            "kind": "a2z",
            "pattern": "a|b|c|d|e|f|g|h|i|j|k|l|m|n|o|p|q|r|s|t|u|v|w|x|y|z"
        },
        {
            "fragment": true,
            "kind": "a2z",
            "pattern": "[a-z]"
        }
    ]
}
`,
			Err: true,
		},
		{
			Caption: "allow kinds belonging only to non-default modes",
			Spec: `
{
    "entries": [
        {
            "kind": "quote",
            "pattern": "\"",
            "modes": ["string"],
            "pop": true
        }
    ]
}
`,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %s", i, tt.Caption), func(t *testing.T) {
			lspec := &LexSpec{}
			err := json.Unmarshal([]byte(tt.Spec), lspec)
			if err != nil {
				t.Fatalf("%v", err)
			}
			for _, lv := range []int{CompressionLevelMin, CompressionLevelMax} {
				clspec, err, _ := Compile(lspec, lv)
				if tt.Err {
					if err == nil {
						t.Fatalf("expected an error")
					}
					if clspec != nil {
						t.Fatalf("Compile function mustn't return a compiled specification")
					}
				} else {
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					if clspec == nil {
						t.Fatalf("Compile function must return a compiled specification")
					}
				}
			}
		})
	}
}

// scan returns the kind matching the whole input in the mode, or LexKindIDNil.
func scan(s *spec.LexicalSpec, mode spec.LexModeID, input string) spec.LexKindID {
	tab := s.DFA
	rs := []rune(input)
	state := s.InitialStates[mode]
	for pos := 0; ; pos++ {
		var holds []spec.AnchorKind
		if pos == 0 {
			holds = append(holds, spec.AnchorStartOfInput, spec.AnchorStartOfLine)
		} else if rs[pos-1] == '\n' {
			holds = append(holds, spec.AnchorStartOfLine)
		}
		if pos == len(rs) {
			holds = append(holds, spec.AnchorEndOfInput, spec.AnchorEndOfLine)
		} else if rs[pos] == '\n' {
			holds = append(holds, spec.AnchorEndOfLine)
		}
		for changed := true; changed; {
			changed = false
			for _, k := range holds {
				if next := tab.AnchorNext(state, k); next != spec.StateIDNil {
					state = next
					changed = true
				}
			}
		}
		if pos == len(rs) {
			return tab.AcceptingStates[state]
		}
		state = tab.Next(state, tab.SymbolGroups.GroupOf(rs[pos]))
		if state == spec.StateIDNil {
			return spec.LexKindIDNil
		}
	}
}

func TestCompile_Modes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lexical")
	defer teardown()

	lspec := &LexSpec{
		Entries: []*LexEntry{
			{
				Kind:     "digit",
				Pattern:  "[0-9]",
				Fragment: true,
			},
			{
				Kind:    "int",
				Pattern: "\\f{digit}+",
			},
			{
				Kind:    "if",
				Pattern: "if",
			},
			{
				Kind:    "id",
				Pattern: "[A-Za-z_][0-9A-Za-z_]*",
			},
			{
				Kind:    "comment",
				Pattern: "^#[^\n]*",
			},
			{
				Kind:    "string_open",
				Pattern: "\"",
				Push:    "string",
			},
			{
				Kind:    "char_seq",
				Pattern: "[^\"\\\\]+",
				Modes:   []spec.LexModeName{"string"},
			},
			{
				Kind:    "string_close",
				Pattern: "\"",
				Modes:   []spec.LexModeName{"string"},
				Pop:     true,
			},
		},
	}
	for lv := CompressionLevelMin; lv <= CompressionLevelMax; lv++ {
		t.Run(fmt.Sprintf("compression level %v", lv), func(t *testing.T) {
			s, err, cerrs := Compile(lspec, lv)
			if err != nil {
				t.Fatalf("%v: %v", err, cerrs)
			}

			expectedModes := []spec.LexModeName{"", "default", "string"}
			if len(s.ModeNames) != len(expectedModes) {
				t.Fatalf("unexpected modes: %v", s.ModeNames)
			}
			for i, m := range expectedModes {
				if s.ModeNames[i] != m {
					t.Fatalf("unexpected modes: %v", s.ModeNames)
				}
			}
			expectedKinds := []spec.LexKindName{"", "int", "if", "id", "comment", "string_open", "char_seq", "string_close"}
			for i, k := range expectedKinds {
				if s.KindNames[i] != k {
					t.Fatalf("unexpected kinds: %v", s.KindNames)
				}
			}
			if len(s.InitialStates) != 3 || s.InitialStates[0] != spec.StateIDNil {
				t.Fatalf("unexpected initial states: %v", s.InitialStates)
			}
			if s.Push[5] != 2 || s.Pop[7] != 1 || s.Pop[5] != 0 {
				t.Fatalf("unexpected push/pop: %v, %v", s.Push, s.Pop)
			}
			if len(s.ModeKinds[1]) != 5 || len(s.ModeKinds[2]) != 2 {
				t.Fatalf("unexpected kinds per mode: %v", s.ModeKinds)
			}
			if lv == CompressionLevelMin && s.DFA.Transition != nil {
				t.Fatalf("level 0 must keep the transition table uncompressed")
			}
			if lv > CompressionLevelMin && (s.DFA.Transition == nil || s.DFA.UncompressedTransition != nil) {
				t.Fatalf("the transition table must be compressed")
			}

			tests := []struct {
				mode  spec.LexModeID
				input string
				kind  spec.LexKindID
			}{
				{mode: 1, input: "123", kind: 1},
				{mode: 1, input: "if", kind: 2},
				{mode: 1, input: "foo_1", kind: 3},
				{mode: 1, input: "iff", kind: 3},
				{mode: 1, input: "# comment", kind: 4},
				{mode: 1, input: "\"", kind: 5},
				{mode: 1, input: "1a", kind: 0},
				{mode: 2, input: "hello, world", kind: 6},
				{mode: 2, input: "\"", kind: 7},
				{mode: 2, input: "123", kind: 6},
			}
			for _, tt := range tests {
				if kind := scan(s, tt.mode, tt.input); kind != tt.kind {
					t.Errorf("unexpected kind: mode: %v, input: %#v, want: %v, got: %v", tt.mode, tt.input, tt.kind, kind)
				}
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		caption  string
		entries  []*LexEntry
		kinds    []spec.LexKindName
		cause    error
		overflow bool
	}{
		{
			caption: "syntax errors in all patterns are reported",
			entries: []*LexEntry{
				{Kind: "a", Pattern: "(a"},
				{Kind: "b", Pattern: "b"},
				{Kind: "c", Pattern: "[c"},
			},
			kinds: []spec.LexKindName{"a", "c"},
		},
		{
			caption: "a syntax error in a fragment",
			entries: []*LexEntry{
				{Kind: "a", Pattern: "\\f{f}"},
				{Kind: "f", Pattern: "a|", Fragment: true},
			},
			kinds: []spec.LexKindName{"f"},
		},
		{
			caption: "an undefined fragment",
			entries: []*LexEntry{
				{Kind: "a", Pattern: "\\f{f}"},
			},
			kinds: []spec.LexKindName{"a"},
			cause: psr.ErrUndefinedFragment,
		},
		{
			caption: "cyclic fragments",
			entries: []*LexEntry{
				{Kind: "a", Pattern: "\\f{f1}"},
				{Kind: "f1", Pattern: "1\\f{f2}", Fragment: true},
				{Kind: "f2", Pattern: "2\\f{f1}", Fragment: true},
			},
			kinds: []spec.LexKindName{""},
			cause: psr.ErrCyclicFragment,
		},
		{
			caption: "a too large repetition count",
			entries: []*LexEntry{
				{Kind: "a", Pattern: "a{1001}"},
			},
			kinds:    []spec.LexKindName{"a"},
			overflow: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			s, err, cerrs := Compile(&LexSpec{Entries: tt.entries}, CompressionLevelMax)
			if err == nil || s != nil {
				t.Fatalf("expected error didn't occur")
			}
			if len(cerrs) != len(tt.kinds) {
				t.Fatalf("unexpected compile errors: want: %v, got: %v", tt.kinds, cerrs)
			}
			for i, cerr := range cerrs {
				if cerr.Kind != tt.kinds[i] {
					t.Fatalf("unexpected kind: want: %v, got: %v", tt.kinds[i], cerr.Kind)
				}
				if !errors.Is(cerr, ErrSyntax) {
					t.Fatalf("a compile error must be a syntax error: %v", cerr)
				}
				if tt.cause != nil && !errors.Is(cerr, tt.cause) {
					t.Fatalf("unexpected cause: want: %v, got: %v", tt.cause, cerr.Cause)
				}
				if errors.Is(cerr, ErrOverflow) != tt.overflow {
					t.Fatalf("unexpected overflow: %v", cerr)
				}
			}
		})
	}
}

func TestGenerator(t *testing.T) {
	g := NewGenerator()
	if _, err := g.Generate(); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("a generator without modes must fail: %v", err)
	}
	if _, err := g.AddMode("default"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddMode("default"); err == nil {
		t.Fatalf("a duplicate mode must be rejected")
	}
	if _, err := g.AddPattern("a", "a", 1, "string"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("a pattern in an undefined mode must be rejected: %v", err)
	}
	if _, err := g.AddPattern("a", "a", 1); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("a pattern without modes must be rejected: %v", err)
	}
	if err := g.AddFragment("f", "[0-9]"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddFragment("f", "[0-9]"); err == nil {
		t.Fatalf("a duplicate fragment must be rejected")
	}
	ord, err := g.AddPattern("num", "\\f{f}+", 7, "default")
	if err != nil {
		t.Fatal(err)
	}
	if ord != 0 {
		t.Fatalf("unexpected ordinal: %v", ord)
	}
	d, err := g.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if len(d.ModeStarts) != 1 {
		t.Fatalf("unexpected start nodes: %v", d.ModeStarts)
	}
	found := false
	for _, n := range d.Nodes {
		if n.Accept == 0 && n.Action == 7 {
			found = true
		}
	}
	if !found {
		t.Fatalf("no node accepts the pattern")
	}

	g.Cleanup()
	if _, err := g.Generate(); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("Cleanup must remove the modes: %v", err)
	}

	g.DFANodesMax = 5
	if _, err := g.AddMode("default"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddPattern("long", "abcdefghij", 1, "default"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(); !errors.Is(err, ErrOverflow) {
		t.Fatalf("unexpected error: want: %v, got: %v", ErrOverflow, err)
	}
}
