package tester

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nihei9/lrgen/grammar"
	def "github.com/nihei9/lrgen/spec"
)

func TestTester_Run(t *testing.T) {
	grammarSrc1 := `
name: test
start: s
tokens:
  - {name: ws, pattern: "[\t ]+", skip: true}
  - {name: foo, pattern: foo, literal: true}
  - {name: bar, pattern: bar, literal: true}
  - {name: baz, pattern: baz, literal: true}
productions:
  - {lhs: s, rhs: [foo, bar, baz]}
`

	grammarSrc2 := `
name: test
start: s
tokens:
  - {name: ws, pattern: "[\t ]+", skip: true}
  - {name: foo, pattern: foo, literal: true}
productions:
  - {lhs: s, rhs: [foos]}
  - {lhs: foos, rhs: [foos, foo]}
  - {lhs: foos, rhs: [foo]}
`

	tests := []struct {
		grammarSrc string
		testSrc    string
		error      bool
	}{
		{
			grammarSrc: grammarSrc1,
			testSrc: `
description: Test
source: foo bar baz
output:
  kind: s
  children:
    - {kind: foo, lexeme: foo}
    - {kind: bar, lexeme: bar}
    - {kind: baz, lexeme: baz}
`,
		},
		{
			grammarSrc: grammarSrc1,
			testSrc: `
description: Test
source: foo baz
syntax_error: true
`,
		},
		{
			grammarSrc: grammarSrc1,
			testSrc: `
description: Test
source: foo bar baz
syntax_error: true
`,
			error: true,
		},
		{
			grammarSrc: grammarSrc1,
			testSrc: `
description: Test
source: foo bar baz
output:
  kind: s
`,
			error: true,
		},
		{
			grammarSrc: grammarSrc1,
			testSrc: `
description: Test
source: foo bar baz
output:
  kind: s
  children:
    - {kind: foo, lexeme: foo}
    - {kind: bar, lexeme: bar}
    - {kind: xxx, lexeme: baz}
`,
			error: true,
		},
		{
			grammarSrc: grammarSrc1,
			testSrc: `
description: Test
source: foo ? baz
output:
  kind: s
`,
			error: true,
		},
		{
			grammarSrc: grammarSrc2,
			testSrc: `
description: Test
source: foo foo foo
output:
  kind: s
  children:
    - kind: foos
      children:
        - kind: foos
          children:
            - kind: foos
              children:
                - {kind: foo, lexeme: foo}
            - {kind: foo, lexeme: foo}
        - {kind: _, lexeme: foo}
`,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
			root, err := def.Parse(strings.NewReader(tt.grammarSrc))
			if err != nil {
				t.Fatal(err)
			}
			cg, _, err := grammar.Compile(root)
			if err != nil {
				t.Fatal(err)
			}
			c, err := ParseTestCase(strings.NewReader(tt.testSrc))
			if err != nil {
				t.Fatal(err)
			}
			tester := &Tester{
				Grammar: cg,
				Cases: []*TestCaseWithMetadata{
					{
						TestCase: c,
					},
				},
			}
			rs := tester.Run()
			if tt.error {
				errOccurred := false
				for _, r := range rs {
					if r.Error != nil {
						errOccurred = true
					}
				}
				if !errOccurred {
					t.Fatal("this test must fail, but it passed")
				}
			} else {
				for _, r := range rs {
					if r.Error != nil {
						t.Fatalf("unexpected error occurred: %v", r)
					}
				}
			}
		})
	}
}

func TestParseTestCase_Errors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
	}{
		{
			caption: "neither output nor syntax_error",
			src:     `source: foo`,
		},
		{
			caption: "both output and syntax_error",
			src: `
source: foo
syntax_error: true
output: {kind: s}
`,
		},
		{
			caption: "an unknown field",
			src: `
source: foo
expected: {kind: s}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := ParseTestCase(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("an error must occur")
			}
		})
	}
}

func TestListTestCases(t *testing.T) {
	dir := t.TempDir()
	err := os.MkdirAll(filepath.Join(dir, "sub"), 0755)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"a.yaml", filepath.Join("sub", "b.yaml")} {
		err := os.WriteFile(filepath.Join(dir, p), []byte("source: foo\nsyntax_error: true\n"), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}

	cs := ListTestCases(dir)
	if len(cs) != 2 {
		t.Fatalf("unexpected test case count: %v", len(cs))
	}
	for _, c := range cs {
		if c.Error != nil {
			t.Fatalf("unexpected error: %v", c.Error)
		}
		if !c.TestCase.SyntaxError {
			t.Fatalf("unexpected test case: %+v", c.TestCase)
		}
	}
}

func TestTree_Format(t *testing.T) {
	tree := NewNonTerminalTree("s",
		NewTerminalNode("foo", "foo"),
		NewNonTerminalTree("bar"),
	)
	expected := `(s
    (foo "foo")
    (bar))`
	if string(tree.Format()) != expected {
		t.Fatalf("unexpected format; want:\n%v\ngot:\n%v", expected, string(tree.Format()))
	}
}
