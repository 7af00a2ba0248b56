package tester

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type TreeDiff struct {
	ExpectedPath string
	ActualPath   string
	Message      string
}

func newTreeDiff(expected, actual *Tree, message string) *TreeDiff {
	return &TreeDiff{
		ExpectedPath: expected.path(),
		ActualPath:   actual.path(),
		Message:      message,
	}
}

// Tree is an expected syntax tree. A terminal node has a lexeme, and a kind `_` matches any kind.
type Tree struct {
	Parent   *Tree   `yaml:"-"`
	Offset   int     `yaml:"-"`
	Kind     string  `yaml:"kind"`
	Lexeme   string  `yaml:"lexeme,omitempty"`
	Children []*Tree `yaml:"children,omitempty"`
}

func NewNonTerminalTree(kind string, children ...*Tree) *Tree {
	return &Tree{
		Kind:     kind,
		Children: children,
	}
}

func NewTerminalNode(kind string, lexeme string) *Tree {
	return &Tree{
		Kind:   kind,
		Lexeme: lexeme,
	}
}

func (t *Tree) Fill() *Tree {
	for i, c := range t.Children {
		c.Parent = t
		c.Offset = i
		c.Fill()
	}
	return t
}

func (t *Tree) path() string {
	if t.Parent == nil {
		return t.Kind
	}
	return fmt.Sprintf("%v.[%v]%v", t.Parent.path(), t.Offset, t.Kind)
}

// Format returns the tree in the S-expression form.
func (t *Tree) Format() []byte {
	var b bytes.Buffer
	t.format(&b, 0)
	return b.Bytes()
}

func (t *Tree) format(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("    ")
	}
	buf.WriteString("(")
	buf.WriteString(t.Kind)
	if t.Lexeme != "" {
		fmt.Fprintf(buf, " %q", t.Lexeme)
	}
	if len(t.Children) > 0 {
		buf.WriteString("\n")
		for i, c := range t.Children {
			c.format(buf, depth+1)
			if i < len(t.Children)-1 {
				buf.WriteString("\n")
			}
		}
	}
	buf.WriteString(")")
}

func DiffTree(expected, actual *Tree) []*TreeDiff {
	if expected == nil && actual == nil {
		return nil
	}
	// _ matches any symbols.
	if expected.Kind != "_" && actual.Kind != expected.Kind {
		msg := fmt.Sprintf("unexpected kind: expected '%v' but got '%v'", expected.Kind, actual.Kind)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if expected.Lexeme != actual.Lexeme {
		msg := fmt.Sprintf("unexpected lexeme: expected '%v' but got '%v'", expected.Lexeme, actual.Lexeme)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if len(actual.Children) != len(expected.Children) {
		msg := fmt.Sprintf("unexpected node count: expected %v but got %v", len(expected.Children), len(actual.Children))
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	var diffs []*TreeDiff
	for i, exp := range expected.Children {
		if ds := DiffTree(exp, actual.Children[i]); len(ds) > 0 {
			diffs = append(diffs, ds...)
		}
	}
	return diffs
}

// TestCase is a source text with either the expected tree or an expected syntax error.
type TestCase struct {
	Description string `yaml:"description"`
	Source      string `yaml:"source"`
	Output      *Tree  `yaml:"output"`
	SyntaxError bool   `yaml:"syntax_error"`
}

var (
	errNoOutput   = errors.New("a test case needs either output or syntax_error")
	errBothOutput = errors.New("a test case cannot have both output and syntax_error")
)

// ParseTestCase reads a test case written in YAML.
func ParseTestCase(r io.Reader) (*TestCase, error) {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	c := &TestCase{}
	err := d.Decode(c)
	if err != nil {
		return nil, fmt.Errorf("invalid test case: %w", err)
	}
	switch {
	case c.Output == nil && !c.SyntaxError:
		return nil, errNoOutput
	case c.Output != nil && c.SyntaxError:
		return nil, errBothOutput
	}
	if c.Output != nil {
		c.Output.Fill()
	}
	return c, nil
}
