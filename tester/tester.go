package tester

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/nihei9/lrgen/driver/parser"
	gspec "github.com/nihei9/lrgen/spec/grammar"
)

type TestResult struct {
	TestCasePath string
	Error        error
	Diffs        []*TreeDiff
}

func (r *TestResult) String() string {
	if r.Error != nil {
		const indent1 = "    "
		const indent2 = indent1 + indent1

		msgLines := strings.Split(r.Error.Error(), "\n")
		msg := fmt.Sprintf("Failed %v:\n%v%v", r.TestCasePath, indent1, strings.Join(msgLines, "\n"+indent1))
		if len(r.Diffs) == 0 {
			return msg
		}
		var diffLines []string
		for _, diff := range r.Diffs {
			diffLines = append(diffLines, diff.Message)
			diffLines = append(diffLines, fmt.Sprintf("%vexpected path: %v", indent1, diff.ExpectedPath))
			diffLines = append(diffLines, fmt.Sprintf("%vactual path:   %v", indent1, diff.ActualPath))
		}
		return fmt.Sprintf("%v\n%v%v", msg, indent2, strings.Join(diffLines, "\n"+indent2))
	}
	return fmt.Sprintf("Passed %v", r.TestCasePath)
}

type TestCaseWithMetadata struct {
	TestCase *TestCase
	FilePath string
	Error    error
}

// ListTestCases reads a test case file, or every test case file under a directory recursively.
func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		c, err := parseTestCase(testPath)
		return []*TestCaseWithMetadata{
			{
				TestCase: c,
				FilePath: testPath,
				Error:    err,
			},
		}
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cs := ListTestCases(filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func parseTestCase(testCasePath string) (*TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTestCase(f)
}

type Tester struct {
	Grammar *gspec.CompiledGrammar
	Cases   []*TestCaseWithMetadata
}

func (t *Tester) Run() []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, runTest(t.Grammar, c))
	}
	return rs
}

func runTest(g *gspec.CompiledGrammar, c *TestCaseWithMetadata) *TestResult {
	var p *parser.Parser
	var tb *parser.DefaultSyntaxTreeBuilder
	{
		gram := parser.NewGrammar(g)
		toks, err := parser.NewTokenStream(g, strings.NewReader(c.TestCase.Source))
		if err != nil {
			return &TestResult{
				TestCasePath: c.FilePath,
				Error:        err,
			}
		}
		tb = parser.NewDefaultSyntaxTreeBuilder()
		p, err = parser.NewParser(toks, gram, parser.SemanticAction(parser.NewCSTActionSet(gram, tb)))
		if err != nil {
			return &TestResult{
				TestCasePath: c.FilePath,
				Error:        err,
			}
		}
	}

	err := p.Parse()
	if err != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}

	synErrs := p.SyntaxErrors()
	if c.TestCase.SyntaxError {
		if len(synErrs) == 0 {
			return &TestResult{
				TestCasePath: c.FilePath,
				Error:        fmt.Errorf("a syntax error was expected, but the parser accepted the source"),
			}
		}
		return &TestResult{
			TestCasePath: c.FilePath,
		}
	}

	if tb.Tree() == nil {
		var err error
		if len(synErrs) > 0 {
			synErr := synErrs[0]
			err = fmt.Errorf("parse tree was not generated: syntax error occurred at %v:%v: %v", synErr.Row+1, synErr.Col+1, synErr.Message)
		} else {
			// Without a syntax error the parser always builds a tree, so this is a bug. We also include a stack trace
			// in the error message to be sure.
			err = fmt.Errorf("parse tree was not generated: no syntax error:\n%v", string(debug.Stack()))
		}
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}

	diffs := DiffTree(c.TestCase.Output, genTree(tb.Tree()).Fill())
	if len(diffs) > 0 {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        fmt.Errorf("output mismatch"),
			Diffs:        diffs,
		}
	}
	return &TestResult{
		TestCasePath: c.FilePath,
	}
}

func genTree(dTree *parser.Node) *Tree {
	if dTree.Type == parser.NodeTypeTerminal {
		return NewTerminalNode(dTree.KindName, dTree.Text)
	}
	var children []*Tree
	if len(dTree.Children) > 0 {
		children = make([]*Tree, len(dTree.Children))
		for i, c := range dTree.Children {
			children[i] = genTree(c)
		}
	}
	return NewNonTerminalTree(dTree.KindName, children...)
}
