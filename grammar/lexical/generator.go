package lexical

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nihei9/lrgen/grammar/lexical/dfa"
	"github.com/nihei9/lrgen/grammar/lexical/nfa"
	psr "github.com/nihei9/lrgen/grammar/lexical/parser"
	spec "github.com/nihei9/lrgen/spec/grammar"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.lexical'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.lexical")
}

type pattern struct {
	kind   spec.LexKindName
	tree   psr.CPTree
	action int
	modes  []int
}

// Generator compiles a set of patterns into one DFA. Register modes, fragments, and patterns first, then call
// Generate once. A generator is not safe for concurrent use.
type Generator struct {
	modes     []string
	modeIDs   map[string]int
	fragments map[spec.LexKindName]psr.CPTree
	patterns  []*pattern

	// NFANodesMax and DFANodesMax bound the automata; zero means the package defaults.
	NFANodesMax int
	DFANodesMax int
}

func NewGenerator() *Generator {
	return &Generator{
		modeIDs:   map[string]int{},
		fragments: map[spec.LexKindName]psr.CPTree{},
	}
}

// AddMode registers a mode and returns its index. Modes get indexes in the order of registration.
func (g *Generator) AddMode(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("a mode name must be non-empty")
	}
	if _, ok := g.modeIDs[name]; ok {
		return 0, fmt.Errorf("mode %v is already defined", name)
	}
	g.modes = append(g.modes, name)
	g.modeIDs[name] = len(g.modes) - 1
	return len(g.modes) - 1, nil
}

// AddFragment registers a named sub-pattern patterns can refer to as `\f{name}`.
func (g *Generator) AddFragment(name spec.LexKindName, regex string) error {
	if _, ok := g.fragments[name]; ok {
		return fmt.Errorf("fragment %v is already defined", name)
	}
	tree, err := parse(name, regex, true)
	if err != nil {
		return err
	}
	g.fragments[name] = tree
	return nil
}

// AddPattern registers a pattern matched in the modes and returns its ordinal. When the longest matches of
// several patterns have the same length, the pattern with the lowest ordinal wins. action is reported by the
// DFA nodes accepting the pattern.
func (g *Generator) AddPattern(kind spec.LexKindName, regex string, action int, modes ...string) (int, error) {
	if len(modes) == 0 {
		return 0, fmt.Errorf("%w: pattern %v belongs to no mode", ErrUnknownMode, kind)
	}
	var modeIDs []int
	for _, m := range modes {
		id, ok := g.modeIDs[m]
		if !ok {
			return 0, fmt.Errorf("%w: %v (pattern %v)", ErrUnknownMode, m, kind)
		}
		modeIDs = append(modeIDs, id)
	}
	tree, err := parse(kind, regex, false)
	if err != nil {
		return 0, err
	}
	g.patterns = append(g.patterns, &pattern{
		kind:   kind,
		tree:   tree,
		action: action,
		modes:  modeIDs,
	})
	return len(g.patterns) - 1, nil
}

func parse(kind spec.LexKindName, regex string, fragment bool) (psr.CPTree, error) {
	p := psr.NewParser(kind, strings.NewReader(regex))
	tree, err := p.Parse()
	if err != nil {
		if err == psr.ParseErr {
			detail, cause := p.Error()
			return nil, &CompileError{
				Kind:     kind,
				Fragment: fragment,
				Cause:    cause,
				Detail:   detail,
			}
		}
		return nil, &CompileError{
			Kind:     kind,
			Fragment: fragment,
			Cause:    err,
		}
	}
	return tree, nil
}

// Generate embeds the fragments into the patterns and builds the DFA. The i-th start node of the DFA belongs
// to the i-th mode.
func (g *Generator) Generate() (*dfa.DFA, error) {
	if len(g.modes) == 0 {
		return nil, fmt.Errorf("%w: no mode is defined", ErrUnknownMode)
	}

	err := psr.CompleteFragments(g.fragments)
	if err != nil {
		return nil, CompileErrors{
			{
				Fragment: true,
				Cause:    err,
			},
		}
	}

	var cerrs CompileErrors
	for _, p := range g.patterns {
		complete, err := psr.ApplyFragments(p.tree, g.fragments)
		if err != nil {
			return nil, err
		}
		if !complete {
			_, frags, err := p.tree.Describe()
			if err != nil {
				return nil, err
			}
			var undefined []string
			for _, f := range frags {
				if _, ok := g.fragments[f]; !ok {
					undefined = append(undefined, f.String())
				}
			}
			cerrs = append(cerrs, &CompileError{
				Kind:   p.kind,
				Cause:  psr.ErrUndefinedFragment,
				Detail: strings.Join(undefined, ", "),
			})
		}
	}
	if len(cerrs) > 0 {
		return nil, cerrs
	}

	n := nfa.New(g.NFANodesMax)
	for _, m := range g.modes {
		_, err := n.AddMode(m)
		if err != nil {
			return nil, wrapOverflow(err)
		}
	}
	for _, p := range g.patterns {
		_, err := n.AddPattern(p.tree, p.action, p.modes)
		if err != nil {
			return nil, wrapOverflow(err)
		}
	}
	tracer().Debugf("NFA: %v nodes, %v patterns, %v modes", len(n.Nodes), len(n.Patterns), len(n.Modes))

	d, err := dfa.GenDFA(n, g.DFANodesMax)
	if err != nil {
		return nil, wrapOverflow(err)
	}
	return d, nil
}

func wrapOverflow(err error) error {
	if errors.Is(err, nfa.ErrOverflow) || errors.Is(err, dfa.ErrOverflow) {
		return fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	return err
}

// Cleanup releases the registered patterns so that the generator can be reused.
func (g *Generator) Cleanup() {
	g.modes = nil
	g.modeIDs = map[string]int{}
	g.fragments = map[spec.LexKindName]psr.CPTree{}
	g.patterns = nil
}
