package spec

import (
	"errors"
	"fmt"
	"io"

	lerr "github.com/nihei9/lrgen/error"
	"gopkg.in/yaml.v3"
)

// RootNode is a grammar definition:
//
//	name: expr
//	start: expr
//	tokens:
//	  - {name: num, pattern: "[0-9]+"}
//	  - {name: add, pattern: "+", literal: true}
//	productions:
//	  - {lhs: expr, rhs: [expr, add, num], label: add}
//	  - {lhs: expr, rhs: [num]}
type RootNode struct {
	Name        string            `yaml:"name"`
	Start       string            `yaml:"start"`
	Modes       []string          `yaml:"modes"`
	Fragments   []*FragmentNode   `yaml:"fragments"`
	Tokens      []*TokenNode      `yaml:"tokens"`
	Productions []*ProductionNode `yaml:"productions"`
	Resolutions []*ResolutionNode `yaml:"resolutions"`
}

type FragmentNode struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Row     int    `yaml:"-"`
}

func (n *FragmentNode) UnmarshalYAML(value *yaml.Node) error {
	type plain FragmentNode
	if err := value.Decode((*plain)(n)); err != nil {
		return err
	}
	n.Row = value.Line
	return nil
}

// TokenNode defines a terminal. A literal pattern matches its text as it is. A token without modes belongs
// to the default mode.
type TokenNode struct {
	Name    string   `yaml:"name"`
	Pattern string   `yaml:"pattern"`
	Literal bool     `yaml:"literal"`
	Modes   []string `yaml:"modes"`
	Push    string   `yaml:"push"`
	Pop     bool     `yaml:"pop"`
	Skip    bool     `yaml:"skip"`
	Row     int      `yaml:"-"`
}

func (n *TokenNode) UnmarshalYAML(value *yaml.Node) error {
	type plain TokenNode
	if err := value.Decode((*plain)(n)); err != nil {
		return err
	}
	n.Row = value.Line
	return nil
}

// ProductionNode is one alternative of a non-terminal. An empty RHS derives the empty string.
type ProductionNode struct {
	LHS   string   `yaml:"lhs"`
	RHS   []string `yaml:"rhs"`
	Label string   `yaml:"label"`
	Row   int      `yaml:"-"`
}

func (n *ProductionNode) UnmarshalYAML(value *yaml.Node) error {
	type plain ProductionNode
	if err := value.Decode((*plain)(n)); err != nil {
		return err
	}
	n.Row = value.Line
	return nil
}

// ItemNode refers to an LR item by the label of its production and the position of the dot.
type ItemNode struct {
	Label string `yaml:"label"`
	Pos   int    `yaml:"pos"`
}

// ResolutionNode prefers the action of the item Prefer to the one of Over wherever the two compete.
type ResolutionNode struct {
	Prefer *ItemNode `yaml:"prefer"`
	Over   *ItemNode `yaml:"over"`
	Row    int       `yaml:"-"`
}

func (n *ResolutionNode) UnmarshalYAML(value *yaml.Node) error {
	type plain ResolutionNode
	if err := value.Decode((*plain)(n)); err != nil {
		return err
	}
	n.Row = value.Line
	return nil
}

// Parse reads a grammar definition. The returned error is lerr.SpecErrors unless reading src fails.
func Parse(src io.Reader) (*RootNode, error) {
	dec := yaml.NewDecoder(src)
	dec.KnownFields(true)
	root := &RootNode{}
	err := dec.Decode(root)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, lerr.SpecErrors{
				{
					Cause: synErrEmptyDocument,
				},
			}
		}
		return nil, lerr.SpecErrors{
			{
				Cause:  synErrInvalidDocument,
				Detail: err.Error(),
			},
		}
	}

	errs := validate(root)
	if len(errs) > 0 {
		return nil, errs
	}
	return root, nil
}

func validate(root *RootNode) lerr.SpecErrors {
	var errs lerr.SpecErrors
	raise := func(cause error, row int, detail string) {
		errs = append(errs, &lerr.SpecError{
			Cause:  cause,
			Detail: detail,
			Row:    row,
		})
	}

	if root.Name == "" {
		raise(synErrNoName, 0, "")
	}
	if root.Start == "" {
		raise(synErrNoStart, 0, "")
	}
	for _, m := range root.Modes {
		if m == "" {
			raise(synErrEmptyModeName, 0, "")
		}
	}
	for _, f := range root.Fragments {
		if f.Name == "" {
			raise(synErrNoFragmentName, f.Row, "")
		}
		if f.Pattern == "" {
			raise(synErrNoFragmentPat, f.Row, f.Name)
		}
	}
	for _, t := range root.Tokens {
		if t.Name == "" {
			raise(synErrNoTokenName, t.Row, "")
		}
		if t.Pattern == "" {
			raise(synErrNoTokenPattern, t.Row, t.Name)
		}
		if t.Push != "" && t.Pop {
			raise(synErrPushAndPop, t.Row, t.Name)
		}
		for _, m := range t.Modes {
			if m == "" {
				raise(synErrEmptyModeName, t.Row, t.Name)
			}
		}
	}
	if len(root.Productions) == 0 {
		raise(synErrNoProduction, 0, "")
	}
	for _, p := range root.Productions {
		if p.LHS == "" {
			raise(synErrNoProductionName, p.Row, "")
		}
	}
	for _, r := range root.Resolutions {
		if r.Prefer == nil || r.Over == nil {
			raise(synErrResolutionNoItem, r.Row, "")
			continue
		}
		for _, item := range []*ItemNode{r.Prefer, r.Over} {
			if item.Label == "" {
				raise(synErrItemNoLabel, r.Row, "")
			}
			if item.Pos < 0 {
				raise(synErrNegativePos, r.Row, fmt.Sprintf("%v: %v", item.Label, item.Pos))
			}
		}
	}

	return errs
}
