package grammar

type Terminal struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Skip    bool   `json:"skip"`
}

type NonTerminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type Production struct {
	Number int    `json:"number"`
	LHS    int    `json:"lhs"`
	RHS    []int  `json:"rhs"`
	Label  string `json:"label,omitempty"`
}

type Item struct {
	Production int `json:"production"`
	Dot        int `json:"dot"`
}

type Transition struct {
	Symbol int `json:"symbol"`
	State  int `json:"state"`
}

type Reduce struct {
	LookAhead  []int `json:"look_ahead"`
	Production int   `json:"production"`
}

// Conflict is a cell left with several actions. Exactly one of AdoptedState and AdoptedProduction is set.
type Conflict struct {
	Symbol            int     `json:"symbol"`
	Items             []*Item `json:"items"`
	AdoptedState      *int    `json:"adopted_state,omitempty"`
	AdoptedProduction *int    `json:"adopted_production,omitempty"`
}

type State struct {
	Number    int           `json:"number"`
	Kernel    []*Item       `json:"kernel"`
	Shift     []*Transition `json:"shift"`
	Reduce    []*Reduce     `json:"reduce"`
	GoTo      []*Transition `json:"goto"`
	Accept    bool          `json:"accept"`
	Conflicts []*Conflict   `json:"conflicts"`
}

type Report struct {
	Terminals    []*Terminal    `json:"terminals"`
	NonTerminals []*NonTerminal `json:"non_terminals"`
	Productions  []*Production  `json:"productions"`
	States       []*State       `json:"states"`
}
