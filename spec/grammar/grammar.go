package grammar

import "strconv"

type CompiledGrammar struct {
	Name      string         `json:"name"`
	Lexical   *LexicalSpec   `json:"lexical"`
	Syntactic *SyntacticSpec `json:"syntactic"`
}

// StateID represents an ID of a state of a transition table.
type StateID int

const (
	// StateIDNil represents an empty entry of a transition table.
	// When the driver reads this value, it raises an error meaning lexical analysis failed.
	StateIDNil = StateID(0)

	// StateIDMin is the minimum value of the state ID. All valid state IDs are represented as
	// sequential numbers starting from this value.
	StateIDMin = StateID(1)
)

func (id StateID) Int() int {
	return int(id)
}

// LexModeID represents an ID of a lex mode.
type LexModeID int

const (
	LexModeIDNil     = LexModeID(0)
	LexModeIDDefault = LexModeID(1)
)

func (n LexModeID) String() string {
	return strconv.Itoa(int(n))
}

func (n LexModeID) Int() int {
	return int(n)
}

func (n LexModeID) IsNil() bool {
	return n == LexModeIDNil
}

// LexModeName represents a name of a lex mode.
type LexModeName string

const (
	LexModeNameNil     = LexModeName("")
	LexModeNameDefault = LexModeName("default")
)

func (m LexModeName) String() string {
	return string(m)
}

// LexKindID represents an ID of a lexical kind and is unique across all modes.
type LexKindID int

const (
	LexKindIDNil = LexKindID(0)
	LexKindIDMin = LexKindID(1)
)

func (id LexKindID) Int() int {
	return int(id)
}

// LexKindName represents a name of a lexical kind.
type LexKindName string

const LexKindNameNil = LexKindName("")

func (k LexKindName) String() string {
	return string(k)
}

// AnchorKind represents a zero-width assertion about the position a lexer is reading.
type AnchorKind int

const (
	// AnchorStartOfInput holds at offset 0.
	AnchorStartOfInput AnchorKind = iota

	// AnchorStartOfLine holds at offset 0 and right after LF.
	AnchorStartOfLine

	// AnchorEndOfLine holds right before LF and at the end of input.
	AnchorEndOfLine

	// AnchorEndOfInput holds at the end of input.
	AnchorEndOfInput

	AnchorKindCount = 4
)

func (k AnchorKind) String() string {
	switch k {
	case AnchorStartOfInput:
		return `\A`
	case AnchorStartOfLine:
		return "^"
	case AnchorEndOfLine:
		return "$"
	case AnchorEndOfInput:
		return `\z`
	}
	return "?"
}

func (k AnchorKind) Int() int {
	return int(k)
}

type RowDisplacementTable struct {
	OriginalRowCount int   `json:"original_row_count"`
	OriginalColCount int   `json:"original_col_count"`
	EmptyValue       int   `json:"empty_value"`
	Entries          []int `json:"entries"`
	Bounds           []int `json:"bounds"`
	RowDisplacement  []int `json:"row_displacement"`
}

type UniqueEntriesTable struct {
	UniqueEntries             *RowDisplacementTable `json:"unique_entries,omitempty"`
	UncompressedUniqueEntries []int                 `json:"uncompressed_unique_entries,omitempty"`
	RowNums                   []int                 `json:"row_nums"`
	OriginalRowCount          int                   `json:"original_row_count"`
	OriginalColCount          int                   `json:"original_col_count"`
}

// SymbolGroupTable maps code points to symbol groups. Bounds holds the first code point of each span in
// ascending order, and Groups holds the group of each span. The spans cover U+0000..U+10FFFF.
type SymbolGroupTable struct {
	Bounds []int `json:"bounds"`
	Groups []int `json:"groups"`
}

// TransitionTable is a DFA shared by all lex modes. Row i holds the transitions of the state i, so row 0 belongs
// to StateIDNil. Column j holds the transition on the symbol group j.
type TransitionTable struct {
	AcceptingStates []LexKindID `json:"accepting_states"`

	// AnchorTransitions holds AnchorKindCount entries per state, including StateIDNil.
	AnchorTransitions []StateID `json:"anchor_transitions"`

	RowCount               int                 `json:"row_count"`
	ColCount               int                 `json:"col_count"`
	SymbolGroups           *SymbolGroupTable   `json:"symbol_groups"`
	Transition             *UniqueEntriesTable `json:"transition,omitempty"`
	UncompressedTransition []int               `json:"uncompressed_transition,omitempty"`
}

type LexicalSpec struct {
	InitialModeID    LexModeID        `json:"initial_mode_id"`
	ModeNames        []LexModeName    `json:"mode_names"`
	InitialStates    []StateID        `json:"initial_states"`
	KindNames        []LexKindName    `json:"kind_names"`
	ModeKinds        [][]LexKindID    `json:"mode_kinds"`
	Push             []LexModeID      `json:"push"`
	Pop              []int            `json:"pop"`
	CompressionLevel int              `json:"compression_level"`
	DFA              *TransitionTable `json:"dfa"`
}

// SyntacticSpec is a parsing table. Cells follow the encoding of the generator: a positive value is a
// shift or a goto, 0 is an error, -1 is accept, and any other negative value reduces the production
// `-1 - value`.
type SyntacticSpec struct {
	StateCount              int                 `json:"state_count"`
	InitialState            int                 `json:"initial_state"`
	StartProduction         int                 `json:"start_production"`
	Width                   int                 `json:"width"`
	CompressionLevel        int                 `json:"compression_level"`
	Action                  *UniqueEntriesTable `json:"action,omitempty"`
	UncompressedAction      []int               `json:"uncompressed_action,omitempty"`
	LHSSymbols              []int               `json:"lhs_symbols"`
	AlternativeSymbolCounts []int               `json:"alternative_symbol_counts"`
	ProductionLabels        []string            `json:"production_labels"`
	Terminals               []string            `json:"terminals"`
	TerminalCount           int                 `json:"terminal_count"`
	TerminalSkip            []int               `json:"terminal_skip"`
	KindToTerminal          []int               `json:"kind_to_terminal"`
	NonTerminals            []string            `json:"non_terminals"`
	NonTerminalCount        int                 `json:"non_terminal_count"`
	EOFSymbol               int                 `json:"eof_symbol"`
}

// Lookup returns the entry at (row, col) of the original table.
func (t *UniqueEntriesTable) Lookup(row, col int) int {
	r := t.RowNums[row]
	if t.UniqueEntries != nil {
		return t.UniqueEntries.Lookup(r, col)
	}
	return t.UncompressedUniqueEntries[r*t.OriginalColCount+col]
}

func (t *RowDisplacementTable) Lookup(row, col int) int {
	i := t.RowDisplacement[row] + col
	if i >= len(t.Bounds) || t.Bounds[i] != row {
		return t.EmptyValue
	}
	return t.Entries[i]
}

// GroupOf returns the symbol group of c, or -1 when c is not a code point.
func (t *SymbolGroupTable) GroupOf(c rune) int {
	if c < 0 || c > 0x10FFFF || len(t.Bounds) == 0 {
		return -1
	}
	lo, hi := 0, len(t.Bounds)
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if rune(t.Bounds[mid]) <= c {
			lo = mid
		} else {
			hi = mid
		}
	}
	return t.Groups[lo]
}

// Next returns the state reached from s on a code point of the symbol group.
func (t *TransitionTable) Next(s StateID, group int) StateID {
	if t.Transition != nil {
		return StateID(t.Transition.Lookup(s.Int(), group))
	}
	return StateID(t.UncompressedTransition[s.Int()*t.ColCount+group])
}

// AnchorNext returns the state reached from s when the anchor holds, or StateIDNil.
func (t *TransitionTable) AnchorNext(s StateID, k AnchorKind) StateID {
	return t.AnchorTransitions[s.Int()*AnchorKindCount+k.Int()]
}

// Lookup returns the cell of the parsing table. sym is a symbol number; terminals come first.
func (s *SyntacticSpec) Lookup(state, sym int) int {
	if s.Action != nil {
		return s.Action.Lookup(state, sym)
	}
	return s.UncompressedAction[state*s.Width+sym]
}
