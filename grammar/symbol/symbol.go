package symbol

import (
	"fmt"
)

type symbolKind string

const (
	symbolKindNonTerminal = symbolKind("non-terminal")
	symbolKindTerminal    = symbolKind("terminal")
)

func (t symbolKind) String() string {
	return string(t)
}

// Symbol is the number a parsing table uses for a grammar symbol. Terminals take 0..T-1 with EOF at 0, and
// non-terminals take T..T+N-1 with the augmented start symbol at T.
type Symbol int

const SymbolNil = Symbol(-1)

func (s Symbol) Int() int {
	return int(s)
}

func (s Symbol) IsNil() bool {
	return s < 0
}

const (
	// The symbol names contain `<` and `>` to avoid conflicting with user-defined symbols.
	NameEOF   = "<eof>"
	NameStart = "<start>"

	symbolNumMax = 0x3fff
)

// SymbolTable assigns numbers to symbol names. Register all the symbols through a writer first; a reader
// numbers them by the final counts.
type SymbolTable struct {
	kinds        map[string]symbolKind
	termTexts    []string
	nonTermTexts []string
}

type SymbolTableWriter struct {
	*SymbolTable
}

type SymbolTableReader struct {
	*SymbolTable
}

// NewSymbolTable returns a table holding EOF and the augmented start symbol `<start>`.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		kinds: map[string]symbolKind{
			NameEOF:   symbolKindTerminal,
			NameStart: symbolKindNonTerminal,
		},
		termTexts: []string{
			NameEOF,
		},
		nonTermTexts: []string{
			NameStart,
		},
	}
}

func (t *SymbolTable) Writer() *SymbolTableWriter {
	return &SymbolTableWriter{
		SymbolTable: t,
	}
}

func (t *SymbolTable) Reader() *SymbolTableReader {
	return &SymbolTableReader{
		SymbolTable: t,
	}
}

func (w *SymbolTableWriter) RegisterNonTerminalSymbol(text string) error {
	return w.register(text, symbolKindNonTerminal)
}

func (w *SymbolTableWriter) RegisterTerminalSymbol(text string) error {
	return w.register(text, symbolKindTerminal)
}

func (w *SymbolTableWriter) register(text string, kind symbolKind) error {
	if text == "" {
		return fmt.Errorf("a symbol name must be non-empty")
	}
	if k, ok := w.kinds[text]; ok {
		if k != kind {
			return fmt.Errorf("%v is already registered as a %v symbol", text, k)
		}
		return nil
	}
	if len(w.termTexts)+len(w.nonTermTexts) > symbolNumMax {
		return fmt.Errorf("the number of symbols exceeds the limit; limit: %v", symbolNumMax+1)
	}
	w.kinds[text] = kind
	if kind == symbolKindTerminal {
		w.termTexts = append(w.termTexts, text)
	} else {
		w.nonTermTexts = append(w.nonTermTexts, text)
	}
	return nil
}

func (r *SymbolTableReader) ToSymbol(text string) (Symbol, bool) {
	kind, ok := r.kinds[text]
	if !ok {
		return SymbolNil, false
	}
	texts := r.termTexts
	if kind == symbolKindNonTerminal {
		texts = r.nonTermTexts
	}
	for i, t := range texts {
		if t != text {
			continue
		}
		if kind == symbolKindNonTerminal {
			return Symbol(len(r.termTexts) + i), true
		}
		return Symbol(i), true
	}
	return SymbolNil, false
}

func (r *SymbolTableReader) ToText(sym Symbol) (string, bool) {
	n := sym.Int()
	switch {
	case n < 0:
		return "", false
	case n < len(r.termTexts):
		return r.termTexts[n], true
	case n < len(r.termTexts)+len(r.nonTermTexts):
		return r.nonTermTexts[n-len(r.termTexts)], true
	}
	return "", false
}

func (r *SymbolTableReader) IsTerminal(sym Symbol) bool {
	return sym >= 0 && sym.Int() < len(r.termTexts)
}

func (r *SymbolTableReader) IsNonTerminal(sym Symbol) bool {
	return sym.Int() >= len(r.termTexts) && sym.Int() < len(r.termTexts)+len(r.nonTermTexts)
}

func (r *SymbolTableReader) EOF() Symbol {
	return Symbol(0)
}

func (r *SymbolTableReader) Start() Symbol {
	return Symbol(len(r.termTexts))
}

func (r *SymbolTableReader) TerminalCount() int {
	return len(r.termTexts)
}

func (r *SymbolTableReader) NonTerminalCount() int {
	return len(r.nonTermTexts)
}

// TerminalTexts returns the names of the terminals indexed by their symbols.
func (r *SymbolTableReader) TerminalTexts() []string {
	return append([]string{}, r.termTexts...)
}

// NonTerminalTexts returns the names of the non-terminals indexed by `symbol - TerminalCount()`.
func (r *SymbolTableReader) NonTerminalTexts() []string {
	return append([]string{}, r.nonTermTexts...)
}
