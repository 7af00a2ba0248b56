package grammar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nihei9/lrgen/compressor"
	lerr "github.com/nihei9/lrgen/error"
	"github.com/nihei9/lrgen/grammar/lexical"
	"github.com/nihei9/lrgen/grammar/symbol"
	def "github.com/nihei9/lrgen/spec"
	spec "github.com/nihei9/lrgen/spec/grammar"
)

// Markers separating productions in the array passed to Generator.Generate. Symbols are never negative.
const (
	symbolEOP = -1
	symbolEOG = -2
)

type compileConfig struct {
	isReportingEnabled bool
	compLv             int
}

type CompileOption func(config *compileConfig)

// EnableReporting makes Compile return a report describing the states of the automaton.
func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// CompressionLevel sets the compression level of the parsing table and the transition table. The default
// is the maximum level.
func CompressionLevel(lv int) CompileOption {
	return func(config *compileConfig) {
		config.compLv = lv
	}
}

// Compile generates a lexer and a parser from a grammar definition.
//
// Errors in the definition are reported as lerr.SpecErrors. When the parsing table has unresolved
// conflicts, Compile returns the compiled grammar and the report together with a *ConflictError.
func Compile(root *def.RootNode, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		compLv: compressor.LevelMax,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.compLv < compressor.LevelMin || config.compLv > compressor.LevelMax {
		return nil, nil, fmt.Errorf("compression level must be %v..%v: %v", compressor.LevelMin, compressor.LevelMax, config.compLv)
	}

	b := &grammarBuilder{
		root: root,
	}
	gram, err := b.build()
	if err != nil {
		return nil, nil, err
	}

	lexSpec, err, cerrs := lexical.Compile(gram.lexSpec, config.compLv)
	if err != nil {
		if len(cerrs) > 0 {
			return nil, nil, b.lexicalErrors(cerrs)
		}
		return nil, nil, err
	}

	gen := NewGenerator()
	defer gen.Cleanup()
	for _, r := range gram.resolutions {
		gen.AddConflictResolution(r.dominant.Production, r.dominant.Position, r.yielding.Production, r.yielding.Position)
	}
	tab, genErr := gen.Generate(gram.grammar)
	if genErr != nil && !errors.Is(genErr, ErrConflicts) {
		return nil, nil, genErr
	}

	synSpec, err := genSyntacticSpec(gram, tab, config.compLv)
	if err != nil {
		return nil, nil, err
	}

	var report *spec.Report
	if config.isReportingEnabled {
		report = genReport(gram, tab)
	}

	tracer().Infof("%v: %v terminals, %v non-terminals, %v productions, %v states", root.Name, gram.symbols.TerminalCount(), gram.symbols.NonTerminalCount(), len(gram.prods), tab.StateCount)

	return &spec.CompiledGrammar{
		Name:      root.Name,
		Lexical:   lexSpec,
		Syntactic: synSpec,
	}, report, genErr
}

type prodInfo struct {
	lhs   symbol.Symbol
	rhs   []symbol.Symbol
	label string
}

type builtGrammar struct {
	symbols     *symbol.SymbolTableReader
	prods       []*prodInfo
	grammar     *Grammar
	resolutions []*conflictResolution
	lexSpec     *lexical.LexSpec
	skip        []int
	patterns    []string
}

type grammarBuilder struct {
	root *def.RootNode

	errs lerr.SpecErrors
}

func (b *grammarBuilder) raise(cause error, row int, detail string) {
	b.errs = append(b.errs, &lerr.SpecError{
		Cause:  cause,
		Detail: detail,
		Row:    row,
	})
}

func (b *grammarBuilder) build() (*builtGrammar, error) {
	root := b.root
	symTab := symbol.NewSymbolTable()
	w := symTab.Writer()

	tokens := map[string]*def.TokenNode{}
	for _, t := range root.Tokens {
		if strings.ContainsAny(t.Name, "<>") {
			b.raise(semErrReservedName, t.Row, t.Name)
			continue
		}
		if _, ok := tokens[t.Name]; ok {
			b.raise(semErrDuplicateTerminal, t.Row, t.Name)
			continue
		}
		tokens[t.Name] = t
		err := w.RegisterTerminalSymbol(t.Name)
		if err != nil {
			return nil, err
		}
	}

	lhsRows := map[string]int{}
	for _, p := range root.Productions {
		if _, ok := lhsRows[p.LHS]; ok {
			continue
		}
		lhsRows[p.LHS] = p.Row
		if strings.ContainsAny(p.LHS, "<>") {
			b.raise(semErrReservedName, p.Row, p.LHS)
			continue
		}
		if _, ok := tokens[p.LHS]; ok {
			b.raise(semErrDuplicateName, p.Row, p.LHS)
			continue
		}
		err := w.RegisterNonTerminalSymbol(p.LHS)
		if err != nil {
			return nil, err
		}
	}
	if _, ok := lhsRows[root.Start]; !ok {
		b.raise(semErrUndefinedSym, 0, fmt.Sprintf("start symbol %v has no production", root.Start))
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	r := symTab.Reader()
	startSym, _ := r.ToSymbol(root.Start)
	prods := []*prodInfo{
		{
			lhs: r.Start(),
			rhs: []symbol.Symbol{startSym},
		},
	}
	labels := map[string]int{}
	prodRows := map[string]int{}
	used := map[string]struct{}{}
	for _, p := range root.Productions {
		lhs, _ := r.ToSymbol(p.LHS)
		prod := &prodInfo{
			lhs:   lhs,
			label: p.Label,
		}
		ok := true
		for _, name := range p.RHS {
			sym, found := r.ToSymbol(name)
			if !found || sym == r.EOF() || sym == r.Start() {
				b.raise(semErrUndefinedSym, p.Row, name)
				ok = false
				continue
			}
			if t, isToken := tokens[name]; isToken && t.Skip {
				b.raise(semErrTermCannotBeSkipped, p.Row, name)
				ok = false
			}
			used[name] = struct{}{}
			prod.rhs = append(prod.rhs, sym)
		}
		if !ok {
			continue
		}
		id := fmt.Sprintf("%v: %v", p.LHS, strings.Join(p.RHS, " "))
		if row, dup := prodRows[id]; dup {
			b.raise(semErrDuplicateProduction, p.Row, fmt.Sprintf("%v (line %v)", id, row))
			continue
		}
		prodRows[id] = p.Row
		if p.Label != "" {
			if _, dup := labels[p.Label]; dup {
				b.raise(semErrDuplicateLabel, p.Row, p.Label)
				continue
			}
			labels[p.Label] = len(prods)
		}
		prods = append(prods, prod)
	}

	for _, t := range root.Tokens {
		if _, ok := used[t.Name]; !ok && !t.Skip {
			b.raise(semErrUnusedTerminal, t.Row, t.Name)
		}
	}
	for name, row := range b.unreachable(prods, r) {
		b.raise(semErrUnusedProduction, row, name)
	}

	var resolutions []*conflictResolution
	for _, res := range root.Resolutions {
		dominant, ok1 := b.item(res.Prefer, res.Row, labels, prods)
		yielding, ok2 := b.item(res.Over, res.Row, labels, prods)
		if !ok1 || !ok2 {
			continue
		}
		resolutions = append(resolutions, &conflictResolution{
			dominant: dominant,
			yielding: yielding,
		})
	}

	lexSpec, skip, patterns := b.genLexSpec(tokens, r)

	if len(b.errs) > 0 {
		sortErrors(b.errs)
		return nil, b.errs
	}

	var src []int
	for _, p := range prods {
		src = append(src, p.lhs.Int())
		for _, sym := range p.rhs {
			src = append(src, sym.Int())
		}
		src = append(src, symbolEOP)
	}
	src = append(src, symbolEOG)

	return &builtGrammar{
		symbols: r,
		prods:   prods,
		grammar: &Grammar{
			Productions: src,
			EOF:         r.EOF().Int(),
			EOP:         symbolEOP,
			EOG:         symbolEOG,
			Start:       r.Start().Int(),
		},
		resolutions: resolutions,
		lexSpec:     lexSpec,
		skip:        skip,
		patterns:    patterns,
	}, nil
}

// unreachable returns the non-terminals the start symbol never derives, with their rows.
func (b *grammarBuilder) unreachable(prods []*prodInfo, r *symbol.SymbolTableReader) map[string]int {
	reached := map[symbol.Symbol]struct{}{
		r.Start(): {},
	}
	for changed := true; changed; {
		changed = false
		for _, p := range prods {
			if _, ok := reached[p.lhs]; !ok {
				continue
			}
			for _, sym := range p.rhs {
				if _, ok := reached[sym]; !ok {
					reached[sym] = struct{}{}
					changed = true
				}
			}
		}
	}
	unreached := map[string]int{}
	for _, p := range b.root.Productions {
		sym, ok := r.ToSymbol(p.LHS)
		if !ok {
			continue
		}
		if _, ok := reached[sym]; ok {
			continue
		}
		if _, ok := unreached[p.LHS]; !ok {
			unreached[p.LHS] = p.Row
		}
	}
	return unreached
}

func (b *grammarBuilder) item(n *def.ItemNode, row int, labels map[string]int, prods []*prodInfo) (Item, bool) {
	prodNum, ok := labels[n.Label]
	if !ok {
		b.raise(semErrUndefinedLabel, row, n.Label)
		return Item{}, false
	}
	if n.Pos > len(prods[prodNum].rhs) {
		b.raise(semErrDirInvalidParam, row, fmt.Sprintf("position %v exceeds the length of production %v", n.Pos, n.Label))
		return Item{}, false
	}
	return Item{
		Production: prodNum,
		Position:   n.Pos,
	}, true
}

func (b *grammarBuilder) genLexSpec(tokens map[string]*def.TokenNode, r *symbol.SymbolTableReader) (*lexical.LexSpec, []int, []string) {
	root := b.root
	modes := map[string]struct{}{
		spec.LexModeNameDefault.String(): {},
	}
	for _, m := range root.Modes {
		modes[m] = struct{}{}
	}
	checkMode := func(m string, row int) {
		if len(root.Modes) == 0 {
			return
		}
		if _, ok := modes[m]; !ok {
			b.raise(semErrUndefinedMode, row, m)
		}
	}

	lexSpec := &lexical.LexSpec{}
	fragments := map[string]struct{}{}
	for _, f := range root.Fragments {
		if _, ok := fragments[f.Name]; ok {
			b.raise(semErrDuplicateFragment, f.Row, f.Name)
			continue
		}
		fragments[f.Name] = struct{}{}
		lexSpec.Entries = append(lexSpec.Entries, &lexical.LexEntry{
			Kind:     spec.LexKindName(f.Name),
			Pattern:  f.Pattern,
			Fragment: true,
		})
	}

	skip := make([]int, r.TerminalCount())
	patterns := make([]string, r.TerminalCount())
	for _, t := range root.Tokens {
		if tokens[t.Name] != t {
			continue
		}
		pattern := t.Pattern
		if t.Literal {
			pattern = spec.EscapePattern(pattern)
		}
		e := &lexical.LexEntry{
			Kind:    spec.LexKindName(t.Name),
			Pattern: pattern,
			Push:    spec.LexModeName(t.Push),
			Pop:     t.Pop,
		}
		for _, m := range t.Modes {
			checkMode(m, t.Row)
			e.Modes = append(e.Modes, spec.LexModeName(m))
		}
		if t.Push != "" {
			checkMode(t.Push, t.Row)
		}
		lexSpec.Entries = append(lexSpec.Entries, e)

		sym, _ := r.ToSymbol(t.Name)
		patterns[sym] = pattern
		if t.Skip {
			skip[sym] = 1
		}
	}
	return lexSpec, skip, patterns
}

// lexicalErrors attaches the rows of the tokens and the fragments to the errors of the lexical compiler.
func (b *grammarBuilder) lexicalErrors(cerrs []*lexical.CompileError) error {
	tokenRows := map[string]int{}
	for _, t := range b.root.Tokens {
		tokenRows[t.Name] = t.Row
	}
	fragmentRows := map[string]int{}
	for _, f := range b.root.Fragments {
		fragmentRows[f.Name] = f.Row
	}

	var errs lerr.SpecErrors
	for _, cerr := range cerrs {
		row := tokenRows[cerr.Kind.String()]
		if cerr.Fragment {
			row = fragmentRows[cerr.Kind.String()]
		}
		errs = append(errs, &lerr.SpecError{
			Cause:  semErrInvalidPattern,
			Detail: cerr.Error(),
			Row:    row,
		})
	}
	sortErrors(errs)
	return errs
}

func sortErrors(errs lerr.SpecErrors) {
	// Insertion sort keeps the order of errors on the same row.
	for i := 1; i < len(errs); i++ {
		for j := i; j > 0 && errs[j-1].Row > errs[j].Row; j-- {
			errs[j-1], errs[j] = errs[j], errs[j-1]
		}
	}
}

func genSyntacticSpec(gram *builtGrammar, tab *ParsingTable, compLv int) (*spec.SyntacticSpec, error) {
	r := gram.symbols

	lhsSyms := make([]int, len(gram.prods))
	altSymCounts := make([]int, len(gram.prods))
	labels := make([]string, len(gram.prods))
	for i, p := range gram.prods {
		lhsSyms[i] = p.lhs.Int()
		altSymCounts[i] = len(p.rhs)
		labels[i] = p.label
	}

	// A kind number equals the order of the token among all the tokens, so is its terminal number.
	kindToTerm := make([]int, r.TerminalCount())
	for i := range kindToTerm {
		kindToTerm[i] = i
	}

	action, err := compressor.CompressTable(tab.Action, tab.Width, ActionError, compLv)
	if err != nil {
		return nil, err
	}
	var uncompressed []int
	if action == nil {
		uncompressed = tab.Action
	}

	return &spec.SyntacticSpec{
		StateCount:              tab.StateCount,
		InitialState:            0,
		StartProduction:         productionNumStart,
		Width:                   tab.Width,
		CompressionLevel:        compLv,
		Action:                  action,
		UncompressedAction:      uncompressed,
		LHSSymbols:              lhsSyms,
		AlternativeSymbolCounts: altSymCounts,
		ProductionLabels:        labels,
		Terminals:               r.TerminalTexts(),
		TerminalCount:           r.TerminalCount(),
		TerminalSkip:            gram.skip,
		KindToTerminal:          kindToTerm,
		NonTerminals:            r.NonTerminalTexts(),
		NonTerminalCount:        r.NonTerminalCount(),
		EOFSymbol:               r.EOF().Int(),
	}, nil
}

func genReport(gram *builtGrammar, tab *ParsingTable) *spec.Report {
	r := gram.symbols

	var terms []*spec.Terminal
	for i, name := range r.TerminalTexts() {
		terms = append(terms, &spec.Terminal{
			Number:  i,
			Name:    name,
			Pattern: gram.patterns[i],
			Skip:    gram.skip[i] == 1,
		})
	}
	var nonTerms []*spec.NonTerminal
	for i, name := range r.NonTerminalTexts() {
		nonTerms = append(nonTerms, &spec.NonTerminal{
			Number: r.TerminalCount() + i,
			Name:   name,
		})
	}
	var prods []*spec.Production
	for i, p := range gram.prods {
		rhs := make([]int, len(p.rhs))
		for j, sym := range p.rhs {
			rhs[j] = sym.Int()
		}
		prods = append(prods, &spec.Production{
			Number: i,
			LHS:    p.lhs.Int(),
			RHS:    rhs,
			Label:  p.label,
		})
	}

	conflicts := map[int][]*Conflict{}
	for _, c := range tab.Conflicts {
		conflicts[c.State] = append(conflicts[c.State], c)
	}

	states := make([]*spec.State, tab.StateCount)
	for s := 0; s < tab.StateCount; s++ {
		state := &spec.State{
			Number: s,
		}
		for _, item := range tab.Kernels[s] {
			state.Kernel = append(state.Kernel, &spec.Item{
				Production: item.Production,
				Dot:        item.Position,
			})
		}

		var reduces []*spec.Reduce
		prod2Reduce := map[int]*spec.Reduce{}
		for sym := tab.MinSymbol; sym < tab.MinSymbol+tab.Width; sym++ {
			ty, v := DescribeAction(tab.Lookup(s, sym))
			switch ty {
			case ActionTypeShift:
				tr := &spec.Transition{
					Symbol: sym,
					State:  v,
				}
				if r.IsTerminal(symbol.Symbol(sym)) {
					state.Shift = append(state.Shift, tr)
				} else {
					state.GoTo = append(state.GoTo, tr)
				}
			case ActionTypeReduce:
				red, ok := prod2Reduce[v]
				if !ok {
					red = &spec.Reduce{
						Production: v,
					}
					prod2Reduce[v] = red
					reduces = append(reduces, red)
				}
				red.LookAhead = append(red.LookAhead, sym)
			case ActionTypeAccept:
				state.Accept = true
			}
		}
		state.Reduce = reduces

		for _, c := range conflicts[s] {
			sc := &spec.Conflict{
				Symbol: c.Symbol,
			}
			for _, item := range c.Items {
				sc.Items = append(sc.Items, &spec.Item{
					Production: item.Production,
					Dot:        item.Position,
				})
			}
			ty, v := DescribeAction(c.Adopted)
			if ty == ActionTypeShift {
				sc.AdoptedState = &v
			} else {
				sc.AdoptedProduction = &v
			}
			state.Conflicts = append(state.Conflicts, sc)
		}

		states[s] = state
	}

	return &spec.Report{
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
	}
}
