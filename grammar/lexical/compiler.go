package lexical

import (
	"errors"
	"fmt"

	"github.com/nihei9/lrgen/compressor"
	"github.com/nihei9/lrgen/grammar/lexical/dfa"
	spec "github.com/nihei9/lrgen/spec/grammar"
)

const (
	CompressionLevelMin = compressor.LevelMin
	CompressionLevelMax = compressor.LevelMax
)

// Compile builds the lexical part of a compiled grammar. All modes share one DFA; each mode has its own initial
// state. Errors in patterns are returned as a list of CompileError values.
func Compile(lexspec *LexSpec, compLv int) (*spec.LexicalSpec, error, []*CompileError) {
	err := lexspec.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid lexical specification:\n%w", err), nil
	}
	if compLv < CompressionLevelMin || compLv > CompressionLevelMax {
		return nil, fmt.Errorf("compression level must be %v..%v: %v", CompressionLevelMin, CompressionLevelMax, compLv), nil
	}

	modeNames, modeName2ID := collectLexModes(lexspec.Entries)

	gen := NewGenerator()
	defer gen.Cleanup()
	for _, name := range modeNames[1:] {
		_, err := gen.AddMode(name.String())
		if err != nil {
			return nil, err, nil
		}
	}

	var cerrs []*CompileError
	kindNames := []spec.LexKindName{
		spec.LexKindNameNil,
	}
	push := []spec.LexModeID{
		spec.LexModeIDNil,
	}
	pop := []int{
		0,
	}
	modeKinds := make([][]spec.LexKindID, len(modeNames))
	for _, e := range lexspec.Entries {
		if !e.Fragment {
			continue
		}
		err := gen.AddFragment(e.Kind, e.Pattern)
		if err != nil {
			var cerr *CompileError
			if errors.As(err, &cerr) {
				cerrs = append(cerrs, cerr)
				continue
			}
			return nil, err, nil
		}
	}
	for _, e := range lexspec.Entries {
		if e.Fragment {
			continue
		}
		kindID := spec.LexKindID(len(kindNames))
		kindNames = append(kindNames, e.Kind)

		modes := e.Modes
		if len(modes) == 0 {
			modes = []spec.LexModeName{
				spec.LexModeNameDefault,
			}
		}
		var ms []string
		for _, m := range modes {
			ms = append(ms, m.String())
			modeID := modeName2ID[m]
			modeKinds[modeID] = append(modeKinds[modeID], kindID)
		}

		pushV := spec.LexModeIDNil
		if e.Push != spec.LexModeNameNil {
			pushV = modeName2ID[e.Push]
		}
		push = append(push, pushV)
		popV := 0
		if e.Pop {
			popV = 1
		}
		pop = append(pop, popV)

		_, err := gen.AddPattern(e.Kind, e.Pattern, kindID.Int(), ms...)
		if err != nil {
			var cerr *CompileError
			if errors.As(err, &cerr) {
				cerrs = append(cerrs, cerr)
				continue
			}
			return nil, err, nil
		}
	}
	if len(cerrs) > 0 {
		return nil, fmt.Errorf("compile error"), cerrs
	}

	d, err := gen.Generate()
	if err != nil {
		var es CompileErrors
		if errors.As(err, &es) {
			return nil, fmt.Errorf("compile error"), es
		}
		return nil, err, nil
	}

	tranTab, err := dfa.GenTransitionTable(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOverflow, err), nil
	}
	tranTab.Transition, err = compressor.CompressTable(tranTab.UncompressedTransition, tranTab.ColCount, spec.StateIDNil.Int(), compLv)
	if err != nil {
		return nil, err, nil
	}
	if tranTab.Transition != nil {
		tranTab.UncompressedTransition = nil
	}

	initialStates := []spec.StateID{
		spec.StateIDNil,
	}
	for _, s := range d.ModeStarts {
		initialStates = append(initialStates, spec.StateID(s+spec.StateIDMin.Int()))
	}

	tracer().Infof("lexical specification: %v modes, %v kinds, %v states, %v symbol groups", len(modeNames)-1, len(kindNames)-1, len(d.Nodes), len(d.Groups.Groups))

	return &spec.LexicalSpec{
		InitialModeID:    spec.LexModeIDDefault,
		ModeNames:        modeNames,
		InitialStates:    initialStates,
		KindNames:        kindNames,
		ModeKinds:        modeKinds,
		Push:             push,
		Pop:              pop,
		CompressionLevel: compLv,
		DFA:              tranTab,
	}, nil, nil
}

// collectLexModes numbers the modes in the order of appearance. The default mode always comes first.
func collectLexModes(entries []*LexEntry) ([]spec.LexModeName, map[spec.LexModeName]spec.LexModeID) {
	modeNames := []spec.LexModeName{
		spec.LexModeNameNil,
		spec.LexModeNameDefault,
	}
	modeName2ID := map[spec.LexModeName]spec.LexModeID{
		spec.LexModeNameNil:     spec.LexModeIDNil,
		spec.LexModeNameDefault: spec.LexModeIDDefault,
	}
	for _, e := range entries {
		if e.Fragment {
			continue
		}
		for _, m := range e.Modes {
			if _, ok := modeName2ID[m]; ok {
				continue
			}
			modeName2ID[m] = spec.LexModeID(len(modeNames))
			modeNames = append(modeNames, m)
		}
	}
	return modeNames, modeName2ID
}
