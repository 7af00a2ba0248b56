package lexer

import spec "github.com/nihei9/lrgen/spec/grammar"

type lexSpec struct {
	spec *spec.LexicalSpec
}

func NewLexSpec(spec *spec.LexicalSpec) *lexSpec {
	return &lexSpec{
		spec: spec,
	}
}

func (s *lexSpec) InitialMode() ModeID {
	return ModeID(s.spec.InitialModeID.Int())
}

func (s *lexSpec) Pop(kind KindID) bool {
	return s.spec.Pop[kind] == 1
}

func (s *lexSpec) Push(kind KindID) (ModeID, bool) {
	modeID := s.spec.Push[kind]
	return ModeID(modeID.Int()), !modeID.IsNil()
}

func (s *lexSpec) ModeName(mode ModeID) string {
	return s.spec.ModeNames[mode].String()
}

func (s *lexSpec) InitialState(mode ModeID) StateID {
	return StateID(s.spec.InitialStates[mode].Int())
}

func (s *lexSpec) NextState(state StateID, c rune) (StateID, bool) {
	g := s.spec.DFA.SymbolGroups.GroupOf(c)
	if g < 0 {
		return StateID(spec.StateIDNil.Int()), false
	}
	next := s.spec.DFA.Next(spec.StateID(state), g)
	return StateID(next.Int()), next != spec.StateIDNil
}

func (s *lexSpec) AnchorState(state StateID, anchor spec.AnchorKind) (StateID, bool) {
	next := s.spec.DFA.AnchorNext(spec.StateID(state), anchor)
	return StateID(next.Int()), next != spec.StateIDNil
}

func (s *lexSpec) Accept(state StateID) (KindID, bool) {
	kindID := s.spec.DFA.AcceptingStates[state]
	return KindID(kindID.Int()), kindID != spec.LexKindIDNil
}

func (s *lexSpec) KindName(kind KindID) string {
	return s.spec.KindNames[kind].String()
}
