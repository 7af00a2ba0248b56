package grammar

import (
	"fmt"
	"strings"
)

var (
	// ErrNotLRGrammar means the grammar belongs to no LR(k) class. It is detected as a cycle in the reads
	// relation.
	ErrNotLRGrammar = fmt.Errorf("not an LR grammar")

	// ErrAmbiguousGrammar means the grammar has a sentence with more than one derivation no matter what
	// lookahead is used, for instance, identical productions or a derivation cycle like `A ⇒+ A`.
	ErrAmbiguousGrammar = fmt.Errorf("ambiguous grammar")

	// ErrConflicts means the generator produced a usable table, but some cells hold conflicts that no
	// resolution directive settled.
	ErrConflicts = fmt.Errorf("unresolved conflicts")

	ErrInternal       = fmt.Errorf("internal error")
	ErrInvalidGrammar = fmt.Errorf("invalid grammar")
	ErrOverflow       = fmt.Errorf("table size overflow")
)

// ConflictError is returned alongside a parsing table when the table contains unresolved conflicts.
// errors.Is(err, ErrConflicts) reports true for it.
type ConflictError struct {
	Conflicts []*Conflict
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %v", ErrConflicts, len(e.Conflicts))
	for _, c := range e.Conflicts {
		fmt.Fprintf(&b, "\n    %v", c)
	}
	return b.String()
}

func (e *ConflictError) Unwrap() error {
	return ErrConflicts
}
