package lexical

import (
	"errors"
	"fmt"
	"strings"

	psr "github.com/nihei9/lrgen/grammar/lexical/parser"
	spec "github.com/nihei9/lrgen/spec/grammar"
)

var (
	// ErrNoMemory is reserved for allocation failures. Go reports them as runtime panics, so no function of
	// this package returns it at present.
	ErrNoMemory = fmt.Errorf("out of memory")

	// ErrOverflow means an automaton or a repetition count exceeds its limit.
	ErrOverflow = fmt.Errorf("lexical automaton overflow")

	ErrSyntax      = fmt.Errorf("syntax error")
	ErrUnknownMode = fmt.Errorf("unknown mode")
)

// CompileError is an error in a pattern or a fragment. errors.Is reports ErrSyntax for all of them, and
// ErrOverflow for too large repetition counts.
type CompileError struct {
	Kind     spec.LexKindName
	Fragment bool
	Cause    error
	Detail   string
}

func (e *CompileError) Error() string {
	var b strings.Builder
	if e.Fragment {
		fmt.Fprintf(&b, "fragment %v: ", e.Kind)
	} else {
		fmt.Fprintf(&b, "%v: ", e.Kind)
	}
	fmt.Fprintf(&b, "%v", e.Cause)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %v", e.Detail)
	}
	return b.String()
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}

func (e *CompileError) Is(target error) bool {
	switch target {
	case ErrSyntax:
		return true
	case ErrOverflow:
		return errors.Is(e.Cause, psr.SynErrRepOverflow)
	}
	return false
}

// CompileErrors collects the errors found in all patterns and fragments.
type CompileErrors []*CompileError

func (es CompileErrors) Error() string {
	var b strings.Builder
	for i, e := range es {
		if i > 0 {
			fmt.Fprintf(&b, "\n")
		}
		fmt.Fprintf(&b, "%v", e)
	}
	return b.String()
}

func (es CompileErrors) Is(target error) bool {
	for _, e := range es {
		if errors.Is(e, target) {
			return true
		}
	}
	return false
}
