package lexical

import (
	"fmt"
	"strings"

	spec "github.com/nihei9/lrgen/spec/grammar"
)

type LexEntry struct {
	Kind     spec.LexKindName
	Pattern  string
	Modes    []spec.LexModeName
	Push     spec.LexModeName
	Pop      bool
	Fragment bool
}

type LexSpec struct {
	Entries []*LexEntry
}

// Validate checks the names in the specification. Patterns themselves are checked by Compile.
func (s *LexSpec) Validate() error {
	if len(s.Entries) <= 0 {
		return fmt.Errorf("the lexical specification must have at least one entry")
	}

	var errs []string
	kinds := map[spec.LexKindName]struct{}{}
	fragments := map[spec.LexKindName]struct{}{}
	modes := map[spec.LexModeName]struct{}{
		spec.LexModeNameDefault: {},
	}
	for _, e := range s.Entries {
		if e.Kind == spec.LexKindNameNil {
			errs = append(errs, "a kind name must be non-empty")
			continue
		}
		if e.Pattern == "" {
			errs = append(errs, fmt.Sprintf("kind `%v` has an empty pattern", e.Kind))
		}

		// Fragments and kinds live in different namespaces.
		if e.Fragment {
			if _, exist := fragments[e.Kind]; exist {
				errs = append(errs, fmt.Sprintf("fragments `%v` are duplicates", e.Kind))
			}
			fragments[e.Kind] = struct{}{}
			continue
		}
		if _, exist := kinds[e.Kind]; exist {
			errs = append(errs, fmt.Sprintf("kinds `%v` are duplicates", e.Kind))
		}
		kinds[e.Kind] = struct{}{}
		for _, m := range e.Modes {
			if m == spec.LexModeNameNil {
				errs = append(errs, fmt.Sprintf("kind `%v` has an empty mode name", e.Kind))
				continue
			}
			modes[m] = struct{}{}
		}
	}
	unknownMode := false
	for _, e := range s.Entries {
		if e.Fragment || e.Push == spec.LexModeNameNil {
			continue
		}
		if _, ok := modes[e.Push]; !ok {
			errs = append(errs, fmt.Sprintf("kind `%v` pushes `%v`, but no kind belongs to it", e.Kind, e.Push))
			unknownMode = true
		}
	}
	if len(errs) > 0 {
		if unknownMode {
			return fmt.Errorf("%w:\n%v", ErrUnknownMode, strings.Join(errs, "\n"))
		}
		return fmt.Errorf("%v", strings.Join(errs, "\n"))
	}

	return nil
}
