package lockcheck

import (
	"go/token"
	"sort"

	"golang.org/x/tools/go/ssa"
)

// deadlockError is the Go analog of original_source's DeadlockError: two
// lock classes whose acquisition order is inconsistent somewhere in the
// program, reported at the two call sites that exhibit it (SPEC_FULL.md
// §4.4).
type deadlockError struct {
	ParentClass, ChildClass LockClass
	ParentPos, ChildPos     token.Pos
	ChildFn                 *ssa.Function // for //lockcheck:ignore suppression lookups
}

// errorSet deduplicates deadlockErrors by ChildPos alone, keeping the
// first one recorded for a given child position — the Go analog of
// original_source's BTreeSet<DeadlockError>, whose Ord/PartialEq are
// defined solely on child_span.
type errorSet struct {
	byChild map[token.Pos]deadlockError
}

func newErrorSet() *errorSet {
	return &errorSet{byChild: make(map[token.Pos]deadlockError)}
}

func (s *errorSet) add(e deadlockError) {
	if _, exists := s.byChild[e.ChildPos]; exists {
		return
	}
	s.byChild[e.ChildPos] = e
}

// sorted returns the recorded errors ordered by ChildPos, matching
// original_source's BTreeSet iteration order.
func (s *errorSet) sorted() []deadlockError {
	out := make([]deadlockError, 0, len(s.byChild))
	for _, e := range s.byChild {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChildPos < out[j].ChildPos })
	return out
}
