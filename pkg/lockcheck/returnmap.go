package lockcheck

import "golang.org/x/tools/go/ssa"

// returnLocation is one call site where a function's result was bound to
// a destination value in some caller: the Go analog of spec.md's
// ReturnLocation/LocalBlockPair.
type returnLocation struct {
	Resume walkPos   // where to resume walking in the caller, right after the call
	Value  ssa.Value // the destination value (the *ssa.Call or its guard-component *ssa.Extract)
}

// returnMap is the Go analog of spec.md's FunctionReturnMap: for every
// function F reachable in the program, the call sites elsewhere that
// call F and bind its result. Built once during invocation collection
// (SPEC_FULL.md §4.2) over every call site in the program, not only
// lock-method calls, because the guard-flow collector's forward-return
// mode (§4.3) must resume the walk at any of F's callers once F returns
// the guard to them.
type returnMap map[*ssa.Function][]returnLocation

func (m returnMap) insert(callee *ssa.Function, loc returnLocation) {
	m[callee] = append(m[callee], loc)
}

func (m returnMap) at(callee *ssa.Function) []returnLocation {
	return m[callee]
}
