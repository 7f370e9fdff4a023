package lockcheck

// guardState is the result of walking forward from a point where a guard
// value is live: either control flow reaches a point where the guard is
// known returned to the caller, a point where it was released via the
// configured unlock method, or the walk gave up without determining
// either (a diverging call, a missing body, an unresolved dynamic
// dispatch, or a recursion/loop that closed without new information).
type guardState int

const (
	undeterminedState guardState = iota
	droppedState
	returnedState
)

// combine joins two guardStates reached along different control-flow
// paths (e.g. the two arms of an If). Returned dominates Dropped
// dominates Undetermined: if the guard escapes to the caller along any
// path, the whole join is "returned" (the caller's scope now owns it, so
// dependency attribution cannot stop here); otherwise if it was dropped
// along any considered path, "dropped"; otherwise "undetermined".
func (a guardState) combine(b guardState) guardState {
	if a == returnedState || b == returnedState {
		return returnedState
	}
	if a == droppedState || b == droppedState {
		return droppedState
	}
	return undeterminedState
}

func (s guardState) String() string {
	switch s {
	case returnedState:
		return "returned"
	case droppedState:
		return "dropped"
	default:
		return "undetermined"
	}
}
