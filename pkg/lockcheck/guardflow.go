package lockcheck

import "golang.org/x/tools/go/ssa"

// valuePos is the memoization key for the guard-flow walk: a specific
// walk position paired with the canonicalized value being tracked there
// — the Go analog of spec.md's LocalBlockPair.
type valuePos struct {
	Pos   walkPos
	Value ssa.Value
}

// guardWalker carries the per-invocation state of one guard-flow walk:
// the Go analog of original_source's DependantClassCollector. A fresh
// guardWalker is created for each recorded LockInvocation (see
// collectDependantLockClasses), so visited and sweepVisited never leak
// state between independent invocations' walks.
type guardWalker struct {
	pass         *Pass
	visited      map[valuePos]bool
	sweepVisited map[*ssa.Function]bool
}

// collectDependantLockClasses runs the guard-flow collector once per
// recorded invocation, populating each LockInvocation's Children with
// every other invocation whose guard is reachable while this one's guard
// is still live (SPEC_FULL.md §4.3).
func (p *Pass) collectDependantLockClasses() {
	for _, inv := range p.invocations {
		w := &guardWalker{
			pass:         p,
			visited:      make(map[valuePos]bool),
			sweepVisited: make(map[*ssa.Function]bool),
		}
		w.collect(inv.Site, inv.Result, true, inv.Children)
	}
}

// collect walks forward from pos tracking value, recording every
// invocation found reachable (with its guard still live) into children,
// and returns the guardState the walk concluded with.
//
// examineReturns selects the two modes spec.md's guard-flow collector
// distinguishes: true ("forward mode" — started directly from an
// invocation's call site, or resumed at a caller via the return map; on
// Return, fan out to every recorded caller and keep walking) or false
// ("callee mode" — reached by recursing into a specific callee because
// the guard was passed as an argument at a specific call; on Return,
// report the conclusion back to that one call site instead of fanning
// out across every caller).
func (w *guardWalker) collect(pos walkPos, value ssa.Value, examineReturns bool, children map[walkPos]bool) guardState {
	value = canonicalizeBase(value)
	key := valuePos{Pos: pos, Value: value}
	if w.visited[key] {
		return undeterminedState
	}
	w.visited[key] = true

	block := pos.Block.block()
	if block == nil || len(block.Instrs) == 0 {
		return undeterminedState
	}

	for i := pos.NextInstr; i < len(block.Instrs); i++ {
		switch instr := block.Instrs[i].(type) {
		case *ssa.Call:
			sitePos := callPos(pos.Block.Fn, pos.Block.Block, i)
			if _, isInv := w.pass.invocations[sitePos]; isInv {
				children[sitePos] = true
			}
			newValue, stop, st := w.dispatchCall(instr, value, examineReturns, children)
			if stop {
				return st
			}
			value = newValue
		case *ssa.Defer:
			if w.guardPassed(instr.Call.Args, value) {
				// A deferred release is async relative to straight-line
				// flow here; conservatively treat the guard as consumed.
				return droppedState
			}
		case *ssa.Go:
			if w.guardPassed(instr.Call.Args, value) {
				return undeterminedState
			}
		}
	}

	return w.processTerminator(pos.Block, block, value, examineReturns, children)
}

// dispatchCall applies the (guard_passed_in, callee_resolvable)
// decision table of SPEC_FULL.md §4.3 to one *ssa.Call instruction.
// stop==true means the caller should return st immediately; stop==false
// means the walk continues in the same block with newValue as the
// current tracked value.
func (w *guardWalker) dispatchCall(call *ssa.Call, value ssa.Value, examineReturns bool, children map[walkPos]bool) (newValue ssa.Value, stop bool, st guardState) {
	callee := call.Call.StaticCallee()
	argIdx := w.guardArgIndex(call.Call.Args, value)

	switch {
	case argIdx >= 0 && callee != nil && w.pass.target.isUnlockMethodCall(callee):
		// The configured unlock method is the Go stand-in for MIR's
		// compiler-inserted Drop terminator: an atomic release, never
		// recursed into, regardless of what its own body does internally
		// (SPEC_FULL.md §4.3; DESIGN.md Open Question #1).
		return value, true, droppedState

	case argIdx >= 0 && callee == nil:
		// Guard passed to an unresolvable callee (dynamic dispatch or a
		// closure with no static target): conservatively assume it is
		// consumed there.
		return value, true, droppedState

	case argIdx >= 0 && callee != nil:
		if _, ok := tryBlocks(callee); !ok || argIdx >= len(callee.Params) {
			return value, true, undeterminedState
		}
		param := ssa.Value(callee.Params[argIdx])
		inner := w.collect(blockStart(fnStart(callee)), param, false, children)
		if inner == returnedState {
			// The callee handed the guard back out: continue in this
			// function from the call's own result onward.
			return guardValueOf(call), false, undeterminedState
		}
		return value, true, inner

	case argIdx < 0 && callee != nil:
		// Guard not part of this call, but the callee is resolvable:
		// sweep its whole body for invocations unconditionally.
		w.pass.collectAllInvocations(callee, children, w.sweepVisited)
		return value, false, undeterminedState

	default:
		return value, false, undeterminedState
	}
}

// processTerminator dispatches on a block's terminator instruction
// (SPEC_FULL.md §4.3.2).
func (w *guardWalker) processTerminator(b bbid, block *ssa.BasicBlock, value ssa.Value, examineReturns bool, children map[walkPos]bool) guardState {
	switch term := block.Instrs[len(block.Instrs)-1].(type) {
	case *ssa.Jump:
		succ := bbid{Fn: b.Fn, Block: block.Succs[0].Index}
		return w.collect(blockStart(succ), value, examineReturns, children)
	case *ssa.If:
		s0 := bbid{Fn: b.Fn, Block: block.Succs[0].Index}
		s1 := bbid{Fn: b.Fn, Block: block.Succs[1].Index}
		st0 := w.collect(blockStart(s0), value, examineReturns, children)
		st1 := w.collect(blockStart(s1), value, examineReturns, children)
		return st0.combine(st1)
	case *ssa.Return:
		return w.processReturn(b, term, value, examineReturns, children)
	case *ssa.Panic:
		return undeterminedState
	default:
		return undeterminedState
	}
}

// processReturn handles a Return terminator. Go has no compiler-enforced
// "the guard must be dropped or be the return value" invariant the way
// RAII gives the original, so a return that neither returns nor has
// already dropped the tracked value is a soft Undetermined, never a
// hard error (SPEC_FULL.md §4.3, "no Go SSA analog").
func (w *guardWalker) processReturn(b bbid, ret *ssa.Return, value ssa.Value, examineReturns bool, children map[walkPos]bool) guardState {
	matched := false
	for _, r := range ret.Results {
		if sameValue(r, value) {
			matched = true
			break
		}
	}
	if !matched {
		return undeterminedState
	}
	if !examineReturns {
		return returnedState
	}

	locs := w.pass.returns.at(b.Fn)
	if len(locs) == 0 {
		// Returned out of the analyzed universe (an unanalyzed caller, or
		// the program's entrypoint): the guard has escaped for good.
		return returnedState
	}
	state := undeterminedState
	for _, loc := range locs {
		state = state.combine(w.collect(loc.Resume, loc.Value, true, children))
	}
	return state
}

// guardArgIndex returns the index of the first argument that refers to
// value, or -1 if none does.
func (w *guardWalker) guardArgIndex(args []ssa.Value, value ssa.Value) int {
	for i, a := range args {
		if sameValue(a, value) {
			return i
		}
	}
	return -1
}

func (w *guardWalker) guardPassed(args []ssa.Value, value ssa.Value) bool {
	return w.guardArgIndex(args, value) >= 0
}

// collectAllInvocations sweeps fn's entire body unconditionally,
// recording every invocation reachable from it (transitively, through
// further resolvable calls) into children — the Go analog of
// original_source's collect_all_invocations, used for the (guard not
// passed in, callee resolvable) case of the call dispatch table
// (SPEC_FULL.md §4.3.3). Memoized per top-level walk via visitedFns, not
// globally, matching the original's per-collector visited_functions.
func (p *Pass) collectAllInvocations(fn *ssa.Function, children map[walkPos]bool, visitedFns map[*ssa.Function]bool) {
	if visitedFns[fn] {
		return
	}
	visitedFns[fn] = true

	blocks, ok := tryBlocks(fn)
	if !ok {
		return
	}
	for bi, block := range blocks {
		for ii, instr := range block.Instrs {
			call, ok := instr.(*ssa.Call)
			if !ok {
				continue
			}
			pos := callPos(fn, bi, ii)
			if _, isInv := p.invocations[pos]; isInv {
				children[pos] = true
			}
			if callee := call.Call.StaticCallee(); callee != nil {
				p.collectAllInvocations(callee, children, visitedFns)
			}
		}
	}
}
