package lockcheck

import (
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ssa"
)

// LockInvocation records one call site of the configured lock method:
// the Go analog of spec.md's LockInvocation (class, span, and the set of
// child invocations reachable while its guard is still live).
type LockInvocation struct {
	Class    LockClass
	Pos      token.Pos
	Site     walkPos   // the point right after the call, where its guard-flow walk starts
	Result   ssa.Value // the guard value the call produced
	Children map[walkPos]bool
}

// collectInvocations scans every instruction of every reachable function
// (SPEC_FULL.md §4.2; go/ssa calls are not terminators, so every
// instruction — not only each block's terminator — is inspected, see
// DESIGN.md Open Question 6) and records one LockInvocation per call
// site of the configured lock method, plus a returnMap entry for every
// call site encountered, lock-relevant or not.
func (p *Pass) collectInvocations(fns []*ssa.Function) {
	for _, fn := range fns {
		blocks, ok := tryBlocks(fn)
		if !ok {
			continue
		}
		for bi, block := range blocks {
			for ii, instr := range block.Instrs {
				call, ok := instr.(*ssa.Call)
				if !ok {
					continue
				}
				callee := call.Call.StaticCallee()
				if callee == nil {
					continue // dynamic dispatch / closure callee: documented imprecision
				}
				p.returns.insert(callee, returnLocation{
					Resume: callPos(fn, bi, ii),
					Value:  guardValueOf(call),
				})
				if p.target.isLockMethodCall(callee) {
					p.recordInvocation(fn, bi, ii, call, nil)
					continue
				}
				if classType, ok := p.externalWrapperClass(callee); ok {
					p.recordInvocation(fn, bi, ii, call, classType)
				}
			}
		}
	}
}

// recordInvocation records a LockInvocation for a confirmed call to the
// configured lock method, resolving the LockClass from the receiver's
// type argument. When override is non-nil, it is used as the class type
// directly instead — the path taken for a registered external wrapper
// function, whose receiver is not itself an instantiation of the
// configured lock type (see RegisterExternalGuardSource).
func (p *Pass) recordInvocation(fn *ssa.Function, blockIdx, instrIdx int, call *ssa.Call, override types.Type) {
	classType := override
	if classType == nil {
		args := call.Call.Args
		if len(args) == 0 {
			return
		}
		recv := namedReceiver(args[0].Type())
		if recv == nil {
			return
		}
		classType = classArgOf(recv)
		if classType == nil {
			return
		}
	}
	class := p.registry.classFor(classType)

	inv := &LockInvocation{
		Class:    class,
		Pos:      call.Pos(),
		Site:     callPos(fn, blockIdx, instrIdx),
		Result:   guardValueOf(call),
		Children: make(map[walkPos]bool),
	}
	p.invocations[inv.Site] = inv
}
