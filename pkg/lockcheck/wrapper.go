package lockcheck

import (
	"go/types"

	"golang.org/x/tools/go/ssa"
)

// RegisterExternalGuardSource tells this Pass to treat calls to fn as a
// lock invocation of the class classType, even though fn is not the
// configured lock method itself. This lets a caller (pkg/analyzer, in
// its single-package mode) recognize a thin pass-through wrapper
// function defined in another package —
//
//	func (s *Service) Lock() *Guard[int] { return s.mu.Acquire() }
//
// — as if it acquired the lock directly, without needing fn's SSA body
// (which, across a package boundary in go-vet mode, usually isn't
// available). Must be called before Run.
func (p *Pass) RegisterExternalGuardSource(fn *ssa.Function, classType types.Type) {
	if p.externalWrappers == nil {
		p.externalWrappers = make(map[*ssa.Function]types.Type)
	}
	p.externalWrappers[fn] = classType
}

func (p *Pass) externalWrapperClass(fn *ssa.Function) (types.Type, bool) {
	t, ok := p.externalWrappers[fn]
	return t, ok
}

// ClassType returns the type.Type a LockClass was registered under.
func (p *Pass) ClassType(c LockClass) types.Type {
	return p.registry.typeOf(c)
}

// ClassOfDirectWrapper reports whether fn's entire body is a thin
// pass-through wrapper — one block, ending in a return of the result of
// a single already-recorded lock invocation — and if so, which class
// that invocation belongs to. Run must have already populated
// p.invocations by the time this is called. pkg/analyzer uses this to
// export a WrapsLockFact for such functions, so importing packages can
// recognize calls to them as lock invocations without needing fn's SSA
// body.
func (p *Pass) ClassOfDirectWrapper(fn *ssa.Function) (LockClass, bool) {
	blocks, ok := tryBlocks(fn)
	if !ok || len(blocks) != 1 {
		return 0, false
	}
	block := blocks[0]
	if len(block.Instrs) == 0 {
		return 0, false
	}
	ret, ok := block.Instrs[len(block.Instrs)-1].(*ssa.Return)
	if !ok || len(ret.Results) != 1 {
		return 0, false
	}
	for i, instr := range block.Instrs {
		call, ok := instr.(*ssa.Call)
		if !ok {
			continue
		}
		if !sameValue(guardValueOf(call), ret.Results[0]) {
			continue
		}
		if inv, ok := p.invocations[callPos(fn, 0, i)]; ok {
			return inv.Class, true
		}
	}
	return 0, false
}
