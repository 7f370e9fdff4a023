// Package lockcheck implements the lock-order dependency analysis
// described in SPEC_FULL.md: given a configured generic lock type and
// its guard, find every pair of lock classes whose acquisition order is
// inconsistent somewhere in a Go program's call graph.
//
// The package operates over a whole-program golang.org/x/tools/go/ssa
// build (see cmd/lockcheck) or, more conservatively, over a single
// package's buildssa output (see pkg/analyzer) — in the latter mode,
// calls that leave the analyzed package simply have no retrievable body
// and degrade to Undetermined, exactly as SPEC_FULL.md §4.3.4 specifies.
package lockcheck

import (
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ssa"
)

// Diagnostic is the exported, presentation-ready form of a deadlockError:
// the two lock classes involved, named via the Pass that found them, and
// the two positions spec.md's two-span diagnostic format requires
// (SPEC_FULL.md §6.4).
type Diagnostic struct {
	Target string

	ParentClass string
	ChildClass  string

	ParentPos token.Pos
	ChildPos  token.Pos
}

// Pass holds the per-target state of one run of the five-phase pipeline
// (SPEC_FULL.md §2): a lock-class registry, the recorded invocations, a
// forward-return map, and the dependency graph built from them. A Pass
// is created fresh for each configured lock target and discarded once
// Run returns (SPEC_FULL.md §3, "Lifecycles").
type Pass struct {
	target      *Target
	registry    *registry
	invocations map[walkPos]*LockInvocation
	returns     returnMap
	graph       *depGraph

	externalWrappers map[*ssa.Function]types.Type
}

// NewPass creates a Pass for one resolved lock target.
func NewPass(target *Target) *Pass {
	return &Pass{
		target:      target,
		registry:    newRegistry(),
		invocations: make(map[walkPos]*LockInvocation),
		returns:     make(returnMap),
	}
}

// Run executes the pipeline over fns — every function the caller wants
// considered part of the program (the whole reachable program in
// whole-program mode, or one package's source functions in go-vet mode)
// — and returns every lock-order violation found, ordered by the
// dependent (child) call site's position. supp may be nil; any
// diagnostic whose dependent call site lies in a //lockcheck:ignore'd
// function is dropped before the result is returned.
func (p *Pass) Run(fns []*ssa.Function, supp *suppressions) []Diagnostic {
	p.collectInvocations(fns)
	p.collectDependantLockClasses()
	p.buildDependencyGraph()
	errs := p.detectDeadlocks()

	out := make([]Diagnostic, 0, len(errs))
	for _, e := range errs {
		if supp.suppressed(e.ChildFn) {
			continue
		}
		out = append(out, Diagnostic{
			Target:      p.target.Name,
			ParentClass: p.registry.String(e.ParentClass),
			ChildClass:  p.registry.String(e.ChildClass),
			ParentPos:   e.ParentPos,
			ChildPos:    e.ChildPos,
		})
	}
	return out
}

// buildDependencyGraph projects the recorded invocations' Children sets
// onto LockClass edges (SPEC_FULL.md §4.4's "get_dependant_map").
func (p *Pass) buildDependencyGraph() {
	p.graph = newDepGraph()
	for _, inv := range p.invocations {
		for childPos := range inv.Children {
			child, ok := p.invocations[childPos]
			if !ok {
				continue
			}
			p.graph.addEdge(classEdge{
				From:      inv.Class,
				To:        child.Class,
				ParentPos: inv.Pos,
				ChildPos:  child.Pos,
				ChildFn:   child.Site.Block.Fn,
			})
		}
	}
}

// detectDeadlocks reports, for every direct dependency edge From->To, a
// deadlockError if To's class can itself reach From's class elsewhere in
// the graph (including From==To, a self-cycle) — the two-class lock
// inversion spec.md's run_pass/dependancies_contain check for.
func (p *Pass) detectDeadlocks() []deadlockError {
	errs := newErrorSet()
	for _, edges := range p.graph.edges {
		for _, e := range edges {
			cyclical := e.From == e.To
			if !cyclical {
				cyclical = p.graph.dependenciesContain(e.To, e.From, make(map[LockClass]bool))
			}
			if cyclical {
				errs.add(deadlockError{
					ParentClass: e.From,
					ChildClass:  e.To,
					ParentPos:   e.ParentPos,
					ChildPos:    e.ChildPos,
					ChildFn:     e.ChildFn,
				})
			}
		}
	}
	return errs.sorted()
}

// ClassName returns a human-readable name for a LockClass, for
// diagnostics: the type it was instantiated with.
func (p *Pass) ClassName(c LockClass) string {
	return p.registry.String(c)
}

// TargetName returns the name of the lock target this pass was
// constructed for.
func (p *Pass) TargetName() string {
	return p.target.Name
}
