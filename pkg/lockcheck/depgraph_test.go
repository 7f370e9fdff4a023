package lockcheck

import "testing"

func TestDependenciesContainFindsTransitiveReachability(t *testing.T) {
	g := newDepGraph()
	g.addEdge(classEdge{From: 1, To: 2, ParentPos: 10, ChildPos: 20})
	g.addEdge(classEdge{From: 2, To: 3, ParentPos: 30, ChildPos: 40})
	g.addEdge(classEdge{From: 3, To: 1, ParentPos: 50, ChildPos: 60})

	if !g.dependenciesContain(1, 3, make(map[LockClass]bool)) {
		t.Error("expected class 1 to transitively reach class 3")
	}
	if !g.dependenciesContain(3, 2, make(map[LockClass]bool)) {
		t.Error("expected class 3 to transitively reach class 2 (via 1)")
	}
	if g.dependenciesContain(1, 99, make(map[LockClass]bool)) {
		t.Error("class 1 should not reach an unrelated class")
	}
}

func TestDetectCyclesDeduplicatesRotations(t *testing.T) {
	g := newDepGraph()
	g.addEdge(classEdge{From: 1, To: 2, ChildPos: 1})
	g.addEdge(classEdge{From: 2, To: 3, ChildPos: 2})
	g.addEdge(classEdge{From: 3, To: 1, ChildPos: 3})

	cycles := g.detectCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected exactly one cycle after rotation dedup, got %d", len(cycles))
	}
	if len(cycles[0]) != 3 {
		t.Errorf("expected a 3-edge cycle, got %d edges", len(cycles[0]))
	}
}

func TestDetectCyclesIgnoresAcyclicGraph(t *testing.T) {
	g := newDepGraph()
	g.addEdge(classEdge{From: 1, To: 2, ChildPos: 1})
	g.addEdge(classEdge{From: 2, To: 3, ChildPos: 2})

	if cycles := g.detectCycles(); len(cycles) != 0 {
		t.Errorf("expected no cycles in a DAG, got %d", len(cycles))
	}
}
