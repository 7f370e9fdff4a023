package branch_same_class

import "locks"

type P int

// cond locks p1 unconditionally and, on one branch only, also locks p2
// — a distinct Lock value but the same class P — while p1 is still
// held. Unlike branch_no_cycle's different-class variant, this is a
// same-class reacquisition and must be reported regardless of which
// branch is taken.
func cond(flag bool, p1, p2 *locks.Lock[P]) {
	g1 := p1.Acquire()
	if flag {
		g2 := p2.Acquire() // want "lock-order inversion"
		g2.Release()
	}
	g1.Release()
}
