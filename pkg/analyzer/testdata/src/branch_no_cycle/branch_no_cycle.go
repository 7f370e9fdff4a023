package branch_no_cycle

import "locks"

type P int
type Q int

// cond locks P unconditionally and, on one branch only, also locks Q
// while P is held. Q never locks P anywhere, so there is no inversion.
func cond(flag bool, p *locks.Lock[P], q *locks.Lock[Q]) {
	gp := p.Acquire()
	if flag {
		gq := q.Acquire()
		gq.Release()
	}
	gp.Release()
}

func lockQAlone(q *locks.Lock[Q]) {
	gq := q.Acquire()
	gq.Release()
}
