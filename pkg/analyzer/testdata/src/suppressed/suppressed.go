package suppressed

import "locks"

type M int
type N int

//lockcheck:ignore
func lockMThenN(m *locks.Lock[M], n *locks.Lock[N]) {
	gm := m.Acquire()
	gn := n.Acquire()
	gn.Release()
	gm.Release()
}

func lockNThenM(m *locks.Lock[M], n *locks.Lock[N]) {
	gn := n.Acquire()
	gm := m.Acquire() // want "lock-order inversion"
	gm.Release()
	gn.Release()
}
