package self_cycle

import "locks"

type S int

// lockTwice acquires the same lock class a second time while the first
// acquisition is still live, with no intervening release — the
// self-cycle case (parent and child class are identical).
func lockTwice(s *locks.Lock[S]) {
	g1 := s.Acquire()
	g2 := s.Acquire() // want "lock-order inversion"
	g2.Release()
	g1.Release()
}
