package direct_cycle

import "locks"

type A int
type B int

func lockAThenB(a *locks.Lock[A], b *locks.Lock[B]) {
	ga := a.Acquire()
	gb := b.Acquire() // want "lock-order inversion"
	gb.Release()
	ga.Release()
}

func lockBThenA(a *locks.Lock[A], b *locks.Lock[B]) {
	gb := b.Acquire()
	ga := a.Acquire() // want "lock-order inversion"
	ga.Release()
	gb.Release()
}
