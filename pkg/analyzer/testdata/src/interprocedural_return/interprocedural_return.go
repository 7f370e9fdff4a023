package interprocedural_return

import "locks"

type A int
type B int

// acquireA hands its guard back to the caller through a return value
// instead of releasing it locally.
func acquireA(a *locks.Lock[A]) *locks.Guard[A] {
	return a.Acquire()
}

func lockAThenB(a *locks.Lock[A], b *locks.Lock[B]) {
	ga := acquireA(a)
	gb := b.Acquire() // want "lock-order inversion"
	gb.Release()
	ga.Release()
}

// releaseWith receives an already-held guard as a parameter and
// acquires a second class itself before releasing both.
func releaseWith(a *locks.Lock[A], gb *locks.Guard[B]) {
	ga := a.Acquire() // want "lock-order inversion"
	ga.Release()
	gb.Release()
}

func lockBThenA(a *locks.Lock[A], b *locks.Lock[B]) {
	gb := b.Acquire()
	releaseWith(a, gb)
}
