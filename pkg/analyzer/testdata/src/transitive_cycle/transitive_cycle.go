package transitive_cycle

import "locks"

type X int
type Y int
type Z int

func step1(x *locks.Lock[X], y *locks.Lock[Y]) {
	gx := x.Acquire()
	lockY(y)
	gx.Release()
}

func lockY(y *locks.Lock[Y]) {
	gy := y.Acquire() // want "lock-order inversion"
	gy.Release()
}

func step2(y *locks.Lock[Y], z *locks.Lock[Z]) {
	gy := y.Acquire()
	lockZ(z)
	gy.Release()
}

func lockZ(z *locks.Lock[Z]) {
	gz := z.Acquire() // want "lock-order inversion"
	gz.Release()
}

func step3(z *locks.Lock[Z], x *locks.Lock[X]) {
	gz := z.Acquire()
	lockX(x)
	gz.Release()
}

func lockX(x *locks.Lock[X]) {
	gx := x.Acquire() // want "lock-order inversion"
	gx.Release()
}
