package pkgb

import (
	"crosspkg/pkga"
	"locks"
)

type ClassB int

func lockAThenB(svc *pkga.Service, b *locks.Lock[ClassB]) {
	ga := svc.LockA()
	gb := b.Acquire() // want "lock-order inversion"
	gb.Release()
	ga.Release()
}

func lockBThenA(svc *pkga.Service, b *locks.Lock[ClassB]) {
	gb := b.Acquire()
	ga := svc.LockA() // want "lock-order inversion"
	ga.Release()
	gb.Release()
}
