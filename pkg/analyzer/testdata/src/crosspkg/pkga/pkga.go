package pkga

import "locks"

type ClassA int

// Service wraps a locks.Lock[ClassA] behind a method instead of exposing
// the lock directly, the common real-world shape a thin wrapper takes.
type Service struct {
	lock *locks.Lock[ClassA]
}

func NewService() *Service {
	return &Service{lock: locks.New(ClassA(0))}
}

// LockA is a thin pass-through wrapper: calling it is equivalent to
// calling locks.Lock[ClassA].Acquire directly, which pkg/analyzer's
// WrapsLockFact lets importers recognize without seeing this body.
func (s *Service) LockA() *locks.Guard[ClassA] {
	return s.lock.Acquire()
}
