// Package testfixture provides a generic Lock[T]/Guard[T] pair for use
// in pkg/lockcheck and pkg/analyzer tests and testdata, standing in for
// the kind of hand-rolled mutex wrapper original_source/test_crate/src/locks.rs
// exercises its analysis against. Its lock and unlock methods are named
// Acquire and Release (TryAcquire is a tuple-returning alternative to
// Acquire).
package testfixture

import "sync"

// Lock wraps a value of type T behind a sync.Mutex, releasing access to
// it only through a Guard obtained via Acquire.
type Lock[T any] struct {
	mu  sync.Mutex
	val T
}

// New constructs a Lock holding v. Configured as the "constructor" in
// lockcheck.toml.
func New[T any](v T) *Lock[T] {
	return &Lock[T]{val: v}
}

// Acquire blocks until the lock is held and returns a Guard granting
// access to the protected value. Configured as the "lock_method".
func (l *Lock[T]) Acquire() *Guard[T] {
	l.mu.Lock()
	return &Guard[T]{lock: l}
}

// TryAcquire is an alternate lock_method shape: the tuple-returning
// style some real mutex wrappers use (e.g. a try-lock that can fail).
// Here it never fails; it exists to exercise the (*Guard[T], error)
// boundary case in resolver.go's guardValueOf.
func (l *Lock[T]) TryAcquire() (*Guard[T], error) {
	l.mu.Lock()
	return &Guard[T]{lock: l}, nil
}

// Guard grants access to a Lock's protected value for as long as it is
// held. There is no finalizer or Drop impl: callers must call Release
// explicitly, the Go stand-in for RAII scope-exit (SPEC_FULL.md §1).
type Guard[T any] struct {
	lock *Lock[T]
}

// Release unlocks the underlying Lock. Configured as the
// "unlock_method".
func (g *Guard[T]) Release() {
	g.lock.mu.Unlock()
}

// Value returns the protected value. Only valid while the Guard is held.
func (g *Guard[T]) Value() T {
	return g.lock.val
}

// Set updates the protected value. Only valid while the Guard is held.
func (g *Guard[T]) Set(v T) {
	g.lock.val = v
}
