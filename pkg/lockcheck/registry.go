package lockcheck

import (
	"fmt"
	"go/types"
)

// LockClass identifies one instantiation of the configured lock type,
// e.g. Lock[Account] and Lock[Ledger] are distinct classes even though
// they share the generic Lock[T] definition.
type LockClass int

// registry assigns a stable LockClass to each distinct instantiation of
// the configured lock type encountered during a pass. Classes are never
// recycled and never compared across independent passes (see DESIGN.md,
// "Per-target LockClass counter").
type registry struct {
	byKey     map[string]LockClass
	classType map[LockClass]types.Type
	next      LockClass
}

func newRegistry() *registry {
	return &registry{
		byKey:     make(map[string]LockClass),
		classType: make(map[LockClass]types.Type),
	}
}

// classFor returns the LockClass for the lock instance type t (the sole
// type argument the configured generic lock was instantiated with),
// allocating a new class on first sight. Go's types.Type is not
// comparable the way spec.md assumes its host type is, so classes are
// keyed by types.TypeString under types.RelativeTo(nil), falling back to
// types.Identical on string collision (distinct types, such as
// same-named types declared in different function scopes, can print
// identically).
func (r *registry) classFor(t types.Type) LockClass {
	key := types.TypeString(t, nil)
	if existing, ok := r.byKey[key]; ok {
		if types.Identical(r.classType[existing], t) {
			return existing
		}
		// String collision between non-identical types: fall back to a
		// linear scan over classes sharing this key, else allocate new.
		for class, ty := range r.classType {
			if types.TypeString(ty, nil) == key && types.Identical(ty, t) {
				return class
			}
		}
	}
	class := r.next
	r.next++
	r.byKey[key] = class
	r.classType[class] = t
	return class
}

// typeOf returns the instance type a LockClass was registered with.
func (r *registry) typeOf(c LockClass) types.Type {
	return r.classType[c]
}

func (r *registry) String(c LockClass) string {
	t := r.classType[c]
	if t == nil {
		return fmt.Sprintf("lockclass(%d)", int(c))
	}
	return types.TypeString(t, nil)
}
