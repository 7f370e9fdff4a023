package lockcheck

import (
	"fmt"
	"go/types"

	"golang.org/x/tools/go/ssa"

	"lockcheck/internal/resolve"
)

// TargetConfig is the unresolved form of one [[locks]] block in
// lockcheck.toml (see SPEC_FULL.md §6.1): the configured names as plain
// strings. Resolve turns it into a Target whose names are resolved to
// their go/types and go/ssa objects before it reaches the pipeline.
type TargetConfig struct {
	Lock          string
	Guard         string
	Constructor   string
	LockMethod    string
	UnlockMethod  string
}

// Target is a resolved lock configuration: a generic Lock type, its
// Guard type, and the methods that acquire and release it.
type Target struct {
	Name string // for diagnostics/logging, taken from TargetConfig.Lock

	LockType     *types.Named
	GuardType    *types.Named
	Constructor  *ssa.Function
	LockOrigin   *ssa.Function // generic origin of the lock method
	UnlockOrigin *ssa.Function // generic origin of the unlock method
}

// Resolve turns a TargetConfig into a Target against the given
// whole-program SSA, validating the hard-coded arity requirement: the
// configured lock type must have exactly one type parameter (SPEC_FULL.md
// §9, "Hard-coded arity").
func Resolve(prog *ssa.Program, pkgs []*ssa.Package, cfg TargetConfig) (*Target, error) {
	lockType, err := resolve.Type(pkgs, cfg.Lock)
	if err != nil {
		return nil, fmt.Errorf("lock type: %w", err)
	}
	if n := lockType.TypeParams().Len(); n != 1 {
		return nil, fmt.Errorf("lock type %s must have exactly one type parameter, has %d", cfg.Lock, n)
	}

	guardType, err := resolve.Type(pkgs, cfg.Guard)
	if err != nil {
		return nil, fmt.Errorf("guard type: %w", err)
	}
	if n := guardType.TypeParams().Len(); n != 1 {
		return nil, fmt.Errorf("guard type %s must have exactly one type parameter, has %d", cfg.Guard, n)
	}

	constructor, err := resolve.Func(prog, pkgs, cfg.Constructor)
	if err != nil {
		return nil, fmt.Errorf("constructor: %w", err)
	}

	lockMethod, err := resolve.Func(prog, pkgs, cfg.LockMethod)
	if err != nil {
		return nil, fmt.Errorf("lock_method: %w", err)
	}

	unlockMethod, err := resolve.Func(prog, pkgs, cfg.UnlockMethod)
	if err != nil {
		return nil, fmt.Errorf("unlock_method: %w", err)
	}

	return &Target{
		Name:         cfg.Lock,
		LockType:     lockType,
		GuardType:    guardType,
		Constructor:  resolve.Origin(constructor),
		LockOrigin:   resolve.Origin(lockMethod),
		UnlockOrigin: resolve.Origin(unlockMethod),
	}, nil
}

// isLockMethodCall reports whether callee is (an instantiation of) the
// configured lock method.
func (t *Target) isLockMethodCall(callee *ssa.Function) bool {
	return resolve.Origin(callee) == t.LockOrigin
}

// isUnlockMethodCall reports whether callee is (an instantiation of) the
// configured unlock method — the Go stand-in for RAII Drop (SPEC_FULL.md
// §1, §4.3).
func (t *Target) isUnlockMethodCall(callee *ssa.Function) bool {
	return resolve.Origin(callee) == t.UnlockOrigin
}

// classArgOf returns the sole type argument of named (e.g. T for the
// receiver type Lock[T] of a lock-method call), or nil if named does not
// have exactly one type argument. It does not check which generic type
// named instantiates.
func classArgOf(named *types.Named) types.Type {
	args := named.TypeArgs()
	if args == nil || args.Len() != 1 {
		return nil
	}
	return args.At(0)
}

// namedReceiver strips pointer indirection from a receiver static type
// and returns the underlying *types.Named, if any.
func namedReceiver(t types.Type) *types.Named {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, _ := t.(*types.Named)
	return named
}
