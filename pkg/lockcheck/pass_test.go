package lockcheck_test

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"lockcheck/pkg/lockcheck"
)

const cycleSrc = `package sample

import "lockcheck/internal/testfixture"

type classA int
type classB int

func lockAThenB(a *testfixture.Lock[classA], b *testfixture.Lock[classB]) {
	ga := a.Acquire()
	gb := b.Acquire()
	gb.Release()
	ga.Release()
}

func lockBThenA(a *testfixture.Lock[classA], b *testfixture.Lock[classB]) {
	gb := b.Acquire()
	ga := a.Acquire()
	ga.Release()
	gb.Release()
}
`

const noCycleSrc = `package sample

import "lockcheck/internal/testfixture"

type classA int
type classB int

func lockAThenB(a *testfixture.Lock[classA], b *testfixture.Lock[classB]) {
	ga := a.Acquire()
	gb := b.Acquire()
	gb.Release()
	ga.Release()
}

func lockAAlone(a *testfixture.Lock[classA]) {
	ga := a.Acquire()
	ga.Release()
}
`

// buildProgram type-checks and builds the whole-program SSA for src, a
// single-file package placed (via an in-memory overlay, never written
// to disk) inside this module's own tree so golang.org/x/tools/go/packages
// resolves "lockcheck/internal/testfixture" the normal module-relative
// way.
func buildProgram(t *testing.T, src string) (*ssa.Program, []*ssa.Package) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd: %v", err)
	}
	samplePath := filepath.Join(cwd, "testoverlay_sample", "sample.go")

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
		Overlay: map[string][]byte{samplePath: []byte(src)},
		Dir:     cwd,
	}
	pkgs, err := packages.Load(cfg, "file="+samplePath)
	if err != nil {
		t.Fatalf("packages.Load: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("packages.Load reported errors for:\n%s", src)
	}
	prog, ssaPkgs := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	prog.Build()
	return prog, ssaPkgs
}

func allFunctions(prog *ssa.Program) []*ssa.Function {
	fns := ssautil.AllFunctions(prog)
	out := make([]*ssa.Function, 0, len(fns))
	for fn := range fns {
		out = append(out, fn)
	}
	return out
}

func resolveTestTarget(t *testing.T, prog *ssa.Program, pkgs []*ssa.Package) *lockcheck.Target {
	t.Helper()
	target, err := lockcheck.Resolve(prog, pkgs, lockcheck.TargetConfig{
		Lock:         "lockcheck/internal/testfixture.Lock",
		Guard:        "lockcheck/internal/testfixture.Guard",
		Constructor:  "lockcheck/internal/testfixture.New",
		LockMethod:   "(*lockcheck/internal/testfixture.Lock).Acquire",
		UnlockMethod: "(*lockcheck/internal/testfixture.Guard).Release",
	})
	if err != nil {
		t.Fatalf("lockcheck.Resolve: %v", err)
	}
	return target
}

func TestPassDetectsDirectCycle(t *testing.T) {
	prog, pkgs := buildProgram(t, cycleSrc)
	target := resolveTestTarget(t, prog, pkgs)

	pass := lockcheck.NewPass(target)
	diags := pass.Run(allFunctions(prog), nil)

	if len(diags) == 0 {
		t.Fatal("expected at least one lock-order inversion, got none")
	}
	for _, d := range diags {
		if d.ParentClass == "" || d.ChildClass == "" {
			t.Errorf("diagnostic missing class names: %+v", d)
		}
	}
}

func TestPassAllowsConsistentOrder(t *testing.T) {
	prog, pkgs := buildProgram(t, noCycleSrc)
	target := resolveTestTarget(t, prog, pkgs)

	pass := lockcheck.NewPass(target)
	diags := pass.Run(allFunctions(prog), nil)

	if len(diags) != 0 {
		t.Fatalf("expected no lock-order inversions, got %+v", diags)
	}
}

const selfCycleSrc = `package sample

import "lockcheck/internal/testfixture"

type classA int

func lockTwice(a *testfixture.Lock[classA]) {
	g1 := a.Acquire()
	g2 := a.Acquire()
	g2.Release()
	g1.Release()
}
`

// TestPassDetectsSelfCycle covers the self-cycle seed scenario: the same
// lock class acquired a second time while the first acquisition is still
// live, with no intervening release.
func TestPassDetectsSelfCycle(t *testing.T) {
	prog, pkgs := buildProgram(t, selfCycleSrc)
	target := resolveTestTarget(t, prog, pkgs)

	pass := lockcheck.NewPass(target)
	diags := pass.Run(allFunctions(prog), nil)

	if len(diags) == 0 {
		t.Fatal("expected a self-cycle lock-order inversion, got none")
	}
	for _, d := range diags {
		if d.ParentClass != d.ChildClass {
			t.Errorf("expected parent and child class to match on a self-cycle, got %+v", d)
		}
	}
}

const sameClassBranchSrc = `package sample

import "lockcheck/internal/testfixture"

type classP int

func cond(flag bool, p1, p2 *testfixture.Lock[classP]) {
	g1 := p1.Acquire()
	if flag {
		g2 := p2.Acquire()
		g2.Release()
	}
	g1.Release()
}
`

// TestPassDetectsSameClassBranchCycle covers the branch-conditional
// reacquisition seed scenario in its same-class polarity: p1 and p2 are
// distinct Lock values but share class classP, and p2 is only reacquired
// on one branch. The inversion must still be reported, since it is
// reachable from p1's invocation regardless of which branch is taken.
func TestPassDetectsSameClassBranchCycle(t *testing.T) {
	prog, pkgs := buildProgram(t, sameClassBranchSrc)
	target := resolveTestTarget(t, prog, pkgs)

	pass := lockcheck.NewPass(target)
	diags := pass.Run(allFunctions(prog), nil)

	if len(diags) == 0 {
		t.Fatal("expected a same-class branch-conditional inversion, got none")
	}
}

const interproceduralReturnSrc = `package sample

import "lockcheck/internal/testfixture"

type classA int
type classB int

func acquireA(a *testfixture.Lock[classA]) *testfixture.Guard[classA] {
	return a.Acquire()
}

func lockAThenB(a *testfixture.Lock[classA], b *testfixture.Lock[classB]) {
	ga := acquireA(a)
	gb := b.Acquire()
	gb.Release()
	ga.Release()
}

func releaseWith(a *testfixture.Lock[classA], gb *testfixture.Guard[classB]) {
	ga := a.Acquire()
	ga.Release()
	gb.Release()
}

func lockBThenA(a *testfixture.Lock[classA], b *testfixture.Lock[classB]) {
	gb := b.Acquire()
	releaseWith(a, gb)
}
`

// TestPassTracksInterproceduralReturn covers the interprocedural
// return-flow seed scenario: acquireA hands its guard back to its caller
// via a return value, and releaseWith receives an already-held guard as
// a parameter before acquiring a second class itself. Both directions
// must be tracked for the A/B order inversion to surface.
func TestPassTracksInterproceduralReturn(t *testing.T) {
	prog, pkgs := buildProgram(t, interproceduralReturnSrc)
	target := resolveTestTarget(t, prog, pkgs)

	pass := lockcheck.NewPass(target)
	diags := pass.Run(allFunctions(prog), nil)

	if len(diags) == 0 {
		t.Fatal("expected an inversion flowing through return-passed and parameter-passed guards, got none")
	}
}

const tupleReturnSrc = `package sample

import "lockcheck/internal/testfixture"

type classA int
type classB int

func lockAThenB(a *testfixture.Lock[classA], b *testfixture.Lock[classB]) {
	ga, err := a.TryAcquire()
	if err != nil {
		return
	}
	gb, err := b.TryAcquire()
	if err != nil {
		ga.Release()
		return
	}
	gb.Release()
	ga.Release()
}

func lockBThenA(a *testfixture.Lock[classA], b *testfixture.Lock[classB]) {
	gb, err := b.TryAcquire()
	if err != nil {
		return
	}
	ga, err := a.TryAcquire()
	if err != nil {
		gb.Release()
		return
	}
	ga.Release()
	gb.Release()
}
`

// TestPassHandlesTupleReturningLockMethod covers the (*Guard[T], error)
// boundary case: the configured lock_method returns a tuple, and
// guardValueOf must find the *ssa.Extract reading the guard component
// rather than tracking the *ssa.Call itself.
func TestPassHandlesTupleReturningLockMethod(t *testing.T) {
	prog, pkgs := buildProgram(t, tupleReturnSrc)
	target, err := lockcheck.Resolve(prog, pkgs, lockcheck.TargetConfig{
		Lock:         "lockcheck/internal/testfixture.Lock",
		Guard:        "lockcheck/internal/testfixture.Guard",
		Constructor:  "lockcheck/internal/testfixture.New",
		LockMethod:   "(*lockcheck/internal/testfixture.Lock).TryAcquire",
		UnlockMethod: "(*lockcheck/internal/testfixture.Guard).Release",
	})
	if err != nil {
		t.Fatalf("lockcheck.Resolve: %v", err)
	}

	pass := lockcheck.NewPass(target)
	diags := pass.Run(allFunctions(prog), nil)

	if len(diags) == 0 {
		t.Fatal("expected an inversion through the tuple-returning lock method, got none")
	}
}
