// Package analyzer wraps pkg/lockcheck as a golang.org/x/tools/go/analysis
// Analyzer, so lockcheck can run as one more check in `go vet`-compatible
// tooling (SPEC_FULL.md §1, "go-vet-compatible mode"). It is a deliberately more
// conservative mode than cmd/lockcheck: each package is analyzed on its
// own, so a call into a function defined in a package that hasn't been
// built into SSA here (any package other than this one, its imports
// included) has
// no retrievable body and degrades to Undetermined, exactly as
// pkg/lockcheck's whole-program mode would for any genuinely external
// call (SPEC_FULL.md §4.3.4). Adapted in structure from
// akerouanton-golintmu/golintmu.go's Analyzer/passContext/run shape;
// golintmu.go's own field-guard-inference algorithm is not reused here —
// that logic now lives, generalized, in pkg/lockcheck.
package analyzer

import (
	"flag"
	"fmt"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/buildssa"
	"golang.org/x/tools/go/ssa"

	"lockcheck/internal/config"
	"lockcheck/pkg/lockcheck"
)

func newFlagSet() flag.FlagSet {
	var fs flag.FlagSet
	fs.String("lockcheck.config", "", "path to lockcheck.toml (overrides discovery from the current directory)")
	return fs
}

var Analyzer = &analysis.Analyzer{
	Name:      "lockcheck",
	Doc:       "reports pairs of configured lock classes acquired in inconsistent order",
	Run:       run,
	Requires:  []*analysis.Analyzer{buildssa.Analyzer},
	FactTypes: []analysis.Fact{(*WrapsLockFact)(nil)},
	Flags:     newFlagSet(),
}

func run(pass *analysis.Pass) (any, error) {
	ssaResult, ok := pass.ResultOf[buildssa.Analyzer].(*buildssa.SSA)
	if !ok {
		return nil, nil
	}
	prog := ssaResult.Pkg.Prog

	manifestPath := pass.Analyzer.Flags.Lookup("lockcheck.config").Value.String()
	if manifestPath == "" {
		path, _, found, err := config.Find(".")
		if err != nil {
			return nil, fmt.Errorf("lockcheck: %w", err)
		}
		if !found {
			return nil, nil
		}
		manifestPath = path
	}
	manifest, err := config.Load(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("lockcheck: %w", err)
	}

	ssaPkgs := []*ssa.Package{ssaResult.Pkg}
	for _, imp := range reachableImports(pass.Pkg) {
		if p := prog.Package(imp); p != nil {
			ssaPkgs = append(ssaPkgs, p)
			continue
		}
		ssaPkgs = append(ssaPkgs, prog.CreatePackage(imp, nil, nil, true))
	}

	supp := lockcheck.ParseSuppressions(pass.Fset, pass.Files, ssaResult.SrcFuncs)

	for _, entry := range manifest.Targets() {
		target, err := lockcheck.Resolve(prog, ssaPkgs, entry)
		if err != nil {
			// A package that doesn't use this configured lock type at all
			// is the common case, not an error. Every resolution failure,
			// including a malformed config (e.g. wrong arity), is skipped
			// here without a report.
			continue
		}

		lockPass := lockcheck.NewPass(target)
		registerWrappers(pass, prog, lockPass, target, ssaResult.SrcFuncs)

		for _, d := range lockPass.Run(ssaResult.SrcFuncs, supp) {
			pass.Report(analysis.Diagnostic{
				Pos:     d.ChildPos,
				Message: fmt.Sprintf("lock-order inversion: %s can be acquired here while %s, acquired at %s, is still held", d.ChildClass, d.ParentClass, pass.Fset.Position(d.ParentPos)),
				Related: []analysis.RelatedInformation{
					{Pos: d.ParentPos, Message: fmt.Sprintf("%s first locked here", d.ParentClass)},
				},
			})
		}

		exportWrappers(pass, lockPass, target, ssaResult.SrcFuncs)
	}

	return nil, nil
}

// reachableImports returns every package transitively imported by pkg.
func reachableImports(pkg *types.Package) []*types.Package {
	seen := make(map[*types.Package]bool)
	var out []*types.Package
	var walk func(*types.Package)
	walk = func(p *types.Package) {
		for _, imp := range p.Imports() {
			if seen[imp] {
				continue
			}
			seen[imp] = true
			out = append(out, imp)
			walk(imp)
		}
	}
	walk(pkg)
	return out
}
