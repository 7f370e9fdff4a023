package cli

import (
	"fmt"
	"go/ast"
	"io"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"lockcheck/internal/config"
	"lockcheck/internal/report"
	"lockcheck/pkg/lockcheck"
)

// runCheck loads the whole program named by patterns, builds its SSA
// form (grounded on Heman10x-NGU-threadgraph/internal/static/lockrelease.go's
// packages.Load+ssautil.AllPackages+prog.Build() loader shape), runs one
// Pass per configured lock target, and renders the combined diagnostics.
// It returns the process exit code and a non-nil error only for
// conditions that prevented analysis from running at all.
func runCheck(stdout, stderr io.Writer, patterns []string) (int, error) {
	manifestPath := flagConfig
	if manifestPath == "" {
		path, _, ok, err := config.Find(flagDir)
		if err != nil {
			return exitError, err
		}
		if !ok {
			return exitError, fmt.Errorf("no lockcheck.toml found starting from %s", flagDir)
		}
		manifestPath = path
	}

	manifest, err := config.Load(manifestPath)
	if err != nil {
		return exitError, err
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
		Dir: flagDir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return exitError, fmt.Errorf("loading packages: %w", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return exitError, fmt.Errorf("errors while loading packages %v", patterns)
	}

	prog, ssaPkgs := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	prog.Build()

	allFns := ssautil.AllFunctions(prog)
	fns := make([]*ssa.Function, 0, len(allFns))
	for fn := range allFns {
		fns = append(fns, fn)
	}

	var files []*ast.File
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		files = append(files, p.Syntax...)
	})
	supp := lockcheck.ParseSuppressions(pkgs[0].Fset, files, fns)

	var allDiags []lockcheck.Diagnostic
	for _, entry := range manifest.Targets() {
		target, err := lockcheck.Resolve(prog, ssaPkgs, entry)
		if err != nil {
			return exitError, fmt.Errorf("resolving lock target %q: %w", entry.Lock, err)
		}
		pass := lockcheck.NewPass(target)
		allDiags = append(allDiags, pass.Run(fns, supp)...)
	}

	fset := pkgs[0].Fset
	switch flagFormat {
	case "json":
		if err := report.JSON(stdout, fset, allDiags); err != nil {
			return exitError, err
		}
	default:
		report.Terminal(stdout, fset, allDiags)
	}

	if len(allDiags) > 0 {
		return exitFound, nil
	}
	return exitClean, nil
}
