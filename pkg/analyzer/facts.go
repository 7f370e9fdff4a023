package analyzer

import (
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/ssa"

	"lockcheck/pkg/lockcheck"
)

// WrapsLockFact marks an exported function as a thin pass-through
// wrapper around a recorded lock invocation (see
// lockcheck.Pass.ClassOfDirectWrapper): calling it is, for this
// analysis's purposes, the same as calling the configured lock method
// directly. TypeExpr is the lock class's type, with every named type
// qualified by its package's name (as an importing file spells it), so
// importers can re-resolve it with types.Eval —
// the go/analysis analog of akerouanton-golintmu/facts.go's
// FieldGuardFact/FuncLockFact cross-package summaries, narrowed to the
// one fact shape this package's single-pass design actually needs.
type WrapsLockFact struct {
	Target   string
	TypeExpr string
}

func (*WrapsLockFact) AFact() {}

func (f *WrapsLockFact) String() string {
	return "WrapsLockFact(" + f.Target + ": " + f.TypeExpr + ")"
}

// registerWrappers imports WrapsLockFact for every external function
// this package's source calls, registering each as an external guard
// source on lp so that pkg/lockcheck's invocation collector recognizes
// calls to it.
func registerWrappers(pass *analysis.Pass, prog *ssa.Program, lp *lockcheck.Pass, target *lockcheck.Target, srcFuncs []*ssa.Function) {
	seen := make(map[*types.Func]bool)
	for _, fn := range srcFuncs {
		blocks, ok := fnBlocks(fn)
		if !ok {
			continue
		}
		for _, block := range blocks {
			for _, instr := range block.Instrs {
				call, ok := instr.(*ssa.Call)
				if !ok {
					continue
				}
				callee := call.Call.StaticCallee()
				if callee == nil {
					continue
				}
				obj, ok := callee.Object().(*types.Func)
				if !ok || obj.Pkg() == pass.Pkg || seen[obj] {
					continue
				}
				seen[obj] = true

				var fact WrapsLockFact
				if !pass.ImportObjectFact(obj, &fact) || fact.Target != target.Name {
					continue
				}
				tv, err := types.Eval(pass.Fset, pass.Pkg, firstPos(pass), fact.TypeExpr)
				if err != nil {
					continue
				}
				lp.RegisterExternalGuardSource(callee, tv.Type)
			}
		}
	}
}

func fnBlocks(fn *ssa.Function) ([]*ssa.BasicBlock, bool) {
	if fn == nil || fn.Blocks == nil {
		return nil, false
	}
	return fn.Blocks, true
}

func firstPos(pass *analysis.Pass) token.Pos {
	if len(pass.Files) == 0 {
		return token.NoPos
	}
	return pass.Files[0].Package
}

// exportWrappers exports a WrapsLockFact for every exported function in
// this package that lp.ClassOfDirectWrapper recognizes as a thin
// pass-through wrapper around a recorded invocation.
func exportWrappers(pass *analysis.Pass, lp *lockcheck.Pass, target *lockcheck.Target, srcFuncs []*ssa.Function) {
	for _, fn := range srcFuncs {
		obj, ok := fn.Object().(*types.Func)
		if !ok || !obj.Exported() || obj.Pkg() != pass.Pkg {
			continue
		}
		class, ok := lp.ClassOfDirectWrapper(fn)
		if !ok {
			continue
		}
		pass.ExportObjectFact(obj, &WrapsLockFact{
			Target:   target.Name,
			TypeExpr: types.TypeString(lp.ClassType(class), func(p *types.Package) string { return p.Name() }),
		})
	}
}
