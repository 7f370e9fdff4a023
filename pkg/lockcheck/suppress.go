package lockcheck

import (
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ssa"
)

// suppressions holds parsed //lockcheck:ignore directives: a per-function
// diagnostic suppression (every diagnostic whose dependent call site lies
// in the annotated function is dropped), adapted from
// akerouanton-golintmu/annotations.go's comment-directive scanner
// (renamed from the teacher's mutex-specific //mu:ignore; this directive
// is an ambient usability convenience, not a requirement of SPEC_FULL.md,
// but isn't excluded by any of its Non-goals either — see DESIGN.md).
type suppressions struct {
	ignored map[*ssa.Function]bool
}

// ParseSuppressions scans every comment in files for //lockcheck:ignore
// directives and records the function each one annotates.
func ParseSuppressions(fset *token.FileSet, files []*ast.File, srcFuncs []*ssa.Function) *suppressions {
	s := &suppressions{ignored: make(map[*ssa.Function]bool)}
	for _, file := range files {
		var funcDecls []*ast.FuncDecl
		for _, decl := range file.Decls {
			if fd, ok := decl.(*ast.FuncDecl); ok {
				funcDecls = append(funcDecls, fd)
			}
		}
		for _, cg := range file.Comments {
			for _, comment := range cg.List {
				text := strings.TrimSpace(strings.TrimPrefix(comment.Text, "//"))
				if text != "lockcheck:ignore" && !strings.HasPrefix(text, "lockcheck:ignore ") {
					continue
				}
				if fn := findFuncForComment(fset, funcDecls, comment.Pos(), srcFuncs); fn != nil {
					s.ignored[fn] = true
				}
			}
		}
	}
	return s
}

// findFuncForComment finds the SSA function whose declaration contains
// or immediately follows the comment at commentPos.
func findFuncForComment(fset *token.FileSet, funcDecls []*ast.FuncDecl, commentPos token.Pos, srcFuncs []*ssa.Function) *ssa.Function {
	commentLine := fset.Position(commentPos).Line

	var best *ast.FuncDecl
	for _, fd := range funcDecls {
		fdLine := fset.Position(fd.Pos()).Line
		if fdLine >= commentLine && fdLine <= commentLine+1 {
			best = fd
			break
		}
		if fd.Body != nil && commentPos >= fd.Pos() && commentPos <= fd.Body.End() {
			best = fd
			break
		}
	}
	if best == nil {
		return nil
	}
	for _, fn := range srcFuncs {
		if fn.Pos() == best.Name.Pos() {
			return fn
		}
	}
	return nil
}

func (s *suppressions) suppressed(fn *ssa.Function) bool {
	return s != nil && fn != nil && s.ignored[fn]
}
