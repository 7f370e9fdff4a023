// Package resolve maps the configured strings in lockcheck.toml (type and
// function names) onto the go/types and go/ssa objects the analyzer
// pipeline operates on. This plays the role spec.md assigns to the
// original's synthetic name-resolution shim, but needs no shim of its
// own: go/types already exposes free-form name lookup through
// (*types.Package).Scope(), so a configured string resolves directly
// against the loaded program's packages.
package resolve

import (
	"fmt"
	"go/types"
	"strings"

	"golang.org/x/tools/go/ssa"
)

// Type resolves a "pkgpath.Name" string to the *types.Named it denotes,
// among the packages reachable from pkgs (and their imports).
func Type(pkgs []*ssa.Package, qualified string) (*types.Named, error) {
	pkgPath, name, err := splitQualified(qualified)
	if err != nil {
		return nil, err
	}
	pkg := findPackage(pkgs, pkgPath)
	if pkg == nil {
		return nil, fmt.Errorf("resolve: package %q not found among loaded packages", pkgPath)
	}
	obj := pkg.Pkg.Scope().Lookup(name)
	if obj == nil {
		return nil, fmt.Errorf("resolve: %q has no symbol %q", pkgPath, name)
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("resolve: %s.%s is not a type", pkgPath, name)
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("resolve: %s.%s is not a named type", pkgPath, name)
	}
	return named, nil
}

// Func resolves a function or method reference to its *ssa.Function.
// Accepted forms:
//
//	"pkgpath.Name"              a package-level function
//	"(pkgpath.Type).Method"     a value-receiver method
//	"(*pkgpath.Type).Method"    a pointer-receiver method
//
// The returned Function is the generic origin if Name/Type is generic;
// callers match instantiations against it via (*ssa.Function).Origin.
func Func(prog *ssa.Program, pkgs []*ssa.Package, qualified string) (*ssa.Function, error) {
	if strings.HasPrefix(qualified, "(") {
		return resolveMethod(prog, pkgs, qualified)
	}
	pkgPath, name, err := splitQualified(qualified)
	if err != nil {
		return nil, err
	}
	pkg := findPackage(pkgs, pkgPath)
	if pkg == nil {
		return nil, fmt.Errorf("resolve: package %q not found among loaded packages", pkgPath)
	}
	member, ok := pkg.Members[name]
	if !ok {
		return nil, fmt.Errorf("resolve: %q has no member %q", pkgPath, name)
	}
	fn, ok := member.(*ssa.Function)
	if !ok {
		return nil, fmt.Errorf("resolve: %s.%s is not a function", pkgPath, name)
	}
	return fn, nil
}

func resolveMethod(prog *ssa.Program, pkgs []*ssa.Package, qualified string) (*ssa.Function, error) {
	close := strings.Index(qualified, ")")
	if close < 0 || !strings.HasPrefix(qualified[close+1:], ".") {
		return nil, fmt.Errorf("resolve: malformed method reference %q", qualified)
	}
	recv := qualified[1:close]
	method := qualified[close+2:]
	ptr := strings.HasPrefix(recv, "*")
	recv = strings.TrimPrefix(recv, "*")

	named, err := Type(pkgs, recv)
	if err != nil {
		return nil, fmt.Errorf("resolve: method receiver: %w", err)
	}

	var recvType types.Type = named
	if ptr {
		recvType = types.NewPointer(named)
	}
	sel := prog.MethodSets.MethodSet(recvType).Lookup(named.Obj().Pkg(), method)
	if sel == nil {
		return nil, fmt.Errorf("resolve: %s has no method %q", recv, method)
	}
	fn := prog.MethodValue(sel)
	if fn == nil {
		// MethodValue yields nil for methods of a generic type; the
		// declared method itself is the generic origin.
		if obj, ok := sel.Obj().(*types.Func); ok {
			fn = prog.FuncValue(obj)
		}
	}
	if fn == nil {
		return nil, fmt.Errorf("resolve: could not build method value for %s.%s", recv, method)
	}
	return fn, nil
}

func splitQualified(qualified string) (pkgPath, name string, err error) {
	idx := strings.LastIndex(qualified, ".")
	if idx < 0 {
		return "", "", fmt.Errorf("resolve: %q is not of the form pkgpath.Name", qualified)
	}
	return qualified[:idx], qualified[idx+1:], nil
}

func findPackage(pkgs []*ssa.Package, path string) *ssa.Package {
	for _, p := range pkgs {
		if p != nil && p.Pkg != nil && p.Pkg.Path() == path {
			return p
		}
	}
	return nil
}

// Origin returns fn's generic origin if fn is an instantiation of a
// generic function or method, else fn itself.
func Origin(fn *ssa.Function) *ssa.Function {
	if o := fn.Origin(); o != nil {
		return o
	}
	return fn
}
