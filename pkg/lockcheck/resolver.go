package lockcheck

import (
	"go/token"

	"golang.org/x/tools/go/ssa"
)

// unwrapSSAValue strips Phi nodes (if all edges agree) to find the
// underlying value. Adapted from akerouanton-golintmu/resolver.go's
// function of the same name — the problem (trace an ssa.Value back
// through phi joins to a canonical identity) is identical in this
// domain, so the algorithm is kept nearly verbatim.
func unwrapSSAValue(v ssa.Value) ssa.Value {
	visited := make(map[*ssa.Phi]bool)
	return unwrapSSAValueVisited(v, visited)
}

func unwrapSSAValueVisited(v ssa.Value, visited map[*ssa.Phi]bool) ssa.Value {
	for {
		phi, ok := v.(*ssa.Phi)
		if !ok {
			return v
		}
		resolved := resolvePhiIfUniform(phi, visited)
		if resolved == nil {
			return v
		}
		v = resolved
	}
}

// resolvePhiIfUniform returns the single value all of phi's edges agree
// on, or nil if they diverge. The visited set prevents infinite
// recursion on phi cycles (loops).
func resolvePhiIfUniform(phi *ssa.Phi, visited map[*ssa.Phi]bool) ssa.Value {
	if visited[phi] {
		return nil
	}
	visited[phi] = true

	var unique ssa.Value
	for _, edge := range phi.Edges {
		edge = unwrapSSAValueVisited(edge, visited)
		if unique == nil {
			unique = edge
		} else if unique != edge {
			return nil
		}
	}
	return unique
}

// canonicalizeBase follows through UnOp dereferences (token.MUL) in
// addition to Phi nodes. Needed because when a closure captures a
// guard-bearing variable, the SSA builder lifts it to a heap cell; each
// use becomes a separate load from the cell. Following the deref to the
// underlying Alloc makes two loads from the same cell resolve to the
// same canonical value.
func canonicalizeBase(v ssa.Value) ssa.Value {
	v = unwrapSSAValue(v)
	seen := make(map[ssa.Value]bool)
	for {
		if seen[v] {
			return v
		}
		seen[v] = true
		unop, ok := v.(*ssa.UnOp)
		if !ok || unop.Op != token.MUL {
			return v
		}
		v = unwrapSSAValue(unop.X)
	}
}

// guardValueOf returns the value a lock-method call actually produces as
// the guard: the call itself when the method returns the guard alone,
// or the zero-indexed component when it returns (*Guard[T], error) — a
// tuple call in go/ssa is represented by the *ssa.Call plus downstream
// *ssa.Extract instructions reading each component.
func guardValueOf(call *ssa.Call) ssa.Value {
	if call.Call.Signature().Results().Len() <= 1 {
		return call
	}
	for _, ref := range *call.Referrers() {
		if ext, ok := ref.(*ssa.Extract); ok && ext.Index == 0 {
			return ext
		}
	}
	return call
}

// sameValue reports whether a and b refer to the same logical value,
// after canonicalizing through phi joins and closure-cell derefs.
func sameValue(a, b ssa.Value) bool {
	return canonicalizeBase(a) == canonicalizeBase(b)
}
