package lockcheck

import "golang.org/x/tools/go/ssa"

// bbid identifies a basic block within a function: the Go analog of
// spec.md's Bbid (DefId + BasicBlock index). *ssa.Function pointers are
// stable for the lifetime of a built ssa.Program, so Fn plus the block's
// own Index make a comparable, hashable key.
type bbid struct {
	Fn    *ssa.Function
	Block int
}

func fnStart(fn *ssa.Function) bbid {
	return bbid{Fn: fn, Block: 0}
}

func (b bbid) block() *ssa.BasicBlock {
	blocks, ok := tryBlocks(b.Fn)
	if !ok || b.Block < 0 || b.Block >= len(blocks) {
		return nil
	}
	return blocks[b.Block]
}

// walkPos is a specific point within a function body: the entry to
// block Block's NextInstr'th instruction (NextInstr == len(Instrs) means
// "about to execute the block's terminator"). This is the Go analog of
// spec.md's Bbid, refined with an instruction offset: unlike MIR, a
// go/ssa call is not a block terminator, so multiple call sites and
// multiple possible resume points can share one block, and a bare bbid
// cannot identify "the point right after this particular call."
type walkPos struct {
	Block     bbid
	NextInstr int
}

func callPos(fn *ssa.Function, block, instrIdx int) walkPos {
	return walkPos{Block: bbid{Fn: fn, Block: block}, NextInstr: instrIdx + 1}
}

func blockStart(b bbid) walkPos {
	return walkPos{Block: b, NextInstr: 0}
}

// tryBlocks returns fn's basic blocks, or ok=false if fn has no
// retrievable body (external function, unexercised interface method,
// cgo/asm stub, or — in single-package go-vet mode — a function outside
// the analyzed package). This is the one place that may observe
// fn.Blocks == nil; every other accessor goes through it, the Go analog
// of spec.md's try_optimized_mir.
func tryBlocks(fn *ssa.Function) ([]*ssa.BasicBlock, bool) {
	if fn == nil || fn.Blocks == nil {
		return nil, false
	}
	return fn.Blocks, true
}
