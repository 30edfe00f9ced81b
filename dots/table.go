package dots

import (
	"runtime"
	"sync"

	"github.com/KrisKennaway/ii-vision-sub000/screen"
)

// classIsOdd reports whether a class corresponds to an odd-column byte,
// which decodes its boundary symbol from bit 0 instead of bit 6.
func classIsOdd(c screen.ByteOffsetClass) bool {
	return c == screen.ClassMainOdd || c == screen.ClassAuxOdd
}

// Tables holds the four precomputed distance tables for one (mode,
// palette) pair: one substitution table and one error table per
// byte-offset class, each flattened to a 1-D slice indexed by
// (sourceWindow << k) | targetWindow where k is the class's window
// width. Built once per (mode, palette) and reused for the life of an
// encoding run; see cache.go for the on-disk memoization that avoids
// rebuilding it on every invocation.
type Tables struct {
	Mode    screen.Mode
	Palette screen.Palette

	sub [4][]uint16
	err [4][]uint16
}

// Lookup returns the substitution-table distance between two packed
// windows of the given class.
func (t *Tables) Lookup(class screen.ByteOffsetClass, source, target screen.PackedWindow) uint16 {
	k := uint(class.WindowBits())
	idx := uint32(source)<<k | uint32(target)
	return t.sub[class][idx]
}

// LookupError is Lookup against the error (speculative) table.
func (t *Tables) LookupError(class screen.ByteOffsetClass, source, target screen.PackedWindow) uint16 {
	k := uint(class.WindowBits())
	idx := uint32(source)<<k | uint32(target)
	return t.err[class][idx]
}

// classesForMode returns the byte-offset classes a table build needs to
// cover: just the two single-bitplane classes for HGR, all four once
// double-bitplane support is enabled.
func classesForMode(mode screen.Mode) []screen.ByteOffsetClass {
	if mode == screen.ModeDHGR {
		return []screen.ByteOffsetClass{
			screen.ClassMainEven, screen.ClassMainOdd,
			screen.ClassAuxEven, screen.ClassAuxOdd,
		}
	}
	return []screen.ByteOffsetClass{screen.ClassMainEven, screen.ClassMainOdd}
}

// Build computes the distance tables for (mode, palette) from scratch.
// The table-building loop body is embarrassingly parallel in the window
// value pairs, so the work is fanned out across GOMAXPROCS workers, the
// same worker-pool-over-a-shared-index pattern the teacher's pipeline
// stages use for their per-row fan-out.
func Build(mode screen.Mode, pal screen.Palette) *Tables {
	t := &Tables{Mode: mode, Palette: pal}

	for _, class := range classesForMode(mode) {
		k := uint(class.WindowBits())
		size := uint32(1) << (2 * k)
		sub := make([]uint16, size)
		errT := make([]uint16, size)

		buildOne(class, k, pal, sub, errT)
		t.sub[class] = sub
		t.err[class] = errT
	}
	return t
}

// buildOne fills the substitution and error tables for one class across
// worker goroutines, each owning a contiguous slice of source window
// values.
func buildOne(class screen.ByteOffsetClass, k uint, pal screen.Palette, sub, errT []uint16) {
	odd := classIsOdd(class)

	numSources := uint32(1) << k
	numTargets := uint32(1) << k

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if uint32(workers) > numSources {
		workers = int(numSources)
	}

	var wg sync.WaitGroup
	chunk := (numSources + uint32(workers) - 1) / uint32(workers)
	for w := 0; w < workers; w++ {
		lo := uint32(w) * chunk
		hi := lo + chunk
		if hi > numSources {
			hi = numSources
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi uint32) {
			defer wg.Done()
			for source := lo; source < hi; source++ {
				sourceByte := byte(source & 0xff)
				for target := uint32(0); target < numTargets; target++ {
					targetByte := byte(target & 0xff)
					idx := source<<k | target
					sub[idx] = editWeight(sourceByte, targetByte, odd, pal, false)
					errT[idx] = editWeight(sourceByte, targetByte, odd, pal, true)
				}
			}
		}(lo, hi)
	}
	wg.Wait()
}
