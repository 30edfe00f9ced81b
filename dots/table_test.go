package dots

import (
	"testing"

	"github.com/KrisKennaway/ii-vision-sub000/screen"
	"pgregory.net/rapid"
)

// TestZeroDiagonal covers spec.md §8 item 5: the distance from any
// window to itself is always zero, in both tables, for every class.
func TestZeroDiagonal(t *testing.T) {
	tbl := Build(screen.ModeHGR, screen.PaletteNTSC)
	for _, class := range classesForMode(screen.ModeHGR) {
		k := uint(class.WindowBits())
		n := screen.PackedWindow(1 << k)
		for w := screen.PackedWindow(0); w < n; w++ {
			if got := tbl.Lookup(class, w, w); got != 0 {
				t.Fatalf("class %v: Lookup(%d,%d) = %d, want 0", class, w, w, got)
			}
			if got := tbl.LookupError(class, w, w); got != 0 {
				t.Fatalf("class %v: LookupError(%d,%d) = %d, want 0", class, w, w, got)
			}
		}
	}
}

// TestSymmetry covers spec.md §8 item 5: distance(a,b) == distance(b,a).
func TestSymmetry(t *testing.T) {
	tbl := Build(screen.ModeHGR, screen.PaletteNTSC)
	rapid.Check(t, func(t *rapid.T) {
		class := rapid.SampledFrom([]screen.ByteOffsetClass{screen.ClassMainEven, screen.ClassMainOdd}).Draw(t, "class")
		a := screen.PackedWindow(rapid.IntRange(0, 255).Draw(t, "a"))
		b := screen.PackedWindow(rapid.IntRange(0, 255).Draw(t, "b"))
		if got, want := tbl.Lookup(class, a, b), tbl.Lookup(class, b, a); got != want {
			t.Fatalf("Lookup(%d,%d)=%d != Lookup(%d,%d)=%d", a, b, got, b, a, want)
		}
		if got, want := tbl.LookupError(class, a, b), tbl.LookupError(class, b, a); got != want {
			t.Fatalf("LookupError(%d,%d)=%d != LookupError(%d,%d)=%d", a, b, got, b, a, want)
		}
	})
}

// TestErrorTableCostsMore checks the error table's unit cost scaling
// against the substitution table for a pair of bytes that differ by a
// single dot, per spec.md §4.1's 5x cost ratio.
func TestErrorTableCostsMore(t *testing.T) {
	tbl := Build(screen.ModeHGR, screen.PaletteNTSC)
	sub := tbl.Lookup(screen.ClassMainEven, 0x00, 0x01)
	err := tbl.LookupError(screen.ClassMainEven, 0x00, 0x01)
	if sub == 0 {
		t.Fatal("expected nonzero distance for differing bytes")
	}
	if err != sub*errorUnitCost {
		t.Errorf("error table distance = %d, want %d (sub=%d * %d)", err, sub*errorUnitCost, sub, errorUnitCost)
	}
}

// TestCacheRoundTrip covers spec.md §7's table memoization: a saved
// cache loads back to bit-identical tables.
func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	built := Build(screen.ModeHGR, screen.PaletteNTSC)
	if err := saveCache(cachePathForTest(dir, screen.ModeHGR, screen.PaletteNTSC), built); err != nil {
		t.Fatalf("saveCache: %v", err)
	}
	loaded, err := loadCache(cachePathForTest(dir, screen.ModeHGR, screen.PaletteNTSC), screen.ModeHGR, screen.PaletteNTSC)
	if err != nil {
		t.Fatalf("loadCache: %v", err)
	}
	for _, class := range classesForMode(screen.ModeHGR) {
		if len(loaded.sub[class]) != len(built.sub[class]) {
			t.Fatalf("class %v: table length mismatch", class)
		}
		for i := range built.sub[class] {
			if loaded.sub[class][i] != built.sub[class][i] {
				t.Fatalf("class %v: table value mismatch at %d", class, i)
			}
		}
		if len(loaded.err[class]) != len(built.err[class]) {
			t.Fatalf("class %v: error table length mismatch", class)
		}
		for i := range built.err[class] {
			if loaded.err[class][i] != built.err[class][i] {
				t.Fatalf("class %v: error table value mismatch at %d", class, i)
			}
		}
	}
}

func cachePathForTest(dir string, mode screen.Mode, pal screen.Palette) string {
	return dir + "/" + cacheFileName(mode, pal)
}
