package screen

import (
	"testing"

	"pgregory.net/rapid"
)

// TestBijection covers spec.md §8 item 1: for every (x, y), mapping to
// an address and back recovers the same (page, y, x).
func TestBijection(t *testing.T) {
	for y := 0; y < Rows; y++ {
		for x := 0; x < Cols; x++ {
			page, offset := CoordsToAddr(x, y, 0)
			gotX, gotY, ok := AddrToCoords(page, offset)
			if !ok {
				t.Fatalf("(x=%d,y=%d) -> (page=%d,offset=%d) reported as a hole", x, y, page, offset)
			}
			if gotX != x || gotY != y {
				t.Errorf("(x=%d,y=%d) -> (%d,%d) -> (x=%d,y=%d), want round trip", x, y, page, offset, gotX, gotY)
			}
		}
	}
}

// TestBijectionProperty is the same invariant checked with randomized
// inputs via rapid, matching the corpus's preference for property tests
// over hand-enumerated tables for this kind of law.
func TestBijectionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.IntRange(0, Cols-1).Draw(t, "x")
		y := rapid.IntRange(0, Rows-1).Draw(t, "y")

		page, offset := CoordsToAddr(x, y, 0)
		gotX, gotY, ok := AddrToCoords(page, offset)
		if !ok {
			t.Fatalf("(x=%d,y=%d) mapped to a reported screen hole", x, y)
		}
		if gotX != x || gotY != y {
			t.Fatalf("round trip mismatch: (%d,%d) != (%d,%d)", x, y, gotX, gotY)
		}
	})
}

// TestNonHoleCount checks the total count of visible bytes matches
// Cols*Rows, and that every other (page, offset) is flagged a hole.
func TestNonHoleCount(t *testing.T) {
	count := 0
	for page := PageMin; page < PageMax; page++ {
		for offset := 0; offset < OffsetCount; offset++ {
			if !IsScreenHole(page, offset) {
				count++
			}
		}
	}
	if count != Cols*Rows {
		t.Errorf("visible byte count = %d, want %d", count, Cols*Rows)
	}
}

// TestWriteRejectsScreenHole covers the "attempted write to a screen
// hole is a programmer error: assert and abort" requirement (spec.md
// §7).
func TestWriteRejectsScreenHole(t *testing.T) {
	m := NewMemoryImage(ModeHGR)
	holePage, holeOffset := -1, -1
	for page := PageMin; page < PageMax && holePage < 0; page++ {
		for offset := 0; offset < OffsetCount; offset++ {
			if IsScreenHole(page, offset) {
				holePage, holeOffset = page, offset
				break
			}
		}
	}
	if holePage < 0 {
		t.Fatal("no screen hole found to test against")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic writing to a screen hole")
		}
	}()
	m.Write(holePage, holeOffset, 0x7f)
}

// TestScreenHolesStayZero covers spec.md §8 item 2: after any number of
// writes to non-hole bytes, every hole byte remains zero.
func TestScreenHolesStayZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewMemoryImage(ModeHGR)
		n := rapid.IntRange(0, 200).Draw(t, "n")
		for i := 0; i < n; i++ {
			x := rapid.IntRange(0, Cols-1).Draw(t, "x")
			y := rapid.IntRange(0, Rows-1).Draw(t, "y")
			val := byte(rapid.IntRange(0, 255).Draw(t, "val"))
			page, offset := CoordsToAddr(x, y, 0)
			m.Write(page, offset, val)
		}
		for page := PageMin; page < PageMax; page++ {
			for offset := 0; offset < OffsetCount; offset++ {
				if IsScreenHole(page, offset) && m.Get(page, offset) != 0 {
					t.Fatalf("hole (page=%d,offset=%d) became non-zero", page, offset)
				}
			}
		}
	})
}

func TestFlatMemoryMapZeroesHoles(t *testing.T) {
	var flat FlatMemoryMap
	for i := range flat.Data {
		flat.Data[i] = 0xff
	}
	img := flat.ToMemoryImage(ModeHGR)
	for page := PageMin; page < PageMax; page++ {
		for offset := 0; offset < OffsetCount; offset++ {
			if IsScreenHole(page, offset) && img.Get(page, offset) != 0 {
				t.Fatalf("hole (page=%d,offset=%d) not zeroed by ToMemoryImage", page, offset)
			}
		}
	}
}
