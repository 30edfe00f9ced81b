// Package screen models the bitmapped display memory of the target
// machine: the bijection between (page, offset) memory addresses and
// (x, y) screen coordinates, the screen-hole mask, and the live
// reconstructed image the scheduler converges toward a target frame.
package screen

import "fmt"

// Mode selects the bit-plane layout of display memory.
type Mode int

const (
	// ModeHGR is the single-bitplane mode. Complete and fully tested.
	ModeHGR Mode = iota
	// ModeDHGR is the double-bitplane mode (two interleaved memory
	// banks). Gated behind this flag per spec Open Question (ii); its
	// test matrix is an extension, not a requirement.
	ModeDHGR
)

func (m Mode) String() string {
	switch m {
	case ModeHGR:
		return "hgr"
	case ModeDHGR:
		return "dhgr"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Palette selects the color-symbol mapping used by the distance tables.
type Palette int

const (
	// PaletteNTSC is the "broadcast-style" composite-derived palette.
	PaletteNTSC Palette = iota
	// PaletteRGB is the "hardware-style" palette.
	PaletteRGB
)

func (p Palette) String() string {
	switch p {
	case PaletteNTSC:
		return "ntsc"
	case PaletteRGB:
		return "rgb"
	default:
		return fmt.Sprintf("Palette(%d)", int(p))
	}
}

const (
	// PageMin and PageMax bound the page axis of memory: page is the
	// high byte of a display address and always falls in [32, 64).
	PageMin = 32
	PageMax = 64
	// NumPages is the number of distinct pages.
	NumPages = PageMax - PageMin
	// OffsetCount is the number of offsets per page.
	OffsetCount = 256

	// Cols and Rows are the visible screen dimensions in bytes/rows.
	Cols = 40
	Rows = 192
)

// coordMapping precomputes the bijection between (page, offset) and
// (x, y), plus the screen-hole mask, once at package init. Every entry
// is a pure function of the fixed 1024c+128b+40a interleave formula, so
// there is nothing to recompute per mode or palette.
type coordMapping struct {
	// pageOffsetToX/Y map a visible (page, offset) to (xByte, y). Holes
	// are left at their zero value and excluded via holes.
	pageOffsetToX [NumPages][OffsetCount]uint8
	pageOffsetToY [NumPages][OffsetCount]uint8
	holes         [NumPages][OffsetCount]bool

	// coordsToPageOffset is the inverse: (y, xByte) -> (page, offset).
	coordsToPageOffset [Rows][Cols]struct {
		page   uint8
		offset uint8
	}
}

var mapping = buildCoordMapping()

// yToBaseAddr implements the interleaved address formula from spec.md
// §3: a = y/64, d = y-64a, b = d/8, c = d-8b; base = 1024c + 128b + 40a.
// screenPage is 0 or 1 (HGR page 1 / page 2); the result is a full
// 16-bit address with the $2000/$4000 page base folded in.
func yToBaseAddr(y int, screenPage int) int {
	a := y / 64
	d := y - 64*a
	b := d / 8
	c := d - 8*b
	return 0x2000<<uint(screenPage) + 1024*c + 128*b + 40*a
}

func buildCoordMapping() coordMapping {
	var m coordMapping
	for pg := range m.holes {
		for off := range m.holes[pg] {
			m.holes[pg][off] = true
		}
	}

	for y := 0; y < Rows; y++ {
		for x := 0; x < Cols; x++ {
			base := yToBaseAddr(y, 0)
			addr := base + x
			page := uint8(addr >> 8)
			offset := uint8(addr & 0xff)

			idx := page - PageMin
			m.pageOffsetToX[idx][offset] = uint8(x)
			m.pageOffsetToY[idx][offset] = uint8(y)
			m.holes[idx][offset] = false

			m.coordsToPageOffset[y][x] = struct {
				page   uint8
				offset uint8
			}{page, offset}
		}
	}
	return m
}

// IsScreenHole reports whether (page, offset) does not correspond to a
// visible pixel column and must never be written.
func IsScreenHole(page, offset int) bool {
	if page < PageMin || page >= PageMax || offset < 0 || offset >= OffsetCount {
		return true
	}
	return mapping.holes[page-PageMin][offset]
}

// CoordsToAddr returns the (page, offset) visible byte for (x, y) on the
// given HGR screen page (0 or 1).
func CoordsToAddr(x, y, screenPage int) (page, offset int) {
	base := yToBaseAddr(y, screenPage)
	addr := base + x
	return addr >> 8, addr & 0xff
}

// AddrToCoords is the inverse of CoordsToAddr for any non-hole (page,
// offset): it returns the (x, y) pixel column. Screen page is not
// recoverable from (page, offset) alone when both HGR pages are folded
// into the same [32,64) page space by the caller; this function assumes
// page 1 layout, matching CoordsToAddr(_, _, 0).
func AddrToCoords(page, offset int) (x, y int, ok bool) {
	if IsScreenHole(page, offset) {
		return 0, 0, false
	}
	idx := page - PageMin
	return int(mapping.pageOffsetToX[idx][offset]), int(mapping.pageOffsetToY[idx][offset]), true
}

// MemoryImage is a page/offset-structured representation of display
// memory: a flat [NumPages][OffsetCount]byte. Packed windows are not
// cached; Window/WindowForByte compute them from these bytes on every
// lookup, so they always reflect the latest write.
type MemoryImage struct {
	mode Mode
	data [NumPages][OffsetCount]byte

	// aux holds the second interleaved bank in double-bitplane mode;
	// nil in single-bitplane mode.
	aux *[NumPages][OffsetCount]byte
}

// NewMemoryImage returns a zeroed display memory image for the given
// mode. Every screen hole starts at zero and is never written again.
func NewMemoryImage(mode Mode) *MemoryImage {
	m := &MemoryImage{mode: mode}
	if mode == ModeDHGR {
		m.aux = &[NumPages][OffsetCount]byte{}
	}
	return m
}

// Mode returns the image's bit-plane mode.
func (m *MemoryImage) Mode() Mode { return m.mode }

// Get returns the current byte at (page, offset) in the main bank.
func (m *MemoryImage) Get(page, offset int) byte {
	return m.data[page-PageMin][offset]
}

// GetAux returns the current byte at (page, offset) in the auxiliary
// bank. Panics if the image is not in double-bitplane mode.
func (m *MemoryImage) GetAux(page, offset int) byte {
	if m.aux == nil {
		panic("screen: GetAux called on single-bitplane image")
	}
	return m.aux[page-PageMin][offset]
}

// Write stores val at (page, offset) in the main bank. Writing to a
// screen hole is a programmer error: assert and abort per spec.md §7.
func (m *MemoryImage) Write(page, offset int, val byte) {
	if IsScreenHole(page, offset) {
		panic(fmt.Sprintf("screen: attempted write to screen hole (page=%d, offset=%d)", page, offset))
	}
	m.data[page-PageMin][offset] = val
}

// WriteAux is Write for the auxiliary bank in double-bitplane mode.
func (m *MemoryImage) WriteAux(page, offset int, val byte) {
	if m.aux == nil {
		panic("screen: WriteAux called on single-bitplane image")
	}
	if IsScreenHole(page, offset) {
		panic(fmt.Sprintf("screen: attempted write to screen hole (page=%d, offset=%d)", page, offset))
	}
	m.aux[page-PageMin][offset] = val
}

// Bank selects which interleaved memory bank an opcode targets in
// double-bitplane mode.
type Bank int

const (
	BankMain Bank = iota
	BankAux
)

// WriteBank dispatches to Write or WriteAux.
func (m *MemoryImage) WriteBank(bank Bank, page, offset int, val byte) {
	if bank == BankAux {
		m.WriteAux(page, offset, val)
		return
	}
	m.Write(page, offset, val)
}

// GetBank dispatches to Get or GetAux.
func (m *MemoryImage) GetBank(bank Bank, page, offset int) byte {
	if bank == BankAux {
		return m.GetAux(page, offset)
	}
	return m.Get(page, offset)
}

// FlatMemoryMap is the linear 8192-byte representation of one HGR
// screen page, as produced by an external frame-conversion step.
type FlatMemoryMap struct {
	ScreenPage int // 0 or 1
	Data       [8192]byte
}

// ToMemoryImage reshapes a flat 8KiB dump into the (page, offset)
// addressed representation used by the scheduler, zeroing screen holes.
func (f *FlatMemoryMap) ToMemoryImage(mode Mode) *MemoryImage {
	m := NewMemoryImage(mode)
	base := 0x2000 << uint(f.ScreenPage)
	for i, v := range f.Data {
		addr := base + i
		page := addr >> 8
		offset := addr & 0xff
		if IsScreenHole(page, offset) {
			continue
		}
		m.data[page-PageMin][offset] = v
	}
	return m
}
