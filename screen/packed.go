package screen

// ByteOffsetClass identifies which of the four positions a byte can
// occupy relative to its neighbors when forming a packed window: the
// even/odd column distinction in single-bitplane mode, doubled for the
// second interleaved bank in double-bitplane mode. It indexes directly
// into the four distance tables built by package dots.
type ByteOffsetClass int

const (
	ClassMainEven ByteOffsetClass = iota
	ClassMainOdd
	ClassAuxEven
	ClassAuxOdd
)

// WindowBits returns the bit width of the packed window used for
// distance-table lookups in this class: 8 for the single-bitplane
// classes (the window is simply the byte's own value, since its two
// boundary dots are already encoded in its own bits), 12 for the
// double-bitplane classes (4 bits borrowed from the neighboring quad
// pad the window with header/footer context), per spec.md §3/§4.1.
func (c ByteOffsetClass) WindowBits() int {
	switch c {
	case ClassMainEven, ClassMainOdd:
		return 8
	default:
		return 12
	}
}

// ClassOf returns the byte-offset class for a column (x-byte) position
// and whether the byte lives in the auxiliary bank.
func ClassOf(x int, isAux bool) ByteOffsetClass {
	even := x%2 == 0
	switch {
	case !isAux && even:
		return ClassMainEven
	case !isAux && !even:
		return ClassMainOdd
	case isAux && even:
		return ClassAuxEven
	default:
		return ClassAuxOdd
	}
}

// PackedWindow is the packed integer representation of the dot pattern
// used as a key into the distance tables: the byte's own value for the
// single-bitplane classes, or that value padded with header/footer
// bits borrowed from the adjacent quad for the double-bitplane classes.
// Its value always fits in 12 bits.
type PackedWindow uint16

// Window returns the packed window for the byte at (page, offset) in
// the given bank, and that byte's offset class. Single-bitplane classes
// need no neighbor context: the byte's seven data bits plus its high
// palette bit are exactly the window. Double-bitplane classes fold in a
// 2-bit header from the preceding column and a 2-bit footer from the
// following column, reflecting the color-carrier reference shift across
// byte boundaries spec.md §4.1 describes; this path is the extension
// noted in DESIGN.md Open Question (ii) and is not exercised by the HGR
// test matrix.
func (m *MemoryImage) Window(bank Bank, page, offset int) (PackedWindow, ByteOffsetClass) {
	return m.WindowForByte(bank, page, offset, m.GetBank(bank, page, offset))
}

// WindowForByte computes the packed window at (page, offset) as if that
// byte held val, without mutating the image: the scheduler's hot path
// needs to score many candidate content bytes per tick without paying
// for a full memory copy per candidate.
func (m *MemoryImage) WindowForByte(bank Bank, page, offset int, val byte) (PackedWindow, ByteOffsetClass) {
	x, y, ok := AddrToCoords(page, offset)
	if !ok {
		return 0, 0
	}
	class := ClassOf(x, bank == BankAux)
	if class == ClassMainEven || class == ClassMainOdd {
		return PackedWindow(val), class
	}

	header := PackedWindow(0)
	if x > 0 {
		if prevPage, prevOffset := CoordsToAddr(x-1, y, 0); true {
			header = PackedWindow(m.GetBank(bank, prevPage, prevOffset)>>6) & 0x3
		}
	}
	footer := PackedWindow(0)
	if x < Cols-1 {
		if nextPage, nextOffset := CoordsToAddr(x+1, y, 0); true {
			footer = PackedWindow(m.GetBank(bank, nextPage, nextOffset) & 0x3)
		}
	}
	return (header << 10) | (PackedWindow(val) << 2) | footer, class
}
