// Package dots builds and caches the perceptual distance tables used
// by the convergence scheduler: for every pair of dot-pattern windows
// that can appear together in display memory, a small integer
// edit-distance value approximating how different they look on screen.
package dots

import "github.com/KrisKennaway/ii-vision-sub000/screen"

// dotsPerByte is the number of displayed dots directly encoded by one
// byte's seven data bits (the high bit selects a palette, not a dot).
const dotsPerByte = 3

// symbolsForByte decodes a byte into its sequence of color symbols, one
// per displayed dot plus a leading or trailing boundary symbol shared
// with the neighboring byte, the way the original encoder's
// byte_to_colour_string does. isOddOffset selects whether the boundary
// symbol is emitted before (odd column) or after (even column) the
// three interior dots, reflecting the color-carrier reference shift
// between odd and even byte columns described in spec.md §4.1.
func symbolsForByte(b byte, isOddOffset bool, pal screen.Palette) []rune {
	var palette [4]rune
	if b&0x80 != 0 {
		palette = palettesHigh(pal)
	} else {
		palette = palettesLow(pal)
	}

	out := make([]rune, 0, dotsPerByte+1)
	idx := uint(0)
	if isOddOffset {
		out = append(out, boundarySymbol(b, 0))
		idx++
	}
	for i := 0; i < dotsPerByte; i++ {
		out = append(out, palette[(b>>idx)&0x3])
		idx += 2
	}
	if !isOddOffset {
		out = append(out, boundarySymbol(b, 6))
	}
	return out
}

// boundarySymbol returns the raw bit at the given position as a '0' or
// '1' symbol: the edge dot of a byte pair straddles two bytes and has
// no color of its own until combined with its neighbor, so it is
// tracked as a plain bit rather than a palette color.
func boundarySymbol(b byte, bit uint) rune {
	if (b>>bit)&1 != 0 {
		return '1'
	}
	return '0'
}

// palettesLow/palettesHigh return the four 2-bit dot colors for a byte
// whose high bit (palette select) is 0 or 1 respectively. K=black,
// G=green, V=violet, W=white (NTSC); K=black, B=blue, O=orange, W=white
// is the alternate half of the NTSC palette reached via the high bit.
// The RGB ("hardware-style") palette maps the same bit patterns to a
// distinct set of symbols so its distance table penalizes a different
// set of confusions.
func palettesLow(pal screen.Palette) [4]rune {
	if pal == screen.PaletteRGB {
		return [4]rune{'K', 'M', 'C', 'W'}
	}
	return [4]rune{'K', 'V', 'G', 'W'}
}

func palettesHigh(pal screen.Palette) [4]rune {
	if pal == screen.PaletteRGB {
		return [4]rune{'K', 'Y', 'R', 'W'}
	}
	return [4]rune{'K', 'B', 'O', 'W'}
}
