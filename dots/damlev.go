package dots

import "github.com/KrisKennaway/ii-vision-sub000/screen"

// weightedDamerauLevenshtein computes the edit distance between two
// symbol strings under the cost model spec.md §3 describes: identical
// symbols cost 0, any substitution (including turning a dot black or
// un-black) costs subCost, transposing two adjacent symbols costs
// transCost, and insertion/deletion cost insDelCost (set high enough
// that the algorithm never prefers it, since windows being compared are
// always equal length).
//
// This is the classic Lowrance-Wagner formulation extended to weighted
// costs: it is reimplemented directly from the documented behavior of
// the `weighted_levenshtein.dam_lev` routine the original encoder used,
// since no Go library in the corpus implements weighted
// Damerau-Levenshtein (see DESIGN.md).
func weightedDamerauLevenshtein(a, b []rune, subCost, transCost, insDelCost int) int {
	la, lb := len(a), len(b)

	// d[i][j] holds the edit distance between a[:i] and b[:j].
	d := make([][]int, la+1)
	for i := range d {
		d[i] = make([]int, lb+1)
	}
	for i := 0; i <= la; i++ {
		d[i][0] = i * insDelCost
	}
	for j := 0; j <= lb; j++ {
		d[0][j] = j * insDelCost
	}

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := subCost
			if a[i-1] == b[j-1] {
				cost = 0
			}

			best := d[i-1][j] + insDelCost   // deletion
			if v := d[i][j-1] + insDelCost; v < best {
				best = v // insertion
			}
			if v := d[i-1][j-1] + cost; v < best {
				best = v // match or substitution
			}
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				if v := d[i-2][j-2] + transCost; v < best {
					best = v // transposition
				}
			}
			d[i][j] = best
		}
	}
	return d[la][lb]
}

// substitutionUnitCost and errorUnitCost are the two cost scales
// spec.md §4.1 describes: the substitution table (used when the target
// byte is definitely going to be stored) and the error table
// (speculative assessment), the latter costing 5x more.
const (
	substitutionUnitCost = 1
	errorUnitCost        = 5 * substitutionUnitCost
	insDelForbidCost     = 100000
)

func editWeight(a, b byte, isOddOffset bool, pal screen.Palette, errorTable bool) uint16 {
	as := symbolsForByte(a, isOddOffset, pal)
	bs := symbolsForByte(b, isOddOffset, pal)

	unit := substitutionUnitCost
	if errorTable {
		unit = errorUnitCost
	}
	dist := weightedDamerauLevenshtein(as, bs, unit, substitutionUnitCost, insDelForbidCost)
	return uint16(dist)
}
