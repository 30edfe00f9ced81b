package scheduler

import "github.com/KrisKennaway/ii-vision-sub000/screen"

// Result is one tick's chosen write: store content at up to four
// offsets on page. Converged is true once the best available score is
// no longer an improvement, signaling the caller to stop driving this
// frame and let the next target frame's diff refresh the priorities.
type Result struct {
	Page      int
	Content   byte
	Offsets   [4]byte
	Converged bool
}

// offsetCand is one candidate offset's score within a (content, page)
// partition.
type offsetCand struct {
	offset int
	dist   int64
}

// SelectTick performs spec.md §4.5's per-tick selection: enumerate
// content ∈ [0,128) (the high bit is fixed by paletteBit, not
// searched) and page ∈ [32,64), scoring each pair by the sum of the
// strictly negative entries among its four smallest edit-distance
// offsets (the only ones commitOffsets actually writes), and commits the
// globally best pair's write to the live reconstruction.
func (s *Scheduler) SelectTick(target *screen.MemoryImage, paletteBit byte) Result {
	var (
		haveBest   bool
		bestScore  int64
		bestPage   int
		bestContent byte
		bestCands  [4]offsetCand
		bestCount  int
	)

	for content7 := 0; content7 < 128; content7++ {
		content := paletteBit | byte(content7)
		for page := 32; page < 64; page++ {
			cands, count := s.topFourOffsets(page, content, target)
			var score int64
			for i := 0; i < count; i++ {
				if cands[i].dist < 0 {
					score += cands[i].dist
				}
			}
			if !haveBest || score < bestScore {
				haveBest = true
				bestScore = score
				bestPage = page
				bestContent = content
				bestCands = cands
				bestCount = count
			}
		}
	}

	if !haveBest || bestScore >= 0 {
		return s.degenerateResult()
	}

	offsets := commitOffsets(bestCands, bestCount)
	for _, o := range offsets {
		s.current.Write(bestPage, int(o), bestContent)
		s.priority[bestPage-screen.PageMin][o] = 0
	}

	return Result{Page: bestPage, Content: bestContent, Offsets: offsets}
}

// topFourOffsets scores every non-hole offset on page for candidate
// content and returns the four smallest (most negative) by edit
// distance, sorted ascending.
func (s *Scheduler) topFourOffsets(page int, content byte, target *screen.MemoryImage) ([4]offsetCand, int) {
	var top [4]offsetCand
	count := 0

	for offset := 0; offset < screen.OffsetCount; offset++ {
		if screen.IsScreenHole(page, offset) {
			continue
		}
		errDist := s.errorWeight(page, offset, content, target)
		prio := s.priority[page-screen.PageMin][offset]
		dist := 5*int64(errDist) - int64(prio)

		switch {
		case count < 4:
			top[count] = offsetCand{offset: offset, dist: dist}
			count++
			insertionSortLast(top[:count])
		case dist < top[3].dist:
			top[3] = offsetCand{offset: offset, dist: dist}
			insertionSortLast(top[:4])
		}
	}
	return top, count
}

// insertionSortLast bubbles the last element of a mostly-sorted slice
// into its correct ascending position; called once per candidate
// considered, so this is cheaper than resorting the whole slice.
func insertionSortLast(s []offsetCand) {
	for i := len(s) - 1; i > 0 && s[i].dist < s[i-1].dist; i-- {
		s[i], s[i-1] = s[i-1], s[i]
	}
}

// commitOffsets turns the four smallest-distance candidates into the
// four offsets an opcode actually writes: only strictly-negative
// candidates are real writes, the remainder pad by repeating the first
// real offset (spec.md §4.5 tie-break rule).
func commitOffsets(cands [4]offsetCand, count int) [4]byte {
	var out [4]byte
	n := 0
	for i := 0; i < count; i++ {
		if cands[i].dist < 0 {
			out[n] = byte(cands[i].offset)
			n++
		}
	}
	if n == 0 {
		// No improving offset at all: every entry repeats offset 0 of
		// whatever was scanned first, an idempotent no-op write.
		if count > 0 {
			out[0] = byte(cands[0].offset)
		}
		n = 1
	}
	for i := n; i < 4; i++ {
		out[i] = out[0]
	}
	return out
}

// degenerateResult is the stop-trying-to-improve-this-frame opcode:
// write the page's current byte back to offset 0, four times, an
// idempotent no-op that still ticks the speaker.
func (s *Scheduler) degenerateResult() Result {
	const page = screen.PageMin
	content := s.current.Get(page, 0)
	return Result{Page: page, Content: content, Offsets: [4]byte{0, 0, 0, 0}, Converged: true}
}
