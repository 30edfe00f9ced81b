// Package scheduler implements the convergence scheduler: the core
// algorithm that, each tick, picks one (page, content, offsets[4])
// write that reduces the reconstructed display's distance from the
// current target frame by the largest amount, biased by residual error
// accumulated across frames (spec.md §4.5). This is the single most
// performance-sensitive package in the encoder — it runs once per
// emitted tick opcode, i.e. once per output audio sample.
package scheduler

import (
	"github.com/KrisKennaway/ii-vision-sub000/dots"
	"github.com/KrisKennaway/ii-vision-sub000/screen"
)

// priorityArray is a [page][offset] grid, saturating on add to avoid
// wraparound as residual error accumulates across many frames
// (spec.md §9 numeric semantics).
type priorityArray [screen.NumPages][screen.OffsetCount]uint32

const priorityMax = ^uint32(0)

func (p *priorityArray) addSaturating(page, offset int, delta uint32) {
	idx := page - screen.PageMin
	cur := p[idx][offset]
	sum := cur + delta
	if sum < cur { // overflow
		sum = priorityMax
	}
	p[idx][offset] = sum
}

// Scheduler holds the persistent state a single encoding run threads
// through every tick: the live reconstruction, the distance tables, and
// the accumulated update-priority grid. One Scheduler exists per
// (mode, palette, screen page) video stream.
type Scheduler struct {
	tables  *dots.Tables
	current *screen.MemoryImage

	priority priorityArray
}

// New returns a scheduler whose live reconstruction starts all-zero and
// whose update priority starts at zero everywhere.
func New(tables *dots.Tables, mode screen.Mode) *Scheduler {
	return &Scheduler{
		tables:  tables,
		current: screen.NewMemoryImage(mode),
	}
}

// Current returns the scheduler's live reconstructed image, the one
// opcodes emitted so far have converged toward the most recent target.
func (s *Scheduler) Current() *screen.MemoryImage { return s.current }

// BeginFrame folds a new target frame's diff weights into the
// accumulated update priority (spec.md §4.5 "Per-frame setup", steps
// 1-3): compute diff_weight per visible byte, zero priority wherever
// the target was incidentally already matched, and add the new diff
// weight elementwise.
func (s *Scheduler) BeginFrame(target *screen.MemoryImage) {
	for page := screen.PageMin; page < screen.PageMax; page++ {
		for offset := 0; offset < screen.OffsetCount; offset++ {
			if screen.IsScreenHole(page, offset) {
				continue
			}
			weight := s.diffWeight(page, offset, target)
			idx := page - screen.PageMin
			if weight == 0 {
				s.priority[idx][offset] = 0
				continue
			}
			s.priority.addSaturating(page, offset, uint32(weight))
		}
	}
}

// diffWeight is the substitution-table distance between the current
// reconstruction's packed window and the target's packed window at
// (page, offset).
func (s *Scheduler) diffWeight(page, offset int, target *screen.MemoryImage) uint16 {
	curWin, class := s.current.Window(screen.BankMain, page, offset)
	tgtWin, _ := target.Window(screen.BankMain, page, offset)
	return s.tables.Lookup(class, curWin, tgtWin)
}

// errorWeight is the error-table (speculative) distance between what
// storing a candidate content byte at (page, offset) would produce and
// the target window there. This is the innermost loop of the per-tick
// search (spec.md §4.5), evaluated for every (content, page, offset)
// triple, so it must never copy the reconstruction: WindowForByte
// computes the hypothetical window directly from the unmodified image
// plus the one candidate byte.
func (s *Scheduler) errorWeight(page, offset int, content byte, target *screen.MemoryImage) uint16 {
	hypoWin, class := s.current.WindowForByte(screen.BankMain, page, offset, content)
	tgtWin, _ := target.Window(screen.BankMain, page, offset)
	return s.tables.LookupError(class, hypoWin, tgtWin)
}
