// Package stream multiplexes opcodes into the final output byte
// stream: pacing writes in CPU cycle time, inserting ACK framing at
// TCP-socket buffer boundaries, and terminating the stream with padding
// once the caller's input or byte budget is exhausted (spec.md §4.6,
// §4.7).
package stream

// CycleCounter accumulates the decoder's simulated CPU cycle count as
// opcodes are emitted, the same bookkeeping role as
// `original_source/opcodes.py:CycleCounter`.
type CycleCounter struct {
	cycles int64
}

// Tick advances the counter by n cycles.
func (c *CycleCounter) Tick(n int) { c.cycles += int64(n) }

// Cycles returns the accumulated cycle count.
func (c *CycleCounter) Cycles() int64 { return c.cycles }

// Reset zeroes the counter, used at the start of a new encoding run.
func (c *CycleCounter) Reset() { c.cycles = 0 }
