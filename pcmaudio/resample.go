package pcmaudio

import (
	"io"

	"github.com/tphakala/go-audio-resampler/resampler"
)

// TickRate is the fixed output sample rate every audio source is
// resampled to: one sample per emitted tick opcode, matching the
// original encoder's fixed 14kHz-class target rate.
const TickRate = 14340

// CPUHz is the target machine's fixed clock rate (spec.md §4.3's
// "1.048576 MHz clock"), the basis for the cycle accountant's
// cycles_per_frame conversion (spec.md §4.7). TickRate is close to, but
// not exactly, this clock divided by the fixed 73-cycle tick cost
// (1048576/73 ≈ 14364).
const CPUHz = 1048576

// Resample drains src and returns its full waveform resampled to
// TickRate, using the same linear resampler family the pack's
// real-time audio bridge uses for its outbound leg.
func Resample(src Source) ([]float64, error) {
	r, err := resampler.New(src.SampleRate(), TickRate, 1)
	if err != nil {
		return nil, err
	}

	var out []float64
	for {
		chunk, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		resampled, err := r.Process(chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, resampled...)
	}
	return out, nil
}
