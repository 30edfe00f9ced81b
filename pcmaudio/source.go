// Package pcmaudio turns an input waveform into the quantized sample
// stream the tick opcodes encode: one mono sample per output tick,
// resampled to the tick rate and normalized into the narrow integer
// range a single opcode's cycle count can represent.
package pcmaudio

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Source yields mono float64 samples at its native sample rate. A WAV
// file decoded via Decode, or any other reader producing PCM frames,
// can implement it.
type Source interface {
	// SampleRate is the native rate of the samples Next returns.
	SampleRate() int
	// Next returns the next batch of samples, or io.EOF once exhausted.
	Next() ([]float64, error)
}

// wavSource adapts a decoded WAV file to Source, downmixing to mono the
// way the original encoder's librosa.core.to_mono did.
type wavSource struct {
	dec        *wav.Decoder
	sampleRate int
	numChans   int
}

// Decode opens a WAV stream for reading. It reads the header eagerly so
// SampleRate is available before the first call to Next.
func Decode(r io.Reader) (Source, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("pcmaudio: not a valid WAV file")
	}
	dec.ReadInfo()
	if dec.SampleRate == 0 {
		return nil, fmt.Errorf("pcmaudio: WAV file reports zero sample rate")
	}
	return &wavSource{dec: dec, sampleRate: int(dec.SampleRate), numChans: int(dec.NumChans)}, nil
}

func (s *wavSource) SampleRate() int { return s.sampleRate }

// chunkFrames is the number of frames read per Next call: large enough
// to amortize decode overhead, small enough to keep memory bounded for
// arbitrarily long input files.
const chunkFrames = 32 * 1024

func (s *wavSource) Next() ([]float64, error) {
	numChans := s.numChans
	if numChans < 1 {
		numChans = 1
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: numChans, SampleRate: s.sampleRate},
		Data:   make([]int, chunkFrames*numChans),
	}
	n, err := s.dec.PCMBuffer(buf)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, io.EOF
	}

	frames := n / numChans
	out := make([]float64, frames)
	maxVal := float64(int(1) << uint(buf.SourceBitDepth-1))
	if maxVal <= 0 {
		maxVal = 32768
	}
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < numChans; c++ {
			sum += float64(buf.Data[i*numChans+c])
		}
		out[i] = (sum / float64(numChans)) / maxVal
	}
	return out, nil
}
