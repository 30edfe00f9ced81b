package stream

import (
	"context"
	"fmt"
	"io"

	"github.com/KrisKennaway/ii-vision-sub000/opcode"
)

// socketBufferSize is the TCP client's receive buffer size. The muxer
// must never let a write straddle this boundary without an ACK
// opcode completing it first, matching
// `original_source/transcoder/movie.py:Movie.emit_stream`'s
// `socket_pos % 2048` framing.
const socketBufferSize = 2048

// ackThreshold is the socket-buffer position at or past which an ACK
// must follow the opcode just emitted, leaving exactly enough room
// (socketBufferSize - ackThreshold == the 4-byte ACK) for the ACK to
// land the stream exactly on the next buffer boundary, matching
// `original_source/transcoder/movie.py:Movie.emit_stream`'s
// `socket_pos >= 2044` check and its `assert stream_pos % 2048 == 0`
// immediately after. With 7-byte tick opcodes, 2044 being a multiple of
// 7 means the threshold is always hit exactly, never overshot.
const ackThreshold = socketBufferSize - 4

// NextFunc supplies the next opcode to multiplex, following the lazy
// pull-based iterator shape the core runs on: it returns ok=false once
// the underlying sequence (scheduler ticks driven by the audio sampler)
// is exhausted.
type NextFunc func() (op opcode.Opcode, ok bool, err error)

// Muxer paces an opcode sequence into an output byte stream, inserting
// ACK framing at buffer boundaries and a TERMINATE-plus-padding trailer
// at the end.
type Muxer struct {
	w        io.Writer
	table    *opcode.Table
	cycles   CycleCounter
	streamPos int64

	// MaxBytesOut is the output-byte budget; 0 means unbounded. Once at
	// least this many bytes have been written no further opcode is
	// pulled, and the stream ends the same way context cancellation
	// does: TERMINATE plus padding, not a truncated opcode. The final
	// stream can therefore exceed MaxBytesOut by the last opcode, its ACK
	// and the padding.
	MaxBytesOut int64
}

// NewMuxer returns a muxer writing encoded opcode bytes to w, resolving
// addresses against table.
func NewMuxer(w io.Writer, table *opcode.Table) *Muxer {
	return &Muxer{w: w, table: table}
}

// StreamPos returns the number of bytes written so far.
func (m *Muxer) StreamPos() int64 { return m.streamPos }

// Cycles returns the accumulated cycle cost of every opcode emitted so
// far, the cycle accountant spec.md §4.7 describes as "the only
// synchronization between audio time and video time". Callers driving
// frame advance compare this against frame_number*cycles_per_frame.
func (m *Muxer) Cycles() int64 { return m.cycles.Cycles() }

// Run drains next until it is exhausted, ctx is canceled, or
// MaxBytesOut is reached, then emits the TERMINATE trailer. Cancellation
// and the byte budget are the only paths to early termination (spec.md
// §5); there is no separate timeout mechanism.
func (m *Muxer) Run(ctx context.Context, next NextFunc) error {
	for {
		select {
		case <-ctx.Done():
			return m.finish()
		default:
		}

		if m.MaxBytesOut > 0 && m.streamPos >= m.MaxBytesOut {
			return m.finish()
		}

		op, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			return m.finish()
		}
		if err := m.emit(op); err != nil {
			return err
		}
	}
}

// emit writes one opcode's bytes, then inserts an ACK immediately after
// if that opcode's bytes reached the buffer's last 4 bytes, so the ACK
// itself completes the 2048-byte block exactly.
func (m *Muxer) emit(op opcode.Opcode) error {
	if err := m.emitRaw(op); err != nil {
		return err
	}
	socketPos := m.streamPos % socketBufferSize
	if socketPos >= ackThreshold {
		if err := m.emitRaw(opcode.Ack()); err != nil {
			return err
		}
		if m.streamPos%socketBufferSize != 0 {
			panic(fmt.Sprintf("stream: ACK did not land on socket buffer boundary: stream_pos=%d", m.streamPos))
		}
	}
	return nil
}

func (m *Muxer) emitRaw(op opcode.Opcode) error {
	buf, err := op.Encode(nil, m.table)
	if err != nil {
		return err
	}
	if _, err := m.w.Write(buf); err != nil {
		return err
	}
	m.streamPos += int64(len(buf))
	m.cycles.Tick(op.CyclesCost(m.table))
	return nil
}

// finish emits TERMINATE and zero-pads to the next socket buffer
// boundary, so the decoder's final read always completes a full frame.
func (m *Muxer) finish() error {
	if err := m.emitRaw(opcode.Terminate()); err != nil {
		return err
	}
	pad := (socketBufferSize - int(m.streamPos%socketBufferSize)) % socketBufferSize
	if pad == 0 {
		return nil
	}
	zeros := make([]byte, pad)
	if _, err := m.w.Write(zeros); err != nil {
		return err
	}
	m.streamPos += int64(pad)
	return nil
}
