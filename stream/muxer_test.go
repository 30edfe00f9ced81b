package stream

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/KrisKennaway/ii-vision-sub000/opcode"
	"go.uber.org/zap"
)

func testTable(t *testing.T) *opcode.Table {
	t.Helper()
	var sb strings.Builder
	addr := 0x1000
	for cycles := opcode.TickCyclesMin; cycles <= opcode.TickCyclesMax; cycles += opcode.TickCyclesStep {
		for page := 32; page < 64; page++ {
			sb.WriteString("sym id=0,name=\"op_tick_")
			sb.WriteString(itoaHelper(cycles))
			sb.WriteString("_page_")
			sb.WriteString(itoaHelper(page))
			sb.WriteString("\",val=0x")
			sb.WriteString(hexHelper(addr))
			sb.WriteString("\n")
			addr++
		}
	}
	sb.WriteString("sym id=0,name=\"op_nop\",val=0x2000\n")
	sb.WriteString("sym id=0,name=\"op_ack\",val=0x2001\n")
	sb.WriteString("sym id=0,name=\"op_terminate\",val=0x2002\n")

	syms, err := opcode.ParseSymbolTable(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatal(err)
	}
	table, err := opcode.BuildTable(syms, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func itoaHelper(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func hexHelper(n int) string {
	const digits = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = digits[n%16]
		n /= 16
	}
	return string(buf[i:])
}

func TestMuxerTerminatesAndPadsToBoundary(t *testing.T) {
	var buf bytes.Buffer
	table := testTable(t)
	m := NewMuxer(&buf, table)

	sent := 0
	next := func() (opcode.Opcode, bool, error) {
		if sent >= 3 {
			return opcode.Opcode{}, false, nil
		}
		sent++
		return opcode.Tick(4, 32, 0xaa, [4]byte{1, 2, 3, 4}), true, nil
	}

	if err := m.Run(context.Background(), next); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if buf.Len()%socketBufferSize != 0 {
		t.Errorf("final stream length %d is not a multiple of %d", buf.Len(), socketBufferSize)
	}
}

func TestMuxerRespectsMaxBytesOut(t *testing.T) {
	var buf bytes.Buffer
	table := testTable(t)
	m := NewMuxer(&buf, table)
	m.MaxBytesOut = 50

	next := func() (opcode.Opcode, bool, error) {
		return opcode.Tick(4, 32, 0xaa, [4]byte{1, 2, 3, 4}), true, nil
	}

	if err := m.Run(context.Background(), next); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if buf.Len() < int(m.MaxBytesOut) {
		t.Errorf("stream length %d < MaxBytesOut %d", buf.Len(), m.MaxBytesOut)
	}
}

// TestMuxerAcksLandExactlyOnBufferBoundary drives the muxer past several
// 2048-byte socket buffers using nothing but fixed-size tick opcodes, the
// only opcode the real pipeline emits mid-stream, and checks that every
// ACK completes its buffer exactly (spec.md §4.6, §8 Scenario C/property
// 3): each 2048-byte block holds 292 seven-byte ticks (2044 bytes) plus
// one four-byte ACK, with no other opcode appearing in between.
func TestMuxerAcksLandExactlyOnBufferBoundary(t *testing.T) {
	var buf bytes.Buffer
	table := testTable(t)
	m := NewMuxer(&buf, table)

	const ticksPerBlock = ackThreshold / 7 // 2044 / 7 = 292
	const numBlocks = 3

	sent := 0
	total := ticksPerBlock*numBlocks + 10
	next := func() (opcode.Opcode, bool, error) {
		if sent >= total {
			return opcode.Opcode{}, false, nil
		}
		sent++
		return opcode.Tick(4, 32, 0xaa, [4]byte{1, 2, 3, 4}), true, nil
	}

	if err := m.Run(context.Background(), next); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := buf.Bytes()

	wantAck, err := opcode.Ack().Encode(nil, table)
	if err != nil {
		t.Fatalf("encoding expected ACK: %v", err)
	}

	for block := 0; block < numBlocks; block++ {
		blockStart := block * socketBufferSize
		ackOffset := blockStart + ackThreshold
		nextBlockStart := blockStart + socketBufferSize
		if len(out) < nextBlockStart {
			t.Fatalf("block %d: output too short to hold a full buffer", block)
		}

		got := out[ackOffset : ackOffset+4]
		if !bytes.Equal(got, wantAck) {
			t.Errorf("block %d: bytes at %d..%d = % x, want ACK % x (stream misaligned by the gap)",
				block, ackOffset, ackOffset+4, got, wantAck)
		}

		// The buffer's last 4 bytes must be entirely the ACK: nothing
		// else may start in that window and spill past the boundary.
		if ackOffset+4 != nextBlockStart {
			t.Errorf("block %d: ACK ends at %d, want exactly %d (next buffer boundary)",
				block, ackOffset+4, nextBlockStart)
		}
	}
}

func TestMuxerCancellation(t *testing.T) {
	var buf bytes.Buffer
	table := testTable(t)
	m := NewMuxer(&buf, table)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	next := func() (opcode.Opcode, bool, error) {
		calls++
		if calls == 5 {
			cancel()
		}
		return opcode.Tick(4, 32, 0xaa, [4]byte{1, 2, 3, 4}), true, nil
	}

	if err := m.Run(ctx, next); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if buf.Len()%socketBufferSize != 0 {
		t.Errorf("final stream length %d is not a multiple of %d", buf.Len(), socketBufferSize)
	}
}
