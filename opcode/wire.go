package opcode

import "fmt"

// Kind tags which decoder instruction an Opcode value represents. The
// instruction set is a closed, small set of variants, so a tagged union
// (spec.md §9's "re-architect as a tagged variant" redesign) replaces
// the original's per-opcode class hierarchy.
type Kind uint8

const (
	KindTick Kind = iota
	KindNop
	KindAck
	KindTerminate
)

// Opcode is one decoder instruction. Only KindTick opcodes carry
// Cycles/Page/Content/Offsets; the others are fixed zero-argument
// control instructions.
type Opcode struct {
	Kind Kind

	// Tick fields.
	Cycles  int
	Page    int
	Content byte
	Offsets [4]byte
}

// Tick constructs a tick opcode: one audio sample (encoded in Cycles)
// plus up to four memory writes of Content to Offsets on Page. Callers
// that found fewer than four offsets to update pad the remainder by
// repeating the first offset, per spec.md §4.5's padding rule.
func Tick(cycles, page int, content byte, offsets [4]byte) Opcode {
	return Opcode{Kind: KindTick, Cycles: cycles, Page: page, Content: content, Offsets: offsets}
}

// Nop, Ack and Terminate construct the three control opcodes.
func Nop() Opcode       { return Opcode{Kind: KindNop} }
func Ack() Opcode       { return Opcode{Kind: KindAck} }
func Terminate() Opcode { return Opcode{Kind: KindTerminate} }

// WireLen returns the number of bytes Encode writes for this opcode:
// 7 for a tick opcode (2 address + 1 content + 4 offsets), 4 for ACK (2
// address + 2 padding bytes), 2 for NOP and TERMINATE.
func (op Opcode) WireLen() int {
	switch op.Kind {
	case KindTick:
		return 7
	case KindAck:
		return 4
	default:
		return 2
	}
}

// Encode appends this opcode's wire bytes to buf, resolving its entry
// address from table. The address is always absolute (2 bytes, high
// byte first): the encoder never uses the decoder's relative-branch
// threading, trading a few bytes per opcode for a table structure that
// doesn't need a running "last opcode" context.
func (op Opcode) Encode(buf []byte, table *Table) ([]byte, error) {
	switch op.Kind {
	case KindTick:
		addr, err := table.TickAddr(op.Cycles, op.Page)
		if err != nil {
			return nil, err
		}
		buf = append(buf, byte(addr>>8), byte(addr))
		buf = append(buf, op.Content)
		buf = append(buf, op.Offsets[:]...)
		return buf, nil

	case KindNop:
		if !table.nop.present {
			return nil, fmt.Errorf("opcode: NOP entry address not resolved")
		}
		return append(buf, byte(table.nop.addr>>8), byte(table.nop.addr)), nil

	case KindAck:
		if !table.ack.present {
			return nil, fmt.Errorf("opcode: ACK entry address not resolved")
		}
		buf = append(buf, byte(table.ack.addr>>8), byte(table.ack.addr))
		// Dummy padding bytes, matching the original decoder's ACK
		// opcode which pads out to keep frame alignment simple.
		return append(buf, 0xff, 0xff), nil

	case KindTerminate:
		if !table.terminate.present {
			return nil, fmt.Errorf("opcode: TERMINATE entry address not resolved")
		}
		return append(buf, byte(table.terminate.addr>>8), byte(table.terminate.addr)), nil

	default:
		return nil, fmt.Errorf("opcode: unknown kind %d", op.Kind)
	}
}

// CyclesCost returns the number of 1MHz-class CPU cycles this opcode
// consumes once executed by the decoder: always 73 for a tick opcode
// (the fixed-cost property that makes audio timing deterministic
// regardless of content), and table-measured values for NOP/ACK.
func (op Opcode) CyclesCost(table *Table) int {
	switch op.Kind {
	case KindTick:
		return 73
	case KindNop:
		return table.nopCycles
	case KindAck:
		return table.ackCycles
	case KindTerminate:
		return 6
	default:
		return 0
	}
}
