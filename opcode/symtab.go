// Package opcode encodes the decoder's tagged-variant instruction set —
// TICK, NOP, ACK and TERMINATE — their cycle costs, and their wire
// encoding against the decoder's entry-address table (spec.md §4.4/§6).
package opcode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Symbol is one parsed debug-file symbol line: `name=val` pairs plus
// any other comma-separated key/value fields the debugger emits.
type Symbol map[string]string

// SymbolTable holds every symbol read from a cc65-style debug file,
// keyed by symbol name with its surrounding quotes stripped.
type SymbolTable map[string]Symbol

// ParseSymbolTable reads a debug file's `sym ...` lines. Each such line
// looks like `sym id=0,name="op_store",addrsize=absolute,val=0x0401` —
// only lines beginning with `sym` are considered, matching
// `original_source/symbol_table.py:SymbolTable.parse`.
func ParseSymbolTable(r io.Reader) (SymbolTable, error) {
	syms := SymbolTable{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !strings.HasPrefix(line, "sym") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		sym := Symbol{}
		for _, kv := range strings.Split(fields[1], ",") {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("opcode: malformed symbol field %q on line %d", kv, lineNo)
			}
			sym[parts[0]] = parts[1]
		}
		name, ok := sym["name"]
		if !ok {
			return nil, fmt.Errorf("opcode: symbol on line %d missing name field", lineNo)
		}
		syms[strings.Trim(name, "\"")] = sym
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return syms, nil
}

// Addr returns a symbol's numeric value, always parsed as hexadecimal
// with or without a leading 0x (a bare "10" reads as 16).
func (s Symbol) Addr() (int, error) {
	v, ok := s["val"]
	if !ok {
		return 0, fmt.Errorf("opcode: symbol missing val field")
	}
	v = strings.TrimPrefix(v, "0x")
	n, err := strconv.ParseInt(v, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("opcode: parsing val %q: %w", v, err)
	}
	return int(n), nil
}
