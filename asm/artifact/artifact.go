// Package artifact is the Artifact Codec (C12): it writes and reads
// the machine-code artifact text format that is the Encoder's output
// and the simulator's input, per spec.md §6's "Encoder → Simulator
// contract".
//
// Grounded on original_source/src/assembler.cpp's text-artifact writer
// (the `0xADDR 0xWORD , <disasm>` / `END_OF_TEXT` / `0xADDR 0xBYTE`
// grammar this package reproduces byte for byte) and the teacher's
// plain bufio-based file I/O idiom; no binary/ELF container appears
// anywhere in the pack for this format, so it stays a line-oriented
// text format as spec.md §6 literally specifies.
package artifact

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/sarchlab/rv32pipe/core"
	"github.com/sarchlab/rv32pipe/decode"
)

// endOfTextSentinel is the disassembly column of the line that marks
// the end of the text section (spec.md §6).
const endOfTextSentinel = "END_OF_TEXT"

// Write serializes text (address to word; each word is decoded here for
// the disassembly column) and a data segment's bytes to w, in spec.md
// §6's exact grammar.
func Write(w io.Writer, text map[uint32]uint32, data map[uint32]uint8) error {
	bw := bufio.NewWriter(w)

	addrs := sortedKeys(text)
	for _, addr := range addrs {
		word := text[addr]
		inst, err := decode.Decode(word)
		disasm := endOfTextSentinel
		if err == nil {
			disasm = decode.Disassemble(inst)
		}
		if _, err := fmt.Fprintf(bw, "0x%08X 0x%08X , %s\n", addr, word, disasm); err != nil {
			return err
		}
	}

	var endAddr uint32
	if len(addrs) > 0 {
		endAddr = addrs[len(addrs)-1] + 4
	}
	if _, err := fmt.Fprintf(bw, "0x%08X 0x%08X , %s\n", endAddr, uint32(0), endOfTextSentinel); err != nil {
		return err
	}

	dataAddrs := sortedByteKeys(data)
	for _, addr := range dataAddrs {
		if _, err := fmt.Fprintf(bw, "0x%08X 0x%02X\n", addr, data[addr]); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func sortedKeys(m map[uint32]uint32) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedByteKeys(m map[uint32]uint8) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Artifact is the fully-parsed result of reading a machine-code file:
// the text map the engine fetches from, and the data bytes ready to be
// loaded into memory.
type Artifact struct {
	Text map[uint32]uint32
	Data map[uint32]uint8
}

// Read parses a machine-code artifact, per spec.md §6's grammar,
// stopping text-section parsing at the END_OF_TEXT sentinel line and
// treating every remaining non-blank line as a one-byte data entry.
func Read(r io.Reader) (Artifact, error) {
	art := Artifact{Text: make(map[uint32]uint32), Data: make(map[uint32]uint8)}
	scanner := bufio.NewScanner(r)

	inText := true
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if inText {
			addr, word, disasm, err := parseTextLine(line)
			if err != nil {
				return Artifact{}, fmt.Errorf("artifact line %d: %w", lineNo, err)
			}
			if disasm == endOfTextSentinel {
				inText = false
				continue
			}
			art.Text[addr] = word
			continue
		}
		addr, b, err := parseDataLine(line)
		if err != nil {
			return Artifact{}, fmt.Errorf("artifact line %d: %w", lineNo, err)
		}
		art.Data[addr] = b
	}
	if err := scanner.Err(); err != nil {
		return Artifact{}, err
	}
	return art, nil
}

func parseTextLine(line string) (addr, word uint32, disasm string, err error) {
	n, err := fmt.Sscanf(line, "0x%08X 0x%08X , ", &addr, &word)
	if err != nil || n != 2 {
		return 0, 0, "", fmt.Errorf("malformed text line %q", line)
	}
	idx := indexOfComma(line)
	if idx < 0 {
		return 0, 0, "", fmt.Errorf("malformed text line %q: missing comma", line)
	}
	disasm = trimLeadingSpace(line[idx+1:])
	return addr, word, disasm, nil
}

func parseDataLine(line string) (addr uint32, b uint8, err error) {
	n, err := fmt.Sscanf(line, "0x%08X 0x%02X", &addr, &b)
	if err != nil || n != 2 {
		return 0, 0, fmt.Errorf("malformed data line %q", line)
	}
	return addr, b, nil
}

func indexOfComma(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			return i
		}
	}
	return -1
}

func trimLeadingSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	return s
}

// LoadInto materializes an Artifact's data segment into mem, per
// spec.md §3's "data section is read into memory before execution"
// rule. The text segment is consumed directly by the pipeline engine
// (it fetches from the address-to-word map, not from memory), matching
// original_source/src/execution.hpp keeping program text out of the
// addressable data space.
func (a Artifact) LoadInto(mem *core.Memory) {
	for addr, b := range a.Data {
		mem.LoadByte(addr, b)
	}
}
