package asm

import "github.com/sarchlab/rv32pipe/core"

// Program is the two-pass Encoder Front-End's product: an encoded text
// segment (address to word, spec.md §3) plus the final symbol table,
// ready for the Artifact Codec (C12) to serialize.
type Program struct {
	Text    map[uint32]uint32
	Symbols SymbolTable
}

// Assemble runs pass 2 over already-address-assigned instructions and a
// completed symbol table (pass 1's output), encoding every instruction
// and collecting every Diagnostic rather than stopping at the first
// (spec.md §7: the assembler reports every line's error in one run).
//
// Grounded on original_source/src/assembler.hpp's two-pass structure:
// pass 1 assigns addresses and builds the symbol table by scanning
// labels and directives; pass 2 encodes each instruction against the
// now-complete table so forward references resolve.
func Assemble(instrs []ParsedInstruction, symbols SymbolTable) (Program, []error) {
	text := make(map[uint32]uint32, len(instrs))
	var diags []error

	for _, instr := range instrs {
		word, err := Encode(instr, symbols)
		if err != nil {
			diags = append(diags, err)
			continue
		}
		text[instr.Address] = word
	}

	if len(diags) > 0 {
		return Program{}, diags
	}
	return Program{Text: text, Symbols: symbols}, nil
}

// LoadDataSegment writes every data symbol's bytes into memory at its
// assigned address, per spec.md §3's "data section is materialized into
// memory before execution begins" rule.
func LoadDataSegment(mem *core.Memory, symbols SymbolTable) error {
	for _, sym := range symbols {
		if !sym.IsData {
			continue
		}
		for i, b := range sym.Data.Bytes {
			if err := mem.WriteByte(sym.Data.Address+uint32(i), b); err != nil {
				return err
			}
		}
	}
	return nil
}
