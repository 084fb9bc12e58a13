// Package decode turns a raw 32-bit instruction word back into its
// mnemonic, format and operand fields — the inverse of the asm package's
// encoder. Grounded on the teacher's insts/decoder.go classifier-dispatch
// shape (Decode(word) chaining per-opcode cases) and
// original_source/src/execution.hpp's classifyInstructions/
// decodeInstruction exact bit-extraction formulas.
package decode

import (
	"fmt"

	"github.com/sarchlab/rv32pipe/isa"
)

// Instruction is a fully decoded instruction word: format, opcode
// classification and sign-extended immediate, per spec.md §3's
// "decoded fields" half of the instruction node.
type Instruction struct {
	Raw      uint32
	Mnemonic string
	Format   isa.Format
	RD       uint8
	RS1      uint8
	RS2      uint8
	Imm      int32
	Funct3   uint32
	Funct7   uint32
}

// reverseKey packs (opcode, funct3, funct7) into a lookup key. Funct7 is
// only meaningful for R-type and shift-immediate words; other formats
// pass 0 for it.
type reverseKey struct {
	opcode uint32
	funct3 uint32
	funct7 uint32
}

var reverseTable = buildReverseTable()

func buildReverseTable() map[reverseKey]string {
	m := make(map[reverseKey]string, len(isa.Table))
	for mnemonic, e := range isa.Table {
		key := reverseKey{opcode: e.Opcode, funct3: e.Funct3}
		switch e.Format {
		case isa.FormatR, isa.FormatIShift:
			key.funct7 = e.Funct7
		}
		m[key] = mnemonic
	}
	return m
}

func signExtend(value uint32, bits int) int32 {
	shift := 32 - bits
	return int32(value<<uint(shift)) >> uint(shift)
}

// Decode classifies a 32-bit word and extracts its fields. Returns a
// plain error when the opcode/funct3/funct7 triple doesn't match any
// known instruction — spec.md §4.2's "unclassifiable opcode" condition,
// which the pipeline engine treats as fatal and halts on.
func Decode(word uint32) (Instruction, error) {
	opcode := word & 0x7F

	if opcode == 0x73 {
		if word != isa.ECALLWord {
			return Instruction{}, fmt.Errorf("unclassifiable instruction word %#08x: opcode 0x73 only defines ecall (%#08x)", word, isa.ECALLWord)
		}
		return Instruction{Raw: word, Mnemonic: "ecall", Format: isa.FormatStandalone}, nil
	}

	funct3 := (word >> 12) & 0x7
	rd := uint8((word >> 7) & 0x1F)
	rs1 := uint8((word >> 15) & 0x1F)
	rs2 := uint8((word >> 20) & 0x1F)

	switch opcode {
	case 0x33: // R-type arithmetic / M-extension
		funct7 := (word >> 25) & 0x7F
		mnemonic, ok := reverseTable[reverseKey{opcode, funct3, funct7}]
		if !ok {
			return Instruction{}, fmt.Errorf("unclassifiable R-type word %#08x: opcode=%#x funct3=%#x funct7=%#x", word, opcode, funct3, funct7)
		}
		return Instruction{Raw: word, Mnemonic: mnemonic, Format: isa.FormatR, RD: rd, RS1: rs1, RS2: rs2, Funct3: funct3, Funct7: funct7}, nil

	case 0x13: // I-type arithmetic, or shift-immediate
		if funct3 == 0x1 || funct3 == 0x5 {
			funct7 := (word >> 25) & 0x7F
			mnemonic, ok := reverseTable[reverseKey{opcode, funct3, funct7}]
			if !ok {
				return Instruction{}, fmt.Errorf("unclassifiable shift-immediate word %#08x: funct3=%#x funct7=%#x", word, funct3, funct7)
			}
			shamt := int32((word >> 20) & 0x1F)
			return Instruction{Raw: word, Mnemonic: mnemonic, Format: isa.FormatIShift, RD: rd, RS1: rs1, Imm: shamt, Funct3: funct3, Funct7: funct7}, nil
		}
		mnemonic, ok := reverseTable[reverseKey{opcode, funct3, 0}]
		if !ok {
			return Instruction{}, fmt.Errorf("unclassifiable I-type word %#08x: funct3=%#x", word, funct3)
		}
		imm := signExtend(word>>20, 12)
		return Instruction{Raw: word, Mnemonic: mnemonic, Format: isa.FormatI, RD: rd, RS1: rs1, Imm: imm, Funct3: funct3}, nil

	case 0x03: // loads
		mnemonic, ok := reverseTable[reverseKey{opcode, funct3, 0}]
		if !ok {
			return Instruction{}, fmt.Errorf("unclassifiable load word %#08x: funct3=%#x", word, funct3)
		}
		imm := signExtend(word>>20, 12)
		return Instruction{Raw: word, Mnemonic: mnemonic, Format: isa.FormatILoad, RD: rd, RS1: rs1, Imm: imm, Funct3: funct3}, nil

	case 0x67: // jalr
		imm := signExtend(word>>20, 12)
		return Instruction{Raw: word, Mnemonic: "jalr", Format: isa.FormatIJumpReg, RD: rd, RS1: rs1, Imm: imm, Funct3: funct3}, nil

	case 0x23: // stores
		mnemonic, ok := reverseTable[reverseKey{opcode, funct3, 0}]
		if !ok {
			return Instruction{}, fmt.Errorf("unclassifiable store word %#08x: funct3=%#x", word, funct3)
		}
		immBits := ((word >> 25) & 0x7F << 5) | ((word >> 7) & 0x1F)
		imm := signExtend(immBits, 12)
		return Instruction{Raw: word, Mnemonic: mnemonic, Format: isa.FormatS, RS1: rs1, RS2: rs2, Imm: imm, Funct3: funct3}, nil

	case 0x63: // branches
		mnemonic, ok := reverseTable[reverseKey{opcode, funct3, 0}]
		if !ok {
			return Instruction{}, fmt.Errorf("unclassifiable branch word %#08x: funct3=%#x", word, funct3)
		}
		bit12 := (word >> 31) & 0x1
		bit11 := (word >> 7) & 0x1
		bits10_5 := (word >> 25) & 0x3F
		bits4_1 := (word >> 8) & 0xF
		immBits := (bit12 << 12) | (bit11 << 11) | (bits10_5 << 5) | (bits4_1 << 1)
		imm := signExtend(immBits, 13)
		return Instruction{Raw: word, Mnemonic: mnemonic, Format: isa.FormatB, RS1: rs1, RS2: rs2, Imm: imm, Funct3: funct3}, nil

	case 0x37: // lui
		imm := int32(word & 0xFFFFF000)
		return Instruction{Raw: word, Mnemonic: "lui", Format: isa.FormatU, RD: rd, Imm: imm}, nil

	case 0x17: // auipc
		imm := int32(word & 0xFFFFF000)
		return Instruction{Raw: word, Mnemonic: "auipc", Format: isa.FormatU, RD: rd, Imm: imm}, nil

	case 0x6F: // jal
		bit20 := (word >> 31) & 0x1
		bits10_1 := (word >> 21) & 0x3FF
		bit11 := (word >> 20) & 0x1
		bits19_12 := (word >> 12) & 0xFF
		immBits := (bit20 << 20) | (bits19_12 << 12) | (bit11 << 11) | (bits10_1 << 1)
		imm := signExtend(immBits, 21)
		return Instruction{Raw: word, Mnemonic: "jal", Format: isa.FormatJ, RD: rd, Imm: imm}, nil

	default:
		return Instruction{}, fmt.Errorf("unclassifiable instruction word %#08x: unknown opcode %#x", word, opcode)
	}
}
