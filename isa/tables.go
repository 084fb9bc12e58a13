// Package isa holds the static RV32I/M instruction tables: the
// mnemonic-to-encoding map and the register alias table. Nothing in this
// package mutates after init; the maps are built once at package load and
// read thereafter, matching the "compile-time constant tables" guidance
// for replacing a module that once mutated global tables at load time.
package isa

// Format is the instruction word layout a mnemonic belongs to.
type Format int

const (
	FormatR Format = iota
	FormatI
	FormatILoad
	FormatIJumpReg
	FormatIShift
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatStandalone
)

// String renders a Format for diagnostics and tests.
func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatILoad:
		return "I-load"
	case FormatIJumpReg:
		return "I-jalr"
	case FormatIShift:
		return "I-shift"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	case FormatStandalone:
		return "standalone"
	default:
		return "unknown"
	}
}

// Encoding is the fixed (format, opcode, funct3, funct7) triple for one
// mnemonic. Funct3/Funct7 are meaningless for formats that don't use them
// (U, J, standalone) and are left zero there.
type Encoding struct {
	Mnemonic string
	Format   Format
	Opcode   uint32
	Funct3   uint32
	Funct7   uint32
}

// ECALLWord is the one standalone-format instruction: a literal constant,
// no operands, no fields to pack.
const ECALLWord uint32 = 0x00000073

// Table maps mnemonic to its Encoding. Grounded on
// original_source/src/assembler.hpp's opcodeMap/funct3Map/funct7Map for
// the mnemonics it covers (add, sub, and, or, xor, addi, andi, ori, lb,
// lh, lw, jalr, sb, sh, sw, beq, bne, blt, bge, lui, auipc, jal, ecall);
// supplemented with the standard public RV32I/M encodings for mnemonics
// spec.md §4.3 requires that original_source never implemented.
var Table = buildTable()

func buildTable() map[string]Encoding {
	t := make(map[string]Encoding, 48)
	add := func(e Encoding) { t[e.Mnemonic] = e }

	// R-type arithmetic (opcode 0x33).
	add(Encoding{"add", FormatR, 0x33, 0x0, 0x00})
	add(Encoding{"sub", FormatR, 0x33, 0x0, 0x20})
	add(Encoding{"sll", FormatR, 0x33, 0x1, 0x00})
	add(Encoding{"slt", FormatR, 0x33, 0x2, 0x00})
	add(Encoding{"sltu", FormatR, 0x33, 0x3, 0x00})
	add(Encoding{"xor", FormatR, 0x33, 0x4, 0x00})
	add(Encoding{"srl", FormatR, 0x33, 0x5, 0x00})
	add(Encoding{"sra", FormatR, 0x33, 0x5, 0x20})
	add(Encoding{"or", FormatR, 0x33, 0x6, 0x00})
	add(Encoding{"and", FormatR, 0x33, 0x7, 0x00})
	// M-extension (funct7 0x01), same opcode as R-type arithmetic.
	add(Encoding{"mul", FormatR, 0x33, 0x0, 0x01})
	add(Encoding{"div", FormatR, 0x33, 0x4, 0x01})
	add(Encoding{"rem", FormatR, 0x33, 0x6, 0x01})

	// I-type arithmetic/compare (opcode 0x13).
	add(Encoding{"addi", FormatI, 0x13, 0x0, 0x00})
	add(Encoding{"slti", FormatI, 0x13, 0x2, 0x00})
	add(Encoding{"sltiu", FormatI, 0x13, 0x3, 0x00})
	add(Encoding{"xori", FormatI, 0x13, 0x4, 0x00})
	add(Encoding{"ori", FormatI, 0x13, 0x6, 0x00})
	add(Encoding{"andi", FormatI, 0x13, 0x7, 0x00})
	// I-type shift-immediate: the top 7 bits of the word are a funct7
	// (0x00 or 0x20) rather than part of a 12-bit immediate; shamt is a
	// 5-bit field. Modeled as their own format so the encoder/decoder
	// can special-case the narrower immediate.
	add(Encoding{"slli", FormatIShift, 0x13, 0x1, 0x00})
	add(Encoding{"srli", FormatIShift, 0x13, 0x5, 0x00})
	add(Encoding{"srai", FormatIShift, 0x13, 0x5, 0x20})

	// I-type loads (opcode 0x03).
	add(Encoding{"lb", FormatILoad, 0x03, 0x0, 0x00})
	add(Encoding{"lh", FormatILoad, 0x03, 0x1, 0x00})
	add(Encoding{"lw", FormatILoad, 0x03, 0x2, 0x00})
	add(Encoding{"lbu", FormatILoad, 0x03, 0x4, 0x00})
	add(Encoding{"lhu", FormatILoad, 0x03, 0x5, 0x00})

	// I-type jalr (opcode 0x67).
	add(Encoding{"jalr", FormatIJumpReg, 0x67, 0x0, 0x00})

	// S-type stores (opcode 0x23).
	add(Encoding{"sb", FormatS, 0x23, 0x0, 0x00})
	add(Encoding{"sh", FormatS, 0x23, 0x1, 0x00})
	add(Encoding{"sw", FormatS, 0x23, 0x2, 0x00})

	// B-type branches (opcode 0x63).
	add(Encoding{"beq", FormatB, 0x63, 0x0, 0x00})
	add(Encoding{"bne", FormatB, 0x63, 0x1, 0x00})
	add(Encoding{"blt", FormatB, 0x63, 0x4, 0x00})
	add(Encoding{"bge", FormatB, 0x63, 0x5, 0x00})
	add(Encoding{"bltu", FormatB, 0x63, 0x6, 0x00})
	add(Encoding{"bgeu", FormatB, 0x63, 0x7, 0x00})

	// U-type.
	add(Encoding{"lui", FormatU, 0x37, 0x0, 0x00})
	add(Encoding{"auipc", FormatU, 0x17, 0x0, 0x00})

	// J-type.
	add(Encoding{"jal", FormatJ, 0x6F, 0x0, 0x00})

	// Standalone.
	add(Encoding{"ecall", FormatStandalone, 0x73, 0x0, 0x00})

	return t
}

// Lookup returns the Encoding for a mnemonic and whether it was found.
func Lookup(mnemonic string) (Encoding, bool) {
	e, ok := Table[mnemonic]
	return e, ok
}

// WritesRegister reports whether an instruction of this format writes rd.
// S and B formats never write a register (spec.md §4.7 writeback rule).
func (f Format) WritesRegister() bool {
	switch f {
	case FormatS, FormatB, FormatStandalone:
		return false
	default:
		return true
	}
}

// ReadsRS2 reports whether this format's second source operand is a
// register (R, S, B) as opposed to an immediate.
func (f Format) ReadsRS2() bool {
	switch f {
	case FormatR, FormatS, FormatB:
		return true
	default:
		return false
	}
}
