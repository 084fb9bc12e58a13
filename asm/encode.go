package asm

import (
	"github.com/sarchlab/rv32pipe/isa"
)

// Encode packs one parsed instruction into its 32-bit word, resolving
// any label operand against symbols first. Grounded on
// original_source/src/assembler.hpp's per-format encode functions;
// the bit-packing itself mirrors decode.Decode's field layout in
// reverse (spec.md §4.3's round-trip invariant).
func Encode(instr ParsedInstruction, symbols SymbolTable) (uint32, error) {
	enc, ok := isa.Lookup(instr.Mnemonic)
	if !ok {
		return 0, diagf(instr.Line, "unknown mnemonic %q", instr.Mnemonic)
	}

	switch enc.Format {
	case isa.FormatR:
		return encodeR(instr, enc)
	case isa.FormatI:
		return encodeI(instr, enc, symbols)
	case isa.FormatIShift:
		return encodeIShift(instr, enc)
	case isa.FormatILoad:
		return encodeILoad(instr, enc)
	case isa.FormatIJumpReg:
		return encodeIJumpReg(instr, enc)
	case isa.FormatS:
		return encodeS(instr, enc)
	case isa.FormatB:
		return encodeB(instr, enc, symbols)
	case isa.FormatU:
		return encodeU(instr, enc)
	case isa.FormatJ:
		return encodeJ(instr, enc, symbols)
	case isa.FormatStandalone:
		return isa.ECALLWord, nil
	default:
		return 0, diagf(instr.Line, "unsupported format for %q", instr.Mnemonic)
	}
}

func reg(instr ParsedInstruction, idx int) (uint8, error) {
	if idx >= len(instr.Operands) {
		return 0, diagf(instr.Line, "%s: expected register operand %d", instr.Mnemonic, idx)
	}
	op := instr.Operands[idx]
	if op.Kind != OperandRegister {
		return 0, diagf(instr.Line, "%s: operand %d must be a register", instr.Mnemonic, idx)
	}
	return op.Register, nil
}

func immediate(instr ParsedInstruction, idx int) (int64, error) {
	if idx >= len(instr.Operands) {
		return 0, diagf(instr.Line, "%s: expected immediate operand %d", instr.Mnemonic, idx)
	}
	op := instr.Operands[idx]
	if op.Kind != OperandImmediate {
		return 0, diagf(instr.Line, "%s: operand %d must be an immediate", instr.Mnemonic, idx)
	}
	return op.Immediate, nil
}

// pcRelative resolves operand idx to a signed byte offset from instr's
// own address: either a literal immediate or a label looked up in the
// text-section symbol table (spec.md §4.1/§4.2's branch/jump operand).
func pcRelative(instr ParsedInstruction, idx int, symbols SymbolTable) (int64, error) {
	if idx >= len(instr.Operands) {
		return 0, diagf(instr.Line, "%s: expected branch target operand %d", instr.Mnemonic, idx)
	}
	op := instr.Operands[idx]
	switch op.Kind {
	case OperandImmediate:
		return op.Immediate, nil
	case OperandLabel:
		sym, ok := symbols[op.Label]
		if !ok {
			return 0, diagf(instr.Line, "undefined label %q", op.Label)
		}
		if sym.IsData {
			return 0, diagf(instr.Line, "label %q names a data symbol, not code", op.Label)
		}
		return int64(sym.TextAddress) - int64(instr.Address), nil
	default:
		return 0, diagf(instr.Line, "%s: operand %d must be an immediate or label", instr.Mnemonic, idx)
	}
}

func fitsSigned(value int64, bits int) bool {
	lo := -(int64(1) << (bits - 1))
	hi := (int64(1) << (bits - 1)) - 1
	return value >= lo && value <= hi
}

func encodeR(instr ParsedInstruction, enc isa.Encoding) (uint32, error) {
	rd, err := reg(instr, 0)
	if err != nil {
		return 0, err
	}
	rs1, err := reg(instr, 1)
	if err != nil {
		return 0, err
	}
	rs2, err := reg(instr, 2)
	if err != nil {
		return 0, err
	}
	return enc.Funct7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | enc.Funct3<<12 | uint32(rd)<<7 | enc.Opcode, nil
}

func encodeI(instr ParsedInstruction, enc isa.Encoding, symbols SymbolTable) (uint32, error) {
	rd, err := reg(instr, 0)
	if err != nil {
		return 0, err
	}
	rs1, err := reg(instr, 1)
	if err != nil {
		return 0, err
	}
	imm, err := immediate(instr, 2)
	if err != nil {
		return 0, err
	}
	if !fitsSigned(imm, 12) {
		return 0, diagf(instr.Line, "%s: immediate %d out of 12-bit signed range", instr.Mnemonic, imm)
	}
	return uint32(imm)&0xFFF<<20 | uint32(rs1)<<15 | enc.Funct3<<12 | uint32(rd)<<7 | enc.Opcode, nil
}

func encodeIShift(instr ParsedInstruction, enc isa.Encoding) (uint32, error) {
	rd, err := reg(instr, 0)
	if err != nil {
		return 0, err
	}
	rs1, err := reg(instr, 1)
	if err != nil {
		return 0, err
	}
	shamt, err := immediate(instr, 2)
	if err != nil {
		return 0, err
	}
	if shamt < 0 || shamt > 31 {
		return 0, diagf(instr.Line, "%s: shift amount %d out of 0..31 range", instr.Mnemonic, shamt)
	}
	return enc.Funct7<<25 | uint32(shamt)<<20 | uint32(rs1)<<15 | enc.Funct3<<12 | uint32(rd)<<7 | enc.Opcode, nil
}

// loadStoreOperand splits the second operand of a load/store into its
// base register and byte offset. Only the imm(reg) memory shape is
// accepted; separate reg and immediate operands are rejected.
func loadStoreOperand(instr ParsedInstruction, idx int) (base uint8, offset int64, err error) {
	if idx >= len(instr.Operands) {
		return 0, 0, diagf(instr.Line, "%s: expected a memory operand", instr.Mnemonic)
	}
	op := instr.Operands[idx]
	if op.Kind != OperandMemory {
		return 0, 0, diagf(instr.Line, "%s: operand %d must be imm(reg)", instr.Mnemonic, idx)
	}
	return op.Register, op.Immediate, nil
}

func encodeILoad(instr ParsedInstruction, enc isa.Encoding) (uint32, error) {
	rd, err := reg(instr, 0)
	if err != nil {
		return 0, err
	}
	base, offset, err := loadStoreOperand(instr, 1)
	if err != nil {
		return 0, err
	}
	if !fitsSigned(offset, 12) {
		return 0, diagf(instr.Line, "%s: offset %d out of 12-bit signed range", instr.Mnemonic, offset)
	}
	return uint32(offset)&0xFFF<<20 | uint32(base)<<15 | enc.Funct3<<12 | uint32(rd)<<7 | enc.Opcode, nil
}

func encodeIJumpReg(instr ParsedInstruction, enc isa.Encoding) (uint32, error) {
	rd, err := reg(instr, 0)
	if err != nil {
		return 0, err
	}
	base, offset, err := loadStoreOperand(instr, 1)
	if err != nil {
		return 0, err
	}
	if !fitsSigned(offset, 12) {
		return 0, diagf(instr.Line, "%s: offset %d out of 12-bit signed range", instr.Mnemonic, offset)
	}
	return uint32(offset)&0xFFF<<20 | uint32(base)<<15 | enc.Funct3<<12 | uint32(rd)<<7 | enc.Opcode, nil
}

func encodeS(instr ParsedInstruction, enc isa.Encoding) (uint32, error) {
	rs2, err := reg(instr, 0)
	if err != nil {
		return 0, err
	}
	base, offset, err := loadStoreOperand(instr, 1)
	if err != nil {
		return 0, err
	}
	if !fitsSigned(offset, 12) {
		return 0, diagf(instr.Line, "%s: offset %d out of 12-bit signed range", instr.Mnemonic, offset)
	}
	imm := uint32(offset) & 0xFFF
	imm11_5 := imm >> 5
	imm4_0 := imm & 0x1F
	return imm11_5<<25 | uint32(rs2)<<20 | uint32(base)<<15 | enc.Funct3<<12 | imm4_0<<7 | enc.Opcode, nil
}

func encodeB(instr ParsedInstruction, enc isa.Encoding, symbols SymbolTable) (uint32, error) {
	rs1, err := reg(instr, 0)
	if err != nil {
		return 0, err
	}
	rs2, err := reg(instr, 1)
	if err != nil {
		return 0, err
	}
	offset, err := pcRelative(instr, 2, symbols)
	if err != nil {
		return 0, err
	}
	if offset%2 != 0 {
		return 0, diagf(instr.Line, "%s: branch offset %d is not 2-byte aligned", instr.Mnemonic, offset)
	}
	if !fitsSigned(offset, 13) {
		return 0, diagf(instr.Line, "%s: branch offset %d out of range", instr.Mnemonic, offset)
	}
	imm := uint32(offset)
	bit12 := (imm >> 12) & 0x1
	bit11 := (imm >> 11) & 0x1
	bits10_5 := (imm >> 5) & 0x3F
	bits4_1 := (imm >> 1) & 0xF
	return bit12<<31 | bits10_5<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | enc.Funct3<<12 | bits4_1<<8 | bit11<<7 | enc.Opcode, nil
}

func encodeU(instr ParsedInstruction, enc isa.Encoding) (uint32, error) {
	rd, err := reg(instr, 0)
	if err != nil {
		return 0, err
	}
	// U is not one of the two label-carrying formats (spec.md §4.1: "For
	// other formats a label is rejected"); only B and J resolve labels.
	if len(instr.Operands) > 1 && instr.Operands[1].Kind == OperandLabel {
		return 0, diagf(instr.Line, "%s: label operand %q not allowed in U-type immediate", instr.Mnemonic, instr.Operands[1].Label)
	}
	imm, err := immediate(instr, 1)
	if err != nil {
		return 0, err
	}
	if imm < 0 || imm > 0xFFFFF {
		return 0, diagf(instr.Line, "%s: upper immediate %d out of 20-bit unsigned range", instr.Mnemonic, imm)
	}
	return uint32(imm)<<12 | uint32(rd)<<7 | enc.Opcode, nil
}

func encodeJ(instr ParsedInstruction, enc isa.Encoding, symbols SymbolTable) (uint32, error) {
	rd, err := reg(instr, 0)
	if err != nil {
		return 0, err
	}
	offset, err := pcRelative(instr, 1, symbols)
	if err != nil {
		return 0, err
	}
	if offset%2 != 0 {
		return 0, diagf(instr.Line, "%s: jump offset %d is not 2-byte aligned", instr.Mnemonic, offset)
	}
	if !fitsSigned(offset, 21) {
		return 0, diagf(instr.Line, "%s: jump offset %d out of range", instr.Mnemonic, offset)
	}
	imm := uint32(offset)
	bit20 := (imm >> 20) & 0x1
	bits10_1 := (imm >> 1) & 0x3FF
	bit11 := (imm >> 11) & 0x1
	bits19_12 := (imm >> 12) & 0xFF
	return bit20<<31 | bits10_1<<21 | bit11<<20 | bits19_12<<12 | uint32(rd)<<7 | enc.Opcode, nil
}
