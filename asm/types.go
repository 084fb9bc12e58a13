// Package asm is the Encoder (C2) and the two-pass Encoder Front-End
// Glue (C10): it maps parsed instructions, with symbolic labels and
// section-aware addresses, to 32-bit RV32I/M words.
//
// Grounded on bassosimone-risc32/pkg/asm/instruction.go's per-opcode
// Encode-method dispatch (the closest pack analogue to a real
// bit-packing instruction encoder) and
// original_source/src/assembler.hpp's encodeRType/encodeIType/...
// dispatch shape for the two-pass structure.
package asm

import "fmt"

// OperandKind classifies one already-lexed operand, per spec.md §6's
// Parser→Encoder contract.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandLabel
	// OperandMemory is the imm(reg) shape used by loads and stores.
	OperandMemory
)

// Operand is one parsed operand. For OperandMemory, Register holds the
// base register and Immediate holds the offset (or Label holds a
// symbolic offset, rejected for memory operands per spec.md §4.1).
type Operand struct {
	Kind      OperandKind
	Register  uint8
	Immediate int64
	Label     string
}

// ParsedInstruction is the Parser→Encoder contract's unit of work:
// mnemonic, operands, the address already assigned to it, and its
// source line for diagnostics (spec.md §3).
type ParsedInstruction struct {
	Mnemonic string
	Operands []Operand
	Address  uint32
	Line     int
}

// DataKind is one of the directive kinds spec.md §3's symbol table
// supports.
type DataKind int

const (
	DataByte DataKind = iota
	DataHalf
	DataWord
	DataDword
	DataASCII
	DataASCIZ
)

// DataSymbol is a data-section symbol table entry: address, kind, and
// the raw bytes the directive reserved.
type DataSymbol struct {
	Address uint32
	Kind    DataKind
	Bytes   []byte
}

// Symbol is either a text-section label (a code address) or a
// data-section label (a DataSymbol), per spec.md §3.
type Symbol struct {
	IsData      bool
	TextAddress uint32
	Data        DataSymbol
}

// SymbolTable maps label name to Symbol. Built by the parser (C11),
// read-only to the Encoder (spec.md §3).
type SymbolTable map[string]Symbol

// Diagnostic is a recoverable, per-line assembler error (spec.md §7):
// bad operand, unknown mnemonic, undefined label, out-of-range
// immediate or offset, or a label used where none is allowed.
type Diagnostic struct {
	Line    int
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

func diagf(line int, format string, args ...any) *Diagnostic {
	return &Diagnostic{Line: line, Message: fmt.Sprintf(format, args...)}
}

// NewDiagnostic builds a Diagnostic, for use by the parse package's
// lexer stage (which has no access to the unexported diagf helper).
func NewDiagnostic(line int, format string, args ...any) *Diagnostic {
	return diagf(line, format, args...)
}
