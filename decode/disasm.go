package decode

import (
	"fmt"

	"github.com/sarchlab/rv32pipe/isa"
)

// Disassemble renders a decoded instruction back into a textual
// mnemonic-and-operand string, for the machine-code artifact's
// human-readable column (spec.md §6) and for trace output. This is the
// minimal renderer spec.md §1 calls "straightforward... re-implementable
// in any language"; it is not a general-purpose disassembler.
func Disassemble(inst Instruction) string {
	rd := isa.RegisterName(inst.RD)
	rs1 := isa.RegisterName(inst.RS1)
	rs2 := isa.RegisterName(inst.RS2)

	switch inst.Format {
	case isa.FormatR:
		return fmt.Sprintf("%s %s, %s, %s", inst.Mnemonic, rd, rs1, rs2)
	case isa.FormatI, isa.FormatIShift:
		return fmt.Sprintf("%s %s, %s, %d", inst.Mnemonic, rd, rs1, inst.Imm)
	case isa.FormatILoad:
		return fmt.Sprintf("%s %s, %d(%s)", inst.Mnemonic, rd, inst.Imm, rs1)
	case isa.FormatIJumpReg:
		return fmt.Sprintf("%s %s, %s, %d", inst.Mnemonic, rd, rs1, inst.Imm)
	case isa.FormatS:
		return fmt.Sprintf("%s %s, %d(%s)", inst.Mnemonic, rs2, inst.Imm, rs1)
	case isa.FormatB:
		return fmt.Sprintf("%s %s, %s, %d", inst.Mnemonic, rs1, rs2, inst.Imm)
	case isa.FormatU:
		return fmt.Sprintf("%s %s, %#x", inst.Mnemonic, rd, uint32(inst.Imm)>>12)
	case isa.FormatJ:
		return fmt.Sprintf("%s %s, %d", inst.Mnemonic, rd, inst.Imm)
	case isa.FormatStandalone:
		return inst.Mnemonic
	default:
		return fmt.Sprintf("?? %#08x", inst.Raw)
	}
}
