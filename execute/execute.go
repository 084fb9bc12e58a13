// Package execute holds the pure, side-effect-free execution units for
// every RV32I/M instruction: given the operand values a Decode stage has
// already resolved, compute the ALU/address result, the branch/jump
// outcome and (for stores) the data to write.
//
// Grounded on the teacher's emu/alu.go one-function-per-mnemonic shape
// and original_source/src/execution.hpp's executeInstruction semantics
// (division-by-zero halts, branches compare RA against the rs2 register
// value rather than RB, jalr clears bit 0).
package execute

import "github.com/sarchlab/rv32pipe/core"

// Input is the operand bundle an execution unit consumes. RA is rs1's
// value. RB is rs2's value (R-type) or the sign-extended/positioned
// immediate (every other format) — the Decode stage is responsible for
// choosing which, per spec.md §3's "RB = value of rs2 (or sign-extended
// immediate)". RS2Value is always rs1's partner register's literal
// content, independent of what RB carries; it is what branches compare
// against and what stores write, per spec.md §4.3.
type Input struct {
	Mnemonic string
	PC       uint32
	RA       uint32
	RB       uint32
	RS2Value uint32
}

// Result is what one execution unit produces.
type Result struct {
	RY          uint32
	NextPC      uint32
	BranchTaken bool
	Halt        bool
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Execute dispatches purely on mnemonic. No register file or memory is
// touched here — those effects belong to the Memory and Writeback
// stages (spec.md §4.3/§4.7).
func Execute(in Input) (Result, error) {
	switch in.Mnemonic {
	case "add", "addi":
		return Result{RY: in.RA + in.RB}, nil
	case "sub":
		return Result{RY: in.RA - in.RB}, nil
	case "and", "andi":
		return Result{RY: in.RA & in.RB}, nil
	case "or", "ori":
		return Result{RY: in.RA | in.RB}, nil
	case "xor", "xori":
		return Result{RY: in.RA ^ in.RB}, nil
	case "sll", "slli":
		return Result{RY: in.RA << (in.RB & 0x1F)}, nil
	case "srl", "srli":
		return Result{RY: in.RA >> (in.RB & 0x1F)}, nil
	case "sra", "srai":
		return Result{RY: uint32(int32(in.RA) >> (in.RB & 0x1F))}, nil
	case "slt", "slti":
		return Result{RY: boolToWord(int32(in.RA) < int32(in.RB))}, nil
	case "sltu", "sltiu":
		return Result{RY: boolToWord(in.RA < in.RB)}, nil

	case "mul":
		return Result{RY: in.RA * in.RB}, nil
	case "div":
		if in.RB == 0 {
			return Result{}, core.NewFatalError("division by zero at pc %#08x", in.PC)
		}
		return Result{RY: uint32(int32(in.RA) / int32(in.RB))}, nil
	case "rem":
		if in.RB == 0 {
			return Result{}, core.NewFatalError("remainder by zero at pc %#08x", in.PC)
		}
		return Result{RY: uint32(int32(in.RA) % int32(in.RB))}, nil

	case "lb", "lh", "lw", "lbu", "lhu":
		// Effective address only; the actual load happens in Memory.
		return Result{RY: in.RA + in.RB}, nil

	case "sb", "sh", "sw":
		return Result{RY: in.RA + in.RB}, nil

	case "beq":
		return branchResult(in, in.RA == in.RS2Value), nil
	case "bne":
		return branchResult(in, in.RA != in.RS2Value), nil
	case "blt":
		return branchResult(in, int32(in.RA) < int32(in.RS2Value)), nil
	case "bge":
		return branchResult(in, int32(in.RA) >= int32(in.RS2Value)), nil
	case "bltu":
		return branchResult(in, in.RA < in.RS2Value), nil
	case "bgeu":
		return branchResult(in, in.RA >= in.RS2Value), nil

	case "jal":
		return Result{
			RY:          in.PC + 4,
			NextPC:      in.PC + in.RB,
			BranchTaken: true,
		}, nil
	case "jalr":
		return Result{
			RY:          in.PC + 4,
			NextPC:      (in.RA + in.RB) &^ 1,
			BranchTaken: true,
		}, nil

	case "lui":
		return Result{RY: in.RB}, nil
	case "auipc":
		return Result{RY: in.PC + in.RB}, nil

	case "ecall":
		return Result{Halt: true}, nil

	default:
		return Result{}, core.NewFatalError("execute: unknown mnemonic %q at pc %#08x", in.Mnemonic, in.PC)
	}
}

func branchResult(in Input, taken bool) Result {
	r := Result{BranchTaken: taken}
	if taken {
		r.NextPC = in.PC + in.RB
	}
	return r
}

// IsLoad reports whether a mnemonic is one of the five load instructions
// — used by the pipeline's load-use hazard detector.
func IsLoad(mnemonic string) bool {
	switch mnemonic {
	case "lb", "lh", "lw", "lbu", "lhu":
		return true
	default:
		return false
	}
}
