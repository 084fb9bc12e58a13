package pipeline

import "github.com/sarchlab/rv32pipe/decode"

// Stats is the Statistics Collector (C9): purely observational counters,
// per spec.md §3/§4.8/§6. All fields are monotonically non-decreasing;
// CPI is not stored but computed on demand by the CPI method.
type Stats struct {
	Cycles                   uint64
	InstructionsExecuted     uint64
	DataTransferInstructions uint64
	ALUInstructions          uint64
	ControlInstructions      uint64
	StallBubbles             uint64
	DataHazards              uint64
	ControlHazards           uint64
	PipelineFlushes          uint64
	BranchMispredictions     uint64
}

// CPI is cycles per retired instruction; undefined (0) before any
// instruction retires.
func (s Stats) CPI() float64 {
	if s.InstructionsExecuted == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.InstructionsExecuted)
}

// bucket classifies a retiring instruction into the data-transfer / ALU
// / control buckets spec.md §4.8 names.
func (s *Stats) bucket(inst decode.Instruction) {
	switch classify(inst) {
	case classDataTransfer:
		s.DataTransferInstructions++
	case classControl:
		s.ControlInstructions++
	default:
		s.ALUInstructions++
	}
}

type instClass int

const (
	classALU instClass = iota
	classDataTransfer
	classControl
)

func classify(inst decode.Instruction) instClass {
	switch inst.Mnemonic {
	case "lb", "lh", "lw", "lbu", "lhu", "sb", "sh", "sw":
		return classDataTransfer
	case "beq", "bne", "blt", "bge", "bltu", "bgeu", "jal", "jalr", "ecall":
		return classControl
	default:
		return classALU
	}
}
