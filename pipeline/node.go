// Package pipeline drives the five-stage in-order RV32I/M pipeline:
// Fetch, Decode, Execute, Memory, Writeback, cycle by cycle, in reverse
// stage order, with optional forwarding and branch prediction.
//
// Grounded on the teacher's timing/pipeline package: pipeline.go's
// Tick() reverse-stage-order driver and registers.go's fixed-latch-struct
// pattern (IFID/IDEX/EXMEM/MEMWB renamed here to the RA/RB/RM/RY/RZ
// latch names spec.md §3 specifies), cross-checked against
// original_source/src/simulator.hpp for exact RV32I hazard, forwarding
// and flush semantics (the teacher's ARM64 rules differ in several
// particulars, so semantics come from original_source; the Go shape
// comes from the teacher).
package pipeline

import "github.com/sarchlab/rv32pipe/decode"

// Stage is the tagged discriminant for where a Node currently lives, per
// spec.md §9's guidance to use an exhaustive discriminant instead of
// the source's mutable heap node.
type Stage int

const (
	StageFetch Stage = iota
	StageDecode
	StageExecute
	StageMemory
	StageWriteback
)

func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "Fetch"
	case StageDecode:
		return "Decode"
	case StageExecute:
		return "Execute"
	case StageMemory:
		return "Memory"
	case StageWriteback:
		return "Writeback"
	default:
		return "?"
	}
}

// Node is the per-instruction record that moves through the pipeline
// slots, per spec.md §3. It is a plain value (no heap aliasing): moving
// a Node to the next latch is a value copy, matching spec.md §9's
// fixed-size-array-of-value-records recommendation.
type Node struct {
	Raw       uint32
	PC        uint32
	Decoded   decode.Instruction
	Stalled   bool
	Predicted bool

	// Inter-stage latches, named per spec.md §3: RA = rs1 value; RB =
	// rs2 value or sign-extended immediate; RM = rs2's literal register
	// content (store data; also the branch-compare operand, since no
	// other spec.md latch name covers that value); RY = Execute result;
	// RZ = Memory result.
	RA, RB, RM, RY, RZ uint32

	BranchTaken bool
	NextPC      uint32
	Halt        bool
}

// Latch is one of the four fixed slots between adjacent stages
// (Fetch-Decode, Decode-Execute, Execute-Memory, Memory-Writeback). An
// invalid latch is a bubble.
type Latch struct {
	Valid bool
	Node  Node
}
