// Package core holds the architectural state shared by every pipeline
// instruction: the 32-register integer file and the byte-addressable
// sparse memory, per spec.md §3/§4.4.
package core

// RegFile is the 32x32-bit RV32I integer register file. x0 is
// hard-wired zero: reads of register 0 always return 0 and writes to it
// are silently dropped, regardless of the underlying slot.
//
// Grounded on the teacher's emu/regfile.go (ReadReg/WriteReg shape);
// initial values follow original_source/src/execution.hpp's
// initialiseRegisters.
type RegFile struct {
	x [32]uint32
}

// NewRegFile returns a register file with the architectural initial
// state: sp=0x7FFF_FFDC, gp=0x1000_0000, a0=1, a1=0x7FFF_FFDC, rest zero.
func NewRegFile() *RegFile {
	rf := &RegFile{}
	rf.x[2] = 0x7FFF_FFDC // sp
	rf.x[3] = 0x1000_0000 // gp
	rf.x[10] = 1          // a0
	rf.x[11] = 0x7FFF_FFDC // a1
	return rf
}

// Read returns the value of register idx; x0 always reads as 0.
func (rf *RegFile) Read(idx uint8) uint32 {
	if idx == 0 {
		return 0
	}
	return rf.x[idx]
}

// Write sets register idx to value; writes to x0 are dropped.
func (rf *RegFile) Write(idx uint8, value uint32) {
	if idx == 0 {
		return
	}
	rf.x[idx] = value
}

// Snapshot returns a copy of all 32 register values, for register-dump
// output (-r/--registers) and tracing.
func (rf *RegFile) Snapshot() [32]uint32 {
	out := rf.x
	out[0] = 0
	return out
}
