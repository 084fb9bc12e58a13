package isa

import "testing"

func TestLookupKnownMnemonics(t *testing.T) {
	cases := []struct {
		mnemonic string
		format   Format
		opcode   uint32
		funct3   uint32
		funct7   uint32
	}{
		{"add", FormatR, 0x33, 0x0, 0x00},
		{"sub", FormatR, 0x33, 0x0, 0x20},
		{"mul", FormatR, 0x33, 0x0, 0x01},
		{"div", FormatR, 0x33, 0x4, 0x01},
		{"rem", FormatR, 0x33, 0x6, 0x01},
		{"addi", FormatI, 0x13, 0x0, 0x00},
		{"slli", FormatIShift, 0x13, 0x1, 0x00},
		{"srai", FormatIShift, 0x13, 0x5, 0x20},
		{"lw", FormatILoad, 0x03, 0x2, 0x00},
		{"jalr", FormatIJumpReg, 0x67, 0x0, 0x00},
		{"sw", FormatS, 0x23, 0x2, 0x00},
		{"bltu", FormatB, 0x63, 0x6, 0x00},
		{"lui", FormatU, 0x37, 0x0, 0x00},
		{"jal", FormatJ, 0x6F, 0x0, 0x00},
		{"ecall", FormatStandalone, 0x73, 0x0, 0x00},
	}

	for _, c := range cases {
		e, ok := Lookup(c.mnemonic)
		if !ok {
			t.Fatalf("%s: not found", c.mnemonic)
		}
		if e.Format != c.format || e.Opcode != c.opcode || e.Funct3 != c.funct3 || e.Funct7 != c.funct7 {
			t.Errorf("%s: got %+v, want format=%v opcode=%#x funct3=%#x funct7=%#x",
				c.mnemonic, e, c.format, c.opcode, c.funct3, c.funct7)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("frobnicate"); ok {
		t.Fatal("expected unknown mnemonic to miss")
	}
}

func TestWritesRegister(t *testing.T) {
	if FormatS.WritesRegister() {
		t.Error("S-type must not write a register")
	}
	if FormatB.WritesRegister() {
		t.Error("B-type must not write a register")
	}
	if !FormatR.WritesRegister() {
		t.Error("R-type must write a register")
	}
}

func TestReadsRS2(t *testing.T) {
	if !FormatR.ReadsRS2() || !FormatS.ReadsRS2() || !FormatB.ReadsRS2() {
		t.Error("R/S/B formats must read rs2")
	}
	if FormatI.ReadsRS2() {
		t.Error("I-type must not read rs2")
	}
}
