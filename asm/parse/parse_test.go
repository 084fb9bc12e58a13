package parse

import (
	"strings"
	"testing"

	"github.com/sarchlab/rv32pipe/asm"
)

func TestParseSimpleProgram(t *testing.T) {
	src := `
.text
main:
    addi a0, zero, 5   # load 5
    addi a1, zero, 10
    add  a2, a0, a1
    ecall
`
	instrs, symbols, errs := Parse(strings.NewReader(src))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(instrs) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(instrs))
	}
	if sym, ok := symbols["main"]; !ok || sym.TextAddress != 0 {
		t.Fatalf("expected label main at address 0, got %+v ok=%v", sym, ok)
	}
	if instrs[0].Mnemonic != "addi" {
		t.Fatalf("first mnemonic = %q", instrs[0].Mnemonic)
	}
	if instrs[3].Address != 12 {
		t.Fatalf("ecall address = %d, want 12", instrs[3].Address)
	}
}

func TestParseBranchLabel(t *testing.T) {
	src := `
.text
loop:
    addi t0, t0, -1
    bne  t0, zero, loop
`
	instrs, symbols, errs := Parse(strings.NewReader(src))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := symbols["loop"]; !ok {
		t.Fatal("expected label loop in symbol table")
	}
	branch := instrs[1]
	if len(branch.Operands) != 3 || branch.Operands[2].Kind != asm.OperandLabel {
		t.Fatalf("expected third operand to be a label reference, got %+v", branch.Operands)
	}
}

func TestParseDataDirectives(t *testing.T) {
	src := `
.data
count:  .word 42
name:   .asciz "hi"
.text
    lw a0, count
`
	_, symbols, errs := Parse(strings.NewReader(src))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	count, ok := symbols["count"]
	if !ok || !count.IsData || count.Data.Kind != asm.DataWord {
		t.Fatalf("expected count data symbol, got %+v ok=%v", count, ok)
	}
	if len(count.Data.Bytes) != 4 {
		t.Fatalf("expected 4 bytes for .word, got %d", len(count.Data.Bytes))
	}
	name, ok := symbols["name"]
	if !ok || len(name.Data.Bytes) != 3 {
		t.Fatalf("expected asciz \"hi\" to reserve 3 bytes (2 chars + NUL), got %+v", name)
	}
}

func TestParseMemoryOperand(t *testing.T) {
	src := ".text\n    lw a0, -4(sp)\n"
	instrs, _, errs := Parse(strings.NewReader(src))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	op := instrs[0].Operands[1]
	if op.Kind != asm.OperandMemory || op.Immediate != -4 {
		t.Fatalf("expected memory operand with offset -4, got %+v", op)
	}
}

func TestParseDuplicateLabel(t *testing.T) {
	src := ".text\nfoo:\n    ecall\nfoo:\n    ecall\n"
	_, _, errs := Parse(strings.NewReader(src))
	if len(errs) == 0 {
		t.Fatal("expected a duplicate-label diagnostic")
	}
}

func TestParseInstructionOutsideText(t *testing.T) {
	src := ".data\n    ecall\n"
	_, _, errs := Parse(strings.NewReader(src))
	if len(errs) == 0 {
		t.Fatal("expected a diagnostic for an instruction in the data section")
	}
}
