package parse

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/rv32pipe/asm"
	"github.com/sarchlab/rv32pipe/core"
	"github.com/sarchlab/rv32pipe/isa"
)

const instructionSize = 4

// Parse runs the full two-pass front end over r, returning the
// instruction stream and completed symbol table. Tokenizing, pass 1 and
// pass 2 each report every bad line they meet, but Parse returns after
// the first of these phases that produced any Diagnostic, so later
// phases' diagnostics are not collected.
func Parse(r io.Reader) ([]asm.ParsedInstruction, asm.SymbolTable, []error) {
	lines, errs := tokenize(r)
	if len(errs) > 0 {
		return nil, nil, errs
	}

	symbols, errs := firstPass(lines)
	if len(errs) > 0 {
		return nil, nil, errs
	}

	instrs, errs := secondPass(lines)
	if len(errs) > 0 {
		return nil, nil, errs
	}
	return instrs, symbols, nil
}

func tokenize(r io.Reader) ([]Line, []error) {
	var lines []Line
	var errs []error
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line, ok, err := tokenizeLine(scanner.Text(), lineNo)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			lines = append(lines, line)
		}
	}
	return lines, errs
}

// firstPass assigns every label an address and reserves space for
// every data directive, per original_source/src/parser.hpp's
// processFirstPass.
func firstPass(lines []Line) (asm.SymbolTable, []error) {
	symbols := make(asm.SymbolTable)
	var errs []error

	inText := true
	textAddr := core.TextBase
	dataAddr := core.DataBase

	for _, line := range lines {
		switch line.Directive {
		case ".text":
			inText = true
			continue
		case ".data":
			inText = false
			continue
		}

		if line.HasLabel {
			if _, dup := symbols[line.Label]; dup {
				errs = append(errs, asm.NewDiagnostic(line.Number, "duplicate label %q", line.Label))
				continue
			}
			if inText {
				symbols[line.Label] = asm.Symbol{TextAddress: textAddr}
			}
			// A data-section label is filled in below once its
			// directive's size is known.
		}

		if line.Directive != "" {
			sym, size, err := reserveData(line, dataAddr)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if line.HasLabel && !inText {
				symbols[line.Label] = asm.Symbol{IsData: true, Data: sym}
			}
			dataAddr += size
			continue
		}

		if line.Mnemonic != "" {
			if !inText {
				errs = append(errs, asm.NewDiagnostic(line.Number, "instruction %q outside .text section", line.Mnemonic))
				continue
			}
			textAddr += instructionSize
		}
	}
	return symbols, errs
}

// reserveData computes the bytes a data directive contributes and its
// new size, per original_source/src/parser.hpp's handleDirective.
func reserveData(line Line, addr uint32) (asm.DataSymbol, uint32, error) {
	kind, elemSize, isString := directiveKind(line.Directive)
	if elemSize == 0 && !isString {
		return asm.DataSymbol{}, 0, asm.NewDiagnostic(line.Number, "unsupported directive %q", line.Directive)
	}

	if isString {
		if len(line.Operands) != 1 || !strings.HasPrefix(line.Operands[0], "\"") {
			return asm.DataSymbol{}, 0, asm.NewDiagnostic(line.Number, "%s requires a quoted string", line.Directive)
		}
		raw, err := unquote(line.Operands[0])
		if err != nil {
			return asm.DataSymbol{}, 0, asm.NewDiagnostic(line.Number, "%s: %s", line.Directive, err)
		}
		bytes := []byte(raw)
		if kind == asm.DataASCIZ {
			bytes = append(bytes, 0)
		}
		return asm.DataSymbol{Address: addr, Kind: kind, Bytes: bytes}, uint32(len(bytes)), nil
	}

	if len(line.Operands) == 0 {
		return asm.DataSymbol{}, 0, asm.NewDiagnostic(line.Number, "%s requires at least one value", line.Directive)
	}
	bytes := make([]byte, 0, elemSize*len(line.Operands))
	for _, op := range line.Operands {
		v, err := parseImmediate(op)
		if err != nil {
			return asm.DataSymbol{}, 0, asm.NewDiagnostic(line.Number, "%s: invalid value %q", line.Directive, op)
		}
		for i := 0; i < elemSize; i++ {
			bytes = append(bytes, byte(v>>(8*i)))
		}
	}
	return asm.DataSymbol{Address: addr, Kind: kind, Bytes: bytes}, uint32(len(bytes)), nil
}

func directiveKind(directive string) (kind asm.DataKind, size int, isString bool) {
	switch directive {
	case ".byte":
		return asm.DataByte, 1, false
	case ".half":
		return asm.DataHalf, 2, false
	case ".word":
		return asm.DataWord, 4, false
	case ".dword":
		return asm.DataDword, 8, false
	case ".ascii":
		return asm.DataASCII, 0, true
	case ".asciz", ".asciiz":
		return asm.DataASCIZ, 0, true
	default:
		return 0, 0, false
	}
}

func unquote(tok string) (string, error) {
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", fmt.Errorf("malformed string literal %s", tok)
	}
	return tok[1 : len(tok)-1], nil
}

// secondPass re-walks the instruction lines, now that every label's
// address is known, producing one asm.ParsedInstruction per mnemonic
// line with its operands classified, per
// original_source/src/parser.hpp's processSecondPass/handleInstruction.
func secondPass(lines []Line) ([]asm.ParsedInstruction, []error) {
	var instrs []asm.ParsedInstruction
	var errs []error

	inText := true
	addr := core.TextBase

	for _, line := range lines {
		switch line.Directive {
		case ".text":
			inText = true
			continue
		case ".data":
			inText = false
			continue
		}
		if line.Directive != "" || line.Mnemonic == "" {
			continue
		}
		if !inText {
			continue // already diagnosed in firstPass
		}

		operands, err := classifyOperands(line)
		if err != nil {
			errs = append(errs, err)
			addr += instructionSize
			continue
		}
		instrs = append(instrs, asm.ParsedInstruction{
			Mnemonic: line.Mnemonic,
			Operands: operands,
			Address:  addr,
			Line:     line.Number,
		})
		addr += instructionSize
	}
	return instrs, errs
}

// classifyOperands turns each raw operand token into an asm.Operand,
// recognizing registers, imm(reg) memory operands, bare immediates,
// and label references (deferred to the Encoder, which resolves them
// against symbols).
func classifyOperands(line Line) ([]asm.Operand, error) {
	out := make([]asm.Operand, 0, len(line.Operands))
	for _, tok := range line.Operands {
		if offset, regTok, ok := isMemoryOperand(tok); ok {
			reg, rerr := isa.ResolveRegister(regTok)
			if rerr != nil {
				return nil, asm.NewDiagnostic(line.Number, "invalid base register %q", regTok)
			}
			imm, ierr := parseImmediate(offset)
			if ierr != nil {
				return nil, asm.NewDiagnostic(line.Number, "invalid memory offset %q", offset)
			}
			out = append(out, asm.Operand{Kind: asm.OperandMemory, Register: reg, Immediate: imm})
			continue
		}
		if reg, rerr := isa.ResolveRegister(tok); rerr == nil {
			out = append(out, asm.Operand{Kind: asm.OperandRegister, Register: reg})
			continue
		}
		if imm, ierr := parseImmediate(tok); ierr == nil {
			out = append(out, asm.Operand{Kind: asm.OperandImmediate, Immediate: imm})
			continue
		}
		// Neither a register nor a numeric literal: treat as a label
		// reference. Existence is checked by the Encoder so that an
		// undefined symbol produces one Diagnostic there, not two.
		out = append(out, asm.Operand{Kind: asm.OperandLabel, Label: tok})
	}
	return out, nil
}
