// Command rvasm is the assembler CLI (C13): it reads an RV32I/M
// assembly source file, encodes it, and writes the machine-code
// artifact spec.md §6 defines.
//
// Grounded on the single-root-command cobra shape of
// _examples/oisee-z80-optimizer/cmd/z80opt/main.go (the teacher's own
// CLI uses stdlib flag) and spec.md §6's "asm <input.asm> [<output.mc>]"
// CLI contract.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rv32pipe/asm"
	"github.com/sarchlab/rv32pipe/asm/artifact"
	"github.com/sarchlab/rv32pipe/asm/parse"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rvasm <input.asm> [<output.mc>]",
		Short: "Assemble RV32I/M source into a machine-code artifact",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  run,
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorColor(err.Error()))
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath := defaultOutputPath(inputPath)
	if len(args) == 2 {
		outputPath = args[1]
	}

	src, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputPath, err)
	}
	defer src.Close()

	instrs, symbols, diags := parse.Parse(src)
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, errorColor(d.Error()))
		}
		return fmt.Errorf("%d error(s) during parsing", len(diags))
	}

	program, errs := asm.Assemble(instrs, symbols)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, errorColor(e.Error()))
		}
		return fmt.Errorf("%d error(s) during encoding", len(errs))
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	defer out.Close()

	data := make(map[uint32]uint8)
	for _, sym := range program.Symbols {
		if !sym.IsData {
			continue
		}
		for i, b := range sym.Data.Bytes {
			data[sym.Data.Address+uint32(i)] = b
		}
	}

	if err := artifact.Write(out, program.Text, data); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	fmt.Printf("Assembled %d instructions -> %s\n", len(program.Text), outputPath)
	return nil
}

// defaultOutputPath mirrors spec.md §6's "default output is <input
// basename>.mc" rule.
func defaultOutputPath(inputPath string) string {
	base := inputPath
	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	return base + ".mc"
}

// errorColor wraps a diagnostic in red ANSI, per SPEC_FULL.md §6.13's
// colored fatal/diagnostic output, grounded on
// original_source/src/parser.hpp's RED/RESET wrapping.
func errorColor(msg string) string {
	const red, reset = "\x1b[31m", "\x1b[0m"
	return red + msg + reset
}
