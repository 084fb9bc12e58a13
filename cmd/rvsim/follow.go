package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/rv32pipe/decode"
	"github.com/sarchlab/rv32pipe/pipeline"
)

// followTracer implements spec.md §6's -f/--follow flag: either
// "n=N" (trace the Nth instruction retired) or "p=0xPC" (trace every
// cycle a given PC occupies a pipeline slot).
type followTracer struct {
	byRetireCount bool
	count         uint64
	pc            uint32
	retired       uint64
}

// parseFollow builds a tracer for -f/--follow against the loaded
// program's text map. A malformed flag value (bad syntax, unparsable
// number) is a hard error; a syntactically valid target that falls
// outside the program's range is instead a warning per spec.md §7
// ("--follow target outside the text segment"), and the flag is
// ignored (parseFollow returns a nil tracer, not an error).
func parseFollow(spec string, text map[uint32]uint32) (*followTracer, error) {
	if spec == "" {
		return nil, nil
	}
	kv := strings.SplitN(spec, "=", 2)
	if len(kv) != 2 {
		return nil, fmt.Errorf("invalid --follow value %q: expected n=N or p=0xPC", spec)
	}
	switch kv[0] {
	case "n":
		n, err := strconv.ParseUint(kv[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --follow n value %q: %w", kv[1], err)
		}
		if n == 0 || n > uint64(len(text)) {
			warnColor(fmt.Sprintf("--follow n=%d is outside the program's %d retirable instructions; ignoring --follow", n, len(text)))
			return nil, nil
		}
		return &followTracer{byRetireCount: true, count: n}, nil
	case "p":
		pcStr := strings.TrimPrefix(strings.ToLower(kv[1]), "0x")
		pc, err := strconv.ParseUint(pcStr, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid --follow p value %q: %w", kv[1], err)
		}
		if _, ok := text[uint32(pc)]; !ok {
			warnColor(fmt.Sprintf("--follow p=0x%08x is outside the text segment; ignoring --follow", pc))
			return nil, nil
		}
		return &followTracer{pc: uint32(pc)}, nil
	default:
		return nil, fmt.Errorf("invalid --follow key %q: expected n or p", kv[0])
	}
}

// warnColor prints a yellow warning to stderr, per spec.md §7's
// warning convention (distinct from errorColor's red fatal wrapping).
func warnColor(msg string) {
	const yellow, reset = "\x1b[33m", "\x1b[0m"
	fmt.Fprintln(os.Stderr, yellow+msg+reset)
}

// observe is called once per Step(). It prints the traced instruction's
// slot occupancy for the cycle it matches.
func (t *followTracer) observe(e *pipeline.Engine) {
	if t.byRetireCount {
		if e.MemorySlot().Valid {
			t.retired++
			if t.retired == t.count {
				t.printSlot("writeback-bound", e.MemorySlot().Node)
			}
		}
		return
	}

	slots := []struct {
		name string
		slot pipeline.Latch
	}{
		{"fetch", e.FetchSlot()},
		{"decode", e.DecodeSlot()},
		{"execute", e.ExecuteSlot()},
		{"memory", e.MemorySlot()},
	}
	for _, s := range slots {
		if s.slot.Valid && s.slot.Node.PC == t.pc {
			fmt.Printf("[follow pc=0x%08x] %s: %s\n", t.pc, s.name, decode.Disassemble(s.slot.Node.Decoded))
		}
	}
}

func (t *followTracer) printSlot(label string, node pipeline.Node) {
	fmt.Printf("[follow n=%d] %s: pc=0x%08x %s\n", t.count, label, node.PC, decode.Disassemble(node.Decoded))
}
