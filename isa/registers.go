package isa

import (
	"fmt"
	"strconv"
	"strings"
)

// abiNames[i] is the ABI alias for register xI.
var abiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

var aliasToIndex = buildAliasTable()

func buildAliasTable() map[string]uint8 {
	m := make(map[string]uint8, 64)
	for i, name := range abiNames {
		m[name] = uint8(i)
	}
	// fp is a common extra alias for s0 (frame pointer).
	m["fp"] = 8
	return m
}

// ResolveRegister parses a register operand, accepting both "xN" (0..31)
// and the 32 ABI aliases, case-insensitively.
func ResolveRegister(name string) (uint8, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return 0, fmt.Errorf("empty register operand")
	}
	if idx, ok := aliasToIndex[lower]; ok {
		return idx, nil
	}
	if strings.HasPrefix(lower, "x") {
		n, err := strconv.Atoi(lower[1:])
		if err != nil || n < 0 || n > 31 {
			return 0, fmt.Errorf("invalid register %q", name)
		}
		return uint8(n), nil
	}
	return 0, fmt.Errorf("invalid register %q", name)
}

// RegisterName returns the ABI alias for a register index, for
// disassembly and trace output.
func RegisterName(idx uint8) string {
	if idx > 31 {
		return fmt.Sprintf("x%d", idx)
	}
	return abiNames[idx]
}
