// Package parse is the Lexer/Parser front end (C11): it turns assembly
// source text into the asm package's ParsedInstruction stream and
// SymbolTable, ready for the Encoder.
//
// Grounded on original_source/src/lexer.hpp's token classification
// (register/immediate/label/directive/string) and
// original_source/src/parser.hpp's two-pass structure (pass 1 walks
// labels and directives to assign addresses, pass 2 re-walks to build
// ParsedInstruction values; label operands are left for the Encoder to
// resolve against the completed symbol table).
// Rendered in idiomatic Go: no token-type enum threaded through both
// passes, just a per-line split into label/directive-or-mnemonic/operand
// tokens, and plain error returns instead of an error-count field.
package parse

import (
	"strconv"
	"strings"

	"github.com/sarchlab/rv32pipe/asm"
)

// Line is one tokenized source line: an optional label, the
// directive or mnemonic it carries (if any), and its raw operand text
// split on commas.
type Line struct {
	Number    int
	Label     string
	HasLabel  bool
	Directive string // e.g. ".text", ".word"; empty if this line is an instruction
	Mnemonic  string
	Operands  []string
}

// stripComment removes a trailing comment starting with '#', ';', or
// "//", per spec.md §6.9.
func stripComment(s string) string {
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '#' || s[i] == ';':
			return s[:i]
		case s[i] == '/' && i+1 < len(s) && s[i+1] == '/':
			return s[:i]
		}
	}
	return s
}

// tokenizeLine splits one source line into a Line. A blank or
// comment-only line returns ok=false with no error.
func tokenizeLine(raw string, lineNo int) (line Line, ok bool, err error) {
	text := strings.TrimSpace(stripComment(raw))
	if text == "" {
		return Line{}, false, nil
	}

	line = Line{Number: lineNo}

	// A leading "label:" is split off first regardless of what follows.
	if idx := strings.IndexByte(text, ':'); idx >= 0 && !strings.ContainsAny(text[:idx], " \t(") {
		line.Label = strings.TrimSpace(text[:idx])
		line.HasLabel = true
		if line.Label == "" {
			return Line{}, false, asm.NewDiagnostic(lineNo, "empty label")
		}
		text = strings.TrimSpace(text[idx+1:])
		if text == "" {
			return line, true, nil
		}
	}

	fields := strings.Fields(text)
	head := fields[0]
	rest := strings.TrimSpace(text[len(head):])

	if strings.HasPrefix(head, ".") {
		line.Directive = strings.ToLower(head)
	} else {
		line.Mnemonic = strings.ToLower(head)
	}
	line.Operands = splitOperands(rest)
	return line, true, nil
}

// splitOperands splits a comma-separated operand list, tolerating
// strings (quoted text for .ascii/.asciz, kept as one operand even if
// it contains commas).
func splitOperands(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "\"") {
		return []string{s}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseImmediate parses a decimal, 0x-hex, or 0b-binary signed literal,
// mirroring original_source/src/lexer.hpp's isImmediate prefix rules.
func parseImmediate(tok string) (int64, error) {
	neg := false
	s := tok
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(s, "0b"), strings.HasPrefix(s, "0B"):
		base = 2
		s = s[2:]
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return v, nil
}

// isMemoryOperand recognizes the imm(reg) shape, e.g. "-4(sp)".
func isMemoryOperand(tok string) (offset string, reg string, ok bool) {
	open := strings.IndexByte(tok, '(')
	if open < 0 || !strings.HasSuffix(tok, ")") {
		return "", "", false
	}
	return tok[:open], tok[open+1 : len(tok)-1], true
}
