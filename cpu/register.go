package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

// Register indices with symbolic names.
const (
	REG_ZERO = 0  // zero
	REG_EAX  = 1  // eax
	REG_EBX  = 2  // ebx
	REG_ECX  = 3  // ecx
	REG_EDX  = 4  // edx
	REG_ESI  = 5  // esi
	REG_EDI  = 6  // edi
	REG_SP   = 13 // sp
	REG_BP   = 14 // bp
)

var registerNames = [REGISTER_COUNT]string{
	"zero", "eax", "ebx", "ecx", "edx", "esi", "edi",
	"r7", "r8", "r9", "r10", "r11", "r12",
	"sp", "bp", "r15",
}

var registerIndex = func() map[string]int {
	index := make(map[string]int, REGISTER_COUNT)
	for n, name := range registerNames {
		index[name] = n
	}
	return index
}()

// RegisterName returns the canonical name of register index.
func RegisterName(index int) string {
	if index < 0 || index >= REGISTER_COUNT {
		return fmt.Sprintf("r?%d", index)
	}
	return registerNames[index]
}

// RegisterIndex returns the index of a named register.
// Accepts the symbolic names, and the raw r<N>, R<N> and %<N> forms.
func RegisterIndex(name string) (index int, ok bool) {
	index, ok = registerIndex[strings.ToLower(name)]
	if ok {
		return
	}

	var digits string
	switch {
	case strings.HasPrefix(name, "r"), strings.HasPrefix(name, "R"), strings.HasPrefix(name, "%"):
		digits = name[1:]
	default:
		return
	}

	if len(digits) == 0 || len(digits) > 2 || (len(digits) == 2 && digits[0] == '0') {
		return
	}

	value, err := strconv.ParseUint(digits, 10, 8)
	if err != nil || value >= REGISTER_COUNT {
		return
	}

	return int(value), true
}
