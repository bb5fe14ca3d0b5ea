package cpu

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
)

// Arg is one operand slot of an instruction schema.
type Arg struct {
	Kind  ArgKind // Operand kind.
	Field Field   // Record field receiving the operand.
}

// Def is the catalog entry of an instruction.
type Def struct {
	Mnemonic string
	Opcode   Opcode
	Format   Format
	Args     []Arg
}

// Operand schemas. Each operand slots into its field by position.
var (
	argsRRR   = []Arg{{ARG_REGISTER, FIELD_RD}, {ARG_REGISTER, FIELD_RS1}, {ARG_REGISTER, FIELD_RS2}}
	argsRRI   = []Arg{{ARG_REGISTER, FIELD_RD}, {ARG_REGISTER, FIELD_RS1}, {ARG_IMM, FIELD_IMM}}
	argsCmpRR = []Arg{{ARG_REGISTER, FIELD_RS1}, {ARG_REGISTER, FIELD_RS2}}
	argsCmpRI = []Arg{{ARG_REGISTER, FIELD_RS1}, {ARG_IMM, FIELD_IMM}}
	argsRd    = []Arg{{ARG_REGISTER, FIELD_RD}}
	argsRs1   = []Arg{{ARG_REGISTER, FIELD_RS1}}
	argsRdRs1 = []Arg{{ARG_REGISTER, FIELD_RD}, {ARG_REGISTER, FIELD_RS1}}
	argsRdImm = []Arg{{ARG_REGISTER, FIELD_RD}, {ARG_IMM, FIELD_IMM}}
	argsRdVar = []Arg{{ARG_REGISTER, FIELD_RD}, {ARG_VARIABLE, FIELD_IMM}}
	argsLabel = []Arg{{ARG_LABEL, FIELD_IMM}}
	argsNone  = []Arg{}
)

var catalogList = []Def{
	{"add", OP_ADD, FORMAT_R, argsRRR},
	{"sub", OP_SUB, FORMAT_R, argsRRR},
	{"mul", OP_MUL, FORMAT_R, argsRRR},
	{"div", OP_DIV, FORMAT_R, argsRRR},
	{"mod", OP_MOD, FORMAT_R, argsRRR},
	{"addi", OP_ADDI, FORMAT_I, argsRRI},
	{"subi", OP_SUBI, FORMAT_I, argsRRI},
	{"muli", OP_MULI, FORMAT_I, argsRRI},
	{"divi", OP_DIVI, FORMAT_I, argsRRI},
	{"modi", OP_MODI, FORMAT_I, argsRRI},

	{"and", OP_AND, FORMAT_R, argsRRR},
	{"or", OP_OR, FORMAT_R, argsRRR},
	{"xor", OP_XOR, FORMAT_R, argsRRR},
	{"andi", OP_ANDI, FORMAT_I, argsRRI},
	{"ori", OP_ORI, FORMAT_I, argsRRI},
	{"xori", OP_XORI, FORMAT_I, argsRRI},

	{"shl", OP_SHL, FORMAT_R, argsRRR},
	{"shr", OP_SHR, FORMAT_R, argsRRR},
	{"sar", OP_SAR, FORMAT_R, argsRRR},
	{"rol", OP_ROL, FORMAT_R, argsRRR},
	{"ror", OP_ROR, FORMAT_R, argsRRR},
	{"shli", OP_SHLI, FORMAT_I, argsRRI},
	{"shri", OP_SHRI, FORMAT_I, argsRRI},
	{"sari", OP_SARI, FORMAT_I, argsRRI},
	{"roli", OP_ROLI, FORMAT_I, argsRRI},
	{"rori", OP_RORI, FORMAT_I, argsRRI},

	{"cmp", OP_CMP, FORMAT_R, argsCmpRR},
	{"cmpu", OP_CMPU, FORMAT_R, argsCmpRR},
	{"test", OP_TEST, FORMAT_R, argsCmpRR},
	{"cmpi", OP_CMPI, FORMAT_I, argsCmpRI},
	{"cmpui", OP_CMPUI, FORMAT_I, argsCmpRI},
	{"testi", OP_TESTI, FORMAT_I, argsCmpRI},

	{"inc", OP_INC, FORMAT_J, argsRd},
	{"dec", OP_DEC, FORMAT_J, argsRd},
	{"not", OP_NOT, FORMAT_J, argsRdRs1},
	{"abs", OP_ABS, FORMAT_J, argsRdRs1},
	{"neg", OP_NEG, FORMAT_J, argsRdRs1},
	{"min", OP_MIN, FORMAT_R, argsRRR},
	{"max", OP_MAX, FORMAT_R, argsRRR},
	{"mini", OP_MINI, FORMAT_I, argsRRI},
	{"maxi", OP_MAXI, FORMAT_I, argsRRI},

	{"movi", OP_MOVI, FORMAT_I, argsRdImm},
	{"mov", OP_MOV, FORMAT_R, argsRdRs1},
	{"ldb", OP_LDB_ABS, FORMAT_I, argsRdVar},
	{"ldh", OP_LDH_ABS, FORMAT_I, argsRdVar},
	{"ldw", OP_LDW_ABS, FORMAT_I, argsRdVar},
	{"stb", OP_STB_ABS, FORMAT_I, argsRdVar},
	{"sth", OP_STH_ABS, FORMAT_I, argsRdVar},
	{"stw", OP_STW_ABS, FORMAT_I, argsRdVar},
	{"lbaseb", OP_LDB_BASE, FORMAT_I, argsRRI},
	{"lbaseh", OP_LDH_BASE, FORMAT_I, argsRRI},
	{"lbasew", OP_LDW_BASE, FORMAT_I, argsRRI},
	{"sbaseb", OP_STB_BASE, FORMAT_I, argsRRI},
	{"sbaseh", OP_STH_BASE, FORMAT_I, argsRRI},
	{"sbasew", OP_STW_BASE, FORMAT_I, argsRRI},
	{"push", OP_PUSH, FORMAT_J, argsRs1},
	{"pop", OP_POP, FORMAT_J, argsRd},
	{"lea", OP_LEA, FORMAT_I, argsRRI},
	{"swap", OP_SWAP, FORMAT_R, argsRdRs1},
	{"clr", OP_CLR, FORMAT_J, argsRd},
	{"memcpy", OP_MEMCPY, FORMAT_I, argsRRI},

	{"jmp", OP_JMP, FORMAT_J, argsLabel},
	{"jz", OP_JZ, FORMAT_J, argsLabel},
	{"jnz", OP_JNZ, FORMAT_J, argsLabel},
	{"jg", OP_JG, FORMAT_J, argsLabel},
	{"jl", OP_JL, FORMAT_J, argsLabel},
	{"call", OP_CALL, FORMAT_J, argsLabel},
	{"ret", OP_RET, FORMAT_J, argsNone},

	{"halt", OP_HALT, FORMAT_J, argsNone},
}

// Lookup tables, built once from catalogList and never mutated.
var (
	catalogByName   map[string]*Def
	catalogByOpcode [256]*Def
)

func init() {
	catalogByName = make(map[string]*Def, len(catalogList))
	for n := range catalogList {
		def := &catalogList[n]
		if _, dup := catalogByName[def.Mnemonic]; dup {
			panic("cpu: duplicate mnemonic " + def.Mnemonic)
		}
		if catalogByOpcode[def.Opcode] != nil {
			panic("cpu: duplicate opcode " + def.Mnemonic)
		}
		catalogByName[def.Mnemonic] = def
		catalogByOpcode[def.Opcode] = def
	}
}

// Lookup returns the catalog entry for a mnemonic.
// Mnemonics are matched case-insensitively.
func Lookup(mnemonic string) (def Def, ok bool) {
	ptr, ok := catalogByName[strings.ToLower(mnemonic)]
	if ok {
		def = *ptr
		def.Args = slices.Clone(ptr.Args)
	}
	return
}

// IsMnemonic returns true if word names an instruction.
func IsMnemonic(word string) bool {
	_, ok := catalogByName[strings.ToLower(word)]
	return ok
}

// Definition returns the catalog entry for an opcode.
func Definition(op Opcode) (def Def, ok bool) {
	ptr := catalogByOpcode[op]
	if ptr != nil {
		def = *ptr
		def.Args = slices.Clone(ptr.Args)
		ok = true
	}
	return
}

// Mnemonics iterates over the catalog mnemonics in sorted order.
func Mnemonics() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(catalogByName)))
}

// Operands returns the textual operands of in, in schema order.
// Registers print by canonical name, immediates in decimal, labels as
// signed slot offsets, and variables as hexadecimal addresses.
func (def Def) Operands(in Instr) (words []string) {
	for _, arg := range def.Args {
		value := in.Get(arg.Field)
		switch arg.Kind {
		case ARG_REGISTER:
			words = append(words, RegisterName(int(value)))
		case ARG_IMM:
			words = append(words, fmt.Sprintf("%d", value))
		case ARG_LABEL:
			words = append(words, fmt.Sprintf("%+d", value))
		case ARG_VARIABLE:
			words = append(words, fmt.Sprintf("0x%x", uint32(value)))
		}
	}
	return
}

// Disassemble formats in according to the schema.
func (def Def) Disassemble(in Instr) string {
	words := append([]string{def.Mnemonic}, def.Operands(in)...)
	return strings.Join(words, " ")
}
