package cpu

import (
	"fmt"
)

// Opcode is the 8-bit operation code of a decoded instruction.
type Opcode uint8

const (
	OP_ADD  = Opcode(0x00) // add
	OP_SUB  = Opcode(0x01) // sub
	OP_MUL  = Opcode(0x02) // mul
	OP_DIV  = Opcode(0x03) // div
	OP_MOD  = Opcode(0x04) // mod
	OP_ADDI = Opcode(0x05) // addi
	OP_SUBI = Opcode(0x06) // subi
	OP_MULI = Opcode(0x07) // muli
	OP_DIVI = Opcode(0x08) // divi
	OP_MODI = Opcode(0x09) // modi

	OP_AND  = Opcode(0x0a) // and
	OP_OR   = Opcode(0x0b) // or
	OP_XOR  = Opcode(0x0c) // xor
	OP_ANDI = Opcode(0x0d) // andi
	OP_ORI  = Opcode(0x0e) // ori
	OP_XORI = Opcode(0x0f) // xori

	OP_SHL  = Opcode(0x10) // shl
	OP_SHR  = Opcode(0x11) // shr
	OP_SAR  = Opcode(0x12) // sar
	OP_ROL  = Opcode(0x13) // rol
	OP_ROR  = Opcode(0x14) // ror
	OP_SHLI = Opcode(0x15) // shli
	OP_SHRI = Opcode(0x16) // shri
	OP_SARI = Opcode(0x17) // sari
	OP_ROLI = Opcode(0x18) // roli
	OP_RORI = Opcode(0x19) // rori

	OP_CMP   = Opcode(0x1a) // cmp
	OP_CMPU  = Opcode(0x1b) // cmpu
	OP_TEST  = Opcode(0x1c) // test
	OP_CMPI  = Opcode(0x1d) // cmpi
	OP_CMPUI = Opcode(0x1e) // cmpui
	OP_TESTI = Opcode(0x1f) // testi

	OP_INC  = Opcode(0x20) // inc
	OP_DEC  = Opcode(0x21) // dec
	OP_NOT  = Opcode(0x22) // not
	OP_ABS  = Opcode(0x23) // abs
	OP_NEG  = Opcode(0x24) // neg
	OP_MIN  = Opcode(0x25) // min
	OP_MAX  = Opcode(0x26) // max
	OP_MINI = Opcode(0x27) // mini
	OP_MAXI = Opcode(0x28) // maxi

	// 0x29 through 0x2f are reserved for floating point.
	OP_FPU_FIRST = Opcode(0x29)
	OP_FPU_LAST  = Opcode(0x2f)

	OP_MOVI     = Opcode(0x30) // movi
	OP_MOV      = Opcode(0x31) // mov
	OP_LDB_ABS  = Opcode(0x32) // ldb
	OP_LDH_ABS  = Opcode(0x33) // ldh
	OP_LDW_ABS  = Opcode(0x34) // ldw
	OP_STB_ABS  = Opcode(0x35) // stb
	OP_STH_ABS  = Opcode(0x36) // sth
	OP_STW_ABS  = Opcode(0x37) // stw
	OP_LDB_BASE = Opcode(0x38) // lbaseb
	OP_LDH_BASE = Opcode(0x39) // lbaseh
	OP_LDW_BASE = Opcode(0x3a) // lbasew
	OP_STB_BASE = Opcode(0x3b) // sbaseb
	OP_STH_BASE = Opcode(0x3c) // sbaseh
	OP_STW_BASE = Opcode(0x3d) // sbasew
	OP_PUSH     = Opcode(0x3e) // push
	OP_POP      = Opcode(0x3f) // pop
	OP_LEA      = Opcode(0x40) // lea
	OP_SWAP     = Opcode(0x41) // swap
	OP_CLR      = Opcode(0x42) // clr
	OP_MEMCPY   = Opcode(0x43) // memcpy

	OP_JMP  = Opcode(0x44) // jmp
	OP_JZ   = Opcode(0x45) // jz
	OP_JNZ  = Opcode(0x46) // jnz
	OP_JG   = Opcode(0x47) // jg
	OP_JL   = Opcode(0x48) // jl
	OP_CALL = Opcode(0x49) // call
	OP_RET  = Opcode(0x4a) // ret
	OP_HALT = Opcode(0x4b) // halt
)

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	def, ok := Definition(op)
	if ok {
		return def.Mnemonic
	}
	if op >= OP_FPU_FIRST && op <= OP_FPU_LAST {
		return fmt.Sprintf("fpu%d", op-OP_FPU_FIRST)
	}
	return fmt.Sprintf("op_0x%02x", uint8(op))
}

// Format is the instruction argument shape.
//
//go:generate go tool stringer -linecomment -type=Format
type Format int

const (
	FORMAT_R = Format(0) // R
	FORMAT_I = Format(1) // I
	FORMAT_J = Format(2) // J
)

// ArgKind is the kind of an instruction operand.
//
//go:generate go tool stringer -linecomment -type=ArgKind
type ArgKind int

const (
	ARG_NONE     = ArgKind(0) // none
	ARG_REGISTER = ArgKind(1) // register
	ARG_IMM      = ArgKind(2) // immediate
	ARG_LABEL    = ArgKind(3) // label
	ARG_VARIABLE = ArgKind(4) // variable
)

// Field is the instruction record field an operand is written to.
//
//go:generate go tool stringer -linecomment -type=Field
type Field int

const (
	FIELD_RD  = Field(0) // rd
	FIELD_RS1 = Field(1) // rs1
	FIELD_RS2 = Field(2) // rs2
	FIELD_IMM = Field(3) // imm
)

// Instr is a decoded instruction record, one per text slot.
type Instr struct {
	Opcode Opcode
	Rd     uint8
	Rs1    uint8
	Rs2    uint8
	Imm    int32 // Sign extended immediate, address, or slot offset.
}

// Set writes value into field of the record.
func (in *Instr) Set(field Field, value int32) {
	switch field {
	case FIELD_RD:
		in.Rd = uint8(value)
	case FIELD_RS1:
		in.Rs1 = uint8(value)
	case FIELD_RS2:
		in.Rs2 = uint8(value)
	case FIELD_IMM:
		in.Imm = value
	}
}

// Get reads field from the record.
func (in Instr) Get(field Field) (value int32) {
	switch field {
	case FIELD_RD:
		value = int32(in.Rd)
	case FIELD_RS1:
		value = int32(in.Rs1)
	case FIELD_RS2:
		value = int32(in.Rs2)
	case FIELD_IMM:
		value = in.Imm
	}
	return
}

// String returns the assembly language representation of the instruction.
func (in Instr) String() string {
	def, ok := Definition(in.Opcode)
	if !ok {
		return fmt.Sprintf("%v rd:%d rs1:%d rs2:%d imm:%d", in.Opcode, in.Rd, in.Rs1, in.Rs2, in.Imm)
	}

	return def.Disassemble(in)
}
