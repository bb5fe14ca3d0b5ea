package cpu

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog(t *testing.T) {
	assert := assert.New(t)

	mnemonics := slices.Collect(Mnemonics())
	assert.Equal(len(catalogList), len(mnemonics))
	assert.True(slices.IsSorted(mnemonics))

	for _, mnemonic := range mnemonics {
		def, ok := Lookup(mnemonic)
		assert.True(ok, mnemonic)
		assert.Equal(mnemonic, def.Mnemonic)
		assert.False(def.Opcode >= OP_FPU_FIRST && def.Opcode <= OP_FPU_LAST, mnemonic)

		other, ok := Definition(def.Opcode)
		assert.True(ok, mnemonic)
		assert.Equal(def, other, mnemonic)
		assert.Equal(mnemonic, def.Opcode.String())

		fields := map[Field]bool{}
		for _, arg := range def.Args {
			assert.False(fields[arg.Field], "%v: %v reused", mnemonic, arg.Field)
			fields[arg.Field] = true
		}
	}

	def, ok := Lookup("ADDI")
	assert.True(ok)
	assert.Equal(OP_ADDI, def.Opcode)
	assert.Equal(FORMAT_I, def.Format)

	_, ok = Lookup("fadd")
	assert.False(ok)
	assert.False(IsMnemonic("rmax"))
	assert.True(IsMnemonic("Halt"))

	_, ok = Definition(OP_FPU_FIRST)
	assert.False(ok)
	assert.Equal("fpu0", OP_FPU_FIRST.String())
	assert.Equal("op_0xff", Opcode(0xff).String())
}

func TestCatalogImmutable(t *testing.T) {
	assert := assert.New(t)

	def, _ := Lookup("add")
	def.Args[0].Kind = ARG_IMM
	def.Mnemonic = "sub"

	def, _ = Lookup("add")
	assert.Equal(ARG_REGISTER, def.Args[0].Kind)
	assert.Equal("add", def.Mnemonic)
}

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		instr    Instr
		expected string
	}){
		{Instr{Opcode: OP_ADD, Rd: 1, Rs1: 2, Rs2: 3}, "add eax ebx ecx"},
		{Instr{Opcode: OP_ADDI, Rd: 3, Rs1: 3, Imm: -1}, "addi ecx ecx -1"},
		{Instr{Opcode: OP_CMPU, Rs1: 3, Rs2: 1}, "cmpu ecx eax"},
		{Instr{Opcode: OP_MOVI, Rd: 13, Imm: 0x100}, "movi sp 256"},
		{Instr{Opcode: OP_LDW_ABS, Rd: 1, Imm: 0x10}, "ldw eax 0x10"},
		{Instr{Opcode: OP_JL, Imm: -3}, "jl -3"},
		{Instr{Opcode: OP_CALL, Imm: 2}, "call +2"},
		{Instr{Opcode: OP_POP, Rd: 14}, "pop bp"},
		{Instr{Opcode: OP_PUSH, Rs1: 15}, "push r15"},
		{Instr{Opcode: OP_HALT}, "halt"},
		{Instr{Opcode: 0x29, Rd: 1}, "fpu0 rd:1 rs1:0 rs2:0 imm:0"},
	}

	for _, entry := range table {
		assert.Equal(entry.expected, entry.instr.String())
	}
}

func TestInstrField(t *testing.T) {
	assert := assert.New(t)

	var in Instr
	in.Set(FIELD_RD, 1)
	in.Set(FIELD_RS1, 2)
	in.Set(FIELD_RS2, 3)
	in.Set(FIELD_IMM, -40)

	assert.Equal(Instr{Rd: 1, Rs1: 2, Rs2: 3, Imm: -40}, in)
	assert.Equal(int32(1), in.Get(FIELD_RD))
	assert.Equal(int32(2), in.Get(FIELD_RS1))
	assert.Equal(int32(3), in.Get(FIELD_RS2))
	assert.Equal(int32(-40), in.Get(FIELD_IMM))
}

func TestSignExtend24(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(int32(-1), SignExtend24(0xffffff))
	assert.Equal(int32(OFFSET_MAX), SignExtend24(0x7fffff))
	assert.Equal(int32(OFFSET_MIN), SignExtend24(0x800000))
	assert.Equal(int32(5), SignExtend24(0xff000005))

	assert.True(OffsetFits(OFFSET_MIN))
	assert.True(OffsetFits(OFFSET_MAX))
	assert.False(OffsetFits(OFFSET_MAX + 1))
	assert.False(OffsetFits(OFFSET_MIN - 1))
}
