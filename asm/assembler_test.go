package asm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/talos/cpu"
)

func parse(asm *Assembler, lines ...string) (*ObjectFile, error) {
	return asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	obj, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(obj.Text))
	assert.Equal(0, len(obj.Data))

	assert.Equal("0x10000", asm.Equate["MEMORY_SIZE"])
	assert.Equal("0x10000", asm.Equate["STACK_TOP"])
	assert.Equal("16", asm.Equate["REGISTER_COUNT"])
}

func TestAssemblerSample(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	obj, err := parse(asm,
		"rmax dd 5",
		"ldw eax rmax",
		"loop:",
		" addi ecx ecx 1",
		" cmpu ecx eax",
		" jl loop",
		"halt",
	)
	require.NoError(t, err)

	expected := []cpu.Instr{
		{Opcode: cpu.OP_LDW_ABS, Rd: cpu.REG_EAX},
		{Opcode: cpu.OP_ADDI, Rd: cpu.REG_ECX, Rs1: cpu.REG_ECX, Imm: 1},
		{Opcode: cpu.OP_CMPU, Rs1: cpu.REG_ECX, Rs2: cpu.REG_EAX},
		{Opcode: cpu.OP_JL, Imm: -3},
		{Opcode: cpu.OP_HALT},
	}
	assert.Equal(expected, obj.Text)
	assert.Equal([]int{1, 3, 4, 5, 6}, obj.Lines)
	assert.Equal([]byte{5, 0, 0, 0}, obj.Data)

	assert.Equal(Symbol{Name: "rmax", Section: SECTION_DATA, Defined: true}, obj.Symbols["rmax"])
	assert.Equal(Symbol{Name: "loop", Section: SECTION_TEXT, Offset: 1, Defined: true, LineIndex: 2}, obj.Symbols["loop"])
	assert.Equal(Variable{Name: "rmax", Section: SECTION_DATA, Size: 4, Count: 1}, obj.Variables["rmax"])

	assert.Equal([]Relocation{
		{Section: SECTION_TEXT, Offset: 0, Kind: RELOC_ABS_32, Symbol: "rmax", LineIndex: 1},
	}, obj.Relocations)
}

func TestAssemblerIdempotent(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".equ LIMIT 10",
		".global main",
		".extern helper",
		".entry main",
		".data",
		"count dd LIMIT",
		".rodata",
		"msg times 2 dw 0x4142",
		".bss",
		"buf resb 16",
		".text",
		"main:",
		"  ldw eax count",
		"  call helper",
		"  stw eax buf",
		"  halt",
	}

	asm := &Assembler{}

	first, err := parse(asm, program...)
	require.NoError(t, err)

	second, err := parse(asm, program...)
	require.NoError(t, err)

	assert.Equal(first, second)
	assert.Equal("main", first.Entry)
	assert.Equal(3, first.EntryLineIndex)
	assert.Equal([]byte{10, 0, 0, 0}, first.Data)
	assert.Equal([]byte{0x41, 0x42, 0x41, 0x42}, first.Rodata)
	assert.Equal(uint32(16), first.BssSize)
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "0x20")
	asm.Predefine("BASE", "0x40")

	obj, err := parse(asm,
		".equ COUNT 3",
		"movi ecx COUNT",
		"movi edx BASE",
		"movi esi REGISTER_COUNT",
		"movi edi COUNTER", // whole words only
	)
	assert.Error(err)
	assert.Nil(obj)

	obj, err = parse(asm,
		".equ COUNT 3",
		"movi ecx COUNT",
		"movi edx BASE",
		"movi esi REGISTER_COUNT",
	)
	require.NoError(t, err)
	assert.Equal(int32(3), obj.Text[0].Imm)
	assert.Equal(int32(0x40), obj.Text[1].Imm)
	assert.Equal(int32(16), obj.Text[2].Imm)
	assert.Equal("3", asm.Equate["COUNT"])
}

func TestAssemblerVariables(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	obj, err := parse(asm,
		"a db 0xff",
		"b dw -2",
		"c dd 258",
		"d dq 0x0102030405060708",
		"e times 3 dw 0x0102",
		"f DB 'A'",
		`g dd "a;bc" ; comment`,
		"h db 0b10000001",
		"z times 2 resd",
		"y times 4 resb",
	)
	require.NoError(t, err)

	expected := []byte{
		0xff,
		0xfe, 0xff,
		0x02, 0x01, 0x00, 0x00,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x01, 0x02, 0x01, 0x02, 0x01, 0x02,
		'A',
		'a', ';', 'b', 'c',
		0x81,
	}
	assert.Equal(expected, obj.Data)
	assert.Equal(uint32(12), obj.BssSize)

	assert.Equal(Variable{Name: "e", Section: SECTION_DATA, Address: 15, Size: 2, Count: 3}, obj.Variables["e"])
	assert.Equal(uint32(6), obj.Variables["e"].Bytes())
	assert.Equal(Variable{Name: "y", Section: SECTION_BSS, Address: 8, Size: 1, Count: 4}, obj.Variables["y"])
	assert.Equal(SECTION_BSS, obj.Symbols["z"].Section)
}

func TestAssemblerLinkage(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	obj, err := parse(asm,
		".extern helper",
		".extern table",
		".extern helper",
		"start:",
		"  call helper",
		"  ldw eax table",
		"  jmp start",
		".global start",
	)
	require.NoError(t, err)

	assert.Equal([]Relocation{
		{Section: SECTION_TEXT, Offset: 0, Kind: RELOC_PC_REL_24, Symbol: "helper", LineIndex: 4},
		{Section: SECTION_TEXT, Offset: 1, Kind: RELOC_ABS_32, Symbol: "table", LineIndex: 5},
	}, obj.Relocations)
	assert.Equal(int32(0), obj.Text[0].Imm)
	assert.Equal(int32(-3), obj.Text[2].Imm)

	var globals []string
	for name, sym := range obj.Globals() {
		globals = append(globals, name)
		assert.Equal(SECTION_TEXT, sym.Section)
	}
	assert.Equal([]string{"start"}, globals)

	var externs []string
	for name := range obj.Externs() {
		externs = append(externs, name)
	}
	assert.Equal([]string{"helper", "table"}, externs)
}

func TestAssemblerImplicitSection(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	obj, err := parse(asm,
		"x dd 1",
		"buf resb 8",
		"y: dd 2", // declarations need a name
	)
	assert.Error(err)
	assert.Nil(obj)

	obj, err = parse(asm,
		"x dd 1",
		"buf resb 8",
		"first: second: halt",
	)
	require.NoError(t, err)
	assert.Equal(SECTION_DATA, obj.Symbols["x"].Section)
	assert.Equal(SECTION_BSS, obj.Symbols["buf"].Section)
	assert.Equal(SECTION_TEXT, obj.Symbols["first"].Section)
	assert.Equal(uint32(0), obj.Symbols["second"].Offset)
	assert.Equal(1, len(obj.Text))
}

func TestAssemblerEncodeDecode(t *testing.T) {
	assert := assert.New(t)

	registers := []string{"eax", "ebx", "ecx"}

	for mnemonic := range cpu.Mnemonics() {
		def, ok := cpu.Lookup(mnemonic)
		require.True(t, ok)

		var words, expected []string
		regs := 0
		for _, arg := range def.Args {
			switch arg.Kind {
			case cpu.ARG_REGISTER:
				words = append(words, registers[regs])
				expected = append(expected, registers[regs])
				regs++
			case cpu.ARG_IMM:
				words = append(words, "-7")
				expected = append(expected, "-7")
			case cpu.ARG_LABEL:
				words = append(words, "here")
				expected = append(expected, "-1")
			case cpu.ARG_VARIABLE:
				words = append(words, "v")
				expected = append(expected, "0x4")
			}
		}

		asm := &Assembler{}
		obj, err := parse(asm,
			"pad dd 0",
			"v dd 0",
			"here:",
			strings.Join(append([]string{strings.ToUpper(mnemonic)}, words...), " "),
		)
		if !assert.NoError(err, mnemonic) {
			continue
		}

		in := obj.Text[0]
		assert.Equal(def.Opcode, in.Opcode, mnemonic)
		assert.Equal(expected, def.Operands(in), mnemonic)
		assert.Equal(strings.Join(append([]string{mnemonic}, expected...), " "), in.String(), mnemonic)
	}
}

func TestAssemblerLimits(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{MaxLines: 2}
	_, err := parse(asm, "halt", "halt", "halt")
	var se *ErrSyntax
	require.True(t, errors.As(err, &se))
	assert.Equal(2, se.LineIndex)
	assert.ErrorIs(err, ErrLineOverflow)

	asm = &Assembler{MemorySize: 4}
	_, err = parse(asm, "halt", "a dd 1", ".rodata", "b dd 2")
	require.True(t, errors.As(err, &se))
	assert.Equal(0, se.LineIndex)
	assert.Equal(ErrMemoryOverflow, se.Kind())

	asm = &Assembler{}
	_, err = parse(asm, "big times 70000 db 0")
	assert.ErrorIs(err, ErrMemoryOverflow)
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
		kind error
	}){
		{"DUP:\nDUP:\n", 1, ErrDuplicateLabel},
		{"loop:\n.data\nx db 1\n.text\nloop:", 4, ErrDuplicateLabel},
		{"x db 1\nx db 2", 1, ErrDuplicateLabel},
		{".extern e\ne:", 1, ErrDuplicateLabel},
		{"e:\n.extern e", 1, ErrDuplicateLabel},
		{".extern e\n.global e", 1, ErrDuplicateLabel},
		{"bogus", 0, ErrUnknownInstruction},
		{"halt\nx foo 1", 1, ErrUnknownInstruction},
		{".bogus", 0, ErrUnknownInstruction},
		{"fadd eax ebx ecx", 0, ErrUnknownInstruction},
		{"add eax ebx", 0, ErrInvalidArgument},
		{"add eax ebx qq", 0, ErrInvalidArgument},
		{"add eax ebx ecx edx", 0, ErrInvalidArgument},
		{"halt now", 0, ErrInvalidArgument},
		{"push r16", 0, ErrInvalidArgument},
		{".text extra", 0, ErrInvalidArgument},
		{".global", 0, ErrInvalidArgument},
		{".entry a\n.entry b", 1, ErrInvalidArgument},
		{"here:\nldw eax here", 1, ErrInvalidArgument},
		{":", 0, ErrInvalidArgument},
		{"movi eax 0x1g", 0, ErrInvalidCharacter},
		{"movi eax 12a", 0, ErrInvalidCharacter},
		{"movi eax -", 0, ErrInvalidCharacter},
		{"movi eax 0x100000000", 0, ErrNumericOverflow},
		{"movi eax 2147483648", 0, ErrNumericOverflow},
		{"jmp nowhere", 0, ErrUnknownLabel},
		{"ldw eax nothing", 0, ErrUnknownSymbol},
		{".global g", 0, ErrUnknownSymbol},
		{"halt\n.global g\nhalt", 1, ErrUnknownSymbol},
		{".data\nv dd 1\n.text\njmp v", 3, ErrInvalidLabelSection},
		{".data\nadd eax eax eax", 1, ErrInstructionOutsideText},
		{".bss\nhalt", 1, ErrInstructionOutsideText},
		{".text\nv dd 1", 1, ErrVarOutsideDataOrRodata},
		{".bss\nv db 1", 1, ErrVarOutsideDataOrRodata},
		{".data\nv resb 4", 1, ErrVarOutsideBss},
		{".rodata\nv resd 1", 1, ErrVarOutsideBss},
		{".equ", 0, ErrEquateSyntax},
		{".equ A", 0, ErrEquateSyntax},
		{".equ A 1 2", 0, ErrEquateSyntax},
		{".equ A 1\n.equ A 2", 1, ErrEquateDuplicate},
		{".equ MEMORY_SIZE 3", 0, ErrEquateDuplicate},
		{"v dw 0x123456", 0, ErrInvalidArgument},
		{"v db 256", 0, ErrNumericOverflow},
		{"v db -129", 0, ErrNumericOverflow},
		{"v db 'ab'", 0, ErrInvalidArgument},
		{"v db '\\q'", 0, ErrInvalidCharacter},
		{"v db", 0, ErrInvalidArgument},
		{"v resb", -1, nil},
		{"v resb 4", -1, nil},
		{"v resb 0", 0, ErrInvalidArgument},
		{"v times 2 resw 3", -1, nil},
		{"v resb 1 2", 0, ErrInvalidArgument},
		{"v times 0 db 1", 0, ErrInvalidArgument},
		{"v times x db 1", 0, ErrInvalidCharacter},
		{"v times 2 dx 1", 0, ErrInvalidArgument},
		{"v times 2", 0, ErrInvalidArgument},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		if entry.kind == nil {
			assert.NoError(err, entry.prog)
			continue
		}
		var se *ErrSyntax
		assert.NotNil(err, entry.prog)
		if err != nil {
			assert.True(errors.As(err, &se), entry.prog)
			assert.Equal(entry.line, se.LineIndex, entry.prog)
			assert.Equal(entry.kind, se.Kind(), entry.prog)
			assert.ErrorIs(err, entry.kind, entry.prog)
		}
	}
}

func TestErrSyntax(t *testing.T) {
	assert := assert.New(t)

	err := &ErrSyntax{LineIndex: 2, Line: "jmp nowhere", Err: ErrUnknownLabel}
	assert.Equal("line 3 'jmp nowhere' unknown label", err.Error())
	assert.Equal(ErrUnknownLabel, err.Unwrap())

	err = &ErrSyntax{Err: errors.New("other")}
	assert.Nil(err.Kind())
}
