package link

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/talos/asm"
	"github.com/ezrec/talos/cpu"
)

func assemble(t *testing.T, lines ...string) *asm.ObjectFile {
	assembler := &asm.Assembler{}
	obj, err := assembler.Parse(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	return obj
}

func run(t *testing.T, bin *Binary) *cpu.Cpu {
	core := cpu.NewCpu(cpu.MEMORY_SIZE)
	require.NoError(t, core.Load(bin.Text, bin.Image()))
	core.Pc = bin.EntryPc
	for range 1000 {
		if core.Halted {
			return core
		}
		require.NoError(t, core.Tick())
	}
	t.Fatal("did not halt")
	return nil
}

var libAddTwo = []string{
	".global add_two",
	"add_two:",
	"  addi eax eax 2",
	"  ret",
}

var mainAddTwo = []string{
	".extern add_two",
	".global main",
	".entry main",
	"main:",
	"  movi eax 40",
	"  call add_two",
	"  halt",
}

func TestLinkAddTwo(t *testing.T) {
	assert := assert.New(t)

	linker := &Linker{}

	bin, err := linker.Link(assemble(t, mainAddTwo...), assemble(t, libAddTwo...))
	require.NoError(t, err)

	assert.Equal(5, len(bin.Text))
	assert.Equal(uint32(0), bin.EntryPc)
	assert.Equal(int32(1), bin.Text[1].Imm) // call add_two, from slot 1 to slot 3
	assert.Equal(Symbol{Name: "add_two", Object: 1, Section: asm.SECTION_TEXT, Address: 3}, bin.Globals["add_two"])
	assert.Equal([]LineRef{{0, 4}, {0, 5}, {0, 6}, {1, 2}, {1, 3}}, bin.Lines)

	core := run(t, bin)
	assert.Equal(uint32(42), core.Register[cpu.REG_EAX])
	assert.Equal(uint32(cpu.MEMORY_SIZE), core.Sp())

	// Library first: the entry follows main into the binary.
	bin, err = linker.Link(assemble(t, libAddTwo...), assemble(t, mainAddTwo...))
	require.NoError(t, err)
	assert.Equal(uint32(2), bin.EntryPc)
	assert.Equal(int32(-4), bin.Text[3].Imm)

	core = run(t, bin)
	assert.Equal(uint32(42), core.Register[cpu.REG_EAX])
}

func TestLinkRebase(t *testing.T) {
	assert := assert.New(t)

	unit := []string{
		".data",
		"a dd 1",
		".rodata",
		"ra dd 2",
		".bss",
		"ba resd 1",
		".text",
		"  ldw eax a",
		"  ldw ebx ra",
		"  ldw ecx ba",
		"  halt",
	}

	linker := &Linker{AllowNoEntry: true}

	bin, err := linker.Link(assemble(t, unit...), assemble(t, unit...))
	require.NoError(t, err)

	assert.Equal([]byte{1, 0, 0, 0, 1, 0, 0, 0}, bin.Data)
	assert.Equal([]byte{2, 0, 0, 0, 2, 0, 0, 0}, bin.Rodata)
	assert.Equal(uint32(8), bin.BssSize)
	assert.Equal(uint32(8), bin.RodataBase())
	assert.Equal(uint32(16), bin.BssBase())
	assert.Equal(uint64(24), bin.MemoryUsed())
	assert.Equal(16, len(bin.Image()))

	addrs := []int32{0, 8, 16, 0, 4, 12, 20, 0}
	for n, addr := range addrs {
		assert.Equal(addr, bin.Text[n].Imm, n)
	}

	ref, ok := bin.Debug(5)
	assert.True(ok)
	assert.Equal(LineRef{Source: 1, LineIndex: 8}, ref)
	assert.Equal("1:9", ref.String())
	_, ok = bin.Debug(8)
	assert.False(ok)

	core := run(t, bin)
	assert.Equal(uint32(1), core.Register[cpu.REG_EAX])
	assert.Equal(uint32(2), core.Register[cpu.REG_EBX])
	assert.Equal(uint32(0), core.Register[cpu.REG_ECX])
}

func TestLinkExternData(t *testing.T) {
	assert := assert.New(t)

	linker := &Linker{AllowNoEntry: true}

	main := assemble(t,
		".extern table",
		".data",
		"pad dd 0",
		".text",
		"  ldw eax table",
		"  halt",
	)
	lib := assemble(t,
		".global table",
		".data",
		"table dd 7",
	)

	bin, err := linker.Link(main, lib)
	require.NoError(t, err)
	assert.Equal(int32(4), bin.Text[0].Imm)

	var names []string
	for name, sym := range bin.Symbols() {
		names = append(names, name)
		assert.Equal(asm.SECTION_DATA, sym.Section)
	}
	assert.Equal([]string{"table"}, names)

	core := run(t, bin)
	assert.Equal(uint32(7), core.Register[cpu.REG_EAX])
}

func TestLinkEntry(t *testing.T) {
	assert := assert.New(t)

	linker := &Linker{}

	bin, err := linker.Link(assemble(t, ".entry start", "halt", "start: halt"))
	require.NoError(t, err)
	assert.Equal(uint32(1), bin.EntryPc)

	linker.AllowNoEntry = true
	bin, err = linker.Link(assemble(t, "halt"))
	require.NoError(t, err)
	assert.Equal(uint32(0), bin.EntryPc)
}

// farJump is an object file jumping from slot 0 to a text symbol offset slots away.
func farJump(offset uint32) *asm.ObjectFile {
	return &asm.ObjectFile{
		Text:  []cpu.Instr{{Opcode: cpu.OP_JMP}},
		Lines: []int{0},
		Symbols: map[string]asm.Symbol{
			"far": {Name: "far", Section: asm.SECTION_TEXT, Offset: offset, Defined: true},
		},
		Relocations: []asm.Relocation{
			{Section: asm.SECTION_TEXT, Offset: 0, Kind: asm.RELOC_PC_REL_24, Symbol: "far"},
		},
	}
}

func TestLinkRelocationRange(t *testing.T) {
	assert := assert.New(t)

	linker := &Linker{AllowNoEntry: true}

	bin, err := linker.Link(farJump(cpu.OFFSET_MAX + 1))
	require.NoError(t, err)
	assert.Equal(int32(cpu.OFFSET_MAX), bin.Text[0].Imm)

	bin, err = linker.Link(farJump(cpu.OFFSET_MAX + 2))
	assert.ErrorIs(err, ErrRelocationRange)
	assert.Nil(bin)

	var es *ErrSymbol
	if assert.True(errors.As(err, &es)) {
		assert.Equal(0, es.Object)
		assert.Equal("far", es.Symbol)
	}
}

func TestLinkErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		objs   [][]string
		object int
		symbol string
		err    error
	}){
		{[][]string{{".global f", "f: ret"}, {".global f", "f: ret"}}, 1, "f", ErrDuplicateGlobal},
		{[][]string{{".extern nothing", "call nothing"}}, 0, "nothing", ErrUnresolvedExtern},
		{[][]string{{"halt"}, {".extern f", "call f"}, {"f: ret"}}, 1, "f", ErrUnresolvedExtern},
		{[][]string{{".entry x", "x: halt"}, {".entry y", "y: halt"}}, 1, "y", ErrUnknownEntry},
		{[][]string{{".entry nowhere", "halt"}}, 0, "nowhere", ErrUnknownEntry},
		{[][]string{{".entry v", "v dd 1", "halt"}}, 0, "v", ErrUnknownEntry},
		{[][]string{{".extern tbl", "call tbl"}, {".global tbl", "tbl dd 1"}}, 0, "tbl", ErrRelocationInvalid},
		{[][]string{{".extern f", "ldw eax f"}, {".global f", "f: ret"}}, 0, "f", ErrRelocationInvalid},
	}

	for n, entry := range table {
		var objs []*asm.ObjectFile
		for _, lines := range entry.objs {
			objs = append(objs, assemble(t, lines...))
		}

		linker := &Linker{AllowNoEntry: true}
		bin, err := linker.Link(objs...)
		assert.Nil(bin, n)
		assert.ErrorIs(err, entry.err, n)

		var es *ErrSymbol
		if assert.True(errors.As(err, &es), n) {
			assert.Equal(entry.object, es.Object, n)
			assert.Equal(entry.symbol, es.Symbol, n)
		}
	}

	linker := &Linker{}
	_, err := linker.Link(assemble(t, "halt"))
	assert.ErrorIs(err, ErrNoEntryDefined)

	_, err = linker.Link()
	assert.ErrorIs(err, ErrNoObjects)

	err = &ErrSymbol{Object: 2, Symbol: "f", Err: ErrDuplicateGlobal}
	assert.Equal("object 2: f: duplicate global symbol", err.Error())
}
