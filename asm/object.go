package asm

import (
	"iter"
	"maps"
	"slices"

	"github.com/ezrec/talos/cpu"
	"github.com/ezrec/talos/internal"
)

// Section is an object file address space.
//
//go:generate go tool stringer -linecomment -type=Section
type Section int

const (
	SECTION_TEXT   = Section(0) // .text
	SECTION_DATA   = Section(1) // .data
	SECTION_RODATA = Section(2) // .rodata
	SECTION_BSS    = Section(3) // .bss
	SECTION_NONE   = Section(4) // none
)

// sectionMap maps section directives to sections.
var sectionMap = map[string]Section{
	".text":   SECTION_TEXT,
	".data":   SECTION_DATA,
	".rodata": SECTION_RODATA,
	".bss":    SECTION_BSS,
}

// Binding is the linkage of a symbol. Local symbols are private to the
// object file, globals are exported to the linker, and externs are imported
// from another object file.
//
//go:generate go tool stringer -linecomment -type=Binding
type Binding int

const (
	BINDING_LOCAL  = Binding(0) // local
	BINDING_GLOBAL = Binding(1) // global
	BINDING_EXTERN = Binding(2) // extern
)

// Symbol is a named location in an object file.
type Symbol struct {
	Name      string
	Section   Section
	Offset    uint32 // Section relative; slots for .text, bytes otherwise.
	Binding   Binding
	Defined   bool // Set once a label or variable defines the symbol.
	LineIndex int  // Source line of the definition or declaration.
}

// RelocKind is the patch applied to a relocation site.
//
// RELOC_PC_REL_24 writes the signed slot offset from the next instruction,
// RELOC_ABS_32 the absolute memory address.
//
//go:generate go tool stringer -linecomment -type=RelocKind
type RelocKind int

const (
	RELOC_PC_REL_24 = RelocKind(0) // PC_REL_24
	RELOC_ABS_32    = RelocKind(1) // ABS_32
)

// Relocation is a pending patch of an instruction immediate.
type Relocation struct {
	Section   Section // Always SECTION_TEXT.
	Offset    uint32  // Slot index of the instruction to patch.
	Kind      RelocKind
	Symbol    string
	LineIndex int
}

// ObjectFile is the relocatable output of assembling one source unit.
type ObjectFile struct {
	Text    []cpu.Instr
	Lines   []int // Source line index of each text slot.
	Data    []byte
	Rodata  []byte
	BssSize uint32

	Symbols     map[string]Symbol
	Variables   map[string]Variable
	Relocations []Relocation

	Entry          string // Entry symbol name, if declared.
	EntryLineIndex int
}

func newObjectFile() *ObjectFile {
	return &ObjectFile{
		Symbols:   map[string]Symbol{},
		Variables: map[string]Variable{},
	}
}

// SectionSize returns the current size of a section,
// in slots for .text and bytes otherwise.
func (obj *ObjectFile) SectionSize(sect Section) uint32 {
	switch sect {
	case SECTION_TEXT:
		return uint32(len(obj.Text))
	case SECTION_DATA:
		return uint32(len(obj.Data))
	case SECTION_RODATA:
		return uint32(len(obj.Rodata))
	case SECTION_BSS:
		return obj.BssSize
	}
	return 0
}

// SymbolNames iterates over the symbol names in sorted order.
func (obj *ObjectFile) SymbolNames() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(obj.Symbols)))
}

// Globals iterates over the defined global symbols, sorted by name.
func (obj *ObjectFile) Globals() iter.Seq2[string, Symbol] {
	return func(yield func(string, Symbol) bool) {
		for name, sym := range internal.IterSorted(obj.Symbols) {
			if sym.Binding != BINDING_GLOBAL || !sym.Defined {
				continue
			}
			if !yield(name, sym) {
				return
			}
		}
	}
}

// Externs iterates over the extern symbol names, sorted.
func (obj *ObjectFile) Externs() iter.Seq[string] {
	return func(yield func(string) bool) {
		for name := range obj.SymbolNames() {
			if obj.Symbols[name].Binding != BINDING_EXTERN {
				continue
			}
			if !yield(name) {
				return
			}
		}
	}
}
