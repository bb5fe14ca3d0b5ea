package link

import (
	"fmt"
	"iter"
	"slices"

	"github.com/ezrec/talos/asm"
	"github.com/ezrec/talos/cpu"
	"github.com/ezrec/talos/internal"
)

// LineRef locates the source of a text slot.
type LineRef struct {
	Source    int // Index of the source in the link order.
	LineIndex int // 0-based line index within the source.
}

func (ref LineRef) String() string {
	return fmt.Sprintf("%d:%d", ref.Source, ref.LineIndex+1)
}

// Symbol is a resolved global symbol.
type Symbol struct {
	Name    string
	Object  int // Defining object index.
	Section asm.Section
	Address uint32 // Text slot for .text, memory address otherwise.
}

// Binary is a linked, loadable program.
//
// Memory layout: .data at address 0, .rodata after .data, .bss after .rodata.
// The stack descends from the top of memory.
type Binary struct {
	Text    []cpu.Instr
	Lines   []LineRef // Source of each text slot.
	Data    []byte
	Rodata  []byte
	BssSize uint32
	EntryPc uint32

	Globals map[string]Symbol
}

// RodataBase is the memory address of the first .rodata byte.
func (bin *Binary) RodataBase() uint32 {
	return uint32(len(bin.Data))
}

// BssBase is the memory address of the first .bss byte.
func (bin *Binary) BssBase() uint32 {
	return uint32(len(bin.Data) + len(bin.Rodata))
}

// MemoryUsed returns the memory occupied by the .data, .rodata and .bss sections.
func (bin *Binary) MemoryUsed() uint64 {
	return uint64(bin.BssBase()) + uint64(bin.BssSize)
}

// Image returns the initialized memory image.
func (bin *Binary) Image() []byte {
	return slices.Concat(bin.Data, bin.Rodata)
}

// Debug returns the source of the instruction at pc.
func (bin *Binary) Debug(pc uint32) (ref LineRef, ok bool) {
	if int64(pc) >= int64(len(bin.Lines)) {
		return
	}
	return bin.Lines[pc], true
}

// Symbols iterates over the global symbols, sorted by name.
func (bin *Binary) Symbols() iter.Seq2[string, Symbol] {
	return internal.IterSorted(bin.Globals)
}
