// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package link combines assembled object files into a loadable binary.
package link

import (
	"log"

	"github.com/ezrec/talos/asm"
	"github.com/ezrec/talos/cpu"
)

// sectionBases are the section base offsets of one object file in the binary.
type sectionBases struct {
	text   uint32
	data   uint32
	rodata uint32
	bss    uint32
}

// Linker links object files in order.
type Linker struct {
	Verbose      bool // If set, verbosely logs the linker actions.
	AllowNoEntry bool // If set, a missing .entry starts execution at slot 0.

	objs    []*asm.ObjectFile
	bases   []sectionBases
	sizes   sectionBases // Total section sizes.
	globals map[string]Symbol
}

// address returns the binary location of a symbol defined by object index.
func (ln *Linker) address(index int, sym asm.Symbol) (addr uint32) {
	base := ln.bases[index]
	switch sym.Section {
	case asm.SECTION_TEXT:
		addr = base.text + sym.Offset
	case asm.SECTION_DATA:
		addr = base.data + sym.Offset
	case asm.SECTION_RODATA:
		addr = ln.sizes.data + base.rodata + sym.Offset
	case asm.SECTION_BSS:
		addr = ln.sizes.data + ln.sizes.rodata + base.bss + sym.Offset
	}
	return
}

// layout assigns the running section bases, in file order.
func (ln *Linker) layout() {
	ln.bases = make([]sectionBases, len(ln.objs))
	ln.sizes = sectionBases{}
	for n, obj := range ln.objs {
		ln.bases[n] = ln.sizes
		ln.sizes.text += obj.SectionSize(asm.SECTION_TEXT)
		ln.sizes.data += obj.SectionSize(asm.SECTION_DATA)
		ln.sizes.rodata += obj.SectionSize(asm.SECTION_RODATA)
		ln.sizes.bss += obj.SectionSize(asm.SECTION_BSS)
	}
}

// collect builds the cross-file global table and checks the externs.
func (ln *Linker) collect() (err error) {
	ln.globals = map[string]Symbol{}
	for n, obj := range ln.objs {
		for name, sym := range obj.Globals() {
			_, exists := ln.globals[name]
			if exists {
				err = &ErrSymbol{Object: n, Symbol: name, Err: ErrDuplicateGlobal}
				return
			}
			ln.globals[name] = Symbol{
				Name:    name,
				Object:  n,
				Section: sym.Section,
				Address: ln.address(n, sym),
			}
			if ln.Verbose {
				log.Printf("link: global %v = %v+%d", name, sym.Section, ln.globals[name].Address)
			}
		}
	}

	for n, obj := range ln.objs {
		for name := range obj.Externs() {
			_, ok := ln.globals[name]
			if !ok {
				err = &ErrSymbol{Object: n, Symbol: name, Err: ErrUnresolvedExtern}
				return
			}
		}
	}

	return
}

// resolve finds the symbol referenced from object index. The object's
// own symbols take precedence over the global table.
func (ln *Linker) resolve(index int, name string) (sym Symbol, ok bool) {
	local, ok := ln.objs[index].Symbols[name]
	if ok && local.Defined && local.Binding != asm.BINDING_EXTERN {
		sym = Symbol{
			Name:    name,
			Object:  index,
			Section: local.Section,
			Address: ln.address(index, local),
		}
		return
	}

	sym, ok = ln.globals[name]
	return
}

// relocate patches the relocation sites of object index in bin.
func (ln *Linker) relocate(bin *Binary, index int) (err error) {
	obj := ln.objs[index]
	base := ln.bases[index]

	for _, reloc := range obj.Relocations {
		sym, ok := ln.resolve(index, reloc.Symbol)
		if !ok {
			err = &ErrSymbol{Object: index, Symbol: reloc.Symbol, Err: ErrUnknownSymbol}
			return
		}

		site := base.text + reloc.Offset
		if reloc.Section != asm.SECTION_TEXT || site >= uint32(len(bin.Text)) {
			err = &ErrSymbol{Object: index, Symbol: reloc.Symbol, Err: ErrRelocationInvalid}
			return
		}

		in := &bin.Text[site]
		switch reloc.Kind {
		case asm.RELOC_PC_REL_24:
			if sym.Section != asm.SECTION_TEXT {
				err = &ErrSymbol{Object: index, Symbol: reloc.Symbol, Err: ErrRelocationInvalid}
				return
			}
			offset := int64(sym.Address) - int64(site+1)
			if !cpu.OffsetFits(offset) {
				err = &ErrSymbol{Object: index, Symbol: reloc.Symbol, Err: ErrRelocationRange}
				return
			}
			in.Imm = int32(offset)
		case asm.RELOC_ABS_32:
			if sym.Section == asm.SECTION_TEXT {
				err = &ErrSymbol{Object: index, Symbol: reloc.Symbol, Err: ErrRelocationInvalid}
				return
			}
			in.Imm = int32(sym.Address)
		default:
			err = &ErrSymbol{Object: index, Symbol: reloc.Symbol, Err: ErrRelocationInvalid}
			return
		}

		if ln.Verbose {
			log.Printf("link: %04x: %v %v -> %v", site, reloc.Kind, reloc.Symbol, *in)
		}
	}

	return
}

// entry resolves the single declared entry symbol.
func (ln *Linker) entry() (pc uint32, err error) {
	declared := -1
	for n, obj := range ln.objs {
		if len(obj.Entry) == 0 {
			continue
		}
		if declared >= 0 {
			err = &ErrSymbol{Object: n, Symbol: obj.Entry, Err: ErrUnknownEntry}
			return
		}
		declared = n
	}

	if declared < 0 {
		if !ln.AllowNoEntry {
			err = ErrNoEntryDefined
		}
		return
	}

	name := ln.objs[declared].Entry
	sym, ok := ln.globals[name]
	if !ok {
		sym, ok = ln.resolve(declared, name)
	}
	if !ok || sym.Section != asm.SECTION_TEXT {
		err = &ErrSymbol{Object: declared, Symbol: name, Err: ErrUnknownEntry}
		return
	}

	pc = sym.Address
	return
}

// Link links the object files, in order, into a binary.
// Linking is all or nothing: on error no binary is returned.
func (ln *Linker) Link(objs ...*asm.ObjectFile) (bin *Binary, err error) {
	if len(objs) == 0 {
		err = ErrNoObjects
		return
	}

	ln.objs = objs
	defer func() {
		ln.objs = nil
		ln.bases = nil
	}()

	ln.layout()

	err = ln.collect()
	if err != nil {
		return
	}

	out := &Binary{
		Text:    make([]cpu.Instr, 0, ln.sizes.text),
		Lines:   make([]LineRef, 0, ln.sizes.text),
		Data:    make([]byte, 0, ln.sizes.data),
		Rodata:  make([]byte, 0, ln.sizes.rodata),
		BssSize: ln.sizes.bss,
		Globals: ln.globals,
	}

	for n, obj := range objs {
		out.Text = append(out.Text, obj.Text...)
		for _, line := range obj.Lines {
			out.Lines = append(out.Lines, LineRef{Source: n, LineIndex: line})
		}
		out.Data = append(out.Data, obj.Data...)
		out.Rodata = append(out.Rodata, obj.Rodata...)
	}

	for n := range objs {
		err = ln.relocate(out, n)
		if err != nil {
			return
		}
	}

	out.EntryPc, err = ln.entry()
	if err != nil {
		return
	}

	if ln.Verbose {
		log.Printf("link: %d objects, %d slots, %d data, %d rodata, %d bss, entry %04x",
			len(objs), len(out.Text), len(out.Data), len(out.Rodata), out.BssSize, out.EntryPc)
	}

	bin = out
	return
}
