// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package asm implements the two-pass Talos assembler.
//
// Pass one lays out the sections and builds the symbol table. Pass two
// encodes each instruction through the cpu instruction catalog, resolving
// local jump targets and emitting relocations for everything the linker
// must place.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/talos/cpu"
	"github.com/ezrec/talos/internal"
)

// sourceLine is a tokenized line carried from pass one to pass two.
type sourceLine struct {
	index int      // 0-based source line index.
	words []string // Instruction words, after labels and equates.
	slot  int      // Text slot, for instruction lines.
}

// Assembler is a two-pass assembler for the Talos instruction set.
// The zero value is ready to use.
type Assembler struct {
	Verbose    bool // If set, verbosely logs the assembler actions.
	MaxLines   int  // Maximum source lines; 0 selects cpu.PROGRAM_SIZE.
	MemorySize int  // Memory available to .data and .rodata; 0 selects cpu.MEMORY_SIZE.

	predefine map[string]string // Predefines
	Equate    map[string]string // Map of equates, valid after Parse.

	obj      *ObjectFile
	section  Section
	explicit bool // Set once a section directive has been seen.
	globals  []string
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

func (asm *Assembler) maxLines() int {
	if asm.MaxLines > 0 {
		return asm.MaxLines
	}
	return cpu.PROGRAM_SIZE
}

func (asm *Assembler) memorySize() int {
	if asm.MemorySize > 0 {
		return asm.MemorySize
	}
	return cpu.MEMORY_SIZE
}

// sysEquate returns the predefined system equates.
func (asm *Assembler) sysEquate() map[string]string {
	return map[string]string{
		"MEMORY_SIZE":    fmt.Sprintf("0x%x", asm.memorySize()),
		"STACK_TOP":      fmt.Sprintf("0x%x", asm.memorySize()),
		"REGISTER_COUNT": fmt.Sprintf("%d", cpu.REGISTER_COUNT),
	}
}

// ReadLines reads newline separated source text.
func ReadLines(input io.Reader) (lines []string, err error) {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(nil, 1<<20)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	err = scanner.Err()
	return
}

// Parse assembles an input stream into an object file.
func (asm *Assembler) Parse(input io.Reader) (obj *ObjectFile, err error) {
	lines, err := ReadLines(input)
	if err != nil {
		return
	}

	return asm.Assemble(lines)
}

// Assemble assembles source lines into an object file.
// Errors are *ErrSyntax, carrying the 0-based index of the failing line.
func (asm *Assembler) Assemble(lines []string) (obj *ObjectFile, err error) {
	var index int
	defer func() {
		if err != nil {
			var line string
			if index >= 0 && index < len(lines) {
				line = lines[index]
			}
			err = &ErrSyntax{LineIndex: index, Line: line, Err: err}
			obj = nil
		}
	}()

	if len(lines) > asm.maxLines() {
		index = len(lines) - 1
		err = ErrLineOverflow
		return
	}

	asm.obj = newObjectFile()
	asm.section = SECTION_TEXT
	asm.explicit = false
	asm.globals = asm.globals[:0]
	asm.Equate = asm.sysEquate()
	maps.Copy(asm.Equate, asm.predefine)

	// Pass one: layout and symbols.
	var code []sourceLine
	for n, text := range lines {
		index = n
		if asm.Verbose {
			log.Printf("asm: %v: %v", n, text)
		}

		var src sourceLine
		var is_code bool
		src, is_code, err = asm.layoutLine(n, text)
		if err != nil {
			return
		}
		if is_code {
			code = append(code, src)
		}
	}

	for _, name := range asm.globals {
		sym := asm.obj.Symbols[name]
		if !sym.Defined {
			index = sym.LineIndex
			err = ErrUnknownSymbol
			return
		}
	}

	if len(asm.obj.Data)+len(asm.obj.Rodata) > asm.memorySize() {
		index = 0
		err = ErrMemoryOverflow
		return
	}

	// Pass two: encode.
	for _, src := range code {
		index = src.index
		err = asm.encodeLine(src)
		if err != nil {
			return
		}
	}

	obj = asm.obj
	asm.obj = nil

	if asm.Verbose {
		log.Printf("asm: %d slots, %d data, %d rodata, %d bss, %d relocations",
			len(obj.Text), len(obj.Data), len(obj.Rodata), obj.BssSize, len(obj.Relocations))
	}

	return
}

// substitute replaces whole words that name an equate.
func (asm *Assembler) substitute(words []string) {
	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}
}

// layoutLine performs pass one on a single line.
func (asm *Assembler) layoutLine(index int, text string) (src sourceLine, is_code bool, err error) {
	words := internal.Fields(internal.Normalize(text))
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		return
	}

	sect, ok := sectionMap[words[0]]
	if ok {
		if len(words) != 1 {
			err = ErrInvalidArgument
			return
		}
		asm.section = sect
		asm.explicit = true
		return
	}

	switch words[0] {
	case ".global", ".extern", ".entry":
		err = asm.linkage(index, words)
		return
	}

	for strings.HasSuffix(words[0], ":") {
		err = asm.defineSymbol(strings.TrimSuffix(words[0], ":"), asm.section, index)
		if err != nil {
			return
		}
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	if strings.HasPrefix(words[0], ".") {
		err = ErrUnknownInstruction
		return
	}

	asm.substitute(words[1:])

	if cpu.IsMnemonic(words[0]) {
		if asm.explicit && asm.section != SECTION_TEXT {
			err = ErrInstructionOutsideText
			return
		}
		src = sourceLine{index: index, words: words, slot: len(asm.obj.Text)}
		is_code = true
		// Reserve the slot, encoded in pass two.
		asm.obj.Text = append(asm.obj.Text, cpu.Instr{})
		asm.obj.Lines = append(asm.obj.Lines, index)
		return
	}

	err = asm.declare(index, words)
	return
}

// linkage handles the .global, .extern and .entry directives.
func (asm *Assembler) linkage(index int, words []string) (err error) {
	if len(words) != 2 {
		err = ErrInvalidArgument
		return
	}

	name := words[1]
	obj := asm.obj
	sym, exists := obj.Symbols[name]

	switch words[0] {
	case ".global":
		switch {
		case !exists:
			sym = Symbol{Name: name, Section: SECTION_NONE, LineIndex: index}
		case sym.Binding == BINDING_EXTERN:
			err = ErrDuplicateLabel
			return
		case sym.Binding == BINDING_GLOBAL:
			return
		}
		sym.Binding = BINDING_GLOBAL
		if !sym.Defined {
			sym.LineIndex = index
		}
		obj.Symbols[name] = sym
		asm.globals = append(asm.globals, name)
	case ".extern":
		switch {
		case !exists:
			obj.Symbols[name] = Symbol{Name: name, Section: SECTION_NONE, Binding: BINDING_EXTERN, LineIndex: index}
		case sym.Binding != BINDING_EXTERN:
			err = ErrDuplicateLabel
			return
		}
	case ".entry":
		if len(obj.Entry) != 0 {
			err = ErrInvalidArgument
			return
		}
		obj.Entry = name
		obj.EntryLineIndex = index
	}

	return
}

// defineSymbol binds name to the current offset of sect.
func (asm *Assembler) defineSymbol(name string, sect Section, index int) (err error) {
	if len(name) == 0 || strings.ContainsAny(name, ":\"'") {
		err = ErrInvalidArgument
		return
	}

	sym, exists := asm.obj.Symbols[name]
	if exists && (sym.Defined || sym.Binding == BINDING_EXTERN) {
		err = ErrDuplicateLabel
		return
	}

	sym.Name = name
	sym.Section = sect
	sym.Offset = asm.obj.SectionSize(sect)
	sym.Defined = true
	sym.LineIndex = index
	asm.obj.Symbols[name] = sym

	if asm.Verbose {
		log.Printf("asm: %v = %v+%d (%v)", name, sect, sym.Offset, sym.Binding)
	}

	return
}

// declare handles a variable declaration.
func (asm *Assembler) declare(index int, words []string) (err error) {
	decl, err := parseDeclaration(words)
	if err != nil {
		return
	}

	sect := asm.section
	if decl.dir.Define {
		switch {
		case sect == SECTION_DATA || sect == SECTION_RODATA:
		case !asm.explicit:
			sect = SECTION_DATA
		default:
			err = ErrVarOutsideDataOrRodata
			return
		}
	} else {
		switch {
		case sect == SECTION_BSS:
		case !asm.explicit:
			sect = SECTION_BSS
		default:
			err = ErrVarOutsideBss
			return
		}
	}

	total := int64(decl.dir.Size) * int64(decl.count)
	if total+int64(asm.obj.SectionSize(sect)) > int64(asm.memorySize()) {
		err = ErrMemoryOverflow
		return
	}

	var data []byte
	if decl.dir.Define {
		data, err = decl.initializer()
		if err != nil {
			return
		}
	}

	err = asm.defineSymbol(decl.name, sect, index)
	if err != nil {
		return
	}

	obj := asm.obj
	v := Variable{
		Name:    decl.name,
		Section: sect,
		Address: obj.SectionSize(sect),
		Size:    decl.dir.Size,
		Count:   decl.count,
	}
	obj.Variables[decl.name] = v

	switch sect {
	case SECTION_DATA:
		obj.Data = append(obj.Data, data...)
	case SECTION_RODATA:
		obj.Rodata = append(obj.Rodata, data...)
	case SECTION_BSS:
		obj.BssSize += v.Bytes()
	}

	return
}

// encodeLine performs pass two on an instruction line.
func (asm *Assembler) encodeLine(src sourceLine) (err error) {
	obj := asm.obj

	def, ok := cpu.Lookup(src.words[0])
	if !ok {
		err = ErrUnknownInstruction
		return
	}

	args := src.words[1:]
	if len(args) != len(def.Args) {
		err = ErrInvalidArgument
		return
	}

	in := cpu.Instr{Opcode: def.Opcode}
	for n, arg := range def.Args {
		word := args[n]
		var value int32
		switch arg.Kind {
		case cpu.ARG_REGISTER:
			var reg uint8
			reg, err = ParseRegister(word)
			value = int32(reg)
		case cpu.ARG_IMM:
			value, err = ParseInt(word)
		case cpu.ARG_LABEL:
			value, err = asm.labelOffset(src, word)
		case cpu.ARG_VARIABLE:
			value, err = asm.variableAddress(src, word)
		default:
			err = ErrInvalidArgument
		}
		if err != nil {
			return
		}
		in.Set(arg.Field, value)
	}

	obj.Text[src.slot] = in

	if asm.Verbose {
		log.Printf("asm: %04x: %v", src.slot, in)
	}

	return
}

// labelOffset resolves a jump target to a PC-relative slot offset.
// Extern targets are left for the linker.
func (asm *Assembler) labelOffset(src sourceLine, name string) (offset int32, err error) {
	obj := asm.obj

	sym, ok := obj.Symbols[name]
	if !ok {
		err = ErrUnknownLabel
		return
	}

	if sym.Binding == BINDING_EXTERN {
		obj.Relocations = append(obj.Relocations, Relocation{
			Section:   SECTION_TEXT,
			Offset:    uint32(src.slot),
			Kind:      RELOC_PC_REL_24,
			Symbol:    name,
			LineIndex: src.index,
		})
		return
	}

	if sym.Section != SECTION_TEXT {
		err = ErrInvalidLabelSection
		return
	}

	delta := int64(sym.Offset) - int64(src.slot+1)
	if !cpu.OffsetFits(delta) {
		err = ErrInvalidArgument
		return
	}

	offset = int32(delta)
	return
}

// variableAddress resolves a variable operand to its section offset,
// and records the absolute relocation the linker rebases.
func (asm *Assembler) variableAddress(src sourceLine, name string) (addr int32, err error) {
	obj := asm.obj

	sym, ok := obj.Symbols[name]
	if !ok {
		err = ErrUnknownSymbol
		return
	}

	if sym.Binding != BINDING_EXTERN {
		switch sym.Section {
		case SECTION_DATA, SECTION_RODATA, SECTION_BSS:
			addr = int32(sym.Offset)
		default:
			err = ErrInvalidArgument
			return
		}
	}

	obj.Relocations = append(obj.Relocations, Relocation{
		Section:   SECTION_TEXT,
		Offset:    uint32(src.slot),
		Kind:      RELOC_ABS_32,
		Symbol:    name,
		LineIndex: src.index,
	})

	return
}
