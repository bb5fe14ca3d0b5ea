// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator builds Talos programs and drives their execution.
package emulator

import (
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/talos/asm"
	"github.com/ezrec/talos/cpu"
	"github.com/ezrec/talos/internal"
	"github.com/ezrec/talos/link"
)

// Mode selects what Start does: MODE_STEP executes a single instruction,
// MODE_AUTO runs to halt.
//
//go:generate go tool stringer -linecomment -type=Mode
type Mode int

const (
	MODE_STEP = Mode(0) // step
	MODE_AUTO = Mode(1) // auto
)

// Emulator state. CPU + linked binary.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Binary   *link.Binary // Reference to the loaded binary.
	Config   Config       // Build and run configuration.

	mode Mode
}

// NewEmulator creates a new emulator.
func NewEmulator(config Config) (emu *Emulator) {
	if config.MemorySize <= 0 {
		config.MemorySize = cpu.MEMORY_SIZE
	}

	emu = &Emulator{
		Cpu:    cpu.NewCpu(config.MemorySize),
		Config: config,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(emu.Cpu.Defines(),
		maps.All(emu.Config.Predefine),
	)
}

// assembler returns an assembler configured for this emulator.
func (emu *Emulator) assembler() (assembler *asm.Assembler) {
	assembler = &asm.Assembler{
		Verbose:    emu.Verbose,
		MaxLines:   emu.Config.MaxLines,
		MemorySize: int(emu.Cpu.Memory.Size()),
	}

	for key, value := range emu.Defines() {
		assembler.Predefine(key, value)
	}

	return
}

func (emu *Emulator) assemble(src string) (obj *asm.ObjectFile, err error) {
	obj, err = emu.assembler().Parse(strings.NewReader(src))
	return
}

// load places a linked binary into the CPU.
func (emu *Emulator) load(bin *link.Binary) (err error) {
	if bin.MemoryUsed() > uint64(emu.Cpu.Memory.Size()) {
		err = asm.ErrMemoryOverflow
		return
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Memory.Verbose = emu.Verbose
	emu.Cpu.Memory.Policy = emu.Config.MemoryPolicy
	emu.Cpu.TrapPolicy = emu.Config.TrapPolicy

	err = emu.Cpu.Load(bin.Text, bin.Image())
	if err != nil {
		return
	}

	emu.Binary = bin
	emu.Cpu.Pc = bin.EntryPc

	return
}

// BuildSingle assembles a single source, and loads it for execution.
// Without a .entry directive execution starts at the first instruction.
// Assembly errors are *asm.ErrSyntax.
func (emu *Emulator) BuildSingle(src string) (err error) {
	emu.Binary = nil

	obj, err := emu.assemble(src)
	if err != nil {
		return
	}

	linker := &link.Linker{Verbose: emu.Verbose, AllowNoEntry: true}
	bin, err := linker.Link(obj)
	if err != nil {
		return
	}

	err = emu.load(bin)
	return
}

// BuildLinked assembles each source, links them in order, and loads the
// result for execution. Exactly one source must declare an .entry.
// Assembly errors are *ErrSource wrapping the *asm.ErrSyntax.
func (emu *Emulator) BuildLinked(srcs []string) (err error) {
	emu.Binary = nil

	objs := make([]*asm.ObjectFile, 0, len(srcs))
	for n, src := range srcs {
		var obj *asm.ObjectFile
		obj, err = emu.assemble(src)
		if err != nil {
			err = &ErrSource{Index: n, Err: err}
			return
		}
		objs = append(objs, obj)
	}

	linker := &link.Linker{Verbose: emu.Verbose}
	bin, err := linker.Link(objs...)
	if err != nil {
		return
	}

	err = emu.load(bin)
	return
}

// SetMode sets the execution mode used by Start.
func (emu *Emulator) SetMode(mode Mode) {
	emu.mode = mode
}

// Mode returns the execution mode.
func (emu *Emulator) Mode() Mode {
	return emu.mode
}

// Restart resets the CPU to the entry point of the loaded binary.
func (emu *Emulator) Restart() (err error) {
	if emu.Binary == nil {
		err = cpu.ErrNoProgram
		return
	}

	err = emu.load(emu.Binary)
	return
}

// Start executes per the mode: one instruction, or until halt.
func (emu *Emulator) Start() (done bool, err error) {
	if emu.mode == MODE_AUTO {
		return emu.Run()
	}

	return emu.Step()
}

// Run executes instructions until halt.
func (emu *Emulator) Run() (done bool, err error) {
	for !done {
		done, err = emu.Step()
		if err != nil {
			return
		}
	}

	return
}

// Step executes a single instruction. Stepping a halted CPU is a no-op.
func (emu *Emulator) Step() (done bool, err error) {
	if emu.Binary == nil {
		err = cpu.ErrNoProgram
		return
	}

	if emu.Cpu.Halted {
		done = true
		return
	}

	pc := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = emu.runtimeError(pc, err)
		}
	}()

	if emu.Config.MaxSteps > 0 && emu.Cpu.Ticks >= emu.Config.MaxSteps {
		err = ErrStepLimit
		return
	}

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	done = emu.Cpu.Halted
	if done && emu.Verbose {
		log.Printf("emulator: halted after %d ticks", emu.Cpu.Ticks)
	}

	return
}

func (emu *Emulator) runtimeError(pc uint32, err error) error {
	rt := &ErrRuntime{Pc: pc, LineIndex: -1, Err: err}
	ref, ok := emu.Binary.Debug(pc)
	if ok {
		rt.Source = ref.Source
		rt.LineIndex = ref.LineIndex
	}
	return rt
}

// LineRef returns the source of the next instruction.
func (emu *Emulator) LineRef() (ref link.LineRef, ok bool) {
	if emu.Binary == nil {
		return
	}
	return emu.Binary.Debug(emu.Cpu.Pc)
}

// Register returns the value of register index.
func (emu *Emulator) Register(index int) (value uint32, err error) {
	if index < 0 || index >= cpu.REGISTER_COUNT {
		err = ErrRegister
		return
	}

	value = emu.Cpu.Register[index]
	return
}

// RegisterByName returns the value of a named register.
// The name 'pc' reads the program counter.
func (emu *Emulator) RegisterByName(name string) (value uint32, err error) {
	if strings.EqualFold(name, "pc") {
		value = emu.Cpu.Pc
		return
	}

	index, ok := cpu.RegisterIndex(name)
	if !ok {
		err = ErrRegister
		return
	}

	return emu.Register(index)
}

// MemoryByte returns the memory byte at addr.
func (emu *Emulator) MemoryByte(addr uint32) (value byte, err error) {
	value, ok := emu.Cpu.Memory.Byte(addr)
	if !ok {
		err = ErrAddress
	}
	return
}

// CpuFlags returns the condition flags.
func (emu *Emulator) CpuFlags() cpu.Flags {
	return emu.Cpu.Flags
}
