package cpu

import (
	"errors"

	"github.com/ezrec/talos/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted      = errors.New(f("cpu halted"))
	ErrTrap        = errors.New(f("alu trap"))
	ErrNoProgram   = errors.New(f("no program loaded"))
	ErrProgramSize = errors.New(f("program exceeds instruction store"))
	ErrImageSize   = errors.New(f("image exceeds memory"))

	// Instruction errors
	ErrOpcodeUnimplemented = errors.New(f("opcode unimplemented"))
	ErrOpcodeRegister      = errors.New(f("register out of range"))
)

// ErrOpcode is the fault raised by an instruction that cannot execute.
type ErrOpcode Instr

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x %v", uint8(eo.Opcode), Instr(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrMemoryFault is an out of range memory access under POLICY_FAULT.
type ErrMemoryFault struct {
	Address uint32
	Size    int
}

func (err ErrMemoryFault) Error() string {
	return f("memory fault at 0x%08x size %d", err.Address, err.Size)
}

func (err ErrMemoryFault) Is(target error) (ok bool) {
	_, ok = target.(ErrMemoryFault)
	return
}
