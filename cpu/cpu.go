// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

// Cpu is the simulation context for the Talos execution core.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Register [REGISTER_COUNT]uint32 // Register bank. Register 13 is the stack pointer.
	Pc       uint32                 // Program counter, in instruction slots.
	Flags    Flags                  // Condition flags.
	Halted   bool                   // Set once halt has executed.

	Memory  *Memory // Flat byte memory.
	Program []Instr // Instruction store.

	TrapPolicy Policy // ALU trap policy.

	Ticks int // Instructions executed since reset.
	Traps int // ALU traps dropped under POLICY_IGNORE.
}

// NewCpu creates a new CPU with size bytes of memory.
func NewCpu(size int) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: NewMemory(size),
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"MEMORY_SIZE":    fmt.Sprintf("0x%x", cpu.Memory.Size()),
		"STACK_TOP":      fmt.Sprintf("0x%x", cpu.Memory.Size()),
		"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
	}
	return maps.All(defines)
}

// Faults returns the out of range memory accesses dropped since reset.
func (cpu *Cpu) Faults() int {
	return cpu.Memory.Faults
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %08x\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 5s: %v\n", "flags", cpu.Flags)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %04X_%04X\n", RegisterName(n), val>>16, val&0xffff)
	}

	return
}

// Reset the CPU state.
// - Clears the registers, flags and program counter.
// - Zeros statistics counters.
// - Sets the stack pointer to the top of memory.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Flags = Flags{}
	cpu.Pc = 0
	cpu.Halted = false
	cpu.Ticks = 0
	cpu.Traps = 0
	cpu.Memory.Faults = 0

	cpu.SetSp(cpu.Memory.Size())
}

// Load replaces the instruction store with program, and the memory contents
// with image (at address 0, zero filled beyond), then resets the CPU.
func (cpu *Cpu) Load(program []Instr, image []byte) (err error) {
	if len(program) > PROGRAM_SIZE {
		err = ErrProgramSize
		return
	}

	if len(image) > len(cpu.Memory.Data) {
		err = ErrImageSize
		return
	}

	cpu.Program = program
	cpu.Memory.Reset()
	cpu.Memory.Write(0, image)

	cpu.Reset()

	if cpu.Verbose {
		log.Printf("cpu: loaded %d slots, %d bytes", len(program), len(image))
	}

	return
}

// Tick fetches and executes a single instruction.
// Running past the end of the instruction store halts the CPU.
// Returns ErrHalted if the CPU has already halted.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	if int(cpu.Pc) >= len(cpu.Program) {
		if cpu.Verbose {
			log.Printf("cpu: %04x: end of program", cpu.Pc)
		}
		cpu.Halted = true
		return
	}

	err = cpu.Execute(cpu.Program[cpu.Pc])

	return
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(in Instr) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(in), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("cpu: %04x: %v", cpu.Pc, in)
	}

	if in.Rd >= REGISTER_COUNT || in.Rs1 >= REGISTER_COUNT || in.Rs2 >= REGISTER_COUNT {
		err = ErrOpcodeRegister
		return
	}

	next_pc := cpu.Pc + 1

	reg := &cpu.Register
	rd := reg[in.Rd]
	rs1 := reg[in.Rs1]
	rs2 := reg[in.Rs2]
	imm := uint32(in.Imm)

	jump := func(taken bool) {
		if taken {
			next_pc += imm
		}
	}

	switch in.Opcode {
	case OP_ADD:
		err = cpu.alu(ALU_OP_ADD, in.Rd, rs1, rs2)
	case OP_SUB:
		err = cpu.alu(ALU_OP_SUB, in.Rd, rs1, rs2)
	case OP_MUL:
		err = cpu.alu(ALU_OP_MUL, in.Rd, rs1, rs2)
	case OP_DIV:
		err = cpu.alu(ALU_OP_DIV, in.Rd, rs1, rs2)
	case OP_MOD:
		err = cpu.alu(ALU_OP_MOD, in.Rd, rs1, rs2)
	case OP_ADDI:
		err = cpu.alu(ALU_OP_ADD, in.Rd, rs1, imm)
	case OP_SUBI:
		err = cpu.alu(ALU_OP_SUB, in.Rd, rs1, imm)
	case OP_MULI:
		err = cpu.alu(ALU_OP_MUL, in.Rd, rs1, imm)
	case OP_DIVI:
		err = cpu.alu(ALU_OP_DIV, in.Rd, rs1, imm)
	case OP_MODI:
		err = cpu.alu(ALU_OP_MOD, in.Rd, rs1, imm)

	case OP_AND:
		err = cpu.alu(ALU_OP_AND, in.Rd, rs1, rs2)
	case OP_OR:
		err = cpu.alu(ALU_OP_OR, in.Rd, rs1, rs2)
	case OP_XOR:
		err = cpu.alu(ALU_OP_XOR, in.Rd, rs1, rs2)
	case OP_ANDI:
		err = cpu.alu(ALU_OP_AND, in.Rd, rs1, imm)
	case OP_ORI:
		err = cpu.alu(ALU_OP_OR, in.Rd, rs1, imm)
	case OP_XORI:
		err = cpu.alu(ALU_OP_XOR, in.Rd, rs1, imm)

	case OP_SHL:
		err = cpu.alu(ALU_OP_SHL, in.Rd, rs1, rs2)
	case OP_SHR:
		err = cpu.alu(ALU_OP_SHR, in.Rd, rs1, rs2)
	case OP_SAR:
		err = cpu.alu(ALU_OP_SAR, in.Rd, rs1, rs2)
	case OP_ROL:
		err = cpu.alu(ALU_OP_ROL, in.Rd, rs1, rs2)
	case OP_ROR:
		err = cpu.alu(ALU_OP_ROR, in.Rd, rs1, rs2)
	case OP_SHLI:
		err = cpu.alu(ALU_OP_SHL, in.Rd, rs1, imm)
	case OP_SHRI:
		err = cpu.alu(ALU_OP_SHR, in.Rd, rs1, imm)
	case OP_SARI:
		err = cpu.alu(ALU_OP_SAR, in.Rd, rs1, imm)
	case OP_ROLI:
		err = cpu.alu(ALU_OP_ROL, in.Rd, rs1, imm)
	case OP_RORI:
		err = cpu.alu(ALU_OP_ROR, in.Rd, rs1, imm)

	case OP_CMP:
		err = cpu.alu(ALU_OP_CMP, in.Rd, rs1, rs2)
	case OP_CMPU:
		err = cpu.alu(ALU_OP_CMPU, in.Rd, rs1, rs2)
	case OP_TEST:
		err = cpu.alu(ALU_OP_TEST, in.Rd, rs1, rs2)
	case OP_CMPI:
		err = cpu.alu(ALU_OP_CMP, in.Rd, rs1, imm)
	case OP_CMPUI:
		err = cpu.alu(ALU_OP_CMPU, in.Rd, rs1, imm)
	case OP_TESTI:
		err = cpu.alu(ALU_OP_TEST, in.Rd, rs1, imm)

	case OP_INC:
		err = cpu.alu(ALU_OP_INC, in.Rd, rd, 0)
	case OP_DEC:
		err = cpu.alu(ALU_OP_DEC, in.Rd, rd, 0)
	case OP_NOT:
		err = cpu.alu(ALU_OP_NOT, in.Rd, rs1, 0)
	case OP_ABS:
		err = cpu.alu(ALU_OP_ABS, in.Rd, rs1, 0)
	case OP_NEG:
		err = cpu.alu(ALU_OP_NEG, in.Rd, rs1, 0)
	case OP_MIN:
		err = cpu.alu(ALU_OP_MIN, in.Rd, rs1, rs2)
	case OP_MAX:
		err = cpu.alu(ALU_OP_MAX, in.Rd, rs1, rs2)
	case OP_MINI:
		err = cpu.alu(ALU_OP_MIN, in.Rd, rs1, imm)
	case OP_MAXI:
		err = cpu.alu(ALU_OP_MAX, in.Rd, rs1, imm)

	case OP_MOVI:
		cpu.setValue(in.Rd, imm)
	case OP_MOV:
		reg[in.Rd] = rs1
	case OP_LDB_ABS:
		err = cpu.load(in.Rd, imm, 1)
	case OP_LDH_ABS:
		err = cpu.load(in.Rd, imm, 2)
	case OP_LDW_ABS:
		err = cpu.load(in.Rd, imm, 4)
	case OP_STB_ABS:
		err = cpu.Memory.Store(imm, 1, rd)
	case OP_STH_ABS:
		err = cpu.Memory.Store(imm, 2, rd)
	case OP_STW_ABS:
		err = cpu.Memory.Store(imm, 4, rd)
	case OP_LDB_BASE:
		err = cpu.load(in.Rd, rs1+imm, 1)
	case OP_LDH_BASE:
		err = cpu.load(in.Rd, rs1+imm, 2)
	case OP_LDW_BASE:
		err = cpu.load(in.Rd, rs1+imm, 4)
	case OP_STB_BASE:
		err = cpu.Memory.Store(rs1+imm, 1, rd)
	case OP_STH_BASE:
		err = cpu.Memory.Store(rs1+imm, 2, rd)
	case OP_STW_BASE:
		err = cpu.Memory.Store(rs1+imm, 4, rd)
	case OP_PUSH:
		err = cpu.Push(rs1)
	case OP_POP:
		var value uint32
		value, err = cpu.Pop()
		if err == nil {
			cpu.setValue(in.Rd, value)
		}
	case OP_LEA:
		cpu.setValue(in.Rd, rs1+imm)
	case OP_SWAP:
		reg[in.Rd], reg[in.Rs1] = rs1, rd
	case OP_CLR:
		reg[in.Rd] = 0
		cpu.Flags = Flags{Zero: true}
	case OP_MEMCPY:
		err = cpu.memcpy(rd, rs1, in.Imm)

	case OP_JMP:
		jump(true)
	case OP_JZ:
		jump(cpu.Flags.Zero)
	case OP_JNZ:
		jump(!cpu.Flags.Zero)
	case OP_JG:
		jump(!cpu.Flags.Zero && !cpu.Flags.Negative)
	case OP_JL:
		jump(cpu.Flags.Negative)
	case OP_CALL:
		err = cpu.Push(next_pc)
		jump(true)
	case OP_RET:
		next_pc, err = cpu.Pop()
	case OP_HALT:
		cpu.Halted = true
		next_pc = cpu.Pc
		if cpu.Verbose {
			log.Printf("cpu: %04x: halt", cpu.Pc)
		}

	default:
		err = ErrOpcodeUnimplemented
	}

	if err != nil {
		return
	}

	cpu.Pc = next_pc
	cpu.Ticks++

	return
}

// alu executes op, and commits the result to register rd.
func (cpu *Cpu) alu(op AluOp, rd uint8, a, b uint32) (err error) {
	result := Alu(op, a, b)
	cpu.Flags = result.Flags

	if result.Trap {
		if cpu.Verbose {
			log.Printf("cpu: %04x: trap %v 0x%x 0x%x", cpu.Pc, op, a, b)
		}
		if cpu.TrapPolicy == POLICY_FAULT {
			err = ErrTrap
			return
		}
		cpu.Traps++
		return
	}

	if result.Writeback {
		cpu.Register[rd] = result.Value
	}

	return
}

// setValue sets register rd, with Zero and Negative set from the value.
func (cpu *Cpu) setValue(rd uint8, value uint32) {
	cpu.Register[rd] = value
	cpu.Flags = Flags{
		Zero:     value == 0,
		Negative: value>>31 == 1,
	}
}

// load reads size bytes at addr into rd, sign extending narrow loads.
func (cpu *Cpu) load(rd uint8, addr uint32, size int) (err error) {
	value, err := cpu.Memory.Load(addr, size)
	if err != nil {
		return
	}

	switch size {
	case 1:
		value = uint32(int32(int8(value)))
	case 2:
		value = uint32(int32(int16(value)))
	}

	cpu.setValue(rd, value)

	return
}

// memcpy copies count bytes from src to dst. A negative count is a no-op.
func (cpu *Cpu) memcpy(dst, src uint32, count int32) (err error) {
	if count <= 0 {
		return
	}

	err = cpu.Memory.Copy(dst, src, uint32(count))
	return
}
