// Package cpu implements the instruction set and execution core of the Talos machine.
//
// The core has sixteen 32-bit registers (register 13 is the stack pointer), a
// separate program counter addressing instruction slots, Zero/Negative/Carry/Overflow
// flags, and a flat little-endian byte memory. Instructions are fixed width
// decoded records (see Instr) fetched from a text store distinct from memory.
//
// The instruction catalog maps each mnemonic to its opcode, format, and operand
// schema, and is shared by the assembler (encode) and the disassembler (Def.Disassemble).
package cpu
