package cpu

import (
	"math"
	"math/bits"
)

// AluOp is an arithmetic-logic unit operation.
//
//go:generate go tool stringer -linecomment -type=AluOp
type AluOp int

const (
	ALU_OP_ADD  = AluOp(0)  // add
	ALU_OP_SUB  = AluOp(1)  // sub
	ALU_OP_MUL  = AluOp(2)  // mul
	ALU_OP_DIV  = AluOp(3)  // div
	ALU_OP_MOD  = AluOp(4)  // mod
	ALU_OP_AND  = AluOp(5)  // and
	ALU_OP_OR   = AluOp(6)  // or
	ALU_OP_XOR  = AluOp(7)  // xor
	ALU_OP_NOT  = AluOp(8)  // not
	ALU_OP_SHL  = AluOp(9)  // shl
	ALU_OP_SHR  = AluOp(10) // shr
	ALU_OP_SAR  = AluOp(11) // sar
	ALU_OP_ROL  = AluOp(12) // rol
	ALU_OP_ROR  = AluOp(13) // ror
	ALU_OP_CMP  = AluOp(14) // cmp
	ALU_OP_CMPU = AluOp(15) // cmpu
	ALU_OP_TEST = AluOp(16) // test
	ALU_OP_INC  = AluOp(17) // inc
	ALU_OP_DEC  = AluOp(18) // dec
	ALU_OP_MIN  = AluOp(19) // min
	ALU_OP_MAX  = AluOp(20) // max
	ALU_OP_ABS  = AluOp(21) // abs
	ALU_OP_NEG  = AluOp(22) // neg
)

// Flags is the condition flag set.
type Flags struct {
	Zero     bool
	Negative bool
	Carry    bool
	Overflow bool
}

// String returns the flags as 'ZNCV', with '-' for clear flags.
func (fl Flags) String() string {
	text := []byte("----")
	if fl.Zero {
		text[0] = 'Z'
	}
	if fl.Negative {
		text[1] = 'N'
	}
	if fl.Carry {
		text[2] = 'C'
	}
	if fl.Overflow {
		text[3] = 'V'
	}
	return string(text)
}

// AluResult is the outcome of a single ALU operation.
type AluResult struct {
	Value     uint32
	Flags     Flags
	Writeback bool // False for compare and test operations.
	Trap      bool // Operation undefined for its inputs; no writeback.
}

func signedOverflow(wide int64) bool {
	return wide > math.MaxInt32 || wide < math.MinInt32
}

// Alu executes op on a and b. Unary operations ignore b.
// Zero and Negative are always derived from Value, except for the
// compare and test operations which set them from the comparison.
func Alu(op AluOp, a, b uint32) (r AluResult) {
	r.Writeback = true

	sa := int32(a)
	sb := int32(b)
	count := b & 0x1f

	switch op {
	case ALU_OP_ADD:
		wide := uint64(a) + uint64(b)
		r.Value = uint32(wide)
		r.Flags.Carry = wide > math.MaxUint32
		r.Flags.Overflow = signedOverflow(int64(sa) + int64(sb))
	case ALU_OP_SUB:
		r.Value = a - b
		r.Flags.Carry = a >= b
		r.Flags.Overflow = signedOverflow(int64(sa) - int64(sb))
	case ALU_OP_MUL:
		wide := int64(sa) * int64(sb)
		r.Value = uint32(wide)
		r.Flags.Overflow = signedOverflow(wide)
	case ALU_OP_DIV:
		if sb == 0 || (sa == math.MinInt32 && sb == -1) {
			r.Trap = true
		} else {
			r.Value = uint32(sa / sb)
		}
	case ALU_OP_MOD:
		if sb == 0 {
			r.Trap = true
		} else if sb != -1 {
			r.Value = uint32(sa % sb)
		}
	case ALU_OP_AND:
		r.Value = a & b
	case ALU_OP_OR:
		r.Value = a | b
	case ALU_OP_XOR:
		r.Value = a ^ b
	case ALU_OP_NOT:
		r.Value = ^a
	case ALU_OP_SHL:
		r.Value = a << count
		if count != 0 {
			r.Flags.Carry = (a>>(32-count))&1 == 1
		}
	case ALU_OP_SHR:
		r.Value = a >> count
		if count != 0 {
			r.Flags.Carry = (a>>(count-1))&1 == 1
		}
	case ALU_OP_SAR:
		r.Value = uint32(sa >> count)
	case ALU_OP_ROL:
		r.Value = bits.RotateLeft32(a, int(count))
	case ALU_OP_ROR:
		r.Value = bits.RotateLeft32(a, -int(count))
	case ALU_OP_CMP:
		diff := sa - sb
		r.Writeback = false
		r.Flags.Zero = diff == 0
		r.Flags.Negative = diff < 0
		r.Flags.Carry = a >= b
		r.Flags.Overflow = ((sa^sb)&(sa^diff)) < 0
		return
	case ALU_OP_CMPU:
		r.Writeback = false
		r.Flags.Zero = a == b
		r.Flags.Negative = a < b
		r.Flags.Carry = a >= b
		return
	case ALU_OP_TEST:
		value := a & b
		r.Writeback = false
		r.Flags.Zero = value == 0
		r.Flags.Negative = value>>31 == 1
		return
	case ALU_OP_INC:
		wide := int64(sa) + 1
		r.Value = uint32(wide)
		r.Flags.Overflow = wide > math.MaxInt32
	case ALU_OP_DEC:
		wide := int64(sa) - 1
		r.Value = uint32(wide)
		r.Flags.Overflow = wide < math.MinInt32
	case ALU_OP_MIN:
		r.Value = min(a, b)
	case ALU_OP_MAX:
		r.Value = max(a, b)
	case ALU_OP_ABS:
		if sa < 0 {
			r.Value = uint32(-sa)
		} else {
			r.Value = a
		}
	case ALU_OP_NEG:
		if sa == math.MinInt32 {
			r.Trap = true
		} else {
			r.Value = uint32(-sa)
		}
	default:
		r.Trap = true
	}

	if r.Trap {
		r.Writeback = false
	}

	r.Flags.Zero = r.Value == 0
	r.Flags.Negative = r.Value>>31 == 1

	return
}
