package cpu

import (
	"encoding/binary"
	"log"
)

// Policy selects how the core treats out-of-range accesses and ALU traps.
//
// Under POLICY_IGNORE reads return zero, and writes and traps are dropped.
// Under POLICY_FAULT accesses and traps return an error.
//
//go:generate go tool stringer -linecomment -type=Policy
type Policy int

const (
	POLICY_IGNORE = Policy(0) // ignore
	POLICY_FAULT  = Policy(1) // fault
)

// ParsePolicy converts a policy name to a Policy.
func ParsePolicy(name string) (policy Policy, ok bool) {
	for _, policy = range []Policy{POLICY_IGNORE, POLICY_FAULT} {
		if policy.String() == name {
			ok = true
			return
		}
	}
	policy = POLICY_IGNORE
	return
}

// Memory is a flat little-endian byte addressed memory.
type Memory struct {
	Verbose bool   // Set to log out of range accesses.
	Policy  Policy // Out of range access policy.
	Faults  int    // Out of range accesses dropped under POLICY_IGNORE.

	Data []byte
}

// NewMemory creates a zero filled memory of size bytes.
func NewMemory(size int) *Memory {
	return &Memory{Data: make([]byte, size)}
}

// Size returns the memory size in bytes.
func (mem *Memory) Size() uint32 {
	return uint32(len(mem.Data))
}

// Reset zero fills the memory, and clears the fault counter.
func (mem *Memory) Reset() {
	clear(mem.Data)
	mem.Faults = 0
}

func (mem *Memory) inRange(addr uint32, size int) bool {
	return uint64(addr)+uint64(size) <= uint64(len(mem.Data))
}

func (mem *Memory) outOfRange(addr uint32, size int) (err error) {
	if mem.Verbose {
		log.Printf("cpu: memory 0x%08x+%d out of range", addr, size)
	}
	if mem.Policy == POLICY_FAULT {
		return ErrMemoryFault{Address: addr, Size: size}
	}
	mem.Faults++
	return nil
}

// Load reads a size byte (1, 2 or 4) little-endian value from addr.
// Out of range reads return zero under POLICY_IGNORE.
func (mem *Memory) Load(addr uint32, size int) (value uint32, err error) {
	if !mem.inRange(addr, size) {
		err = mem.outOfRange(addr, size)
		return
	}

	data := mem.Data[addr:]
	switch size {
	case 1:
		value = uint32(data[0])
	case 2:
		value = uint32(binary.LittleEndian.Uint16(data))
	case 4:
		value = binary.LittleEndian.Uint32(data)
	default:
		panic("cpu: invalid memory access size")
	}

	return
}

// Store writes the low size bytes (1, 2 or 4) of value to addr.
// Out of range writes are dropped under POLICY_IGNORE.
func (mem *Memory) Store(addr uint32, size int, value uint32) (err error) {
	if !mem.inRange(addr, size) {
		err = mem.outOfRange(addr, size)
		return
	}

	data := mem.Data[addr:]
	switch size {
	case 1:
		data[0] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(data, uint16(value))
	case 4:
		binary.LittleEndian.PutUint32(data, value)
	default:
		panic("cpu: invalid memory access size")
	}

	return
}

// Byte returns the byte at addr, or zero if out of range.
func (mem *Memory) Byte(addr uint32) (value byte, ok bool) {
	if !mem.inRange(addr, 1) {
		return
	}
	return mem.Data[addr], true
}

// Write copies data into memory at addr.
// Returns false, and writes nothing, if any byte is out of range.
func (mem *Memory) Write(addr uint32, data []byte) (ok bool) {
	if !mem.inRange(addr, len(data)) {
		return false
	}
	copy(mem.Data[addr:], data)
	return true
}

// Copy copies count bytes from src to dst in ascending address order, so an
// overlapping copy to a higher address repeats the leading dst-src bytes.
// Addresses at or past the memory size are out of range; they are never
// wrapped. Under POLICY_IGNORE out of range reads are zero and out of range
// writes are dropped, each counted as a fault. Under POLICY_FAULT the bytes
// before the first out of range access are copied, and the fault returned.
func (mem *Memory) Copy(dst, src uint32, count uint32) (err error) {
	size := uint64(len(mem.Data))
	total := uint64(count)

	avail := func(addr uint32) uint64 {
		if uint64(addr) >= size {
			return 0
		}
		return min(size-uint64(addr), total)
	}

	src_in := avail(src)
	dst_in := avail(dst)
	both := min(src_in, dst_in)

	lo := uint64(dst)
	switch {
	case both == 0:
	case dst > src && uint64(dst-src) < both:
		period := uint64(dst - src)
		copy(mem.Data[lo:lo+period], mem.Data[src:dst])
		for done := period; done < both; done *= 2 {
			copy(mem.Data[lo+done:lo+both], mem.Data[lo:lo+done])
		}
	default:
		copy(mem.Data[lo:lo+both], mem.Data[src:uint64(src)+both])
	}

	if both == total {
		return
	}

	if mem.Policy == POLICY_FAULT {
		addr := dst + uint32(both)
		if src_in == both {
			addr = src + uint32(both)
		}
		err = mem.outOfRange(addr, 1)
		return
	}

	if mem.Verbose {
		log.Printf("cpu: memory copy 0x%08x <- 0x%08x+%d out of range", dst, src, count)
	}

	// Bytes read out of range land as zeros where dst is still in range.
	if dst_in > src_in {
		clear(mem.Data[lo+src_in : lo+dst_in])
	}
	mem.Faults += int(total-src_in) + int(total-dst_in)

	return
}
