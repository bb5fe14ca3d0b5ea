package cpu

const (
	MEMORY_SIZE    = 0x1_0000 // Default byte memory size.
	PROGRAM_SIZE   = 0xffff   // Default instruction store capacity, in slots.
	REGISTER_COUNT = 16       // General purpose registers.
	STACK_SLOT     = 4        // Bytes moved by push, pop, call and ret.
	OFFSET_BITS    = 24       // Width of a PC-relative jump offset.
)

const (
	OFFSET_MIN = -(1 << (OFFSET_BITS - 1))    // Smallest PC-relative offset.
	OFFSET_MAX = (1 << (OFFSET_BITS - 1)) - 1 // Largest PC-relative offset.
)

// SignExtend24 sign extends the low 24 bits of value.
func SignExtend24(value uint32) int32 {
	if value&0x80_0000 != 0 {
		return int32(value | 0xff00_0000)
	}
	return int32(value & 0xff_ffff)
}

// OffsetFits returns true if offset is encodable as a PC-relative offset.
func OffsetFits(offset int64) bool {
	return offset >= OFFSET_MIN && offset <= OFFSET_MAX
}
