package asm

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/ezrec/talos/cpu"
)

// digitValue returns the value of a digit in base 2, 10 or 16, or -1.
func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// splitPrefix removes a 0x or 0b prefix, returning the selected base.
func splitPrefix(word string) (digits string, base int) {
	if len(word) >= 2 && word[0] == '0' {
		switch word[1] {
		case 'x', 'X':
			return word[2:], 16
		case 'b', 'B':
			return word[2:], 2
		}
	}
	return word, 10
}

// parseMagnitude parses an unsigned digit string in base, rejecting any
// magnitude above limit.
func parseMagnitude(digits string, base int, limit uint64) (value uint64, err error) {
	if len(digits) == 0 {
		err = ErrInvalidCharacter
		return
	}

	for n := 0; n < len(digits); n++ {
		digit := digitValue(digits[n])
		if digit < 0 || digit >= base {
			err = ErrInvalidCharacter
			return
		}
		if value > (limit-uint64(digit))/uint64(base) {
			err = ErrNumericOverflow
			return
		}
		value = value*uint64(base) + uint64(digit)
	}

	return
}

// parseSigned parses [+-][0x|0b]digits, with '_' separators ignored.
func parseSigned(word string, limit uint64) (negative bool, magnitude uint64, err error) {
	word = strings.ReplaceAll(word, "_", "")
	if len(word) > 0 && (word[0] == '+' || word[0] == '-') {
		negative = word[0] == '-'
		word = word[1:]
	}

	digits, base := splitPrefix(word)
	magnitude, err = parseMagnitude(digits, base, limit)
	return
}

// ParseInt parses a signed 32-bit numeric literal.
// Accepts an optional sign, an optional 0x or 0b prefix, and '_' digit separators.
func ParseInt(word string) (value int32, err error) {
	negative, magnitude, err := parseSigned(word, math.MaxUint64)
	if err != nil {
		return
	}

	switch {
	case negative && magnitude <= -math.MinInt32:
		value = int32(-int64(magnitude))
	case !negative && magnitude <= math.MaxInt32:
		value = int32(magnitude)
	default:
		err = ErrNumericOverflow
	}

	return
}

// ParseRegister parses a register name into its index.
func ParseRegister(word string) (index uint8, err error) {
	n, ok := cpu.RegisterIndex(word)
	if !ok {
		err = ErrInvalidArgument
		return
	}
	return uint8(n), nil
}

// unescape decodes the backslash escapes of a quoted literal body.
func unescape(body string) (data []byte, err error) {
	for n := 0; n < len(body); n++ {
		c := body[n]
		if c != '\\' {
			data = append(data, c)
			continue
		}
		n++
		if n == len(body) {
			err = ErrInvalidCharacter
			return
		}
		switch body[n] {
		case 'n':
			c = '\n'
		case 'r':
			c = '\r'
		case 't':
			c = '\t'
		case 'e':
			c = '\033'
		case '0':
			c = 0
		case '\\', '"', '\'':
			c = body[n]
		default:
			err = ErrInvalidCharacter
			return
		}
		data = append(data, c)
	}

	return
}

// parseDigitBytes converts a digit string to bytes, width digits per byte.
func parseDigitBytes(digits string, base int, width int, size int) (data []byte, err error) {
	if len(digits) != width*size {
		err = ErrInvalidArgument
		return
	}

	for n := 0; n < len(digits); n += width {
		var value uint64
		value, err = parseMagnitude(digits[n:n+width], base, math.MaxUint8)
		if err != nil {
			return
		}
		data = append(data, byte(value))
	}

	return
}

// ParseBytes parses a data initializer into exactly size bytes.
//
// Hexadecimal (0x, two digits per byte) and binary (0b, eight digits per
// byte) strings are stored in textual order. Quoted literals must hold
// exactly size bytes. Decimal values are stored little-endian, and must
// fit in size bytes as either a signed or unsigned value.
func ParseBytes(word string, size int) (data []byte, err error) {
	if size <= 0 || size > 8 {
		err = ErrInvalidArgument
		return
	}

	if len(word) >= 2 && isQuoted(word) {
		data, err = unescape(word[1 : len(word)-1])
		if err != nil {
			return
		}
		if len(data) != size {
			err = ErrInvalidArgument
			data = nil
		}
		return
	}

	digits, base := splitPrefix(strings.ReplaceAll(word, "_", ""))
	switch base {
	case 16:
		return parseDigitBytes(digits, 16, 2, size)
	case 2:
		return parseDigitBytes(digits, 2, 8, size)
	}

	negative, magnitude, err := parseSigned(word, math.MaxUint64)
	if err != nil {
		return
	}

	bits := uint(size * 8)
	unsignedMax := uint64(math.MaxUint64) >> (64 - bits)
	signedMin := uint64(1) << (bits - 1)
	if (negative && magnitude > signedMin) || (!negative && magnitude > unsignedMax) {
		err = ErrNumericOverflow
		return
	}

	value := magnitude
	if negative {
		value = -magnitude
	}

	var buff [8]byte
	binary.LittleEndian.PutUint64(buff[:], value)
	data = buff[:size]

	return
}

// isQuoted returns true if word is delimited by matching quotes.
func isQuoted(word string) bool {
	first := word[0]
	last := word[len(word)-1]
	return (first == '"' || first == '\'') && first == last
}
