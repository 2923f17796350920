package sorter

import (
	"fmt"
	"math"
)

// signBit is the sign bit of a width-byte two's complement integer.
func signBit(width int) uint32 {
	return 1 << (8*width - 1)
}

// widthMask keeps the low width bytes of a key.
func widthMask(width int) uint32 {
	return uint32(uint64(1)<<(8*width) - 1)
}

// FlipSigned maps the bits of a width-byte signed integer onto an unsigned
// key with the same ordering: the most negative value becomes 0 and the most
// positive becomes the largest key. Bits above the element width must be zero.
func FlipSigned(bits uint32, width int) uint32 {
	return bits ^ signBit(width)
}

// UnflipSigned inverts FlipSigned.
func UnflipSigned(key uint32, width int) uint32 {
	return key ^ signBit(width)
}

// FlipFloat maps float32 bits onto an unsigned key whose order matches the
// numeric order of the floats. Non-negative values get their sign bit set;
// negative values have every bit inverted, so larger magnitudes sort lower.
// NaN patterns land at the extremes in an unspecified order.
func FlipFloat(bits uint32) uint32 {
	mask := uint32(int32(bits)>>31) | 0x80000000
	return bits ^ mask
}

// UnflipFloat inverts FlipFloat. A key with the top bit set came from a
// non-negative float; a key with the top bit clear came from a negative one.
func UnflipFloat(key uint32) uint32 {
	mask := ((key >> 31) - 1) | 0x80000000
	return key ^ mask
}

// loadKeys writes the order-preserving unsigned key of every element of data
// into keys. sh must be radixable.
func loadKeys[T Number](keys []uint32, data []T, sh Shape) {
	switch sh.Kind {
	case Unsigned:
		for i, v := range data {
			keys[i] = uint32(v)
		}
	case Signed:
		mask, sign := widthMask(sh.Width), signBit(sh.Width)
		for i, v := range data {
			keys[i] = (uint32(v) & mask) ^ sign
		}
	case Float:
		for i, v := range data {
			keys[i] = FlipFloat(math.Float32bits(float32(v)))
		}
	default:
		panic(fmt.Sprintf("sorter: cannot build keys for %s", sh))
	}
}

// DecodeKey converts a key back into the value it was built from.
func DecodeKey(sh Shape, key uint32) (float64, error) {
	if !sh.Radixable() {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedWidth, sh)
	}
	switch sh.Kind {
	case Unsigned:
		return float64(key & widthMask(sh.Width)), nil
	case Signed:
		raw := UnflipSigned(key&widthMask(sh.Width), sh.Width)
		shift := uint(32 - 8*sh.Width)
		return float64(int32(raw<<shift) >> shift), nil
	default:
		return float64(math.Float32frombits(UnflipFloat(key))), nil
	}
}

// DecodeBucket returns the smallest value whose most significant key byte
// is b, which is the lower edge of bucket b in the last histogram.
func DecodeBucket(sh Shape, b byte) (float64, error) {
	if !sh.Radixable() {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedWidth, sh)
	}
	return DecodeKey(sh, uint32(b)<<(8*(sh.Width-1)))
}
