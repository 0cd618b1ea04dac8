// internal/codec/codec.go
package codec

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Pure register conversions. No IO, no state.

// Signed16 recovers a two's complement int16 from a raw register.
func Signed16(w uint16) int16 {
	return int16(w)
}

// Signed32 recovers a two's complement int32 from a combined register pair.
func Signed32(w uint32) int32 {
	return int32(w)
}

// Combine32 joins a register pair. The high word precedes the low word.
func Combine32(hi, lo uint16) uint32 {
	return uint32(hi)<<16 | uint32(lo)
}

// Scaled returns raw * 10^exp rounded half-up to -exp decimal places.
// Registers only ever scale by powers of ten, so the result is exact.
func Scaled(raw int64, exp int32) decimal.Decimal {
	return ScaledBy(raw, decimal.New(1, exp), -exp)
}

// ScaledBy returns raw * mult rounded half away from zero to places.
func ScaledBy(raw int64, mult decimal.Decimal, places int32) decimal.Decimal {
	return decimal.NewFromInt(raw).Mul(mult).Round(places)
}

// ASCIIPairs unpacks two characters per register (high byte first) and
// strips trailing NULs. NULs inside the string are kept.
func ASCIIPairs(words []uint16) string {
	var b strings.Builder
	b.Grow(len(words) * 2)
	for _, w := range words {
		b.WriteRune(rune(w >> 8))
		b.WriteRune(rune(w & 0xFF))
	}
	return strings.TrimRight(b.String(), "\x00")
}

// PackASCIIPairs is the inverse of ASCIIPairs for ASCII input.
// An odd trailing byte is padded with NUL.
func PackASCIIPairs(s string) []uint16 {
	b := []byte(s)
	out := make([]uint16, (len(b)+1)/2)
	for i := 0; i < len(b); i += 2 {
		var lo byte
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(b[i])<<8 | uint16(lo)
	}
	return out
}
