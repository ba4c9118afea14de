// Package word implements the machine's fundamental datum: a signed-magnitude
// decimal value. Every register, every memory cell, and every instruction is
// one Word.
package word

// MaxMagnitude is the largest magnitude a Word may hold after any arithmetic
// operation (I3). Instruction words loaded directly by the loader are exempt:
// the high-order opcode/mode/value fields can pack up to 8 decimal digits,
// which is why Word itself does not enforce this bound on construction.
const MaxMagnitude = 9_999_999

// SentinelMagnitude marks the end-of-program word (§6). The sign digit is the
// reserved marker bit; by convention the sentinel's sign is 0.
const SentinelMagnitude = 9_999_999

// A Word is the machine's signed-magnitude datum: a sign flag (0 = non
// negative, 1 = negative) and an unsigned decimal magnitude.
type Word struct {
	Sign      int
	Magnitude int
}

// Zero is the additive identity, positively signed.
var Zero = Word{}

// FromInt converts a signed integer into sign-magnitude form.
func FromInt(v int) Word {
	if v < 0 {
		return Word{Sign: 1, Magnitude: -v}
	}
	return Word{Sign: 0, Magnitude: v}
}

// ToInt converts a Word back into a signed integer (P1's round-trip partner
// of FromInt).
func (w Word) ToInt() int {
	if w.Sign == 1 {
		return -w.Magnitude
	}
	return w.Magnitude
}

// IsZero reports whether w is numerically zero. Negative zero ({Sign: 1,
// Magnitude: 0}) is representable but compares equal to positive zero, per
// §3.
func (w Word) IsZero() bool {
	return w.Magnitude == 0
}

// Overflows reports whether w's magnitude exceeds the bound a data word may
// carry after an arithmetic operation (I3). Instruction words are never
// passed through this check.
func (w Word) Overflows() bool {
	return w.Magnitude > MaxMagnitude
}

// Sentinel is the reserved end-of-program marker (§6): a Word whose magnitude
// equals 9 999 999 and whose sign is the reserved marker value 0.
var Sentinel = Word{Sign: 0, Magnitude: SentinelMagnitude}

// IsSentinel reports whether w is the end-of-program marker.
func (w Word) IsSentinel() bool {
	return w.Sign == Sentinel.Sign && w.Magnitude == SentinelMagnitude
}

// Truncate re-encodes a wide arithmetic result into sign-magnitude form,
// wrapping the magnitude modulo 10 000 000 as §4.4 requires on overflow. The
// sign of the truncated result is preserved.
func Truncate(res int64) Word {
	neg := res < 0
	mag := res
	if neg {
		mag = -mag
	}
	mag %= 10_000_000
	w := Word{Magnitude: int(mag)}
	if neg {
		w.Sign = 1
	}
	return w
}
