package word

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	// P1: word-to-int(int-to-word(v)) = v for every representable v.
	for _, v := range []int{0, 1, -1, 42, -42, 9_999_999, -9_999_999, 300, -300} {
		assert.Equal(t, v, FromInt(v).ToInt(), "round-trip failed for %d", v)
	}
}

func TestNegativeZero(t *testing.T) {
	negZero := Word{Sign: 1, Magnitude: 0}
	assert.True(t, negZero.IsZero())
	assert.True(t, Zero.IsZero())
	assert.Equal(t, 0, negZero.ToInt())
}

func TestOverflows(t *testing.T) {
	assert.False(t, FromInt(9_999_999).Overflows())
	assert.True(t, Word{Magnitude: 10_000_000}.Overflows())
}

func TestSentinel(t *testing.T) {
	assert.True(t, Sentinel.IsSentinel())
	assert.False(t, FromInt(42).IsSentinel())
}

func TestTruncate(t *testing.T) {
	w := Truncate(10_000_042)
	assert.Equal(t, 42, w.ToInt())

	w = Truncate(-10_000_042)
	assert.Equal(t, -42, w.ToInt())

	w = Truncate(9_999_999)
	assert.Equal(t, 9_999_999, w.ToInt())
}
