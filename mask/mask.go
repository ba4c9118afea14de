// Package mask provides operations to extract and pack ranges of decimal
// digits from an int.
//
// All digit indices must be 1-indexed, and ranges must be inclusive, counted
// from the least-significant digit outward.

package mask

import (
	_math "math"
)

// A DigitIndex provides compile-time safety when indexing into the decimal
// digits of an int.
type DigitIndex int

const (
	D1 DigitIndex = iota + 1
	D2
	D3
	D4
	D5
	D6
	D7
	D8
)

func checkDigitRange(start DigitIndex, end DigitIndex) {
	if start > end {
		panic("Invalid range provided -- start must <= end.")
	}
}

func pow10(n DigitIndex) int {
	return int(_math.Pow10(int(n)))
}

// Last extracts the last n decimal digits of v.
func Last(v int, n DigitIndex) int {
	return v % pow10(n)
}

func lastLoop(v int, n DigitIndex) int {
	mod := 1
	for range int(n) {
		mod *= 10
	}
	return v % mod
}

// First extracts the leading n digits of v, given v occupies at most width
// decimal digits.
func First(v int, n DigitIndex, width DigitIndex) int {
	if n > width {
		panic("Invalid range provided -- n cannot exceed width.")
	}
	return v / pow10(width-n)
}

// Digit extracts the single digit of v at the given 1-indexed position,
// counted from the least-significant digit; Digit(v, D1) is the ones digit.
func Digit(v int, pos DigitIndex) int {
	return (v / pow10(pos-1)) % 10
}

// Range extracts the inclusive range of digits [start:end] from v. Both start
// and end are 1-indexed from the least-significant digit.
func Range(v int, start DigitIndex, end DigitIndex) int {
	checkDigitRange(start, end)
	return (v % pow10(end)) / pow10(start-1)
}

// Pack combines digits (most significant first) at the given 1-indexed
// place values into a single int. For example, packing a PSW's condition
// code, mode, and interrupt-enable as cc*100 + mode*10 + ie is
// Pack([]int{cc, mode, ie}, []DigitIndex{D3, D2, D1}).
func Pack(digits []int, places []DigitIndex) int {
	if len(digits) != len(places) {
		panic("Invalid arguments -- digits and places must be the same length.")
	}
	total := 0
	for i, d := range digits {
		total += d * pow10(places[i]-1)
	}
	return total
}
