package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to the closed range [lo, hi]
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Abs returns the absolute value of v
func Abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// Mod returns the non-negative remainder of a divided by m
func Mod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
