package util

import (
	"math"

	"github.com/fogleman/ease"
)

// Clamp limits v to the range [min, max].
func Clamp(v float64, min float64, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

// EaseOutInt interpolates between from and to with a quartic ease-out and
// floors the result. Progress is clamped to [0, 1]. The endpoints are returned
// exactly and the result never leaves [min(from, to), max(from, to)], even
// where float64 cannot represent the bounds.
func EaseOutInt(from int, to int, progress float64) int {
	eased := ease.OutQuart(Clamp(progress, 0, 1))
	if eased <= 0 {
		return from
	}
	if eased >= 1 {
		return to
	}

	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}

	v := math.Floor(float64(from) + (float64(to)-float64(from))*eased)
	if v <= float64(lo) {
		return lo
	}
	if v >= float64(hi) {
		return hi
	}
	return int(v)
}

// GenerateLut builds a rising then falling InOutQuad table.
func GenerateLut(length int) []float64 {
	increment := 1.0 / float64(length/2)
	lut := make([]float64, length)
	for i, j := 0, length-1; i < length/2; i, j = i+1, j-1 {
		value := float64(i) * increment
		lut[i] = ease.InOutQuad(value)
		lut[j] = ease.InOutQuad(value)
	}
	return lut
}
