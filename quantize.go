package dwtile

import "math"

// Fixed-point requantization shared by the scalar path and the engine
// simulator. Both paths call the exact same routine, which is what makes
// the accelerated output bit-identical to the reference output.

// MultiplyByQuantizedMultiplier scales a 32-bit accumulator by the
// per-channel fixed-point multiplier: the product acc * multiplier is a
// Q31 value, arithmetically shifted right by a further `shift` bits
// (negative shift means left). A single rounding is applied at the final
// bit position, round-half-to-even, then the result saturates to int32.
func MultiplyByQuantizedMultiplier(acc, multiplier, shift int32) int32 {
	product := int64(acc) * int64(multiplier)
	total := 31 + int(shift)
	if total <= 0 {
		return saturate32(product << uint(-total))
	}
	return saturate32(roundHalfEvenShift(product, uint(total)))
}

// Requantize converts an accumulator to an int8 output value: scale by
// the channel multiplier, add the output offset, clamp to the activation
// range, narrow.
func Requantize(acc int32, q RequantizeParams, outputOffset, actMin, actMax int32) int8 {
	scaled := MultiplyByQuantizedMultiplier(acc, q.Multiplier, q.Shift)
	scaled += outputOffset
	if scaled < actMin {
		scaled = actMin
	}
	if scaled > actMax {
		scaled = actMax
	}
	return int8(scaled)
}

// roundHalfEvenShift computes v / 2^n with round-half-to-even.
func roundHalfEvenShift(v int64, n uint) int64 {
	if n == 0 {
		return v
	}
	q := v >> n
	rem := v - q<<n // in [0, 2^n)
	half := int64(1) << (n - 1)
	if rem > half || (rem == half && q&1 != 0) {
		q++
	}
	return q
}

func saturate32(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
