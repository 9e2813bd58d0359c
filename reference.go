// Package dwtile reference implementations for verification
package dwtile

import "math/bits"

// Reference contains simple, correct implementations of the depthwise
// convolution kernels. The int8 variant is both the fallback path when
// the engine is not used and the correctness oracle for the tiled path;
// it must stay a direct transcription of the accumulation contract.
type Reference struct{}

// DepthwiseConvInt8 computes the per-channel quantized depthwise
// convolution directly: for every output pixel and channel, accumulate
// filter_tap * (sample + input_offset) over the 3x3 window, skipping
// taps that fall outside the image, add bias, then requantize.
func (r Reference) DepthwiseConvInt8(p *DepthwiseParams, input, filter *Tensor,
	bias []int32, quant []RequantizeParams, output *Tensor) {

	for outY := 0; outY < output.H; outY++ {
		for outX := 0; outX < output.W; outX++ {
			inYOrigin := outY*p.StrideH - p.PadH
			inXOrigin := outX*p.StrideW - p.PadW
			for c := 0; c < input.C; c++ {
				var acc int32
				for fy := 0; fy < filter.H; fy++ {
					for fx := 0; fx < filter.W; fx++ {
						inY := inYOrigin + fy
						inX := inXOrigin + fx
						if inY < 0 || inY >= input.H || inX < 0 || inX >= input.W {
							continue
						}
						sample := int32(input.At(inY, inX, c))
						tap := int32(filter.At(fy, fx, c))
						acc += tap * (sample + p.InputOffset)
					}
				}
				acc += bias[c]
				output.Set(outY, outX, c,
					Requantize(acc, quant[c], p.OutputOffset, p.ActivationMin, p.ActivationMax))
			}
		}
	}
}

// DepthwiseConvInt16 is the 16-bit activation variant kept for interface
// compatibility with symmetric int16 quantization schemes. Inputs carry
// no zero-point; accumulation is 64-bit with int64 bias. It is plain
// reference code with no accelerated counterpart.
func (r Reference) DepthwiseConvInt16(p *DepthwiseParams, input []int16, inH, inW, depth int,
	filter *Tensor, bias []int64, quant []RequantizeParams, output []int16, outH, outW int) {

	for outY := 0; outY < outH; outY++ {
		for outX := 0; outX < outW; outX++ {
			inYOrigin := outY*p.StrideH - p.PadH
			inXOrigin := outX*p.StrideW - p.PadW
			for c := 0; c < depth; c++ {
				var acc int64
				for fy := 0; fy < filter.H; fy++ {
					for fx := 0; fx < filter.W; fx++ {
						inY := inYOrigin + fy
						inX := inXOrigin + fx
						if inY < 0 || inY >= inH || inX < 0 || inX >= inW {
							continue
						}
						sample := int64(input[(inY*inW+inX)*depth+c])
						tap := int64(filter.At(fy, fx, c))
						acc += tap * sample
					}
				}
				acc += bias[c]
				scaled := multiplyByQuantizedMultiplier64(acc, quant[c].Multiplier, quant[c].Shift)
				if scaled < p.ActivationMin {
					scaled = p.ActivationMin
				}
				if scaled > p.ActivationMax {
					scaled = p.ActivationMax
				}
				output[(outY*outW+outX)*depth+c] = int16(scaled)
			}
		}
	}
}

// multiplyByQuantizedMultiplier64 is the 64-bit accumulator form used by
// the int16 variant. Same rounding contract as the 32-bit version: the
// full product is formed exactly in 128 bits and a single
// round-half-to-even is applied at bit 31+shift. Half-to-even is
// symmetric around zero, so the rounding runs on magnitudes and the sign
// is applied afterwards.
func multiplyByQuantizedMultiplier64(acc int64, multiplier, shift int32) int32 {
	total := 31 + int(shift)
	if total <= 0 {
		return saturate32(acc * int64(multiplier) << uint(-total))
	}

	neg := false
	a, b := acc, int64(multiplier)
	if a < 0 {
		neg = true
		a = -a
	}
	if b < 0 {
		neg = !neg
		b = -b
	}

	hi, lo := bits.Mul64(uint64(a), uint64(b))
	n := uint(total) // at most 61 given shift <= 30
	q := hi<<(64-n) | lo>>n
	rem := lo & (1<<n - 1)
	half := uint64(1) << (n - 1)
	if rem > half || (rem == half && q&1 != 0) {
		q++
	}

	v := int64(q)
	if neg {
		v = -v
	}
	return saturate32(v)
}
