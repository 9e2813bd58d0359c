package dwtile

import "fmt"

// unpackOutputs decodes the drained word stream into the destination
// tensor. Words arrive per channel in row-major tile order; each word's
// four bytes are the int8 outputs of one 2x2 tile in lane order
// byte0 -> (y, x), byte1 -> (y, x+1), byte2 -> (y+1, x),
// byte3 -> (y+1, x+1). The int8 conversions keep two's-complement
// signedness.
func unpackOutputs(s *Scratch, g tileGeometry, output *Tensor) error {
	idx := 0
	for c := 0; c < g.depth; c++ {
		for y := 0; y < output.H; y += 2 {
			for x := 0; x < output.W; x += 2 {
				w := s.out[idx]
				idx++
				output.Set(y, x, c, int8(w))
				output.Set(y, x+1, c, int8(w>>8))
				output.Set(y+1, x, c, int8(w>>16))
				output.Set(y+1, x+1, c, int8(w>>24))
			}
		}
	}
	if idx != len(s.out) {
		return NewProtocolError("Unpack", fmt.Sprintf(
			"consumed %d output words, drained %d", idx, len(s.out)), nil)
	}
	return nil
}
