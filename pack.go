package dwtile

// tileGeometry carries the derived transfer geometry for one tiled call.
// storeW is the tile-row width in words (inW/2 + 1): the tile grid covers
// the image plus one padded sample on every side, so a row of 2x2 tiles
// holds one more word than half the image width.
type tileGeometry struct {
	inH, inW, depth int
	storeW, storeH  int
	pad             int
	numTiles        int
}

// padWordTable maps (storeW mod 4) to the number of trailing zero words
// appended after each tile row. This is a protocol constant of the
// engine's burst alignment; it is deliberately a literal table, not a
// computation.
var padWordTable = [4]int{2, 1, 0, 3}

func newTileGeometry(input *Tensor) tileGeometry {
	storeW := input.W/2 + 1
	storeH := input.H/2 + 1
	return tileGeometry{
		inH:      input.H,
		inW:      input.W,
		depth:    input.C,
		storeW:   storeW,
		storeH:   storeH,
		pad:      padWordTable[storeW%4],
		numTiles: (input.H / 2) * (input.W / 2),
	}
}

// inputBytesPerChannel is the packed tile stream size of one channel
// before alignment padding: storeH x storeW tiles of four samples.
func (g tileGeometry) inputBytesPerChannel() int {
	return g.storeH * g.storeW * 4
}

// wordsPerChannelIn is the streamed word count of one channel including
// the alignment pad words after each tile row.
func (g tileGeometry) wordsPerChannelIn() int {
	return g.storeH * (g.storeW + g.pad)
}

// packTiles reshapes the feature map into the engine's transfer layout:
// channel-major, then tile rows stepping by 2 in y, tiles stepping by 2
// in x, then the four samples of each 2x2 window in row-major order.
// Positions outside the image take the negated input offset, the
// quantized encoding of real 0.0. Downstream components index this
// stream purely by position, so the iteration order here is a contract.
func packTiles(s *Scratch, g tileGeometry, input *Tensor, inputOffset int32) error {
	padValue := int8(-inputOffset)
	for c := 0; c < g.depth; c++ {
		for outY := 0; outY < g.inH+1; outY += 2 {
			inYOrigin := outY - 1
			for outX := 0; outX < g.inW+1; outX += 2 {
				inXOrigin := outX - 1
				for i := 0; i < 2; i++ {
					for j := 0; j < 2; j++ {
						inY := inYOrigin + i
						inX := inXOrigin + j
						v := padValue
						if inY >= 0 && inY < g.inH && inX >= 0 && inX < g.inW {
							v = input.At(inY, inX, c)
						}
						if err := s.appendSample(v); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}
