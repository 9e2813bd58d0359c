package dwtile

import (
	"errors"
	"fmt"

	"github.com/edgekernel/dwtile/engine"
)

// runTiledPath executes one call on the engine: pack every channel into
// the scratch arena, program the configuration, then stream, trigger and
// drain each channel strictly in sequence before unpacking.
func runTiledPath(port engine.Port, s *Scratch, p *DepthwiseParams,
	input, filter *Tensor, bias []int32, quant []RequantizeParams, output *Tensor) error {

	g := newTileGeometry(input)

	s.Reset()
	if err := s.reserve(g.depth*g.inputBytesPerChannel(), g.depth*g.numTiles); err != nil {
		return err
	}
	if err := packTiles(s, g, input, p.InputOffset); err != nil {
		return err
	}
	if err := writeConfiguration(port, g, p, bias, quant, filter); err != nil {
		return err
	}

	for c := 0; c < g.depth; c++ {
		if err := streamChannel(port, s, g, c); err != nil {
			return err
		}
	}

	if err := port.SetEnable(0); err != nil {
		return NewEngineError("Disable", err)
	}

	if got, want := len(s.out), g.depth*g.numTiles; got != want {
		return NewProtocolError("Drain", fmt.Sprintf(
			"drained %d output words across %d channels, expected %d", got, g.depth, want), nil)
	}
	return unpackOutputs(s, g, output)
}

// streamChannel sends one channel's packed tile words, padding each tile
// row up to the engine's burst alignment, triggers the compute pass, and
// drains exactly numTiles output words. The word counts are asserted at
// the channel boundary so a desynchronization is caught before it can
// corrupt the next channel.
func streamChannel(port engine.Port, s *Scratch, g tileGeometry, c int) error {
	base := c * g.inputBytesPerChannel()
	end := base + g.inputBytesPerChannel()
	if end > len(s.in) {
		return NewProtocolError("Stream", fmt.Sprintf(
			"channel %d needs packed bytes [%d, %d), arena holds %d", c, base, end, len(s.in)), nil)
	}

	buf := s.in[base:end]
	sent := 0
	for row := 0; row < g.storeH; row++ {
		for col := 0; col < g.storeW; col++ {
			w := uint32(uint8(buf[0])) |
				uint32(uint8(buf[1]))<<8 |
				uint32(uint8(buf[2]))<<16 |
				uint32(uint8(buf[3]))<<24
			buf = buf[4:]
			if err := port.StoreInputWord(w); err != nil {
				return NewEngineError("StoreInputWord", err)
			}
			sent++
		}
		for k := 0; k < g.pad; k++ {
			if err := port.StoreInputWord(0); err != nil {
				return NewEngineError("StoreInputWord", err)
			}
			sent++
		}
	}
	// sent counts port writes; buf tracks bytes actually drained from
	// the arena, so the two sides of the check are independent.
	consumed := g.inputBytesPerChannel() - len(buf)
	if want := consumed/4 + g.storeH*g.pad; len(buf) != 0 || sent != want {
		return NewProtocolError("Stream", fmt.Sprintf(
			"channel %d sent %d words with %d packed bytes left over, expected %d words",
			c, sent, len(buf), want), nil)
	}

	if err := port.Run(); err != nil {
		return NewEngineError("Run", err)
	}

	for i := 0; i < g.numTiles; i++ {
		w, err := port.ReadOutput()
		if err != nil {
			if errors.Is(err, engine.ErrReadTimeout) {
				return NewTimeoutError("ReadOutput", fmt.Sprintf(
					"channel %d stalled at output word %d of %d", c, i, g.numTiles), err)
			}
			return NewProtocolError("ReadOutput", fmt.Sprintf(
				"channel %d failed at output word %d of %d", c, i, g.numTiles), err)
		}
		if err := s.appendWord(w); err != nil {
			return err
		}
	}
	return nil
}
