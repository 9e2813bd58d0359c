package dwtile

import "github.com/edgekernel/dwtile/engine"

// writeConfiguration programs the engine for one call. The sequence is a
// protocol contract: geometry and offset registers first, then the
// per-channel (multiplier, shift, bias) triples, then the packed filter
// words, and only then the enable switch. Nothing may be streamed before
// every write below has completed.
func writeConfiguration(port engine.Port, g tileGeometry, p *DepthwiseParams,
	bias []int32, quant []RequantizeParams, filter *Tensor) error {

	writes := []func() error{
		func() error { return port.SetNumTiles(int32(g.numTiles)) },
		func() error { return port.SetInputWidth(int32(g.storeW)) },
		func() error { return port.SetInputDepthWords(int32(g.storeW + g.pad)) },
		func() error { return port.SetOutputBatchSize(int32(g.numTiles * 4)) },
		func() error { return port.SetInputOffset(p.InputOffset) },
		func() error { return port.SetOutputOffset(p.OutputOffset) },
		func() error { return port.SetActivationMin(p.ActivationMin) },
		func() error { return port.SetActivationMax(p.ActivationMax) },
	}
	for _, w := range writes {
		if err := w(); err != nil {
			return NewEngineError("Configure", err)
		}
	}

	for c := 0; c < g.depth; c++ {
		if err := port.StoreOutputMultiplier(quant[c].Multiplier); err != nil {
			return NewEngineError("StoreOutputMultiplier", err)
		}
		if err := port.StoreOutputShift(quant[c].Shift); err != nil {
			return NewEngineError("StoreOutputShift", err)
		}
		if err := port.StoreOutputBias(bias[c]); err != nil {
			return NewEngineError("StoreOutputBias", err)
		}
	}

	for c := 0; c < g.depth; c++ {
		for _, w := range packFilterWords(filter, c) {
			if err := port.StoreFilterWord(w); err != nil {
				return NewEngineError("StoreFilterWord", err)
			}
		}
	}

	// Enable only after the last configuration word has landed.
	if err := port.SetEnable(1); err != nil {
		return NewEngineError("Enable", err)
	}
	return nil
}

// packFilterWords encodes one channel's 3x3 kernel into the engine's
// three-word format: taps 0..3 byte-packed little-endian, taps 4..7
// likewise, tap 8 in the low byte of the final word.
func packFilterWords(filter *Tensor, c int) [engine.FilterWordsPerChannel]uint32 {
	b := func(fy, fx int) uint32 { return uint32(uint8(filter.At(fy, fx, c))) }
	return [engine.FilterWordsPerChannel]uint32{
		b(0, 0) | b(0, 1)<<8 | b(0, 2)<<16 | b(1, 0)<<24,
		b(1, 1) | b(1, 2)<<8 | b(2, 0)<<16 | b(2, 1)<<24,
		b(2, 2),
	}
}
