// Package sim is a software model of the depthwise convolution compute
// engine, implementing engine.Port for host-only testing. It reproduces
// the engine's observable contract word for word: the packed tile input
// layout, the circular per-channel parameter stores, the packed filter
// word encoding, and the packed output word lane order. Arithmetic goes
// through the same requantization routine as the scalar reference path.
package sim

import (
	"fmt"
	"time"

	"github.com/edgekernel/dwtile"
	"github.com/edgekernel/dwtile/engine"
)

type channelParams struct {
	multiplier int32
	shift      int32
	bias       int32
}

// Engine is a synchronous model of the compute engine. It is not safe
// for concurrent use; like the hardware, it serves one caller at a time.
type Engine struct {
	enabled bool

	numTiles        int32
	inputWidth      int32
	inputDepthWords int32
	outputBatch     int32
	inputOffset     int32
	outputOffset    int32
	actMin          int32
	actMax          int32

	params  []channelParams
	pending channelParams
	phase   int // next expected store: 0 multiplier, 1 shift, 2 bias

	filterWords []uint32

	inWords []uint32
	outFIFO []uint32
	runs    int

	// ReadTimeout bounds how long ReadOutput pretends to wait for a
	// result before reporting engine.ErrReadTimeout. Zero fails fast.
	ReadTimeout time.Duration
}

// New returns a disabled engine with empty stores.
func New() *Engine {
	return &Engine{}
}

func (e *Engine) setConfig(dst *int32, v int32) error {
	if e.enabled {
		return engine.ErrBadPhase
	}
	*dst = v
	return nil
}

// SetEnable implements engine.Port. Disabling clears all dynamic state
// so the engine can be reconfigured for the next call.
func (e *Engine) SetEnable(v int32) error {
	if v != 0 {
		if e.phase != 0 {
			return fmt.Errorf("engine: channel parameter store truncated mid-triple")
		}
		e.enabled = true
		return nil
	}
	e.enabled = false
	e.params = e.params[:0]
	e.filterWords = e.filterWords[:0]
	e.inWords = e.inWords[:0]
	e.outFIFO = e.outFIFO[:0]
	e.runs = 0
	e.phase = 0
	return nil
}

func (e *Engine) SetNumTiles(n int32) error        { return e.setConfig(&e.numTiles, n) }
func (e *Engine) SetInputWidth(w int32) error      { return e.setConfig(&e.inputWidth, w) }
func (e *Engine) SetInputDepthWords(n int32) error { return e.setConfig(&e.inputDepthWords, n) }
func (e *Engine) SetOutputBatchSize(n int32) error { return e.setConfig(&e.outputBatch, n) }
func (e *Engine) SetInputOffset(v int32) error     { return e.setConfig(&e.inputOffset, v) }
func (e *Engine) SetOutputOffset(v int32) error    { return e.setConfig(&e.outputOffset, v) }
func (e *Engine) SetActivationMin(v int32) error   { return e.setConfig(&e.actMin, v) }
func (e *Engine) SetActivationMax(v int32) error   { return e.setConfig(&e.actMax, v) }

// StoreOutputMultiplier implements engine.Port. The three per-channel
// stores must arrive as (multiplier, shift, bias) triples.
func (e *Engine) StoreOutputMultiplier(v int32) error {
	if e.enabled || e.phase != 0 {
		return engine.ErrBadPhase
	}
	e.pending.multiplier = v
	e.phase = 1
	return nil
}

func (e *Engine) StoreOutputShift(v int32) error {
	if e.enabled || e.phase != 1 {
		return engine.ErrBadPhase
	}
	e.pending.shift = v
	e.phase = 2
	return nil
}

func (e *Engine) StoreOutputBias(v int32) error {
	if e.enabled || e.phase != 2 {
		return engine.ErrBadPhase
	}
	e.pending.bias = v
	e.params = append(e.params, e.pending)
	e.phase = 0
	return nil
}

func (e *Engine) StoreFilterWord(w uint32) error {
	if e.enabled {
		return engine.ErrBadPhase
	}
	e.filterWords = append(e.filterWords, w)
	return nil
}

func (e *Engine) StoreInputWord(w uint32) error {
	if !e.enabled {
		return engine.ErrBadPhase
	}
	e.inWords = append(e.inWords, w)
	return nil
}

// Run computes one channel from the streamed tile words and queues the
// packed output words. Channels advance in store order, wrapping
// circularly like the hardware parameter stores.
func (e *Engine) Run() error {
	if !e.enabled {
		return engine.ErrBadPhase
	}
	if len(e.params) == 0 {
		return fmt.Errorf("engine: no output channel parameters stored")
	}
	if len(e.filterWords) != engine.FilterWordsPerChannel*len(e.params) {
		return fmt.Errorf("engine: %d filter words stored for %d channels",
			len(e.filterWords), len(e.params))
	}

	rowStride := int(e.inputDepthWords)
	storeW := int(e.inputWidth)
	if storeW < 2 || rowStride < storeW {
		return fmt.Errorf("engine: inconsistent geometry: input width %d, row stride %d",
			storeW, rowStride)
	}
	if len(e.inWords) == 0 || len(e.inWords)%rowStride != 0 {
		return fmt.Errorf("engine: input stream of %d words is not a whole number of %d-word rows",
			len(e.inWords), rowStride)
	}
	storeH := len(e.inWords) / rowStride

	// Rebuild the padded sample grid. Tile (ty, tx) carries the 2x2
	// block whose top-left sample sits at padded coordinate (2ty, 2tx);
	// the grid origin is one sample above and left of the image.
	gridH, gridW := 2*storeH, 2*storeW
	grid := make([]int8, gridH*gridW)
	for ty := 0; ty < storeH; ty++ {
		row := e.inWords[ty*rowStride : (ty+1)*rowStride]
		for tx := 0; tx < storeW; tx++ {
			w := row[tx]
			grid[(2*ty)*gridW+2*tx] = int8(w)
			grid[(2*ty)*gridW+2*tx+1] = int8(w >> 8)
			grid[(2*ty+1)*gridW+2*tx] = int8(w >> 16)
			grid[(2*ty+1)*gridW+2*tx+1] = int8(w >> 24)
		}
		for k := storeW; k < rowStride; k++ {
			if row[k] != 0 {
				return fmt.Errorf("engine: non-zero alignment pad word %#x in tile row %d", row[k], ty)
			}
		}
	}

	outH, outW := 2*(storeH-1), 2*(storeW-1)
	if (outH/2)*(outW/2) != int(e.numTiles) {
		return fmt.Errorf("engine: streamed geometry yields %d output tiles, configured %d",
			(outH/2)*(outW/2), e.numTiles)
	}

	ch := e.runs % len(e.params)
	p := e.params[ch]
	taps := decodeFilter(e.filterWords[engine.FilterWordsPerChannel*ch:])
	q := dwtile.RequantizeParams{Multiplier: p.multiplier, Shift: p.shift}

	out := make([]int8, outH*outW)
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			acc := p.bias
			for fy := 0; fy < 3; fy++ {
				for fx := 0; fx < 3; fx++ {
					s := int32(grid[(y+fy)*gridW+(x+fx)])
					acc += taps[fy*3+fx] * (s + e.inputOffset)
				}
			}
			out[y*outW+x] = dwtile.Requantize(acc, q, e.outputOffset, e.actMin, e.actMax)
		}
	}

	for y := 0; y < outH; y += 2 {
		for x := 0; x < outW; x += 2 {
			word := uint32(uint8(out[y*outW+x])) |
				uint32(uint8(out[y*outW+x+1]))<<8 |
				uint32(uint8(out[(y+1)*outW+x]))<<16 |
				uint32(uint8(out[(y+1)*outW+x+1]))<<24
			e.outFIFO = append(e.outFIFO, word)
		}
	}

	e.inWords = e.inWords[:0]
	e.runs++
	return nil
}

// ReadOutput implements engine.Port. With no queued result the real
// engine would stall the bus; the model waits out the configured timeout
// and reports it.
func (e *Engine) ReadOutput() (uint32, error) {
	if !e.enabled {
		return 0, engine.ErrBadPhase
	}
	if len(e.outFIFO) == 0 {
		if e.ReadTimeout > 0 {
			time.Sleep(e.ReadTimeout)
		}
		return 0, engine.ErrReadTimeout
	}
	w := e.outFIFO[0]
	e.outFIFO = e.outFIFO[1:]
	return w, nil
}

// decodeFilter unpacks three filter words into nine signed taps in
// row-major order.
func decodeFilter(words []uint32) [9]int32 {
	var taps [9]int32
	for i := 0; i < 4; i++ {
		taps[i] = int32(int8(words[0] >> (8 * i)))
		taps[4+i] = int32(int8(words[1] >> (8 * i)))
	}
	taps[8] = int32(int8(words[2]))
	return taps
}
