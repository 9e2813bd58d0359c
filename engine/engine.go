// Package engine defines the instruction-level interface to the depthwise
// convolution compute engine.
//
// The engine is a fixed-function peer reachable only through ordered,
// blocking register-style instructions. Every method corresponds to one
// instruction; implementations must preserve issue order and must not
// reorder or coalesce writes. Configuration, per-channel parameter and
// filter stores happen while the engine is disabled; SetEnable(1) freezes
// the configuration, after which only input streaming, compute triggers
// and output reads are legal until SetEnable(0) clears the dynamic state.
package engine

import "errors"

// Port is the ordered instruction set of the compute engine. All calls
// block until the engine has accepted the instruction; ReadOutput blocks
// until a result word is available or the implementation's read timeout
// elapses, in which case it returns ErrReadTimeout.
type Port interface {
	// SetEnable switches the engine between the configuration phase (0)
	// and the streaming phase (1). Disabling clears dynamic state.
	SetEnable(v int32) error

	// Geometry and quantization registers, write-once per call.
	SetNumTiles(n int32) error
	SetInputWidth(w int32) error
	SetInputDepthWords(n int32) error
	SetOutputBatchSize(n int32) error
	SetInputOffset(v int32) error
	SetOutputOffset(v int32) error
	SetActivationMin(v int32) error
	SetActivationMax(v int32) error

	// Per-channel parameter stores, written as (multiplier, shift, bias)
	// triples in channel order.
	StoreOutputMultiplier(v int32) error
	StoreOutputShift(v int32) error
	StoreOutputBias(v int32) error

	// StoreFilterWord appends one packed filter word; each channel's 3x3
	// kernel occupies exactly three words.
	StoreFilterWord(w uint32) error

	// StoreInputWord streams one packed 2x2 input tile word.
	StoreInputWord(w uint32) error

	// Run triggers the compute pass over the streamed channel.
	Run() error

	// ReadOutput retrieves one packed output word.
	ReadOutput() (uint32, error)
}

// ErrReadTimeout is returned by ReadOutput when no result word arrives
// within the implementation's configured timeout.
var ErrReadTimeout = errors.New("engine: output read timed out")

// ErrBadPhase is returned when an instruction is issued in the wrong
// phase, e.g. a configuration write while the engine is enabled.
var ErrBadPhase = errors.New("engine: instruction issued in wrong phase")

// FilterWordsPerChannel is the number of packed words holding one 3x3
// kernel: taps 0..3, taps 4..7, tap 8 in the low byte.
const FilterWordsPerChannel = 3
