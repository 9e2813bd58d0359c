package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgekernel/dwtile/engine"
)

// configureTiny programs a 2x2 single-tile geometry with one channel at
// unity scale and an identity (center tap) filter.
func configureTiny(t *testing.T, e *Engine, bias int32) {
	t.Helper()
	require.NoError(t, e.SetNumTiles(1))
	require.NoError(t, e.SetInputWidth(2))
	require.NoError(t, e.SetInputDepthWords(2)) // storeW 2, pad 0
	require.NoError(t, e.SetOutputBatchSize(4))
	require.NoError(t, e.SetInputOffset(0))
	require.NoError(t, e.SetOutputOffset(0))
	require.NoError(t, e.SetActivationMin(-128))
	require.NoError(t, e.SetActivationMax(127))

	require.NoError(t, e.StoreOutputMultiplier(1<<30))
	require.NoError(t, e.StoreOutputShift(-1))
	require.NoError(t, e.StoreOutputBias(bias))

	// Identity kernel: tap 4 (center) is 1, all others 0.
	require.NoError(t, e.StoreFilterWord(0))
	require.NoError(t, e.StoreFilterWord(1))
	require.NoError(t, e.StoreFilterWord(0))
}

// streamTiny sends the packed tile stream for the 2x2 image {1,2,3,4}
// with a zero input offset.
func streamTiny(t *testing.T, e *Engine) {
	t.Helper()
	for _, w := range []uint32{0x01000000, 0x00020000, 0x00000300, 0x00000004} {
		require.NoError(t, e.StoreInputWord(w))
	}
}

func TestIdentityRun(t *testing.T) {
	e := New()
	configureTiny(t, e, 0)
	require.NoError(t, e.SetEnable(1))

	streamTiny(t, e)
	require.NoError(t, e.Run())

	w, err := e.ReadOutput()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04030201), w, "identity filter must reproduce the input tile")

	_, err = e.ReadOutput()
	assert.ErrorIs(t, err, engine.ErrReadTimeout, "FIFO must be empty after the single tile")
}

func TestPhaseEnforcement(t *testing.T) {
	e := New()
	configureTiny(t, e, 0)

	// Streaming before enable is a protocol error.
	assert.ErrorIs(t, e.StoreInputWord(0), engine.ErrBadPhase)
	assert.ErrorIs(t, e.Run(), engine.ErrBadPhase)
	_, err := e.ReadOutput()
	assert.ErrorIs(t, err, engine.ErrBadPhase)

	require.NoError(t, e.SetEnable(1))

	// Configuration after enable is a protocol error.
	assert.ErrorIs(t, e.SetNumTiles(1), engine.ErrBadPhase)
	assert.ErrorIs(t, e.StoreOutputMultiplier(1), engine.ErrBadPhase)
	assert.ErrorIs(t, e.StoreFilterWord(0), engine.ErrBadPhase)
}

func TestParamTripleOrder(t *testing.T) {
	e := New()
	// A triple must start with the multiplier.
	assert.ErrorIs(t, e.StoreOutputShift(0), engine.ErrBadPhase)
	assert.ErrorIs(t, e.StoreOutputBias(0), engine.ErrBadPhase)

	require.NoError(t, e.StoreOutputMultiplier(1<<30))
	assert.ErrorIs(t, e.StoreOutputBias(0), engine.ErrBadPhase)

	// Enabling mid-triple is rejected.
	assert.Error(t, e.SetEnable(1))

	require.NoError(t, e.StoreOutputShift(-1))
	require.NoError(t, e.StoreOutputBias(0))
	require.NoError(t, e.StoreFilterWord(0))
	require.NoError(t, e.StoreFilterWord(1))
	require.NoError(t, e.StoreFilterWord(0))
	require.NoError(t, e.SetEnable(1))
}

func TestFilterWordCountChecked(t *testing.T) {
	e := New()
	configureTiny(t, e, 0)
	require.NoError(t, e.StoreFilterWord(0)) // stray fourth word
	require.NoError(t, e.SetEnable(1))
	streamTiny(t, e)
	assert.Error(t, e.Run(), "filter store must hold exactly three words per channel")
}

func TestRowAlignmentValidated(t *testing.T) {
	e := New()
	configureTiny(t, e, 0)
	require.NoError(t, e.SetEnable(1))

	// Three words is not a whole number of two-word rows.
	for _, w := range []uint32{1, 2, 3} {
		require.NoError(t, e.StoreInputWord(w))
	}
	assert.Error(t, e.Run())
}

func TestNonZeroPadWordRejected(t *testing.T) {
	e := New()
	require.NoError(t, e.SetNumTiles(2)) // 4x2 image: 2 output tiles
	require.NoError(t, e.SetInputWidth(3))
	require.NoError(t, e.SetInputDepthWords(6)) // storeW 3, pad 3
	require.NoError(t, e.SetOutputBatchSize(8))
	require.NoError(t, e.SetInputOffset(0))
	require.NoError(t, e.SetOutputOffset(0))
	require.NoError(t, e.SetActivationMin(-128))
	require.NoError(t, e.SetActivationMax(127))
	require.NoError(t, e.StoreOutputMultiplier(1<<30))
	require.NoError(t, e.StoreOutputShift(-1))
	require.NoError(t, e.StoreOutputBias(0))
	require.NoError(t, e.StoreFilterWord(0))
	require.NoError(t, e.StoreFilterWord(1))
	require.NoError(t, e.StoreFilterWord(0))
	require.NoError(t, e.SetEnable(1))

	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			require.NoError(t, e.StoreInputWord(0))
		}
		for k := 0; k < 3; k++ {
			pad := uint32(0)
			if row == 1 && k == 2 {
				pad = 0xFF // corrupt one alignment word
			}
			require.NoError(t, e.StoreInputWord(pad))
		}
	}
	assert.Error(t, e.Run())
}

func TestChannelAdvance(t *testing.T) {
	e := New()
	configureTiny(t, e, 0)
	// Second channel: identity filter, bias 1.
	require.NoError(t, e.StoreOutputMultiplier(1<<30))
	require.NoError(t, e.StoreOutputShift(-1))
	require.NoError(t, e.StoreOutputBias(1))
	require.NoError(t, e.StoreFilterWord(0))
	require.NoError(t, e.StoreFilterWord(1))
	require.NoError(t, e.StoreFilterWord(0))
	require.NoError(t, e.SetEnable(1))

	// All-zero input: channel 0 yields 0s, channel 1 yields the bias.
	zeros := []uint32{0, 0, 0, 0}
	for _, w := range zeros {
		require.NoError(t, e.StoreInputWord(w))
	}
	require.NoError(t, e.Run())
	w0, err := e.ReadOutput()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00000000), w0)

	for _, w := range zeros {
		require.NoError(t, e.StoreInputWord(w))
	}
	require.NoError(t, e.Run())
	w1, err := e.ReadOutput()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01010101), w1)
}

func TestDisableClearsState(t *testing.T) {
	e := New()
	configureTiny(t, e, 0)
	require.NoError(t, e.SetEnable(1))
	streamTiny(t, e)
	require.NoError(t, e.Run())

	require.NoError(t, e.SetEnable(0))
	assert.ErrorIs(t, e.StoreInputWord(0), engine.ErrBadPhase)

	// Parameter stores were cleared: an immediate re-enable has no
	// channels to run.
	require.NoError(t, e.SetEnable(1))
	require.NoError(t, e.StoreInputWord(0))
	require.NoError(t, e.StoreInputWord(0))
	assert.Error(t, e.Run())
}

func TestRunWithoutParams(t *testing.T) {
	e := New()
	require.NoError(t, e.SetEnable(1))
	assert.Error(t, e.Run())
}
