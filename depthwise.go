package dwtile

import "github.com/edgekernel/dwtile/engine"

// maxTiledHeight is the tallest feature map the engine's internal line
// buffers can hold.
const maxTiledHeight = 80

// Profiling event tags bracketing the two execution paths.
const (
	EventTiledConv  = "tiled_depthwise_conv"
	EventScalarConv = "scalar_depthwise_conv"
)

// UseTiledPath is the eligibility predicate for engine offload. It is a
// pure function of the request: offload must be enabled, the input height
// and width even, the stride 1 with unit padding, and the height within
// the engine's line-buffer bound. Either answer yields bit-identical
// results; this only selects how they are computed.
func UseTiledPath(p *DepthwiseParams, input *Tensor) bool {
	return p.Accelerate &&
		input.H%2 == 0 &&
		input.W%2 == 0 &&
		p.StrideH == 1 && p.StrideW == 1 &&
		p.PadH == 1 && p.PadW == 1 &&
		input.H <= maxTiledHeight
}

// DepthwiseConv computes one 8-bit quantized depthwise convolution node,
// offloading to the engine behind port when the shape is eligible and
// falling back to the scalar reference path otherwise.
//
// The caller owns all tensors; input and filter are read-only for the
// duration of the call. scratch is the staging arena for the tiled path
// and must not be shared with a concurrent call; nil allocates a private
// one. prof, when non-nil, receives begin/end markers around whichever
// path runs. A nil port forces the scalar path.
func DepthwiseConv(port engine.Port, scratch *Scratch, prof Profiler,
	p *DepthwiseParams, input, filter *Tensor,
	bias []int32, quant []RequantizeParams, output *Tensor) error {

	if err := validateDepthwiseArgs(p, input, filter, bias, quant, output); err != nil {
		return err
	}
	if prof == nil {
		prof = NopProfiler{}
	}

	if port != nil && UseTiledPath(p, input) {
		h := prof.BeginEvent(EventTiledConv)
		defer prof.EndEvent(h)
		if scratch == nil {
			scratch = NewScratch()
		}
		return runTiledPath(port, scratch, p, input, filter, bias, quant, output)
	}

	h := prof.BeginEvent(EventScalarConv)
	defer prof.EndEvent(h)
	Reference{}.DepthwiseConvInt8(p, input, filter, bias, quant, output)
	return nil
}
