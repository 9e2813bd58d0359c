package dwtile

import "fmt"

// DepthwiseParams defines parameters for one depthwise convolution node.
// Offsets follow the affine quantization convention: InputOffset is the
// negated input zero-point and is added to every sample before it meets a
// filter tap; OutputOffset is added after requantization.
type DepthwiseParams struct {
	StrideH int
	StrideW int
	PadH    int
	PadW    int

	InputOffset  int32
	OutputOffset int32

	ActivationMin int32
	ActivationMax int32

	// Accelerate requests the tiled engine path when the shape allows it.
	Accelerate bool
}

// RequantizeParams is the per-channel fixed-point scale: a normalized
// multiplier mantissa and a signed exponent (positive shifts right).
type RequantizeParams struct {
	Multiplier int32
	Shift      int32
}

// Validate checks the parameter contract shared by both paths.
func (p *DepthwiseParams) Validate() error {
	if p.StrideH <= 0 || p.StrideW <= 0 {
		return NewShapeError("Validate", "stride must be positive")
	}
	if p.PadH < 0 || p.PadW < 0 {
		return NewShapeError("Validate", "padding must be non-negative")
	}
	if p.ActivationMin > p.ActivationMax {
		return NewShapeError("Validate", fmt.Sprintf(
			"activation range [%d, %d] is inverted", p.ActivationMin, p.ActivationMax))
	}
	// InputOffset is a negated int8 zero-point; the tiled path encodes
	// real 0.0 as -InputOffset in an int8 lane, so the negation must be
	// representable.
	if p.InputOffset < -127 || p.InputOffset > 128 {
		return NewShapeError("Validate", fmt.Sprintf(
			"input offset %d outside [-127, 128]", p.InputOffset))
	}
	if p.OutputOffset < -128 || p.OutputOffset > 127 {
		return NewShapeError("Validate", fmt.Sprintf(
			"output offset %d outside [-128, 127]", p.OutputOffset))
	}
	return nil
}

// OutputHeight computes the output height for an input of height inH.
func (p *DepthwiseParams) OutputHeight(inH int) int {
	return (inH+2*p.PadH-filterSize)/p.StrideH + 1
}

// OutputWidth computes the output width for an input of width inW.
func (p *DepthwiseParams) OutputWidth(inW int) int {
	return (inW+2*p.PadW-filterSize)/p.StrideW + 1
}

// filterSize is the only kernel extent the op supports: 3x3 per-channel
// filters with depth multiplier 1.
const filterSize = 3

// validateDepthwiseArgs performs the eager precondition checks for a call:
// tensor shapes, filter geometry, and per-channel parameter lengths.
func validateDepthwiseArgs(p *DepthwiseParams, input, filter *Tensor,
	bias []int32, quant []RequantizeParams, output *Tensor) error {

	if p == nil {
		return NewShapeError("DepthwiseConv", "params are nil")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := input.CheckShape("input"); err != nil {
		return err
	}
	if err := filter.CheckShape("filter"); err != nil {
		return err
	}
	if err := output.CheckShape("output"); err != nil {
		return err
	}
	if filter.H != filterSize || filter.W != filterSize {
		return NewShapeError("DepthwiseConv", fmt.Sprintf(
			"filter must be %dx%d, got %dx%d", filterSize, filterSize, filter.H, filter.W))
	}
	if filter.C != input.C {
		return NewShapeError("DepthwiseConv", fmt.Sprintf(
			"depth multiplier must be 1: filter depth %d, input depth %d",
			filter.C, input.C))
	}
	if output.C != input.C {
		return NewShapeError("DepthwiseConv", fmt.Sprintf(
			"output depth %d does not match input depth %d", output.C, input.C))
	}
	if len(bias) != input.C {
		return NewShapeError("DepthwiseConv", fmt.Sprintf(
			"bias length %d does not match depth %d", len(bias), input.C))
	}
	if len(quant) != input.C {
		return NewShapeError("DepthwiseConv", fmt.Sprintf(
			"quantization parameter length %d does not match depth %d",
			len(quant), input.C))
	}
	for c, q := range quant {
		if q.Shift < -31 || q.Shift > 30 {
			return NewShapeError("DepthwiseConv", fmt.Sprintf(
				"channel %d shift %d outside [-31, 30]", c, q.Shift))
		}
	}
	if wantH, wantW := p.OutputHeight(input.H), p.OutputWidth(input.W); output.H != wantH || output.W != wantW {
		return NewShapeError("DepthwiseConv", fmt.Sprintf(
			"output shape %dx%d does not match computed %dx%d",
			output.H, output.W, wantH, wantW))
	}
	return nil
}
