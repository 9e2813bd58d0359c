// Package dwtile is the host-side driver for an 8-bit quantized depthwise
// convolution accelerator, plus the scalar arithmetic it must reproduce
// exactly when no accelerator is present.
//
// The accelerator is a fixed-function compute engine reachable through a
// small set of ordered, blocking register-style instructions (see the
// engine package). Feature maps are transferred as 2x2 tiles packed four
// int8 samples to a 32-bit word; per-channel quantization parameters and
// 3x3 filters are programmed up front, then each channel is streamed,
// computed and drained strictly in sequence.
//
// Both execution paths share one fixed-point requantization routine, so
// the accelerated result is bit-identical to the scalar reference:
//
//	scratch := dwtile.NewScratch()
//	eng := sim.New()
//	err := dwtile.DepthwiseConv(eng, scratch, nil, params,
//	    input, filter, bias, quant, output)
//
// Passing a nil engine, or any shape the tiled path does not support,
// falls back to the scalar reference path with identical numerics.
package dwtile
