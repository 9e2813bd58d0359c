package dwtile

import "fmt"

// Tensor is a batch-1 NHWC int8 tensor view over caller-owned storage.
// For feature maps H, W and C are the spatial and channel extents; for
// 3x3 depthwise filters the same layout is used with H = W = 3 and C
// output channels, matching the [1, fy, fx, channel] filter layout.
type Tensor struct {
	H, W, C int
	Data    []int8
}

// NewTensor allocates a zeroed H x W x C tensor.
func NewTensor(h, w, c int) *Tensor {
	return &Tensor{H: h, W: w, C: c, Data: make([]int8, h*w*c)}
}

// Offset returns the flat index of (y, x, c) in NHWC order.
func (t *Tensor) Offset(y, x, c int) int {
	return (y*t.W+x)*t.C + c
}

// At returns the sample at (y, x, c).
func (t *Tensor) At(y, x, c int) int8 {
	return t.Data[(y*t.W+x)*t.C+c]
}

// Set stores a sample at (y, x, c).
func (t *Tensor) Set(y, x, c int, v int8) {
	t.Data[(y*t.W+x)*t.C+c] = v
}

// Elems returns the number of elements the shape describes.
func (t *Tensor) Elems() int {
	return t.H * t.W * t.C
}

// CheckShape verifies the backing slice covers the declared shape.
func (t *Tensor) CheckShape(name string) error {
	if t == nil {
		return NewShapeError("CheckShape", name+" tensor is nil")
	}
	if t.H <= 0 || t.W <= 0 || t.C <= 0 {
		return NewShapeError("CheckShape",
			fmt.Sprintf("%s has invalid shape %dx%dx%d", name, t.H, t.W, t.C))
	}
	if len(t.Data) < t.Elems() {
		return NewShapeError("CheckShape",
			fmt.Sprintf("%s data length %d shorter than shape %dx%dx%d",
				name, len(t.Data), t.H, t.W, t.C))
	}
	return nil
}
