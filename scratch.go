package dwtile

import "fmt"

// ScratchBytes is the fixed capacity, in bytes, of each of the two
// transfer buffers. The bound matches the static staging buffers of the
// original firmware; it is a hard limit, not a growth hint.
const ScratchBytes = 110000

// Scratch owns the two fixed-capacity staging buffers used by the tiled
// path: the packed input tile stream and the drained output word stream.
// A single in-flight call owns the arena exclusively; the buffers are
// reset on entry and hold no data across calls, only capacity.
type Scratch struct {
	in  []int8
	out []uint32
}

// NewScratch allocates an arena with the fixed transfer capacity.
func NewScratch() *Scratch {
	return &Scratch{
		in:  make([]int8, 0, ScratchBytes),
		out: make([]uint32, 0, ScratchBytes/4),
	}
}

// Reset discards any staged data, keeping capacity.
func (s *Scratch) Reset() {
	s.in = s.in[:0]
	s.out = s.out[:0]
}

// reserve fails fast when a call would need more staging space than the
// arena can ever provide, before anything is packed or streamed.
func (s *Scratch) reserve(inBytes, outWords int) error {
	if inBytes > cap(s.in) {
		return NewCapacityError("Pack", fmt.Sprintf(
			"packed input stream needs %d bytes, scratch capacity is %d",
			inBytes, cap(s.in)))
	}
	if outWords > cap(s.out) {
		return NewCapacityError("Drain", fmt.Sprintf(
			"output stream needs %d words, scratch capacity is %d",
			outWords, cap(s.out)))
	}
	return nil
}

// appendSample stages one packed input sample.
func (s *Scratch) appendSample(v int8) error {
	if len(s.in) == cap(s.in) {
		return ErrTensorTooLarge
	}
	s.in = append(s.in, v)
	return nil
}

// appendWord stages one drained output word.
func (s *Scratch) appendWord(w uint32) error {
	if len(s.out) == cap(s.out) {
		return ErrTensorTooLarge
	}
	s.out = append(s.out, w)
	return nil
}
