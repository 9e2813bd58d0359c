package dwtile

import "testing"

func TestUnpackOutputsSignedLanes(t *testing.T) {
	// Little-endian lane order: byte0 -> (y,x), byte1 -> (y,x+1),
	// byte2 -> (y+1,x), byte3 -> (y+1,x+1), each read as two's
	// complement.
	s := NewScratch()
	if err := s.appendWord(0xD2C1B0A1); err != nil {
		t.Fatalf("appendWord failed: %v", err)
	}

	out := NewTensor(2, 2, 1)
	g := tileGeometry{depth: 1}
	if err := unpackOutputs(s, g, out); err != nil {
		t.Fatalf("unpackOutputs failed: %v", err)
	}

	cases := []struct {
		y, x int
		want int8
	}{
		{0, 0, -95}, // 0xA1
		{0, 1, -80}, // 0xB0
		{1, 0, -63}, // 0xC1
		{1, 1, -46}, // 0xD2
	}
	for _, c := range cases {
		if got := out.At(c.y, c.x, 0); got != c.want {
			t.Errorf("(%d,%d): expected %d, got %d", c.y, c.x, c.want, got)
		}
	}
}

func TestUnpackOutputsMultiChannel(t *testing.T) {
	// One 2x2 tile per channel; channel order follows the drain order.
	s := NewScratch()
	s.appendWord(0x04030201)
	s.appendWord(0x08070605)

	out := NewTensor(2, 2, 2)
	g := tileGeometry{depth: 2}
	if err := unpackOutputs(s, g, out); err != nil {
		t.Fatalf("unpackOutputs failed: %v", err)
	}

	want := []int8{
		1, 5, 2, 6,
		3, 7, 4, 8,
	}
	for i, v := range want {
		if out.Data[i] != v {
			t.Errorf("data[%d]: expected %d, got %d", i, v, out.Data[i])
		}
	}
}

func TestUnpackOutputsCountMismatch(t *testing.T) {
	s := NewScratch()
	s.appendWord(0)
	s.appendWord(0)

	out := NewTensor(2, 2, 1)
	g := tileGeometry{depth: 1}
	err := unpackOutputs(s, g, out)
	if err == nil {
		t.Fatal("expected a protocol error for leftover words")
	}
}
