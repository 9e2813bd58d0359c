package dwtile

import "testing"

func TestPadWordTable(t *testing.T) {
	// The alignment pad mapping is a literal protocol constant.
	want := [4]int{2, 1, 0, 3}
	if padWordTable != want {
		t.Fatalf("pad word table: expected %v, got %v", want, padWordTable)
	}

	// Exercise every residue of storeW = inW/2 + 1 through the geometry.
	widths := map[int]int{
		2: 0, // storeW 2, residue 2
		4: 3, // storeW 3, residue 3
		6: 2, // storeW 4, residue 0
		8: 1, // storeW 5, residue 1
	}
	for w, pad := range widths {
		g := newTileGeometry(&Tensor{H: 4, W: w, C: 1})
		if g.pad != pad {
			t.Errorf("width %d (storeW %d): expected pad %d, got %d", w, g.storeW, pad, g.pad)
		}
	}
}

func TestTileGeometry(t *testing.T) {
	g := newTileGeometry(&Tensor{H: 8, W: 8, C: 4})
	if g.storeW != 5 || g.storeH != 5 {
		t.Errorf("expected 5x5 tile grid, got %dx%d", g.storeH, g.storeW)
	}
	if g.numTiles != 16 {
		t.Errorf("expected 16 output tiles, got %d", g.numTiles)
	}
	if g.pad != 1 { // storeW 5, residue 1
		t.Errorf("expected pad 1, got %d", g.pad)
	}
	if g.wordsPerChannelIn() != 5*(5+g.pad) {
		t.Errorf("words per channel: expected %d, got %d", 5*(5+g.pad), g.wordsPerChannelIn())
	}
}

func TestPackTilesOrderAndPadding(t *testing.T) {
	// 2x2 single-channel image; every out-of-bounds sample must become
	// the negated input offset, and samples must land in tile-major,
	// row-major order.
	input := &Tensor{H: 2, W: 2, C: 1, Data: []int8{1, 2, 3, 4}}
	const inputOffset = 10
	const p = -inputOffset

	s := NewScratch()
	g := newTileGeometry(input)
	if err := packTiles(s, g, input, inputOffset); err != nil {
		t.Fatalf("packTiles failed: %v", err)
	}

	expected := []int8{
		p, p, p, 1, // tile (0,0): three padded corners, then sample (0,0)
		p, p, 2, p, // tile (0,2)
		p, 3, p, p, // tile (2,0)
		4, p, p, p, // tile (2,2)
	}
	if len(s.in) != len(expected) {
		t.Fatalf("packed length: expected %d, got %d", len(expected), len(s.in))
	}
	for i := range expected {
		if s.in[i] != expected[i] {
			t.Errorf("packed[%d]: expected %d, got %d", i, expected[i], s.in[i])
		}
	}
}

func TestPackTilesChannelMajor(t *testing.T) {
	// Two channels: channel 0's full tile stream precedes channel 1's.
	input := NewTensor(2, 2, 2)
	for i := 0; i < 4; i++ {
		input.Data[2*i] = int8(i + 1)    // channel 0
		input.Data[2*i+1] = int8(-i - 1) // channel 1
	}

	s := NewScratch()
	g := newTileGeometry(input)
	if err := packTiles(s, g, input, 0); err != nil {
		t.Fatalf("packTiles failed: %v", err)
	}

	perChannel := g.inputBytesPerChannel()
	if len(s.in) != 2*perChannel {
		t.Fatalf("packed length: expected %d, got %d", 2*perChannel, len(s.in))
	}
	if s.in[3] != 1 || s.in[perChannel+3] != -1 {
		t.Errorf("channel-major order violated: got %d and %d at the (0,0) sample slots",
			s.in[3], s.in[perChannel+3])
	}
}
