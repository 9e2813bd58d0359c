// Command dwverify cross-checks the tiled engine path against the scalar
// reference path on randomized eligible shapes, using the software engine
// model. Any byte difference between the two paths is a failure.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/edgekernel/dwtile"
	"github.com/edgekernel/dwtile/engine/sim"
)

func main() {
	var (
		cases    = flag.Int("cases", 200, "Number of randomized test cases")
		seed     = flag.Int64("seed", 1, "RNG seed")
		maxSide  = flag.Int("max-side", 40, "Maximum input height/width (rounded to even)")
		maxDepth = flag.Int("max-depth", 8, "Maximum channel count")
		verbose  = flag.Bool("v", false, "Print every case")
	)
	flag.Parse()

	if *maxSide < 2 || *maxSide > 80 {
		log.Fatalf("max-side %d outside the tiled path's supported range [2, 80]", *maxSide)
	}

	rng := rand.New(rand.NewSource(*seed))
	eng := sim.New()
	scratch := dwtile.NewScratch()
	prof := dwtile.NewTimeProfiler()

	failures := 0
	for i := 0; i < *cases; i++ {
		h := 2 * (1 + rng.Intn(*maxSide/2))
		w := 2 * (1 + rng.Intn(*maxSide/2))
		depth := 1 + rng.Intn(*maxDepth)

		input := randomTensor(rng, h, w, depth)
		filter := randomTensor(rng, 3, 3, depth)
		bias := make([]int32, depth)
		quant := make([]dwtile.RequantizeParams, depth)
		for c := range bias {
			bias[c] = rng.Int31n(1<<16) - 1<<15
			quant[c] = dwtile.RequantizeParams{
				Multiplier: 1<<30 + rng.Int31n(1<<30),
				Shift:      int32(rng.Intn(10) - 8),
			}
		}

		actMin := int32(-128 + rng.Intn(32))
		params := dwtile.DepthwiseParams{
			StrideH: 1, StrideW: 1,
			PadH: 1, PadW: 1,
			InputOffset:   int32(rng.Intn(256) - 127),
			OutputOffset:  int32(rng.Intn(256) - 128),
			ActivationMin: actMin,
			ActivationMax: actMin + int32(rng.Intn(int(127-actMin))) + 1,
			Accelerate:    true,
		}

		want := dwtile.NewTensor(h, w, depth)
		got := dwtile.NewTensor(h, w, depth)

		scalar := params
		scalar.Accelerate = false
		if err := dwtile.DepthwiseConv(nil, nil, prof, &scalar, input, filter, bias, quant, want); err != nil {
			log.Fatalf("case %d: scalar path: %v", i, err)
		}
		if err := dwtile.DepthwiseConv(eng, scratch, prof, &params, input, filter, bias, quant, got); err != nil {
			log.Fatalf("case %d: tiled path: %v", i, err)
		}

		if idx, ok := firstDiff(want.Data, got.Data); !ok {
			failures++
			y, x, c := idx/(w*depth), (idx/depth)%w, idx%depth
			fmt.Printf("FAIL case %d shape %dx%dx%d: first mismatch at (%d,%d,%d): scalar %d, tiled %d\n",
				i, h, w, depth, y, x, c, want.Data[idx], got.Data[idx])
		} else if *verbose {
			fmt.Printf("PASS case %d shape %dx%dx%d\n", i, h, w, depth)
		}
	}

	fmt.Printf("\n%d cases, %d failures\n", *cases, failures)
	fmt.Printf("tiled: %d runs in %v, scalar: %d runs in %v\n",
		prof.Count(dwtile.EventTiledConv), prof.Total(dwtile.EventTiledConv),
		prof.Count(dwtile.EventScalarConv), prof.Total(dwtile.EventScalarConv))
	if failures > 0 {
		os.Exit(1)
	}
}

func randomTensor(rng *rand.Rand, h, w, c int) *dwtile.Tensor {
	t := dwtile.NewTensor(h, w, c)
	for i := range t.Data {
		t.Data[i] = int8(rng.Intn(256) - 128)
	}
	return t
}

func firstDiff(a, b []int8) (int, bool) {
	for i := range a {
		if a[i] != b[i] {
			return i, false
		}
	}
	return 0, true
}
