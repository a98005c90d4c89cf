// rand/rand_test.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import "testing"

func TestStreamsIndependent(t *testing.T) {
	a := MakeStream(1, 0)
	b := MakeStream(1, 1)

	same := 0
	for i := 0; i < 64; i++ {
		if a.Random() == b.Random() {
			same++
		}
	}
	if same > 2 {
		t.Errorf("streams 0 and 1 produced %d identical values out of 64", same)
	}
}

func TestStreamsReproducible(t *testing.T) {
	for _, stream := range []uint64{0, 7, 1 << 32} {
		a := MakeStream(42, stream)
		b := MakeStream(42, stream)
		for i := 0; i < 256; i++ {
			if av, bv := a.Random(), b.Random(); av != bv {
				t.Fatalf("stream %d diverged at draw %d: %d vs %d", stream, i, av, bv)
			}
		}
	}
}

func TestIntnBounds(t *testing.T) {
	r := MakeStream(3, 0)
	var counts [7]int
	for i := 0; i < 70000; i++ {
		v := r.Intn(7)
		if v < 0 || v >= 7 {
			t.Fatalf("Intn(7) returned %d", v)
		}
		counts[v]++
	}

	slop := 500
	for i, c := range counts {
		if c < 10000-slop || c > 10000+slop {
			t.Errorf("Expected roughly 10000 samples for %d. Got %d", i, c)
		}
	}
}

func TestSampleSlice(t *testing.T) {
	r := MakeStream(9, 0)
	s := []string{"a", "b", "c"}
	seen := make(map[string]int)
	for i := 0; i < 3000; i++ {
		seen[SampleSlice(r, s)]++
	}
	for _, v := range s {
		if seen[v] == 0 {
			t.Errorf("never sampled %q; counts %+v", v, seen)
		}
	}
	if len(seen) != len(s) {
		t.Errorf("sampled values outside the slice: %+v", seen)
	}
}
