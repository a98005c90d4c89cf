// rand/rand.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

///////////////////////////////////////////////////////////////////////////
// PCG32

// This is based on mtj's pcg32 implementation, updated with exported
// variables for the state (so we can serialize it properly.)

const (
	pcg32State      = 0x853c49e6748fea9b //  9600629759793949339
	pcg32Increment  = 0xda3e39cb94b95bdb // 15726070495360670683
	pcg32Multiplier = 0x5851f42d4c957f2d //  6364136223846793005
)

type PCG32 struct {
	State     uint64
	Increment uint64
}

func NewPCG32() PCG32 {
	return PCG32{pcg32State, pcg32Increment}
}

// Seed initializes the generator from a state value and a stream number;
// distinct streams give statistically independent sequences for the same
// state.
func (p *PCG32) Seed(state, stream uint64) {
	p.Increment = (stream << 1) | 1
	p.State = (state+p.Increment)*pcg32Multiplier + p.Increment
}

func (p *PCG32) Random() uint32 {
	// Advance 64-bit linear congruential generator to new state
	oldState := p.State
	p.State = oldState*pcg32Multiplier + p.Increment

	// Confuse and permute 32-bit output from old state
	xorShifted := uint32(((oldState >> 18) ^ oldState) >> 27)
	rot := uint32(oldState >> 59)
	return (xorShifted >> rot) | (xorShifted << ((-rot) & 31))
}

func (p *PCG32) Bounded(bound uint32) uint32 {
	if bound == 0 {
		return 0
	}
	threshold := -bound % bound
	for {
		r := p.Random()
		if r >= threshold {
			return r % bound
		}
	}
}

///////////////////////////////////////////////////////////////////////////
// Random numbers.

type Rand struct {
	PCG32
}

func Make() *Rand {
	return &Rand{PCG32: NewPCG32()}
}

// MakeStream returns a generator seeded for the given stream. Callers that
// need reproducible, independent sequences (one per airport, one per plane)
// derive each from the configuration seed plus a stream number.
func MakeStream(seed int64, stream uint64) *Rand {
	r := Make()
	r.PCG32.Seed(uint64(seed), stream)
	return r
}

func (r *Rand) Seed(s uint64) {
	r.PCG32.Seed(s, pcg32Increment)
}

func (r *Rand) Intn(n int) int {
	return int(r.Bounded(uint32(n)))
}

func (r *Rand) Int63n(n int64) int64 {
	return int64(r.Bounded(uint32(n)))
}

func (r *Rand) Float32() float32 {
	return float32(r.Random()) / (1<<32 - 1)
}

func (r *Rand) Uint32() uint32 {
	return r.Random()
}

// SampleSlice uniformly randomly samples an element of a non-empty slice.
func SampleSlice[T any](r *Rand, slice []T) T {
	return slice[r.Intn(len(slice))]
}
