// sim/lookahead.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import "math"

// unreachableLookahead fills entries of the lookahead matrix that the
// protocols never consult (the diagonal).
const unreachableLookahead = int64(math.MaxInt64)

// LookaheadMatrix gives, for each pair of logical processes, the minimum
// time between an event created at one and its earliest possible effect at
// the other: the minimum distance over the airport pairs the two processes
// own. It is symmetric.
type LookaheadMatrix struct {
	n  int
	la [][]int64
}

func MakeLookaheadMatrix(d *DistanceMatrix, c *Config) *LookaheadMatrix {
	la := make([][]int64, c.NumLPs)
	for i := range la {
		la[i] = make([]int64, c.NumLPs)
		for j := range la[i] {
			la[i][j] = unreachableLookahead
		}
	}

	for i := 0; i < d.NumAirports(); i++ {
		for j := 0; j < d.NumAirports(); j++ {
			p, q := c.Owner(i), c.Owner(j)
			if p == q {
				continue
			}
			if v := d.Between(i, j); v < la[p][q] {
				la[p][q] = v
				la[q][p] = v
			}
		}
	}
	return &LookaheadMatrix{n: c.NumLPs, la: la}
}

func (m *LookaheadMatrix) NumLPs() int { return m.n }

func (m *LookaheadMatrix) Between(p, q int) int64 { return m.la[p][q] }
