// sim/distance.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"

	"github.com/arids/modeling-simulation/rand"
)

// DistanceMatrix holds the pairwise flight times between airports. It is
// symmetric with a zero diagonal.
type DistanceMatrix struct {
	n int
	d [][]int64
}

// MakeDistanceMatrix generates the matrix for the given configuration:
// entries uniform in [DistanceMin, DistanceMax], drawn from a PCG32 stream
// seeded by the configuration seed so every process generates the same
// matrix.
func MakeDistanceMatrix(c *Config) *DistanceMatrix {
	r := rand.MakeStream(c.Seed, distanceStream)
	span := c.DistanceMax - c.DistanceMin + 1

	d := make([][]int64, c.NumAirports)
	for i := range d {
		d[i] = make([]int64, c.NumAirports)
	}
	for i := 0; i < c.NumAirports; i++ {
		for j := i + 1; j < c.NumAirports; j++ {
			v := c.DistanceMin + r.Int63n(span)
			d[i][j] = v
			d[j][i] = v
		}
	}
	return &DistanceMatrix{n: c.NumAirports, d: d}
}

// DistanceMatrixFromRows builds a matrix from explicit rows, validating
// symmetry and the zero diagonal.
func DistanceMatrixFromRows(rows [][]int64) (*DistanceMatrix, error) {
	n := len(rows)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d entries, want %d: %w", i, len(row), n, ErrInvalidConfiguration)
		}
		if row[i] != 0 {
			return nil, fmt.Errorf("nonzero diagonal at %d: %w", i, ErrInvalidConfiguration)
		}
		for j := range row {
			if rows[i][j] != rows[j][i] {
				return nil, fmt.Errorf("asymmetric at (%d,%d): %w", i, j, ErrInvalidConfiguration)
			}
		}
	}
	return &DistanceMatrix{n: n, d: rows}, nil
}

func (m *DistanceMatrix) NumAirports() int { return m.n }

func (m *DistanceMatrix) Between(a, b int) int64 { return m.d[a][b] }
