// transport/transport.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package transport provides the process-group primitives the parallel
// executors coordinate through: point-to-point sends of integer tuples,
// blocking receive from any source, barriers, and sum reductions.
// Messages between any pair of ranks are delivered in order.
package transport

import "errors"

var (
	ErrClosed         = errors.New("Transport closed")
	ErrMalformedFrame = errors.New("Malformed transport frame")
	ErrLengthMismatch = errors.New("Reduction vector lengths don't match")
	ErrInvalidRank    = errors.New("Invalid rank")
)

type Transport interface {
	Rank() int
	Size() int

	// Barrier blocks until every rank has entered it.
	Barrier() error

	// Send delivers vec to dest asynchronously; it does not wait for the
	// matching receive.
	Send(dest int, vec []int64) error

	// RecvAny blocks for the next incoming tuple from any source and
	// returns it along with the sender's rank.
	RecvAny() ([]int64, int, error)

	// AllReduceSum returns the element-wise sum of every rank's vector.
	AllReduceSum(vec []int64) ([]int64, error)

	// ReduceSum sums every rank's vector at root; other ranks get nil.
	ReduceSum(vec []int64, root int) ([]int64, error)

	Close() error
}
