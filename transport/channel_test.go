// transport/channel_test.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package transport

import (
	"slices"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestMeshSendRecv(t *testing.T) {
	nodes, err := NewMesh(2)
	if err != nil {
		t.Fatal(err)
	}

	// Messages between a pair arrive in the order they were sent.
	for i := int64(0); i < 100; i++ {
		if err := nodes[0].Send(1, []int64{i}); err != nil {
			t.Fatal(err)
		}
	}
	for i := int64(0); i < 100; i++ {
		vec, src, err := nodes[1].RecvAny()
		if err != nil {
			t.Fatal(err)
		}
		if src != 0 {
			t.Errorf("source %d, want 0", src)
		}
		if len(vec) != 1 || vec[0] != i {
			t.Errorf("received %v, want [%d]", vec, i)
		}
	}
}

func TestMeshSendCopies(t *testing.T) {
	nodes, err := NewMesh(2)
	if err != nil {
		t.Fatal(err)
	}

	vec := []int64{1, 2, 3}
	if err := nodes[0].Send(1, vec); err != nil {
		t.Fatal(err)
	}
	vec[0] = 99
	got, _, err := nodes[1].RecvAny()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int64{1, 2, 3}) {
		t.Errorf("received %v; the send must not alias the caller's slice", got)
	}
}

func TestMeshSendValidatesRank(t *testing.T) {
	nodes, err := NewMesh(2)
	if err != nil {
		t.Fatal(err)
	}
	if err := nodes[0].Send(0, []int64{1}); err == nil {
		t.Errorf("send to self accepted")
	}
	if err := nodes[0].Send(5, []int64{1}); err == nil {
		t.Errorf("send to out-of-range rank accepted")
	}
}

func TestMeshBarrier(t *testing.T) {
	const n = 4
	nodes, err := NewMesh(n)
	if err != nil {
		t.Fatal(err)
	}

	var before, after atomic.Int32
	var g errgroup.Group
	for _, node := range nodes {
		node := node
		g.Go(func() error {
			for round := 0; round < 10; round++ {
				before.Add(1)
				if err := node.Barrier(); err != nil {
					return err
				}
				// Everyone must have entered this round's barrier by now.
				if c := before.Load(); c < int32((round+1)*n) {
					t.Errorf("round %d: only %d arrivals seen after barrier", round, c)
				}
				if err := node.Barrier(); err != nil {
					return err
				}
				after.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if after.Load() != 10*n {
		t.Errorf("%d exits, want %d", after.Load(), 10*n)
	}
}

func TestMeshAllReduceSum(t *testing.T) {
	const n = 3
	nodes, err := NewMesh(n)
	if err != nil {
		t.Fatal(err)
	}

	results := make([][]int64, n)
	var g errgroup.Group
	for rank, node := range nodes {
		rank, node := rank, node
		g.Go(func() error {
			for round := 0; round < 5; round++ {
				vec := []int64{int64(rank), 1, int64(round)}
				sum, err := node.AllReduceSum(vec)
				if err != nil {
					return err
				}
				results[rank] = sum
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	want := []int64{0 + 1 + 2, n, 4 * n}
	for rank, sum := range results {
		if !slices.Equal(sum, want) {
			t.Errorf("rank %d got %v, want %v", rank, sum, want)
		}
	}
}

func TestMeshReduceSum(t *testing.T) {
	const n = 3
	nodes, err := NewMesh(n)
	if err != nil {
		t.Fatal(err)
	}

	results := make([][]int64, n)
	var g errgroup.Group
	for rank, node := range nodes {
		rank, node := rank, node
		g.Go(func() error {
			sum, err := node.ReduceSum([]int64{int64(rank + 1)}, 1)
			results[rank] = sum
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if results[1] == nil || results[1][0] != 6 {
		t.Errorf("root got %v, want [6]", results[1])
	}
	if results[0] != nil || results[2] != nil {
		t.Errorf("non-root ranks got %v and %v, want nil", results[0], results[2])
	}
}

func TestMeshCloseUnblocksRecv(t *testing.T) {
	nodes, err := NewMesh(2)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, _, err := nodes[0].RecvAny()
		done <- err
	}()
	nodes[0].Close()
	if err := <-done; err == nil {
		t.Errorf("RecvAny returned nil error after close")
	}
}
