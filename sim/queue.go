// sim/queue.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import "container/heap"

// EventQueue is a min-heap of pending events. Events are ordered by
// timestamp with ties broken by the event's content fields (kind, airport,
// plane) so that the dispatch order of simultaneous events does not depend
// on which executor is running or on message arrival order. A per-queue
// insertion sequence number is the final tie-breaker, so no two queued
// events ever compare equal.
type EventQueue struct {
	h       eventHeap
	nextSeq int64
}

type queuedEvent struct {
	Event
	seq int64
}

func (q *EventQueue) Push(e Event) {
	heap.Push(&q.h, queuedEvent{Event: e, seq: q.nextSeq})
	q.nextSeq++
}

func (q *EventQueue) Pop() (Event, bool) {
	if len(q.h) == 0 {
		return Event{}, false
	}
	return heap.Pop(&q.h).(queuedEvent).Event, true
}

// Peek returns the minimum event without removing it.
func (q *EventQueue) Peek() (Event, bool) {
	if len(q.h) == 0 {
		return Event{}, false
	}
	return q.h[0].Event, true
}

func (q *EventQueue) Len() int { return len(q.h) }

type eventHeap []queuedEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	if a.Airport != b.Airport {
		return a.Airport < b.Airport
	}
	if a.Plane != b.Plane {
		return a.Plane < b.Plane
	}
	return a.seq < b.seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(queuedEvent)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
