// sim/nullmsg.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"

	"github.com/arids/modeling-simulation/log"
	"github.com/arids/modeling-simulation/transport"
)

// NullMessage is the Chandy-Misra-Bryant conservative executor. There are
// no global windows: each process tracks, per peer, a promise clock — the
// largest lower bound any null message from that peer has carried — and
// dispatches its queue minimum only once every peer has promised past it.
// Null messages are emitted at startup, after every clock advance, and
// whenever this process's own lower bound grows while it waits, so the
// promises keep rising and no process can stall another.
type NullMessage struct {
	cfg      *Config
	la       *LookaheadMatrix
	tr       transport.Transport
	rank     int
	size     int

	airports map[int]*Airport
	pq       EventQueue
	incoming [][]Event // per-source FIFO mirroring that source's events in pq
	promises []int64   // per-source lower bound on future arrivals
	lastNull []int64   // timestamp of the last null sent to each peer
	now      int64
	horizon  int64

	elog *EventLog
	lg   *log.Logger

	// sendErr records the first transport failure from inside a handler
	// callback, where Schedule cannot return it.
	sendErr error

	// Trace, if set, observes every dispatched event.
	Trace func(Event)
}

func NewNullMessage(cfg *Config, d *DistanceMatrix, tr transport.Transport, elog *EventLog, lg *log.Logger) (*NullMessage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tr.Size() != cfg.NumLPs {
		return nil, fmt.Errorf("transport size %d, num_lps %d: %w", tr.Size(), cfg.NumLPs, ErrInvalidConfiguration)
	}

	n := &NullMessage{
		cfg:      cfg,
		la:       MakeLookaheadMatrix(d, cfg),
		tr:       tr,
		rank:     tr.Rank(),
		size:     tr.Size(),
		airports: make(map[int]*Airport),
		incoming: make([][]Event, tr.Size()),
		promises: make([]int64, tr.Size()),
		lastNull: make([]int64, tr.Size()),
		horizon:  cfg.MaxSimulationTime + 2*cfg.DistanceMax,
		elog:     elog,
		lg:       lg.With(slog.Int("rank", tr.Rank())),
	}
	for _, id := range cfg.OwnedAirports(n.rank) {
		n.airports[id] = MakeAirport(id, cfg, d)
	}
	for _, ev := range BootstrapEvents(cfg, n.rank) {
		n.Schedule(ev)
	}
	return n, nil
}

func (n *NullMessage) Now() int64 { return n.now }

func (n *NullMessage) Schedule(ev Event) {
	if n.now > n.cfg.MaxSimulationTime && ev.Type == EventReadyForTakeoff {
		return
	}
	ev.Source = n.rank
	if owner := n.cfg.Owner(ev.Airport); owner == n.rank {
		n.pq.Push(ev)
	} else if err := n.tr.Send(owner, ev.Wire()); err != nil && n.sendErr == nil {
		n.sendErr = err
	}
}

// maxNullTime caps null timestamps: every real event the simulation can
// produce falls below it, so a promise at the cap unblocks a peer
// completely.
func (n *NullMessage) maxNullTime() int64 {
	return n.horizon + n.cfg.DistanceMax + 1
}

// bound is a lower bound on the timestamp of anything this process may
// still send: future dispatches happen at or above the smaller of the
// queue head and the peers' promises, and the clock never runs backwards.
func (n *NullMessage) bound() int64 {
	b := n.maxNullTime()
	if head, ok := n.pq.Peek(); ok {
		b = head.Time
	}
	for q := 0; q < n.size; q++ {
		if q != n.rank && n.promises[q] < b {
			b = n.promises[q]
		}
	}
	return max(n.now, b)
}

// shareBound sends each peer a null message carrying bound plus
// lookahead, skipping peers for which that would repeat an earlier
// promise.
func (n *NullMessage) shareBound() error {
	b := n.bound()
	for peer := 0; peer < n.size; peer++ {
		if peer == n.rank {
			continue
		}
		ts := n.maxNullTime()
		if la := n.la.Between(n.rank, peer); b <= ts-la {
			ts = b + la
		}
		if ts <= n.lastNull[peer] {
			continue
		}
		null := Event{Type: EventNull, Time: ts, Airport: -1, Source: n.rank, Plane: -1}
		if err := n.tr.Send(peer, null.Wire()); err != nil {
			return err
		}
		n.lastNull[peer] = ts
	}
	return nil
}

// farewell tells every peer that nothing more is coming, releasing any
// promise a laggard is still waiting on.
func (n *NullMessage) farewell() error {
	for peer := 0; peer < n.size; peer++ {
		if peer == n.rank || n.lastNull[peer] >= n.maxNullTime() {
			continue
		}
		null := Event{Type: EventNull, Time: n.maxNullTime(), Airport: -1, Source: n.rank, Plane: -1}
		if err := n.tr.Send(peer, null.Wire()); err != nil {
			return err
		}
		n.lastNull[peer] = n.maxNullTime()
	}
	return nil
}

// safeHead reports whether the queue minimum is below every peer's
// promise. Once it is, every event with an equal or smaller timestamp has
// already arrived, so dispatching it can never violate causality and ties
// resolve exactly as the sequential executor resolves them.
func (n *NullMessage) safeHead() (Event, bool) {
	head, ok := n.pq.Peek()
	if !ok {
		return Event{}, false
	}
	for q := 0; q < n.size; q++ {
		if q != n.rank && head.Time >= n.promises[q] {
			return Event{}, false
		}
	}
	return head, true
}

func (n *NullMessage) Run() error {
	if err := n.tr.Barrier(); err != nil {
		return err
	}
	if err := n.shareBound(); err != nil {
		return err
	}

	for n.now <= n.horizon {
		head, ok := n.safeHead()
		if !ok {
			if n.size == 1 {
				// No peers to wait on; an empty queue means done.
				break
			}
			// The minimum is not yet safe. Publish our own bound in case
			// a peer is symmetrically stuck on us, then block for more
			// information.
			if err := n.shareBound(); err != nil {
				return err
			}
			if err := n.receive(); err != nil {
				return err
			}
			continue
		}

		n.pq.Pop()
		if head.Source != n.rank {
			n.incoming[head.Source] = n.incoming[head.Source][1:]
		}

		old := n.now
		if head.Time > n.now {
			n.now = head.Time
		}
		if head.Type != EventNull {
			a, ok := n.airports[head.Airport]
			if !ok {
				return fmt.Errorf("airport %d at rank %d: %w", head.Airport, n.rank, ErrAirportNotOwned)
			}
			n.elog.Log(head, n.now)
			if n.Trace != nil {
				n.Trace(head)
			}
			a.HandleEvent(head, n)
			if n.sendErr != nil {
				return n.sendErr
			}
		}

		if n.now > old {
			if err := n.shareBound(); err != nil {
				return err
			}
		}
	}

	n.lg.Infof("passed horizon at t=%d", n.now)
	return n.farewell()
}

// receive blocks for one message, mirrors it into the queue and the
// per-source FIFO, and advances the source's promise if it is a null.
func (n *NullMessage) receive() error {
	vec, src, err := n.tr.RecvAny()
	if err != nil {
		return err
	}
	ev, err := EventFromWire(vec, src)
	if err != nil {
		return err
	}
	if ev.Type == EventNull {
		if ev.Time > n.promises[src] {
			n.promises[src] = ev.Time
		}
	} else if n.cfg.Owner(ev.Airport) != n.rank {
		return fmt.Errorf("airport %d from rank %d: %w", ev.Airport, src, ErrAirportNotOwned)
	}
	n.pq.Push(ev)
	n.incoming[src] = append(n.incoming[src], ev)
	return nil
}

func (n *NullMessage) Statistics() Statistics {
	var st Statistics
	for _, a := range n.airports {
		st.Accumulate(a)
	}
	return st
}
