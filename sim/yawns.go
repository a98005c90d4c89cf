// sim/yawns.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/arids/modeling-simulation/log"
	"github.com/arids/modeling-simulation/transport"
	"github.com/arids/modeling-simulation/util"
)

// YAWNS is the barrier-synchronized conservative executor. All processes
// advance in lockstep windows bounded by the lower bound on time stamp
// (LBTS): an event strictly below the LBTS is safe to dispatch because no
// peer can still produce an earlier or equal one.
type YAWNS struct {
	cfg      *Config
	la       *LookaheadMatrix
	tr       transport.Transport
	rank     int
	size     int

	airports map[int]*Airport
	pq       EventQueue
	outgoing [][]Event
	now      int64
	lbts     int64

	elog *EventLog
	lg   *log.Logger

	// Trace, if set, observes every dispatched event.
	Trace func(Event)
}

func NewYAWNS(cfg *Config, d *DistanceMatrix, tr transport.Transport, elog *EventLog, lg *log.Logger) (*YAWNS, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tr.Size() != cfg.NumLPs {
		return nil, fmt.Errorf("transport size %d, num_lps %d: %w", tr.Size(), cfg.NumLPs, ErrInvalidConfiguration)
	}

	y := &YAWNS{
		cfg:      cfg,
		la:       MakeLookaheadMatrix(d, cfg),
		tr:       tr,
		rank:     tr.Rank(),
		size:     tr.Size(),
		airports: make(map[int]*Airport),
		outgoing: make([][]Event, tr.Size()),
		elog:     elog,
		lg:       lg.With(slog.Int("rank", tr.Rank())),
	}
	for _, id := range cfg.OwnedAirports(y.rank) {
		y.airports[id] = MakeAirport(id, cfg, d)
	}
	for _, ev := range BootstrapEvents(cfg, y.rank) {
		y.Schedule(ev)
	}
	return y, nil
}

func (y *YAWNS) Now() int64 { return y.now }

func (y *YAWNS) Schedule(ev Event) {
	if y.now > y.cfg.MaxSimulationTime && ev.Type == EventReadyForTakeoff {
		return
	}
	ev.Source = y.rank
	if owner := y.cfg.Owner(ev.Airport); owner == y.rank {
		y.pq.Push(ev)
	} else {
		// Remote events wait in the outgoing buffer until the next
		// exchange window.
		y.outgoing[owner] = append(y.outgoing[owner], ev)
	}
}

func (y *YAWNS) Run() error {
	if err := y.tr.Barrier(); err != nil {
		return err
	}

	for iter := 0; ; iter++ {
		// Dispatch everything strictly below the current safe horizon. A
		// peer can still emit an event at exactly the horizon, so events
		// sitting right on it wait one more window; by then every equal
		// timestamp is in the queue and ties resolve by content, the same
		// way the sequential executor resolves them.
		for {
			head, ok := y.pq.Peek()
			if !ok || head.Time >= y.lbts {
				break
			}
			ev, _ := y.pq.Pop()
			if err := y.dispatch(ev); err != nil {
				return err
			}
		}
		// The window is exhausted; the clock still advances to the
		// horizon so peers' lookahead keeps growing from it.
		y.now = max(y.now, y.lbts)

		if err := y.tr.Barrier(); err != nil {
			return err
		}
		if err := y.exchange(); err != nil {
			return err
		}
		if err := y.tr.Barrier(); err != nil {
			return err
		}

		lbts, err := y.computeLBTS()
		if err != nil {
			return err
		}
		y.lbts = lbts

		// The halt vote comes after the exchange so that events still in
		// flight have reached their queues.
		votes := make([]int64, y.size)
		if y.pq.Len() == 0 {
			votes[y.rank] = 1
		}
		res, err := y.tr.AllReduceSum(votes)
		if err != nil {
			return err
		}
		if util.SumSlice(res) == int64(y.size) {
			y.lg.Infof("halting after %d windows at t=%d", iter+1, y.now)
			return nil
		}
	}
}

func (y *YAWNS) dispatch(ev Event) error {
	if ev.Time < y.now {
		return fmt.Errorf("t=%d after t=%d: %w", ev.Time, y.now, ErrNonMonotonicTime)
	}
	if ev.Type == EventNull {
		return fmt.Errorf("%s: %w", ev.Type, ErrUnexpectedNullEvent)
	}
	a, ok := y.airports[ev.Airport]
	if !ok {
		return fmt.Errorf("airport %d at rank %d: %w", ev.Airport, y.rank, ErrAirportNotOwned)
	}

	y.now = ev.Time
	y.elog.Log(ev, y.now)
	if y.Trace != nil {
		y.Trace(ev)
	}
	a.HandleEvent(ev, y)
	return nil
}

// exchange flushes the outgoing buffers and receives exactly the number
// of events addressed to this rank, as established by an all-reduce of
// the per-destination counts.
func (y *YAWNS) exchange() error {
	counts := make([]int64, y.size)
	for dest, evs := range y.outgoing {
		counts[dest] = int64(len(evs))
	}
	if counts[y.rank] != 0 {
		return fmt.Errorf("%d buffered events for own rank %d: %w", counts[y.rank], y.rank, ErrAirportNotOwned)
	}

	incoming, err := y.tr.AllReduceSum(counts)
	if err != nil {
		return err
	}

	for dest, evs := range y.outgoing {
		for _, ev := range evs {
			if err := y.tr.Send(dest, ev.Wire()); err != nil {
				return err
			}
		}
		y.outgoing[dest] = nil
	}

	for expect := incoming[y.rank]; expect > 0; expect-- {
		vec, src, err := y.tr.RecvAny()
		if err != nil {
			return err
		}
		ev, err := EventFromWire(vec, src)
		if err != nil {
			return err
		}
		if ev.Type == EventNull {
			return fmt.Errorf("from rank %d: %w", src, ErrUnexpectedNullEvent)
		}
		if y.cfg.Owner(ev.Airport) != y.rank {
			return fmt.Errorf("airport %d from rank %d: %w", ev.Airport, src, ErrAirportNotOwned)
		}
		y.pq.Push(ev)
	}
	return nil
}

// computeLBTS all-reduces every rank's clock (each contributes only its
// own slot, so the sum is the vector of clocks) and takes the minimum of
// clock plus lookahead over the peers.
func (y *YAWNS) computeLBTS() (int64, error) {
	send := make([]int64, y.size)
	send[y.rank] = y.now
	clocks, err := y.tr.AllReduceSum(send)
	if err != nil {
		return 0, err
	}

	return util.MinOver(y.size, func(q int) int64 {
		if q == y.rank {
			return math.MaxInt64
		}
		return clocks[q] + y.la.Between(y.rank, q)
	}), nil
}

func (y *YAWNS) Statistics() Statistics {
	var st Statistics
	for _, a := range y.airports {
		st.Accumulate(a)
	}
	return st
}
