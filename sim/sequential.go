// sim/sequential.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"

	"github.com/arids/modeling-simulation/log"
)

// Sequential drains a single global event queue in timestamp order. It is
// the correctness oracle for the parallel executors: identical seeds and
// configuration must give identical per-airport counters.
type Sequential struct {
	cfg      *Config
	airports map[int]*Airport
	pq       EventQueue
	now      int64
	elog     *EventLog
	lg       *log.Logger

	// Trace, if set, observes every dispatched event.
	Trace func(Event)
}

func NewSequential(cfg *Config, d *DistanceMatrix, elog *EventLog, lg *log.Logger) (*Sequential, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Sequential{
		cfg:      cfg,
		airports: make(map[int]*Airport),
		elog:     elog,
		lg:       lg,
	}
	for _, id := range cfg.AllAirports() {
		s.airports[id] = MakeAirport(id, cfg, d)
	}
	for _, ev := range AllBootstrapEvents(cfg) {
		s.Schedule(ev)
	}
	return s, nil
}

func (s *Sequential) Now() int64 { return s.now }

func (s *Sequential) Schedule(ev Event) {
	// Soft stop: past the simulation horizon no plane starts another
	// ground cycle, but flights already underway drain naturally.
	if s.now > s.cfg.MaxSimulationTime && ev.Type == EventReadyForTakeoff {
		return
	}
	ev.Source = 0
	s.pq.Push(ev)
}

func (s *Sequential) Run() error {
	for {
		ev, ok := s.pq.Pop()
		if !ok {
			s.lg.Infof("queue drained at t=%d", s.now)
			return nil
		}
		if ev.Time < s.now {
			return fmt.Errorf("t=%d after t=%d: %w", ev.Time, s.now, ErrNonMonotonicTime)
		}
		if ev.Type == EventNull {
			return fmt.Errorf("%s: %w", ev.Type, ErrUnexpectedNullEvent)
		}
		a, ok := s.airports[ev.Airport]
		if !ok {
			return fmt.Errorf("airport %d: %w", ev.Airport, ErrAirportNotOwned)
		}

		s.now = ev.Time
		s.elog.Log(ev, s.now)
		if s.Trace != nil {
			s.Trace(ev)
		}
		a.HandleEvent(ev, s)
	}
}

func (s *Sequential) Statistics() Statistics {
	var st Statistics
	for _, a := range s.airports {
		st.Accumulate(a)
	}
	return st
}
