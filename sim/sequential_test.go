// sim/sequential_test.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"
)

func trivialConfig() (*Config, *DistanceMatrix) {
	cfg := &Config{
		NumRunwaysPerAirport: 1,
		NumAirports:          2,
		NumAirplanes:         1,
		NumLPs:               1,
		DistanceMin:          100,
		DistanceMax:          100,
		RunwayTimeToLand:     10,
		RequiredTimeOnGround: 15,
		RunwayTimeToTakeoff:  10,
		Seed:                 0,
		MaxSimulationTime:    300,
	}
	d, err := DistanceMatrixFromRows([][]int64{{0, 100}, {100, 0}})
	if err != nil {
		panic(err)
	}
	return cfg, d
}

func TestSequentialTrivial(t *testing.T) {
	cfg, d := trivialConfig()
	s, err := NewSequential(cfg, d, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	var trace []Event
	s.Trace = func(ev Event) { trace = append(trace, ev) }

	if err := s.Run(); err != nil {
		t.Fatal(err)
	}

	st := s.Statistics()
	if st.Departures < 2 || st.Landings < 2 {
		t.Errorf("departures %d, landings %d; want at least 2 of each", st.Departures, st.Landings)
	}

	// With one plane and two airports, every departure is followed by an
	// arrival at the other airport exactly one travel time later.
	for i, ev := range trace {
		if ev.Type != EventPlaneDeparts {
			continue
		}
		if i+1 >= len(trace) {
			t.Fatalf("departure at t=%d is the last event", ev.Time)
		}
		next := trace[i+1]
		if next.Type != EventPlaneArrives || next.Airport != 1-ev.Airport || next.Time != ev.Time+100 {
			t.Errorf("departure at t=%d from %d followed by %s at t=%d on %d",
				ev.Time, ev.Airport, next.Type, next.Time, next.Airport)
		}
	}
}

func TestSequentialMonotonicTime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumAirports = 4
	cfg.NumAirplanes = 50
	cfg.MaxSimulationTime = 20000

	s, err := NewSequential(&cfg, MakeDistanceMatrix(&cfg), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	last := int64(-1)
	s.Trace = func(ev Event) {
		if ev.Time < last {
			t.Errorf("dispatched t=%d after t=%d", ev.Time, last)
		}
		last = ev.Time
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
}

func TestSequentialCongestion(t *testing.T) {
	cfg := &Config{
		NumRunwaysPerAirport: 1,
		NumAirports:          2,
		NumAirplanes:         10,
		NumLPs:               1,
		DistanceMin:          100,
		DistanceMax:          100,
		RunwayTimeToLand:     10,
		RequiredTimeOnGround: 15,
		RunwayTimeToTakeoff:  10,
		Seed:                 1,
		MaxSimulationTime:    2000,
	}
	d, err := DistanceMatrixFromRows([][]int64{{0, 100}, {100, 0}})
	if err != nil {
		t.Fatal(err)
	}

	s, err := NewSequential(cfg, d, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	sawLandingQueue := false
	s.Trace = func(Event) {
		for _, a := range s.airports {
			if a.WaitingToLand >= 1 {
				sawLandingQueue = true
			}
		}
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}

	if !sawLandingQueue {
		t.Errorf("ten planes on one runway never queued a landing")
	}
	if st := s.Statistics(); st.WaitLand <= 0 {
		t.Errorf("total landing wait %d, want > 0", st.WaitLand)
	}
}

func TestSequentialSoftStop(t *testing.T) {
	cfg, d := trivialConfig()
	s, err := NewSequential(cfg, d, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	sawLateEvent := false
	s.Trace = func(ev Event) {
		// No takeoff cycle starts past the horizon: a dispatched
		// ReadyForTakeoff was scheduled from a landing at or before it,
		// so its timestamp is bounded by horizon plus ground time.
		if ev.Type == EventReadyForTakeoff && ev.Time > cfg.MaxSimulationTime+cfg.RequiredTimeOnGround {
			t.Errorf("ReadyForTakeoff dispatched at t=%d past the horizon", ev.Time)
		}
		if ev.Time > cfg.MaxSimulationTime {
			sawLateEvent = true
		}
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}

	// Flights already underway still drain past the horizon.
	if !sawLateEvent {
		t.Errorf("no in-flight event was dispatched past the horizon")
	}
}

func TestSequentialConservation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumAirports = 4
	cfg.NumAirplanes = 37
	cfg.MaxSimulationTime = 20000

	s, err := NewSequential(&cfg, MakeDistanceMatrix(&cfg), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	planes := make(map[int]bool)
	s.Trace = func(ev Event) { planes[ev.Plane] = true }
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}

	// Once the queue drains, every plane that took off has landed.
	if st := s.Statistics(); st.Landings != st.Departures {
		t.Errorf("%d landings but %d departures after drain", st.Landings, st.Departures)
	}
	if len(planes) != cfg.NumAirplanes {
		t.Errorf("%d planes seen, want %d", len(planes), cfg.NumAirplanes)
	}
}
