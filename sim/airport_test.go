// sim/airport_test.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"
)

// recordingScheduler captures scheduled events for inspection.
type recordingScheduler struct {
	now       int64
	scheduled []Event
}

func (r *recordingScheduler) Now() int64        { return r.now }
func (r *recordingScheduler) Schedule(ev Event) { r.scheduled = append(r.scheduled, ev) }

func (r *recordingScheduler) take() []Event {
	s := r.scheduled
	r.scheduled = nil
	return s
}

func testAirportConfig() (*Config, *DistanceMatrix) {
	cfg := DefaultConfig()
	cfg.NumAirports = 2
	cfg.NumRunwaysPerAirport = 1
	cfg.RunwayTimeToLand = 10
	cfg.RequiredTimeOnGround = 15
	cfg.RunwayTimeToTakeoff = 10
	d, err := DistanceMatrixFromRows([][]int64{{0, 100}, {100, 0}})
	if err != nil {
		panic(err)
	}
	return &cfg, d
}

func TestAirportArrivalTakesRunway(t *testing.T) {
	cfg, d := testAirportConfig()
	a := MakeAirport(0, cfg, d)
	sched := &recordingScheduler{now: 50}

	a.HandleEvent(Event{Type: EventPlaneArrives, Time: 50, Airport: 0, Plane: 1}, sched)

	if a.RunwaysInUse != 1 {
		t.Errorf("runways in use %d, want 1", a.RunwaysInUse)
	}
	got := sched.take()
	if len(got) != 1 || got[0].Type != EventPlaneLanded || got[0].Time != 60 ||
		got[0].Airport != 0 || got[0].Plane != 1 {
		t.Errorf("scheduled %v, want PlaneLanded t=60 on airport 0 plane 1", got)
	}
}

func TestAirportArrivalQueuesWhenFull(t *testing.T) {
	cfg, d := testAirportConfig()
	a := MakeAirport(0, cfg, d)
	sched := &recordingScheduler{now: 0}

	a.HandleEvent(Event{Type: EventPlaneArrives, Time: 0, Airport: 0, Plane: 1}, sched)
	sched.now = 3
	a.HandleEvent(Event{Type: EventPlaneArrives, Time: 3, Airport: 0, Plane: 2}, sched)

	if a.WaitingToLand != 1 {
		t.Errorf("waiting to land %d, want 1", a.WaitingToLand)
	}
	if a.RunwaysInUse != 1 {
		t.Errorf("runways in use %d, want 1", a.RunwaysInUse)
	}
}

func TestAirportLandingReleasesAndTurnsAround(t *testing.T) {
	cfg, d := testAirportConfig()
	a := MakeAirport(0, cfg, d)
	sched := &recordingScheduler{now: 0}

	a.HandleEvent(Event{Type: EventPlaneArrives, Time: 0, Airport: 0, Plane: 1}, sched)
	sched.take()

	sched.now = 10
	a.HandleEvent(Event{Type: EventPlaneLanded, Time: 10, Airport: 0, Plane: 1}, sched)

	if a.Landings != 1 {
		t.Errorf("landings %d, want 1", a.Landings)
	}
	if a.RunwaysInUse != 0 {
		t.Errorf("runways in use %d, want 0", a.RunwaysInUse)
	}
	got := sched.take()
	if len(got) != 1 || got[0].Type != EventReadyForTakeoff || got[0].Time != 25 || got[0].Plane != 1 {
		t.Errorf("scheduled %v, want ReadyForTakeoff t=25 plane 1", got)
	}
}

func TestAirportDepartureFliesToOtherAirport(t *testing.T) {
	cfg, d := testAirportConfig()
	a := MakeAirport(0, cfg, d)
	sched := &recordingScheduler{now: 25}

	a.HandleEvent(Event{Type: EventReadyForTakeoff, Time: 25, Airport: 0, Plane: 1}, sched)
	got := sched.take()
	if len(got) != 1 || got[0].Type != EventPlaneDeparts || got[0].Time != 35 {
		t.Fatalf("scheduled %v, want PlaneDeparts t=35", got)
	}

	sched.now = 35
	a.HandleEvent(Event{Type: EventPlaneDeparts, Time: 35, Airport: 0, Plane: 1}, sched)

	if a.Departures != 1 {
		t.Errorf("departures %d, want 1", a.Departures)
	}
	got = sched.take()
	// With two airports the only possible destination is the other one,
	// one travel time out.
	if len(got) != 1 || got[0].Type != EventPlaneArrives || got[0].Airport != 1 ||
		got[0].Time != 135 || got[0].Plane != 1 {
		t.Errorf("scheduled %v, want PlaneArrives t=135 on airport 1", got)
	}
}

func TestRunwayReleasePrefersLandings(t *testing.T) {
	cfg, d := testAirportConfig()
	a := MakeAirport(0, cfg, d)
	sched := &recordingScheduler{now: 0}

	// Occupy the single runway, then queue one arrival and one takeoff.
	a.HandleEvent(Event{Type: EventPlaneArrives, Time: 0, Airport: 0, Plane: 1}, sched)
	sched.now = 1
	a.HandleEvent(Event{Type: EventPlaneArrives, Time: 1, Airport: 0, Plane: 2}, sched)
	sched.now = 2
	a.HandleEvent(Event{Type: EventReadyForTakeoff, Time: 2, Airport: 0, Plane: 3}, sched)
	if a.WaitingToLand != 1 || a.WaitingToDepart != 1 {
		t.Fatalf("waiting %d/%d, want 1/1", a.WaitingToLand, a.WaitingToDepart)
	}
	sched.take()

	// The landing at t=10 frees the runway; the queued arrival must get
	// it, not the queued takeoff.
	sched.now = 10
	a.HandleEvent(Event{Type: EventPlaneLanded, Time: 10, Airport: 0, Plane: 1}, sched)

	got := sched.take()
	var kinds []EventType
	for _, ev := range got {
		kinds = append(kinds, ev.Type)
	}
	if len(got) != 2 || got[0].Type != EventReadyForTakeoff || got[1].Type != EventPlaneLanded {
		t.Fatalf("scheduled %v", kinds)
	}
	if got[1].Plane != 2 || got[1].Time != 20 {
		t.Errorf("released %v, want PlaneLanded t=20 plane 2", got[1])
	}
	if a.WaitingToLand != 0 || a.WaitingToDepart != 1 {
		t.Errorf("waiting %d/%d after release, want 0/1", a.WaitingToLand, a.WaitingToDepart)
	}
	// The arrival waited from t=1 to t=10.
	if a.TotalWaitLand != 9 {
		t.Errorf("total landing wait %d, want 9", a.TotalWaitLand)
	}
	if a.TotalWaitDepart != 0 {
		t.Errorf("total departure wait %d, want 0", a.TotalWaitDepart)
	}
}

func TestRunwayBoundsViolationPanics(t *testing.T) {
	cfg, d := testAirportConfig()
	a := MakeAirport(0, cfg, d)
	sched := &recordingScheduler{now: 0}

	defer func() {
		if recover() == nil {
			t.Errorf("releasing an idle runway did not panic")
		}
	}()
	// A landing with no runway in use drives the counter negative.
	a.HandleEvent(Event{Type: EventPlaneLanded, Time: 0, Airport: 0, Plane: 1}, sched)
}

func TestAirportRejectsForeignEvent(t *testing.T) {
	cfg, d := testAirportConfig()
	a := MakeAirport(0, cfg, d)
	sched := &recordingScheduler{now: 0}

	defer func() {
		if recover() == nil {
			t.Errorf("event for another airport did not panic")
		}
	}()
	a.HandleEvent(Event{Type: EventPlaneArrives, Time: 0, Airport: 1, Plane: 1}, sched)
}
