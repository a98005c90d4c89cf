// sim/airport.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"

	"github.com/arids/modeling-simulation/rand"
	"github.com/arids/modeling-simulation/util"
)

func AirportName(id int) string {
	return fmt.Sprintf("AIRPORT-%d", id)
}

// EventScheduler is the executor-side interface handlers schedule new
// events through. Now is the timestamp of the event currently being
// dispatched.
type EventScheduler interface {
	Now() int64
	Schedule(Event)
}

// Airport handles all events at a given airport and schedules follow-on
// events, possibly at other airports.
type Airport struct {
	ID   int
	Name string

	RunwaysInUse    int
	Landings        int64
	Departures      int64
	WaitingToLand   int
	WaitingToDepart int
	TotalWaitLand   int64
	TotalWaitDepart int64

	landingQueue []Event // PlaneArrives events holding for a runway, FIFO
	takeoffQueue []Event // ReadyForTakeoff events holding for a runway, FIFO

	cfg          *Config
	distance     *DistanceMatrix
	rng          *rand.Rand
	destinations []int
}

func MakeAirport(id int, cfg *Config, d *DistanceMatrix) *Airport {
	return &Airport{
		ID:       id,
		Name:     AirportName(id),
		cfg:      cfg,
		distance: d,
		rng:      rand.MakeStream(cfg.Seed, airportStream(id)),
		destinations: util.FilterSlice(cfg.AllAirports(), func(other int) bool {
			return other != id
		}),
	}
}

func (a *Airport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", a.Name),
		slog.Int("runways_in_use", a.RunwaysInUse),
		slog.Int64("landings", a.Landings),
		slog.Int64("departures", a.Departures),
		slog.Int("waiting_to_land", a.WaitingToLand),
		slog.Int("waiting_to_depart", a.WaitingToDepart))
}

// HandleEvent applies a single event to the airport's state and schedules
// any follow-on events through sched. Invariant violations panic: the
// simulation cannot produce meaningful output past one.
func (a *Airport) HandleEvent(ev Event, sched EventScheduler) {
	if ev.Airport != a.ID {
		panic(fmt.Sprintf("%s: dispatched event for airport %d", a.Name, ev.Airport))
	}
	now := sched.Now()

	switch ev.Type {
	case EventPlaneArrives:
		if a.RunwaysInUse < a.cfg.NumRunwaysPerAirport {
			a.RunwaysInUse++
			sched.Schedule(Event{Type: EventPlaneLanded, Time: now + a.cfg.RunwayTimeToLand,
				Airport: a.ID, Plane: ev.Plane})
		} else {
			a.WaitingToLand++
			a.landingQueue = append(a.landingQueue, ev)
		}

	case EventPlaneLanded:
		a.Landings++
		a.releaseRunway(now)
		sched.Schedule(Event{Type: EventReadyForTakeoff, Time: now + a.cfg.RequiredTimeOnGround,
			Airport: a.ID, Plane: ev.Plane})
		a.notifyWaiting(now, sched)

	case EventReadyForTakeoff:
		if a.RunwaysInUse < a.cfg.NumRunwaysPerAirport {
			a.RunwaysInUse++
			sched.Schedule(Event{Type: EventPlaneDeparts, Time: now + a.cfg.RunwayTimeToTakeoff,
				Airport: a.ID, Plane: ev.Plane})
		} else {
			a.WaitingToDepart++
			a.takeoffQueue = append(a.takeoffQueue, ev)
		}

	case EventPlaneDeparts:
		a.Departures++
		a.releaseRunway(now)
		dest := a.destinations[a.rng.Intn(len(a.destinations))]
		travel := a.distance.Between(a.ID, dest)
		sched.Schedule(Event{Type: EventPlaneArrives, Time: now + travel,
			Airport: dest, Plane: ev.Plane})
		a.notifyWaiting(now, sched)

	default:
		panic(fmt.Sprintf("%s: unexpected event type %s", a.Name, ev.Type))
	}

	a.checkInvariants()
}

func (a *Airport) releaseRunway(now int64) {
	a.RunwaysInUse--
	if a.RunwaysInUse < 0 {
		panic(fmt.Sprintf("%s: runways in use dropped below zero at t=%d", a.Name, now))
	}
}

// notifyWaiting hands the just-freed runway to one queued plane; planes
// waiting to land are preferred over those waiting to depart.
func (a *Airport) notifyWaiting(now int64, sched EventScheduler) {
	if a.WaitingToLand > 0 {
		head := a.landingQueue[0]
		a.landingQueue = a.landingQueue[1:]
		a.WaitingToLand--
		if head.Type != EventPlaneArrives {
			panic(fmt.Sprintf("%s: %s event in landing queue", a.Name, head.Type))
		}
		if now < head.Time {
			panic(fmt.Sprintf("%s: queued arrival from t=%d released at t=%d", a.Name, head.Time, now))
		}
		a.RunwaysInUse++
		a.TotalWaitLand += now - head.Time
		sched.Schedule(Event{Type: EventPlaneLanded, Time: now + a.cfg.RunwayTimeToLand,
			Airport: a.ID, Plane: head.Plane})
	} else if a.WaitingToDepart > 0 {
		head := a.takeoffQueue[0]
		a.takeoffQueue = a.takeoffQueue[1:]
		a.WaitingToDepart--
		if head.Type != EventReadyForTakeoff {
			panic(fmt.Sprintf("%s: %s event in takeoff queue", a.Name, head.Type))
		}
		if now < head.Time {
			panic(fmt.Sprintf("%s: queued takeoff from t=%d released at t=%d", a.Name, head.Time, now))
		}
		a.RunwaysInUse++
		a.TotalWaitDepart += now - head.Time
		sched.Schedule(Event{Type: EventPlaneDeparts, Time: now + a.cfg.RunwayTimeToTakeoff,
			Airport: a.ID, Plane: head.Plane})
	}
}

func (a *Airport) checkInvariants() {
	if a.RunwaysInUse > a.cfg.NumRunwaysPerAirport {
		panic(fmt.Sprintf("%s: %d runways in use, capacity %d", a.Name, a.RunwaysInUse,
			a.cfg.NumRunwaysPerAirport))
	}
	if a.WaitingToLand != len(a.landingQueue) {
		panic(fmt.Sprintf("%s: waiting to land %d but queue length %d", a.Name, a.WaitingToLand,
			len(a.landingQueue)))
	}
	if a.WaitingToDepart != len(a.takeoffQueue) {
		panic(fmt.Sprintf("%s: waiting to depart %d but queue length %d", a.Name, a.WaitingToDepart,
			len(a.takeoffQueue)))
	}
}
