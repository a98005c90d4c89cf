// sim/bootstrap.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import "github.com/arids/modeling-simulation/rand"

// Initial departure times are drawn uniformly from [0, initialWindow).
const initialWindow = 20

// planePartition returns the contiguous range of plane ids rank seeds.
// Every rank seeds floor(planes/lps); rank 0 additionally takes the
// remainder. Seeding each plane at the rank that owns its airport keeps
// all initial events in designated queues rather than in transit.
func planePartition(c *Config, rank int) (start, count int) {
	per := c.NumAirplanes / c.NumLPs
	rem := c.NumAirplanes - per*c.NumLPs
	if rank == 0 {
		return 0, per + rem
	}
	return rem + rank*per, per
}

// BootstrapEvents returns rank's share of the initial ReadyForTakeoff
// events. Each plane draws its airport (from the rank's owned airports)
// and its initial departure time from the plane's own RNG stream, so the
// full initial event set is a pure function of the configuration.
func BootstrapEvents(c *Config, rank int) []Event {
	owned := c.OwnedAirports(rank)
	start, count := planePartition(c, rank)

	events := make([]Event, 0, count)
	for plane := start; plane < start+count; plane++ {
		r := rand.MakeStream(c.Seed, planeStream(plane))
		airport := owned[r.Intn(len(owned))]
		departAt := int64(r.Intn(initialWindow))
		events = append(events, Event{
			Type:    EventReadyForTakeoff,
			Time:    departAt,
			Airport: airport,
			Source:  rank,
			Plane:   plane,
		})
	}
	return events
}

// AllBootstrapEvents returns the initial events of every rank; the
// sequential executor consumes these directly.
func AllBootstrapEvents(c *Config) []Event {
	var events []Event
	for rank := 0; rank < c.NumLPs; rank++ {
		events = append(events, BootstrapEvents(c, rank)...)
	}
	return events
}
