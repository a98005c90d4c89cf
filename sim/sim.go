// sim/sim.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package sim implements a discrete-event simulation of an air-traffic
// network: airports with a bounded pool of runways, planes that land,
// turn around, and fly on to another airport. Three executors share the
// same airport model: a sequential one that drains a single global event
// queue, and two conservative parallel ones (barrier-synchronized YAWNS
// and Chandy-Misra-Bryant null messages) that partition the airports
// across logical processes coordinated through a transport.Transport.
package sim

// Executor is the common surface of the three simulation drivers.
type Executor interface {
	EventScheduler

	// Run processes events until the simulation completes.
	Run() error

	// Statistics returns the counters accumulated at this process's
	// airports.
	Statistics() Statistics
}

var (
	_ Executor = (*Sequential)(nil)
	_ Executor = (*YAWNS)(nil)
	_ Executor = (*NullMessage)(nil)
)
