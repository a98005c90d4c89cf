// sim/event.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
)

type EventType int64

const (
	EventPlaneArrives    EventType = iota + 1 // plane enters the flying zone around an airport
	EventPlaneLanded                          // plane has landed and is off the runway
	EventReadyForTakeoff                      // plane has finished its ground time and needs a runway to take off
	EventPlaneDeparts                         // plane has departed; the runway is free for the next one
	EventNull                                 // lookahead promise between processes, never dispatched
)

func (t EventType) String() string {
	switch t {
	case EventPlaneArrives:
		return "PlaneArrives"
	case EventPlaneLanded:
		return "PlaneLanded"
	case EventReadyForTakeoff:
		return "ReadyForTakeoff"
	case EventPlaneDeparts:
		return "PlaneDeparts"
	case EventNull:
		return "Null"
	default:
		return fmt.Sprintf("EventType(%d)", int64(t))
	}
}

// Event is a single timestamped simulation event. Airport and Plane are -1
// for null events. Source is the rank of the process that scheduled the
// event; executors fill it in when the event enters their queue or the
// wire.
type Event struct {
	Type    EventType
	Time    int64
	Airport int
	Source  int
	Plane   int
}

func (e Event) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", e.Type.String()),
		slog.Int64("time", e.Time),
		slog.Int("airport", e.Airport),
		slog.Int("source", e.Source),
		slog.Int("plane", e.Plane))
}

// wireEventLen is the width of the integer tuple an event is serialized
// as: (kind, timestamp, airport, source, plane).
const wireEventLen = 5

func (e Event) Wire() []int64 {
	return []int64{int64(e.Type), e.Time, int64(e.Airport), int64(e.Source), int64(e.Plane)}
}

// EventFromWire decodes an event tuple received from the given source
// rank.
func EventFromWire(vec []int64, source int) (Event, error) {
	if len(vec) != wireEventLen {
		return Event{}, fmt.Errorf("%d-int tuple: %w", len(vec), ErrMalformedEvent)
	}
	e := Event{
		Type:    EventType(vec[0]),
		Time:    vec[1],
		Airport: int(vec[2]),
		Source:  int(vec[3]),
		Plane:   int(vec[4]),
	}
	if e.Type < EventPlaneArrives || e.Type > EventNull {
		return Event{}, fmt.Errorf("event kind %d: %w", vec[0], ErrMalformedEvent)
	}
	if e.Source != source {
		return Event{}, fmt.Errorf("tuple source %d received from rank %d: %w", e.Source, source, ErrMalformedEvent)
	}
	if (e.Type == EventNull) != (e.Airport == -1) {
		return Event{}, fmt.Errorf("event %v: %w", e, ErrMalformedEvent)
	}
	return e, nil
}
