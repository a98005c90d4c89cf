// sim/stats.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"io"

	"github.com/arids/modeling-simulation/transport"
)

// Statistics aggregates the per-airport counters of one or more
// processes.
type Statistics struct {
	Departures int64 `json:"departures"`
	Landings   int64 `json:"landings"`
	WaitDepart int64 `json:"wait_depart"`
	WaitLand   int64 `json:"wait_land"`
}

func (s *Statistics) Accumulate(a *Airport) {
	s.Departures += a.Departures
	s.Landings += a.Landings
	s.WaitDepart += a.TotalWaitDepart
	s.WaitLand += a.TotalWaitLand
}

func (s Statistics) TotalWait() int64 {
	return s.WaitDepart + s.WaitLand
}

func (s Statistics) AverageWait() float64 {
	if s.Departures+s.Landings == 0 {
		return 0
	}
	return float64(s.TotalWait()) / float64(s.Departures+s.Landings)
}

// Vector flattens the statistics into the five-counter tuple that is
// sum-reduced across processes: departures, landings, total wait,
// departure wait, landing wait.
func (s Statistics) Vector() []int64 {
	return []int64{s.Departures, s.Landings, s.TotalWait(), s.WaitDepart, s.WaitLand}
}

func StatisticsFromVector(v []int64) (Statistics, error) {
	if len(v) != 5 {
		return Statistics{}, fmt.Errorf("%d-counter statistics vector: %w", len(v), ErrMalformedEvent)
	}
	s := Statistics{Departures: v[0], Landings: v[1], WaitDepart: v[3], WaitLand: v[4]}
	if s.TotalWait() != v[2] {
		return Statistics{}, fmt.Errorf("total wait %d != %d + %d: %w", v[2], v[3], v[4], ErrMalformedEvent)
	}
	return s, nil
}

// ReduceStatistics sums each process's statistics at rank 0. Ranks other
// than 0 get the zero value back.
func ReduceStatistics(local Statistics, tr transport.Transport) (Statistics, error) {
	vec, err := tr.ReduceSum(local.Vector(), 0)
	if err != nil {
		return Statistics{}, err
	}
	if tr.Rank() != 0 {
		return Statistics{}, nil
	}
	return StatisticsFromVector(vec)
}

func (s Statistics) WriteReport(w io.Writer) {
	fmt.Fprintln(w, "TOTAL DEPARTURES: ", s.Departures)
	fmt.Fprintln(w, "TOTAL_LANDINGS  : ", s.Landings)
	fmt.Fprintln(w, "TOTAL WAIT TIME : ", s.TotalWait())
	fmt.Fprintln(w, "TOTAL_WAIT_TIME_FOR_DEPARTURES: ", s.WaitDepart)
	fmt.Fprintln(w, "TOTAL_WAIT_TIME_FOR_LANDINGS: ", s.WaitLand)
	fmt.Fprintln(w, "AVG WAITING TIME: ", s.AverageWait())
	fmt.Fprintln(w, "(Remember landings were preferred over departures)")
}
