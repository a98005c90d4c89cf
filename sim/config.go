// sim/config.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/arids/modeling-simulation/util"
)

// Config holds the simulation parameters. NumLPs describes how airports
// are partitioned across logical processes; the sequential executor
// consumes the same partitioning so that runs are comparable across
// executors.
type Config struct {
	NumRunwaysPerAirport int   `json:"num_runways_per_airport"`
	NumAirports          int   `json:"num_airports"`
	NumAirplanes         int   `json:"num_airplanes"`
	NumLPs               int   `json:"num_lps"`
	DistanceMin          int64 `json:"distance_min"`
	DistanceMax          int64 `json:"distance_max"`
	RunwayTimeToLand     int64 `json:"runway_time_to_land"`
	RequiredTimeOnGround int64 `json:"required_time_on_ground"`
	RunwayTimeToTakeoff  int64 `json:"runway_time_to_takeoff"`
	Seed                 int64 `json:"seed"`
	MaxSimulationTime    int64 `json:"max_simulation_time"`
}

func DefaultConfig() Config {
	return Config{
		NumRunwaysPerAirport: 5,
		NumAirports:          3,
		NumAirplanes:         1000,
		NumLPs:               1,
		DistanceMin:          600,
		DistanceMax:          4000,
		RunwayTimeToLand:     30,
		RequiredTimeOnGround: 100,
		RunwayTimeToTakeoff:  30,
		Seed:                 1,
		MaxSimulationTime:    100000,
	}
}

// LoadConfig reads a JSON configuration file; options not present in the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	check := func(ok bool, format string, args ...any) error {
		if ok {
			return nil
		}
		return fmt.Errorf(format+": %w", append(args, ErrInvalidConfiguration)...)
	}

	if err := check(c.NumLPs >= 1, "num_lps %d", c.NumLPs); err != nil {
		return err
	}
	if err := check(c.NumAirports >= 2, "num_airports %d", c.NumAirports); err != nil {
		return err
	}
	if err := check(c.NumAirports >= c.NumLPs, "num_airports %d < num_lps %d", c.NumAirports, c.NumLPs); err != nil {
		return err
	}
	if err := check(c.NumAirplanes >= 1, "num_airplanes %d", c.NumAirplanes); err != nil {
		return err
	}
	if err := check(c.NumRunwaysPerAirport >= 1, "num_runways_per_airport %d", c.NumRunwaysPerAirport); err != nil {
		return err
	}
	if err := check(c.DistanceMin > 0 && c.DistanceMin <= c.DistanceMax, "distance range [%d,%d]", c.DistanceMin, c.DistanceMax); err != nil {
		return err
	}
	if err := check(c.RunwayTimeToLand > 0, "runway_time_to_land %d", c.RunwayTimeToLand); err != nil {
		return err
	}
	if err := check(c.RequiredTimeOnGround > 0, "required_time_on_ground %d", c.RequiredTimeOnGround); err != nil {
		return err
	}
	if err := check(c.RunwayTimeToTakeoff > 0, "runway_time_to_takeoff %d", c.RunwayTimeToTakeoff); err != nil {
		return err
	}
	return check(c.MaxSimulationTime > 0, "max_simulation_time %d", c.MaxSimulationTime)
}

// AirportsPerLP returns how many consecutive airport ids each logical
// process owns (the highest-numbered processes may own fewer, or none).
func (c *Config) AirportsPerLP() int {
	return (c.NumAirports + c.NumLPs - 1) / c.NumLPs
}

// Owner returns the rank of the logical process that owns the given
// airport.
func (c *Config) Owner(airportID int) int {
	return airportID / c.AirportsPerLP()
}

func (c *Config) AllAirports() []int {
	ids := make([]int, c.NumAirports)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func (c *Config) OwnedAirports(rank int) []int {
	return util.FilterSlice(c.AllAirports(), func(id int) bool { return c.Owner(id) == rank })
}

// RNG stream numbers. Each airport and each plane draws from its own
// PCG32 stream so the sequence of draws is a function of the configuration
// alone, not of which executor is running.
const (
	airportStreamBase uint64 = 0
	planeStreamBase   uint64 = 1 << 32
	distanceStream    uint64 = 1 << 40
)

func airportStream(id int) uint64 { return airportStreamBase + uint64(id) }
func planeStream(id int) uint64   { return planeStreamBase + uint64(id) }
