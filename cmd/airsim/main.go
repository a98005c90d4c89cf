// cmd/airsim/main.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// This file contains the implementation of the main() function, which
// parses the command line, builds the configured executor and transport,
// runs the simulation, and prints the final report at rank 0.

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arids/modeling-simulation/log"
	"github.com/arids/modeling-simulation/sim"
	"github.com/arids/modeling-simulation/transport"
	"github.com/arids/modeling-simulation/util"
)

var (
	executorName  = flag.String("executor", "single", "executor to run: single, yawns, or nullmsg")
	transportName = flag.String("transport", "chan", "transport for parallel executors: chan (all LPs in this process) or tcp (one LP per process)")
	numLPs        = flag.Int("lps", 0, "number of logical processes (overrides the configuration)")
	rank          = flag.Int("rank", 0, "rank of this process (tcp transport only)")
	addrs         = flag.String("addrs", "", "comma-separated host:port for every rank (tcp transport only)")
	configFile    = flag.String("config", "", "JSON file with simulation parameters")
	outputName    = flag.String("name", "", "event log directory (defaults to the executor's name)")
	logLevel      = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir        = flag.String("logdir", "", "log file directory; stderr if empty")
	compressLogs  = flag.Bool("compresslogs", false, "zstd-compress the event log shards")
	seed          = flag.Int64("seed", -1, "random seed (overrides the configuration)")
	airplanes     = flag.Int("airplanes", 0, "number of airplanes (overrides the configuration)")
	airports      = flag.Int("airports", 0, "number of airports (overrides the configuration)")
	maxTime       = flag.Int64("maxtime", 0, "soft-stop simulation time (overrides the configuration)")
)

var executorDirs = map[string]string{
	"single":  "singlethread",
	"yawns":   "yawns",
	"nullmsg": "nullmsg",
}

func main() {
	flag.Parse()

	lg := log.New(*logLevel, *logDir)

	cfg := sim.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = sim.LoadConfig(*configFile); err != nil {
			fatal(lg, "%s: %v", *configFile, err)
		}
	}
	if *numLPs > 0 {
		cfg.NumLPs = *numLPs
	}
	if *seed >= 0 {
		cfg.Seed = *seed
	}
	if *airplanes > 0 {
		cfg.NumAirplanes = *airplanes
	}
	if *airports > 0 {
		cfg.NumAirports = *airports
	}
	if *maxTime > 0 {
		cfg.MaxSimulationTime = *maxTime
	}
	if err := cfg.Validate(); err != nil {
		fatal(lg, "invalid configuration: %v", err)
	}

	name := *outputName
	if name == "" {
		var ok bool
		if name, ok = executorDirs[*executorName]; !ok {
			fatal(lg, "%s: unknown executor", *executorName)
		}
	}

	d := sim.MakeDistanceMatrix(&cfg)

	switch {
	case *executorName == "single":
		runSequential(&cfg, d, name, lg)
	case *transportName == "chan":
		runInProcess(&cfg, d, name, lg)
	case *transportName == "tcp":
		runTCP(&cfg, d, name, lg)
	default:
		fatal(lg, "%s: unknown transport", *transportName)
	}
}

func runSequential(cfg *sim.Config, d *sim.DistanceMatrix, name string, lg *log.Logger) {
	if err := sim.SetupEventLogDir(name); err != nil {
		fatal(lg, "%s: %v", name, err)
	}
	elog, err := sim.OpenEventLog(name, 0, *compressLogs)
	if err != nil {
		fatal(lg, "%v", err)
	}

	s, err := sim.NewSequential(cfg, d, elog, lg)
	if err != nil {
		fatal(lg, "%v", err)
	}

	start := time.Now()
	if err := s.Run(); err != nil {
		fatal(lg, "%v", err)
	}
	elapsed := time.Since(start)

	if err := elog.Close(); err != nil {
		fatal(lg, "%s: %v", elog.Path, err)
	}

	fmt.Println("Simulation ended in ", elapsed.Seconds(), "seconds")
	s.Statistics().WriteReport(os.Stdout)
}

// runInProcess runs all of the logical processes as goroutines in this
// process, connected by the in-process mesh.
func runInProcess(cfg *sim.Config, d *sim.DistanceMatrix, name string, lg *log.Logger) {
	if err := sim.SetupEventLogDir(name); err != nil {
		fatal(lg, "%s: %v", name, err)
	}
	nodes, err := transport.NewMesh(cfg.NumLPs)
	if err != nil {
		fatal(lg, "%v", err)
	}

	var g errgroup.Group
	for _, node := range nodes {
		node := node
		g.Go(func() error { return runRank(cfg, d, name, node, lg) })
	}
	if err := g.Wait(); err != nil {
		fatal(lg, "%v", err)
	}
}

// runTCP runs the single logical process this OS process is responsible
// for, connected to its peers over TCP.
func runTCP(cfg *sim.Config, d *sim.DistanceMatrix, name string, lg *log.Logger) {
	addrList := util.MapSlice(strings.Split(*addrs, ","), strings.TrimSpace)
	if len(addrList) != cfg.NumLPs {
		fatal(lg, "%d addresses for %d LPs", len(addrList), cfg.NumLPs)
	}

	// Rank 0 clears the output directory before the mesh comes up; the
	// other ranks only open their shards once the mesh is connected, so
	// they cannot race with the cleanup.
	if *rank == 0 {
		if err := sim.SetupEventLogDir(name); err != nil {
			fatal(lg, "%s: %v", name, err)
		}
	}

	mesh, err := transport.NewTCPMesh(*rank, addrList, lg)
	if err != nil {
		fatal(lg, "%v", err)
	}
	defer mesh.Close()

	if err := runRank(cfg, d, name, mesh, lg); err != nil {
		fatal(lg, "%v", err)
	}
}

func runRank(cfg *sim.Config, d *sim.DistanceMatrix, name string, tr transport.Transport, lg *log.Logger) error {
	elog, err := sim.OpenEventLog(name, tr.Rank(), *compressLogs)
	if err != nil {
		return err
	}

	var exec sim.Executor
	switch *executorName {
	case "yawns":
		exec, err = sim.NewYAWNS(cfg, d, tr, elog, lg)
	case "nullmsg":
		exec, err = sim.NewNullMessage(cfg, d, tr, elog, lg)
	default:
		err = fmt.Errorf("%s: unknown executor", *executorName)
	}
	if err != nil {
		return err
	}

	start := time.Now()
	if err := exec.Run(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := elog.Close(); err != nil {
		return err
	}

	stats, err := sim.ReduceStatistics(exec.Statistics(), tr)
	if err != nil {
		return err
	}

	// The reported runtime is the mean across the processes.
	sum, err := tr.AllReduceSum([]int64{elapsed.Milliseconds()})
	if err != nil {
		return err
	}

	if tr.Rank() == 0 {
		mean := float64(sum[0]) / float64(tr.Size()) / 1000
		fmt.Println("Simulation ended in ", mean, "seconds")
		stats.WriteReport(os.Stdout)
	}
	return nil
}

func fatal(lg *log.Logger, format string, args ...any) {
	lg.Errorf(format, args...)
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
