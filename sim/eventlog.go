// sim/eventlog.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/arids/modeling-simulation/util"
)

var eventMessages = map[EventType]string{
	EventPlaneArrives:    "Plane arrives at ",
	EventPlaneLanded:     "Plane landed at ",
	EventReadyForTakeoff: "Plane ready for takeoff from ",
	EventPlaneDeparts:    "Plane departing from ",
}

// EventLog writes the per-process event trace, one shard per rank under
// the run's output directory. A nil *EventLog discards everything.
type EventLog struct {
	Path string

	f  *os.File
	zw *zstd.Encoder
	w  *bufio.Writer
}

// SetupEventLogDir recreates the output directory for a run. Rank 0 calls
// this once before any process opens its shard.
func SetupEventLogDir(name string) error {
	if err := os.RemoveAll(name); err != nil {
		return err
	}
	return os.Mkdir(name, 0o755)
}

// OpenEventLog opens this rank's shard. With compress set, the shard is
// zstd-compressed and named output_<rank>.txt.zst.
func OpenEventLog(name string, rank int, compress bool) (*EventLog, error) {
	path := filepath.Join(name, fmt.Sprintf("output_%d.txt", rank)) + util.Select(compress, ".zst", "")

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	l := &EventLog{Path: path, f: f}
	var w io.Writer = f
	if compress {
		if l.zw, err = zstd.NewWriter(f); err != nil {
			f.Close()
			return nil, err
		}
		w = l.zw
	}
	l.w = bufio.NewWriter(w)
	return l, nil
}

// Log appends one line for a dispatched event. Null events are not
// logged.
func (l *EventLog) Log(ev Event, now int64) {
	if l == nil || ev.Type == EventNull {
		return
	}
	fmt.Fprintf(l.w, "%d: %s %s\n", now, eventMessages[ev.Type], AirportName(ev.Airport))
}

func (l *EventLog) Close() error {
	if l == nil {
		return nil
	}
	err := l.w.Flush()
	if l.zw != nil {
		if cerr := l.zw.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	return err
}
