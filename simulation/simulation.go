// Package simulation runs a trace through a cache hierarchy together with the
// services that observe the run.
package simulation

import (
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
)

// A Simulation owns a cache hierarchy and the recorder and monitor attached
// to it.
type Simulation struct {
	id              string
	hierarchy       *cache.Hierarchy
	publishInterval int

	dataRecorder datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	monitor      *monitoring.Monitor
	monitorURL   string

	accesses   int
	badRecords int
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Hierarchy returns the simulated cache hierarchy.
func (s *Simulation) Hierarchy() *cache.Hierarchy {
	return s.hierarchy
}

// MonitorURL returns the address of the monitoring server.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// BadRecords returns the number of malformed trace records skipped so far.
func (s *Simulation) BadRecords() int {
	return s.badRecords
}

// Run replays the trace read from r and returns the report of the hierarchy.
// Malformed records are logged and skipped. The traceName is only used for
// display.
func (s *Simulation) Run(traceName string, r io.Reader) (cache.RunReport, error) {
	if s.execRecorder != nil {
		s.execRecorder.Start()
		s.execRecorder.Record("Trace", traceName)
	}

	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar(traceName, 0)
	}

	n, err := trace.Replay(r,
		func(record trace.Record) {
			s.hierarchy.Access(record.Address)
			s.accesses++
			s.afterAccess(bar)
		},
		func(e *trace.TraceRecordError) {
			s.badRecords++
			log.Printf("skipping trace record: %v", e)
		},
	)

	if s.monitor != nil {
		bar.IncrementFinished(uint64(s.accesses % s.publishInterval))
		s.monitor.Publish(s.hierarchy)
		s.monitor.CompleteProgressBar(bar)
	}

	if err != nil {
		return cache.RunReport{}, fmt.Errorf("reading trace %s: %w", traceName, err)
	}

	report := s.hierarchy.Report()

	if s.execRecorder != nil {
		s.execRecorder.Record("Accesses", fmt.Sprint(n))
		s.execRecorder.Record("Skipped Records", fmt.Sprint(s.badRecords))
		s.execRecorder.Record("Main Memory Accesses",
			fmt.Sprint(report.MainMemoryAccess))
		s.execRecorder.End()
	}

	return report, nil
}

func (s *Simulation) afterAccess(bar *monitoring.ProgressBar) {
	if s.monitor == nil {
		return
	}

	if s.accesses%s.publishInterval != 0 {
		return
	}

	bar.IncrementFinished(uint64(s.publishInterval))
	s.monitor.Publish(s.hierarchy)
}

// Terminate flushes and closes the data recorder.
func (s *Simulation) Terminate() {
	if s.dataRecorder == nil {
		return
	}

	err := s.dataRecorder.Close()
	if err != nil {
		log.Printf("closing data recorder: %v", err)
	}
}
