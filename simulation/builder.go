package simulation

import (
	"io"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/metrics/prom"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/sim/hooking"
)

const defaultPublishInterval = 4096

// Builder can be used to build a simulation.
type Builder struct {
	config          *config.Config
	recordOn        bool
	recordPath      string
	accessLog       io.Writer
	monitorOn       bool
	monitorPort     int
	publishInterval int
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		publishInterval: defaultPublishInterval,
	}
}

// WithConfig sets the cache hierarchy to simulate.
func (b Builder) WithConfig(c *config.Config) Builder {
	b.config = c
	return b
}

// WithRecording records every access into a SQLite database at path. An
// empty path gets a generated name.
func (b Builder) WithRecording(path string) Builder {
	b.recordOn = true
	b.recordPath = path

	return b
}

// WithAccessLog prints every access to w.
func (b Builder) WithAccessLog(w io.Writer) Builder {
	b.accessLog = w
	return b
}

// WithMonitoring starts a monitoring server on port. Port 0 picks a free
// port.
func (b Builder) WithMonitoring(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port

	return b
}

// WithPublishInterval sets how many trace records are replayed between two
// updates of the monitor.
func (b Builder) WithPublishInterval(n int) Builder {
	b.publishInterval = n
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.config == nil {
		panic("configuration is not set")
	}

	if b.publishInterval <= 0 {
		panic("publish interval must be positive")
	}
}

// Build builds the simulation. It returns the configuration error if the
// hierarchy cannot be built.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{
		id:              xid.New().String(),
		publishInterval: b.publishInterval,
	}

	var hooks []hooking.Hook

	if b.recordOn {
		s.dataRecorder = datarecording.New(b.recordPath)
		s.execRecorder = datarecording.NewExecRecorder(s.dataRecorder, s.id)
		hooks = append(hooks, trace.NewDBTracer(s.dataRecorder, s.id))
	}

	if b.accessLog != nil {
		hooks = append(hooks, trace.NewLogTracer(log.New(b.accessLog, "", 0)))
	}

	if b.monitorOn {
		registry := prometheus.NewRegistry()
		hooks = append(hooks, prom.New(registry, "cachesim"))

		s.monitor = monitoring.NewMonitor().
			WithPortNumber(b.monitorPort).
			WithGatherer(registry)
	}

	h, err := b.config.BuildHierarchy(hooks...)
	if err != nil {
		s.Terminate()
		return nil, err
	}

	s.hierarchy = h

	if s.monitor != nil {
		s.monitor.Publish(h)
		s.monitorURL = s.monitor.StartServer()
	}

	return s, nil
}
