package datarecording

import (
	"os"
	"strings"
	"time"
)

const (
	execTable  = "exec_info"
	timeLayout = "2006-01-02 15:04:05.000000000"
)

// execInfo is a property of a run.
type execInfo struct {
	RunID    string
	Property string
	Value    string
}

// An ExecRecorder records the properties of one run, such as its command
// line and input files, into the exec_info table.
type ExecRecorder struct {
	runID    string
	recorder DataRecorder
	entries  []execInfo
}

// NewExecRecorder creates the exec_info table in recorder.
func NewExecRecorder(recorder DataRecorder, runID string) *ExecRecorder {
	recorder.CreateTable(execTable, execInfo{})

	return &ExecRecorder{
		runID:    runID,
		recorder: recorder,
	}
}

// Start records the start time and the command line.
func (e *ExecRecorder) Start() {
	e.Record("Start Time", time.Now().Format(timeLayout))
	e.Record("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err == nil {
		e.Record("Working Directory", cwd)
	}
}

// Record adds a property of the run.
func (e *ExecRecorder) Record(property, value string) {
	e.entries = append(e.entries, execInfo{
		RunID:    e.runID,
		Property: property,
		Value:    value,
	})
}

// End records the end time and writes all the properties.
func (e *ExecRecorder) End() {
	e.Record("End Time", time.Now().Format(timeLayout))

	for _, entry := range e.entries {
		e.recorder.InsertData(execTable, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}
