package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultInputPath  = "input.txt"
	DefaultOutputPath = "output.txt"

	// DefaultPayload is written to the output file by the write stage
	DefaultPayload = "Hello, this is a test of Go file output!\n" +
		"We're writing this content to a file."

	// CopySeparator is appended to the output file before the copied input
	CopySeparator = "\n\n--- Copied Content ---\n"

	// CopyBufferSize is the size of the reusable buffer of the copy stage
	CopyBufferSize = 1024
)

// StageResult records the outcome of a single stage execution
type StageResult struct {
	ID         int64
	RunID      string
	Stage      Stage
	Path       string
	Bytes      int64
	Digest     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// OK reports whether the stage completed without error
func (r *StageResult) OK() bool {
	return r.Error == ""
}

func (r *StageResult) String() string {
	if !r.OK() {
		return fmt.Sprintf("%s %s: failed: %s", r.Stage, r.Path, r.Error)
	}
	return fmt.Sprintf("%s %s: %d bytes", r.Stage, r.Path, r.Bytes)
}

// Run is one execution of a sequence of stages
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []*StageResult
}

// Failed returns the number of stages that did not complete
func (r *Run) Failed() int {
	failed := 0
	for _, result := range r.Results {
		if !result.OK() {
			failed++
		}
	}
	return failed
}

// Finished reports whether the run has been closed
func (r *Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

func (r *Run) String() string {
	stages := make([]string, 0, len(r.Results))
	for _, result := range r.Results {
		stages = append(stages, result.Stage.String())
	}
	return fmt.Sprintf("%s [%s] %d/%d failed", r.ID, strings.Join(stages, ","), r.Failed(), len(r.Results))
}
