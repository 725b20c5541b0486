package models

import (
	"fmt"
	"path/filepath"
	"time"

	"bair-timelapse/internal/scheduler"
)

// RunPhase is a state of the controller's lifecycle machine
type RunPhase string

const (
	Idle         RunPhase = "idle"
	Previewing   RunPhase = "previewing"
	Snapshotting RunPhase = "snapshotting"
	Running      RunPhase = "running"
	Assembling   RunPhase = "assembling"
)

func (p RunPhase) String() string {
	return string(p)
}

// Editable reports whether the form and camera settings may change. A
// preview does not hold the form.
func (p RunPhase) Editable() bool {
	return p == Idle || p == Previewing
}

// OutputSettings names where frames and the video are written
type OutputSettings struct {
	Directory string
	Prefix    string
	MakeVideo bool
}

// DefaultPrefix is the default frame file name prefix
const DefaultPrefix = "image_"

// FrameName returns the file name of frame n
func (o OutputSettings) FrameName(n int) string {
	return fmt.Sprintf("%s%04d.jpg", o.Prefix, n)
}

// FramePath returns the path of frame n
func (o OutputSettings) FramePath(n int) string {
	return filepath.Join(o.Directory, o.FrameName(n))
}

// FramePattern returns the numbered frame sequence pattern for the encoder
func (o OutputSettings) FramePattern() string {
	return filepath.Join(o.Directory, o.Prefix+"%04d.jpg")
}

// VideoPath returns the path of the assembled video
func (o OutputSettings) VideoPath() string {
	return filepath.Join(o.Directory, o.Prefix+"video.mp4")
}

// RunState records the schedule and progress of a timelapse run. The phase
// lives in the controller's state machine.
type RunState struct {
	StartTime time.Time
	Interval  time.Duration
	NumImages int
	Counter   int
	Output    OutputSettings
}

// NewRun creates the record of a run starting at start
func NewRun(start time.Time, plan RunPlan, output OutputSettings) RunState {
	return RunState{
		StartTime: start,
		Interval:  plan.Interval,
		NumImages: plan.NumImages,
		Output:    output,
	}
}

// Finished reports whether every planned frame was captured
func (s RunState) Finished() bool {
	return s.Counter >= s.NumImages
}

// CurrentFramePath returns the path the next capture writes to
func (s RunState) CurrentFramePath() string {
	return s.Output.FramePath(s.Counter)
}

// Advance records a completed capture at now. It returns the next state and,
// when the run continues, the wait until the next capture. A finished run
// returns a zero wait.
func (s RunState) Advance(now time.Time) (RunState, time.Duration) {
	next := s
	next.Counter++
	if next.Finished() {
		return next, 0
	}
	return next, scheduler.NextWait(next.StartTime, now, next.Interval)
}

// Progress returns captured and total frame counts
func (s RunState) Progress() (int, int) {
	return s.Counter, s.NumImages
}
