// Package common provides shared timing helpers for the inference stages.
package common

import (
	"fmt"
	"strings"
	"time"
)

// Timer measures one named stage.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer creates a new unnamed timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// NewNamedTimer creates a new timer for the given stage.
func NewNamedTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Name returns the timer name (empty string if unnamed).
func (t *Timer) Name() string {
	return t.name
}

// String returns a formatted string representation of the timer.
func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.duration)
	}
	return fmt.Sprintf("%v", t.duration)
}

// StageTiming is the recorded duration of one stage.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration_ns"`
}

// Timings lists stage durations in completion order.
type Timings []StageTiming

// Start begins timing a stage. The returned function stops the timer and
// records it.
func (t *Timings) Start(stage string) func() time.Duration {
	timer := NewNamedTimer(stage)
	return func() time.Duration {
		d := timer.Stop()
		*t = append(*t, StageTiming{Stage: timer.Name(), Duration: d})
		return d
	}
}

// Get returns the duration recorded for stage.
func (t Timings) Get(stage string) (time.Duration, bool) {
	for _, st := range t {
		if st.Stage == stage {
			return st.Duration, true
		}
	}
	return 0, false
}

// Total returns the sum of all recorded stages.
func (t Timings) Total() time.Duration {
	var total time.Duration
	for _, st := range t {
		total += st.Duration
	}
	return total
}

func (t Timings) String() string {
	parts := make([]string, 0, len(t))
	for _, st := range t {
		parts = append(parts, fmt.Sprintf("%s=%v", st.Stage, st.Duration.Round(time.Microsecond)))
	}
	return strings.Join(parts, " ")
}
