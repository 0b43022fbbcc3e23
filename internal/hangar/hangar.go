package hangar

import (
	"fmt"
	"time"
)

// Color of a single hangar light
type Color string

const (
	Green Color = "green"
	Red   Color = "red"
	Empty Color = "empty"
)

// Status of the hangar during a phase of the cycle
type Status string

const (
	Online  Status = "online"
	Offline Status = "offline"
)

// A threshold maps a window of time inside the cycle, relative to the
// cycle start, to the pattern shown by the five hangar lights
type Threshold struct {
	Min    time.Duration
	Max    time.Duration
	Lights [5]Color
}

// Config describes the repeating open/close schedule of the hangar
type Config struct {
	InitialOpenTime time.Time
	OpenDuration    time.Duration
	CloseDuration   time.Duration
	Thresholds      []Threshold
}

// State of the hangar at a given point in time, derived from the config.
// It is never stored, only recomputed
type State struct {
	Status           Status
	Lights           [5]Color
	NextStatusChange time.Time
	NextLightChange  time.Time
}

// Scheduling the next light change exactly on the boundary could fire
// before the lights actually flip, so add a small buffer
const changeBuffer = time.Second

// The calculator turns wall clock time into the current hangar state.
// It is a pure function of its config, so it is safe to share
type Calculator struct {
	config Config
	cycle  time.Duration
}

// Create a calculator, validating the threshold table once.
// Thresholds have to start at zero, be contiguous, and stay inside the cycle.
// The table is allowed to end short of the cycle: time falling in that gap
// reuses the last pattern (see StateAt)
func NewCalculator(config Config) (Calculator, error) {

	cycle := config.OpenDuration + config.CloseDuration
	if config.OpenDuration <= 0 || config.CloseDuration <= 0 {
		return Calculator{}, fmt.Errorf("hangar config: durations have to be positive (open %v, close %v)", config.OpenDuration, config.CloseDuration)
	}
	if len(config.Thresholds) == 0 {
		return Calculator{}, fmt.Errorf("hangar config: no thresholds provided")
	}
	if config.Thresholds[0].Min != 0 {
		return Calculator{}, fmt.Errorf("hangar config: first threshold starts at %v, not 0", config.Thresholds[0].Min)
	}
	for i, threshold := range config.Thresholds {
		if threshold.Max <= threshold.Min {
			return Calculator{}, fmt.Errorf("hangar config: threshold %d is empty (%v-%v)", i, threshold.Min, threshold.Max)
		}
		if i > 0 && threshold.Min != config.Thresholds[i-1].Max {
			return Calculator{}, fmt.Errorf("hangar config: gap between thresholds %d and %d (%v != %v)", i-1, i, config.Thresholds[i-1].Max, threshold.Min)
		}
	}
	if last := config.Thresholds[len(config.Thresholds)-1]; last.Max > cycle {
		return Calculator{}, fmt.Errorf("hangar config: last threshold ends at %v, beyond the cycle %v", last.Max, cycle)
	}

	return Calculator{config, cycle}, nil
}

// Compute the hangar state at the provided time
func (calc *Calculator) StateAt(now time.Time) State {

	var state State

	timeInCycle := calc.TimeInCycle(now)

	// Status and next status change
	if timeInCycle < calc.config.OpenDuration {
		state.Status = Online
		state.NextStatusChange = now.Add(calc.config.OpenDuration - timeInCycle)
	} else {
		state.Status = Offline
		state.NextStatusChange = now.Add(calc.cycle - timeInCycle)
	}

	// Find the threshold we are in
	var matched *Threshold
	for i := range calc.config.Thresholds {
		threshold := &calc.config.Thresholds[i]
		if timeInCycle >= threshold.Min && timeInCycle < threshold.Max {
			matched = threshold
			break
		}
	}

	if matched != nil {
		state.Lights = matched.Lights
		state.NextLightChange = now.Add(matched.Max - timeInCycle + changeBuffer)
	} else {
		// We are past the last threshold but still inside the cycle.
		// Keep the last pattern and wait for the cycle to wrap
		last := calc.config.Thresholds[len(calc.config.Thresholds)-1]
		state.Lights = last.Lights
		state.NextLightChange = now.Add(calc.cycle - timeInCycle + changeBuffer)
	}

	return state
}

// Position inside the current cycle.
// A time before the initial open time normalizes into the cycle as well,
// although it most likely means the config is wrong
func (calc *Calculator) TimeInCycle(now time.Time) time.Duration {
	elapsed := now.Sub(calc.config.InitialOpenTime)
	timeInCycle := elapsed % calc.cycle
	if timeInCycle < 0 {
		timeInCycle += calc.cycle
	}
	return timeInCycle
}

// Total duration of one cycle
func (calc *Calculator) Cycle() time.Duration {
	return calc.cycle
}
