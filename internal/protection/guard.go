// Package protection implements the motor overload guard: a three-state
// feedback controller that overrides the commanded stirrer speed whenever
// torque approaches the motor's rated load, then ramps it back once the
// load clears.
package protection

import "math"

// Thresholds configure the guard. Values are percent of rated load for
// torque and absolute rpm for the ramps.
type Thresholds struct {
	Overload  float64 // activate when torque reaches this
	Sustain   float64 // keep cutting speed while torque stays at or above this
	Clear     float64 // begin recovery once torque drops below this
	RampDown  float64 // rpm removed per tick while overloaded
	RampUp    float64 // rpm restored per tick while recovering
	CutFactor float64 // initial cut applied to the commanded rpm
	MinRPM    float64 // floor for the cut speed
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Overload:  90.0,
		Sustain:   85.0,
		Clear:     75.0,
		RampDown:  2.0,
		RampUp:    5.0,
		CutFactor: 0.7,
		MinRPM:    10.0,
	}
}

// Event reports a guard state change the caller should surface as an alarm.
type Event int

const (
	EventNone Event = iota
	EventActivated
	EventDeactivated
)

type state int

const (
	normal state = iota
	protecting
	recovering
)

// Guard is the overload state machine. It is closed-loop: the caller must
// recompute torque with the rpm the guard returns before committing state,
// and feed that torque back on the next tick.
// Not safe for concurrent use — the process controller serializes access.
type Guard struct {
	t        Thresholds
	state    state
	savedRPM float64

	pending    float64 // speed command latched while active
	hasPending bool
}

func NewGuard(t Thresholds) *Guard {
	return &Guard{t: t}
}

func (g *Guard) Active() bool      { return g.state != normal }
func (g *Guard) SavedRPM() float64 { return g.savedRPM }

// Latch remembers a speed command rejected while the guard is active. The
// latched value becomes the commanded speed once recovery completes; a
// later latch overwrites an earlier one.
func (g *Guard) Latch(rpm float64) {
	g.pending = rpm
	g.hasPending = true
}

// TakePending returns and clears the latched speed command, if any.
func (g *Guard) TakePending() (float64, bool) {
	if !g.hasPending {
		return 0, false
	}
	g.hasPending = false
	return g.pending, true
}

// Reset returns the guard to its idle state, dropping any latched command.
func (g *Guard) Reset() {
	g.state = normal
	g.savedRPM = 0
	g.hasPending = false
}

// Step advances the guard one tick given the torque produced by the
// current effective rpm. It returns the rpm to apply for the rest of the
// tick and any state-change event.
func (g *Guard) Step(torque, commanded, effective float64) (float64, Event) {
	switch g.state {
	case normal:
		if torque >= g.t.Overload {
			g.state = protecting
			g.savedRPM = commanded
			return math.Max(g.t.MinRPM, commanded*g.t.CutFactor), EventActivated
		}
		return commanded, EventNone

	case protecting:
		if torque >= g.t.Sustain {
			return math.Max(g.t.MinRPM, effective-g.t.RampDown), EventNone
		}
		if torque < g.t.Clear {
			g.state = recovering
			return g.rampUp(effective)
		}
		// Between clear and sustain: hold and wait.
		return effective, EventNone

	default: // recovering
		if torque >= g.t.Sustain {
			// Load came back while ramping up, cut again.
			g.state = protecting
			return math.Max(g.t.MinRPM, effective-g.t.RampDown), EventNone
		}
		if torque < g.t.Clear {
			return g.rampUp(effective)
		}
		return effective, EventNone
	}
}

func (g *Guard) rampUp(effective float64) (float64, Event) {
	rpm := math.Min(g.savedRPM, effective+g.t.RampUp)
	if rpm >= g.savedRPM {
		g.state = normal
		return g.savedRPM, EventDeactivated
	}
	return rpm, EventNone
}
