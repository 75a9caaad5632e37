// Package process owns the canonical kettle state and runs the per-tick
// update pipeline: physics step, motor guard, recipe sequencer, threshold
// alarms, commit. It also exposes the command surface the presentation
// layer drives.
//
// All commands and ticks serialize through one mutex; tick bodies are
// short, non-blocking arithmetic, so a single lock is enough.
package process

import (
	"fmt"
	"sync"
	"time"

	"github.com/Guilherme-Argilar/minha-panela/internal/kettle"
	"github.com/Guilherme-Argilar/minha-panela/internal/protection"
)

// Controller is the single owner of the process state.
type Controller struct {
	mu      sync.Mutex
	cfg     Config
	state   kettle.State
	guard   *protection.Guard
	alarms  *kettle.AlarmLog
	history *kettle.History

	clock     float64 // model seconds since reset, for history samples
	clockDebt time.Duration
}

func New(cfg Config) *Controller {
	if cfg.AlarmCapacity <= 0 {
		cfg.AlarmCapacity = DefaultConfig().AlarmCapacity
	}
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = DefaultConfig().HistoryCapacity
	}
	c := &Controller{
		cfg:     cfg,
		guard:   protection.NewGuard(cfg.Protection),
		alarms:  kettle.NewAlarmLog(cfg.AlarmCapacity),
		history: kettle.NewHistory(cfg.HistoryCapacity),
	}
	c.state = c.defaultState()
	return c
}

func (c *Controller) defaultState() kettle.State {
	return kettle.State{
		Temperature:     c.cfg.Physics.Ambient,
		Setpoint:        c.cfg.Recipe.Setpoint(kettle.Clarification),
		CommandedRPM:    c.cfg.InitialRPM,
		EffectiveRPM:    c.cfg.InitialRPM,
		Torque:          c.cfg.InitialTorque,
		Brix:            c.cfg.InitialBrix,
		Phase:           kettle.Clarification,
		AutoMode:        true,
		PrevTemperature: c.cfg.Physics.Ambient,
		PrevTorque:      c.cfg.InitialTorque,
	}
}

// Snapshot is a read-only copy of everything the presentation layer can
// display. Mutating it has no effect on the controller.
type Snapshot struct {
	kettle.State
	Alarms  []kettle.Alarm
	History []kettle.Sample
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:   c.state,
		Alarms:  c.alarms.Entries(),
		History: c.history.Samples(),
	}
}

// State returns a copy of the canonical state without the alarm and
// history contents. Cheap enough to call every tick.
func (c *Controller) State() kettle.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Config returns the configuration the controller was built with.
func (c *Controller) Config() Config { return c.cfg }

// Start begins (or restarts) the automatic cook: running, auto mode, phase
// back to clarification. No-op when already running.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Running {
		return nil
	}
	c.state.Running = true
	c.state.AutoMode = true
	c.state.Phase = kettle.Clarification
	c.state.Setpoint = c.cfg.Recipe.Setpoint(kettle.Clarification)
	c.alarms.Append(kettle.SeverityInfo, "cook started")
	return nil
}

// Pause stops future ticks from mutating state; physical values stay where
// they are. No-op when already paused.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Running {
		return nil
	}
	c.state.Running = false
	c.alarms.Append(kettle.SeverityWarning, "cook paused")
	return nil
}

// Reset reinitializes the state to factory defaults: ambient temperature,
// raw juice, empty alarm log and history.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.defaultState()
	c.guard.Reset()
	c.alarms.Reset()
	c.history.Reset()
	c.clock = 0
	c.clockDebt = 0
}

// SetAutoMode toggles the automatic sequencer. Manual mode frees the
// setpoint and phase for operator override.
func (c *Controller) SetAutoMode(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.AutoMode = on
}

// SetManualSetpoint overrides the target temperature. Rejected while the
// sequencer owns the setpoint.
func (c *Controller) SetManualSetpoint(v float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.AutoMode {
		return kettle.ErrAutoMode
	}
	c.state.Setpoint = clamp(v, c.cfg.Physics.Ambient, c.cfg.MaxSetpoint)
	c.reboundTemperature()
	return nil
}

// SetPhase overrides the cook phase. Rejected while the sequencer owns the
// phase; the setpoint follows the recipe table for the chosen phase.
func (c *Controller) SetPhase(p kettle.Phase) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.AutoMode {
		return kettle.ErrAutoMode
	}
	if p < kettle.Clarification || p > kettle.Finished {
		return fmt.Errorf("kettle: no such phase %d", p)
	}
	c.state.Phase = p
	c.state.Setpoint = c.cfg.Recipe.Setpoint(p)
	c.reboundTemperature()
	return nil
}

// reboundTemperature pulls the committed temperature back inside its band
// after a setpoint change. Callers hold the mutex.
func (c *Controller) reboundTemperature() {
	c.state.Temperature = clamp(c.state.Temperature,
		c.cfg.Physics.Ambient, c.state.Setpoint+c.cfg.Physics.OverTemp)
}

// SetCommandedRPM sets the requested stirrer speed. While the motor guard
// is active the value is latched, not applied, and ErrProtectionActive is
// returned; the guard applies it once recovery completes.
func (c *Controller) SetCommandedRPM(v float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v = clamp(v, 0, c.cfg.MaxRPM)
	if c.guard.Active() {
		c.guard.Latch(v)
		return kettle.ErrProtectionActive
	}
	c.state.CommandedRPM = v
	c.state.EffectiveRPM = v
	return nil
}

// Tick runs one full update of the pipeline. It is a no-op while paused.
// dt is the physics period; gains are scaled relative to NominalTick.
func (c *Controller) Tick(dt time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Running {
		return
	}
	if dt <= 0 {
		dt = NominalTick
	}
	scale := dt.Seconds() / NominalTick.Seconds()
	s := &c.state

	// Physics: raw next values from the committed state.
	temp := c.cfg.Physics.Temperature(s.Temperature, s.Setpoint, c.guard.Active(), scale)
	brix := c.cfg.Physics.Brix(s.Brix, temp, c.cfg.Recipe.Spec(s.Phase).BrixFactor, scale)

	// First torque pass decides whether the guard intervenes.
	atPoint := s.Phase == kettle.Point
	torque := c.cfg.Physics.Torque(brix, s.EffectiveRPM, atPoint)

	rpm, ev := c.guard.Step(torque, s.CommandedRPM, s.EffectiveRPM)
	switch ev {
	case protection.EventActivated:
		c.alarms.Append(kettle.SeverityWarning,
			fmt.Sprintf("motor protection engaged, speed cut to %.0f rpm", rpm))
	case protection.EventDeactivated:
		if pending, ok := c.guard.TakePending(); ok {
			s.CommandedRPM = pending
		}
		rpm = s.CommandedRPM
		c.alarms.Append(kettle.SeverityInfo, "motor protection released")
	}
	s.EffectiveRPM = rpm

	// Second torque pass with the applied speed, so the committed torque
	// carries no one-tick lag.
	torque = c.cfg.Physics.Torque(brix, s.EffectiveRPM, atPoint)

	if s.AutoMode {
		if next, ok := c.cfg.Recipe.Next(s.Phase, temp, brix, torque); ok {
			s.Phase = next
			s.Setpoint = c.cfg.Recipe.Setpoint(next)
			// A setpoint drop must not strand the already-computed
			// temperature outside its band.
			temp = clamp(temp, c.cfg.Physics.Ambient, s.Setpoint+c.cfg.Physics.OverTemp)
			c.alarms.Append(kettle.SeverityInfo,
				fmt.Sprintf("phase advanced to %s", c.cfg.Recipe.Spec(next).Label))
		}
	}

	s.Efficiency = c.cfg.Physics.Efficiency(temp, s.Setpoint, torque)
	s.PrevTemperature = s.Temperature
	s.PrevTorque = s.Torque
	s.Temperature = temp
	s.Brix = brix
	s.Torque = torque
	s.ProtectionOn = c.guard.Active()
	s.SavedRPM = c.guard.SavedRPM()

	c.thresholdAlarms()

	c.clock += dt.Seconds()
	c.history.Push(kettle.Sample{
		Time:        c.clock,
		Temperature: temp,
		Torque:      torque,
		Brix:        brix,
		Setpoint:    s.Setpoint,
	})
}

// thresholdAlarms fires once per upward crossing, comparing the committed
// previous-tick values against the current ones.
func (c *Controller) thresholdAlarms() {
	s := &c.state

	high := s.Setpoint + 5
	if s.PrevTemperature <= high && s.Temperature > high {
		c.alarms.Append(kettle.SeverityWarning,
			fmt.Sprintf("temperature %.1f°C above setpoint", s.Temperature))
	}

	sustain := c.cfg.Protection.Sustain
	if !c.guard.Active() && s.PrevTorque < sustain && s.Torque >= sustain {
		c.alarms.Append(kettle.SeverityWarning,
			fmt.Sprintf("torque %.0f%% approaching overload", s.Torque))
	}

	if s.PrevTorque < criticalTorque && s.Torque >= criticalTorque {
		c.alarms.Append(kettle.SeverityError,
			fmt.Sprintf("torque %.0f%% critical", s.Torque))
	}
}

// TickClock advances the cook timer. Gated on running unless the
// configuration says otherwise. Sub-second periods accumulate until a
// whole second has passed.
func (c *Controller) TickClock(dt time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Running && !c.cfg.ClockWhilePaused {
		return
	}
	if dt <= 0 {
		dt = time.Second
	}
	c.clockDebt += dt
	for c.clockDebt >= time.Second {
		c.state.ElapsedSeconds++
		c.clockDebt -= time.Second
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
