package process_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Guilherme-Argilar/minha-panela/internal/kettle"
	"github.com/Guilherme-Argilar/minha-panela/internal/process"
	"github.com/Guilherme-Argilar/minha-panela/internal/protection"
)

func TestTickNoOpWhilePaused(t *testing.T) {
	c := process.New(process.DefaultConfig())
	before := c.State()
	for i := 0; i < 10; i++ {
		c.Tick(process.NominalTick)
	}
	if c.State() != before {
		t.Error("ticks must not mutate state while paused")
	}
	if snap := c.Snapshot(); len(snap.History) != 0 {
		t.Error("paused ticks must not append history")
	}
}

func TestStartIdempotent(t *testing.T) {
	c := process.New(process.DefaultConfig())
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	snap := c.Snapshot()
	if !snap.Running || !snap.AutoMode {
		t.Error("start should set running and auto mode")
	}
	if len(snap.Alarms) != 1 {
		t.Errorf("repeated start should emit one alarm, got %d", len(snap.Alarms))
	}
}

func TestPauseWhenStoppedIsNoOp(t *testing.T) {
	c := process.New(process.DefaultConfig())
	if err := c.Pause(); err != nil {
		t.Fatal(err)
	}
	if len(c.Snapshot().Alarms) != 0 {
		t.Error("pausing a stopped cook should not emit an alarm")
	}
}

func TestManualSetpointRequiresManualMode(t *testing.T) {
	c := process.New(process.DefaultConfig())
	if err := c.SetManualSetpoint(70); !errors.Is(err, kettle.ErrAutoMode) {
		t.Errorf("expected ErrAutoMode, got %v", err)
	}

	c.SetAutoMode(false)
	if err := c.SetManualSetpoint(500); err != nil {
		t.Fatal(err)
	}
	if got := c.State().Setpoint; got != 130 {
		t.Errorf("manual setpoint should clamp to 130, got %f", got)
	}
}

func TestSetPhaseRequiresManualMode(t *testing.T) {
	c := process.New(process.DefaultConfig())
	if err := c.SetPhase(kettle.Point); !errors.Is(err, kettle.ErrAutoMode) {
		t.Errorf("expected ErrAutoMode, got %v", err)
	}

	c.SetAutoMode(false)
	if err := c.SetPhase(kettle.Point); err != nil {
		t.Fatal(err)
	}
	st := c.State()
	if st.Phase != kettle.Point {
		t.Errorf("expected point phase, got %s", st.Phase)
	}
	if st.Setpoint != c.Config().Recipe.Setpoint(kettle.Point) {
		t.Errorf("setpoint should follow the phase table, got %f", st.Setpoint)
	}

	if err := c.SetPhase(kettle.Phase(9)); err == nil {
		t.Error("expected error for unknown phase")
	}
}

func TestCommandedRPMClamped(t *testing.T) {
	c := process.New(process.DefaultConfig())
	if err := c.SetCommandedRPM(150); err != nil {
		t.Fatal(err)
	}
	st := c.State()
	if st.CommandedRPM != 100 || st.EffectiveRPM != 100 {
		t.Errorf("expected clamp to 100, got commanded=%f effective=%f", st.CommandedRPM, st.EffectiveRPM)
	}
}

func TestRPMLatchedWhileProtected(t *testing.T) {
	cfg := process.DefaultConfig()
	// Thresholds low enough that the idle-stir torque trips the guard on
	// the first tick.
	cfg.Protection = protection.Thresholds{
		Overload: 12, Sustain: 11, Clear: 10,
		RampDown: 2, RampUp: 5, CutFactor: 0.7, MinRPM: 5,
	}
	c := process.New(cfg)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.Tick(process.NominalTick)
	if !c.State().ProtectionOn {
		t.Fatal("guard should be active after first tick")
	}

	if err := c.SetCommandedRPM(60); !errors.Is(err, kettle.ErrProtectionActive) {
		t.Fatalf("expected ErrProtectionActive, got %v", err)
	}
	if got := c.State().CommandedRPM; got != 40 {
		t.Errorf("commanded rpm should stay 40 while latched, got %f", got)
	}
}

func TestClockGatedOnRunning(t *testing.T) {
	c := process.New(process.DefaultConfig())
	c.TickClock(time.Second)
	if got := c.State().ElapsedSeconds; got != 0 {
		t.Errorf("clock should not advance while stopped, got %d", got)
	}

	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.TickClock(time.Second)
	c.TickClock(2 * time.Second)
	if got := c.State().ElapsedSeconds; got != 3 {
		t.Errorf("expected 3 elapsed seconds, got %d", got)
	}

	if err := c.Pause(); err != nil {
		t.Fatal(err)
	}
	c.TickClock(time.Second)
	if got := c.State().ElapsedSeconds; got != 3 {
		t.Errorf("clock should freeze while paused, got %d", got)
	}
}

func TestClockWhilePausedFlag(t *testing.T) {
	cfg := process.DefaultConfig()
	cfg.ClockWhilePaused = true
	c := process.New(cfg)
	c.TickClock(time.Second)
	if got := c.State().ElapsedSeconds; got != 1 {
		t.Errorf("flag should let the clock run while paused, got %d", got)
	}
}

func TestCapacitySanitization(t *testing.T) {
	cfg := process.DefaultConfig()
	cfg.AlarmCapacity = 0
	cfg.HistoryCapacity = -1
	c := process.New(cfg)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 200; i++ {
		c.Tick(process.NominalTick)
	}
	snap := c.Snapshot()
	if len(snap.Alarms) > 5 {
		t.Errorf("alarm log exceeded default capacity: %d", len(snap.Alarms))
	}
	if len(snap.History) > 110 {
		t.Errorf("history exceeded default capacity: %d", len(snap.History))
	}
}

func TestSetpointDropAtFinishKeepsTemperatureBounded(t *testing.T) {
	cfg := process.DefaultConfig()
	c := process.New(cfg)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 300; i++ {
		c.Tick(process.NominalTick)
		st := c.State()
		if st.Temperature > st.Setpoint+cfg.Physics.OverTemp+1e-9 {
			t.Fatalf("tick %d: temperature %.2f above %.2f+%.0f (phase=%s)",
				i, st.Temperature, st.Setpoint, cfg.Physics.OverTemp, st.Phase)
		}
		if st.Temperature < cfg.Physics.Ambient-1e-9 {
			t.Fatalf("tick %d: temperature %.2f below ambient", i, st.Temperature)
		}
	}
	if got := c.State().Phase; got != kettle.Finished {
		t.Fatalf("cook should have finished, got %s", got)
	}
}

func TestManualSetpointDropReboundsTemperature(t *testing.T) {
	cfg := process.DefaultConfig()
	c := process.New(cfg)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		c.Tick(process.NominalTick)
	}
	if got := c.State().Temperature; got < 80 {
		t.Fatalf("cook should be hot by now, got %.1f", got)
	}

	c.SetAutoMode(false)
	if err := c.SetPhase(kettle.Finished); err != nil {
		t.Fatal(err)
	}
	st := c.State()
	if st.Temperature > st.Setpoint+cfg.Physics.OverTemp {
		t.Errorf("phase override left temperature %.2f above %.2f+%.0f",
			st.Temperature, st.Setpoint, cfg.Physics.OverTemp)
	}

	if err := c.SetManualSetpoint(40); err != nil {
		t.Fatal(err)
	}
	st = c.State()
	if st.Temperature > 40+cfg.Physics.OverTemp {
		t.Errorf("setpoint override left temperature %.2f above 50", st.Temperature)
	}
	if st.Temperature < cfg.Physics.Ambient {
		t.Errorf("rebound undershot ambient: %.2f", st.Temperature)
	}
}

func countAlarms(c *process.Controller, substr string) int {
	n := 0
	for _, a := range c.Snapshot().Alarms {
		if strings.Contains(a.Message, substr) {
			n++
		}
	}
	return n
}

func TestTemperatureAlarmFiresOncePerCrossing(t *testing.T) {
	cfg := process.DefaultConfig()
	cfg.AlarmCapacity = 20
	// A hot burner against a low target overshoots past setpoint+5 on the
	// first tick, then settles back under it.
	cfg.Physics.HeatGain = 1.5
	cfg.Recipe[kettle.Clarification].Setpoint = 40
	c := process.New(cfg)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	c.Tick(process.NominalTick)
	if got := countAlarms(c, "above setpoint"); got != 1 {
		t.Fatalf("expected one warning at the crossing, got %d", got)
	}
	for i := 0; i < 5; i++ {
		c.Tick(process.NominalTick)
	}
	if got := countAlarms(c, "above setpoint"); got != 1 {
		t.Errorf("warning must not repeat without a new crossing, got %d", got)
	}
}

func TestCriticalTorqueAlarmFiresOncePerCrossing(t *testing.T) {
	cfg := process.DefaultConfig()
	cfg.AlarmCapacity = 20
	// Thick syrup at full stir pins the torque above the critical level
	// from the first tick on; the guard is parked out of the way.
	cfg.InitialBrix = 70
	cfg.InitialRPM = 100
	cfg.Protection = protection.Thresholds{
		Overload: 1000, Sustain: 900, Clear: 800,
		RampDown: 2, RampUp: 5, CutFactor: 0.7, MinRPM: 10,
	}
	c := process.New(cfg)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	c.Tick(process.NominalTick)
	if got := countAlarms(c, "critical"); got != 1 {
		t.Fatalf("expected one error at the crossing, got %d", got)
	}
	for i := 0; i < 9; i++ {
		c.Tick(process.NominalTick)
	}
	if got := countAlarms(c, "critical"); got != 1 {
		t.Errorf("error must not repeat while the load persists, got %d", got)
	}
}

func TestSustainWarningFiresOncePerCrossing(t *testing.T) {
	cfg := process.DefaultConfig()
	cfg.AlarmCapacity = 20
	cfg.InitialBrix = 40
	cfg.InitialRPM = 100
	cfg.Protection = protection.Thresholds{
		Overload: 1000, Sustain: 50, Clear: 40,
		RampDown: 2, RampUp: 5, CutFactor: 0.7, MinRPM: 10,
	}
	c := process.New(cfg)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	c.Tick(process.NominalTick)
	if got := countAlarms(c, "approaching overload"); got != 1 {
		t.Fatalf("expected one warning at the crossing, got %d", got)
	}
	for i := 0; i < 7; i++ {
		c.Tick(process.NominalTick)
	}
	if got := countAlarms(c, "approaching overload"); got != 1 {
		t.Errorf("warning must not repeat while the load persists, got %d", got)
	}
}

func TestPrevTickValuesTrackCommits(t *testing.T) {
	c := process.New(process.DefaultConfig())
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.Tick(process.NominalTick)
	first := c.State()
	c.Tick(process.NominalTick)
	second := c.State()
	if second.PrevTemperature != first.Temperature {
		t.Errorf("prev temperature %.2f does not match the prior commit %.2f",
			second.PrevTemperature, first.Temperature)
	}
	if second.PrevTorque != first.Torque {
		t.Errorf("prev torque %.2f does not match the prior commit %.2f",
			second.PrevTorque, first.Torque)
	}
}
