// Package config loads and saves kettle configurations as YAML and
// converts them into the component parameter structs. Defaults mirror the
// factory tuning; a config file only needs to state what it overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Guilherme-Argilar/minha-panela/internal/kettle"
	"github.com/Guilherme-Argilar/minha-panela/internal/physics"
	"github.com/Guilherme-Argilar/minha-panela/internal/process"
	"github.com/Guilherme-Argilar/minha-panela/internal/protection"
	"github.com/Guilherme-Argilar/minha-panela/internal/recipe"
)

type Config struct {
	Dt    float64 `yaml:"dt"`    // physics tick period, seconds
	Ticks int     `yaml:"ticks"` // tick budget for batch runs

	Physics    PhysicsConfig    `yaml:"physics"`
	Protection ProtectionConfig `yaml:"protection"`
	Phases     []PhaseConfig    `yaml:"phases"`

	AlarmCapacity   int `yaml:"alarm_capacity"`
	HistoryCapacity int `yaml:"history_capacity"`

	InitialBrix float64 `yaml:"initial_brix"`
	InitialRPM  float64 `yaml:"initial_rpm"`
	MaxSetpoint float64 `yaml:"max_setpoint"`
	MaxRPM      float64 `yaml:"max_rpm"`

	ClockWhilePaused bool `yaml:"clock_while_paused"`
}

type PhysicsConfig struct {
	Ambient      float64 `yaml:"ambient"`
	OverTemp     float64 `yaml:"over_temp"`
	MaxBrix      float64 `yaml:"max_brix"`
	HeatGain     float64 `yaml:"heat_gain"`
	CoolGain     float64 `yaml:"cool_gain"`
	BrixGain     float64 `yaml:"brix_gain"`
	GuardHeatCut float64 `yaml:"guard_heat_cut"`
}

type ProtectionConfig struct {
	Overload  float64 `yaml:"overload"`
	Sustain   float64 `yaml:"sustain"`
	Clear     float64 `yaml:"clear"`
	RampDown  float64 `yaml:"ramp_down"`
	RampUp    float64 `yaml:"ramp_up"`
	CutFactor float64 `yaml:"cut_factor"`
	MinRPM    float64 `yaml:"min_rpm"`
}

// PhaseConfig is one row of the recipe table, in phase order.
type PhaseConfig struct {
	Label      string  `yaml:"label"`
	Setpoint   float64 `yaml:"setpoint"`
	BrixMin    float64 `yaml:"brix_min"`
	BrixMax    float64 `yaml:"brix_max"`
	BrixFactor float64 `yaml:"brix_factor"`
	ExitTemp   float64 `yaml:"exit_temp,omitempty"`
	ExitTorque float64 `yaml:"exit_torque,omitempty"`
}

func DefaultConfig() *Config {
	pp := physics.DefaultParams()
	pt := protection.DefaultThresholds()
	pc := process.DefaultConfig()
	table := recipe.DefaultTable()

	phases := make([]PhaseConfig, 0, int(kettle.Finished)+1)
	for p := kettle.Clarification; p <= kettle.Finished; p++ {
		spec := table.Spec(p)
		phases = append(phases, PhaseConfig{
			Label:      spec.Label,
			Setpoint:   spec.Setpoint,
			BrixMin:    spec.BrixMin,
			BrixMax:    spec.BrixMax,
			BrixFactor: spec.BrixFactor,
			ExitTemp:   spec.ExitTemp,
			ExitTorque: spec.ExitTorque,
		})
	}

	return &Config{
		Dt:    process.NominalTick.Seconds(),
		Ticks: 400,
		Physics: PhysicsConfig{
			Ambient:      pp.Ambient,
			OverTemp:     pp.OverTemp,
			MaxBrix:      pp.MaxBrix,
			HeatGain:     pp.HeatGain,
			CoolGain:     pp.CoolGain,
			BrixGain:     pp.BrixGain,
			GuardHeatCut: pp.GuardHeatCut,
		},
		Protection: ProtectionConfig{
			Overload:  pt.Overload,
			Sustain:   pt.Sustain,
			Clear:     pt.Clear,
			RampDown:  pt.RampDown,
			RampUp:    pt.RampUp,
			CutFactor: pt.CutFactor,
			MinRPM:    pt.MinRPM,
		},
		Phases:          phases,
		AlarmCapacity:   pc.AlarmCapacity,
		HistoryCapacity: pc.HistoryCapacity,
		InitialBrix:     pc.InitialBrix,
		InitialRPM:      pc.InitialRPM,
		MaxSetpoint:     pc.MaxSetpoint,
		MaxRPM:          pc.MaxRPM,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %f", c.Dt)
	}
	if len(c.Phases) != int(kettle.Finished)+1 {
		return fmt.Errorf("config: expected %d phases, got %d", int(kettle.Finished)+1, len(c.Phases))
	}
	if c.Protection.Clear >= c.Protection.Sustain || c.Protection.Sustain > c.Protection.Overload {
		return fmt.Errorf("config: protection thresholds must satisfy clear < sustain <= overload")
	}
	return nil
}

// TickPeriod returns Dt as a duration.
func (c *Config) TickPeriod() time.Duration {
	return time.Duration(c.Dt * float64(time.Second))
}

// Process assembles the controller configuration from this file.
func (c *Config) Process() process.Config {
	var table recipe.Table
	for i, pc := range c.Phases {
		if i >= len(table) {
			break
		}
		table[i] = recipe.Spec{
			Label:      pc.Label,
			Setpoint:   pc.Setpoint,
			BrixMin:    pc.BrixMin,
			BrixMax:    pc.BrixMax,
			BrixFactor: pc.BrixFactor,
			ExitTemp:   pc.ExitTemp,
			ExitTorque: pc.ExitTorque,
		}
	}
	return process.Config{
		Physics: physics.Params{
			Ambient:      c.Physics.Ambient,
			OverTemp:     c.Physics.OverTemp,
			MaxBrix:      c.Physics.MaxBrix,
			HeatGain:     c.Physics.HeatGain,
			CoolGain:     c.Physics.CoolGain,
			BrixGain:     c.Physics.BrixGain,
			GuardHeatCut: c.Physics.GuardHeatCut,
		},
		Protection: protection.Thresholds{
			Overload:  c.Protection.Overload,
			Sustain:   c.Protection.Sustain,
			Clear:     c.Protection.Clear,
			RampDown:  c.Protection.RampDown,
			RampUp:    c.Protection.RampUp,
			CutFactor: c.Protection.CutFactor,
			MinRPM:    c.Protection.MinRPM,
		},
		Recipe:           table,
		AlarmCapacity:    c.AlarmCapacity,
		HistoryCapacity:  c.HistoryCapacity,
		InitialBrix:      c.InitialBrix,
		InitialRPM:       c.InitialRPM,
		InitialTorque:    process.DefaultConfig().InitialTorque,
		MaxSetpoint:      c.MaxSetpoint,
		MaxRPM:           c.MaxRPM,
		ClockWhilePaused: c.ClockWhilePaused,
	}
}
