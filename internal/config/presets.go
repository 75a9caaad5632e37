package config

import "sort"

// Presets are named tunings of the cook. "standard" is the factory
// default; "rapid" trades smoothness for speed, "gentle" the reverse.
var Presets = map[string]func() *Config{
	"standard": func() *Config {
		return DefaultConfig()
	},
	"rapid": func() *Config {
		c := DefaultConfig()
		c.Physics.HeatGain = 0.37
		c.Physics.BrixGain = 1.6
		c.Ticks = 300
		return c
	},
	"gentle": func() *Config {
		c := DefaultConfig()
		c.Physics.HeatGain = 0.25
		c.Physics.BrixGain = 0.9
		c.InitialRPM = 30
		c.Ticks = 600
		return c
	},
	"high-speed-stir": func() *Config {
		// Runs the stirrer flat out; exercises the motor guard.
		c := DefaultConfig()
		c.InitialRPM = 100
		return c
	},
}

func GetPreset(name string) *Config {
	f, ok := Presets[name]
	if !ok {
		return nil
	}
	return f()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
