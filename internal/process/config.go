package process

import (
	"time"

	"github.com/Guilherme-Argilar/minha-panela/internal/physics"
	"github.com/Guilherme-Argilar/minha-panela/internal/protection"
	"github.com/Guilherme-Argilar/minha-panela/internal/recipe"
)

// NominalTick is the physics period the rate gains are tuned for. Tick
// scales the gains linearly for other periods.
const NominalTick = 300 * time.Millisecond

// criticalTorque is the load above which an error alarm fires regardless
// of guard state.
const criticalTorque = 95.0

// Config assembles the tuning of every component the controller owns.
type Config struct {
	Physics    physics.Params
	Protection protection.Thresholds
	Recipe     recipe.Table

	AlarmCapacity   int
	HistoryCapacity int

	InitialBrix   float64
	InitialRPM    float64
	InitialTorque float64

	MaxSetpoint float64 // ceiling for manual setpoint commands
	MaxRPM      float64

	// ClockWhilePaused lets the wall clock keep counting while the cook is
	// paused. Off by default: the clock measures cooking time.
	ClockWhilePaused bool
}

func DefaultConfig() Config {
	return Config{
		Physics:         physics.DefaultParams(),
		Protection:      protection.DefaultThresholds(),
		Recipe:          recipe.DefaultTable(),
		AlarmCapacity:   5,
		HistoryCapacity: 110,
		InitialBrix:     20,
		InitialRPM:      40,
		InitialTorque:   10,
		MaxSetpoint:     130,
		MaxRPM:          100,
	}
}
