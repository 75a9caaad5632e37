package kettle

import "errors"

// Command rejections. Rejected commands leave state untouched; ticks never
// fail, out-of-range physics is clamped instead.
var (
	// ErrAutoMode indicates a manual override (setpoint, phase) was issued
	// while the automatic sequencer owns those values.
	ErrAutoMode = errors.New("kettle: command requires manual mode")

	// ErrProtectionActive indicates a speed command arrived while the motor
	// guard is active. The value is latched and applied once the guard
	// clears.
	ErrProtectionActive = errors.New("kettle: motor protection active, speed command latched")
)
