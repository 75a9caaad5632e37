package kettle

import "time"

// Phase is a stage of the cook recipe. Phases only ever advance forward.
type Phase int

const (
	Clarification Phase = iota
	Concentration
	Point
	Finished
)

func (p Phase) String() string {
	switch p {
	case Clarification:
		return "clarification"
	case Concentration:
		return "concentration"
	case Point:
		return "point"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Next returns the phase that follows p. Finished is terminal.
func (p Phase) Next() Phase {
	if p >= Finished {
		return Finished
	}
	return p + 1
}

// Severity classifies an alarm entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alarm is a single entry in the alarm log.
type Alarm struct {
	ID        uint64
	Message   string
	Severity  Severity
	Timestamp time.Time
}

// Sample is one history record of the quantities worth charting.
// Time is model seconds since the cook started.
type Sample struct {
	Time        float64
	Temperature float64
	Torque      float64
	Brix        float64
	Setpoint    float64
}

// State is the canonical process state. It is owned exclusively by the
// process controller; everything else receives copies or reads fields
// through a snapshot.
//
// PrevTemperature and PrevTorque carry last-tick values so threshold
// alarms fire on the crossing, not on every tick the condition holds.
type State struct {
	Temperature  float64
	Setpoint     float64
	CommandedRPM float64
	EffectiveRPM float64
	Torque       float64
	Brix         float64
	Phase        Phase
	AutoMode     bool
	Running      bool

	ProtectionOn bool
	SavedRPM     float64

	Efficiency     float64
	ElapsedSeconds int

	PrevTemperature float64
	PrevTorque      float64
}
