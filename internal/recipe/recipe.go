// Package recipe defines the cook sequence: per-phase setpoints, brix
// ranges and the forward-only transition rules the automatic sequencer
// follows.
package recipe

import "github.com/Guilherme-Argilar/minha-panela/internal/kettle"

// Spec configures a single phase. ExitTemp and ExitTorque are alternative
// exit triggers alongside the brix ceiling; zero disables them.
type Spec struct {
	Setpoint   float64
	BrixMin    float64
	BrixMax    float64 // reaching this brix exits the phase
	BrixFactor float64 // evaporation multiplier while in this phase
	ExitTemp   float64
	ExitTorque float64
	Label      string
}

// Table maps each phase to its spec, indexed by kettle.Phase.
type Table [numPhases]Spec

const numPhases = int(kettle.Finished) + 1

// DefaultTable is the standard cook: clarify warm, concentrate hard, pull
// the point, then hold warm once finished.
func DefaultTable() Table {
	return Table{
		kettle.Clarification: {
			Setpoint: 95, BrixMin: 20, BrixMax: 26, BrixFactor: 0.2,
			ExitTemp: 85,
			Label:    "Clarification",
		},
		kettle.Concentration: {
			Setpoint: 105, BrixMin: 26, BrixMax: 55, BrixFactor: 1.0,
			ExitTorque: 70,
			Label:      "Concentration",
		},
		kettle.Point: {
			Setpoint: 115, BrixMin: 55, BrixMax: 75, BrixFactor: 1.2,
			Label: "Point",
		},
		kettle.Finished: {
			Setpoint: 80, BrixMin: 75, BrixMax: 85, BrixFactor: 0,
			Label: "Finished",
		},
	}
}

func (t Table) Spec(p kettle.Phase) Spec {
	if int(p) < 0 || int(p) >= len(t) {
		return t[kettle.Finished]
	}
	return t[p]
}

func (t Table) Setpoint(p kettle.Phase) float64 { return t.Spec(p).Setpoint }

// Next evaluates the exit predicate of p against the just-computed values
// and returns the following phase when it fires. Finished is terminal.
// Phases never skip: one transition per tick at most.
func (t Table) Next(p kettle.Phase, temp, brix, torque float64) (kettle.Phase, bool) {
	if p >= kettle.Finished {
		return p, false
	}
	spec := t.Spec(p)

	exit := brix >= spec.BrixMax
	if spec.ExitTemp > 0 && temp >= spec.ExitTemp {
		exit = true
	}
	if spec.ExitTorque > 0 && torque >= spec.ExitTorque {
		exit = true
	}
	if !exit {
		return p, false
	}
	return p.Next(), true
}
