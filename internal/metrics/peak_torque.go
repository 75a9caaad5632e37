package metrics

import "github.com/Guilherme-Argilar/minha-panela/internal/kettle"

// PeakTorque tracks the highest committed motor load seen during the run.
type PeakTorque struct {
	peak float64
}

func NewPeakTorque() *PeakTorque { return &PeakTorque{} }

func (p *PeakTorque) Name() string { return "peak_torque" }

func (p *PeakTorque) Observe(s kettle.State, t float64) {
	if s.Torque > p.peak {
		p.peak = s.Torque
	}
}

func (p *PeakTorque) Value() float64 { return p.peak }

func (p *PeakTorque) Reset() { p.peak = 0 }
