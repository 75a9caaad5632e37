package metrics

import "github.com/Guilherme-Argilar/minha-panela/internal/kettle"

// ProtectionDuty reports the fraction of ticks the motor guard spent
// active. A well-tuned cook keeps this near zero.
type ProtectionDuty struct {
	active  int
	samples int
}

func NewProtectionDuty() *ProtectionDuty { return &ProtectionDuty{} }

func (p *ProtectionDuty) Name() string { return "protection_duty" }

func (p *ProtectionDuty) Observe(s kettle.State, t float64) {
	p.samples++
	if s.ProtectionOn {
		p.active++
	}
}

func (p *ProtectionDuty) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return float64(p.active) / float64(p.samples)
}

func (p *ProtectionDuty) Reset() {
	p.active = 0
	p.samples = 0
}
