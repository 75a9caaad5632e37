package metrics

import "github.com/Guilherme-Argilar/minha-panela/internal/kettle"

// StirEffort is the mean effective stir speed over the run, in rpm. A cook
// that spends long stretches under motor protection shows a visibly lower
// effort than its commanded speed.
type StirEffort struct {
	sum     float64
	samples int
}

func NewStirEffort() *StirEffort { return &StirEffort{} }

func (e *StirEffort) Name() string { return "stir_effort" }

func (e *StirEffort) Observe(s kettle.State, t float64) {
	e.sum += s.EffectiveRPM
	e.samples++
}

func (e *StirEffort) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *StirEffort) Reset() {
	e.sum = 0
	e.samples = 0
}
