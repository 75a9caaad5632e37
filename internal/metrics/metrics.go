// Package metrics provides per-run observers aggregated by the headless
// runner. Each metric sees every committed tick and reduces it to a single
// number for the run report.
package metrics

import "github.com/Guilherme-Argilar/minha-panela/internal/kettle"

type Metric interface {
	Name() string
	Observe(s kettle.State, t float64)
	Value() float64
	Reset()
}

// MeanEfficiency averages the derived efficiency figure over the run.
type MeanEfficiency struct {
	sum     float64
	samples int
}

func NewMeanEfficiency() *MeanEfficiency { return &MeanEfficiency{} }

func (m *MeanEfficiency) Name() string { return "mean_efficiency" }

func (m *MeanEfficiency) Observe(s kettle.State, t float64) {
	m.sum += s.Efficiency
	m.samples++
}

func (m *MeanEfficiency) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanEfficiency) Reset() {
	m.sum = 0
	m.samples = 0
}
