package metrics

import (
	"math"

	"github.com/Guilherme-Argilar/minha-panela/internal/kettle"
)

// SetpointHold reports the fraction of ticks spent within band degrees of
// the active setpoint.
type SetpointHold struct {
	band    float64
	inBand  int
	samples int
}

func NewSetpointHold(band float64) *SetpointHold {
	return &SetpointHold{band: band}
}

func (h *SetpointHold) Name() string { return "setpoint_hold" }

func (h *SetpointHold) Observe(s kettle.State, t float64) {
	h.samples++
	if math.Abs(s.Temperature-s.Setpoint) <= h.band {
		h.inBand++
	}
}

func (h *SetpointHold) Value() float64 {
	if h.samples == 0 {
		return 0
	}
	return float64(h.inBand) / float64(h.samples)
}

func (h *SetpointHold) Reset() {
	h.inBand = 0
	h.samples = 0
}
