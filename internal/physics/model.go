// Package physics implements the per-tick step functions of the kettle
// model: temperature, sugar concentration (brix), stirrer torque and the
// derived efficiency figure. All functions are pure; the process
// controller decides what to commit.
package physics

import "math"

// Torque curve coefficients, percent of rated motor load. The curve is a
// viscosity/speed surface: base load, viscous drag, speed drag and their
// interaction, plus extra drag once the syrup reaches point.
const (
	torqueBase      = 5.0
	torqueVisc      = 50.0
	torqueSpeed     = 20.0
	torqueCross     = 40.0
	torquePointDrag = 5.0

	evapOnset = 80.0 // °C below which evaporation is negligible
	evapScale = 50.0
	evapMax   = 2.0

	viscOnset = 20.0 // brix of the raw juice, zero excess viscosity
	viscScale = 60.0
)

// Params are the tuning constants of the model. Rate gains are calibrated
// for the nominal 300 ms physics tick; callers scale them for other tick
// periods.
type Params struct {
	Ambient      float64 // °C, lower bound for temperature
	OverTemp     float64 // °C allowed above setpoint before clamping
	MaxBrix      float64
	HeatGain     float64 // fraction of the setpoint gap closed per tick
	CoolGain     float64 // fraction of the ambient gap lost per tick
	BrixGain     float64 // brix added per tick per unit evaporation
	GuardHeatCut float64 // heating attenuation while the motor guard is active
}

func DefaultParams() Params {
	return Params{
		Ambient:      25.0,
		OverTemp:     10.0,
		MaxBrix:      85.0,
		HeatGain:     0.30,
		CoolGain:     0.04,
		BrixGain:     1.2,
		GuardHeatCut: 0.8,
	}
}

// Temperature advances temp one tick toward setpoint against ambient
// cooling. While the motor guard is active the reduced agitation transfers
// less heat, so the heating term is attenuated. scale is the tick period
// relative to the nominal one.
func (p Params) Temperature(temp, setpoint float64, guarded bool, scale float64) float64 {
	heat := p.HeatGain * scale
	if guarded {
		heat *= p.GuardHeatCut
	}
	toward := temp + heat*(setpoint-temp)
	cooled := toward - p.CoolGain*scale*(temp-p.Ambient)
	return clamp(cooled, p.Ambient, setpoint+p.OverTemp)
}

// Brix advances the concentration one tick given the already-updated
// temperature. phaseFactor comes from the recipe table: evaporation only
// concentrates meaningfully once the cook is past clarification.
func (p Params) Brix(brix, temp, phaseFactor, scale float64) float64 {
	evap := clamp((temp-evapOnset)/evapScale, 0, evapMax)
	return clamp(brix+p.BrixGain*scale*evap*phaseFactor, 0, p.MaxBrix)
}

// Torque computes motor load from the updated brix and the rpm actually
// applied. It is evaluated twice per tick when the guard intervenes: once
// to decide, once with the adjusted rpm so the committed value has no lag.
func (p Params) Torque(brix, rpm float64, atPoint bool) float64 {
	visc := clamp((brix-viscOnset)/viscScale, 0, 1)
	speed := rpm / 100.0
	t := torqueBase + torqueVisc*visc + torqueSpeed*speed + torqueCross*visc*speed
	if atPoint {
		t += torquePointDrag * visc
	}
	return clamp(t, 0, 100)
}

// Efficiency is a derived display metric, never fed back into the model:
// how close the temperature tracks the setpoint and how far the motor sits
// from overload.
func (p Params) Efficiency(temp, setpoint, torque float64) float64 {
	tempEff := 100 - 0.5*math.Abs(temp-setpoint)
	torqueEff := 100 - 2*math.Max(0, torque-80)
	return clamp((tempEff+torqueEff)/2, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
