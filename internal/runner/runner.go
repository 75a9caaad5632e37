// Package runner drives a process controller headlessly: a batch cook at a
// fixed tick period, with metric and observer fan-out, producing a Result
// for reporting and persistence.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/Guilherme-Argilar/minha-panela/internal/kettle"
	"github.com/Guilherme-Argilar/minha-panela/internal/metrics"
	"github.com/Guilherme-Argilar/minha-panela/internal/process"
)

// Observer sees every committed tick. t is model seconds since start.
type Observer interface {
	OnTick(s kettle.State, t float64)
}

type Runner struct {
	ctrl      *process.Controller
	metrics   []metrics.Metric
	observers []Observer
}

func New(ctrl *process.Controller) *Runner {
	return &Runner{ctrl: ctrl}
}

func (r *Runner) AddMetric(m metrics.Metric)   { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)       { r.observers = append(r.observers, o) }
func (r *Runner) Controller() *process.Controller { return r.ctrl }

// Result summarizes a finished (or interrupted) run.
type Result struct {
	Final      kettle.State
	Samples    []kettle.Sample
	Alarms     []kettle.Alarm
	Metrics    map[string]float64
	TicksTaken int
}

// Run starts the cook and advances it up to maxTicks physics ticks of
// period dt, interleaving clock ticks every accumulated second. It stops
// early once the recipe reaches its terminal phase or ctx is canceled; on
// cancellation the partial result is returned along with ctx.Err().
func (r *Runner) Run(ctx context.Context, maxTicks int, dt time.Duration) (*Result, error) {
	if maxTicks <= 0 {
		return nil, fmt.Errorf("runner: maxTicks must be positive, got %d", maxTicks)
	}
	if dt <= 0 {
		dt = process.NominalTick
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	if err := r.ctrl.Start(); err != nil {
		return nil, err
	}

	var clockDebt time.Duration
	t := 0.0
	ticks := 0
	samples := make([]kettle.Sample, 0, maxTicks)

	for i := 0; i < maxTicks; i++ {
		select {
		case <-ctx.Done():
			return r.collect(ticks, samples), ctx.Err()
		default:
		}

		r.ctrl.Tick(dt)
		ticks++
		t += dt.Seconds()

		clockDebt += dt
		for clockDebt >= time.Second {
			r.ctrl.TickClock(time.Second)
			clockDebt -= time.Second
		}

		st := r.ctrl.State()
		samples = append(samples, kettle.Sample{
			Time:        t,
			Temperature: st.Temperature,
			Torque:      st.Torque,
			Brix:        st.Brix,
			Setpoint:    st.Setpoint,
		})
		for _, m := range r.metrics {
			m.Observe(st, t)
		}
		for _, o := range r.observers {
			o.OnTick(st, t)
		}

		if st.Phase == kettle.Finished {
			break
		}
	}

	return r.collect(ticks, samples), nil
}

func (r *Runner) collect(ticks int, samples []kettle.Sample) *Result {
	snap := r.ctrl.Snapshot()
	res := &Result{
		Final:      snap.State,
		Samples:    samples,
		Alarms:     snap.Alarms,
		Metrics:    make(map[string]float64, len(r.metrics)),
		TicksTaken: ticks,
	}
	for _, m := range r.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}
