package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/integrators"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

// Simulator integrates a system spec with a fixed-step scheme. A Simulator
// owns integrator scratch space and its metrics, so it must not be used
// from several goroutines at once.
type Simulator struct {
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

// New returns a simulator using classical RK4.
func New() *Simulator {
	return NewWithIntegrator(integrators.NewRK4())
}

func NewWithIntegrator(integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Result is a finished run.
type Result struct {
	Trajectory *dynamo.Trajectory
	Final      dynamo.State
	StepsTaken int
	Metrics    map[string]float64
	Elapsed    time.Duration
}

// Run integrates spec for cfg.TransientSteps discarded steps followed by
// cfg.Steps recorded ones. Sample 0 is the post-transient state and every
// cfg.Stride()-th step after it is kept. Metrics and observers see every
// recorded step. On divergence or cancellation no trajectory is returned.
func (s *Simulator) Run(ctx context.Context, spec systems.Spec, cfg dynamo.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	for _, m := range s.metrics {
		m.Reset()
	}

	flow := spec.System()
	name := flow.Name()
	dt := cfg.Dt
	stride := cfg.Stride()
	x := spec.Init()

	step := 0
	advance := func() error {
		select {
		case <-ctx.Done():
			return dynamo.Canceled(name, step, float64(step)*dt, ctx.Err())
		default:
		}
		next := s.integrator.Step(flow, x, float64(step)*dt, dt)
		step++
		if !next.IsValid() {
			return &dynamo.SimulationError{
				System:  name,
				Step:    step,
				Time:    float64(step) * dt,
				State:   next,
				Wrapped: dynamo.ErrDiverged,
			}
		}
		x = next
		return nil
	}

	for i := 0; i < cfg.TransientSteps; i++ {
		if err := advance(); err != nil {
			return nil, err
		}
	}

	samples := make([]dynamo.State, 0, cfg.Samples())
	samples = append(samples, x.Clone())

	for n := 1; n <= cfg.Steps; n++ {
		t := float64(step) * dt
		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		if err := advance(); err != nil {
			return nil, err
		}
		if n%stride == 0 {
			samples = append(samples, x.Clone())
		}
	}

	result := &Result{
		Trajectory: dynamo.NewTrajectory(name, dt, stride, samples),
		Final:      x,
		StepsTaken: step,
		Metrics:    make(map[string]float64, len(s.metrics)),
		Elapsed:    time.Since(start),
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

// Integrate runs spec and returns only its trajectory.
func (s *Simulator) Integrate(ctx context.Context, spec systems.Spec, cfg dynamo.Config) (*dynamo.Trajectory, error) {
	res, err := s.Run(ctx, spec, cfg)
	if err != nil {
		return nil, err
	}
	return res.Trajectory, nil
}

// RunWithCallback integrates spec step by step, calling fn with every
// post-transient state until fn returns false or cfg.Steps is reached.
func (s *Simulator) RunWithCallback(ctx context.Context, spec systems.Spec, cfg dynamo.Config, fn func(x dynamo.State, t float64) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	flow := spec.System()
	x := spec.Init()
	dt := cfg.Dt
	total := cfg.TransientSteps + cfg.Steps

	for step := 0; step < total; step++ {
		select {
		case <-ctx.Done():
			return dynamo.Canceled(flow.Name(), step, float64(step)*dt, ctx.Err())
		default:
		}

		x = s.integrator.Step(flow, x, float64(step)*dt, dt)
		if !x.IsValid() {
			return &dynamo.SimulationError{
				System:  flow.Name(),
				Step:    step + 1,
				Time:    float64(step+1) * dt,
				State:   x,
				Wrapped: dynamo.ErrDiverged,
			}
		}
		if step+1 > cfg.TransientSteps && !fn(x, float64(step+1)*dt) {
			return nil
		}
	}
	return nil
}

// Integrate runs spec on a fresh RK4 simulator.
func Integrate(ctx context.Context, spec systems.Spec, cfg dynamo.Config) (*dynamo.Trajectory, error) {
	return New().Integrate(ctx, spec, cfg)
}

func describe(spec systems.Spec, cfg dynamo.Config) string {
	return fmt.Sprintf("%s dt=%g steps=%d stride=%d", spec.Kind(), cfg.Dt, cfg.Steps, cfg.Stride())
}
