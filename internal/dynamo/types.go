package dynamo

import (
	"fmt"
	"math"
)

// Dim is the state dimension shared by every hyperchaotic flow in this module.
const Dim = 4

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Bounded reports whether every component is finite and |x_i| <= limit.
func (s State) Bounded(limit float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.Abs(v) > limit {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Matrix is a dense row-major Dim x Dim matrix.
type Matrix [Dim][Dim]float64

func Identity() Matrix {
	var m Matrix
	for i := 0; i < Dim; i++ {
		m[i][i] = 1
	}
	return m
}

// System is an autonomous or time-dependent vector field dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Linearizable systems expose the Jacobian of their vector field, which
// the variational Lyapunov estimator propagates tangent vectors through.
type Linearizable interface {
	System
	Jacobian(x State) Matrix
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Config controls a fixed-step integration run.
type Config struct {
	Dt             float64
	Steps          int
	TransientSteps int
	SampleEvery    int
}

func DefaultConfig() Config {
	return Config{
		Dt:          0.01,
		Steps:       409600,
		SampleEvery: 200,
	}
}

// Validate rejects non-positive step sizes and counts.
func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidInput, c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidInput, c.Steps)
	}
	if c.TransientSteps < 0 {
		return fmt.Errorf("%w: transient steps must be non-negative, got %d", ErrInvalidInput, c.TransientSteps)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample stride must be non-negative, got %d", ErrInvalidInput, c.SampleEvery)
	}
	return nil
}

// Stride returns the effective sampling stride (zero means every step).
func (c Config) Stride() int {
	if c.SampleEvery <= 1 {
		return 1
	}
	return c.SampleEvery
}

// Samples is the number of states a run with this config records.
func (c Config) Samples() int {
	return c.Steps/c.Stride() + 1
}
