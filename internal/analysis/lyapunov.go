package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/integrators"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

const checkEvery = 256

// LyapunovConfig controls the Benettin estimator.
type LyapunovConfig struct {
	Dt             float64 `json:"dt" yaml:"dt"`
	Steps          int     `json:"steps" yaml:"steps"`
	TransientSteps int     `json:"transient_steps" yaml:"transient_steps"`
	// ReorthoInterval is the number of steps between QR re-orthonormalizations.
	ReorthoInterval int `json:"reortho_interval" yaml:"reortho_interval"`
}

func DefaultLyapunovConfig() LyapunovConfig {
	return LyapunovConfig{Dt: 0.01, Steps: 100000, TransientSteps: 2000, ReorthoInterval: 10}
}

func (c LyapunovConfig) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: lyapunov dt must be positive, got %g", dynamo.ErrInvalidInput, c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: lyapunov steps must be positive, got %d", dynamo.ErrInvalidInput, c.Steps)
	}
	if c.TransientSteps < 0 {
		return fmt.Errorf("%w: lyapunov transient must be non-negative, got %d", dynamo.ErrInvalidInput, c.TransientSteps)
	}
	if c.ReorthoInterval < 1 {
		return fmt.Errorf("%w: reorthonormalization interval must be at least 1, got %d", dynamo.ErrInvalidInput, c.ReorthoInterval)
	}
	return nil
}

// Spectrum is an estimated Lyapunov spectrum.
type Spectrum struct {
	System string `json:"system"`
	// Exponents are in orthonormalization order.
	Exponents [dynamo.Dim]float64 `json:"exponents"`
	// Sorted holds the same values in descending order (lambda1..lambda4).
	Sorted       [dynamo.Dim]float64 `json:"sorted"`
	Positive     int                 `json:"positive"`
	Hyperchaotic bool                `json:"hyperchaotic"`
	Config       LyapunovConfig      `json:"config"`
}

func newSpectrum(system string, exps [dynamo.Dim]float64, cfg LyapunovConfig) Spectrum {
	sp := Spectrum{System: system, Exponents: exps, Config: cfg}
	sp.Sorted = exps
	sort.Sort(sort.Reverse(sort.Float64Slice(sp.Sorted[:])))
	for _, v := range exps {
		if v > 0 {
			sp.Positive++
		}
	}
	sp.Hyperchaotic = sp.Positive >= 2
	return sp
}

// Sum is the sum of all exponents, which equals the time-averaged
// divergence of the vector field.
func (s Spectrum) Sum() float64 {
	sum := 0.0
	for _, v := range s.Exponents {
		sum += v
	}
	return sum
}

// KaplanYorke returns the Lyapunov (Kaplan-Yorke) dimension.
func (s Spectrum) KaplanYorke() float64 {
	acc := 0.0
	for j, v := range s.Sorted {
		if acc+v < 0 {
			if j == 0 {
				return 0
			}
			return float64(j) + acc/math.Abs(v)
		}
		acc += v
	}
	return float64(dynamo.Dim)
}

func (s Spectrum) String() string {
	return fmt.Sprintf("%s: [%.4f %.4f %.4f %.4f] positive=%d hyperchaotic=%t",
		s.System, s.Sorted[0], s.Sorted[1], s.Sorted[2], s.Sorted[3], s.Positive, s.Hyperchaotic)
}

// variational propagates a state together with a tangent basis Q through
// dx/dt = f(x), dQ/dt = J(x) Q using classical RK4.
type variational struct {
	flow systems.Flow
	x    dynamo.State
	q    dynamo.Matrix
}

func (v *variational) deriv(x dynamo.State, q *dynamo.Matrix) (dynamo.State, dynamo.Matrix) {
	dx := v.flow.Derive(x, 0)
	j := v.flow.Jacobian(x)
	var dq dynamo.Matrix
	for r := 0; r < dynamo.Dim; r++ {
		for c := 0; c < dynamo.Dim; c++ {
			sum := 0.0
			for k := 0; k < dynamo.Dim; k++ {
				sum += float64(j[r][k] * q[k][c])
			}
			dq[r][c] = sum
		}
	}
	return dx, dq
}

func (v *variational) stage(a float64, dx dynamo.State, dq *dynamo.Matrix) (dynamo.State, dynamo.Matrix) {
	x := make(dynamo.State, dynamo.Dim)
	var q dynamo.Matrix
	for i := 0; i < dynamo.Dim; i++ {
		x[i] = v.x[i] + float64(a*dx[i])
		for c := 0; c < dynamo.Dim; c++ {
			q[i][c] = v.q[i][c] + float64(a*dq[i][c])
		}
	}
	return x, q
}

func (v *variational) step(h float64) {
	dx1, dq1 := v.deriv(v.x, &v.q)
	x2, q2 := v.stage(h/2, dx1, &dq1)
	dx2, dq2 := v.deriv(x2, &q2)
	x3, q3 := v.stage(h/2, dx2, &dq2)
	dx3, dq3 := v.deriv(x3, &q3)
	x4, q4 := v.stage(h, dx3, &dq3)
	dx4, dq4 := v.deriv(x4, &q4)

	h6 := h / 6
	next := make(dynamo.State, dynamo.Dim)
	for i := 0; i < dynamo.Dim; i++ {
		sum := dx1[i] + float64(2*dx2[i]) + float64(2*dx3[i]) + dx4[i]
		next[i] = v.x[i] + float64(h6*sum)
		for c := 0; c < dynamo.Dim; c++ {
			qs := dq1[i][c] + float64(2*dq2[i][c]) + float64(2*dq3[i][c]) + dq4[i][c]
			v.q[i][c] += float64(h6 * qs)
		}
	}
	v.x = next
}

// orthonormalize replaces the columns of q with an orthonormal basis via
// modified Gram-Schmidt and returns the diagonal of R.
func orthonormalize(q *dynamo.Matrix) ([dynamo.Dim]float64, bool) {
	var norms [dynamo.Dim]float64
	for c := 0; c < dynamo.Dim; c++ {
		for p := 0; p < c; p++ {
			dot := 0.0
			for i := 0; i < dynamo.Dim; i++ {
				dot += float64(q[i][c] * q[i][p])
			}
			for i := 0; i < dynamo.Dim; i++ {
				q[i][c] -= float64(dot * q[i][p])
			}
		}
		n := 0.0
		for i := 0; i < dynamo.Dim; i++ {
			n += float64(q[i][c] * q[i][c])
		}
		n = math.Sqrt(n)
		if !(n > 0) || math.IsInf(n, 0) {
			return norms, false
		}
		for i := 0; i < dynamo.Dim; i++ {
			q[i][c] /= n
		}
		norms[c] = n
	}
	return norms, true
}

// EstimateSpectrum computes all four Lyapunov exponents of spec with the
// Benettin method: the state and a tangent basis are integrated together,
// the basis is re-orthonormalized every cfg.ReorthoInterval steps, and the
// logarithms of the stretch factors are averaged over Steps*Dt.
func EstimateSpectrum(ctx context.Context, spec systems.Spec, cfg LyapunovConfig) (Spectrum, error) {
	if err := cfg.Validate(); err != nil {
		return Spectrum{}, err
	}

	flow := spec.System()
	name := flow.Name()
	x := spec.Init()

	rk := integrators.NewRK4()
	for n := 0; n < cfg.TransientSteps; n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Spectrum{}, dynamo.Canceled(name, n, float64(n)*cfg.Dt, err)
			}
		}
		x = rk.Step(flow, x, 0, cfg.Dt)
		if !x.IsValid() {
			return Spectrum{}, diverged(name, n+1, cfg.Dt, x)
		}
	}

	v := &variational{flow: flow, x: x, q: dynamo.Identity()}
	var acc [dynamo.Dim]float64

	collect := func(n int) error {
		norms, ok := orthonormalize(&v.q)
		if !ok {
			return diverged(name, n, cfg.Dt, v.x)
		}
		for i, r := range norms {
			acc[i] += math.Log(r)
		}
		return nil
	}

	for n := 1; n <= cfg.Steps; n++ {
		if (n-1)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Spectrum{}, dynamo.Canceled(name, n, float64(n)*cfg.Dt, err)
			}
		}
		v.step(cfg.Dt)
		if !v.x.IsValid() {
			return Spectrum{}, diverged(name, n, cfg.Dt, v.x)
		}
		if n%cfg.ReorthoInterval == 0 {
			if err := collect(n); err != nil {
				return Spectrum{}, err
			}
		}
	}
	if cfg.Steps%cfg.ReorthoInterval != 0 {
		if err := collect(cfg.Steps); err != nil {
			return Spectrum{}, err
		}
	}

	total := float64(cfg.Steps) * cfg.Dt
	var exps [dynamo.Dim]float64
	for i := range acc {
		exps[i] = acc[i] / total
	}
	return newSpectrum(name, exps, cfg), nil
}

func diverged(system string, step int, dt float64, x dynamo.State) error {
	return &dynamo.SimulationError{
		System:  system,
		Step:    step,
		Time:    float64(step) * dt,
		State:   x.Clone(),
		Wrapped: dynamo.ErrDiverged,
	}
}

// LargestExponent estimates the largest Lyapunov exponent using the
// trajectory separation method: a reference and a perturbed trajectory
// are advanced together and the perturbed one is pulled back to distance
// d0 after every step.
//
//	lambda1 = (1 / (steps*dt)) * sum ln(|dx(t)| / d0)
//
// It needs no Jacobian and serves as an independent check of the first
// exponent returned by EstimateSpectrum.
func LargestExponent(ctx context.Context, spec systems.Spec, cfg LyapunovConfig, d0 float64) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if !(d0 > 0) {
		return 0, fmt.Errorf("%w: perturbation must be positive, got %g", dynamo.ErrInvalidInput, d0)
	}

	flow := spec.System()
	name := flow.Name()
	integ := integrators.NewRK4()
	x := spec.Init()
	for n := 0; n < cfg.TransientSteps; n++ {
		x = integ.Step(flow, x, 0, cfg.Dt)
	}
	if !x.IsValid() {
		return 0, diverged(name, cfg.TransientSteps, cfg.Dt, x)
	}

	xp := x.Clone()
	xp[0] += d0

	sumLog := 0.0
	for n := 1; n <= cfg.Steps; n++ {
		if (n-1)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, dynamo.Canceled(name, n, float64(n)*cfg.Dt, err)
			}
		}
		x = integ.Step(flow, x, 0, cfg.Dt)
		xp = integ.Step(flow, xp, 0, cfg.Dt)
		if !x.IsValid() || !xp.IsValid() {
			return 0, diverged(name, n, cfg.Dt, x)
		}

		sep := xp.Sub(x).Norm()
		if sep == 0 {
			// Trajectories collapsed onto each other; restart the perturbation.
			xp = x.Clone()
			xp[0] += d0
			continue
		}
		sumLog += math.Log(sep / d0)

		scale := d0 / sep
		for i := range xp {
			xp[i] = x[i] + (xp[i]-x[i])*scale
		}
	}

	return sumLog / (float64(cfg.Steps) * cfg.Dt), nil
}
