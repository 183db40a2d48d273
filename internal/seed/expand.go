package seed

import (
	"context"
	"fmt"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/integrators"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

// Options controls candidate screening.
type Options struct {
	// Steps is the number of RK4 steps a candidate must survive.
	Steps int
	Dt    float64
	// Bound is the largest admissible |component| during screening.
	Bound float64
	// MaxAttempts is the number of candidates drawn per system before
	// falling back to the system's default.
	MaxAttempts int
}

func DefaultOptions() Options {
	return Options{Steps: 50000, Dt: 0.01, Bound: 1e4, MaxAttempts: 16}
}

func (o Options) Validate() error {
	if o.Steps < 0 {
		return fmt.Errorf("%w: screening steps must be non-negative", dynamo.ErrInvalidInput)
	}
	if o.Steps > 0 && !(o.Dt > 0) {
		return fmt.Errorf("%w: screening dt must be positive", dynamo.ErrInvalidInput)
	}
	if o.Steps > 0 && !(o.Bound > 0) {
		return fmt.Errorf("%w: screening bound must be positive", dynamo.ErrInvalidInput)
	}
	if o.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1", dynamo.ErrInvalidInput)
	}
	return nil
}

// Expansion is the result of expanding a seed.
type Expansion struct {
	Specs [systems.Count]systems.Spec
	// Attempts is the number of candidates drawn per system.
	Attempts [systems.Count]int
	// Fallback marks systems that exhausted MaxAttempts and use defaults.
	Fallback [systems.Count]bool
}

// Expand maps a seed onto three system specs inside the validated
// hyperchaotic ranges using the default screening options. The empty
// seed yields systems.Defaults.
func Expand(seed string) [systems.Count]systems.Spec {
	exp, err := ExpandContext(context.Background(), seed, DefaultOptions())
	if err != nil {
		// Only reachable through cancellation or invalid options.
		panic(err)
	}
	return exp.Specs
}

// ExpandContext is Expand with explicit screening options and cancellation.
func ExpandContext(ctx context.Context, seed string, opts Options) (Expansion, error) {
	var exp Expansion
	if err := opts.Validate(); err != nil {
		return exp, err
	}
	if seed == "" {
		exp.Specs = systems.Defaults()
		return exp, nil
	}

	stream := NewStream(seed)
	for _, kind := range systems.Kinds {
		b := systems.ValidatedBounds(kind)
		accepted := false
		for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
			cand, err := draw(stream, kind, b)
			if err != nil {
				return exp, err
			}
			exp.Attempts[kind] = attempt
			ok, err := survives(ctx, cand, opts)
			if err != nil {
				return exp, err
			}
			if ok {
				exp.Specs[kind] = cand
				accepted = true
				break
			}
		}
		if !accepted {
			exp.Specs[kind] = systems.Default(kind)
			exp.Fallback[kind] = true
		}
	}
	return exp, nil
}

func draw(stream *Stream, kind systems.Kind, b systems.Bounds) (systems.Spec, error) {
	params := make([]float64, len(b.Params))
	for i, r := range b.Params {
		params[i] = r.At(stream.Float64())
	}
	var init [dynamo.Dim]float64
	for i, r := range b.Init {
		init[i] = r.At(stream.Float64())
	}
	return systems.NewSpec(kind, params, init)
}

const checkEvery = 1024

// survives integrates a candidate and reports whether it stayed bounded.
func survives(ctx context.Context, spec systems.Spec, opts Options) (bool, error) {
	flow := spec.System()
	integ := integrators.NewRK4()
	x := spec.Init()
	for n := 1; n <= opts.Steps; n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return false, dynamo.Canceled(flow.Name(), n, float64(n)*opts.Dt, err)
			}
		}
		x = integ.Step(flow, x, float64(n-1)*opts.Dt, opts.Dt)
		if !x.Bounded(opts.Bound) {
			return false, nil
		}
	}
	return true, nil
}
