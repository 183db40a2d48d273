package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

// RunAll runs the three specs concurrently, one simulator per system.
// setup, when non-nil, is called on each fresh simulator before it runs
// so callers can attach per-system metrics. The first failure cancels
// the others and no partial results are returned.
func RunAll(ctx context.Context, specs [systems.Count]systems.Spec, cfg dynamo.Config, setup func(systems.Kind, *Simulator)) ([systems.Count]*Result, error) {
	var out [systems.Count]*Result
	if err := cfg.Validate(); err != nil {
		return out, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		s := New()
		if setup != nil {
			setup(spec.Kind(), s)
		}
		g.Go(func() error {
			res, err := s.Run(gctx, spec, cfg)
			if err != nil {
				return fmt.Errorf("integrate %s: %w", describe(spec, cfg), err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return [systems.Count]*Result{}, err
	}
	return out, nil
}

// IntegrateAll integrates the three specs concurrently and returns their
// trajectories in input order.
func IntegrateAll(ctx context.Context, specs [systems.Count]systems.Spec, cfg dynamo.Config) ([systems.Count]*dynamo.Trajectory, error) {
	var out [systems.Count]*dynamo.Trajectory
	results, err := RunAll(ctx, specs, cfg, nil)
	if err != nil {
		return out, err
	}
	for i, r := range results {
		out[i] = r.Trajectory
	}
	return out, nil
}
