// Package optim searches parameter grids of the chaotic systems.
package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/chaoscrypt/internal/analysis"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

// Objective scores one parameter assignment. Larger is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// Evaluation is one grid point and its score. Err is set when the
// objective failed there; such points never win.
type Evaluation struct {
	Params map[string]float64 `json:"params"`
	Score  float64            `json:"score"`
	Err    string             `json:"error,omitempty"`
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d parameter names for %d ranges", dynamo.ErrInvalidInput, len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: no values for %s", dynamo.ErrInvalidInput, params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, workers: runtime.GOMAXPROCS(0)}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// point decodes a flat grid index, last parameter varying fastest.
func (g *GridSearch) point(idx int) map[string]float64 {
	p := make(map[string]float64, len(g.paramNames))
	for d := len(g.paramNames) - 1; d >= 0; d-- {
		r := g.ranges[d]
		p[g.paramNames[d]] = r[idx%len(r)]
		idx /= len(r)
	}
	return p
}

// Search evaluates every grid point concurrently and returns the best
// evaluation followed by all evaluations in grid order. Objective errors
// are recorded per point; only cancellation aborts the search.
func (g *GridSearch) Search(ctx context.Context, obj Objective) (Evaluation, []Evaluation, error) {
	evals := make([]Evaluation, g.Size())

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i := range evals {
		eg.Go(func() error {
			p := g.point(i)
			score, err := obj(egctx, p)
			if err != nil {
				if egctx.Err() != nil {
					return fmt.Errorf("%w: %w", dynamo.ErrCanceled, egctx.Err())
				}
				evals[i] = Evaluation{Params: p, Score: math.Inf(-1), Err: err.Error()}
				return nil
			}
			evals[i] = Evaluation{Params: p, Score: score}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Evaluation{}, nil, err
	}

	best := -1
	for i, e := range evals {
		if e.Err == "" && (best < 0 || e.Score > evals[best].Score) {
			best = i
		}
	}
	if best < 0 {
		return Evaluation{}, evals, fmt.Errorf("%w: objective failed at every grid point", dynamo.ErrDiverged)
	}
	return evals[best], evals, nil
}

// SecondExponent scores a parameter assignment of base by its second
// largest Lyapunov exponent, the margin by which the flow is hyperchaotic.
func SecondExponent(base systems.Spec, cfg analysis.LyapunovConfig) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		spec := base
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			var err error
			if spec, err = spec.WithParam(name, params[name]); err != nil {
				return 0, err
			}
		}
		sp, err := analysis.EstimateSpectrum(ctx, spec, cfg)
		if err != nil {
			return 0, err
		}
		return sp.Sorted[1], nil
	}
}
