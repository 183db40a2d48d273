package analysis

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/sim"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

// BifurcationPoint holds the local maxima of one coordinate observed for a
// single parameter value.
type BifurcationPoint struct {
	Param  float64   `json:"param"`
	Maxima []float64 `json:"maxima"`
}

// BifurcationConfig describes a one-parameter sweep.
type BifurcationConfig struct {
	Param      string
	Min, Max   float64
	Points     int
	Coordinate int
	// Sim drives each run; transient steps are discarded before maxima
	// are recorded.
	Sim dynamo.Config
	// MaxPerPoint caps the number of maxima kept per parameter value.
	MaxPerPoint int
}

func (c BifurcationConfig) Validate(spec systems.Spec) error {
	if _, ok := spec.Param(c.Param); !ok {
		return fmt.Errorf("%w: %s has no parameter %q", dynamo.ErrInvalidInput, spec.Kind(), c.Param)
	}
	if c.Points < 2 {
		return fmt.Errorf("%w: bifurcation sweep needs at least 2 points", dynamo.ErrInvalidInput)
	}
	if !(c.Max > c.Min) {
		return fmt.Errorf("%w: empty parameter range [%g, %g]", dynamo.ErrInvalidInput, c.Min, c.Max)
	}
	if c.Coordinate < 0 || c.Coordinate >= dynamo.Dim {
		return fmt.Errorf("%w: coordinate %d out of range", dynamo.ErrInvalidInput, c.Coordinate)
	}
	return c.Sim.Validate()
}

// Bifurcation sweeps one parameter of spec and records the local maxima of
// a coordinate after the transient. Parameter values are simulated
// concurrently; results are in sweep order.
func Bifurcation(ctx context.Context, spec systems.Spec, cfg BifurcationConfig) ([]BifurcationPoint, error) {
	if err := cfg.Validate(spec); err != nil {
		return nil, err
	}
	limit := cfg.MaxPerPoint
	if limit <= 0 {
		limit = 200
	}

	results := make([]BifurcationPoint, cfg.Points)
	step := (cfg.Max - cfg.Min) / float64(cfg.Points-1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < cfg.Points; i++ {
		param := cfg.Min + float64(i)*step
		g.Go(func() error {
			s, err := spec.WithParam(cfg.Param, param)
			if err != nil {
				return err
			}

			maxima := make([]float64, 0, limit)
			var prev2, prev1 float64
			seen := 0
			err = sim.New().RunWithCallback(gctx, s, cfg.Sim, func(x dynamo.State, _ float64) bool {
				v := x[cfg.Coordinate]
				if seen >= 2 && prev1 > prev2 && prev1 >= v {
					maxima = append(maxima, prev1)
				}
				prev2, prev1 = prev1, v
				seen++
				return len(maxima) < limit
			})
			if err != nil {
				return fmt.Errorf("%s=%g: %w", cfg.Param, param, err)
			}
			results[i] = BifurcationPoint{Param: param, Maxima: maxima}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BifurcationToASCII converts bifurcation data to ASCII art.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Maxima {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
				continue
			}
			minVal = min(minVal, v)
			maxVal = max(maxVal, v)
		}
	}
	if !foundFirst {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		for _, v := range p.Maxima {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
