package systems

import (
	"fmt"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// RosslerFlow is the 4D hyperchaotic Rossler system
//
//	x' = -y - z
//	y' = x + a*y + w
//	z' = b + x*z
//	w' = -c*z + d*w
type RosslerFlow struct{ a, b, c, d float64 }

func NewRossler(a, b, c, d float64) *RosslerFlow { return &RosslerFlow{a, b, c, d} }

func (r *RosslerFlow) Name() string  { return Rossler.String() }
func (r *RosslerFlow) StateDim() int { return dynamo.Dim }

// Derive calculates the Rossler hyperchaos derivatives.
func (r *RosslerFlow) Derive(s dynamo.State, _ float64) dynamo.State {
	return dynamo.State{
		-s[1] - s[2],
		s[0] + float64(r.a*s[1]) + s[3],
		r.b + float64(s[0]*s[2]),
		float64(-r.c*s[2]) + float64(r.d*s[3]),
	}
}

func (r *RosslerFlow) Jacobian(s dynamo.State) dynamo.Matrix {
	return dynamo.Matrix{
		{0, -1, -1, 0},
		{1, r.a, 0, 1},
		{s[2], 0, s[0], 0},
		{0, 0, -r.c, r.d},
	}
}

func (r *RosslerFlow) GetParams() map[string]float64 {
	return map[string]float64{"a": r.a, "b": r.b, "c": r.c, "d": r.d}
}

func (r *RosslerFlow) SetParam(n string, v float64) error {
	switch n {
	case "a":
		r.a = v
	case "b":
		r.b = v
	case "c":
		r.c = v
	case "d":
		r.d = v
	default:
		return fmt.Errorf("%w: rossler has no parameter %q", dynamo.ErrInvalidInput, n)
	}
	return nil
}
