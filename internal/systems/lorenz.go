package systems

import (
	"fmt"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// LorenzFlow is the 4D hyperchaotic Lorenz system
//
//	x' = sigma*(y - x) + w
//	y' = r*x - y - x*z
//	z' = x*y - b*z
//	w' = -x*z + k*w
type LorenzFlow struct{ sigma, rho, beta, k float64 }

func NewLorenz(sigma, rho, beta, k float64) *LorenzFlow {
	return &LorenzFlow{sigma, rho, beta, k}
}

func (l *LorenzFlow) Name() string  { return Lorenz.String() }
func (l *LorenzFlow) StateDim() int { return dynamo.Dim }

// Derive calculates the Lorenz hyperchaos derivatives.
func (l *LorenzFlow) Derive(s dynamo.State, _ float64) dynamo.State {
	return dynamo.State{
		float64(l.sigma*(s[1]-s[0])) + s[3],
		float64(l.rho*s[0]) - s[1] - float64(s[0]*s[2]),
		float64(s[0]*s[1]) - float64(l.beta*s[2]),
		float64(-s[0]*s[2]) + float64(l.k*s[3]),
	}
}

func (l *LorenzFlow) Jacobian(s dynamo.State) dynamo.Matrix {
	return dynamo.Matrix{
		{-l.sigma, l.sigma, 0, 1},
		{l.rho - s[2], -1, -s[0], 0},
		{s[1], s[0], -l.beta, 0},
		{-s[2], 0, -s[0], l.k},
	}
}

func (l *LorenzFlow) GetParams() map[string]float64 {
	return map[string]float64{"sigma": l.sigma, "r": l.rho, "b": l.beta, "k": l.k}
}

func (l *LorenzFlow) SetParam(n string, v float64) error {
	switch n {
	case "sigma":
		l.sigma = v
	case "r":
		l.rho = v
	case "b":
		l.beta = v
	case "k":
		l.k = v
	default:
		return fmt.Errorf("%w: lorenz has no parameter %q", dynamo.ErrInvalidInput, n)
	}
	return nil
}
