package systems

import (
	"fmt"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// ChenFlow is the 4D hyperchaotic Chen system
//
//	x' = a*(y - x) + w
//	y' = d*x - x*z + c*y
//	z' = x*y - b*z
//	w' = x*z + r*w
type ChenFlow struct{ a, b, c, d, r float64 }

func NewChen(a, b, c, d, r float64) *ChenFlow { return &ChenFlow{a, b, c, d, r} }

func (ch *ChenFlow) Name() string  { return Chen.String() }
func (ch *ChenFlow) StateDim() int { return dynamo.Dim }

// Derive calculates the Chen hyperchaos derivatives.
func (ch *ChenFlow) Derive(s dynamo.State, _ float64) dynamo.State {
	return dynamo.State{
		float64(ch.a*(s[1]-s[0])) + s[3],
		float64(ch.d*s[0]) - float64(s[0]*s[2]) + float64(ch.c*s[1]),
		float64(s[0]*s[1]) - float64(ch.b*s[2]),
		float64(s[0]*s[2]) + float64(ch.r*s[3]),
	}
}

func (ch *ChenFlow) Jacobian(s dynamo.State) dynamo.Matrix {
	return dynamo.Matrix{
		{-ch.a, ch.a, 0, 1},
		{ch.d - s[2], ch.c, -s[0], 0},
		{s[1], s[0], -ch.b, 0},
		{s[2], 0, s[0], ch.r},
	}
}

func (ch *ChenFlow) GetParams() map[string]float64 {
	return map[string]float64{"a": ch.a, "b": ch.b, "c": ch.c, "d": ch.d, "r": ch.r}
}

func (ch *ChenFlow) SetParam(n string, v float64) error {
	switch n {
	case "a":
		ch.a = v
	case "b":
		ch.b = v
	case "c":
		ch.c = v
	case "d":
		ch.d = v
	case "r":
		ch.r = v
	default:
		return fmt.Errorf("%w: chen has no parameter %q", dynamo.ErrInvalidInput, n)
	}
	return nil
}
