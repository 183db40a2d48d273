package systems

import "github.com/san-kum/chaoscrypt/internal/dynamo"

// Range is a closed interval [Lo, Hi].
type Range struct{ Lo, Hi float64 }

// At maps u in [0, 1) onto the interval.
func (r Range) At(u float64) float64 { return r.Lo + float64(u*(r.Hi-r.Lo)) }

func (r Range) Contains(v float64) bool { return v >= r.Lo && v <= r.Hi }

// Bounds lists the validated hyperchaotic region of a system: every
// parameter vector and initial condition drawn from these boxes has two
// positive Lyapunov exponents.
type Bounds struct {
	Params []Range
	Init   [dynamo.Dim]Range
}

var bounds = [Count]Bounds{
	Rossler: {
		Params: []Range{{0.245, 0.255}, {2.95, 3.05}, {0.495, 0.505}, {0.048, 0.052}},
		Init:   [dynamo.Dim]Range{{-10.2, -9.8}, {-6.2, -5.8}, {0, 0.1}, {9.8, 10.2}},
	},
	Chen: {
		Params: []Range{{34.5, 35.5}, {2.9, 3.1}, {14.5, 15.5}, {6.9, 7.1}, {0.45, 0.6}},
		Init:   [dynamo.Dim]Range{{0.5, 1.5}, {0.5, 1.5}, {0.5, 1.5}, {0.5, 1.5}},
	},
	Lorenz: {
		Params: []Range{{9.8, 10.2}, {27, 29}, {2.6, 2.75}, {1.45, 1.75}},
		Init:   [dynamo.Dim]Range{{0.5, 1.5}, {0.5, 1.5}, {0.5, 1.5}, {0.5, 1.5}},
	},
}

// ValidatedBounds returns the sampling boxes for kind.
func ValidatedBounds(kind Kind) Bounds {
	b := bounds[kind]
	return Bounds{Params: append([]Range(nil), b.Params...), Init: b.Init}
}

// Contains reports whether spec lies inside the validated boxes of its kind.
func Contains(spec Spec) bool {
	b := bounds[spec.kind]
	for i, v := range spec.params {
		if !b.Params[i].Contains(v) {
			return false
		}
	}
	for i, v := range spec.init {
		if !b.Init[i].Contains(v) {
			return false
		}
	}
	return true
}

var defaults = [Count]Spec{
	Rossler: mustSpec(Rossler, []float64{0.25, 3, 0.5, 0.05}, [dynamo.Dim]float64{-10, -6, 0, 10}),
	Chen:    mustSpec(Chen, []float64{35, 3, 15, 7, 0.5}, [dynamo.Dim]float64{1, 1, 1, 1}),
	Lorenz:  mustSpec(Lorenz, []float64{10, 28, 8.0 / 3.0, 1.6}, [dynamo.Dim]float64{1, 1, 1, 1}),
}

// Default returns the reference spec of kind, used for the empty seed.
func Default(kind Kind) Spec { return defaults[kind] }

// Defaults returns the reference specs in schedule order.
func Defaults() [Count]Spec { return defaults }
