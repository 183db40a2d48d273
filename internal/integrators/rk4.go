package integrators

import "github.com/san-kum/chaoscrypt/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme. An RK4 value keeps
// scratch buffers and must not be shared between goroutines.
//
// Every product is wrapped in an explicit float64 conversion, which the Go
// spec defines as a rounding point, so the compiler cannot fuse it into an
// FMA. Trajectories are therefore bit-identical on amd64 and arm64.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)
	half := dt * 0.5

	copy(r.k1, dyn.Derive(x, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + float64(half*r.k1[i])
	}
	copy(r.k2, dyn.Derive(r.scratch, t+half))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + float64(half*r.k2[i])
	}
	copy(r.k3, dyn.Derive(r.scratch, t+half))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + float64(dt*r.k3[i])
	}
	copy(r.k4, dyn.Derive(r.scratch, t+dt))

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		sum := r.k1[i] + float64(2*r.k2[i]) + float64(2*r.k3[i]) + r.k4[i]
		result[i] = x[i] + float64(dt6*sum)
	}

	return result
}
