// Package dynamo provides core numeric primitives for the hyperchaotic
// flows that drive key derivation.
//
// The package defines the fundamental interfaces and types shared by the
// integrator, the simulator and the chaos analysis tools:
//
//   - [State]: vector representing a system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Linearizable]: systems that also expose their Jacobian
//   - [Integrator]: fixed-step numerical integrator interface
//   - [Trajectory]: immutable sampled run
//   - [Config]: step size, step count, transient and sampling stride
//
// # Errors
//
// All failures are reported through the sentinel errors in this package
// ([ErrInvalidInput], [ErrDiverged], [ErrShapeMismatch], [ErrCanceled]),
// optionally wrapped in a [SimulationError] carrying the system name and
// the step at which integration stopped.
//
// # Thread Safety
//
// Values in this package are either immutable or owned by a single
// goroutine. [ParallelFor] is the only helper that spawns goroutines.
package dynamo
