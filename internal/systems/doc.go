// Package systems defines the three four-dimensional hyperchaotic flows
// that generate key material: a Rossler-type, a Chen-type and a
// Lorenz-type system.
//
// Each flow implements [dynamo.Linearizable] so it can be integrated by
// the RK4 scheme and analysed by the variational Lyapunov estimator. A
// [Spec] bundles a flow kind with concrete parameters and an initial
// condition; [ValidatedBounds] gives the boxes seeds are mapped into.
//
// All products in Derive are wrapped in explicit float64 conversions so
// results do not depend on fused multiply-add availability.
package systems
