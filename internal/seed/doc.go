// Package seed expands an arbitrary seed string into the parameters and
// initial conditions of the three hyperchaotic systems.
//
// The seed is absorbed into SHAKE256 behind a fixed domain prefix. Each
// field consumes eight bytes of the output stream, mapped uniformly into
// the validated range of that field. Candidates that leave the attractor
// during a short screening run are discarded and redrawn from the same
// stream, so the whole expansion is a pure function of the seed.
package seed
