// Package keygen turns hyperchaotic trajectories into cipher material.
//
// A trajectory coordinate is thresholded at its mean to give a
// [Bitstream]. The bitstream is packed MSB-first into a 32-byte [Key] and
// also drives a Fisher-Yates shuffle that produces a bijective [SBox].
// [Material] bundles the per-system results for all three systems.
package keygen
