// Package analysis provides chaos analysis tools for the hyperchaotic flows.
//
//   - [EstimateSpectrum]: all four Lyapunov exponents via the Benettin
//     variational method with periodic QR re-orthonormalization
//   - [LargestExponent]: largest exponent via trajectory separation
//   - [Bifurcation]: one-parameter sweep recording local maxima
//   - [AnalyzeBits]: balance, run and autocorrelation statistics of a bitstream
//
// # Hyperchaos
//
// A system is hyperchaotic when at least two exponents are strictly positive:
//
//	sp, err := analysis.EstimateSpectrum(ctx, spec, analysis.DefaultLyapunovConfig())
//	if err == nil && sp.Hyperchaotic {
//	    // two or more expanding directions
//	}
package analysis
