// Package analysis provides survey tools built on the field sampling API.
//
// The package answers questions about a configured field without running a
// full simulation:
//
//   - [Profile]: net magnitude sampled along a line segment
//   - [Crossover]: where dominance hands over between two sources
//   - [Equilibrium]: where opposing pulls cancel along a segment
//
// # Dominance Handover
//
// Crossover brackets the handover with the segment endpoints and bisects:
//
//	t, ok := analysis.Crossover(reg, alpha, beta, p0, p1, 0)
//	if ok {
//	    pos := analysis.Lerp(p0, p1, t)
//	    // alpha steers orientation before pos, beta after
//	}
package analysis
