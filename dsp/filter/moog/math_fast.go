//go:build fastmath

package moog

import "github.com/meko-christian/algo-approx"

// mathExp computes e^x using fast approximation. The cutoff coefficient is
// recomputed every sample when an envelope drives the cutoff.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}
