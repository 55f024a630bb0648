// Package moog provides a resonant four-pole (24 dB/octave) ladder low-pass
// filter for subtractive voices.
//
// Four cascaded one-pole stages share one smoothing coefficient derived from
// the cutoff with the analog-matched mapping g = 1 - exp(-2*pi*fc/fs),
// corrected by Huovilainen's tuning polynomial. Resonance feeds the fourth
// stage back into the input through a tanh saturator, so the loop can
// self-oscillate near full resonance but can never diverge.
//
// Supported variants:
//   - VariantHuovilainen: exact tanh in the feedback path.
//   - VariantLightweight: polynomial tanh approximation for lower CPU use.
//
// The filter guarantees:
//   - Bounded output for all inputs; NaN and ±Inf inputs are treated as 0
//   - Cutoff clamped to [0, Nyquist) and resonance clamped to [0, 1] at runtime
//   - Automatic state reset if the ladder memory ever becomes non-finite
//   - Explicit state save/restore via State
//
// Build with -tags fastmath to compute the per-sample coefficient with
// algo-approx's exponential.
package moog
