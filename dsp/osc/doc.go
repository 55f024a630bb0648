// Package osc provides the harmonically shaped low-frequency/audio-rate
// oscillators used by subtractive voices, and a three-slot Bank that sums
// them.
//
// Supported kinds:
//   - KindSawUp / KindSawDown: tanh-shaped ramps
//   - KindSquare: arctangent-shaped square
//   - KindTriangle: blend of a rounded and an ideal triangle
//   - KindPulse / KindBipolarPulse: narrowing sine powers
//   - KindSampleAndHold: random steps with optional raised-cosine glide
//   - KindModulatedSine: self-FM sine
//
// Sharpness in [0, 1] controls harmonic richness for every kind. Frequency
// and sharpness are read on every sample so they can be modulated without
// discontinuities beyond those of the waveform itself. Every kind stays
// within [-1, 1].
package osc
