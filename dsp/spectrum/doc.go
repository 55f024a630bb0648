// Package spectrum analyzes rendered audio blocks in the frequency domain.
//
// Analyzer windows a block with a Hann window, transforms it with an
// algo-fft plan and returns the one-sided magnitude spectrum. Helpers derive
// the quantities used to check and report subtractive patches: spectral
// centroid (brightness), the strongest bin and band energy.
package spectrum
