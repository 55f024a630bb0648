package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-synth/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

// ErrEmptyInput is returned when an analysis gets no samples.
var ErrEmptyInput = errors.New("spectrum: input must not be empty")

// Analyzer computes windowed magnitude spectra of fixed-size frames.
// It reuses its buffers and is not safe for concurrent use.
type Analyzer struct {
	size       int
	sampleRate float64

	plan   *algofft.Plan[complex128]
	window []float64
	gain   float64

	samples []float64
	frame   []complex128
	bins    []complex128
	re      []float64
	im      []float64
	mag     []float64
}

// NewAnalyzer creates an analyzer for frames of size samples. size must be
// a power of two >= 2.
func NewAnalyzer(size int, sampleRate float64) (*Analyzer, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("spectrum: size must be a power of two >= 2: %d", size)
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("spectrum: sample rate must be > 0 and finite: %v", sampleRate)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}

	coeffs, err := window.Hann(size, window.WithPeriodic())
	if err != nil {
		return nil, fmt.Errorf("spectrum: window: %w", err)
	}

	gain, err := window.CoherentGain(coeffs)
	if err != nil {
		return nil, fmt.Errorf("spectrum: window: %w", err)
	}

	half := size/2 + 1
	a := &Analyzer{
		size:       size,
		sampleRate: sampleRate,
		plan:       plan,
		window:     coeffs,
		gain:       gain,
		samples:    make([]float64, size),
		frame:      make([]complex128, size),
		bins:       make([]complex128, size),
		re:         make([]float64, half),
		im:         make([]float64, half),
		mag:        make([]float64, half),
	}

	return a, nil
}

// Size returns the frame size.
func (a *Analyzer) Size() int { return a.size }

// SampleRate returns the sample rate in Hz.
func (a *Analyzer) SampleRate() float64 { return a.sampleRate }

// CoherentGain returns the amplitude factor the analysis window applies to
// a bin-centered sinusoid.
func (a *Analyzer) CoherentGain() float64 { return a.gain }

// BinFrequency returns the center frequency of bin k in Hz.
func (a *Analyzer) BinFrequency(k int) float64 {
	return float64(k) * a.sampleRate / float64(a.size)
}

// Analyze returns the one-sided magnitude spectrum (size/2+1 bins) of x.
// Shorter input is zero-padded, longer input is truncated. The returned
// slice is owned by the analyzer and overwritten by the next call.
func (a *Analyzer) Analyze(x []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}

	n := copy(a.samples, x)
	clear(a.samples[n:])

	if err := window.ApplyCoefficientsInPlace(a.samples, a.window); err != nil {
		return nil, fmt.Errorf("spectrum: %w", err)
	}

	for i, v := range a.samples {
		a.frame[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.bins, a.frame); err != nil {
		return nil, fmt.Errorf("spectrum: forward FFT failed: %w", err)
	}

	for k := range a.mag {
		a.re[k] = real(a.bins[k])
		a.im[k] = imag(a.bins[k])
	}

	vecmath.Magnitude(a.mag, a.re, a.im)

	return a.mag, nil
}

// Centroid returns the magnitude-weighted mean frequency of a one-sided
// spectrum, or 0 for a silent spectrum.
func (a *Analyzer) Centroid(mag []float64) float64 {
	weighted, total := 0.0, 0.0
	for k, m := range mag {
		weighted += a.BinFrequency(k) * m
		total += m
	}

	if total == 0 {
		return 0
	}

	return weighted / total
}

// PeakBin returns the index and magnitude of the strongest bin, skipping DC.
// It returns -1 for spectra with fewer than two bins.
func PeakBin(mag []float64) (int, float64) {
	if len(mag) < 2 {
		return -1, 0
	}

	best, peak := 1, mag[1]
	for k := 2; k < len(mag); k++ {
		if mag[k] > peak {
			best, peak = k, mag[k]
		}
	}

	return best, peak
}

// BandEnergy sums squared magnitudes of bins whose centers lie in
// [loHz, hiHz].
func (a *Analyzer) BandEnergy(mag []float64, loHz, hiHz float64) float64 {
	sum := 0.0
	for k, m := range mag {
		f := a.BinFrequency(k)
		if f >= loHz && f <= hiHz {
			sum += m * m
		}
	}

	return sum
}
