package moog

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const (
	defaultCutoffHz  = 1000.0
	defaultResonance = 0.5
	defaultDrive     = 1.0

	minDrive = 0.1
	maxDrive = 8.0

	// maxFeedback is the loop gain at resonance 1, the self-oscillation
	// threshold of an ideal four-pole ladder.
	maxFeedback = 4.0

	// outputCompensation restores part of the passband gain the feedback
	// loop removes (1/(1+k) for loop gain k).
	outputCompensation = 0.5

	stateLimit = 4.0
)

// Variant selects the feedback saturator.
type Variant int

const (
	// VariantHuovilainen uses exact tanh with Huovilainen tuning and
	// resonance compensation.
	VariantHuovilainen Variant = iota
	// VariantLightweight replaces tanh with a bounded rational approximation.
	VariantLightweight
)

func (v Variant) String() string {
	switch v {
	case VariantHuovilainen:
		return "huovilainen"
	case VariantLightweight:
		return "lightweight"
	default:
		return "unknown"
	}
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	variant         Variant
	cutoffHz        float64
	resonance       float64
	drive           float64
	normalizeOutput bool
}

func defaultConfig() config {
	return config{
		variant:         VariantHuovilainen,
		cutoffHz:        defaultCutoffHz,
		resonance:       defaultResonance,
		drive:           defaultDrive,
		normalizeOutput: true,
	}
}

// WithVariant selects the feedback saturator.
func WithVariant(variant Variant) Option {
	return func(cfg *config) error {
		if !validVariant(variant) {
			return fmt.Errorf("moog: invalid variant: %d", variant)
		}

		cfg.variant = variant

		return nil
	}
}

// WithCutoffHz sets cutoff in Hz. Must be finite, >= 0 and below Nyquist.
func WithCutoffHz(cutoffHz float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(cutoffHz, 0, math.Inf(1), "cutoff"); err != nil {
			return err
		}

		cfg.cutoffHz = cutoffHz

		return nil
	}
}

// WithResonance sets feedback resonance in [0, 1]. At 1 the ladder sits at
// its self-oscillation threshold.
func WithResonance(resonance float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(resonance, 0, 1, "resonance"); err != nil {
			return err
		}

		cfg.resonance = resonance

		return nil
	}
}

// WithDrive sets the input gain into the saturator, in [0.1, 8].
func WithDrive(drive float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(drive, minDrive, maxDrive, "drive"); err != nil {
			return err
		}

		cfg.drive = drive

		return nil
	}
}

// WithNormalizeOutput enables or disables passband gain compensation.
func WithNormalizeOutput(enabled bool) Option {
	return func(cfg *config) error {
		cfg.normalizeOutput = enabled

		return nil
	}
}

// State contains explicit ladder runtime state for save/restore workflows.
type State struct {
	Stage      [4]float64
	PrevOutput float64
}

// Filter is a resonant 4-stage ladder low-pass processor.
type Filter struct {
	sampleRate float64

	variant         Variant
	cutoffHz        float64
	resonance       float64
	drive           float64
	normalizeOutput bool

	coefficient float64
	feedback    float64
	outputScale float64

	state      State
	recoveries int
}

// New constructs a ladder filter.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("moog: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	nyquist := 0.5 * sampleRate
	if cfg.cutoffHz >= nyquist {
		return nil, fmt.Errorf("moog: cutoff must be < Nyquist (%f Hz): %f", nyquist, cfg.cutoffHz)
	}

	f := &Filter{
		sampleRate:      sampleRate,
		variant:         cfg.variant,
		cutoffHz:        cfg.cutoffHz,
		resonance:       cfg.resonance,
		drive:           cfg.drive,
		normalizeOutput: cfg.normalizeOutput,
	}
	f.rebuild()

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// Variant returns the feedback saturator variant.
func (f *Filter) Variant() Variant { return f.variant }

// CutoffHz returns the cutoff frequency in Hz.
func (f *Filter) CutoffHz() float64 { return f.cutoffHz }

// Resonance returns the resonance in [0, 1].
func (f *Filter) Resonance() float64 { return f.resonance }

// Drive returns the input drive.
func (f *Filter) Drive() float64 { return f.drive }

// NormalizeOutput reports whether passband gain compensation is enabled.
func (f *Filter) NormalizeOutput() bool { return f.normalizeOutput }

// Recoveries returns how many times a non-finite state forced a reset.
func (f *Filter) Recoveries() int { return f.recoveries }

// MaxCutoffHz returns the largest cutoff the filter accepts.
func (f *Filter) MaxCutoffHz() float64 {
	return math.Nextafter(0.5*f.sampleRate, 0)
}

// SetVariant switches the feedback saturator. Invalid variants are ignored.
func (f *Filter) SetVariant(variant Variant) {
	if validVariant(variant) {
		f.variant = variant
	}
}

// SetCutoffHz updates the cutoff. Values are clamped to [0, Nyquist) and
// non-finite values become 0 Hz. Safe to call every sample.
func (f *Filter) SetCutoffHz(cutoffHz float64) {
	cutoffHz = core.Clamp(core.Sanitize(cutoffHz, 0), 0, f.MaxCutoffHz())
	if cutoffHz == f.cutoffHz {
		return
	}

	f.cutoffHz = cutoffHz
	f.rebuild()
}

// SetResonance updates resonance, clamped to [0, 1]; NaN becomes 0.
func (f *Filter) SetResonance(resonance float64) {
	resonance = core.Clamp01(resonance)
	if resonance == f.resonance {
		return
	}

	f.resonance = resonance
	f.rebuild()
}

// SetDrive updates input drive, clamped to [0.1, 8].
func (f *Filter) SetDrive(drive float64) {
	f.drive = core.Clamp(core.Sanitize(drive, defaultDrive), minDrive, maxDrive)
}

// SetNormalizeOutput enables or disables passband gain compensation.
func (f *Filter) SetNormalizeOutput(enabled bool) {
	f.normalizeOutput = enabled
	f.updateOutputScale()
}

// Reset clears ladder state.
func (f *Filter) Reset() {
	f.state = State{}
}

// State returns a copy of the current processor state.
func (f *Filter) State() State {
	return f.state
}

// SetState restores an externally saved processor state.
func (f *Filter) SetState(state State) error {
	if !stateIsFinite(state) {
		return fmt.Errorf("moog: state contains NaN or Inf")
	}

	for i := range state.Stage {
		state.Stage[i] = clipState(state.Stage[i])
	}
	state.PrevOutput = clipState(state.PrevOutput)
	f.state = state

	return nil
}

// ProcessSample processes one sample.
func (f *Filter) ProcessSample(input float64) float64 {
	if !core.IsFinite(input) {
		input = 0
	}

	s := &f.state

	tanhFn := math.Tanh
	if f.variant == VariantLightweight {
		tanhFn = fastTanhApprox
	}

	// Half-sample feedback estimate.
	prev := s.Stage[3]
	feedbackSample := 0.5 * (s.Stage[3] + s.PrevOutput)
	u := tanhFn(f.drive*input - f.feedback*feedbackSample)

	// Each stage is a convex blend (0 <= g <= 1) of its memory and its
	// input; with |u| < 1 no stage can grow past max(1, its current value).
	g := f.coefficient
	s.Stage[0] = core.FlushDenormals(s.Stage[0] + g*(u-s.Stage[0]))
	s.Stage[1] = core.FlushDenormals(s.Stage[1] + g*(s.Stage[0]-s.Stage[1]))
	s.Stage[2] = core.FlushDenormals(s.Stage[2] + g*(s.Stage[1]-s.Stage[2]))
	s.Stage[3] = core.FlushDenormals(s.Stage[3] + g*(s.Stage[2]-s.Stage[3]))
	s.PrevOutput = prev

	if !stateIsFinite(*s) {
		f.recoveries++
		f.Reset()

		return 0
	}

	return f.outputScale * s.Stage[3]
}

// ProcessInPlace processes a mono buffer in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// ProcessTo processes src into dst. Both slices must have the same length.
func (f *Filter) ProcessTo(dst, src []float64) {
	n := len(src)
	if n == 0 {
		return
	}

	_ = dst[n-1]
	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}
}

func (f *Filter) rebuild() {
	fc := f.cutoffHz / f.sampleRate

	fcr := 1.8730*fc*fc*fc + 0.4955*fc*fc - 0.6490*fc + 0.9988
	if fcr < 0 {
		fcr = 0
	}

	f.coefficient = core.Clamp(1-mathExp(-2*math.Pi*fcr*fc), 0, 1)

	resonanceComp := -3.9364*fc*fc + 1.8409*fc + 0.9968
	if resonanceComp < 0 {
		resonanceComp = 0
	}

	f.feedback = maxFeedback * f.resonance * resonanceComp
	f.updateOutputScale()
}

func (f *Filter) updateOutputScale() {
	f.outputScale = 1
	if f.normalizeOutput {
		f.outputScale = 1 + outputCompensation*f.feedback
	}
}

func validVariant(variant Variant) bool {
	return variant == VariantHuovilainen || variant == VariantLightweight
}

func validateFiniteRange(value, min, max float64, name string) error {
	if !core.IsFinite(value) {
		return fmt.Errorf("moog: %s must be finite: %v", name, value)
	}

	if value < min || value > max {
		return fmt.Errorf("moog: %s must be in [%g, %g]: %f", name, min, max, value)
	}

	return nil
}

func clipState(value float64) float64 {
	return core.Clamp(value, -stateLimit, stateLimit)
}

func fastTanhApprox(x float64) float64 {
	if x > 3 {
		return 1
	}

	if x < -3 {
		return -1
	}

	x2 := x * x

	return core.Clamp(x*(27+x2)/(27+9*x2), -1, 1)
}

func stateIsFinite(state State) bool {
	for _, v := range state.Stage {
		if !core.IsFinite(v) {
			return false
		}
	}

	return core.IsFinite(state.PrevOutput)
}
