package osc

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const (
	defaultSharpness = 1.0

	// Harmonic-richness mapping: sharpness 0 gives minHarmonics, 1 gives
	// minHarmonics+harmonicSpan before band limiting.
	minHarmonics = 4.0
	harmonicSpan = 46.0

	// Maximum self-FM index of KindModulatedSine at sharpness 1.
	maxModIndex = 4.0

	defaultSeed uint32 = 0x9e3779b9
)

// tan(1) normalizes tan(sin(x)) and tan(|sin(x)|^n) into [-1, 1].
var tanOne = math.Tan(1)

// Kind selects the oscillator waveform.
//
// For the saw, square, pulse and triangle kinds, sharpness sets the harmonic
// count (the blend toward the ideal shape for triangle) and that count is
// capped by the pitch to limit aliasing. Above the cap further sharpness has
// no effect, so the audible range of the control shrinks as pitch rises:
// at 48 kHz a 440 Hz triangle saturates near sharpness 0.38 and a 2 kHz saw
// or square at about 0.04.
type Kind int

const (
	// KindSawUp is a rising ramp.
	KindSawUp Kind = iota
	// KindSawDown is a falling ramp.
	KindSawDown
	// KindSquare is a symmetric square wave.
	KindSquare
	// KindTriangle is a triangle wave.
	KindTriangle
	// KindPulse is a unipolar pulse train.
	KindPulse
	// KindBipolarPulse alternates positive and negative pulses.
	KindBipolarPulse
	// KindSampleAndHold holds a random value for one cycle.
	KindSampleAndHold
	// KindModulatedSine is a sine with a sharpness-controlled FM index.
	KindModulatedSine
)

// NumKinds is the number of supported waveform kinds.
const NumKinds = int(KindModulatedSine) + 1

func (k Kind) String() string {
	switch k {
	case KindSawUp:
		return "saw_up"
	case KindSawDown:
		return "saw_down"
	case KindSquare:
		return "square"
	case KindTriangle:
		return "triangle"
	case KindPulse:
		return "pulse"
	case KindBipolarPulse:
		return "bipolar_pulse"
	case KindSampleAndHold:
		return "sample_and_hold"
	case KindModulatedSine:
		return "modulated_sine"
	default:
		return "unknown"
	}
}

// Valid reports whether k names a supported waveform.
func (k Kind) Valid() bool {
	return k >= KindSawUp && k <= KindModulatedSine
}

// ClampKind maps any integer onto a supported Kind.
func ClampKind(k int) Kind {
	if k < int(KindSawUp) {
		return KindSawUp
	}
	if k > int(KindModulatedSine) {
		return KindModulatedSine
	}

	return Kind(k)
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	kind      Kind
	sharpness float64
	frequency float64
	seed      uint32
}

func defaultConfig() config {
	return config{
		kind:      KindSawUp,
		sharpness: defaultSharpness,
		seed:      defaultSeed,
	}
}

// WithKind selects the waveform.
func WithKind(kind Kind) Option {
	return func(cfg *config) error {
		if !kind.Valid() {
			return fmt.Errorf("osc: invalid kind: %d", kind)
		}
		cfg.kind = kind

		return nil
	}
}

// WithSharpness sets harmonic richness in [0, 1].
func WithSharpness(sharpness float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(sharpness) || sharpness < 0 || sharpness > 1 {
			return fmt.Errorf("osc: sharpness must be in [0, 1]: %f", sharpness)
		}
		cfg.sharpness = sharpness

		return nil
	}
}

// WithFrequency sets the initial frequency in Hz. Must be finite and >= 0.
func WithFrequency(hz float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(hz) || hz < 0 {
			return fmt.Errorf("osc: frequency must be >= 0 and finite: %f", hz)
		}
		cfg.frequency = hz

		return nil
	}
}

// WithSeed sets the sample-and-hold random seed. Zero is replaced by the
// default seed since xorshift has no zero state.
func WithSeed(seed uint32) Option {
	return func(cfg *config) error {
		if seed == 0 {
			seed = defaultSeed
		}
		cfg.seed = seed

		return nil
	}
}

// Oscillator generates one waveform from a phase accumulator.
type Oscillator struct {
	sampleRate float64
	kind       Kind
	sharpness  float64
	frequency  float64

	phase float64
	rng   uint32

	// sample-and-hold state
	holdCurrent float64
	holdLast    float64
	glidePhase  float64
}

// New constructs an oscillator.
func New(sampleRate float64, opts ...Option) (*Oscillator, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("osc: sample rate must be > 0 and finite: %f", sampleRate)
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

	o := &Oscillator{
		sampleRate: sampleRate,
		kind:       cfg.kind,
		sharpness:  cfg.sharpness,
		frequency:  cfg.frequency,
		rng:        cfg.seed,
	}
	o.holdCurrent = o.nextRandom()
	o.holdLast = o.holdCurrent
	o.glidePhase = 1

	return o, nil
}

// SampleRate returns the sample rate in Hz.
func (o *Oscillator) SampleRate() float64 { return o.sampleRate }

// Kind returns the waveform kind.
func (o *Oscillator) Kind() Kind { return o.kind }

// Sharpness returns the harmonic-richness control.
func (o *Oscillator) Sharpness() float64 { return o.sharpness }

// Frequency returns the current frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.frequency }

// Phase returns the phase accumulator in [0, 1).
func (o *Oscillator) Phase() float64 { return o.phase }

// SetKind switches waveform. Out-of-range kinds are clamped. The phase is
// kept so the switch does not restart the cycle.
func (o *Oscillator) SetKind(kind Kind) {
	o.kind = ClampKind(int(kind))
}

// SetSharpness updates sharpness, clamped to [0, 1]. NaN maps to 0. The
// pitch-dependent harmonic cap described on Kind still applies.
func (o *Oscillator) SetSharpness(sharpness float64) {
	o.sharpness = core.Clamp01(sharpness)
}

// SetFrequency updates frequency. Negative or non-finite values become 0 Hz.
func (o *Oscillator) SetFrequency(hz float64) {
	o.frequency = sanitizeFrequency(hz, o.sampleRate)
}

// SetPhase sets the phase accumulator; the value is wrapped into [0, 1).
func (o *Oscillator) SetPhase(phase float64) {
	o.phase = core.Wrap01(core.Sanitize(phase, 0))
}

// Reset rewinds the phase and clears sample-and-hold glide state. The random
// sequence continues so retriggered notes do not repeat the same steps.
func (o *Oscillator) Reset() {
	o.phase = 0
	o.holdLast = o.holdCurrent
	o.glidePhase = 1
}

// Advance sets the frequency and produces the next sample.
func (o *Oscillator) Advance(hz float64) float64 {
	o.SetFrequency(hz)

	return o.Next()
}

// Next produces the next sample at the current frequency.
//
// At 0 Hz the phase is frozen and the waveform value at that phase repeats,
// giving a constant output.
func (o *Oscillator) Next() float64 {
	freq := o.frequency
	inc := freq / o.sampleRate

	var out float64
	switch o.kind {
	case KindSawUp:
		out = o.saw(freq)
	case KindSawDown:
		out = -o.saw(freq)
	case KindSquare:
		out = o.square(freq)
	case KindTriangle:
		out = o.triangle(freq)
	case KindPulse:
		out = o.pulse(freq, false)
	case KindBipolarPulse:
		out = o.pulse(freq, true)
	case KindSampleAndHold:
		out = o.sampleAndHold(inc)
	case KindModulatedSine:
		out = o.modulatedSine()
	}

	if inc > 0 {
		o.phase += inc
		if o.phase >= 1 {
			o.phase -= 1
			if o.phase >= 1 {
				o.phase = core.Wrap01(o.phase)
			}
			o.holdLast = o.holdCurrentValue()
			o.holdCurrent = o.nextRandom()
			o.glidePhase = 0
			if o.sharpness >= 1 {
				o.glidePhase = 1
			}
		}
	}

	return core.Clamp(out, -1, 1)
}

// ProcessTo fills dst with successive samples at the current frequency.
func (o *Oscillator) ProcessTo(dst []float64) {
	for i := range dst {
		dst[i] = o.Next()
	}
}

// harmonics maps sharpness to a harmonic count limited to keep the partials
// below sampleRate/divisor.
func (o *Oscillator) harmonics(freq, divisor float64) float64 {
	n := o.sharpness*harmonicSpan + minHarmonics
	if freq > 0 {
		limit := math.Floor(o.sampleRate / divisor / freq)
		if limit < 1 {
			limit = 1
		}
		if n > limit {
			n = limit
		}
	}

	return n
}

func (o *Oscillator) saw(freq float64) float64 {
	n := o.harmonics(freq, 4)
	p := 2*o.phase - 1

	return p - math.Tanh(n*p)/math.Tanh(n)
}

func (o *Oscillator) square(freq float64) float64 {
	n := o.harmonics(freq, 4)

	return math.Atan(n*math.Sin(2*math.Pi*o.phase)) * (2 / math.Pi)
}

func (o *Oscillator) triangle(freq float64) float64 {
	// The blend weight is limited so bright settings do not alias at high
	// pitches.
	weight := o.sharpness
	if freq > 0 {
		limit := o.sampleRate / 8 / freq / 36
		if weight > limit {
			weight = limit
		}
	}

	rounded := math.Tan(math.Sin(2*math.Pi*o.phase)) / tanOne

	p := o.phase + 0.25
	if p >= 1 {
		p -= 1
	}
	ideal := 4*(0.5-math.Abs(p-0.5)) - 1

	return rounded*(1-weight) + ideal*weight
}

func (o *Oscillator) pulse(freq float64, bipolar bool) float64 {
	n := math.Floor(o.harmonics(freq, 8))
	if math.Mod(n, 2) == 0 {
		n++
	}

	s := math.Sin(2 * math.Pi * o.phase)
	if !bipolar {
		s = math.Abs(s)
	}

	return math.Tan(math.Pow(s, n)) / tanOne
}

// sampleAndHold glides from the previous to the current random value with a
// raised cosine spanning (1-sharpness) of a cycle.
func (o *Oscillator) sampleAndHold(inc float64) float64 {
	out := o.holdCurrentValue()

	if inc <= 0 || o.glidePhase >= 1 {
		return out
	}

	glide := 1 - o.sharpness
	if glide <= 0 {
		o.glidePhase = 1
	} else {
		o.glidePhase += inc / glide
	}

	return out
}

func (o *Oscillator) holdCurrentValue() float64 {
	if o.glidePhase >= 1 {
		return o.holdCurrent
	}
	fac := 0.5 * (1 - math.Cos(math.Pi*o.glidePhase))

	return o.holdCurrent*fac + o.holdLast*(1-fac)
}

func (o *Oscillator) modulatedSine() float64 {
	theta := 2 * math.Pi * o.phase
	index := o.sharpness * maxModIndex

	return math.Sin(theta + index*math.Sin(theta))
}

// nextRandom returns a uniform value in [-1, 1] from a xorshift32 state.
func (o *Oscillator) nextRandom() float64 {
	x := o.rng
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	o.rng = x

	return float64(x)/float64(math.MaxUint32)*2 - 1
}

func sanitizeFrequency(hz, sampleRate float64) float64 {
	if !core.IsFinite(hz) || hz <= 0 {
		return 0
	}
	// Phase increments at or above one cycle per sample carry no
	// waveform information.
	if hz >= sampleRate {
		return math.Nextafter(sampleRate, 0)
	}

	return hz
}
