package envelope

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const (
	defaultAttack  = 0.05
	defaultDecay   = 0.4
	defaultSustain = 0.2
	defaultRelease = 0.5
	defaultGain    = 1.0

	maxStageSeconds = 60.0
)

// Stage is the current envelope segment.
type Stage int

const (
	// StageIdle outputs silence and waits for NoteOn.
	StageIdle Stage = iota
	// StageAttack ramps towards the velocity peak.
	StageAttack
	// StageDecay ramps from the peak to the sustain plateau.
	StageDecay
	// StageSustain holds the plateau until NoteOff.
	StageSustain
	// StageRelease ramps to zero.
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	attack  float64
	decay   float64
	sustain float64
	release float64
	gain    float64
}

func defaultConfig() config {
	return config{
		attack:  defaultAttack,
		decay:   defaultDecay,
		sustain: defaultSustain,
		release: defaultRelease,
		gain:    defaultGain,
	}
}

// WithAttack sets attack time in seconds, in [0, 60].
func WithAttack(seconds float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(seconds, 0, maxStageSeconds, "attack"); err != nil {
			return err
		}
		cfg.attack = seconds

		return nil
	}
}

// WithDecay sets decay time in seconds, in [0, 60].
func WithDecay(seconds float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(seconds, 0, maxStageSeconds, "decay"); err != nil {
			return err
		}
		cfg.decay = seconds

		return nil
	}
}

// WithSustain sets the sustain level in [0, 1] relative to the peak.
func WithSustain(level float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(level, 0, 1, "sustain"); err != nil {
			return err
		}
		cfg.sustain = level

		return nil
	}
}

// WithRelease sets release time in seconds, in [0, 60].
func WithRelease(seconds float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(seconds, 0, maxStageSeconds, "release"); err != nil {
			return err
		}
		cfg.release = seconds

		return nil
	}
}

// WithGain sets the output multiplier in [0, 1].
func WithGain(gain float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(gain, 0, 1, "gain"); err != nil {
			return err
		}
		cfg.gain = gain

		return nil
	}
}

// ADSR is a linear attack/decay/sustain/release generator.
//
// Time parameters changed while a stage is running take effect at the next
// stage transition, so a running ramp never changes slope mid-way.
type ADSR struct {
	sampleRate float64

	attack  float64
	decay   float64
	sustain float64
	release float64
	gain    float64

	stage    Stage
	level    float64
	velocity float64
	target   float64
	step     float64
	remain   int
}

// New constructs an ADSR envelope in the idle stage.
func New(sampleRate float64, opts ...Option) (*ADSR, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("envelope: sample rate must be > 0 and finite: %f", sampleRate)
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

	return &ADSR{
		sampleRate: sampleRate,
		attack:     cfg.attack,
		decay:      cfg.decay,
		sustain:    cfg.sustain,
		release:    cfg.release,
		gain:       cfg.gain,
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (e *ADSR) SampleRate() float64 { return e.sampleRate }

// Attack returns attack time in seconds.
func (e *ADSR) Attack() float64 { return e.attack }

// Decay returns decay time in seconds.
func (e *ADSR) Decay() float64 { return e.decay }

// Sustain returns the sustain level relative to the peak.
func (e *ADSR) Sustain() float64 { return e.sustain }

// Release returns release time in seconds.
func (e *ADSR) Release() float64 { return e.release }

// Gain returns the output multiplier.
func (e *ADSR) Gain() float64 { return e.gain }

// Stage returns the current stage.
func (e *ADSR) Stage() Stage { return e.stage }

// Velocity returns the velocity captured at the last NoteOn.
func (e *ADSR) Velocity() float64 { return e.velocity }

// Level returns the current output level, gain included.
func (e *ADSR) Level() float64 { return e.level * e.gain }

// Active reports whether the envelope is outside the idle stage.
func (e *ADSR) Active() bool { return e.stage != StageIdle }

// SetAttack updates attack time; values are clamped to [0, 60] s.
func (e *ADSR) SetAttack(seconds float64) { e.attack = clampSeconds(seconds) }

// SetDecay updates decay time; values are clamped to [0, 60] s.
func (e *ADSR) SetDecay(seconds float64) { e.decay = clampSeconds(seconds) }

// SetRelease updates release time; values are clamped to [0, 60] s.
func (e *ADSR) SetRelease(seconds float64) { e.release = clampSeconds(seconds) }

// SetSustain updates the sustain level, clamped to [0, 1]. A running sustain
// plateau follows immediately; the level moves at most by the decay slope
// per sample to stay continuous.
func (e *ADSR) SetSustain(level float64) {
	e.sustain = core.Clamp01(level)
	if e.stage == StageSustain {
		e.enterDecay(e.level)
	}
}

// SetGain updates the output multiplier, clamped to [0, 1].
func (e *ADSR) SetGain(gain float64) { e.gain = core.Clamp01(gain) }

// NoteOn starts (or restarts) the attack from the current level. velocity is
// clamped to [0, 1] and scales both the peak and the sustain plateau.
func (e *ADSR) NoteOn(velocity float64) {
	e.velocity = core.Clamp01(velocity)
	e.enterAttack()
}

// NoteOff starts the release from the current level. It is a no-op while idle
// or already releasing.
func (e *ADSR) NoteOff() {
	if e.stage == StageIdle || e.stage == StageRelease {
		return
	}
	e.enterRelease()
}

// Reset forces the idle stage at level 0.
func (e *ADSR) Reset() {
	e.stage = StageIdle
	e.level = 0
	e.target = 0
	e.step = 0
	e.remain = 0
}

// MaxStep returns the largest per-sample level change the current settings,
// velocity and level can produce, gain included. Zero-length stages jump and
// report +Inf.
func (e *ADSR) MaxStep() float64 {
	peak := math.Max(e.velocity, e.level)
	attack := e.samples(e.attack)
	decay := e.samples(e.decay)
	release := e.samples(e.release)
	if attack == 0 || decay == 0 || release == 0 {
		return math.Inf(1)
	}

	step := peak / float64(attack)
	step = math.Max(step, peak*(1-e.sustain)/float64(decay))
	step = math.Max(step, peak/float64(release))

	return step * e.gain
}

// Next advances one sample and returns the level, gain included.
func (e *ADSR) Next() float64 {
	switch e.stage {
	case StageAttack, StageDecay, StageRelease:
		if e.remain > 0 {
			e.level += e.step
			e.remain--
		}
		if e.remain == 0 {
			e.level = e.target
			e.advanceStage()
		}
	case StageSustain, StageIdle:
	}

	return e.level * e.gain
}

// Process fills dst with successive levels.
func (e *ADSR) Process(dst []float64) {
	for i := range dst {
		dst[i] = e.Next()
	}
}

// ProcessMultiply multiplies buf by successive levels.
func (e *ADSR) ProcessMultiply(buf []float64) {
	for i := range buf {
		buf[i] *= e.Next()
	}
}

func (e *ADSR) advanceStage() {
	switch e.stage {
	case StageAttack:
		e.enterDecay(e.level)
	case StageDecay:
		e.stage = StageSustain
		e.step = 0
	case StageRelease:
		e.Reset()
	}
}

func (e *ADSR) enterAttack() {
	peak := e.velocity
	e.stage = StageAttack
	e.target = peak

	// Full-scale slope, so a retrigger from a higher level arrives sooner.
	n := e.samples(e.attack)
	if n == 0 || peak <= 0 || e.level >= peak {
		e.remain = 0
		e.step = 0
		if e.level > peak {
			// Already above the new peak: let decay carry it down smoothly.
			e.enterDecay(e.level)

			return
		}
		e.level = peak
		e.enterDecay(peak)

		return
	}

	slope := peak / float64(n)
	e.remain = rampSamples(peak-e.level, slope)
	e.step = (peak - e.level) / float64(e.remain)
}

func (e *ADSR) enterDecay(from float64) {
	plateau := e.sustain * e.velocity
	e.stage = StageDecay
	e.target = plateau

	n := e.samples(e.decay)
	if n == 0 || from == plateau {
		e.level = plateau
		e.stage = StageSustain
		e.step = 0
		e.remain = 0

		return
	}

	// The decay slope spans peak to plateau in the decay time.
	span := e.velocity - plateau
	if span <= 0 {
		span = math.Abs(from - plateau)
	}
	slope := span / float64(n)
	e.remain = rampSamples(math.Abs(from-plateau), slope)
	e.step = (plateau - from) / float64(e.remain)
}

func (e *ADSR) enterRelease() {
	e.stage = StageRelease
	e.target = 0

	n := e.samples(e.release)
	if n == 0 || e.level <= 0 {
		e.Reset()

		return
	}

	// Release always takes the full release time from wherever it starts.
	e.remain = n
	e.step = -e.level / float64(n)
}

// rampSamples returns how many samples a ramp of the given distance takes at
// slope per sample, at least one.
func rampSamples(distance, slope float64) int {
	n := int(math.Ceil(distance/slope - 1e-9))
	if n < 1 {
		n = 1
	}

	return n
}

func (e *ADSR) samples(seconds float64) int {
	return int(math.Round(seconds * e.sampleRate))
}

func clampSeconds(seconds float64) float64 {
	if math.IsNaN(seconds) {
		return 0
	}

	return core.Clamp(seconds, 0, maxStageSeconds)
}

func validateFiniteRange(value, min, max float64, name string) error {
	if !core.IsFinite(value) {
		return fmt.Errorf("envelope: %s must be finite: %v", name, value)
	}

	if value < min || value > max {
		return fmt.Errorf("envelope: %s must be in [%g, %g]: %f", name, min, max, value)
	}

	return nil
}
