package synth

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/envelope"
	"github.com/cwbudde/algo-synth/dsp/filter/moog"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

// CutoffCeiling is the filter cutoff in Hz at full envelope level and a
// cutoff factor of 1. The filter clamps it below Nyquist.
const CutoffCeiling = 20000.0

// Voice renders one note: oscillator bank times envelope, through the ladder
// filter whose cutoff follows the envelope, panned with the linear law.
type Voice struct {
	bank   *osc.Bank
	env    *envelope.ADSR
	filter *moog.Filter

	pitch      float64
	seq        uint64
	pan        float64
	cutoffFact float64
}

// NewVoice builds an idle voice with the default patch.
func NewVoice(sampleRate float64) (*Voice, error) {
	bank, err := osc.NewBank(sampleRate, osc.WithSharpness(paramTable[paramSharp1].Default))
	if err != nil {
		return nil, fmt.Errorf("synth: voice bank: %w", err)
	}

	env, err := envelope.New(sampleRate,
		envelope.WithAttack(paramTable[paramAttack].Default),
		envelope.WithDecay(paramTable[paramDecay].Default),
		envelope.WithSustain(paramTable[paramSustain].Default),
		envelope.WithRelease(paramTable[paramRelease].Default),
		envelope.WithGain(paramTable[paramGain].Default),
	)
	if err != nil {
		return nil, fmt.Errorf("synth: voice envelope: %w", err)
	}

	filter, err := moog.New(sampleRate,
		moog.WithCutoffHz(0),
		moog.WithResonance(paramTable[paramRes].Default),
	)
	if err != nil {
		return nil, fmt.Errorf("synth: voice filter: %w", err)
	}

	return &Voice{
		bank:       bank,
		env:        env,
		filter:     filter,
		pan:        paramTable[paramPan].Default,
		cutoffFact: paramTable[paramCutoffFact].Default,
	}, nil
}

// Bank returns the voice's oscillator bank.
func (v *Voice) Bank() *osc.Bank { return v.bank }

// Envelope returns the voice's envelope.
func (v *Voice) Envelope() *envelope.ADSR { return v.env }

// Filter returns the voice's ladder filter.
func (v *Voice) Filter() *moog.Filter { return v.filter }

// Pitch returns the MIDI note the voice was last started with.
func (v *Voice) Pitch() float64 { return v.pitch }

// Active reports whether the voice is sounding, release tail included.
func (v *Voice) Active() bool { return v.env.Active() }

// Releasing reports whether the voice is in its release tail.
func (v *Voice) Releasing() bool { return v.env.Stage() == envelope.StageRelease }

// Held reports whether the voice is sounding and not yet released.
func (v *Voice) Held() bool { return v.Active() && !v.Releasing() }

// Level returns the current envelope level.
func (v *Voice) Level() float64 { return v.env.Level() }

// Pan returns the stereo position.
func (v *Voice) Pan() float64 { return v.pan }

// SetPan sets the stereo position, clamped to [0, 1].
func (v *Voice) SetPan(pan float64) { v.pan = core.Clamp01(pan) }

// CutoffFactor returns the share of CutoffCeiling the envelope sweeps.
func (v *Voice) CutoffFactor() float64 { return v.cutoffFact }

// SetCutoffFactor sets the cutoff factor, clamped to [0, 1].
func (v *Voice) SetCutoffFactor(f float64) { v.cutoffFact = core.Clamp01(f) }

// Start triggers the voice at a MIDI pitch. An idle voice starts from a
// clean state; a sounding voice keeps its phases and filter memory and its
// envelope re-attacks from the current level.
func (v *Voice) Start(pitch, velocity float64) {
	if !v.Active() {
		v.bank.Reset()
		v.filter.Reset()
	}
	v.pitch = pitch
	v.bank.SetFrequency(core.MIDIToHz(pitch))
	v.env.NoteOn(velocity)
}

// Release moves the voice into its release tail.
func (v *Voice) Release() { v.env.NoteOff() }

// Kill silences the voice immediately and clears its state.
func (v *Voice) Kill() {
	v.env.Reset()
	v.bank.Reset()
	v.filter.Reset()
}

// Render produces the next stereo frame.
func (v *Voice) Render() (left, right float64) {
	s := v.next()

	return s * (1 - v.pan), s * v.pan
}

// RenderMono writes the next len(dst) pre-pan samples into dst. Frames
// after the voice falls idle are zero.
func (v *Voice) RenderMono(dst []float64) {
	for i := range dst {
		if !v.Active() {
			clear(dst[i:])

			return
		}
		dst[i] = v.next()
	}
}

func (v *Voice) next() float64 {
	level := v.env.Next()
	v.filter.SetCutoffHz(level * CutoffCeiling * v.cutoffFact)

	return v.filter.ProcessSample(v.bank.Next() * level)
}

func (v *Voice) setParam(id paramID, value float64) {
	switch id {
	case paramType1, paramType2, paramType3:
		v.bank.SetKind(int(id-paramType1), osc.ClampKind(int(value)))
	case paramSharp1, paramSharp2, paramSharp3:
		v.bank.SetSharpness(int(id-paramSharp1), value)
	case paramCutoffFact:
		v.SetCutoffFactor(value)
	case paramRes:
		v.filter.SetResonance(value)
	case paramAttack:
		v.env.SetAttack(value)
	case paramDecay:
		v.env.SetDecay(value)
	case paramSustain:
		v.env.SetSustain(value)
	case paramRelease:
		v.env.SetRelease(value)
	case paramGain:
		v.env.SetGain(value)
	case paramPan:
		v.SetPan(value)
	}
}
