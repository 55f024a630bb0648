package synth

import (
	"fmt"
	"math"
	"slices"
	"sync/atomic"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

// ParamType is the value domain of a control-surface parameter.
type ParamType int

const (
	// ParamFloat accepts any value in [Min, Max].
	ParamFloat ParamType = iota
	// ParamInt accepts whole numbers in [Min, Max]; fractions are rounded.
	ParamInt
)

func (t ParamType) String() string {
	switch t {
	case ParamFloat:
		return "float"
	case ParamInt:
		return "int"
	default:
		return "unknown"
	}
}

// ScaleLinear marks a parameter whose UI control maps linearly to its value.
const ScaleLinear = "lin"

// ParamInfo describes one named parameter for UI generation.
type ParamInfo struct {
	Name    string
	Type    ParamType
	Min     float64
	Max     float64
	Default float64
	Scale   string
	Unit    string
}

// Clamp maps value into the parameter's range. NaN maps to the default and
// integer parameters are rounded to the nearest whole number.
func (p ParamInfo) Clamp(value float64) float64 {
	if math.IsNaN(value) {
		return p.Default
	}
	if p.Type == ParamInt {
		value = math.Round(value)
	}

	return core.Clamp(value, p.Min, p.Max)
}

type paramID int

const (
	paramType1 paramID = iota
	paramType2
	paramType3
	paramSharp1
	paramSharp2
	paramSharp3
	paramCutoffFact
	paramRes
	paramAttack
	paramDecay
	paramSustain
	paramRelease
	paramGain
	paramPan

	numParams
)

const maxKind = float64(osc.NumKinds - 1)

var paramTable = [numParams]ParamInfo{
	paramType1:      {Name: "type1", Type: ParamInt, Max: maxKind, Scale: ScaleLinear},
	paramType2:      {Name: "type2", Type: ParamInt, Max: maxKind, Scale: ScaleLinear},
	paramType3:      {Name: "type3", Type: ParamInt, Max: maxKind, Scale: ScaleLinear},
	paramSharp1:     {Name: "sharp1", Max: 1, Default: 1, Scale: ScaleLinear},
	paramSharp2:     {Name: "sharp2", Max: 1, Default: 1, Scale: ScaleLinear},
	paramSharp3:     {Name: "sharp3", Max: 1, Default: 1, Scale: ScaleLinear},
	paramCutoffFact: {Name: "cutoffFact", Max: 1, Default: 0.5, Scale: ScaleLinear},
	paramRes:        {Name: "res", Max: 1, Default: 0.5, Scale: ScaleLinear},
	paramAttack:     {Name: "attack", Max: 10, Default: 0.05, Scale: ScaleLinear, Unit: "s"},
	paramDecay:      {Name: "decay", Max: 10, Default: 0.4, Scale: ScaleLinear, Unit: "s"},
	paramSustain:    {Name: "sustain", Max: 1, Default: 0.2, Scale: ScaleLinear},
	paramRelease:    {Name: "release", Max: 10, Default: 0.5, Scale: ScaleLinear, Unit: "s"},
	paramGain:       {Name: "gain", Max: 1, Default: 0.65, Scale: ScaleLinear},
	paramPan:        {Name: "pan", Max: 1, Default: 0.5, Scale: ScaleLinear},
}

var paramIndex = func() map[string]paramID {
	m := make(map[string]paramID, numParams)
	for id, info := range paramTable {
		m[info.Name] = paramID(id)
	}

	return m
}()

// Params returns the control surface in display order.
func Params() []ParamInfo {
	return slices.Clone(paramTable[:])
}

// LookupParam returns the metadata of the named parameter.
func LookupParam(name string) (ParamInfo, bool) {
	id, ok := paramIndex[name]
	if !ok {
		return ParamInfo{}, false
	}

	return paramTable[id], true
}

func lookupID(name string) (paramID, error) {
	id, ok := paramIndex[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}

	return id, nil
}

// paramCells holds the current value of every parameter as float64 bits.
// Writers and the render context share it without locks.
type paramCells [numParams]atomic.Uint64

func (c *paramCells) store(id paramID, value float64) float64 {
	value = paramTable[id].Clamp(value)
	c[id].Store(math.Float64bits(value))

	return value
}

func (c *paramCells) load(id paramID) float64 {
	return math.Float64frombits(c[id].Load())
}

// Set writes a named parameter. Out-of-range values are clamped. The change
// reaches the voices at the start of the next rendered block.
func (e *Engine) Set(name string, value float64) error {
	id, err := lookupID(name)
	if err != nil {
		return err
	}
	e.params.store(id, value)

	return nil
}

// Get reads a named parameter.
func (e *Engine) Get(name string) (float64, error) {
	id, err := lookupID(name)
	if err != nil {
		return 0, err
	}

	return e.params.load(id), nil
}

// SetType selects the waveform of oscillator slot (0-based).
func (e *Engine) SetType(slot int, kind osc.Kind) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	e.params.store(paramType1+paramID(slot), float64(kind))

	return nil
}

// Type returns the waveform of oscillator slot, or KindSawUp for an invalid
// slot.
func (e *Engine) Type(slot int) osc.Kind {
	if checkSlot(slot) != nil {
		return osc.KindSawUp
	}

	return osc.ClampKind(int(e.params.load(paramType1 + paramID(slot))))
}

// SetSharp sets the sharpness of oscillator slot (0-based).
func (e *Engine) SetSharp(slot int, sharpness float64) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	e.params.store(paramSharp1+paramID(slot), sharpness)

	return nil
}

// Sharp returns the sharpness of oscillator slot, or 0 for an invalid slot.
func (e *Engine) Sharp(slot int) float64 {
	if checkSlot(slot) != nil {
		return 0
	}

	return e.params.load(paramSharp1 + paramID(slot))
}

// SetCutoffFact sets the share of the 20 kHz cutoff ceiling the envelope
// sweeps.
func (e *Engine) SetCutoffFact(v float64) { e.params.store(paramCutoffFact, v) }

// CutoffFact returns the cutoff factor.
func (e *Engine) CutoffFact() float64 { return e.params.load(paramCutoffFact) }

// SetRes sets the filter resonance.
func (e *Engine) SetRes(v float64) { e.params.store(paramRes, v) }

// Res returns the filter resonance.
func (e *Engine) Res() float64 { return e.params.load(paramRes) }

// SetPan sets the stereo position; 0 is left, 0.5 center, 1 right.
func (e *Engine) SetPan(v float64) { e.params.store(paramPan, v) }

// Pan returns the stereo position.
func (e *Engine) Pan() float64 { return e.params.load(paramPan) }

func checkSlot(slot int) error {
	if slot < 0 || slot >= osc.BankSize {
		return fmt.Errorf("synth: oscillator slot out of range [0, %d): %d", osc.BankSize, slot)
	}

	return nil
}
