package synth

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-synth/dsp/buffer"
	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultPolyphony     = 8
	defaultQueueCapacity = 256

	maxPolyphony     = 256
	maxQueueCapacity = 1 << 16
)

// Option mutates engine construction settings.
type Option func(*config) error

type config struct {
	processor     core.ProcessorConfig
	polyphony     int
	queueCapacity int
	initial       [numParams]float64
}

func defaultConfig() config {
	cfg := config{
		processor:     core.DefaultProcessorConfig(),
		polyphony:     defaultPolyphony,
		queueCapacity: defaultQueueCapacity,
	}
	for id, info := range paramTable {
		cfg.initial[id] = info.Default
	}

	return cfg
}

// WithProcessorOptions applies sample rate and block size settings.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(cfg *config) error {
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.processor)
			}
		}

		return cfg.processor.Validate()
	}
}

// WithPolyphony sets the number of voices in [1, 256].
func WithPolyphony(voices int) Option {
	return func(cfg *config) error {
		if voices < 1 || voices > maxPolyphony {
			return fmt.Errorf("synth: polyphony must be in [1, %d]: %d", maxPolyphony, voices)
		}
		cfg.polyphony = voices

		return nil
	}
}

// WithQueueCapacity sets the minimum number of note events that can wait
// between two rendered blocks. It is rounded up to a power of two.
func WithQueueCapacity(events int) Option {
	return func(cfg *config) error {
		if events < 1 || events > maxQueueCapacity {
			return fmt.Errorf("synth: queue capacity must be in [1, %d]: %d", maxQueueCapacity, events)
		}
		cfg.queueCapacity = events

		return nil
	}
}

// WithParam sets the initial value of a named parameter. The value is
// clamped like Set.
func WithParam(name string, value float64) Option {
	return func(cfg *config) error {
		id, err := lookupID(name)
		if err != nil {
			return err
		}
		cfg.initial[id] = paramTable[id].Clamp(value)

		return nil
	}
}

// Stats are counters published by the render context after every block.
type Stats struct {
	ActiveVoices     int
	Steals           uint64
	FilterRecoveries uint64
	DroppedEvents    uint64
}

// Engine is a fixed-capacity voice pool mixed to stereo.
type Engine struct {
	cfg core.ProcessorConfig

	voices  []*Voice
	queue   *eventQueue
	pending []event

	params  paramCells
	applied [numParams]float64

	mono    []float64
	scratch []float64
	out     *buffer.Stereo

	seq    uint64
	steals uint64

	closed     atomic.Bool
	dropped    atomic.Uint64
	statSteals atomic.Uint64
	recoveries atomic.Uint64
	active     atomic.Int64
}

// New constructs an engine. All render buffers are allocated here.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.processor.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg.processor,
		voices:  make([]*Voice, cfg.polyphony),
		queue:   newEventQueue(cfg.queueCapacity),
		mono:    make([]float64, cfg.processor.BlockSize),
		scratch: make([]float64, cfg.processor.BlockSize),
		out:     buffer.NewStereo(cfg.processor.BlockSize),
	}
	e.pending = make([]event, 0, e.queue.capacity())

	for i := range e.voices {
		v, err := NewVoice(cfg.processor.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("synth: voice %d: %w", i, err)
		}
		e.voices[i] = v
	}

	for id := range e.params {
		e.params.store(paramID(id), cfg.initial[id])
		e.applied[id] = e.params.load(paramID(id))
		e.applyParam(paramID(id), e.applied[id])
	}

	return e, nil
}

// SampleRate returns the sample rate in Hz.
func (e *Engine) SampleRate() float64 { return e.cfg.SampleRate }

// BlockSize returns the internal render chunk in frames.
func (e *Engine) BlockSize() int { return e.cfg.BlockSize }

// Polyphony returns the number of voices.
func (e *Engine) Polyphony() int { return len(e.voices) }

// NoteOn queues a note start at the next block boundary. pitch is a MIDI
// note number (fractions allowed) and velocity is in [0, 1]; a velocity of
// 0 or less is a note-off.
func (e *Engine) NoteOn(pitch, velocity float64) error {
	return e.NoteOnAt(0, pitch, velocity)
}

// NoteOnAt queues a note start offset frames into the next rendered call.
func (e *Engine) NoteOnAt(offset int, pitch, velocity float64) error {
	if !core.IsFinite(pitch) {
		return fmt.Errorf("synth: pitch must be finite: %f", pitch)
	}
	velocity = core.Clamp01(velocity)
	if velocity == 0 {
		return e.NoteOffAt(offset, pitch)
	}

	return e.push(event{kind: eventNoteOn, pitch: pitch, velocity: velocity, offset: offset})
}

// NoteOff queues a release of every held voice at pitch.
func (e *Engine) NoteOff(pitch float64) error {
	return e.NoteOffAt(0, pitch)
}

// NoteOffAt queues a release offset frames into the next rendered call.
func (e *Engine) NoteOffAt(offset int, pitch float64) error {
	if !core.IsFinite(pitch) {
		return fmt.Errorf("synth: pitch must be finite: %f", pitch)
	}

	return e.push(event{kind: eventNoteOff, pitch: pitch, offset: offset})
}

// AllNotesOff queues a release of every held voice.
func (e *Engine) AllNotesOff() error {
	return e.push(event{kind: eventAllNotesOff})
}

func (e *Engine) push(ev event) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if ev.offset < 0 {
		ev.offset = 0
	}
	if !e.queue.push(ev) {
		e.dropped.Add(1)

		return ErrQueueFull
	}

	return nil
}

// Close stops the engine. Later renders produce silence and producers get
// ErrClosed. Close is safe to call from any goroutine and more than once.
func (e *Engine) Close() error {
	e.closed.Store(true)

	return nil
}

// Closed reports whether Close was called.
func (e *Engine) Closed() bool { return e.closed.Load() }

// Reset silences all voices, clears filter memory and discards queued
// events. It belongs to the render context.
func (e *Engine) Reset() {
	for {
		if _, ok := e.queue.pop(); !ok {
			break
		}
	}
	for _, v := range e.voices {
		v.Kill()
	}
	e.publishStats()
}

// Stats returns the counters published after the last rendered block.
func (e *Engine) Stats() Stats {
	return Stats{
		ActiveVoices:     int(e.active.Load()),
		Steals:           e.statSteals.Load(),
		FilterRecoveries: e.recoveries.Load(),
		DroppedEvents:    e.dropped.Load(),
	}
}

// ActiveVoices returns the number of sounding voices after the last block.
func (e *Engine) ActiveVoices() int { return int(e.active.Load()) }

// RenderBlock renders n frames into the engine's own stereo buffer and
// returns it. The buffer is reused by the next call; it only grows when n
// exceeds every earlier request.
func (e *Engine) RenderBlock(n int) *buffer.Stereo {
	e.out.Resize(n)
	e.Process(e.out.Left(), e.out.Right())

	return e.out
}

// Process overwrites left and right with the next min(len(left),
// len(right)) frames. Queued events are applied in arrival order at their
// frame offsets; an offset earlier than a preceding event's is moved up to
// it, so per-pitch order always holds. Parameters are read at the start of
// every internal chunk of BlockSize frames.
func (e *Engine) Process(left, right []float64) {
	n := min(len(left), len(right))
	left, right = left[:n], right[:n]
	clear(left)
	clear(right)

	if e.closed.Load() {
		return
	}

	e.drain()

	next := 0
	for start := 0; start < n; start += e.cfg.BlockSize {
		end := min(start+e.cfg.BlockSize, n)
		e.applyParams()

		pos := start
		for next < len(e.pending) && e.pending[next].offset < end {
			at := max(e.pending[next].offset, pos)
			e.mix(left[pos:at], right[pos:at])
			pos = at
			e.apply(e.pending[next])
			next++
		}
		e.mix(left[pos:end], right[pos:end])
	}

	if n == 0 {
		e.applyParams()
	}
	// Offsets past the end of this call land at the start of the next one.
	for ; next < len(e.pending); next++ {
		e.apply(e.pending[next])
	}

	e.publishStats()
}

// drain moves queued events into pending with non-decreasing offsets.
func (e *Engine) drain() {
	e.pending = e.pending[:0]
	last := 0
	for len(e.pending) < cap(e.pending) {
		ev, ok := e.queue.pop()
		if !ok {
			break
		}
		ev.offset = max(ev.offset, last)
		last = ev.offset
		e.pending = append(e.pending, ev)
	}
}

func (e *Engine) applyParams() {
	for id := range e.params {
		value := e.params.load(paramID(id))
		if value == e.applied[id] {
			continue
		}
		e.applied[id] = value
		e.applyParam(paramID(id), value)
	}
}

func (e *Engine) applyParam(id paramID, value float64) {
	for _, v := range e.voices {
		v.setParam(id, value)
	}
}

func (e *Engine) apply(ev event) {
	switch ev.kind {
	case eventNoteOn:
		e.noteOn(ev.pitch, ev.velocity)
	case eventNoteOff:
		for _, v := range e.voices {
			if v.Held() && v.pitch == ev.pitch {
				v.Release()
			}
		}
	case eventAllNotesOff:
		for _, v := range e.voices {
			v.Release()
		}
	}
}

func (e *Engine) noteOn(pitch, velocity float64) {
	v := e.allocate(pitch)
	e.seq++
	v.seq = e.seq
	v.Start(pitch, velocity)
}

// allocate picks the voice for a new note: a releasing voice already at
// this pitch, then a free voice, then the releasing voice closest to
// silence, then the voice triggered longest ago.
func (e *Engine) allocate(pitch float64) *Voice {
	var free, quietest, oldest *Voice
	for _, v := range e.voices {
		switch {
		case !v.Active():
			if free == nil {
				free = v
			}
		case v.Releasing():
			if v.pitch == pitch {
				return v
			}
			if quietest == nil || v.Level() < quietest.Level() {
				quietest = v
			}
		default:
			if oldest == nil || v.seq < oldest.seq {
				oldest = v
			}
		}
	}

	if free != nil {
		return free
	}

	e.steals++
	if quietest != nil {
		return quietest
	}

	return oldest
}

// mix renders every sounding voice into left and right. Voices that reach
// idle during the chunk return to the free pool.
func (e *Engine) mix(left, right []float64) {
	n := len(left)
	if n == 0 {
		return
	}

	mono := e.mono[:n]
	scratch := e.scratch[:n]
	for _, v := range e.voices {
		if !v.Active() {
			continue
		}
		v.RenderMono(mono)
		vecmath.ScaleBlock(scratch, mono, 1-v.pan)
		vecmath.AddBlockInPlace(left, scratch)
		vecmath.ScaleBlock(scratch, mono, v.pan)
		vecmath.AddBlockInPlace(right, scratch)
	}
}

func (e *Engine) publishStats() {
	active := 0
	recoveries := uint64(0)
	for _, v := range e.voices {
		if v.Active() {
			active++
		}
		recoveries += uint64(v.filter.Recoveries())
	}
	e.active.Store(int64(active))
	e.recoveries.Store(recoveries)
	e.statSteals.Store(e.steals)
}
