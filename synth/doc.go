// Package synth implements a polyphonic subtractive synthesis engine.
//
// Each Voice binds a three-slot oscillator bank, an ADSR envelope and a
// resonant ladder lowpass to one sounding note. The envelope scales the bank
// and also drives the filter cutoff, so the filter opens as a note is struck
// and closes as it fades.
//
// Engine owns a fixed pool of voices and mixes them into planar stereo
// blocks. Process and RenderBlock belong to the render context; they never
// block, lock or allocate. Other goroutines talk to a running engine through
// two lock-free hand-offs: note events travel through a single-producer
// single-consumer queue (NoteOn, NoteOff, AllNotesOff) and parameters through
// atomic cells (Set, Get and the typed accessors). Only one goroutine may
// produce note events at a time.
//
// When every voice is busy a note-on steals one: first the releasing voice
// closest to silence, otherwise the voice triggered longest ago. The stolen
// voice re-triggers from its current level.
package synth
