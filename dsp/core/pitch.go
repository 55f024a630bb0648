package core

import "math"

const (
	// ConcertA is the reference frequency of MIDI note 69.
	ConcertA = 440.0
	// ConcertANote is the MIDI note number of ConcertA.
	ConcertANote = 69.0
)

// MIDIToHz converts a (possibly fractional) MIDI note number to Hz using
// twelve-tone equal temperament. Non-finite notes map to 0 Hz.
func MIDIToHz(note float64) float64 {
	if !IsFinite(note) {
		return 0
	}

	return ConcertA * math.Exp2((note-ConcertANote)/12)
}

// HzToMIDI converts a frequency in Hz to a fractional MIDI note number.
// Returns NaN for frequencies <= 0.
func HzToMIDI(hz float64) float64 {
	if !(hz > 0) {
		return math.NaN()
	}

	return ConcertANote + 12*math.Log2(hz/ConcertA)
}

// VelocityFromMIDI maps a 7-bit MIDI velocity to [0, 1].
func VelocityFromMIDI(velocity int) float64 {
	return Clamp(float64(velocity)/127, 0, 1)
}
