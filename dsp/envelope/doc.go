// Package envelope provides a linear ADSR envelope generator for note
// amplitude and filter-cutoff control.
//
// Stage transitions:
//
//	Idle --NoteOn--> Attack --attack elapsed--> Decay --decay elapsed--> Sustain
//	Sustain --NoteOff--> Release --level reaches 0--> Idle
//
// NoteOff during Attack or Decay releases from the current level, and NoteOn
// during any stage restarts the attack from the current level, so the output
// never jumps. Each ramp is linear and monotonic; the per-sample step is
// bounded by MaxStep.
package envelope
