package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClamp01(t *testing.T) {
	if got := Clamp01(math.NaN()); got != 0 {
		t.Fatalf("Clamp01(NaN) = %v, want 0", got)
	}
	if got := Clamp01(math.Inf(1)); got != 1 {
		t.Fatalf("Clamp01(+Inf) = %v, want 1", got)
	}
	if got := Clamp01(0.25); got != 0.25 {
		t.Fatalf("Clamp01(0.25) = %v, want 0.25", got)
	}
}

func TestSanitize(t *testing.T) {
	if got := Sanitize(math.NaN(), 3); got != 3 {
		t.Fatalf("Sanitize(NaN) = %v, want 3", got)
	}
	if got := Sanitize(math.Inf(-1), 0); got != 0 {
		t.Fatalf("Sanitize(-Inf) = %v, want 0", got)
	}
	if got := Sanitize(-2, 0); got != -2 {
		t.Fatalf("Sanitize(-2) = %v, want -2", got)
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("expected values to be nearly equal")
	}
	if NearlyEqual(1.0, 1.1, 1e-3) {
		t.Fatal("expected values to differ")
	}
}

func TestFlushDenormals(t *testing.T) {
	if FlushDenormals(1e-31) != 0 || FlushDenormals(-1e-31) != 0 {
		t.Fatal("expected tiny values to flush to zero")
	}
	if FlushDenormals(1e-20) != 1e-20 {
		t.Fatal("expected small normal value to pass through")
	}
}

func TestWrap01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.25, 0.25},
		{1, 0},
		{1.75, 0.75},
		{-0.25, 0.75},
		{-3, 0},
	}

	for _, tt := range tests {
		got := Wrap01(tt.in)
		if !NearlyEqual(got, tt.want, 1e-12) {
			t.Fatalf("Wrap01(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= 1 {
			t.Fatalf("Wrap01(%v) = %v outside [0,1)", tt.in, got)
		}
	}
}

func TestMIDIToHz(t *testing.T) {
	tests := []struct {
		note float64
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6255653005986},
	}

	for _, tt := range tests {
		got := MIDIToHz(tt.note)
		if !NearlyEqual(got, tt.want, 1e-9) {
			t.Fatalf("MIDIToHz(%v) = %v, want %v", tt.note, got, tt.want)
		}
		if back := HzToMIDI(got); !NearlyEqual(back, tt.note, 1e-9) {
			t.Fatalf("HzToMIDI(MIDIToHz(%v)) = %v", tt.note, back)
		}
	}

	if MIDIToHz(math.NaN()) != 0 {
		t.Fatal("expected 0 Hz for NaN note")
	}
	if !math.IsNaN(HzToMIDI(0)) {
		t.Fatal("expected NaN for 0 Hz")
	}
}

func TestVelocityFromMIDI(t *testing.T) {
	if VelocityFromMIDI(127) != 1 || VelocityFromMIDI(0) != 0 || VelocityFromMIDI(200) != 1 {
		t.Fatal("unexpected velocity mapping")
	}
}
