package moog_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/filter/moog"
)

func ExampleFilter_SetCutoffHz() {
	f, err := moog.New(48000, moog.WithCutoffHz(0), moog.WithResonance(0.5))
	if err != nil {
		panic(err)
	}

	// An envelope-style sweep: the filter opens as the note is struck.
	peak := 0.0
	for i := range 4800 {
		f.SetCutoffHz(float64(i) * 2)
		saw := 2*math.Mod(float64(i)*110/48000, 1) - 1
		peak = math.Max(peak, math.Abs(f.ProcessSample(saw)))
	}

	f.SetCutoffHz(1e9)
	fmt.Printf("cutoff clamped below Nyquist: %v\n", f.CutoffHz() < 24000)
	fmt.Printf("bounded: %v\n", peak < 4)
	// Output:
	// cutoff clamped below Nyquist: true
	// bounded: true
}
