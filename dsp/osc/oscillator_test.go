package osc

import (
	"math"
	"testing"
)

var allKinds = []Kind{
	KindSawUp, KindSawDown, KindSquare, KindTriangle,
	KindPulse, KindBipolarPulse, KindSampleAndHold, KindModulatedSine,
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for invalid sample rate")
	}

	if _, err := New(48000, WithKind(Kind(8))); err == nil {
		t.Fatal("expected error for invalid kind")
	}

	if _, err := New(48000, WithSharpness(1.5)); err == nil {
		t.Fatal("expected error for sharpness out of range")
	}

	if _, err := New(48000, WithFrequency(math.NaN())); err == nil {
		t.Fatal("expected error for NaN frequency")
	}
}

func TestOutputBoundedForAllKinds(t *testing.T) {
	sharpness := []float64{0, 0.25, 0.5, 0.75, 1}
	freqs := []float64{0.5, 55, 261.63, 1760, 9000, 23000}

	for _, kind := range allKinds {
		for _, s := range sharpness {
			for _, f := range freqs {
				o, err := New(48000, WithKind(kind), WithSharpness(s), WithFrequency(f))
				if err != nil {
					t.Fatalf("New() error = %v", err)
				}

				for i := range 4096 {
					y := o.Next()
					if math.IsNaN(y) || y < -1 || y > 1 {
						t.Fatalf("%s sharp=%g freq=%g sample %d = %v outside [-1,1]", kind, s, f, i, y)
					}
				}
			}
		}
	}
}

func TestPhaseWrapsIntoUnitInterval(t *testing.T) {
	o, err := New(1000, WithFrequency(300))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := range 1000 {
		o.Next()
		if p := o.Phase(); p < 0 || p >= 1 {
			t.Fatalf("phase after %d samples = %v", i, p)
		}
	}

	// 300 Hz at 1 kHz: after 10 samples the phase is back to 0.
	o.SetPhase(0)
	for range 10 {
		o.Next()
	}
	if p := o.Phase(); math.Abs(p) > 1e-9 && math.Abs(p-1) > 1e-9 {
		t.Fatalf("phase after 3 cycles = %v, want 0", p)
	}
}

func TestNonPositiveFrequencyIsConstant(t *testing.T) {
	for _, hz := range []float64{0, -100, math.NaN(), math.Inf(1)} {
		for _, kind := range allKinds {
			o, err := New(48000, WithKind(kind), WithSharpness(0.4))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			o.SetPhase(0.3)

			first := o.Advance(hz)
			for i := range 256 {
				if y := o.Advance(hz); y != first {
					t.Fatalf("%s at %v Hz: sample %d = %v, want constant %v", kind, hz, i, y, first)
				}
			}
			if o.Phase() != 0.3 {
				t.Fatalf("%s at %v Hz: phase moved to %v", kind, hz, o.Phase())
			}
		}
	}
}

func TestSetterClamping(t *testing.T) {
	o, err := New(48000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	o.SetSharpness(2)
	if o.Sharpness() != 1 {
		t.Fatalf("Sharpness() = %v, want 1", o.Sharpness())
	}

	o.SetSharpness(math.NaN())
	if o.Sharpness() != 0 {
		t.Fatalf("Sharpness() = %v, want 0", o.Sharpness())
	}

	o.SetKind(Kind(42))
	if o.Kind() != KindModulatedSine {
		t.Fatalf("Kind() = %v, want modulated_sine", o.Kind())
	}

	o.SetFrequency(-5)
	if o.Frequency() != 0 {
		t.Fatalf("Frequency() = %v, want 0", o.Frequency())
	}
}

func TestSawDirections(t *testing.T) {
	up, err := New(48000, WithKind(KindSawUp), WithSharpness(0), WithFrequency(100))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	down, err := New(48000, WithKind(KindSawDown), WithSharpness(0), WithFrequency(100))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rising := 0
	for range 480 {
		a := up.Next()
		b := down.Next()
		if math.Abs(a+b) > 1e-12 {
			t.Fatalf("saw down is not the mirror of saw up: %v vs %v", a, b)
		}
		if a > 0 {
			rising++
		}
	}
	if rising == 0 {
		t.Fatal("saw up never positive")
	}
}

func TestSquareIsSymmetric(t *testing.T) {
	o, err := New(48000, WithKind(KindSquare), WithFrequency(100))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sum := 0.0
	for range 480 {
		sum += o.Next()
	}
	if math.Abs(sum/480) > 1e-3 {
		t.Fatalf("square mean = %v, want ~0", sum/480)
	}
}

func TestPulseIsUnipolar(t *testing.T) {
	o, err := New(48000, WithKind(KindPulse), WithSharpness(0.5), WithFrequency(220))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := range 2048 {
		if y := o.Next(); y < 0 {
			t.Fatalf("pulse sample %d = %v, want >= 0", i, y)
		}
	}
}

func TestSampleAndHoldHoldsPerCycle(t *testing.T) {
	// 125 Hz at 1 kHz: eight samples per cycle, exact in binary.
	o, err := New(1000, WithKind(KindSampleAndHold), WithSharpness(1), WithFrequency(125))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	out := make([]float64, 60)
	o.ProcessTo(out)

	changes := 0
	for i := 1; i < len(out); i++ {
		if out[i] != out[i-1] {
			changes++
			if i%8 != 0 {
				t.Fatalf("value changed mid-cycle at sample %d", i)
			}
		}
	}
	if changes < 3 {
		t.Fatalf("expected a new random value per cycle, got %d changes", changes)
	}
}

func TestSampleAndHoldGlideIsContinuous(t *testing.T) {
	o, err := New(48000, WithKind(KindSampleAndHold), WithSharpness(0), WithFrequency(50))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	prev := o.Next()
	for i := range 9600 {
		y := o.Next()
		// Full-cycle raised-cosine glide over 960 samples bounds the step.
		if d := math.Abs(y - prev); d > 2*math.Pi/960 {
			t.Fatalf("glide jump %v at sample %d", d, i)
		}
		prev = y
	}
}

func TestModulatedSineSharpnessAddsHarmonics(t *testing.T) {
	pure, err := New(48000, WithKind(KindModulatedSine), WithSharpness(0), WithFrequency(1000))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	bright, err := New(48000, WithKind(KindModulatedSine), WithSharpness(1), WithFrequency(1000))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// With index 0 the output is a plain sine.
	for i := range 48 {
		want := math.Sin(2 * math.Pi * float64(i) / 48)
		if got := pure.Next(); math.Abs(got-want) > 1e-9 {
			t.Fatalf("sample %d = %v, want %v", i, got, want)
		}
	}

	if diff := roughness(bright, 480); diff <= roughness(pure, 480) {
		t.Fatal("expected higher sharpness to add high-frequency content")
	}
}

// roughness sums absolute second differences, a cheap brightness proxy.
func roughness(o *Oscillator, n int) float64 {
	a, b := o.Next(), o.Next()
	sum := 0.0
	for range n {
		c := o.Next()
		sum += math.Abs(c - 2*b + a)
		a, b = b, c
	}
	return sum
}

func TestSharpnessIncreasesBrightness(t *testing.T) {
	for _, kind := range []Kind{KindSawUp, KindSquare, KindPulse} {
		soft, err := New(48000, WithKind(kind), WithSharpness(0), WithFrequency(110))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		hard, err := New(48000, WithKind(kind), WithSharpness(1), WithFrequency(110))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		if roughness(hard, 4800) <= roughness(soft, 4800) {
			t.Fatalf("%s: sharpness 1 not brighter than sharpness 0", kind)
		}
	}
}

func TestSharpnessSaturatesWithPitch(t *testing.T) {
	tests := []struct {
		kind     Kind
		low, top float64
	}{
		{KindSawUp, 110, 2000},
		{KindSquare, 110, 2000},
		{KindPulse, 110, 2000},
		{KindTriangle, 110, 440},
	}

	render := func(kind Kind, sharpness, freq float64) []float64 {
		o, err := New(48000, WithKind(kind), WithSharpness(sharpness), WithFrequency(freq))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		out := make([]float64, 960)
		o.ProcessTo(out)

		return out
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			half, full := render(tt.kind, 0.5, tt.top), render(tt.kind, 1, tt.top)
			for i := range half {
				if half[i] != full[i] {
					t.Fatalf("%v Hz frame %d: sharpness 0.5 = %v, 1 = %v, want equal above the cap", tt.top, i, half[i], full[i])
				}
			}

			half, full = render(tt.kind, 0.5, tt.low), render(tt.kind, 1, tt.low)
			differ := false
			for i := range half {
				if half[i] != full[i] {
					differ = true

					break
				}
			}
			if !differ {
				t.Fatalf("%v Hz: sharpness 0.5 and 1 render the same, want different below the cap", tt.low)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if KindBipolarPulse.String() != "bipolar_pulse" || Kind(-1).String() != "unknown" {
		t.Fatal("unexpected kind names")
	}
	if NumKinds != 8 {
		t.Fatalf("NumKinds = %d, want 8", NumKinds)
	}
}
