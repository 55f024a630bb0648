package buffer

import "testing"

func TestNewStereoZeroFilled(t *testing.T) {
	s := NewStereo(8)
	if s.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", s.Len())
	}
	for i := range s.Left() {
		if s.Left()[i] != 0 || s.Right()[i] != 0 {
			t.Fatalf("frame %d not zero", i)
		}
	}
}

func TestNewStereoNegativeLength(t *testing.T) {
	if s := NewStereo(-3); s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestResizeReusesCapacity(t *testing.T) {
	s := NewStereo(16)
	left := s.Left()
	left[10] = 7

	s.Resize(4)
	if s.Len() != 4 || s.Cap() != 16 {
		t.Fatalf("Len()=%d Cap()=%d, want 4 and 16", s.Len(), s.Cap())
	}

	s.Resize(12)
	if &s.Left()[0] != &left[0] {
		t.Fatal("Resize within capacity reallocated")
	}
	if s.Left()[10] != 0 {
		t.Fatalf("stale sample survived resize: %v", s.Left()[10])
	}
}

func TestResizeGrowPreservesData(t *testing.T) {
	s := NewStereo(2)
	s.Left()[1] = 3
	s.Right()[1] = 4

	s.Resize(32)
	if s.Len() != 32 {
		t.Fatalf("Len() = %d, want 32", s.Len())
	}
	if s.Left()[1] != 3 || s.Right()[1] != 4 {
		t.Fatal("Resize lost existing frames")
	}
}

func TestZeroRangeClamps(t *testing.T) {
	s := NewStereo(4)
	for i := range 4 {
		s.Left()[i] = 1
		s.Right()[i] = 1
	}

	s.ZeroRange(-5, 2)
	s.ZeroRange(3, 100)

	want := []float64{0, 0, 1, 0}
	for i, w := range want {
		if s.Left()[i] != w || s.Right()[i] != w {
			t.Fatalf("frame %d = (%v,%v), want %v", i, s.Left()[i], s.Right()[i], w)
		}
	}
}

func TestInterleave(t *testing.T) {
	s := NewStereo(3)
	copy(s.Left(), []float64{1, 2, 3})
	copy(s.Right(), []float64{-1, -2, -3})

	dst := make([]float32, 4)
	if n := s.Interleave(dst); n != 2 {
		t.Fatalf("Interleave() = %d, want 2", n)
	}
	want := []float32{1, -1, 2, -2}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}
