package buffer

// Stereo holds one block of planar left/right samples.
type Stereo struct {
	left  []float64
	right []float64
}

// NewStereo returns a zero-filled Stereo buffer with the given frame count.
func NewStereo(frames int) *Stereo {
	if frames < 0 {
		frames = 0
	}

	return &Stereo{
		left:  make([]float64, frames),
		right: make([]float64, frames),
	}
}

// Left returns the left channel.
func (s *Stereo) Left() []float64 { return s.left }

// Right returns the right channel.
func (s *Stereo) Right() []float64 { return s.right }

// Len returns the current number of frames.
func (s *Stereo) Len() int { return len(s.left) }

// Cap returns how many frames fit without reallocating.
func (s *Stereo) Cap() int { return cap(s.left) }

// Resize sets the frame count to n, reusing capacity when possible.
// Frames beyond the previous length are zeroed.
func (s *Stereo) Resize(n int) {
	s.left = ensureLen(s.left, n)
	s.right = ensureLen(s.right, n)
}

// Zero clears both channels.
func (s *Stereo) Zero() {
	clear(s.left)
	clear(s.right)
}

// ZeroRange clears frames in [start, end). Indices are clamped.
func (s *Stereo) ZeroRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(s.left) {
		end = len(s.left)
	}
	if start >= end {
		return
	}
	clear(s.left[start:end])
	clear(s.right[start:end])
}

// Interleave writes [L R L R ...] float32 frames into dst for sinks that
// expect interleaved output. It returns the number of frames written.
func (s *Stereo) Interleave(dst []float32) int {
	n := len(dst) / 2
	if n > len(s.left) {
		n = len(s.left)
	}
	for i := 0; i < n; i++ {
		dst[2*i] = float32(s.left[i])
		dst[2*i+1] = float32(s.right[i])
	}

	return n
}

func ensureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	old := len(buf)
	if n <= cap(buf) {
		buf = buf[:n]
	} else {
		grown := make([]float64, n)
		copy(grown, buf)
		buf = grown
	}
	// Stale data may sit in the backing array from earlier, longer blocks.
	if n > old {
		clear(buf[old:n])
	}

	return buf
}
