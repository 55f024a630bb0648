// Package buffer provides planar stereo block buffers for realtime render
// callbacks. A Stereo buffer is sized once for the largest expected block and
// then resized in place, so steady-state rendering never allocates.
package buffer
