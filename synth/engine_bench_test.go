package synth

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/core"
)

func BenchmarkEngineProcess(b *testing.B) {
	for _, voices := range []int{1, 8, 32} {
		b.Run(fmt.Sprintf("voices=%d", voices), func(b *testing.B) {
			e, err := New(
				WithProcessorOptions(core.WithSampleRate(48000), core.WithBlockSize(256)),
				WithPolyphony(voices),
				WithParam("sustain", 1),
			)
			if err != nil {
				b.Fatalf("New() error = %v", err)
			}
			for i := range voices {
				_ = e.NoteOn(float64(36+i), 1)
			}

			left := make([]float64, 256)
			right := make([]float64, 256)

			b.ReportAllocs()
			b.SetBytes(int64(len(left) * 16))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				e.Process(left, right)
			}
		})
	}
}
