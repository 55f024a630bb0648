package envelope_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/envelope"
)

func ExampleADSR() {
	env, err := envelope.New(1000,
		envelope.WithAttack(0.004),
		envelope.WithDecay(0.004),
		envelope.WithSustain(0.5),
		envelope.WithRelease(0.002),
	)
	if err != nil {
		panic(err)
	}

	env.NoteOn(1)
	out := make([]float64, 10)
	env.Process(out)
	fmt.Println(out, env.Stage())

	env.NoteOff()
	env.Process(out[:2])
	fmt.Println(out[:2], env.Stage())

	// Output:
	// [0.25 0.5 0.75 1 0.875 0.75 0.625 0.5 0.5 0.5] sustain
	// [0.25 0] idle
}
