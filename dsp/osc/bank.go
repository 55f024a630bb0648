package osc

import "fmt"

// BankSize is the number of oscillators in a Bank.
const BankSize = 3

// Bank sums BankSize independently shaped oscillators that share one pitch.
// The sum is not clamped; it spans [-BankSize, BankSize].
type Bank struct {
	slots [BankSize]*Oscillator
}

// NewBank builds a bank whose slots all start from opts. Each slot gets its
// own random seed so sample-and-hold slots do not move in lockstep.
func NewBank(sampleRate float64, opts ...Option) (*Bank, error) {
	b := &Bank{}
	for i := range b.slots {
		slotOpts := append([]Option{WithSeed(defaultSeed + uint32(i)*0x85ebca6b)}, opts...)
		o, err := New(sampleRate, slotOpts...)
		if err != nil {
			return nil, fmt.Errorf("osc: bank slot %d: %w", i, err)
		}
		b.slots[i] = o
	}

	return b, nil
}

// Slot returns the oscillator at index i, or nil when out of range.
func (b *Bank) Slot(i int) *Oscillator {
	if i < 0 || i >= BankSize {
		return nil
	}

	return b.slots[i]
}

// SetKind sets the waveform of slot i. Out-of-range slots are ignored.
func (b *Bank) SetKind(i int, kind Kind) {
	if o := b.Slot(i); o != nil {
		o.SetKind(kind)
	}
}

// SetSharpness sets the sharpness of slot i. Out-of-range slots are ignored.
func (b *Bank) SetSharpness(i int, sharpness float64) {
	if o := b.Slot(i); o != nil {
		o.SetSharpness(sharpness)
	}
}

// SetFrequency sets the shared pitch of all slots.
func (b *Bank) SetFrequency(hz float64) {
	for _, o := range b.slots {
		o.SetFrequency(hz)
	}
}

// Reset rewinds every slot.
func (b *Bank) Reset() {
	for _, o := range b.slots {
		o.Reset()
	}
}

// Advance sets the shared frequency and returns the summed next sample.
func (b *Bank) Advance(hz float64) float64 {
	b.SetFrequency(hz)

	return b.Next()
}

// Next returns the summed next sample at the current frequency.
func (b *Bank) Next() float64 {
	sum := 0.0
	for _, o := range b.slots {
		sum += o.Next()
	}

	return sum
}

// ProcessTo fills dst with summed samples.
func (b *Bank) ProcessTo(dst []float64) {
	for i := range dst {
		dst[i] = b.Next()
	}
}
