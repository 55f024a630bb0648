// Command synthinfo renders a chord offline through the synth engine and
// prints level and brightness per time slice.
//
// Usage:
//
//	synthinfo [flags]
//
// Examples:
//
//	synthinfo -list
//	synthinfo -notes 48,55,60 -hold 1 -tail 0.8
//	synthinfo -set type1=2 -set sharp1=0.3 -set res=0.9 -set cutoffFact=0.2
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/spectrum"
	"github.com/cwbudde/algo-synth/synth"
	"github.com/cwbudde/algo-vecmath"
)

// assignments collects repeated -set name=value flags.
type assignments []string

func (a *assignments) String() string { return strings.Join(*a, ",") }

func (a *assignments) Set(v string) error {
	*a = append(*a, v)

	return nil
}

type options struct {
	list     bool
	notes    []float64
	velocity float64
	hold     float64
	tail     float64
	slice    float64
	rate     float64
	block    int
	voices   int
	fftSize  int
	sets     assignments
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.list {
		return printParams(stdout)
	}

	return renderReport(stdout, opts)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("synthinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.list, "list", false, "print the control surface and exit")
	notes := fs.String("notes", "60,64,67", "comma-separated MIDI notes played together")
	fs.Float64Var(&opts.velocity, "velocity", 1, "note velocity in [0, 1]")
	fs.Float64Var(&opts.hold, "hold", 0.6, "seconds before note-off")
	fs.Float64Var(&opts.tail, "tail", 0.6, "seconds rendered after note-off")
	fs.Float64Var(&opts.slice, "slice", 0.1, "report interval in seconds")
	fs.Float64Var(&opts.rate, "rate", 48000, "sample rate in Hz")
	fs.IntVar(&opts.block, "block", 256, "render block size in frames")
	fs.IntVar(&opts.voices, "voices", 8, "polyphony")
	fs.IntVar(&opts.fftSize, "fft", 4096, "analysis FFT size (power of two)")
	fs.Var(&opts.sets, "set", "parameter assignment name=value (repeatable)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: synthinfo [flags]\n\n")
		fmt.Fprintf(stderr, "Renders notes offline and prints peak, RMS and spectral centroid per slice.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  synthinfo -list\n")
		fmt.Fprintf(stderr, "  synthinfo -notes 48,55,60 -hold 1 -tail 0.8\n")
		fmt.Fprintf(stderr, "  synthinfo -set type1=2 -set res=0.9 -set cutoffFact=0.2\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	parsed, err := parseNotes(*notes)
	if err != nil {
		return opts, err
	}
	opts.notes = parsed

	if opts.hold < 0 || opts.tail < 0 || !(opts.slice > 0) {
		return opts, fmt.Errorf("hold and tail must be >= 0 and slice > 0")
	}

	return opts, nil
}

func parseNotes(s string) ([]float64, error) {
	var notes []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.ParseFloat(field, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("invalid note %q", field)
		}
		notes = append(notes, n)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes given")
	}

	return notes, nil
}

func parseAssignment(s string) (string, float64, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("invalid assignment %q, want name=value", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid value in %q: %w", s, err)
	}

	return strings.TrimSpace(name), v, nil
}

func printParams(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\tType\tMin\tMax\tDefault\tScale\tUnit\n")
	fmt.Fprintf(tw, "----\t----\t---\t---\t-------\t-----\t----\n")
	for _, p := range synth.Params() {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%s\t%s\n", p.Name, p.Type, p.Min, p.Max, p.Default, p.Scale, p.Unit)
	}

	return tw.Flush()
}

func renderReport(w io.Writer, opts options) error {
	engineOpts := []synth.Option{
		synth.WithProcessorOptions(core.WithSampleRate(opts.rate), core.WithBlockSize(opts.block)),
		synth.WithPolyphony(opts.voices),
		synth.WithQueueCapacity(2 * len(opts.notes)),
	}
	for _, s := range opts.sets {
		name, value, err := parseAssignment(s)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, synth.WithParam(name, value))
	}

	e, err := synth.New(engineOpts...)
	if err != nil {
		return err
	}
	defer e.Close()

	analyzer, err := spectrum.NewAnalyzer(opts.fftSize, opts.rate)
	if err != nil {
		return err
	}

	sliceFrames := max(1, int(math.Round(opts.slice*opts.rate)))
	holdFrames := int(math.Round(opts.hold * opts.rate))
	totalFrames := holdFrames + int(math.Round(opts.tail*opts.rate))

	for _, n := range opts.notes {
		if err := e.NoteOn(n, opts.velocity); err != nil {
			return err
		}
	}

	left := make([]float64, sliceFrames)
	right := make([]float64, sliceFrames)
	mono := make([]float64, sliceFrames)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Time [s]\tVoices\tPeak L\tPeak R\tRMS [dBFS]\tCentroid [Hz]\tPeak Bin [Hz]\n")
	fmt.Fprintf(tw, "--------\t------\t------\t------\t----------\t-------------\t-------------\n")

	released := holdFrames == 0
	if released {
		for _, n := range opts.notes {
			if err := e.NoteOff(n); err != nil {
				return err
			}
		}
	}

	for pos := 0; pos < totalFrames; pos += sliceFrames {
		n := min(sliceFrames, totalFrames-pos)
		l, r := left[:n], right[:n]

		if !released && pos+n > holdFrames {
			for _, note := range opts.notes {
				if err := e.NoteOffAt(holdFrames-pos, note); err != nil {
					return err
				}
			}
			released = true
		}

		e.Process(l, r)

		m := mono[:n]
		vecmath.AddBlock(m, l, r)
		vecmath.ScaleBlockInPlace(m, 0.5)

		mag, err := analyzer.Analyze(m)
		if err != nil {
			return err
		}
		bin, _ := spectrum.PeakBin(mag)

		fmt.Fprintf(tw, "%.3f\t%d\t%.4f\t%.4f\t%.1f\t%.0f\t%.0f\n",
			float64(pos)/opts.rate,
			e.ActiveVoices(),
			vecmath.MaxAbs(l),
			vecmath.MaxAbs(r),
			rmsDB(m),
			analyzer.Centroid(mag),
			analyzer.BinFrequency(bin),
		)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	st := e.Stats()
	fmt.Fprintf(w, "\nsteals=%d filter_recoveries=%d dropped_events=%d\n",
		st.Steals, st.FilterRecoveries, st.DroppedEvents)

	return nil
}

func rmsDB(x []float64) float64 {
	if len(x) == 0 {
		return math.Inf(-1)
	}
	ms := vecmath.DotProduct(x, x) / float64(len(x))
	if ms <= 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(ms)
}
