// Package bench times encode implementations against the first one
// measured.
package bench

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"gonum.org/v1/gonum/stat"

	"github.com/mnightingale/rapidbase64/internal/logger"
)

// Func encodes src into dst.
type Func func(dst, src []byte)

type Result struct {
	Name     string
	Bytes    int
	Samples  int
	Min      time.Duration
	Mean     time.Duration
	StdDev   time.Duration
	Baseline bool
	// Speedup is the baseline's minimum over this result's minimum. It is
	// zero for the baseline and for results that took no measurable time.
	Speedup float64
}

// Throughput is the input processed per second at the minimum duration,
// in MiB.
func (r Result) Throughput() float64 {
	if r.Min <= 0 {
		return 0
	}
	return float64(r.Bytes) / r.Min.Seconds() / (1 << 20)
}

type Runner struct {
	iterations int
	clock      clockwork.Clock
	log        *slog.Logger
	out        io.Writer

	baseline time.Duration
	results  []Result
}

type Option func(r *Runner)

// WithClock replaces the wall clock.
func WithClock(c clockwork.Clock) Option {
	return func(r *Runner) {
		r.clock = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// NewRunner returns a Runner that calls each implementation iterations
// times and prints one line per implementation to out.
func NewRunner(iterations int, out io.Writer, opts ...Option) *Runner {
	r := &Runner{
		iterations: max(iterations, 1),
		clock:      clockwork.NewRealClock(),
		log:        logger.Void(),
		out:        out,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Measure runs fn and reports the fastest of its runs. The first call on
// a Runner becomes the baseline for every later speedup.
func (r *Runner) Measure(name string, fn Func, src, dst []byte) Result {
	fmt.Fprintf(r.out, "%-40s... ", name)

	samples := make([]float64, 0, r.iterations)
	best := time.Duration(-1)
	for range r.iterations {
		t1 := r.clock.Now()
		fn(dst, src)
		t2 := r.clock.Now()

		d := t2.Sub(t1)
		samples = append(samples, float64(d))
		if best < 0 || d < best {
			best = d
		}
	}

	res := Result{
		Name:    name,
		Bytes:   len(src),
		Samples: len(samples),
		Min:     best,
	}
	mean, std := stat.MeanStdDev(samples, nil)
	res.Mean = time.Duration(mean)
	if len(samples) > 1 {
		res.StdDev = time.Duration(std)
	}

	fmt.Fprintf(r.out, "%0.5f", best.Seconds())

	if len(r.results) == 0 {
		res.Baseline = true
		r.baseline = best
	} else {
		if best > 0 {
			res.Speedup = float64(r.baseline) / float64(best)
		}
		fmt.Fprintf(r.out, " (speedup %0.2f)", res.Speedup)
	}

	fmt.Fprintln(r.out)

	r.log.Debug("measured",
		"name", name,
		"min", res.Min,
		"mean", res.Mean,
		"stddev", res.StdDev,
		"mib_per_sec", res.Throughput(),
	)

	r.results = append(r.results, res)
	return res
}

// Results returns every measurement in the order it was taken.
func (r *Runner) Results() []Result {
	return append([]Result(nil), r.results...)
}

var ErrMismatch = errors.New("output differs from baseline")

// Verify reports where got first differs from want.
func Verify(name string, want, got []byte) error {
	if bytes.Equal(want, got) {
		return nil
	}

	n := min(len(want), len(got))
	for i := range n {
		if want[i] != got[i] {
			return fmt.Errorf("%s: %w at offset %d: want %q, got %q", name, ErrMismatch, i, want[i], got[i])
		}
	}
	return fmt.Errorf("%s: %w: want %d bytes, got %d", name, ErrMismatch, len(want), len(got))
}
