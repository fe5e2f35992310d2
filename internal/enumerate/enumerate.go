// Package enumerate drives the search over every starting quadruple of a
// range and writes one result line per quadruple.
package enumerate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/2767mr/duccipaths/internal/ducci"
)

var (
	// ErrEmptyRange is returned by Run when Min >= Max.
	ErrEmptyRange = errors.New("empty starting range")

	// ErrRangeOverflow is returned by Run when a starting component of the
	// range does not fit in a ducci.Quadruple component.
	ErrRangeOverflow = errors.New("starting range overflows int8")
)

// Sink receives one result per starting quadruple, in enumeration order.
type Sink interface {
	Write(start ducci.Quadruple, results []ducci.PathResult) error
}

// Progress is passed to Options.Progress.
type Progress struct {
	Done    int
	Total   int
	Elapsed time.Duration
}

func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Done) / float64(p.Total)
}

type Options struct {
	// Every component of a starting quadruple ranges over [Min, Max).
	Min, Max int

	Explorer ducci.Explorer
	Sink     Sink

	Logger  *zap.Logger
	Metrics *Metrics

	// Progress is called after every ProgressEvery starting quadruples and
	// once at the end. Zero ProgressEvery only reports the end.
	ProgressEvery int
	Progress      func(Progress)
}

// Summary describes a finished or aborted run.
type Summary struct {
	States   int
	Leaves   int
	Nodes    int
	MaxDepth int
	ByKind   map[ducci.Convergence]int
	Elapsed  time.Duration
}

// Total returns the number of starting quadruples in [lo, hi).
func Total(lo, hi int) int {
	n := hi - lo
	if n <= 0 {
		return 0
	}
	return n * n * n * n
}

// Run searches every quadruple (a,b,c,d) of the range, a outermost, and hands
// each result to opts.Sink. It stops at the first search or sink error and
// when ctx is done; the Summary covers what was written until then.
func Run(ctx context.Context, opts Options) (Summary, error) {
	summary := Summary{ByKind: make(map[ducci.Convergence]int)}
	if opts.Min >= opts.Max {
		return summary, fmt.Errorf("%w: [%d,%d)", ErrEmptyRange, opts.Min, opts.Max)
	}
	if opts.Min < math.MinInt8 || opts.Max > math.MaxInt8+1 {
		return summary, fmt.Errorf("%w: [%d,%d)", ErrRangeOverflow, opts.Min, opts.Max)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	total := Total(opts.Min, opts.Max)
	started := time.Now()
	reported := -1
	report := func() {
		reported = summary.States
		summary.Elapsed = time.Since(started)
		if opts.Progress != nil {
			opts.Progress(Progress{Done: summary.States, Total: total, Elapsed: summary.Elapsed})
		}
	}

	logger.Info("Enumeration started",
		zap.Int("min", opts.Min),
		zap.Int("max", opts.Max),
		zap.Int("total", total),
		zap.Int("max_depth", opts.Explorer.MaxDepth),
		zap.Int("max_nodes", opts.Explorer.MaxNodes))

	for a := opts.Min; a < opts.Max; a++ {
		for b := opts.Min; b < opts.Max; b++ {
			for c := opts.Min; c < opts.Max; c++ {
				for d := opts.Min; d < opts.Max; d++ {
					if err := ctx.Err(); err != nil {
						opts.Metrics.failed(err)
						report()
						return summary, fmt.Errorf("enumeration interrupted after %d states: %w", summary.States, err)
					}

					start := ducci.Quadruple{int8(a), int8(b), int8(c), int8(d)}
					if err := searchOne(ctx, opts, start, &summary); err != nil {
						opts.Metrics.failed(err)
						logger.Error("Search aborted", zap.Stringer("start", start), zap.Error(err))
						report()
						return summary, err
					}

					if opts.ProgressEvery > 0 && summary.States%opts.ProgressEvery == 0 {
						report()
					}
				}
			}
		}
	}

	if reported != summary.States {
		report()
	} else {
		summary.Elapsed = time.Since(started)
	}
	logger.Info("Enumeration finished",
		zap.Int("states", summary.States),
		zap.Int("leaves", summary.Leaves),
		zap.Int("nodes", summary.Nodes),
		zap.Int("max_depth", summary.MaxDepth),
		zap.Duration("elapsed", summary.Elapsed))

	return summary, nil
}

func searchOne(ctx context.Context, opts Options, start ducci.Quadruple, summary *Summary) error {
	results, stats, err := opts.Explorer.ExploreWithStats(ctx, start)
	if err != nil {
		return err
	}

	if opts.Sink != nil {
		if err := opts.Sink.Write(start, results); err != nil {
			return fmt.Errorf("writing %v: %w", start, err)
		}
	}

	opts.Metrics.observe(results, stats)

	summary.States++
	summary.Leaves += len(results)
	summary.Nodes += stats.Nodes
	summary.MaxDepth = max(summary.MaxDepth, stats.MaxDepth)
	for _, r := range results {
		summary.ByKind[r.Terminal.Classify()]++
	}
	return nil
}

// Print writes a human readable report of s with grouped digits.
func (s Summary) Print(w io.Writer) {
	p := message.NewPrinter(message.MatchLanguage("en"))

	p.Fprintf(w, "States:    %d\n", s.States)
	p.Fprintf(w, "Leaves:    %d (zero %d, checker %d, ladder %d)\n",
		s.Leaves, s.ByKind[ducci.ConvergenceZero], s.ByKind[ducci.ConvergenceChecker], s.ByKind[ducci.ConvergenceLadder])
	p.Fprintf(w, "Nodes:     %d\n", s.Nodes)
	p.Fprintf(w, "Max depth: %d\n", s.MaxDepth)
	p.Fprintf(w, "Elapsed:   %v\n", s.Elapsed)
}
