package enumerate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"go.uber.org/zap"

	"github.com/2767mr/duccipaths/internal/ducci"
	"github.com/2767mr/duccipaths/internal/pathfile"
)

var (
	// ErrNonTerminal is returned when a results file records a leaf that is
	// not a terminal state.
	ErrNonTerminal = errors.New("recorded leaf is not terminal")

	// ErrMismatch is returned when a recomputed search differs from the file.
	ErrMismatch = errors.New("recorded paths differ from search")

	// ErrNoPaths is returned for a line without any leaf.
	ErrNoPaths = errors.New("line records no paths")
)

type VerifyOptions struct {
	// Recompute re-runs Explorer for every line and compares.
	Recompute bool
	Explorer  ducci.Explorer
	Logger    *zap.Logger
}

type VerifyReport struct {
	Lines      int
	Leaves     int
	Recomputed int
}

// Verify reads a results file from r and checks every line. The first
// problem found is returned wrapped with its line number.
func Verify(ctx context.Context, r io.Reader, opts VerifyOptions) (VerifyReport, error) {
	var report VerifyReport

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reader := pathfile.NewReader(r)
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("verify interrupted at line %d: %w", reader.LineNumber(), err)
		}

		line := reader.Line()
		if err := checkLine(line); err != nil {
			return report, fmt.Errorf("line %d: %w", reader.LineNumber(), err)
		}

		if opts.Recompute {
			want, err := opts.Explorer.Explore(ctx, line.Start)
			if err != nil {
				return report, fmt.Errorf("line %d: %w", reader.LineNumber(), err)
			}
			if !slices.Equal(want, line.Results) {
				logger.Debug("Recomputed paths differ",
					zap.Int("line", reader.LineNumber()),
					zap.String("recorded", pathfile.FormatLine(line.Start, line.Results)),
					zap.String("computed", pathfile.FormatLine(line.Start, want)))
				return report, fmt.Errorf("line %d: %w for %v", reader.LineNumber(), ErrMismatch, line.Start)
			}
			report.Recomputed++
		}

		report.Lines++
		report.Leaves += len(line.Results)
	}
	if err := reader.Err(); err != nil {
		return report, err
	}

	logger.Info("Verified results",
		zap.Int("lines", report.Lines),
		zap.Int("leaves", report.Leaves),
		zap.Bool("recomputed", opts.Recompute))
	return report, nil
}

func checkLine(line pathfile.Line) error {
	if len(line.Results) == 0 {
		return fmt.Errorf("%w: %v", ErrNoPaths, line.Start)
	}
	for _, r := range line.Results {
		if !r.Terminal.IsTerminal() {
			return fmt.Errorf("%w: %v from %v", ErrNonTerminal, r.Terminal, line.Start)
		}
	}
	return nil
}
