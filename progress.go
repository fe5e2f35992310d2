package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/2767mr/duccipaths/internal/enumerate"
)

// progressReporter draws a progress bar when out is a terminal and logs
// otherwise.
type progressReporter struct {
	out     io.Writer
	tty     bool
	bar     progress.Model
	printer *message.Printer
	logger  *zap.Logger
}

func newProgressReporter(out *os.File, logger *zap.Logger) *progressReporter {
	return &progressReporter{
		out:     out,
		tty:     isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		printer: message.NewPrinter(message.MatchLanguage("en")),
		logger:  logger,
	}
}

func (p *progressReporter) Report(pr enumerate.Progress) {
	if !p.tty {
		p.logger.Info("Progress",
			zap.Int("done", pr.Done),
			zap.Int("total", pr.Total),
			zap.Duration("elapsed", pr.Elapsed))
		return
	}

	line := p.printer.Sprintf("%d/%d %v", pr.Done, pr.Total, pr.Elapsed.Round(1e6))
	fmt.Fprintf(p.out, "\r%s %s", p.bar.ViewAs(pr.Fraction()), line)
	if pr.Done == pr.Total {
		fmt.Fprintln(p.out)
	}
}
