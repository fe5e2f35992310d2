package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/2767mr/duccipaths/internal/config"
	"github.com/2767mr/duccipaths/internal/ducci"
	"github.com/2767mr/duccipaths/internal/enumerate"
	"github.com/2767mr/duccipaths/internal/pathfile"
)

// cli holds the state shared by the commands of one invocation.
type cli struct {
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
}

// newRootCmd builds the command tree. A nil logger is built from the config
// before the first command runs.
func newRootCmd(logger *zap.Logger) *cobra.Command {
	c := &cli{logger: logger}

	rootCmd := &cobra.Command{
		Use:   "duccipaths",
		Short: "Enumerate terminal paths of the swap-branching Ducci map",
		Long: `duccipaths steps every starting quadruple (a,b,c,d) with the Ducci map
(|a-b|, |b-c|, |c-d|, |d-a|). A state that is not zero, checker (0,a,0,a)
or ladder (0,a,2a,a), in any rotation, branches into two swaps and both
branches are searched. Each starting quadruple yields one line:

  (a,b,c,d):[(t0,t1,t2,t3):depth,...]`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "YAML config file (default: built-in defaults)")

	rootCmd.AddCommand(c.enumerateCmd())
	rootCmd.AddCommand(c.pathsCmd())
	rootCmd.AddCommand(c.verifyCmd())

	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.logger != nil {
		return nil
	}

	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}
	if c.verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = logger.With(zap.String("run_id", uuid.NewString()))
	return nil
}

func (c *cli) enumerateCmd() *cobra.Command {
	var (
		lo, hi        int
		out           string
		metricsFile   string
		maxDepth      int
		maxNodes      int
		progressEvery int
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "Search every starting quadruple of a range and write the results file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("min") {
				c.cfg.Range.Min = lo
			}
			if flags.Changed("max") {
				c.cfg.Range.Max = hi
			}
			if flags.Changed("out") {
				c.cfg.Output.Path = out
			}
			if flags.Changed("metrics-file") {
				c.cfg.Output.MetricsFile = metricsFile
			}
			if flags.Changed("max-depth") {
				c.cfg.Search.MaxDepth = maxDepth
			}
			if flags.Changed("max-nodes") {
				c.cfg.Search.MaxNodes = maxNodes
			}
			if flags.Changed("progress-every") {
				c.cfg.Output.ProgressEvery = progressEvery
			}
			return c.runEnumerate(cmd, force)
		},
	}

	cmd.Flags().IntVar(&lo, "min", 0, "Smallest starting component")
	cmd.Flags().IntVar(&hi, "max", 40, "Starting components are below this value")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Results file (default results/ducci_paths.txt)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format")
	cmd.Flags().IntVar(&maxDepth, "max-depth", ducci.DefaultMaxDepth, "Abort a search deeper than this many swaps (0: unlimited)")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", ducci.DefaultMaxNodes, "Abort a search stepping more states (0: unlimited)")
	cmd.Flags().IntVar(&progressEvery, "progress-every", 10_000, "Report progress every N starting quadruples")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing results file")

	return cmd
}

func (c *cli) runEnumerate(cmd *cobra.Command, force bool) error {
	cfg := c.cfg
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Output.Path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	file, err := os.OpenFile(cfg.Output.Path, flag, 0644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s already exists, use --force to overwrite: %w", cfg.Output.Path, err)
	}
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	writer := pathfile.NewWriter(file)
	progress := newProgressReporter(os.Stderr, c.logger)

	summary, runErr := enumerate.Run(ctx, enumerate.Options{
		Min:           cfg.Range.Min,
		Max:           cfg.Range.Max,
		Explorer:      cfg.Explorer(),
		Sink:          writer,
		Logger:        c.logger,
		Metrics:       enumerate.NewMetrics(reg),
		ProgressEvery: cfg.Output.ProgressEvery,
		Progress:      progress.Report,
	})

	err = errors.Join(runErr, writer.Flush(), file.Close())
	if cfg.Output.MetricsFile != "" {
		err = errors.Join(err, enumerate.WriteTextfile(cfg.Output.MetricsFile, reg))
	}

	c.logger.Info("Results written",
		zap.String("path", cfg.Output.Path),
		zap.Int("lines", writer.Lines()))
	summary.Print(cmd.OutOrStdout())
	return err
}

func (c *cli) pathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths (a,b,c,d) | paths a b c d",
		Short: "Search one starting quadruple and print its results line",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 4 {
				return fmt.Errorf("expected (a,b,c,d) or four integers, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseStart(args)
			if err != nil {
				return err
			}

			results, stats, err := c.cfg.Explorer().ExploreWithStats(cmd.Context(), start)
			if err != nil {
				return err
			}
			c.logger.Debug("Search finished",
				zap.Stringer("start", start),
				zap.Int("leaves", len(results)),
				zap.Int("nodes", stats.Nodes),
				zap.Int("max_depth", stats.MaxDepth))

			fmt.Fprintln(cmd.OutOrStdout(), pathfile.FormatLine(start, results))
			return nil
		},
	}
}

func parseStart(args []string) (ducci.Quadruple, error) {
	if len(args) == 1 {
		return pathfile.ParseQuadruple(args[0])
	}

	var q ducci.Quadruple
	for i, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 8)
		if err != nil {
			return q, fmt.Errorf("component %d: %w", i, err)
		}
		q[i] = int8(v)
	}
	return q, nil
}

func (c *cli) verifyCmd() *cobra.Command {
	var recompute bool

	cmd := &cobra.Command{
		Use:   "verify [file]",
		Short: "Check a results file: every leaf terminal, optionally recompute every line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.cfg.Output.Path
			if len(args) == 1 {
				path = args[0]
			}

			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open results file: %w", err)
			}
			defer file.Close()

			report, err := enumerate.Verify(cmd.Context(), file, enumerate.VerifyOptions{
				Recompute: recompute,
				Explorer:  c.cfg.Explorer(),
				Logger:    c.logger,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d lines, %d leaves OK\n", path, report.Lines, report.Leaves)
			return nil
		},
	}

	cmd.Flags().BoolVar(&recompute, "recompute", false, "Re-run the search for every line and compare")
	return cmd
}

func main() {
	if err := newRootCmd(nil).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
