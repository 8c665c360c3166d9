package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"lbsim/pkg/config"
	"lbsim/pkg/dispatcher"
	"lbsim/pkg/eventlog"
	"lbsim/pkg/request"
	"lbsim/pkg/simlog"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// runOptions holds the flags shared by "lbsim" and "lbsim run".
type runOptions struct {
	servers    int
	cycles     int
	configPath string
	seed       int64
	logPath    string
	noLog      bool
	arrival    float64
	printState bool
	stats      bool
	interval   time.Duration
	watch      bool
	verbose    bool
}

// bind registers the run flags on cmd.
func (o *runOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVarP(&o.servers, "servers", "s", 0, "initial number of web servers (prompted when unset)")
	f.IntVarP(&o.cycles, "cycles", "n", 0, "number of clock cycles to simulate (prompted when unset)")
	f.StringVarP(&o.configPath, "config", "c", "", "YAML or TOML config file (default $LBSIM_CONFIG)")
	f.Int64Var(&o.seed, "seed", 0, "random seed for a reproducible run")
	f.StringVar(&o.logPath, "log", "", "log file path (default log.txt)")
	f.BoolVar(&o.noLog, "no-log", false, "disable the log file")
	f.Float64Var(&o.arrival, "arrival", 0, "probability of one arrival per cycle, 0 disables arrivals (default 0.2)")
	f.BoolVar(&o.printState, "print-state", false, "print the final state to stdout (per-request detail with --verbose)")
	f.BoolVar(&o.stats, "stats", false, "print a run summary")
	f.DurationVar(&o.interval, "interval", 0, "pace cycles in real time and print each one (e.g. 200ms)")
	f.BoolVar(&o.watch, "watch", false, "reload the deny-list file when it changes (needs --interval)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "debug diagnostics and progress on stderr")
}

// newRunCmd creates the "lbsim run" subcommand.
func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		Long: "Seeds the queue with 100 requests per server, then runs the given number\n" +
			"of clock cycles, writing every cycle's state to the log file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulation(cmd, &opts)
		},
	}
	opts.bind(cmd)

	return cmd
}

// newLogger returns the diagnostics logger: warnings by default, debug when verbose.
func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// loadRunConfig merges the config file with explicitly set flags and fills defaults.
func loadRunConfig(cmd *cobra.Command, opts *runOptions) (config.Config, error) {
	cfg, err := config.LoadOptional(opts.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("servers") {
		if opts.servers < 1 {
			return config.Config{}, fmt.Errorf("--servers must be at least 1, got %d", opts.servers)
		}
		cfg.Servers = opts.servers
	}
	if flags.Changed("cycles") {
		if opts.cycles < 1 {
			return config.Config{}, fmt.Errorf("--cycles must be at least 1, got %d", opts.cycles)
		}
		cfg.Cycles = opts.cycles
	}
	if flags.Changed("seed") {
		seed := opts.seed
		cfg.Seed = &seed
	}
	if flags.Changed("arrival") {
		p := opts.arrival
		cfg.ArrivalProbability = &p
	}
	if opts.logPath != "" {
		cfg.LogPath = opts.logPath
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveCounts prompts for whichever of servers and cycles is still unset.
func resolveCounts(cfg *config.Config, in io.Reader, out io.Writer) error {
	if cfg.Servers > 0 && cfg.Cycles > 0 {
		return nil
	}

	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)

	if cfg.Servers == 0 {
		n, err := promptCount(sc, out, "Enter number of web servers: ")
		if err != nil {
			return fmt.Errorf("number of web servers: %w", err)
		}
		cfg.Servers = n
	}
	if cfg.Cycles == 0 {
		n, err := promptCount(sc, out, "Enter number of clock cycles to simulate: ")
		if err != nil {
			return fmt.Errorf("number of clock cycles: %w", err)
		}
		cfg.Cycles = n
	}
	return nil
}

// promptCount writes prompt and reads one positive integer token.
func promptCount(sc *bufio.Scanner, out io.Writer, prompt string) (int, error) {
	fmt.Fprint(out, prompt)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	n, err := strconv.Atoi(sc.Text())
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", sc.Text())
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1, got %d", n)
	}
	return n, nil
}

// runSimulation is the body of "lbsim" and "lbsim run".
func runSimulation(cmd *cobra.Command, opts *runOptions) (err error) {
	out := cmd.OutOrStdout()
	log := newLogger(cmd.ErrOrStderr(), opts.verbose)

	cfg, err := loadRunConfig(cmd, opts)
	if err != nil {
		return err
	}
	if opts.watch {
		if opts.interval <= 0 {
			return errors.New("--watch requires --interval")
		}
		if cfg.DenyList == "" {
			return errors.New("--watch requires deny_list in the config file")
		}
	}
	if err := resolveCounts(&cfg, cmd.InOrStdin(), out); err != nil {
		return err
	}

	blocked, err := cfg.Blocklist()
	if err != nil {
		return fmt.Errorf("load deny-list: %w", err)
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // simulation randomness
	log.WithField("seed", seed).Debug("random source ready")

	dopts := []dispatcher.Option{
		dispatcher.WithRand(rng),
		dispatcher.WithGenerator(request.NewGenerator(rng, cfg.GeneratorOptions()...)),
		dispatcher.WithLogger(log),
	}

	var textSink *simlog.TextSink
	if !opts.noLog {
		textSink, err = simlog.OpenTextSink(cfg.LogPath)
		if err != nil {
			log.WithError(err).WithField("path", cfg.LogPath).
				Warn("log file unavailable, continuing without file logging")
			textSink = nil
		} else {
			dopts = append(dopts, dispatcher.WithSink(textSink))
		}
	}

	var recorder *eventlog.Recorder
	if opts.stats {
		recorder, err = eventlog.Open(cmd.Context())
		if err != nil {
			return fmt.Errorf("open stats store: %w", err)
		}
		dopts = append(dopts, dispatcher.WithSink(recorder))
	}

	if opts.interval > 0 {
		dopts = append(dopts, dispatcher.WithSink(simlog.NewConsole(out)))
	}

	d, err := dispatcher.New(cfg.DispatcherConfig(blocked), dopts...)
	if err != nil {
		if recorder != nil {
			_ = recorder.Close()
		}
		if textSink != nil {
			_ = textSink.Close()
		}
		return fmt.Errorf("create dispatcher: %w", err)
	}
	defer func() {
		if cerr := d.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()

	var progress *startupLog
	if opts.verbose {
		stderr := cmd.ErrOrStderr()
		progress = newStartupLog(stderr, simlog.IsTerminal(stderr))
	}

	d.FillInitialQueue()
	if progress != nil {
		progress.Step(fmt.Sprintf("Seeded %d requests across %d servers", d.QueueLen(), d.ServerCount()))
	}

	started := time.Now()
	if opts.interval > 0 {
		if err := runLive(cmd.Context(), d, cfg, liveOptions{
			cycles:   cfg.Cycles,
			interval: opts.interval,
			watch:    opts.watch,
		}, log); err != nil {
			return err
		}
	} else {
		stop := func() {}
		if progress != nil {
			stop = progress.StartSpinner(fmt.Sprintf("Simulating %d cycles", cfg.Cycles))
		}
		d.Run(cfg.Cycles)
		stop()
	}
	if progress != nil {
		progress.StepTimed(fmt.Sprintf("Finished at cycle %d", d.Clock()), time.Since(started))
	}

	if textSink != nil {
		if werr := textSink.Err(); werr != nil {
			log.WithError(werr).WithField("path", cfg.LogPath).Warn("log file incomplete")
		}
	}

	if opts.printState && opts.interval <= 0 {
		console := simlog.NewConsole(out)
		if opts.verbose {
			console.PrintVerbose(d.Snapshot())
		} else {
			console.PrintState(d.Snapshot())
		}
	}

	if recorder != nil {
		if err := printStats(cmd.Context(), out, recorder); err != nil {
			return err
		}
	}

	if textSink != nil {
		fmt.Fprintf(out, "Simulation complete. Check '%s' for detailed output.\n", cfg.LogPath)
	} else {
		fmt.Fprintln(out, "Simulation complete.")
	}
	return nil
}

// printStats renders the recorder's run summary.
func printStats(ctx context.Context, w io.Writer, rec *eventlog.Recorder) error {
	if err := rec.Err(); err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	s, err := rec.Summary(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	writeSummary(w, s)
	return nil
}
