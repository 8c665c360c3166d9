// Package main implements lbsim-dash, an interactive terminal view of a
// running load balancer simulation.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"lbsim/internal/version"
	"lbsim/pkg/config"
	"lbsim/pkg/dispatcher"
	"lbsim/pkg/request"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// dashOptions holds the dashboard flags.
type dashOptions struct {
	servers    int
	cycles     int
	configPath string
	seed       int64
	interval   time.Duration
}

// newRootCmd creates the lbsim-dash command.
func newRootCmd() *cobra.Command {
	var opts dashOptions

	cmd := &cobra.Command{
		Use:           "lbsim-dash",
		Short:         "Watch a load balancer simulation live",
		Version:       fmt.Sprintf("lbsim-dash %s", version.String()),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := buildModel(cmd, &opts)
			if err != nil {
				return err
			}
			defer func() { _ = m.close() }()

			p := tea.NewProgram(m, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run dashboard: %w", err)
			}
			return nil
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	f := cmd.Flags()
	f.IntVarP(&opts.servers, "servers", "s", 3, "initial number of web servers")
	f.IntVarP(&opts.cycles, "cycles", "n", 1000, "number of clock cycles to simulate")
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML or TOML config file (default $LBSIM_CONFIG)")
	f.Int64Var(&opts.seed, "seed", 0, "random seed for a reproducible run")
	f.DurationVar(&opts.interval, "interval", 200*time.Millisecond, "time between cycles")

	return cmd
}

// buildModel resolves configuration and creates the dispatcher behind the dashboard.
// Config file values win over flag defaults; explicitly set flags win over both.
func buildModel(cmd *cobra.Command, opts *dashOptions) (Model, error) {
	cfg, err := config.LoadOptional(opts.configPath)
	if err != nil {
		return Model{}, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if cfg.Servers == 0 || flags.Changed("servers") {
		cfg.Servers = opts.servers
	}
	if cfg.Cycles == 0 || flags.Changed("cycles") {
		cfg.Cycles = opts.cycles
	}
	if flags.Changed("seed") {
		seed := opts.seed
		cfg.Seed = &seed
	}
	if cfg.Servers < 1 || cfg.Cycles < 1 {
		return Model{}, fmt.Errorf("servers and cycles must be at least 1, got %d and %d", cfg.Servers, cfg.Cycles)
	}
	if opts.interval <= 0 {
		return Model{}, fmt.Errorf("--interval must be positive, got %s", opts.interval)
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Model{}, fmt.Errorf("invalid config: %w", err)
	}
	blocked, err := cfg.Blocklist()
	if err != nil {
		return Model{}, fmt.Errorf("load deny-list: %w", err)
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // simulation randomness

	// The alternate screen owns the terminal; diagnostics would corrupt it.
	log := logrus.New()
	log.SetOutput(io.Discard)

	feed := newEventFeed(maxFeedLines)
	d, err := dispatcher.New(cfg.DispatcherConfig(blocked),
		dispatcher.WithRand(rng),
		dispatcher.WithGenerator(request.NewGenerator(rng, cfg.GeneratorOptions()...)),
		dispatcher.WithLogger(log),
		dispatcher.WithSink(feed),
	)
	if err != nil {
		return Model{}, fmt.Errorf("create dispatcher: %w", err)
	}
	d.FillInitialQueue()

	m := newModel(d, feed, cfg.Cycles, opts.interval)
	if cfg.DenyList != "" {
		m.watcher = initWatcher(cfg.DenyList)
		m.denyCfg = cfg
	}
	return m, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
