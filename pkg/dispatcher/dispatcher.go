// Package dispatcher implements the load balancer at the heart of lbsim: a
// discrete-time state machine that owns a pool of servers, a FIFO request
// queue and an admission filter. Each Tick advances in-flight work, assigns
// queued requests to idle servers, admits or rejects one possible arrival,
// grows or shrinks the pool on queue pressure and reports a snapshot to its
// sinks.
//
// The Dispatcher is single-threaded. It is the only mutator of its servers,
// queue and filter; callers that need concurrency (the CLI's live mode) must
// confine all calls to one goroutine.
package dispatcher

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"lbsim/internal/debugonly"
	"lbsim/pkg/firewall"
	"lbsim/pkg/protocol"
	"lbsim/pkg/queue"
	"lbsim/pkg/request"
	"lbsim/pkg/server"

	"github.com/sirupsen/logrus"
)

// --- Interfaces for testability ---

// Generator synthesizes arriving requests. *request.Generator implements it.
type Generator interface {
	Next() request.Request
}

// --- Config ---

// Config holds Dispatcher configuration.
type Config struct {
	Servers            int      // Initial pool size; must be >= 1.
	ArrivalProbability float64  // Chance of one arrival per cycle, in [0,1]. Used as given; 0 disables arrivals.
	ScaleUpRatio       int      // Add a server when queue > servers*ratio (default 120).
	ScaleDownRatio     int      // Remove a server when queue < servers*ratio (default 50).
	InitialPerServer   int      // Requests per server seeded by FillInitialQueue (default 100).
	Blocked            []string // Initial deny-set; nil means firewall.DefaultBlocked.
}

// DefaultConfig returns the reference configuration for n servers, including
// the one-in-five arrival probability.
func DefaultConfig(servers int) Config {
	return Config{
		Servers:            servers,
		ArrivalProbability: protocol.DefaultArrivalProbability,
	}
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.ScaleUpRatio == 0 {
		out.ScaleUpRatio = protocol.DefaultScaleUpRatio
	}
	if out.ScaleDownRatio == 0 {
		out.ScaleDownRatio = protocol.DefaultScaleDownRatio
	}
	if out.InitialPerServer == 0 {
		out.InitialPerServer = protocol.DefaultInitialPerServer
	}
	if out.Blocked == nil {
		out.Blocked = firewall.DefaultBlocked
	}
	return out
}

func (c *Config) validate() error {
	if c.Servers < 1 {
		return fmt.Errorf("servers must be at least 1, got %d", c.Servers)
	}
	if c.ArrivalProbability < 0 || c.ArrivalProbability > 1 {
		return fmt.Errorf("arrival probability must be within [0,1], got %g", c.ArrivalProbability)
	}
	if c.ScaleUpRatio < 1 || c.ScaleDownRatio < 1 {
		return fmt.Errorf("scale ratios must be positive, got up=%d down=%d", c.ScaleUpRatio, c.ScaleDownRatio)
	}
	if c.ScaleDownRatio >= c.ScaleUpRatio {
		return fmt.Errorf("scale-down ratio %d must be below scale-up ratio %d", c.ScaleDownRatio, c.ScaleUpRatio)
	}
	if c.InitialPerServer < 0 {
		return fmt.Errorf("initial requests per server must not be negative, got %d", c.InitialPerServer)
	}
	return nil
}

// --- Dispatcher ---

// Dispatcher is the load balancer state machine.
type Dispatcher struct {
	cfg    Config
	filter *firewall.Filter
	queue  *queue.Queue
	ServerPool

	clock int
	rng   request.Rand
	gen   Generator
	sinks []Sink
	log   logrus.FieldLogger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRand sets the random source used for arrival sampling and, unless
// WithGenerator is also given, for request generation.
func WithRand(rng request.Rand) Option {
	return func(d *Dispatcher) { d.rng = rng }
}

// WithGenerator overrides the request generator.
func WithGenerator(g Generator) Option {
	return func(d *Dispatcher) { d.gen = g }
}

// WithSink registers a sink for events and snapshots. May be repeated.
func WithSink(s Sink) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.sinks = append(d.sinks, s)
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// New creates a Dispatcher with cfg.Servers idle servers and an empty queue.
func New(cfg Config, opts ...Option) (*Dispatcher, error) {
	resolved := cfg.withDefaults()
	if err := resolved.validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		cfg:    resolved,
		filter: firewall.New(resolved.Blocked...),
		queue:  queue.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rng == nil {
		d.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // simulation randomness
	}
	if d.gen == nil {
		d.gen = request.NewGenerator(d.rng)
	}
	if d.log == nil {
		d.log = logrus.StandardLogger()
	}

	for i := 0; i < resolved.Servers; i++ {
		d.servers = append(d.servers, server.New())
	}

	return d, nil
}

// Config returns the resolved configuration.
func (d *Dispatcher) Config() Config {
	return d.cfg
}

// Clock returns the number of cycles run so far.
func (d *Dispatcher) Clock() int {
	return d.clock
}

// QueueLen returns the number of waiting requests.
func (d *Dispatcher) QueueLen() int {
	return d.queue.Len()
}

// Filter exposes the admission filter for block/unblock calls between ticks.
func (d *Dispatcher) Filter() *firewall.Filter {
	return d.filter
}

// AddRequest enqueues r directly, bypassing the admission filter.
func (d *Dispatcher) AddRequest(r request.Request) {
	d.queue.Enqueue(r)
}

// Submit runs r through the admission filter. A blocked source is reported to
// the sinks and leaves the queue untouched; otherwise r is enqueued.
func (d *Dispatcher) Submit(r request.Request) bool {
	if d.filter.IsBlocked(r.Source) {
		d.emit(Event{Type: protocol.EventBlocked, Server: NoServer, Request: r})
		return false
	}
	d.queue.Enqueue(r)
	d.emit(Event{Type: protocol.EventArrived, Server: NoServer, Request: r})
	return true
}

// FillInitialQueue seeds the queue with InitialPerServer generated requests
// per server. Seeding does not consult the filter and emits no events. Call
// it once, before the first Tick.
func (d *Dispatcher) FillInitialQueue() {
	n := len(d.servers) * d.cfg.InitialPerServer
	for i := 0; i < n; i++ {
		d.queue.Enqueue(d.gen.Next())
	}
}

// Tick runs one simulation cycle. The sub-steps are strictly ordered:
//  1. advance the clock
//  2. advance every server; completions free a server within this cycle
//  3. hand the queue head to each idle server, in index order
//  4. sample one arrival and run it through the filter
//  5. scale up on queue pressure, then scale down on slack
//  6. report a snapshot to the sinks
func (d *Dispatcher) Tick() {
	d.clock++
	d.advanceServers()
	d.assignIdle()
	d.sampleArrival()
	d.rescale()
	d.emitSnapshot()
}

// Run calls Tick exactly cycles times.
func (d *Dispatcher) Run(cycles int) {
	for i := 0; i < cycles; i++ {
		d.Tick()
	}
}

// sampleArrival draws one possible arrival for this cycle.
func (d *Dispatcher) sampleArrival() {
	p := d.cfg.ArrivalProbability
	if p <= 0 || d.rng.Float64() >= p {
		return
	}
	d.Submit(d.gen.Next())
}

// violation handles a contract error from the queue or a server. The
// dispatcher guards every such call, so reaching here is a dispatcher bug:
// fatal in debug builds, logged and skipped otherwise.
func (d *Dispatcher) violation(err error, serverIdx int) {
	if debugonly.Enabled() {
		panic(err)
	}
	d.log.WithFields(logrus.Fields{
		"cycle":  d.clock,
		"server": serverIdx,
	}).WithError(err).Error("dispatcher contract violated, skipping step")
}

// Close releases every server and closes sinks that implement io.Closer.
// In-flight requests are discarded.
func (d *Dispatcher) Close() error {
	for _, s := range d.servers {
		s.Release()
	}
	d.servers = nil

	var errs []error
	for _, s := range d.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	d.sinks = nil
	return errors.Join(errs...)
}
