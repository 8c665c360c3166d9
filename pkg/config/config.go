// Package config loads simulation settings from a YAML or TOML file.
//
// Zero values mean "not set": WithDefaults fills the reference constants, and
// Servers and Cycles are left for the caller to resolve (flags or prompts).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lbsim/pkg/dispatcher"
	"lbsim/pkg/firewall"
	"lbsim/pkg/protocol"
	"lbsim/pkg/request"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config is the on-disk simulation configuration.
type Config struct {
	Servers            int      `yaml:"servers" toml:"servers"`
	Cycles             int      `yaml:"cycles" toml:"cycles"`
	Seed               *int64   `yaml:"seed" toml:"seed"`                               // nil: seed from the clock
	ArrivalProbability *float64 `yaml:"arrival_probability" toml:"arrival_probability"` // nil: 0.2; 0 disables arrivals
	MinDuration        int      `yaml:"min_duration" toml:"min_duration"`
	MaxDuration        int      `yaml:"max_duration" toml:"max_duration"`
	InitialPerServer   int      `yaml:"initial_per_server" toml:"initial_per_server"`
	ScaleUpRatio       int      `yaml:"scale_up_ratio" toml:"scale_up_ratio"`
	ScaleDownRatio     int      `yaml:"scale_down_ratio" toml:"scale_down_ratio"`
	LogPath            string   `yaml:"log_path" toml:"log_path"`
	Blocked            []string `yaml:"blocked" toml:"blocked"`
	DenyList           string   `yaml:"deny_list" toml:"deny_list"` // relative paths resolve against the config file
}

// Load reads the file at path, choosing the decoder by extension
// (.yaml, .yml or .toml). Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if cfg.DenyList != "" && !filepath.IsAbs(cfg.DenyList) {
		cfg.DenyList = filepath.Join(filepath.Dir(path), cfg.DenyList)
	}
	return cfg, nil
}

// ResolvePath returns flagPath if set, otherwise the LBSIM_CONFIG environment
// variable. An empty result means no config file.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv(protocol.ConfigEnv)
}

// LoadOptional loads the file named by ResolvePath(flagPath), or returns a
// zero Config when none is named.
func LoadOptional(flagPath string) (Config, error) {
	path := ResolvePath(flagPath)
	if path == "" {
		return Config{}, nil
	}
	return Load(path)
}

// WithDefaults returns a copy with unset fields filled. Servers, Cycles and
// Seed are left as they are.
func (c Config) WithDefaults() Config {
	out := c
	if out.ArrivalProbability == nil {
		p := protocol.DefaultArrivalProbability
		out.ArrivalProbability = &p
	}
	if out.MinDuration == 0 {
		out.MinDuration = protocol.MinDuration
	}
	if out.MaxDuration == 0 {
		out.MaxDuration = protocol.MaxDuration
	}
	if out.InitialPerServer == 0 {
		out.InitialPerServer = protocol.DefaultInitialPerServer
	}
	if out.ScaleUpRatio == 0 {
		out.ScaleUpRatio = protocol.DefaultScaleUpRatio
	}
	if out.ScaleDownRatio == 0 {
		out.ScaleDownRatio = protocol.DefaultScaleDownRatio
	}
	if out.LogPath == "" {
		out.LogPath = protocol.DefaultLogPath
	}
	return out
}

// Validate checks a defaulted Config. Servers and Cycles may still be zero
// (unresolved) but never negative.
func (c Config) Validate() error {
	var errs []error
	if c.Servers < 0 {
		errs = append(errs, fmt.Errorf("servers must be positive, got %d", c.Servers))
	}
	if c.Cycles < 0 {
		errs = append(errs, fmt.Errorf("cycles must be positive, got %d", c.Cycles))
	}
	if p := c.ArrivalProbability; p != nil && (*p < 0 || *p > 1) {
		errs = append(errs, fmt.Errorf("arrival_probability must be within [0,1], got %g", *p))
	}
	if c.MinDuration < 1 || c.MaxDuration < c.MinDuration {
		errs = append(errs, fmt.Errorf("duration range [%d,%d] is invalid", c.MinDuration, c.MaxDuration))
	}
	if c.InitialPerServer < 0 {
		errs = append(errs, fmt.Errorf("initial_per_server must not be negative, got %d", c.InitialPerServer))
	}
	if c.ScaleUpRatio < 1 || c.ScaleDownRatio < 1 {
		errs = append(errs, fmt.Errorf("scale ratios must be positive, got up=%d down=%d", c.ScaleUpRatio, c.ScaleDownRatio))
	} else if c.ScaleDownRatio >= c.ScaleUpRatio {
		errs = append(errs, fmt.Errorf("scale_down_ratio %d must be below scale_up_ratio %d", c.ScaleDownRatio, c.ScaleUpRatio))
	}
	for _, ip := range c.Blocked {
		if err := request.ValidateIP(ip); err != nil {
			errs = append(errs, fmt.Errorf("blocked: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Blocklist returns the effective deny-set: the built-in addresses, then
// Blocked, then the entries of the DenyList file, without duplicates.
func (c Config) Blocklist() ([]string, error) {
	out := append([]string(nil), firewall.DefaultBlocked...)
	out = append(out, c.Blocked...)
	if c.DenyList != "" {
		extra, err := firewall.LoadDenyList(c.DenyList)
		if err != nil {
			return nil, err
		}
		out = append(out, extra...)
	}

	seen := make(map[string]struct{}, len(out))
	uniq := out[:0]
	for _, ip := range out {
		if _, dup := seen[ip]; dup {
			continue
		}
		seen[ip] = struct{}{}
		uniq = append(uniq, ip)
	}
	return uniq, nil
}

// DispatcherConfig maps c onto the dispatcher's settings. c should already be
// defaulted and have Servers resolved.
func (c Config) DispatcherConfig(blocked []string) dispatcher.Config {
	cfg := dispatcher.Config{
		Servers:          c.Servers,
		ScaleUpRatio:     c.ScaleUpRatio,
		ScaleDownRatio:   c.ScaleDownRatio,
		InitialPerServer: c.InitialPerServer,
		Blocked:          blocked,
	}
	if c.ArrivalProbability != nil {
		cfg.ArrivalProbability = *c.ArrivalProbability
	}
	return cfg
}

// GeneratorOptions returns the request generator options implied by c.
func (c Config) GeneratorOptions() []request.GeneratorOption {
	return []request.GeneratorOption{request.WithDurationRange(c.MinDuration, c.MaxDuration)}
}
