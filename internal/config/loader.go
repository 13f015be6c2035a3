package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/ring"
)

// Default returns the configuration used for any field a file leaves unset.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Detector: detectorFromParams(ring.DefaultParams()),
		Audio: AudioConfig{
			SampleRate: audio.DefaultFormat.SampleRate,
			Channels:   audio.DefaultFormat.Channels,
			BlockSize:  audio.DefaultFormat.BlockSize,
		},
		Pitch: PitchConfig{
			Method:      "yin",
			Tolerance:   0.8,
			HopMultiple: 0.5,
		},
		Notify: NotifyConfig{
			Attempts:        3,
			Delay:           time.Second,
			BreakerFailures: 5,
			BreakerCooldown: 5 * time.Minute,
		},
	}
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over [Default] and validates
// the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	if err := cfg.Detector.Params().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detector: %w", err))
	}
	d := cfg.Detector
	if d.MaxWaitGapMultiple < 0 {
		errs = append(errs, fmt.Errorf("detector.max_wait_gap_multiple %g must not be negative", d.MaxWaitGapMultiple))
	}
	if d.MaxWaitSubsequentRingMultiple < 0 {
		errs = append(errs, fmt.Errorf("detector.max_wait_subsequent_ring_multiple %g must not be negative", d.MaxWaitSubsequentRingMultiple))
	}

	a := cfg.Audio
	if a.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d must be positive", a.SampleRate))
	}
	if a.Channels <= 0 {
		errs = append(errs, fmt.Errorf("audio.channels %d must be positive", a.Channels))
	}
	if a.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("audio.block_size %d must be positive", a.BlockSize))
	}
	if a.TargetRate < 0 {
		errs = append(errs, fmt.Errorf("audio.target_rate %d must not be negative", a.TargetRate))
	}

	p := cfg.Pitch
	if p.Tolerance < 0 || p.Tolerance > 1 {
		errs = append(errs, fmt.Errorf("pitch.tolerance %.2f is out of range [0, 1]", p.Tolerance))
	}
	if p.HopMultiple < 0 || p.HopMultiple > 1 {
		errs = append(errs, fmt.Errorf("pitch.hop_multiple %.2f is out of range [0, 1]", p.HopMultiple))
	}

	n := cfg.Notify
	if len(n.Command) > 0 && n.Command[0] == "" {
		errs = append(errs, errors.New("notify.command[0] must name an executable"))
	}
	if len(n.Command) > 0 && n.Attempts == 0 {
		errs = append(errs, errors.New("notify.attempts must be at least 1"))
	}
	if n.Delay < 0 {
		errs = append(errs, fmt.Errorf("notify.delay %v must not be negative", n.Delay))
	}
	if n.Timeout < 0 {
		errs = append(errs, fmt.Errorf("notify.timeout %v must not be negative", n.Timeout))
	}
	if n.BreakerFailures < 0 {
		errs = append(errs, fmt.Errorf("notify.breaker_failures %d must not be negative", n.BreakerFailures))
	}
	if n.BreakerCooldown < 0 {
		errs = append(errs, fmt.Errorf("notify.breaker_cooldown %v must not be negative", n.BreakerCooldown))
	}

	return errors.Join(errs...)
}
