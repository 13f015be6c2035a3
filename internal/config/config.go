// Package config provides the configuration schema, loader, hot-reload
// watcher and pitch-engine registry for the doorbell detector.
package config

import (
	"slices"
	"time"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/pitch"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/ring"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	LogLevel  LogLevel        `yaml:"log_level"`
	Detector  DetectorConfig  `yaml:"detector"`
	Audio     AudioConfig     `yaml:"audio"`
	Pitch     PitchConfig     `yaml:"pitch"`
	Notify    NotifyConfig    `yaml:"notify"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DetectorConfig holds the ring cycle tunables.
type DetectorConfig struct {
	MinRingingConfidence          float64 `yaml:"min_ringing_confidence"`
	MaxRingingConfidence          float64 `yaml:"max_ringing_confidence"`
	ConfidencesPerSecond          int     `yaml:"confidences_per_second"`
	RingingSeconds                float64 `yaml:"ringing_seconds"`
	GapSeconds                    float64 `yaml:"gap_seconds"`
	MaxWaitGapMultiple            float64 `yaml:"max_wait_gap_multiple"`
	MaxWaitSubsequentRingMultiple float64 `yaml:"max_wait_subsequent_ring_multiple"`
}

// Params converts the section into detector parameters.
func (d DetectorConfig) Params() ring.Params {
	return ring.Params{
		MinRingingConfidence:          d.MinRingingConfidence,
		MaxRingingConfidence:          d.MaxRingingConfidence,
		ConfidencesPerSecond:          d.ConfidencesPerSecond,
		RingingSeconds:                d.RingingSeconds,
		GapSeconds:                    d.GapSeconds,
		MaxWaitGapMultiple:            d.MaxWaitGapMultiple,
		MaxWaitSubsequentRingMultiple: d.MaxWaitSubsequentRingMultiple,
	}
}

func detectorFromParams(p ring.Params) DetectorConfig {
	return DetectorConfig{
		MinRingingConfidence:          p.MinRingingConfidence,
		MaxRingingConfidence:          p.MaxRingingConfidence,
		ConfidencesPerSecond:          p.ConfidencesPerSecond,
		RingingSeconds:                p.RingingSeconds,
		GapSeconds:                    p.GapSeconds,
		MaxWaitGapMultiple:            p.MaxWaitGapMultiple,
		MaxWaitSubsequentRingMultiple: p.MaxWaitSubsequentRingMultiple,
	}
}

// AudioConfig describes the audio input.
type AudioConfig struct {
	// SampleRate of the input in Hz.
	SampleRate int `yaml:"sample_rate"`

	// Channels of the input. Multi-channel input is down-mixed to mono.
	Channels int `yaml:"channels"`

	// BlockSize is the number of frames per block. One confidence value is
	// produced per block.
	BlockSize int `yaml:"block_size"`

	// TargetRate resamples raw PCM input before pitch analysis. Zero keeps
	// the input rate.
	TargetRate int `yaml:"target_rate"`
}

// Format returns the audio format of the input.
func (a AudioConfig) Format() audio.Format {
	return audio.Format{SampleRate: a.SampleRate, Channels: a.Channels, BlockSize: a.BlockSize}
}

// PitchConfig selects and tunes the pitch engine.
type PitchConfig struct {
	// Engine is the name the engine was registered under in a [Registry].
	Engine string `yaml:"engine"`

	Method    string  `yaml:"method"`
	Tolerance float64 `yaml:"tolerance"`

	// HopMultiple sets the analyzer hop size as a fraction of the block size.
	HopMultiple float64 `yaml:"hop_multiple"`
}

// AnalyzerConfig derives analyzer settings for blocks of the given format.
func (p PitchConfig) AnalyzerConfig(f audio.Format) pitch.Config {
	cfg := pitch.DefaultConfig(f.SampleRate, f.BlockSize)
	if p.Method != "" {
		cfg.Method = p.Method
	}
	if p.Tolerance != 0 {
		cfg.Tolerance = p.Tolerance
	}
	if p.HopMultiple != 0 {
		cfg.HopSize = int(float64(f.BlockSize) * p.HopMultiple)
	}
	return cfg
}

// NotifyConfig configures the command run after each detected ring.
type NotifyConfig struct {
	// Command is the argv of the hook. Empty disables notification.
	Command []string `yaml:"command"`

	// Attempts is the total number of tries, including the first.
	Attempts uint `yaml:"attempts"`

	// Delay is the base delay between tries.
	Delay time.Duration `yaml:"delay"`

	// Timeout bounds each try. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`

	// BreakerFailures is how many notifications in a row may fail before the
	// hook is suspended. Zero never suspends it.
	BreakerFailures int `yaml:"breaker_failures"`

	// BreakerCooldown is how long a suspended hook stays suspended.
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// Equal reports whether n and o configure the same hook.
func (n NotifyConfig) Equal(o NotifyConfig) bool {
	return slices.Equal(n.Command, o.Command) &&
		n.Attempts == o.Attempts &&
		n.Delay == o.Delay &&
		n.Timeout == o.Timeout &&
		n.BreakerFailures == o.BreakerFailures &&
		n.BreakerCooldown == o.BreakerCooldown
}

// TelemetryConfig configures metric export.
type TelemetryConfig struct {
	// MetricsTextfile, if set, is where metrics are written in Prometheus
	// text format on exit, for the node exporter's textfile collector.
	MetricsTextfile string `yaml:"metrics_textfile"`
}
