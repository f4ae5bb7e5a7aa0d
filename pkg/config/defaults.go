package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultStepMarker     = "Rung distribution"
	DefaultReportMarker   = "Big step"
	DefaultTerminalMarker = "Done."
	DefaultRungMarker     = "Step:"
	DefaultRungPattern    = `Rungs\s+(?P<from>\d+)\s+to\s+(?P<to>\d+)\.?\s*Gravity Active:\s*(?P<gravity>\d+)(?:,\s*Gas Active:\s*(?P<gas>\d+))?`
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvSegmentationPolicy = "OLDTIMER_SEGMENTATION_POLICY"
	EnvTrailing           = "OLDTIMER_TRAILING"
	EnvMalformedRung      = "OLDTIMER_MALFORMED_RUNG"
)

// DefaultConfig returns a configuration matching ChaNGa's log output.
func DefaultConfig() *Config {
	return &Config{
		Segmentation: SegmentationConfig{
			Policy:         SegmentOnMarker,
			StepMarker:     DefaultStepMarker,
			ReportMarker:   DefaultReportMarker,
			TerminalMarker: DefaultTerminalMarker,
			Trailing:       TrailingFlush,
		},
		Rungs: RungConfig{
			Marker:    DefaultRungMarker,
			Pattern:   DefaultRungPattern,
			Malformed: MalformedSkip,
		},
		Metrics: map[string]string{},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv(EnvSegmentationPolicy); v != "" {
		c.Segmentation.Policy = SegmentationPolicy(v)
	}
	if v := os.Getenv(EnvTrailing); v != "" {
		c.Segmentation.Trailing = TrailingPolicy(v)
	}
	if v := os.Getenv(EnvMalformedRung); v != "" {
		c.Rungs.Malformed = MalformedPolicy(v)
	}
}
