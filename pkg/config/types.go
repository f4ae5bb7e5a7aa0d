// Package config provides configuration loading and validation for oldtimer.
package config

import (
	"regexp"
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Rungs        RungConfig         `yaml:"rungs"`

	// Metrics overrides the keyword searched for each metric, keyed by
	// metric name (Gravity, Density, ...).
	Metrics map[string]string `yaml:"metrics,omitempty"`

	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// SegmentationPolicy selects how a log is split into big steps.
type SegmentationPolicy string

const (
	// SegmentOnMarker starts a new step at every step marker line.
	SegmentOnMarker SegmentationPolicy = "marker"
	// SegmentOnReport closes a step at every "Big step ... took N seconds" line.
	SegmentOnReport SegmentationPolicy = "report"
)

// TrailingPolicy decides what happens to content after the last boundary
// when the terminal marker never appears.
type TrailingPolicy string

const (
	TrailingFlush   TrailingPolicy = "flush"
	TrailingDiscard TrailingPolicy = "discard"
)

// MalformedPolicy decides what happens to a rung marker line that cannot be parsed.
type MalformedPolicy string

const (
	MalformedSkip  MalformedPolicy = "skip"
	MalformedAbort MalformedPolicy = "abort"
)

// SegmentationConfig defines the markers that split a log into big steps.
type SegmentationConfig struct {
	Policy SegmentationPolicy `yaml:"policy"`

	// StepMarker opens a new step under the marker policy.
	StepMarker string `yaml:"step_marker"`

	// ReportMarker identifies the line reporting a step's total time. Under
	// the report policy it also closes the step.
	ReportMarker string `yaml:"report_marker"`

	// TerminalMarker ends the log; later lines are ignored.
	TerminalMarker string `yaml:"terminal_marker"`

	Trailing TrailingPolicy `yaml:"trailing"`
}

// RungConfig defines how rung transition lines are found and parsed.
type RungConfig struct {
	// Marker is the substring identifying a transition line.
	Marker string `yaml:"marker"`

	// Pattern is a regex with named groups from, to and gravity, and an
	// optional gas group.
	Pattern string `yaml:"pattern"`

	Malformed MalformedPolicy `yaml:"malformed"`

	// compiledPattern is the pre-compiled regex (populated during validation).
	compiledPattern *regexp.Regexp
}

// CompiledPattern returns the pre-compiled rung pattern.
func (r *RungConfig) CompiledPattern() *regexp.Regexp {
	return r.compiledPattern
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when a log failed to load or produced
	// parse diagnostics.
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every report (default).
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "always" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
