package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rung pattern group names.
const (
	GroupFrom    = "from"
	GroupTo      = "to"
	GroupGravity = "gravity"
	GroupGas     = "gas"
)

// Load reads and validates a configuration file. Keys missing from the file
// keep their defaults.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or returns the validated default configuration
// (with environment overrides) when path is empty.
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}

	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks a configuration for errors and compiles the rung pattern.
func Validate(cfg *Config) error {
	if err := validateSegmentation(&cfg.Segmentation); err != nil {
		return fmt.Errorf("segmentation: %w", err)
	}

	if err := validateRungs(&cfg.Rungs); err != nil {
		return fmt.Errorf("rungs: %w", err)
	}

	for name, keyword := range cfg.Metrics {
		if strings.TrimSpace(keyword) == "" {
			return fmt.Errorf("metrics.%s: keyword must not be empty", name)
		}
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateSegmentation(s *SegmentationConfig) error {
	switch s.Policy {
	case SegmentOnMarker:
		if s.StepMarker == "" {
			return errors.New("step_marker is required for the marker policy")
		}
	case SegmentOnReport:
		if s.ReportMarker == "" {
			return errors.New("report_marker is required for the report policy")
		}
	default:
		return fmt.Errorf("invalid policy %q (must be marker or report)", s.Policy)
	}

	if s.TerminalMarker == "" {
		return errors.New("terminal_marker is required")
	}

	switch s.Trailing {
	case TrailingFlush, TrailingDiscard:
	default:
		return fmt.Errorf("invalid trailing %q (must be flush or discard)", s.Trailing)
	}

	return nil
}

func validateRungs(r *RungConfig) error {
	if r.Marker == "" {
		return errors.New("marker is required")
	}

	if r.Pattern == "" {
		return errors.New("pattern is required")
	}

	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	for _, group := range []string{GroupFrom, GroupTo, GroupGravity} {
		if re.SubexpIndex(group) < 0 {
			return fmt.Errorf("pattern must define a named group %q", group)
		}
	}
	r.compiledPattern = re

	switch r.Malformed {
	case MalformedSkip, MalformedAbort:
	default:
		return fmt.Errorf("invalid malformed %q (must be skip or abort)", r.Malformed)
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerAlways
	case WebhookTriggerOnIssues, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_issues, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
