// Package config provides configuration loading for learn-crawler.
package config

import (
	"fmt"

	"github.com/kkaan/learn-crawler/internal/logging"
	"github.com/kkaan/learn-crawler/internal/session"
)

// Config is the full crawler configuration.
type Config struct {
	Scan     ScanConfig     `koanf:"scan"`
	Classify ClassifyConfig `koanf:"classify"`
	Logging  logging.Config `koanf:"logging"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// ScanConfig controls discovery and per-patient processing.
type ScanConfig struct {
	ImagesSubdir string `koanf:"images_subdir"`
	DirPrefix    string `koanf:"dir_prefix"`

	// Concurrency bounds the per-acquisition worker pool.
	Concurrency int `koanf:"concurrency"`

	// DisableDateMatching turns off the MotionView timestamp-borrowing
	// pre-pass.
	DisableDateMatching bool `koanf:"disable_date_matching"`
}

// ClassifyConfig carries the ordered preset classification rules. An empty
// rule list selects the built-in vocabulary.
type ClassifyConfig struct {
	Rules []ClassifyRule `koanf:"rules"`
}

// ClassifyRule mirrors session.Rule for config files.
type ClassifyRule struct {
	Name  string   `koanf:"name"`
	Match []string `koanf:"match"`
	Kind  string   `koanf:"kind"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	// Addr serves /metrics when non-empty, e.g. ":9912".
	Addr string `koanf:"addr"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Scan.ImagesSubdir == "" {
		cfg.Scan.ImagesSubdir = session.DefaultImagesSubdir
	}
	if cfg.Scan.DirPrefix == "" {
		cfg.Scan.DirPrefix = session.DefaultDirPrefix
	}
	if cfg.Scan.Concurrency == 0 {
		cfg.Scan.Concurrency = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Scan.Concurrency < 1 {
		return fmt.Errorf("scan concurrency must be >= 1, got %d", c.Scan.Concurrency)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if _, err := c.ClassifierRules(); err != nil {
		return err
	}
	return nil
}

// ClassifierRules converts configured rules into session rules, validating
// the kind names.
func (c *Config) ClassifierRules() ([]session.Rule, error) {
	if len(c.Classify.Rules) == 0 {
		return nil, nil
	}

	rules := make([]session.Rule, 0, len(c.Classify.Rules))
	for i, r := range c.Classify.Rules {
		kind := session.Kind(r.Kind)
		switch kind {
		case session.KindCBCT, session.KindKIMLearning, session.KindKIMMotionView:
		default:
			return nil, fmt.Errorf("classify rule %d (%s): unknown kind %q", i, r.Name, r.Kind)
		}
		if len(r.Match) == 0 {
			return nil, fmt.Errorf("classify rule %d (%s): no match patterns", i, r.Name)
		}
		rules = append(rules, session.Rule{Name: r.Name, Match: r.Match, Kind: kind})
	}
	return rules, nil
}
