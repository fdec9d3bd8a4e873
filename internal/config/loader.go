package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/carevox/dictascribe/pkg/workflow"
)

// Default values applied by [LoadFromReader] for unset fields.
const (
	DefaultReviewThreshold = 0.70
	DefaultMatchThreshold  = 0.70
)

// Default returns a config with every field at its default value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			LogLevel: LogInfo,
		},
		Engine: EngineConfig{
			ReviewThreshold: DefaultReviewThreshold,
			MatchThreshold:  DefaultMatchThreshold,
			DefaultWorkflow: workflow.GeneralNote,
		},
	}
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
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

// LoadFromReader decodes a YAML config from r, fills defaults, and validates
// the result. Useful in tests where configs are built from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero-valued fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Engine.ReviewThreshold == 0 {
		cfg.Engine.ReviewThreshold = DefaultReviewThreshold
	}
	if cfg.Engine.MatchThreshold == 0 {
		cfg.Engine.MatchThreshold = DefaultMatchThreshold
	}
	if cfg.Engine.DefaultWorkflow == "" {
		cfg.Engine.DefaultWorkflow = workflow.GeneralNote
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing every validation failure found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Engine.ReviewThreshold <= 0 || cfg.Engine.ReviewThreshold > 1 {
		errs = append(errs, fmt.Errorf("engine.review_threshold %.2f is out of range (0, 1]", cfg.Engine.ReviewThreshold))
	}
	if cfg.Engine.MatchThreshold <= 0 || cfg.Engine.MatchThreshold > 1 {
		errs = append(errs, fmt.Errorf("engine.match_threshold %.2f is out of range (0, 1]", cfg.Engine.MatchThreshold))
	}
	if !cfg.Engine.DefaultWorkflow.IsValid() {
		errs = append(errs, fmt.Errorf("engine.default_workflow %q is invalid", cfg.Engine.DefaultWorkflow))
	}

	return errors.Join(errs...)
}
