// Package config provides the configuration schema, loader, and file watcher
// for the dictascribe extraction service.
package config

import "github.com/carevox/dictascribe/pkg/workflow"

// LogLevel controls log verbosity for the service.
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

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server ServerConfig `yaml:"server"`
	Engine EngineConfig `yaml:"engine"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the metrics endpoint listens on
	// (e.g., ":9090"). Empty disables the endpoint.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// EngineConfig holds the tunable extraction parameters. The thresholds were
// chosen empirically; they are configuration rather than constants so
// deployments can adjust them without a rebuild.
type EngineConfig struct {
	// ReviewThreshold is the confidence below which an updated field is
	// flagged for manual review. Default: 0.7.
	ReviewThreshold float64 `yaml:"review_threshold"`

	// MatchThreshold is the minimum Levenshtein similarity for a fuzzy
	// field-label match. Default: 0.7.
	MatchThreshold float64 `yaml:"match_threshold"`

	// DefaultWorkflow selects the workflow used when a session starts
	// without an explicit one. Default: general-note.
	DefaultWorkflow workflow.Type `yaml:"default_workflow"`
}
