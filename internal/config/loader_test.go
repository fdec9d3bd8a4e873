package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carevox/dictascribe/internal/config"
	"github.com/carevox/dictascribe/pkg/workflow"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("LogLevel = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Engine.ReviewThreshold != config.DefaultReviewThreshold {
		t.Errorf("ReviewThreshold = %v, want %v", cfg.Engine.ReviewThreshold, config.DefaultReviewThreshold)
	}
	if cfg.Engine.MatchThreshold != config.DefaultMatchThreshold {
		t.Errorf("MatchThreshold = %v, want %v", cfg.Engine.MatchThreshold, config.DefaultMatchThreshold)
	}
	if cfg.Engine.DefaultWorkflow != workflow.GeneralNote {
		t.Errorf("DefaultWorkflow = %q, want general-note", cfg.Engine.DefaultWorkflow)
	}
	if err := config.Validate(cfg); err != nil {
		t.Errorf("Validate(Default()) = %v, want nil", err)
	}
}

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	yaml := `
server:
  listen_addr: ":9090"
  log_level: debug
engine:
  review_threshold: 0.8
  default_workflow: vital-signs
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want :9090", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("LogLevel = %q, want debug", cfg.Server.LogLevel)
	}
	if cfg.Engine.ReviewThreshold != 0.8 {
		t.Errorf("ReviewThreshold = %v, want 0.8", cfg.Engine.ReviewThreshold)
	}
	// Unset fields fall back to defaults.
	if cfg.Engine.MatchThreshold != config.DefaultMatchThreshold {
		t.Errorf("MatchThreshold = %v, want default", cfg.Engine.MatchThreshold)
	}
	if cfg.Engine.DefaultWorkflow != workflow.VitalSigns {
		t.Errorf("DefaultWorkflow = %q, want vital-signs", cfg.Engine.DefaultWorkflow)
	}
}

func TestLoadFromReader_EmptyUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Engine.ReviewThreshold != config.DefaultReviewThreshold {
		t.Errorf("ReviewThreshold = %v, want default", cfg.Engine.ReviewThreshold)
	}
}

func TestLoadFromReader_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("server:\n  listne_addr: \":9090\"\n"))
	if err == nil {
		t.Fatalf("LoadFromReader accepted a misspelled key, want error")
	}
}

func TestLoadFromReader_ValidationJoinsAllFailures(t *testing.T) {
	t.Parallel()

	yaml := `
server:
  log_level: loud
engine:
  review_threshold: 1.5
  match_threshold: 2
  default_workflow: nope
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatalf("LoadFromReader: err=nil, want validation failure")
	}
	for _, fragment := range []string{"log_level", "review_threshold", "match_threshold", "default_workflow"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q does not mention %s", err, fragment)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load = %v, want os.ErrNotExist in chain", err)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "engine:\n  review_threshold: 0.65\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.ReviewThreshold != 0.65 {
		t.Errorf("ReviewThreshold = %v, want 0.65", cfg.Engine.ReviewThreshold)
	}
}
