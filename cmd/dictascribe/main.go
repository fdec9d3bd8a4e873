// Command dictascribe runs the transcript extraction engine as a line-based
// harness: every line on stdin grows the current transcript, and the
// resulting form-field updates are printed as JSON on stdout. A line of the
// form "workflow: <type>" switches to a new documentation session.
//
// The voice-capture layer, form UI, and export formatters live in other
// services; this binary exists for development, demos, and operational
// smoke tests of the engine itself.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/carevox/dictascribe/internal/config"
	"github.com/carevox/dictascribe/internal/health"
	"github.com/carevox/dictascribe/internal/observe"
	"github.com/carevox/dictascribe/internal/session"
	"github.com/carevox/dictascribe/pkg/engine"
	"github.com/carevox/dictascribe/pkg/workflow"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ─────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	workflowFlag := flag.String("workflow", "", "workflow type for the initial session (overrides config default)")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	haveConfigFile := true
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("config file not found, using defaults", "path", *configPath)
			cfg = config.Default()
			haveConfigFile = false
		} else {
			fmt.Fprintf(os.Stderr, "dictascribe: %v\n", err)
			return 1
		}
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	wf := cfg.Engine.DefaultWorkflow
	if *workflowFlag != "" {
		wf = workflow.Type(*workflowFlag)
		if !wf.IsValid() {
			fmt.Fprintf(os.Stderr, "dictascribe: unknown workflow %q\n", *workflowFlag)
			return 1
		}
	}

	slog.Info("dictascribe starting",
		"config", *configPath,
		"workflow", wf,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shCtx); err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()

	// ── Engine and session ────────────────────────────────────────────────────
	eng := engine.New(
		engine.WithReviewThreshold(cfg.Engine.ReviewThreshold),
		engine.WithMatchThreshold(cfg.Engine.MatchThreshold),
	)
	mgr := session.NewManager(eng, observe.Default())

	// Hot-reload the tunable thresholds when the config file changes.
	if haveConfigFile {
		watcher, err := config.NewWatcher(*configPath, func(_, next *config.Config) {
			eng.SetThresholds(next.Engine.ReviewThreshold, next.Engine.MatchThreshold)
		})
		if err != nil {
			slog.Warn("config watcher disabled", "err", err)
		} else {
			defer watcher.Stop()
		}
	}

	info, err := mgr.Start(ctx, wf)
	if err != nil {
		slog.Error("failed to start session", "err", err)
		return 1
	}
	slog.Info("session ready", "session_id", info.SessionID, "workflow", info.Workflow)

	g, ctx := errgroup.WithContext(ctx)

	// ── Metrics and health endpoints ──────────────────────────────────────────
	if cfg.Server.ListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		health.New(health.CatalogProbe()).Register(mux)
		srv := &http.Server{Addr: cfg.Server.ListenAddr, Handler: mux}

		g.Go(func() error {
			slog.Info("metrics endpoint listening", "addr", cfg.Server.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shCtx)
		})
	}

	// ── Transcript loop ───────────────────────────────────────────────────────
	g.Go(func() error {
		defer mgr.Stop(context.Background())
		return transcriptLoop(ctx, mgr, os.Stdin, os.Stdout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("shutting down after error", "err", err)
		return 1
	}
	slog.Info("dictascribe stopped")
	return 0
}

// output is the JSON document printed per processed line.
type output struct {
	Updates     map[string]any     `json:"updates"`
	Confidence  map[string]float64 `json:"confidence"`
	AutoFilled  []string           `json:"autoFilled,omitempty"`
	NeedsReview []string           `json:"needsReview,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
	Unmatched   string             `json:"unmatched,omitempty"`
}

// transcriptLoop reads lines from r, grows the session transcript, and
// writes one JSON update document per line to w. "workflow: <type>" lines
// switch sessions instead of growing the transcript.
func transcriptLoop(ctx context.Context, mgr *session.Manager, r *os.File, w *os.File) error {
	enc := json.NewEncoder(w)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var transcript strings.Builder

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(line, "workflow:"); ok {
			t := workflow.Type(strings.TrimSpace(rest))
			if !t.IsValid() {
				slog.Warn("unknown workflow, keeping current session", "workflow", t)
				continue
			}
			info, err := mgr.SwitchWorkflow(ctx, t)
			if err != nil {
				return err
			}
			transcript.Reset()
			slog.Info("switched workflow", "session_id", info.SessionID, "workflow", t)
			continue
		}

		if transcript.Len() > 0 {
			transcript.WriteByte(' ')
		}
		transcript.WriteString(line)

		up, err := mgr.ProcessTranscript(ctx, transcript.String())
		if err != nil {
			return err
		}
		if err := enc.Encode(output{
			Updates:     up.Updates,
			Confidence:  up.Confidence,
			AutoFilled:  up.AutoFilled,
			NeedsReview: up.NeedsReview,
			Warnings:    up.Warnings,
			Unmatched:   up.Unmatched,
		}); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
