// Package session manages documentation-session lifecycle around the
// extraction engine. A session binds one workflow type to one growing
// transcript; switching workflows starts a new session and resets the
// engine's processing cursor.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/carevox/dictascribe/internal/observe"
	"github.com/carevox/dictascribe/pkg/engine"
	"github.com/carevox/dictascribe/pkg/workflow"
)

// tracerName is the instrumentation scope for session spans.
const tracerName = "github.com/carevox/dictascribe/internal/session"

// ErrNoActiveSession is returned when a transcript arrives outside a session.
var ErrNoActiveSession = errors.New("session: no active session")

// ErrSessionActive is returned by Start when a session is already open.
var ErrSessionActive = errors.New("session: a session is already active")

// Info holds metadata about an active documentation session.
type Info struct {
	// SessionID uniquely identifies this session.
	SessionID string

	// Workflow is the documentation workflow the session records.
	Workflow workflow.Type

	// StartedAt is when the session was started.
	StartedAt time.Time
}

// Manager owns the engine's per-session state. Only one session can be
// active at a time. All exported methods are safe for concurrent use.
type Manager struct {
	engine  *engine.Engine
	metrics *observe.Metrics
	tracer  trace.Tracer

	mu     sync.Mutex
	active bool
	info   Info
	form   map[string]any
}

// NewManager creates a Manager around eng. When metrics is nil the
// process-wide default instruments are used.
func NewManager(eng *engine.Engine, metrics *observe.Metrics) *Manager {
	if metrics == nil {
		metrics = observe.Default()
	}
	return &Manager{
		engine:  eng,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

// Start opens a documentation session for workflow t. It fails when a
// session is already active or t is unknown.
func (m *Manager) Start(ctx context.Context, t workflow.Type) (Info, error) {
	if !t.IsValid() {
		return Info{}, fmt.Errorf("session: unknown workflow %q", t)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return Info{}, ErrSessionActive
	}

	m.engine.Reset()
	m.active = true
	m.info = Info{
		SessionID: uuid.NewString(),
		Workflow:  t,
		StartedAt: time.Now(),
	}
	m.form = map[string]any{}

	m.metrics.ActiveSessions.Add(ctx, 1)
	slog.Info("session started", "session_id", m.info.SessionID, "workflow", t)
	return m.info, nil
}

// Stop closes the active session. Stopping when no session is active is a
// no-op.
func (m *Manager) Stop(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return
	}

	m.active = false
	m.metrics.ActiveSessions.Add(ctx, -1)
	slog.Info("session stopped", "session_id", m.info.SessionID)
	m.info = Info{}
	m.form = nil
}

// SwitchWorkflow closes the current session and opens a fresh one for t,
// resetting the engine cursor so no state leaks across workflows.
func (m *Manager) SwitchWorkflow(ctx context.Context, t workflow.Type) (Info, error) {
	m.Stop(ctx)
	return m.Start(ctx, t)
}

// Info returns the active session's metadata. The second return value is
// false when no session is open.
func (m *Manager) Info() (Info, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info, m.active
}

// Form returns a copy of the session's current form data.
func (m *Manager) Form() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]any, len(m.form))
	for k, v := range m.form {
		out[k] = v
	}
	return out
}

// ProcessTranscript runs one engine pass over the session's grown transcript
// and folds the resulting updates into the session form data.
func (m *Manager) ProcessTranscript(ctx context.Context, transcript string) (engine.Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return engine.Update{}, ErrNoActiveSession
	}

	ctx, span := m.tracer.Start(ctx, "session.process",
		trace.WithAttributes(
			attribute.String("workflow", string(m.info.Workflow)),
			attribute.Int("transcript_bytes", len(transcript)),
		),
	)
	defer span.End()

	start := time.Now()
	up := m.engine.Process(transcript, m.info.Workflow, m.form)
	elapsed := time.Since(start)

	for k, v := range up.Updates {
		m.form[k] = v
	}

	attrs := metric.WithAttributes(attribute.String("workflow", string(m.info.Workflow)))
	m.metrics.ParseDuration.Record(ctx, elapsed.Seconds(), attrs)
	m.metrics.SegmentsDetected.Add(ctx, int64(up.Segments), attrs)
	m.metrics.FieldsExtracted.Add(ctx, int64(up.Extractions), attrs)
	m.metrics.FieldsUpdated.Add(ctx, int64(len(up.Updates)), attrs)
	m.metrics.RangeRejections.Add(ctx, int64(up.RangeRejections), attrs)
	m.metrics.ReviewFlags.Add(ctx, int64(len(up.NeedsReview)), attrs)

	if len(up.Updates) > 0 {
		slog.Debug("transcript processed",
			"session_id", m.info.SessionID,
			"updates", len(up.Updates),
			"needs_review", len(up.NeedsReview),
			"duration", elapsed,
		)
	}
	return up, nil
}
