// Package health provides HTTP liveness and readiness handlers for the
// dictascribe service.
//
//   - /healthz answers 200 whenever the process can serve HTTP.
//   - /readyz answers 200 only when every registered probe passes, and
//     reports each probe's outcome in the JSON body.
//
// [CatalogProbe] is the built-in probe: it confirms that every workflow's
// field catalog loaded and carries at least one label phrase, which is the
// precondition for any transcript to be segmented at all.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/carevox/dictascribe/pkg/catalog"
	"github.com/carevox/dictascribe/pkg/workflow"
)

// probeTimeout bounds a single readiness probe.
const probeTimeout = 5 * time.Second

// Probe is a named readiness check. Probe functions must honour context
// cancellation and return nil when the dependency is usable.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// CatalogProbe verifies that every known workflow has a populated field
// catalog with scannable label phrases.
func CatalogProbe() Probe {
	return Probe{
		Name: "catalog",
		Check: func(ctx context.Context) error {
			for _, t := range workflow.All() {
				if err := ctx.Err(); err != nil {
					return err
				}
				if len(catalog.Fields(t)) == 0 {
					return fmt.Errorf("workflow %q has no fields", t)
				}
				if len(catalog.LabelPhrases(t)) == 0 {
					return fmt.Errorf("workflow %q has no label phrases", t)
				}
			}
			return nil
		},
	}
}

type report struct {
	Status string            `json:"status"`
	Probes map[string]string `json:"probes,omitempty"`
}

// Handler serves the /healthz and /readyz endpoints. The probe list is fixed
// at construction time, so the handler is safe for concurrent use.
type Handler struct {
	probes []Probe
}

// New creates a [Handler] evaluating the given probes, in order, on each
// /readyz request.
func New(probes ...Probe) *Handler {
	p := make([]Probe, len(probes))
	copy(p, probes)
	return &Handler{probes: p}
}

// Register mounts the handler's endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/readyz", h.Readyz)
}

// Healthz is the liveness probe. It always returns 200.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, report{Status: "ok"})
}

// Readyz evaluates every registered probe under a [probeTimeout] deadline and
// returns 503 when any of them fails.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	probes := make(map[string]string, len(h.probes))
	ok := true

	for _, p := range h.probes {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := p.Check(ctx)
		cancel()

		if err != nil {
			probes[p.Name] = "fail: " + err.Error()
			ok = false
		} else {
			probes[p.Name] = "ok"
		}
	}

	status := http.StatusOK
	rep := report{Status: "ok", Probes: probes}
	if !ok {
		status = http.StatusServiceUnavailable
		rep.Status = "fail"
	}
	writeJSON(w, status, rep)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
