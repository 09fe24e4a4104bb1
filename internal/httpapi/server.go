// Package httpapi is the HTTP/JSON control surface described in SPEC_FULL.md §6: sources,
// studio monitors, the matrix (source slots, destinations, routes), and preview.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/e7canasta/matrixrouter/internal/discovery"
	"github.com/e7canasta/matrixrouter/internal/matrix"
	"github.com/e7canasta/matrixrouter/internal/preview"
)

// Server wires the matrix, discovery, and preview components to HTTP handlers.
type Server struct {
	matrix    *matrix.Matrix
	discovery *discovery.Discovery
	preview   *preview.Sampler
	reconcile func()
	log       *slog.Logger
	registry  *prometheus.Registry

	httpSrv *http.Server
}

// New constructs a Server. reconcile is invoked after mutations that could orphan a pooled
// receiver (unassign slot, remove destination) — see SPEC_FULL.md §4.4.
func New(m *matrix.Matrix, d *discovery.Discovery, p *preview.Sampler, reconcile func(), registry *prometheus.Registry, log *slog.Logger, rateLimitPerMinute int) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{matrix: m, discovery: d, preview: p, reconcile: reconcile, log: log, registry: registry}
	router := chi.NewRouter()
	router.Use(corsMiddleware)
	limit := httprate.Limit(
		rateLimitPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
	// Only mutating requests count against the per-IP limit; GETs pass straight through.
	router.Use(func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	})

	router.Get("/api/health", s.handleHealth)
	router.Get("/api/sources", s.handleSources)
	router.Get("/api/studio-monitors", s.handleStudioMonitors)
	router.Post("/api/studio-monitors/reset", s.handleStudioMonitorsReset)

	router.Get("/api/matrix/source-slots", s.handleGetSourceSlots)
	router.Post("/api/matrix/source-slots/assign", s.handleAssignSourceSlot)
	router.Delete("/api/matrix/source-slots/{n}", s.handleUnassignSourceSlot)

	router.Get("/api/matrix/destinations", s.handleGetDestinations)
	router.Post("/api/matrix/destinations", s.handleCreateDestination)
	router.Delete("/api/matrix/destinations/{n}", s.handleRemoveDestination)
	router.Post("/api/matrix/destinations/{n}/unassign", s.handleUnassignDestination)

	router.Get("/api/matrix/routes", s.handleGetRoutes)
	router.Post("/api/matrix/routes", s.handleCreateRoute)
	router.Delete("/api/matrix/routes", s.handleRemoveRoute)
	router.Post("/api/matrix/routes/multiple", s.handleCreateMultipleRoutes)
	router.Delete("/api/matrix/routes/source/{n}", s.handleRemoveAllRoutesFromSource)
	router.Get("/api/matrix/routes/source/{n}", s.handleGetDestinationsForSource)

	router.Post("/api/preview/set-source", s.handlePreviewSetSource)
	router.Get("/api/preview/current-source", s.handlePreviewCurrentSource)
	router.Get("/api/preview/image", s.handlePreviewImage)
	router.Post("/api/preview/clear", s.handlePreviewClear)

	if registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	s.httpSrv = &http.Server{Handler: router}
	return s
}

// Start listens on addr in a background goroutine. errCh receives only a real
// ListenAndServe failure: neither nil nor http.ErrServerClosed (the result of a clean Stop)
// is ever sent.
func (s *Server) Start(addr string, errCh chan<- error) {
	s.httpSrv.Addr = addr
	go func() {
		s.log.Info("httpapi: listening", "addr", addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
}

// Stop gracefully shuts the HTTP server down within ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, message string, extra map[string]any) {
	body := map[string]any{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// statusForError classifies a matrix error per the taxonomy in SPEC_FULL.md §7.
func statusForError(err error) int {
	switch {
	case errors.Is(err, matrix.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, matrix.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, matrix.ErrResourceCreate):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
