// Package web exposes a read-only HTTP API over the stores and the
// monitor: tenants, artifacts, baselines and on-demand drift reports.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/OlderMutt/Surface-Minder/internal/adapters/reporting"
	"github.com/OlderMutt/Surface-Minder/internal/core/ports"
	"github.com/OlderMutt/Surface-Minder/internal/core/services"
)

// Server handles HTTP connections.
type Server struct {
	Addr      string
	Snapshots ports.SnapshotStore
	Baselines ports.BaselineStore
	Monitor   *services.Monitor
	Kinds     []string // kind order used for on-demand drift checks

	pdf *reporting.PDFExporter
	srv *http.Server
}

// NewServer creates the API server.
func NewServer(addr string, snapshots ports.SnapshotStore, baselines ports.BaselineStore, monitor *services.Monitor, kinds []string) *Server {
	return &Server{
		Addr:      addr,
		Snapshots: snapshots,
		Baselines: baselines,
		Monitor:   monitor,
		Kinds:     kinds,
		pdf:       reporting.NewPDFExporter(),
	}
}

// Routes builds the router. Exposed for httptest.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/tenants", s.handleTenants).Methods(http.MethodGet)
	r.HandleFunc("/api/artifacts", s.handleArtifacts).Methods(http.MethodGet)
	r.HandleFunc("/api/baseline/{tenant}", s.handleBaseline).Methods(http.MethodGet)
	r.HandleFunc("/api/drift/{tenant}", s.handleDrift).Methods(http.MethodGet)
	r.HandleFunc("/api/drift/{tenant}/pdf", s.handleDriftPDF).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// Run starts the server and blocks until ctx is cancelled or the listener
// fails.
func (s *Server) Run(ctx context.Context) error {
	instrumented := otelhttp.NewHandler(s.Routes(), "surfaceminder-api")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumented,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("API server shutdown error", "error", err)
		}
	}()

	slog.Info("API server listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.Baselines.Tenants(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	if tenants == nil {
		tenants = []string{}
	}
	writeJSON(w, map[string]any{"tenants": tenants})
}

func (s *Server) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	artifacts, err := s.Snapshots.Artifacts(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"artifacts": artifacts})
}

func (s *Server) handleBaseline(w http.ResponseWriter, r *http.Request) {
	tenant := mux.Vars(r)["tenant"]
	snap, err := s.Baselines.BaselineFor(r.Context(), tenant)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"tenant":       tenant,
		"observations": snap.Observations(),
	})
}

func (s *Server) handleDrift(w http.ResponseWriter, r *http.Request) {
	tenant := mux.Vars(r)["tenant"]
	result, err := s.Monitor.Check(r.Context(), tenant, s.Kinds)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleDriftPDF(w http.ResponseWriter, r *http.Request) {
	tenant := mux.Vars(r)["tenant"]
	result, err := s.Monitor.Check(r.Context(), tenant, s.Kinds)
	if err != nil {
		httpError(w, err)
		return
	}
	data, err := s.pdf.ExportDriftReport(result)
	if err != nil {
		httpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=drift-report.pdf")
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func httpError(w http.ResponseWriter, err error) {
	slog.Error("API request failed", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
