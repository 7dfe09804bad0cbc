// Package web exposes the core operations over HTTP. Handlers are thin
// wrappers: all protocol behavior lives in truststore, chain, probe,
// and compare.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/druarnfield/rootprobe/internal/chain"
	"github.com/druarnfield/rootprobe/internal/probe"
	"github.com/druarnfield/rootprobe/internal/truststore"
)

// Server wires the core components to HTTP routes.
type Server struct {
	store    *truststore.Store
	resolver *chain.Resolver
	probes   probe.Runner
	logger   *slog.Logger

	streamFactory func(sink probe.Sink) probe.Runner
}

// NewServer creates a Server over the given components.
func NewServer(store *truststore.Store, resolver *chain.Resolver, probes probe.Runner, logger *slog.Logger) *Server {
	return &Server{
		store:    store,
		resolver: resolver,
		probes:   probes,
		logger:   logger,
	}
}

// Routes builds the chi router for the API surface.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/roots", s.handleListRoots)
		r.Get("/roots/check", s.handleCheck)
		r.Get("/resolve", s.handleResolve)
		r.Post("/probe", s.handleProbe)
		r.HandleFunc("/probe/stream", s.handleProbeStream)
	})

	return r
}

// ListenAndServe runs the HTTP server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string, port int) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", addr, port),
		Handler:           s.Routes(),
		IdleTimeout:       time.Minute,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		// Long enough for a full 30s probe plus output delivery.
		WriteTimeout: 45 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("webserver listening", slog.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleListRoots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListAll())
}

// handleCheck serves both lookup modes: ?thumbprint= or ?subject=.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	thumbprint := r.URL.Query().Get("thumbprint")
	subject := r.URL.Query().Get("subject")

	switch {
	case thumbprint != "":
		writeJSON(w, http.StatusOK, s.store.FindByThumbprint(thumbprint))
	case subject != "":
		writeJSON(w, http.StatusOK, s.store.FindBySubject(subject))
	default:
		writeError(w, http.StatusBadRequest, "provide a thumbprint or subject query parameter")
	}
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	host := r.URL.Query().Get("host")
	if strings.TrimSpace(host) == "" {
		writeError(w, http.StatusBadRequest, "provide a host query parameter")
		return
	}

	writeJSON(w, http.StatusOK, s.resolver.ResolveRoot(r.Context(), host))
}

type probeRequest struct {
	Target  string `json:"target"`
	Backend string `json:"backend"`
}

// handleProbe validates the request before any process is spawned: an
// empty target is rejected outright.
func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	var req probeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Target) == "" {
		writeError(w, http.StatusBadRequest, "target must not be empty")
		return
	}

	backend, err := probe.ParseBackend(req.Backend)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.probes.Run(r.Context(), req.Target, backend))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
