// Package server exposes the build tools over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/geostack-labs/geoforge/internal/remote"
	"github.com/geostack-labs/geoforge/internal/service"
)

// Directory is the slice of the remote client the server needs beyond the
// service itself: workspace and object browsing.
type Directory interface {
	ListWorkspaces(ctx context.Context) ([]remote.Workspace, error)
	ListObjects(ctx context.Context, workspaceID string, opts remote.ListObjectsOptions) ([]remote.ObjectSummary, error)
	GetObject(ctx context.Context, workspaceID, objectID, version string) (*remote.ObjectSummary, error)
}

// Server serves the build tools over HTTP.
type Server struct {
	svc    *service.Service
	dir    Directory
	addr   string
	logger *slog.Logger
}

// Config holds configuration for the tool server.
type Config struct {
	Service   *service.Service
	Directory Directory
	Addr      string
	Logger    *slog.Logger
}

// NewServer creates a new tool server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		svc:    cfg.Service,
		dir:    cfg.Directory,
		addr:   cfg.Addr,
		logger: logger,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		s.requestLogger,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)
	r.Get("/workspaces", s.handleWorkspaces)
	r.Get("/workspaces/{workspaceID}/objects", s.handleObjects)
	r.Get("/workspaces/{workspaceID}/objects/{objectID}", s.handleObject)

	r.Route("/tools", func(r chi.Router) {
		r.Post("/pointset", handleTool(s, s.svc.CreatePointset))
		r.Post("/lineset", handleTool(s, s.svc.CreateLineSegments))
		r.Post("/holes", handleTool(s, s.svc.CreateDownholeCollection))
		r.Post("/intervals", handleTool(s, s.svc.CreateDownholeIntervals))
	})

	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting tool server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down tool server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// handleTool decodes a request body into R, runs the tool, and writes the
// outcome. The HTTP status is 200 for every completed build; the outcome
// status field tells the caller what happened.
func handleTool[R any](s *Server, run func(context.Context, R) *service.Outcome) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req R
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		s.writeJSON(w, http.StatusOK, run(r.Context(), req))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWorkspaces(w http.ResponseWriter, r *http.Request) {
	if s.dir == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no remote client configured")
		return
	}
	ws, err := s.dir.ListWorkspaces(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"workspaces": ws})
}

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	if s.dir == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no remote client configured")
		return
	}
	opts := remote.ListObjectsOptions{SchemaID: r.URL.Query().Get("schema")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		opts.Limit = limit
	}

	objects, err := s.dir.ListObjects(r.Context(), chi.URLParam(r, "workspaceID"), opts)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"objects": objects})
}

func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	if s.dir == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no remote client configured")
		return
	}
	obj, err := s.dir.GetObject(r.Context(),
		chi.URLParam(r, "workspaceID"), chi.URLParam(r, "objectID"), r.URL.Query().Get("version"))
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, obj)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs one line per request with method, path, status and
// duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
