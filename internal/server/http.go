// Package server exposes the recommendation pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vendormatch/recommender/internal/recommend"
)

// Recommender runs the recommendation pipeline for one query.
type Recommender interface {
	Run(ctx context.Context, query string, opts ...recommend.RunOption) recommend.State
}

// HTTPServer serves the recommendation API.
type HTTPServer struct {
	server *http.Server
	logger *slog.Logger
	port   int
}

// HTTPServerConfig holds configuration for the HTTP server.
type HTTPServerConfig struct {
	Port   int
	Logger *slog.Logger
}

// NewHTTPServer creates the HTTP server and mounts all routes.
func NewHTTPServer(cfg HTTPServerConfig, pipeline Recommender) *HTTPServer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLoggingMiddleware(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", healthCheckHandler())
	router.Get("/readyz", healthCheckHandler())
	router.Post("/v1/recommend", recommendHandler(pipeline, logger))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Two LLM calls per request
		IdleTimeout:  120 * time.Second,
	}

	return &HTTPServer{
		server: server,
		logger: logger,
		port:   cfg.Port,
	}
}

// Start begins serving. It blocks until the server stops.
func (s *HTTPServer) Start() error {
	s.logger.Info("HTTP server listening", "port", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// recommendRequest is the body of POST /v1/recommend. TopK is optional and
// capped server-side at the configured rerank top-k.
type recommendRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// recommendResponse is the reply: zero or more ranked vendors plus an
// optional degradation note. Intent is included so callers can see how the
// query was understood.
type recommendResponse struct {
	Query   string                     `json:"query"`
	Intent  *recommend.ExtractedIntent `json:"intent,omitempty"`
	Vendors []recommend.RankedVendor   `json:"vendors"`
	Error   string                     `json:"error,omitempty"`
}

func recommendHandler(pipeline Recommender, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recommendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		query := strings.TrimSpace(req.Query)
		if query == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		if req.TopK < 0 {
			writeError(w, http.StatusBadRequest, "top_k must be positive")
			return
		}

		var opts []recommend.RunOption
		if req.TopK > 0 {
			opts = append(opts, recommend.WithTopK(req.TopK))
		}

		state := pipeline.Run(r.Context(), query, opts...)

		resp := recommendResponse{
			Query:   state.Query,
			Intent:  state.Intent,
			Vendors: state.Ranked,
			Error:   state.Err,
		}
		if resp.Vendors == nil {
			resp.Vendors = []recommend.RankedVendor{}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func healthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLoggingMiddleware logs each request with its duration and status.
func requestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
