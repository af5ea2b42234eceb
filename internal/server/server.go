//go:generate go run github.com/golang/mock/mockgen -source=${GOFILE} -destination=zz_generated_mocks_test.go -package=server Uploader

package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ccfrost/albumdrop/internal/config"
	"github.com/ccfrost/albumdrop/internal/lib"
)

const serviceName = "albumdrop"

// Uploader is the part of lib.Service the HTTP layer uses.
type Uploader interface {
	UploadPhotoFromURL(ctx context.Context, req lib.UploadRequest) (*lib.UploadResult, error)
	RateLimitStats() lib.BudgetStats
	Links(result *lib.UploadResult) (photoURL, albumURL string)
}

// Server is the HTTP front end for uploads.
type Server struct {
	uploader Uploader
	backend  string
	missing  []string
	now      func() time.Time
	mux      *http.ServeMux
}

// New creates a new Server with all routes registered.
func New(uploader Uploader, cfg config.AlbumdropConfig) *Server {
	missing := cfg.MissingSettings()
	if missing == nil {
		missing = []string{}
	}
	s := &Server{
		uploader: uploader,
		backend:  cfg.Backend,
		missing:  missing,
		now:      time.Now,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler. Every response allows any origin, and
// preflight requests are answered here for all paths.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleHealth)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Methods are checked by the handler so that the 405 body is JSON.
	s.mux.HandleFunc("/upload", s.handleUpload)

	s.mux.HandleFunc("/", s.handleNotFound)
}

type healthResponse struct {
	Status     string          `json:"status"`
	Service    string          `json:"service"`
	Backend    string          `json:"backend"`
	Configured bool            `json:"configured"`
	Missing    []string        `json:"missing"`
	RateLimit  lib.BudgetStats `json:"rateLimit"`
	Timestamp  string          `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Service:    serviceName,
		Backend:    s.backend,
		Configured: len(s.missing) == 0,
		Missing:    s.missing,
		RateLimit:  s.uploader.RateLimitStats(),
		Timestamp:  s.timestamp(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, "not_found", "no route for "+r.Method+" "+r.URL.Path)
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

type errorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, errType, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Timestamp: s.timestamp(),
		Type:      errType,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Failed to write response",
			slog.String("error", err.Error()))
	}
}

// Serve serves on l until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(l)
	}()
	logger.Info("Listening",
		slog.String("addr", l.Addr().String()),
		slog.String("backend", s.backend))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
