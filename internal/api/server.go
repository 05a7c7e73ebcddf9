package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/nikbrunner/bmtag/internal/collect"
	"github.com/nikbrunner/bmtag/internal/model"
	"github.com/nikbrunner/bmtag/internal/organize"
)

// Analyzer collects and enriches bookmarks.
type Analyzer interface {
	Collect(ctx context.Context) ([]model.BookmarkRecord, collect.Stats, error)
	Analyze(ctx context.Context) (*collect.Analysis, error)
}

// Organizer rewrites browser stores from tagged records.
type Organizer interface {
	Organize(ctx context.Context, records []model.BookmarkRecord) organize.Report
}

// Params holds parameters for creating a Server.
type Params struct {
	Analyzer  Analyzer
	Organizer Organizer
	StaticDir string
	Logger    *slog.Logger
}

// Server serves the bookmark HTTP API.
type Server struct {
	analyzer  Analyzer
	organizer Organizer
	staticDir string
	logger    *slog.Logger
}

// NewServer creates a Server.
func NewServer(params Params) *Server {
	s := &Server{
		analyzer:  params.Analyzer,
		organizer: params.Organizer,
		staticDir: params.StaticDir,
		logger:    params.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Handler returns the routed handler with CORS, logging and recovery applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/analyze-bookmarks", s.AnalyzeBookmarks).Methods("POST")
	api.HandleFunc("/organize-bookmarks", s.OrganizeBookmarks).Methods("POST")
	api.HandleFunc("/search", s.Search).Methods("GET")

	r.HandleFunc("/health", s.Health).Methods("GET")

	if s.staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}

	r.Use(loggingMiddleware(s.logger))
	r.Use(recoveryMiddleware(s.logger))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	return c.Handler(r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
