package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"facebook-scraper/internal/config"
	"facebook-scraper/pkg/types"
)

const shutdownTimeout = 30 * time.Second

// PostCollector runs one scrape job.
type PostCollector interface {
	Collect(ctx context.Context) []types.Post
}

type Server struct {
	collector PostCollector
	logger    *logrus.Logger
	name      string
	port      string
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewServer(collector PostCollector, logger *logrus.Logger, cfg config.ServiceConfig) *Server {
	return &Server{
		collector: collector,
		logger:    logger,
		name:      cfg.Name,
		port:      cfg.Port,
	}
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting API server on port %s", s.port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/", s.handleHealth)
	r.Get("/scrape-facebook", s.handleScrape)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).Round(time.Millisecond).String(),
		}).Info("Handled request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, HealthResponse{
		Status:  "ok",
		Message: s.name + " is running",
	})
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	posts := s.collector.Collect(r.Context())
	if posts == nil {
		posts = []types.Post{}
	}
	s.writeJSON(w, posts)
}

// writeJSON encodes the whole body first; an encoding failure is a 500.
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(data)
	if err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
		body = []byte(`{"error":"failed to encode response"}`)
		w.WriteHeader(http.StatusInternalServerError)
	}

	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Errorf("Failed to write response: %v", err)
	}
}
