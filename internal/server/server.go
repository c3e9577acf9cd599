// Package server exposes the analysis service over a thin HTTP JSON
// surface. All analytics live behind the AnalysisService interface.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/quantlens/quantlens/internal/common"
	"github.com/quantlens/quantlens/internal/interfaces"
	"github.com/quantlens/quantlens/internal/models"
)

// maxStoredResults bounds the in-memory analysis history. The oldest
// analysis is evicted first; its artifacts become unavailable.
const maxStoredResults = 64

// Server hosts the REST API and keeps completed analyses in memory so
// their report artifacts can be fetched by ID.
type Server struct {
	cfg     *common.Config
	logger  *common.Logger
	service interfaces.AnalysisService

	httpServer *http.Server

	mu          sync.RWMutex
	results     map[string]*models.AnalysisResult
	resultOrder []string
}

// New creates a Server wired to the analysis service.
func New(cfg *common.Config, logger *common.Logger, service interfaces.AnalysisService) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		service: service,
		results: make(map[string]*models.AnalysisResult),
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return s
}

// Handler builds the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/analysis", s.handleAnalysis)
	mux.HandleFunc("/api/analysis/", s.handleAnalysisArtifact)
	return s.withLogging(mux)
}

// Start begins serving; it blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// withLogging logs each request with its duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(started)).
			Msg("request handled")
	})
}

// storeResult retains a completed analysis for artifact downloads,
// evicting the oldest entries beyond maxStoredResults.
func (s *Server) storeResult(result *models.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.results[result.ID]; !exists {
		s.resultOrder = append(s.resultOrder, result.ID)
	}
	s.results[result.ID] = result
	for len(s.resultOrder) > maxStoredResults {
		delete(s.results, s.resultOrder[0])
		s.resultOrder = s.resultOrder[1:]
	}
}

// getResult looks up a completed analysis by ID.
func (s *Server) getResult(id string) (*models.AnalysisResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	return result, ok
}
