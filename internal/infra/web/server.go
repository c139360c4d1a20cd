package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mentivio-widget/internal/application"
	"mentivio-widget/internal/domain/ports/adapter"
)

// Server is the ops surface: health, metrics, the user-data export
// download, and the cached compliance status. Everything under /api/v1
// sits behind a bearer token.
type Server struct {
	facade *application.WidgetFacade
	remote adapter.RemoteBackend
	apiKey string
	log    *zerolog.Logger
}

func NewServer(facade *application.WidgetFacade, remote adapter.RemoteBackend, apiKey string, logger *zerolog.Logger) *Server {
	srvLog := logger.With().Str("component", "OpsServer").Logger()
	return &Server{facade: facade, remote: remote, apiKey: apiKey, log: &srvLog}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/export", s.handleExport)
		r.Get("/compliance", s.handleCompliance)
	})
	return r
}

// authMiddleware provides simple Bearer token authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("ops API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "bearer") {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}
		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	artifact, err := s.facade.Export(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("export failed")
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		`attachment; filename="mentivio-export-`+artifact.GeneratedAt.Format("2006-01-02")+`.json"`)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(artifact); err != nil {
		s.log.Error().Err(err).Msg("export encode failed")
	}
}

func (s *Server) handleCompliance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	status, err := s.remote.ComplianceStatus(ctx)
	if err != nil {
		http.Error(w, "compliance status unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}
