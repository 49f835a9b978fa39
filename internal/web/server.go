// Package web provides the HTTP server and handlers for the buyer lead API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/JonMunkholm/buyerleads/internal/auth"
	"github.com/JonMunkholm/buyerleads/internal/config"
	"github.com/JonMunkholm/buyerleads/internal/core"
	"github.com/JonMunkholm/buyerleads/internal/logging"
	"github.com/JonMunkholm/buyerleads/internal/metrics"
	"github.com/JonMunkholm/buyerleads/internal/ratelimit"
	"github.com/JonMunkholm/buyerleads/internal/web/middleware"
)

// UserStore resolves login emails to users.
type UserStore interface {
	UpsertUser(ctx context.Context, email, name string) (auth.User, error)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Service *core.Service
	Users   UserStore
	Tokens  *auth.TokenManager
	Metrics *metrics.Metrics

	// IPLimiter throttles all routes per client address. Nil disables it.
	IPLimiter ratelimit.Limiter

	// Checks are run by /healthz, keyed by dependency name.
	Checks map[string]HealthCheck
}

// Server is the HTTP server for the buyer lead API.
type Server struct {
	deps   Deps
	cfg    *config.Config
	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server with middleware and routes installed.
func NewServer(deps Deps, cfg *config.Config) *Server {
	s := &Server{
		deps:   deps,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger(s.deps.Metrics))
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(requestMetadata)

	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	if len(s.cfg.Security.CORSOrigins) > 0 {
		s.router.Use(cors.New(cors.Options{
			AllowedOrigins:   s.cfg.Security.CORSOrigins,
			AllowCredentials: true,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "HX-Request"},
			ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		}).Handler)
	}

	if s.cfg.Rate.Enabled && s.deps.IPLimiter != nil {
		s.router.Use(middleware.IPRateLimit(s.deps.IPLimiter))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.deps.Metrics.Handler())

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(middleware.RequireUser(s.deps.Tokens)).Get("/me", s.handleMe)
	})

	s.router.Route("/api/buyers", func(r chi.Router) {
		r.Use(middleware.RequireUser(s.deps.Tokens))

		r.Get("/", s.handleListBuyers)
		r.Post("/", s.handleCreateBuyer)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Post("/import/check", s.handleCheckImport)

		r.Get("/{id}", s.handleGetBuyer)
		r.Put("/{id}", s.handleUpdateBuyer)
		r.Delete("/{id}", s.handleDeleteBuyer)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// handleHealth runs every dependency check with a short deadline.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(s.deps.Checks))
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			logging.FromContext(ctx).Warn("health check failed", "dependency", name, "error", err)
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, r, status, map[string]any{
		"status":  overall,
		"checks":  results,
		"imports": s.deps.Service.ImportStatus(),
	})
}

// writeJSON encodes v with the given status. Encoding errors are logged
// since the headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
