package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/foliohq/folio/internal/auth"
	"github.com/foliohq/folio/internal/config"
	"github.com/foliohq/folio/internal/handler"
	"github.com/foliohq/folio/internal/middleware"
	"github.com/foliohq/folio/internal/store"
	"github.com/foliohq/folio/internal/token"
)

type Server struct {
	db          *sql.DB
	authH       *handler.AuthHandler
	projectH    *handler.ProjectHandler
	issuer      *token.Issuer
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// New wires the stores, the token issuer, and the auth protocol together.
// The signing secret and every validity window come from cfg; nothing is
// read from the environment here.
func New(db *sql.DB, cfg *config.Config, notifier auth.Notifier, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	projectStore := store.NewProjectStore(db)

	issuer := token.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenValidity)
	resetMgr := auth.NewResetManager(userStore, notifier, cfg.ResetCodeTTL)
	authSvc := auth.NewService(userStore, issuer, resetMgr, logger.With("component", "auth"))

	return &Server{
		db:          db,
		authH:       handler.NewAuthHandler(authSvc, logger.With("component", "auth_handler")),
		projectH:    handler.NewProjectHandler(projectStore, logger.With("component", "project_handler")),
		issuer:      issuer,
		rateLimiter: middleware.NewRateLimiter(10, time.Minute),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Public auth routes, rate-limited by client IP
	mux.Handle("POST /auth/register", s.rateLimiter.Limit(http.HandlerFunc(s.authH.Register)))
	mux.Handle("POST /auth/login", s.rateLimiter.Limit(http.HandlerFunc(s.authH.Login)))
	mux.Handle("POST /auth/reset-password", s.rateLimiter.Limit(http.HandlerFunc(s.authH.RequestReset)))
	mux.Handle("POST /auth/verify-reset-code", s.rateLimiter.Limit(http.HandlerFunc(s.authH.VerifyResetCode)))
	mux.Handle("POST /auth/set-new-password", s.rateLimiter.Limit(http.HandlerFunc(s.authH.CompleteReset)))

	// Project routes; listing is public, mutations need a valid token
	guard := middleware.RequireAuth(s.issuer, s.logger.With("component", "auth_middleware"))
	mux.HandleFunc("GET /api/projects", s.projectH.List)
	mux.Handle("POST /api/projects", guard(http.HandlerFunc(s.projectH.Create)))
	mux.Handle("PUT /api/projects/{id}", guard(http.HandlerFunc(s.projectH.Update)))
	mux.Handle("DELETE /api/projects/{id}", guard(http.HandlerFunc(s.projectH.Delete)))

	chain := middleware.RequestLogger(s.logger.With("component", "http"))(mux)
	return middleware.CORS(chain)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
