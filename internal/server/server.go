package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/jonathan/hiring-tracker/internal/ats"
	"github.com/jonathan/hiring-tracker/internal/config"
	"github.com/jonathan/hiring-tracker/internal/server/middleware"
	"github.com/jonathan/hiring-tracker/internal/server/ratelimit"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// ShutdownTimeout bounds how long in-flight requests get to finish.
const ShutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	service     *ats.Service
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	corsOrigin  string
}

// Config holds server configuration
type Config struct {
	Port int
	// CORSOrigin is the single browser origin allowed to make credentialed requests.
	CORSOrigin   string
	CookieSecure bool
	JWT          *config.JWTConfig
	Password     *config.PasswordConfig
	// RateLimit defaults to ratelimit.NewConfig(0, 0) when nil.
	RateLimit *ratelimit.Config
}

// New creates a new server instance around the hiring service and account store.
func New(cfg Config, service *ats.Service, users DBClient) (*Server, error) {
	if cfg.JWT == nil {
		return nil, fmt.Errorf("JWT config is required")
	}
	if cfg.Password == nil {
		return nil, fmt.Errorf("password config is required")
	}
	if cfg.RateLimit == nil {
		cfg.RateLimit = ratelimit.NewConfig(0, 0)
	}

	s := &Server{
		service:     service,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		jwtService:  NewJWTService(cfg.JWT),
		userService: NewUserService(users, cfg.Password),
		corsOrigin:  cfg.CORSOrigin,
	}
	s.authHandler = NewAuthHandler(s, s.userService, s.jwtService, cfg.CookieSecure)

	validator := s.jwtService.AsTokenValidator()
	cookie := s.jwtService.CookieName()
	auth := middleware.AuthMiddleware(validator, cookie)
	optional := middleware.OptionalAuth(validator, cookie)
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Accounts
	mux.HandleFunc("POST /api/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", s.authHandler.Logout)
	mux.Handle("GET /api/me", protected(s.authHandler.Me))
	mux.Handle("PUT /api/me/password", protected(s.authHandler.UpdatePassword))
	mux.Handle("POST /api/admin/users", auth(middleware.RequireRole(types.RoleAdmin)(http.HandlerFunc(s.authHandler.CreateStaff))))

	// Jobs
	mux.HandleFunc("GET /api/jobs", s.handleListPublicJobs)
	mux.Handle("GET /api/jobs/{id}", optional(http.HandlerFunc(s.handleGetJob)))
	mux.Handle("POST /api/jobs", protected(s.handleCreateJob))
	mux.Handle("PATCH /api/jobs/{id}", protected(s.handleUpdateJob))
	mux.Handle("DELETE /api/jobs/{id}", protected(s.handleDeleteJob))
	mux.Handle("GET /api/recruiter/jobs", protected(s.handleListRecruiterJobs))
	mux.Handle("PATCH /api/admin/jobs/{id}/recruiter", protected(s.handleReassignRecruiter))

	// Applications
	mux.Handle("POST /api/applications", protected(s.handleApply))
	mux.Handle("GET /api/applications", protected(s.handleListApplications))
	mux.Handle("PATCH /api/applications", protected(s.handleUpdateApplication))
	mux.Handle("DELETE /api/applications", protected(s.handleDeleteApplication))
	mux.Handle("POST /api/applications/match", protected(s.handleMatch))
	mux.Handle("GET /api/recruiter/applications/recent", protected(s.handleRecentApplications))
	mux.Handle("POST /api/upload/cv", protected(s.handleUploadCV))

	// Rounds, interviews and decisions
	mux.Handle("GET /api/application-rounds", protected(s.handleListRounds))
	mux.Handle("POST /api/application-rounds", protected(s.handleAddRound))
	mux.Handle("PATCH /api/application-rounds", protected(s.handleUpdateRound))
	mux.Handle("DELETE /api/application-rounds", protected(s.handleDeleteRound))
	mux.Handle("POST /api/admin/interviews/schedule", protected(s.handleScheduleInterview))
	mux.Handle("PATCH /api/admin/interviews/schedule", protected(s.handleUpdateSchedule))
	mux.Handle("DELETE /api/admin/interviews/schedule", protected(s.handleCancelSchedule))
	mux.Handle("PATCH /api/admin/shortlist/decision", protected(s.handleDecision))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second, // match scoring waits on the LLM
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("[server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("[server] stopped")
	return nil
}

// Close stops background work without serving. Used when Run was never called.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS allows credentialed requests from the configured frontend origin only.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && origin == s.corsOrigin {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %s %d in %v", r.Method, r.URL.Path, r.RemoteAddr, rec.status, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID uses the remote IP. X-Forwarded-For is ignored since the
// server does not know which proxies to trust.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
