package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hirely/hirely/internal/cache"
	"github.com/hirely/hirely/internal/config"
	"github.com/hirely/hirely/internal/logging"
	"github.com/hirely/hirely/internal/notify"
	"github.com/hirely/hirely/internal/server/middleware"
	"github.com/hirely/hirely/internal/server/ratelimit"
	"github.com/hirely/hirely/internal/storage"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	jobCache    cache.JobListCache
	blobs       storage.BlobStore
	logger      *logrus.Entry
	validator   *validator.Validate
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	profiles    *ProfileService
	jobs        *JobService
	hiring      *HiringService

	publicBaseURL string
	corsOrigin    string
}

// Config holds server configuration
type Config struct {
	Port          int
	PublicBaseURL string
	CORSOrigin    string
	MailFrom      string
}

// Deps are the collaborators of the server. Store, JWT and Password are
// required; the rest fall back to no-op or default implementations.
type Deps struct {
	Store       Store
	Cache       cache.JobListCache
	Blobs       storage.BlobStore // nil disables uploads
	Mailer      notify.Mailer
	Logger      *logrus.Logger
	RateLimiter *ratelimit.Limiter
	JWT         *config.JWTConfig
	Password    *config.PasswordConfig
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("JWT config is required")
	}
	if deps.Password == nil {
		return nil, fmt.Errorf("password config is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NoopCache{}
	}
	if deps.RateLimiter == nil {
		deps.RateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	}
	log := logging.Component(deps.Logger, "server")
	if deps.Mailer == nil {
		deps.Mailer = notify.DisabledMailer{Logger: logging.Component(deps.Logger, "mailer")}
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = config.DefaultPublicBaseURL
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = config.DefaultCORSOrigin
	}

	s := &Server{
		store:         deps.Store,
		jobCache:      deps.Cache,
		blobs:         deps.Blobs,
		logger:        log,
		validator:     newValidator(),
		rateLimiter:   deps.RateLimiter,
		publicBaseURL: cfg.PublicBaseURL,
		corsOrigin:    cfg.CORSOrigin,
	}

	s.jwtService = NewJWTService(deps.JWT)
	s.userService = NewUserService(deps.Store, deps.Password)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService, s.validator, log)

	dispatcher := notify.NewDispatcher(deps.Store, deps.Mailer, cfg.MailFrom, logging.Component(deps.Logger, "notify"))
	s.profiles = NewProfileService(deps.Store, log)
	s.jobs = NewJobService(deps.Store, deps.Cache, s.profiles, log)
	s.hiring = NewHiringService(deps.Store, s.profiles, dispatcher, log)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(s.routes())))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the full middleware chain, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *http.ServeMux {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	optional := middleware.OptionalAuth(s.jwtService.AsTokenValidator())
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Public
	mux.HandleFunc("POST /v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /v1/auth/login", s.handleLogin)
	mux.HandleFunc("GET /v1/jobs", s.handleListJobs)
	mux.HandleFunc("GET /v1/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("GET /v1/jobs/{id}/meta", s.handleJobMeta)
	mux.HandleFunc("GET /v1/companies/{id}", s.handleGetCompany)
	mux.HandleFunc("GET /v1/companies/{id}/jobs", s.handleListCompanyJobs)
	mux.HandleFunc("GET /v1/companies/{id}/meta", s.handleCompanyMeta)
	mux.Handle("POST /v1/feedback", optional(http.HandlerFunc(s.handleFeedback)))

	// Account
	mux.Handle("GET /v1/users/me", protect(s.handleGetMe))
	mux.Handle("PUT /v1/users/me", protect(s.handleUpdateMe))
	mux.Handle("PUT /v1/users/me/password", protect(s.handleUpdatePassword))

	// Profile and dashboard
	mux.Handle("GET /v1/me/profile", protect(s.handleGetProfile))
	mux.Handle("PUT /v1/me/profile", protect(s.handleUpdateProfile))
	mux.Handle("PUT /v1/me/resume", protect(s.handleUploadResume))
	mux.Handle("GET /v1/me/dashboard", protect(s.handleDashboard))

	// Companies
	mux.Handle("POST /v1/companies", protect(s.handleCreateCompany))
	mux.Handle("PUT /v1/companies/{id}", protect(s.handleUpdateCompany))
	mux.Handle("PUT /v1/companies/{id}/logo", protect(s.handleUploadLogo))

	// Jobs
	mux.Handle("POST /v1/jobs", protect(s.handleCreateJob))
	mux.Handle("PUT /v1/jobs/{id}", protect(s.handleUpdateJob))
	mux.Handle("POST /v1/jobs/{id}/close", protect(s.handleCloseJob))
	mux.Handle("POST /v1/jobs/{id}/reopen", protect(s.handleReopenJob))
	mux.Handle("DELETE /v1/jobs/{id}", protect(s.handleDeleteJob))
	mux.Handle("GET /v1/employer/jobs", protect(s.handleListEmployerJobs))

	// Applications
	mux.Handle("GET /v1/jobs/{id}/applications", protect(s.handleListJobApplications))
	mux.Handle("POST /v1/jobs/{id}/applications", protect(s.handleApply))
	mux.Handle("GET /v1/me/applications", protect(s.handleListMyApplications))
	mux.Handle("GET /v1/applications/{id}", protect(s.handleGetApplication))
	mux.Handle("PUT /v1/applications/{id}/status", protect(s.handleUpdateApplicationStatus))

	// Saved jobs
	mux.Handle("GET /v1/me/saved-jobs", protect(s.handleListSavedJobs))
	mux.Handle("PUT /v1/me/saved-jobs/{job_id}", protect(s.handleSaveJob))
	mux.Handle("DELETE /v1/me/saved-jobs/{job_id}", protect(s.handleUnsaveJob))

	// Notifications
	mux.Handle("GET /v1/me/notifications", protect(s.handleListNotifications))
	mux.Handle("POST /v1/me/notifications/{id}/read", protect(s.handleMarkNotificationRead))
	mux.Handle("POST /v1/me/notifications/read-all", protect(s.handleMarkAllNotificationsRead))

	return mux
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.httpServer.Addr).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.release()
		return fmt.Errorf("server error: %w", err)
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.release()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.release()
	s.logger.Info("server stopped")
	return nil
}

// release stops the rate limiter and closes the cache and the store
func (s *Server) release() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if err := s.jobCache.Close(); err != nil {
		s.logger.WithError(err).Warn("failed to close job cache")
	}
	s.store.Close()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if s.corsOrigin != "*" {
			w.Header().Add("Vary", "Origin")
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
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		entry := s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"bytes":       rec.bytes,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_addr": r.RemoteAddr,
		})
		switch {
		case rec.status >= 500:
			entry.Error("request failed")
		case rec.status >= 400:
			entry.Info("request rejected")
		default:
			entry.Debug("request completed")
		}
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, s.logger, status, data)
}

// writeError maps err to its status code and writes the error body
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, s.logger, err)
}

func writeJSON(w http.ResponseWriter, logger *logrus.Entry, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WithError(err).Warn("failed to encode JSON response")
	}
}

// writeError hides and logs internal errors. ErrProfileIncomplete also
// reports the missing fields.
func writeError(w http.ResponseWriter, r *http.Request, logger *logrus.Entry, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("internal error")
		writeJSON(w, logger, status, map[string]string{"error": "internal server error"})
		return
	}

	var incomplete *ErrProfileIncomplete
	if errors.As(err, &incomplete) {
		writeJSON(w, logger, status, map[string]any{
			"error":   err.Error(),
			"missing": incomplete.Missing,
		})
		return
	}
	writeJSON(w, logger, status, map[string]string{"error": err.Error()})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
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
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		// Round up so clients never retry early
		seconds := int((info.RetryAfter + time.Second - 1) / time.Second)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.WithFields(logrus.Fields{
		"client": s.extractClientID(r),
		"path":   r.URL.Path,
		"limit":  info.Limit,
	}).Warn("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
