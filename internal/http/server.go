package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

// TokenParser resolves a bearer token to a user ID.
type TokenParser interface {
	Parse(raw string) (int64, error)
}

// Options configures NewServer. Finance and Tokens are required.
type Options struct {
	Addr         string
	Finance      Finance
	Tokens       TokenParser
	Logger       *log.Logger
	RateLimitRPM int
	CacheSize    int
	CacheTTL     time.Duration
	// Ready reports backend readiness for /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	finance  Finance
	tokens   TokenParser
	logger   *log.Logger
	ready    func(ctx context.Context) error
	started  time.Time
	limiter  *ratelimit.Limiter
	detector *security.Detector

	// views caches rendered dashboard responses per user.
	views    cache.Cache[[]byte]
	cacheMgr *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	detector, err := security.NewDetector()
	if err != nil {
		return nil, err
	}
	size := opts.CacheSize
	if size <= 0 {
		size = 256
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	s := &Server{
		finance:  opts.Finance,
		tokens:   opts.Tokens,
		logger:   logger,
		ready:    opts.Ready,
		started:  time.Now(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM}),
		detector: detector,
		cacheMgr: cache.NewManager(),
	}
	views := cache.NewLRUCache[[]byte](size, ttl)
	s.views = views
	s.cacheMgr.Register("views", views)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(s.logger))
	r.Use(trace.NewMiddleware(s.logger, s.detector.ClientIP).Handler)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware(false))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/finance", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ClientIP, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
		}))
		r.Use(s.requireUser)

		r.Get("/", s.handleFinanceData)
		r.Get("/account", s.handleGetAccount)
		r.Put("/account", s.handleUpdateAccount)

		r.Route("/bills", func(r chi.Router) {
			r.Get("/", s.handleListBills)
			r.Post("/", s.handleCreateBill)
			r.Get("/{id}", s.handleGetBill)
			r.Put("/{id}", s.handleUpdateBill)
			r.Delete("/{id}", s.handleDeleteBill)
		})
		r.Route("/paychecks", func(r chi.Router) {
			r.Get("/", s.handleListPaychecks)
			r.Post("/", s.handleCreatePaycheck)
			r.Get("/{id}", s.handleGetPaycheck)
			r.Put("/{id}", s.handleUpdatePaycheck)
			r.Delete("/{id}", s.handleDeletePaycheck)
		})
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Get("/{id}", s.handleGetExpense)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Get("/choices", s.handleCategoryChoices)
			r.Post("/", s.handleCreateCategory)
			r.Get("/{id}", s.handleGetCategory)
			r.Put("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Post("/calendar", s.handleCalendar)
			r.Post("/summary", s.handleSummary)
			r.Post("/balance-projection", s.handleBalanceProjection)
			r.Post("/export-csv", s.handleExportCSV)
			r.Post("/import-csv", s.handleImportCSV)
			r.Post("/export-sheets", s.handleExportSheets)
		})
	})
	return r
}

// Shutdown stops background cleanup and drains the HTTP server. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidate drops every cached view of userID.
func (s *Server) invalidate(userID int64) {
	if n := s.views.DeleteScope(userScope(userID)); n > 0 {
		s.logger.Debug("Cache invalidated", log.FieldUserID, userID, "entries", n)
	}
}

func userScope(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{
		"cache":        map[string]any{"entries": s.views.Size()},
		"rate_limiter": map[string]any{"active_clients": s.limiter.ActiveClients()},
	}
	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["backend"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}
