// Package http exposes the tracker's REST API.
package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"tally/internal/cache"
	applog "tally/internal/log"
	"tally/internal/middleware/ratelimit"
	"tally/internal/middleware/security"
	"tally/internal/middleware/trace"
	"tally/internal/services"
	"tally/internal/storage"

	"github.com/go-chi/chi/v5"
)

type Options struct {
	Addr          string
	DefaultUserID int64
	Logger        *applog.Logger

	SummaryCacheSize int
	SummaryCacheTTL  time.Duration
	RequestsPerMin   int
}

type Server struct {
	httpServer *http.Server
	router     chi.Router

	storage      *storage.SQLiteRepository
	transactions *services.TransactionService
	summaries    *services.SummaryService

	summaryCache *cache.LRUCache[summaryResponse]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	logger       *applog.Logger

	defaultUserID int64
}

func NewServer(opts Options, repo *storage.SQLiteRepository, transactions *services.TransactionService, summaries *services.SummaryService) *Server {
	if opts.SummaryCacheSize <= 0 {
		opts.SummaryCacheSize = 128
	}
	if opts.SummaryCacheTTL <= 0 {
		opts.SummaryCacheTTL = time.Minute
	}
	if opts.DefaultUserID <= 0 {
		opts.DefaultUserID = 1
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{})
	}

	s := &Server{
		storage:       repo,
		transactions:  transactions,
		summaries:     summaries,
		summaryCache:  cache.NewLRUCache[summaryResponse](opts.SummaryCacheSize, opts.SummaryCacheTTL),
		cacheManager:  cache.NewManager(),
		limiter:       ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMin}),
		logger:        opts.Logger.WithComponent("http"),
		defaultUserID: opts.DefaultUserID,
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(time.Minute)

	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	tracer := trace.NewMiddleware(clientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	r.Use(tracer.Middleware)
	r.Use(applog.Middleware(s.logger))
	r.Use(headers.Middleware)
	r.Use(s.limiter.Middleware(clientIP, nil))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(withOwner(s.defaultUserID))

		r.Get("/user", s.handleGetUser)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Get("/{id}", s.handleGetCategory)
			r.Put("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleUpsertBudget)
			r.Get("/{id}", s.handleGetBudget)
			r.Put("/{id}", s.handleUpdateBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
		})

		r.Get("/summary", s.handleSummary)
	})

	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP listener and the background cleanup
// goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.cacheManager.Stop()
	return s.httpServer.Shutdown(ctx)
}

// invalidateDerived drops cached summaries after any write that could
// change them.
func (s *Server) invalidateDerived() {
	s.summaryCache.Purge()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	if owner == nil {
		owner = &s.defaultUserID
	}
	u, err := s.storage.GetUser(r.Context(), *owner)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
