// Package http exposes the subscription tracker as a JSON REST API.
package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"subtrack/internal/cache"
	"subtrack/internal/middleware/ratelimit"
	"subtrack/internal/middleware/security"
	"subtrack/internal/middleware/trace"
	"subtrack/internal/services"
)

// Services bundles the domain services the server exposes.
type Services struct {
	Categories    *services.CategoryService
	Subscriptions *services.SubscriptionService
	Budget        *services.BudgetService
	Analytics     *services.AnalyticsService
}

type Server struct {
	http.Server

	categories    *services.CategoryService
	subscriptions *services.SubscriptionService
	budget        *services.BudgetService
	analytics     *services.AnalyticsService

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	headers *security.HeadersMiddleware

	// Read-heavy report endpoints are cached; any mutation invalidates.
	// Cache keys carry a generation stamp so a report computed before a
	// mutation cannot be stored under the key reads look up afterwards.
	reportGen      atomic.Int64
	analyticsCache *cache.LRUCache[analyticsResponse]
	statusCache    *cache.LRUCache[budgetStatusResponse]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc Services) *Server {
	mux := http.NewServeMux()

	s := &Server{
		categories:     svc.Categories,
		subscriptions:  svc.Subscriptions,
		budget:         svc.Budget,
		analytics:      svc.Analytics,
		limiter:        ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:         trace.NewMiddleware(extractClientIP),
		headers:        security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		analyticsCache: cache.NewLRUCache[analyticsResponse](1, 5*time.Minute),
		statusCache:    cache.NewLRUCache[budgetStatusResponse](1, 5*time.Minute),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.analyticsCache)
	s.cacheManager.Register(s.statusCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("POST /categories", s.handleCreateCategory)

	mux.HandleFunc("GET /subscriptions", s.handleListSubscriptions)
	mux.HandleFunc("POST /subscriptions", s.handleCreateSubscription)
	mux.HandleFunc("GET /subscriptions/{id}", s.handleGetSubscription)
	mux.HandleFunc("PUT /subscriptions/{id}", s.handleUpdateSubscription)
	mux.HandleFunc("DELETE /subscriptions/{id}", s.handleDeleteSubscription)

	mux.HandleFunc("GET /analytics", s.handleAnalytics)

	mux.HandleFunc("GET /budget", s.handleGetBudget)
	mux.HandleFunc("PUT /budget", s.handleSetBudget)
	mux.HandleFunc("GET /budget/status", s.handleBudgetStatus)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.tracer.Middleware(s.headers.Middleware(s.withRateLimit(mux))),
	}
	return s
}

// withRateLimit applies per-IP limiting to mutating requests only; reads
// are cheap and cached.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(extractClientIP, nil)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// invalidateReports retires the current report cache generation after a
// mutation. In-flight reads that started under the old generation store
// their result under the old key, which nothing looks up anymore.
func (s *Server) invalidateReports() {
	old := s.reportGen.Add(1) - 1
	s.analyticsCache.Delete(analyticsKey(old))
	s.statusCache.Delete(statusKey(old))
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
