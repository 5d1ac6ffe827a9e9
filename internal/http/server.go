package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"hearth/internal/cache"
	"hearth/internal/core"
	"hearth/internal/log"
	"hearth/internal/middleware/ratelimit"
	"hearth/internal/middleware/security"
	"hearth/internal/middleware/trace"
	"hearth/internal/services"
	"hearth/internal/store"
)

// Deps bundles everything the server needs.
type Deps struct {
	Store        store.Store
	Transactions *services.TransactionService
	Stats        *services.StatsService
	Budget       *services.BudgetService
	Investments  *services.InvestmentService
	Logger       *log.Logger
}

type Server struct {
	http.Server

	logger     *log.Logger
	structured *log.StructuredLogger
	store      store.Store

	transactions *services.TransactionService
	stats        *services.StatsService
	budget       *services.BudgetService
	investments  *services.InvestmentService

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	// Read caches for the dashboard projections. Correctness never
	// depends on them; every entry is recomputable from the journal.
	dashCache  *cache.LRUCache[core.DashboardStats]
	trendCache *cache.LRUCache[[]core.TrendPoint]
	cacheMgr   *cache.Manager

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a
// ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	detector := security.NewDetector()

	s := &Server{
		logger:       logger.WithComponent(log.ComponentHTTP),
		structured:   log.NewStructuredLogger(logger),
		store:        deps.Store,
		transactions: deps.Transactions,
		stats:        deps.Stats,
		budget:       deps.Budget,
		investments:  deps.Investments,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     detector,
		tracer:       trace.NewMiddleware(detector.ExtractClientIP),
		dashCache:    cache.NewLRUCache[core.DashboardStats](100, 5*time.Minute),
		trendCache:   cache.NewLRUCache[[]core.TrendPoint](50, 5*time.Minute),
		cacheMgr:     cache.NewManager(),
		startedAt:    time.Now(),
	}

	s.cacheMgr.Register(s.dashCache)
	s.cacheMgr.Register(s.trendCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/categories", withIdentity(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories", withIdentity(s.handleListCategories))
	mux.HandleFunc("DELETE /api/categories/{id}", withIdentity(s.handleDeleteCategory))

	mux.HandleFunc("POST /api/accounts", withIdentity(s.handleCreateAccount))
	mux.HandleFunc("GET /api/accounts", withIdentity(s.handleListAccounts))

	mux.HandleFunc("POST /api/transactions", withIdentity(s.handleRecordTransaction))
	mux.HandleFunc("GET /api/transactions", withIdentity(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/{id}", withIdentity(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", withIdentity(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", withIdentity(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/dashboard/stats", withIdentity(s.handleDashboardStats))
	mux.HandleFunc("GET /api/dashboard/monthly-trend", withIdentity(s.handleMonthlyTrend))
	mux.HandleFunc("GET /api/dashboard/investment-targets", withIdentity(s.handleInvestmentTargets))
	mux.HandleFunc("GET /api/dashboard/period-stats", withIdentity(s.handlePeriodStats))
	mux.HandleFunc("GET /api/budget/status", withIdentity(s.handleBudgetStatus))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = s.rateLimitMutations(handler)
	handler = s.flagSuspicious(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// rateLimitMutations applies the per-IP limiter to write methods only.
func (s *Server) rateLimitMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			clientIP := s.detector.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				s.logger.WarnContext(r.Context(), "Rate limit exceeded",
					log.FieldClientIP, clientIP,
					log.FieldMethod, r.Method,
					log.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// flagSuspicious logs requests matching known probe patterns. They are
// not blocked; the log line feeds alerting.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateFamily drops every cached projection for a family after a
// journal write.
func (s *Server) invalidateFamily(familyID string) {
	s.dashCache.DeletePrefix(familyID + "|")
	s.trendCache.DeletePrefix(familyID + "|")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if s.store == nil {
		checks["store"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if pinger, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "ok"
	}

	checks["cache"] = map[string]any{
		"dashboard_entries": s.dashCache.Size(),
		"trend_entries":     s.trendCache.Size(),
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}
