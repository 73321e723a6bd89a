// Package http exposes the expense service as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"economad/internal/cache"
	"economad/internal/core"
	applog "economad/internal/log"
	"economad/internal/metrics"
	"economad/internal/middleware/ratelimit"
	"economad/internal/middleware/security"
	"economad/internal/middleware/trace"
)

// ExpenseService is the application layer the handlers call.
type ExpenseService interface {
	ListAll(ctx context.Context, filter *core.ExpenseFilter, page core.PageRequest) (core.Page[core.Expense], error)
	Create(ctx context.Context, form core.ExpenseForm) ([]core.Expense, error)
	ListStatisticsByMonth(ctx context.Context, account *core.Account, month string, kind core.StatisticsType) (core.Statistics, error)
	GenerateMonthlyWorksheet(ctx context.Context, account *core.Account, month string) ([]byte, error)
	CalculateRelativeDailyIndex(ctx context.Context, initial, final core.Date) (decimal.Decimal, error)
	Account(ctx context.Context) (core.Account, error)
	SetSalary(ctx context.Context, salary core.Money) (core.Account, error)
	ListOrigins(ctx context.Context) ([]core.Origin, error)
	ListPaymentTypes(ctx context.Context) ([]core.PaymentType, error)
	Ping(ctx context.Context) error
}

type Options struct {
	// RateLimitPerMinute bounds write requests per client; 0 disables it.
	RateLimitPerMinute int
	StatisticsCacheTTL time.Duration
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	svc     ExpenseService
	metrics *metrics.Metrics

	statsCache   *cache.LRUCache[core.Statistics]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	shutdownOnce sync.Once
}

const (
	statsCacheSize       = 64
	defaultStatsCacheTTL = 5 * time.Minute
)

func NewServer(addr string, svc ExpenseService, m *metrics.Metrics, opts Options) *Server {
	if m == nil {
		m = metrics.New()
	}
	if opts.StatisticsCacheTTL <= 0 {
		opts.StatisticsCacheTTL = defaultStatsCacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	s := &Server{
		svc:          svc,
		metrics:      m,
		statsCache:   cache.NewLRUCache[core.Statistics](statsCacheSize, opts.StatisticsCacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.detector = security.NewDetector(func() {
		m.HTTPRejected.WithLabelValues("suspicious").Inc()
	})
	if opts.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
	}

	s.cacheManager.Register(s.statsCache)
	s.cacheManager.StartCleanup(time.Minute)

	s.Addr = addr
	s.Handler = s.routes(opts.Logger)
	s.ReadHeaderTimeout = 5 * time.Second
	s.ReadTimeout = 15 * time.Second
	s.WriteTimeout = 30 * time.Second
	s.IdleTimeout = 60 * time.Second
	return s
}

func (s *Server) routes(logger *applog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(trace.RequestID)
	r.Use(applog.Middleware(logger))
	r.Use(applog.RequestIDMiddleware(trace.FromRequest))
	r.Use(applog.AccessLog(s.detector.ExtractClientIP))
	r.Use(trace.Metrics(s.metrics))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)
	if s.limiter != nil {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited, http.MethodPost, http.MethodPut))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", s.handleListExpenses)
		r.Post("/", s.handleCreateExpense)
		r.Get("/statistics", s.handleStatistics)
		r.Get("/worksheet", s.handleWorksheet)
		r.Get("/daily-index", s.handleDailyIndex)
	})

	r.Get("/account", s.handleAccount)
	r.Put("/account/salary", s.handleSetSalary)
	r.Get("/origins", s.handleListOrigins)
	r.Get("/payment-types", s.handleListPaymentTypes)

	return r
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.HTTPRejected.WithLabelValues("rate_limit").Inc()
	slog.WarnContext(r.Context(), "Rate limit exceeded",
		"client_ip", s.detector.ExtractClientIP(r),
		"path", r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

// invalidateStatistics drops cached reports after a write that changes
// expenses or the salary.
func (s *Server) invalidateStatistics() {
	s.statsCache.Purge()
}

func statisticsCacheKey(month string, kind core.StatisticsType) string {
	return strings.ToLower(strings.TrimSpace(month)) + "|" + string(kind)
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.limiter != nil {
			s.limiter.Stop()
		}
	})
	return s.Server.Shutdown(ctx)
}
