// Package http serves the portfolio JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	applog "cryptofolio/internal/log"
	"cryptofolio/internal/metrics"
	"cryptofolio/internal/middleware/ratelimit"
	"cryptofolio/internal/middleware/security"
	"cryptofolio/internal/middleware/trace"
	"cryptofolio/internal/services"
	"cryptofolio/internal/storage"
)

// Options wires the server to its collaborators.
type Options struct {
	Repo      *storage.SQLiteRepository
	Portfolio *services.PortfolioService
	Metrics   *metrics.Metrics
	Logger    *applog.Logger

	// DefaultInterval is used when a view request has no interval parameter.
	DefaultInterval    int
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	repo            *storage.SQLiteRepository
	portfolio       *services.PortfolioService
	metrics         *metrics.Metrics
	logger          *applog.Logger
	validate        *validator.Validate
	limiter         *ratelimit.Limiter
	defaultInterval int
	shutdownOnce    sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		repo:            opts.Repo,
		portfolio:       opts.Portfolio,
		metrics:         opts.Metrics,
		logger:          logger,
		validate:        newValidator(),
		limiter:         ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		defaultInterval: opts.DefaultInterval,
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	detector := security.NewDetector(s.logger)
	tracer := trace.NewMiddleware(s.logger, detector.ExtractClientIP)

	r := chi.NewRouter()
	r.Use(tracer.Middleware)
	r.Use(trace.Recoverer(s.logger))
	r.Use(s.metrics.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(detector.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(s.limiter.Middleware(detector.ExtractClientIP, s.handleRateLimited))

		r.Get("/hello", s.handleHello)

		r.Post("/createUser", s.handleCreateUser)
		r.Get("/getUserById", s.handleGetUserByID)
		r.Get("/getUserByEmail", s.handleGetUserByEmail)
		update(r, "/updateUser", s.handleUpdateUser)
		r.Delete("/deleteUser", s.handleDeleteUser)

		r.Post("/createPortfolio", s.handleCreatePortfolio)
		r.Get("/getPortfoliosByUserId", s.handleGetPortfoliosByUserID)
		update(r, "/updatePortfolioName", s.handleUpdatePortfolioName)
		r.Delete("/deletePortfolio", s.handleDeletePortfolio)

		r.Post("/createHolding", s.handleCreateHolding)
		r.Get("/getHoldingsByPortfolioId", s.handleGetHoldingsByPortfolioID)
		update(r, "/updateHolding", s.handleUpdateHolding)
		r.Delete("/deleteHolding", s.handleDeleteHolding)

		r.Post("/createAsset", s.handleCreateAsset)
		r.Get("/getAssetsByHoldingId", s.handleGetAssetsByHoldingID)
		update(r, "/updateAsset", s.handleUpdateAsset)
		r.Delete("/deleteAsset", s.handleDeleteAsset)

		r.Post("/createTransaction", s.handleCreateTransaction)
		r.Get("/getTransactionsByPortfolioId", s.handleGetTransactionsByPortfolioID)
		r.Get("/getTransactionsByAssetId", s.handleGetTransactionsByAssetID)
		update(r, "/updateTransaction", s.handleUpdateTransaction)
		r.Delete("/deleteTransaction", s.handleDeleteTransaction)

		r.Post("/createAssetPrice", s.handleCreateAssetPrice)
		r.Get("/getAssetPricesById", s.handleGetAssetPrices)
		r.Get("/getLatestAssetPrice", s.handleGetLatestAssetPrice)
		r.Delete("/deleteAssetPrice", s.handleDeleteAssetPrice)

		for _, h := range []historyRoutes{s.portfolioHistoryRoutes(), s.holdingsHistoryRoutes()} {
			r.Post("/create"+h.name, h.create)
			r.Get("/get"+h.name+"ById", h.list)
			r.Get("/get"+h.name+"ByDate", h.byDate)
			update(r, "/update"+h.name, h.update)
			r.Delete("/delete"+h.name, h.delete)
			r.Delete("/clear"+h.name, h.clear)
		}

		r.Get("/getPortfolioSummary", s.handlePortfolioSummary)
		r.Get("/getHoldingSummaries", s.handleHoldingSummaries)
		r.Get("/exportPortfolioHistory", s.handleExportPortfolioHistory)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, ErrorResponse{Error: "route not found", Details: r.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed", Details: r.Method})
	})
	return r
}

// update registers an update route for PUT and for POST, which older clients use.
func update(r chi.Router, pattern string, h http.HandlerFunc) {
	r.Put(pattern, h)
	r.Post(pattern, h)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.RateLimited()
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeJSON(w, r, http.StatusTooManyRequests, ErrorResponse{
		Error:   "rate limit exceeded",
		Details: "please retry after 60 seconds",
	})
}

// Shutdown stops the limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.repo.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", applog.FieldError, err.Error())
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, r, "Hello from the server!")
}
