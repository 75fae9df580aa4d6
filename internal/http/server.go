package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fintrack/internal/log"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// Deps are the collaborators the handlers read from and write to.
type Deps struct {
	Budgets    *services.BudgetService
	Dashboard  *services.DashboardLoader
	Analytics  store.AnalyticsReader
	Expenses   store.ExpenseSource
	Categories store.CategoryDirectory
}

type Server struct {
	http.Server
	deps         Deps
	logger       *log.Logger
	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, deps Deps, logger *log.Logger) *Server {
	s := &Server{
		deps:   deps,
		logger: logger.WithComponent(log.ComponentHTTP),
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(trace.NewMiddleware(logger, func(r *http.Request) string { return r.RemoteAddr }).Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/trends", s.handleTrends)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/categories", s.handleCategories)
		r.Get("/expenses", s.handleExpenses)

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleBudgets)
			r.Put("/", s.handleSaveBudget)
			r.Get("/resolve", s.handleResolve)
			r.Post("/reload", s.handleReload)
			r.Get("/{id}/edit", s.handleEditBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
		})
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
