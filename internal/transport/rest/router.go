package rest

import (
	"database/sql"
	"log/slog"

	"github.com/frahmantamala/budget-story/internal/category"
	"github.com/frahmantamala/budget-story/internal/ledger"
	"github.com/frahmantamala/budget-story/internal/session"
	"github.com/frahmantamala/budget-story/internal/summary"
	"github.com/frahmantamala/budget-story/internal/transport/middleware"
	"github.com/frahmantamala/budget-story/internal/transport/swagger"
	"github.com/frahmantamala/budget-story/internal/trend"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups the HTTP handlers mounted under /api/v1. Nil handlers are
// skipped.
type Handlers struct {
	Category  *category.Handler
	Ledger    *ledger.Handler
	Session   *session.Handler
	Summary   *summary.Handler
	Trend     *trend.Handler
	Dashboard *DashboardHandler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, driver string, handlers Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, driver)

	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// OpenAPI document and Swagger UI live outside the API prefix
	router.Handle(swagger.SpecPath, swagger.SpecHandler())
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if handlers.Category != nil {
			r.Get("/categories", handlers.Category.GetCategories)
		}

		if handlers.Ledger != nil {
			r.Route("/ledger", func(lr chi.Router) {
				lr.Get("/", handlers.Ledger.GetLedger)
				lr.Post("/reload", handlers.Ledger.Reload)
				lr.Put("/income", handlers.Ledger.SetIncome)
				lr.Post("/expenses", handlers.Ledger.AddExpense)
				lr.Put("/expenses/{id}", handlers.Ledger.UpdateExpense)
				lr.Delete("/expenses/{id}", handlers.Ledger.DeleteExpense)
				lr.Post("/clear", handlers.Ledger.ClearAll)
			})
		}

		if handlers.Session != nil {
			r.Route("/session", func(sr chi.Router) {
				sr.Get("/", handlers.Session.GetSession)
				sr.Put("/draft", handlers.Session.StageDraft)
				sr.Post("/edit/{id}", handlers.Session.BeginEdit)
				sr.Post("/cancel", handlers.Session.Cancel)
				sr.Post("/reset", handlers.Session.Reset)
				sr.Post("/commit", handlers.Session.Commit)
			})
		}

		if handlers.Summary != nil {
			r.Get("/summary", handlers.Summary.GetSummary)
		}
		if handlers.Trend != nil {
			r.Get("/trend", handlers.Trend.GetTrend)
		}
		if handlers.Dashboard != nil {
			r.Get("/dashboard", handlers.Dashboard.GetDashboard)
		}
	})
}
