/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/plans/*          Plan management
  /api/users/*          Per-user views (assignments, quotas, analytics)
  /api/deals/*          Deal records
  /api/commissions/*    Commission records and calculation
  /api/analytics/*      Reporting
  /api/admin/*          Admin operations
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Plan routes
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.CreatePlan)
			r.Get("/{id}", h.GetPlan)
		})

		// Per-user routes
		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/assignments", h.GetAssignments)
			r.Get("/quotas", h.GetQuotas)
			r.Get("/summary", h.GetUserSummary)
			r.Get("/projection", h.GetProjection)
			r.Get("/payouts", h.ListPayouts)
		})

		// Deal routes
		r.Route("/deals", func(r chi.Router) {
			r.Get("/", h.ListDeals)
			r.Post("/", h.CreateDeal)
			r.Get("/{id}", h.GetDeal)
		})

		// Commission routes
		r.Route("/commissions", func(r chi.Router) {
			r.Get("/", h.ListCommissions)
			r.Post("/calculate", h.Calculate)
			r.Get("/{id}", h.GetCommission)
			r.Post("/{id}/status", h.UpdateCommissionStatus)
		})

		// Analytics routes
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/summary", h.GetSummary)
			r.Get("/monthly", h.GetMonthlyReport)
			r.Get("/top-performers", h.GetTopPerformers)
			r.Get("/trends", h.GetTrends)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/assignments", h.CreateAssignment)
			r.Post("/quotas", h.CreateQuota)
			r.Post("/payouts", h.BuildPayout)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
