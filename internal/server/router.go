// Package server exposes the HTTP surface: the review trigger, the approval
// decision callbacks, review lookups, and the XLSX export.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/romitbhandari17/agentic-risk-automation/internal/approval"
	"github.com/romitbhandari17/agentic-risk-automation/internal/async"
	"github.com/romitbhandari17/agentic-risk-automation/internal/export"
	"github.com/romitbhandari17/agentic-risk-automation/internal/repository"
)

// Deps are the collaborators the router needs. Reviews and Export may be nil
// when the daemon runs without a database; the affected routes then return
// 503.
type Deps struct {
	Queue   async.Queue
	Gate    *approval.Gate
	Reviews repository.ReviewRepository
	Export  *export.Service
	Logger  *slog.Logger
}

// NewRouter builds the chi router with the standard middleware stack.
func NewRouter(deps Deps, requestTimeout time.Duration) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}
	h := &handlers{deps: deps}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","service":"contract-review"}`))
	})

	r.Post("/contracts", h.triggerReview)
	r.Get("/contracts/{contractID}", h.getReview)

	r.Route("/approvals", func(r chi.Router) {
		r.Get("/approve", h.decide("APPROVED"))
		r.Get("/reject", h.decide("REJECTED"))
		r.Get("/callback", h.callback)
	})

	r.Get("/exports/reviews.xlsx", h.exportReviews)

	return r
}
