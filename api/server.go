/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the browser UI

ROUTE GROUPS:
  /api/state, /api/ledger, /api/version   Read-only
  /api/actions/*                          Manual player actions
  /api/staff/*                            Hiring
  /api/products/*                         Product market
  /api/tech/*                             Research
  /api/hardware/*                         Compute ladder
  /api/clock/*                            Time control
  /api/game/*                             Save, load, reset
  /api/scenarios/*                        Demo saves
  /metrics                                Prometheus

SECURITY NOTE:
  No authentication middleware. The server is meant for a single local
  player.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options tunes the router.
type Options struct {
	AllowedOrigins []string
	Metrics        *Metrics // nil disables /metrics
	AccessLog      bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Get("/ledger", h.GetLedger)
		r.Get("/version", h.GetVersion)
		r.Put("/phase", h.SetPhase)

		r.Route("/actions", func(r chi.Router) {
			r.Post("/work", h.simple(h.Game.Work))
			r.Post("/found-company", h.simple(h.Game.FoundCompany))
			r.Post("/found-lab", h.simple(h.Game.FoundLab))
			r.Post("/think", h.simple(h.Game.Think))
		})

		r.Route("/staff", func(r chi.Router) {
			r.Put("/researcher/allocation", h.SetAllocation)
			r.Post("/{role}/hire", h.Hire)
			r.Post("/{role}/fire", h.Fire)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/launch", h.simple(h.Game.Launch))
			r.Post("/marketing", h.simple(h.Game.ApplyMarketing))
		})

		r.Route("/tech", func(r chi.Router) {
			r.Put("/split", h.SetWorkSplit)
			r.Post("/{id}/unlock", h.UnlockTech)
			r.Post("/{id}/work", h.WorkTech)
			r.Post("/{id}/select", h.SelectTech)
		})

		r.Route("/hardware", func(r chi.Router) {
			r.Post("/upgrade", h.simple(h.Game.Upgrade))
			r.Post("/savings", h.DepositSavings)
		})

		r.Route("/clock", func(r chi.Router) {
			r.Post("/pause", h.Pause)
			r.Post("/resume", h.Resume)
			r.Post("/advance", h.Advance)
		})

		r.Route("/game", func(r chi.Router) {
			r.Post("/save", h.Save)
			r.Post("/load", h.Load)
			r.Post("/reset", h.Reset)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	if opts.Metrics != nil {
		r.Method("GET", "/metrics", opts.Metrics.Handler())
	}
	return r
}
