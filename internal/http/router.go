package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/bluecarbon/internal/http/auth"
	"github.com/MrJamesThe3rd/bluecarbon/internal/http/export"
	"github.com/MrJamesThe3rd/bluecarbon/internal/http/intake"
	"github.com/MrJamesThe3rd/bluecarbon/internal/http/report"
	"github.com/MrJamesThe3rd/bluecarbon/internal/http/submission"
	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
)

type Options struct {
	AllowedOrigins []string
	// Metrics is served at /metrics when set.
	Metrics http.Handler
}

// New builds the API router. authV1 may be nil, in which case no token
// endpoint is exposed and callers must bring their own tokens.
func New(
	provider identity.Provider,
	authV1 *auth.Handler,
	submissionsV1 *submission.Handler,
	intakeV1 *intake.Handler,
	reportsV1 *report.Handler,
	exportsV1 *export.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if authV1 != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				authV1.Routes(r)
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireActor(provider))

			r.Route("/submissions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				submissionsV1.Routes(r)
			})

			r.Route("/intake", intakeV1.Routes)
			r.Route("/reports", reportsV1.Routes)
			r.Route("/ledger", reportsV1.LedgerRoutes)
			r.Route("/exports", exportsV1.Routes)
		})
	})

	return router
}
