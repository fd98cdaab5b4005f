package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ecocompute/control-plane/app"
	"github.com/ecocompute/control-plane/handlers"
)

// Setup configures all application routes and middleware.
func Setup(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "https://*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	executeHandler := handlers.NewExecuteHandler(deps.Executor, deps.Config.Providers.DefaultCredential, deps.Logger)
	traceHandler := handlers.NewTraceHandler(deps.Traces, deps.Logger)
	providerHandler := handlers.NewProviderHandler(deps.Registry, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.Registry)

	r.Get("/healthz", healthHandler.HandleHealthz)
	r.Get("/readyz", healthHandler.HandleReadyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/execute", executeHandler.HandleExecute)

		r.Route("/traces", func(r chi.Router) {
			r.Get("/", traceHandler.HandleList)
			r.Delete("/", traceHandler.HandleClear)
			r.Get("/export", traceHandler.HandleExport)
		})

		r.Get("/providers", providerHandler.HandleList)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
