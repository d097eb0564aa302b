package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/go-city-forecast/docs"
	"github.com/FACorreiaa/go-city-forecast/internal/api/forecast"
	"github.com/FACorreiaa/go-city-forecast/internal/api/health"
	"github.com/FACorreiaa/go-city-forecast/internal/api/stats"
)

// Config contains dependencies needed for the router setup
type Config struct {
	ForecastHandler *forecast.HandlerImpl
	StatsHandler    *stats.HandlerImpl
	HealthHandler   *health.HandlerImpl
	// Guards /stats; typically appMiddleware.BasicAuth.
	StatsAuthMiddleware func(http.Handler) http.Handler
	// Served at /metrics when set.
	MetricsHandler http.Handler

	// Per-IP limit on /weather. Zero requests disables it.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.HealthHandler.Live)
	r.Get("/ready", cfg.HealthHandler.Ready)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Get("/", cfg.ForecastHandler.Index)

	r.Group(func(r chi.Router) {
		if cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		r.Get("/weather", cfg.ForecastHandler.Weather)
	})

	r.Group(func(r chi.Router) {
		r.Use(cfg.StatsAuthMiddleware)
		r.Get("/stats", cfg.StatsHandler.Stats)
	})

	return r
}
