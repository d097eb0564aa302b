package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	appMiddleware "github.com/FACorreiaa/go-city-forecast/app/middleware"
	"github.com/FACorreiaa/go-city-forecast/config"
	"github.com/FACorreiaa/go-city-forecast/internal/api/forecast"
	"github.com/FACorreiaa/go-city-forecast/internal/api/geocode"
	"github.com/FACorreiaa/go-city-forecast/internal/api/health"
	"github.com/FACorreiaa/go-city-forecast/internal/api/stats"
	"github.com/FACorreiaa/go-city-forecast/internal/router"
	"github.com/FACorreiaa/go-city-forecast/internal/types"
	"github.com/FACorreiaa/go-city-forecast/internal/views"
)

type benchProvider struct{}

func (benchProvider) Lookup(context.Context, string) ([]types.Coordinate, error) {
	return []types.Coordinate{{Latitude: 48.8566, Longitude: 2.3522}}, nil
}

type benchFetcher struct{}

func (benchFetcher) Fetch(context.Context, types.Coordinate) (types.ForecastResponse, error) {
	hourly := types.Hourly{}
	for i := 0; i < 168; i++ {
		hourly.Time = append(hourly.Time, "2024-05-01T"+strconv.Itoa(i%24)+":00")
		hourly.Temperature2m = append(hourly.Temperature2m, float64(i%30))
	}
	return types.ForecastResponse{Timezone: "GMT", Hourly: hourly}, nil
}

// BenchmarkSuite holds a router wired with in-process upstreams
type BenchmarkSuite struct {
	router   chi.Router
	resolver *geocode.ResolverImpl
	store    *geocode.MemoryCoordinateStore
}

func setupBenchmarkSuite(b *testing.B) *BenchmarkSuite {
	b.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	renderer, err := views.NewRenderer()
	if err != nil {
		b.Fatal(err)
	}
	creds, err := appMiddleware.NewCredentialStore(
		[]config.StatsUser{{Username: "forecast", Password: "forecast"}}, bcrypt.MinCost)
	if err != nil {
		b.Fatal(err)
	}

	store := geocode.NewMemoryCoordinateStore(logger)
	resolver := geocode.NewResolver(store, benchProvider{}, logger)

	r := router.SetupRouter(&router.Config{
		ForecastHandler:     forecast.NewHandlerImpl(resolver, benchFetcher{}, renderer, logger),
		StatsHandler:        stats.NewHandlerImpl(resolver, renderer, stats.DefaultRecentLimit, logger),
		HealthHandler:       health.NewHandlerImpl(resolver, logger),
		StatsAuthMiddleware: appMiddleware.BasicAuth(creds, "", logger),
	})

	return &BenchmarkSuite{router: r, resolver: resolver, store: store}
}

func BenchmarkResolveHit(b *testing.B) {
	s := setupBenchmarkSuite(b)
	ctx := context.Background()
	if _, err := s.resolver.Resolve(ctx, "Paris"); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.resolver.Resolve(ctx, "Paris"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkResolveMiss(b *testing.B) {
	s := setupBenchmarkSuite(b)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.resolver.Resolve(ctx, "city-"+strconv.Itoa(i)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWeatherPage(b *testing.B) {
	s := setupBenchmarkSuite(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/weather?city=Paris", nil))
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkWeatherJSON(b *testing.B) {
	s := setupBenchmarkSuite(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/weather?city=Paris&format=json", nil))
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkConcurrentWeatherRequests(b *testing.B) {
	s := setupBenchmarkSuite(b)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/weather?city=Paris", nil))
		}
	})
}

func BenchmarkStatsPage(b *testing.B) {
	s := setupBenchmarkSuite(b)
	for i := 0; i < 50; i++ {
		if _, err := s.resolver.Resolve(context.Background(), "city-"+strconv.Itoa(i)); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		req.SetBasicAuth("forecast", "forecast")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
