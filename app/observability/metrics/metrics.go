package metrics

import (
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const MeterName = "city-forecast"

// Resolution outcomes recorded on GeocodeResolutionsTotal.
const (
	OutcomeHit           = "hit"
	OutcomeMiss          = "miss"
	OutcomeNotFound      = "not_found"
	OutcomeProviderError = "provider_error"
	OutcomeStoreError    = "store_error"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	GeocodeResolutionsTotal        metric.Int64Counter
	GeocodeStoreWriteFailuresTotal metric.Int64Counter
	GeocodeProviderDurationSeconds metric.Float64Histogram
	ForecastFetchDurationSeconds   metric.Float64Histogram
	UpstreamRetriesTotal           metric.Int64Counter
	DbQueryDurationSeconds         metric.Float64Histogram
	DbQueryErrorsTotal             metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// New creates every instrument on meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	if m.GeocodeResolutionsTotal, err = meter.Int64Counter(
		"geocode_resolutions_total",
		metric.WithDescription("City name resolutions by outcome"),
		metric.WithUnit("{resolution}"),
	); err != nil {
		return nil, fmt.Errorf("geocode_resolutions_total: %w", err)
	}

	if m.GeocodeStoreWriteFailuresTotal, err = meter.Int64Counter(
		"geocode_store_write_failures_total",
		metric.WithDescription("Coordinate cache writes that failed after a successful provider lookup"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, fmt.Errorf("geocode_store_write_failures_total: %w", err)
	}

	if m.GeocodeProviderDurationSeconds, err = meter.Float64Histogram(
		"geocode_provider_duration_seconds",
		metric.WithDescription("Duration of geocoding provider lookups in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("geocode_provider_duration_seconds: %w", err)
	}

	if m.ForecastFetchDurationSeconds, err = meter.Float64Histogram(
		"forecast_fetch_duration_seconds",
		metric.WithDescription("Duration of forecast fetches in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("forecast_fetch_duration_seconds: %w", err)
	}

	if m.UpstreamRetriesTotal, err = meter.Int64Counter(
		"upstream_retries_total",
		metric.WithDescription("Retried upstream HTTP attempts"),
		metric.WithUnit("{retry}"),
	); err != nil {
		return nil, fmt.Errorf("upstream_retries_total: %w", err)
	}

	if m.DbQueryDurationSeconds, err = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("db_query_duration_seconds: %w", err)
	}

	if m.DbQueryErrorsTotal, err = meter.Int64Counter(
		"db_query_errors_total",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, fmt.Errorf("db_query_errors_total: %w", err)
	}

	return m, nil
}

// InitAppMetrics initializes the global instruments once, from the global MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		m, err := New(otel.GetMeterProvider().Meter(MeterName))
		if err != nil {
			log.Fatalf("Metrics: %v", err)
		}
		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the global instruments, initializing them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
