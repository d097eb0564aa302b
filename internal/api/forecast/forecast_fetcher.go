package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-city-forecast/app/observability/metrics"
	"github.com/FACorreiaa/go-city-forecast/app/resilience"
	"github.com/FACorreiaa/go-city-forecast/config"
	"github.com/FACorreiaa/go-city-forecast/internal/types"
)

var ErrForecastUnavailable = errors.New("forecast provider unavailable")

var _ Fetcher = (*OpenMeteoFetcher)(nil)

// Fetcher returns the hourly temperature series for a coordinate. Results are not cached.
type Fetcher interface {
	Fetch(ctx context.Context, coord types.Coordinate) (types.ForecastResponse, error)
}

type OpenMeteoFetcher struct {
	logger   *slog.Logger
	client   *resilience.Client
	endpoint string
	timeout  time.Duration
	duration metric.Float64Histogram
}

func NewOpenMeteoFetcher(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *OpenMeteoFetcher {
	return &OpenMeteoFetcher{
		logger:   logger,
		client:   resilience.NewClient("open-meteo-forecast", httpClient, cfg.Forecast.Retry, logger),
		endpoint: strings.TrimRight(cfg.Forecast.BaseURL, "/") + "/v1/forecast",
		timeout:  cfg.Forecast.Timeout,
		duration: metrics.Get().ForecastFetchDurationSeconds,
	}
}

func (f *OpenMeteoFetcher) Fetch(ctx context.Context, coord types.Coordinate) (types.ForecastResponse, error) {
	ctx, span := otel.Tracer("ForecastFetcher").Start(ctx, "Fetch", trace.WithAttributes(
		attribute.Float64("geo.latitude", coord.Latitude),
		attribute.Float64("geo.longitude", coord.Longitude),
		attribute.String("peer.service", "open-meteo-forecast"),
	))
	defer span.End()

	l := f.logger.With(slog.String("method", "Fetch"))

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	start := time.Now()
	defer func() {
		f.duration.Record(ctx, time.Since(start).Seconds())
	}()

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	query.Set("hourly", "temperature_2m")
	target := f.endpoint + "?" + query.Encode()

	resp, err := f.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	})
	if err != nil {
		l.ErrorContext(ctx, "Forecast request failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "forecast request failed")
		return types.ForecastResponse{}, fmt.Errorf("%w: %w", ErrForecastUnavailable, err)
	}
	defer resp.Body.Close()

	var payload types.ForecastResponse
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		l.ErrorContext(ctx, "Malformed forecast response", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed forecast response")
		return types.ForecastResponse{}, fmt.Errorf("%w: decoding response: %w", ErrForecastUnavailable, err)
	}

	span.SetAttributes(attribute.Int("forecast.hours", len(payload.Hourly.Time)))
	return payload, nil
}
