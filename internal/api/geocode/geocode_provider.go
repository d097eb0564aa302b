package geocode

import (
	"context"
	"encoding/json"
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

var _ Provider = (*OpenMeteoProvider)(nil)

// Provider turns a city name into candidate coordinates, best match first.
// An empty slice with a nil error means the name is unknown to the provider.
type Provider interface {
	Lookup(ctx context.Context, name string) ([]types.Coordinate, error)
}

// OpenMeteoProvider queries the Open-Meteo geocoding search endpoint.
type OpenMeteoProvider struct {
	logger   *slog.Logger
	client   *resilience.Client
	endpoint string
	count    int
	language string
	timeout  time.Duration
	duration metric.Float64Histogram
}

type searchResponse struct {
	Results []struct {
		Name      string   `json:"name"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"results"`
}

func NewOpenMeteoProvider(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *OpenMeteoProvider {
	count := cfg.Geocoding.Count
	if count <= 0 {
		count = 1
	}
	language := cfg.Geocoding.Language
	if language == "" {
		language = "en"
	}
	return &OpenMeteoProvider{
		logger:   logger,
		client:   resilience.NewClient("open-meteo-geocoding", httpClient, cfg.Geocoding.Retry, logger),
		endpoint: strings.TrimRight(cfg.Geocoding.BaseURL, "/") + "/v1/search",
		count:    count,
		language: language,
		timeout:  cfg.Geocoding.Timeout,
		duration: metrics.Get().GeocodeProviderDurationSeconds,
	}
}

func (p *OpenMeteoProvider) Lookup(ctx context.Context, name string) (coords []types.Coordinate, err error) {
	ctx, span := otel.Tracer("GeocodeProvider").Start(ctx, "Lookup", trace.WithAttributes(
		attribute.String("geocode.city", name),
		attribute.String("peer.service", "open-meteo-geocoding"),
	))
	defer span.End()

	l := p.logger.With(slog.String("method", "Lookup"), slog.String("city", name))

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		p.duration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.Bool("error", err != nil)))
	}()

	query := url.Values{}
	query.Set("name", name)
	query.Set("count", strconv.Itoa(p.count))
	query.Set("language", p.language)
	query.Set("format", "json")
	target := p.endpoint + "?" + query.Encode()

	resp, err := p.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		l.WarnContext(ctx, "Geocoding request failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocoding request failed")
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	var payload searchResponse
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		l.WarnContext(ctx, "Malformed geocoding response", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed geocoding response")
		return nil, fmt.Errorf("%w: decoding response: %w", ErrProviderUnavailable, err)
	}

	coords = make([]types.Coordinate, 0, len(payload.Results))
	for i, r := range payload.Results {
		if r.Latitude == nil || r.Longitude == nil {
			err = fmt.Errorf("%w: result %d has no coordinates", ErrProviderUnavailable, i)
			span.RecordError(err)
			span.SetStatus(codes.Error, "malformed geocoding result")
			return nil, err
		}
		coords = append(coords, types.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude})
	}

	span.SetAttributes(attribute.Int("geocode.candidates", len(coords)))
	l.DebugContext(ctx, "Geocoding lookup finished", slog.Int("candidates", len(coords)))
	return coords, nil
}
