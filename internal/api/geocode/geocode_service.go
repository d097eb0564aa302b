package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/go-city-forecast/app/observability/metrics"
	"github.com/FACorreiaa/go-city-forecast/internal/types"
)

var _ Resolver = (*ResolverImpl)(nil)

// Resolver turns a city name into coordinates, reading through the store to the provider.
type Resolver interface {
	Resolve(ctx context.Context, name string) (types.Coordinate, error)
	RecentCities(ctx context.Context, limit int) ([]string, error)
	Ready(ctx context.Context) error
}

type ResolverImpl struct {
	logger   *slog.Logger
	store    Store
	provider Provider
	metrics  *metrics.AppMetrics

	collapseMisses bool
	inflight       singleflight.Group
}

type Option func(*ResolverImpl)

// WithCollapsedMisses makes concurrent misses for the same name share one provider
// lookup and one store write.
func WithCollapsedMisses(enabled bool) Option {
	return func(r *ResolverImpl) { r.collapseMisses = enabled }
}

func WithMetrics(m *metrics.AppMetrics) Option {
	return func(r *ResolverImpl) { r.metrics = m }
}

func NewResolver(store Store, provider Provider, logger *slog.Logger, opts ...Option) *ResolverImpl {
	r := &ResolverImpl{
		logger:   logger,
		store:    store,
		provider: provider,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.Get()
	}
	return r
}

// Resolve returns the cached coordinate for name, or looks it up and caches it.
// A failed cache write after a successful lookup is logged and counted but does not
// fail the call.
func (r *ResolverImpl) Resolve(ctx context.Context, name string) (types.Coordinate, error) {
	ctx, span := otel.Tracer("GeocodeResolver").Start(ctx, "Resolve", trace.WithAttributes(
		attribute.String("geocode.city", name),
		attribute.Bool("geocode.collapse_misses", r.collapseMisses),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Resolve"), slog.String("city", name))

	coord, found, err := r.store.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		l.ErrorContext(ctx, "Coordinate store lookup failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "store lookup failed")
		r.count(ctx, metrics.OutcomeStoreError)
		return types.Coordinate{}, err
	}
	if found {
		span.SetAttributes(attribute.Bool("geocode.cache_hit", true))
		l.DebugContext(ctx, "Coordinate cache hit")
		r.count(ctx, metrics.OutcomeHit)
		return coord, nil
	}
	span.SetAttributes(attribute.Bool("geocode.cache_hit", false))

	if r.collapseMisses {
		// shared work outlives any single caller's cancellation
		v, err, shared := r.inflight.Do(name, func() (interface{}, error) {
			return r.lookupAndStore(context.WithoutCancel(ctx), name)
		})
		span.SetAttributes(attribute.Bool("geocode.shared_lookup", shared))
		if err != nil {
			return types.Coordinate{}, r.missFailed(ctx, span, l, err)
		}
		r.count(ctx, metrics.OutcomeMiss)
		return v.(types.Coordinate), nil
	}

	coord, err = r.lookupAndStore(ctx, name)
	if err != nil {
		return types.Coordinate{}, r.missFailed(ctx, span, l, err)
	}
	r.count(ctx, metrics.OutcomeMiss)
	return coord, nil
}

func (r *ResolverImpl) lookupAndStore(ctx context.Context, name string) (types.Coordinate, error) {
	l := r.logger.With(slog.String("method", "lookupAndStore"), slog.String("city", name))

	candidates, err := r.provider.Lookup(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		return types.Coordinate{}, err
	}
	if len(candidates) == 0 {
		return types.Coordinate{}, fmt.Errorf("%w: %q", ErrCityNotFound, name)
	}
	coord := candidates[0]

	record, err := r.store.Put(ctx, name, coord)
	switch {
	case err == nil:
		l.InfoContext(ctx, "Cached new city coordinates",
			slog.String("record_id", record.ID.String()),
			slog.Float64("latitude", coord.Latitude),
			slog.Float64("longitude", coord.Longitude))
	case errors.Is(err, ErrCityExists):
		l.DebugContext(ctx, "City cached concurrently by another request")
	default:
		if !errors.Is(err, ErrStoreWriteFailed) {
			err = fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
		}
		l.ErrorContext(ctx, "Failed to cache city coordinates", slog.Any("error", err))
		trace.SpanFromContext(ctx).RecordError(err)
		r.metrics.GeocodeStoreWriteFailuresTotal.Add(ctx, 1)
	}
	return coord, nil
}

func (r *ResolverImpl) missFailed(ctx context.Context, span trace.Span, l *slog.Logger, err error) error {
	outcome := Outcome(err)
	if outcome == metrics.OutcomeNotFound {
		l.InfoContext(ctx, "City not known to geocoding provider")
	} else {
		l.ErrorContext(ctx, "Geocoding provider lookup failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider lookup failed")
	}
	r.count(ctx, outcome)
	return err
}

func (r *ResolverImpl) count(ctx context.Context, outcome string) {
	r.metrics.GeocodeResolutionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecentCities lists the most recently cached names, newest first.
func (r *ResolverImpl) RecentCities(ctx context.Context, limit int) ([]string, error) {
	ctx, span := otel.Tracer("GeocodeResolver").Start(ctx, "RecentCities", trace.WithAttributes(
		attribute.Int("limit", limit),
	))
	defer span.End()

	names, err := r.store.ListRecent(ctx, limit)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list recent cities", slog.String("method", "RecentCities"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "list recent failed")
		return nil, fmt.Errorf("error listing recent cities: %w", err)
	}
	return names, nil
}

// Ready reports whether the backing store answers.
func (r *ResolverImpl) Ready(ctx context.Context) error {
	return r.store.Ping(ctx)
}
