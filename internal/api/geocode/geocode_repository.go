package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-city-forecast/app/observability/metrics"
	"github.com/FACorreiaa/go-city-forecast/internal/types"
)

const uniqueViolation = "23505"

var _ Store = (*PostgresCoordinateStore)(nil)

// Store is the durable name to coordinate cache. Names are exact keys; records are never
// updated or removed.
type Store interface {
	Get(ctx context.Context, name string) (types.Coordinate, bool, error)
	Put(ctx context.Context, name string, coord types.Coordinate) (types.CacheRecord, error)
	ListRecent(ctx context.Context, limit int) ([]string, error)
	Ping(ctx context.Context) error
}

// Querier is satisfied by *pgxpool.Pool and by pgxmock pools.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type PostgresCoordinateStore struct {
	logger  *slog.Logger
	pgpool  Querier
	metrics *metrics.AppMetrics
}

func NewPostgresCoordinateStore(pgpool Querier, logger *slog.Logger) *PostgresCoordinateStore {
	return &PostgresCoordinateStore{
		logger:  logger,
		pgpool:  pgpool,
		metrics: metrics.Get(),
	}
}

func (r *PostgresCoordinateStore) startSpan(ctx context.Context, op, name string) (context.Context, trace.Span) {
	return otel.Tracer("CoordinateStore").Start(ctx, op, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "cities"),
		attribute.String("db.operation", op),
		attribute.String("geocode.city", name),
	))
}

func (r *PostgresCoordinateStore) observe(ctx context.Context, op string, start time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("db.operation", op))
	r.metrics.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		r.metrics.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

func (r *PostgresCoordinateStore) Get(ctx context.Context, name string) (types.Coordinate, bool, error) {
	ctx, span := r.startSpan(ctx, "Get", name)
	defer span.End()

	query := `SELECT lat, long FROM cities WHERE name = $1`

	var coord types.Coordinate
	start := time.Now()
	err := r.pgpool.QueryRow(ctx, query, name).Scan(&coord.Latitude, &coord.Longitude)
	if errors.Is(err, pgx.ErrNoRows) {
		r.observe(ctx, "Get", start, nil)
		span.SetAttributes(attribute.Bool("geocode.cache_hit", false))
		return types.Coordinate{}, false, nil
	}
	r.observe(ctx, "Get", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to read cached coordinates",
			slog.String("method", "Get"), slog.String("city", name), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return types.Coordinate{}, false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	span.SetAttributes(attribute.Bool("geocode.cache_hit", true))
	return coord, true, nil
}

func (r *PostgresCoordinateStore) Put(ctx context.Context, name string, coord types.Coordinate) (types.CacheRecord, error) {
	ctx, span := r.startSpan(ctx, "Put", name)
	defer span.End()

	query := `
        INSERT INTO cities (name, lat, long)
        VALUES ($1, $2, $3)
        RETURNING id, seq, created_at
    `

	record := types.CacheRecord{Name: name, Coordinate: coord}
	start := time.Now()
	err := r.pgpool.QueryRow(ctx, query, name, coord.Latitude, coord.Longitude).
		Scan(&record.ID, &record.Seq, &record.CreatedAt)
	r.observe(ctx, "Put", start, err)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			span.SetAttributes(attribute.Bool("geocode.duplicate", true))
			return types.CacheRecord{}, fmt.Errorf("%w: %q", ErrCityExists, name)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return types.CacheRecord{}, fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
	}

	span.SetAttributes(attribute.String("geocode.record_id", record.ID.String()))
	return record, nil
}

func (r *PostgresCoordinateStore) ListRecent(ctx context.Context, limit int) ([]string, error) {
	ctx, span := r.startSpan(ctx, "ListRecent", "")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	if limit <= 0 {
		return []string{}, nil
	}

	query := `SELECT name FROM cities ORDER BY seq DESC LIMIT $1`

	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query, limit)
	if err != nil {
		r.observe(ctx, "ListRecent", start, err)
		r.logger.ErrorContext(ctx, "Failed to list recent cities", slog.String("method", "ListRecent"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	names := make([]string, 0, limit)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			r.observe(ctx, "ListRecent", start, err)
			span.RecordError(err)
			return nil, fmt.Errorf("%w: scanning city name: %w", ErrStoreUnavailable, err)
		}
		names = append(names, name)
	}
	err = rows.Err()
	r.observe(ctx, "ListRecent", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB rows failed")
		return nil, fmt.Errorf("%w: iterating recent cities: %w", ErrStoreUnavailable, err)
	}

	return names, nil
}

func (r *PostgresCoordinateStore) Ping(ctx context.Context) error {
	if err := r.pgpool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
