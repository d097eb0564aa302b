package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/FACorreiaa/go-city-forecast/internal/types"
)

const (
	defaultInterval = 30 * time.Minute
	resolveTimeout  = 30 * time.Second
)

// Resolver is the part of the geocode resolver the warm-up job drives.
type Resolver interface {
	Resolve(ctx context.Context, name string) (types.Coordinate, error)
}

// Warmup periodically resolves a fixed list of cities so they are cached before users ask.
// Cities already cached are plain hits.
type Warmup struct {
	scheduler *gocron.Scheduler
	resolver  Resolver
	cities    []string
	interval  time.Duration
	logger    *slog.Logger
}

func New(cities []string, interval time.Duration, resolver Resolver, logger *slog.Logger) *Warmup {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Warmup{
		scheduler: gocron.NewScheduler(time.UTC),
		resolver:  resolver,
		cities:    cities,
		interval:  interval,
		logger:    logger.With(slog.String("component", "warmup")),
	}
}

// Start schedules the job, which also runs once immediately.
func (w *Warmup) Start() error {
	if len(w.cities) == 0 {
		w.logger.Info("No warm-up cities configured; nothing to schedule")
		return nil
	}

	w.scheduler.SingletonModeAll()
	if _, err := w.scheduler.Every(w.interval).Do(func() {
		w.Run(context.Background())
	}); err != nil {
		return err
	}

	w.scheduler.StartAsync()
	w.logger.Info("Warm-up scheduled",
		slog.Int("cities", len(w.cities)),
		slog.Duration("interval", w.interval))
	return nil
}

// Run resolves every configured city once and returns how many failed.
func (w *Warmup) Run(ctx context.Context) int {
	failed := 0
	for _, city := range w.cities {
		rctx, cancel := context.WithTimeout(ctx, resolveTimeout)
		_, err := w.resolver.Resolve(rctx, city)
		cancel()
		if err != nil {
			failed++
			w.logger.WarnContext(ctx, "Warm-up resolution failed", slog.String("city", city), slog.Any("error", err))
		}
	}
	w.logger.DebugContext(ctx, "Warm-up run completed",
		slog.Int("cities", len(w.cities)),
		slog.Int("failed", failed))
	return failed
}

func (w *Warmup) Stop() {
	if w.scheduler.IsRunning() {
		w.scheduler.Stop()
	}
}
