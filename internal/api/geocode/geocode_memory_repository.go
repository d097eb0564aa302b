package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-city-forecast/internal/types"
)

var _ Store = (*MemoryCoordinateStore)(nil)

// MemoryCoordinateStore keeps the cache in process. It is used when no database is
// configured and in tests; contents are lost on restart.
type MemoryCoordinateStore struct {
	logger  *slog.Logger
	records *cache.Cache

	mu    sync.Mutex
	seq   int64
	order []string
}

func NewMemoryCoordinateStore(logger *slog.Logger) *MemoryCoordinateStore {
	return &MemoryCoordinateStore{
		logger:  logger,
		records: cache.New(cache.NoExpiration, 0),
	}
}

func (s *MemoryCoordinateStore) Get(_ context.Context, name string) (types.Coordinate, bool, error) {
	v, ok := s.records.Get(name)
	if !ok {
		return types.Coordinate{}, false, nil
	}
	return v.(types.CacheRecord).Coordinate, true, nil
}

func (s *MemoryCoordinateStore) Put(ctx context.Context, name string, coord types.Coordinate) (types.CacheRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := types.CacheRecord{
		ID:         uuid.New(),
		Seq:        s.seq + 1,
		Name:       name,
		Coordinate: coord,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.records.Add(name, record, cache.NoExpiration); err != nil {
		return types.CacheRecord{}, fmt.Errorf("%w: %q", ErrCityExists, name)
	}
	s.seq = record.Seq
	s.order = append(s.order, name)

	s.logger.DebugContext(ctx, "Cached coordinates in memory",
		slog.String("city", name), slog.Int64("seq", record.Seq))
	return record, nil
}

func (s *MemoryCoordinateStore) ListRecent(_ context.Context, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := min(max(limit, 0), len(s.order))
	names := make([]string, 0, n)
	for i := len(s.order) - 1; i >= len(s.order)-n; i-- {
		names = append(names, s.order[i])
	}
	return names, nil
}

func (s *MemoryCoordinateStore) Ping(context.Context) error {
	return nil
}

// Len reports how many names are cached.
func (s *MemoryCoordinateStore) Len() int {
	return s.records.ItemCount()
}
