package stats

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-city-forecast/internal/types"
	"github.com/FACorreiaa/go-city-forecast/internal/views"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, name string) (types.Coordinate, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(types.Coordinate), args.Error(1)
}

func (m *MockResolver) RecentCities(ctx context.Context, limit int) ([]string, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockResolver) Ready(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func setupStatsTest(t *testing.T, limit int) (*HandlerImpl, *MockResolver) {
	t.Helper()
	renderer, err := views.NewRenderer()
	require.NoError(t, err)
	resolver := new(MockResolver)
	return NewHandlerImpl(resolver, renderer, limit, slog.New(slog.NewTextHandler(io.Discard, nil))), resolver
}

func TestHandlerImpl_Stats(t *testing.T) {
	t.Run("renders recent cities", func(t *testing.T) {
		h, resolver := setupStatsTest(t, 0)
		resolver.On("RecentCities", mock.Anything, DefaultRecentLimit).Return([]string{"C", "B", "A"}, nil).Once()

		rec := httptest.NewRecorder()
		h.Stats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<li>C</li>")
		resolver.AssertExpectations(t)
	})

	t.Run("json rendition uses configured limit", func(t *testing.T) {
		h, resolver := setupStatsTest(t, 2)
		resolver.On("RecentCities", mock.Anything, 2).Return([]string{"C", "B"}, nil).Once()

		rec := httptest.NewRecorder()
		h.Stats(rec, httptest.NewRequest(http.MethodGet, "/stats?format=json", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got types.StatsDisplay
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, types.StatsDisplay{Cities: []string{"C", "B"}, Limit: 2}, got)
	})

	t.Run("store failure", func(t *testing.T) {
		h, resolver := setupStatsTest(t, 10)
		resolver.On("RecentCities", mock.Anything, 10).Return(nil, errors.New("store down")).Once()

		rec := httptest.NewRecorder()
		h.Stats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Something went wrong: store down", rec.Body.String())
	})
}
