package views

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-city-forecast/internal/types"
)

func TestRenderer(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	t.Run("index", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, r.Render(rec, http.StatusOK, PageIndex, nil))
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), `action="/weather"`)
	})

	t.Run("weather escapes city", func(t *testing.T) {
		rec := httptest.NewRecorder()
		data := types.WeatherDisplay{
			City:       "<script>Paris</script>",
			Coordinate: types.Coordinate{Latitude: 48.8566, Longitude: 2.3522},
			Forecasts:  []types.Forecast{{Date: "2024-05-01T13:00", Temperature: 18.4}},
		}
		require.NoError(t, r.Render(rec, http.StatusOK, PageWeather, data))
		body := rec.Body.String()
		assert.NotContains(t, body, "<script>Paris")
		assert.Contains(t, body, "&lt;script&gt;Paris")
		assert.Contains(t, body, "2024-05-01T13:00")
		assert.Contains(t, body, "18.4")
	})

	t.Run("stats lists cities in order", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, r.Render(rec, http.StatusOK, PageStats, types.StatsDisplay{Cities: []string{"C", "B"}}))
		body := rec.Body.String()
		require.Contains(t, body, "<li>C</li>")
		require.Contains(t, body, "<li>B</li>")
		assert.Less(t, strings.Index(body, "<li>C</li>"), strings.Index(body, "<li>B</li>"))
	})

	t.Run("unknown page", func(t *testing.T) {
		assert.Error(t, r.Render(httptest.NewRecorder(), http.StatusOK, "missing.html", nil))
	})
}
