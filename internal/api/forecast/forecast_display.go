package forecast

import "github.com/FACorreiaa/go-city-forecast/internal/types"

// NewWeatherDisplay pairs each hourly timestamp with its temperature. Extra entries in
// the longer of the two series are dropped.
func NewWeatherDisplay(city string, coord types.Coordinate, resp types.ForecastResponse) types.WeatherDisplay {
	n := min(len(resp.Hourly.Time), len(resp.Hourly.Temperature2m))
	rows := make([]types.Forecast, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, types.Forecast{
			Date:        resp.Hourly.Time[i],
			Temperature: resp.Hourly.Temperature2m[i],
		})
	}
	return types.WeatherDisplay{
		City:       city,
		Coordinate: coord,
		Timezone:   resp.Timezone,
		Forecasts:  rows,
	}
}
