package types

// ForecastResponse is the subset of the Open-Meteo forecast payload the service reads.
type ForecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Hourly    Hourly  `json:"hourly"`
}

type Hourly struct {
	Time          []string  `json:"time"`
	Temperature2m []float64 `json:"temperature_2m"`
}

// Forecast is one hourly row shown to the user.
type Forecast struct {
	Date        string  `json:"date" example:"2024-05-01T13:00"`
	Temperature float64 `json:"temperature" example:"18.4"`
}

// WeatherDisplay is what the weather page and its JSON variant render.
type WeatherDisplay struct {
	City       string     `json:"city" example:"Paris"`
	Coordinate Coordinate `json:"coordinate"`
	Timezone   string     `json:"timezone" example:"GMT"`
	Forecasts  []Forecast `json:"forecasts"`
}

// StatsDisplay lists the most recently cached city names, newest first.
type StatsDisplay struct {
	Cities []string `json:"cities" example:"Paris,Berlin"`
	Limit  int      `json:"limit" example:"10"`
}
