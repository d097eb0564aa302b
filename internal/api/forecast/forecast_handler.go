package forecast

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-city-forecast/internal/api"
	"github.com/FACorreiaa/go-city-forecast/internal/api/geocode"
	"github.com/FACorreiaa/go-city-forecast/internal/views"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Index(w http.ResponseWriter, r *http.Request)
	Weather(w http.ResponseWriter, r *http.Request)
}

// WeatherQuery is the query string of GET /weather.
type WeatherQuery struct {
	City   string `validate:"required,max=200"`
	Format string `validate:"omitempty,oneof=html json"`
}

type HandlerImpl struct {
	resolver geocode.Resolver
	fetcher  Fetcher
	renderer *views.Renderer
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandlerImpl(resolver geocode.Resolver, fetcher Fetcher, renderer *views.Renderer, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		resolver: resolver,
		fetcher:  fetcher,
		renderer: renderer,
		validate: validator.New(),
		logger:   logger,
	}
}

// Index renders the search form.
func (h *HandlerImpl) Index(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, http.StatusOK, views.PageIndex, nil); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render index", slog.Any("error", err))
		api.SomethingWentWrong(w, err)
	}
}

// Weather resolves the city and renders its hourly forecast
// @Summary Hourly forecast for a city
// @Description Resolves the city name through the coordinate cache and returns the hourly temperature forecast
// @Tags weather
// @Produce json
// @Produce html
// @Param city query string true "City name, used verbatim"
// @Param format query string false "json for a JSON body, html otherwise"
// @Success 200 {object} types.WeatherDisplay
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {string} string "Something went wrong: <error>"
// @Router /weather [get]
func (h *HandlerImpl) Weather(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ForecastHandler").Start(r.Context(), "Weather")
	defer span.End()

	l := h.logger.With(slog.String("method", "Weather"))

	q := WeatherQuery{
		City:   r.URL.Query().Get("city"),
		Format: r.URL.Query().Get("format"),
	}
	if err := h.validate.Struct(q); err != nil {
		l.WarnContext(ctx, "Invalid weather query", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid query")
		api.ErrorResponse(w, r, http.StatusBadRequest, "query parameter city is required")
		return
	}
	span.SetAttributes(attribute.String("geocode.city", q.City))

	coord, err := h.resolver.Resolve(ctx, q.City)
	if err != nil {
		l.ErrorContext(ctx, "Failed to resolve city",
			slog.String("city", q.City),
			slog.String("error_kind", geocode.Outcome(err)),
			slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		api.SomethingWentWrong(w, err)
		return
	}

	forecast, err := h.fetcher.Fetch(ctx, coord)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch forecast",
			slog.String("city", q.City),
			slog.String("error_kind", "forecast_error"),
			slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		api.SomethingWentWrong(w, err)
		return
	}

	display := NewWeatherDisplay(q.City, coord, forecast)
	if q.Format == "json" {
		api.WriteJSONResponse(w, r, http.StatusOK, display)
		return
	}
	if err = h.renderer.Render(w, http.StatusOK, views.PageWeather, display); err != nil {
		l.ErrorContext(ctx, "Failed to render weather page", slog.Any("error", err))
		span.RecordError(err)
		api.SomethingWentWrong(w, err)
	}
}
