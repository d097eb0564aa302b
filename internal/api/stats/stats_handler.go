package stats

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-city-forecast/internal/api"
	"github.com/FACorreiaa/go-city-forecast/internal/api/geocode"
	"github.com/FACorreiaa/go-city-forecast/internal/types"
	"github.com/FACorreiaa/go-city-forecast/internal/views"
)

const DefaultRecentLimit = 10

type HandlerImpl struct {
	resolver geocode.Resolver
	renderer *views.Renderer
	limit    int
	logger   *slog.Logger
}

func NewHandlerImpl(resolver geocode.Resolver, renderer *views.Renderer, limit int, logger *slog.Logger) *HandlerImpl {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &HandlerImpl{
		resolver: resolver,
		renderer: renderer,
		limit:    limit,
		logger:   logger,
	}
}

// Stats lists the most recently cached cities
// @Summary Recently searched cities
// @Description Lists the most recently cached city names, newest first. Requires HTTP Basic credentials.
// @Tags stats
// @Produce json
// @Produce html
// @Security BasicAuth
// @Param format query string false "json for a JSON body, html otherwise"
// @Success 200 {object} types.StatsDisplay
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "Something went wrong: <error>"
// @Router /stats [get]
func (h *HandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("StatsHandler").Start(r.Context(), "Stats")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", h.limit))

	l := h.logger.With(slog.String("method", "Stats"))

	cities, err := h.resolver.RecentCities(ctx, h.limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load recent cities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "recent cities failed")
		api.SomethingWentWrong(w, err)
		return
	}

	display := types.StatsDisplay{Cities: cities, Limit: h.limit}
	if api.WantsJSON(r) {
		api.WriteJSONResponse(w, r, http.StatusOK, display)
		return
	}
	if err = h.renderer.Render(w, http.StatusOK, views.PageStats, display); err != nil {
		l.ErrorContext(ctx, "Failed to render stats page", slog.Any("error", err))
		api.SomethingWentWrong(w, err)
	}
}
