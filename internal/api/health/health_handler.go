package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/go-city-forecast/internal/api"
)

// Checker is anything whose dependencies can be probed, such as the geocode resolver.
type Checker interface {
	Ready(ctx context.Context) error
}

type HandlerImpl struct {
	checker Checker
	timeout time.Duration
	logger  *slog.Logger
}

func NewHandlerImpl(checker Checker, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{checker: checker, timeout: 2 * time.Second, logger: logger}
}

// Live reports that the process is serving
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HandlerImpl) Live(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the coordinate store answers
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *HandlerImpl) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.checker.Ready(ctx); err != nil {
		h.logger.WarnContext(ctx, "Readiness check failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusServiceUnavailable, "coordinate store unavailable")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
