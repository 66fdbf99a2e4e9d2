package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"repayment-engine/internal/usecase/health"
	"repayment-engine/internal/usecase/latefee"
)

type Handler struct{ monitor *health.Monitor }

func NewHandler(monitor *health.Monitor) *Handler { return &Handler{monitor: monitor} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// LateFeeHealth reports the processing log so alerting can catch a missed
// or failed daily run.
func (h *Handler) LateFeeHealth(c echo.Context) error {
	st, err := h.monitor.Status(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, st)
}

type LateFeeHandler struct{ calc *latefee.Calculator }

func NewLateFeeHandler(calc *latefee.Calculator) *LateFeeHandler {
	return &LateFeeHandler{calc: calc}
}

// RunManual forces a calculator run. Fees already charged today are not
// charged again. A failed run still returns its result body.
func (h *LateFeeHandler) RunManual(c echo.Context) error {
	res, err := h.calc.Run(c.Request().Context(), latefee.RunOptions{Manual: true})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, res)
	}
	return c.JSON(http.StatusOK, res)
}
