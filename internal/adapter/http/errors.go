package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repayment-engine/internal/domain/loan"
	"repayment-engine/internal/domain/schedule"
	loanuc "repayment-engine/internal/usecase/loan"
	"repayment-engine/internal/usecase/payment"
)

// statusFor maps usecase and domain errors → HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loan.ErrNotFound),
		errors.Is(err, payment.ErrInstallmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrScheduleIntact),
		errors.Is(err, loan.ErrScheduleInUse),
		errors.Is(err, payment.ErrInstallmentSettled):
		return http.StatusConflict
	case errors.Is(err, schedule.ErrInvalidTerms),
		errors.Is(err, loanuc.ErrInvalidInput),
		errors.Is(err, payment.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
