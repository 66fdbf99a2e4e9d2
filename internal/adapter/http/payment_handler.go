package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"repayment-engine/internal/usecase/payment"
	"repayment-engine/pkg/id"
)

type PaymentHandler struct{ alloc *payment.Allocator }

func NewPaymentHandler(alloc *payment.Allocator) *PaymentHandler {
	return &PaymentHandler{alloc: alloc}
}

// settledPaymentReq is the wallet's payment-settled event body.
type settledPaymentReq struct {
	Amount    decimal.Decimal `json:"amount"     validate:"required,gt=0,dec2"`
	SettledAt *time.Time      `json:"settled_at"`
}

func (h *PaymentHandler) SettlePayment(c echo.Context) error {
	installmentID := c.Param("installment_id")
	if !id.Valid(installmentID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid installment_id path param"})
	}
	var req settledPaymentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	in := payment.PaymentSettled{InstallmentID: installmentID, Amount: req.Amount}
	if req.SettledAt != nil {
		in.SettledAt = *req.SettledAt
	}
	res, err := h.alloc.Allocate(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *PaymentHandler) AmountDue(c echo.Context) error {
	installmentID := c.Param("installment_id")
	if !id.Valid(installmentID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid installment_id path param"})
	}
	out, err := h.alloc.AmountDue(c.Request().Context(), installmentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
