package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"repayment-engine/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type disburseLoanReq struct {
	BorrowerID  string          `json:"borrower_id"  validate:"required,hex32"`
	ProductCode string          `json:"product_code" validate:"required,max=32"`
	Principal   decimal.Decimal `json:"principal"    validate:"required,gt=0,dec2"`
	// percent per month, e.g. 1.5
	MonthlyRate decimal.Decimal `json:"monthly_rate" validate:"required,gt=0,lte=100,dec4"`
	TermMonths  int             `json:"term_months"  validate:"required,gte=1,lte=360"`
	DisbursedAt *time.Time      `json:"disbursed_at"`
}

func (h *LoanHandler) DisburseLoan(c echo.Context) error {
	var req disburseLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	in := loan.DisburseInput{
		BorrowerID:  req.BorrowerID,
		ProductCode: req.ProductCode,
		Principal:   req.Principal,
		MonthlyRate: req.MonthlyRate,
		TermMonths:  req.TermMonths,
	}
	if req.DisbursedAt != nil {
		in.DisbursedAt = *req.DisbursedAt
	}
	dto, err := h.uc.Disburse(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// RepairSchedule is an operator action; it only succeeds when the stored
// installment count differs from the loan term.
func (h *LoanHandler) RepairSchedule(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	dto, err := h.uc.RepairSchedule(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
