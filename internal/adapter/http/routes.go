package http

import "github.com/labstack/echo/v4"

type Routes struct {
	Health   *Handler
	Loans    *LoanHandler
	Payments *PaymentHandler
	LateFees *LateFeeHandler
}

// Register mounts every endpoint. mw (the idempotency middleware) wraps the
// groups that carry mutating calls; it passes reads through on its own.
func (r Routes) Register(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.GET("/health", r.Health.Health)
	e.GET("/health/late-fees", r.Health.LateFeeHealth)

	loans := e.Group("/loans", mw...)
	loans.POST("", r.Loans.DisburseLoan)
	loans.GET("/:loan_id", r.Loans.GetLoan)
	loans.POST("/:loan_id/schedule/repair", r.Loans.RepairSchedule)

	inst := e.Group("/installments", mw...)
	inst.POST("/:installment_id/payments", r.Payments.SettlePayment)
	inst.GET("/:installment_id/amount-due", r.Payments.AmountDue)

	e.POST("/late-fees/run", r.LateFees.RunManual)
}
