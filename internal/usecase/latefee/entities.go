package latefee

import "github.com/shopspring/decimal"

type RunOptions struct {
	// Manual bypasses only the "automatic run already succeeded today"
	// guard. Per-installment daily idempotency always applies.
	Manual bool
}

type RunResult struct {
	Success           bool            `json:"success"`
	FeesCalculated    int             `json:"fees_calculated"`
	TotalFeeAmount    decimal.Decimal `json:"total_fee_amount"`
	OverdueRepayments int             `json:"overdue_repayments"`
	ProcessingTimeMs  int64           `json:"processing_time_ms"`
	ErrorMessage      string          `json:"error_message,omitempty"`
	IsManualRun       bool            `json:"is_manual_run"`
	// Skipped is set when an automatic run found today's run already done.
	Skipped bool `json:"skipped"`
}
