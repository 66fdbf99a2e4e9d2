package processing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Log is written once per late-fee calculator invocation.
type Log struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	ProcessedAt      time.Time       `gorm:"column:processed_at;not null;index:idx_processing_logs_processed_at" json:"processed_at"`
	Status           Status          `gorm:"column:status;size:8;not null" json:"status"`
	FeesCalculated   int             `gorm:"column:fees_calculated;not null;default:0" json:"fees_calculated"`
	TotalFeeAmount   decimal.Decimal `gorm:"column:total_fee_amount;type:decimal(18,2);not null;default:0" json:"total_fee_amount"`
	OverdueCount     int             `gorm:"column:overdue_count;not null;default:0" json:"overdue_count"`
	ProcessingTimeMs int64           `gorm:"column:processing_time_ms;not null;default:0" json:"processing_time_ms"`
	ErrorMessage     string          `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	IsManualRun      bool            `gorm:"column:is_manual_run;not null;default:false" json:"is_manual_run"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Log) TableName() string { return "late_fee_processing_logs" }

type Repository interface {
	Create(ctx context.Context, l *Log) error
	// Latest returns the newest log, or gorm.ErrRecordNotFound.
	Latest(ctx context.Context) (*Log, error)
	// LatestFailed returns the newest FAILED log, or gorm.ErrRecordNotFound.
	LatestFailed(ctx context.Context) (*Log, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	// AutomaticSucceededSince reports whether a non-manual run succeeded
	// at or after since.
	AutomaticSucceededSince(ctx context.Context, since time.Time) (bool, error)
}
