package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"repayment-engine/internal/domain/processing"
	"repayment-engine/pkg/civil"
)

type Status struct {
	LastProcessed        *time.Time        `json:"last_processed"`
	LastStatus           processing.Status `json:"last_status,omitempty"`
	ProcessedToday       bool              `json:"processed_today"`
	TodayProcessingCount int64             `json:"today_processing_count"`
	LastError            string            `json:"last_error,omitempty"`
	LastErrorAt          *time.Time        `json:"last_error_at,omitempty"`
}

// Monitor reads the processing log for external alerting.
type Monitor struct {
	logs    processing.Repository
	timeout time.Duration
	now     func() time.Time
}

func NewMonitor(logs processing.Repository, timeout time.Duration) *Monitor {
	return &Monitor{logs: logs, timeout: timeout, now: time.Now}
}

func (m *Monitor) WithClock(now func() time.Time) *Monitor {
	m.now = now
	return m
}

// Status gives up after the configured timeout.
func (m *Monitor) Status(ctx context.Context) (*Status, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	todayStart := civil.StartOfDay(m.now())
	out := &Status{}

	latest, err := m.logs.Latest(ctx)
	switch {
	case err == nil:
		at := latest.ProcessedAt
		out.LastProcessed = &at
		out.LastStatus = latest.Status
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("latest run: %w", err)
	}

	if out.ProcessedToday, err = m.logs.AutomaticSucceededSince(ctx, todayStart); err != nil {
		return nil, fmt.Errorf("processed today: %w", err)
	}
	if out.TodayProcessingCount, err = m.logs.CountSince(ctx, todayStart); err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}

	failed, err := m.logs.LatestFailed(ctx)
	switch {
	case err == nil:
		at := failed.ProcessedAt
		out.LastError = failed.ErrorMessage
		out.LastErrorAt = &at
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("latest failure: %w", err)
	}
	return out, nil
}
