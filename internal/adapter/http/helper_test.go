package http

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"repayment-engine/internal/adapter/repository/mysql"
	domainfee "repayment-engine/internal/domain/latefee"
	infradb "repayment-engine/internal/infrastructure/db"
	"repayment-engine/internal/usecase/health"
	"repayment-engine/internal/usecase/latefee"
	"repayment-engine/internal/usecase/loan"
	"repayment-engine/internal/usecase/payment"
	"repayment-engine/pkg/civil"
)

// ---- helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

// testApp wires the real usecases over an in-memory sqlite database with a
// fixed clock.
type testApp struct {
	loans   *loan.Usecase
	alloc   *payment.Allocator
	calc    *latefee.Calculator
	monitor *health.Monitor
}

var appNow = time.Date(2025, 1, 20, 10, 0, 0, 0, civil.Lender)

func newTestApp(t *testing.T, now time.Time) *testApp {
	t.Helper()
	db, err := infradb.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := infradb.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	clock := func() time.Time { return now }
	tx := mysql.NewGormUoW(db)
	installments := mysql.NewInstallmentRepository(db)
	logs := mysql.NewProcessingLogRepository(db)
	def := domainfee.Policy{DailyRate: decimal.RequireFromString("0.1")}
	return &testApp{
		loans:   loan.NewUsecase(mysql.NewLoanRepository(db), installments, tx, nil).WithClock(clock),
		alloc:   payment.NewAllocator(installments, mysql.NewLateFeeRepository(db), tx, nil).WithClock(clock),
		calc:    latefee.NewCalculator(installments, logs, tx, def, nil).WithClock(clock),
		monitor: health.NewMonitor(logs, time.Second).WithClock(clock),
	}
}

func (a *testApp) routes() Routes {
	return Routes{
		Health:   NewHandler(a.monitor),
		Loans:    NewLoanHandler(a.loans),
		Payments: NewPaymentHandler(a.alloc),
		LateFees: NewLateFeeHandler(a.calc),
	}
}
