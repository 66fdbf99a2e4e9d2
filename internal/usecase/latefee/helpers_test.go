package latefee

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"repayment-engine/internal/adapter/repository/mysql"
	"repayment-engine/internal/domain/installment"
	domain "repayment-engine/internal/domain/latefee"
	"repayment-engine/internal/domain/loan"
	"repayment-engine/internal/domain/processing"
	"repayment-engine/internal/domain/uow"
	infradb "repayment-engine/internal/infrastructure/db"
	"repayment-engine/pkg/civil"
	"repayment-engine/pkg/id"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// local builds a lender-zone wall clock time.
func local(m time.Month, d, hh int) time.Time {
	return time.Date(2025, m, d, hh, 0, 0, 0, civil.Lender)
}

type testEnv struct {
	db           *gorm.DB
	uow          uow.UnitOfWork
	installments *mysql.InstallmentRepository
	fees         *mysql.LateFeeRepository
	policies     *mysql.PolicyRepository
	logs         *mysql.ProcessingLogRepository
	loans        *mysql.LoanRepository
	now          time.Time
}

func newEnv(t *testing.T) *testEnv {
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
	return &testEnv{
		db:           db,
		uow:          mysql.NewGormUoW(db),
		installments: mysql.NewInstallmentRepository(db),
		fees:         mysql.NewLateFeeRepository(db),
		policies:     mysql.NewPolicyRepository(db),
		logs:         mysql.NewProcessingLogRepository(db),
		loans:        mysql.NewLoanRepository(db),
	}
}

func (e *testEnv) calculator(def domain.Policy) *Calculator {
	return NewCalculator(e.installments, e.logs, e.uow, def, nil).
		WithClock(func() time.Time { return e.now })
}

// seed creates a loan with one installment due on `due` (local 23:59:59 on
// the 1st) for `amount`.
func (e *testEnv) seed(t *testing.T, product string, due time.Time, amount string) (*loan.Loan, *installment.Installment) {
	t.Helper()
	ctx := context.Background()
	l := &loan.Loan{
		LoanID: id.NewID32(), BorrowerID: id.NewID32(), ProductCode: product,
		Principal: dec(amount), MonthlyRate: dec("1"), TermMonths: 1,
		DisbursedAt: due.AddDate(0, -1, 0), TotalInterest: decimal.Zero,
		TotalAmount: dec(amount), OutstandingBalance: dec(amount),
		Status: loan.StatusActive, StatusUpdatedAt: due.AddDate(0, -1, 0),
	}
	if err := e.loans.Create(ctx, l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	it := &installment.Installment{
		InstallmentID: id.NewID32(), LoanID: l.ID, InstallmentNumber: 1,
		DueDate: civil.EndOfDay(due), ScheduledAmount: dec(amount),
		PrincipalPortion: dec(amount), InterestPortion: decimal.Zero,
		PaymentState: installment.StatePending,
	}
	if err := e.installments.CreateBatch(ctx, []*installment.Installment{it}); err != nil {
		t.Fatalf("seed installment: %v", err)
	}
	return l, it
}

func (e *testEnv) listFees(t *testing.T, instID uint64) []*domain.Record {
	t.Helper()
	out, err := e.fees.ListByInstallment(context.Background(), instID)
	if err != nil {
		t.Fatalf("list fees: %v", err)
	}
	return out
}

func (e *testEnv) logCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&processing.Log{}).Count(&n).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	return n
}

func countType(recs []*domain.Record, ft domain.FeeType) int {
	n := 0
	for _, r := range recs {
		if r.FeeType == ft {
			n++
		}
	}
	return n
}
