package mysql

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"repayment-engine/internal/domain/installment"
	"repayment-engine/internal/domain/loan"
	infradb "repayment-engine/internal/infrastructure/db"
	"repayment-engine/pkg/id"
)

// openTestDB creates an in-memory sqlite DB with the full production schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infradb.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := infradb.Migrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func makeLoan(loanID, borrowerID string) *loan.Loan {
	now := time.Now().UTC()
	return &loan.Loan{
		LoanID:             loanID,
		BorrowerID:         borrowerID,
		ProductCode:        "MICRO",
		Principal:          dec("10000"),
		MonthlyRate:        dec("1.5"),
		TermMonths:         6,
		DisbursedAt:        now,
		TotalInterest:      dec("900"),
		TotalAmount:        dec("10900"),
		OutstandingBalance: dec("10900"),
		Status:             loan.StatusActive,
		StatusUpdatedAt:    now,
	}
}

func makeInstallment(loanNumericID uint64, n int, due time.Time, amount string) *installment.Installment {
	return &installment.Installment{
		InstallmentID:     id.NewID32(),
		LoanID:            loanNumericID,
		InstallmentNumber: n,
		DueDate:           due,
		ScheduledAmount:   dec(amount),
		PrincipalPortion:  dec(amount),
		InterestPortion:   decimal.Zero,
		PaymentState:      installment.StatePending,
	}
}

func seedLoan(t *testing.T, db *gorm.DB) *loan.Loan {
	t.Helper()
	l := makeLoan(id.NewID32(), id.NewID32())
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return l
}
