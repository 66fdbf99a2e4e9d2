// Command latefee runs the late fee calculator once and exits. It is meant
// for an external scheduler (e.g. a Kubernetes CronJob) when the API's
// in-process scheduler is disabled. Exit status is 1 when the run fails.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"repayment-engine/internal/adapter/repository/mysql"
	"repayment-engine/internal/config"
	domainfee "repayment-engine/internal/domain/latefee"
	"repayment-engine/internal/infrastructure/db"
	"repayment-engine/internal/infrastructure/logger"
	"repayment-engine/internal/usecase/latefee"
)

func main() {
	manual := flag.Bool("manual", false, "force a run even if today's automatic run already succeeded")
	timeout := flag.Duration("timeout", 30*time.Minute, "abort the run after this long")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using environment: %v", err)
	}
	cfg := config.Load()
	// the cron expression is irrelevant here
	cfg.LateFeeSchedulerEnabled = false
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, false)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	gdb, err := db.Open(cfg.DBDriver, cfg.MySQLDSN(), cfg.SQLitePath)
	if err != nil {
		zl.Fatal("db open", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		zl.Fatal("db migrate", zap.Error(err))
	}

	calc := latefee.NewCalculator(
		mysql.NewInstallmentRepository(gdb),
		mysql.NewProcessingLogRepository(gdb),
		mysql.NewGormUoW(gdb),
		domainfee.Policy{
			DailyRate:          cfg.DefaultDailyRate,
			FixedAmount:        cfg.DefaultFixedFee,
			FixedFrequencyDays: cfg.DefaultFixedFrequencyDays,
		},
		zl.Named("latefee"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	res, err := calc.Run(ctx, latefee.RunOptions{Manual: *manual})
	cancel()
	if sqlDB, dbErr := gdb.DB(); dbErr == nil {
		_ = sqlDB.Close()
	}
	if err != nil {
		zl.Error("late fee run failed", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
	zl.Info("late fee run finished",
		zap.Bool("skipped", res.Skipped),
		zap.Int("fees", res.FeesCalculated),
		zap.String("total", res.TotalFeeAmount.StringFixed(2)))
}
