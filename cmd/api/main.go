package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "repayment-engine/internal/adapter/http"
	mw "repayment-engine/internal/adapter/middleware"
	"repayment-engine/internal/adapter/repository/mysql"
	"repayment-engine/internal/adapter/scheduler"
	"repayment-engine/internal/config"
	domainfee "repayment-engine/internal/domain/latefee"
	"repayment-engine/internal/infrastructure/cache"
	"repayment-engine/internal/infrastructure/db"
	"repayment-engine/internal/infrastructure/logger"
	"repayment-engine/internal/usecase/health"
	"repayment-engine/internal/usecase/latefee"
	"repayment-engine/internal/usecase/loan"
	"repayment-engine/internal/usecase/payment"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using environment: %v", err)
	}
	cfg := config.Load()
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
	rdb, err := cache.OpenRedis(context.Background(), cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		zl.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// repositories + unit of work
	tx := mysql.NewGormUoW(gdb)
	loans := mysql.NewLoanRepository(gdb)
	installments := mysql.NewInstallmentRepository(gdb)
	fees := mysql.NewLateFeeRepository(gdb)
	logs := mysql.NewProcessingLogRepository(gdb)

	defaultPolicy := domainfee.Policy{
		DailyRate:          cfg.DefaultDailyRate,
		FixedAmount:        cfg.DefaultFixedFee,
		FixedFrequencyDays: cfg.DefaultFixedFrequencyDays,
	}
	loanUC := loan.NewUsecase(loans, installments, tx, zl.Named("loan"))
	alloc := payment.NewAllocator(installments, fees, tx, zl.Named("payment"))
	calc := latefee.NewCalculator(installments, logs, tx, defaultPolicy, zl.Named("latefee"))
	monitor := health.NewMonitor(logs, cfg.HealthQueryTimeout)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	routes := httpadp.Routes{
		Health:   httpadp.NewHandler(monitor),
		Loans:    httpadp.NewLoanHandler(loanUC),
		Payments: httpadp.NewPaymentHandler(alloc),
		LateFees: httpadp.NewLateFeeHandler(calc),
	}
	routes.Register(e, mw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, zl.Named("idempotency")))

	var sched *scheduler.LateFeeScheduler
	if cfg.LateFeeSchedulerEnabled {
		sched, err = scheduler.New(cfg.LateFeeCron, calc, zl.Named("scheduler"))
		if err != nil {
			zl.Fatal("scheduler", zap.Error(err))
		}
		sched.Start()
	}

	addr := ":" + cfg.AppPort
	listenErr := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("db", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		zl.Info("shutdown signal", zap.String("signal", sig.String()))
	case err := <-listenErr:
		zl.Error("server listen", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			zl.Warn("scheduler stop", zap.Error(err))
		}
	}
	if err := e.Shutdown(ctx); err != nil {
		zl.Error("server shutdown", zap.Error(err))
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zl.Info("stopped")
}
