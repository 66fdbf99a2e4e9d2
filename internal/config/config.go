package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	AppPort  string
	LogLevel string

	DBDriver   string
	SQLitePath string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	LateFeeCron             string
	LateFeeSchedulerEnabled bool

	// Fallback policy for products without a late_fee_policies row.
	DefaultDailyRate          decimal.Decimal // percent per day
	DefaultFixedFee           decimal.Decimal
	DefaultFixedFrequencyDays int

	HealthQueryTimeout time.Duration
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:    getenv("APP_PORT", "8080"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		DBDriver:   getenv("DB_DRIVER", DriverMySQL),
		SQLitePath: getenv("SQLITE_PATH", "repayment.db"),
		MySQLHost:  getenv("MYSQL_HOST", "mysql"),
		MySQLPort:  getenv("MYSQL_PORT", "3306"),
		MySQLDB:    getenv("MYSQL_DB", "repayment"),
		MySQLUser:  getenv("MYSQL_USER", "repayment"),
		MySQLPass:  getenv("MYSQL_PASS", "repayment"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		IdempTTLSecs: 300,

		LateFeeCron:             getenv("LATE_FEE_CRON", "5 0 * * *"),
		LateFeeSchedulerEnabled: true,

		DefaultDailyRate:          decimal.RequireFromString("0.1"),
		DefaultFixedFee:           decimal.Zero,
		DefaultFixedFrequencyDays: 0,

		HealthQueryTimeout: 3 * time.Second,
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	if v := os.Getenv("LATE_FEE_SCHEDULER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LateFeeSchedulerEnabled = b
		}
	}
	if v := os.Getenv("DEFAULT_DAILY_RATE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			c.DefaultDailyRate = d
		}
	}
	if v := os.Getenv("DEFAULT_FIXED_FEE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			c.DefaultFixedFee = d
		}
	}
	if v := os.Getenv("DEFAULT_FIXED_FREQUENCY_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DefaultFixedFrequencyDays = n
		}
	}
	if v := os.Getenv("HEALTH_QUERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HealthQueryTimeout = d
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.LateFeeSchedulerEnabled {
		if _, err := cron.ParseStandard(c.LateFeeCron); err != nil {
			return fmt.Errorf("invalid LATE_FEE_CRON %q: %w", c.LateFeeCron, err)
		}
	}
	if c.DefaultDailyRate.IsNegative() || c.DefaultFixedFee.IsNegative() {
		return errors.New("default late fee rate and amount must not be negative")
	}
	if c.HealthQueryTimeout <= 0 {
		return errors.New("HEALTH_QUERY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc=UTC keeps instants as written
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
